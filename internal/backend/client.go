package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/pavelanni/examdesk/internal/model"
)

// DefaultBaseURL is used when no API URL is configured.
const DefaultBaseURL = "http://localhost:12058/api"

// ListAllScoresKeyword is the keyword the score search endpoint treats as
// "return everything".
const ListAllScoresKeyword = "getScoreByKeyword"

// ErrNotFound is returned when the backend answers with an empty body for a
// lookup by name or id.
var ErrNotFound = errors.New("not found")

// NetworkError reports an unreachable backend, a non-2xx status, or a
// response that could not be decoded. It is always safe to retry.
type NetworkError struct {
	Op         string
	StatusCode int
	Err        error
}

func (e *NetworkError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s: backend returned status %d", e.Op, e.StatusCode)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// Client talks to the exam backend's REST API.
type Client struct {
	baseURL string
	http    *http.Client
}

// New creates a client for baseURL. A nil httpClient gets a 30s timeout.
func New(baseURL string, httpClient *http.Client) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    httpClient,
	}
}

// BaseURL returns the normalized API base URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// ListExams returns every exam name.
func (c *Client) ListExams(ctx context.Context) ([]string, error) {
	var names []string
	if err := c.postText(ctx, "getExamList", "", &names); err != nil {
		return nil, err
	}
	return names, nil
}

// SearchExams returns exam names matching keyword.
func (c *Client) SearchExams(ctx context.Context, keyword string) ([]string, error) {
	var names []string
	if err := c.postText(ctx, "getExamListByKeyWord", keyword, &names); err != nil {
		return nil, err
	}
	return names, nil
}

// ExamNameTaken reports whether an exam with this name already exists.
func (c *Client) ExamNameTaken(ctx context.Context, name string) (bool, error) {
	var taken bool
	if err := c.postText(ctx, "checkExamNm", name, &taken); err != nil {
		return false, err
	}
	return taken, nil
}

// GetExam fetches a whole exam by name.
func (c *Client) GetExam(ctx context.Context, name string) (model.Exam, error) {
	var e *Exam
	if err := c.postText(ctx, "getExamByName", name, &e); err != nil {
		return model.Exam{}, err
	}
	if e == nil {
		return model.Exam{}, fmt.Errorf("get exam %q: %w", name, ErrNotFound)
	}
	return e.ToModel(), nil
}

// UpsertExam creates or replaces an exam.
func (c *Client) UpsertExam(ctx context.Context, e model.Exam) (bool, error) {
	var ok bool
	if err := c.postJSON(ctx, "addExam", ExamFromModel(e), &ok); err != nil {
		return false, err
	}
	return ok, nil
}

// DeleteExam removes an exam by name.
func (c *Client) DeleteExam(ctx context.Context, name string) (bool, error) {
	var ok bool
	if err := c.postText(ctx, "removeExam", name, &ok); err != nil {
		return false, err
	}
	return ok, nil
}

// StartSession asks the backend for a sized quiz selection of the named exam.
func (c *Client) StartSession(ctx context.Context, examName string, requestedCount int) (model.Attempt, error) {
	var r *Record
	if err := c.postJSON(ctx, "getExamModeQuizzes", ModeParam{Name: examName, QuizzesNum: requestedCount}, &r); err != nil {
		return model.Attempt{}, err
	}
	if r == nil {
		return model.Attempt{}, fmt.Errorf("start session %q: %w", examName, ErrNotFound)
	}
	return r.ToModel(), nil
}

// CommitAttempt submits a completed attempt and returns the persisted record.
func (c *Client) CommitAttempt(ctx context.Context, a model.Attempt) (model.Attempt, error) {
	var r *Record
	if err := c.postJSON(ctx, "commitAnsToRecord", RecordFromModel(a), &r); err != nil {
		return model.Attempt{}, err
	}
	if r == nil {
		return model.Attempt{}, &NetworkError{Op: "commitAnsToRecord", Err: errors.New("empty response")}
	}
	return r.ToModel(), nil
}

// GetScore fetches the score summary of a committed attempt.
func (c *Client) GetScore(ctx context.Context, id int64) (model.ScoreSummary, error) {
	var s *RecordScore
	if err := c.postJSON(ctx, "getScoreById", id, &s); err != nil {
		return model.ScoreSummary{}, err
	}
	if s == nil {
		return model.ScoreSummary{}, fmt.Errorf("get score %d: %w", id, ErrNotFound)
	}
	return s.ToModel(), nil
}

// SearchScores returns score summaries matching keyword. Pass
// ListAllScoresKeyword to list everything.
func (c *Client) SearchScores(ctx context.Context, keyword string) ([]model.ScoreSummary, error) {
	var wire []RecordScore
	if err := c.postText(ctx, "getScoreByKeyword", keyword, &wire); err != nil {
		return nil, err
	}
	out := make([]model.ScoreSummary, 0, len(wire))
	for _, s := range wire {
		out = append(out, s.ToModel())
	}
	return out, nil
}

// DeleteScore removes a committed attempt and its score.
func (c *Client) DeleteScore(ctx context.Context, id int64) (bool, error) {
	var ok bool
	if err := c.postJSON(ctx, "deleteRecordScore", id, &ok); err != nil {
		return false, err
	}
	return ok, nil
}

// GetAttempt fetches a committed attempt by id.
func (c *Client) GetAttempt(ctx context.Context, id int64) (model.Attempt, error) {
	var r *Record
	if err := c.postJSON(ctx, "getExamRecordById", id, &r); err != nil {
		return model.Attempt{}, err
	}
	if r == nil {
		return model.Attempt{}, fmt.Errorf("get attempt %d: %w", id, ErrNotFound)
	}
	return r.ToModel(), nil
}

func (c *Client) postText(ctx context.Context, op, body string, out any) error {
	return c.do(ctx, op, "text/plain", strings.NewReader(body), out)
}

func (c *Client) postJSON(ctx context.Context, op string, in, out any) error {
	data, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("%s: encode request: %w", op, err)
	}
	return c.do(ctx, op, "application/json", bytes.NewReader(data), out)
}

func (c *Client) do(ctx context.Context, op, contentType string, body io.Reader, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/"+op, body)
	if err != nil {
		return fmt.Errorf("%s: build request: %w", op, err)
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Accept", "application/json")

	res, err := c.http.Do(req)
	if err != nil {
		return &NetworkError{Op: op, Err: err}
	}
	defer res.Body.Close()

	if res.StatusCode/100 != 2 {
		_, _ = io.Copy(io.Discard, res.Body)
		return &NetworkError{Op: op, StatusCode: res.StatusCode}
	}

	data, err := io.ReadAll(res.Body)
	if err != nil {
		return &NetworkError{Op: op, Err: err}
	}
	slog.Debug("backend response", "op", op, "bytes", len(data))
	if len(bytes.TrimSpace(data)) == 0 {
		// An empty body decodes like JSON null.
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return &NetworkError{Op: op, Err: fmt.Errorf("decode response: %w", err)}
	}
	return nil
}
