package backend

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"
	"time"

	"github.com/pavelanni/examdesk/internal/model"
)

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return New(srv.URL+"/api/", srv.Client())
}

func TestTextEndpointsSendPlainBody(t *testing.T) {
	var gotPath, gotType, gotBody string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotType = r.Header.Get("Content-Type")
		b, _ := io.ReadAll(r.Body)
		gotBody = string(b)
		_, _ = w.Write([]byte(`{"name":"Go","quizzes":[{"quizContent":"Q1","chooses":["A","B"],"correctContents":["B"],"solution":"because"}]}`))
	})

	exam, err := c.GetExam(context.Background(), "Go")
	if err != nil {
		t.Fatalf("GetExam: %v", err)
	}
	if gotPath != "/api/getExamByName" {
		t.Errorf("expected path /api/getExamByName, got %q", gotPath)
	}
	if gotType != "text/plain" {
		t.Errorf("expected text/plain, got %q", gotType)
	}
	if gotBody != "Go" {
		t.Errorf("expected raw body 'Go', got %q", gotBody)
	}
	want := model.Exam{Name: "Go", Quizzes: []model.Quiz{{
		Content: "Q1", Options: []string{"A", "B"}, CorrectOptions: []string{"B"}, Explanation: "because",
	}}}
	if !reflect.DeepEqual(exam, want) {
		t.Errorf("GetExam = %+v, want %+v", exam, want)
	}
}

func TestCommitAttemptCarriesSelectionInAnsQuizzes(t *testing.T) {
	var sent Record
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Content-Type") != "application/json" {
			t.Errorf("expected application/json, got %q", r.Header.Get("Content-Type"))
		}
		if err := json.NewDecoder(r.Body).Decode(&sent); err != nil {
			t.Errorf("decode: %v", err)
			return
		}
		sent.ID = 42
		_ = json.NewEncoder(w).Encode(sent)
	})

	submitted := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	attempt := model.Attempt{
		ExamName: "Go",
		Quizzes: []model.Quiz{
			{Content: "Q1", Options: []string{"A", "B"}, CorrectOptions: []string{"A"}},
		},
		Answers:     []model.Answer{{Selected: []string{"B"}}},
		SubmittedAt: submitted,
	}
	got, err := c.CommitAttempt(context.Background(), attempt)
	if err != nil {
		t.Fatalf("CommitAttempt: %v", err)
	}

	if len(sent.AnsQuizzes) != 1 || !reflect.DeepEqual(sent.AnsQuizzes[0].CorrectContents, []string{"B"}) {
		t.Errorf("expected selection [B] in ansQuizzes, got %+v", sent.AnsQuizzes)
	}
	if !reflect.DeepEqual(sent.ExamQuizzes[0].CorrectContents, []string{"A"}) {
		t.Errorf("ground truth changed on the wire: %+v", sent.ExamQuizzes[0])
	}
	if got.ID != 42 {
		t.Errorf("expected id 42, got %d", got.ID)
	}
	if !got.SubmittedAt.Equal(submitted) {
		t.Errorf("expected submitted_at %v, got %v", submitted, got.SubmittedAt)
	}
	if !reflect.DeepEqual(got.Answers[0].Selected, []string{"B"}) {
		t.Errorf("expected selection round-trip, got %+v", got.Answers)
	}
}

func TestNonSuccessStatusIsNetworkError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusBadGateway)
	})

	_, err := c.ListExams(context.Background())
	var ne *NetworkError
	if !errors.As(err, &ne) {
		t.Fatalf("expected NetworkError, got %v", err)
	}
	if ne.StatusCode != http.StatusBadGateway {
		t.Errorf("expected status 502, got %d", ne.StatusCode)
	}
	if ne.Op != "getExamList" {
		t.Errorf("expected op getExamList, got %q", ne.Op)
	}
}

func TestUnreachableBackendIsNetworkError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c := New(url, nil)
	_, err := c.GetScore(context.Background(), 1)
	var ne *NetworkError
	if !errors.As(err, &ne) {
		t.Fatalf("expected NetworkError, got %v", err)
	}
}

func TestNullBodyIsNotFound(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("null"))
	})

	if _, err := c.GetAttempt(context.Background(), 7); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetAttempt: expected ErrNotFound, got %v", err)
	}
	if _, err := c.GetExam(context.Background(), "missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetExam: expected ErrNotFound, got %v", err)
	}
}

func TestMalformedBodyIsNetworkError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("{not json"))
	})

	_, err := c.SearchScores(context.Background(), ListAllScoresKeyword)
	var ne *NetworkError
	if !errors.As(err, &ne) {
		t.Fatalf("expected NetworkError, got %v", err)
	}
}

func TestParseLogTime(t *testing.T) {
	tests := []struct {
		in   string
		want time.Time
	}{
		{"", time.Time{}},
		{"garbage", time.Time{}},
		{"2024-05-01T10:00:00Z", time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)},
		{"2024-05-01T10:00:00.123Z", time.Date(2024, 5, 1, 10, 0, 0, 123000000, time.UTC)},
		{"2024-05-01T10:00:00", time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)},
		{"2024-05-01 10:00:00", time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got := ParseLogTime(tt.in)
			if !got.Equal(tt.want) {
				t.Errorf("ParseLogTime(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}
