// Package result loads committed attempts and breaks them down per question.
package result

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strconv"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/pavelanni/examdesk/internal/model"
)

// PassThreshold is the minimum score percentage that counts as a pass.
const PassThreshold = 60.0

// View selects which questions a report shows.
type View string

const (
	ViewAll       View = "all"
	ViewCorrect   View = "correct"
	ViewIncorrect View = "incorrect"
)

// ParseView converts user input to a View. "unCorrect" is accepted as an
// alias for incorrect.
func ParseView(s string) (View, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "all":
		return ViewAll, nil
	case "correct":
		return ViewCorrect, nil
	case "incorrect", "uncorrect", "wrong":
		return ViewIncorrect, nil
	default:
		return "", fmt.Errorf("unknown view %q", s)
	}
}

// IsCorrect reports whether the selection equals the quiz's correct options
// as a set. There is no partial credit.
func IsCorrect(q model.Quiz, a model.Answer) bool {
	want := slices.Clone(q.CorrectOptions)
	got := slices.Clone(a.Selected)
	slices.Sort(want)
	slices.Sort(got)
	return slices.Equal(want, got)
}

// FilteredSet holds the questions of one view. The slices are aligned by
// position; Indices maps each position back to the attempt.
type FilteredSet struct {
	Indices  []int
	Quizzes  []model.Quiz
	Selected [][]string
	Correct  [][]string
}

// Len returns the number of questions in the set.
func (f FilteredSet) Len() int {
	return len(f.Indices)
}

// Report is a committed attempt with its score.
type Report struct {
	Attempt model.Attempt
	Score   model.ScoreSummary
	correct []bool
}

// NewReport builds a report. The report takes ownership of a.
func NewReport(a model.Attempt, s model.ScoreSummary) *Report {
	r := &Report{Attempt: a, Score: s, correct: make([]bool, len(a.Quizzes))}
	for i, q := range a.Quizzes {
		if i < len(a.Answers) {
			r.correct[i] = IsCorrect(q, a.Answers[i])
		}
	}
	return r
}

// IsCorrect reports whether question i was answered correctly.
func (r *Report) IsCorrect(i int) bool {
	return i >= 0 && i < len(r.correct) && r.correct[i]
}

// Filter returns the questions matching v. It never changes the report, so
// views can be switched freely.
func (r *Report) Filter(v View) FilteredSet {
	var f FilteredSet
	for i, q := range r.Attempt.Quizzes {
		switch v {
		case ViewCorrect:
			if !r.correct[i] {
				continue
			}
		case ViewIncorrect:
			if r.correct[i] {
				continue
			}
		}
		var sel []string
		if i < len(r.Attempt.Answers) {
			sel = slices.Clone(r.Attempt.Answers[i].Selected)
		}
		f.Indices = append(f.Indices, i)
		f.Quizzes = append(f.Quizzes, q)
		f.Selected = append(f.Selected, sel)
		f.Correct = append(f.Correct, slices.Clone(q.CorrectOptions))
	}
	return f
}

// ScoreValue parses the backend's score string.
func (r *Report) ScoreValue() (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(strings.TrimSuffix(r.Score.ScorePercent, "%")), 64)
	if err != nil {
		return 0, fmt.Errorf("parse score %q: %w", r.Score.ScorePercent, err)
	}
	return v, nil
}

// Passed reports whether the score reaches PassThreshold. An unreadable score
// does not pass.
func (r *Report) Passed() bool {
	v, err := r.ScoreValue()
	return err == nil && v >= PassThreshold
}

// Accuracy returns correct over total from the backend's counts, in percent.
func (r *Report) Accuracy() float64 {
	if r.Score.TotalCount == 0 {
		return 0
	}
	return float64(r.Score.CorrectCount) * 100 / float64(r.Score.TotalCount)
}

// Tally counts questions by the local predicate. Aggregate numbers shown to
// the user come from Score; this is for per-question decoration.
func (r *Report) Tally() (correct, incorrect int) {
	for _, ok := range r.correct {
		if ok {
			correct++
		} else {
			incorrect++
		}
	}
	return correct, incorrect
}

// Export flattens the report for JSON output.
func (r *Report) Export() model.AttemptResult {
	out := model.AttemptResult{
		ID:           r.Score.ID,
		ExamName:     r.Score.ExamName,
		SubmittedAt:  r.Score.SubmittedAt,
		CorrectCount: r.Score.CorrectCount,
		TotalCount:   r.Score.TotalCount,
		ScorePercent: r.Score.ScorePercent,
	}
	if out.ID == 0 {
		out.ID = r.Attempt.ID
	}
	if out.ExamName == "" {
		out.ExamName = r.Attempt.ExamName
	}
	if out.SubmittedAt.IsZero() {
		out.SubmittedAt = r.Attempt.SubmittedAt
	}
	all := r.Filter(ViewAll)
	for k, i := range all.Indices {
		q := all.Quizzes[k]
		out.Questions = append(out.Questions, model.QuestionResult{
			Content:        q.Content,
			Options:        slices.Clone(q.Options),
			CorrectOptions: all.Correct[k],
			Selected:       all.Selected[k],
			Correct:        r.correct[i],
			Explanation:    q.Explanation,
		})
	}
	return out
}

// Backend is the subset of the REST client the analyzer needs.
type Backend interface {
	GetScore(ctx context.Context, id int64) (model.ScoreSummary, error)
	GetAttempt(ctx context.Context, id int64) (model.Attempt, error)
}

// Analyzer loads reports for committed attempts.
type Analyzer struct {
	backend Backend
}

// NewAnalyzer creates an analyzer.
func NewAnalyzer(b Backend) *Analyzer {
	return &Analyzer{backend: b}
}

// Load fetches the score and the attempt concurrently.
func (an *Analyzer) Load(ctx context.Context, id int64) (*Report, error) {
	var (
		score   model.ScoreSummary
		attempt model.Attempt
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		score, err = an.backend.GetScore(gctx, id)
		if err != nil {
			return fmt.Errorf("get score: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		attempt, err = an.backend.GetAttempt(gctx, id)
		if err != nil {
			return fmt.Errorf("get attempt: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("load result %d: %w", id, err)
	}
	if err := attempt.CheckAligned(); err != nil {
		return nil, fmt.Errorf("load result %d: %w", id, err)
	}

	r := NewReport(attempt, score)
	c, ic := r.Tally()
	if c != score.CorrectCount {
		slog.Debug("local tally differs from backend score", "id", id, "local", c, "backend", score.CorrectCount)
	}
	slog.Debug("result loaded", "id", id, "correct", c, "incorrect", ic)
	return r, nil
}
