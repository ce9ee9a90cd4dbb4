package result

import (
	"context"
	"errors"
	"reflect"
	"sync/atomic"
	"testing"

	"github.com/pavelanni/examdesk/internal/model"
)

func algorithms101(selected ...[]string) model.Attempt {
	a := model.Attempt{
		ID:       5,
		ExamName: "Algorithms101",
		Quizzes: []model.Quiz{
			{Content: "Q0", Options: []string{"A", "B", "C"}, CorrectOptions: []string{"B"}},
			{Content: "Q1", Options: []string{"A", "B", "C", "D"}, CorrectOptions: []string{"B", "C"}},
			{Content: "Q2", Options: []string{"X", "Y", "Z"}, CorrectOptions: []string{"X", "Y"}},
		},
	}
	for _, s := range selected {
		a.Answers = append(a.Answers, model.Answer{Selected: s})
	}
	return a
}

func TestIsCorrect(t *testing.T) {
	q := model.Quiz{Options: []string{"A", "B", "C"}, CorrectOptions: []string{"C", "A"}}
	tests := []struct {
		name string
		sel  []string
		want bool
	}{
		{"same order", []string{"C", "A"}, true},
		{"other order", []string{"A", "C"}, true},
		{"subset", []string{"A"}, false},
		{"superset", []string{"A", "B", "C"}, false},
		{"empty", nil, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsCorrect(q, model.Answer{Selected: tt.sel}); got != tt.want {
				t.Errorf("IsCorrect(%v) = %v, want %v", tt.sel, got, tt.want)
			}
		})
	}
}

func TestEveryAnswerMatchingIsAllCorrect(t *testing.T) {
	a := algorithms101()
	for _, q := range a.Quizzes {
		a.Answers = append(a.Answers, model.Answer{Selected: append([]string(nil), q.CorrectOptions...)})
	}
	r := NewReport(a, model.ScoreSummary{CorrectCount: 3, TotalCount: 3, ScorePercent: "100"})
	c, ic := r.Tally()
	if c != 3 || ic != 0 {
		t.Errorf("expected 3/0, got %d/%d", c, ic)
	}
	if r.Filter(ViewIncorrect).Len() != 0 {
		t.Error("expected empty incorrect view")
	}
}

// Scenario C: a partial selection on a multi-correct question is incorrect.
func TestPartialSelectionIsIncorrect(t *testing.T) {
	r := NewReport(algorithms101([]string{"B"}, []string{"C", "B"}, []string{"X"}), model.ScoreSummary{})

	if r.IsCorrect(2) {
		t.Error("expected index 2 incorrect")
	}
	correct := r.Filter(ViewCorrect)
	incorrect := r.Filter(ViewIncorrect)
	if !reflect.DeepEqual(correct.Indices, []int{0, 1}) {
		t.Errorf("expected correct [0 1], got %v", correct.Indices)
	}
	if !reflect.DeepEqual(incorrect.Indices, []int{2}) {
		t.Errorf("expected incorrect [2], got %v", incorrect.Indices)
	}
	if !reflect.DeepEqual(incorrect.Selected[0], []string{"X"}) {
		t.Errorf("expected selection [X], got %v", incorrect.Selected[0])
	}
	if !reflect.DeepEqual(incorrect.Correct[0], []string{"X", "Y"}) {
		t.Errorf("expected correct [X Y], got %v", incorrect.Correct[0])
	}
	if incorrect.Quizzes[0].Content != "Q2" {
		t.Errorf("expected Q2, got %q", incorrect.Quizzes[0].Content)
	}
}

func TestFilterIsNonDestructive(t *testing.T) {
	r := NewReport(algorithms101([]string{"B"}, nil, nil), model.ScoreSummary{})

	all := r.Filter(ViewAll)
	all.Selected[0][0] = "Z"
	_ = r.Filter(ViewCorrect)
	again := r.Filter(ViewAll)
	if again.Len() != 3 {
		t.Errorf("expected 3 questions, got %d", again.Len())
	}
	if again.Selected[0][0] != "B" {
		t.Errorf("filter result aliases the report: %v", again.Selected[0])
	}
}

func TestParseView(t *testing.T) {
	tests := []struct {
		in      string
		want    View
		wantErr bool
	}{
		{"", ViewAll, false},
		{"all", ViewAll, false},
		{"correct", ViewCorrect, false},
		{"incorrect", ViewIncorrect, false},
		{"unCorrect", ViewIncorrect, false},
		{"maybe", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseView(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseView(%q) error = %v", tt.in, err)
			}
			if got != tt.want {
				t.Errorf("ParseView(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestPassedAndAccuracy(t *testing.T) {
	tests := []struct {
		score      model.ScoreSummary
		wantPassed bool
		wantAcc    float64
	}{
		{model.ScoreSummary{CorrectCount: 3, TotalCount: 5, ScorePercent: "60"}, true, 60},
		{model.ScoreSummary{CorrectCount: 1, TotalCount: 2, ScorePercent: "50.00"}, false, 50},
		{model.ScoreSummary{CorrectCount: 4, TotalCount: 4, ScorePercent: "100%"}, true, 100},
		{model.ScoreSummary{ScorePercent: "n/a"}, false, 0},
	}
	for _, tt := range tests {
		t.Run(tt.score.ScorePercent, func(t *testing.T) {
			r := NewReport(model.Attempt{}, tt.score)
			if got := r.Passed(); got != tt.wantPassed {
				t.Errorf("Passed() = %v, want %v", got, tt.wantPassed)
			}
			if got := r.Accuracy(); got != tt.wantAcc {
				t.Errorf("Accuracy() = %v, want %v", got, tt.wantAcc)
			}
		})
	}
}

type fakeBackend struct {
	attempt  model.Attempt
	score    model.ScoreSummary
	scoreErr error
	calls    atomic.Int32
}

func (f *fakeBackend) GetScore(ctx context.Context, id int64) (model.ScoreSummary, error) {
	f.calls.Add(1)
	return f.score, f.scoreErr
}

func (f *fakeBackend) GetAttempt(ctx context.Context, id int64) (model.Attempt, error) {
	f.calls.Add(1)
	return f.attempt, nil
}

func TestAnalyzerLoad(t *testing.T) {
	fb := &fakeBackend{
		attempt: algorithms101([]string{"B"}, []string{"B"}, nil),
		score:   model.ScoreSummary{ID: 5, ExamName: "Algorithms101", CorrectCount: 1, TotalCount: 3, ScorePercent: "33.33"},
	}
	r, err := NewAnalyzer(fb).Load(context.Background(), 5)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if fb.calls.Load() != 2 {
		t.Errorf("expected 2 backend calls, got %d", fb.calls.Load())
	}
	if r.Passed() {
		t.Error("expected 33.33 not to pass")
	}
	if c, _ := r.Tally(); c != 1 {
		t.Errorf("expected 1 correct, got %d", c)
	}

	exp := r.Export()
	if exp.ID != 5 || len(exp.Questions) != 3 || !exp.Questions[0].Correct || exp.Questions[1].Correct {
		t.Errorf("unexpected export: %+v", exp)
	}
}

func TestAnalyzerLoadErrors(t *testing.T) {
	boom := errors.New("boom")
	if _, err := NewAnalyzer(&fakeBackend{scoreErr: boom}).Load(context.Background(), 1); !errors.Is(err, boom) {
		t.Errorf("expected wrapped boom, got %v", err)
	}

	misaligned := &fakeBackend{attempt: algorithms101([]string{"B"})}
	if _, err := NewAnalyzer(misaligned).Load(context.Background(), 1); !errors.Is(err, model.ErrMisaligned) {
		t.Errorf("expected ErrMisaligned, got %v", err)
	}
}
