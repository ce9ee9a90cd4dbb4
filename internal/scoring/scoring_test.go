package scoring

import (
	"context"
	"errors"
	"testing"

	"github.com/pavelanni/examdesk/internal/model"
)

type fakeBackend struct {
	commitID  int64
	commitErr error
	scoreErr  error
	committed []model.Attempt
}

func (f *fakeBackend) CommitAttempt(ctx context.Context, a model.Attempt) (model.Attempt, error) {
	f.committed = append(f.committed, a)
	if f.commitErr != nil {
		return model.Attempt{}, f.commitErr
	}
	a.ID = f.commitID
	return a, nil
}

func (f *fakeBackend) GetScore(ctx context.Context, id int64) (model.ScoreSummary, error) {
	if f.scoreErr != nil {
		return model.ScoreSummary{}, f.scoreErr
	}
	return model.ScoreSummary{ID: id, CorrectCount: 1, TotalCount: 1, ScorePercent: "100"}, nil
}

func oneQuizAttempt() model.Attempt {
	return model.Attempt{
		ExamName: "Go",
		Quizzes:  []model.Quiz{{Content: "Q", Options: []string{"A"}, CorrectOptions: []string{"A"}}},
		Answers:  []model.Answer{{Selected: []string{"A"}}},
	}
}

func TestCommitSuccess(t *testing.T) {
	fb := &fakeBackend{commitID: 9}
	res, err := New(fb).Commit(context.Background(), oneQuizAttempt())
	if err != nil {
		t.Fatalf("Commit: %v", err)
	}
	if res.Attempt.ID != 9 || res.Score.ID != 9 {
		t.Errorf("expected id 9 on both legs, got attempt %d score %d", res.Attempt.ID, res.Score.ID)
	}
	if res.Score.ScorePercent != "100" {
		t.Errorf("expected score 100, got %q", res.Score.ScorePercent)
	}
}

func TestCommitFailures(t *testing.T) {
	boom := errors.New("boom")
	tests := []struct {
		name      string
		backend   *fakeBackend
		attempt   model.Attempt
		wantStage string
	}{
		{"submit fails", &fakeBackend{commitErr: boom}, oneQuizAttempt(), StageSubmit},
		{"zero id", &fakeBackend{}, oneQuizAttempt(), StageSubmit},
		{"score fails", &fakeBackend{commitID: 3, scoreErr: boom}, oneQuizAttempt(), StageScore},
		{"misaligned", &fakeBackend{commitID: 3}, model.Attempt{Quizzes: []model.Quiz{{}}}, StageSubmit},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.backend).Commit(context.Background(), tt.attempt)
			var ce *CommitError
			if !errors.As(err, &ce) {
				t.Fatalf("expected CommitError, got %v", err)
			}
			if ce.Stage != tt.wantStage {
				t.Errorf("expected stage %q, got %q", tt.wantStage, ce.Stage)
			}
		})
	}
}

func TestMisalignedAttemptIsNotSent(t *testing.T) {
	fb := &fakeBackend{commitID: 1}
	_, err := New(fb).Commit(context.Background(), model.Attempt{Quizzes: []model.Quiz{{}}})
	if !errors.Is(err, model.ErrMisaligned) {
		t.Errorf("expected ErrMisaligned, got %v", err)
	}
	if len(fb.committed) != 0 {
		t.Errorf("expected no backend call, got %d", len(fb.committed))
	}
}
