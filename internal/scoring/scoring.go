// Package scoring commits finished attempts and fetches their score.
package scoring

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/pavelanni/examdesk/internal/model"
)

// Commit stages reported in CommitError.
const (
	StageSubmit = "submit"
	StageScore  = "score"
)

// CommitError reports a failed commit. The attempt was either not persisted
// or persisted without a readable score; in both cases the whole commit must
// be retried.
type CommitError struct {
	Stage string
	Err   error
}

func (e *CommitError) Error() string {
	return fmt.Sprintf("commit attempt (%s): %v", e.Stage, e.Err)
}

func (e *CommitError) Unwrap() error {
	return e.Err
}

// Backend is the subset of the REST client the scoring client needs.
type Backend interface {
	CommitAttempt(ctx context.Context, a model.Attempt) (model.Attempt, error)
	GetScore(ctx context.Context, id int64) (model.ScoreSummary, error)
}

// Result is a persisted attempt together with its score.
type Result struct {
	Attempt model.Attempt
	Score   model.ScoreSummary
}

// Client submits attempts for scoring.
type Client struct {
	backend Backend
}

// New creates a scoring client.
func New(b Backend) *Client {
	return &Client{backend: b}
}

// Commit submits the attempt and reads back its score summary.
func (c *Client) Commit(ctx context.Context, a model.Attempt) (Result, error) {
	if err := a.CheckAligned(); err != nil {
		return Result{}, &CommitError{Stage: StageSubmit, Err: err}
	}

	saved, err := c.backend.CommitAttempt(ctx, a)
	if err != nil {
		return Result{}, &CommitError{Stage: StageSubmit, Err: err}
	}
	if saved.ID == 0 {
		return Result{}, &CommitError{Stage: StageSubmit, Err: errors.New("backend did not assign an id")}
	}

	score, err := c.backend.GetScore(ctx, saved.ID)
	if err != nil {
		return Result{}, &CommitError{Stage: StageScore, Err: err}
	}

	slog.Info("attempt committed", "id", saved.ID, "exam", saved.ExamName, "score", score.ScorePercent)
	return Result{Attempt: saved, Score: score}, nil
}
