// Package session starts exam sessions and runs them to commit.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/pavelanni/examdesk/internal/model"
)

// SessionInitializationError means a session could not be started or resumed.
// It is fatal to the session: callers go back to the catalog.
type SessionInitializationError struct {
	ExamName string
	Err      error
}

func (e *SessionInitializationError) Error() string {
	return fmt.Sprintf("initialize session %q: %v", e.ExamName, e.Err)
}

func (e *SessionInitializationError) Unwrap() error {
	return e.Err
}

// Starter asks the backend for a sized quiz selection.
type Starter interface {
	StartSession(ctx context.Context, examName string, requestedCount int) (model.Attempt, error)
}

// Initializer materializes fresh attempts.
type Initializer struct {
	backend Starter
}

// NewInitializer creates an initializer over the given backend.
func NewInitializer(b Starter) *Initializer {
	return &Initializer{backend: b}
}

// Start validates params, fetches the quiz selection, and returns an attempt
// with every answer blank.
func (in *Initializer) Start(ctx context.Context, params model.SessionParams) (model.Attempt, error) {
	fail := func(err error) (model.Attempt, error) {
		return model.Attempt{}, &SessionInitializationError{ExamName: params.ExamName, Err: err}
	}
	if err := params.Validate(); err != nil {
		return fail(err)
	}

	a, err := in.backend.StartSession(ctx, params.ExamName, params.RequestedCount)
	if err != nil {
		return fail(err)
	}
	if a.ExamName != "" && a.ExamName != params.ExamName {
		return fail(fmt.Errorf("backend returned exam %q", a.ExamName))
	}
	a.ExamName = params.ExamName
	if err := normalize(&a); err != nil {
		return fail(err)
	}

	slog.Info("session initialized", "exam", a.ExamName, "quizzes", len(a.Quizzes), "mode", params.Mode)
	return a, nil
}

// Handoff is what the launch screen passes to the session screen.
type Handoff struct {
	Params  model.SessionParams `json:"params"`
	Attempt model.Attempt       `json:"attempt"`
}

// EncodeHandoff serializes a handoff for storage between screens.
func EncodeHandoff(h Handoff) ([]byte, error) {
	data, err := json.Marshal(h)
	if err != nil {
		return nil, fmt.Errorf("encode handoff: %w", err)
	}
	return data, nil
}

// DecodeHandoff reverses EncodeHandoff. Empty input yields a nil handoff.
func DecodeHandoff(data []byte) (*Handoff, error) {
	if len(data) == 0 {
		return nil, nil
	}
	var h Handoff
	if err := json.Unmarshal(data, &h); err != nil {
		return nil, fmt.Errorf("decode handoff: %w", err)
	}
	return &h, nil
}

// Resume checks a stored handoff against the exam named by the route and
// returns it with a normalized attempt.
func Resume(h *Handoff, routeExamName string) (Handoff, error) {
	fail := func(err error) (Handoff, error) {
		return Handoff{}, &SessionInitializationError{ExamName: routeExamName, Err: err}
	}
	if h == nil {
		return fail(errors.New("no session parameters"))
	}
	if err := h.Params.Validate(); err != nil {
		return fail(err)
	}
	if h.Params.ExamName != routeExamName {
		return fail(fmt.Errorf("session is for exam %q", h.Params.ExamName))
	}
	if h.Attempt.ExamName != "" && h.Attempt.ExamName != routeExamName {
		return fail(fmt.Errorf("attempt is for exam %q", h.Attempt.ExamName))
	}

	out := Handoff{Params: h.Params}
	a, err := h.Attempt.Clone()
	if err != nil {
		return fail(err)
	}
	a.ExamName = routeExamName
	if err := normalize(&a); err != nil {
		return fail(err)
	}
	out.Attempt = a
	return out, nil
}

// normalize clears every selection and sizes answers to the quiz list. The
// backend may send pre-seeded selections; they are never kept.
func normalize(a *model.Attempt) error {
	if len(a.Quizzes) == 0 {
		return errors.New("exam has no quizzes")
	}
	a.ID = 0
	a.SubmittedAt = time.Time{}
	a.Answers = make([]model.Answer, len(a.Quizzes))
	for i := range a.Answers {
		a.Answers[i] = model.Answer{Selected: []string{}}
	}
	return a.CheckAligned()
}
