package model

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jinzhu/copier"
)

// ErrMisaligned is returned when an attempt's answers are not index-aligned
// with its quizzes.
var ErrMisaligned = errors.New("answers not aligned with quizzes")

// ErrRejected is returned when the backend answers a write with false.
var ErrRejected = errors.New("backend rejected the request")

// Mode is the session mode chosen when an exam is launched.
type Mode string

const (
	// ModeGraded hides correct answers until the attempt is committed.
	ModeGraded Mode = "graded"
	// ModePractice allows revealing a question's correct answers during the session.
	ModePractice Mode = "practice"
)

// ParseMode converts user input to a Mode. "exam" is accepted as an alias
// for graded.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "graded", "exam":
		return ModeGraded, nil
	case "practice":
		return ModePractice, nil
	default:
		return "", fmt.Errorf("unknown mode %q", s)
	}
}

// Quiz is one multi-select question.
type Quiz struct {
	Content        string   `json:"content"`
	Options        []string `json:"options"`
	CorrectOptions []string `json:"correct_options"`
	Explanation    string   `json:"explanation,omitempty"`
}

// HasOption reports whether opt is one of the quiz's options.
func (q Quiz) HasOption(opt string) bool {
	for _, o := range q.Options {
		if o == opt {
			return true
		}
	}
	return false
}

// Exam is a named, ordered bank of quizzes.
type Exam struct {
	Name    string `json:"name"`
	Quizzes []Quiz `json:"quizzes"`
}

// Answer holds the options a user selected for one quiz.
type Answer struct {
	Selected []string `json:"selected"`
}

// Has reports whether opt is currently selected.
func (a Answer) Has(opt string) bool {
	for _, s := range a.Selected {
		if s == opt {
			return true
		}
	}
	return false
}

// Answered reports whether at least one option is selected.
func (a Answer) Answered() bool {
	return len(a.Selected) > 0
}

// Attempt is one test-taking instance: the quiz snapshot asked and the user's
// answers, aligned by index. ID is zero until the backend persists it.
type Attempt struct {
	ID          int64     `json:"id"`
	ExamName    string    `json:"exam_name"`
	Quizzes     []Quiz    `json:"quizzes"`
	Answers     []Answer  `json:"answers"`
	SubmittedAt time.Time `json:"submitted_at"`
}

// CheckAligned verifies that every quiz has exactly one answer slot.
func (a Attempt) CheckAligned() error {
	if len(a.Answers) != len(a.Quizzes) {
		return fmt.Errorf("%w: %d answers for %d quizzes", ErrMisaligned, len(a.Answers), len(a.Quizzes))
	}
	return nil
}

// AnsweredCount returns how many quizzes have a non-empty selection.
func (a Attempt) AnsweredCount() int {
	n := 0
	for _, ans := range a.Answers {
		if ans.Answered() {
			n++
		}
	}
	return n
}

// ScoreSummary is the backend-computed aggregate for a committed attempt.
type ScoreSummary struct {
	ID           int64     `json:"id"`
	ExamName     string    `json:"exam_name"`
	CorrectCount int       `json:"correct_count"`
	TotalCount   int       `json:"total_count"`
	ScorePercent string    `json:"score_percent"`
	SubmittedAt  time.Time `json:"submitted_at"`
}

// SessionParams are chosen by the user when launching a session.
type SessionParams struct {
	ExamName       string `json:"exam_name"`
	RequestedCount int    `json:"requested_count"` // 0 means all quizzes
	Mode           Mode   `json:"mode"`
	TimerMinutes   int    `json:"timer_minutes"` // 0 means untimed
}

// Validate checks the parameters before any backend call is made.
func (p SessionParams) Validate() error {
	if strings.TrimSpace(p.ExamName) == "" {
		return errors.New("exam name is required")
	}
	if p.RequestedCount < 0 {
		return fmt.Errorf("requested count must not be negative, got %d", p.RequestedCount)
	}
	if p.TimerMinutes < 0 {
		return fmt.Errorf("timer minutes must not be negative, got %d", p.TimerMinutes)
	}
	switch p.Mode {
	case ModeGraded, ModePractice:
	default:
		return fmt.Errorf("unknown mode %q", p.Mode)
	}
	return nil
}

// Timed reports whether the session has a countdown.
func (p SessionParams) Timed() bool {
	return p.TimerMinutes > 0
}

// Clone returns a deep copy of the attempt that shares no slices with a.
func (a Attempt) Clone() (Attempt, error) {
	out := Attempt{ID: a.ID, ExamName: a.ExamName, SubmittedAt: a.SubmittedAt}
	if err := copier.CopyWithOption(&out.Quizzes, &a.Quizzes, copier.Option{DeepCopy: true}); err != nil {
		return Attempt{}, fmt.Errorf("copy quizzes: %w", err)
	}
	if err := copier.CopyWithOption(&out.Answers, &a.Answers, copier.Option{DeepCopy: true}); err != nil {
		return Attempt{}, fmt.Errorf("copy answers: %w", err)
	}
	return out, nil
}
