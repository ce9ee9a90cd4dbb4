package model

import (
	"errors"
	"testing"
)

func TestParseMode(t *testing.T) {
	tests := []struct {
		in      string
		want    Mode
		wantErr bool
	}{
		{"", ModeGraded, false},
		{"graded", ModeGraded, false},
		{"exam", ModeGraded, false},
		{" Practice ", ModePractice, false},
		{"review", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseMode(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseMode(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseMode(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestSessionParamsValidate(t *testing.T) {
	tests := []struct {
		name    string
		params  SessionParams
		wantErr bool
	}{
		{"valid untimed", SessionParams{ExamName: "Go", Mode: ModeGraded}, false},
		{"valid timed practice", SessionParams{ExamName: "Go", Mode: ModePractice, TimerMinutes: 5, RequestedCount: 3}, false},
		{"blank name", SessionParams{ExamName: "  ", Mode: ModeGraded}, true},
		{"negative count", SessionParams{ExamName: "Go", Mode: ModeGraded, RequestedCount: -1}, true},
		{"negative timer", SessionParams{ExamName: "Go", Mode: ModeGraded, TimerMinutes: -1}, true},
		{"unknown mode", SessionParams{ExamName: "Go", Mode: "quiz"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.params.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestAttemptCheckAligned(t *testing.T) {
	a := Attempt{
		Quizzes: []Quiz{{Content: "Q1"}, {Content: "Q2"}},
		Answers: []Answer{{}},
	}
	if err := a.CheckAligned(); !errors.Is(err, ErrMisaligned) {
		t.Fatalf("expected ErrMisaligned, got %v", err)
	}
	a.Answers = append(a.Answers, Answer{Selected: []string{"A"}})
	if err := a.CheckAligned(); err != nil {
		t.Fatalf("CheckAligned: %v", err)
	}
	if got := a.AnsweredCount(); got != 1 {
		t.Errorf("expected 1 answered, got %d", got)
	}
}

func TestAttemptCloneDoesNotAlias(t *testing.T) {
	a := Attempt{
		ID:       4,
		ExamName: "Go",
		Quizzes:  []Quiz{{Content: "Q1", Options: []string{"A", "B"}, CorrectOptions: []string{"A"}}},
		Answers:  []Answer{{Selected: []string{"B"}}},
	}
	c, err := a.Clone()
	if err != nil {
		t.Fatalf("Clone: %v", err)
	}
	c.Answers[0].Selected[0] = "A"
	c.Quizzes[0].CorrectOptions[0] = "B"
	if a.Answers[0].Selected[0] != "B" {
		t.Errorf("clone aliases answers: %v", a.Answers[0].Selected)
	}
	if a.Quizzes[0].CorrectOptions[0] != "A" {
		t.Errorf("clone aliases quizzes: %v", a.Quizzes[0].CorrectOptions)
	}
	if c.ID != 4 || c.ExamName != "Go" {
		t.Errorf("expected scalar fields copied, got %+v", c)
	}
}
