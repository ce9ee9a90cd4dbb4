package backend

import (
	"strings"
	"time"

	"github.com/pavelanni/examdesk/internal/model"
)

// Quiz is the backend's JSON shape for a question. Inside Record.AnsQuizzes
// the CorrectContents field carries the user's selection, not ground truth;
// that conflation stays in this package.
type Quiz struct {
	QuizContent     string   `json:"quizContent"`
	Chooses         []string `json:"chooses"`
	CorrectContents []string `json:"correctContents"`
	Solution        string   `json:"solution"`
}

// Exam is the backend's JSON shape for an exam.
type Exam struct {
	Name    string `json:"name"`
	Quizzes []Quiz `json:"quizzes"`
}

// ModeParam is the start-session request body.
type ModeParam struct {
	Name       string `json:"name"`
	QuizzesNum int    `json:"quizzesNum"`
}

// Record is the backend's JSON shape for an exam attempt.
type Record struct {
	ID          int64  `json:"id"`
	ExamName    string `json:"examName"`
	ExamQuizzes []Quiz `json:"examQuizzes"`
	AnsQuizzes  []Quiz `json:"ansQuizzes"`
	LogTime     string `json:"logTime"`
}

// RecordScore is the backend's JSON shape for a score summary.
type RecordScore struct {
	ID          int64  `json:"id"`
	ExamName    string `json:"examName"`
	CorrectNums int    `json:"correctNums"`
	QuizNums    int    `json:"quizNums"`
	Score       string `json:"score"`
	LogTime     string `json:"logTime"`
}

var logTimeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05",
}

// ParseLogTime parses the timestamp formats the backend is known to emit.
// Unparseable values yield the zero time.
func ParseLogTime(s string) time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}
	}
	for _, layout := range logTimeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}

// FormatLogTime renders t for the wire; the zero time becomes "".
func FormatLogTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(time.RFC3339Nano)
}

// QuizFromModel converts a model quiz to its wire form.
func QuizFromModel(q model.Quiz) Quiz {
	return Quiz{
		QuizContent:     q.Content,
		Chooses:         nonNil(q.Options),
		CorrectContents: nonNil(q.CorrectOptions),
		Solution:        q.Explanation,
	}
}

// ToModel converts a wire quiz to the model.
func (q Quiz) ToModel() model.Quiz {
	return model.Quiz{
		Content:        q.QuizContent,
		Options:        nonNil(q.Chooses),
		CorrectOptions: nonNil(q.CorrectContents),
		Explanation:    q.Solution,
	}
}

// ExamFromModel converts a model exam to its wire form.
func ExamFromModel(e model.Exam) Exam {
	out := Exam{Name: e.Name, Quizzes: make([]Quiz, 0, len(e.Quizzes))}
	for _, q := range e.Quizzes {
		out.Quizzes = append(out.Quizzes, QuizFromModel(q))
	}
	return out
}

// ToModel converts a wire exam to the model.
func (e Exam) ToModel() model.Exam {
	out := model.Exam{Name: e.Name, Quizzes: make([]model.Quiz, 0, len(e.Quizzes))}
	for _, q := range e.Quizzes {
		out.Quizzes = append(out.Quizzes, q.ToModel())
	}
	return out
}

// RecordFromModel converts an attempt to its wire form. Each answer becomes a
// copy of its quiz whose CorrectContents holds the selection.
func RecordFromModel(a model.Attempt) Record {
	r := Record{
		ID:          a.ID,
		ExamName:    a.ExamName,
		ExamQuizzes: make([]Quiz, 0, len(a.Quizzes)),
		AnsQuizzes:  make([]Quiz, 0, len(a.Answers)),
		LogTime:     FormatLogTime(a.SubmittedAt),
	}
	for _, q := range a.Quizzes {
		r.ExamQuizzes = append(r.ExamQuizzes, QuizFromModel(q))
	}
	for i, ans := range a.Answers {
		var wq Quiz
		if i < len(a.Quizzes) {
			wq = QuizFromModel(a.Quizzes[i])
		}
		wq.CorrectContents = nonNil(ans.Selected)
		r.AnsQuizzes = append(r.AnsQuizzes, wq)
	}
	return r
}

// ToModel converts a wire record to an attempt. Only CorrectContents of each
// AnsQuizzes entry is kept, as the user's selection.
func (r Record) ToModel() model.Attempt {
	a := model.Attempt{
		ID:          r.ID,
		ExamName:    r.ExamName,
		Quizzes:     make([]model.Quiz, 0, len(r.ExamQuizzes)),
		Answers:     make([]model.Answer, 0, len(r.AnsQuizzes)),
		SubmittedAt: ParseLogTime(r.LogTime),
	}
	for _, q := range r.ExamQuizzes {
		a.Quizzes = append(a.Quizzes, q.ToModel())
	}
	for _, q := range r.AnsQuizzes {
		a.Answers = append(a.Answers, model.Answer{Selected: nonNil(q.CorrectContents)})
	}
	return a
}

// ScoreFromModel converts a score summary to its wire form.
func ScoreFromModel(s model.ScoreSummary) RecordScore {
	return RecordScore{
		ID:          s.ID,
		ExamName:    s.ExamName,
		CorrectNums: s.CorrectCount,
		QuizNums:    s.TotalCount,
		Score:       s.ScorePercent,
		LogTime:     FormatLogTime(s.SubmittedAt),
	}
}

// ToModel converts a wire score to the model.
func (s RecordScore) ToModel() model.ScoreSummary {
	return model.ScoreSummary{
		ID:           s.ID,
		ExamName:     s.ExamName,
		CorrectCount: s.CorrectNums,
		TotalCount:   s.QuizNums,
		ScorePercent: s.Score,
		SubmittedAt:  ParseLogTime(s.LogTime),
	}
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	out := make([]string, len(s))
	copy(out, s)
	return out
}
