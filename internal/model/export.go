package model

import "time"

// HistoryExport is the top-level JSON structure written by `history export`.
type HistoryExport struct {
	GeneratedAt time.Time       `json:"generated_at"`
	Keyword     string          `json:"keyword,omitempty"`
	Results     []AttemptResult `json:"results"`
}

// AttemptResult holds one committed attempt with its score for export.
type AttemptResult struct {
	ID           int64            `json:"id"`
	ExamName     string           `json:"exam_name"`
	SubmittedAt  time.Time        `json:"submitted_at"`
	CorrectCount int              `json:"correct_count"`
	TotalCount   int              `json:"total_count"`
	ScorePercent string           `json:"score_percent"`
	Questions    []QuestionResult `json:"questions"`
}

// QuestionResult holds per-question data for export.
type QuestionResult struct {
	Content        string   `json:"content"`
	Options        []string `json:"options"`
	CorrectOptions []string `json:"correct_options"`
	Selected       []string `json:"selected"`
	Correct        bool     `json:"correct"`
	Explanation    string   `json:"explanation,omitempty"`
}
