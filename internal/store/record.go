package store

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/pavelanni/examdesk/internal/model"
)

// InsertRecord stores a committed attempt together with its score and
// returns the new record ID. The attempt's own ID is ignored.
func (s *Store) InsertRecord(a model.Attempt, sc model.ScoreSummary) (int64, error) {
	if err := a.CheckAligned(); err != nil {
		return 0, err
	}
	quizzes, err := json.Marshal(a.Quizzes)
	if err != nil {
		return 0, fmt.Errorf("encode quizzes: %w", err)
	}
	answers, err := json.Marshal(a.Answers)
	if err != nil {
		return 0, fmt.Errorf("encode answers: %w", err)
	}
	res, err := s.db.Exec(
		`INSERT INTO records (exam_name, exam_quizzes, answers, correct_count, total_count, score, submitted_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		a.ExamName, string(quizzes), string(answers), sc.CorrectCount, sc.TotalCount, sc.ScorePercent, a.SubmittedAt.UTC(),
	)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// GetRecord returns the stored attempt.
// Returns nil and nil error if the record does not exist.
func (s *Store) GetRecord(id int64) (*model.Attempt, error) {
	a := &model.Attempt{ID: id}
	var quizzes, answers string
	err := s.db.QueryRow(
		`SELECT exam_name, exam_quizzes, answers, submitted_at FROM records WHERE id = ?`, id,
	).Scan(&a.ExamName, &quizzes, &answers, &a.SubmittedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(quizzes), &a.Quizzes); err != nil {
		return nil, fmt.Errorf("decode quizzes: %w", err)
	}
	if err := json.Unmarshal([]byte(answers), &a.Answers); err != nil {
		return nil, fmt.Errorf("decode answers: %w", err)
	}
	return a, nil
}

const scoreColumns = `id, exam_name, correct_count, total_count, score, submitted_at`

func scanScore(row interface{ Scan(...any) error }) (model.ScoreSummary, error) {
	var sc model.ScoreSummary
	err := row.Scan(&sc.ID, &sc.ExamName, &sc.CorrectCount, &sc.TotalCount, &sc.ScorePercent, &sc.SubmittedAt)
	return sc, err
}

// GetScore returns the score summary of one record.
// Returns nil and nil error if the record does not exist.
func (s *Store) GetScore(id int64) (*model.ScoreSummary, error) {
	sc, err := scanScore(s.db.QueryRow(`SELECT `+scoreColumns+` FROM records WHERE id = ?`, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &sc, nil
}

// SearchScores returns score summaries whose exam name contains keyword,
// newest first. An empty keyword matches every record.
func (s *Store) SearchScores(keyword string) ([]model.ScoreSummary, error) {
	query := `SELECT ` + scoreColumns + ` FROM records`
	var args []any
	if keyword != "" {
		query += ` WHERE exam_name LIKE ? ESCAPE '\'`
		args = append(args, likePattern(keyword))
	}
	query += ` ORDER BY submitted_at DESC, id DESC`

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	scores := []model.ScoreSummary{}
	for rows.Next() {
		sc, err := scanScore(rows)
		if err != nil {
			return nil, err
		}
		scores = append(scores, sc)
	}
	return scores, rows.Err()
}

// DeleteRecord removes a record and its score. Reports whether it existed.
func (s *Store) DeleteRecord(id int64) (bool, error) {
	res, err := s.db.Exec(`DELETE FROM records WHERE id = ?`, id)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}
