package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/pavelanni/examdesk/internal/model"

	_ "modernc.org/sqlite"
)

type Store struct {
	db *sql.DB
}

func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	// A second connection to ":memory:" would see an empty database.
	db.SetMaxOpenConns(1)
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}
	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS exams (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL UNIQUE,
		created_at DATETIME NOT NULL,
		updated_at DATETIME NOT NULL
	);

	CREATE TABLE IF NOT EXISTS quizzes (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		exam_id INTEGER NOT NULL,
		position INTEGER NOT NULL,
		content TEXT NOT NULL,
		options TEXT NOT NULL DEFAULT '[]',
		correct_options TEXT NOT NULL DEFAULT '[]',
		explanation TEXT NOT NULL DEFAULT '',
		FOREIGN KEY (exam_id) REFERENCES exams(id)
	);

	CREATE TABLE IF NOT EXISTS records (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		exam_name TEXT NOT NULL,
		exam_quizzes TEXT NOT NULL,
		answers TEXT NOT NULL,
		correct_count INTEGER NOT NULL DEFAULT 0,
		total_count INTEGER NOT NULL DEFAULT 0,
		score TEXT NOT NULL DEFAULT '0.00',
		submitted_at DATETIME NOT NULL
	);

	CREATE TABLE IF NOT EXISTS exam_metadata (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);
	`
	_, err := s.db.Exec(schema)
	return err
}

// ListExamNames returns all exam names in creation order.
func (s *Store) ListExamNames() ([]string, error) {
	return s.queryNames(`SELECT name FROM exams ORDER BY id`)
}

// SearchExamNames returns exam names containing keyword, case-insensitively.
func (s *Store) SearchExamNames(keyword string) ([]string, error) {
	return s.queryNames(`SELECT name FROM exams WHERE name LIKE ? ESCAPE '\' ORDER BY id`, likePattern(keyword))
}

func (s *Store) queryNames(query string, args ...any) ([]string, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	names := []string{}
	for rows.Next() {
		var n string
		if err := rows.Scan(&n); err != nil {
			return nil, err
		}
		names = append(names, n)
	}
	return names, rows.Err()
}

// ExamExists reports whether an exam with this exact name is stored.
func (s *Store) ExamExists(name string) (bool, error) {
	var n int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM exams WHERE name = ?`, name).Scan(&n)
	return n > 0, err
}

// GetExam returns an exam with its quizzes in order.
// Returns nil and nil error if the exam does not exist.
func (s *Store) GetExam(name string) (*model.Exam, error) {
	var id int64
	err := s.db.QueryRow(`SELECT id FROM exams WHERE name = ?`, name).Scan(&id)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	rows, err := s.db.Query(
		`SELECT content, options, correct_options, explanation FROM quizzes
		 WHERE exam_id = ? ORDER BY position`, id,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	e := &model.Exam{Name: name, Quizzes: []model.Quiz{}}
	for rows.Next() {
		var q model.Quiz
		var opts, correct string
		if err := rows.Scan(&q.Content, &opts, &correct, &q.Explanation); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(opts), &q.Options); err != nil {
			return nil, fmt.Errorf("decode options: %w", err)
		}
		if err := json.Unmarshal([]byte(correct), &q.CorrectOptions); err != nil {
			return nil, fmt.Errorf("decode correct options: %w", err)
		}
		e.Quizzes = append(e.Quizzes, q)
	}
	return e, rows.Err()
}

// UpsertExam creates the exam or replaces all of its quizzes.
func (s *Store) UpsertExam(e model.Exam) error {
	if strings.TrimSpace(e.Name) == "" {
		return errors.New("exam name is required")
	}
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	now := time.Now().UTC()
	if _, err := tx.Exec(
		`INSERT INTO exams (name, created_at, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(name) DO UPDATE SET updated_at = ?`,
		e.Name, now, now, now,
	); err != nil {
		return fmt.Errorf("upsert exam: %w", err)
	}
	var id int64
	if err := tx.QueryRow(`SELECT id FROM exams WHERE name = ?`, e.Name).Scan(&id); err != nil {
		return err
	}
	if _, err := tx.Exec(`DELETE FROM quizzes WHERE exam_id = ?`, id); err != nil {
		return fmt.Errorf("clear quizzes: %w", err)
	}
	for i, q := range e.Quizzes {
		opts, err := json.Marshal(nonNil(q.Options))
		if err != nil {
			return err
		}
		correct, err := json.Marshal(nonNil(q.CorrectOptions))
		if err != nil {
			return err
		}
		if _, err := tx.Exec(
			`INSERT INTO quizzes (exam_id, position, content, options, correct_options, explanation)
			 VALUES (?, ?, ?, ?, ?, ?)`,
			id, i, q.Content, string(opts), string(correct), q.Explanation,
		); err != nil {
			return fmt.Errorf("insert quiz %d: %w", i, err)
		}
	}
	return tx.Commit()
}

// DeleteExam removes an exam and its quizzes. Committed records keep their
// own quiz snapshot and are not touched. Reports whether anything was deleted.
func (s *Store) DeleteExam(name string) (bool, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return false, err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM quizzes WHERE exam_id IN (SELECT id FROM exams WHERE name = ?)`, name); err != nil {
		return false, err
	}
	res, err := tx.Exec(`DELETE FROM exams WHERE name = ?`, name)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, tx.Commit()
}

// ExamCount returns the number of stored exams.
func (s *Store) ExamCount() (int, error) {
	var n int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM exams`).Scan(&n)
	return n, err
}

func likePattern(keyword string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(keyword) + "%"
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
