package store

import (
	"database/sql"
	"fmt"

	"github.com/pavelanni/examdesk/internal/model"
)

// SetMetadata upserts a key-value pair in the exam_metadata table.
func (s *Store) SetMetadata(key, value string) error {
	_, err := s.db.Exec(
		`INSERT INTO exam_metadata (key, value) VALUES (?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		key, value,
	)
	return err
}

// GetMetadata returns the value for a metadata key.
// Returns empty string and nil error if the key is missing.
func (s *Store) GetMetadata(key string) (string, error) {
	var value string
	err := s.db.QueryRow(`SELECT value FROM exam_metadata WHERE key = ?`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", nil
	}
	return value, err
}

const importedHashPrefix = "imported_hash:"

// GetImportedFileHash returns the content hash recorded for a seed file,
// or "" if the file was never imported.
func (s *Store) GetImportedFileHash(path string) (string, error) {
	return s.GetMetadata(importedHashPrefix + path)
}

// SetImportedFileHash records the content hash of an imported seed file.
func (s *Store) SetImportedFileHash(path, hash string) error {
	return s.SetMetadata(importedHashPrefix+path, hash)
}

// SetSettings stores every Settings field as a metadata row.
func (s *Store) SetSettings(st model.Settings) error {
	for key, value := range st.Pairs() {
		if err := s.SetMetadata(key, value); err != nil {
			return fmt.Errorf("set %s: %w", key, err)
		}
	}
	return nil
}

// GetSettings reads the persisted settings. Missing keys keep their defaults.
func (s *Store) GetSettings() (model.Settings, error) {
	st := model.DefaultSettings()
	for _, key := range model.SettingKeys() {
		v, err := s.GetMetadata(key)
		if err != nil {
			return st, err
		}
		if v == "" {
			continue
		}
		if err := st.Set(key, v); err != nil {
			return st, fmt.Errorf("stored %s: %w", key, err)
		}
	}
	return st, nil
}
