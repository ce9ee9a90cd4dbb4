package handler

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/pavelanni/examdesk/internal/editor"
	"github.com/pavelanni/examdesk/internal/model"
	"github.com/pavelanni/examdesk/internal/store"
)

// LoadExams imports seed files into the store. Each file holds one exam's
// quizzes, as JSON or in the legacy text format; the exam is named after the
// file without its extension. Files already imported with the same content are
// skipped, and a changed file replaces the exam.
func LoadExams(db *store.Store, paths []string) error {
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("read %s: %w", path, err)
		}

		hash := sha256sum(data)
		storedHash, err := db.GetImportedFileHash(path)
		if err != nil {
			return fmt.Errorf("check import status for %s: %w", path, err)
		}
		if storedHash == hash {
			slog.Info("exam file unchanged, skipping", "path", path)
			continue
		}

		quizzes, format, err := editor.Import(data)
		if err != nil {
			return fmt.Errorf("parse %s: %w", path, err)
		}
		e := model.Exam{Name: examNameFromPath(path), Quizzes: quizzes}
		if err := editor.ValidateExam(e); err != nil {
			return fmt.Errorf("validate %s: %w", path, err)
		}
		if err := db.UpsertExam(e); err != nil {
			return fmt.Errorf("store exam from %s: %w", path, err)
		}

		if err := db.SetImportedFileHash(path, hash); err != nil {
			return fmt.Errorf("record import for %s: %w", path, err)
		}
		slog.Info("imported exam", "path", path, "name", e.Name, "format", format, "quizzes", len(quizzes),
			"replaced", storedHash != "")
	}
	return nil
}

func examNameFromPath(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

func sha256sum(data []byte) string {
	h := sha256.Sum256(data)
	return hex.EncodeToString(h[:])
}
