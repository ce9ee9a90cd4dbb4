package main

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/spf13/cobra"

	"github.com/pavelanni/examdesk/internal/handler"
	appI18n "github.com/pavelanni/examdesk/internal/i18n"
	"github.com/pavelanni/examdesk/internal/store"
)

func serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run a local exam backend speaking the REST API",
		RunE:  runServe,
	}
	f := cmd.Flags()
	f.StringP("addr", "a", ":12058", "HTTP listen address")
	f.String("db", "examdesk.db", "SQLite database path")
	f.StringSliceP("exams", "e", nil, "Exam files to import on start, JSON or legacy text (repeatable)")
	f.Bool("shuffle", true, "Randomize quiz order when a session starts")
	f.StringSlice("cors-origins", nil, "Allowed CORS origins (default any)")
	f.StringP("lang", "l", "en", "Fallback language for error messages (en, zh-TW)")
	addLogFlags(f)
	return cmd
}

func runServe(cmd *cobra.Command, _ []string) error {
	setupLogging(cmd)
	v := viperForCmd(cmd)

	db, err := store.New(v.GetString("db"))
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	if err := handler.LoadExams(db, v.GetStringSlice("exams")); err != nil {
		return fmt.Errorf("load exams: %w", err)
	}

	lang := appI18n.Normalize(v.GetString("lang"))
	if err := appI18n.Init(lang); err != nil {
		return fmt.Errorf("init i18n: %w", err)
	}

	cfg := handler.Config{
		Shuffle:        v.GetBool("shuffle"),
		AllowedOrigins: v.GetStringSlice("cors-origins"),
		Lang:           lang,
	}
	h, err := handler.New(db, cfg)
	if err != nil {
		return fmt.Errorf("create handler: %w", err)
	}

	count, err := db.ExamCount()
	if err != nil {
		return fmt.Errorf("count exams: %w", err)
	}
	addr := v.GetString("addr")
	slog.Info("starting server",
		"addr", addr,
		"db", v.GetString("db"),
		"exams", count,
		"shuffle", cfg.Shuffle,
		"lang", lang,
	)
	return http.ListenAndServe(addr, h.Router())
}
