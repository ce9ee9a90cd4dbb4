package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/pavelanni/examdesk/internal/backend"
	"github.com/pavelanni/examdesk/internal/catalog"
	"github.com/pavelanni/examdesk/internal/console"
	"github.com/pavelanni/examdesk/internal/editor"
	"github.com/pavelanni/examdesk/internal/llm"
	"github.com/pavelanni/examdesk/internal/llm/prompts"
)

func examsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "exams [keyword]",
		Short: "List exams, or search them by keyword",
		Args:  cobra.MaximumNArgs(1),
		RunE: runClient(func(ctx context.Context, env *clientEnv, args []string) error {
			keyword := ""
			if len(args) == 1 {
				keyword = args[0]
			}
			names, err := catalog.New(env.api).List(ctx, keyword)
			if err != nil {
				return err
			}
			env.con.ShowExams(names)
			return nil
		}),
	}
	addClientFlags(cmd.Flags())
	cmd.AddCommand(examsShowCmd(), examsDeleteCmd(), examsExportCmd(), examsImportCmd())
	return cmd
}

func examsShowCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show NAME",
		Short: "Print an exam with its correct options",
		Args:  cobra.ExactArgs(1),
		RunE: runClient(func(ctx context.Context, env *clientEnv, args []string) error {
			e, err := catalog.New(env.api).Fetch(ctx, args[0])
			if err != nil {
				return err
			}
			env.con.ShowExam(e)
			return nil
		}),
	}
	addClientFlags(cmd.Flags())
	return cmd
}

func examsDeleteCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "delete NAME",
		Short: "Delete an exam",
		Args:  cobra.ExactArgs(1),
		RunE: runClient(func(ctx context.Context, env *clientEnv, args []string) error {
			if !env.v.GetBool("yes") {
				ok, err := env.con.YesNo(ctx, fmt.Sprintf("Delete exam %q?", args[0]))
				if err != nil || !ok {
					return err
				}
			}
			if err := catalog.New(env.api).Delete(ctx, args[0]); err != nil {
				return err
			}
			env.con.Println(env.con.T("ExamDeleted"))
			return nil
		}),
	}
	cmd.Flags().BoolP("yes", "y", false, "Do not ask for confirmation")
	addClientFlags(cmd.Flags())
	return cmd
}

func examsExportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export NAME",
		Short: "Write an exam's quizzes as JSON or legacy text",
		Args:  cobra.ExactArgs(1),
		RunE: runClient(func(ctx context.Context, env *clientEnv, args []string) error {
			e, err := catalog.New(env.api).Fetch(ctx, args[0])
			if err != nil {
				return err
			}

			var data []byte
			switch format := env.v.GetString("format"); format {
			case editor.FormatJSON:
				data, err = json.MarshalIndent(backend.ExamFromModel(e).Quizzes, "", "  ")
				if err != nil {
					return fmt.Errorf("marshal JSON: %w", err)
				}
				data = append(data, '\n')
			case editor.FormatLegacy:
				data = []byte(editor.FormatLegacyText(e.Quizzes))
			default:
				return fmt.Errorf("unknown format %q (json, legacy)", format)
			}
			return writeOutput(env.v.GetString("output"), data)
		}),
	}
	f := cmd.Flags()
	f.StringP("format", "f", editor.FormatJSON, "Output format (json, legacy)")
	f.StringP("output", "o", "-", "Output file path (- for stdout)")
	addClientFlags(f)
	return cmd
}

func examsImportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import NAME FILE...",
		Short: "Prepend quizzes from files to an exam, creating it if needed",
		Args:  cobra.MinimumNArgs(2),
		RunE: runClient(func(ctx context.Context, env *clientEnv, args []string) error {
			cat := catalog.New(env.api)
			d, err := loadDraft(ctx, cat, args[0])
			if err != nil {
				return err
			}
			for _, path := range args[1:] {
				data, err := os.ReadFile(path)
				if err != nil {
					return fmt.Errorf("read %s: %w", path, err)
				}
				n, _, err := d.Import(data)
				if err != nil {
					return fmt.Errorf("import %s: %w", path, err)
				}
				env.con.Println(env.con.Tp("QuizzesImported", n))
			}

			ex, err := explainerFor(ctx, env)
			if err != nil {
				return err
			}
			if ex != nil {
				n, err := d.DraftExplanations(ctx, ex)
				env.con.Println(env.con.Tp("ExplanationsDrafted", n))
				if err != nil {
					return err
				}
			}

			if err := d.Submit(ctx, cat); err != nil {
				return err
			}
			env.con.Println(env.con.T("ExamSaved"))
			return nil
		}),
	}
	addLLMFlags(cmd.Flags())
	addClientFlags(cmd.Flags())
	return cmd
}

func editCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "edit NAME",
		Short: "Edit an exam interactively, creating it if needed",
		Args:  cobra.ExactArgs(1),
		RunE: runClient(func(ctx context.Context, env *clientEnv, args []string) error {
			cat := catalog.New(env.api)
			d, err := loadDraft(ctx, cat, args[0])
			if err != nil {
				return err
			}
			ex, err := explainerFor(ctx, env)
			if err != nil {
				return err
			}
			var explainer editor.Explainer
			if ex != nil {
				explainer = ex
			}
			err = env.con.Edit(ctx, d, cat, explainer)
			if errors.Is(err, console.ErrQuit) {
				return nil
			}
			return err
		}),
	}
	addLLMFlags(cmd.Flags())
	addClientFlags(cmd.Flags())
	return cmd
}

// loadDraft opens name for editing, or starts a new exam if it does not exist.
func loadDraft(ctx context.Context, cat *catalog.Client, name string) (*editor.Draft, error) {
	e, err := cat.Fetch(ctx, name)
	if errors.Is(err, backend.ErrNotFound) {
		return editor.NewDraft(name), nil
	}
	if err != nil {
		return nil, err
	}
	return editor.FromExam(e)
}

func addLLMFlags(f *pflag.FlagSet) {
	f.Bool("explain", false, "Draft missing explanations with an LLM")
	f.String("llm-url", "http://localhost:11434/v1", "OpenAI-compatible API base URL")
	f.String("llm-key", "ollama", "API key for LLM")
	f.String("llm-model", "llama3.2", "LLM model name")
	f.String("explain-variant", string(prompts.VariantBrief), "Explanation prompt variant (brief, detailed)")
}

// explainerFor returns nil unless --explain is set.
func explainerFor(ctx context.Context, env *clientEnv) (*llm.Client, error) {
	if !env.v.GetBool("explain") {
		return nil, nil
	}
	variant := strings.ToLower(strings.TrimSpace(env.v.GetString("explain-variant")))
	c := llm.New(env.v.GetString("llm-url"), env.v.GetString("llm-key"), env.v.GetString("llm-model"), variant)
	if err := c.Ping(ctx); err != nil {
		return nil, fmt.Errorf("LLM health check: %w", err)
	}
	return c, nil
}

func writeOutput(path string, data []byte) error {
	var w io.Writer
	if path == "" || path == "-" {
		w = os.Stdout
	} else {
		f, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("create output file: %w", err)
		}
		defer f.Close()
		w = f
	}
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	return nil
}
