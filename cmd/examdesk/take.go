package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/pavelanni/examdesk/internal/console"
	"github.com/pavelanni/examdesk/internal/model"
	"github.com/pavelanni/examdesk/internal/result"
	"github.com/pavelanni/examdesk/internal/scoring"
	"github.com/pavelanni/examdesk/internal/session"
)

func takeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "take NAME",
		Short: "Take an exam in the terminal",
		Args:  cobra.ExactArgs(1),
		RunE:  runClient(runTake),
	}
	f := cmd.Flags()
	f.IntP("count", "n", 0, "Number of quizzes to ask (0 = all)")
	f.StringP("mode", "m", string(model.ModeGraded), "Session mode (graded, practice)")
	f.IntP("timer", "t", 0, "Countdown in minutes (0 = untimed)")
	f.String("handoff", "", "Resume a session prepared with --handoff-out")
	f.String("handoff-out", "", "Prepare the session, write it to this file and exit")
	addClientFlags(f)
	return cmd
}

func runTake(ctx context.Context, env *clientEnv, args []string) error {
	name := args[0]
	h, err := prepareSession(ctx, env, name)
	if err != nil {
		return err
	}
	if out := env.v.GetString("handoff-out"); out != "" {
		data, err := session.EncodeHandoff(h)
		if err != nil {
			return err
		}
		if err := os.WriteFile(out, data, 0o600); err != nil {
			return fmt.Errorf("write handoff: %w", err)
		}
		env.con.Println(env.con.Tp("QuestionsAvailable", len(h.Attempt.Quizzes)))
		return nil
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()

	m, err := session.NewMachine(h.Attempt, h.Params, scoring.New(env.api), session.WithNotifier(env.con.Notify))
	if err != nil {
		return err
	}
	runErr := make(chan error, 1)
	go func() { runErr <- m.Run(ctx) }()

	res, err := env.con.Take(ctx, m)
	stop()
	<-runErr
	switch {
	case errors.Is(err, console.ErrQuit):
		return nil
	case err != nil:
		return err
	}
	return env.con.Browse(context.Background(), result.NewReport(res.Attempt, res.Score))
}

// prepareSession starts a fresh attempt, or resumes a stored handoff, and
// returns it checked against name.
func prepareSession(ctx context.Context, env *clientEnv, name string) (session.Handoff, error) {
	if path := env.v.GetString("handoff"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return session.Handoff{}, fmt.Errorf("read handoff: %w", err)
		}
		stored, err := session.DecodeHandoff(data)
		if err != nil {
			return session.Handoff{}, err
		}
		return session.Resume(stored, name)
	}

	mode, err := model.ParseMode(env.v.GetString("mode"))
	if err != nil {
		return session.Handoff{}, err
	}
	params := model.SessionParams{
		ExamName:       name,
		RequestedCount: env.v.GetInt("count"),
		Mode:           mode,
		TimerMinutes:   env.v.GetInt("timer"),
	}
	a, err := session.NewInitializer(env.api).Start(ctx, params)
	if err != nil {
		return session.Handoff{}, err
	}
	return session.Handoff{Params: params, Attempt: a}, nil
}
