package main

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/pavelanni/examdesk/internal/history"
)

func historyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history [keyword]",
		Short: "List past attempts, or search them by exam name",
		Args:  cobra.MaximumNArgs(1),
		RunE: runClient(func(ctx context.Context, env *clientEnv, args []string) error {
			hc := history.New(env.api)
			keyword := ""
			if len(args) == 1 {
				keyword = args[0]
			}
			scores, err := hc.Search(ctx, keyword)
			if err != nil {
				return err
			}
			env.con.ShowHistory(scores)
			return nil
		}),
	}
	addClientFlags(cmd.Flags())
	cmd.AddCommand(historyOpenCmd(), historyDeleteCmd(), historyExportCmd())
	return cmd
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid record id %q", s)
	}
	return id, nil
}

func historyOpenCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "open ID",
		Short: "Review a past attempt",
		Args:  cobra.ExactArgs(1),
		RunE: runClient(func(ctx context.Context, env *clientEnv, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			r, err := history.New(env.api).Open(ctx, id)
			if err != nil {
				return err
			}
			return env.con.Browse(ctx, r)
		}),
	}
	addClientFlags(cmd.Flags())
	return cmd
}

func historyDeleteCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "delete ID",
		Short: "Delete a past attempt and its score",
		Args:  cobra.ExactArgs(1),
		RunE: runClient(func(ctx context.Context, env *clientEnv, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			if !env.v.GetBool("yes") {
				ok, err := env.con.YesNo(ctx, fmt.Sprintf("Delete record %d?", id))
				if err != nil || !ok {
					return err
				}
			}
			if err := history.New(env.api).Delete(ctx, id); err != nil {
				return err
			}
			env.con.Println(env.con.T("RecordDeleted"))
			return nil
		}),
	}
	cmd.Flags().BoolP("yes", "y", false, "Do not ask for confirmation")
	addClientFlags(cmd.Flags())
	return cmd
}

func historyExportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export [keyword]",
		Short: "Export past attempts with every question as JSON",
		Args:  cobra.MaximumNArgs(1),
		RunE: runClient(func(ctx context.Context, env *clientEnv, args []string) error {
			keyword := ""
			if len(args) == 1 {
				keyword = args[0]
			}
			export, err := history.New(env.api).Export(ctx, keyword, time.Now().UTC())
			if err != nil {
				return err
			}
			data, err := json.MarshalIndent(export, "", "  ")
			if err != nil {
				return fmt.Errorf("marshal JSON: %w", err)
			}
			return writeOutput(env.v.GetString("output"), append(data, '\n'))
		}),
	}
	cmd.Flags().StringP("output", "o", "-", "Output file path (- for stdout)")
	addClientFlags(cmd.Flags())
	return cmd
}
