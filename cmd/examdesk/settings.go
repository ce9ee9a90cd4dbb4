package main

import (
	"context"
	"fmt"
	"net/url"

	"github.com/spf13/cobra"

	appI18n "github.com/pavelanni/examdesk/internal/i18n"
	"github.com/pavelanni/examdesk/internal/model"
)

func settingsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "settings",
		Short: "Show client settings",
		Args:  cobra.NoArgs,
		RunE: runClient(func(_ context.Context, env *clientEnv, _ []string) error {
			pairs := env.prefs.Pairs()
			for _, k := range model.SettingKeys() {
				env.con.Printf("%-15s %s\n", k, pairs[k])
			}
			return nil
		}),
	}
	addClientFlags(cmd.Flags())
	cmd.AddCommand(settingsGetCmd(), settingsSetCmd())
	return cmd
}

func settingsGetCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "get KEY",
		Short: "Print one setting",
		Args:  cobra.ExactArgs(1),
		RunE: runClient(func(_ context.Context, env *clientEnv, args []string) error {
			v, err := env.prefs.Get(args[0])
			if err != nil {
				return err
			}
			env.con.Println(v)
			return nil
		}),
	}
	addClientFlags(cmd.Flags())
	return cmd
}

func settingsSetCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "set KEY VALUE",
		Short: "Change one setting (api_url, theme, language, toast_position)",
		Args:  cobra.ExactArgs(2),
		RunE: runClient(func(_ context.Context, env *clientEnv, args []string) error {
			key, value := args[0], args[1]
			switch key {
			case model.SettingAPIURL:
				if _, err := url.ParseRequestURI(value); err != nil {
					return fmt.Errorf("invalid API URL: %w", err)
				}
			case model.SettingLanguage:
				value = appI18n.Normalize(value)
			}
			prefs := env.prefs
			if err := prefs.Set(key, value); err != nil {
				return err
			}
			if err := env.settings.SetSettings(prefs); err != nil {
				return fmt.Errorf("save settings: %w", err)
			}
			env.con.Printf("%s = %s\n", key, value)
			return nil
		}),
	}
	addClientFlags(cmd.Flags())
	return cmd
}
