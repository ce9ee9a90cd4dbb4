package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/pavelanni/examdesk/internal/backend"
	"github.com/pavelanni/examdesk/internal/console"
	appI18n "github.com/pavelanni/examdesk/internal/i18n"
	"github.com/pavelanni/examdesk/internal/model"
	"github.com/pavelanni/examdesk/internal/store"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "examdesk",
		Short:        "Exam practice desk: browse exam banks, take timed quizzes, review results",
		SilenceUsage: true,
	}
	root.AddCommand(serveCmd(), examsCmd(), editCmd(), takeCmd(), historyCmd(), settingsCmd())
	return root
}

func addLogFlags(f *pflag.FlagSet) {
	f.String("log-level", "warn", "Log level (debug, info, warn, error)")
	f.String("log-format", "text", "Log format (text, json)")
}

// addClientFlags registers the flags every backend-facing command shares.
func addClientFlags(f *pflag.FlagSet) {
	f.String("api-url", "", "Backend API base URL (default: settings, then "+backend.DefaultBaseURL+")")
	f.String("settings-db", defaultSettingsPath(), "SQLite file holding client settings")
	f.StringP("lang", "l", "", "UI language (en, zh-TW)")
	f.String("theme", "", "Console theme (light, dark, plain)")
	addLogFlags(f)
}

func defaultSettingsPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "examdesk-settings.db"
	}
	return filepath.Join(dir, "examdesk", "settings.db")
}

func setupLogging(cmd *cobra.Command) {
	v := viperForCmd(cmd)

	var logLevel slog.Level
	switch strings.ToLower(v.GetString("log-level")) {
	case "debug":
		logLevel = slog.LevelDebug
	case "info":
		logLevel = slog.LevelInfo
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelWarn
	}
	handlerOpts := &slog.HandlerOptions{Level: logLevel}
	var logHandler slog.Handler
	switch strings.ToLower(v.GetString("log-format")) {
	case "json":
		logHandler = slog.NewJSONHandler(os.Stderr, handlerOpts)
	default:
		logHandler = slog.NewTextHandler(os.Stderr, handlerOpts)
	}
	slog.SetDefault(slog.New(logHandler))
}

// viperForCmd binds a command's flags and environment to a fresh viper instance.
func viperForCmd(cmd *cobra.Command) *viper.Viper {
	v := viper.New()
	_ = v.BindPFlags(cmd.Flags())

	v.SetEnvPrefix("EXAMDESK")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	v.SetConfigName("examdesk")
	v.AddConfigPath(".")
	v.AddConfigPath("$HOME/.config/examdesk")
	v.AddConfigPath("/etc/examdesk")
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			slog.Warn("error reading config file", "error", err)
		}
	} else {
		slog.Debug("loaded config file", "path", v.ConfigFileUsed())
	}

	return v
}

// clientEnv is what backend-facing commands run with.
type clientEnv struct {
	v        *viper.Viper
	settings *store.Store
	prefs    model.Settings
	api      *backend.Client
	con      *console.Console
}

func openSettings(path string) (*store.Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create settings dir: %w", err)
		}
	}
	return store.New(path)
}

func newClientEnv(cmd *cobra.Command) (*clientEnv, error) {
	setupLogging(cmd)
	v := viperForCmd(cmd)

	st, err := openSettings(v.GetString("settings-db"))
	if err != nil {
		return nil, fmt.Errorf("open settings: %w", err)
	}
	prefs, err := st.GetSettings()
	if err != nil {
		st.Close()
		return nil, fmt.Errorf("read settings: %w", err)
	}

	apiURL := prefs.APIURL
	if v.IsSet("api-url") && v.GetString("api-url") != "" {
		apiURL = v.GetString("api-url")
	}
	lang := prefs.Language
	if v.IsSet("lang") && v.GetString("lang") != "" {
		lang = appI18n.Normalize(v.GetString("lang"))
	}
	theme := prefs.Theme
	if v.IsSet("theme") && v.GetString("theme") != "" {
		theme = v.GetString("theme")
	}

	if err := appI18n.Init(lang); err != nil {
		st.Close()
		return nil, fmt.Errorf("init i18n: %w", err)
	}
	api := backend.New(apiURL, nil)
	slog.Debug("client configured", "api_url", api.BaseURL(), "lang", lang, "theme", theme)

	return &clientEnv{
		v:        v,
		settings: st,
		prefs:    prefs,
		api:      api,
		con:      console.New(os.Stdin, os.Stdout, lang, theme),
	}, nil
}

func (e *clientEnv) Close() {
	if err := e.settings.Close(); err != nil {
		slog.Warn("close settings", "error", err)
	}
}

// runClient wraps a RunE body with a configured client environment.
func runClient(fn func(ctx context.Context, env *clientEnv, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		env, err := newClientEnv(cmd)
		if err != nil {
			return err
		}
		defer env.Close()
		return fn(cmd.Context(), env, args)
	}
}
