// Package main provides the CLI entrypoint for keyrush.
package main

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/verte-zerg/keyrush/internal/config"
	"github.com/verte-zerg/keyrush/internal/game"
	"github.com/verte-zerg/keyrush/internal/model"
	"github.com/verte-zerg/keyrush/internal/passage"
	"github.com/verte-zerg/keyrush/internal/stats"
	"github.com/verte-zerg/keyrush/internal/tui"
)

const summaryWindow = 5

var (
	gameTickMs   int
	gameDelay    int
	gameDuration int
	gameTextFile string
	gameLogLevel string
)

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	defaults := model.DefaultConfig()
	rootCmd := &cobra.Command{
		Use:           "keyrush",
		Short:         "Timed typing game for the terminal",
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE:          runGameCmd,
	}

	rootCmd.Flags().IntVar(&gameTickMs, "tick-ms", int(defaults.TickInterval/time.Millisecond), "length of one countdown unit in milliseconds")
	rootCmd.Flags().IntVar(&gameDelay, "delay", defaults.TransitionDelay, "countdown units before the game starts or resumes")
	rootCmd.Flags().IntVar(&gameDuration, "duration", defaults.GameDuration, "game length in countdown units")
	rootCmd.Flags().StringVar(&gameTextFile, "text", "", "passage file (default: built-in passage)")
	rootCmd.Flags().StringVar(&gameLogLevel, "log-level", defaults.LogLevel, "log level (debug, info, warn, error)")

	rootCmd.AddCommand(newConfigCmd())

	return rootCmd
}

func runGameCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	if err := validateConfig(cfg); err != nil {
		return err
	}

	words, err := passage.Resolve(cfg.TextFile)
	if err != nil {
		return fmt.Errorf("failed to load passage: %w", err)
	}

	logger, closeLog, err := openLogger(config.DefaultLogPath(), cfg.LogLevel)
	if err != nil {
		return err
	}
	defer closeLog()

	view := tui.NewModel(tui.DefaultLayout)
	dispatch := tui.NewDispatcher()
	g := game.New(cfg, words, view, view, clockwork.NewRealClock(), dispatch, logger)
	view.Track(g)

	program := tea.NewProgram(view, tea.WithAltScreen(), tea.WithReportFocus())
	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()
	go func() { _ = dispatch.Run(ctx, program) }()
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run TUI: %w", err)
	}

	if g.State() != model.Finished {
		logger.Info().Stringer("state", g.State()).Msg("game abandoned")
		return nil
	}
	useColor := term.IsTerminal(int(os.Stdout.Fd()))
	return stats.RenderSummary(cmd.OutOrStdout(), g.Result(), summaryWindow, useColor)
}

// resolveConfig merges defaults, the config file, the environment and
// explicitly set flags, in that order.
func resolveConfig(cmd *cobra.Command) (model.Config, error) {
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return model.Config{}, fmt.Errorf("failed to load config: %w", err)
	}
	if err := config.LoadEnv(".env"); err != nil {
		return model.Config{}, err
	}
	gc := fileCfg.Game
	if err := config.ApplyEnv(&gc); err != nil {
		return model.Config{}, err
	}

	applyIntConfig(cmd, "tick-ms", &gameTickMs, gc.TickMs)
	applyIntConfig(cmd, "delay", &gameDelay, gc.Delay)
	applyIntConfig(cmd, "duration", &gameDuration, gc.Duration)
	applyStringConfig(cmd, "text", &gameTextFile, gc.TextFile)
	applyStringConfig(cmd, "log-level", &gameLogLevel, gc.LogLevel)

	return model.Config{
		TickInterval:    time.Duration(gameTickMs) * time.Millisecond,
		TransitionDelay: gameDelay,
		GameDuration:    gameDuration,
		TextFile:        gameTextFile,
		LogLevel:        gameLogLevel,
	}, nil
}

func openLogger(path, level string) (zerolog.Logger, func(), error) {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		return zerolog.Nop(), nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return zerolog.Nop(), nil, fmt.Errorf("failed to create log directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return zerolog.Nop(), nil, fmt.Errorf("failed to open log file: %w", err)
	}
	out := zerolog.ConsoleWriter{Out: f, NoColor: true, TimeFormat: time.RFC3339}
	logger := zerolog.New(out).Level(lvl).With().Timestamp().Logger()
	closeLog := func() {
		if cerr := f.Close(); cerr != nil {
			logErrf("failed to close log file: %v\n", cerr)
		}
	}
	return logger, closeLog, nil
}

func newConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Create/open config file",
		Args:  cobra.NoArgs,
		RunE:  runConfigCmd,
	}
}

func runConfigCmd(_ *cobra.Command, _ []string) error {
	path := config.DefaultConfigPath()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if _, err := os.Stat(path); err != nil {
		if !os.IsNotExist(err) {
			return fmt.Errorf("failed to stat config: %w", err)
		}
		if err := os.WriteFile(path, []byte(defaultConfigTemplate()), 0o644); err != nil {
			return fmt.Errorf("failed to write config: %w", err)
		}
	}

	editor := strings.TrimSpace(os.Getenv("EDITOR"))
	if editor == "" {
		editor = "vi"
	}
	parts := strings.Fields(editor)
	cmd := exec.Command(parts[0], append(parts[1:], path)...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("failed to open editor: %w", err)
	}
	return nil
}

func applyStringConfig(cmd *cobra.Command, name string, target, value *string) {
	if value == nil || cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyIntConfig(cmd *cobra.Command, name string, target, value *int) {
	if value == nil || cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func defaultConfigTemplate() string {
	defaults := model.DefaultConfig()
	return fmt.Sprintf(`# keyrush configuration
# Uncomment a value to enable it. KEYRUSH_* environment variables override
# config values, and CLI flags override both.

[game]
# tick-ms = %d            # Length of one countdown unit in milliseconds
# delay = %d                # Countdown units before the game starts or resumes
# duration = %d            # Game length in countdown units
# text-file = "passage.txt" # Passage file (default: built-in passage)
# log-level = %q         # debug, info, warn or error
`,
		int(defaults.TickInterval/time.Millisecond),
		defaults.TransitionDelay,
		defaults.GameDuration,
		defaults.LogLevel,
	)
}

func validateConfig(cfg model.Config) error {
	if cfg.TickInterval <= 0 {
		return fmt.Errorf("--tick-ms must be > 0")
	}
	if cfg.TransitionDelay < 0 {
		return fmt.Errorf("--delay must be >= 0")
	}
	if cfg.GameDuration < 0 {
		return fmt.Errorf("--duration must be >= 0")
	}
	if _, err := zerolog.ParseLevel(cfg.LogLevel); err != nil {
		return fmt.Errorf("--log-level: %w", err)
	}
	return nil
}

func logErrf(format string, args ...any) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}
