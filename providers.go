package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/afittestide/mascot/storage"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"
	"github.com/muesli/termenv"
	"go.uber.org/fx"
	lumberjack "gopkg.in/natefinch/lumberjack.v2"
)

// multiHandler wraps multiple handlers and writes to all of them
type multiHandler struct {
	handlers []slog.Handler
}

func (m *multiHandler) Enabled(ctx context.Context, level slog.Level) bool {
	for _, h := range m.handlers {
		if h.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

func (m *multiHandler) Handle(ctx context.Context, r slog.Record) error {
	for _, h := range m.handlers {
		if !h.Enabled(ctx, r.Level) {
			continue
		}
		if err := h.Handle(ctx, r.Clone()); err != nil {
			return err
		}
	}
	return nil
}

func (m *multiHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	handlers := make([]slog.Handler, len(m.handlers))
	for i, h := range m.handlers {
		handlers[i] = h.WithAttrs(attrs)
	}
	return &multiHandler{handlers: handlers}
}

func (m *multiHandler) WithGroup(name string) slog.Handler {
	handlers := make([]slog.Handler, len(m.handlers))
	for i, h := range m.handlers {
		handlers[i] = h.WithGroup(name)
	}
	return &multiHandler{handlers: handlers}
}

// getLogFilePath returns ~/.local/share/mascot/mascot.log, creating the directory
func getLogFilePath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}
	logDir := filepath.Join(homeDir, ".local", "share", "mascot")
	if err := os.MkdirAll(logDir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create log directory %s: %w", logDir, err)
	}
	return filepath.Join(logDir, "mascot.log"), nil
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	return slog.LevelInfo
}

// ConfigResult holds the loaded configuration
type ConfigResult struct {
	fx.Out
	Config *Config
}

// ProvideConfig loads the configuration and applies command line overrides
func ProvideConfig() (ConfigResult, error) {
	config, err := LoadConfig()
	if err != nil {
		return ConfigResult{}, err
	}
	cliOverrides().Apply(config)
	if err := config.Validate(); err != nil {
		return ConfigResult{}, err
	}
	applyColorProfile(config)
	return ConfigResult{Config: config}, nil
}

// applyColorProfile turns styling off when color is disabled
func applyColorProfile(config *Config) {
	if !config.UI.Color {
		lipgloss.SetColorProfile(termenv.Ascii)
	}
}

// LoggerResult holds the configured logger
type LoggerResult struct {
	fx.Out
	Logger *slog.Logger
}

// ProvideLogger creates the rotating file logger. In script mode warnings
// are copied to stderr as well.
func ProvideLogger(config *Config) (LoggerResult, error) {
	logPath, err := getLogFilePath()
	if err != nil {
		return LoggerResult{}, err
	}

	logFile := &lumberjack.Logger{
		Filename:   logPath,
		MaxSize:    10, // megabytes
		MaxBackups: 3,
		MaxAge:     28, // days
		Compress:   true,
	}

	var handler slog.Handler = slog.NewTextHandler(logFile, &slog.HandlerOptions{Level: parseLevel(config.Logging.Level)})
	if nonInteractive() && config.Logging.Level == "debug" {
		handler = &multiHandler{handlers: []slog.Handler{
			handler,
			slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}),
		}}
	}

	logger := slog.New(handler)
	slog.SetDefault(logger)
	logger.Info("configuration loaded", "server", config.Server.URL, "timeout", config.Server.Timeout)

	return LoggerResult{Logger: logger}, nil
}

// JournalParams holds parameters for journal initialization
type JournalParams struct {
	fx.In
	Lifecycle fx.Lifecycle
	Logger    *slog.Logger
}

// JournalResult holds the journal of this run
type JournalResult struct {
	fx.Out
	Journal *storage.Journal
}

// ProvideJournal opens the in-memory submission journal for a new session
func ProvideJournal(params JournalParams) (JournalResult, error) {
	db, err := storage.InitDB(storage.MemoryPath)
	if err != nil {
		params.Logger.Error("failed to initialize journal", "error", err)
		return JournalResult{}, fmt.Errorf("failed to initialize journal: %w", err)
	}
	sessionID := uuid.NewString()
	params.Logger.Info("journal initialized", "session", sessionID, "path", db.Path())

	params.Lifecycle.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			if stats, err := storage.NewJournal(db, sessionID).Stats(); err == nil {
				params.Logger.Info("session summary", "session", sessionID, "outcomes", stats)
			}
			if err := db.Close(); err != nil {
				params.Logger.Error("failed to close journal", "error", err)
				return err
			}
			return nil
		},
	})

	return JournalResult{Journal: storage.NewJournal(db, sessionID)}, nil
}

// ProvideQueryClient creates the HTTP client for the service
func ProvideQueryClient(config *Config, logger *slog.Logger) *QueryClient {
	logger.Info("using server", "url", config.Server.URL, "timeout", config.Server.Timeout)
	return NewQueryClient(config.Server.URL, config.Server.Timeout)
}

// ConsoleParams holds parameters for console creation
type ConsoleParams struct {
	fx.In
	Client  *QueryClient
	Journal *storage.Journal
	Logger  *slog.Logger
}

// ProvideConsole creates the submission controller
func ProvideConsole(params ConsoleParams) *Console {
	return NewConsole(params.Client, params.Journal, params.Logger)
}

// TUIModelParams holds parameters for TUI model creation
type TUIModelParams struct {
	fx.In
	Config  *Config
	Console *Console
	Client  *QueryClient
	Logger  *slog.Logger
}

// ProvideTUIModel creates and returns the TUI model
func ProvideTUIModel(params TUIModelParams) *TUIModel {
	return NewTUIModel(params.Config, params.Console, params.Client, params.Logger)
}

// TUIProgramParams holds parameters for TUI program initialization
type TUIProgramParams struct {
	fx.In
	Model     *TUIModel
	Lifecycle fx.Lifecycle
	Logger    *slog.Logger
}

// StartTUI creates the TUI program
func StartTUI(params TUIProgramParams) *tea.Program {
	params.Logger.Info("creating TUI program")

	prog := tea.NewProgram(params.Model, tea.WithAltScreen(), tea.WithMouseCellMotion())

	params.Lifecycle.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			params.Model.console.Cancel()
			return nil
		},
	})

	return prog
}

// newApp assembles the application graph. Constructors run lazily, so
// script mode never builds the TUI.
func newApp(opts ...fx.Option) *fx.App {
	return fx.New(
		fx.Provide(
			ProvideConfig,
			ProvideLogger,
			ProvideJournal,
			ProvideQueryClient,
			ProvideConsole,
			ProvideTUIModel,
			StartTUI,
		),
		fx.NopLogger,
		fx.Options(opts...),
	)
}
