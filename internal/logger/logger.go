// Package logger configures the process-wide slog logger.
package logger

import (
	"log/slog"
	"os"
)

// Init sets up the default text logger. DEBUG=true lowers the level.
func Init() {
	level := slog.LevelInfo
	if os.Getenv("DEBUG") == "true" {
		level = slog.LevelDebug
	}

	l := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(l)
}

// With returns a logger tagged with a component name, for packages that want
// their records attributable.
func With(component string) *slog.Logger {
	return slog.Default().With("component", component)
}

func Info(msg string, args ...any)  { slog.Info(msg, args...) }
func Warn(msg string, args ...any)  { slog.Warn(msg, args...) }
func Error(msg string, args ...any) { slog.Error(msg, args...) }
func Debug(msg string, args ...any) { slog.Debug(msg, args...) }
