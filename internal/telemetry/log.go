// Package telemetry provides the gateway's structured logging and
// distributed tracing.
package telemetry

import (
	"io"
	"log/slog"
	"os"
)

// NewLogger builds a text-handler slog.Logger writing to stderr (stdout
// is left free for anything a caller embeds multiplex alongside). mute
// forces everything below Error to be discarded, for embedders that
// want the gateway silent unless something is actually wrong.
func NewLogger(mute bool) *slog.Logger {
	var out io.Writer = os.Stderr
	level := slog.LevelInfo
	if mute {
		level = slog.LevelError
	}
	return slog.New(slog.NewTextHandler(out, &slog.HandlerOptions{Level: level}))
}
