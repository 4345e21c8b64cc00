// Command wz-channels resolves the published release history into the
// client-evaluated update, compatibility and lobby documents.
//
// Each subcommand reads the release host's JSON exports, derives the netcode
// versions it needs (downloading source archives on cache misses) and writes
// one document.
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"wz-channels/internal/config"
	"wz-channels/internal/journal"
)

func fatal(msg string, err error, attrs ...any) {
	args := make([]any, 0, 2+len(attrs))
	args = append(args, "err", err)
	args = append(args, attrs...)
	slog.Error(msg, args...)
	os.Exit(1)
}

func main() {
	// Set up logging first so early failures are captured consistently.
	runID := journal.MakeRunID()
	var level slog.LevelVar
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: &level,
	})).With("run_id", runID))

	cfg, err := config.Load()
	if err != nil {
		fatal("config load failed", err)
	}
	if err := level.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
		fatal("invalid log level", err, "level", cfg.LogLevel)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var j *journal.Journal
	if cfg.JournalPath != "" {
		j, err = journal.New(cfg.JournalPath, runID)
		if err != nil {
			fatal("open ndjson journal failed", err, "path", cfg.JournalPath)
		}
		slog.Info("ndjson journal enabled", "path", cfg.JournalPath)
	} else {
		slog.Debug("ndjson journal disabled (default); set WZC_TELEMETRY_JOURNAL_PATH to enable")
	}

	a := &app{cfg: cfg, journal: j, now: time.Now}
	err = newRootCommand(a).ExecuteContext(ctx)
	// fatal exits without running defers.
	if cerr := j.Close(); cerr != nil {
		slog.Warn("close ndjson journal failed", "err", cerr)
	}
	if err != nil {
		fatal("resolution failed", err)
	}
}
