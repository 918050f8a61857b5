package logging

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"adpulse/domain/core"
	"adpulse/internal/config"
)

// NewRunLogger constructs the run logger: console output on stderr plus a
// JSONL file under the configured logs dir, named after the run ID so log
// lines from every stage of one run land in one file. The returned closer
// flushes and closes the file; it is safe to call when file creation
// failed and the logger fell back to console only.
func NewRunLogger(cfg config.LoggingConfig, runID core.RunID) (zerolog.Logger, func(), error) {
	zerolog.TimeFieldFormat = time.RFC3339

	level := zerolog.InfoLevel
	if parsed, err := zerolog.ParseLevel(strings.ToLower(cfg.Level)); err == nil && cfg.Level != "" {
		level = parsed
	}

	console := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: "15:04:05"}

	var writer io.Writer = console
	closer := func() {}

	if cfg.Dir != "" {
		if err := os.MkdirAll(cfg.Dir, 0o755); err == nil {
			path := filepath.Join(cfg.Dir, "run_"+runID.String()+".jsonl")
			file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
			if err == nil {
				writer = zerolog.MultiLevelWriter(console, file)
				closer = func() { file.Close() }
			}
		}
	}

	logger := zerolog.New(writer).Level(level).With().
		Timestamp().
		Str("run_id", runID.String()).
		Logger()

	return logger, closer, nil
}

// Stage returns a child logger tagged with the stage name.
func Stage(logger zerolog.Logger, stage string) zerolog.Logger {
	return logger.With().Str("stage", stage).Logger()
}
