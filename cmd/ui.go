package cmd

import (
	"context"
	"encoding/json"
	"io"

	"github.com/smazurov/capturehost/internal/logging"
	"github.com/smazurov/capturehost/internal/threads"
)

// withUIThread runs fn on a short-lived UI runner.
func withUIThread(ctx context.Context, fn func(ctx context.Context) error) error {
	runner := threads.NewRunner(threads.UI, 0)
	runner.Start()
	defer runner.Stop()
	return runner.Invoke(ctx, fn)
}

func initCLILogging(verbose bool) {
	level := "warn"
	if verbose {
		level = "debug"
	}
	logging.Initialize(logging.Config{Level: level, Format: "text"})
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
