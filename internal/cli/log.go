// Package cli implements the gridboard command-line interface.
//
// The commands fall into three groups. Engine commands (geometry, drag,
// resize, compact, lock, collapse, remove) read a JSON or YAML layout file,
// apply one grid operation and write the file back. Preview commands (show,
// watch, edit) draw the layout on the terminal, and edit runs an interactive
// editor. Storage commands (layouts, serve, cache) work against the backends
// named in the config file.
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging, which also
// routes engine, store and cache events to the log. Loggers are passed
// through context.Context.
//
// # Example
//
//	import "github.com/matzehuels/gridboard/internal/cli"
//
//	func main() {
//	    c := cli.New(os.Stderr, cli.LogInfo)
//	    if err := c.RootCommand().ExecuteContext(ctx); err != nil {
//	        os.Exit(1)
//	    }
//	}
package cli

import (
	"context"
	"io"
	"time"

	"github.com/charmbracelet/log"
)

// newLogger returns a charm logger writing to w at level, with
// centisecond timestamps.
func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}

// progress times one step of a command, such as a compaction pass.
type progress struct {
	logger *log.Logger
	start  time.Time
}

func newProgress(l *log.Logger) *progress {
	return &progress{logger: l, start: time.Now()}
}

// done logs msg with the elapsed time, e.g. "Compacted 12 widgets (1ms)".
func (p *progress) done(msg string) {
	p.logger.Info(msg, "took", time.Since(p.start).Round(time.Millisecond))
}

type loggerKey struct{}

func withLogger(ctx context.Context, l *log.Logger) context.Context {
	return context.WithValue(ctx, loggerKey{}, l)
}

// loggerFromContext returns the logger set by withLogger, or log.Default()
// when there is none.
func loggerFromContext(ctx context.Context) *log.Logger {
	if l, ok := ctx.Value(loggerKey{}).(*log.Logger); ok {
		return l
	}
	return log.Default()
}
