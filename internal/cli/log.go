// Package cli implements the depscope command-line interface.
//
// # Commands
//
//   - analyze: full run; writes the annotated tree, the JSON report and
//     optional DOT, SVG or PNG diagrams
//   - unused: lists dependency archives the compiled classes never reference
//   - conflicts: lists dependencies omitted by conflict resolution with the
//     tree paths to both sides; --interactive opens a browser
//   - visualize: renders a dependency graph or an exported tree
//   - completion: shell completion scripts
//
// Every analysis command takes the project directory as optional argument
// and reads depscope.toml from it unless --config is given.
//
// # Logging
//
// Log lines go to the writer passed to [New], diagnostics never mix with
// command output. --verbose (-v) lowers the level to debug for the whole run.
// The root command stores a logger prefixed with the running command's name
// in the command context; pipeline stages and renderers log through it.
package cli

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
)

// newLogger returns a logger writing to w at level, stamped "15:04:05.00".
func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}

// levelFor maps the --verbose flag to a log level.
func levelFor(verbose bool) log.Level {
	if verbose {
		return log.DebugLevel
	}
	return log.InfoLevel
}

// stage times one step of a command, such as rendering, and logs a summary
// line with the elapsed time when it ends.
type stage struct {
	logger *log.Logger
	start  time.Time
}

func startStage(l *log.Logger) *stage {
	return &stage{logger: l, start: time.Now()}
}

// done logs e.g. "Rendered svg, png (1.234s)".
func (s *stage) done(format string, args ...any) {
	s.logger.Infof("%s (%s)", fmt.Sprintf(format, args...), s.elapsed())
}

func (s *stage) elapsed() time.Duration {
	return time.Since(s.start).Round(time.Millisecond)
}

type loggerKey struct{}

func withLogger(ctx context.Context, l *log.Logger) context.Context {
	return context.WithValue(ctx, loggerKey{}, l)
}

// loggerFromContext returns the logger stored by withLogger, or log.Default
// when the command ran without the root's pre-run hook.
func loggerFromContext(ctx context.Context) *log.Logger {
	if l, ok := ctx.Value(loggerKey{}).(*log.Logger); ok {
		return l
	}
	return log.Default()
}

// commandLogger prefixes base with the name of the command being run.
func commandLogger(base *log.Logger, cmd *cobra.Command) *log.Logger {
	if cmd == nil || cmd.Name() == appName {
		return base
	}
	return base.WithPrefix(cmd.Name())
}
