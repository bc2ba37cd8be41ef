package drawtest

import (
	"context"
	"log/slog"
	"sync/atomic"

	"github.com/gogpu/drawtest/hardware"
	"github.com/gogpu/drawtest/reference"
)

// nopHandler is a slog.Handler that discards all records. Enabled returns
// false so callers skip formatting entirely.
type nopHandler struct{}

func (nopHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (nopHandler) Handle(context.Context, slog.Record) error { return nil }
func (nopHandler) WithAttrs([]slog.Attr) slog.Handler        { return nopHandler{} }
func (nopHandler) WithGroup(string) slog.Handler             { return nopHandler{} }

func newNopLogger() *slog.Logger { return slog.New(nopHandler{}) }

// loggerPtr stores the active logger.
var loggerPtr atomic.Pointer[slog.Logger]

func init() {
	loggerPtr.Store(newNopLogger())
}

// SetLogger configures the logger for drawtest and the context packages
// it drives. By default nothing is logged. Pass nil to restore the silent
// default.
//
// Log levels:
//   - [slog.LevelDebug]: bind and dispatch details, generated data sizes
//   - [slog.LevelInfo]: case verdicts
//   - [slog.LevelWarn]: backend failures and unsupported encodings
//
// Example:
//
//	drawtest.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
//	    Level: slog.LevelDebug,
//	})))
func SetLogger(l *slog.Logger) {
	if l == nil {
		l = newNopLogger()
	}
	loggerPtr.Store(l)
	hardware.SetLogger(l)
	reference.SetLogger(l)
}

// Logger returns the current logger.
func Logger() *slog.Logger {
	return loggerPtr.Load()
}

// loggerSetter is implemented by contexts that accept a logger.
type loggerSetter interface {
	SetLogger(*slog.Logger)
}

// propagateLogger passes the current logger to ctx if it accepts one.
func propagateLogger(ctx any) {
	if ls, ok := ctx.(loggerSetter); ok {
		ls.SetLogger(Logger())
	}
}
