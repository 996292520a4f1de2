package logging

import (
	"context"
	"io"
	"os"

	"github.com/sirupsen/logrus"
)

type requestIDKey struct{}

var base = New("info", os.Stdout)

// New builds a text logger at the given level. Unknown levels fall back to info.
func New(level string, out io.Writer) *logrus.Logger {
	l := logrus.New()
	l.SetOutput(out)
	l.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02T15:04:05.000Z07:00",
	})
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl = logrus.InfoLevel
	}
	l.SetLevel(lvl)
	return l
}

// SetBase replaces the process logger used by FromContext.
func SetBase(l *logrus.Logger) {
	if l != nil {
		base = l
	}
}

func Base() *logrus.Logger {
	return base
}

func WithRequestID(ctx context.Context, rid string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, rid)
}

func RequestID(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if rid, ok := ctx.Value(requestIDKey{}).(string); ok {
		return rid
	}
	return ""
}

// FromContext returns an entry tagged with the request id, if any.
func FromContext(ctx context.Context) *logrus.Entry {
	entry := logrus.NewEntry(base)
	if rid := RequestID(ctx); rid != "" {
		entry = entry.WithField("request_id", rid)
	}
	return entry
}

// Op is shorthand for FromContext(ctx).WithField("operation", op).
func Op(ctx context.Context, op string) *logrus.Entry {
	return FromContext(ctx).WithField("operation", op)
}
