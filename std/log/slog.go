package log

import (
	"context"
	"io"
	"log/slog"
)

// Logger filters records by Level and hands the rest to a slog handler.
type Logger struct {
	slog  *slog.Logger
	level Level
}

// Tag identifies the component a message comes from.
type Tag interface {
	String() string
}

func newLogger(h slog.Handler) *Logger {
	return &Logger{slog: slog.New(h), level: LevelInfo}
}

// NewText returns a logger writing key=value lines to w.
func NewText(w io.Writer) *Logger {
	return newLogger(slog.NewTextHandler(w, &slog.HandlerOptions{
		Level:       slog.Level(LevelTrace),
		ReplaceAttr: replaceAttr,
	}))
}

// NewJson returns a logger writing one JSON object per record to w.
func NewJson(w io.Writer) *Logger {
	return newLogger(slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level:       slog.Level(LevelTrace),
		ReplaceAttr: replaceAttr,
	}))
}

// SetLevel sets the logging level and returns the previous level.
func (l *Logger) SetLevel(level Level) (prev Level) {
	prev, l.level = l.level, level
	return
}

func (l *Logger) Level() Level {
	return l.level
}

// Enabled reports whether records at level are written.
func (l *Logger) Enabled(level Level) bool {
	return level >= l.level
}

func (l *Logger) log(t any, msg string, level Level, v ...any) {
	if !l.Enabled(level) {
		return
	}
	switch tag := t.(type) {
	case nil:
	case Tag:
		v = append([]any{"tag", tag.String()}, v...)
	default:
		v = append([]any{"tag", tag}, v...)
	}
	l.slog.Log(context.Background(), slog.Level(level), msg, v...)
}

func replaceAttr(_ []string, a slog.Attr) slog.Attr {
	if a.Key == slog.LevelKey {
		a.Value = slog.StringValue(Level(a.Value.Any().(slog.Level)).String())
	}
	return a
}
