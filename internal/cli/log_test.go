package cli

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
)

func TestNewLoggerFiltersByLevel(t *testing.T) {
	tests := []struct {
		name    string
		level   log.Level
		logFunc func(*log.Logger)
		wantLog bool
	}{
		{"info at info level", log.InfoLevel, func(l *log.Logger) { l.Info("imported scene") }, true},
		{"debug at info level", log.InfoLevel, func(l *log.Logger) { l.Debug("cache key") }, false},
		{"debug at debug level", log.DebugLevel, func(l *log.Logger) { l.Debug("cache key") }, true},
		{"warn at info level", log.InfoLevel, func(l *log.Logger) { l.Warn("oversized node") }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			logger := newLogger(&buf, tt.level)
			if logger == nil {
				t.Fatal("newLogger() returned nil")
			}
			tt.logFunc(logger)

			if got := buf.Len() > 0; got != tt.wantLog {
				t.Errorf("got log output = %v, want %v", got, tt.wantLog)
			}
		})
	}
}

func TestProgressDone(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger(&buf, log.InfoLevel)

	prog := newProgress(logger)
	time.Sleep(5 * time.Millisecond)
	prog.done("generated 4 sheet(s)")

	out := buf.String()
	if !strings.Contains(out, "generated 4 sheet(s)") {
		t.Errorf("progress output %q should contain the message", out)
	}
	if !strings.Contains(out, "s)") {
		t.Errorf("progress output %q should contain an elapsed duration", out)
	}
}

func TestLoggerContextRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	custom := newLogger(&buf, log.InfoLevel)

	ctx := withLogger(context.Background(), custom)
	if got := loggerFromContext(ctx); got != custom {
		t.Error("loggerFromContext should return the attached logger")
	}

	loggerFromContext(ctx).Info("imported scene")
	if buf.Len() == 0 {
		t.Error("attached logger should write to its buffer")
	}
}

func TestLoggerFromContextDefault(t *testing.T) {
	if loggerFromContext(context.Background()) == nil {
		t.Error("loggerFromContext should fall back to the default logger")
	}
}
