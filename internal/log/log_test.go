package log

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func testLogger(buf *bytes.Buffer) *slog.Logger {
	return slog.New(&filteringHandler{underlying: slog.NewTextHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug})})
}

func TestFilteringHandlerSections(t *testing.T) {
	testCases := []struct {
		name    string
		section string
		level   slog.Level
		logged  bool
	}{
		{name: "enabled section", section: "types", level: slog.LevelDebug, logged: true},
		{name: "enabled section prefix", section: "types.match", level: slog.LevelDebug, logged: true},
		{name: "disabled section", section: "backend", level: slog.LevelDebug, logged: false},
		{name: "warnings always logged", section: "backend", level: slog.LevelWarn, logged: true},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			buf := &bytes.Buffer{}
			testLogger(buf).With("section", tc.section).Log(context.Background(), tc.level, "hello")
			assert.Equal(t, tc.logged, buf.Len() > 0, "output: %s", buf.String())
		})
	}
}

func TestFilteringHandlerRecordSection(t *testing.T) {
	buf := &bytes.Buffer{}
	testLogger(buf).Debug("hello", "section", "registry")
	assert.Contains(t, buf.String(), "section=registry")
}

func TestSetLevel(t *testing.T) {
	defer SetLevel(slog.LevelWarn)
	SetLevel(slog.LevelDebug)
	assert.True(t, DefaultLogger.Enabled(context.Background(), slog.LevelDebug))
	SetLevel(slog.LevelError)
	assert.False(t, DefaultLogger.Enabled(context.Background(), slog.LevelWarn))
}
