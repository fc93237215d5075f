package logging

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"

	"gotest.tools/v3/assert"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, ParseLevel("DEBUG"), slog.LevelDebug)
	assert.Equal(t, ParseLevel("warn"), slog.LevelWarn)
	assert.Equal(t, ParseLevel("error"), slog.LevelError)
	assert.Equal(t, ParseLevel(""), slog.LevelInfo)
	assert.Equal(t, ParseLevel("chatty"), slog.LevelInfo)
}

func TestSetupLoggerConsoleOnly(t *testing.T) {
	var buf bytes.Buffer
	logger, closeFn := SetupLogger(&buf, "warn", "")
	defer closeFn()

	logger.Info("hidden")
	logger.Warn("shown", slog.String("table", "users"))

	out := buf.String()
	assert.Assert(t, !strings.Contains(out, "hidden"))
	assert.Assert(t, strings.Contains(out, "msg=shown"))
	assert.Assert(t, strings.Contains(out, "table=users"))
}

func TestMultiHandlerFansOut(t *testing.T) {
	var debugBuf, errorBuf bytes.Buffer
	multi := &multiHandler{handlers: []slog.Handler{
		slog.NewTextHandler(&debugBuf, &slog.HandlerOptions{Level: slog.LevelDebug}),
		slog.NewTextHandler(&errorBuf, &slog.HandlerOptions{Level: slog.LevelError}),
	}}
	logger := slog.New(multi).With(slog.String("database", "main"))

	logger.Debug("index built")
	logger.Error("load failed")

	assert.Assert(t, strings.Contains(debugBuf.String(), "index built"))
	assert.Assert(t, strings.Contains(debugBuf.String(), "load failed"))
	assert.Assert(t, !strings.Contains(errorBuf.String(), "index built"))
	assert.Assert(t, strings.Contains(errorBuf.String(), "database=main"))
}
