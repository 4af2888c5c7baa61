package logging

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewNilBindsDefault(t *testing.T) {
	require.NotNil(t, New(nil))
}

func TestLevelsAndWith(t *testing.T) {
	var buf bytes.Buffer
	logger := New(slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})))

	ctx := context.Background()
	logger.Debug(ctx, "debug msg", "k", "v")
	logger.Info(ctx, "info msg")
	logger.Warn(ctx, "warn msg")
	logger.Error(ctx, "error msg")

	out := buf.String()
	require.Contains(t, out, "debug msg")
	require.Contains(t, out, "k=v")
	require.Contains(t, out, "info msg")
	require.Contains(t, out, "warn msg")
	require.Contains(t, out, "error msg")

	buf.Reset()
	logger.With("stream", 7).Info(ctx, "bound")
	require.Contains(t, buf.String(), "stream=7")
}
