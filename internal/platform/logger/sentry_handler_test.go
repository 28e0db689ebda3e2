package logger

import (
	"bytes"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWrapWithSentry_PassesThrough(t *testing.T) {
	var buf bytes.Buffer
	base := New(Config{Level: LevelInfo, Format: FormatJSON, Output: &buf})

	logger := WrapWithSentry(base).With("route", "/api/blogs")
	logger.Error("list failed", "error", errors.New("db down"))

	assert.Contains(t, buf.String(), "list failed")
	assert.Contains(t, buf.String(), "/api/blogs")
	assert.Nil(t, WrapWithSentry(nil))
}

func TestAttrValue(t *testing.T) {
	var captured error
	boom := errors.New("boom")

	assert.Equal(t, "boom", attrValue(slog.AnyValue(boom), &captured))
	require.ErrorIs(t, captured, boom)

	assert.Equal(t, int64(3), attrValue(slog.Int64Value(3), &captured))
	assert.Equal(t, true, attrValue(slog.BoolValue(true), &captured))

	group := attrValue(slog.GroupValue(slog.String("title", "Blog by title")), &captured)
	assert.Equal(t, map[string]any{"title": "Blog by title"}, group)
}
