package observability

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// captureJSON swaps the default logger for one writing JSON to a buffer.
func captureJSON(t *testing.T, level slog.Level) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	old := slog.Default()
	slog.SetDefault(slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: level})))
	t.Cleanup(func() { slog.SetDefault(old) })
	return &buf
}

func decodeLines(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()
	var out []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		m := map[string]any{}
		require.NoError(t, json.Unmarshal([]byte(line), &m))
		out = append(out, m)
	}
	return out
}

func TestContextChaining(t *testing.T) {
	ctx := WithBuildID(context.Background(), "build-123")
	ctx = WithStage(ctx, "render")
	ctx = WithPage(ctx, "AB12C", "intro/setup.html")

	assert.Equal(t, Scope{BuildID: "build-123", Stage: "render", PageID: "AB12C", Href: "intro/setup.html"}, ScopeFrom(ctx))
	assert.Len(t, ScopeFrom(ctx).Attrs(), 4)
}

func TestContextIsolation(t *testing.T) {
	parent := WithStage(context.Background(), "load")
	child := WithStage(parent, "render")

	assert.Equal(t, "load", ScopeFrom(parent).Stage)
	assert.Equal(t, "render", ScopeFrom(child).Stage)
	assert.Equal(t, Scope{}, ScopeFrom(context.Background()))
	assert.Empty(t, Scope{}.Attrs())
}

func TestInfoContext_IncludesContextAttrs(t *testing.T) {
	buf := captureJSON(t, slog.LevelInfo)

	ctx := WithPage(WithBuildID(context.Background(), "build-1"), "P0001", "index.html")
	InfoContext(ctx, "page written", slog.String("extra", "value"))

	lines := decodeLines(t, buf)
	require.Len(t, lines, 1)
	assert.Equal(t, "page written", lines[0]["msg"])
	assert.Equal(t, "build-1", lines[0]["build_id"])
	assert.Equal(t, "P0001", lines[0]["page_id"])
	assert.Equal(t, "index.html", lines[0]["href"])
	assert.Equal(t, "value", lines[0]["extra"])
}

func TestLevels(t *testing.T) {
	buf := captureJSON(t, slog.LevelInfo)
	ctx := WithStage(context.Background(), "assets")

	DebugContext(ctx, "hidden")
	WarnContext(ctx, "warned")
	ErrorContext(ctx, "failed")

	lines := decodeLines(t, buf)
	require.Len(t, lines, 2)
	assert.Equal(t, "WARN", lines[0]["level"])
	assert.Equal(t, "ERROR", lines[1]["level"])
	assert.Equal(t, "assets", lines[1]["stage"])
}

func TestStageTimer(t *testing.T) {
	buf := captureJSON(t, slog.LevelDebug)

	ctx, timer := StartStage(context.Background(), "render")
	assert.Equal(t, "render", ScopeFrom(ctx).Stage)
	assert.Equal(t, "render", timer.Name())

	start := timer.start
	timer.now = func() time.Time { return start.Add(1500 * time.Millisecond) }
	d := timer.End(errors.New("boom"))
	assert.Equal(t, 1500*time.Millisecond, d)

	lines := decodeLines(t, buf)
	require.Len(t, lines, 2)
	assert.Equal(t, "Stage started", lines[0]["msg"])
	assert.Equal(t, "Stage failed", lines[1]["msg"])
	assert.Equal(t, "boom", lines[1]["error"])
	assert.InDelta(t, 1500.0, lines[1]["duration_ms"], 0.001)
}
