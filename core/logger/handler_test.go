package logger

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestHandler(buf *bytes.Buffer, format logFormat) (*structuredHandler, *asyncWriter) {
	aw := newAsyncWriter([]io.Writer{buf}, 1024)
	return newStructuredHandler(handlerConfig{
		level:    slog.LevelInfo,
		writer:   aw,
		format:   format,
		keyOrder: append([]string(nil), defaultKeyOrder...),
	}), aw
}

func emit(t *testing.T, format logFormat, ctx context.Context, component, event string, attrs ...slog.Attr) string {
	t.Helper()
	buf := &bytes.Buffer{}
	handler, aw := newTestHandler(buf, format)
	LogEvent(ctx, slog.New(handler).With("component", component), slog.LevelInfo, event, attrs...)
	require.NoError(t, aw.Flush())
	require.NoError(t, aw.Close())
	return strings.TrimSpace(buf.String())
}

func TestStructuredHandlerKVOrder(t *testing.T) {
	ctx := WithRID(context.Background(), "rid-123")
	ctx = WithUpdateMeta(ctx, 42, 7, 9)

	line := emit(t, formatKV, ctx, "app", "test.event",
		slog.String("status", "ok"),
		slog.String("cause", "unit"),
	)
	tokens := strings.Split(line, " ")
	require.GreaterOrEqual(t, len(tokens), 6, line)

	expected := []string{"ts=", "level=INFO", "component=app", "event=test.event", "status=ok", "rid=rid-123"}
	for i, prefix := range expected {
		assert.Truef(t, strings.HasPrefix(tokens[i], prefix), "token %d = %s, expected prefix %s", i, tokens[i], prefix)
	}
}

func TestStructuredHandlerJSONOrder(t *testing.T) {
	ctx := WithRID(context.Background(), "rid-json")
	ctx = WithUpdateMeta(ctx, 11, 22, 33)

	line := emit(t, formatJSON, ctx, "service.search", "search.failed",
		slog.String("status", "fail"),
		slog.String("err", "boom"),
		slog.String("err_code", "STORE_QUERY"),
	)
	require.True(t, strings.HasPrefix(line, "{"), line)

	prefixes := []string{`{"ts":`, `"level":"INFO"`, `"component":"service.search"`, `"event":"search.failed"`, `"status":"fail"`, `"rid":"rid-json"`}
	pos := -1
	for _, pref := range prefixes {
		idx := strings.Index(line, pref)
		require.Truef(t, idx > pos, "prefix %s not found in order within %s", pref, line)
		pos = idx
	}
}

func TestStructuredHandlerCompactRID(t *testing.T) {
	rawRID := "123:456:789"
	ctx := WithRID(context.Background(), rawRID)

	kv := emit(t, formatKV, ctx, "app", "rid.test")
	assert.Contains(t, kv, "rid="+CompactRID(rawRID))
	assert.NotContains(t, kv, "rid_full=")

	js := emit(t, formatJSON, ctx, "app", "rid.test")
	assert.Contains(t, js, `"rid":"`+CompactRID(rawRID)+`"`)
	assert.Contains(t, js, `"rid_full":"`+rawRID+`"`)
	assert.Contains(t, js, `"ts_unix_nano"`)
}

func TestStructuredHandlerDurationAndPayload(t *testing.T) {
	ctx := WithPayload(context.Background(), "от 150k")

	line := emit(t, formatKV, ctx, "tg", "handler.handled",
		slog.Duration("duration", 1500*time.Microsecond),
		slog.String("outcome", "not-an-outcome"),
	)
	assert.Contains(t, line, "duration_ms=2")
	assert.Contains(t, line, `payload="от 150k"`)
	assert.NotContains(t, line, "outcome=")
}

func TestCompactRIDKeepsUnknownShapes(t *testing.T) {
	assert.Equal(t, "a.b", CompactRID("a.b"))
	assert.Equal(t, "z.1.a", CompactRID("35:1:10"))
	assert.Equal(t, "", CompactRID("  "))
}

func TestStatusAndTook(t *testing.T) {
	assert.Equal(t, "ok", Status(nil))
	assert.Equal(t, "fail", Status(io.EOF))

	took := Took(time.Now().Add(-1500 * time.Microsecond))
	assert.GreaterOrEqual(t, took, time.Millisecond)
	assert.Zero(t, took%time.Millisecond)
}

func TestRatioSampler(t *testing.T) {
	s := newRatioSampler(1, 3)
	got := []bool{s.Allow(), s.Allow(), s.Allow(), s.Allow()}
	assert.Equal(t, []bool{true, false, false, true}, got)

	s.Set(0, 0)
	assert.True(t, s.Allow())

	n, d := parseRatioSpec("2/5")
	assert.Equal(t, [2]int{2, 5}, [2]int{n, d})
	n, d = parseRatioSpec("10")
	assert.Equal(t, [2]int{1, 10}, [2]int{n, d})
}

func TestContextAccessors(t *testing.T) {
	assert.Empty(t, RIDFrom(context.Background()))
	assert.Zero(t, UserIDFrom(context.Background()))

	ctx := WithUpdateMeta(context.Background(), 5, 6, 7)
	ctx = WithHandler(ctx, "")
	ctx = WithHandler(ctx, "cmd.start")
	ctx = WithPayload(ctx, "")
	assert.Equal(t, 5, UpdateIDFrom(ctx))
	assert.Equal(t, int64(6), UserIDFrom(ctx))
	assert.Equal(t, int64(7), ChatIDFrom(ctx))
	assert.Equal(t, "cmd.start", HandlerFrom(ctx))
	assert.Empty(t, PayloadFrom(ctx))
	assert.Same(t, L, FromContext(ctx))

	custom := slog.New(slog.NewTextHandler(io.Discard, nil))
	assert.Same(t, custom, FromContext(WithLogger(ctx, custom)))
}

type failingSink struct{}

func (failingSink) Write([]byte) (int, error) { return 0, io.ErrClosedPipe }

func TestAsyncWriter(t *testing.T) {
	a, b := &bytes.Buffer{}, &bytes.Buffer{}
	aw := newAsyncWriter([]io.Writer{a, nil, b}, 2)
	for _, line := range []string{"one\n", "two\n", "three\n"} {
		require.NoError(t, aw.Write([]byte(line)))
	}
	require.NoError(t, aw.Flush())
	assert.Equal(t, "one\ntwo\nthree\n", a.String())
	assert.Equal(t, a.String(), b.String())

	require.NoError(t, aw.Close())
	require.NoError(t, aw.Close())
	assert.ErrorIs(t, aw.Write([]byte("late\n")), errWriterClosed)
	assert.NoError(t, aw.Flush())

	broken := newAsyncWriter([]io.Writer{failingSink{}}, 0)
	require.NoError(t, broken.Write([]byte("x")))
	assert.ErrorIs(t, broken.Flush(), io.ErrClosedPipe)
	assert.ErrorIs(t, broken.Write([]byte("y")), io.ErrClosedPipe)
	assert.ErrorIs(t, broken.Close(), io.ErrClosedPipe)
}
