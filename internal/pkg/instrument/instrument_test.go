package instrument

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeLine(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	return line
}

func TestNewLogger_MasksAndCorrelates(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&buf, &Config{
		ServiceName: "nor-auth",
		MaskFields:  []string{"password", "Token"},
	})

	ctx := SetCorrelationID(context.Background(), "cid-1")
	logger.InfoContext(ctx, "login attempt",
		"email", "a@b.nl",
		"password", "Secret1!",
		"body", `{"email":"a@b.nl","token":"123456"}`,
		slog.Group("req", slog.String("token", "abc")),
	)

	line := decodeLine(t, &buf)
	assert.Equal(t, "INFO", line["severity"])
	assert.Equal(t, "cid-1", line["_cID"])
	assert.Equal(t, "nor-auth", line["service"])
	assert.Equal(t, "a@b.nl", line["email"])
	assert.Equal(t, "***", line["password"])
	assert.JSONEq(t, `{"email":"a@b.nl","token":"***"}`, line["body"].(string))
	assert.Equal(t, map[string]any{"token": "***"}, line["req"])
	assert.Contains(t, line, "ts")
	assert.Contains(t, line, "file")
}

func TestNewLogger_Level(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&buf, &Config{LogLevel: "warn"})

	logger.Info("hidden")
	assert.Zero(t, buf.Len())

	logger.Warn("shown")
	assert.NotZero(t, buf.Len())
}

func TestNewLogger_WithAttrsMasked(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&buf, &Config{MaskFields: []string{"secret"}}).With("secret", "JBSWY3DP")

	logger.Info("x")
	assert.Equal(t, "***", decodeLine(t, &buf)["secret"])
}

func TestNewMasker(t *testing.T) {
	mask := NewMasker([]string{"refreshToken"})

	got := mask(map[string]any{
		"user":         map[string]any{"id": "1"},
		"refreshtoken": "x",
		"list":         []any{map[string]any{"RefreshToken": "y"}},
	})

	assert.Equal(t, map[string]any{
		"user":         map[string]any{"id": "1"},
		"refreshtoken": "***",
		"list":         []any{map[string]any{"RefreshToken": "***"}},
	}, got)
	assert.Equal(t, "plain", mask("plain"))
}

func TestCorrelationID(t *testing.T) {
	assert.Empty(t, GetCorrelationID(context.Background()))
	assert.Equal(t, "abc", GetCorrelationID(SetCorrelationID(context.Background(), "abc")))
}

func TestNew_Disabled(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	ins, err := New(context.Background(), &Config{ServiceName: "nor-auth"})
	require.NoError(t, err)

	_, span := ins.Tracer("t").Start(context.Background(), "noop")
	span.End()
	assert.False(t, span.SpanContext().IsValid())
	assert.NoError(t, ins.Shutdown(context.Background()))
}
