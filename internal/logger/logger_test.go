package logger

import (
	"bytes"
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	log := New()
	assert.Equal(t, zerolog.InfoLevel, log.GetLevel())
}

func TestNewWithWriter(t *testing.T) {
	buf := &bytes.Buffer{}
	log := NewWithWriter(buf)

	log.Info().Str("property_id", "p-1").Msg("test message")

	out := buf.String()
	assert.Contains(t, out, "test message")
	assert.Contains(t, out, `"property_id":"p-1"`)
}

func TestNewFromConfig(t *testing.T) {
	tests := []struct {
		name  string
		level string
		want  zerolog.Level
	}{
		{"debug", "debug", zerolog.DebugLevel},
		{"upper case", "WARN", zerolog.WarnLevel},
		{"padded", "  error ", zerolog.ErrorLevel},
		{"unknown falls back to info", "chatty", zerolog.InfoLevel},
		{"empty falls back to info", "", zerolog.InfoLevel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			log := NewFromConfig(tt.level, "json")
			assert.Equal(t, tt.want, log.GetLevel())
		})
	}
}

func TestFromContext(t *testing.T) {
	buf := &bytes.Buffer{}
	ctx := WithContext(context.Background(), NewWithWriter(buf))

	require.NotNil(t, ctx.Value(LoggerKey))

	log := FromContext(ctx)
	log.Info().Msg("test")
	assert.NotZero(t, buf.Len(), "expected log output from retrieved logger")
}

func TestFromContext_DefaultLogger(t *testing.T) {
	log := FromContext(context.Background())
	assert.NotEqual(t, zerolog.Disabled, log.GetLevel())
}

func TestWithFields(t *testing.T) {
	buf := &bytes.Buffer{}
	log := WithFields(NewWithWriter(buf), map[string]interface{}{
		"user":   "corretor",
		"action": "restore",
	})
	log.Info().Msg("test message")

	out := buf.String()
	assert.Contains(t, out, `"user":"corretor"`)
	assert.Contains(t, out, `"action":"restore"`)
}
