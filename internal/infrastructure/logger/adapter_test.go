package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func bufferedAdapter(buf *bytes.Buffer) *ZapAdapter {
	encoder := zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig())
	core := zapcore.NewCore(encoder, zapcore.AddSync(buf), zapcore.DebugLevel)
	return &ZapAdapter{sugar: zap.New(core).Sugar()}
}

func TestInfoWritesStructuredFields(t *testing.T) {
	var buf bytes.Buffer
	l := bufferedAdapter(&buf)

	l.Info("Job completed", "job_type", "sms_confirmation", "attempts", 1)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "Job completed", entry["msg"])
	assert.Equal(t, "sms_confirmation", entry["job_type"])
	assert.Equal(t, float64(1), entry["attempts"])
	assert.Equal(t, "info", entry["level"])
}

func TestWithFieldCarriesContext(t *testing.T) {
	var buf bytes.Buffer
	l := bufferedAdapter(&buf).WithField("request_id", "req-1")

	l.Warn("No matching request")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "req-1", entry["request_id"])
	assert.Equal(t, "warn", entry["level"])
}

func TestWithFieldsDoesNotMutateParent(t *testing.T) {
	var buf bytes.Buffer
	parent := bufferedAdapter(&buf)
	_ = parent.WithFields(map[string]any{"business_id": "biz-1"})

	parent.Info("parent entry")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	_, ok := entry["business_id"]
	assert.False(t, ok)
}

func TestNewParsesLevel(t *testing.T) {
	l, err := New("debug")
	require.NoError(t, err)
	require.NotNil(t, l)
	require.NoError(t, l.Close())

	l, err = New("not-a-level")
	require.NoError(t, err)
	require.NoError(t, l.Close())
}
