package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestJSONOutputCarriesFields(t *testing.T) {
	log := New(LoggingConfig{Level: "debug", Format: "json"})

	var buf bytes.Buffer
	log.SetOutput(&buf)

	log.WithField("component", "test").WithField("draw_date", "2025-06-07").Info("hello")

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	require.Equal(t, "hello", entry["msg"])
	require.Equal(t, "test", entry["component"])
	require.Equal(t, "2025-06-07", entry["draw_date"])
	require.Equal(t, "info", entry["level"])
}

func TestLevelFiltering(t *testing.T) {
	log := New(LoggingConfig{Level: "warn", Format: "json"})

	var buf bytes.Buffer
	log.SetOutput(&buf)

	log.Info("suppressed")
	require.Zero(t, buf.Len())

	log.Warn("visible")
	require.NotZero(t, buf.Len())
}

func TestUnknownLevelFallsBackToInfo(t *testing.T) {
	log := New(LoggingConfig{Level: "nonsense"})

	var buf bytes.Buffer
	log.SetOutput(&buf)

	log.Debug("suppressed at info level")
	require.Zero(t, buf.Len())
}

func TestWithErrorAttachesField(t *testing.T) {
	log := New(LoggingConfig{Format: "json"})

	var buf bytes.Buffer
	log.SetOutput(&buf)

	log.WithError(errTest).Error("boom")

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	require.Equal(t, "test failure", entry["error"])
}

var errTest = &testError{}

type testError struct{}

func (*testError) Error() string { return "test failure" }
