package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, DebugLevel, ParseLevel("debug"))
	assert.Equal(t, InfoLevel, ParseLevel("info"))
	assert.Equal(t, WarnLevel, ParseLevel("warning"))
	assert.Equal(t, ErrorLevel, ParseLevel("error"))
	assert.Equal(t, FatalLevel, ParseLevel("fatal"))
	assert.Equal(t, InfoLevel, ParseLevel("verbose"))
}

func TestSlogLogger(t *testing.T) {
	t.Setenv("ENV", "")

	var buf bytes.Buffer
	l := NewSlogWriter(&buf, InfoLevel, false)

	l.Debug("hidden")
	assert.Zero(t, buf.Len())

	l.With("medium", "loop").Info("link: opened", "clients", 2)

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "link: opened", rec["msg"])
	assert.Equal(t, "loop", rec["medium"])
	assert.InDelta(t, 2, rec["clients"], 0)
	assert.Contains(t, rec, "ts")

	l.SetLevel(DebugLevel)
	assert.Equal(t, DebugLevel, l.Level())
	buf.Reset()
	l.Debug("visible")
	assert.Contains(t, buf.String(), "visible")
}

func TestZerologLogger(t *testing.T) {
	var buf bytes.Buffer
	l := NewZerolog(zerolog.New(&buf).Level(zerolog.InfoLevel))

	l.Debug("hidden")
	assert.Zero(t, buf.Len())

	l.With("medium", "loop").Warn("link: corrupt data", "bytes", 3, 42, "odd")

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "warn", rec["level"])
	assert.Equal(t, "link: corrupt data", rec["message"])
	assert.Equal(t, "loop", rec["medium"])
	assert.Equal(t, "odd", rec["42"])

	assert.Equal(t, InfoLevel, l.Level())
	l.SetLevel(ErrorLevel)
	assert.Equal(t, ErrorLevel, l.Level())
}

func TestLogrusLogger(t *testing.T) {
	var buf bytes.Buffer
	base := logrus.New()
	base.SetOutput(&buf)
	base.SetFormatter(&logrus.JSONFormatter{})
	base.SetLevel(logrus.InfoLevel)

	l := NewLogrus(base)
	l.Debug("hidden")
	assert.Zero(t, buf.Len())

	l.With("medium", "loop").Error("link: send failed", "id", 7)

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "error", rec["level"])
	assert.Equal(t, "link: send failed", rec["msg"])
	assert.Equal(t, "loop", rec["medium"])
	assert.InDelta(t, 7, rec["id"], 0)

	l.SetLevel(DebugLevel)
	assert.Equal(t, DebugLevel, l.Level())
	assert.Equal(t, logrus.DebugLevel, base.GetLevel())
}

func TestMockLogger(t *testing.T) {
	m := NewMockLogger()
	m.On("Info", "link: opened", []any{"clients", 1}).Return().Once()
	m.On("Level").Return(WarnLevel)

	m.Info("link: opened", "clients", 1)
	assert.Equal(t, WarnLevel, m.Level())
	m.AssertExpectations(t)

	p := NewPermissiveMockLogger()
	p.Debug("anything", "k", "v")
	p.With("a", 1).Error("boom")
	p.AssertCalled(t, "Error", "boom", mock.Anything)
}

func TestSetDefault(t *testing.T) {
	prev := GetLogger()
	t.Cleanup(func() { SetDefault(prev) })

	m := NewPermissiveMockLogger()
	SetDefault(m)
	SetDefault(nil)
	require.Same(t, m, GetLogger())

	Warn("link: medium closed", "medium", "COM1")
	m.AssertCalled(t, "Warn", "link: medium closed", []any{"medium", "COM1"})
}
