package logger

import (
	"bytes"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLevelFromEnv(t *testing.T) {
	tests := []struct {
		name     string
		envValue string
		verbose  bool
		want     zerolog.Level
	}{
		{name: "debug when EC2SSM_DEBUG is set", envValue: "1", want: zerolog.DebugLevel},
		{name: "debug for any value", envValue: "true", want: zerolog.DebugLevel},
		{name: "debug when verbose", verbose: true, want: zerolog.DebugLevel},
		{name: "warn by default", want: zerolog.WarnLevel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(DebugEnvVar, tt.envValue)
			assert.Equal(t, tt.want, LevelFromEnv(tt.verbose))
		})
	}
}

func TestNew_WritesComponentAndMessage(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, "resolver", zerolog.DebugLevel)

	l.Debug("filter %s", "tag:Name=web-1")

	out := buf.String()
	assert.Contains(t, out, "filter tag:Name=web-1")
	assert.Contains(t, out, "component=resolver")
	assert.Contains(t, out, "DBG")
}

func TestNew_RespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, "", zerolog.WarnLevel)

	l.Debug("hidden debug")
	l.Info("hidden info")
	assert.Empty(t, buf.String())

	l.Warn("visible warning")
	l.Error("visible error %d", 42)

	out := buf.String()
	assert.Contains(t, out, "WRN")
	assert.Contains(t, out, "visible warning")
	assert.Contains(t, out, "ERR")
	assert.Contains(t, out, "visible error 42")
	assert.NotContains(t, out, "component=")
}

func TestNoopLogger(t *testing.T) {
	l := Noop()
	assert.NotPanics(t, func() {
		l.Debug("debug")
		l.Info("info")
		l.Warn("warn")
		l.Error("error")
	})
}

func TestBufferLogger(t *testing.T) {
	l := NewBufferLogger()

	l.Debug("debug %s", "msg")
	l.Info("info %s", "msg")
	l.Warn("warn %s", "msg")
	l.Error("error %s", "msg")

	require.Len(t, l.Messages, 4)
	assert.Equal(t, LogMessage{Level: "debug", Message: "debug msg"}, l.Messages[0])
	assert.Equal(t, LogMessage{Level: "info", Message: "info msg"}, l.Messages[1])
	assert.Equal(t, LogMessage{Level: "warn", Message: "warn msg"}, l.Messages[2])
	assert.Equal(t, LogMessage{Level: "error", Message: "error msg"}, l.Messages[3])

	assert.True(t, l.HasLevel("warn"))
	assert.True(t, l.Contains("info m"))
	assert.False(t, l.Contains("nothing like this"))

	l.Clear()
	assert.Empty(t, l.Messages)
	assert.False(t, l.HasLevel("debug"))
}

func TestDefault(t *testing.T) {
	original := defaultLogger
	defer func() { defaultLogger = original }()

	assert.NotNil(t, Default())

	buf := NewBufferLogger()
	SetDefault(buf)
	assert.Equal(t, buf, Default())
}

func TestLoggerInterface(t *testing.T) {
	var _ Logger = NewEnvLogger("")
	var _ Logger = Noop()
	var _ Logger = NewBufferLogger()
}
