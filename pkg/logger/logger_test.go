package logger

import (
	"bytes"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func capture(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	SetOutput(&buf)
	t.Cleanup(func() {
		SetOutput(os.Stdout)
		Init("info")
	})
	return &buf
}

func TestParseLevel(t *testing.T) {
	require.Equal(t, LevelDebug, ParseLevel("debug"))
	require.Equal(t, LevelWarn, ParseLevel(" WARNING "))
	require.Equal(t, LevelError, ParseLevel("error"))
	require.Equal(t, LevelFatal, ParseLevel("fatal"))
	require.Equal(t, LevelInfo, ParseLevel(""))
	require.Equal(t, LevelInfo, ParseLevel("bogus"))
}

func TestLevelFiltering(t *testing.T) {
	buf := capture(t)

	Init("warn")
	Debugf("hidden %d", 1)
	Infof("hidden %d", 2)
	Warnf("shown %d", 3)
	Errorf("shown %d", 4)

	got := buf.String()
	require.NotContains(t, got, "hidden")
	require.Contains(t, got, "[WARN] shown 3")
	require.Contains(t, got, "[ERROR] shown 4")
}

func TestDebugEnabled(t *testing.T) {
	buf := capture(t)

	Init("debug")
	Debug("trace me")

	require.Contains(t, buf.String(), "[DEBUG] trace me")
}

func TestRecordShape(t *testing.T) {
	buf := capture(t)

	Init("info")
	Info("one line")

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 1)
	// timestamp, level tag, message
	parts := strings.SplitN(lines[0], " ", 3)
	require.Len(t, parts, 3)
	require.Equal(t, "[INFO]", parts[1])
	require.Equal(t, "one line", parts[2])
}
