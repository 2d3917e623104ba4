package debug

import (
	"bytes"
	"io"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSetOutput(t *testing.T) {
	defer SetOutput(io.Discard)

	var buf bytes.Buffer
	SetOutput(&buf)
	require.True(t, Enabled())

	Log("vertex %d added", 3)
	Warn("stale selection")
	Error("save failed: %s", "locked")

	out := buf.String()
	require.Contains(t, out, "DEBUG")
	require.Contains(t, out, "vertex 3 added")
	require.Contains(t, out, "WARN")
	require.Contains(t, out, "save failed: locked")
}

func TestDiscardDisables(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf)
	SetOutput(io.Discard)

	require.False(t, Enabled())
	Log("ignored")
	require.Empty(t, buf.String())
}
