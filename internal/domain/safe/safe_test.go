package safe

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// TestParseMode verifies mapping from client strings to modes and handling of unknown values.
func TestParseMode(t *testing.T) {
	t.Parallel()

	m, ok := ParseMode("away")
	require.True(t, ok)
	require.Equal(t, ModeAway, m)

	m, ok = ParseMode(" With ")
	require.True(t, ok)
	require.Equal(t, ModeWith, m)

	m, ok = ParseMode("vacation")
	require.False(t, ok)
	require.Equal(t, ModeWith, m)
}

// TestCommandForMode verifies the mode-to-instruction mapping the device relies on.
func TestCommandForMode(t *testing.T) {
	t.Parallel()

	require.Equal(t, CommandStartMonitoring, CommandForMode(ModeAway))
	require.Equal(t, CommandStopMonitoring, CommandForMode(ModeWith))
}
