package system

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExecuteConfirmations(t *testing.T) {
	var launched [][]string
	runner := func(_ context.Context, name string, args ...string) error {
		launched = append(launched, append([]string{name}, args...))
		return nil
	}
	e := NewHostExecutor(zerolog.Nop(), WithRunner(runner))

	tests := []struct {
		intent string
		reply  string
		cmd    string
	}{
		{"open_chrome", "Opening Google Chrome.", "google-chrome"},
		{"open_vscode", "Opening Visual Studio Code.", "code"},
		{"shutdown", "Shutting down the system.", "shutdown"},
		{"restart", "Restarting the system.", "reboot"},
		{"volume_up", "Increasing volume.", "amixer"},
		{"volume_down", "Decreasing volume.", "amixer"},
		{"mute_volume", "Volume muted.", "amixer"},
	}
	for _, tt := range tests {
		launched = nil
		reply, handled := e.Execute(context.Background(), tt.intent)
		assert.True(t, handled, tt.intent)
		assert.Equal(t, tt.reply, reply)
		require.Len(t, launched, 1)
		assert.Equal(t, tt.cmd, launched[0][0])
	}
}

func TestExecuteUnknownIntent(t *testing.T) {
	e := NewHostExecutor(zerolog.Nop(), WithRunner(func(context.Context, string, ...string) error {
		t.Fatal("should not spawn")
		return nil
	}))

	reply, handled := e.Execute(context.Background(), "weather")
	assert.False(t, handled)
	assert.Empty(t, reply)
}

func TestScreenshot(t *testing.T) {
	var got []string
	runner := func(_ context.Context, name string, args ...string) error {
		got = append([]string{name}, args...)
		return nil
	}
	e := NewHostExecutor(zerolog.Nop(), WithRunner(runner), WithScreenshotDir(t.TempDir()))

	reply, handled := e.Execute(context.Background(), "screenshot")
	assert.True(t, handled)
	assert.Contains(t, reply, "Screenshot saved to")
	require.Len(t, got, 2)
	assert.Equal(t, "scrot", got[0])
	assert.Contains(t, got[1], "jarvis_screenshot_")
}
