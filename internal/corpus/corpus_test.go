package corpus

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	c := Default()

	assert.NotEmpty(t, c.Patterns("volume_up"))
	assert.Contains(t, c.Patterns("volume_up"), "increase volume")
	assert.Contains(t, c.Intents(), "open_chrome")
	assert.Nil(t, c.Patterns("no_such_intent"))
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "commands.yaml")
	content := `
volume_up:
  - increase volume
  - volume up
screenshot:
  - take screenshot
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	c, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"increase volume", "volume up"}, c.Patterns("volume_up"))
	assert.Equal(t, []string{"screenshot", "volume_up"}, c.Intents())
}

func TestLoad_EmptyIntentRejected(t *testing.T) {
	path := filepath.Join(t.TempDir(), "commands.yaml")
	require.NoError(t, os.WriteFile(path, []byte("volume_up: []\n"), 0644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}
