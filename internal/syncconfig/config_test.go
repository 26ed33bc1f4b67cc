package syncconfig

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/alecthomas/assert/v2"
)

func writeTemp(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	assert.NoError(t, os.WriteFile(path, []byte(contents), 0o644))
	return path
}

func TestLoadAppliesDefaultBlockSize(t *testing.T) {
	path := writeTemp(t, "server_addr: localhost:9000\nbase_dir: /tmp/sync\n")
	c, err := Load(path)
	assert.NoError(t, err)
	assert.Equal(t, DefaultBlockSize, c.BlockSize)
}

func TestLoadHonorsExplicitBlockSize(t *testing.T) {
	path := writeTemp(t, "server_addr: localhost:9000\nbase_dir: /tmp/sync\nblock_size: 16\n")
	c, err := Load(path)
	assert.NoError(t, err)
	assert.Equal(t, 16, c.BlockSize)
}

func TestLoadMissingServerAddrIsInvalid(t *testing.T) {
	path := writeTemp(t, "base_dir: /tmp/sync\n")
	_, err := Load(path)
	assert.True(t, errors.Is(err, ErrInvalid))
}

func TestLoadMissingFileIsInvalid(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "does-not-exist.yaml"))
	assert.True(t, errors.Is(err, ErrInvalid))
}

func TestLoadMalformedYamlIsInvalid(t *testing.T) {
	path := writeTemp(t, "server_addr: [unterminated\n")
	_, err := Load(path)
	assert.True(t, errors.Is(err, ErrInvalid))
}

func TestLoadNegativeBlockSizeIsInvalid(t *testing.T) {
	path := writeTemp(t, "server_addr: localhost:9000\nblock_size: -1\n")
	_, err := Load(path)
	assert.True(t, errors.Is(err, ErrInvalid))
}
