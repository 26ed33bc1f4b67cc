// Package syncconfig loads the YAML configuration shared by the server and
// client binaries. Bad or missing configuration is a startup error: both
// commands are expected to log it and exit rather than run with defaults
// the operator never asked for.
package syncconfig

import (
	"errors"
	"fmt"
	"os"

	"sigs.k8s.io/yaml"
)

// DefaultBlockSize is the block size B, in bytes, applied when the config
// leaves block_size unset or zero.
const DefaultBlockSize = 4096

// ErrInvalid marks a config file that parsed but failed validation, or
// that could not be read at all. Callers distinguish this from
// rpc.ErrTransport when deciding whether a failure is fatal at startup
// or fatal only to the current sync pass.
var ErrInvalid = errors.New("syncconfig: invalid configuration")

// Config is the shared shape for both surfsync-server and surfsync-client.
// Not every field applies to every binary: the server only needs
// ServerAddr to know what to listen on; the client needs ServerAddr,
// BaseDir and BlockSize, and uses IgnoreFile only when it is set.
type Config struct {
	ServerAddr string `json:"server_addr"`
	BaseDir    string `json:"base_dir"`
	BlockSize  int    `json:"block_size"`
	IgnoreFile string `json:"ignore_file,omitempty"`
}

// Load reads and validates a YAML config file at path.
func Load(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: reading %s: %v", ErrInvalid, path, err)
	}

	var c Config
	if err := yaml.Unmarshal(raw, &c); err != nil {
		return nil, fmt.Errorf("%w: parsing %s: %v", ErrInvalid, path, err)
	}

	if c.BlockSize == 0 {
		c.BlockSize = DefaultBlockSize
	}

	if err := c.validate(); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalid, path, err)
	}
	return &c, nil
}

func (c *Config) validate() error {
	if c.ServerAddr == "" {
		return errors.New("server_addr is required")
	}
	if c.BlockSize <= 0 {
		return errors.New("block_size must be positive")
	}
	return nil
}
