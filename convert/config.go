package convert

import (
	"fmt"
	"path/filepath"

	"github.com/BurntSushi/toml"

	"github.com/hammb/voxstore/store"
	"github.com/hammb/voxstore/voxstore"
)

// Config is the TOML configuration for a conversion run.  Every root is
// explicit so tests can point a pipeline at temporary directories.
type Config struct {
	Paths   pathConfig
	Run     runConfig
	Logging voxstore.LogConfig
}

type pathConfig struct {
	// Raw holds one subdirectory per series; the directory name is the series id.
	Raw string

	// Converted receives <id>.vxs stores and <id>.json sidecars.
	Converted string

	// Reconstructed receives one output subdirectory per series id.
	Reconstructed string
}

type runConfig struct {
	// Workers bounds how many series are processed concurrently.  Each series'
	// own load/write/read/reconstruct steps always run strictly in order.
	Workers int

	// Compression names the store compressor: "zstd" (default) or "snappy".
	Compression string

	// CacheSize is the decoded-chunk cache per opened store, in megabytes.
	CacheSize int `toml:"cache_mb"`
}

// DefaultConfig returns the conventional data layout under root.
func DefaultConfig(root string) *Config {
	return &Config{
		Paths: pathConfig{
			Raw:           filepath.Join(root, "raw"),
			Converted:     filepath.Join(root, "converted"),
			Reconstructed: filepath.Join(root, "reconstructed"),
		},
		Run: runConfig{
			Workers:     1,
			Compression: store.Zstd.String(),
			CacheSize:   32,
		},
	}
}

// LoadConfig reads a TOML config file.  Relative paths are interpreted
// relative to the config file's own directory.
func LoadConfig(path string) (*Config, error) {
	c := DefaultConfig("data")
	if _, err := toml.DecodeFile(path, c); err != nil {
		return nil, fmt.Errorf("could not decode config %q: %v", path, err)
	}
	if err := c.convertPathsToAbsolute(path); err != nil {
		return nil, err
	}
	if c.Run.Workers < 1 {
		c.Run.Workers = 1
	}
	if _, err := store.CompressionByName(c.Run.Compression); err != nil {
		return nil, fmt.Errorf("config %q: %v", path, err)
	}
	return c, nil
}

func (c *Config) convertPathsToAbsolute(configPath string) error {
	configDir := filepath.Dir(configPath)
	for _, p := range []*string{&c.Paths.Raw, &c.Paths.Converted, &c.Paths.Reconstructed, &c.Logging.Logfile} {
		if *p == "" || filepath.IsAbs(*p) {
			continue
		}
		abs, err := filepath.Abs(filepath.Join(configDir, *p))
		if err != nil {
			return fmt.Errorf("error converting %q to absolute path: %v", *p, err)
		}
		*p = abs
	}
	return nil
}
