package convert

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "voxstore.toml")
	content := `
[paths]
raw = "scans/raw"
converted = "scans/converted"
reconstructed = "scans/reconstructed"

[run]
workers = 4
compression = "snappy"
cache_mb = 8

[logging]
logfile = "voxstore.log"
max_log_size = 50
max_log_age = 7
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("setup: %v", err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	// Relative paths resolve against the config file's directory.
	if cfg.Paths.Raw != filepath.Join(dir, "scans", "raw") {
		t.Errorf("raw root %q not resolved against config dir", cfg.Paths.Raw)
	}
	if cfg.Logging.Logfile != filepath.Join(dir, "voxstore.log") {
		t.Errorf("logfile %q not resolved against config dir", cfg.Logging.Logfile)
	}
	if cfg.Run.Workers != 4 || cfg.Run.Compression != "snappy" || cfg.Run.CacheSize != 8 {
		t.Errorf("run config %+v not decoded", cfg.Run)
	}
	if cfg.Logging.MaxSize != 50 || cfg.Logging.MaxAge != 7 {
		t.Errorf("logging config %+v not decoded", cfg.Logging)
	}
}

func TestLoadConfigDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "minimal.toml")
	if err := os.WriteFile(path, []byte(""), 0644); err != nil {
		t.Fatalf("setup: %v", err)
	}
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Run.Workers != 1 || cfg.Run.Compression != "zstd" {
		t.Errorf("defaults not applied: %+v", cfg.Run)
	}
}

func TestLoadConfigBadCompression(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.toml")
	if err := os.WriteFile(path, []byte("[run]\ncompression = \"lzma\"\n"), 0644); err != nil {
		t.Fatalf("setup: %v", err)
	}
	if _, err := LoadConfig(path); err == nil {
		t.Errorf("expected unknown compressor to be rejected")
	}
}
