package cliconfig

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadFileConfig(t *testing.T) {
	path := writeConfigFile(t, `
listen_addr = ":7777"
nats_url = "nats://broker:4222"
redis_addr = "redis:6379"
subject_prefix = "md"
session_ttl = "10m"
flush_interval = "250ms"
max_batch_messages = 64
log_level = "debug"
`)

	fc, err := LoadFileConfig(path)
	if err != nil {
		t.Fatalf("LoadFileConfig: %v", err)
	}

	cfg := DefaultConfig()
	if err := ApplyFileConfig(&cfg, fc, nil); err != nil {
		t.Fatalf("ApplyFileConfig: %v", err)
	}

	if cfg.ListenAddr != ":7777" {
		t.Errorf("ListenAddr = %q, want :7777", cfg.ListenAddr)
	}
	if cfg.NATSURL != "nats://broker:4222" {
		t.Errorf("NATSURL = %q", cfg.NATSURL)
	}
	if cfg.RedisAddr != "redis:6379" {
		t.Errorf("RedisAddr = %q", cfg.RedisAddr)
	}
	if cfg.SessionTTL != 10*time.Minute {
		t.Errorf("SessionTTL = %v, want 10m", cfg.SessionTTL)
	}
	if cfg.FlushInterval != 250*time.Millisecond {
		t.Errorf("FlushInterval = %v, want 250ms", cfg.FlushInterval)
	}
	if cfg.MaxBatchMessages != 64 {
		t.Errorf("MaxBatchMessages = %d, want 64", cfg.MaxBatchMessages)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("LogLevel = %q, want debug", cfg.LogLevel)
	}
}

func TestApplyFileConfigRespectsFlags(t *testing.T) {
	path := writeConfigFile(t, `listen_addr = ":7777"`)

	fc, err := LoadFileConfig(path)
	if err != nil {
		t.Fatalf("LoadFileConfig: %v", err)
	}

	cfg := DefaultConfig()
	cfg.ListenAddr = ":5000"
	changed := map[string]bool{"listen": true}
	if err := ApplyFileConfig(&cfg, fc, changed); err != nil {
		t.Fatalf("ApplyFileConfig: %v", err)
	}

	if cfg.ListenAddr != ":5000" {
		t.Errorf("flag value should win, got %q", cfg.ListenAddr)
	}
}

func TestLoadFileConfigBadDuration(t *testing.T) {
	path := writeConfigFile(t, `flush_interval = "soon"`)

	fc, err := LoadFileConfig(path)
	if err != nil {
		t.Fatalf("LoadFileConfig: %v", err)
	}

	cfg := DefaultConfig()
	if err := ApplyFileConfig(&cfg, fc, nil); err == nil {
		t.Error("expected duration parse error")
	}
}

func TestLoadFileConfigMissing(t *testing.T) {
	_, err := LoadFileConfig(filepath.Join(t.TempDir(), "nope.toml"))
	if err == nil {
		t.Error("expected error for missing file")
	}
}

func TestFileExists(t *testing.T) {
	path := writeConfigFile(t, "")
	if !FileExists(path) {
		t.Error("FileExists should be true for existing file")
	}
	if FileExists(path + ".nope") {
		t.Error("FileExists should be false for missing file")
	}
}
