package cliconfig

import (
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.ListenAddr != ":9876" {
		t.Errorf("ListenAddr = %q, want :9876", cfg.ListenAddr)
	}
	if cfg.SubjectPrefix != "fix" {
		t.Errorf("SubjectPrefix = %q, want fix", cfg.SubjectPrefix)
	}
	if cfg.MaxBatchMessages != 128 {
		t.Errorf("MaxBatchMessages = %d, want 128", cfg.MaxBatchMessages)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate: %v", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults", func(c *Config) {}, false},
		{"missing listen addr", func(c *Config) { c.ListenAddr = "" }, true},
		{"missing nats url", func(c *Config) { c.NATSURL = "" }, true},
		{"zero read timeout", func(c *Config) { c.ReadTimeout = 0 }, true},
		{"zero flush interval", func(c *Config) { c.FlushInterval = 0 }, true},
		{"hard below soft", func(c *Config) { c.HardFlushInterval = c.FlushInterval / 2 }, true},
		{"zero buffer cap", func(c *Config) { c.MaxBufferBytes = 0 }, true},
		{"redis without ttl", func(c *Config) { c.RedisAddr = "localhost:6379"; c.SessionTTL = 0 }, true},
		{"redis with ttl", func(c *Config) { c.RedisAddr = "localhost:6379" }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)

			err := cfg.Validate()
			if tt.wantErr && err == nil {
				t.Error("expected validation error")
			}
			if !tt.wantErr && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestValidateFillsDerivedDefaults(t *testing.T) {
	cfg := DefaultConfig()
	cfg.SubjectPrefix = ""
	cfg.InstanceID = ""

	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if cfg.SubjectPrefix != "fix" {
		t.Errorf("SubjectPrefix = %q, want fix", cfg.SubjectPrefix)
	}
	if cfg.InstanceID == "" {
		t.Error("InstanceID should be derived")
	}
}

func TestConfigSetterRespectsChangedFlags(t *testing.T) {
	cfg := DefaultConfig()
	cfg.ListenAddr = ":7000"

	s := newConfigSetter(map[string]bool{"listen": true})
	s.setString("listen", ":8000", &cfg.ListenAddr)
	if cfg.ListenAddr != ":7000" {
		t.Errorf("changed flag should win, got %q", cfg.ListenAddr)
	}

	s.setString("subject-prefix", "md", &cfg.SubjectPrefix)
	if cfg.SubjectPrefix != "md" {
		t.Errorf("unchanged flag should apply, got %q", cfg.SubjectPrefix)
	}
}

func TestConfigSetterDuration(t *testing.T) {
	s := newConfigSetter(nil)

	var d time.Duration
	if err := s.setDuration("read-timeout", "2s", &d); err != nil {
		t.Fatalf("setDuration: %v", err)
	}
	if d != 2*time.Second {
		t.Errorf("d = %v, want 2s", d)
	}

	if err := s.setDuration("read-timeout", "nonsense", &d); err == nil {
		t.Error("expected parse error")
	}
}
