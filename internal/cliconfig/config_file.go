package cliconfig

import (
	"os"
	"path/filepath"

	toml "github.com/pelletier/go-toml/v2"
)

// fileConfig mirrors Config but uses strings for durations to make TOML friendly.
type fileConfig struct {
	ListenAddr         string `toml:"listen_addr"`
	NATSURL            string `toml:"nats_url"`
	RedisAddr          string `toml:"redis_addr"`
	SubjectPrefix      string `toml:"subject_prefix"`
	InstanceID         string `toml:"instance_id"`
	SessionTTL         string `toml:"session_ttl"`
	ReadTimeout        string `toml:"read_timeout"`
	MaxBufferBytes     int    `toml:"max_buffer_bytes"`
	MaxBatchMessages   int    `toml:"max_batch_messages"`
	MaxBatchBytes      int    `toml:"max_batch_bytes"`
	FlushInterval      string `toml:"flush_interval"`
	HardFlushInterval  string `toml:"hard_flush_interval"`
	CheckpointDir      string `toml:"checkpoint_dir"`
	CheckpointInterval string `toml:"checkpoint_interval"`
	LogLevel           string `toml:"log_level"`
}

// LoadFileConfig reads and parses a TOML config file from the given path.
func LoadFileConfig(path string) (fileConfig, error) {
	var fc fileConfig
	b, err := os.ReadFile(path)
	if err != nil {
		return fc, err
	}
	if err := toml.Unmarshal(b, &fc); err != nil {
		return fc, err
	}
	return fc, nil
}

// DefaultConfigPath returns ~/.fixship/config.toml if the user home
// directory is accessible.
func DefaultConfigPath() string {
	if h, err := os.UserHomeDir(); err == nil {
		return filepath.Join(h, ".fixship", "config.toml")
	}
	return ""
}

// ApplyFileConfig applies configuration from a file to the Config struct.
// It respects flags that have been explicitly set (changed map).
func ApplyFileConfig(cfg *Config, fc fileConfig, changed map[string]bool) error {
	s := newConfigSetter(changed)

	s.setString("listen", fc.ListenAddr, &cfg.ListenAddr)
	s.setString("nats-url", fc.NATSURL, &cfg.NATSURL)
	s.setString("redis-addr", fc.RedisAddr, &cfg.RedisAddr)
	s.setString("subject-prefix", fc.SubjectPrefix, &cfg.SubjectPrefix)
	s.setString("instance-id", fc.InstanceID, &cfg.InstanceID)
	s.setString("checkpoint-dir", fc.CheckpointDir, &cfg.CheckpointDir)
	s.setString("log-level", fc.LogLevel, &cfg.LogLevel)

	if err := s.setDuration("session-ttl", fc.SessionTTL, &cfg.SessionTTL); err != nil {
		return err
	}
	if err := s.setDuration("read-timeout", fc.ReadTimeout, &cfg.ReadTimeout); err != nil {
		return err
	}
	if err := s.setDuration("flush-interval", fc.FlushInterval, &cfg.FlushInterval); err != nil {
		return err
	}
	if err := s.setDuration("hard-flush-interval", fc.HardFlushInterval, &cfg.HardFlushInterval); err != nil {
		return err
	}
	if err := s.setDuration("checkpoint-interval", fc.CheckpointInterval, &cfg.CheckpointInterval); err != nil {
		return err
	}

	s.setInt("max-buffer-bytes", fc.MaxBufferBytes, &cfg.MaxBufferBytes)
	s.setInt("max-batch-messages", fc.MaxBatchMessages, &cfg.MaxBatchMessages)
	s.setInt("max-batch-bytes", fc.MaxBatchBytes, &cfg.MaxBatchBytes)

	return nil
}

// FileExists checks if a file exists at the given path.
func FileExists(p string) bool {
	_, err := os.Stat(p)
	return err == nil
}
