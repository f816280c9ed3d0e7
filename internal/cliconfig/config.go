// Package cliconfig resolves the effective configuration from defaults,
// a TOML file, FIXSHIP_* environment variables and command-line flags,
// in ascending precedence.
package cliconfig

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/nats-io/nats.go"
)

type Config struct {
	// ListenAddr is the TCP address inbound FIX streams connect to.
	ListenAddr string

	// NATSURL is the NATS server to publish decoded messages to.
	NATSURL string

	// RedisAddr enables the Redis session registry when non-empty.
	RedisAddr string

	// SubjectPrefix is the root of the published subject hierarchy.
	SubjectPrefix string

	// InstanceID names this process; connection ids derive from it.
	InstanceID string

	SessionTTL  time.Duration
	ReadTimeout time.Duration

	MaxBufferBytes    int
	MaxBatchMessages  int
	MaxBatchBytes     int
	FlushInterval     time.Duration
	HardFlushInterval time.Duration

	CheckpointDir      string
	CheckpointInterval time.Duration

	LogLevel string
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() Config {
	return Config{
		ListenAddr:         ":9876",
		NATSURL:            nats.DefaultURL,
		SubjectPrefix:      "fix",
		InstanceID:         defaultInstanceID(),
		SessionTTL:         5 * time.Minute,
		ReadTimeout:        5 * time.Second,
		MaxBufferBytes:     1 << 20,
		MaxBatchMessages:   128,
		MaxBatchBytes:      1 << 20,
		FlushInterval:      time.Second,
		HardFlushInterval:  5 * time.Second,
		CheckpointDir:      defaultCheckpointDir(),
		CheckpointInterval: 10 * time.Second,
		LogLevel:           "info",
	}
}

func defaultInstanceID() string {
	if h, err := os.Hostname(); err == nil && h != "" {
		return h
	}
	return "fixship"
}

func defaultCheckpointDir() string {
	if h, err := os.UserHomeDir(); err == nil {
		return filepath.Join(h, ".fixship")
	}
	return ".fixship"
}

// Validate checks the configuration for errors and sets derived defaults.
func (c *Config) Validate() error {
	if c.ListenAddr == "" {
		return fmt.Errorf("listen address is required")
	}
	if c.NATSURL == "" {
		return fmt.Errorf("nats url is required")
	}
	if c.SubjectPrefix == "" {
		c.SubjectPrefix = "fix"
	}
	if c.InstanceID == "" {
		c.InstanceID = defaultInstanceID()
	}
	if c.CheckpointDir == "" {
		c.CheckpointDir = defaultCheckpointDir()
	}

	if c.ReadTimeout <= 0 {
		return fmt.Errorf("read timeout must be positive")
	}
	if c.FlushInterval <= 0 {
		return fmt.Errorf("flush interval must be positive")
	}
	if c.HardFlushInterval < c.FlushInterval {
		return fmt.Errorf("hard flush interval must be at least the flush interval")
	}
	if c.MaxBufferBytes <= 0 {
		return fmt.Errorf("max buffer bytes must be positive")
	}
	if c.RedisAddr != "" && c.SessionTTL <= 0 {
		return fmt.Errorf("session ttl must be positive")
	}

	return nil
}

// configSetter helps apply configuration values while respecting flag precedence.
// It only applies values if the corresponding flag hasn't been explicitly set.
type configSetter struct {
	changed map[string]bool
}

// newConfigSetter creates a new setter with the given changed flags map.
func newConfigSetter(changed map[string]bool) *configSetter {
	return &configSetter{changed: changed}
}

// setString sets a string value if not empty and flag not changed.
func (s *configSetter) setString(flag, value string, dst *string) {
	if value == "" || s.changed[flag] {
		return
	}
	*dst = value
}

// setInt sets an int value if positive and flag not changed.
func (s *configSetter) setInt(flag string, value int, dst *int) {
	if value <= 0 || s.changed[flag] {
		return
	}
	*dst = value
}

// setDuration parses and sets a duration from string if valid and flag not changed.
func (s *configSetter) setDuration(flag, value string, dst *time.Duration) error {
	if value == "" || s.changed[flag] {
		return nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return fmt.Errorf("parse %s: %w", flag, err)
	}
	*dst = d
	return nil
}

// setIntFromString parses a string to int and sets the destination if valid.
// Used for environment variables that come as strings.
func (s *configSetter) setIntFromString(flag, value string, dst *int) error {
	if value == "" || s.changed[flag] {
		return nil
	}
	i, err := strconv.Atoi(value)
	if err != nil {
		return fmt.Errorf("parse %s: %w", flag, err)
	}
	if i <= 0 {
		return nil
	}
	*dst = i
	return nil
}
