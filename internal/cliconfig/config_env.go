package cliconfig

import "os"

// ApplyEnvConfig applies configuration from environment variables (FIXSHIP_*).
// It respects flags that have been explicitly set (changed map).
// Returns error if any environment variable has an invalid format.
func ApplyEnvConfig(cfg *Config, changed map[string]bool) error {
	s := newConfigSetter(changed)

	s.setString("listen", os.Getenv("FIXSHIP_LISTEN_ADDR"), &cfg.ListenAddr)
	s.setString("nats-url", os.Getenv("FIXSHIP_NATS_URL"), &cfg.NATSURL)
	s.setString("redis-addr", os.Getenv("FIXSHIP_REDIS_ADDR"), &cfg.RedisAddr)
	s.setString("subject-prefix", os.Getenv("FIXSHIP_SUBJECT_PREFIX"), &cfg.SubjectPrefix)
	s.setString("instance-id", os.Getenv("FIXSHIP_INSTANCE_ID"), &cfg.InstanceID)
	s.setString("checkpoint-dir", os.Getenv("FIXSHIP_CHECKPOINT_DIR"), &cfg.CheckpointDir)
	s.setString("log-level", os.Getenv("FIXSHIP_LOG_LEVEL"), &cfg.LogLevel)

	if err := s.setDuration("session-ttl", os.Getenv("FIXSHIP_SESSION_TTL"), &cfg.SessionTTL); err != nil {
		return err
	}
	if err := s.setDuration("read-timeout", os.Getenv("FIXSHIP_READ_TIMEOUT"), &cfg.ReadTimeout); err != nil {
		return err
	}
	if err := s.setDuration("flush-interval", os.Getenv("FIXSHIP_FLUSH_INTERVAL"), &cfg.FlushInterval); err != nil {
		return err
	}
	if err := s.setDuration("hard-flush-interval", os.Getenv("FIXSHIP_HARD_FLUSH_INTERVAL"), &cfg.HardFlushInterval); err != nil {
		return err
	}
	if err := s.setDuration("checkpoint-interval", os.Getenv("FIXSHIP_CHECKPOINT_INTERVAL"), &cfg.CheckpointInterval); err != nil {
		return err
	}

	if err := s.setIntFromString("max-buffer-bytes", os.Getenv("FIXSHIP_MAX_BUFFER_BYTES"), &cfg.MaxBufferBytes); err != nil {
		return err
	}
	if err := s.setIntFromString("max-batch-messages", os.Getenv("FIXSHIP_MAX_BATCH_MESSAGES"), &cfg.MaxBatchMessages); err != nil {
		return err
	}
	if err := s.setIntFromString("max-batch-bytes", os.Getenv("FIXSHIP_MAX_BATCH_BYTES"), &cfg.MaxBatchBytes); err != nil {
		return err
	}

	return nil
}
