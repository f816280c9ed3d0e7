package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"runtime/debug"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	pflag "github.com/spf13/pflag"

	fixship "github.com/bft-labs/fixship"
	"github.com/bft-labs/fixship/internal/cliconfig"
	"github.com/bft-labs/fixship/pkg/log"
)

const helpDescription = `
Accept FIX tag=value streams over TCP, frame and decode them on the fly,
and publish the decoded messages to NATS subjects.

Highlights:
  - Tolerates fragmentation: bytes may arrive in any chunking.
  - Resynchronizes on garbage between messages instead of dying.
  - Batches publishes with size and time triggers to keep NATS round trips low.
  - Optional Redis registry of live sessions; configure via file, env, or flags.
`

var exampleUsage = strings.TrimSpace(`
  fixship --listen :9876 --nats-url nats://localhost:4222
  fixship --config $HOME/.fixship/config.toml --redis-addr localhost:6379
`)

func getVersion() string {
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" {
		return info.Main.Version
	}
	return "dev"
}

func main() {
	cfg := cliconfig.DefaultConfig()
	var cfgPath string

	logger := log.NewZerologAdapter()

	root := &cobra.Command{
		Use:     "fixship",
		Short:   "Stream FIX sessions into NATS",
		Long:    strings.TrimSpace(helpDescription),
		Example: exampleUsage,
		Version: fmt.Sprintf("%s %s/%s", getVersion(), runtime.GOOS, runtime.GOARCH),
		RunE: func(cmd *cobra.Command, args []string) error {
			// Load config file first (default $HOME/.fixship/config.toml),
			// then env, then flag overrides.
			cfgFile := cfgPath
			if cfgFile == "" {
				cfgFile = cliconfig.DefaultConfigPath()
			}

			// Build set of changed flags
			changed := map[string]bool{}
			cmd.Flags().Visit(func(f *pflag.Flag) { changed[f.Name] = true })

			if cfgFile != "" && cliconfig.FileExists(cfgFile) {
				fc, err := cliconfig.LoadFileConfig(cfgFile)
				if err != nil {
					return fmt.Errorf("load config: %w", err)
				}
				if err := cliconfig.ApplyFileConfig(&cfg, fc, changed); err != nil {
					return err
				}
			}

			if err := cliconfig.ApplyEnvConfig(&cfg, changed); err != nil {
				return err
			}

			if err := cfg.Validate(); err != nil {
				return err
			}
			log.SetGlobalLevel(cfg.LogLevel)

			logger.Info("configuration resolved",
				log.String("listen", cfg.ListenAddr),
				log.String("nats_url", cfg.NATSURL),
				log.String("redis_addr", cfg.RedisAddr),
				log.String("subject_prefix", cfg.SubjectPrefix),
				log.String("instance_id", cfg.InstanceID),
			)

			opts := []fixship.Option{
				fixship.WithLogger(logger),
			}
			if cfgFile != "" && cliconfig.FileExists(cfgFile) {
				opts = append(opts, fixship.WithConfigWatcher(cfgFile))
			}

			f, err := fixship.New(cfg, opts...)
			if err != nil {
				return fmt.Errorf("create fixship: %w", err)
			}

			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()

			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

			if err := f.Start(ctx); err != nil {
				return fmt.Errorf("start fixship: %w", err)
			}

			// Detect a crash of the serving goroutines.
			doneCh := make(chan struct{})
			go func() {
				ticker := time.NewTicker(100 * time.Millisecond)
				defer ticker.Stop()
				for {
					select {
					case <-ctx.Done():
						return
					case <-ticker.C:
						status := f.Status()
						if status == fixship.StateStopped || status == fixship.StateCrashed {
							close(doneCh)
							return
						}
					}
				}
			}()

			select {
			case <-sigCh:
				logger.Info("received signal, stopping")
			case <-doneCh:
				if f.Status() == fixship.StateCrashed {
					logger.Error("fixship crashed")
				}
			}

			if err := f.Stop(); err != nil {
				return fmt.Errorf("stop fixship: %w", err)
			}

			stats := f.Stats()
			logger.Info("shutdown complete",
				log.Uint64("messages", stats.MessagesTotal),
				log.Uint64("bytes", stats.BytesTotal),
				log.Uint64("sessions", stats.SessionsTotal),
			)
			return nil
		},
	}

	// Flags
	root.Flags().StringVar(&cfgPath, "config", "", "path to config file (default: $HOME/.fixship/config.toml)")
	root.Flags().StringVar(&cfg.ListenAddr, "listen", cfg.ListenAddr, "TCP address to accept FIX streams on")
	root.Flags().StringVar(&cfg.NATSURL, "nats-url", cfg.NATSURL, "NATS server URL")
	root.Flags().StringVar(&cfg.RedisAddr, "redis-addr", cfg.RedisAddr, "Redis address for the session registry (empty disables it)")
	root.Flags().StringVar(&cfg.SubjectPrefix, "subject-prefix", cfg.SubjectPrefix, "root of the published subject hierarchy")
	root.Flags().StringVar(&cfg.InstanceID, "instance-id", cfg.InstanceID, "instance name used in connection ids")

	root.Flags().DurationVar(&cfg.SessionTTL, "session-ttl", cfg.SessionTTL, "Redis session record TTL")
	root.Flags().DurationVar(&cfg.ReadTimeout, "read-timeout", cfg.ReadTimeout, "per-read deadline on FIX connections")
	root.Flags().IntVar(&cfg.MaxBufferBytes, "max-buffer-bytes", cfg.MaxBufferBytes, "per-session parser buffer cap")
	root.Flags().IntVar(&cfg.MaxBatchMessages, "max-batch-messages", cfg.MaxBatchMessages, "maximum messages per published batch")
	root.Flags().IntVar(&cfg.MaxBatchBytes, "max-batch-bytes", cfg.MaxBatchBytes, "maximum wire bytes per published batch")
	root.Flags().DurationVar(&cfg.FlushInterval, "flush-interval", cfg.FlushInterval, "soft publish interval")
	root.Flags().DurationVar(&cfg.HardFlushInterval, "hard-flush-interval", cfg.HardFlushInterval, "hard publish interval")

	root.Flags().StringVar(&cfg.CheckpointDir, "checkpoint-dir", cfg.CheckpointDir, "directory for the ingest checkpoint file")
	root.Flags().DurationVar(&cfg.CheckpointInterval, "checkpoint-interval", cfg.CheckpointInterval, "how often counters are persisted")
	root.Flags().StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "log level (debug, info, warn, error)")

	if err := root.Execute(); err != nil {
		logger.Error("fixship", log.Err(err))
		os.Exit(1)
	}
}
