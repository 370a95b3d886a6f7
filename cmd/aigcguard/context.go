package main

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"github.com/zsy-dream/aigcguard/internal/config"
	"github.com/zsy-dream/aigcguard/internal/corpus"
	"github.com/zsy-dream/aigcguard/internal/logging"
	"github.com/zsy-dream/aigcguard/internal/matching"
	"github.com/zsy-dream/aigcguard/internal/video"
	"github.com/zsy-dream/aigcguard/internal/watermark"
)

type commandContext struct {
	configFlag *string

	configOnce sync.Once
	config     *config.Config
	configErr  error
}

func newCommandContext(configFlag *string) *commandContext {
	return &commandContext{configFlag: configFlag}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, _, _, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

func (c *commandContext) logger() *slog.Logger {
	cfg, err := c.ensureConfig()
	if err != nil {
		return logging.NewNop()
	}

	// Mirror log output to the configured log directory. The file handle
	// lives for the process; commands are short-lived.
	var output io.Writer = os.Stderr
	if cfg.Paths.LogDir != "" {
		if file, err := logging.OpenLogFile(filepath.Join(cfg.Paths.LogDir, "aigcguard.log")); err == nil {
			output = io.MultiWriter(os.Stderr, file)
		}
	}

	logger, err := logging.New(logging.Options{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Output: output,
	})
	if err != nil {
		return logging.NewNop()
	}
	return logger
}

// withStore opens the corpus store for the duration of fn. The store
// holds the data-directory lock, so it is opened per command rather than
// kept around.
func (c *commandContext) withStore(fn func(*config.Config, *corpus.Store) error) error {
	cfg, err := c.ensureConfig()
	if err != nil {
		return err
	}
	store, err := corpus.Open(cfg.Paths.DataDir)
	if err != nil {
		return err
	}
	defer store.Close()
	return fn(cfg, store)
}

// withService wires the full detection stack: store, TTL cache, matcher,
// and the orchestration service.
func (c *commandContext) withService(fn func(*config.Config, *watermark.Service) error) error {
	return c.withStore(func(cfg *config.Config, store *corpus.Store) error {
		logger := c.logger()
		cache := corpus.NewCache(store, cfg.Cache.CorpusTTL(), cfg.Cache.ProfileTTL(), logger)
		svc := watermark.NewService(cfg, store, cache, logger)
		svc.SetDeepSearcher(matching.NoopDeepSearcher{})
		return fn(cfg, svc)
	})
}

// withSampler builds the video sampler on top of the full service stack.
func (c *commandContext) withSampler(fn func(*config.Config, *video.Sampler) error) error {
	return c.withService(func(cfg *config.Config, svc *watermark.Service) error {
		return fn(cfg, video.NewSampler(cfg, svc, c.logger()))
	})
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}
