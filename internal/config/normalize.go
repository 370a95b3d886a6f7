package config

import (
	"fmt"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeWatermark()
	c.normalizeCache()
	c.normalizeMatching()
	c.normalizeVideo()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.DataDir) == "" {
		c.Paths.DataDir = defaultDataDir
	}
	if c.Paths.DataDir, err = expandPath(c.Paths.DataDir); err != nil {
		return fmt.Errorf("paths.data_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.OutputDir) == "" {
		c.Paths.OutputDir = defaultOutputDir
	}
	if c.Paths.OutputDir, err = expandPath(c.Paths.OutputDir); err != nil {
		return fmt.Errorf("paths.output_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeWatermark() {
	if c.Watermark.QIMStep == 0 {
		c.Watermark.QIMStep = defaultQIMStep
	}
	if c.Watermark.BlockSize == 0 {
		c.Watermark.BlockSize = defaultBlockSize
	}
	if c.Watermark.MinStrength == 0 {
		c.Watermark.MinStrength = defaultMinStrength
	}
	if c.Watermark.MinMarkStrength == 0 {
		c.Watermark.MinMarkStrength = defaultMinMarkStrength
	}
	if c.Watermark.JPEGQuality == 0 {
		c.Watermark.JPEGQuality = defaultJPEGQuality
	}
	// Drop ladder entries equal to the active step so recovery never
	// re-runs the primary extraction.
	steps := c.Watermark.LegacySteps[:0]
	for _, q := range c.Watermark.LegacySteps {
		if q > 0 && q != c.Watermark.QIMStep {
			steps = append(steps, q)
		}
	}
	c.Watermark.LegacySteps = steps
}

func (c *Config) normalizeCache() {
	if c.Cache.CorpusTTLSeconds == 0 {
		c.Cache.CorpusTTLSeconds = defaultCorpusTTLSeconds
	}
	if c.Cache.ProfileTTLSeconds == 0 {
		c.Cache.ProfileTTLSeconds = defaultProfileTTLSeconds
	}
}

func (c *Config) normalizeMatching() {
	if c.Matching.MinSimilarity == 0 {
		c.Matching.MinSimilarity = defaultMinSimilarity
	}
	if c.Matching.CandidateFloor == 0 {
		c.Matching.CandidateFloor = defaultCandidateFloor
	}
	if c.Matching.TopK == 0 {
		c.Matching.TopK = defaultTopK
	}
	if c.Matching.HashBonusThreshold == 0 {
		c.Matching.HashBonusThreshold = defaultHashBonusThreshold
	}
	if c.Matching.HashBonusWeight == 0 {
		c.Matching.HashBonusWeight = defaultHashBonusWeight
	}
	if c.Matching.TemporalBonus == 0 {
		c.Matching.TemporalBonus = defaultTemporalBonus
	}
	if c.Matching.TemporalWindowSeconds == 0 {
		c.Matching.TemporalWindowSeconds = defaultTemporalWindowSeconds
	}
}

func (c *Config) normalizeVideo() {
	if c.Video.EmbedIntervalSeconds == 0 {
		c.Video.EmbedIntervalSeconds = defaultEmbedIntervalSeconds
	}
	if c.Video.DetectIntervalSeconds == 0 {
		c.Video.DetectIntervalSeconds = defaultDetectIntervalSeconds
	}
	if c.Video.MaxSeconds == 0 {
		c.Video.MaxSeconds = defaultVideoMaxSeconds
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
