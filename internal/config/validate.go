package config

import (
	"errors"
	"fmt"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateWatermark(); err != nil {
		return err
	}
	if err := c.validatePrefilter(); err != nil {
		return err
	}
	if err := c.validateCache(); err != nil {
		return err
	}
	if err := c.validateMatching(); err != nil {
		return err
	}
	if err := c.validateVideo(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateWatermark() error {
	w := c.Watermark
	if w.QIMStep <= 0 {
		return errors.New("watermark.qim_step must be positive")
	}
	if w.BlockSize < 4 {
		return errors.New("watermark.block_size must be at least 4")
	}
	if w.CoefRow < 0 || w.CoefRow >= w.BlockSize || w.CoefCol < 0 || w.CoefCol >= w.BlockSize {
		return fmt.Errorf("watermark coefficient (%d,%d) outside %dx%d block", w.CoefRow, w.CoefCol, w.BlockSize, w.BlockSize)
	}
	if w.CoefRow == 0 && w.CoefCol == 0 {
		return errors.New("watermark coefficient must not be the DC term")
	}
	for _, q := range w.LegacySteps {
		if q <= 0 {
			return errors.New("watermark.legacy_steps entries must be positive")
		}
	}
	if w.JPEGQuality < 1 || w.JPEGQuality > 100 {
		return errors.New("watermark.jpeg_quality must be between 1 and 100")
	}
	if w.MinStrength < 0 || w.MinMarkStrength < 0 {
		return errors.New("watermark strength thresholds must not be negative")
	}
	return nil
}

func (c *Config) validatePrefilter() error {
	if c.Prefilter.HashThreshold < 0 || c.Prefilter.HashThreshold > 64 {
		return errors.New("prefilter.hash_threshold must be between 0 and 64")
	}
	return nil
}

func (c *Config) validateCache() error {
	if c.Cache.CorpusTTLSeconds < 0 || c.Cache.ProfileTTLSeconds < 0 {
		return errors.New("cache TTLs must not be negative")
	}
	return nil
}

func (c *Config) validateMatching() error {
	m := c.Matching
	if m.MinSimilarity < 0 || m.MinSimilarity > 1 {
		return errors.New("matching.min_similarity must be between 0 and 1")
	}
	if m.CandidateFloor < 0 || m.CandidateFloor > 1 {
		return errors.New("matching.candidate_floor must be between 0 and 1")
	}
	if m.TopK < 1 {
		return errors.New("matching.top_k must be at least 1")
	}
	if m.HashBonusThreshold < 0 || m.HashBonusThreshold > 64 {
		return errors.New("matching.hash_bonus_threshold must be between 0 and 64")
	}
	return nil
}

func (c *Config) validateVideo() error {
	v := c.Video
	if v.EmbedIntervalSeconds <= 0 {
		return errors.New("video.embed_interval_seconds must be positive")
	}
	if v.DetectIntervalSeconds <= 0 {
		return errors.New("video.detect_interval_seconds must be positive")
	}
	if v.MaxSeconds < 1 {
		return errors.New("video.max_seconds must be at least 1")
	}
	return nil
}
