package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory configuration.
type Paths struct {
	DataDir   string `toml:"data_dir"`
	OutputDir string `toml:"output_dir"`
	LogDir    string `toml:"log_dir"`
}

// Watermark contains the QIM embedding and extraction tunables.
//
// QIMStep is the active quantization step; LegacySteps is the ladder of
// steps earlier deployments embedded with, most recent first. Embedding and
// extraction must agree on BlockSize and the carrier coefficient position.
type Watermark struct {
	QIMStep         float64   `toml:"qim_step"`
	LegacySteps     []float64 `toml:"legacy_steps"`
	BlockSize       int       `toml:"block_size"`
	CoefRow         int       `toml:"coef_row"`
	CoefCol         int       `toml:"coef_col"`
	MinStrength     int       `toml:"min_strength"`
	MinMarkStrength int       `toml:"min_mark_strength"`
	JPEGQuality     int       `toml:"jpeg_quality"`
}

// Prefilter contains the perceptual hash gate settings.
type Prefilter struct {
	HashThreshold int `toml:"hash_threshold"`
}

// Cache contains corpus cache TTLs in seconds.
type Cache struct {
	CorpusTTLSeconds  int `toml:"corpus_ttl_seconds"`
	ProfileTTLSeconds int `toml:"profile_ttl_seconds"`
}

// CorpusTTL returns the corpus snapshot lifetime.
func (c Cache) CorpusTTL() time.Duration {
	return time.Duration(c.CorpusTTLSeconds) * time.Second
}

// ProfileTTL returns the owner profile snapshot lifetime.
func (c Cache) ProfileTTL() time.Duration {
	return time.Duration(c.ProfileTTLSeconds) * time.Second
}

// Matching contains candidate scoring weights and cutoffs.
type Matching struct {
	MinSimilarity         float64 `toml:"min_similarity"`
	CandidateFloor        float64 `toml:"candidate_floor"`
	TopK                  int     `toml:"top_k"`
	HashBonusThreshold    int     `toml:"hash_bonus_threshold"`
	HashBonusWeight       float64 `toml:"hash_bonus_weight"`
	TemporalBonus         float64 `toml:"temporal_bonus"`
	TemporalWindowSeconds int     `toml:"temporal_window_seconds"`
}

// Video contains frame sampling intervals for video embed and detect.
type Video struct {
	EmbedIntervalSeconds  float64 `toml:"embed_interval_seconds"`
	DetectIntervalSeconds float64 `toml:"detect_interval_seconds"`
	MaxSeconds            int     `toml:"max_seconds"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for AIGCGuard.
type Config struct {
	Paths     Paths     `toml:"paths"`
	Watermark Watermark `toml:"watermark"`
	Prefilter Prefilter `toml:"prefilter"`
	Cache     Cache     `toml:"cache"`
	Matching  Matching  `toml:"matching"`
	Video     Video     `toml:"video"`
	Logging   Logging   `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/aigcguard/config.toml")
}

// SampleConfig returns the embedded sample configuration file contents.
func SampleConfig() string {
	return sampleConfig
}

// CreateSample writes the sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}
	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}

// Load locates, parses, and validates a configuration file. The returned
// config has all path fields expanded and normalized. The boolean reports
// whether a file was found; defaults are used when it was not.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("aigcguard.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the directories the pipeline writes to.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.DataDir, c.Paths.OutputDir, c.Paths.LogDir} {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}
