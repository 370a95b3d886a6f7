package config

const (
	defaultDataDir   = "~/.local/share/aigcguard"
	defaultOutputDir = "~/.local/share/aigcguard/outputs"
	defaultLogDir    = "~/.local/share/aigcguard/logs"

	// Q=30 tolerates roughly ±7.5 of coefficient error, well above the
	// ±2-4 introduced by uint8 rounding and luma conversion. Earlier
	// deployments embedded at Q=8.
	defaultQIMStep         = 30.0
	defaultBlockSize       = 8
	defaultCoefRow         = 2
	defaultCoefCol         = 3
	defaultMinStrength     = 15
	defaultMinMarkStrength = 10
	defaultJPEGQuality     = 95

	defaultHashThreshold = 15

	defaultCorpusTTLSeconds  = 120
	defaultProfileTTLSeconds = 300

	defaultMinSimilarity         = 0.60
	defaultCandidateFloor        = 0.30
	defaultTopK                  = 10
	defaultHashBonusThreshold    = 20
	defaultHashBonusWeight       = 30.0
	defaultTemporalBonus         = 10.0
	defaultTemporalWindowSeconds = 300

	defaultEmbedIntervalSeconds  = 1.0
	defaultDetectIntervalSeconds = 0.5
	defaultVideoMaxSeconds       = 10

	defaultLogFormat = "console"
	defaultLogLevel  = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			DataDir:   defaultDataDir,
			OutputDir: defaultOutputDir,
			LogDir:    defaultLogDir,
		},
		Watermark: Watermark{
			QIMStep:         defaultQIMStep,
			LegacySteps:     []float64{8.0},
			BlockSize:       defaultBlockSize,
			CoefRow:         defaultCoefRow,
			CoefCol:         defaultCoefCol,
			MinStrength:     defaultMinStrength,
			MinMarkStrength: defaultMinMarkStrength,
			JPEGQuality:     defaultJPEGQuality,
		},
		Prefilter: Prefilter{
			HashThreshold: defaultHashThreshold,
		},
		Cache: Cache{
			CorpusTTLSeconds:  defaultCorpusTTLSeconds,
			ProfileTTLSeconds: defaultProfileTTLSeconds,
		},
		Matching: Matching{
			MinSimilarity:         defaultMinSimilarity,
			CandidateFloor:        defaultCandidateFloor,
			TopK:                  defaultTopK,
			HashBonusThreshold:    defaultHashBonusThreshold,
			HashBonusWeight:       defaultHashBonusWeight,
			TemporalBonus:         defaultTemporalBonus,
			TemporalWindowSeconds: defaultTemporalWindowSeconds,
		},
		Video: Video{
			EmbedIntervalSeconds:  defaultEmbedIntervalSeconds,
			DetectIntervalSeconds: defaultDetectIntervalSeconds,
			MaxSeconds:            defaultVideoMaxSeconds,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
