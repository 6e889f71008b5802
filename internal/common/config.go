package common

import (
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	Pipeline PipelineConfig
	OCR      OCRConfig
	History  HistoryConfig
}

// PipelineConfig holds orchestrator-related configuration
type PipelineConfig struct {
	EngineTimeout   time.Duration
	MaxRetries      int
	RetryDelay      time.Duration
	MinImageQuality float64
	RegistryOverlay string // optional JSON overlay for the pattern registry
}

// OCRConfig holds recognition-engine configuration
type OCRConfig struct {
	Language string
	PSM      int
}

// HistoryConfig holds scan-history storage configuration
type HistoryConfig struct {
	DBPath string
}

// LoadConfig reads configuration from the IDSNAP_* environment (and any
// config file the caller bound into viper beforehand), falling back to
// defaults suitable for local use.
func LoadConfig(v *viper.Viper) *Config {
	if v == nil {
		v = viper.GetViper()
	}
	v.SetDefault("pipeline.engine_timeout", 30*time.Second)
	v.SetDefault("pipeline.max_retries", 2)
	v.SetDefault("pipeline.retry_delay", time.Second)
	v.SetDefault("pipeline.min_image_quality", 0.3)
	v.SetDefault("ocr.language", "eng")
	v.SetDefault("ocr.psm", 6)
	v.SetDefault("history.db_path", "./idsnap.db")

	return &Config{
		Pipeline: PipelineConfig{
			EngineTimeout:   v.GetDuration("pipeline.engine_timeout"),
			MaxRetries:      v.GetInt("pipeline.max_retries"),
			RetryDelay:      v.GetDuration("pipeline.retry_delay"),
			MinImageQuality: v.GetFloat64("pipeline.min_image_quality"),
			RegistryOverlay: v.GetString("pipeline.registry_overlay"),
		},
		OCR: OCRConfig{
			Language: v.GetString("ocr.language"),
			PSM:      v.GetInt("ocr.psm"),
		},
		History: HistoryConfig{
			DBPath: v.GetString("history.db_path"),
		},
	}
}

// Validate validates the loaded configuration
func (c *Config) Validate() error {
	if c.Pipeline.EngineTimeout <= 0 {
		return NewAppError("CONFIG_ERROR", "engine timeout must be positive", ErrInvalidInput)
	}
	if c.Pipeline.MaxRetries < 0 {
		return NewAppError("CONFIG_ERROR", "max retries must not be negative", ErrInvalidInput)
	}
	if c.History.DBPath == "" {
		return NewAppError("CONFIG_ERROR", "history db path is required", ErrInvalidInput)
	}
	return nil
}
