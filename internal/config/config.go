package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Store      StoreConfig      `yaml:"store" mapstructure:"store"`
	Queue      QueueConfig      `yaml:"queue" mapstructure:"queue"`
	Anthropic  AnthropicConfig  `yaml:"anthropic" mapstructure:"anthropic"`
	Platform   PlatformConfig   `yaml:"platform" mapstructure:"platform"`
	Transcribe TranscribeConfig `yaml:"transcribe" mapstructure:"transcribe"`
	Pipeline   PipelineConfig   `yaml:"pipeline" mapstructure:"pipeline"`
	Review     ReviewConfig     `yaml:"review" mapstructure:"review"`
	Migrate    MigrateConfig    `yaml:"migrate" mapstructure:"migrate"`
	Server     ServerConfig     `yaml:"server" mapstructure:"server"`
	Log        LogConfig        `yaml:"log" mapstructure:"log"`
}

// StoreConfig configures the database backend.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
}

// QueueConfig configures the Redis stage queue.
type QueueConfig struct {
	RedisURL string `yaml:"redis_url" mapstructure:"redis_url"`
	Key      string `yaml:"key" mapstructure:"key"`
}

// AnthropicConfig holds Anthropic API settings for segmentation.
type AnthropicConfig struct {
	Key         string  `yaml:"key" mapstructure:"key"`
	Model       string  `yaml:"model" mapstructure:"model"`
	MaxTokens   int     `yaml:"max_tokens" mapstructure:"max_tokens"`
	Temperature float64 `yaml:"temperature" mapstructure:"temperature"`
}

// PlatformConfig holds the club platform API settings: rosters, artifact
// media, player records, and outbound messaging.
type PlatformConfig struct {
	BaseURL string `yaml:"base_url" mapstructure:"base_url"`
	Key     string `yaml:"key" mapstructure:"key"`
}

// TranscribeConfig configures the speech-to-text provider.
type TranscribeConfig struct {
	Provider string `yaml:"provider" mapstructure:"provider"`
	BaseURL  string `yaml:"base_url" mapstructure:"base_url"`
	Key      string `yaml:"key" mapstructure:"key"`
	Model    string `yaml:"model" mapstructure:"model"`
}

// PipelineConfig configures entity matching and the auto-apply gate.
type PipelineConfig struct {
	FuzzyMatchThreshold       float64 `yaml:"fuzzy_match_threshold" mapstructure:"fuzzy_match_threshold"`
	AutoResolveThreshold      float64 `yaml:"auto_resolve_threshold" mapstructure:"auto_resolve_threshold"`
	DefaultAutoApplyThreshold float64 `yaml:"default_auto_apply_threshold" mapstructure:"default_auto_apply_threshold"`
	SimilarCandidateLimit     int     `yaml:"similar_candidate_limit" mapstructure:"similar_candidate_limit"`
}

// ReviewConfig configures the manual review surface.
type ReviewConfig struct {
	QueueDefaultLimit int `yaml:"queue_default_limit" mapstructure:"queue_default_limit"`
	QueueMaxLimit     int `yaml:"queue_max_limit" mapstructure:"queue_max_limit"`
}

// MigrateConfig configures the legacy note replayer.
type MigrateConfig struct {
	BatchSize         int     `yaml:"batch_size" mapstructure:"batch_size"`
	DefaultConfidence float64 `yaml:"default_confidence" mapstructure:"default_confidence"`
}

// ServerConfig configures the HTTP API server.
type ServerConfig struct {
	Port int `yaml:"port" mapstructure:"port"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("VOICENOTES")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("store.driver", "postgres")
	v.SetDefault("queue.redis_url", "redis://localhost:6379/0")
	v.SetDefault("queue.key", "voicenotes:stages")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("server.port", 8080)
	v.SetDefault("anthropic.model", "claude-sonnet-4-5-20250929")
	v.SetDefault("anthropic.max_tokens", 4096)
	v.SetDefault("anthropic.temperature", 0.2)
	v.SetDefault("transcribe.provider", "whisper")
	v.SetDefault("transcribe.base_url", "https://api.openai.com/v1")
	v.SetDefault("transcribe.model", "whisper-1")
	v.SetDefault("pipeline.fuzzy_match_threshold", 0.85)
	v.SetDefault("pipeline.auto_resolve_threshold", 0.9)
	v.SetDefault("pipeline.default_auto_apply_threshold", 0.85)
	v.SetDefault("pipeline.similar_candidate_limit", 5)
	v.SetDefault("review.queue_default_limit", 50)
	v.SetDefault("review.queue_max_limit", 200)
	v.SetDefault("migrate.batch_size", 50)
	v.SetDefault("migrate.default_confidence", 0.8)
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
