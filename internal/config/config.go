package config

import (
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Knowledge KnowledgeConfig `yaml:"knowledge" mapstructure:"knowledge"`
	Extract   ExtractConfig   `yaml:"extract" mapstructure:"extract"`
	DeepSeek  DeepSeekConfig  `yaml:"deepseek" mapstructure:"deepseek"`
	Audit     AuditConfig     `yaml:"audit" mapstructure:"audit"`
	Batch     BatchConfig     `yaml:"batch" mapstructure:"batch"`
	Server    ServerConfig    `yaml:"server" mapstructure:"server"`
	Log       LogConfig       `yaml:"log" mapstructure:"log"`
}

// KnowledgeConfig configures the legal-text document directory.
type KnowledgeConfig struct {
	Dir string `yaml:"dir" mapstructure:"dir"`
}

// ExtractConfig configures relevance extraction.
type ExtractConfig struct {
	// GroundingChars bounds the extracted context sent to the model.
	GroundingChars int `yaml:"grounding_chars" mapstructure:"grounding_chars"`
	// IntroChars bounds the corpus prefix used for the introduction prompt.
	IntroChars int `yaml:"intro_chars" mapstructure:"intro_chars"`
	// KeywordsFile optionally overrides the built-in category keyword table.
	KeywordsFile string `yaml:"keywords_file" mapstructure:"keywords_file"`
}

// DeepSeekConfig holds DeepSeek API settings.
type DeepSeekConfig struct {
	Key                string  `yaml:"key" mapstructure:"key"`
	BaseURL            string  `yaml:"base_url" mapstructure:"base_url"`
	Model              string  `yaml:"model" mapstructure:"model"`
	Temperature        float64 `yaml:"temperature" mapstructure:"temperature"`
	MaxTokens          int     `yaml:"max_tokens" mapstructure:"max_tokens"`
	MaxRetries         int     `yaml:"max_retries" mapstructure:"max_retries"`
	ConnectTimeoutSecs int     `yaml:"connect_timeout_secs" mapstructure:"connect_timeout_secs"`
	ReadTimeoutSecs    int     `yaml:"read_timeout_secs" mapstructure:"read_timeout_secs"`
	MaxResponseBytes   int64   `yaml:"max_response_bytes" mapstructure:"max_response_bytes"`
	RequestsPerSecond  float64 `yaml:"requests_per_second" mapstructure:"requests_per_second"`
}

// ConnectTimeout returns the dial timeout as a duration.
func (c DeepSeekConfig) ConnectTimeout() time.Duration {
	return time.Duration(c.ConnectTimeoutSecs) * time.Second
}

// ReadTimeout returns the full-request timeout as a duration.
func (c DeepSeekConfig) ReadTimeout() time.Duration {
	return time.Duration(c.ReadTimeoutSecs) * time.Second
}

// AuditConfig configures the research-run audit log.
type AuditConfig struct {
	// Path is the SQLite database path. Empty disables auditing.
	Path string `yaml:"path" mapstructure:"path"`
}

// BatchConfig configures multi-jurisdiction batch research.
type BatchConfig struct {
	MaxConcurrentJurisdictions int `yaml:"max_concurrent_jurisdictions" mapstructure:"max_concurrent_jurisdictions"`
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
	v.SetEnvPrefix("RESEARCH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("knowledge.dir", "knowledge-base")
	v.SetDefault("extract.grounding_chars", 6000)
	v.SetDefault("extract.intro_chars", 5000)
	v.SetDefault("deepseek.base_url", "https://api.deepseek.com/v1")
	v.SetDefault("deepseek.model", "deepseek-chat")
	v.SetDefault("deepseek.temperature", 0.1)
	v.SetDefault("deepseek.max_tokens", 2000)
	v.SetDefault("deepseek.max_retries", 2)
	v.SetDefault("deepseek.connect_timeout_secs", 10)
	v.SetDefault("deepseek.read_timeout_secs", 120)
	v.SetDefault("deepseek.max_response_bytes", 5*1024*1024)
	v.SetDefault("deepseek.requests_per_second", 1.0)
	v.SetDefault("batch.max_concurrent_jurisdictions", 3)
	v.SetDefault("server.port", 5001)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

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
