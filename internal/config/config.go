// Package config loads service configuration from file and environment.
// Configuration is read once at process start; nothing is hot-reloadable.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	LLM     LLMConfig     `mapstructure:"llm"`
	Vector  VectorConfig  `mapstructure:"vector"`
	Server  ServerConfig  `mapstructure:"server"`
	Voice   VoiceConfig   `mapstructure:"voice"`
	Log     LogConfig     `mapstructure:"log"`
	Tracing TracingConfig `mapstructure:"tracing"`
}

type LLMConfig struct {
	Provider    string  `mapstructure:"provider"`
	Model       string  `mapstructure:"model"`
	EmbedModel  string  `mapstructure:"embed_model"`
	APIKey      string  `mapstructure:"api_key"`
	BaseURL     string  `mapstructure:"base_url"`
	Temperature float64 `mapstructure:"temperature"`

	// MaxRetries enables the retry wrapper when > 0. The default of 0
	// keeps the pipeline's no-retry contract.
	MaxRetries        int           `mapstructure:"max_retries"`
	RetryDelay        time.Duration `mapstructure:"retry_delay"`
	Timeout           time.Duration `mapstructure:"timeout"`
	RequestsPerMinute int           `mapstructure:"requests_per_minute"`
}

type VectorConfig struct {
	Provider string `mapstructure:"provider"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Index    string `mapstructure:"index"`
	APIKey   string `mapstructure:"api_key"`
	TopK     int    `mapstructure:"top_k"`
}

type ServerConfig struct {
	Addr string `mapstructure:"addr"`
}

// VoiceConfig carries the voice-session credentials. PublicKey and
// AssistantID are served to the browser widget; WebhookSecret, when set,
// gates the inbound tool-call webhook.
type VoiceConfig struct {
	PublicKey     string `mapstructure:"public_key"`
	AssistantID   string `mapstructure:"assistant_id"`
	WebhookSecret string `mapstructure:"webhook_secret"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type TracingConfig struct {
	OTLPEndpoint string  `mapstructure:"otlp_endpoint"`
	SampleRate   float64 `mapstructure:"sample_rate"`
}

// Validate checks configuration for issues and returns warnings.
func (c *Config) Validate() []string {
	var warnings []string

	if c.LLM.APIKey == "" {
		warnings = append(warnings, "llm.api_key is empty; embedding and completion calls will fail")
	}
	if c.LLM.Temperature < 0 || c.LLM.Temperature > 2.0 {
		warnings = append(warnings, fmt.Sprintf("llm.temperature %.2f is outside range [0.0, 2.0]", c.LLM.Temperature))
	}
	if c.Vector.Provider == "pinecone" && c.Vector.APIKey == "" {
		warnings = append(warnings, "vector.provider is pinecone but vector.api_key is empty")
	}
	if c.Vector.TopK < 0 {
		warnings = append(warnings, fmt.Sprintf("vector.top_k %d is negative", c.Vector.TopK))
	}
	if c.Voice.WebhookSecret == "" {
		warnings = append(warnings, "voice.webhook_secret is empty; the webhook accepts unauthenticated events")
	}

	return warnings
}

// Load reads configuration from file and environment.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetEnvPrefix("AVEN")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}

	if warnings := cfg.Validate(); len(warnings) > 0 {
		for _, warning := range warnings {
			fmt.Fprintf(os.Stderr, "Warning: %s\n", warning)
		}
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("llm.provider", "openai")
	v.SetDefault("llm.model", "gpt-5.2")
	v.SetDefault("llm.embed_model", "text-embedding-3-small")
	v.SetDefault("llm.temperature", 0.3)
	v.SetDefault("vector.provider", "pinecone")
	v.SetDefault("vector.port", 6334)
	v.SetDefault("vector.index", "aven-support")
	v.SetDefault("vector.top_k", 5)
	v.SetDefault("server.addr", ":8080")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
	v.SetDefault("tracing.sample_rate", 1.0)
}
