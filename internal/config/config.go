package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	App      App      `mapstructure:"app"`
	Gemini   Gemini   `mapstructure:"gemini"`
	Sources  Sources  `mapstructure:"sources"`
	Digest   Digest   `mapstructure:"digest"`
	Email    Email    `mapstructure:"email"`
	Schedule Schedule `mapstructure:"schedule"`
}

// App holds general application configuration.
type App struct {
	LogLevel string `mapstructure:"log_level"`
	DataDir  string `mapstructure:"data_dir"`
}

// Gemini holds the generative model configuration.
type Gemini struct {
	APIKey            string  `mapstructure:"api_key"`
	Model             string  `mapstructure:"model"`
	Temperature       float32 `mapstructure:"temperature"`
	RequestsPerMinute int     `mapstructure:"requests_per_minute"`
	Timeout           string  `mapstructure:"timeout"`
}

// Sources holds the content source registry. Feeds maps a source kind to the
// RSS/Atom feed URLs collected under that kind; YouTube channels are
// collected through their public channel feeds.
type Sources struct {
	Feeds           map[string][]string `mapstructure:"feeds"`
	YouTubeChannels []string            `mapstructure:"youtube_channels"`
	UserAgent       string              `mapstructure:"user_agent"`
	Timeout         string              `mapstructure:"timeout"`
	MaxDescription  int                 `mapstructure:"max_description_chars"`
}

// Digest holds curation parameters.
type Digest struct {
	Hours        int    `mapstructure:"hours"`          // lookback window
	TopN         int    `mapstructure:"top_n"`          // delivery cap per profile
	MaxBodyChars int    `mapstructure:"max_body_chars"` // body truncation before prompting
	OutputDir    string `mapstructure:"output_dir"`     // markdown copies of sent digests
}

// Email holds mail transport configuration.
type Email struct {
	SMTP        SMTP   `mapstructure:"smtp"`
	FromAddress string `mapstructure:"from_address"`
	FromName    string `mapstructure:"from_name"`
}

// SMTP holds SMTP transport configuration.
type SMTP struct {
	Host       string `mapstructure:"host"`
	Port       int    `mapstructure:"port"`
	Username   string `mapstructure:"username"`
	Password   string `mapstructure:"password"`
	TLSEnabled bool   `mapstructure:"tls_enabled"`
}

// Schedule holds the optional cron trigger configuration.
type Schedule struct {
	Cron string `mapstructure:"cron"`
}

// Load loads configuration from .env, config file and environment variables.
func Load(configFile string) (*Config, error) {
	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(".env"); err != nil {
			fmt.Fprintf(os.Stderr, "warning: error loading .env file: %v\n", err)
		}
	}

	if configFile != "" {
		viper.SetConfigFile(configFile)
	} else {
		viper.AddConfigPath(".")
		viper.AddConfigPath("$HOME")
		viper.SetConfigName(".curator")
		viper.SetConfigType("yaml")
	}

	setDefaults()
	bindEnvironmentVariables()

	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	cfg := &Config{}
	if err := viper.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	return cfg, nil
}

// ValidateScoring checks everything a scoring pass needs up front. A missing
// credential here aborts the run before any partial work is attempted.
func (c *Config) ValidateScoring() error {
	if c.Gemini.APIKey == "" {
		return fmt.Errorf("gemini API key is required: set GEMINI_API_KEY or gemini.api_key in the config file")
	}
	return nil
}

// ValidateDelivery checks everything a delivery pass needs up front.
func (c *Config) ValidateDelivery() error {
	if c.Email.SMTP.Host == "" {
		return fmt.Errorf("smtp host is required: set email.smtp.host in the config file")
	}
	if c.Email.FromAddress == "" {
		return fmt.Errorf("sender address is required: set email.from_address in the config file")
	}
	return nil
}

func setDefaults() {
	viper.SetDefault("app.log_level", "info")
	viper.SetDefault("app.data_dir", ".curator")

	viper.SetDefault("gemini.model", "gemini-2.5-flash")
	viper.SetDefault("gemini.temperature", 0.7)
	viper.SetDefault("gemini.requests_per_minute", 30)
	viper.SetDefault("gemini.timeout", "60s")

	// Default source registry, mirrors the feeds the hosted deployment tracks.
	viper.SetDefault("sources.feeds", map[string][]string{
		"openai":    {"https://openai.com/news/rss.xml"},
		"anthropic": {"https://raw.githubusercontent.com/Olshansk/rss-feeds/main/feeds/feed_anthropic_news.xml"},
		"deepmind":  {"https://deepmind.com/blog/feed/basic/"},
		"nvidia":    {"https://nvidianews.nvidia.com/releases.xml"},
	})
	viper.SetDefault("sources.youtube_channels", []string{})
	viper.SetDefault("sources.user_agent", "Curator/1.0")
	viper.SetDefault("sources.timeout", "30s")
	viper.SetDefault("sources.max_description_chars", 500)

	viper.SetDefault("digest.hours", 24)
	viper.SetDefault("digest.top_n", 10)
	viper.SetDefault("digest.max_body_chars", 8000)
	viper.SetDefault("digest.output_dir", "digests")

	viper.SetDefault("email.smtp.port", 587)
	viper.SetDefault("email.smtp.tls_enabled", true)
	viper.SetDefault("email.from_name", "Curator")

	viper.SetDefault("schedule.cron", "0 7 * * *")
}

func bindEnvironmentVariables() {
	bindEnvKeys("gemini.api_key", []string{
		"GEMINI_API_KEY",
		"GOOGLE_GEMINI_API_KEY",
		"GOOGLE_AI_API_KEY",
	})
	bindEnvKeys("email.smtp.password", []string{
		"SMTP_PASSWORD",
		"CURATOR_SMTP_PASSWORD",
	})
	bindEnvKeys("email.from_address", []string{
		"CURATOR_FROM_EMAIL",
	})
}

// bindEnvKeys binds multiple environment variable names to a config key.
func bindEnvKeys(configKey string, envKeys []string) {
	for _, envKey := range envKeys {
		if err := viper.BindEnv(configKey, envKey); err != nil {
			fmt.Fprintf(os.Stderr, "warning: failed to bind %s: %v\n", envKey, err)
		}
	}
}
