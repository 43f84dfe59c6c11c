// Package config loads showrunner configuration from a YAML file with
// environment-variable overrides for credentials.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// LLM provider names accepted in config.
const (
	ProviderAnthropic = "anthropic"
	ProviderOpenAI    = "openai"
	ProviderOllama    = "ollama"
	ProviderBedrock   = "bedrock"
)

// Config holds all configuration values.
type Config struct {
	Dirs struct {
		// Transcripts is the watched input directory.
		Transcripts string `yaml:"transcripts"`
		// Outputs is where episode bundles and state files live.
		Outputs string `yaml:"outputs"`
	} `yaml:"dirs"`

	Templates struct {
		// Description is the YouTube description template file.
		Description string `yaml:"description"`
		// NewsletterExamples is an optional style-examples file injected
		// into teaser and article prompts.
		NewsletterExamples string `yaml:"newsletter_examples"`
	} `yaml:"templates"`

	LLM struct {
		Provider string `yaml:"provider"`
		Model    string `yaml:"model"`
		// OllamaHost is used only by the ollama provider.
		OllamaHost string `yaml:"ollama_host"`
		// BedrockRegion is used only by the bedrock provider.
		BedrockRegion string `yaml:"bedrock_region"`

		// Keys come from the environment, never from the file.
		AnthropicAPIKey string `yaml:"-"`
		OpenAIAPIKey    string `yaml:"-"`
	} `yaml:"llm"`

	Watch struct {
		// IntervalSeconds is the directory scan interval.
		IntervalSeconds int `yaml:"interval_seconds"`
	} `yaml:"watch"`

	Poller struct {
		// IntervalSeconds is the publish-trigger poll interval.
		IntervalSeconds int `yaml:"interval_seconds"`
		// TimeoutHours is how long a poller waits before expiring.
		TimeoutHours int `yaml:"timeout_hours"`
		// Emoji is the reaction name that triggers publishing.
		Emoji string `yaml:"emoji"`
	} `yaml:"poller"`

	Chat struct {
		Enabled bool `yaml:"enabled"`
		// APIBase allows pointing at a test server; defaults to Slack.
		APIBase string `yaml:"api_base"`

		BotToken  string `yaml:"-"`
		ChannelID string `yaml:"-"`
	} `yaml:"chat"`

	CMS struct {
		SiteURL  string `yaml:"site_url"`
		Category string `yaml:"category"`

		Username    string `yaml:"-"`
		AppPassword string `yaml:"-"`
	} `yaml:"cms"`

	Video struct {
		// FeedURL is the playlist/channel RSS feed used to resolve the
		// published video's URL and thumbnail.
		FeedURL string `yaml:"feed_url"`
	} `yaml:"video"`

	Log struct {
		File      string `yaml:"file"`
		LevelName string `yaml:"level"`

		Level slog.Level `yaml:"-"`
	} `yaml:"log"`
}

// Default returns the built-in configuration.
func Default() Config {
	var cfg Config
	cfg.Dirs.Transcripts = "./transcripts"
	cfg.Dirs.Outputs = "./outputs"
	cfg.Templates.Description = "./description_template.txt"
	cfg.Templates.NewsletterExamples = "./newsletter_examples.md"
	cfg.LLM.Provider = ProviderAnthropic
	cfg.LLM.Model = "claude-sonnet-4-20250514"
	cfg.LLM.OllamaHost = "http://localhost:11434"
	cfg.LLM.BedrockRegion = "us-east-1"
	cfg.Watch.IntervalSeconds = 10
	cfg.Poller.IntervalSeconds = 60
	cfg.Poller.TimeoutHours = 24
	cfg.Poller.Emoji = "outbox_tray"
	cfg.Chat.APIBase = "https://slack.com/api"
	cfg.CMS.Category = "First Cup"
	cfg.Log.File = filepath.Join(os.TempDir(), "showrunner.log")
	cfg.Log.Level = slog.LevelInfo
	return cfg
}

// Load reads the YAML file at path (if it exists) over the defaults, then
// applies environment overrides. A missing file is not an error.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return cfg, fmt.Errorf("parse config %s: %w", path, err)
			}
		case os.IsNotExist(err):
			// Defaults apply.
		default:
			return cfg, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	cfg.LLM.AnthropicAPIKey = os.Getenv("ANTHROPIC_API_KEY")
	cfg.LLM.OpenAIAPIKey = os.Getenv("OPENAI_API_KEY")
	cfg.Chat.BotToken = os.Getenv("SLACK_BOT_TOKEN")
	cfg.Chat.ChannelID = os.Getenv("SLACK_CHANNEL_ID")
	cfg.CMS.Username = os.Getenv("WP_USERNAME")
	cfg.CMS.AppPassword = os.Getenv("WP_APP_PASSWORD")

	if v := os.Getenv("SHOWRUNNER_TRANSCRIPTS"); v != "" {
		cfg.Dirs.Transcripts = v
	}
	if v := os.Getenv("SHOWRUNNER_OUTPUTS"); v != "" {
		cfg.Dirs.Outputs = v
	}
	if v := os.Getenv("SHOWRUNNER_LOG_FILE"); v != "" {
		cfg.Log.File = v
	}
	if v := os.Getenv("SHOWRUNNER_LOG_LEVEL"); v != "" {
		cfg.Log.LevelName = v
	}
	if v := os.Getenv("WP_SITE_URL"); v != "" {
		cfg.CMS.SiteURL = v
	}

	cfg.Log.Level = parseLogLevel(cfg.Log.LevelName)
	return cfg, nil
}

// WatchInterval returns the directory scan interval.
func (c Config) WatchInterval() time.Duration {
	return time.Duration(c.Watch.IntervalSeconds) * time.Second
}

// PollInterval returns the publish-trigger poll interval.
func (c Config) PollInterval() time.Duration {
	return time.Duration(c.Poller.IntervalSeconds) * time.Second
}

// PollTimeout returns the publish-trigger deadline window.
func (c Config) PollTimeout() time.Duration {
	return time.Duration(c.Poller.TimeoutHours) * time.Hour
}

// ChatConfigured reports whether the chat channel is enabled and has
// credentials.
func (c Config) ChatConfigured() bool {
	return c.Chat.Enabled && c.Chat.BotToken != "" && c.Chat.ChannelID != ""
}

func parseLogLevel(s string) slog.Level {
	switch strings.ToUpper(s) {
	case "DEBUG":
		return slog.LevelDebug
	case "WARN", "WARNING":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
