package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config is the full runtime configuration. Values load from an optional
// YAML file, then environment variables with the JOBSEEKER_ prefix, then
// the defaults below.
type Config struct {
	Browser   BrowserConfig   `mapstructure:"browser"`
	LinkedIn  LinkedInConfig  `mapstructure:"linkedin"`
	AI        AIConfig        `mapstructure:"ai"`
	DOM       DOMConfig       `mapstructure:"dom"`
	Logging   LoggingConfig   `mapstructure:"logging"`
	Storage   StorageConfig   `mapstructure:"storage"`
	Status    StatusConfig    `mapstructure:"status"`
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
}

type BrowserConfig struct {
	Headless   bool          `mapstructure:"headless"`
	Stealth    bool          `mapstructure:"stealth"`
	Width      int           `mapstructure:"width"`
	Height     int           `mapstructure:"height"`
	ProfileDir string        `mapstructure:"profile_dir"`
	Timeout    time.Duration `mapstructure:"timeout"`
	MinDelay   time.Duration `mapstructure:"min_delay"`
	MaxDelay   time.Duration `mapstructure:"max_delay"`
}

type LinkedInConfig struct {
	Email           string `mapstructure:"email"`
	Password        string `mapstructure:"password"`
	SearchTerm      string `mapstructure:"search_term"`
	Location        string `mapstructure:"location"`
	MaxApplications int    `mapstructure:"max_applications"`
	EasyApplyOnly   bool   `mapstructure:"easy_apply_only"`
}

type AIConfig struct {
	Provider      string `mapstructure:"provider"` // "claude" or "openai"
	AnthropicKey  string `mapstructure:"anthropic_key"`
	OpenAIKey     string `mapstructure:"openai_key"`
	Model         string `mapstructure:"model"`
	CaptchaAPIKey string `mapstructure:"captcha_api_key"`
	CoverLetters  bool   `mapstructure:"cover_letters"`
	MaxTokens     int    `mapstructure:"max_tokens"`
}

type DOMConfig struct {
	MaxHighlight   int  `mapstructure:"max_highlight"`
	HighlightPages bool `mapstructure:"highlight_pages"`
}

type LoggingConfig struct {
	Level string `mapstructure:"level"`
	File  string `mapstructure:"file"`
}

type StorageConfig struct {
	DataDir       string `mapstructure:"data_dir"`
	CVPath        string `mapstructure:"cv_path"`
	ScreenshotDir string `mapstructure:"screenshot_dir"`
}

type StatusConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Addr    string `mapstructure:"addr"`
}

type TelemetryConfig struct {
	DBPath string `mapstructure:"db_path"`
}

// Load reads configuration from the given file (may be empty), the
// environment, and defaults, then validates and normalizes the result.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("JOBSEEKER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	cfg.normalize()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("browser.headless", false)
	v.SetDefault("browser.stealth", true)
	v.SetDefault("browser.width", 1280)
	v.SetDefault("browser.height", 720)
	v.SetDefault("browser.timeout", 30*time.Second)
	v.SetDefault("browser.min_delay", 500*time.Millisecond)
	v.SetDefault("browser.max_delay", 2*time.Second)
	v.SetDefault("browser.profile_dir", "")

	v.SetDefault("linkedin.email", "")
	v.SetDefault("linkedin.password", "")
	v.SetDefault("linkedin.search_term", "")
	v.SetDefault("linkedin.max_applications", 10)
	v.SetDefault("linkedin.easy_apply_only", true)
	v.SetDefault("linkedin.location", "Remote")

	v.SetDefault("ai.provider", "claude")
	v.SetDefault("ai.anthropic_key", "")
	v.SetDefault("ai.openai_key", "")
	v.SetDefault("ai.model", "")
	v.SetDefault("ai.captcha_api_key", "")
	v.SetDefault("ai.cover_letters", true)
	v.SetDefault("ai.max_tokens", 1024)

	v.SetDefault("dom.max_highlight", 50)
	v.SetDefault("dom.highlight_pages", true)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.file", "logs/jobseeker.log")

	v.SetDefault("storage.data_dir", "data")
	v.SetDefault("storage.cv_path", "")
	v.SetDefault("storage.screenshot_dir", "screenshots")

	v.SetDefault("status.enabled", false)
	v.SetDefault("status.addr", ":8090")

	v.SetDefault("telemetry.db_path", "data/telemetry.db")
}

// normalize repairs recoverable misconfiguration instead of failing.
func (c *Config) normalize() {
	if c.Browser.MinDelay > c.Browser.MaxDelay {
		c.Browser.MinDelay, c.Browser.MaxDelay = c.Browser.MaxDelay, c.Browser.MinDelay
	}
	if c.DOM.MaxHighlight < 0 {
		c.DOM.MaxHighlight = 0
	}
	c.AI.Provider = strings.ToLower(strings.TrimSpace(c.AI.Provider))
}

func (c *Config) validate() error {
	switch c.AI.Provider {
	case "claude", "openai", "":
	default:
		return fmt.Errorf("unknown ai provider %q", c.AI.Provider)
	}
	if c.Browser.Width <= 0 || c.Browser.Height <= 0 {
		return fmt.Errorf("invalid viewport %dx%d", c.Browser.Width, c.Browser.Height)
	}
	if c.LinkedIn.MaxApplications < 0 {
		return fmt.Errorf("linkedin.max_applications must not be negative")
	}
	return nil
}

// EnsureDirs creates the directories the run writes into.
func (c *Config) EnsureDirs() error {
	dirs := []string{c.Storage.DataDir, c.Storage.ScreenshotDir, c.Browser.ProfileDir}
	if c.Logging.File != "" {
		dirs = append(dirs, filepath.Dir(c.Logging.File))
	}
	if c.Telemetry.DBPath != "" {
		dirs = append(dirs, filepath.Dir(c.Telemetry.DBPath))
	}
	for _, dir := range dirs {
		if dir == "" || dir == "." {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}
	return nil
}
