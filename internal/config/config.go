package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all application configuration. It is built once at process
// start and passed explicitly to every component constructor.
type Config struct {
	App       App       `mapstructure:"app"`
	AI        AI        `mapstructure:"ai"`
	WordPress WordPress `mapstructure:"wordpress"`
	Content   Content   `mapstructure:"content"`
	Keywords  Keywords  `mapstructure:"keywords"`
	Images    Images    `mapstructure:"images"`
	Scheduler Scheduler `mapstructure:"scheduler"`
	Logging   Logging   `mapstructure:"logging"`
}

// App holds general application configuration
type App struct {
	Debug      bool   `mapstructure:"debug"`
	ConfigFile string `mapstructure:"config_file"`
}

// AI holds text-generation configuration
type AI struct {
	Provider    string        `mapstructure:"provider"`
	Temperature float32       `mapstructure:"temperature"`
	MaxTokens   int32         `mapstructure:"max_tokens"`
	Timeout     time.Duration `mapstructure:"timeout"`
	OpenAI      OpenAIConfig  `mapstructure:"openai"`
	Gemini      GeminiConfig  `mapstructure:"gemini"`
}

// OpenAIConfig holds OpenAI (or OpenAI-compatible) configuration
type OpenAIConfig struct {
	APIKey     string `mapstructure:"api_key"`
	Model      string `mapstructure:"model"`
	BaseURL    string `mapstructure:"base_url"`
	MaxRetries int    `mapstructure:"max_retries"`
}

// GeminiConfig holds Google Gemini configuration
type GeminiConfig struct {
	APIKey string `mapstructure:"api_key"`
	Model  string `mapstructure:"model"`
}

// WordPress holds the destination CMS configuration
type WordPress struct {
	BaseURL       string        `mapstructure:"base_url"`
	User          string        `mapstructure:"user"`
	AppPassword   string        `mapstructure:"app_password"`
	Timeout       time.Duration `mapstructure:"timeout"`
	PublishStatus string        `mapstructure:"publish_status"`
	UserAgent     string        `mapstructure:"user_agent"`
}

// Content holds generation and post-processing settings
type Content struct {
	Brand        string        `mapstructure:"brand"`
	Site         string        `mapstructure:"site"`
	ContactEmail string        `mapstructure:"contact_email"`
	MinWords     int           `mapstructure:"min_words"`
	ExpandMin    int           `mapstructure:"expand_min"`
	ExpandMax    int           `mapstructure:"expand_max"`
	MaxLinks     int           `mapstructure:"max_links"`
	Attempts     int           `mapstructure:"attempts"`
	RetryDelay   time.Duration `mapstructure:"retry_delay"`
}

// Keywords holds the keyword source configuration
type Keywords struct {
	File string `mapstructure:"file"`
}

// Images holds featured-image settings
type Images struct {
	Dir        string `mapstructure:"dir"`
	TargetKB   int    `mapstructure:"target_kb"`
	MaxWidth   int    `mapstructure:"max_width"`
	Quality    int    `mapstructure:"quality"`
	MinQuality int    `mapstructure:"min_quality"`
}

// Scheduler holds the recurring-run configuration
type Scheduler struct {
	Enabled bool   `mapstructure:"enabled"`
	Cron    string `mapstructure:"cron"`
}

// Logging holds logging configuration
type Logging struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Load loads the configuration from the optional config file, .env and the
// environment. Each call builds a fresh viper instance.
func Load(configFile string) (*Config, error) {
	// Load .env file if it exists; real environment variables win.
	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(".env"); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: Error loading .env file: %v\n", err)
		}
	}

	v := viper.New()
	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME")
		v.SetConfigName(".blogagent")
		v.SetConfigType("yaml")
	}

	setDefaults(v)

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) || configFile != "" {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	// Explicit env vars take precedence over the file.
	bindEnvironmentVariables(v)

	config := &Config{}
	if err := v.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	config.App.ConfigFile = v.ConfigFileUsed()

	postProcessConfig(config)

	if err := validateConfig(config); err != nil {
		return nil, err
	}
	return config, nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	v.SetDefault("app.debug", false)

	v.SetDefault("ai.provider", "openai")
	v.SetDefault("ai.temperature", 0.4)
	v.SetDefault("ai.max_tokens", 4000)
	v.SetDefault("ai.timeout", "120s")
	v.SetDefault("ai.openai.model", "gpt-4o-mini")
	v.SetDefault("ai.openai.base_url", "")
	v.SetDefault("ai.openai.max_retries", 2)
	v.SetDefault("ai.gemini.model", "gemini-2.5-flash")

	v.SetDefault("wordpress.base_url", "")
	v.SetDefault("wordpress.user", "")
	v.SetDefault("wordpress.app_password", "")
	v.SetDefault("wordpress.timeout", "60s")
	v.SetDefault("wordpress.publish_status", "publish")
	v.SetDefault("wordpress.user_agent", "ai-blog-agent/1.0")

	v.SetDefault("content.brand", "NNRoad")
	v.SetDefault("content.site", "www.nnroad.com")
	v.SetDefault("content.contact_email", "contact@nnroad.com")
	v.SetDefault("content.min_words", 1150)
	v.SetDefault("content.expand_min", 1200)
	v.SetDefault("content.expand_max", 1600)
	v.SetDefault("content.max_links", 4)
	v.SetDefault("content.attempts", 3)
	v.SetDefault("content.retry_delay", "1.2s")

	v.SetDefault("keywords.file", "./data/keywords.xlsx")

	v.SetDefault("images.dir", "./images")
	v.SetDefault("images.target_kb", 100)
	v.SetDefault("images.max_width", 1200)
	v.SetDefault("images.quality", 85)
	v.SetDefault("images.min_quality", 10)

	v.SetDefault("scheduler.enabled", false)
	v.SetDefault("scheduler.cron", "0 10 * * *")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
}

// bindEnvironmentVariables maps the conventional variable names onto config keys
func bindEnvironmentVariables(v *viper.Viper) {
	bindEnvKeys(v, "ai.openai.api_key", []string{"OPENAI_API_KEY"})
	bindEnvKeys(v, "ai.gemini.api_key", []string{
		"GEMINI_API_KEY",
		"GOOGLE_GEMINI_API_KEY",
		"GOOGLE_AI_API_KEY",
	})
	bindEnvKeys(v, "ai.provider", []string{"AI_PROVIDER"})

	bindEnvKeys(v, "wordpress.base_url", []string{"WP_BASE_URL"})
	bindEnvKeys(v, "wordpress.user", []string{"WP_USER"})
	bindEnvKeys(v, "wordpress.app_password", []string{"WP_APP_PASSWORD"})

	bindEnvKeys(v, "keywords.file", []string{"KEYWORDS_FILE"})
	bindEnvKeys(v, "images.dir", []string{"IMAGES_DIR"})
	bindEnvKeys(v, "scheduler.cron", []string{"SCHEDULE_CRON"})

	if raw := os.Getenv("SCHEDULER_ENABLED"); raw != "" {
		v.Set("scheduler.enabled", IsTruthy(raw))
	}

	bindEnvKeys(v, "app.debug", []string{"DEBUG", "BLOGAGENT_DEBUG"})
}

// bindEnvKeys binds the first found environment variable to a viper key
func bindEnvKeys(v *viper.Viper, viperKey string, envKeys []string) {
	for _, envKey := range envKeys {
		if value := os.Getenv(envKey); value != "" {
			v.Set(viperKey, value)
			return
		}
	}
}

// IsTruthy accepts the usual spellings of an enabled flag.
func IsTruthy(raw string) bool {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "1", "true", "yes", "on":
		return true
	}
	return false
}

// postProcessConfig normalizes values after unmarshaling
func postProcessConfig(config *Config) {
	config.AI.Provider = strings.ToLower(strings.TrimSpace(config.AI.Provider))
	config.WordPress.BaseURL = strings.TrimRight(strings.TrimSpace(config.WordPress.BaseURL), "/")
	config.Keywords.File = expandPath(config.Keywords.File)
	config.Images.Dir = expandPath(config.Images.Dir)
	if config.App.Debug {
		config.Logging.Level = "debug"
	}
}

// expandPath expands ~ and environment variables in paths
func expandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, path[2:])
	}
	return os.ExpandEnv(path)
}

// validateConfig ensures required configuration is present
func validateConfig(config *Config) error {
	var errs []string

	switch config.AI.Provider {
	case "openai":
		if config.AI.OpenAI.APIKey == "" {
			errs = append(errs, "OpenAI API key is required. Set OPENAI_API_KEY environment variable or ai.openai.api_key in config file")
		}
	case "gemini":
		if config.AI.Gemini.APIKey == "" {
			errs = append(errs, "Gemini API key is required. Set GEMINI_API_KEY environment variable or ai.gemini.api_key in config file")
		}
	default:
		errs = append(errs, fmt.Sprintf("Unknown AI provider: %s. Supported: openai, gemini", config.AI.Provider))
	}

	if config.AI.Timeout <= 0 {
		errs = append(errs, "ai.timeout must be positive")
	}
	if config.WordPress.Timeout <= 0 {
		errs = append(errs, "wordpress.timeout must be positive")
	}
	if config.Content.Attempts < 1 {
		errs = append(errs, "content.attempts must be at least 1")
	}
	if config.Content.MaxLinks < 0 {
		errs = append(errs, "content.max_links must not be negative")
	}
	if config.Content.ExpandMin > config.Content.ExpandMax {
		errs = append(errs, "content.expand_min must not exceed content.expand_max")
	}
	if config.Images.TargetKB <= 0 || config.Images.MaxWidth <= 0 {
		errs = append(errs, "images.target_kb and images.max_width must be positive")
	}
	if config.Images.Quality < 1 || config.Images.Quality > 100 {
		errs = append(errs, "images.quality must be between 1 and 100")
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration errors:\n- %s", strings.Join(errs, "\n- "))
	}
	return nil
}

// ValidateWordPress checks the settings needed by commands that publish.
func (c *Config) ValidateWordPress() error {
	var missing []string
	if c.WordPress.BaseURL == "" {
		missing = append(missing, "WP_BASE_URL")
	}
	if c.WordPress.User == "" {
		missing = append(missing, "WP_USER")
	}
	if c.WordPress.AppPassword == "" {
		missing = append(missing, "WP_APP_PASSWORD")
	}
	if len(missing) > 0 {
		return fmt.Errorf("wordpress configuration incomplete, set: %s", strings.Join(missing, ", "))
	}
	return nil
}
