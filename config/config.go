package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/s0up4200/automater-sync/automater"
	"github.com/s0up4200/automater-sync/catalog"
)

// EnvPrefix prefixes environment overrides, e.g. AUTOMATER_SYNC_AUTOMATER_API_KEY
const EnvPrefix = "AUTOMATER_SYNC"

// Load loads the configuration from file
func Load(configPath string) (*Config, error) {
	v := viper.New()

	// Set default values
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		// Look for config in standard locations
		v.SetConfigName("config")
		v.SetConfigType("yaml")

		v.AddConfigPath(".")

		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".automater-sync"))
		}

		v.AddConfigPath("/etc/automater-sync/")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return nil, fmt.Errorf("config file not found: %w", err)
		}
		return nil, fmt.Errorf("error reading config: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	normalize(&cfg)

	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// setDefaults sets default configuration values. Every key gets a default so
// AutomaticEnv can override it.
func setDefaults(v *viper.Viper) {
	// Automater defaults
	v.SetDefault("automater.api_key", "")
	v.SetDefault("automater.api_secret", "")
	v.SetDefault("automater.url", automater.DefaultBaseURL)
	v.SetDefault("automater.timeout", automater.DefaultTimeout)
	v.SetDefault("automater.rate_limit", automater.DefaultRateLimit)
	v.SetDefault("automater.max_retries", automater.DefaultMaxRetries)

	// WooCommerce defaults
	v.SetDefault("woocommerce.url", "")
	v.SetDefault("woocommerce.consumer_key", "")
	v.SetDefault("woocommerce.consumer_secret", "")
	v.SetDefault("woocommerce.timeout", 30*time.Second)
	v.SetDefault("woocommerce.shop_name", "WooCommerce")
	v.SetDefault("woocommerce.language", "en")

	// Sync defaults
	v.SetDefault("sync.enable_cron_job", false)
	v.SetDefault("sync.interval", catalog.DefaultInterval)
	v.SetDefault("sync.concurrency", catalog.DefaultConcurrency)
	v.SetDefault("sync.product_filter", "")

	// Order defaults
	v.SetDefault("orders.paid_statuses", []string{"completed"})

	// Webhook defaults
	v.SetDefault("webhook.listen", ":8080")
	v.SetDefault("webhook.secret", "")
	v.SetDefault("webhook.workers", 4)
	v.SetDefault("webhook.queue_size", 16)

	// Safety defaults
	v.SetDefault("safety.dry_run", false)

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
	v.SetDefault("logging.color", true)
}

// normalize trims credentials pasted with surrounding whitespace
func normalize(cfg *Config) {
	cfg.Automater.APIKey = strings.TrimSpace(cfg.Automater.APIKey)
	cfg.Automater.APISecret = strings.TrimSpace(cfg.Automater.APISecret)
	cfg.WooCommerce.URL = strings.TrimRight(strings.TrimSpace(cfg.WooCommerce.URL), "/")
	cfg.WooCommerce.ConsumerKey = strings.TrimSpace(cfg.WooCommerce.ConsumerKey)
	cfg.WooCommerce.ConsumerSecret = strings.TrimSpace(cfg.WooCommerce.ConsumerSecret)
	cfg.Logging.Level = strings.ToLower(cfg.Logging.Level)
	cfg.Logging.Format = strings.ToLower(cfg.Logging.Format)
}

// validate checks if the configuration is valid
func validate(cfg *Config) error {
	if err := validKey("automater.api_key", cfg.Automater.APIKey); err != nil {
		return err
	}
	if err := validKey("automater.api_secret", cfg.Automater.APISecret); err != nil {
		return err
	}

	if cfg.WooCommerce.URL == "" {
		return fmt.Errorf("woocommerce.url is required")
	}
	if u, err := url.Parse(cfg.WooCommerce.URL); err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("woocommerce.url must be an absolute URL: %s", cfg.WooCommerce.URL)
	}
	if cfg.WooCommerce.ConsumerKey == "" || cfg.WooCommerce.ConsumerSecret == "" {
		return fmt.Errorf("woocommerce.consumer_key and woocommerce.consumer_secret are required")
	}

	validLanguages := map[string]bool{
		"pl": true,
		"en": true,
	}
	if !validLanguages[strings.ToLower(cfg.WooCommerce.Language)] {
		return fmt.Errorf("invalid woocommerce.language: %s (must be 'pl' or 'en')", cfg.WooCommerce.Language)
	}

	if cfg.Sync.Interval < time.Minute {
		return fmt.Errorf("sync.interval must be at least 1m, got %s", cfg.Sync.Interval)
	}
	if cfg.Sync.Concurrency < 1 {
		return fmt.Errorf("sync.concurrency must be positive")
	}
	if cfg.Webhook.Workers < 1 {
		return fmt.Errorf("webhook.workers must be positive")
	}
	if cfg.Webhook.QueueSize < 1 {
		return fmt.Errorf("webhook.queue_size must be positive")
	}

	// Validate logging level
	validLevels := map[string]bool{
		"trace": true,
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLevels[cfg.Logging.Level] {
		return fmt.Errorf("invalid logging level: %s", cfg.Logging.Level)
	}

	// Validate logging format
	validFormats := map[string]bool{
		"console": true,
		"json":    true,
	}
	if !validFormats[cfg.Logging.Format] {
		return fmt.Errorf("invalid logging format: %s", cfg.Logging.Format)
	}

	return nil
}

// validKey accepts an empty key (API disabled) or one of exactly 32 characters
func validKey(name, value string) error {
	if value == "" || len(value) == catalog.APIKeyLength {
		return nil
	}
	return fmt.Errorf("%s must be %d characters long", name, catalog.APIKeyLength)
}

// APIEnabled reports whether both Automater credentials are configured
func (c *Config) APIEnabled() bool {
	return catalog.APIEnabled(c.Automater.APIKey, c.Automater.APISecret)
}
