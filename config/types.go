package config

import "time"

// Config represents the complete configuration structure
type Config struct {
	Automater   AutomaterConfig   `mapstructure:"automater"`
	WooCommerce WooCommerceConfig `mapstructure:"woocommerce"`
	Sync        SyncConfig        `mapstructure:"sync"`
	Orders      OrdersConfig      `mapstructure:"orders"`
	Webhook     WebhookConfig     `mapstructure:"webhook"`
	Safety      SafetyConfig      `mapstructure:"safety"`
	Logging     LoggingConfig     `mapstructure:"logging"`
}

// AutomaterConfig holds Automater.pl API credentials and transport settings
type AutomaterConfig struct {
	APIKey     string        `mapstructure:"api_key"`
	APISecret  string        `mapstructure:"api_secret"`
	URL        string        `mapstructure:"url"`
	Timeout    time.Duration `mapstructure:"timeout"`
	RateLimit  float64       `mapstructure:"rate_limit"`
	MaxRetries int           `mapstructure:"max_retries"`
}

// WooCommerceConfig holds WooCommerce REST API connection details
type WooCommerceConfig struct {
	URL            string        `mapstructure:"url"`
	ConsumerKey    string        `mapstructure:"consumer_key"`
	ConsumerSecret string        `mapstructure:"consumer_secret"`
	Timeout        time.Duration `mapstructure:"timeout"`
	ShopName       string        `mapstructure:"shop_name"`
	Language       string        `mapstructure:"language"`
}

// SyncConfig contains catalog import and stock synchronisation settings
type SyncConfig struct {
	EnableCronJob bool          `mapstructure:"enable_cron_job"`
	Interval      time.Duration `mapstructure:"interval"`
	Concurrency   int           `mapstructure:"concurrency"`
	ProductFilter string        `mapstructure:"product_filter"`
}

// OrdersConfig contains order forwarding settings
type OrdersConfig struct {
	PaidStatuses []string `mapstructure:"paid_statuses"`
}

// WebhookConfig contains webhook server settings
type WebhookConfig struct {
	Listen  string `mapstructure:"listen"`
	Secret  string `mapstructure:"secret"`
	Workers int    `mapstructure:"workers"`
	// QueueSize is the number of pending deliveries each worker holds
	QueueSize int `mapstructure:"queue_size"`
}

// SafetyConfig contains safety-related settings
type SafetyConfig struct {
	DryRun bool `mapstructure:"dry_run"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Color  bool   `mapstructure:"color"`
}
