package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/s0up4200/automater-sync/automater"
	"github.com/s0up4200/automater-sync/catalog"
	"github.com/s0up4200/automater-sync/config"
	"github.com/s0up4200/automater-sync/filter"
	"github.com/s0up4200/automater-sync/woocommerce"
)

var (
	cfgFile         string
	cfg             *config.Config
	logger          zerolog.Logger
	automaterClient *automater.Client
	storeClient     *woocommerce.Client

	// Command flags
	dryRun bool
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "automater-sync",
	Short: "Keep a WooCommerce store in sync with Automater.pl",
	Long: `automater-sync connects a WooCommerce store with the Automater.pl digital
goods platform. It imports Automater products as a product attribute, copies
available code counts into product stock and forwards placed and paid orders
to Automater as carts and payments.`,
	PersistentPreRunE: initializeApp,
	SilenceUsage:      true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&dryRun, "dry-run", "d", false, "perform a dry run without making changes")
}

// initializeApp initializes the configuration and clients
func initializeApp(cmd *cobra.Command, args []string) error {
	var err error
	cfg, err = config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logger = setupLogger(cfg.Logging)

	// Override dry-run from command line if specified
	if cmd.Flags().Changed("dry-run") {
		cfg.Safety.DryRun = dryRun
	}
	if cfg.Safety.DryRun {
		logger.Warn().Msg("Dry run enabled, no changes will be written")
	}

	storeClient, err = woocommerce.NewClient(
		cfg.WooCommerce.URL,
		cfg.WooCommerce.ConsumerKey,
		cfg.WooCommerce.ConsumerSecret,
		logger.With().Str("client", "woocommerce").Logger(),
		woocommerce.WithTimeout(cfg.WooCommerce.Timeout),
	)
	if err != nil {
		return fmt.Errorf("failed to create WooCommerce client: %w", err)
	}

	if !cfg.APIEnabled() {
		logger.Warn().Msg("Automater API key or secret missing, Automater features are disabled")
		return nil
	}

	automaterClient, err = automater.NewClient(
		cfg.Automater.APIKey,
		cfg.Automater.APISecret,
		logger.With().Str("client", "automater").Logger(),
		automater.WithBaseURL(cfg.Automater.URL),
		automater.WithTimeout(cfg.Automater.Timeout),
		automater.WithRateLimit(cfg.Automater.RateLimit),
		automater.WithMaxRetries(cfg.Automater.MaxRetries),
	)
	if err != nil {
		return fmt.Errorf("failed to create Automater client: %w", err)
	}

	return nil
}

// requireAPI fails commands that need Automater when the API is disabled
func requireAPI() error {
	if automaterClient == nil {
		return fmt.Errorf("please provide the Automater API configuration first (automater.api_key and automater.api_secret, %d characters each)", catalog.APIKeyLength)
	}
	return nil
}

// catalogOptions builds the import and stock options from the config
func catalogOptions() ([]catalog.Option, error) {
	opts := []catalog.Option{
		catalog.WithConcurrency(cfg.Sync.Concurrency),
		catalog.WithDryRun(cfg.Safety.DryRun),
	}
	if cfg.Sync.ProductFilter != "" {
		f, err := filter.Compile(cfg.Sync.ProductFilter)
		if err != nil {
			return nil, fmt.Errorf("invalid sync.product_filter: %w", err)
		}
		opts = append(opts, catalog.WithFilter(f))
	}
	return opts, nil
}

// setupLogger configures the zerolog logger
func setupLogger(cfg config.LoggingConfig) zerolog.Logger {
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	if cfg.Format == "json" {
		return zerolog.New(os.Stderr).With().Timestamp().Logger()
	}

	fd := os.Stderr.Fd()
	tty := isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)

	output := zerolog.ConsoleWriter{
		Out:        os.Stderr,
		TimeFormat: time.RFC3339,
		NoColor:    !cfg.Color || !tty,
	}

	return zerolog.New(output).With().Timestamp().Logger()
}

// skipInit replaces the root PersistentPreRunE for commands that need no config
func skipInit(cmd *cobra.Command, args []string) error {
	return nil
}
