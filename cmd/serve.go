package cmd

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/s0up4200/automater-sync/catalog"
	"github.com/s0up4200/automater-sync/webhook"
)

const shutdownTimeout = 30 * time.Second

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Receive WooCommerce webhooks and run scheduled stock updates",
	Long: `Start the webhook server. Point the WooCommerce "Order created" and
"Order updated" webhooks at /webhooks/woocommerce using the configured
webhook.secret. When sync.enable_cron_job is set, stock is also updated every
sync.interval.`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	if err := requireAPI(); err != nil {
		return err
	}
	if cfg.Webhook.Secret == "" {
		return fmt.Errorf("webhook.secret is required to verify WooCommerce deliveries")
	}

	var scheduler *catalog.Scheduler
	if cfg.Sync.EnableCronJob {
		opts, err := catalogOptions()
		if err != nil {
			return err
		}
		updater := catalog.NewStockUpdater(automaterClient, storeClient, logger, opts...)
		scheduler = catalog.NewScheduler(updater, cfg.Sync.Interval, logger)
	} else {
		logger.Info().Msg("Scheduled stock updates disabled (sync.enable_cron_job)")
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	server := webhook.New(webhook.Config{
		Listen:       cfg.Webhook.Listen,
		Secret:       cfg.Webhook.Secret,
		Workers:      cfg.Webhook.Workers,
		QueueSize:    cfg.Webhook.QueueSize,
		PaidStatuses: cfg.Orders.PaidStatuses,
	}, newProcessor(), logger)

	g, ctx := errgroup.WithContext(ctx)

	g.Go(server.Start)

	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return server.Stop(shutdownCtx)
	})

	if scheduler != nil {
		g.Go(func() error {
			scheduler.Run(ctx)
			return nil
		})
	}

	return g.Wait()
}
