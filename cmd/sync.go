package cmd

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/s0up4200/automater-sync/catalog"
)

var watchStocks bool

// importCmd represents the import command
var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Import Automater products as WooCommerce attribute terms",
	Long: `Create a term of the "automater_product" attribute for every active
Automater shop product and delete terms of products that no longer exist.
Link WooCommerce products to Automater by selecting the term on the product.`,
	RunE: runImport,
}

// stocksCmd represents the stocks command
var stocksCmd = &cobra.Command{
	Use:   "stocks",
	Short: "Copy Automater code counts into WooCommerce stock",
	Long: `Update the stock quantity and stock status of every WooCommerce product
linked to an Automater product. Products that do not manage stock are skipped.
With --watch the update repeats every sync.interval until interrupted.`,
	RunE: runStocks,
}

func init() {
	stocksCmd.Flags().BoolVarP(&watchStocks, "watch", "w", false, "keep running and update stock every sync.interval")

	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(stocksCmd)
}

func runImport(cmd *cobra.Command, args []string) error {
	if err := requireAPI(); err != nil {
		return err
	}

	opts, err := catalogOptions()
	if err != nil {
		return err
	}

	importer := catalog.NewImporter(automaterClient, storeClient, logger, opts...)
	result, err := importer.Import(cmd.Context())
	if err != nil {
		return fmt.Errorf("import failed: %w", err)
	}

	fmt.Printf("Import %s\n", result.Status())
	fmt.Printf("- Imported:  %d\n", result.Imported)
	fmt.Printf("- Failed:    %d\n", result.Failed)
	fmt.Printf("- Deleted:   %d\n", result.Deleted)
	fmt.Printf("- Unchanged: %d\n", result.Unchanged)

	return nil
}

func runStocks(cmd *cobra.Command, args []string) error {
	if err := requireAPI(); err != nil {
		return err
	}

	opts, err := catalogOptions()
	if err != nil {
		return err
	}
	updater := catalog.NewStockUpdater(automaterClient, storeClient, logger, opts...)

	if watchStocks {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		catalog.NewScheduler(updater, cfg.Sync.Interval, logger).Run(ctx)
		return nil
	}

	result, err := updater.Update(cmd.Context())
	if err != nil {
		return fmt.Errorf("stock update failed: %w", err)
	}

	status := "success"
	if result.Updated == 0 {
		status = "nothing"
	}
	fmt.Printf("Stock update %s\n", status)
	fmt.Printf("- Linked products: %d\n", result.Linked)
	fmt.Printf("- Updated:         %d\n", result.Updated)
	fmt.Printf("- Unchanged:       %d\n", result.Unchanged)
	fmt.Printf("- Skipped:         %d\n", result.Skipped)
	fmt.Printf("- Failed:          %d\n", result.Failed)

	return nil
}
