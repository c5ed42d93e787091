package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/s0up4200/automater-sync/catalog"
	"github.com/s0up4200/automater-sync/woocommerce"
)

// testCmd represents the test command
var testCmd = &cobra.Command{
	Use:   "test",
	Short: "Test connections to WooCommerce and Automater",
	Long:  `Test the connection to your WooCommerce store and the Automater API and display basic information.`,
	RunE:  runTest,
}

func init() {
	rootCmd.AddCommand(testCmd)
}

func runTest(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	fmt.Printf("Testing connection to WooCommerce at %s...\n", cfg.WooCommerce.URL)
	if err := storeClient.TestConnection(ctx); err != nil {
		return fmt.Errorf("WooCommerce connection failed: %w", err)
	}
	fmt.Println("✓ WooCommerce connection successful!")

	attr, err := storeClient.FindAttribute(ctx, catalog.AttributeSlug)
	switch {
	case err == nil:
		fmt.Printf("- Attribute %q: ID %d\n", attr.Slug, attr.ID)
	case errors.Is(err, woocommerce.ErrNotFound):
		fmt.Printf("- Attribute %q: missing, run \"import\" to create it\n", catalog.AttributeSlug)
	default:
		return fmt.Errorf("failed to look up attribute: %w", err)
	}

	if err := requireAPI(); err != nil {
		fmt.Println("\nAutomater integration: Disabled")
		return nil
	}

	fmt.Printf("\nTesting connection to Automater at %s...\n", cfg.Automater.URL)

	// Credentials and catalog size are fetched in parallel
	var productCount, databaseCount int
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		products, err := automaterClient.AllProducts(gctx)
		if err != nil {
			return fmt.Errorf("Automater connection failed: %w", err)
		}
		productCount = len(products)
		return nil
	})
	g.Go(func() error {
		resp, err := automaterClient.ListDatabases(gctx, 1, 1)
		if err != nil {
			return fmt.Errorf("failed to list databases: %w", err)
		}
		databaseCount = resp.Count
		return nil
	})
	if err := g.Wait(); err != nil {
		return err
	}

	fmt.Println("✓ Automater connection successful!")
	fmt.Printf("- Active shop products: %d\n", productCount)
	fmt.Printf("- Code databases: %d\n", databaseCount)
	fmt.Printf("- Scheduled stock updates: %s\n", boolToStatus(cfg.Sync.EnableCronJob))
	fmt.Printf("- Dry run: %s\n", boolToStatus(cfg.Safety.DryRun))

	return nil
}

func boolToStatus(b bool) string {
	if b {
		return "Enabled"
	}
	return "Disabled"
}
