package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/s0up4200/automater-sync/automater"
	"github.com/s0up4200/automater-sync/orders"
)

// orderCmd represents the order command
var orderCmd = &cobra.Command{
	Use:   "order",
	Short: "Forward a single order to Automater",
	Long: `Run the order handlers by hand, for example to retry an order whose
webhook delivery failed. Both handlers are safe to repeat.`,
}

var orderPlaceCmd = &cobra.Command{
	Use:   "place <order-id>",
	Short: "Create the Automater cart for an order",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runOrder(cmd, args[0], false)
	},
}

var orderPayCmd = &cobra.Command{
	Use:   "pay <order-id>",
	Short: "Post the Automater payment for an order",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runOrder(cmd, args[0], true)
	},
}

func init() {
	orderCmd.AddCommand(orderPlaceCmd)
	orderCmd.AddCommand(orderPayCmd)
	rootCmd.AddCommand(orderCmd)
}

func newProcessor() *orders.Processor {
	return orders.NewProcessor(automaterClient, storeClient, orders.Config{
		ShopName: cfg.WooCommerce.ShopName,
		Language: automater.ParseLanguage(cfg.WooCommerce.Language),
		DryRun:   cfg.Safety.DryRun,
	}, logger)
}

func runOrder(cmd *cobra.Command, arg string, paid bool) error {
	if err := requireAPI(); err != nil {
		return err
	}

	orderID, err := strconv.ParseInt(arg, 10, 64)
	if err != nil || orderID <= 0 {
		return fmt.Errorf("invalid order id: %s", arg)
	}

	processor := newProcessor()

	var result *orders.Result
	if paid {
		result, err = processor.OrderPaid(cmd.Context(), orderID)
	} else {
		result, err = processor.OrderPlaced(cmd.Context(), orderID)
	}
	if err != nil {
		return err
	}

	fmt.Printf("Order %d: %s\n", orderID, result.Outcome)
	if result.CartID != "" {
		fmt.Printf("- Cart: %s\n", result.CartID)
	}
	for _, note := range result.Notes {
		fmt.Printf("  %s\n", note)
	}

	return nil
}
