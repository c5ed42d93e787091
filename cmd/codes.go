package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/s0up4200/automater-sync/automater"
)

var (
	databasesPage  int
	databasesLimit int
)

// databasesCmd represents the databases command
var databasesCmd = &cobra.Command{
	Use:   "databases",
	Short: "List Automater code databases",
	RunE:  runDatabases,
}

// codesCmd represents the codes command
var codesCmd = &cobra.Command{
	Use:   "codes",
	Short: "Manage codes stored in Automater databases",
}

var codesAddCmd = &cobra.Command{
	Use:   "add <database-id> <code>...",
	Short: "Add codes to an Automater database",
	Args:  cobra.MinimumNArgs(2),
	RunE:  runCodesAdd,
}

func init() {
	databasesCmd.Flags().IntVar(&databasesPage, "page", 1, "page to show")
	databasesCmd.Flags().IntVar(&databasesLimit, "limit", automater.DefaultPageSize, "databases per page")

	codesCmd.AddCommand(codesAddCmd)
	rootCmd.AddCommand(databasesCmd)
	rootCmd.AddCommand(codesCmd)
}

func runDatabases(cmd *cobra.Command, args []string) error {
	if err := requireAPI(); err != nil {
		return err
	}

	resp, err := automaterClient.ListDatabases(cmd.Context(), databasesPage, databasesLimit)
	if err != nil {
		return fmt.Errorf("failed to list databases: %w", err)
	}

	if len(resp.Data) == 0 {
		fmt.Println("No databases found.")
		return nil
	}

	fmt.Printf("\nFound %d databases (page %d of %d):\n", resp.Count, resp.Page.Page, resp.PagesCount)
	fmt.Println(strings.Repeat("-", 60))
	for _, db := range resp.Data {
		fmt.Printf("• %s (ID: %s, type: %s, codes: %d)\n", db.Name, db.ID, db.Type, db.AvailableCodes)
	}

	return nil
}

func runCodesAdd(cmd *cobra.Command, args []string) error {
	if err := requireAPI(); err != nil {
		return err
	}

	databaseID := automater.ID(strings.TrimSpace(args[0]))

	var codes []string
	for _, code := range args[1:] {
		if code = strings.TrimSpace(code); code != "" {
			codes = append(codes, code)
		}
	}
	if len(codes) == 0 {
		return fmt.Errorf("no codes given")
	}

	if cfg.Safety.DryRun {
		logger.Info().Str("database_id", databaseID.String()).Int("codes", len(codes)).Msg("Dry run: would add codes")
		return nil
	}

	resp, err := automaterClient.AddCodes(cmd.Context(), databaseID, codes)
	if err != nil {
		return fmt.Errorf("failed to add codes: %w", err)
	}

	fmt.Printf("✓ Added %d codes to database %s\n", resp.Added, databaseID)
	return nil
}
