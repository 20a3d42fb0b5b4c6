package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ppiankov/trustlens/internal/popup"
)

var historyClear bool

// historyCmd represents the history command
var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recent checks, as the popup does",
	Long: `History opens the popup view: the most recent checks, newest first.

Example:
  trustlens history
  trustlens history --clear`,
	Args: cobra.NoArgs,
	RunE: runHistory,
}

func init() {
	rootCmd.AddCommand(historyCmd)

	historyCmd.Flags().BoolVar(&historyClear, "clear", false, "delete all history entries")
}

func runHistory(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	store, storage, err := openHistory(cfg)
	if err != nil {
		return err
	}
	defer storage.Close()

	ctx := context.Background()
	if historyClear {
		if err := store.Clear(ctx); err != nil {
			return fmt.Errorf("clear history: %w", err)
		}
		fmt.Fprintln(os.Stderr, "✓ History cleared")
		return nil
	}

	if verbose {
		fmt.Fprintf(os.Stderr, "Keeping the last %d checks (%s backend)\n", store.Limit(), cfg.History.Backend)
	}
	return popup.New(store, cmd.OutOrStdout(), logger).Open(ctx)
}
