package cli

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ppiankov/trustlens/internal/bus"
	"github.com/ppiankov/trustlens/internal/dispatcher"
	"github.com/ppiankov/trustlens/internal/model"
	"github.com/ppiankov/trustlens/internal/popup"
	"github.com/ppiankov/trustlens/internal/worker"
)

var verifyOffline bool

// verifyCmd represents the verify command
var verifyCmd = &cobra.Command{
	Use:   "verify <text>",
	Short: "Verify a piece of text, as the context-menu entry does",
	Long: `Verify sends text through the same flow as the "Verify with TrustLens"
context-menu entry: one verification call, the popup view, and a history entry.

Example:
  trustlens verify "BBC reports: study finds new treatment effective"
  trustlens verify --offline "Miracle cure goes viral"`,
	Args: cobra.MinimumNArgs(1),
	RunE: runVerify,
}

func init() {
	rootCmd.AddCommand(verifyCmd)

	verifyCmd.Flags().BoolVar(&verifyOffline, "offline", false, "score in-process instead of calling the service")
	verifyCmd.Flags().String("endpoint", "http://localhost:3000/verify", "verification service URL")
	_ = viper.BindPFlag("client.endpoint", verifyCmd.Flags().Lookup("endpoint"))
}

func runVerify(cmd *cobra.Command, args []string) error {
	text := strings.Join(args, " ")

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	store, storage, err := openHistory(cfg)
	if err != nil {
		return err
	}
	defer storage.Close()

	ctx, cancel := context.WithTimeout(context.Background(), waitTimeout(cfg))
	defer cancel()

	if verbose {
		fmt.Fprintf(os.Stderr, "Verifying %d characters\n", len(text))
		if !verifyOffline {
			fmt.Fprintf(os.Stderr, "Endpoint: %s\n", cfg.Client.Endpoint)
		}
	}

	// 1. Runtime with background dispatcher and an open popup
	rt := bus.NewRuntime()
	pool := worker.NewPool(cfg.Workers)
	pool.Start()
	if verbose {
		fmt.Fprintf(os.Stderr, "Workers: %d\n", pool.Workers())
	}

	type outcome struct {
		result *model.VerificationResult
		err    error
	}
	done := make(chan outcome, 1)
	d := dispatcher.New(newVerifier(cfg, verifyOffline), rt, store,
		dispatcher.WithPool(pool),
		dispatcher.WithLogger(logger),
		dispatcher.WithCompletion(func(_ dispatcher.Request, r *model.VerificationResult, err error) {
			done <- outcome{result: r, err: err}
		}))
	d.Attach(rt)
	popup.New(store, cmd.OutOrStdout(), logger).Attach(rt)

	// 2. Menu click
	info := dispatcher.ContextMenuInfo{MenuItemID: dispatcher.VerifyMenuItem.ID, SelectionText: text}
	if !d.HandleContextMenu(ctx, info, nil) {
		pool.Stop()
		rt.Close()
		return fmt.Errorf("nothing to verify")
	}

	// 3. Wait, then let the popup finish drawing
	var out outcome
	select {
	case out = <-done:
	case <-ctx.Done():
		out.err = ctx.Err()
	}
	pool.Stop()
	rt.Close()

	if out.err != nil {
		return fmt.Errorf("verification failed: %w", out.err)
	}
	return nil
}
