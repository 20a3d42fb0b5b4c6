package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ppiankov/trustlens/internal/client"
	"github.com/ppiankov/trustlens/internal/score"
	"github.com/ppiankov/trustlens/internal/server"
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the verification service",
	Long: `Serve runs the HTTP verification service used by the extension.

Endpoints:
  POST /verify   {"text": "..."} -> {score, claims, sources, summary}
  GET  /         health probe

Example:
  trustlens serve
  trustlens serve --addr 127.0.0.1:8080`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().String("addr", ":3000", "listen address")
	serveCmd.Flags().Bool("rate-limit", true, "limit requests per client address")
	_ = viper.BindPFlag("server.addr", serveCmd.Flags().Lookup("addr"))
	_ = viper.BindPFlag("server.rate_limit.enabled", serveCmd.Flags().Lookup("rate-limit"))
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	fmt.Fprintf(os.Stderr, "TrustLens verification service on %s\n", cfg.Server.Addr)
	if verbose {
		fmt.Fprintf(os.Stderr, "Body limit: %d bytes\n", cfg.Server.MaxBodyBytes)
		fmt.Fprintf(os.Stderr, "Rate limit: %v (%.1f/s, burst %d)\n",
			cfg.Server.RateLimit.Enabled, cfg.Server.RateLimit.RequestsPerSecond, cfg.Server.RateLimit.BurstSize)
	}

	srv := server.New(cfg.Server, client.NewLocalVerifier(score.NewScorer()), logger)
	if err := srv.ListenAndServe(ctx); err != nil {
		return fmt.Errorf("serve: %w", err)
	}

	fmt.Fprintln(os.Stderr, "Shut down")
	return nil
}
