package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/ppiankov/trustlens/internal/model"
)

// Version is the released version, overridable at link time
var Version = "v0.1.0"

var (
	cfgFile string
	verbose bool
	logger  = zap.NewNop()
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "trustlens",
	Short: "TrustLens - credibility hints for selected web text",
	Long: `TrustLens scores a piece of selected text for credibility signals and
annotates it inline: a colored highlight, a floating result card and a
bounded history of recent checks.

Scoring is an explicit keyword heuristic, not an NLP classifier. A score
is a hint about the language of a claim, never a judgement of its truth.`,
	SilenceErrors: true,
	SilenceUsage:  true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		config := zap.NewProductionConfig()
		if verbose {
			config.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		l, err := config.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		logger = l
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = logger.Sync()
	},
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

// versionCmd represents the version command
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "trustlens %s\n", Version)
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: $HOME/.trustlens/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	// Bind flags to viper
	_ = viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))

	rootCmd.AddCommand(versionCmd)
}

// initConfig reads in config file and ENV variables
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error finding home directory: %v\n", err)
			return
		}

		viper.AddConfigPath(filepath.Join(home, ".trustlens"))
		viper.SetConfigType("yaml")
		viper.SetConfigName("config")
	}

	setDefaults(model.DefaultConfig())

	// Read in environment variables that match TRUSTLENS_*, e.g. TRUSTLENS_SERVER_ADDR
	viper.SetEnvPrefix("TRUSTLENS")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil && verbose {
		fmt.Fprintf(os.Stderr, "Using config file: %s\n", viper.ConfigFileUsed())
	}
}

// setDefaults registers every key so env variables can override nested values
func setDefaults(cfg *model.Config) {
	viper.SetDefault("server.addr", cfg.Server.Addr)
	viper.SetDefault("server.max_body_bytes", cfg.Server.MaxBodyBytes)
	viper.SetDefault("server.rate_limit.enabled", cfg.Server.RateLimit.Enabled)
	viper.SetDefault("server.rate_limit.requests_per_second", cfg.Server.RateLimit.RequestsPerSecond)
	viper.SetDefault("server.rate_limit.burst_size", cfg.Server.RateLimit.BurstSize)
	viper.SetDefault("client.endpoint", cfg.Client.Endpoint)
	viper.SetDefault("client.timeout", cfg.Client.Timeout)
	viper.SetDefault("client.user_agent", cfg.Client.UserAgent)
	viper.SetDefault("client.max_body_bytes", cfg.Client.MaxBodyBytes)
	viper.SetDefault("client.http_proxy", cfg.Client.HTTPProxy)
	viper.SetDefault("client.https_proxy", cfg.Client.HTTPSProxy)
	viper.SetDefault("history.backend", cfg.History.Backend)
	viper.SetDefault("history.path", cfg.History.Path)
	viper.SetDefault("history.limit", cfg.History.Limit)
	viper.SetDefault("overlay.dismiss_after", cfg.Overlay.DismissAfter)
	viper.SetDefault("overlay.card_width", cfg.Overlay.CardWidth)
	viper.SetDefault("overlay.offset", cfg.Overlay.Offset)
	viper.SetDefault("workers", cfg.Workers)
}

// loadConfig merges defaults, config file, env vars and bound flags
func loadConfig() (*model.Config, error) {
	cfg := model.DefaultConfig()
	if err := viper.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	return cfg, nil
}
