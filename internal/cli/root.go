package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/elys-network/ampfarm/internal/app"
	"github.com/elys-network/ampfarm/internal/config"
	"github.com/elys-network/ampfarm/internal/logger"
)

var (
	// Global flags
	envFile  string
	logLevel string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "ampfarm",
	Short: "ampfarm - auto-compounding LP vault",
	Long: `ampfarm runs an auto-compounding LP vault. Depositors bond LP tokens and receive
bond shares; a controller periodically reinvests the custodian rewards so every
share is worth more LP over time.`,
	Version:       "0.1.0",
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&envFile, "env", ".env", "dotenv file loaded before reading the environment")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "overrides LOG_LEVEL")
}

// initConfig loads the dotenv file and the configuration, then sets up logging.
func initConfig() error {
	if err := godotenv.Load(envFile); err != nil {
		log.Warn().Str("file", envFile).Msg("Warning: .env file not found. Relying on OS environment variables.")
	}

	if err := config.LoadConfig(); err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	level := config.LogLevel
	if logLevel != "" {
		level = logLevel
	}
	var extra []io.Writer
	if config.LogFile != "" {
		w, err := logger.FileWriter(config.LogFile)
		if err != nil {
			return fmt.Errorf("failed to open log file: %w", err)
		}
		extra = append(extra, w)
	}
	logger.Initialize(level, extra...)
	return nil
}

func appConfig() app.Config {
	return app.Config{
		Prefix:         config.Bech32Prefix,
		ControllerName: config.ControllerName,
		RewardDenom:    config.RewardDenom,
		RewardLPRate:   config.RewardLPRate,
		ComponentRates: config.ComponentRates,
		SwapFee:        config.SwapFee,
	}
}
