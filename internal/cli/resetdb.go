package cli

import (
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/elys-network/ampfarm/internal/config"
	"github.com/elys-network/ampfarm/internal/state"
)

var resetDBCmd = &cobra.Command{
	Use:   "reset-db",
	Short: "Drop and recreate the event history tables",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := initConfig(); err != nil {
			return err
		}
		return resetDB()
	},
}

func init() {
	rootCmd.AddCommand(resetDBCmd)
}

func resetDB() error {
	if !config.HistoryDBEnabled {
		return errors.New("DB_NAME environment variable not set")
	}

	log.Info().
		Str("host", config.HistoryDB.Host).
		Int("port", config.HistoryDB.Port).
		Str("user", config.HistoryDB.User).
		Str("dbname", config.HistoryDB.DBName).
		Msg("Connecting to database")

	if err := state.InitDB(config.HistoryDB); err != nil {
		return fmt.Errorf("failed to initialize database connection: %w", err)
	}
	defer state.CloseDB()

	log.Info().Msg("Connected to database. Attempting to drop all tables...")
	if err := state.DropSchema(); err != nil {
		return fmt.Errorf("failed to drop tables: %w", err)
	}
	log.Info().Msg("Successfully dropped all tables")

	if err := state.EnsureSchema(); err != nil {
		return fmt.Errorf("failed to recreate database schema: %w", err)
	}
	log.Info().Msg("Database reset complete!")
	return nil
}
