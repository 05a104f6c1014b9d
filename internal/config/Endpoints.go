package config

import (
	"github.com/rs/zerolog/log"

	"github.com/elys-network/ampfarm/internal/state"
)

// Endpoint configuration loaded from environment variables.
// These are populated at startup by the LoadConfig function.
var (
	// WebPort is the port the HTTP API listens on.
	WebPort uint64
	// HistoryDBEnabled is set when DB_NAME is configured.
	HistoryDBEnabled bool
	// HistoryDB holds the Postgres connection parameters of the event history.
	HistoryDB state.DBConfig
)

// loadEndpointConfig loads endpoint configuration from environment variables.
// This function is called by LoadConfig() in General.go.
func loadEndpointConfig() error {
	log.Info().Msg("Loading endpoint configuration from environment variables...")

	var err error

	WebPort, err = getEnvAsUint64OrDefault("WEB_PORT", 8080)
	if err != nil {
		return err
	}

	HistoryDB, err = LoadDBConfig()
	if err != nil {
		return err
	}
	HistoryDBEnabled = HistoryDB.DBName != ""

	log.Debug().
		Uint64("WebPort", WebPort).
		Bool("HistoryDBEnabled", HistoryDBEnabled).
		Str("DBHost", HistoryDB.Host).
		Msg("Endpoint configuration loaded successfully.")

	return nil
}

// LoadDBConfig reads the DB_* variables. An empty DBName means no history database.
func LoadDBConfig() (state.DBConfig, error) {
	port, err := getEnvAsUint64OrDefault("DB_PORT", 5432)
	if err != nil {
		return state.DBConfig{}, err
	}
	return state.DBConfig{
		Host:     getEnvOrDefault("DB_HOST", "localhost"),
		Port:     int(port),
		User:     getEnvOrDefault("DB_USER", "postgres"),
		Password: getEnvOrDefault("DB_PASSWORD", ""),
		DBName:   getEnvOrDefault("DB_NAME", ""),
		SSLMode:  getEnvOrDefault("DB_SSLMODE", "disable"),
	}, nil
}
