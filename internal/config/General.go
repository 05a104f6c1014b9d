package config

import (
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	sdkmath "cosmossdk.io/math"
	"github.com/rs/zerolog/log"
)

// AppConfig holds all application configuration loaded from environment variables.
// These are populated at startup by the LoadConfig function.
var (
	// Bech32Prefix is the human readable part of every address.
	Bech32Prefix string

	// StoreBackend selects the contract state database ("memdb" or "goleveldb").
	StoreBackend string
	// StoreDir is where a goleveldb store keeps its files.
	StoreDir string

	// ControllerName is the label the controller account is derived from.
	ControllerName string

	// RewardDenom is the native denom the custodian pays rewards in.
	RewardDenom string
	// RewardLPRate is the LP minted per unit of reward by the compounding engine.
	RewardLPRate sdkmath.LegacyDec
	// ComponentRates prices every other accepted native asset in LP.
	ComponentRates map[string]sdkmath.LegacyDec
	// SwapFee is charged by the compounding engine on swapped value.
	SwapFee sdkmath.LegacyDec

	// HarvestInterval is the delay between two compound attempts.
	HarvestInterval time.Duration
	// HarvestMinimumReceive is the LP floor passed to each compound, zero disables it.
	HarvestMinimumReceive sdkmath.Int

	// LogLevel is one of debug, info, warn, error.
	LogLevel string
	// LogFile optionally receives JSON logs next to the console output.
	LogFile string
)

var (
	ErrInvalidStoreBackend = errors.New("STORE_BACKEND must be memdb or goleveldb")
	ErrInvalidRate         = errors.New("rate must be a positive decimal")
)

// LoadConfig loads configuration from environment variables and sets the global config vars.
// Every variable has a default suitable for a local deployment.
func LoadConfig() error {
	log.Info().Msg("Loading application configuration from environment variables...")

	var err error

	Bech32Prefix = getEnvOrDefault("BECH32_PREFIX", DefaultBech32Prefix)

	StoreBackend = getEnvOrDefault("STORE_BACKEND", "goleveldb")
	if StoreBackend != "memdb" && StoreBackend != "goleveldb" {
		return ErrInvalidStoreBackend
	}
	StoreDir = getEnvOrDefault("STORE_DIR", "~/.ampfarm/data")

	ControllerName = getEnvOrDefault("CONTROLLER_NAME", DefaultControllerName)
	RewardDenom = getEnvOrDefault("REWARD_DENOM", DefaultRewardDenom)

	RewardLPRate, err = getEnvAsDec("REWARD_LP_RATE", DefaultRewardLPRate)
	if err != nil {
		return err
	}

	SwapFee, err = getEnvAsDec("SWAP_FEE", DefaultSwapFee)
	if err != nil {
		return err
	}

	ComponentRates = DefaultComponentRates
	if raw, ok := os.LookupEnv("COMPONENT_DENOMS"); ok {
		if ComponentRates, err = ParseComponentRates(raw); err != nil {
			return err
		}
	}

	HarvestInterval, err = getEnvAsDuration("HARVEST_INTERVAL", DefaultHarvestInterval)
	if err != nil {
		return err
	}

	minimum, err := getEnvAsUint64OrDefault("HARVEST_MINIMUM_RECEIVE", 0)
	if err != nil {
		return err
	}
	HarvestMinimumReceive = sdkmath.NewIntFromUint64(minimum)

	LogLevel = getEnvOrDefault("LOG_LEVEL", "info")
	LogFile = getEnvOrDefault("LOG_FILE", "")

	// Load endpoint configuration
	if err := loadEndpointConfig(); err != nil {
		return err
	}

	// Expand the tilde (~) in the store directory path to the user's home directory.
	if strings.HasPrefix(StoreDir, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return err
		}
		StoreDir = filepath.Join(home, StoreDir[2:])
	}

	log.Debug().
		Str("Bech32Prefix", Bech32Prefix).
		Str("StoreBackend", StoreBackend).
		Str("RewardDenom", RewardDenom).
		Dur("HarvestInterval", HarvestInterval).
		Msg("Configuration loaded successfully.")

	return nil
}

// getEnv retrieves a string environment variable. Returns error if not set.
func getEnv(key string) (string, error) {
	if value, exists := os.LookupEnv(key); exists {
		return value, nil
	}
	return "", errors.New("environment variable " + key + " is required but not set")
}

func getEnvOrDefault(key, fallback string) string {
	if value, err := getEnv(key); err == nil && value != "" {
		return value
	}
	return fallback
}

// getEnvAsUint64 retrieves an environment variable as a uint64. Returns error if not set or invalid.
func getEnvAsUint64(key string) (uint64, error) {
	valueStr, err := getEnv(key)
	if err != nil {
		return 0, err
	}
	value, err := strconv.ParseUint(valueStr, 10, 64)
	if err != nil {
		return 0, errors.New("environment variable " + key + " must be a valid uint64, got: " + valueStr)
	}
	return value, nil
}

func getEnvAsUint64OrDefault(key string, fallback uint64) (uint64, error) {
	if _, exists := os.LookupEnv(key); !exists {
		return fallback, nil
	}
	return getEnvAsUint64(key)
}

func getEnvAsDuration(key string, fallback time.Duration) (time.Duration, error) {
	valueStr, err := getEnv(key)
	if err != nil {
		return fallback, nil
	}
	value, err := time.ParseDuration(valueStr)
	if err != nil || value <= 0 {
		return 0, errors.New("environment variable " + key + " must be a positive duration, got: " + valueStr)
	}
	return value, nil
}

func getEnvAsDec(key string, fallback sdkmath.LegacyDec) (sdkmath.LegacyDec, error) {
	valueStr, err := getEnv(key)
	if err != nil {
		return fallback, nil
	}
	value, err := sdkmath.LegacyNewDecFromStr(valueStr)
	if err != nil || value.IsNegative() {
		return sdkmath.LegacyDec{}, errors.Join(ErrInvalidRate, errors.New("environment variable "+key+" got: "+valueStr))
	}
	return value, nil
}
