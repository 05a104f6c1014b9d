// Package harvester periodically compounds the vault rewards as the controller.
package harvester

import (
	"context"
	"errors"
	"fmt"
	"time"

	sdkmath "cosmossdk.io/math"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/elys-network/ampfarm/internal/logger"
	"github.com/elys-network/ampfarm/internal/types"
	"github.com/elys-network/ampfarm/internal/vault"
)

// RoundCounter hands out persistent harvest round numbers.
type RoundCounter func() (int, error)

// Harvester drives Compound on a fixed interval.
type Harvester struct {
	logger zerolog.Logger
	vault  vault.VaultManager

	minimumReceive    *sdkmath.Int
	slippageTolerance *sdkmath.LegacyDec
	rounds            RoundCounter

	localRound int
}

// Config holds the configuration for creating a new Harvester
type Config struct {
	VaultManager vault.VaultManager
	// MinimumReceive is the LP floor of each compound. Nil or zero disables it.
	MinimumReceive    *sdkmath.Int
	SlippageTolerance *sdkmath.LegacyDec
	// Rounds numbers the cycles. When nil the harvester counts in memory.
	Rounds RoundCounter
}

// Report describes one harvest cycle.
type Report struct {
	CycleID      string
	Round        int
	Compounded   bool
	SkipReason   string
	LPBefore     sdkmath.Int
	LPAfter      sdkmath.Int
	ExchangeRate sdkmath.LegacyDec
	Height       int64
}

func New(cfg Config) (*Harvester, error) {
	if cfg.VaultManager == nil {
		return nil, fmt.Errorf("vault manager cannot be nil")
	}
	minimum := cfg.MinimumReceive
	if minimum != nil && (minimum.IsNil() || minimum.IsZero()) {
		minimum = nil
	}
	return &Harvester{
		logger:            logger.GetForComponent("harvester"),
		vault:             cfg.VaultManager,
		minimumReceive:    minimum,
		slippageTolerance: cfg.SlippageTolerance,
		rounds:            cfg.Rounds,
	}, nil
}

// RunLoop runs a cycle immediately and then on every tick until ctx is cancelled.
func (h *Harvester) RunLoop(ctx context.Context, interval time.Duration) {
	h.logger.Info().
		Dur("interval", interval).
		Msg("Starting harvest loop")

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	h.runLogged(ctx)
	for {
		select {
		case <-ctx.Done():
			h.logger.Info().Msg("Harvest loop stopped due to context cancellation")
			return
		case <-ticker.C:
			h.runLogged(ctx)
		}
	}
}

func (h *Harvester) runLogged(ctx context.Context) {
	if _, err := h.RunCycle(ctx); err != nil {
		h.logger.Error().Err(err).Msg("Harvest cycle failed")
	}
}

// RunCycle compounds once. A vault with nothing to compound is skipped, not failed.
func (h *Harvester) RunCycle(ctx context.Context) (Report, error) {
	start := time.Now()
	report := Report{CycleID: uuid.New().String(), Round: h.nextRound()}
	cycleLogger := h.logger.With().Str("cycle_id", report.CycleID).Int("round", report.Round).Logger()

	cycleLogger.Info().Msg("--- Starting harvest cycle ---")

	before, err := h.vault.GetState(ctx)
	if err != nil {
		return report, fmt.Errorf("failed to read vault state: %w", err)
	}
	report.LPBefore = before.TotalLPDeposit
	report.LPAfter = before.TotalLPDeposit
	report.ExchangeRate = before.ExchangeRate

	res, err := h.vault.Compound(ctx, vault.Compound{
		MinimumReceive:    h.minimumReceive,
		SlippageTolerance: h.slippageTolerance,
	})
	switch {
	case errors.Is(err, types.ErrEmptyVault), errors.Is(err, types.ErrNoRewards):
		report.SkipReason = err.Error()
		cycleLogger.Info().Str("reason", report.SkipReason).Msg("Nothing to compound")
		return report, nil
	case err != nil:
		return report, fmt.Errorf("compound failed: %w", err)
	}
	report.Compounded = true
	report.Height = res.Height

	after, err := h.vault.GetState(ctx)
	if err != nil {
		return report, fmt.Errorf("failed to read vault state after compound: %w", err)
	}
	report.LPAfter = after.TotalLPDeposit
	report.ExchangeRate = after.ExchangeRate

	cycleLogger.Info().
		Str("tx_id", res.TxID).
		Int64("height", res.Height).
		Str("lp_before", report.LPBefore.String()).
		Str("lp_after", report.LPAfter.String()).
		Str("exchange_rate", report.ExchangeRate.String()).
		Str("duration", time.Since(start).String()).
		Msg("--- Harvest cycle completed ---")
	return report, nil
}

func (h *Harvester) nextRound() int {
	if h.rounds != nil {
		round, err := h.rounds()
		if err == nil {
			return round
		}
		h.logger.Error().Err(err).Msg("Failed to increment harvest round, using local counter")
	}
	h.localRound++
	return h.localRound
}
