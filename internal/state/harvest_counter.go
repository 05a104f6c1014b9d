/*

This file manages the persistent harvest round counter.
The counter is stored in the database so round numbers continue across restarts.

*/

package state

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"
)

// GetCurrentHarvestRound retrieves the last harvest round number.
func GetCurrentHarvestRound() (int, error) {
	if DB == nil {
		return 0, ErrDBNotInitialized
	}

	var round int
	err := DB.QueryRow(`SELECT current_round FROM harvest_counter WHERE id = 1;`).Scan(&round)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Warn().Msg("No harvest counter row found, initializing to 0")
			return 0, nil
		}
		return 0, fmt.Errorf("failed to get current harvest round: %w", err)
	}
	return round, nil
}

// IncrementHarvestRound increments the counter and returns the new value.
func IncrementHarvestRound() (int, error) {
	if DB == nil {
		return 0, ErrDBNotInitialized
	}

	updateQuery := `
		UPDATE harvest_counter
		SET current_round = current_round + 1,
		    updated_at = CURRENT_TIMESTAMP
		WHERE id = 1
		RETURNING current_round;`

	var round int
	if err := DB.QueryRow(updateQuery).Scan(&round); err != nil {
		return 0, fmt.Errorf("failed to increment harvest round: %w", err)
	}

	log.Debug().Int("round", round).Msg("Incremented harvest counter")
	return round, nil
}

// ResetHarvestRound sets the counter to a specific value (for testing/maintenance).
func ResetHarvestRound(round int) error {
	if DB == nil {
		return ErrDBNotInitialized
	}
	if round < 0 {
		return fmt.Errorf("harvest round cannot be negative: %d", round)
	}

	result, err := DB.Exec(`
		UPDATE harvest_counter
		SET current_round = $1,
		    updated_at = CURRENT_TIMESTAMP
		WHERE id = 1;`, round)
	if err != nil {
		return fmt.Errorf("failed to reset harvest round to %d: %w", round, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("no rows updated when resetting harvest round")
	}

	log.Warn().Int("round", round).Msg("Reset harvest counter")
	return nil
}
