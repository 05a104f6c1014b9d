package state

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/lib/pq" // PostgreSQL driver for array support
	"github.com/rs/zerolog/log"

	"github.com/elys-network/ampfarm/internal/types"
)

// EventSummary represents high-level history statistics
type EventSummary struct {
	TotalEvents   int            `json:"total_events"`
	ActionCounts  map[string]int `json:"action_counts"`
	HarvestRounds int            `json:"harvest_rounds"`
	LastUpdated   string         `json:"last_updated,omitempty"`
}

const (
	defaultEventLimit = 20
	maxEventLimit     = 500
)

// GetRecentVaultEvents retrieves the newest events, optionally restricted to some actions.
func GetRecentVaultEvents(limit int, actions ...string) ([]types.VaultEvent, error) {
	if DB == nil {
		return nil, ErrDBNotInitialized
	}

	if limit <= 0 || limit > maxEventLimit {
		limit = defaultEventLimit
	}

	var filter interface{}
	if len(actions) > 0 {
		filter = pq.Array(actions)
	}

	query := `
		SELECT event_id, tx_id, height, contract, action, attributes, created_at
		FROM vault_events
		WHERE $2::text[] IS NULL OR action = ANY($2::text[])
		ORDER BY event_id DESC
		LIMIT $1
	`
	rows, err := DB.Query(query, limit, filter)
	if err != nil {
		log.Error().Err(err).Msg("Failed to query recent vault events")
		return nil, fmt.Errorf("failed to query recent vault events: %w", err)
	}
	defer rows.Close()

	return scanVaultEvents(rows)
}

// GetVaultEventsByTx retrieves every event recorded by one transaction, in emission order.
func GetVaultEventsByTx(txID string) ([]types.VaultEvent, error) {
	if DB == nil {
		return nil, ErrDBNotInitialized
	}

	rows, err := DB.Query(`
		SELECT event_id, tx_id, height, contract, action, attributes, created_at
		FROM vault_events
		WHERE tx_id = $1
		ORDER BY event_id ASC
	`, txID)
	if err != nil {
		return nil, fmt.Errorf("failed to query events of tx %s: %w", txID, err)
	}
	defer rows.Close()

	return scanVaultEvents(rows)
}

func scanVaultEvents(rows *sql.Rows) ([]types.VaultEvent, error) {
	events := []types.VaultEvent{}
	for rows.Next() {
		var ev types.VaultEvent
		var contract string
		var attrsJSON []byte
		if err := rows.Scan(&ev.EventID, &ev.TxID, &ev.Height, &contract, &ev.Action, &attrsJSON, &ev.CreatedAt); err != nil {
			log.Error().Err(err).Msg("Failed to scan vault event row")
			continue
		}
		ev.Contract = types.Addr(contract)
		if len(attrsJSON) > 0 {
			if err := json.Unmarshal(attrsJSON, &ev.Attributes); err != nil {
				log.Error().Err(err).Int64("event_id", ev.EventID).Msg("Failed to unmarshal event attributes")
				continue
			}
		}
		events = append(events, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error during row iteration: %w", err)
	}
	return events, nil
}

// GetEventSummary aggregates the history table.
func GetEventSummary() (*EventSummary, error) {
	if DB == nil {
		return nil, ErrDBNotInitialized
	}

	summary := &EventSummary{ActionCounts: make(map[string]int)}

	rows, err := DB.Query(`SELECT action, COUNT(*) FROM vault_events GROUP BY action`)
	if err != nil {
		return nil, fmt.Errorf("failed to count vault events: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var action string
		var count int
		if err := rows.Scan(&action, &count); err != nil {
			return nil, fmt.Errorf("failed to scan action count: %w", err)
		}
		summary.ActionCounts[action] = count
		summary.TotalEvents += count
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error during row iteration: %w", err)
	}

	var lastUpdated sql.NullString
	err = DB.QueryRow(`SELECT MAX(created_at)::text FROM vault_events`).Scan(&lastUpdated)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("failed to get latest event time: %w", err)
	}
	if lastUpdated.Valid {
		summary.LastUpdated = lastUpdated.String
	}

	summary.HarvestRounds, err = GetCurrentHarvestRound()
	if err != nil {
		log.Error().Err(err).Msg("Failed to get harvest round count")
	}

	return summary, nil
}
