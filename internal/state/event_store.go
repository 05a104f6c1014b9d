package state

import (
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/elys-network/ampfarm/internal/host"
	"github.com/elys-network/ampfarm/internal/types"
)

// EventsFromResult extracts the actions recorded in a committed result, token actions
// such as send and mint included. Events without an action attribute are skipped.
func EventsFromResult(result host.Result) []types.VaultEvent {
	var events []types.VaultEvent
	for _, ev := range result.Events {
		action, ok := ev.Get("action")
		if !ok {
			continue
		}
		attrs := make(map[string]string, len(ev.Attributes))
		for _, attr := range ev.Attributes {
			if attr.Key == "action" {
				continue
			}
			if _, seen := attrs[attr.Key]; !seen {
				attrs[attr.Key] = attr.Value
			}
		}
		events = append(events, types.VaultEvent{
			TxID:       result.TxID,
			Height:     result.Height,
			Contract:   ev.Contract,
			Action:     action,
			Attributes: attrs,
		})
	}
	return events
}

// SaveVaultEvents stores the events of one committed result in a single transaction.
func SaveVaultEvents(events []types.VaultEvent) error {
	if DB == nil {
		return ErrDBNotInitialized
	}
	if len(events) == 0 {
		return nil
	}

	tx, err := DB.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	query := `
		INSERT INTO vault_events (tx_id, height, contract, action, attributes)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING event_id;
	`
	for i := range events {
		var attrsJSON []byte
		attrsJSON, err = json.Marshal(events[i].Attributes)
		if err != nil {
			return fmt.Errorf("failed to marshal attributes: %w", err)
		}
		err = tx.QueryRow(query, events[i].TxID, events[i].Height, events[i].Contract.String(), events[i].Action, attrsJSON).
			Scan(&events[i].EventID)
		if err != nil {
			return fmt.Errorf("failed to save vault event %s: %w", events[i].Action, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit vault events: %w", err)
	}

	log.Debug().
		Str("tx_id", events[0].TxID).
		Int("count", len(events)).
		Msg("Vault events saved to database")
	return nil
}

// HistorySink returns a host event sink that writes every committed action to the history database.
// Failures are logged; the chain state is already committed at that point.
func HistorySink() host.EventSink {
	return func(result host.Result) {
		events := EventsFromResult(result)
		if len(events) == 0 {
			return
		}
		if err := SaveVaultEvents(events); err != nil {
			log.Error().Err(err).Str("tx_id", result.TxID).Msg("Failed to record vault events")
		}
	}
}
