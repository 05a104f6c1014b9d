package types

import (
	"fmt"
	"time"
)

// Attribute is a key/value pair recorded by a contract for observability.
type Attribute struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

func NewAttribute(key string, value any) Attribute {
	return Attribute{Key: key, Value: fmt.Sprint(value)}
}

// Event groups the attributes a single contract emitted while handling one message.
type Event struct {
	Contract   Addr        `json:"contract"`
	Attributes []Attribute `json:"attributes"`
}

// Get returns the first value recorded under key.
func (e Event) Get(key string) (string, bool) {
	for _, attr := range e.Attributes {
		if attr.Key == key {
			return attr.Value, true
		}
	}
	return "", false
}

// VaultEvent is a committed vault action as kept in the history database.
type VaultEvent struct {
	EventID    int64             `json:"event_id"`
	TxID       string            `json:"tx_id"`
	Height     int64             `json:"height"`
	Contract   Addr              `json:"contract"`
	Action     string            `json:"action"`
	Attributes map[string]string `json:"attributes"`
	CreatedAt  time.Time         `json:"created_at"`
}
