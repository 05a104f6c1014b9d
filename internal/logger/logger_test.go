package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zerolog.DebugLevel, ParseLevel("debug"))
	assert.Equal(t, zerolog.ErrorLevel, ParseLevel("error"))
	assert.Equal(t, zerolog.InfoLevel, ParseLevel("verbose"))
}

func TestComponentLoggerWritesToExtraWriter(t *testing.T) {
	var buf bytes.Buffer
	Initialize("info", &buf)
	defer zerolog.SetGlobalLevel(zerolog.InfoLevel)

	l := GetForComponent("vault")
	l.Info().Str("tx_id", "abc").Msg("Bonded")
	l.Debug().Msg("filtered")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &entry))
	assert.Equal(t, "vault", entry["component"])
	assert.Equal(t, "abc", entry["tx_id"])
	assert.Equal(t, "Bonded", entry["message"])
}
