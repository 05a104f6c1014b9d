package config

import (
	"testing"
	"time"

	sdkmath "cosmossdk.io/math"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseComponentRates(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    map[string]sdkmath.LegacyDec
		wantErr bool
	}{
		{"single", "uusdc:1", map[string]sdkmath.LegacyDec{"uusdc": sdkmath.LegacyOneDec()}, false},
		{"spaces and trailing comma", " uusdc : 1 , uatom:8.5,", map[string]sdkmath.LegacyDec{
			"uusdc": sdkmath.LegacyOneDec(),
			"uatom": sdkmath.LegacyNewDecWithPrec(85, 1),
		}, false},
		{"empty", "", map[string]sdkmath.LegacyDec{}, false},
		{"missing rate", "uusdc", nil, true},
		{"zero rate", "uusdc:0", nil, true},
		{"bad denom", "1usdc:1", nil, true},
		{"duplicate", "uusdc:1,uusdc:2", nil, true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ParseComponentRates(tc.raw)
			if tc.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.Len(t, got, len(tc.want))
			for denom, rate := range tc.want {
				assert.True(t, rate.Equal(got[denom]), denom)
			}
		})
	}
}

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("STORE_BACKEND", "memdb")
	require.NoError(t, LoadConfig())

	assert.Equal(t, DefaultBech32Prefix, Bech32Prefix)
	assert.Equal(t, DefaultRewardDenom, RewardDenom)
	assert.Equal(t, DefaultHarvestInterval, HarvestInterval)
	assert.True(t, HarvestMinimumReceive.IsZero())
	assert.True(t, RewardLPRate.Equal(DefaultRewardLPRate))
	assert.Equal(t, uint64(8080), WebPort)
}

func TestLoadConfigOverrides(t *testing.T) {
	t.Setenv("STORE_BACKEND", "memdb")
	t.Setenv("HARVEST_INTERVAL", "90s")
	t.Setenv("HARVEST_MINIMUM_RECEIVE", "25")
	t.Setenv("REWARD_LP_RATE", "0.25")
	t.Setenv("COMPONENT_DENOMS", "uosmo:2")
	t.Setenv("DB_NAME", "ampfarm")
	require.NoError(t, LoadConfig())

	assert.Equal(t, 90*time.Second, HarvestInterval)
	assert.Equal(t, int64(25), HarvestMinimumReceive.Int64())
	assert.True(t, RewardLPRate.Equal(sdkmath.LegacyNewDecWithPrec(25, 2)))
	assert.Len(t, ComponentRates, 1)
	assert.True(t, HistoryDBEnabled)
	assert.Equal(t, "ampfarm", HistoryDB.DBName)
}

func TestLoadConfigRejectsInvalidValues(t *testing.T) {
	tests := map[string]string{
		"STORE_BACKEND":           "rocksdb",
		"HARVEST_INTERVAL":        "soon",
		"HARVEST_MINIMUM_RECEIVE": "-1",
		"REWARD_LP_RATE":          "abc",
		"WEB_PORT":                "http",
	}
	for key, value := range tests {
		t.Run(key, func(t *testing.T) {
			t.Setenv("STORE_BACKEND", "memdb")
			t.Setenv(key, value)
			assert.Error(t, LoadConfig())
		})
	}
}
