/*
Component assets are the native denoms a user may bond besides the LP token itself.

This file contains the default LP rate of each component and the parser for the
COMPONENT_DENOMS variable, a comma separated list of denom:rate pairs, e.g. "uusdc:1,uatom:8.5".
*/

package config

import (
	"fmt"
	"strings"

	sdkmath "cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"
)

var DefaultComponentRates = map[string]sdkmath.LegacyDec{
	"uusdc": sdkmath.LegacyOneDec(),
	"uatom": sdkmath.LegacyNewDec(8),
}

// ParseComponentRates parses a denom:rate list. Denoms must be valid and unique, rates positive.
func ParseComponentRates(raw string) (map[string]sdkmath.LegacyDec, error) {
	rates := make(map[string]sdkmath.LegacyDec)
	for _, entry := range strings.Split(raw, ",") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		denom, rateStr, ok := strings.Cut(entry, ":")
		if !ok {
			return nil, fmt.Errorf("component %q: expected denom:rate", entry)
		}
		denom = strings.TrimSpace(denom)
		if err := sdk.ValidateDenom(denom); err != nil {
			return nil, fmt.Errorf("component %q: %w", entry, err)
		}
		if _, dup := rates[denom]; dup {
			return nil, fmt.Errorf("component %q: duplicate denom", entry)
		}
		rate, err := sdkmath.LegacyNewDecFromStr(strings.TrimSpace(rateStr))
		if err != nil || !rate.IsPositive() {
			return nil, fmt.Errorf("component %q: %w", entry, ErrInvalidRate)
		}
		rates[denom] = rate
	}
	return rates, nil
}
