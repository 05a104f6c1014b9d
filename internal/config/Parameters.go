/*

This file contains the default deployment parameters.
They are used when the corresponding environment variable is not set.

*/

package config

import (
	"time"

	sdkmath "cosmossdk.io/math"
)

const (
	DefaultBech32Prefix    = "elys"
	DefaultControllerName  = "controller"
	DefaultRewardDenom     = "uelys"
	DefaultHarvestInterval = time.Hour
)

var (
	// DefaultRewardLPRate: one LP for every two reward units.
	DefaultRewardLPRate = sdkmath.LegacyNewDecWithPrec(5, 1)

	// DefaultSwapFee is 0.3%; half of it is paid when the engine balances an offer.
	DefaultSwapFee = sdkmath.LegacyNewDecWithPrec(3, 3)
)
