package compounder

import (
	sdkmath "cosmossdk.io/math"

	"github.com/elys-network/ampfarm/internal/types"
)

// Route prices one offered asset in LP tokens.
type Route struct {
	Offer types.AssetInfo   `json:"offer"`
	Rate  sdkmath.LegacyDec `json:"rate"` // LP minted per base unit offered
}

type InstantiateMsg struct {
	LPToken types.Addr        // this contract must be the token's minter
	Routes  []Route
	SwapFee sdkmath.LegacyDec // paid on the swapped half of each non-LP asset
}

// Compound converts Assets into LP tokens minted to Receiver (the caller when empty).
// Native assets must arrive as attached funds, token assets are pulled with TransferFrom.
type Compound struct {
	Assets            []types.Asset
	NoSwap            bool
	SlippageTolerance *sdkmath.LegacyDec
	Receiver          types.Addr
}

type ConfigQuery struct{}

type ConfigResponse struct {
	LPToken types.Addr        `json:"lp_token"`
	Routes  []Route           `json:"routes"`
	SwapFee sdkmath.LegacyDec `json:"swap_fee"`
}

type SimulateCompoundQuery struct {
	Assets []types.Asset
	NoSwap bool
}

type SimulateCompoundResponse struct {
	LPAmount sdkmath.Int `json:"lp_amount"`
}
