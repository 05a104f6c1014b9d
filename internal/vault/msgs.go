package vault

import (
	sdkmath "cosmossdk.io/math"

	"github.com/elys-network/ampfarm/internal/types"
)

// InstantiateMsg carries raw addresses; they are validated before being stored.
// The share token must already exist with the vault as its minter.
type InstantiateMsg struct {
	LPToken         string
	StakingContract string
	CompoundProxy   string
	Controller      string
	AmpLPToken      string
}

// BondAssets deposits component assets (or LP) that the compounding engine turns into LP.
type BondAssets struct {
	Assets            []types.Asset
	MinimumReceive    *sdkmath.Int
	NoSwap            bool
	SlippageTolerance *sdkmath.LegacyDec
	Receiver          string // defaults to the caller
}

// BondHook is the Msg of an LP token Send to the vault.
type BondHook struct {
	StakerAddr string // defaults to the token sender
}

// UnbondHook is the Msg of a share token Send to the vault.
type UnbondHook struct{}

// Compound reinvests the custodian rewards. Controller only.
type Compound struct {
	MinimumReceive    *sdkmath.Int
	SlippageTolerance *sdkmath.LegacyDec
}

// BondTo completes a BondAssets once the compounding engine has produced LP.
type BondTo struct {
	To             types.Addr
	PrevBalance    sdkmath.Int
	MinimumReceive *sdkmath.Int
}

// Stake completes a Compound: the produced LP is deposited without minting shares.
type Stake struct {
	PrevBalance    sdkmath.Int
	MinimumReceive *sdkmath.Int
}

type ConfigQuery struct{}

type StateQuery struct{}

type UserInfoQuery struct {
	Address string
}

type SimulateBondQuery struct {
	LPAmount sdkmath.Int
}

// SimulateBondAssetsQuery prices a BondAssets without executing it.
type SimulateBondAssetsQuery struct {
	Assets []types.Asset
	NoSwap bool
}

type SimulateUnbondQuery struct {
	BondShare sdkmath.Int
}

type StateResponse struct {
	TotalBondShare sdkmath.Int       `json:"total_bond_share"`
	TotalLPDeposit sdkmath.Int       `json:"total_lp_deposit"`
	ExchangeRate   sdkmath.LegacyDec `json:"exchange_rate"`
	AmpLPToken     types.Addr        `json:"amp_lp_token"`
}

type UserInfoResponse struct {
	Address   types.Addr  `json:"address"`
	BondShare sdkmath.Int `json:"bond_share"`
	LPAmount  sdkmath.Int `json:"lp_amount"`
}

type SimulateBondResponse struct {
	BondShare sdkmath.Int `json:"bond_share"`
}

type SimulateBondAssetsResponse struct {
	LPAmount  sdkmath.Int `json:"lp_amount"`
	BondShare sdkmath.Int `json:"bond_share"`
}

type SimulateUnbondResponse struct {
	LPAmount sdkmath.Int `json:"lp_amount"`
}
