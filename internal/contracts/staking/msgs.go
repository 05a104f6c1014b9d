package staking

import (
	sdkmath "cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/elys-network/ampfarm/internal/types"
)

type InstantiateMsg struct {
	Admin       types.Addr // may accrue rewards
	RewardDenom string
}

// DepositHook is sent as the Msg of a cw20 Send. The sending token is the staked LP token.
type DepositHook struct{}

type Withdraw struct {
	LPToken types.Addr
	Amount  sdkmath.Int
}

// ClaimRewards pays out every pending reward of the caller for LPToken.
type ClaimRewards struct {
	LPToken types.Addr
}

// AccrueRewards credits the attached reward coins to Staker's position in LPToken.
type AccrueRewards struct {
	LPToken types.Addr
	Staker  types.Addr
}

type DepositQuery struct {
	LPToken types.Addr
	User    types.Addr
}

type PendingRewardsQuery struct {
	LPToken types.Addr
	User    types.Addr
}

type ConfigQuery struct{}

type ConfigResponse struct {
	Admin       types.Addr `json:"admin"`
	RewardDenom string     `json:"reward_denom"`
}

type DepositResponse struct {
	Amount sdkmath.Int `json:"amount"`
}

type PendingRewardsResponse struct {
	Rewards sdk.Coins `json:"rewards"`
}
