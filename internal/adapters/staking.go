package adapters

import (
	"context"

	sdkmath "cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/elys-network/ampfarm/internal/contracts/staking"
	"github.com/elys-network/ampfarm/internal/host"
	"github.com/elys-network/ampfarm/internal/types"
)

// StakingContract addresses the LP custodian.
type StakingContract struct {
	Addr types.Addr
}

// Deposit stakes amount of lpToken held by the emitting contract.
func (s StakingContract) Deposit(lpToken types.Addr, amount sdkmath.Int) host.WasmMsg {
	return Token{Addr: lpToken}.Send(s.Addr, amount, staking.DepositHook{})
}

func (s StakingContract) Withdraw(lpToken types.Addr, amount sdkmath.Int) host.WasmMsg {
	return host.WasmMsg{Contract: s.Addr, Msg: staking.Withdraw{LPToken: lpToken, Amount: amount}}
}

func (s StakingContract) ClaimRewards(lpToken types.Addr) host.WasmMsg {
	return host.WasmMsg{Contract: s.Addr, Msg: staking.ClaimRewards{LPToken: lpToken}}
}

func (s StakingContract) QueryDeposit(ctx context.Context, q host.Querier, lpToken, user types.Addr) (sdkmath.Int, error) {
	res, err := host.QueryWasmAs[staking.DepositResponse](ctx, q, s.Addr, staking.DepositQuery{LPToken: lpToken, User: user})
	if err != nil {
		return sdkmath.Int{}, err
	}
	return res.Amount, nil
}

func (s StakingContract) QueryPendingRewards(ctx context.Context, q host.Querier, lpToken, user types.Addr) (sdk.Coins, error) {
	res, err := host.QueryWasmAs[staking.PendingRewardsResponse](ctx, q, s.Addr, staking.PendingRewardsQuery{LPToken: lpToken, User: user})
	if err != nil {
		return nil, err
	}
	return res.Rewards, nil
}
