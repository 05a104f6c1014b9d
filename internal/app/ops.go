package app

import (
	"context"

	errorsmod "cosmossdk.io/errors"
	sdkmath "cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/elys-network/ampfarm/internal/adapters"
	"github.com/elys-network/ampfarm/internal/contracts/compounder"
	"github.com/elys-network/ampfarm/internal/contracts/staking"
	"github.com/elys-network/ampfarm/internal/host"
	"github.com/elys-network/ampfarm/internal/types"
)

// Faucet credits native coins to addr.
func (a *App) Faucet(ctx context.Context, addr types.Addr, coins sdk.Coins) error {
	return a.Host.Mint(ctx, addr, coins)
}

// ProvideLiquidity turns native coins held by user into LP tokens held by user.
func (a *App) ProvideLiquidity(ctx context.Context, user types.Addr, coins sdk.Coins, noSwap bool) (*host.Result, error) {
	assets := make([]types.Asset, 0, len(coins))
	for _, coin := range coins {
		assets = append(assets, types.NativeAsset(coin.Denom, coin.Amount))
	}
	msg := compounder.Compound{Assets: assets, NoSwap: noSwap}
	return a.Host.Execute(ctx, user, a.Compounder, msg, coins)
}

// AccrueRewards mints reward coins and credits them to the vault's position at the custodian.
func (a *App) AccrueRewards(ctx context.Context, amount sdkmath.Int) (*host.Result, error) {
	if !amount.IsPositive() {
		return nil, errorsmod.Wrap(types.ErrInvalidRequest, "reward amount must be positive")
	}
	coins := sdk.NewCoins(sdk.NewCoin(a.cfg.RewardDenom, amount))
	if err := a.Host.Mint(ctx, a.Admin, coins); err != nil {
		return nil, err
	}
	msg := staking.AccrueRewards{LPToken: a.LPToken, Staker: a.VaultAddr}
	return a.Host.Execute(ctx, a.Admin, a.Staking, msg, coins)
}

// LPBalance returns the committed LP token balance of addr.
func (a *App) LPBalance(ctx context.Context, addr types.Addr) (sdkmath.Int, error) {
	return a.tokenBalance(ctx, a.LPToken, addr)
}

// ShareBalance returns the committed bond share balance of addr.
func (a *App) ShareBalance(ctx context.Context, addr types.Addr) (sdkmath.Int, error) {
	return a.tokenBalance(ctx, a.AmpLPToken, addr)
}

// CustodiedLP returns the LP the custodian holds for the vault.
func (a *App) CustodiedLP(ctx context.Context) (sdkmath.Int, error) {
	return adapters.StakingContract{Addr: a.Staking}.QueryDeposit(ctx, a.Host, a.LPToken, a.VaultAddr)
}

func (a *App) tokenBalance(ctx context.Context, token, addr types.Addr) (sdkmath.Int, error) {
	return adapters.Token{Addr: token}.QueryBalance(ctx, a.Host, addr)
}
