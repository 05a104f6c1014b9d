package vault

import (
	"context"

	errorsmod "cosmossdk.io/errors"
	sdkmath "cosmossdk.io/math"

	"github.com/elys-network/ampfarm/internal/adapters"
	"github.com/elys-network/ampfarm/internal/host"
	"github.com/elys-network/ampfarm/internal/ledger"
	"github.com/elys-network/ampfarm/internal/types"
	"github.com/elys-network/ampfarm/internal/utils"
)

func (c *Contract) Query(ctx context.Context, deps host.Deps, env host.Env, req any) (any, error) {
	switch q := req.(type) {
	case ConfigQuery:
		return c.store.LoadConfig(ctx)
	case StateQuery:
		st, totalLP, err := c.loadTotals(ctx, deps, env)
		if err != nil {
			return nil, err
		}
		return StateResponse{
			TotalBondShare: st.TotalBondShare,
			TotalLPDeposit: totalLP,
			ExchangeRate:   ledger.ExchangeRate(totalLP, st.TotalBondShare),
			AmpLPToken:     st.AmpLPToken,
		}, nil
	case UserInfoQuery:
		addr, err := deps.AddrValidate(q.Address)
		if err != nil {
			return nil, err
		}
		st, totalLP, err := c.loadTotals(ctx, deps, env)
		if err != nil {
			return nil, err
		}
		share, err := adapters.Token{Addr: st.AmpLPToken}.QueryBalance(ctx, deps.Querier, addr)
		if err != nil {
			return nil, err
		}
		lpAmount := sdkmath.ZeroInt()
		if share.IsPositive() {
			if lpAmount, err = ledger.LPForShares(share, totalLP, st.TotalBondShare); err != nil {
				return nil, err
			}
		}
		return UserInfoResponse{Address: addr, BondShare: share, LPAmount: lpAmount}, nil
	case SimulateBondQuery:
		if err := requirePositive(q.LPAmount); err != nil {
			return nil, err
		}
		st, totalLP, err := c.loadTotals(ctx, deps, env)
		if err != nil {
			return nil, err
		}
		share, err := ledger.SharesForDeposit(q.LPAmount, totalLP, st.TotalBondShare)
		if err != nil {
			return nil, err
		}
		return SimulateBondResponse{BondShare: share}, nil
	case SimulateBondAssetsQuery:
		col, err := loadCollaborators(ctx, c.store)
		if err != nil {
			return nil, err
		}
		lpAmount, err := col.compound.QuerySimulate(ctx, deps.Querier, q.Assets, q.NoSwap)
		if err != nil {
			return nil, err
		}
		if err := requirePositive(lpAmount); err != nil {
			return nil, err
		}
		st, totalLP, err := c.loadTotals(ctx, deps, env)
		if err != nil {
			return nil, err
		}
		share, err := ledger.SharesForDeposit(lpAmount, totalLP, st.TotalBondShare)
		if err != nil {
			return nil, err
		}
		return SimulateBondAssetsResponse{LPAmount: lpAmount, BondShare: share}, nil
	case SimulateUnbondQuery:
		if err := requirePositive(q.BondShare); err != nil {
			return nil, err
		}
		st, totalLP, err := c.loadTotals(ctx, deps, env)
		if err != nil {
			return nil, err
		}
		if q.BondShare.GT(st.TotalBondShare) {
			return nil, errorsmod.Wrapf(types.ErrArithmeticUnderflow, "%s shares exceed the %s issued", q.BondShare, st.TotalBondShare)
		}
		lpAmount, err := ledger.LPForShares(q.BondShare, totalLP, st.TotalBondShare)
		if err != nil {
			return nil, err
		}
		return SimulateUnbondResponse{LPAmount: lpAmount}, nil
	default:
		return nil, errorsmod.Wrapf(types.ErrUnknownMessage, "vault query: %T", req)
	}
}

func (c *Contract) loadTotals(ctx context.Context, deps host.Deps, env host.Env) (types.VaultState, sdkmath.Int, error) {
	st, err := c.store.LoadState(ctx)
	if err != nil {
		return types.VaultState{}, sdkmath.Int{}, err
	}
	col, err := loadCollaborators(ctx, c.store)
	if err != nil {
		return types.VaultState{}, sdkmath.Int{}, err
	}
	totalLP, err := col.staking.QueryDeposit(ctx, deps.Querier, col.cfg.LPToken, env.Contract)
	if err != nil {
		return types.VaultState{}, sdkmath.Int{}, err
	}
	return st, totalLP, nil
}

func requirePositive(amount sdkmath.Int) error {
	if err := utils.CheckUint128(amount); err != nil {
		return err
	}
	if amount.IsZero() {
		return errorsmod.Wrap(types.ErrInvalidRequest, "amount must be positive")
	}
	return nil
}
