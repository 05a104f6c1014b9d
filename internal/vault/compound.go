package vault

import (
	"context"

	errorsmod "cosmossdk.io/errors"

	"github.com/elys-network/ampfarm/internal/contracts/compounder"
	"github.com/elys-network/ampfarm/internal/host"
	"github.com/elys-network/ampfarm/internal/types"
)

// compound claims the custodian rewards, has them converted to LP and schedules Stake.
// No shares are minted, so every holder's LP per share rises.
func (c *Contract) compound(ctx context.Context, deps host.Deps, env host.Env, info host.MessageInfo, m Compound) (*host.Response, error) {
	col, err := loadCollaborators(ctx, c.store)
	if err != nil {
		return nil, err
	}
	if info.Sender != col.cfg.Controller {
		return nil, errorsmod.Wrapf(types.ErrUnauthorized, "only the controller may compound")
	}
	if !info.Funds.Empty() {
		return nil, errorsmod.Wrap(types.ErrInvalidFunds, "compound takes no funds")
	}
	if err := compounder.ValidateSlippageTolerance(m.SlippageTolerance); err != nil {
		return nil, err
	}
	if err := validateMinimum(m.MinimumReceive); err != nil {
		return nil, err
	}

	st, err := c.store.LoadState(ctx)
	if err != nil {
		return nil, err
	}
	if st.TotalBondShare.IsZero() {
		return nil, errorsmod.Wrap(types.ErrEmptyVault, "no shares to compound for")
	}

	rewards, err := col.staking.QueryPendingRewards(ctx, deps.Querier, col.cfg.LPToken, env.Contract)
	if err != nil {
		return nil, err
	}
	if rewards.Empty() {
		return nil, errorsmod.Wrapf(types.ErrNoRewards, "nothing pending for %s", env.Contract)
	}
	assets := make([]types.Asset, 0, len(rewards))
	for _, coin := range rewards {
		assets = append(assets, types.NativeAsset(coin.Denom, coin.Amount))
	}

	prevBalance, err := col.lpToken.QueryBalance(ctx, deps.Querier, env.Contract)
	if err != nil {
		return nil, err
	}

	c.logger.Debug().
		Str("tx_id", env.TxID).
		Str("rewards", rewards.String()).
		Str("prev_balance", prevBalance.String()).
		Msg("Compounding rewards")

	return host.NewResponse().
		AddMessages(
			col.staking.ClaimRewards(col.cfg.LPToken),
			col.compound.Compound(assets, rewards, false, m.SlippageTolerance, env.Contract),
			host.SelfCallback(env, Stake{PrevBalance: prevBalance, MinimumReceive: m.MinimumReceive}),
		).
		AddAttribute("action", "compound").
		AddAttribute("rewards", rewards), nil
}

// stake deposits the LP produced by compound into the custodian.
func (c *Contract) stake(ctx context.Context, deps host.Deps, env host.Env, m Stake) (*host.Response, error) {
	col, err := loadCollaborators(ctx, c.store)
	if err != nil {
		return nil, err
	}
	amount, err := c.produced(ctx, deps, env, col, m.PrevBalance, m.MinimumReceive)
	if err != nil {
		return nil, err
	}

	res := host.NewResponse().
		AddAttribute("action", "stake").
		AddAttribute("amount", amount)
	if amount.IsZero() {
		return res, nil
	}
	return res.AddMessages(col.staking.Deposit(col.cfg.LPToken, amount)), nil
}
