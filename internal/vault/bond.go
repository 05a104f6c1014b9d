package vault

import (
	"context"

	errorsmod "cosmossdk.io/errors"
	sdkmath "cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/elys-network/ampfarm/internal/adapters"
	"github.com/elys-network/ampfarm/internal/contracts/compounder"
	"github.com/elys-network/ampfarm/internal/host"
	"github.com/elys-network/ampfarm/internal/ledger"
	"github.com/elys-network/ampfarm/internal/types"
	"github.com/elys-network/ampfarm/internal/utils"
)

// bondAssets takes custody of the caller's assets, forwards them to the compounding engine
// and schedules BondTo, which prices the deposit from the LP balance delta.
func (c *Contract) bondAssets(ctx context.Context, deps host.Deps, env host.Env, info host.MessageInfo, m BondAssets) (*host.Response, error) {
	col, err := loadCollaborators(ctx, c.store)
	if err != nil {
		return nil, err
	}
	receiver := info.Sender
	if m.Receiver != "" {
		if receiver, err = deps.AddrValidate(m.Receiver); err != nil {
			return nil, err
		}
	}
	if err := compounder.ValidateSlippageTolerance(m.SlippageTolerance); err != nil {
		return nil, err
	}
	if err := validateMinimum(m.MinimumReceive); err != nil {
		return nil, err
	}

	custody, err := depositAssets(env, info, col, m.Assets)
	if err != nil {
		return nil, err
	}

	prevBalance, err := col.lpToken.QueryBalance(ctx, deps.Querier, env.Contract)
	if err != nil {
		return nil, err
	}

	c.logger.Debug().
		Str("tx_id", env.TxID).
		Str("receiver", receiver.String()).
		Str("prev_balance", prevBalance.String()).
		Int("assets", len(custody.assets)).
		Msg("Bonding assets, awaiting compound")

	callback := BondTo{To: receiver, PrevBalance: prevBalance, MinimumReceive: m.MinimumReceive}
	return host.NewResponse().
		AddMessages(custody.messages...).
		AddMessages(
			col.compound.Compound(custody.assets, custody.funds, m.NoSwap, m.SlippageTolerance, env.Contract),
			host.SelfCallback(env, callback),
		).
		AddAttribute("action", "bond_assets").
		AddAttribute("receiver", receiver).
		AddAttribute("prev_balance", prevBalance), nil
}

type custody struct {
	assets   []types.Asset
	funds    sdk.Coins
	messages []host.CosmosMsg
}

// depositAssets checks the attached funds against the native assets and emits the
// pull and allowance messages for token assets. Zero amounts are dropped.
func depositAssets(env host.Env, info host.MessageInfo, col collaborators, assets []types.Asset) (custody, error) {
	var out custody
	out.funds = sdk.NewCoins()

	for i, asset := range assets {
		if err := asset.Validate(); err != nil {
			return custody{}, err
		}
		if err := utils.CheckUint128(asset.Amount); err != nil {
			return custody{}, err
		}
		for _, prev := range assets[:i] {
			if prev.Info.Equal(asset.Info) {
				return custody{}, errorsmod.Wrapf(types.ErrInvalidAsset, "duplicate asset %s", asset.Info)
			}
		}

		if asset.Info.IsNative() {
			sent := info.Funds.AmountOf(asset.Info.NativeDenom)
			if !sent.Equal(asset.Amount) {
				return custody{}, errorsmod.Wrapf(types.ErrInvalidFunds,
					"native token balance mismatch between the argument (%s) and the transferred (%s%s)", asset, sent, asset.Info.NativeDenom)
			}
			if asset.Amount.IsZero() {
				continue
			}
			out.funds = out.funds.Add(sdk.NewCoin(asset.Info.NativeDenom, asset.Amount))
			out.assets = append(out.assets, asset)
			continue
		}

		if asset.Amount.IsZero() {
			continue
		}
		token := adapters.Token{Addr: asset.Info.Token}
		out.messages = append(out.messages,
			token.TransferFrom(info.Sender, env.Contract, asset.Amount),
			token.IncreaseAllowance(col.cfg.CompoundProxy, asset.Amount, env.BlockHeight+1),
		)
		out.assets = append(out.assets, asset)
	}

	for _, coin := range info.Funds {
		if !out.funds.AmountOf(coin.Denom).Equal(coin.Amount) {
			return custody{}, errorsmod.Wrapf(types.ErrInvalidFunds, "funds in %s are not declared as an asset", coin.Denom)
		}
	}
	if len(out.assets) == 0 {
		return custody{}, errorsmod.Wrap(types.ErrInvalidRequest, "no assets to bond")
	}
	return out, nil
}

// bondTo runs after the compounding engine: the LP produced is whatever the vault gained since the snapshot.
func (c *Contract) bondTo(ctx context.Context, deps host.Deps, env host.Env, m BondTo) (*host.Response, error) {
	col, err := loadCollaborators(ctx, c.store)
	if err != nil {
		return nil, err
	}
	produced, err := c.produced(ctx, deps, env, col, m.PrevBalance, m.MinimumReceive)
	if err != nil {
		return nil, err
	}
	return c.bondInternal(ctx, deps, env, col, m.To, produced)
}

// bond handles LP pushed directly by the LP token contract.
func (c *Contract) bond(ctx context.Context, deps host.Deps, env host.Env, info host.MessageInfo, stakerAddr string, amount sdkmath.Int) (*host.Response, error) {
	staker, err := deps.AddrValidate(stakerAddr)
	if err != nil {
		return nil, err
	}
	col, err := loadCollaborators(ctx, c.store)
	if err != nil {
		return nil, err
	}
	if info.Sender != col.cfg.LPToken {
		return nil, errorsmod.Wrapf(types.ErrUnauthorized, "bond hook accepted only from %s", col.cfg.LPToken)
	}
	return c.bondInternal(ctx, deps, env, col, staker, amount)
}

func (c *Contract) bondInternal(ctx context.Context, deps host.Deps, env host.Env, col collaborators, staker types.Addr, amount sdkmath.Int) (*host.Response, error) {
	if err := utils.CheckUint128(amount); err != nil {
		return nil, err
	}
	if amount.IsZero() {
		return nil, errorsmod.Wrap(types.ErrInvalidRequest, "nothing to bond")
	}

	lpBalance, err := col.staking.QueryDeposit(ctx, deps.Querier, col.cfg.LPToken, env.Contract)
	if err != nil {
		return nil, err
	}

	// TODO: claim pending rewards before the share ratio changes so a bond landing between
	// accrual and Compound is not priced against the pre-reward LP balance.
	var share sdkmath.Int
	st, err := c.store.UpdateState(ctx, func(st *types.VaultState) error {
		var err error
		share, err = ledger.SharesForDeposit(amount, lpBalance, st.TotalBondShare)
		if err != nil {
			return err
		}
		if share.IsZero() {
			return errorsmod.Wrapf(types.ErrInvalidRequest, "bond of %s LP is worth zero shares", amount)
		}
		st.TotalBondShare, err = utils.CheckedAdd(st.TotalBondShare, share)
		return err
	})
	if err != nil {
		return nil, err
	}

	c.logger.Debug().
		Str("tx_id", env.TxID).
		Str("staker", staker.String()).
		Str("amount", amount.String()).
		Str("share", share.String()).
		Str("total_bond_share", st.TotalBondShare.String()).
		Msg("Bonded")

	ampToken := adapters.Token{Addr: st.AmpLPToken}
	return host.NewResponse().
		AddMessages(
			ampToken.Mint(staker, share),
			col.staking.Deposit(col.cfg.LPToken, amount),
		).
		AddAttribute("action", "bond").
		AddAttribute("staker_addr", staker).
		AddAttribute("amount", amount).
		AddAttribute("bond_amount", share), nil
}

// unbond redeems shares sent through the share token for their LP.
func (c *Contract) unbond(ctx context.Context, deps host.Deps, env host.Env, info host.MessageInfo, senderAddr string, amount sdkmath.Int) (*host.Response, error) {
	staker, err := deps.AddrValidate(senderAddr)
	if err != nil {
		return nil, err
	}
	st, err := c.store.LoadState(ctx)
	if err != nil {
		return nil, err
	}
	if info.Sender != st.AmpLPToken {
		return nil, errorsmod.Wrapf(types.ErrUnauthorized, "unbond hook accepted only from %s", st.AmpLPToken)
	}
	if err := utils.CheckUint128(amount); err != nil {
		return nil, err
	}
	if amount.IsZero() {
		return nil, errorsmod.Wrap(types.ErrInvalidRequest, "nothing to unbond")
	}

	col, err := loadCollaborators(ctx, c.store)
	if err != nil {
		return nil, err
	}
	lpBalance, err := col.staking.QueryDeposit(ctx, deps.Querier, col.cfg.LPToken, env.Contract)
	if err != nil {
		return nil, err
	}

	lpAmount, err := ledger.LPForShares(amount, lpBalance, st.TotalBondShare)
	if err != nil {
		return nil, err
	}
	if st.TotalBondShare, err = utils.CheckedSub(st.TotalBondShare, amount); err != nil {
		return nil, err
	}
	if lpAmount.GT(lpBalance) {
		return nil, errorsmod.Wrapf(types.ErrInsufficientCustodianBalance, "redeeming %s LP from a deposit of %s", lpAmount, lpBalance)
	}
	if lpAmount.IsZero() {
		return nil, errorsmod.Wrapf(types.ErrInvalidRequest, "%s shares redeem zero LP", amount)
	}
	if err := c.store.SaveState(ctx, st); err != nil {
		return nil, err
	}

	c.logger.Debug().
		Str("tx_id", env.TxID).
		Str("staker", staker.String()).
		Str("share", amount.String()).
		Str("lp_amount", lpAmount.String()).
		Str("total_bond_share", st.TotalBondShare.String()).
		Msg("Unbonded")

	return host.NewResponse().
		AddMessages(
			adapters.Token{Addr: st.AmpLPToken}.Burn(amount),
			col.staking.Withdraw(col.cfg.LPToken, lpAmount),
			col.lpToken.Transfer(staker, lpAmount),
		).
		AddAttribute("action", "unbond").
		AddAttribute("staker_addr", staker).
		AddAttribute("amount", lpAmount).
		AddAttribute("bond_amount", amount), nil
}

// produced measures the LP gained since prevBalance and enforces the caller's floor.
func (c *Contract) produced(ctx context.Context, deps host.Deps, env host.Env, col collaborators, prevBalance sdkmath.Int, minimum *sdkmath.Int) (sdkmath.Int, error) {
	balance, err := col.lpToken.QueryBalance(ctx, deps.Querier, env.Contract)
	if err != nil {
		return sdkmath.Int{}, err
	}
	amount, err := utils.CheckedSub(balance, prevBalance)
	if err != nil {
		return sdkmath.Int{}, err
	}
	if minimum != nil && amount.LT(*minimum) {
		return sdkmath.Int{}, errorsmod.Wrapf(types.ErrAssertionMinimumReceive,
			"minimum receive amount %s, got %s", *minimum, amount)
	}
	c.logger.Debug().
		Str("tx_id", env.TxID).
		Str("prev_balance", prevBalance.String()).
		Str("balance", balance.String()).
		Str("produced", amount.String()).
		Msg("Measured LP delta")
	return amount, nil
}

func validateMinimum(minimum *sdkmath.Int) error {
	if minimum == nil {
		return nil
	}
	return utils.CheckUint128(*minimum)
}
