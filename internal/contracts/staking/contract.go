// Package staking is the LP custodian. Deposits arrive through the token's Send hook and
// are tracked per (lp token, staker); rewards are credited by the admin and claimed in native coins.
package staking

import (
	"context"
	"errors"

	"cosmossdk.io/collections"
	errorsmod "cosmossdk.io/errors"
	sdkmath "cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/elys-network/ampfarm/internal/contracts/cw20"
	"github.com/elys-network/ampfarm/internal/host"
	"github.com/elys-network/ampfarm/internal/types"
	"github.com/elys-network/ampfarm/internal/utils"
)

var (
	configPrefix   = collections.NewPrefix(0)
	depositsPrefix = collections.NewPrefix(1)
	rewardsPrefix  = collections.NewPrefix(2)
)

// stakeKey is (lp token, staker).
type stakeKey = collections.Pair[types.Addr, types.Addr]

type Contract struct {
	config   collections.Item[ConfigResponse]
	deposits collections.Map[stakeKey, sdkmath.Int]
	rewards  collections.Map[stakeKey, sdk.Coins]
}

func New() *Contract {
	sb := host.NewSchemaBuilder()
	keys := collections.PairKeyCodec(host.AddrKey, host.AddrKey)
	c := &Contract{
		config:   collections.NewItem(sb, configPrefix, "config", host.JSONValue[ConfigResponse]()),
		deposits: collections.NewMap(sb, depositsPrefix, "deposits", keys, sdk.IntValue),
		rewards:  collections.NewMap(sb, rewardsPrefix, "rewards", keys, host.JSONValue[sdk.Coins]()),
	}
	host.MustBuild(sb)
	return c
}

func (c *Contract) Instantiate(ctx context.Context, deps host.Deps, _ host.Env, _ host.MessageInfo, msg any) (*host.Response, error) {
	m, ok := msg.(InstantiateMsg)
	if !ok {
		return nil, errorsmod.Wrapf(types.ErrUnknownMessage, "staking instantiate: %T", msg)
	}
	admin, err := deps.AddrValidate(m.Admin.String())
	if err != nil {
		return nil, err
	}
	if err := sdk.ValidateDenom(m.RewardDenom); err != nil {
		return nil, errorsmod.Wrap(types.ErrInvalidAsset, err.Error())
	}
	cfg := ConfigResponse{Admin: admin, RewardDenom: m.RewardDenom}
	if err := c.config.Set(ctx, cfg); err != nil {
		return nil, err
	}
	return host.NewResponse().AddAttribute("action", "instantiate_staking"), nil
}

func (c *Contract) Execute(ctx context.Context, deps host.Deps, _ host.Env, info host.MessageInfo, msg any) (*host.Response, error) {
	switch m := msg.(type) {
	case cw20.ReceiveMsg:
		if _, ok := m.Msg.(DepositHook); !ok {
			return nil, errorsmod.Wrapf(types.ErrUnknownMessage, "staking receive: %T", m.Msg)
		}
		return c.deposit(ctx, info.Sender, m.Sender, m.Amount)
	case Withdraw:
		return c.withdraw(ctx, info.Sender, m)
	case ClaimRewards:
		return c.claimRewards(ctx, info.Sender, m.LPToken)
	case AccrueRewards:
		return c.accrueRewards(ctx, deps, info, m)
	default:
		return nil, errorsmod.Wrapf(types.ErrUnknownMessage, "staking: %T", msg)
	}
}

func (c *Contract) Query(ctx context.Context, _ host.Deps, _ host.Env, req any) (any, error) {
	switch q := req.(type) {
	case DepositQuery:
		amount, err := c.loadDeposit(ctx, q.LPToken, q.User)
		if err != nil {
			return nil, err
		}
		return DepositResponse{Amount: amount}, nil
	case PendingRewardsQuery:
		rewards, err := c.loadRewards(ctx, q.LPToken, q.User)
		if err != nil {
			return nil, err
		}
		return PendingRewardsResponse{Rewards: rewards}, nil
	case ConfigQuery:
		return c.loadConfig(ctx)
	default:
		return nil, errorsmod.Wrapf(types.ErrUnknownMessage, "staking query: %T", req)
	}
}

func (c *Contract) deposit(ctx context.Context, lpToken, staker types.Addr, amount sdkmath.Int) (*host.Response, error) {
	current, err := c.loadDeposit(ctx, lpToken, staker)
	if err != nil {
		return nil, err
	}
	if current, err = utils.CheckedAdd(current, amount); err != nil {
		return nil, err
	}
	if err := c.deposits.Set(ctx, collections.Join(lpToken, staker), current); err != nil {
		return nil, err
	}
	return host.NewResponse().
		AddAttribute("action", "deposit").
		AddAttribute("lp_token", lpToken).
		AddAttribute("staker", staker).
		AddAttribute("amount", amount), nil
}

func (c *Contract) withdraw(ctx context.Context, staker types.Addr, m Withdraw) (*host.Response, error) {
	if err := utils.CheckUint128(m.Amount); err != nil {
		return nil, err
	}
	if m.Amount.IsZero() {
		return nil, errorsmod.Wrap(types.ErrInvalidRequest, "invalid zero amount")
	}
	current, err := c.loadDeposit(ctx, m.LPToken, staker)
	if err != nil {
		return nil, err
	}
	if current.LT(m.Amount) {
		return nil, errorsmod.Wrapf(types.ErrInsufficientFunds, "%s has %s deposited, wants %s", staker, current, m.Amount)
	}
	if err := c.setDeposit(ctx, m.LPToken, staker, current.Sub(m.Amount)); err != nil {
		return nil, err
	}
	return host.NewResponse().
		AddMessages(host.WasmMsg{Contract: m.LPToken, Msg: cw20.Transfer{Recipient: staker, Amount: m.Amount}}).
		AddAttribute("action", "withdraw").
		AddAttribute("lp_token", m.LPToken).
		AddAttribute("staker", staker).
		AddAttribute("amount", m.Amount), nil
}

func (c *Contract) claimRewards(ctx context.Context, staker, lpToken types.Addr) (*host.Response, error) {
	rewards, err := c.loadRewards(ctx, lpToken, staker)
	if err != nil {
		return nil, err
	}
	res := host.NewResponse().
		AddAttribute("action", "claim_rewards").
		AddAttribute("staker", staker).
		AddAttribute("amount", rewards)
	if rewards.Empty() {
		return res, nil
	}
	if err := c.rewards.Remove(ctx, collections.Join(lpToken, staker)); err != nil {
		return nil, err
	}
	return res.AddMessages(host.BankMsg{To: staker, Amount: rewards}), nil
}

func (c *Contract) accrueRewards(ctx context.Context, deps host.Deps, info host.MessageInfo, m AccrueRewards) (*host.Response, error) {
	cfg, err := c.loadConfig(ctx)
	if err != nil {
		return nil, err
	}
	if info.Sender != cfg.Admin {
		return nil, errorsmod.Wrapf(types.ErrUnauthorized, "only %s may accrue rewards", cfg.Admin)
	}
	if info.Funds.Empty() {
		return nil, errorsmod.Wrap(types.ErrInvalidFunds, "no reward funds attached")
	}
	for _, coin := range info.Funds {
		if coin.Denom != cfg.RewardDenom {
			return nil, errorsmod.Wrapf(types.ErrInvalidFunds, "reward denom must be %s, got %s", cfg.RewardDenom, coin.Denom)
		}
	}
	staker, err := deps.AddrValidate(m.Staker.String())
	if err != nil {
		return nil, err
	}

	rewards, err := c.loadRewards(ctx, m.LPToken, staker)
	if err != nil {
		return nil, err
	}
	rewards = rewards.Add(info.Funds...)
	if err := c.rewards.Set(ctx, collections.Join(m.LPToken, staker), rewards); err != nil {
		return nil, err
	}
	return host.NewResponse().
		AddAttribute("action", "accrue_rewards").
		AddAttribute("staker", staker).
		AddAttribute("amount", info.Funds), nil
}

func (c *Contract) loadConfig(ctx context.Context) (ConfigResponse, error) {
	cfg, err := c.config.Get(ctx)
	if errors.Is(err, collections.ErrNotFound) {
		return ConfigResponse{}, errorsmod.Wrap(types.ErrNotFound, "staking config")
	}
	return cfg, err
}

func (c *Contract) loadDeposit(ctx context.Context, lpToken, user types.Addr) (sdkmath.Int, error) {
	return host.GetOr(ctx, c.deposits, collections.Join(lpToken, user), sdkmath.ZeroInt())
}

func (c *Contract) setDeposit(ctx context.Context, lpToken, user types.Addr, amount sdkmath.Int) error {
	key := collections.Join(lpToken, user)
	if amount.IsZero() {
		return c.deposits.Remove(ctx, key)
	}
	return c.deposits.Set(ctx, key, amount)
}

func (c *Contract) loadRewards(ctx context.Context, lpToken, user types.Addr) (sdk.Coins, error) {
	return host.GetOr(ctx, c.rewards, collections.Join(lpToken, user), sdk.NewCoins())
}
