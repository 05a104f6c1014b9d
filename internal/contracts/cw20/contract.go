// Package cw20 is a fungible token contract: balances, a single minter, allowances and
// send-with-hook. It backs both the pooled LP asset and the vault's bond share token.
package cw20

import (
	"context"
	"errors"

	"cosmossdk.io/collections"
	errorsmod "cosmossdk.io/errors"
	sdkmath "cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/elys-network/ampfarm/internal/host"
	"github.com/elys-network/ampfarm/internal/types"
	"github.com/elys-network/ampfarm/internal/utils"
)

type allowance struct {
	Amount          sdkmath.Int `json:"amount"`
	ExpiresAtHeight int64       `json:"expires_at_height,omitempty"`
}

func (a allowance) expired(height int64) bool {
	return a.ExpiresAtHeight != 0 && height >= a.ExpiresAtHeight
}

var (
	tokenInfoPrefix  = collections.NewPrefix(0)
	balancesPrefix   = collections.NewPrefix(1)
	allowancesPrefix = collections.NewPrefix(2)
)

type Contract struct {
	tokenInfo  collections.Item[TokenInfoResponse]
	balances   collections.Map[types.Addr, sdkmath.Int]
	allowances collections.Map[collections.Pair[types.Addr, types.Addr], allowance]
}

func New() *Contract {
	sb := host.NewSchemaBuilder()
	c := &Contract{
		tokenInfo: collections.NewItem(sb, tokenInfoPrefix, "token_info", host.JSONValue[TokenInfoResponse]()),
		balances:  collections.NewMap(sb, balancesPrefix, "balances", host.AddrKey, sdk.IntValue),
		allowances: collections.NewMap(sb, allowancesPrefix, "allowances",
			collections.PairKeyCodec(host.AddrKey, host.AddrKey), host.JSONValue[allowance]()),
	}
	host.MustBuild(sb)
	return c
}

func (c *Contract) Instantiate(ctx context.Context, deps host.Deps, _ host.Env, _ host.MessageInfo, msg any) (*host.Response, error) {
	m, ok := msg.(InstantiateMsg)
	if !ok {
		return nil, errorsmod.Wrapf(types.ErrUnknownMessage, "cw20 instantiate: %T", msg)
	}
	if m.Symbol == "" {
		return nil, errorsmod.Wrap(types.ErrInvalidRequest, "symbol is required")
	}

	info := TokenInfoResponse{Name: m.Name, Symbol: m.Symbol, Decimals: m.Decimals, TotalSupply: sdkmath.ZeroInt()}
	if !m.Minter.Empty() {
		minter, err := deps.AddrValidate(m.Minter.String())
		if err != nil {
			return nil, err
		}
		info.Minter = minter
	}

	for _, b := range m.InitialBalances {
		addr, err := deps.AddrValidate(b.Address.String())
		if err != nil {
			return nil, err
		}
		if err := c.credit(ctx, addr, b.Amount); err != nil {
			return nil, err
		}
		if info.TotalSupply, err = utils.CheckedAdd(info.TotalSupply, b.Amount); err != nil {
			return nil, err
		}
	}
	if err := c.tokenInfo.Set(ctx, info); err != nil {
		return nil, err
	}
	return host.NewResponse().AddAttribute("action", "instantiate_token").AddAttribute("symbol", m.Symbol), nil
}

func (c *Contract) Execute(ctx context.Context, deps host.Deps, env host.Env, info host.MessageInfo, msg any) (*host.Response, error) {
	if !info.Funds.Empty() {
		return nil, errorsmod.Wrap(types.ErrInvalidFunds, "token contract does not accept native funds")
	}

	switch m := msg.(type) {
	case Transfer:
		return c.transfer(ctx, deps, info.Sender, m.Recipient, m.Amount, "transfer")
	case TransferFrom:
		if err := requirePositive(m.Amount); err != nil {
			return nil, err
		}
		if err := c.spendAllowance(ctx, env.BlockHeight, m.Owner, info.Sender, m.Amount); err != nil {
			return nil, err
		}
		res, err := c.transfer(ctx, deps, m.Owner, m.Recipient, m.Amount, "transfer_from")
		if err != nil {
			return nil, err
		}
		return res.AddAttribute("by", info.Sender), nil
	case Send:
		res, err := c.transfer(ctx, deps, info.Sender, m.Contract, m.Amount, "send")
		if err != nil {
			return nil, err
		}
		hook := ReceiveMsg{Sender: info.Sender, Amount: m.Amount, Msg: m.Msg}
		return res.AddMessages(host.WasmMsg{Contract: m.Contract, Msg: hook}), nil
	case Mint:
		return c.mint(ctx, deps, info.Sender, m)
	case Burn:
		return c.burn(ctx, info.Sender, m.Amount)
	case IncreaseAllowance:
		return c.increaseAllowance(ctx, deps, env, info.Sender, m)
	default:
		return nil, errorsmod.Wrapf(types.ErrUnknownMessage, "cw20: %T", msg)
	}
}

func (c *Contract) Query(ctx context.Context, _ host.Deps, env host.Env, req any) (any, error) {
	switch q := req.(type) {
	case BalanceQuery:
		bal, err := c.loadBalance(ctx, q.Address)
		if err != nil {
			return nil, err
		}
		return BalanceResponse{Balance: bal}, nil
	case TokenInfoQuery:
		return c.loadTokenInfo(ctx)
	case AllowanceQuery:
		a, err := c.loadAllowance(ctx, q.Owner, q.Spender)
		if err != nil {
			return nil, err
		}
		if a.expired(env.BlockHeight) {
			a.Amount = sdkmath.ZeroInt()
		}
		return AllowanceResponse{Allowance: a.Amount, ExpiresAtHeight: a.ExpiresAtHeight}, nil
	default:
		return nil, errorsmod.Wrapf(types.ErrUnknownMessage, "cw20 query: %T", req)
	}
}

func (c *Contract) transfer(ctx context.Context, deps host.Deps, from, to types.Addr, amount sdkmath.Int, action string) (*host.Response, error) {
	if err := requirePositive(amount); err != nil {
		return nil, err
	}
	recipient, err := deps.AddrValidate(to.String())
	if err != nil {
		return nil, err
	}
	if err := c.debit(ctx, from, amount); err != nil {
		return nil, err
	}
	if err := c.credit(ctx, recipient, amount); err != nil {
		return nil, err
	}
	return host.NewResponse().
		AddAttribute("action", action).
		AddAttribute("from", from).
		AddAttribute("to", recipient).
		AddAttribute("amount", amount), nil
}

func (c *Contract) mint(ctx context.Context, deps host.Deps, sender types.Addr, m Mint) (*host.Response, error) {
	if err := requirePositive(m.Amount); err != nil {
		return nil, err
	}
	info, err := c.loadTokenInfo(ctx)
	if err != nil {
		return nil, err
	}
	if info.Minter.Empty() || info.Minter != sender {
		return nil, errorsmod.Wrapf(types.ErrUnauthorized, "%s is not the minter of %s", sender, info.Symbol)
	}
	recipient, err := deps.AddrValidate(m.Recipient.String())
	if err != nil {
		return nil, err
	}
	if info.TotalSupply, err = utils.CheckedAdd(info.TotalSupply, m.Amount); err != nil {
		return nil, err
	}
	if err := c.credit(ctx, recipient, m.Amount); err != nil {
		return nil, err
	}
	if err := c.tokenInfo.Set(ctx, info); err != nil {
		return nil, err
	}
	return host.NewResponse().
		AddAttribute("action", "mint").
		AddAttribute("to", recipient).
		AddAttribute("amount", m.Amount), nil
}

func (c *Contract) burn(ctx context.Context, sender types.Addr, amount sdkmath.Int) (*host.Response, error) {
	if err := requirePositive(amount); err != nil {
		return nil, err
	}
	info, err := c.loadTokenInfo(ctx)
	if err != nil {
		return nil, err
	}
	if err := c.debit(ctx, sender, amount); err != nil {
		return nil, err
	}
	if info.TotalSupply, err = utils.CheckedSub(info.TotalSupply, amount); err != nil {
		return nil, err
	}
	if err := c.tokenInfo.Set(ctx, info); err != nil {
		return nil, err
	}
	return host.NewResponse().
		AddAttribute("action", "burn").
		AddAttribute("from", sender).
		AddAttribute("amount", amount), nil
}

func (c *Contract) increaseAllowance(ctx context.Context, deps host.Deps, env host.Env, owner types.Addr, m IncreaseAllowance) (*host.Response, error) {
	if err := requirePositive(m.Amount); err != nil {
		return nil, err
	}
	spender, err := deps.AddrValidate(m.Spender.String())
	if err != nil {
		return nil, err
	}
	if spender == owner {
		return nil, errorsmod.Wrap(types.ErrInvalidRequest, "cannot set allowance to own account")
	}
	if m.ExpiresAtHeight != 0 && m.ExpiresAtHeight <= env.BlockHeight {
		return nil, errorsmod.Wrapf(types.ErrInvalidRequest, "allowance expiry %d is not after height %d", m.ExpiresAtHeight, env.BlockHeight)
	}

	a, err := c.loadAllowance(ctx, owner, spender)
	if err != nil {
		return nil, err
	}
	if a.expired(env.BlockHeight) {
		a.Amount = sdkmath.ZeroInt()
	}
	if a.Amount, err = utils.CheckedAdd(a.Amount, m.Amount); err != nil {
		return nil, err
	}
	a.ExpiresAtHeight = m.ExpiresAtHeight
	if err := c.allowances.Set(ctx, collections.Join(owner, spender), a); err != nil {
		return nil, err
	}
	return host.NewResponse().
		AddAttribute("action", "increase_allowance").
		AddAttribute("owner", owner).
		AddAttribute("spender", spender).
		AddAttribute("amount", m.Amount), nil
}

func requirePositive(amount sdkmath.Int) error {
	if err := utils.CheckUint128(amount); err != nil {
		return err
	}
	if amount.IsZero() {
		return errorsmod.Wrap(types.ErrInvalidRequest, "invalid zero amount")
	}
	return nil
}

func (c *Contract) loadTokenInfo(ctx context.Context) (TokenInfoResponse, error) {
	info, err := c.tokenInfo.Get(ctx)
	if errors.Is(err, collections.ErrNotFound) {
		return TokenInfoResponse{}, errorsmod.Wrap(types.ErrNotFound, "token info")
	}
	return info, err
}

func (c *Contract) loadBalance(ctx context.Context, addr types.Addr) (sdkmath.Int, error) {
	return host.GetOr(ctx, c.balances, addr, sdkmath.ZeroInt())
}

func (c *Contract) credit(ctx context.Context, addr types.Addr, amount sdkmath.Int) error {
	bal, err := c.loadBalance(ctx, addr)
	if err != nil {
		return err
	}
	if bal, err = utils.CheckedAdd(bal, amount); err != nil {
		return err
	}
	return c.balances.Set(ctx, addr, bal)
}

func (c *Contract) debit(ctx context.Context, addr types.Addr, amount sdkmath.Int) error {
	bal, err := c.loadBalance(ctx, addr)
	if err != nil {
		return err
	}
	if bal.LT(amount) {
		return errorsmod.Wrapf(types.ErrInsufficientFunds, "%s holds %s, needs %s", addr, bal, amount)
	}
	return c.balances.Set(ctx, addr, bal.Sub(amount))
}

func (c *Contract) loadAllowance(ctx context.Context, owner, spender types.Addr) (allowance, error) {
	return host.GetOr(ctx, c.allowances, collections.Join(owner, spender), allowance{Amount: sdkmath.ZeroInt()})
}

func (c *Contract) spendAllowance(ctx context.Context, height int64, owner, spender types.Addr, amount sdkmath.Int) error {
	a, err := c.loadAllowance(ctx, owner, spender)
	if err != nil {
		return err
	}
	if a.expired(height) {
		return errorsmod.Wrapf(types.ErrUnauthorized, "allowance of %s from %s expired at height %d", spender, owner, a.ExpiresAtHeight)
	}
	if a.Amount.LT(amount) {
		return errorsmod.Wrapf(types.ErrUnauthorized, "allowance of %s from %s is %s, needs %s", spender, owner, a.Amount, amount)
	}
	a.Amount = a.Amount.Sub(amount)
	key := collections.Join(owner, spender)
	if a.Amount.IsZero() {
		return c.allowances.Remove(ctx, key)
	}
	return c.allowances.Set(ctx, key, a)
}
