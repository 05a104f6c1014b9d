package host

import (
	"context"

	"cosmossdk.io/collections"
	errorsmod "cosmossdk.io/errors"
	sdkmath "cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/elys-network/ampfarm/internal/types"
)

// bank keeps native balances keyed by (address, denom). Zero balances are not stored.
type bank struct {
	balances collections.Map[collections.Pair[types.Addr, string], sdkmath.Int]
}

func newBank(sb *collections.SchemaBuilder) bank {
	return bank{
		balances: collections.NewMap(sb, balancesPrefix, "balances",
			collections.PairKeyCodec(AddrKey, collections.StringKey), sdk.IntValue),
	}
}

func (b bank) balance(ctx context.Context, addr types.Addr, denom string) (sdkmath.Int, error) {
	return GetOr(ctx, b.balances, collections.Join(addr, denom), sdkmath.ZeroInt())
}

func (b bank) allBalances(ctx context.Context, addr types.Addr) (sdk.Coins, error) {
	coins := sdk.NewCoins()
	rng := collections.NewPrefixedPairRange[types.Addr, string](addr)
	err := b.balances.Walk(ctx, rng, func(key collections.Pair[types.Addr, string], amount sdkmath.Int) (bool, error) {
		coins = coins.Add(sdk.NewCoin(key.K2(), amount))
		return false, nil
	})
	if err != nil {
		return nil, err
	}
	return coins, nil
}

func (b bank) setBalance(ctx context.Context, addr types.Addr, denom string, amount sdkmath.Int) error {
	key := collections.Join(addr, denom)
	if amount.IsZero() {
		return b.balances.Remove(ctx, key)
	}
	return b.balances.Set(ctx, key, amount)
}

func (b bank) mint(ctx context.Context, addr types.Addr, coins sdk.Coins) error {
	for _, coin := range coins {
		current, err := b.balance(ctx, addr, coin.Denom)
		if err != nil {
			return err
		}
		if err := b.setBalance(ctx, addr, coin.Denom, current.Add(coin.Amount)); err != nil {
			return err
		}
	}
	return nil
}

func (b bank) send(ctx context.Context, from, to types.Addr, coins sdk.Coins) error {
	if err := coins.Validate(); err != nil {
		return errorsmod.Wrap(types.ErrInvalidFunds, err.Error())
	}
	for _, coin := range coins {
		fromBalance, err := b.balance(ctx, from, coin.Denom)
		if err != nil {
			return err
		}
		if fromBalance.LT(coin.Amount) {
			return errorsmod.Wrapf(types.ErrInsufficientFunds, "%s has %s%s, needs %s", from, fromBalance, coin.Denom, coin)
		}
		if err := b.setBalance(ctx, from, coin.Denom, fromBalance.Sub(coin.Amount)); err != nil {
			return err
		}
		toBalance, err := b.balance(ctx, to, coin.Denom)
		if err != nil {
			return err
		}
		if err := b.setBalance(ctx, to, coin.Denom, toBalance.Add(coin.Amount)); err != nil {
			return err
		}
	}
	return nil
}
