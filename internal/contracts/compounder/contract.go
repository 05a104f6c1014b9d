// Package compounder turns component assets into the pooled LP token. Pricing is a fixed
// rate per offered asset; providing without a swap avoids the swap fee on half the offer.
package compounder

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

var configPrefix = collections.NewPrefix(0)

// MaxSlippageTolerance bounds any caller supplied tolerance.
var MaxSlippageTolerance = sdkmath.LegacyNewDecWithPrec(5, 1)

// ValidateSlippageTolerance accepts nil or a value in [0, 0.5].
func ValidateSlippageTolerance(tolerance *sdkmath.LegacyDec) error {
	if tolerance == nil {
		return nil
	}
	if tolerance.IsNil() || tolerance.IsNegative() || tolerance.GT(MaxSlippageTolerance) {
		return errorsmod.Wrapf(types.ErrInvalidRequest, "slippage tolerance must be between 0 and %s", MaxSlippageTolerance)
	}
	return nil
}

type Contract struct {
	config collections.Item[ConfigResponse]
}

func New() *Contract {
	sb := host.NewSchemaBuilder()
	c := &Contract{
		config: collections.NewItem(sb, configPrefix, "config", host.JSONValue[ConfigResponse]()),
	}
	host.MustBuild(sb)
	return c
}

func (c *Contract) Instantiate(ctx context.Context, deps host.Deps, _ host.Env, _ host.MessageInfo, msg any) (*host.Response, error) {
	m, ok := msg.(InstantiateMsg)
	if !ok {
		return nil, errorsmod.Wrapf(types.ErrUnknownMessage, "compounder instantiate: %T", msg)
	}
	lpToken, err := deps.AddrValidate(m.LPToken.String())
	if err != nil {
		return nil, err
	}
	if m.SwapFee.IsNil() || m.SwapFee.IsNegative() || m.SwapFee.GTE(sdkmath.LegacyOneDec()) {
		return nil, errorsmod.Wrap(types.ErrInvalidRequest, "swap fee must be in [0, 1)")
	}
	for i, r := range m.Routes {
		if err := r.Offer.Validate(); err != nil {
			return nil, err
		}
		if r.Rate.IsNil() || !r.Rate.IsPositive() {
			return nil, errorsmod.Wrapf(types.ErrInvalidRequest, "route %s needs a positive rate", r.Offer)
		}
		for _, prev := range m.Routes[:i] {
			if prev.Offer.Equal(r.Offer) {
				return nil, errorsmod.Wrapf(types.ErrInvalidAsset, "duplicate route for %s", r.Offer)
			}
		}
	}
	cfg := ConfigResponse{LPToken: lpToken, Routes: m.Routes, SwapFee: m.SwapFee}
	if err := c.config.Set(ctx, cfg); err != nil {
		return nil, err
	}
	return host.NewResponse().AddAttribute("action", "instantiate_compounder"), nil
}

func (c *Contract) Execute(ctx context.Context, deps host.Deps, env host.Env, info host.MessageInfo, msg any) (*host.Response, error) {
	m, ok := msg.(Compound)
	if !ok {
		return nil, errorsmod.Wrapf(types.ErrUnknownMessage, "compounder: %T", msg)
	}
	return c.compound(ctx, deps, env, info, m)
}

func (c *Contract) Query(ctx context.Context, _ host.Deps, _ host.Env, req any) (any, error) {
	switch q := req.(type) {
	case ConfigQuery:
		return c.loadConfig(ctx)
	case SimulateCompoundQuery:
		cfg, err := c.loadConfig(ctx)
		if err != nil {
			return nil, err
		}
		lp, _, err := cfg.convert(q.Assets, q.NoSwap)
		if err != nil {
			return nil, err
		}
		return SimulateCompoundResponse{LPAmount: lp}, nil
	default:
		return nil, errorsmod.Wrapf(types.ErrUnknownMessage, "compounder query: %T", req)
	}
}

func (c *Contract) compound(ctx context.Context, deps host.Deps, env host.Env, info host.MessageInfo, m Compound) (*host.Response, error) {
	if err := ValidateSlippageTolerance(m.SlippageTolerance); err != nil {
		return nil, err
	}
	cfg, err := c.loadConfig(ctx)
	if err != nil {
		return nil, err
	}
	receiver := info.Sender
	if !m.Receiver.Empty() {
		if receiver, err = deps.AddrValidate(m.Receiver.String()); err != nil {
			return nil, err
		}
	}
	if err := validateAssets(m.Assets); err != nil {
		return nil, err
	}
	if err := checkNativeFunds(m.Assets, info.Funds); err != nil {
		return nil, err
	}

	lpAmount, spread, err := cfg.convert(m.Assets, m.NoSwap)
	if err != nil {
		return nil, err
	}
	if m.SlippageTolerance != nil && spread.GT(*m.SlippageTolerance) {
		return nil, errorsmod.Wrapf(types.ErrInvalidRequest, "operation exceeds max spread limit: %s > %s", spread, *m.SlippageTolerance)
	}

	res := host.NewResponse()
	passThrough := sdkmath.ZeroInt()
	for _, asset := range m.Assets {
		if asset.Info.IsNative() || asset.Amount.IsZero() {
			continue
		}
		// Token offers are pulled from the caller. LP offers go straight on to the receiver.
		recipient := env.Contract
		if asset.Info.Token == cfg.LPToken {
			recipient = receiver
			passThrough = passThrough.Add(asset.Amount)
		}
		if recipient == info.Sender {
			continue
		}
		res.AddMessages(host.WasmMsg{Contract: asset.Info.Token, Msg: cw20.TransferFrom{
			Owner: info.Sender, Recipient: recipient, Amount: asset.Amount,
		}})
	}

	minted := lpAmount.Sub(passThrough)
	if minted.IsPositive() {
		res.AddMessages(host.WasmMsg{Contract: cfg.LPToken, Msg: cw20.Mint{Recipient: receiver, Amount: minted}})
	}
	return res.
		AddAttribute("action", "compound").
		AddAttribute("receiver", receiver).
		AddAttribute("lp_amount", lpAmount).
		AddAttribute("no_swap", m.NoSwap), nil
}

// convert prices assets in LP. The spread is the fraction of value lost to swapping.
func (cfg ConfigResponse) convert(assets []types.Asset, noSwap bool) (sdkmath.Int, sdkmath.LegacyDec, error) {
	if err := validateAssets(assets); err != nil {
		return sdkmath.Int{}, sdkmath.LegacyDec{}, err
	}

	spread := sdkmath.LegacyZeroDec()
	if !noSwap {
		spread = cfg.SwapFee.QuoInt64(2)
	}

	total := sdkmath.ZeroInt()
	for _, asset := range assets {
		if asset.Amount.IsZero() {
			continue
		}
		var produced sdkmath.Int
		if !asset.Info.IsNative() && asset.Info.Token == cfg.LPToken {
			produced = asset.Amount
		} else {
			rate, ok := cfg.rate(asset.Info)
			if !ok {
				return sdkmath.Int{}, sdkmath.LegacyDec{}, errorsmod.Wrapf(types.ErrInvalidAsset, "no route for %s", asset.Info)
			}
			value := sdkmath.LegacyNewDecFromInt(asset.Amount).Mul(rate)
			produced = value.Mul(sdkmath.LegacyOneDec().Sub(spread)).TruncateInt()
		}
		var err error
		if total, err = utils.CheckedAdd(total, produced); err != nil {
			return sdkmath.Int{}, sdkmath.LegacyDec{}, err
		}
	}
	return total, spread, nil
}

func (cfg ConfigResponse) rate(info types.AssetInfo) (sdkmath.LegacyDec, bool) {
	for _, r := range cfg.Routes {
		if r.Offer.Equal(info) {
			return r.Rate, true
		}
	}
	return sdkmath.LegacyDec{}, false
}

func validateAssets(assets []types.Asset) error {
	if len(assets) == 0 {
		return errorsmod.Wrap(types.ErrInvalidRequest, "no assets to compound")
	}
	for i, asset := range assets {
		if err := asset.Validate(); err != nil {
			return err
		}
		if err := utils.CheckUint128(asset.Amount); err != nil {
			return err
		}
		for _, prev := range assets[:i] {
			if prev.Info.Equal(asset.Info) {
				return errorsmod.Wrapf(types.ErrInvalidAsset, "duplicate asset %s", asset.Info)
			}
		}
	}
	return nil
}

// checkNativeFunds requires attached funds to match the native assets exactly.
func checkNativeFunds(assets []types.Asset, funds sdk.Coins) error {
	expected := sdk.NewCoins()
	for _, asset := range assets {
		if !asset.Info.IsNative() || asset.Amount.IsNil() || !asset.Amount.IsPositive() {
			continue
		}
		coin, err := asset.ToCoin()
		if err != nil {
			return err
		}
		expected = expected.Add(coin)
	}
	if !funds.Equal(expected) {
		return errorsmod.Wrapf(types.ErrInvalidFunds, "attached %s, assets declare %s", funds, expected)
	}
	return nil
}

func (c *Contract) loadConfig(ctx context.Context) (ConfigResponse, error) {
	cfg, err := c.config.Get(ctx)
	if errors.Is(err, collections.ErrNotFound) {
		return ConfigResponse{}, errorsmod.Wrap(types.ErrNotFound, "compounder config")
	}
	return cfg, err
}
