package vault

import (
	"context"

	sdkmath "cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/elys-network/ampfarm/internal/contracts/cw20"
	"github.com/elys-network/ampfarm/internal/host"
	"github.com/elys-network/ampfarm/internal/types"
)

// Client drives a vault deployed on a host.
type Client struct {
	host       *host.Host
	vault      types.Addr
	controller types.Addr
}

var _ VaultManager = (*Client)(nil)

func NewClient(h *host.Host, vault, controller types.Addr) *Client {
	return &Client{host: h, vault: vault, controller: controller}
}

func query[T any](ctx context.Context, c *Client, req any) (T, error) {
	var zero T
	res, err := c.host.QueryWasm(ctx, c.vault, req)
	if err != nil {
		return zero, err
	}
	typed, ok := res.(T)
	if !ok {
		return zero, types.ErrUnknownMessage
	}
	return typed, nil
}

func (c *Client) GetConfig(ctx context.Context) (types.Config, error) {
	return query[types.Config](ctx, c, ConfigQuery{})
}

func (c *Client) GetState(ctx context.Context) (StateResponse, error) {
	return query[StateResponse](ctx, c, StateQuery{})
}

func (c *Client) GetUserInfo(ctx context.Context, address string) (UserInfoResponse, error) {
	return query[UserInfoResponse](ctx, c, UserInfoQuery{Address: address})
}

func (c *Client) SimulateBond(ctx context.Context, lpAmount sdkmath.Int) (sdkmath.Int, error) {
	res, err := query[SimulateBondResponse](ctx, c, SimulateBondQuery{LPAmount: lpAmount})
	if err != nil {
		return sdkmath.Int{}, err
	}
	return res.BondShare, nil
}

// SimulateBondAssets returns the LP and shares a BondAssets of assets would produce right now.
func (c *Client) SimulateBondAssets(ctx context.Context, assets []types.Asset, noSwap bool) (SimulateBondAssetsResponse, error) {
	return query[SimulateBondAssetsResponse](ctx, c, SimulateBondAssetsQuery{Assets: assets, NoSwap: noSwap})
}

func (c *Client) SimulateUnbond(ctx context.Context, shares sdkmath.Int) (sdkmath.Int, error) {
	res, err := query[SimulateUnbondResponse](ctx, c, SimulateUnbondQuery{BondShare: shares})
	if err != nil {
		return sdkmath.Int{}, err
	}
	return res.LPAmount, nil
}

func (c *Client) Compound(ctx context.Context, msg Compound) (*host.Result, error) {
	return c.host.Execute(ctx, c.controller, c.vault, msg, nil)
}

// BondAssets deposits component assets on behalf of sender.
func (c *Client) BondAssets(ctx context.Context, sender types.Addr, msg BondAssets, funds sdk.Coins) (*host.Result, error) {
	return c.host.Execute(ctx, sender, c.vault, msg, funds)
}

// Bond pushes LP tokens held by sender into the vault.
func (c *Client) Bond(ctx context.Context, sender types.Addr, amount sdkmath.Int) (*host.Result, error) {
	cfg, err := c.GetConfig(ctx)
	if err != nil {
		return nil, err
	}
	return c.host.Execute(ctx, sender, cfg.LPToken, cw20.Send{Contract: c.vault, Amount: amount, Msg: BondHook{}}, nil)
}

// Unbond redeems shares held by sender.
func (c *Client) Unbond(ctx context.Context, sender types.Addr, shares sdkmath.Int) (*host.Result, error) {
	st, err := c.GetState(ctx)
	if err != nil {
		return nil, err
	}
	return c.host.Execute(ctx, sender, st.AmpLPToken, cw20.Send{Contract: c.vault, Amount: shares, Msg: UnbondHook{}}, nil)
}
