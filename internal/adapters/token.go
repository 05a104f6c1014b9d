// Package adapters builds the messages and queries the vault sends to its collaborators.
package adapters

import (
	"context"

	sdkmath "cosmossdk.io/math"

	"github.com/elys-network/ampfarm/internal/contracts/cw20"
	"github.com/elys-network/ampfarm/internal/host"
	"github.com/elys-network/ampfarm/internal/types"
)

// Token addresses a cw20 token contract.
type Token struct {
	Addr types.Addr
}

func (t Token) Transfer(recipient types.Addr, amount sdkmath.Int) host.WasmMsg {
	return host.WasmMsg{Contract: t.Addr, Msg: cw20.Transfer{Recipient: recipient, Amount: amount}}
}

func (t Token) TransferFrom(owner, recipient types.Addr, amount sdkmath.Int) host.WasmMsg {
	return host.WasmMsg{Contract: t.Addr, Msg: cw20.TransferFrom{Owner: owner, Recipient: recipient, Amount: amount}}
}

// Send transfers to contract and triggers its receive hook with msg.
func (t Token) Send(contract types.Addr, amount sdkmath.Int, msg any) host.WasmMsg {
	return host.WasmMsg{Contract: t.Addr, Msg: cw20.Send{Contract: contract, Amount: amount, Msg: msg}}
}

func (t Token) Mint(recipient types.Addr, amount sdkmath.Int) host.WasmMsg {
	return host.WasmMsg{Contract: t.Addr, Msg: cw20.Mint{Recipient: recipient, Amount: amount}}
}

func (t Token) Burn(amount sdkmath.Int) host.WasmMsg {
	return host.WasmMsg{Contract: t.Addr, Msg: cw20.Burn{Amount: amount}}
}

func (t Token) IncreaseAllowance(spender types.Addr, amount sdkmath.Int, expiresAtHeight int64) host.WasmMsg {
	return host.WasmMsg{Contract: t.Addr, Msg: cw20.IncreaseAllowance{
		Spender: spender, Amount: amount, ExpiresAtHeight: expiresAtHeight,
	}}
}

func (t Token) QueryBalance(ctx context.Context, q host.Querier, addr types.Addr) (sdkmath.Int, error) {
	res, err := host.QueryWasmAs[cw20.BalanceResponse](ctx, q, t.Addr, cw20.BalanceQuery{Address: addr})
	if err != nil {
		return sdkmath.Int{}, err
	}
	return res.Balance, nil
}

func (t Token) QueryTokenInfo(ctx context.Context, q host.Querier) (cw20.TokenInfoResponse, error) {
	return host.QueryWasmAs[cw20.TokenInfoResponse](ctx, q, t.Addr, cw20.TokenInfoQuery{})
}
