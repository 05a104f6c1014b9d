package cw20

import (
	sdkmath "cosmossdk.io/math"

	"github.com/elys-network/ampfarm/internal/types"
)

type InstantiateMsg struct {
	Name            string
	Symbol          string
	Decimals        uint8
	Minter          types.Addr // empty disables minting
	InitialBalances []Balance
}

type Balance struct {
	Address types.Addr
	Amount  sdkmath.Int
}

type Transfer struct {
	Recipient types.Addr
	Amount    sdkmath.Int
}

// TransferFrom moves Owner's tokens using an allowance granted to the caller.
type TransferFrom struct {
	Owner     types.Addr
	Recipient types.Addr
	Amount    sdkmath.Int
}

// Send transfers to a contract and then invokes its Receive hook with Msg.
type Send struct {
	Contract types.Addr
	Amount   sdkmath.Int
	Msg      any
}

type Mint struct {
	Recipient types.Addr
	Amount    sdkmath.Int
}

type Burn struct {
	Amount sdkmath.Int
}

// IncreaseAllowance adds to Spender's allowance. A non-zero ExpiresAtHeight makes
// the whole allowance unusable from that height on.
type IncreaseAllowance struct {
	Spender         types.Addr
	Amount          sdkmath.Int
	ExpiresAtHeight int64
}

// ReceiveMsg is delivered to the target of a Send. Sender is the account that initiated it,
// the token contract itself is the message sender seen by the receiver.
type ReceiveMsg struct {
	Sender types.Addr
	Amount sdkmath.Int
	Msg    any
}

type BalanceQuery struct {
	Address types.Addr
}

type BalanceResponse struct {
	Balance sdkmath.Int `json:"balance"`
}

type TokenInfoQuery struct{}

type TokenInfoResponse struct {
	Name        string      `json:"name"`
	Symbol      string      `json:"symbol"`
	Decimals    uint8       `json:"decimals"`
	TotalSupply sdkmath.Int `json:"total_supply"`
	Minter      types.Addr  `json:"minter,omitempty"`
}

type AllowanceQuery struct {
	Owner   types.Addr
	Spender types.Addr
}

type AllowanceResponse struct {
	Allowance       sdkmath.Int `json:"allowance"`
	ExpiresAtHeight int64       `json:"expires_at_height,omitempty"`
}
