package host

import (
	"context"
	"time"

	errorsmod "cosmossdk.io/errors"
	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/elys-network/ampfarm/internal/types"
)

// Env describes the block and the contract a handler runs in.
type Env struct {
	BlockHeight int64
	BlockTime   time.Time
	Contract    types.Addr
	TxID        string
}

// MessageInfo carries the verified caller and the funds it attached.
type MessageInfo struct {
	Sender types.Addr
	Funds  sdk.Coins
}

// Deps gives a handler read access to the rest of the host. Its private storage
// travels in ctx and is opened with ContractStore.
type Deps struct {
	Querier Querier
	prefix  string
}

// AddrValidate canonicalizes a user supplied address.
func (d Deps) AddrValidate(raw string) (types.Addr, error) {
	return types.ValidateAddr(d.prefix, raw)
}

// Contract is an autonomous component executed by the host.
type Contract interface {
	Instantiate(ctx context.Context, deps Deps, env Env, info MessageInfo, msg any) (*Response, error)
	Execute(ctx context.Context, deps Deps, env Env, info MessageInfo, msg any) (*Response, error)
	Query(ctx context.Context, deps Deps, env Env, req any) (any, error)
}

// Querier performs point-in-time reads. Inside an execution it sees every write
// made earlier in the same batch.
type Querier interface {
	QueryBalance(ctx context.Context, addr types.Addr, denom string) (sdk.Coin, error)
	QueryAllBalances(ctx context.Context, addr types.Addr) (sdk.Coins, error)
	QueryWasm(ctx context.Context, contract types.Addr, req any) (any, error)
}

// QueryWasmAs runs a contract query and asserts the response type.
func QueryWasmAs[T any](ctx context.Context, q Querier, contract types.Addr, req any) (T, error) {
	var zero T
	res, err := q.QueryWasm(ctx, contract, req)
	if err != nil {
		return zero, err
	}
	typed, ok := res.(T)
	if !ok {
		return zero, errorsmod.Wrapf(types.ErrUnknownMessage, "unexpected query response %T from %s", res, contract)
	}
	return typed, nil
}

// SelfCallback wraps msg into a message addressed to the running contract itself.
// Emitted last, it runs after every earlier message of the batch has settled.
func SelfCallback(env Env, msg any) WasmMsg {
	return WasmMsg{Contract: env.Contract, Msg: msg}
}

// AssertSelf rejects any caller other than the contract itself.
func AssertSelf(env Env, info MessageInfo) error {
	if info.Sender != env.Contract {
		return errorsmod.Wrapf(types.ErrUnauthorized, "callbacks are only accepted from %s", env.Contract)
	}
	return nil
}
