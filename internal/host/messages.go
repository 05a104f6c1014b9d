package host

import (
	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/elys-network/ampfarm/internal/types"
)

// CosmosMsg is an effect a contract asks the host to perform after its handler returns.
type CosmosMsg interface {
	cosmosMsg()
}

// WasmMsg executes msg on another contract, attaching funds from the emitting contract.
type WasmMsg struct {
	Contract types.Addr
	Msg      any
	Funds    sdk.Coins
}

// BankMsg sends native coins from the emitting contract.
type BankMsg struct {
	To     types.Addr
	Amount sdk.Coins
}

func (WasmMsg) cosmosMsg() {}
func (BankMsg) cosmosMsg() {}

// Response is what a handler returns. Messages run in order, depth first,
// after the handler returns and before control goes back to the caller.
type Response struct {
	Messages   []CosmosMsg
	Attributes []types.Attribute
	Data       any
}

func NewResponse() *Response {
	return &Response{}
}

func (r *Response) AddMessages(msgs ...CosmosMsg) *Response {
	r.Messages = append(r.Messages, msgs...)
	return r
}

func (r *Response) AddAttribute(key string, value any) *Response {
	r.Attributes = append(r.Attributes, types.NewAttribute(key, value))
	return r
}

func (r *Response) SetData(data any) *Response {
	r.Data = data
	return r
}

// Result describes a committed top-level execution.
type Result struct {
	TxID   string
	Height int64
	Events []types.Event
	Data   any
}
