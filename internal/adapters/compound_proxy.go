package adapters

import (
	"context"

	sdkmath "cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/elys-network/ampfarm/internal/contracts/compounder"
	"github.com/elys-network/ampfarm/internal/host"
	"github.com/elys-network/ampfarm/internal/types"
)

// CompoundProxy addresses the compounding engine.
type CompoundProxy struct {
	Addr types.Addr
}

// Compound asks the engine to convert assets into LP for receiver. funds must carry the native assets.
func (c CompoundProxy) Compound(assets []types.Asset, funds sdk.Coins, noSwap bool, slippageTolerance *sdkmath.LegacyDec, receiver types.Addr) host.WasmMsg {
	return host.WasmMsg{
		Contract: c.Addr,
		Msg: compounder.Compound{
			Assets:            assets,
			NoSwap:            noSwap,
			SlippageTolerance: slippageTolerance,
			Receiver:          receiver,
		},
		Funds: funds,
	}
}

func (c CompoundProxy) QuerySimulate(ctx context.Context, q host.Querier, assets []types.Asset, noSwap bool) (sdkmath.Int, error) {
	res, err := host.QueryWasmAs[compounder.SimulateCompoundResponse](ctx, q, c.Addr, compounder.SimulateCompoundQuery{Assets: assets, NoSwap: noSwap})
	if err != nil {
		return sdkmath.Int{}, err
	}
	return res.LPAmount, nil
}
