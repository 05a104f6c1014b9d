package compounder

import (
	"context"
	"testing"

	sdkmath "cosmossdk.io/math"
	dbm "github.com/cosmos/cosmos-db"
	sdk "github.com/cosmos/cosmos-sdk/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/elys-network/ampfarm/internal/contracts/cw20"
	"github.com/elys-network/ampfarm/internal/host"
	"github.com/elys-network/ampfarm/internal/types"
)

type fixture struct {
	ctx        context.Context
	host       *host.Host
	lp         types.Addr
	other      types.Addr
	compounder types.Addr
	admin      types.Addr
	alice      types.Addr
	bob        types.Addr
}

func setup(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{ctx: context.Background(), host: host.New(dbm.NewMemDB(), "elys")}
	f.admin = f.host.Addr("admin")
	f.alice = f.host.Addr("alice")
	f.bob = f.host.Addr("bob")
	f.lp = f.host.Register("lp", cw20.New())
	f.other = f.host.Register("other", cw20.New())
	f.compounder = f.host.Register("compounder", New())

	_, err := f.host.Instantiate(f.ctx, f.admin, f.lp, cw20.InstantiateMsg{Name: "LP", Symbol: "LP", Decimals: 6, Minter: f.compounder}, nil)
	require.NoError(t, err)
	_, err = f.host.Instantiate(f.ctx, f.admin, f.other, cw20.InstantiateMsg{
		Name: "Other", Symbol: "OTH", Decimals: 6,
		InitialBalances: []cw20.Balance{{Address: f.alice, Amount: sdkmath.NewInt(50)}},
	}, nil)
	require.NoError(t, err)
	_, err = f.host.Instantiate(f.ctx, f.admin, f.compounder, InstantiateMsg{
		LPToken: f.lp,
		Routes: []Route{
			{Offer: types.NativeAssetInfo("uusdc"), Rate: sdkmath.LegacyOneDec()},
			{Offer: types.NativeAssetInfo("uatom"), Rate: sdkmath.LegacyNewDec(8)},
			{Offer: types.TokenAssetInfo(f.other), Rate: sdkmath.LegacyNewDec(2)},
		},
		SwapFee: sdkmath.LegacyNewDecWithPrec(1, 2),
	}, nil)
	require.NoError(t, err)
	require.NoError(t, f.host.Mint(f.ctx, f.alice, sdk.NewCoins(sdk.NewInt64Coin("uusdc", 10000), sdk.NewInt64Coin("uatom", 100))))
	return f
}

func (f *fixture) lpBalance(t *testing.T, addr types.Addr) int64 {
	t.Helper()
	res, err := f.host.QueryWasm(f.ctx, f.lp, cw20.BalanceQuery{Address: addr})
	require.NoError(t, err)
	return res.(cw20.BalanceResponse).Balance.Int64()
}

func native(denom string, amount int64) types.Asset {
	return types.NativeAsset(denom, sdkmath.NewInt(amount))
}

func coins(denom string, amount int64) sdk.Coins {
	return sdk.NewCoins(sdk.NewInt64Coin(denom, amount))
}

func TestCompoundNative(t *testing.T) {
	tests := []struct {
		name   string
		asset  types.Asset
		noSwap bool
		want   int64
	}{
		{"no swap", native("uusdc", 100), true, 100},
		{"half the fee on swap", native("uusdc", 1000), false, 995},
		{"rated asset", native("uatom", 10), true, 80},
		{"rounds down", native("uatom", 3), false, 23},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			f := setup(t)
			funds := sdk.NewCoins(sdk.NewCoin(tc.asset.Info.NativeDenom, tc.asset.Amount))

			sim, err := f.host.QueryWasm(f.ctx, f.compounder, SimulateCompoundQuery{Assets: []types.Asset{tc.asset}, NoSwap: tc.noSwap})
			require.NoError(t, err)
			assert.Equal(t, tc.want, sim.(SimulateCompoundResponse).LPAmount.Int64())

			_, err = f.host.Execute(f.ctx, f.alice, f.compounder, Compound{Assets: []types.Asset{tc.asset}, NoSwap: tc.noSwap}, funds)
			require.NoError(t, err)
			assert.Equal(t, tc.want, f.lpBalance(t, f.alice))
		})
	}
}

func TestCompoundTokenAndPassThrough(t *testing.T) {
	f := setup(t)
	_, err := f.host.Execute(f.ctx, f.alice, f.other, cw20.IncreaseAllowance{Spender: f.compounder, Amount: sdkmath.NewInt(50)}, nil)
	require.NoError(t, err)

	_, err = f.host.Execute(f.ctx, f.alice, f.compounder, Compound{
		Assets: []types.Asset{types.TokenAsset(f.other, sdkmath.NewInt(50))}, NoSwap: true,
	}, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(100), f.lpBalance(t, f.alice))

	held, err := f.host.QueryWasm(f.ctx, f.other, cw20.BalanceQuery{Address: f.compounder})
	require.NoError(t, err)
	assert.Equal(t, int64(50), held.(cw20.BalanceResponse).Balance.Int64())

	_, err = f.host.Execute(f.ctx, f.alice, f.lp, cw20.IncreaseAllowance{Spender: f.compounder, Amount: sdkmath.NewInt(100)}, nil)
	require.NoError(t, err)
	_, err = f.host.Execute(f.ctx, f.alice, f.compounder, Compound{
		Assets:   []types.Asset{types.TokenAsset(f.lp, sdkmath.NewInt(100)), native("uusdc", 10)},
		NoSwap:   true,
		Receiver: f.bob,
	}, coins("uusdc", 10))
	require.NoError(t, err)
	assert.Equal(t, int64(0), f.lpBalance(t, f.alice))
	assert.Equal(t, int64(110), f.lpBalance(t, f.bob))
}

func TestCompoundRejects(t *testing.T) {
	f := setup(t)
	tight := sdkmath.LegacyNewDecWithPrec(1, 3)
	loose := sdkmath.LegacyNewDecWithPrec(6, 1)
	negative := sdkmath.LegacyNewDec(-1)

	tests := []struct {
		name    string
		msg     Compound
		funds   sdk.Coins
		wantErr error
	}{
		{"spread above tolerance", Compound{Assets: []types.Asset{native("uusdc", 100)}, SlippageTolerance: &tight}, coins("uusdc", 100), types.ErrInvalidRequest},
		{"tolerance above limit", Compound{Assets: []types.Asset{native("uusdc", 100)}, SlippageTolerance: &loose}, coins("uusdc", 100), types.ErrInvalidRequest},
		{"negative tolerance", Compound{Assets: []types.Asset{native("uusdc", 100)}, SlippageTolerance: &negative}, coins("uusdc", 100), types.ErrInvalidRequest},
		{"short funds", Compound{Assets: []types.Asset{native("uusdc", 100)}}, coins("uusdc", 50), types.ErrInvalidFunds},
		{"extra funds", Compound{Assets: []types.Asset{native("uusdc", 100)}}, coins("uusdc", 100).Add(sdk.NewInt64Coin("uatom", 1)), types.ErrInvalidFunds},
		{"no route", Compound{Assets: []types.Asset{types.TokenAsset(f.host.Addr("ghost"), sdkmath.NewInt(1))}}, nil, types.ErrInvalidAsset},
		{"duplicate", Compound{Assets: []types.Asset{native("uusdc", 1), native("uusdc", 1)}}, coins("uusdc", 2), types.ErrInvalidAsset},
		{"empty", Compound{}, nil, types.ErrInvalidRequest},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.host.Execute(f.ctx, f.alice, f.compounder, tc.msg, tc.funds)
			assert.ErrorIs(t, err, tc.wantErr)
		})
	}
	assert.Equal(t, int64(0), f.lpBalance(t, f.alice))

	exact := sdkmath.LegacyNewDecWithPrec(5, 3)
	_, err := f.host.Execute(f.ctx, f.alice, f.compounder, Compound{Assets: []types.Asset{native("uusdc", 100)}, SlippageTolerance: &exact}, coins("uusdc", 100))
	require.NoError(t, err)
}

func TestValidateSlippageTolerance(t *testing.T) {
	half := sdkmath.LegacyNewDecWithPrec(5, 1)
	zero := sdkmath.LegacyZeroDec()
	over := sdkmath.LegacyNewDecWithPrec(501, 3)
	assert.NoError(t, ValidateSlippageTolerance(nil))
	assert.NoError(t, ValidateSlippageTolerance(&half))
	assert.NoError(t, ValidateSlippageTolerance(&zero))
	assert.ErrorIs(t, ValidateSlippageTolerance(&over), types.ErrInvalidRequest)
}

func TestInstantiateValidation(t *testing.T) {
	h := host.New(dbm.NewMemDB(), "elys")
	ctx := context.Background()
	lp := h.Register("lp", cw20.New())
	c := h.Register("compounder", New())
	admin := h.Addr("admin")

	_, err := h.Instantiate(ctx, admin, c, InstantiateMsg{LPToken: lp, SwapFee: sdkmath.LegacyOneDec()}, nil)
	assert.ErrorIs(t, err, types.ErrInvalidRequest)

	_, err = h.Instantiate(ctx, admin, c, InstantiateMsg{
		LPToken: lp, SwapFee: sdkmath.LegacyZeroDec(),
		Routes: []Route{{Offer: types.NativeAssetInfo("uusdc"), Rate: sdkmath.LegacyZeroDec()}},
	}, nil)
	assert.ErrorIs(t, err, types.ErrInvalidRequest)

	_, err = h.Instantiate(ctx, admin, c, InstantiateMsg{
		LPToken: lp, SwapFee: sdkmath.LegacyZeroDec(),
		Routes: []Route{
			{Offer: types.NativeAssetInfo("uusdc"), Rate: sdkmath.LegacyOneDec()},
			{Offer: types.NativeAssetInfo("uusdc"), Rate: sdkmath.LegacyOneDec()},
		},
	}, nil)
	assert.ErrorIs(t, err, types.ErrInvalidAsset)
}
