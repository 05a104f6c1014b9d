package vault_test

import (
	"context"
	"testing"

	sdkmath "cosmossdk.io/math"
	dbm "github.com/cosmos/cosmos-db"
	sdk "github.com/cosmos/cosmos-sdk/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/elys-network/ampfarm/internal/app"
	"github.com/elys-network/ampfarm/internal/contracts/cw20"
	"github.com/elys-network/ampfarm/internal/host"
	"github.com/elys-network/ampfarm/internal/types"
	"github.com/elys-network/ampfarm/internal/vault"
)

const (
	rewardDenom    = "uelys"
	componentDenom = "uusdc"
)

func testConfig() app.Config {
	return app.Config{
		Prefix:         "elys",
		ControllerName: "controller",
		RewardDenom:    rewardDenom,
		RewardLPRate:   sdkmath.LegacyOneDec(),
		ComponentRates: map[string]sdkmath.LegacyDec{componentDenom: sdkmath.LegacyOneDec()},
		SwapFee:        sdkmath.LegacyZeroDec(),
	}
}

type suite struct {
	ctx   context.Context
	app   *app.App
	alice types.Addr
	bob   types.Addr
}

func setup(t *testing.T) *suite {
	t.Helper()
	ctx := context.Background()
	a, err := app.New(ctx, dbm.NewMemDB(), testConfig())
	require.NoError(t, err)
	return &suite{ctx: ctx, app: a, alice: a.Account("alice"), bob: a.Account("bob")}
}

func coins(denom string, amount int64) sdk.Coins {
	return sdk.NewCoins(sdk.NewInt64Coin(denom, amount))
}

func (s *suite) fundLP(t *testing.T, user types.Addr, amount int64) {
	t.Helper()
	require.NoError(t, s.app.Faucet(s.ctx, user, coins(componentDenom, amount)))
	_, err := s.app.ProvideLiquidity(s.ctx, user, coins(componentDenom, amount), true)
	require.NoError(t, err)
}

func (s *suite) bond(t *testing.T, user types.Addr, amount int64) *host.Result {
	t.Helper()
	res, err := s.app.Vault.Bond(s.ctx, user, sdkmath.NewInt(amount))
	require.NoError(t, err)
	return res
}

func (s *suite) state(t *testing.T) vault.StateResponse {
	t.Helper()
	st, err := s.app.Vault.GetState(s.ctx)
	require.NoError(t, err)
	return st
}

func (s *suite) lp(t *testing.T, addr types.Addr) int64 {
	t.Helper()
	bal, err := s.app.LPBalance(s.ctx, addr)
	require.NoError(t, err)
	return bal.Int64()
}

func (s *suite) shares(t *testing.T, addr types.Addr) int64 {
	t.Helper()
	bal, err := s.app.ShareBalance(s.ctx, addr)
	require.NoError(t, err)
	return bal.Int64()
}

func (s *suite) assertTotals(t *testing.T, shares, lp int64) {
	t.Helper()
	st := s.state(t)
	assert.Equal(t, shares, st.TotalBondShare.Int64(), "total bond share")
	assert.Equal(t, lp, st.TotalLPDeposit.Int64(), "custodied lp")
}

func actions(res *host.Result) []string {
	var out []string
	for _, ev := range res.Events {
		if action, ok := ev.Get("action"); ok {
			out = append(out, action)
		}
	}
	return out
}

func TestBondUnbondScenario(t *testing.T) {
	s := setup(t)
	s.fundLP(t, s.alice, 1000)
	s.fundLP(t, s.bob, 500)

	s.bond(t, s.alice, 1000)
	assert.Equal(t, int64(1000), s.shares(t, s.alice))
	s.assertTotals(t, 1000, 1000)

	s.bond(t, s.bob, 500)
	assert.Equal(t, int64(500), s.shares(t, s.bob))
	s.assertTotals(t, 1500, 1500)

	res, err := s.app.Vault.Unbond(s.ctx, s.alice, sdkmath.NewInt(750))
	require.NoError(t, err)
	assert.Contains(t, actions(res), "unbond")

	assert.Equal(t, int64(750), s.lp(t, s.alice))
	assert.Equal(t, int64(250), s.shares(t, s.alice))
	s.assertTotals(t, 750, 750)
	assert.Equal(t, int64(0), s.lp(t, s.app.VaultAddr), "vault keeps no loose LP")
}

func TestBondEmitsAttributes(t *testing.T) {
	s := setup(t)
	s.fundLP(t, s.alice, 100)

	res := s.bond(t, s.alice, 100)
	var bondEvent types.Event
	for _, ev := range res.Events {
		if action, _ := ev.Get("action"); action == "bond" {
			bondEvent = ev
		}
	}
	require.Equal(t, s.app.VaultAddr, bondEvent.Contract)
	amount, _ := bondEvent.Get("amount")
	share, _ := bondEvent.Get("bond_amount")
	staker, _ := bondEvent.Get("staker_addr")
	assert.Equal(t, "100", amount)
	assert.Equal(t, "100", share)
	assert.Equal(t, s.alice.String(), staker)
}

func TestBondHookStakerOverride(t *testing.T) {
	s := setup(t)
	s.fundLP(t, s.alice, 100)

	_, err := s.app.Host.Execute(s.ctx, s.alice, s.app.LPToken, cw20.Send{
		Contract: s.app.VaultAddr, Amount: sdkmath.NewInt(100), Msg: vault.BondHook{StakerAddr: s.bob.String()},
	}, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(0), s.shares(t, s.alice))
	assert.Equal(t, int64(100), s.shares(t, s.bob))
}

func TestBondAssetsNative(t *testing.T) {
	s := setup(t)
	require.NoError(t, s.app.Faucet(s.ctx, s.alice, coins(componentDenom, 200)))

	res, err := s.app.Vault.BondAssets(s.ctx, s.alice, vault.BondAssets{
		Assets: []types.Asset{types.NativeAsset(componentDenom, sdkmath.NewInt(200))},
	}, coins(componentDenom, 200))
	require.NoError(t, err)

	assert.Equal(t, []string{"bond_assets", "compound", "mint", "bond", "mint", "send", "deposit"}, actions(res))
	assert.Equal(t, int64(200), s.shares(t, s.alice))
	s.assertTotals(t, 200, 200)
}

func TestBondAssetsReceiverAndZeroNative(t *testing.T) {
	s := setup(t)
	require.NoError(t, s.app.Faucet(s.ctx, s.alice, coins(componentDenom, 50)))

	_, err := s.app.Vault.BondAssets(s.ctx, s.alice, vault.BondAssets{
		Assets: []types.Asset{
			types.NativeAsset(componentDenom, sdkmath.NewInt(50)),
			types.NativeAsset(rewardDenom, sdkmath.ZeroInt()),
		},
		Receiver: s.bob.String(),
	}, coins(componentDenom, 50))
	require.NoError(t, err)
	assert.Equal(t, int64(50), s.shares(t, s.bob))
}

func TestBondAssetsMinimumReceiveRollsBack(t *testing.T) {
	s := setup(t)
	require.NoError(t, s.app.Faucet(s.ctx, s.alice, coins(componentDenom, 200)))
	minimum := sdkmath.NewInt(201)

	_, err := s.app.Vault.BondAssets(s.ctx, s.alice, vault.BondAssets{
		Assets:         []types.Asset{types.NativeAsset(componentDenom, sdkmath.NewInt(200))},
		MinimumReceive: &minimum,
	}, coins(componentDenom, 200))
	assert.ErrorIs(t, err, types.ErrAssertionMinimumReceive)

	bal, err := s.app.Host.QueryBalance(s.ctx, s.alice, componentDenom)
	require.NoError(t, err)
	assert.Equal(t, int64(200), bal.Amount.Int64(), "funds return to the depositor")
	for _, addr := range []types.Addr{s.app.VaultAddr, s.app.Compounder} {
		held, err := s.app.Host.QueryAllBalances(s.ctx, addr)
		require.NoError(t, err)
		assert.True(t, held.IsZero(), addr.String())
	}
	assert.Equal(t, int64(0), s.lp(t, s.app.VaultAddr))
	s.assertTotals(t, 0, 0)

	exact := sdkmath.NewInt(200)
	_, err = s.app.Vault.BondAssets(s.ctx, s.alice, vault.BondAssets{
		Assets:         []types.Asset{types.NativeAsset(componentDenom, sdkmath.NewInt(200))},
		MinimumReceive: &exact,
	}, coins(componentDenom, 200))
	require.NoError(t, err)
	s.assertTotals(t, 200, 200)
}

func TestBondAssetsTokenLP(t *testing.T) {
	s := setup(t)
	s.fundLP(t, s.alice, 300)

	_, err := s.app.Host.Execute(s.ctx, s.alice, s.app.LPToken, cw20.IncreaseAllowance{
		Spender: s.app.VaultAddr, Amount: sdkmath.NewInt(300),
	}, nil)
	require.NoError(t, err)

	bonded, err := s.app.Vault.BondAssets(s.ctx, s.alice, vault.BondAssets{
		Assets: []types.Asset{types.TokenAsset(s.app.LPToken, sdkmath.NewInt(300))},
	}, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(0), s.lp(t, s.alice))
	assert.Equal(t, int64(300), s.shares(t, s.alice))
	s.assertTotals(t, 300, 300)

	res, err := s.app.Host.QueryWasm(s.ctx, s.app.LPToken, cw20.AllowanceQuery{Owner: s.app.VaultAddr, Spender: s.app.Compounder})
	require.NoError(t, err)
	assert.Equal(t, bonded.Height+1, res.(cw20.AllowanceResponse).ExpiresAtHeight, "engine allowance lapses next block")
}

func TestBondAssetsValidation(t *testing.T) {
	s := setup(t)
	require.NoError(t, s.app.Faucet(s.ctx, s.alice, coins(componentDenom, 1000).Add(sdk.NewInt64Coin("uatom", 10), sdk.NewInt64Coin(rewardDenom, 1000))))
	tooHigh := sdkmath.LegacyNewDecWithPrec(6, 1)

	tests := []struct {
		name    string
		msg     vault.BondAssets
		funds   sdk.Coins
		wantErr error
	}{
		{
			name:    "funds below declared amount",
			msg:     vault.BondAssets{Assets: []types.Asset{types.NativeAsset(componentDenom, sdkmath.NewInt(100))}},
			funds:   coins(componentDenom, 99),
			wantErr: types.ErrInvalidFunds,
		},
		{
			name:    "undeclared funds",
			msg:     vault.BondAssets{Assets: []types.Asset{types.NativeAsset(componentDenom, sdkmath.NewInt(100))}},
			funds:   coins(componentDenom, 100).Add(sdk.NewInt64Coin(rewardDenom, 5)),
			wantErr: types.ErrInvalidFunds,
		},
		{
			name: "duplicate asset",
			msg: vault.BondAssets{Assets: []types.Asset{
				types.NativeAsset(componentDenom, sdkmath.NewInt(50)),
				types.NativeAsset(componentDenom, sdkmath.NewInt(50)),
			}},
			funds:   coins(componentDenom, 100),
			wantErr: types.ErrInvalidAsset,
		},
		{
			name:    "nothing to bond",
			msg:     vault.BondAssets{Assets: []types.Asset{types.NativeAsset(componentDenom, sdkmath.ZeroInt())}},
			wantErr: types.ErrInvalidRequest,
		},
		{
			name: "slippage above limit",
			msg: vault.BondAssets{
				Assets:            []types.Asset{types.NativeAsset(componentDenom, sdkmath.NewInt(100))},
				SlippageTolerance: &tooHigh,
			},
			funds:   coins(componentDenom, 100),
			wantErr: types.ErrInvalidRequest,
		},
		{
			name:    "unknown receiver",
			msg:     vault.BondAssets{Assets: []types.Asset{types.NativeAsset(componentDenom, sdkmath.NewInt(100))}, Receiver: "nobody"},
			funds:   coins(componentDenom, 100),
			wantErr: types.ErrInvalidAddress,
		},
		{
			name:    "asset without route",
			msg:     vault.BondAssets{Assets: []types.Asset{types.NativeAsset("uatom", sdkmath.NewInt(10))}},
			funds:   coins("uatom", 10),
			wantErr: types.ErrInvalidAsset,
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := s.app.Vault.BondAssets(s.ctx, s.alice, tc.msg, tc.funds)
			assert.ErrorIs(t, err, tc.wantErr)
		})
	}
	s.assertTotals(t, 0, 0)
}

func TestAuthorization(t *testing.T) {
	s := setup(t)
	s.fundLP(t, s.alice, 1000)
	s.bond(t, s.alice, 500)
	h := s.app.Host
	hundred := sdkmath.NewInt(100)

	tests := []struct {
		name     string
		sender   types.Addr
		contract types.Addr
		msg      any
	}{
		{"bond hook from a user", s.alice, s.app.VaultAddr, cw20.ReceiveMsg{Sender: s.alice, Amount: hundred, Msg: vault.BondHook{}}},
		{"bond hook from the share token", s.alice, s.app.AmpLPToken, cw20.Send{Contract: s.app.VaultAddr, Amount: hundred, Msg: vault.BondHook{}}},
		{"unbond hook from a user", s.alice, s.app.VaultAddr, cw20.ReceiveMsg{Sender: s.alice, Amount: hundred, Msg: vault.UnbondHook{}}},
		{"unbond hook from the lp token", s.alice, s.app.LPToken, cw20.Send{Contract: s.app.VaultAddr, Amount: hundred, Msg: vault.UnbondHook{}}},
		{"bond callback from a user", s.alice, s.app.VaultAddr, vault.BondTo{To: s.alice, PrevBalance: sdkmath.ZeroInt()}},
		{"stake callback from a user", s.alice, s.app.VaultAddr, vault.Stake{PrevBalance: sdkmath.ZeroInt()}},
		{"callback from the controller", s.app.Controller, s.app.VaultAddr, vault.BondTo{To: s.alice, PrevBalance: sdkmath.ZeroInt()}},
		{"compound from a user", s.alice, s.app.VaultAddr, vault.Compound{}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := h.Execute(s.ctx, tc.sender, tc.contract, tc.msg, nil)
			assert.ErrorIs(t, err, types.ErrUnauthorized)
		})
	}

	s.assertTotals(t, 500, 500)
	assert.Equal(t, int64(500), s.lp(t, s.alice))
	assert.Equal(t, int64(500), s.shares(t, s.alice))
}

func TestCompound(t *testing.T) {
	s := setup(t)

	_, err := s.app.Vault.Compound(s.ctx, vault.Compound{})
	assert.ErrorIs(t, err, types.ErrEmptyVault)

	s.fundLP(t, s.alice, 1000)
	s.bond(t, s.alice, 1000)

	_, err = s.app.Vault.Compound(s.ctx, vault.Compound{})
	assert.ErrorIs(t, err, types.ErrNoRewards, "no rewards yet")

	_, err = s.app.AccrueRewards(s.ctx, sdkmath.NewInt(100))
	require.NoError(t, err)

	tooMuch := sdkmath.NewInt(101)
	_, err = s.app.Vault.Compound(s.ctx, vault.Compound{MinimumReceive: &tooMuch})
	assert.ErrorIs(t, err, types.ErrAssertionMinimumReceive)
	s.assertTotals(t, 1000, 1000)

	res, err := s.app.Vault.Compound(s.ctx, vault.Compound{})
	require.NoError(t, err)
	assert.Contains(t, actions(res), "stake")

	st := s.state(t)
	assert.Equal(t, int64(1000), st.TotalBondShare.Int64(), "compounding mints no shares")
	assert.Equal(t, int64(1100), st.TotalLPDeposit.Int64())
	assert.True(t, st.ExchangeRate.Equal(sdkmath.LegacyNewDecWithPrec(11, 1)))

	// floor(550 * 1000 / 1100) = 500
	s.fundLP(t, s.bob, 550)
	s.bond(t, s.bob, 550)
	assert.Equal(t, int64(500), s.shares(t, s.bob))
	s.assertTotals(t, 1500, 1650)

	info, err := s.app.Vault.GetUserInfo(s.ctx, s.alice.String())
	require.NoError(t, err)
	assert.Equal(t, int64(1000), info.BondShare.Int64())
	assert.Equal(t, int64(1100), info.LPAmount.Int64())
}

func TestFullExitDrainsVault(t *testing.T) {
	s := setup(t)
	s.fundLP(t, s.alice, 1000)
	s.bond(t, s.alice, 1000)
	_, err := s.app.AccrueRewards(s.ctx, sdkmath.NewInt(333))
	require.NoError(t, err)
	_, err = s.app.Vault.Compound(s.ctx, vault.Compound{})
	require.NoError(t, err)

	_, err = s.app.Vault.Unbond(s.ctx, s.alice, sdkmath.NewInt(1000))
	require.NoError(t, err)
	assert.Equal(t, int64(1333), s.lp(t, s.alice))
	s.assertTotals(t, 0, 0)

	// an emptied vault bootstraps 1:1 again
	s.fundLP(t, s.bob, 10)
	s.bond(t, s.bob, 10)
	assert.Equal(t, int64(10), s.shares(t, s.bob))
}

func TestBondWorthZeroSharesFails(t *testing.T) {
	s := setup(t)
	s.fundLP(t, s.alice, 1000)
	s.bond(t, s.alice, 1000)
	_, err := s.app.AccrueRewards(s.ctx, sdkmath.NewInt(1000))
	require.NoError(t, err)
	_, err = s.app.Vault.Compound(s.ctx, vault.Compound{})
	require.NoError(t, err)

	s.fundLP(t, s.bob, 1)
	_, err = s.app.Vault.Bond(s.ctx, s.bob, sdkmath.NewInt(1))
	assert.ErrorIs(t, err, types.ErrInvalidRequest)
	assert.Equal(t, int64(1), s.lp(t, s.bob))
	s.assertTotals(t, 1000, 2000)
}

func TestUnbondRoundsDown(t *testing.T) {
	s := setup(t)
	s.fundLP(t, s.alice, 3)
	s.bond(t, s.alice, 3)
	_, err := s.app.AccrueRewards(s.ctx, sdkmath.NewInt(1))
	require.NoError(t, err)
	_, err = s.app.Vault.Compound(s.ctx, vault.Compound{})
	require.NoError(t, err)

	// floor(1 * 4 / 3) = 1, the remainder stays with the other holders
	_, err = s.app.Vault.Unbond(s.ctx, s.alice, sdkmath.NewInt(1))
	require.NoError(t, err)
	assert.Equal(t, int64(1), s.lp(t, s.alice))
	s.assertTotals(t, 2, 3)
}

func TestQueries(t *testing.T) {
	s := setup(t)
	s.fundLP(t, s.alice, 1000)
	s.bond(t, s.alice, 1000)

	cfg, err := s.app.Vault.GetConfig(s.ctx)
	require.NoError(t, err)
	assert.Equal(t, s.app.LPToken, cfg.LPToken)
	assert.Equal(t, s.app.Controller, cfg.Controller)

	shares, err := s.app.Vault.SimulateBond(s.ctx, sdkmath.NewInt(250))
	require.NoError(t, err)
	assert.Equal(t, int64(250), shares.Int64())

	lp, err := s.app.Vault.SimulateUnbond(s.ctx, sdkmath.NewInt(400))
	require.NoError(t, err)
	assert.Equal(t, int64(400), lp.Int64())

	_, err = s.app.Vault.SimulateUnbond(s.ctx, sdkmath.NewInt(1001))
	assert.ErrorIs(t, err, types.ErrArithmeticUnderflow)

	_, err = s.app.Vault.SimulateBond(s.ctx, sdkmath.ZeroInt())
	assert.ErrorIs(t, err, types.ErrInvalidRequest)

	_, err = s.app.Vault.GetUserInfo(s.ctx, "cosmos1notavault")
	assert.ErrorIs(t, err, types.ErrInvalidAddress)

	info, err := s.app.Vault.GetUserInfo(s.ctx, s.bob.String())
	require.NoError(t, err)
	assert.True(t, info.BondShare.IsZero())
	assert.True(t, info.LPAmount.IsZero())

	sim, err := s.app.Vault.SimulateBondAssets(s.ctx, []types.Asset{types.NativeAsset(componentDenom, sdkmath.NewInt(300))}, true)
	require.NoError(t, err)
	assert.Equal(t, int64(300), sim.LPAmount.Int64())
	assert.Equal(t, int64(300), sim.BondShare.Int64())

	_, err = s.app.Vault.SimulateBondAssets(s.ctx, []types.Asset{types.NativeAsset("uosmo", sdkmath.NewInt(1))}, true)
	assert.ErrorIs(t, err, types.ErrInvalidAsset)
}

func TestRedeployIsIdempotent(t *testing.T) {
	ctx := context.Background()
	db := dbm.NewMemDB()
	first, err := app.New(ctx, db, testConfig())
	require.NoError(t, err)
	alice := first.Account("alice")
	require.NoError(t, first.Faucet(ctx, alice, coins(componentDenom, 10)))
	_, err = first.ProvideLiquidity(ctx, alice, coins(componentDenom, 10), true)
	require.NoError(t, err)
	_, err = first.Vault.Bond(ctx, alice, sdkmath.NewInt(10))
	require.NoError(t, err)

	second, err := app.New(ctx, db, testConfig())
	require.NoError(t, err)
	st, err := second.Vault.GetState(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(10), st.TotalBondShare.Int64())
}
