package app

import (
	"context"
	"testing"

	sdkmath "cosmossdk.io/math"
	dbm "github.com/cosmos/cosmos-db"
	sdk "github.com/cosmos/cosmos-sdk/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/elys-network/ampfarm/internal/contracts/compounder"
	"github.com/elys-network/ampfarm/internal/contracts/cw20"
	"github.com/elys-network/ampfarm/internal/types"
)

func testConfig() Config {
	return Config{
		Prefix:         "elys",
		ControllerName: "controller",
		RewardDenom:    "uelys",
		RewardLPRate:   sdkmath.LegacyNewDecWithPrec(5, 1),
		ComponentRates: map[string]sdkmath.LegacyDec{
			"uusdc": sdkmath.LegacyOneDec(),
			"uatom": sdkmath.LegacyNewDec(8),
		},
		SwapFee: sdkmath.LegacyNewDecWithPrec(3, 3),
	}
}

func TestNewDeploysContracts(t *testing.T) {
	ctx := context.Background()
	a, err := New(ctx, dbm.NewMemDB(), testConfig())
	require.NoError(t, err)

	for _, addr := range []types.Addr{a.LPToken, a.AmpLPToken, a.Staking, a.Compounder, a.VaultAddr} {
		ok, err := a.Host.IsInstantiated(addr)
		require.NoError(t, err)
		assert.True(t, ok, addr.String())
	}

	info, err := a.Host.QueryWasm(ctx, a.AmpLPToken, cw20.TokenInfoQuery{})
	require.NoError(t, err)
	assert.Equal(t, a.VaultAddr, info.(cw20.TokenInfoResponse).Minter)

	res, err := a.Host.QueryWasm(ctx, a.Compounder, compounder.ConfigQuery{})
	require.NoError(t, err)
	routes := res.(compounder.ConfigResponse).Routes
	require.Len(t, routes, 3)
	assert.Equal(t, "uelys", routes[0].Offer.NativeDenom)
	assert.Equal(t, "uatom", routes[1].Offer.NativeDenom)
	assert.Equal(t, "uusdc", routes[2].Offer.NativeDenom)

	cfg, err := a.Vault.GetConfig(ctx)
	require.NoError(t, err)
	assert.Equal(t, a.Controller, cfg.Controller)
}

func TestAccountsAreStable(t *testing.T) {
	ctx := context.Background()
	first, err := New(ctx, dbm.NewMemDB(), testConfig())
	require.NoError(t, err)
	second, err := New(ctx, dbm.NewMemDB(), testConfig())
	require.NoError(t, err)

	assert.Equal(t, first.Account("alice"), second.Account("alice"))
	assert.NotEqual(t, first.Account("alice"), first.Account("bob"))
	assert.Equal(t, first.VaultAddr, second.VaultAddr)
}

func TestOps(t *testing.T) {
	ctx := context.Background()
	a, err := New(ctx, dbm.NewMemDB(), testConfig())
	require.NoError(t, err)
	alice := a.Account("alice")

	require.NoError(t, a.Faucet(ctx, alice, sdk.NewCoins(sdk.NewInt64Coin("uatom", 10))))
	_, err = a.ProvideLiquidity(ctx, alice, sdk.NewCoins(sdk.NewInt64Coin("uatom", 10)), true)
	require.NoError(t, err)
	lp, err := a.LPBalance(ctx, alice)
	require.NoError(t, err)
	assert.Equal(t, int64(80), lp.Int64())

	_, err = a.AccrueRewards(ctx, sdkmath.ZeroInt())
	assert.ErrorIs(t, err, types.ErrInvalidRequest)

	_, err = a.AccrueRewards(ctx, sdkmath.NewInt(7))
	require.NoError(t, err)
	custodied, err := a.CustodiedLP(ctx)
	require.NoError(t, err)
	assert.True(t, custodied.IsZero())
}
