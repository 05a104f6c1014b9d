package staking

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

const rewardDenom = "uelys"

type fixture struct {
	ctx     context.Context
	host    *host.Host
	lp      types.Addr
	staking types.Addr
	admin   types.Addr
	alice   types.Addr
}

func setup(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{ctx: context.Background(), host: host.New(dbm.NewMemDB(), "elys")}
	f.admin = f.host.Addr("admin")
	f.alice = f.host.Addr("alice")
	f.lp = f.host.Register("lp", cw20.New())
	f.staking = f.host.Register("staking", New())

	_, err := f.host.Instantiate(f.ctx, f.admin, f.lp, cw20.InstantiateMsg{
		Name: "LP", Symbol: "LP", Decimals: 6, Minter: f.admin,
		InitialBalances: []cw20.Balance{{Address: f.alice, Amount: sdkmath.NewInt(1000)}},
	}, nil)
	require.NoError(t, err)
	_, err = f.host.Instantiate(f.ctx, f.admin, f.staking, InstantiateMsg{Admin: f.admin, RewardDenom: rewardDenom}, nil)
	require.NoError(t, err)
	return f
}

func (f *fixture) deposit(t *testing.T, amount int64) {
	t.Helper()
	_, err := f.host.Execute(f.ctx, f.alice, f.lp, cw20.Send{Contract: f.staking, Amount: sdkmath.NewInt(amount), Msg: DepositHook{}}, nil)
	require.NoError(t, err)
}

func (f *fixture) deposited(t *testing.T) int64 {
	t.Helper()
	res, err := f.host.QueryWasm(f.ctx, f.staking, DepositQuery{LPToken: f.lp, User: f.alice})
	require.NoError(t, err)
	return res.(DepositResponse).Amount.Int64()
}

func (f *fixture) lpBalance(t *testing.T, addr types.Addr) int64 {
	t.Helper()
	res, err := f.host.QueryWasm(f.ctx, f.lp, cw20.BalanceQuery{Address: addr})
	require.NoError(t, err)
	return res.(cw20.BalanceResponse).Balance.Int64()
}

func (f *fixture) pending(t *testing.T) sdk.Coins {
	t.Helper()
	res, err := f.host.QueryWasm(f.ctx, f.staking, PendingRewardsQuery{LPToken: f.lp, User: f.alice})
	require.NoError(t, err)
	return res.(PendingRewardsResponse).Rewards
}

func TestDepositAndWithdraw(t *testing.T) {
	f := setup(t)
	f.deposit(t, 400)
	f.deposit(t, 100)
	assert.Equal(t, int64(500), f.deposited(t))
	assert.Equal(t, int64(500), f.lpBalance(t, f.staking))

	_, err := f.host.Execute(f.ctx, f.alice, f.staking, Withdraw{LPToken: f.lp, Amount: sdkmath.NewInt(501)}, nil)
	assert.ErrorIs(t, err, types.ErrInsufficientFunds)

	_, err = f.host.Execute(f.ctx, f.alice, f.staking, Withdraw{LPToken: f.lp, Amount: sdkmath.ZeroInt()}, nil)
	assert.ErrorIs(t, err, types.ErrInvalidRequest)

	_, err = f.host.Execute(f.ctx, f.alice, f.staking, Withdraw{LPToken: f.lp, Amount: sdkmath.NewInt(200)}, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(300), f.deposited(t))
	assert.Equal(t, int64(700), f.lpBalance(t, f.alice))
}

func TestReceiveRejectsUnknownHook(t *testing.T) {
	f := setup(t)
	_, err := f.host.Execute(f.ctx, f.alice, f.lp, cw20.Send{Contract: f.staking, Amount: sdkmath.NewInt(10), Msg: "stake"}, nil)
	assert.ErrorIs(t, err, types.ErrUnknownMessage)
	assert.Equal(t, int64(1000), f.lpBalance(t, f.alice))
}

func TestAccrueAndClaimRewards(t *testing.T) {
	f := setup(t)
	f.deposit(t, 100)
	reward := sdk.NewCoins(sdk.NewInt64Coin(rewardDenom, 50))
	require.NoError(t, f.host.Mint(f.ctx, f.admin, reward.Add(sdk.NewInt64Coin("uatom", 5))))
	require.NoError(t, f.host.Mint(f.ctx, f.alice, reward))
	accrue := AccrueRewards{LPToken: f.lp, Staker: f.alice}

	tests := []struct {
		name    string
		sender  types.Addr
		funds   sdk.Coins
		wantErr error
	}{
		{"not admin", f.alice, reward, types.ErrUnauthorized},
		{"no funds", f.admin, nil, types.ErrInvalidFunds},
		{"wrong denom", f.admin, sdk.NewCoins(sdk.NewInt64Coin("uatom", 5)), types.ErrInvalidFunds},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.host.Execute(f.ctx, tc.sender, f.staking, accrue, tc.funds)
			assert.ErrorIs(t, err, tc.wantErr)
		})
	}
	assert.True(t, f.pending(t).Empty())

	_, err := f.host.Execute(f.ctx, f.admin, f.staking, accrue, reward)
	require.NoError(t, err)
	assert.Equal(t, reward, f.pending(t))

	_, err = f.host.Execute(f.ctx, f.alice, f.staking, ClaimRewards{LPToken: f.lp}, nil)
	require.NoError(t, err)
	assert.True(t, f.pending(t).Empty())
	bal, err := f.host.QueryBalance(f.ctx, f.alice, rewardDenom)
	require.NoError(t, err)
	assert.Equal(t, int64(100), bal.Amount.Int64())

	// claiming with nothing pending is a no-op
	res, err := f.host.Execute(f.ctx, f.alice, f.staking, ClaimRewards{LPToken: f.lp}, nil)
	require.NoError(t, err)
	amount, _ := res.Events[0].Get("amount")
	assert.Empty(t, amount)
}
