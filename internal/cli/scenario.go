package cli

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"

	sdkmath "cosmossdk.io/math"
	dbm "github.com/cosmos/cosmos-db"
	sdk "github.com/cosmos/cosmos-sdk/types"
	"github.com/spf13/cobra"

	"github.com/elys-network/ampfarm/internal/app"
	"github.com/elys-network/ampfarm/internal/types"
	"github.com/elys-network/ampfarm/internal/vault"
)

const scenarioDenom = "uusdc"

var scenarioRewards int64

var scenarioCmd = &cobra.Command{
	Use:   "scenario",
	Short: "Run a bond, compound and unbond walkthrough on a throwaway in-memory vault",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := initConfig(); err != nil {
			return err
		}
		return runScenario(cmd.Context(), cmd.OutOrStdout(), scenarioRewards)
	},
}

func init() {
	scenarioCmd.Flags().Int64Var(&scenarioRewards, "rewards", 150, "reward units accrued before compounding")
	rootCmd.AddCommand(scenarioCmd)
}

type scenario struct {
	ctx context.Context
	app *app.App
	out *tabwriter.Writer
}

func runScenario(ctx context.Context, w io.Writer, rewards int64) error {
	cfg := appConfig()
	// LP is priced 1:1 so the walkthrough deals in round numbers.
	cfg.ComponentRates = map[string]sdkmath.LegacyDec{scenarioDenom: sdkmath.LegacyOneDec()}
	cfg.RewardLPRate = sdkmath.LegacyOneDec()

	a, err := app.New(ctx, dbm.NewMemDB(), cfg)
	if err != nil {
		return err
	}
	s := &scenario{ctx: ctx, app: a, out: tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)}
	alice, bob := a.Account("alice"), a.Account("bob")

	fmt.Fprintln(s.out, "step\tshares\tcustodied LP\tLP per share")
	steps := []struct {
		name string
		run  func() error
	}{
		{"alice bonds 1000 LP", func() error { return s.bondLP(alice, 1000) }},
		{"bob bonds 500 LP", func() error { return s.bondLP(bob, 500) }},
		{"alice unbonds 750 shares", func() error { return s.unbond(alice, 750) }},
		{fmt.Sprintf("compound %d rewards", rewards), func() error { return s.compound(rewards) }},
		{"bob unbonds 500 shares", func() error { return s.unbond(bob, 500) }},
	}
	for _, step := range steps {
		if err := step.run(); err != nil {
			return fmt.Errorf("%s: %w", step.name, err)
		}
		if err := s.report(step.name); err != nil {
			return err
		}
	}
	if err := s.out.Flush(); err != nil {
		return err
	}

	for _, user := range []struct {
		name string
		addr types.Addr
	}{{"alice", alice}, {"bob", bob}} {
		lp, err := a.LPBalance(ctx, user.addr)
		if err != nil {
			return err
		}
		info, err := a.Vault.GetUserInfo(ctx, user.addr.String())
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "%s: %s LP in wallet, %s shares worth %s LP\n", user.name, lp, info.BondShare, info.LPAmount)
	}
	return nil
}

func (s *scenario) bondLP(user types.Addr, amount int64) error {
	coins := sdk.NewCoins(sdk.NewInt64Coin(scenarioDenom, amount))
	if err := s.app.Faucet(s.ctx, user, coins); err != nil {
		return err
	}
	if _, err := s.app.ProvideLiquidity(s.ctx, user, coins, true); err != nil {
		return err
	}
	_, err := s.app.Vault.Bond(s.ctx, user, sdkmath.NewInt(amount))
	return err
}

func (s *scenario) unbond(user types.Addr, shares int64) error {
	_, err := s.app.Vault.Unbond(s.ctx, user, sdkmath.NewInt(shares))
	return err
}

func (s *scenario) compound(rewards int64) error {
	if rewards <= 0 {
		return nil
	}
	if _, err := s.app.AccrueRewards(s.ctx, sdkmath.NewInt(rewards)); err != nil {
		return err
	}
	_, err := s.app.Vault.Compound(s.ctx, vault.Compound{})
	return err
}

func (s *scenario) report(step string) error {
	st, err := s.app.Vault.GetState(s.ctx)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(s.out, "%s\t%s\t%s\t%s\n", step, st.TotalBondShare, st.TotalLPDeposit, st.ExchangeRate)
	return err
}
