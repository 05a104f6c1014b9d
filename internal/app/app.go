// Package app deploys the vault and its collaborators on a host.
package app

import (
	"context"
	"fmt"
	"sort"

	sdkmath "cosmossdk.io/math"
	dbm "github.com/cosmos/cosmos-db"
	"github.com/rs/zerolog"

	"github.com/elys-network/ampfarm/internal/contracts/compounder"
	"github.com/elys-network/ampfarm/internal/contracts/cw20"
	"github.com/elys-network/ampfarm/internal/contracts/staking"
	"github.com/elys-network/ampfarm/internal/host"
	"github.com/elys-network/ampfarm/internal/logger"
	"github.com/elys-network/ampfarm/internal/types"
	"github.com/elys-network/ampfarm/internal/vault"
)

// Contract labels. Addresses are derived from them, so they must never change.
const (
	LabelLPToken    = "lp-token"
	LabelAmpLPToken = "amp-lp-token"
	LabelStaking    = "staking"
	LabelCompounder = "compound-proxy"
	LabelVault      = "vault"
	LabelAdmin      = "admin"
)

type Config struct {
	Prefix         string
	ControllerName string
	RewardDenom    string
	RewardLPRate   sdkmath.LegacyDec
	ComponentRates map[string]sdkmath.LegacyDec
	SwapFee        sdkmath.LegacyDec
}

// App is a deployed vault.
type App struct {
	Host  *host.Host
	Vault *vault.Client

	LPToken    types.Addr
	AmpLPToken types.Addr
	Staking    types.Addr
	Compounder types.Addr
	VaultAddr  types.Addr
	Admin      types.Addr
	Controller types.Addr

	cfg    Config
	logger zerolog.Logger
}

// New registers every contract on a host over db and instantiates those that are not
// yet instantiated, so it is safe to call on an existing store.
func New(ctx context.Context, db dbm.DB, cfg Config, opts ...host.Option) (*App, error) {
	h := host.New(db, cfg.Prefix, opts...)
	a := &App{
		Host:       h,
		LPToken:    h.Register(LabelLPToken, cw20.New()),
		AmpLPToken: h.Register(LabelAmpLPToken, cw20.New()),
		Staking:    h.Register(LabelStaking, staking.New()),
		Compounder: h.Register(LabelCompounder, compounder.New()),
		VaultAddr:  h.Register(LabelVault, vault.New()),
		Admin:      h.Addr(LabelAdmin),
		Controller: h.Addr(cfg.ControllerName),
		cfg:        cfg,
		logger:     logger.GetForComponent("app"),
	}
	a.Vault = vault.NewClient(h, a.VaultAddr, a.Controller)

	if err := a.deploy(ctx); err != nil {
		return nil, err
	}
	return a, nil
}

func (a *App) routes() []compounder.Route {
	routes := []compounder.Route{{Offer: types.NativeAssetInfo(a.cfg.RewardDenom), Rate: a.cfg.RewardLPRate}}
	denoms := make([]string, 0, len(a.cfg.ComponentRates))
	for denom := range a.cfg.ComponentRates {
		if denom != a.cfg.RewardDenom {
			denoms = append(denoms, denom)
		}
	}
	sort.Strings(denoms)
	for _, denom := range denoms {
		routes = append(routes, compounder.Route{Offer: types.NativeAssetInfo(denom), Rate: a.cfg.ComponentRates[denom]})
	}
	return routes
}

func (a *App) deploy(ctx context.Context) error {
	steps := []struct {
		name     string
		contract types.Addr
		msg      any
	}{
		{"lp token", a.LPToken, cw20.InstantiateMsg{Name: "Pool LP", Symbol: "LP", Decimals: 6, Minter: a.Compounder}},
		{"share token", a.AmpLPToken, cw20.InstantiateMsg{Name: "Amplified LP", Symbol: "ampLP", Decimals: 6, Minter: a.VaultAddr}},
		{"staking", a.Staking, staking.InstantiateMsg{Admin: a.Admin, RewardDenom: a.cfg.RewardDenom}},
		{"compounder", a.Compounder, compounder.InstantiateMsg{LPToken: a.LPToken, Routes: a.routes(), SwapFee: a.cfg.SwapFee}},
		{"vault", a.VaultAddr, vault.InstantiateMsg{
			LPToken:         a.LPToken.String(),
			StakingContract: a.Staking.String(),
			CompoundProxy:   a.Compounder.String(),
			Controller:      a.Controller.String(),
			AmpLPToken:      a.AmpLPToken.String(),
		}},
	}

	for _, step := range steps {
		done, err := a.Host.IsInstantiated(step.contract)
		if err != nil {
			return err
		}
		if done {
			continue
		}
		if _, err := a.Host.Instantiate(ctx, a.Admin, step.contract, step.msg, nil); err != nil {
			return fmt.Errorf("failed to instantiate %s: %w", step.name, err)
		}
		a.logger.Info().Str("contract", step.contract.String()).Msgf("Instantiated %s", step.name)
	}
	return nil
}

// Account derives a named user account on this host.
func (a *App) Account(name string) types.Addr {
	return a.Host.Addr("account/" + name)
}
