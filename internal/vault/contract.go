// Package vault is the auto-compounding LP vault: it issues bond shares against LP held by
// the staking custodian and completes asset deposits through a self-addressed callback.
package vault

import (
	"context"

	errorsmod "cosmossdk.io/errors"
	sdkmath "cosmossdk.io/math"
	"github.com/rs/zerolog"

	"github.com/elys-network/ampfarm/internal/adapters"
	"github.com/elys-network/ampfarm/internal/contracts/cw20"
	"github.com/elys-network/ampfarm/internal/host"
	"github.com/elys-network/ampfarm/internal/logger"
	"github.com/elys-network/ampfarm/internal/state"
	"github.com/elys-network/ampfarm/internal/types"
)

type Contract struct {
	store  state.VaultStore
	logger zerolog.Logger
}

func New() *Contract {
	sb := host.NewSchemaBuilder()
	c := &Contract{
		store:  state.NewVaultStore(sb),
		logger: logger.GetForComponent("vault"),
	}
	host.MustBuild(sb)
	return c
}

// collaborators bundles the typed handles built from the stored config.
type collaborators struct {
	cfg      types.Config
	lpToken  adapters.Token
	staking  adapters.StakingContract
	compound adapters.CompoundProxy
}

func loadCollaborators(ctx context.Context, store state.VaultStore) (collaborators, error) {
	cfg, err := store.LoadConfig(ctx)
	if err != nil {
		return collaborators{}, err
	}
	return collaborators{
		cfg:      cfg,
		lpToken:  adapters.Token{Addr: cfg.LPToken},
		staking:  adapters.StakingContract{Addr: cfg.StakingContract},
		compound: adapters.CompoundProxy{Addr: cfg.CompoundProxy},
	}, nil
}

func (c *Contract) Instantiate(ctx context.Context, deps host.Deps, env host.Env, _ host.MessageInfo, msg any) (*host.Response, error) {
	m, ok := msg.(InstantiateMsg)
	if !ok {
		return nil, errorsmod.Wrapf(types.ErrUnknownMessage, "vault instantiate: %T", msg)
	}

	var cfg types.Config
	var ampLPToken types.Addr
	for _, field := range []struct {
		raw  string
		dest *types.Addr
	}{
		{m.LPToken, &cfg.LPToken},
		{m.StakingContract, &cfg.StakingContract},
		{m.CompoundProxy, &cfg.CompoundProxy},
		{m.Controller, &cfg.Controller},
		{m.AmpLPToken, &ampLPToken},
	} {
		addr, err := deps.AddrValidate(field.raw)
		if err != nil {
			return nil, err
		}
		*field.dest = addr
	}
	if ampLPToken == cfg.LPToken {
		return nil, errorsmod.Wrap(types.ErrInvalidRequest, "share token must differ from the LP token")
	}

	info, err := adapters.Token{Addr: ampLPToken}.QueryTokenInfo(ctx, deps.Querier)
	if err != nil {
		return nil, err
	}
	if info.Minter != env.Contract {
		return nil, errorsmod.Wrapf(types.ErrInvalidRequest, "share token minter is %q, expected the vault", info.Minter)
	}
	if !info.TotalSupply.IsZero() {
		return nil, errorsmod.Wrap(types.ErrInvalidRequest, "share token must start with zero supply")
	}

	if err := c.store.SaveConfig(ctx, cfg); err != nil {
		return nil, err
	}
	if err := c.store.SaveState(ctx, types.VaultState{TotalBondShare: sdkmath.ZeroInt(), AmpLPToken: ampLPToken}); err != nil {
		return nil, err
	}

	c.logger.Info().
		Str("vault", env.Contract.String()).
		Str("lp_token", cfg.LPToken.String()).
		Str("amp_lp_token", ampLPToken.String()).
		Msg("Vault instantiated")
	return host.NewResponse().
		AddAttribute("action", "instantiate").
		AddAttribute("lp_token", cfg.LPToken).
		AddAttribute("amp_lp_token", ampLPToken), nil
}

func (c *Contract) Execute(ctx context.Context, deps host.Deps, env host.Env, info host.MessageInfo, msg any) (*host.Response, error) {
	switch m := msg.(type) {
	case BondAssets:
		return c.bondAssets(ctx, deps, env, info, m)
	case cw20.ReceiveMsg:
		if !info.Funds.Empty() {
			return nil, errorsmod.Wrap(types.ErrInvalidFunds, "token hooks carry no native funds")
		}
		switch hook := m.Msg.(type) {
		case BondHook:
			staker := m.Sender.String()
			if hook.StakerAddr != "" {
				staker = hook.StakerAddr
			}
			return c.bond(ctx, deps, env, info, staker, m.Amount)
		case UnbondHook:
			return c.unbond(ctx, deps, env, info, m.Sender.String(), m.Amount)
		default:
			return nil, errorsmod.Wrapf(types.ErrUnknownMessage, "vault receive: %T", m.Msg)
		}
	case Compound:
		return c.compound(ctx, deps, env, info, m)
	case BondTo:
		if err := host.AssertSelf(env, info); err != nil {
			return nil, err
		}
		return c.bondTo(ctx, deps, env, m)
	case Stake:
		if err := host.AssertSelf(env, info); err != nil {
			return nil, err
		}
		return c.stake(ctx, deps, env, m)
	default:
		return nil, errorsmod.Wrapf(types.ErrUnknownMessage, "vault: %T", msg)
	}
}
