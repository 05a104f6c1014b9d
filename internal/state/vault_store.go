package state

import (
	"context"
	"errors"
	"fmt"

	"cosmossdk.io/collections"

	"github.com/elys-network/ampfarm/internal/host"
	"github.com/elys-network/ampfarm/internal/types"
)

var (
	ConfigPrefix = collections.NewPrefix(0)
	StatePrefix  = collections.NewPrefix(1)
)

var (
	ErrConfigNotFound   = errors.New("vault config not found")
	ErrStateNotFound    = errors.New("vault state not found")
	ErrDBNotInitialized = errors.New("database not initialized")
)

// VaultStore persists the vault's two fixed records inside the contract's storage.
// Every write goes through the host's transaction branch, so it lands together with
// the rest of the batch or not at all.
type VaultStore struct {
	config collections.Item[types.Config]
	state  collections.Item[types.VaultState]
}

// NewVaultStore registers the vault records on sb. The caller builds the schema.
func NewVaultStore(sb *collections.SchemaBuilder) VaultStore {
	return VaultStore{
		config: collections.NewItem(sb, ConfigPrefix, "config", host.JSONValue[types.Config]()),
		state:  collections.NewItem(sb, StatePrefix, "state", host.JSONValue[types.VaultState]()),
	}
}

func (s VaultStore) LoadConfig(ctx context.Context) (types.Config, error) {
	cfg, err := s.config.Get(ctx)
	if errors.Is(err, collections.ErrNotFound) {
		return types.Config{}, ErrConfigNotFound
	}
	return cfg, err
}

func (s VaultStore) SaveConfig(ctx context.Context, cfg types.Config) error {
	return s.config.Set(ctx, cfg)
}

func (s VaultStore) LoadState(ctx context.Context) (types.VaultState, error) {
	st, err := s.state.Get(ctx)
	if errors.Is(err, collections.ErrNotFound) {
		return types.VaultState{}, ErrStateNotFound
	}
	return st, err
}

func (s VaultStore) SaveState(ctx context.Context, st types.VaultState) error {
	if st.TotalBondShare.IsNil() || st.TotalBondShare.IsNegative() {
		return fmt.Errorf("refusing to save invalid total bond share %v", st.TotalBondShare)
	}
	return s.state.Set(ctx, st)
}

// UpdateState loads the state, applies fn and saves the result. Nothing is written when fn fails.
func (s VaultStore) UpdateState(ctx context.Context, fn func(*types.VaultState) error) (types.VaultState, error) {
	st, err := s.LoadState(ctx)
	if err != nil {
		return types.VaultState{}, err
	}
	if err := fn(&st); err != nil {
		return types.VaultState{}, err
	}
	if err := s.SaveState(ctx, st); err != nil {
		return types.VaultState{}, err
	}
	return st, nil
}
