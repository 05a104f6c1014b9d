package vault

import (
	"context"

	sdkmath "cosmossdk.io/math"

	"github.com/elys-network/ampfarm/internal/host"
	"github.com/elys-network/ampfarm/internal/types"
)

// VaultManager defines the operator view of a deployed vault.
// The web API and the harvester depend on this rather than on the host directly.
type VaultManager interface {
	// GetConfig returns the collaborator references of the vault.
	GetConfig(ctx context.Context) (types.Config, error)

	// GetState returns total shares, custodied LP and the LP value of one share.
	GetState(ctx context.Context) (StateResponse, error)

	// GetUserInfo returns the shares held by address and their LP value.
	GetUserInfo(ctx context.Context, address string) (UserInfoResponse, error)

	// SimulateBond returns the shares a bond of lpAmount would mint right now.
	SimulateBond(ctx context.Context, lpAmount sdkmath.Int) (sdkmath.Int, error)

	// SimulateUnbond returns the LP that redeeming shares would pay right now.
	SimulateUnbond(ctx context.Context, shares sdkmath.Int) (sdkmath.Int, error)

	// Compound reinvests pending rewards as the controller.
	Compound(ctx context.Context, msg Compound) (*host.Result, error)
}
