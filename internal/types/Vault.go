package types

import (
	sdkmath "cosmossdk.io/math"
)

// Config holds the collaborator references of a vault. It is written once at instantiation.
type Config struct {
	LPToken         Addr `json:"lp_token"`         // pooled LP asset (token contract)
	StakingContract Addr `json:"staking_contract"` // custodian holding the bonded LP
	CompoundProxy   Addr `json:"compound_proxy"`   // compounding engine
	Controller      Addr `json:"controller"`       // allowed to trigger reward compounding
}

// VaultState is the mutable share accounting of a vault.
// TotalBondShare is zero exactly when no LP is custodied on behalf of shareholders.
type VaultState struct {
	TotalBondShare sdkmath.Int `json:"total_bond_share"`
	AmpLPToken     Addr        `json:"amp_lp_token"` // bond share token
}
