package types

import (
	errorsmod "cosmossdk.io/errors"
)

// Codespace groups every error raised by the vault and its collaborators.
const Codespace = "ampfarm"

// Registered error taxonomy. Every error aborts the whole message batch it was raised in.
var (
	ErrUnauthorized                 = errorsmod.Register(Codespace, 2, "unauthorized")
	ErrAssertionMinimumReceive      = errorsmod.Register(Codespace, 3, "assertion failed; minimum receive amount not met")
	ErrArithmeticOverflow           = errorsmod.Register(Codespace, 4, "arithmetic overflow")
	ErrArithmeticUnderflow          = errorsmod.Register(Codespace, 5, "arithmetic underflow")
	ErrDivideByZero                 = errorsmod.Register(Codespace, 6, "division by zero")
	ErrInsufficientCustodianBalance = errorsmod.Register(Codespace, 7, "insufficient custodian balance")
	ErrEmptyVault                   = errorsmod.Register(Codespace, 8, "vault has no bond shares")
	ErrInvalidRequest               = errorsmod.Register(Codespace, 9, "invalid request")
	ErrInvalidAsset                 = errorsmod.Register(Codespace, 10, "invalid asset")
	ErrInvalidFunds                 = errorsmod.Register(Codespace, 11, "invalid funds")
	ErrInvalidAddress               = errorsmod.Register(Codespace, 12, "invalid address")
	ErrInsufficientFunds            = errorsmod.Register(Codespace, 13, "insufficient funds")
	ErrNotFound                     = errorsmod.Register(Codespace, 14, "not found")
	ErrMaxCallDepth                 = errorsmod.Register(Codespace, 15, "maximum message dispatch depth exceeded")
	ErrUnknownMessage               = errorsmod.Register(Codespace, 16, "unknown message")
	ErrNoRewards                    = errorsmod.Register(Codespace, 17, "no rewards to compound")
)
