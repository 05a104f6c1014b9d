package types

import (
	"crypto/sha256"
	"strings"

	errorsmod "cosmossdk.io/errors"
	sdk "github.com/cosmos/cosmos-sdk/types"
	"github.com/cosmos/cosmos-sdk/types/bech32"
)

// Addr is a validated, canonical (lower-case bech32) account or contract address.
// Values of this type are never built from raw user input without ValidateAddr.
type Addr string

func (a Addr) String() string { return string(a) }

// Empty reports whether the address is unset.
func (a Addr) Empty() bool { return a == "" }

// ValidateAddr lower-cases raw, checks the bech32 checksum and human readable part,
// and returns the canonical re-encoding.
func ValidateAddr(prefix, raw string) (Addr, error) {
	lower := strings.ToLower(strings.TrimSpace(raw))
	if lower == "" {
		return "", errorsmod.Wrap(ErrInvalidAddress, "address is empty")
	}

	hrp, bz, err := bech32.DecodeAndConvert(lower)
	if err != nil {
		return "", errorsmod.Wrapf(ErrInvalidAddress, "%s: %s", raw, err)
	}
	if hrp != prefix {
		return "", errorsmod.Wrapf(ErrInvalidAddress, "%s: expected prefix %q, got %q", raw, prefix, hrp)
	}
	if err := sdk.VerifyAddressFormat(bz); err != nil {
		return "", errorsmod.Wrapf(ErrInvalidAddress, "%s: %s", raw, err)
	}

	canonical, err := bech32.ConvertAndEncode(hrp, bz)
	if err != nil {
		return "", errorsmod.Wrapf(ErrInvalidAddress, "%s: %s", raw, err)
	}
	return Addr(canonical), nil
}

// DeriveAddr deterministically derives a 32 byte address from a label.
// Contract addresses and named accounts are derived this way.
func DeriveAddr(prefix, label string) (Addr, error) {
	sum := sha256.Sum256([]byte(label))
	s, err := bech32.ConvertAndEncode(prefix, sum[:])
	if err != nil {
		return "", errorsmod.Wrapf(ErrInvalidAddress, "derive %q: %s", label, err)
	}
	return Addr(s), nil
}

// MustDeriveAddr is DeriveAddr for static labels; it panics on an invalid prefix.
func MustDeriveAddr(prefix, label string) Addr {
	addr, err := DeriveAddr(prefix, label)
	if err != nil {
		panic(err)
	}
	return addr
}
