// Package ledger converts between LP token amounts and bond share amounts.
//
// All functions are pure: they take the current custodied LP balance and the
// total issued bond shares and never touch storage. Both directions round
// down, so rounding dust always stays with the vault.
package ledger

import (
	errorsmod "cosmossdk.io/errors"
	sdkmath "cosmossdk.io/math"

	"github.com/elys-network/ampfarm/internal/types"
	"github.com/elys-network/ampfarm/internal/utils"
)

// SharesForDeposit returns the bond shares minted for lpAmount.
// An empty vault (totalBondShare == 0) mints 1:1, otherwise
// floor(lpAmount * totalBondShare / totalLPCustodied).
func SharesForDeposit(lpAmount, totalLPCustodied, totalBondShare sdkmath.Int) (sdkmath.Int, error) {
	if err := utils.CheckUint128(lpAmount); err != nil {
		return sdkmath.Int{}, err
	}
	if err := utils.CheckUint128(totalBondShare); err != nil {
		return sdkmath.Int{}, err
	}
	if totalBondShare.IsZero() {
		return lpAmount, nil
	}
	return utils.MulDivFloor(lpAmount, totalBondShare, totalLPCustodied)
}

// LPForShares returns the LP amount redeemable for shareAmount:
// floor(shareAmount * totalLPCustodied / totalBondShare).
func LPForShares(shareAmount, totalLPCustodied, totalBondShare sdkmath.Int) (sdkmath.Int, error) {
	if err := utils.CheckUint128(totalBondShare); err != nil {
		return sdkmath.Int{}, err
	}
	if totalBondShare.IsZero() {
		return sdkmath.Int{}, errorsmod.Wrap(types.ErrEmptyVault, "cannot redeem against an empty vault")
	}
	return utils.MulDivFloor(shareAmount, totalLPCustodied, totalBondShare)
}

// ExchangeRate is the LP value of one bond share. An empty vault reports 1.
func ExchangeRate(totalLPCustodied, totalBondShare sdkmath.Int) sdkmath.LegacyDec {
	if totalBondShare.IsNil() || totalBondShare.IsZero() || totalLPCustodied.IsNil() {
		return sdkmath.LegacyOneDec()
	}
	return sdkmath.LegacyNewDecFromInt(totalLPCustodied).QuoInt(totalBondShare)
}
