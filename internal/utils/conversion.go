/*
This file contains the checked integer arithmetic used by every share and balance computation,
plus conversions from SDK math types for display.
All on-ledger amounts are unsigned 128-bit quantities carried in sdkmath.Int.
*/

package utils

import (
	"errors"
	"fmt"
	"math"
	"math/big"

	errorsmod "cosmossdk.io/errors"
	sdkmath "cosmossdk.io/math"

	"github.com/elys-network/ampfarm/internal/types"
)

// Error definitions for zero-tolerance error handling
var (
	ErrInvalidPrecision = errors.New("precision is invalid")
	ErrAmountNil        = errors.New("amount is nil")
	ErrNotFinite        = errors.New("value is not finite")
	ErrConversionFailed = errors.New("conversion failed")
)

// MaxUint128 is the largest representable amount.
var MaxUint128 = sdkmath.NewIntFromBigInt(new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 128), big.NewInt(1)))

// CheckUint128 fails when x is nil, negative or wider than 128 bits.
func CheckUint128(x sdkmath.Int) error {
	if x.IsNil() {
		return ErrAmountNil
	}
	if x.IsNegative() {
		return errorsmod.Wrapf(types.ErrArithmeticUnderflow, "negative amount %s", x)
	}
	if x.GT(MaxUint128) {
		return errorsmod.Wrapf(types.ErrArithmeticOverflow, "%s exceeds 128 bits", x)
	}
	return nil
}

// CheckedAdd returns a+b or ErrArithmeticOverflow.
func CheckedAdd(a, b sdkmath.Int) (sdkmath.Int, error) {
	if err := checkOperands(a, b); err != nil {
		return sdkmath.Int{}, err
	}
	sum, err := a.SafeAdd(b)
	if err != nil {
		return sdkmath.Int{}, errorsmod.Wrapf(types.ErrArithmeticOverflow, "%s + %s", a, b)
	}
	if sum.GT(MaxUint128) {
		return sdkmath.Int{}, errorsmod.Wrapf(types.ErrArithmeticOverflow, "%s + %s", a, b)
	}
	return sum, nil
}

// CheckedSub returns a-b or ErrArithmeticUnderflow when b > a.
func CheckedSub(a, b sdkmath.Int) (sdkmath.Int, error) {
	if err := checkOperands(a, b); err != nil {
		return sdkmath.Int{}, err
	}
	if b.GT(a) {
		return sdkmath.Int{}, errorsmod.Wrapf(types.ErrArithmeticUnderflow, "%s - %s", a, b)
	}
	return a.Sub(b), nil
}

// MulDivFloor returns floor(a*b/c). The intermediate product may use up to 256 bits;
// the result must fit in 128 bits.
func MulDivFloor(a, b, c sdkmath.Int) (sdkmath.Int, error) {
	if err := checkOperands(a, b, c); err != nil {
		return sdkmath.Int{}, err
	}
	if c.IsZero() {
		return sdkmath.Int{}, errorsmod.Wrapf(types.ErrDivideByZero, "%s * %s / 0", a, b)
	}

	product := new(big.Int).Mul(a.BigInt(), b.BigInt())
	quotient := product.Quo(product, c.BigInt())
	if quotient.BitLen() > 128 {
		return sdkmath.Int{}, errorsmod.Wrapf(types.ErrArithmeticOverflow, "%s * %s / %s", a, b, c)
	}
	return sdkmath.NewIntFromBigInt(quotient), nil
}

func checkOperands(xs ...sdkmath.Int) error {
	for _, x := range xs {
		if err := CheckUint128(x); err != nil {
			return err
		}
	}
	return nil
}

// SDKIntToFloat64 converts an SDK Int to float64 with proper precision handling
func SDKIntToFloat64(amount sdkmath.Int, precision int) (float64, error) {
	if precision < 0 || precision > 18 {
		return 0, fmt.Errorf("%w: %d (must be between 0 and 18)", ErrInvalidPrecision, precision)
	}
	if amount.IsNil() {
		return 0, ErrAmountNil
	}
	if amount.IsNegative() {
		return 0, types.ErrArithmeticUnderflow
	}

	decAmount := sdkmath.LegacyNewDecFromInt(amount)
	factor := sdkmath.LegacyNewDec(1)
	for i := 0; i < precision; i++ {
		factor = factor.Mul(sdkmath.LegacyNewDec(10))
	}

	return decToFloat64(decAmount.Quo(factor))
}

// DecToFloat64 converts a decimal (an exchange rate, a conversion rate) to float64 for display.
func DecToFloat64(dec sdkmath.LegacyDec) (float64, error) {
	if dec.IsNil() {
		return 0, ErrAmountNil
	}
	return decToFloat64(dec)
}

func decToFloat64(dec sdkmath.LegacyDec) (float64, error) {
	resultFloat, err := dec.Float64()
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrConversionFailed, err)
	}
	if math.IsNaN(resultFloat) || math.IsInf(resultFloat, 0) {
		return 0, fmt.Errorf("%w: result is %f", ErrNotFinite, resultFloat)
	}
	return resultFloat, nil
}

// ParseAmount parses a decimal integer string into a 128-bit amount.
func ParseAmount(s string) (sdkmath.Int, error) {
	amount, ok := sdkmath.NewIntFromString(s)
	if !ok {
		return sdkmath.Int{}, errorsmod.Wrapf(types.ErrInvalidRequest, "invalid amount %q", s)
	}
	if err := CheckUint128(amount); err != nil {
		return sdkmath.Int{}, err
	}
	return amount, nil
}
