/*

Asset types shared by the vault and its collaborators. An asset is either a native bank denom
or a token contract; both carry an integer amount in base units.

*/

package types

import (
	"fmt"

	errorsmod "cosmossdk.io/errors"
	sdkmath "cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"
)

type AssetInfo struct {
	Token       Addr   `json:"token,omitempty"`        // e.g., the LP token contract address
	NativeDenom string `json:"native_denom,omitempty"` // e.g., "uelys"
}

type Asset struct {
	Info   AssetInfo   `json:"info"`
	Amount sdkmath.Int `json:"amount"`
}

func NativeAssetInfo(denom string) AssetInfo { return AssetInfo{NativeDenom: denom} }

func TokenAssetInfo(contract Addr) AssetInfo { return AssetInfo{Token: contract} }

func NativeAsset(denom string, amount sdkmath.Int) Asset {
	return Asset{Info: NativeAssetInfo(denom), Amount: amount}
}

func TokenAsset(contract Addr, amount sdkmath.Int) Asset {
	return Asset{Info: TokenAssetInfo(contract), Amount: amount}
}

func (i AssetInfo) IsNative() bool { return i.NativeDenom != "" }

func (i AssetInfo) String() string {
	if i.IsNative() {
		return i.NativeDenom
	}
	return i.Token.String()
}

func (i AssetInfo) Equal(o AssetInfo) bool {
	return i.Token == o.Token && i.NativeDenom == o.NativeDenom
}

// Validate checks that exactly one of the two variants is set.
func (i AssetInfo) Validate() error {
	switch {
	case i.IsNative() && !i.Token.Empty():
		return errorsmod.Wrap(ErrInvalidAsset, "asset info cannot be both native and token")
	case i.IsNative():
		if err := sdk.ValidateDenom(i.NativeDenom); err != nil {
			return errorsmod.Wrap(ErrInvalidAsset, err.Error())
		}
	case i.Token.Empty():
		return errorsmod.Wrap(ErrInvalidAsset, "asset info is empty")
	}
	return nil
}

func (a Asset) Validate() error {
	if err := a.Info.Validate(); err != nil {
		return err
	}
	if a.Amount.IsNil() {
		return errorsmod.Wrapf(ErrInvalidAsset, "%s: amount is nil", a.Info)
	}
	if a.Amount.IsNegative() {
		return errorsmod.Wrapf(ErrInvalidAsset, "%s: amount is negative", a.Info)
	}
	return nil
}

// ToCoin converts a native asset into a bank coin.
func (a Asset) ToCoin() (sdk.Coin, error) {
	if !a.Info.IsNative() {
		return sdk.Coin{}, errorsmod.Wrapf(ErrInvalidAsset, "%s is not a native asset", a.Info)
	}
	return sdk.NewCoin(a.Info.NativeDenom, a.Amount), nil
}

func (a Asset) String() string {
	return fmt.Sprintf("%s%s", a.Amount, a.Info)
}
