package asset

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/shopspring/decimal"
)

var (
	ErrNilAsset        = errors.New("asset: nil asset")
	ErrNilRaw          = errors.New("asset: nil raw value")
	ErrNegativeAmount  = errors.New("asset: negative amount")
	ErrAssetMismatch   = errors.New("asset: cannot operate on different assets")
	ErrNegativeResult  = errors.New("asset: operation would result in negative amount")
	ErrTooManyDecimals = errors.New("asset: too many decimal places for asset")
)

// Amount is an exact token quantity. The raw value is always in the
// token's smallest unit (wei for ETH, 1e-6 for USDC), which is what
// aggregator APIs expect on the wire. Decimal conversion happens only
// at the boundaries.
type Amount struct {
	raw   *big.Int
	asset *Asset
}

// NewAmount creates an Amount from a raw smallest-unit value.
func NewAmount(asset *Asset, raw *big.Int) Amount {
	if asset == nil {
		panic(ErrNilAsset)
	}
	if raw == nil {
		panic(ErrNilRaw)
	}
	if raw.Sign() < 0 {
		panic(ErrNegativeAmount)
	}

	return Amount{
		raw:   new(big.Int).Set(raw),
		asset: asset,
	}
}

// Zero returns a zero Amount of the given asset.
func Zero(asset *Asset) Amount {
	return NewAmount(asset, big.NewInt(0))
}

// Raw returns a copy of the raw smallest-unit value.
func (a Amount) Raw() *big.Int {
	if a.raw == nil {
		return big.NewInt(0)
	}
	return new(big.Int).Set(a.raw)
}

// Asset returns the asset this amount is denominated in.
func (a Amount) Asset() *Asset {
	return a.asset
}

func (a Amount) IsZero() bool {
	return a.raw == nil || a.raw.Sign() == 0
}

func (a Amount) IsPositive() bool {
	return a.raw != nil && a.raw.Sign() > 0
}

// Add adds two amounts of the same asset.
func (a Amount) Add(b Amount) (Amount, error) {
	if err := a.checkSameAsset(b); err != nil {
		return Amount{}, err
	}
	return NewAmount(a.asset, new(big.Int).Add(a.raw, b.raw)), nil
}

// Sub subtracts b from a. Amounts never go negative.
func (a Amount) Sub(b Amount) (Amount, error) {
	if err := a.checkSameAsset(b); err != nil {
		return Amount{}, err
	}
	if a.raw.Cmp(b.raw) < 0 {
		return Amount{}, ErrNegativeResult
	}
	return NewAmount(a.asset, new(big.Int).Sub(a.raw, b.raw)), nil
}

// Cmp compares two amounts of the same asset.
func (a Amount) Cmp(b Amount) (int, error) {
	if err := a.checkSameAsset(b); err != nil {
		return 0, err
	}
	return a.raw.Cmp(b.raw), nil
}

// Equals reports whether both amounts have the same asset and value.
func (a Amount) Equals(b Amount) bool {
	if !a.asset.ID().Equals(b.asset.ID()) {
		return false
	}
	return a.raw.Cmp(b.raw) == 0
}

// ToDecimal converts to a human-scale decimal (1e18 wei -> 1).
func (a Amount) ToDecimal() decimal.Decimal {
	if a.raw == nil || a.asset == nil {
		return decimal.Zero
	}
	return decimal.NewFromBigInt(a.raw, -int32(a.asset.Decimals()))
}

// ParseDecimal creates an Amount from a human-scale decimal. Values
// with more fractional digits than the asset carries are rejected
// rather than silently truncated.
func ParseDecimal(asset *Asset, d decimal.Decimal) (Amount, error) {
	if asset == nil {
		return Amount{}, ErrNilAsset
	}
	if d.IsNegative() {
		return Amount{}, ErrNegativeAmount
	}

	scaled := d.Shift(int32(asset.Decimals()))
	if !scaled.Equal(scaled.Truncate(0)) {
		return Amount{}, ErrTooManyDecimals
	}

	return NewAmount(asset, scaled.BigInt()), nil
}

// ParseString creates an Amount from a decimal string.
func ParseString(asset *Asset, s string) (Amount, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Amount{}, fmt.Errorf("asset: invalid decimal string: %w", err)
	}
	return ParseDecimal(asset, d)
}

// String returns a human-readable representation, e.g. "1.5 ETH".
func (a Amount) String() string {
	if a.asset == nil {
		return "0 ???"
	}
	return fmt.Sprintf("%s %s", a.ToDecimal().String(), a.asset.Symbol())
}

func (a Amount) checkSameAsset(b Amount) error {
	if a.asset == nil || b.asset == nil {
		return ErrNilAsset
	}
	if !a.asset.ID().Equals(b.asset.ID()) {
		return fmt.Errorf("%w: %s vs %s", ErrAssetMismatch, a.asset.Symbol(), b.asset.Symbol())
	}
	return nil
}
