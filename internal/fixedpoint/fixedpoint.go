// Package fixedpoint provides deterministic 256-bit unsigned integer helpers
// for basis-point math, saturating arithmetic and order statistics.
//
// Every amount is an unsigned integer in the smallest unit of its asset
// (wei for 18-decimal tokens). Rates are expressed in basis points.
package fixedpoint

import (
	"fmt"
	"math/big"

	"github.com/holiman/uint256"
	"github.com/shopspring/decimal"

	"github.com/fd1az/arbitrage-analyzer/internal/apperror"
)

const (
	// BPS is the basis-point scale (100 bps = 1%).
	BPS = 10_000

	// Decimals is the number of decimals of the PRECISION scale.
	Decimals = 18
)

var (
	bpsScale  = uint256.NewInt(BPS)
	precision = uint256.NewInt(1_000_000_000_000_000_000)
)

// Precision returns a fresh copy of the 1e18 fixed-point scale.
func Precision() *uint256.Int {
	return precision.Clone()
}

// BPSScale returns a fresh copy of the basis-point scale as a uint256.
func BPSScale() *uint256.Int {
	return bpsScale.Clone()
}

// Zero returns a new zero value.
func Zero() *uint256.Int {
	return new(uint256.Int)
}

// Bps applies a basis-point rate to amount: amount * bps / 10000, truncated.
func Bps(amount *uint256.Int, bps uint64) (*uint256.Int, error) {
	if amount == nil {
		return nil, apperror.New(apperror.CodeInvalidInput,
			apperror.WithContext("nil amount"))
	}
	return MulDiv(amount, uint256.NewInt(bps), bpsScale)
}

// SaturatingSub returns a-b, or zero when b > a.
func SaturatingSub(a, b *uint256.Int) *uint256.Int {
	if a == nil {
		return Zero()
	}
	if b == nil {
		return a.Clone()
	}
	if a.Lt(b) {
		return Zero()
	}
	return new(uint256.Int).Sub(a, b)
}

// Add returns a+b, failing on 256-bit overflow.
func Add(a, b *uint256.Int) (*uint256.Int, error) {
	sum, overflow := new(uint256.Int).AddOverflow(a, b)
	if overflow {
		return nil, apperror.New(apperror.CodeArithmeticOverflow,
			apperror.WithContext(fmt.Sprintf("%s + %s", a.Dec(), b.Dec())))
	}
	return sum, nil
}

// Mul returns a*b, failing on 256-bit overflow.
func Mul(a, b *uint256.Int) (*uint256.Int, error) {
	product, overflow := new(uint256.Int).MulOverflow(a, b)
	if overflow {
		return nil, apperror.New(apperror.CodeArithmeticOverflow,
			apperror.WithContext(fmt.Sprintf("%s * %s", a.Dec(), b.Dec())))
	}
	return product, nil
}

// MulDiv returns a*b/d using a 512-bit intermediate, truncating.
// It fails when d is zero or the quotient does not fit in 256 bits.
func MulDiv(a, b, d *uint256.Int) (*uint256.Int, error) {
	if d == nil || d.IsZero() {
		return nil, apperror.New(apperror.CodeDivisionByZero)
	}
	result, overflow := new(uint256.Int).MulDivOverflow(a, b, d)
	if overflow {
		return nil, apperror.New(apperror.CodeArithmeticOverflow,
			apperror.WithContext(fmt.Sprintf("%s * %s / %s", a.Dec(), b.Dec(), d.Dec())))
	}
	return result, nil
}

// Div returns a/d, truncating. Division by zero yields zero, matching the
// BPS-safe guard used for ratios and shares.
func Div(a, d *uint256.Int) *uint256.Int {
	if d == nil || d.IsZero() {
		return Zero()
	}
	return new(uint256.Int).Div(a, d)
}

// DeviationBps returns |p1-p2| * 10000 / max(p1, p2).
// A zero price is invalid data and fails with CodeInvalidPrice.
func DeviationBps(p1, p2 *uint256.Int) (uint64, error) {
	if p1 == nil || p2 == nil || p1.IsZero() || p2.IsZero() {
		return 0, apperror.New(apperror.CodeInvalidPrice,
			apperror.WithContext("deviation requires two non-zero prices"))
	}

	hi, lo := p1, p2
	if p2.Gt(p1) {
		hi, lo = p2, p1
	}
	diff := new(uint256.Int).Sub(hi, lo)

	// diff <= hi, so the result is at most BPS and never overflows.
	dev, err := MulDiv(diff, bpsScale, hi)
	if err != nil {
		return 0, err
	}
	return dev.Uint64(), nil
}

// Sqrt returns floor(sqrt(x)) using Newton's method.
func Sqrt(x *uint256.Int) *uint256.Int {
	if x == nil {
		return Zero()
	}
	if x.LtUint64(2) {
		return x.Clone()
	}

	one := uint256.NewInt(1)

	// z0 = (x+1)/2, computed as x/2 + 1 when x is max uint256.
	z := new(uint256.Int)
	if _, overflow := z.AddOverflow(x, one); overflow {
		z.Rsh(x, 1)
		z.Add(z, one)
	} else {
		z.Rsh(z, 1)
	}

	y := x.Clone()
	for z.Lt(y) {
		y.Set(z)
		// z = (x/z + z) / 2
		q := new(uint256.Int).Div(x, z)
		z.Add(q, z)
		z.Rsh(z, 1)
	}
	return y
}

// FromDecimal parses a human amount ("1.5") into base units with the given decimals.
// Extra fractional digits are truncated.
func FromDecimal(d decimal.Decimal, decimals int32) (*uint256.Int, error) {
	if d.IsNegative() {
		return nil, apperror.New(apperror.CodeInvalidInput,
			apperror.WithContext("negative amount: "+d.String()))
	}
	raw := d.Shift(decimals).Truncate(0).BigInt()
	v, overflow := uint256.FromBig(raw)
	if overflow {
		return nil, apperror.New(apperror.CodeArithmeticOverflow,
			apperror.WithContext("amount exceeds 256 bits: "+d.String()))
	}
	return v, nil
}

// ParseAmount parses a human decimal string into 18-decimal base units.
func ParseAmount(s string) (*uint256.Int, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return nil, apperror.New(apperror.CodeInvalidFormat,
			apperror.WithCause(err),
			apperror.WithContext("invalid amount: "+s))
	}
	return FromDecimal(d, Decimals)
}

// ToDecimal converts base units to a human decimal with the given decimals.
func ToDecimal(v *uint256.Int, decimals int32) decimal.Decimal {
	if v == nil {
		return decimal.Zero
	}
	return decimal.NewFromBigInt(v.ToBig(), -decimals)
}

// ToBig converts to *big.Int, treating nil as zero.
func ToBig(v *uint256.Int) *big.Int {
	if v == nil {
		return new(big.Int)
	}
	return v.ToBig()
}

// FromBig converts a non-negative *big.Int, failing on negative or oversized values.
func FromBig(b *big.Int) (*uint256.Int, error) {
	if b == nil {
		return Zero(), nil
	}
	if b.Sign() < 0 {
		return nil, apperror.New(apperror.CodeInvalidInput,
			apperror.WithContext("negative value: "+b.String()))
	}
	v, overflow := uint256.FromBig(b)
	if overflow {
		return nil, apperror.New(apperror.CodeArithmeticOverflow,
			apperror.WithContext("value exceeds 256 bits"))
	}
	return v, nil
}

// Max returns the larger of a and b.
func Max(a, b *uint256.Int) *uint256.Int {
	if a.Lt(b) {
		return b
	}
	return a
}

// Min returns the smaller of a and b.
func Min(a, b *uint256.Int) *uint256.Int {
	if b.Lt(a) {
		return b
	}
	return a
}

// Pow10 returns 10^n.
func Pow10(n uint8) *uint256.Int {
	return new(uint256.Int).Exp(uint256.NewInt(10), uint256.NewInt(uint64(n)))
}
