// Package money implements the fixed-point monetary value used for every
// cash, price, margin, and PnL computation in the simulation core.
package money

import (
	"errors"
	"fmt"
	"math"
	"math/big"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// Scale is the number of micro-units per whole base-currency unit (1 unit = 10⁻⁶).
const Scale int64 = 1_000_000

// Money is a signed count of micro-units. It is the sole arithmetic
// representation for cash, prices, margin, and PnL; floating point is only
// ever produced at the boundary (ratios, metrics) and never read back.
type Money int64

// Zero is the additive identity.
const Zero Money = 0

// ErrInvalidDecimal is returned when a string cannot be parsed as a decimal amount.
var ErrInvalidDecimal = errors.New("money: invalid decimal string")

// FromUnits constructs a Money value directly from a whole-unit count.
func FromUnits(units int64) Money {
	return Money(units * Scale)
}

// Parse reads a decimal string ("123.45", "-0.1", "7") into micro-units.
// The fractional part is padded or truncated to exactly 6 digits — it is
// never rounded, matching the fixed-point authority's parsing contract.
// shopspring/decimal normalizes the input first (sign, exponents, leading
// zeros) so the subsequent pad/truncate operates on a canonical string.
func Parse(s string) (Money, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, ErrInvalidDecimal
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrInvalidDecimal, err)
	}

	neg := d.Sign() < 0
	canon := d.Abs().String()

	whole, frac, found := strings.Cut(canon, ".")
	if !found {
		frac = ""
	}
	if len(frac) > 6 {
		frac = frac[:6]
	} else {
		frac = frac + strings.Repeat("0", 6-len(frac))
	}

	wholeVal, err := strconv.ParseInt(whole, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrInvalidDecimal, err)
	}
	fracVal, err := strconv.ParseInt(frac, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrInvalidDecimal, err)
	}

	total := wholeVal*Scale + fracVal
	if neg {
		total = -total
	}
	return Money(total), nil
}

// MustParse panics on a malformed decimal string; reserved for constants in tests.
func MustParse(s string) Money {
	m, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return m
}

// String formats the value as a decimal string with exactly 6 fractional digits.
func (m Money) String() string {
	v := int64(m)
	neg := v < 0
	if neg {
		v = -v
	}
	whole := v / Scale
	frac := v % Scale
	sign := ""
	if neg {
		sign = "-"
	}
	return fmt.Sprintf("%s%d.%06d", sign, whole, frac)
}

// ToFloat converts to a float64 dollar amount. Only ever used to produce a
// ratio or metric at the system boundary — never read back into Money.
func (m Money) ToFloat() float64 {
	return float64(m) / float64(Scale)
}

// FromFloat constructs a Money value from a float64 dollar amount, rounding
// half-to-even at the micro-unit boundary.
func FromFloat(f float64) Money {
	scaled := f * float64(Scale)
	return Money(int64(math.RoundToEven(scaled)))
}

// Add returns m + n.
func (m Money) Add(n Money) Money { return m + n }

// Sub returns m - n.
func (m Money) Sub(n Money) Money { return m - n }

// Neg returns -m.
func (m Money) Neg() Money { return -m }

// Cmp returns -1, 0, or 1 as m is less than, equal to, or greater than n.
func (m Money) Cmp(n Money) int {
	switch {
	case m < n:
		return -1
	case m > n:
		return 1
	default:
		return 0
	}
}

// IsZero reports whether m is exactly zero.
func (m Money) IsZero() bool { return m == 0 }

// MulInt multiplies m by a dimensionless integer scalar. The intermediate
// product is widened to a big.Int so a large money value times a large
// scalar cannot silently wrap an int64.
func (m Money) MulInt(scalar int64) Money {
	prod := new(big.Int).Mul(big.NewInt(int64(m)), big.NewInt(scalar))
	return Money(clampInt64(prod))
}

// MulFloat multiplies m by a dimensionless float64 scalar, rounding the
// result back to micro-units half-to-even. The scalar is itself first
// widened to a micro-unit integer so the multiply-then-scale step can run
// entirely in 128-bit-equivalent big.Int arithmetic, avoiding the
// precision loss of multiplying two float64s for currency-sized values.
func (m Money) MulFloat(scalar float64) Money {
	scalarMicro := big.NewInt(int64(math.RoundToEven(scalar * float64(Scale))))
	prod := new(big.Int).Mul(big.NewInt(int64(m)), scalarMicro)
	scale := big.NewInt(Scale)
	return Money(clampInt64(divRoundHalfEven(prod, scale)))
}

// DivInt divides m by a dimensionless integer scalar, rounding half-to-even.
func (m Money) DivInt(scalar int64) Money {
	if scalar == 0 {
		return 0
	}
	num := big.NewInt(int64(m))
	den := big.NewInt(scalar)
	return Money(clampInt64(divRoundHalfEven(num, den)))
}

// divRoundHalfEven computes num/den rounded to the nearest integer, ties
// rounding to even, returned as a big.Int.
func divRoundHalfEven(num, den *big.Int) *big.Int {
	q, r := new(big.Int).QuoRem(num, den, new(big.Int))
	if r.Sign() == 0 {
		return q
	}

	twiceR := new(big.Int).Mul(r, big.NewInt(2))
	twiceR.Abs(twiceR)
	denAbs := new(big.Int).Abs(den)

	cmp := twiceR.Cmp(denAbs)
	roundAway := cmp > 0 || (cmp == 0 && q.Bit(0) == 1)
	if !roundAway {
		return q
	}

	negResult := (num.Sign() < 0) != (den.Sign() < 0)
	one := big.NewInt(1)
	if negResult {
		return q.Sub(q, one)
	}
	return q.Add(q, one)
}

func clampInt64(v *big.Int) int64 {
	if v.IsInt64() {
		return v.Int64()
	}
	if v.Sign() < 0 {
		return math.MinInt64
	}
	return math.MaxInt64
}
