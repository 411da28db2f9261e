// Package timebase implements the rational rescale arithmetic spec.md's
// TimeMap is built on (av_rescale_q in the original). No example repo in
// the corpus imports a rational-arithmetic dependency for anything like
// this, so it is implemented directly on math/big to avoid int64 overflow
// at FFmpeg-typical time bases (see DESIGN.md).
package timebase

import "math/big"

// Rational is a fraction, e.g. a stream time base (1/90000) or frame rate
// (30000/1001).
type Rational struct {
	Num int64
	Den int64
}

// Microsecond is the portable time unit spec.md's TimeMap uses everywhere
// outside of container timestamps, i.e. Rational{1, 1_000_000}.
var Microsecond = Rational{Num: 1, Den: 1_000_000}

// IsZero reports whether r is the unset zero value.
func (r Rational) IsZero() bool {
	return r.Num == 0 && r.Den == 0
}

// Float64 returns r as a floating point ratio, 0 if the denominator is 0.
func (r Rational) Float64() float64 {
	if r.Den == 0 {
		return 0
	}
	return float64(r.Num) / float64(r.Den)
}

// Rescale converts value, expressed in units of `from`, into units of `to`,
// rounding to the nearest integer and rounding halves away from zero —
// the same convention av_rescale_q uses (AV_ROUND_NEAR_INF).
func Rescale(value int64, from, to Rational) int64 {
	if from.Den == 0 || to.Den == 0 || to.Num == 0 {
		return 0
	}
	// value * from.Num * to.Den / (from.Den * to.Num)
	num := new(big.Int).Mul(big.NewInt(value), big.NewInt(from.Num))
	num.Mul(num, big.NewInt(to.Den))
	den := new(big.Int).Mul(big.NewInt(from.Den), big.NewInt(to.Num))

	if den.Sign() < 0 {
		num.Neg(num)
		den.Neg(den)
	}

	result, rem := new(big.Int).QuoRem(num, den, new(big.Int))
	if rem.Sign() != 0 {
		twice := new(big.Int).Mul(rem, big.NewInt(2))
		twice.Abs(twice)
		if twice.Cmp(den) >= 0 {
			if num.Sign() < 0 {
				result.Sub(result, big.NewInt(1))
			} else {
				result.Add(result, big.NewInt(1))
			}
		}
	}
	return result.Int64()
}
