package timebase

import "testing"

func TestRescaleIdentity(t *testing.T) {
	r := Rational{Num: 1, Den: 90000}
	if got := Rescale(12345, r, r); got != 12345 {
		t.Fatalf("Rescale to the same base should be identity, got %d", got)
	}
}

func TestRescaleExactDivision(t *testing.T) {
	// 90000 Hz time base, 1 second in, should land exactly on 90000.
	got := Rescale(1, Microsecond, Rational{Num: 1, Den: 90000})
	if got != 0 {
		t.Fatalf("1us at 90kHz should round to 0, got %d", got)
	}
	got = Rescale(1_000_000, Microsecond, Rational{Num: 1, Den: 90000})
	if got != 90000 {
		t.Fatalf("1s at 90kHz should be 90000, got %d", got)
	}
}

func TestRescaleRoundsHalfAwayFromZero(t *testing.T) {
	// 3/2 -> exact half, should round up (away from zero).
	got := Rescale(3, Rational{Num: 1, Den: 2}, Rational{Num: 1, Den: 1})
	if got != 2 {
		t.Fatalf("expected half to round away from zero to 2, got %d", got)
	}
	got = Rescale(-3, Rational{Num: 1, Den: 2}, Rational{Num: 1, Den: 1})
	if got != -2 {
		t.Fatalf("expected negative half to round away from zero to -2, got %d", got)
	}
}

func TestRescaleNoOverflowAtFFmpegTypicalBases(t *testing.T) {
	// A multi-hour timestamp at a 1/1000000000 (nanosecond) time base would
	// overflow a naive int64 multiply-then-divide; math/big must carry it.
	hugeValue := int64(3600) * 24 * 365 * 1_000_000_000 // ~1 year, in ns units
	got := Rescale(hugeValue, Rational{Num: 1, Den: 1_000_000_000}, Microsecond)
	want := int64(3600) * 24 * 365 * 1_000_000
	if got != want {
		t.Fatalf("expected %d, got %d", want, got)
	}
}

func TestRescaleZeroDenominatorIsSafe(t *testing.T) {
	if got := Rescale(100, Rational{Num: 1, Den: 0}, Microsecond); got != 0 {
		t.Fatalf("expected 0 for a zero-denominator input base, got %d", got)
	}
	if got := Rescale(100, Microsecond, Rational{Num: 1, Den: 0}); got != 0 {
		t.Fatalf("expected 0 for a zero-denominator output base, got %d", got)
	}
}

func TestRationalFloat64(t *testing.T) {
	r := Rational{Num: 30000, Den: 1001}
	got := r.Float64()
	want := 30000.0 / 1001.0
	if got != want {
		t.Fatalf("expected %v, got %v", want, got)
	}
	if (Rational{}).Float64() != 0 {
		t.Fatalf("expected 0 for zero-denominator Float64")
	}
}

func TestRationalIsZero(t *testing.T) {
	if !(Rational{}).IsZero() {
		t.Fatalf("expected zero value to report IsZero")
	}
	if (Rational{Num: 1, Den: 90000}).IsZero() {
		t.Fatalf("expected a real rational not to report IsZero")
	}
}
