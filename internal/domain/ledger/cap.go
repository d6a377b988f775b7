package ledger

import "math"

// CapPolicy bounds the tickets a user receives within one reward day. The cap scales with the
// multiplier, so a doubled user can reach twice the base cap.
type CapPolicy struct {
	// BaseCap of zero means unlimited.
	BaseCap int64
}

func (p CapPolicy) Cap(multiplier int64) int64 {
	return mulSaturated(p.BaseCap, normalizeMultiplier(multiplier))
}

// Admit returns max(0, min(requested*multiplier, cap-alreadyGranted)). The product saturates
// at math.MaxInt64, so the result is never negative.
func (p CapPolicy) Admit(requested, multiplier, alreadyGranted int64) int64 {
	if requested <= 0 {
		return 0
	}

	want := mulSaturated(requested, normalizeMultiplier(multiplier))
	if p.BaseCap <= 0 {
		// The daily counter must still fit after the grant.
		return min(want, math.MaxInt64-max(alreadyGranted, 0))
	}

	remaining := p.Cap(multiplier) - max(alreadyGranted, 0)
	if remaining <= 0 {
		return 0
	}

	return min(want, remaining)
}

func normalizeMultiplier(m int64) int64 {
	if m < 1 {
		return 1
	}
	return m
}

// mulSaturated multiplies two non-negative values, clamping at math.MaxInt64.
func mulSaturated(a, m int64) int64 {
	if a <= 0 || m <= 0 {
		return 0
	}
	if a > math.MaxInt64/m {
		return math.MaxInt64
	}
	return a * m
}
