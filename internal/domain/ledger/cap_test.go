package ledger

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestCapPolicy_Admit(t *testing.T) {
	tests := []struct {
		name       string
		baseCap    int64
		requested  int64
		multiplier int64
		already    int64
		want       int64
	}{
		{name: "under cap", baseCap: 3, requested: 1, multiplier: 1, already: 0, want: 1},
		{name: "clipped to remaining", baseCap: 3, requested: 5, multiplier: 1, already: 1, want: 2},
		{name: "full", baseCap: 3, requested: 1, multiplier: 1, already: 3, want: 0},
		{name: "over full", baseCap: 3, requested: 1, multiplier: 1, already: 7, want: 0},
		{name: "doubled cap", baseCap: 3, requested: 10, multiplier: 2, already: 0, want: 6},
		{name: "doubled amount", baseCap: 3, requested: 2, multiplier: 2, already: 0, want: 4},
		{name: "non positive request", baseCap: 3, requested: 0, multiplier: 2, already: 0, want: 0},
		{name: "negative request", baseCap: 3, requested: -4, multiplier: 1, already: 0, want: 0},
		{name: "zero multiplier behaves as one", baseCap: 3, requested: 2, multiplier: 0, already: 0, want: 2},
		{name: "unlimited", baseCap: 0, requested: 100, multiplier: 2, already: 1000, want: 200},
		{name: "unlimited max amount doubled", baseCap: 0, requested: math.MaxInt64, multiplier: 2, already: 0, want: math.MaxInt64},
		{name: "unlimited saturates counter", baseCap: 0, requested: math.MaxInt64, multiplier: 1, already: 10, want: math.MaxInt64 - 10},
		{name: "capped max amount doubled", baseCap: 3, requested: math.MaxInt64/2 + 1, multiplier: 2, already: 0, want: 6},
		{name: "capped max amount", baseCap: 3, requested: math.MaxInt64, multiplier: 1, already: 1, want: 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CapPolicy{BaseCap: tt.baseCap}.Admit(tt.requested, tt.multiplier, tt.already)
			require.Equal(t, tt.want, got)
		})
	}
}

func TestCapPolicy_NeverExceedsCap(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		policy := CapPolicy{BaseCap: rapid.Int64Range(1, 20).Draw(t, "baseCap")}
		multiplier := rapid.Int64Range(1, 3).Draw(t, "multiplier")
		requests := rapid.SliceOf(rapid.Int64Range(-5, 20)).Draw(t, "requests")

		var granted int64
		for _, r := range requests {
			admitted := policy.Admit(r, multiplier, granted)
			if admitted < 0 {
				t.Fatalf("negative admitted %d", admitted)
			}
			granted += admitted
		}

		if granted > policy.Cap(multiplier) {
			t.Fatalf("granted %d over cap %d", granted, policy.Cap(multiplier))
		}
	})
}

func TestCapPolicy_NeverNegative(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		policy := CapPolicy{BaseCap: rapid.Int64Range(0, 20).Draw(t, "baseCap")}
		requested := rapid.Int64().Draw(t, "requested")
		multiplier := rapid.Int64Range(-1, 4).Draw(t, "multiplier")
		already := rapid.Int64Range(0, math.MaxInt64).Draw(t, "already")

		if admitted := policy.Admit(requested, multiplier, already); admitted < 0 {
			t.Fatalf("negative admitted %d", admitted)
		}
	})
}
