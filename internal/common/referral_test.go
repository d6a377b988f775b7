package common

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNormalizeReferralCode(t *testing.T) {
	require.Equal(t, "ALICE001", NormalizeReferralCode("alice001"))
	require.Equal(t, "ALICE", NormalizeReferralCode(" Alice "))
	require.Equal(t, "EVLEGACY", NormalizeReferralCode("ev-legacy"))
	require.Equal(t, "AB", NormalizeReferralCode("aéb"))
	require.Empty(t, NormalizeReferralCode("  --  "))
}
