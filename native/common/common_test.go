package common

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCoverageTracksTiling(t *testing.T) {
	body := 19
	cov := make(Coverage, CoverageSize(body))
	require.Len(t, cov, 3)
	cov.Mark(10, 9)
	require.False(t, cov.Complete(body))
	cov.Mark(0, 10)
	require.True(t, cov.Complete(body))
	cov.Reset()
	require.False(t, cov.Complete(body))
	require.True(t, cov.Complete(0))
}

func TestCanonicalAddress(t *testing.T) {
	ids := DefaultProgramIDs()
	addr, bump := Canonical(ids.Bridge, []byte("bridge_state"))
	got, ok := IsCanonical(addr, ids.Bridge, []byte("bridge_state"))
	require.True(t, ok)
	require.Equal(t, bump, got)
	require.Len(t, SignerSeeds(bump, []byte("bridge_state")), 2)
	_, ok = IsCanonical(ids.Bridge, ids.Bridge, []byte("bridge_state"))
	require.False(t, ok)
}
