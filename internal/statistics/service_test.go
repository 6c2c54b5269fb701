package statistics

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestUtilizationPct(t *testing.T) {
	require.Equal(t, 50.0, utilizationPct(4, 8))
	require.Equal(t, 33.33, utilizationPct(1, 3))

	// clamped to the 0..100 range
	require.Equal(t, 100.0, utilizationPct(30, 8))
	require.Equal(t, 0.0, utilizationPct(-1, 8))

	// zero capacity cannot divide
	require.Equal(t, 0.0, utilizationPct(5, 0))
}

func TestRound2(t *testing.T) {
	require.Equal(t, 1.23, round2(1.2349))
	require.Equal(t, 1.24, round2(1.235))
	require.Equal(t, 0.0, round2(0))
}

func TestToBuckets(t *testing.T) {
	buckets := toBuckets([]Distribution{
		{Label: "running", Count: 7},
		{Label: "archived", Count: 2},
	})
	require.Len(t, buckets, 2)
	require.Equal(t, "running", buckets[0].Label)
	require.Equal(t, int64(7), buckets[0].Count)
}
