package pagination

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNormalizeAppliesDefaults(t *testing.T) {
	n := Normalize(Params{})
	require.Equal(t, 1, n.Page)
	require.Equal(t, DefaultLimit, n.Limit)

	n = Normalize(Params{Page: -3, Limit: 1000})
	require.Equal(t, 1, n.Page)
	require.Equal(t, MaxLimit, n.Limit)
}

func TestOffset(t *testing.T) {
	require.Equal(t, 0, Params{Page: 1, Limit: 20}.Offset())
	require.Equal(t, 40, Params{Page: 3, Limit: 20}.Offset())
	// unnormalized input still yields a sane offset
	require.Equal(t, 0, Params{}.Offset())
}

func TestMetaFor(t *testing.T) {
	meta := MetaFor(Params{Page: 2, Limit: 10}, 25)
	require.Equal(t, int64(25), meta.Total)
	require.Equal(t, 2, meta.Page)
	require.Equal(t, 10, meta.Limit)
	require.Equal(t, 3, meta.TotalPages)

	meta = MetaFor(Params{Page: 1, Limit: 10}, 0)
	require.Equal(t, 1, meta.TotalPages)
}
