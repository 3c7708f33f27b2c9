package freshness_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/tzoracle/oracled/internal/core/freshness"
	"github.com/tzoracle/oracled/internal/core/state"
)

func TestFreshBoundaryInclusive(t *testing.T) {
	rec := &state.PriceRecord{Pair: "BTCETH", CloseTime: 100}

	require.False(t, freshness.Fresh(rec, time.Unix(0, 0)))
	require.False(t, freshness.Fresh(rec, time.Unix(99, 0)))
	require.True(t, freshness.Fresh(rec, time.Unix(100, 0)), "now == close_time counts as fresh")
	require.True(t, freshness.Fresh(rec, time.Unix(101, 0)))
}

func TestFreshZeroRecordAlwaysFresh(t *testing.T) {
	// The never-updated sentinel has close_time 0.
	rec := state.NewPriceRecord("BTCETH")
	require.True(t, freshness.Fresh(rec, time.Unix(0, 0)))
	require.True(t, freshness.Fresh(rec, time.Now()))
}
