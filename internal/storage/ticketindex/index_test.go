package ticketindex_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/tzoracle/oracled/internal/core/state"
	"github.com/tzoracle/oracled/internal/storage/ticketindex"
)

func openIndex(t *testing.T) *ticketindex.Index {
	t.Helper()
	ix, err := ticketindex.Open(filepath.Join(t.TempDir(), "tickets.db"), zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { ix.Close() })
	return ix
}

func TestUpsertAndGet(t *testing.T) {
	ix := openIndex(t)
	ctx := context.Background()

	tk := &state.RequestTicket{
		Pair:             "BTCETH",
		TargetAddress:    "KT1BEqzn5Wx8uJrZNvuS9DVHmLvG9td3fDLi",
		TargetEntrypoint: "receive",
		Status:           state.Pending,
		CreatedAt:        31,
	}
	require.NoError(t, ix.Upsert(ctx, 0, tk))

	row, err := ix.Get(ctx, 0)
	require.NoError(t, err)
	require.NotNil(t, row)
	require.Equal(t, "pending", row.Status)
	require.Equal(t, int64(31), row.CreatedAt)

	// Fulfillment overwrites status, not identity.
	tk.Status = state.Fulfilled
	tk.FulfilledAt = 60
	require.NoError(t, ix.Upsert(ctx, 0, tk))

	row, err = ix.Get(ctx, 0)
	require.NoError(t, err)
	require.Equal(t, "fulfilled", row.Status)
	require.Equal(t, int64(60), row.FulfilledAt)
	require.Equal(t, int64(31), row.CreatedAt)
}

func TestGetMissing(t *testing.T) {
	ix := openIndex(t)

	row, err := ix.Get(context.Background(), 99)
	require.NoError(t, err)
	require.Nil(t, row)
}

func TestListByStatus(t *testing.T) {
	ix := openIndex(t)
	ctx := context.Background()

	for i := uint64(0); i < 4; i++ {
		status := state.Pending
		if i%2 == 0 {
			status = state.Fulfilled
		}
		require.NoError(t, ix.Upsert(ctx, i, &state.RequestTicket{
			Pair:             "BTCETH",
			TargetAddress:    "KT1BEqzn5Wx8uJrZNvuS9DVHmLvG9td3fDLi",
			TargetEntrypoint: "receive",
			Status:           status,
			CreatedAt:        int64(i),
		}))
	}

	pending, err := ix.ListByStatus(ctx, "pending", 10)
	require.NoError(t, err)
	require.Len(t, pending, 2)
	// Newest first.
	require.Equal(t, uint64(3), pending[0].ID)
	require.Equal(t, uint64(1), pending[1].ID)

	one, err := ix.ListByStatus(ctx, "pending", 1)
	require.NoError(t, err)
	require.Len(t, one, 1)
}
