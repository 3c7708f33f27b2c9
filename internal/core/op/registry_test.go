package op_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tzoracle/oracled/internal/core/op"
	"github.com/tzoracle/oracled/internal/oracletest"
)

func TestFromJSONGetPrice(t *testing.T) {
	data := []byte(`{
		"kind": "get_price",
		"caller": "` + oracletest.Bob + `",
		"amount": 1000,
		"pair": "BTCETH",
		"target_address": "` + oracletest.Contract + `",
		"target_entrypoint": "receive"
	}`)

	o, err := op.FromJSON(data)
	require.NoError(t, err)

	gp, ok := o.(*op.GetPrice)
	require.True(t, ok)
	require.Equal(t, oracletest.Bob, gp.Caller())
	require.Equal(t, uint64(1000), gp.Amount())
	require.Equal(t, "BTCETH", gp.Pair)
	require.Equal(t, oracletest.Contract, gp.TargetAddress)
	require.Equal(t, "receive", gp.TargetEntrypoint)
}

func TestFromJSONUpdate(t *testing.T) {
	data := []byte(`{
		"kind": "update",
		"caller": "` + oracletest.Bob + `",
		"pair": "BTCETH",
		"open_time": 15,
		"close_time": 30,
		"last_price": 1003,
		"low_price": 40,
		"high_price": 19000,
		"volume": 400,
		"quote_volume": 900,
		"request_id": 0,
		"target": "` + oracletest.Contract + `%receive"
	}`)

	o, err := op.FromJSON(data)
	require.NoError(t, err)

	u, ok := o.(*op.Update)
	require.True(t, ok)
	require.Equal(t, int64(30), u.CloseTime)
	require.Equal(t, uint64(1003), u.LastPrice)
	require.Equal(t, uint64(0), u.RequestID)
	require.Equal(t, oracletest.Contract+"%receive", u.Target)
}

func TestFromJSONUnknownKind(t *testing.T) {
	_, err := op.FromJSON([]byte(`{"kind": "mint_nft"}`))
	require.ErrorIs(t, err, op.ErrUnknownKind)
}

func TestFromJSONInvalidBody(t *testing.T) {
	_, err := op.FromJSON([]byte(`{`))
	require.Error(t, err)
}

func TestToJSONIncludesKind(t *testing.T) {
	o := oracletest.WhitelistUser(oracletest.Admin, oracletest.Bob)

	data, err := op.ToJSON(o)
	require.NoError(t, err)

	back, err := op.FromJSON(data)
	require.NoError(t, err)
	require.Equal(t, o, back)
}

func TestSupportedKindsRoundTrip(t *testing.T) {
	for _, kind := range op.SupportedKinds() {
		o, err := op.NewFromKind(kind)
		require.NoError(t, err)
		require.Equal(t, kind, o.Kind())
	}
}
