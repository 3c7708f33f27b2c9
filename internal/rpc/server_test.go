package rpc_test

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/tzoracle/oracled/internal/core/effect"
	"github.com/tzoracle/oracled/internal/core/op"
	"github.com/tzoracle/oracled/internal/core/state"
	"github.com/tzoracle/oracled/internal/dispatch"
	"github.com/tzoracle/oracled/internal/oracletest"
	"github.com/tzoracle/oracled/internal/rpc"
	"github.com/tzoracle/oracled/internal/storage/statestore"
	"github.com/tzoracle/oracled/internal/storage/ticketindex"
)

// newTestServer wires the full server stack the way the daemon does, over a
// temp data dir, and serves it in process.
func newTestServer(t *testing.T) (*httptest.Server, *oracletest.ManualClock) {
	t.Helper()
	logger := zerolog.Nop()
	dir := t.TempDir()

	store, err := statestore.Open(filepath.Join(dir, "state"), logger)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	clock := oracletest.NewManualClock()
	engine := op.NewEngine(oracletest.GenesisStorage(), clock)
	engine.OnCommit(func(o op.Operation, draft *state.Storage, effects []effect.Effect) (uint64, error) {
		raw, err := op.ToJSON(o)
		if err != nil {
			return 0, err
		}
		entry := &statestore.LogEntry{
			Kind:      string(o.Kind()),
			Caller:    o.Caller(),
			Amount:    o.Amount(),
			Result:    op.Success.String(),
			AppliedAt: clock.Now().Unix(),
			Op:        raw,
		}
		if err := store.Commit(draft, entry); err != nil {
			return 0, err
		}
		return entry.Seq, nil
	})

	index, err := ticketindex.Open(filepath.Join(dir, "tickets.db"), logger)
	require.NoError(t, err)
	t.Cleanup(func() { index.Close() })

	hub := rpc.NewHub(logger)
	t.Cleanup(hub.Close)

	srv := rpc.NewServer("127.0.0.1:0", engine, store, index,
		dispatch.NewLogDispatcher(logger), hub, logger)

	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return ts, clock
}

func postOp(t *testing.T, ts *httptest.Server, body string) (int, map[string]json.RawMessage) {
	t.Helper()
	resp, err := http.Post(ts.URL+"/op", "application/json", strings.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()

	var out map[string]json.RawMessage
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return resp.StatusCode, out
}

func getJSON(t *testing.T, ts *httptest.Server, path string, v any) int {
	t.Helper()
	resp, err := http.Get(ts.URL + path)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(v))
	return resp.StatusCode
}

func getPriceBody(caller string, amount uint64) string {
	return fmt.Sprintf(`{"kind":"get_price","caller":%q,"amount":%d,"pair":%q,`+
		`"target_address":%q,"target_entrypoint":%q}`,
		caller, amount, oracletest.Pair, oracletest.Contract, oracletest.Receive)
}

func TestSubmitAndReadBack(t *testing.T) {
	ts, _ := newTestServer(t)

	status, out := postOp(t, ts, getPriceBody(oracletest.Bob, 0))
	require.Equal(t, http.StatusOK, status)
	require.JSONEq(t, `true`, string(out["applied"]))
	require.JSONEq(t, `0`, string(out["code"]))

	var effects []effect.Effect
	require.NoError(t, json.Unmarshal(out["effects"], &effects))
	require.Len(t, effects, 1)
	require.Equal(t, oracletest.FixtureLastPrice, effects[0].Payload.LastPrice)

	var counter map[string]uint64
	require.Equal(t, http.StatusOK, getJSON(t, ts, "/counter", &counter))
	require.Equal(t, uint64(1), counter["counter"])

	var tk state.RequestTicket
	require.Equal(t, http.StatusOK, getJSON(t, ts, "/requests/0", &tk))
	require.Equal(t, state.Fulfilled, tk.Status)

	var rec state.PriceRecord
	require.Equal(t, http.StatusOK, getJSON(t, ts, "/prices/"+oracletest.Pair, &rec))
	require.Equal(t, oracletest.FixtureLastPrice, rec.LastPrice)

	var entry statestore.LogEntry
	require.Equal(t, http.StatusOK, getJSON(t, ts, "/log/1", &entry))
	require.Equal(t, "get_price", entry.Kind)
	require.Equal(t, oracletest.Bob, entry.Caller)
}

func TestSubmitRejectsUnknownKind(t *testing.T) {
	ts, _ := newTestServer(t)

	status, _ := postOp(t, ts, `{"kind":"mint","caller":"x"}`)
	require.Equal(t, http.StatusBadRequest, status)
}

func TestSubmitFailedOperationNotApplied(t *testing.T) {
	ts, _ := newTestServer(t)

	body := fmt.Sprintf(`{"kind":"set_admin","caller":%q,"new_admin":%q}`,
		oracletest.Bob, oracletest.Bob)
	status, out := postOp(t, ts, body)
	require.Equal(t, http.StatusOK, status)
	require.JSONEq(t, `false`, string(out["applied"]))
	require.JSONEq(t, `100`, string(out["code"]))

	var st state.Storage
	require.Equal(t, http.StatusOK, getJSON(t, ts, "/storage", &st))
	require.Equal(t, oracletest.Admin, st.Admin)
}

func TestPriceUnknownPair(t *testing.T) {
	ts, _ := newTestServer(t)

	var out map[string]string
	require.Equal(t, http.StatusNotFound, getJSON(t, ts, "/prices/BTCXTZ", &out))
}

func TestRequestUnknownID(t *testing.T) {
	ts, _ := newTestServer(t)

	var out map[string]string
	require.Equal(t, http.StatusNotFound, getJSON(t, ts, "/requests/7", &out))
}

func TestEveryPendingTicketIndexed(t *testing.T) {
	ts, clock := newTestServer(t)
	clock.SetUnix(31) // before the fixture close_time, both requests defer

	_, out := postOp(t, ts, getPriceBody(oracletest.Bob, 500))
	require.JSONEq(t, `true`, string(out["applied"]))
	_, out = postOp(t, ts, getPriceBody(oracletest.Alice, 500))
	require.JSONEq(t, `true`, string(out["applied"]))

	// Each request lands in the index under its own id, newest first.
	var rows []ticketindex.Row
	require.Equal(t, http.StatusOK, getJSON(t, ts, "/requests?status=pending", &rows))
	require.Len(t, rows, 2)
	require.Equal(t, uint64(1), rows[0].ID)
	require.Equal(t, uint64(0), rows[1].ID)
}

func TestUpdateReindexesTicket(t *testing.T) {
	ts, clock := newTestServer(t)
	clock.SetUnix(31)

	_, out := postOp(t, ts, getPriceBody(oracletest.Bob, 0))
	require.JSONEq(t, `true`, string(out["applied"]))

	whitelist := fmt.Sprintf(`{"kind":"whitelist_user","caller":%q,"user":%q}`,
		oracletest.Admin, oracletest.Oscar)
	_, out = postOp(t, ts, whitelist)
	require.JSONEq(t, `true`, string(out["applied"]))

	clock.SetUnix(60)
	update := fmt.Sprintf(`{"kind":"update","caller":%q,"pair":%q,"request_id":0,`+
		`"target":"%s%%%s","open_time":15,"close_time":30,"last_price":1003,`+
		`"low_price":40,"high_price":19000,"volume":400,"quote_volume":900}`,
		oracletest.Oscar, oracletest.Pair, oracletest.Contract, oracletest.Receive)
	_, out = postOp(t, ts, update)
	require.JSONEq(t, `true`, string(out["applied"]))

	var rows []ticketindex.Row
	require.Equal(t, http.StatusOK, getJSON(t, ts, "/requests?status=fulfilled", &rows))
	require.Len(t, rows, 1)
	require.Equal(t, uint64(0), rows[0].ID)
	require.Equal(t, int64(60), rows[0].FulfilledAt)
}

func TestEventStreamDeliversAppliedOps(t *testing.T) {
	ts, _ := newTestServer(t)

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	conn, resp, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	if resp != nil {
		resp.Body.Close()
	}
	defer conn.Close()

	// Subscription registration races the upgrade handshake by a hair.
	time.Sleep(100 * time.Millisecond)

	_, out := postOp(t, ts, getPriceBody(oracletest.Bob, 0))
	require.JSONEq(t, `true`, string(out["applied"]))

	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)

	var ev rpc.Event
	require.NoError(t, json.Unmarshal(data, &ev))
	require.Equal(t, "op_applied", ev.Type)
	require.Equal(t, "get_price", ev.Kind)
	require.Equal(t, uint64(1), ev.Seq)
}
