package op_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tzoracle/oracled/internal/core/op"
	"github.com/tzoracle/oracled/internal/core/state"
	"github.com/tzoracle/oracled/internal/oracletest"
)

// deferRequest parks a pending ticket for the fixture pair and returns its id.
func deferRequest(env *oracletest.Env, amount uint64) uint64 {
	env.T.Helper()
	env.Clock.SetUnix(31)
	res := env.Submit(oracletest.GetPrice(oracletest.Bob, oracletest.Pair).Amount(amount).Build())
	env.RequireSuccess(res)
	return env.State().Counter - 1
}

func TestUpdateFulfillsPendingTicket(t *testing.T) {
	env := oracletest.NewEnv(t)
	env.RequireSuccess(env.Submit(oracletest.WhitelistUser(oracletest.Admin, oracletest.Bob)))

	id := deferRequest(env, 0)
	env.Clock.SetUnix(60)

	res := env.Submit(oracletest.Update(oracletest.Bob, oracletest.Pair, id).
		Candle(15, 30).
		Prices(1003, 40, 19_000).
		Volumes(400, 900).
		Build())
	env.RequireSuccess(res)

	st := env.State()
	rec := st.Prices[oracletest.Pair]
	require.Equal(t, int64(15), rec.OpenTime)
	require.Equal(t, int64(30), rec.CloseTime)
	require.Equal(t, uint64(1003), rec.LastPrice)
	require.Equal(t, uint64(40), rec.LowPrice)
	require.Equal(t, uint64(19_000), rec.HighPrice)
	require.Equal(t, uint64(400), rec.Volume)
	require.Equal(t, uint64(900), rec.QuoteVolume)
	require.Equal(t, int64(60), rec.UpdateTime, "update_time is stamped with execution time")

	require.Equal(t, state.Fulfilled, st.Requests[id].Status)

	// One reply to the ticket's recorded target carrying the new payload.
	require.Len(t, res.Effects, 1)
	e := res.Effects[0]
	require.Equal(t, oracletest.Contract, e.TargetAddress)
	require.Equal(t, oracletest.Receive, e.TargetEntrypoint)
	require.Zero(t, e.Amount)
	require.Equal(t, uint64(1003), e.Payload.LastPrice)
	require.Equal(t, int64(60), e.Payload.UpdateTime)
}

func TestUpdateNotWhitelistedFails(t *testing.T) {
	env := oracletest.NewEnv(t)
	id := deferRequest(env, 0)

	res := env.Submit(oracletest.Update(oracletest.Bob, oracletest.Pair, id).Build())
	env.RequireFail(res, op.NotWhitelisted)
}

func TestUpdateNotWhitelistedFailsEvenWithValidTicket(t *testing.T) {
	env := oracletest.NewEnv(t)
	env.RequireSuccess(env.Submit(oracletest.WhitelistUser(oracletest.Admin, oracletest.Bob)))
	id := deferRequest(env, 0)

	// Fox holds a valid request id but no feeder authorization.
	res := env.Submit(oracletest.Update(oracletest.Fox, oracletest.Pair, id).Build())
	env.RequireFail(res, op.NotWhitelisted)
	require.Equal(t, state.Pending, env.State().Requests[id].Status)
}

func TestUpdateUnknownRequestFails(t *testing.T) {
	env := oracletest.NewEnv(t)
	env.RequireSuccess(env.Submit(oracletest.WhitelistUser(oracletest.Admin, oracletest.Bob)))

	res := env.Submit(oracletest.Update(oracletest.Bob, oracletest.Pair, 42).Build())
	env.RequireFail(res, op.RequestNotFound)
}

func TestUpdateFulfilledTicketFails(t *testing.T) {
	env := oracletest.NewEnv(t)
	env.RequireSuccess(env.Submit(oracletest.WhitelistUser(oracletest.Admin, oracletest.Bob)))

	id := deferRequest(env, 0)
	env.RequireSuccess(env.Submit(oracletest.Update(oracletest.Bob, oracletest.Pair, id).Build()))

	// At most once: a second update on the same ticket is rejected.
	res := env.Submit(oracletest.Update(oracletest.Bob, oracletest.Pair, id).Build())
	env.RequireFail(res, op.RequestNotFound)
}

func TestUpdateMismatchedPairFails(t *testing.T) {
	env := oracletest.NewEnv(t)
	env.RequireSuccess(env.Submit(oracletest.WhitelistUser(oracletest.Admin, oracletest.Bob)))
	env.RequireSuccess(env.Submit(oracletest.WhitelistPair(oracletest.Admin, "BTCXTZ")))

	id := deferRequest(env, 0)
	res := env.Submit(oracletest.Update(oracletest.Bob, "BTCXTZ", id).Build())
	env.RequireFail(res, op.RequestNotFound)
}

func TestUpdateMismatchedTargetFails(t *testing.T) {
	env := oracletest.NewEnv(t)
	env.RequireSuccess(env.Submit(oracletest.WhitelistUser(oracletest.Admin, oracletest.Bob)))

	id := deferRequest(env, 0)
	res := env.Submit(oracletest.Update(oracletest.Bob, oracletest.Pair, id).
		Target(oracletest.Contract + "%other").
		Build())
	env.RequireFail(res, op.RequestNotFound)
}

func TestUpdateBlacklistedPairFails(t *testing.T) {
	env := oracletest.NewEnv(t)
	env.RequireSuccess(env.Submit(oracletest.WhitelistUser(oracletest.Admin, oracletest.Bob)))

	id := deferRequest(env, 0)
	env.RequireSuccess(env.Submit(oracletest.BlacklistPair(oracletest.Admin, oracletest.Pair)))

	res := env.Submit(oracletest.Update(oracletest.Bob, oracletest.Pair, id).Build())
	env.RequireFail(res, op.PairNotSupported)
	require.Equal(t, state.Pending, env.State().Requests[id].Status)
}

func TestUpdateNeverRechecksFreshness(t *testing.T) {
	env := oracletest.NewEnv(t)
	env.RequireSuccess(env.Submit(oracletest.WhitelistUser(oracletest.Admin, oracletest.Bob)))

	id := deferRequest(env, 0)

	// Long past any candle window: the update still answers its ticket.
	env.Clock.SetUnix(1_000_000)
	res := env.Submit(oracletest.Update(oracletest.Bob, oracletest.Pair, id).Build())
	env.RequireSuccess(res)
	require.Len(t, res.Effects, 1)
}

func TestUpdateValueIsRetained(t *testing.T) {
	env := oracletest.NewEnv(t)
	env.RequireSuccess(env.Submit(oracletest.WhitelistUser(oracletest.Admin, oracletest.Bob)))

	id := deferRequest(env, 1000)
	res := env.Submit(oracletest.Update(oracletest.Bob, oracletest.Pair, id).Amount(7).Build())
	env.RequireSuccess(res)

	// 1000 from the deferred request, 7 from the update itself.
	require.Equal(t, uint64(1007), env.State().Treasury)
}
