// Package oracletest provides the test environment for exercising the oracle
// engine: a manual clock, a seeded genesis fixture, fluent operation builders
// and result assertion helpers.
package oracletest

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tzoracle/oracled/internal/core/op"
	"github.com/tzoracle/oracled/internal/core/state"
)

// Well-known test identities. Real base58check addresses, so they survive
// every syntax check the daemon performs.
const (
	Admin    = "tz1fABJ97CJMSP2DKrQx2HAFazh6GgahQ7ZK"
	Alice    = "tz1hNVs94TTjZh6BZ1PM5HL83A7aiZXkQ8ur"
	Bob      = "tz1c6PPijJnZYjKiSQND4pMtGMg6csGeAiiF"
	Oscar    = "tz1Phy92c2n817D17dUGzxNgw1qCkNSTWZY2"
	Fox      = "tz1XH5UyhRCUmCdUUbqD4tZaaqRTgGaFXt7q"
	Contract = "KT1BEqzn5Wx8uJrZNvuS9DVHmLvG9td3fDLi"

	// Receive is the conventional consumer entrypoint.
	Receive = "receive"

	// Pair is the fixture's supported pair.
	Pair = "BTCETH"
)

// Fixture values for the seeded BTCETH record.
const (
	FixtureOpenTime    = int64(0)
	FixtureCloseTime   = int64(100)
	FixtureUpdateTime  = int64(0)
	FixtureLastPrice   = uint64(1_000)
	FixtureLowPrice    = uint64(5)
	FixtureHighPrice   = uint64(10_000)
	FixtureVolume      = uint64(500)
	FixtureQuoteVolume = uint64(100_000)
)

// Env wraps an engine over the genesis fixture with a manual clock.
type Env struct {
	T      *testing.T
	Engine *op.Engine
	Clock  *ManualClock
}

// NewEnv creates an environment seeded with the standard fixture: Admin as
// administrator, BTCETH supported with a cached record closing at t=100, an
// empty whitelist and counter 0. The clock starts in 2020, far past the
// fixture close time, so requests answer from cache unless rewound.
func NewEnv(t *testing.T) *Env {
	t.Helper()
	clock := NewManualClock()
	return &Env{
		T:      t,
		Engine: op.NewEngine(GenesisStorage(), clock),
		Clock:  clock,
	}
}

// GenesisStorage builds the standard fixture storage.
func GenesisStorage() *state.Storage {
	st := state.New()
	st.Admin = Admin
	st.SupportedPairs = []string{Pair}
	st.Prices[Pair] = &state.PriceRecord{
		Pair:        Pair,
		OpenTime:    FixtureOpenTime,
		CloseTime:   FixtureCloseTime,
		UpdateTime:  FixtureUpdateTime,
		LastPrice:   FixtureLastPrice,
		LowPrice:    FixtureLowPrice,
		HighPrice:   FixtureHighPrice,
		Volume:      FixtureVolume,
		QuoteVolume: FixtureQuoteVolume,
	}
	return st
}

// Submit applies the operation and returns the outcome.
func (e *Env) Submit(o op.Operation) op.ApplyResult {
	return e.Engine.Apply(o)
}

// State returns a snapshot of the committed storage.
func (e *Env) State() *state.Storage {
	return e.Engine.State()
}

// RequireSuccess asserts the operation applied.
func (e *Env) RequireSuccess(res op.ApplyResult) {
	e.T.Helper()
	require.Equal(e.T, op.Success, res.Result,
		"expected success, got %s", res.Result)
}

// RequireFail asserts the operation failed with the given code and, as the
// rollback invariant demands, produced no effects.
func (e *Env) RequireFail(res op.ApplyResult, want op.Result) {
	e.T.Helper()
	require.Equal(e.T, want, res.Result,
		"expected %s, got %s", want, res.Result)
	require.Empty(e.T, res.Effects, "failed operation must emit no effects")
}
