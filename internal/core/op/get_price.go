package op

import (
	"github.com/tzoracle/oracled/internal/core/effect"
	"github.com/tzoracle/oracled/internal/core/freshness"
	"github.com/tzoracle/oracled/internal/core/state"
)

// GetPrice requests the price of a pair on behalf of a target contract. If
// the cached record is fresh the answer is emitted immediately and the
// attached value is forwarded with it; otherwise a pending ticket is stored
// for a feeder to fulfill and the value is retained by the treasury.
type GetPrice struct {
	BaseOp
	Pair             string `json:"pair"`
	TargetAddress    string `json:"target_address"`
	TargetEntrypoint string `json:"target_entrypoint"`
}

func (t *GetPrice) Kind() Kind { return KindGetPrice }

func (t *GetPrice) Validate() Result {
	if r := t.BaseOp.Validate(); r != Success {
		return r
	}
	if t.Pair == "" || t.TargetAddress == "" || t.TargetEntrypoint == "" {
		return Malformed
	}
	return Success
}

func (t *GetPrice) Apply(ctx *ApplyContext) Result {
	st := ctx.State

	if !st.SupportsPair(t.Pair) {
		return PairNotSupported
	}

	// The id is assigned and the counter advanced whether we answer now or
	// defer. Ids are never skipped or reused.
	id := st.Counter
	if _, exists := st.Requests[id]; exists {
		return RequestAlreadyExists
	}
	st.Counter++
	ctx.RecordTicket(id)

	rec := st.Price(t.Pair)

	ticket := &state.RequestTicket{
		Pair:             t.Pair,
		TargetAddress:    t.TargetAddress,
		TargetEntrypoint: t.TargetEntrypoint,
		CreatedAt:        ctx.Now.Unix(),
	}

	if freshness.Fresh(rec, ctx.Now) {
		ticket.Status = state.Fulfilled
		ticket.FulfilledAt = ctx.Now.Unix()
		st.Requests[id] = ticket
		ctx.Emit(effect.Reply(t.TargetAddress, t.TargetEntrypoint, rec, t.Value))
		return Success
	}

	ticket.Status = state.Pending
	st.Requests[id] = ticket
	st.Treasury += t.Value
	return Success
}
