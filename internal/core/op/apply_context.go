package op

import (
	"time"

	"github.com/tzoracle/oracled/internal/core/effect"
	"github.com/tzoracle/oracled/internal/core/state"
)

// ApplyContext provides everything an operation needs to apply: the draft
// storage, the execution timestamp and an effect sink. The draft is a clone;
// mutations only become visible if the engine commits.
type ApplyContext struct {
	// State is the draft storage the operation mutates.
	State *state.Storage

	// Now is the execution timestamp assigned by the engine. All freshness
	// decisions and update_time stamps use this single instant.
	Now time.Time

	effects  []effect.Effect
	ticketID *uint64
}

// RecordTicket notes the id of the request ticket this operation created or
// fulfilled. The engine hands it back on the ApplyResult so post-commit
// consumers never have to re-derive it from a later state snapshot.
func (ctx *ApplyContext) RecordTicket(id uint64) {
	ctx.ticketID = &id
}

// Emit queues an outbound effect for delivery after commit. Effects of a
// failed operation are discarded with the draft.
func (ctx *ApplyContext) Emit(e effect.Effect) {
	ctx.effects = append(ctx.effects, e)
}

// Effects returns the queued effects in emission order.
func (ctx *ApplyContext) Effects() []effect.Effect {
	return ctx.effects
}

// RequireAdmin enforces the admin-only, zero-value preamble shared by every
// administrative operation.
func (ctx *ApplyContext) RequireAdmin(o Operation) Result {
	if o.Caller() != ctx.State.Admin {
		return OnlyAdmin
	}
	if o.Amount() != 0 {
		return ValueMustBeZero
	}
	return Success
}
