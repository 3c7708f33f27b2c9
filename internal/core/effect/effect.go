// Package effect describes the outbound messages a committed operation asks
// the host to deliver. The state machine only emits these descriptions; actual
// delivery happens in the dispatcher, outside the atomic apply.
package effect

import "github.com/tzoracle/oracled/internal/core/state"

// Effect is one outbound message: a value transfer to a target, optionally
// carrying a price payload for the target's entrypoint.
type Effect struct {
	TargetAddress    string             `json:"target_address"`
	TargetEntrypoint string             `json:"target_entrypoint,omitempty"`
	Amount           uint64             `json:"amount"`
	Payload          *state.PriceRecord `json:"payload,omitempty"`
}

// Reply builds the price-answer effect for a request ticket. The payload is
// copied so later storage mutations cannot alias into an emitted effect.
func Reply(addr, entrypoint string, rec *state.PriceRecord, amount uint64) Effect {
	p := *rec
	return Effect{
		TargetAddress:    addr,
		TargetEntrypoint: entrypoint,
		Amount:           amount,
		Payload:          &p,
	}
}

// Payout builds a plain value transfer with no payload.
func Payout(addr string, amount uint64) Effect {
	return Effect{TargetAddress: addr, Amount: amount}
}

// Target renders the combined destination in the address%entrypoint form the
// feeder tooling uses.
func (e Effect) Target() string {
	if e.TargetEntrypoint == "" {
		return e.TargetAddress
	}
	return e.TargetAddress + "%" + e.TargetEntrypoint
}
