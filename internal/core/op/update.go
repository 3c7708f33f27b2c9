package op

import (
	"github.com/tzoracle/oracled/internal/core/address"
	"github.com/tzoracle/oracled/internal/core/effect"
	"github.com/tzoracle/oracled/internal/core/state"
)

// Update is a feeder answering a pending request: it overwrites the pair's
// cached record wholesale, fulfills the matched ticket and emits the reply.
// Freshness is never re-checked here; an update is by definition the fresh
// data the ticket was waiting for.
type Update struct {
	BaseOp
	Pair        string `json:"pair"`
	OpenTime    int64  `json:"open_time"`
	CloseTime   int64  `json:"close_time"`
	LastPrice   uint64 `json:"last_price"`
	LowPrice    uint64 `json:"low_price"`
	HighPrice   uint64 `json:"high_price"`
	Volume      uint64 `json:"volume"`
	QuoteVolume uint64 `json:"quote_volume"`
	RequestID   uint64 `json:"request_id"`

	// Target is the combined "address%entrypoint" destination, echoed back by
	// the feeder from the ticket it polled.
	Target string `json:"target"`
}

func (t *Update) Kind() Kind { return KindUpdate }

func (t *Update) Validate() Result {
	if r := t.BaseOp.Validate(); r != Success {
		return r
	}
	if t.Pair == "" || t.Target == "" {
		return Malformed
	}
	return Success
}

func (t *Update) Apply(ctx *ApplyContext) Result {
	st := ctx.State

	if !st.HasFeeder(t.Source) {
		return NotWhitelisted
	}

	addr, entrypoint := address.Split(t.Target)
	ticket, ok := st.Requests[t.RequestID]
	if !ok || ticket.Status != state.Pending ||
		ticket.Pair != t.Pair ||
		ticket.TargetAddress != addr || ticket.TargetEntrypoint != entrypoint {
		return RequestNotFound
	}

	if !st.SupportsPair(t.Pair) {
		return PairNotSupported
	}

	rec := &state.PriceRecord{
		Pair:        t.Pair,
		OpenTime:    t.OpenTime,
		CloseTime:   t.CloseTime,
		UpdateTime:  ctx.Now.Unix(),
		LastPrice:   t.LastPrice,
		LowPrice:    t.LowPrice,
		HighPrice:   t.HighPrice,
		Volume:      t.Volume,
		QuoteVolume: t.QuoteVolume,
	}
	st.Prices[t.Pair] = rec

	ticket.Status = state.Fulfilled
	ticket.FulfilledAt = ctx.Now.Unix()
	ctx.RecordTicket(t.RequestID)

	st.Treasury += t.Value
	ctx.Emit(effect.Reply(ticket.TargetAddress, ticket.TargetEntrypoint, rec, 0))
	return Success
}
