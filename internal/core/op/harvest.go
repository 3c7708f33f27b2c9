package op

import (
	"github.com/tzoracle/oracled/internal/core/address"
	"github.com/tzoracle/oracled/internal/core/effect"
)

// HarvestTez drains the treasury to a destination. Admin-only; value attached
// to the call itself joins the payout. No partial withdrawal.
type HarvestTez struct {
	BaseOp
	Destination string `json:"destination"`
}

func (t *HarvestTez) Kind() Kind { return KindHarvestTez }

func (t *HarvestTez) Validate() Result {
	if r := t.BaseOp.Validate(); r != Success {
		return r
	}
	if t.Destination == "" {
		return Malformed
	}
	return Success
}

func (t *HarvestTez) Apply(ctx *ApplyContext) Result {
	st := ctx.State

	if t.Source != st.Admin {
		return OnlyAdmin
	}
	if err := address.Check(t.Destination); err != nil {
		return InvalidAddress
	}

	amount := st.Treasury + t.Value
	st.Treasury = 0
	ctx.Emit(effect.Payout(t.Destination, amount))
	return Success
}
