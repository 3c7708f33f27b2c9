package op

// SetAdmin hands the administrator role to a new identity. Takes effect
// immediately: the old admin loses all privileges in the same operation.
type SetAdmin struct {
	BaseOp
	NewAdmin string `json:"new_admin"`
}

func (t *SetAdmin) Kind() Kind { return KindSetAdmin }

func (t *SetAdmin) Validate() Result {
	if r := t.BaseOp.Validate(); r != Success {
		return r
	}
	if t.NewAdmin == "" {
		return Malformed
	}
	return Success
}

func (t *SetAdmin) Apply(ctx *ApplyContext) Result {
	if r := ctx.RequireAdmin(t); r != Success {
		return r
	}
	ctx.State.Admin = t.NewAdmin
	return Success
}
