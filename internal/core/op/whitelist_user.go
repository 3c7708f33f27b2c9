package op

// WhitelistUser authorizes an identity to submit price updates.
type WhitelistUser struct {
	BaseOp
	User string `json:"user"`
}

func (t *WhitelistUser) Kind() Kind { return KindWhitelistUser }

func (t *WhitelistUser) Validate() Result {
	if r := t.BaseOp.Validate(); r != Success {
		return r
	}
	if t.User == "" {
		return Malformed
	}
	return Success
}

func (t *WhitelistUser) Apply(ctx *ApplyContext) Result {
	if r := ctx.RequireAdmin(t); r != Success {
		return r
	}
	if ctx.State.HasFeeder(t.User) {
		return AlreadyWhitelisted
	}
	ctx.State.AddFeeder(t.User)
	return Success
}

// BlacklistUser revokes an identity's feeder authorization.
type BlacklistUser struct {
	BaseOp
	User string `json:"user"`
}

func (t *BlacklistUser) Kind() Kind { return KindBlacklistUser }

func (t *BlacklistUser) Validate() Result {
	if r := t.BaseOp.Validate(); r != Success {
		return r
	}
	if t.User == "" {
		return Malformed
	}
	return Success
}

func (t *BlacklistUser) Apply(ctx *ApplyContext) Result {
	if r := ctx.RequireAdmin(t); r != Success {
		return r
	}
	if !ctx.State.HasFeeder(t.User) {
		return AlreadyBlacklisted
	}
	ctx.State.RemoveFeeder(t.User)
	return Success
}
