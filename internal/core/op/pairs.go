package op

// WhitelistPair adds a pair symbol to the supported set, seeding an empty
// record if the pair has never been quoted.
type WhitelistPair struct {
	BaseOp
	Pair string `json:"pair"`
}

func (t *WhitelistPair) Kind() Kind { return KindWhitelistPair }

func (t *WhitelistPair) Validate() Result {
	if r := t.BaseOp.Validate(); r != Success {
		return r
	}
	if t.Pair == "" {
		return Malformed
	}
	return Success
}

func (t *WhitelistPair) Apply(ctx *ApplyContext) Result {
	if r := ctx.RequireAdmin(t); r != Success {
		return r
	}
	if ctx.State.SupportsPair(t.Pair) {
		return AlreadySupported
	}
	ctx.State.AddPair(t.Pair)
	return Success
}

// BlacklistPair removes a pair from the supported set. The cached record is
// retained: it becomes unreachable until the pair is whitelisted again, at
// which point the freshness rule decides whether it may still answer.
type BlacklistPair struct {
	BaseOp
	Pair string `json:"pair"`
}

func (t *BlacklistPair) Kind() Kind { return KindBlacklistPair }

func (t *BlacklistPair) Validate() Result {
	if r := t.BaseOp.Validate(); r != Success {
		return r
	}
	if t.Pair == "" {
		return Malformed
	}
	return Success
}

func (t *BlacklistPair) Apply(ctx *ApplyContext) Result {
	if r := ctx.RequireAdmin(t); r != Success {
		return r
	}
	if !ctx.State.SupportsPair(t.Pair) {
		return PairNotSupported
	}
	ctx.State.RemovePair(t.Pair)
	return Success
}
