package op

// Kind identifies an operation type on the wire and in the op log.
type Kind string

const (
	KindSetAdmin      Kind = "set_admin"
	KindWhitelistUser Kind = "whitelist_user"
	KindBlacklistUser Kind = "blacklist_user"
	KindWhitelistPair Kind = "whitelist_pair"
	KindBlacklistPair Kind = "blacklist_pair"
	KindGetPrice      Kind = "get_price"
	KindUpdate        Kind = "update"
	KindHarvestTez    Kind = "harvest_xtz"
)

// Operation is the interface every entry point implements. Validate rejects
// structurally malformed operations before they reach the engine; Apply runs
// against a draft storage inside the engine's atomic apply.
type Operation interface {
	Kind() Kind
	Caller() string
	Amount() uint64
	Validate() Result
	Apply(ctx *ApplyContext) Result
}

// BaseOp carries the fields common to every operation: the authenticated
// caller identity and the value attached to the call. The host authenticates
// callers before submission, so no signature material appears here.
type BaseOp struct {
	Source string `json:"caller"`
	Value  uint64 `json:"amount"`
}

func (b *BaseOp) Caller() string { return b.Source }
func (b *BaseOp) Amount() uint64 { return b.Value }

// Validate checks the common fields. Operation types layer their own checks
// on top.
func (b *BaseOp) Validate() Result {
	if b.Source == "" {
		return Malformed
	}
	return Success
}
