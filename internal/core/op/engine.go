package op

import (
	"sync"
	"time"

	"github.com/tzoracle/oracled/internal/core/effect"
	"github.com/tzoracle/oracled/internal/core/state"
)

// Clock supplies the engine's execution timestamps. Production uses the wall
// clock; tests use a manual clock.
type Clock interface {
	Now() time.Time
}

// SystemClock is the wall-clock Clock.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }

// CommitHook runs inside the apply lock after a successful operation, before
// the draft replaces the committed storage. It returns the durable sequence
// number it assigned. Returning an error aborts the commit, so persistence
// and state can never diverge.
type CommitHook func(o Operation, st *state.Storage, effects []effect.Effect) (uint64, error)

// ApplyResult is the outcome of one operation: the result code and, on
// success, the effects the host must deliver, the id of the ticket the
// operation touched (nil when none) and the commit hook's sequence number.
// TicketID and Seq are captured inside the apply lock, so concurrent
// submissions cannot mix them up.
type ApplyResult struct {
	Result   Result
	Effects  []effect.Effect
	TicketID *uint64
	Seq      uint64
}

// Engine owns the committed storage and applies operations one at a time.
// Each operation runs against a deep clone; only a successful apply (and
// commit hook) swaps the clone in, so a failure can never leave partial
// mutations behind.
type Engine struct {
	mu     sync.Mutex
	state  *state.Storage
	clock  Clock
	onDone CommitHook
}

// NewEngine creates an engine over the given initial storage. A nil clock
// defaults to the system clock.
func NewEngine(st *state.Storage, clock Clock) *Engine {
	if clock == nil {
		clock = SystemClock{}
	}
	return &Engine{state: st, clock: clock}
}

// OnCommit installs the commit hook. Must be called before the first Apply.
func (e *Engine) OnCommit(hook CommitHook) {
	e.onDone = hook
}

// Apply validates and applies one operation atomically.
func (e *Engine) Apply(o Operation) ApplyResult {
	if r := o.Validate(); r != Success {
		return ApplyResult{Result: r}
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	draft := e.state.Clone()
	ctx := &ApplyContext{State: draft, Now: e.clock.Now()}

	r := o.Apply(ctx)
	if r != Success {
		return ApplyResult{Result: r}
	}

	var seq uint64
	if e.onDone != nil {
		var err error
		if seq, err = e.onDone(o, draft, ctx.Effects()); err != nil {
			return ApplyResult{Result: InternalError}
		}
	}

	e.state = draft
	return ApplyResult{
		Result:   Success,
		Effects:  ctx.Effects(),
		TicketID: ctx.ticketID,
		Seq:      seq,
	}
}

// State returns a clone of the committed storage for read-only use.
func (e *Engine) State() *state.Storage {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state.Clone()
}
