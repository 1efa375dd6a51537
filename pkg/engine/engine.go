package engine

import (
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Defaults for Options fields left zero.
const (
	DefaultQuietPeriod    = 100 * time.Millisecond
	DefaultMaxBufferBytes = 50 * 1024
	DefaultMaxLines       = 10000
)

// Options configures an Engine. The zero value is usable; zero fields
// take the package defaults.
type Options struct {
	// QuietPeriod is the debounce window: a timed flush fires only after
	// this much time passes without a new ingest for an execution.
	QuietPeriod time.Duration

	// MaxBufferBytes is the forced-flush ceiling for a pending buffer.
	MaxBufferBytes int

	// MaxLines caps total retained lines per execution before truncation.
	MaxLines int

	// FinalizeStatus is the terminal status Finalize applies to nodes
	// still running because no completion marker was observed.
	FinalizeStatus NodeStatus

	// Logger receives informational backpressure and truncation events.
	// Nil disables logging.
	Logger *zerolog.Logger
}

func (o Options) withDefaults() Options {
	if o.QuietPeriod <= 0 {
		o.QuietPeriod = DefaultQuietPeriod
	}
	if o.MaxBufferBytes <= 0 {
		o.MaxBufferBytes = DefaultMaxBufferBytes
	}
	if o.MaxLines <= 0 {
		o.MaxLines = DefaultMaxLines
	}
	if o.FinalizeStatus == "" {
		o.FinalizeStatus = StatusInterrupted
	}
	return o
}

// UpdateFunc is called once per flush, after the model for executionID
// has been updated, so a renderer can re-pull without polling.
type UpdateFunc func(executionID string)

// execState is the aggregated model for one execution.
type execState struct {
	grouper *grouper
	bounds  *bounder
}

// Engine aggregates raw output events into per-execution, per-node
// models. Producers may call Ingest from independent goroutines; the
// engine mutex is the synchronization boundary. Ingest never blocks on
// timers; flush delivery is synchronous and cheap (line counts are
// bounded).
type Engine struct {
	opts Options
	log  zerolog.Logger

	mu       sync.Mutex
	pending  map[string]*pendingBuffer
	execs    map[string]*execState
	updates  []UpdateFunc
	disposed bool
}

// New creates an Engine with the given options.
func New(opts Options) *Engine {
	opts = opts.withDefaults()
	log := zerolog.Nop()
	if opts.Logger != nil {
		log = *opts.Logger
	}
	return &Engine{
		opts:    opts,
		log:     log,
		pending: make(map[string]*pendingBuffer),
		execs:   make(map[string]*execState),
	}
}

// OnUpdate registers fn to be called once per flush. Handlers run on the
// flushing goroutine and should hand off quickly.
func (e *Engine) OnUpdate(fn UpdateFunc) {
	e.mu.Lock()
	e.updates = append(e.updates, fn)
	e.mu.Unlock()
}

func (e *Engine) notify(executionID string) {
	e.mu.Lock()
	fns := make([]UpdateFunc, len(e.updates))
	copy(fns, e.updates)
	e.mu.Unlock()

	for _, fn := range fns {
		fn(executionID)
	}
}

// Finalize flushes any pending output for executionID and resolves nodes
// still running (no completion marker observed) with the configured
// terminal status. The upstream producer decides when an execution is
// finished; the engine never infers it.
func (e *Engine) Finalize(executionID string) {
	e.mu.Lock()
	flushed := e.flushLocked(executionID)
	resolved := 0
	if st, ok := e.execs[executionID]; ok {
		resolved = st.grouper.resolve(e.opts.FinalizeStatus, time.Now())
	}
	e.mu.Unlock()

	if resolved > 0 {
		e.log.Debug().
			Str("execution_id", executionID).
			Int("resolved", resolved).
			Str("status", string(e.opts.FinalizeStatus)).
			Msg("finalize resolved nodes without completion markers")
	}
	if flushed || resolved > 0 {
		e.notify(executionID)
	}
}

// Clear discards all state for executionID without delivering pending
// output: the consumer is replacing the execution and does not want its
// data. A later ingest for the same id starts from an empty model.
func (e *Engine) Clear(executionID string) {
	e.mu.Lock()
	if pb, ok := e.pending[executionID]; ok {
		pb.timer.Stop()
		delete(e.pending, executionID)
	}
	delete(e.execs, executionID)
	e.mu.Unlock()
}

// Dispose tears the engine down: every pending timer is canceled, every
// non-empty buffer is force-flushed so no trailing output is lost, update
// handlers observe the final model once, and all state is discarded.
// Further ingests are ignored.
func (e *Engine) Dispose() {
	e.mu.Lock()
	if e.disposed {
		e.mu.Unlock()
		return
	}
	e.disposed = true
	var flushed []string
	for id := range e.pending {
		if e.flushLocked(id) {
			flushed = append(flushed, id)
		}
	}
	e.mu.Unlock()

	for _, id := range flushed {
		e.notify(id)
	}

	e.mu.Lock()
	e.pending = make(map[string]*pendingBuffer)
	e.execs = make(map[string]*execState)
	e.mu.Unlock()
}

// FlatView returns the bounded, arrival-ordered line sequence for
// executionID plus truncation metadata. Pure projection; unknown ids
// yield an empty view.
func (e *Engine) FlatView(executionID string) FlatView {
	e.mu.Lock()
	defer e.mu.Unlock()

	st, ok := e.execs[executionID]
	if !ok {
		return FlatView{}
	}
	return buildFlatView(st.grouper, st.bounds)
}

// GroupedView returns the ordered node groups for executionID, with
// running durations recomputed against the current time.
func (e *Engine) GroupedView(executionID string) GroupedView {
	e.mu.Lock()
	defer e.mu.Unlock()

	st, ok := e.execs[executionID]
	if !ok {
		return GroupedView{}
	}
	return buildGroupedView(st.grouper, st.bounds, time.Now())
}

// Executions returns the ids with aggregated state, in no particular
// order.
func (e *Engine) Executions() []string {
	e.mu.Lock()
	defer e.mu.Unlock()

	ids := make([]string, 0, len(e.execs))
	for id := range e.execs {
		ids = append(ids, id)
	}
	return ids
}
