package engine

import (
	"time"

	"github.com/flowtail/flowtail/pkg/event"
)

// pendingBuffer accumulates raw events for one execution between flushes.
// At most one live timer exists per execution; the timer and the ingest
// path are serialized by the engine mutex.
type pendingBuffer struct {
	events   []event.OutputEvent
	bytes    int
	timer    *time.Timer
	deadline time.Time // earliest instant a quiet-period flush may fire
}

// Ingest appends ev to its execution's pending buffer and returns
// immediately. A quiet-period timer is started on the first event and
// reset on every subsequent one; only a pause in arrivals triggers a
// timed flush. Reaching the byte ceiling flushes immediately instead,
// independent of timing.
func (e *Engine) Ingest(ev event.OutputEvent) {
	e.mu.Lock()
	if e.disposed {
		e.mu.Unlock()
		return
	}

	id := ev.ExecutionID
	pb, ok := e.pending[id]
	if !ok {
		pb = &pendingBuffer{}
		pb.timer = time.AfterFunc(e.opts.QuietPeriod, func() { e.timerFlush(id) })
		e.pending[id] = pb
	} else {
		pb.timer.Reset(e.opts.QuietPeriod)
	}
	pb.deadline = time.Now().Add(e.opts.QuietPeriod)
	pb.events = append(pb.events, ev)
	pb.bytes += len(ev.Content)

	flushed := false
	if pb.bytes >= e.opts.MaxBufferBytes {
		e.log.Info().
			Str("execution_id", id).
			Int("buffered_bytes", pb.bytes).
			Msg("buffer ceiling reached, flushing early")
		flushed = e.flushLocked(id)
	}
	e.mu.Unlock()

	if flushed {
		e.notify(id)
	}
}

// Flush forces delivery of any pending output for executionID.
func (e *Engine) Flush(executionID string) {
	e.mu.Lock()
	flushed := e.flushLocked(executionID)
	e.mu.Unlock()

	if flushed {
		e.notify(executionID)
	}
}

// timerFlush runs when a quiet-period timer fires. If an ingest raced the
// timer and pushed the deadline forward, the flush is rescheduled for the
// remaining interval rather than delivered early.
func (e *Engine) timerFlush(executionID string) {
	e.mu.Lock()
	pb, ok := e.pending[executionID]
	if !ok {
		e.mu.Unlock()
		return
	}
	if remaining := time.Until(pb.deadline); remaining > 0 {
		pb.timer.Reset(remaining)
		e.mu.Unlock()
		return
	}
	flushed := e.flushLocked(executionID)
	e.mu.Unlock()

	if flushed {
		e.notify(executionID)
	}
}

// flushLocked delivers the pending buffer for executionID through
// classification, grouping, and bounding, exactly once, then clears it.
// An empty buffer is never delivered. Caller holds e.mu.
func (e *Engine) flushLocked(executionID string) bool {
	pb, ok := e.pending[executionID]
	if !ok {
		return false
	}
	pb.timer.Stop()
	delete(e.pending, executionID)
	if len(pb.events) == 0 {
		return false
	}

	st, ok := e.execs[executionID]
	if !ok {
		st = &execState{
			grouper: newGrouper(),
			bounds:  newBounder(e.opts.MaxLines),
		}
		e.execs[executionID] = st
	}

	for _, ev := range pb.events {
		lines := ClassifyChunk(ev)
		for _, line := range lines {
			st.grouper.apply(line)
		}
		st.bounds.note(len(lines))
	}
	if evicted := st.bounds.enforce(st.grouper.groups); evicted > 0 {
		e.log.Info().
			Str("execution_id", executionID).
			Int("evicted", evicted).
			Int("dropped_total", st.bounds.dropped).
			Msg("line ceiling reached, oldest lines evicted")
	}
	return true
}
