// Package correlate reconciles commands issued on one channel with
// confirmation events observed on another. A Bus fans incoming events out to
// every active Wait; each Wait matches messages against a glob pattern and
// resolves with the matching event, by timeout, or by explicit cancellation.
package correlate

import (
	"context"
	"fmt"
	"sync"
	"time"

	scenario "github.com/goliatone/go-scenario"
)

// Event is one record of the asynchronous log/event stream.
type Event struct {
	Timestamp time.Time `json:"timestamp"`
	Message   string    `json:"message"`
	Actor     string    `json:"actor,omitempty"`
}

// Bus is the fan-out hub between an event stream and pending waits.
// Publishing never blocks on a waiter: non-matching events are ignored, not
// buffered, and concurrent pending waits are independent.
type Bus struct {
	mu     sync.RWMutex
	nextID int64
	waits  map[int64]*Wait
}

// NewBus creates an empty bus.
func NewBus() *Bus {
	return &Bus{waits: make(map[int64]*Wait)}
}

// Publish offers evt to every active wait. The caller's stream reader loop
// is never owned by a waiting call; matching only flips the wait's state.
func (b *Bus) Publish(evt Event) {
	if evt.Timestamp.IsZero() {
		evt.Timestamp = time.Now().UTC()
	}
	b.mu.RLock()
	pending := make([]*Wait, 0, len(b.waits))
	for _, w := range b.waits {
		pending = append(pending, w)
	}
	b.mu.RUnlock()

	// Offers run outside the lock so a resolving wait can unsubscribe
	// itself without deadlocking.
	for _, w := range pending {
		w.offer(evt)
	}
}

// Publishf is a convenience for plain message events.
func (b *Bus) Publishf(actor, format string, args ...any) {
	b.Publish(Event{Actor: actor, Message: fmt.Sprintf(format, args...)})
}

// Wait registers a pending confirmation. Pattern uses glob semantics: '*'
// matches any run of characters, '?' exactly one, anchored over the full
// message.
//
// With invert=false the wait resolves with the first matching event, or
// with a correlation timeout error at the deadline. With invert=true the
// deadline passing with no match resolves successfully (absence is implicit
// success); an arriving match resolves early carrying the event, and the
// caller decides what to make of it.
func (b *Bus) Wait(pattern string, timeout time.Duration, invert bool) *Wait {
	b.mu.Lock()
	b.nextID++
	id := b.nextID
	w := &Wait{
		pattern: pattern,
		invert:  invert,
		timeout: timeout,
		done:    make(chan struct{}),
	}
	w.unsubscribe = func() { b.remove(id) }
	b.waits[id] = w
	b.mu.Unlock()

	w.startTimer(timeout)
	return w
}

func (b *Bus) remove(id int64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.waits, id)
}

// ActiveWaits reports the number of unresolved waits, for introspection and
// leak checks in tests.
func (b *Bus) ActiveWaits() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.waits)
}

// Wait is the handle for one pending confirmation.
type Wait struct {
	pattern string
	invert  bool
	timeout time.Duration
	timer   *time.Timer

	mu          sync.Mutex
	resolved    bool
	evt         *Event
	err         error
	unsubscribe func()
	done        chan struct{}
}

// Pattern returns the glob this wait matches against.
func (w *Wait) Pattern() string {
	return w.pattern
}

// Done is closed once the wait has resolved on any path.
func (w *Wait) Done() <-chan struct{} {
	return w.done
}

// Result blocks until the wait resolves or ctx is canceled. A matched event
// is returned as a non-nil *Event; an inverted wait reaching its deadline
// unmatched returns (nil, nil).
func (w *Wait) Result(ctx context.Context) (*Event, error) {
	select {
	case <-w.done:
	case <-ctx.Done():
		w.Cancel()
		return nil, ctx.Err()
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.evt, w.err
}

// Cancel unsubscribes and resolves the wait without an event. Safe to call
// from any path, any number of times, including after resolution.
func (w *Wait) Cancel() {
	w.resolve(nil, context.Canceled)
}

func (w *Wait) offer(evt Event) {
	if !Match(w.pattern, evt.Message) {
		return
	}
	// Both modes resolve with the event; inverted callers treat presence
	// as the signal they were probing for.
	w.resolve(&evt, nil)
}

func (w *Wait) expire() {
	if w.invert {
		w.resolve(nil, nil)
		return
	}
	w.resolve(nil, scenario.CorrelationTimeoutError(w.pattern, w.timeout))
}

func (w *Wait) startTimer(timeout time.Duration) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.resolved {
		return
	}
	w.timer = time.AfterFunc(timeout, w.expire)
}

// resolve fires exactly once: it clears the timer, removes the subscription
// so no later, now-irrelevant event can re-resolve the wait, and unblocks
// Result.
func (w *Wait) resolve(evt *Event, err error) {
	w.mu.Lock()
	if w.resolved {
		w.mu.Unlock()
		return
	}
	w.resolved = true
	w.evt = evt
	w.err = err
	timer := w.timer
	unsubscribe := w.unsubscribe
	w.mu.Unlock()

	if timer != nil {
		timer.Stop()
	}
	if unsubscribe != nil {
		unsubscribe()
	}
	close(w.done)
}
