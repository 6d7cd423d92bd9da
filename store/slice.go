// ABOUTME: Shared request lifecycle for state slices
// ABOUTME: Tracks loading and error per slice, supersedes stale reads, and publishes events

package store

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/harperreed/rankup/api"
)

// ErrSuperseded is returned by a read whose result was discarded because a
// newer dispatch of the same operation started.
var ErrSuperseded = errors.New("superseded by a newer request")

// Status is the loading/error pair every slice snapshot carries.
// An empty Error means no error.
type Status struct {
	Loading bool
	Error   string
}

type Phase string

const (
	PhasePending    Phase = "pending"
	PhaseFulfilled  Phase = "fulfilled"
	PhaseRejected   Phase = "rejected"
	PhaseSuperseded Phase = "superseded"
	// PhaseReset marks synchronous actions such as logout or clearing an error.
	PhaseReset Phase = "reset"
)

// Event describes one lifecycle transition. Op is the qualified
// operation name, for example "auth/login".
type Event struct {
	Slice string
	Op    string
	Phase Phase
	Err   string
	At    time.Time
}

type hub struct {
	mu   sync.RWMutex
	next int
	subs map[int]func(Event)
}

func newHub() *hub {
	return &hub{subs: make(map[int]func(Event))}
}

func (h *hub) subscribe(fn func(Event)) func() {
	h.mu.Lock()
	defer h.mu.Unlock()
	id := h.next
	h.next++
	h.subs[id] = fn

	var once sync.Once
	return func() {
		once.Do(func() {
			h.mu.Lock()
			delete(h.subs, id)
			h.mu.Unlock()
		})
	}
}

func (h *hub) publish(e Event) {
	h.mu.RLock()
	fns := make([]func(Event), 0, len(h.subs))
	for _, fn := range h.subs {
		fns = append(fns, fn)
	}
	h.mu.RUnlock()

	for _, fn := range fns {
		fn(e)
	}
}

// slice holds the lock, status, and in-flight bookkeeping one slice needs.
// Slice data lives in the embedding type and is guarded by mu.
// Data slices are replaced, never mutated in place, so snapshots may share them.
type slice struct {
	name string
	hub  *hub

	mu       sync.RWMutex
	status   Status
	inflight int
	gen      map[string]uint64
	cancel   map[string]context.CancelFunc
}

func newSlice(name string, h *hub) slice {
	return slice{
		name:   name,
		hub:    h,
		gen:    make(map[string]uint64),
		cancel: make(map[string]context.CancelFunc),
	}
}

func (s *slice) emit(op string, phase Phase, errMsg string) {
	if s.hub == nil {
		return
	}
	s.hub.publish(Event{Slice: s.name, Op: s.name + "/" + op, Phase: phase, Err: errMsg, At: time.Now()})
}

// clearError drops the error message.
func (s *slice) clearError(op string) {
	s.mu.Lock()
	s.status.Error = ""
	s.mu.Unlock()
	s.emit(op, PhaseReset, "")
}

// reset drops the error and loading flag without touching data.
// Requests still in flight recompute Loading when they settle.
func (s *slice) reset(op string, extra func()) {
	s.mu.Lock()
	s.status.Error = ""
	s.status.Loading = false
	if extra != nil {
		extra()
	}
	s.mu.Unlock()
	s.emit(op, PhaseReset, "")
}

// OpError is returned by a rejected operation. Message is the text the slice
// recorded in its Error field.
type OpError struct {
	Op      string
	Message string
	Err     error
}

func (e *OpError) Error() string {
	return e.Message
}

func (e *OpError) Unwrap() error {
	return e.Err
}

// request describes one dispatch of an operation.
type request[T any] struct {
	op       string
	fallback string

	// latest cancels any earlier in-flight dispatch of the same op and
	// discards results that arrive after a newer dispatch started.
	latest bool

	// onPending, onFulfilled, and onRejected run under the slice lock.
	onPending   func()
	call        func(ctx context.Context) (T, error)
	onFulfilled func(T)
	onRejected  func(error)
}

// run drives a request through pending, then fulfilled or rejected.
// The network call happens outside the lock.
func run[T any](ctx context.Context, s *slice, r request[T]) (T, error) {
	var zero T
	if ctx == nil {
		ctx = context.Background()
	}

	s.mu.Lock()
	var gen uint64
	if r.latest {
		if cancel := s.cancel[r.op]; cancel != nil {
			cancel()
		}
		var cancel context.CancelFunc
		ctx, cancel = context.WithCancel(ctx)
		s.gen[r.op]++
		gen = s.gen[r.op]
		s.cancel[r.op] = cancel
	}
	s.inflight++
	s.status.Loading = true
	s.status.Error = ""
	if r.onPending != nil {
		r.onPending()
	}
	s.mu.Unlock()
	s.emit(r.op, PhasePending, "")

	result, err := r.call(ctx)

	s.mu.Lock()
	s.inflight--
	s.status.Loading = s.inflight > 0
	if r.latest {
		if s.gen[r.op] != gen {
			s.mu.Unlock()
			s.emit(r.op, PhaseSuperseded, "")
			return zero, ErrSuperseded
		}
		s.cancel[r.op]()
		delete(s.cancel, r.op)
	}

	if err != nil {
		msg := api.Message(err, r.fallback)
		s.status.Error = msg
		if r.onRejected != nil {
			r.onRejected(err)
		}
		s.mu.Unlock()
		s.emit(r.op, PhaseRejected, msg)
		return zero, &OpError{Op: s.name + "/" + r.op, Message: msg, Err: err}
	}

	if r.onFulfilled != nil {
		r.onFulfilled(result)
	}
	s.mu.Unlock()
	s.emit(r.op, PhaseFulfilled, "")
	return result, nil
}
