// Package loader fetches the data behind a view and exposes it as a small
// state machine: loading, ready, failed, not found or redirect.
package loader

import (
	"context"
	"errors"
	"sync"

	"github.com/camadaviva/snaps/internal/errs"
	"go.uber.org/zap"
)

// State of a view's data.
type State int

const (
	Loading State = iota
	Ready
	Failed
	NotFound
	// Redirect means the view needs a signed-in viewer; send the user to sign in.
	Redirect
)

func (s State) String() string {
	switch s {
	case Loading:
		return "loading"
	case Ready:
		return "ready"
	case Failed:
		return "failed"
	case NotFound:
		return "not-found"
	case Redirect:
		return "redirect"
	default:
		return "unknown"
	}
}

// Snapshot is what a view renders. Data is only meaningful when State is Ready.
type Snapshot[T any] struct {
	State   State
	Data    T
	Err     error
	Message string
}

// Classify maps a fetch result onto a state.
func Classify(err error) State {
	switch {
	case err == nil:
		return Ready
	case errors.Is(err, errs.ErrNotFound):
		return NotFound
	case errors.Is(err, errs.ErrAuthRequired), errors.Is(err, errs.ErrUnauthorized):
		return Redirect
	default:
		return Failed
	}
}

// Fetch loads the data for one key.
type Fetch[K comparable, T any] func(ctx context.Context, key K) (T, error)

// Loader runs Fetch for the current key. A new key or a Refresh supersedes
// the running fetch: it is cancelled and its result dropped. Nothing is
// published after Close.
type Loader[K comparable, T any] struct {
	fetch    Fetch[K, T]
	log      *zap.Logger
	onChange func(Snapshot[T])

	mu      sync.Mutex
	key     K
	hasKey  bool
	gen     uint64
	cancel  context.CancelFunc
	snap    Snapshot[T]
	pending chan struct{}
	closed  bool
}

// New returns an idle loader. A nil log discards log output.
func New[K comparable, T any](fetch func(ctx context.Context, key K) (T, error), log *zap.Logger) *Loader[K, T] {
	if log == nil {
		log = zap.NewNop()
	}
	return &Loader[K, T]{fetch: fetch, log: log}
}

// OnChange registers fn to receive every published snapshot. Call it before Load.
func (l *Loader[K, T]) OnChange(fn func(Snapshot[T])) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.onChange = fn
}

// Load fetches key unless it is already the current key. It reports whether
// a fetch was started.
func (l *Loader[K, T]) Load(ctx context.Context, key K) bool {
	l.mu.Lock()
	if l.closed || (l.hasKey && l.key == key) {
		l.mu.Unlock()
		return false
	}
	l.key, l.hasKey = key, true
	l.startLocked(ctx)
	l.mu.Unlock()
	l.publish()
	return true
}

// Refresh refetches the current key, e.g. after a filter change.
func (l *Loader[K, T]) Refresh(ctx context.Context) bool {
	l.mu.Lock()
	if l.closed || !l.hasKey {
		l.mu.Unlock()
		return false
	}
	l.startLocked(ctx)
	l.mu.Unlock()
	l.publish()
	return true
}

func (l *Loader[K, T]) startLocked(parent context.Context) {
	l.stopLocked()
	l.gen++
	gen, key := l.gen, l.key
	ctx, cancel := context.WithCancel(parent)
	l.cancel = cancel
	l.pending = make(chan struct{})
	l.snap = Snapshot[T]{State: Loading}

	go func() {
		data, err := l.fetch(ctx, key)
		l.settle(gen, data, err)
	}()
}

// stopLocked cancels the running fetch and wakes its waiters.
func (l *Loader[K, T]) stopLocked() {
	if l.cancel != nil {
		l.cancel()
		l.cancel = nil
	}
	if l.pending != nil {
		close(l.pending)
		l.pending = nil
	}
}

func (l *Loader[K, T]) settle(gen uint64, data T, err error) {
	l.mu.Lock()
	if l.closed || gen != l.gen {
		l.mu.Unlock()
		l.log.Debug("dropping superseded result", zap.Uint64("gen", gen), zap.Error(err))
		return
	}
	s := Snapshot[T]{State: Classify(err), Err: err}
	if err == nil {
		s.Data = data
	} else {
		s.Message = err.Error()
		if s.State == Failed {
			l.log.Warn("view load failed", zap.Error(err))
		}
	}
	l.snap = s
	if l.cancel != nil {
		l.cancel()
		l.cancel = nil
	}
	l.mu.Unlock()

	// Waiters wake only after the listener has seen the result.
	l.publish()
	l.mu.Lock()
	if gen == l.gen && l.pending != nil {
		close(l.pending)
		l.pending = nil
	}
	l.mu.Unlock()
}

// publish hands the current snapshot to the listener, so the last call
// always carries the latest state.
func (l *Loader[K, T]) publish() {
	l.mu.Lock()
	fn, s, closed := l.onChange, l.snap, l.closed
	l.mu.Unlock()
	if fn != nil && !closed {
		fn(s)
	}
}

// Snapshot returns the latest state.
func (l *Loader[K, T]) Snapshot() Snapshot[T] {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.snap
}

// Key returns the current key, if any.
func (l *Loader[K, T]) Key() (K, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.key, l.hasKey
}

// Wait blocks until the current key settles, following any key changes made
// meanwhile.
func (l *Loader[K, T]) Wait(ctx context.Context) (Snapshot[T], error) {
	for {
		l.mu.Lock()
		s, ch, closed := l.snap, l.pending, l.closed
		l.mu.Unlock()
		if ch == nil || closed {
			return s, nil
		}
		select {
		case <-ch:
		case <-ctx.Done():
			return s, ctx.Err()
		}
	}
}

// Reset forgets the current key and data and drops any running fetch. Unlike
// Close it leaves the loader usable: the next Load fetches again.
func (l *Loader[K, T]) Reset() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return
	}
	l.stopLocked()
	l.gen++
	var zero K
	l.key, l.hasKey = zero, false
	l.snap = Snapshot[T]{}
}

// Close cancels any running fetch. Later results are discarded.
func (l *Loader[K, T]) Close() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.closed = true
	l.stopLocked()
}
