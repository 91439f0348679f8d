package gateway

import "sync"

// AuthBus fans auth events out to subscribers.
type AuthBus struct {
	mu   sync.Mutex
	next int
	subs map[int]func(AuthEvent)
}

// Subscribe registers fn. The returned function is idempotent.
func (b *AuthBus) Subscribe(fn func(AuthEvent)) func() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.subs == nil {
		b.subs = map[int]func(AuthEvent){}
	}
	id := b.next
	b.next++
	b.subs[id] = fn

	var once sync.Once
	return func() {
		once.Do(func() {
			b.mu.Lock()
			delete(b.subs, id)
			b.mu.Unlock()
		})
	}
}

// Publish calls every subscriber outside the lock, so handlers may unsubscribe.
func (b *AuthBus) Publish(ev AuthEvent) {
	b.mu.Lock()
	fns := make([]func(AuthEvent), 0, len(b.subs))
	for _, fn := range b.subs {
		fns = append(fns, fn)
	}
	b.mu.Unlock()
	for _, fn := range fns {
		fn(ev)
	}
}

// Len reports the number of live subscriptions.
func (b *AuthBus) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs)
}
