// Package selection holds an ordered, selectable list of items and applies
// confirmed batch deletions to it.
package selection

import (
	"sync"

	"github.com/gofrs/uuid/v5"
)

// Collection is an ordered list of items, a mode (the filter the items were
// loaded for) and the set of selected ids. The selected set never holds an id
// that is not loaded.
type Collection[T any] struct {
	id func(T) uuid.UUID

	mu       sync.RWMutex
	mode     string
	items    []T
	selected map[uuid.UUID]struct{}
}

// NewCollection builds an empty collection; id extracts an item's identity.
func NewCollection[T any](id func(T) uuid.UUID) *Collection[T] {
	return &Collection[T]{id: id, selected: map[uuid.UUID]struct{}{}}
}

// Load replaces the items and clears the selection.
func (c *Collection[T]) Load(items []T) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = append([]T(nil), items...)
	clear(c.selected)
}

// SetMode switches the filter and clears the selection, even when the mode
// does not change.
func (c *Collection[T]) SetMode(mode string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.mode = mode
	clear(c.selected)
}

// Mode returns the filter the items were loaded under.
func (c *Collection[T]) Mode() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.mode
}

// Items returns a copy of the loaded items in order.
func (c *Collection[T]) Items() []T {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]T(nil), c.items...)
}

// Len is the number of loaded items.
func (c *Collection[T]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}

// Toggle flips the selection of id. Unknown ids are ignored; the result
// reports whether id is selected afterwards.
func (c *Collection[T]) Toggle(id uuid.UUID) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.loaded(id) {
		return false
	}
	if _, ok := c.selected[id]; ok {
		delete(c.selected, id)
		return false
	}
	c.selected[id] = struct{}{}
	return true
}

// Select marks every loaded id in ids as selected.
func (c *Collection[T]) Select(ids ...uuid.UUID) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, id := range ids {
		if c.loaded(id) {
			c.selected[id] = struct{}{}
		}
	}
}

// IsSelected reports whether id is in the selection.
func (c *Collection[T]) IsSelected(id uuid.UUID) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.selected[id]
	return ok
}

// Selected returns the selected ids in collection order.
func (c *Collection[T]) Selected() []uuid.UUID {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]uuid.UUID, 0, len(c.selected))
	for _, it := range c.items {
		if _, ok := c.selected[c.id(it)]; ok {
			out = append(out, c.id(it))
		}
	}
	return out
}

// ClearSelection empties the selection and keeps the items.
func (c *Collection[T]) ClearSelection() {
	c.mu.Lock()
	defer c.mu.Unlock()
	clear(c.selected)
}

// RemoveIDs drops the listed items, keeping the order of the rest, and
// forgets their selection.
func (c *Collection[T]) RemoveIDs(ids []uuid.UUID) {
	drop := make(map[uuid.UUID]struct{}, len(ids))
	for _, id := range ids {
		drop[id] = struct{}{}
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	kept := c.items[:0:0]
	for _, it := range c.items {
		if _, gone := drop[c.id(it)]; gone {
			delete(c.selected, c.id(it))
			continue
		}
		kept = append(kept, it)
	}
	c.items = kept
}

func (c *Collection[T]) loaded(id uuid.UUID) bool {
	for _, it := range c.items {
		if c.id(it) == id {
			return true
		}
	}
	return false
}
