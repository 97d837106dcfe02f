// Package observable provides a record with synchronous change notification.
package observable

import "sync"

// Value holds a record of type T and notifies observers whenever it changes.
//
// Every call to Set runs exactly one notification cycle before returning.
// Observers are called in registration order with the full record.
type Value[T any] struct {
	mu        sync.RWMutex
	current   T
	observers []*observer[T]
	nextID    uint64
}

type observer[T any] struct {
	id uint64
	fn func(T)
}

// New creates a Value holding initial.
func New[T any](initial T) *Value[T] {
	return &Value[T]{current: initial}
}

// Get returns a copy of the current record without notifying anyone.
func (v *Value[T]) Get() T {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.current
}

// Set applies update to a copy of the record, stores the result and
// notifies every observer registered when the cycle started.
// Fields update does not touch are preserved.
func (v *Value[T]) Set(update func(*T)) T {
	v.mu.Lock()
	next := v.current
	if update != nil {
		update(&next)
	}
	v.current = next

	// Snapshot so that observers may subscribe or cancel from inside a cycle.
	queued := make([]*observer[T], len(v.observers))
	copy(queued, v.observers)
	v.mu.Unlock()

	for _, o := range queued {
		o.fn(next)
	}

	return next
}

// Subscribe registers fn and returns a function that removes it.
// The returned function is idempotent.
func (v *Value[T]) Subscribe(fn func(T)) (cancel func()) {
	v.mu.Lock()
	defer v.mu.Unlock()

	v.nextID++
	id := v.nextID
	v.observers = append(v.observers, &observer[T]{id: id, fn: fn})

	return func() {
		v.mu.Lock()
		defer v.mu.Unlock()

		for i, o := range v.observers {
			if o.id == id {
				// Build a new slice so snapshots taken by running cycles stay intact
				kept := make([]*observer[T], 0, len(v.observers)-1)
				kept = append(kept, v.observers[:i]...)
				kept = append(kept, v.observers[i+1:]...)
				v.observers = kept
				return
			}
		}
	}
}

// Len returns the number of registered observers.
func (v *Value[T]) Len() int {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return len(v.observers)
}
