package chat

import (
	"log/slog"
	"sort"
	"sync"
)

// Registry fans one event kind out to any number of subscribers.
//
// Concurrency guarantees:
//   - Subscribe/unsubscribe are safe to call from within a callback:
//     dispatch iterates a snapshot, never the live set.
//   - A panicking callback is recovered and logged; remaining callbacks in
//     the same dispatch still run.
type Registry[T any] struct {
	log  *slog.Logger
	kind string

	mu   sync.Mutex
	next int
	subs map[int]func(T)
}

// NewRegistry constructs a registry for one event kind.
func NewRegistry[T any](log *slog.Logger, kind string) *Registry[T] {
	return &Registry[T]{
		log:  log,
		kind: kind,
		subs: make(map[int]func(T)),
	}
}

// Subscribe registers a callback and returns its unsubscribe function.
// Unsubscribing removes exactly this registration and is idempotent.
func (r *Registry[T]) Subscribe(fn func(T)) func() {
	if fn == nil {
		return func() {}
	}

	r.mu.Lock()
	id := r.next
	r.next++
	r.subs[id] = fn
	r.mu.Unlock()

	return func() {
		r.mu.Lock()
		delete(r.subs, id)
		r.mu.Unlock()
	}
}

// Dispatch delivers v to every currently registered callback, in
// registration order.
func (r *Registry[T]) Dispatch(v T) {
	r.mu.Lock()
	ids := make([]int, 0, len(r.subs))
	for id := range r.subs {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	fns := make([]func(T), 0, len(ids))
	for _, id := range ids {
		fns = append(fns, r.subs[id])
	}
	r.mu.Unlock()

	for _, fn := range fns {
		r.invoke(fn, v)
	}
}

func (r *Registry[T]) invoke(fn func(T), v T) {
	defer func() {
		if rec := recover(); rec != nil {
			r.log.Error("registry.listener.panic", "kind", r.kind, "panic", rec)
		}
	}()
	fn(v)
}

// Len returns the number of registered callbacks.
func (r *Registry[T]) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.subs)
}

// Clear removes every registered callback.
func (r *Registry[T]) Clear() {
	r.mu.Lock()
	r.subs = make(map[int]func(T))
	r.mu.Unlock()
}
