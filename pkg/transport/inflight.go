package transport

import (
	"context"
	"sync"
)

// InFlightRegistry tracks requests that are still being served so they can
// be cancelled and waited for during shutdown. Hijacked connections are
// invisible to http.Server.Shutdown, so the host registers every request
// here for its whole lifetime.
//
// All methods are safe for concurrent access.
type InFlightRegistry struct {
	mu      sync.Mutex
	entries map[string]context.CancelFunc
	wg      sync.WaitGroup
}

// NewInFlightRegistry creates a new empty registry.
func NewInFlightRegistry() *InFlightRegistry {
	return &InFlightRegistry{
		entries: make(map[string]context.CancelFunc),
	}
}

// Register adds an in-flight request. The cancel function is called if the
// request is cancelled through Cancel or CancelAll. Registering an ID that
// is already present replaces its cancel function.
func (r *InFlightRegistry) Register(id string, cancel context.CancelFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.entries[id]; !ok {
		r.wg.Add(1)
	}
	r.entries[id] = cancel
}

// Cancel cancels an in-flight request by calling its cancel function.
// Returns true if the request was registered. The entry stays until the
// request itself calls Remove.
func (r *InFlightRegistry) Cancel(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	cancel, ok := r.entries[id]
	if !ok {
		return false
	}
	cancel()
	return true
}

// CancelAll cancels every registered request and returns how many there were.
func (r *InFlightRegistry) CancelAll() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, cancel := range r.entries {
		cancel()
	}
	return len(r.entries)
}

// Remove removes a request from the registry without cancelling it.
// Called when a request completes, normally or not.
func (r *InFlightRegistry) Remove(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.entries[id]; !ok {
		return
	}
	delete(r.entries, id)
	r.wg.Done()
}

// Len returns the number of registered requests.
func (r *InFlightRegistry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}

// Wait blocks until every registered request has been removed or ctx is
// done, whichever happens first.
func (r *InFlightRegistry) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		r.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
