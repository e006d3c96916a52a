package hub

import "sync"

// Endpoint is one live socket belonging to one user. A user may hold several
// endpoints at once (multiple devices or tabs).
type Endpoint interface {
	// UserID returns the id of the user who owns this endpoint.
	UserID() string
	// Enqueue offers a frame to the endpoint's outbound queue without
	// blocking. It reports false when the queue is full or the endpoint is
	// no longer live; the frame is dropped in that case.
	Enqueue(frame []byte) bool
}

// Registry maps user ids to the set of endpoints the server can push to
// right now. All operations are linearizable with respect to each other; a
// Lookup returns a snapshot, so callers must tolerate endpoints that go
// stale between lookup and use.
type Registry struct {
	mu        sync.RWMutex
	endpoints map[string]map[Endpoint]struct{}
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{endpoints: make(map[string]map[Endpoint]struct{})}
}

// Register adds an endpoint to its user's set. Registering the same endpoint
// twice is a no-op.
func (r *Registry) Register(ep Endpoint) {
	r.mu.Lock()
	defer r.mu.Unlock()

	set, ok := r.endpoints[ep.UserID()]
	if !ok {
		set = make(map[Endpoint]struct{})
		r.endpoints[ep.UserID()] = set
	}
	set[ep] = struct{}{}
}

// Deregister removes exactly the given endpoint. Other endpoints of the same
// user are untouched; deregistering an absent endpoint is a no-op. The user
// entry is dropped once its set becomes empty.
func (r *Registry) Deregister(ep Endpoint) {
	r.mu.Lock()
	defer r.mu.Unlock()

	set, ok := r.endpoints[ep.UserID()]
	if !ok {
		return
	}
	delete(set, ep)
	if len(set) == 0 {
		delete(r.endpoints, ep.UserID())
	}
}

// Lookup returns a snapshot of the user's live endpoints. The slice is owned
// by the caller; an offline user yields an empty result.
func (r *Registry) Lookup(userID string) []Endpoint {
	r.mu.RLock()
	defer r.mu.RUnlock()

	set := r.endpoints[userID]
	if len(set) == 0 {
		return nil
	}
	out := make([]Endpoint, 0, len(set))
	for ep := range set {
		out = append(out, ep)
	}
	return out
}

// NumEndpoints reports the total number of registered endpoints.
func (r *Registry) NumEndpoints() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	n := 0
	for _, set := range r.endpoints {
		n += len(set)
	}
	return n
}
