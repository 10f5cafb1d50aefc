package bridge

import "sync"

type pendingKey struct {
	capability Capability
	requestID  string
}

// PendingRequestRegistry tracks outstanding message-passing requests keyed by
// (capability, request-id). It enforces at most one live registration per
// capability, so a late response from an earlier request can never resolve a
// newer request's waiter.
type PendingRequestRegistry struct {
	mu      sync.Mutex
	live    map[Capability]string
	pending map[pendingKey]chan CallResult
}

func NewPendingRequestRegistry() *PendingRequestRegistry {
	return &PendingRequestRegistry{
		live:    make(map[Capability]string),
		pending: make(map[pendingKey]chan CallResult),
	}
}

// Insert registers a waiter for (capability, requestID). It fails with
// ErrRequestPending while another request for the capability is live.
func (r *PendingRequestRegistry) Insert(capability Capability, requestID string) (<-chan CallResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, busy := r.live[capability]; busy {
		return nil, ErrRequestPending
	}

	ch := make(chan CallResult, 1)
	r.live[capability] = requestID
	r.pending[pendingKey{capability, requestID}] = ch
	return ch, nil
}

// Resolve delivers a result to the waiter for (capability, requestID) and
// clears the registration. Resolving an unknown or already-evicted request
// is a no-op returning false.
func (r *PendingRequestRegistry) Resolve(capability Capability, requestID string, res CallResult) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := pendingKey{capability, requestID}
	ch, ok := r.pending[key]
	if !ok {
		return false
	}
	delete(r.pending, key)
	delete(r.live, capability)
	ch <- res
	return true
}

// ResolveLive delivers a result to whichever request is live for the
// capability. Used when a host callback omits the request id.
func (r *PendingRequestRegistry) ResolveLive(capability Capability, res CallResult) bool {
	r.mu.Lock()
	requestID, ok := r.live[capability]
	r.mu.Unlock()
	if !ok {
		return false
	}
	return r.Resolve(capability, requestID, res)
}

// Evict clears a registration without delivering a result. Used on timeout
// and on post failure.
func (r *PendingRequestRegistry) Evict(capability Capability, requestID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := pendingKey{capability, requestID}
	if _, ok := r.pending[key]; !ok {
		return false
	}
	delete(r.pending, key)
	delete(r.live, capability)
	return true
}

// PendingCount reports the number of outstanding requests.
func (r *PendingRequestRegistry) PendingCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.pending)
}
