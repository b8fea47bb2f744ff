package session

import "sync"

// InMemoryStore is a volatile Store implementation keeping calls in a process
// local map. It is safe for concurrent access and best suited for tests or
// ephemeral demo servers. Each returned call is cloned to prevent external
// mutation of internal state.
type InMemoryStore struct {
	mu    sync.RWMutex
	calls map[string]*Call
}

// NewInMemoryStore constructs an empty in-memory call store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{calls: make(map[string]*Call)}
}

// Get returns an existing call (clone) or creates a new one lazily.
func (s *InMemoryStore) Get(callID string) (*Call, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if call, ok := s.calls[callID]; ok {
		return call.Clone(), nil
	}
	return s.createCallLocked(callID).Clone(), nil
}

// Create forces the creation (or overwriting) of a call with the given id.
func (s *InMemoryStore) Create(callID string) (*Call, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.createCallLocked(callID).Clone(), nil
}

// AppendEvent adds an event to an existing or newly created call.
func (s *InMemoryStore) AppendEvent(callID string, ev Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	call, ok := s.calls[callID]
	if !ok {
		call = s.createCallLocked(callID)
	}
	call.AddEvent(ev)
	return nil
}

// ApplyDelta merges a key/value delta into the call's global data.
func (s *InMemoryStore) ApplyDelta(callID string, delta map[string]any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	call, ok := s.calls[callID]
	if !ok {
		call = s.createCallLocked(callID)
	}
	call.ApplyDelta(delta)
	return nil
}

// createCallLocked allocates and stores a new call; caller must already hold
// the write lock.
func (s *InMemoryStore) createCallLocked(callID string) *Call {
	call := NewCall(callID)
	s.calls[callID] = call
	return call
}
