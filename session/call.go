package session

import (
	"sync"
	"time"
)

// Event records one SWAIG function invocation on a call.
type Event struct {
	ID        string    `json:"id"`
	Function  string    `json:"function"`
	Arguments string    `json:"arguments,omitempty"` // Serialized argument payload
	Response  string    `json:"response,omitempty"`  // Natural language result text
	Error     string    `json:"error,omitempty"`     // Populated on failure
	Timestamp time.Time `json:"timestamp"`
}

// Call represents the state of a single platform call: the global data map
// visible to SWAIG functions plus an ordered event history. It is safe for
// concurrent access.
//
// Contract:
//   - State mutations update the Updated timestamp
//   - Events returns a defensive copy to avoid external mutation
//   - ApplyDelta treats nil values as key removal (matching unset_global_data)
//   - Clone performs deep copies of maps/slices for safe divergence
type Call struct {
	ID         string         `json:"id"`
	GlobalData map[string]any `json:"global_data"`
	History    []Event        `json:"history"`
	Created    time.Time      `json:"created"`
	Updated    time.Time      `json:"updated"`
	mu         sync.RWMutex
}

// NewCall creates an empty call record with the given ID.
func NewCall(id string) *Call {
	now := time.Now().UTC()
	return &Call{ID: id, GlobalData: map[string]any{}, History: []Event{}, Created: now, Updated: now}
}

// Get returns the value and existence flag for a global data key.
func (c *Call) Get(key string) (any, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	v, ok := c.GlobalData[key]
	return v, ok
}

// Set stores a global data key/value pair updating the Updated timestamp.
func (c *Call) Set(key string, value any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.GlobalData[key] = value
	c.Updated = time.Now().UTC()
}

// ApplyDelta merges key/value pairs into the global data. Nil values delete
// the key, mirroring the unset_global_data action semantics.
func (c *Call) ApplyDelta(delta map[string]any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for k, v := range delta {
		if v == nil {
			delete(c.GlobalData, k)
			continue
		}
		c.GlobalData[k] = v
	}
	c.Updated = time.Now().UTC()
}

// AddEvent appends an event to the history updating the Updated timestamp.
func (c *Call) AddEvent(ev Event) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.History = append(c.History, ev)
	c.Updated = time.Now().UTC()
}

// Events returns a defensive copy of the full event slice.
func (c *Call) Events() []Event {
	c.mu.RLock()
	defer c.mu.RUnlock()
	events := make([]Event, len(c.History))
	copy(events, c.History)
	return events
}

// Snapshot returns a copy of the global data map safe for handing to SWAIG
// call contexts.
func (c *Call) Snapshot() map[string]any {
	c.mu.RLock()
	defer c.mu.RUnlock()
	snap := make(map[string]any, len(c.GlobalData))
	for k, v := range c.GlobalData {
		snap[k] = v
	}
	return snap
}

// Clone returns a deep copy of the call safe for independent mutation.
func (c *Call) Clone() *Call {
	c.mu.RLock()
	defer c.mu.RUnlock()
	clone := &Call{ID: c.ID, GlobalData: make(map[string]any, len(c.GlobalData)), History: make([]Event, len(c.History)), Created: c.Created, Updated: c.Updated}
	for k, v := range c.GlobalData {
		clone.GlobalData[k] = v
	}
	copy(clone.History, c.History)
	return clone
}

// Store persists calls and their evolving global data / event history.
type Store interface {
	Create(id string) (*Call, error)
	Get(id string) (*Call, error)
	AppendEvent(callID string, event Event) error
	ApplyDelta(callID string, delta map[string]any) error
}
