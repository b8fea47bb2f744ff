package session

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	bolt "go.etcd.io/bbolt"
)

var bucketCalls = []byte("calls")

// BoltStore is a durable Store backed by a bbolt database. Calls are stored
// as JSON blobs keyed by call ID, so state survives agent restarts mid-call.
type BoltStore struct {
	db *bolt.DB
}

// NewBoltStore opens (or creates) the database at the given path.
func NewBoltStore(path string) (*BoltStore, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create store dir: %w", err)
		}
	}
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketCalls)
		return err
	})
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return &BoltStore{db: db}, nil
}

// Close releases the underlying DB handle.
func (s *BoltStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Create forces the creation (or overwriting) of a call with the given id.
func (s *BoltStore) Create(callID string) (*Call, error) {
	call := NewCall(callID)
	if err := s.put(call); err != nil {
		return nil, err
	}
	return call, nil
}

// Get returns an existing call or creates a new one lazily.
func (s *BoltStore) Get(callID string) (*Call, error) {
	var raw []byte
	err := s.db.View(func(tx *bolt.Tx) error {
		if data := tx.Bucket(bucketCalls).Get([]byte(callID)); data != nil {
			raw = append([]byte(nil), data...)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if raw == nil {
		return s.Create(callID)
	}
	return decodeCall(raw)
}

// AppendEvent adds an event to an existing or newly created call.
func (s *BoltStore) AppendEvent(callID string, ev Event) error {
	return s.update(callID, func(call *Call) { call.AddEvent(ev) })
}

// ApplyDelta merges a key/value delta into the call's global data.
func (s *BoltStore) ApplyDelta(callID string, delta map[string]any) error {
	return s.update(callID, func(call *Call) { call.ApplyDelta(delta) })
}

// update performs a read-modify-write of a single call inside one bolt
// transaction so concurrent webhook handlers cannot interleave.
func (s *BoltStore) update(callID string, mutate func(*Call)) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket(bucketCalls)

		call := NewCall(callID)
		if data := bucket.Get([]byte(callID)); data != nil {
			decoded, err := decodeCall(data)
			if err != nil {
				return err
			}
			call = decoded
		}

		mutate(call)

		encoded, err := json.Marshal(call)
		if err != nil {
			return fmt.Errorf("encode call %s: %w", callID, err)
		}
		return bucket.Put([]byte(callID), encoded)
	})
}

func (s *BoltStore) put(call *Call) error {
	encoded, err := json.Marshal(call)
	if err != nil {
		return fmt.Errorf("encode call %s: %w", call.ID, err)
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketCalls).Put([]byte(call.ID), encoded)
	})
}

func decodeCall(raw []byte) (*Call, error) {
	var call Call
	if err := json.Unmarshal(raw, &call); err != nil {
		return nil, fmt.Errorf("decode call: %w", err)
	}
	if call.GlobalData == nil {
		call.GlobalData = map[string]any{}
	}
	return &call, nil
}
