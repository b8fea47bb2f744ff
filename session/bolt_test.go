package session

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestBoltStore(t *testing.T) *BoltStore {
	t.Helper()
	store, err := NewBoltStore(filepath.Join(t.TempDir(), "calls.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestBoltStoreRoundTrip(t *testing.T) {
	store := newTestBoltStore(t)

	require.NoError(t, store.ApplyDelta("call-1", map[string]any{"recording_consent": true}))
	require.NoError(t, store.AppendEvent("call-1", Event{ID: "ev-1", Function: "get_consent", Response: "noted"}))

	call, err := store.Get("call-1")
	require.NoError(t, err)
	v, ok := call.Get("recording_consent")
	assert.True(t, ok)
	assert.Equal(t, true, v)

	events := call.Events()
	require.Len(t, events, 1)
	assert.Equal(t, "get_consent", events[0].Function)
}

func TestBoltStoreDeltaUnsetsNilKeys(t *testing.T) {
	store := newTestBoltStore(t)

	require.NoError(t, store.ApplyDelta("call-1", map[string]any{"a": 1, "b": 2}))
	require.NoError(t, store.ApplyDelta("call-1", map[string]any{"a": nil}))

	call, err := store.Get("call-1")
	require.NoError(t, err)
	_, ok := call.Get("a")
	assert.False(t, ok)
	_, ok = call.Get("b")
	assert.True(t, ok)
}

func TestBoltStorePersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "calls.db")

	store, err := NewBoltStore(path)
	require.NoError(t, err)
	require.NoError(t, store.ApplyDelta("call-1", map[string]any{"amount": "49.99"}))
	require.NoError(t, store.Close())

	reopened, err := NewBoltStore(path)
	require.NoError(t, err)
	defer func() { _ = reopened.Close() }()

	call, err := reopened.Get("call-1")
	require.NoError(t, err)
	v, ok := call.Get("amount")
	assert.True(t, ok)
	assert.Equal(t, "49.99", v)
}

func TestBoltStoreLazyGetCreates(t *testing.T) {
	store := newTestBoltStore(t)
	call, err := store.Get("unknown")
	require.NoError(t, err)
	assert.Equal(t, "unknown", call.ID)
	assert.Empty(t, call.GlobalData)
}
