package session

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInMemoryStoreLazyGet(t *testing.T) {
	store := NewInMemoryStore()
	call, err := store.Get("call-1")
	require.NoError(t, err)
	assert.Equal(t, "call-1", call.ID)
	assert.Empty(t, call.GlobalData)
}

func TestInMemoryStoreApplyDelta(t *testing.T) {
	store := NewInMemoryStore()
	require.NoError(t, store.ApplyDelta("call-1", map[string]any{"recording_consent": true}))
	require.NoError(t, store.ApplyDelta("call-1", map[string]any{"recording_consent": nil, "amount": "49.99"}))

	call, err := store.Get("call-1")
	require.NoError(t, err)
	_, ok := call.Get("recording_consent")
	assert.False(t, ok)
	v, ok := call.Get("amount")
	assert.True(t, ok)
	assert.Equal(t, "49.99", v)
}

func TestInMemoryStoreAppendEvent(t *testing.T) {
	store := NewInMemoryStore()
	require.NoError(t, store.AppendEvent("call-1", Event{ID: "ev-1", Function: "get_consent"}))
	require.NoError(t, store.AppendEvent("call-1", Event{ID: "ev-2", Function: "process_payment"}))

	call, err := store.Get("call-1")
	require.NoError(t, err)
	events := call.Events()
	require.Len(t, events, 2)
	assert.Equal(t, "get_consent", events[0].Function)
	assert.Equal(t, "process_payment", events[1].Function)
}

func TestInMemoryStoreReturnsClones(t *testing.T) {
	store := NewInMemoryStore()
	call, err := store.Get("call-1")
	require.NoError(t, err)
	call.Set("tampered", true)

	fresh, err := store.Get("call-1")
	require.NoError(t, err)
	_, ok := fresh.Get("tampered")
	assert.False(t, ok)
}
