package publisher

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	audit "bitid/pkg/platform/audit"
	"bitid/pkg/platform/audit/store/memory"
)

func TestPublisher_SyncMode(t *testing.T) {
	store := memory.NewInMemoryStore()
	pub := NewPublisher(store)
	defer pub.Close()

	event := audit.Event{
		UserID: "u_1",
		Action: string(audit.EventUserCreated),
	}

	err := pub.Emit(context.Background(), event)
	require.NoError(t, err)

	events, err := pub.List(context.Background(), "u_1")
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, string(audit.EventUserCreated), events[0].Action)
}

func TestPublisher_AsyncMode(t *testing.T) {
	store := memory.NewInMemoryStore()
	pub := NewPublisher(store, WithAsyncBuffer(10))
	defer pub.Close()

	event := audit.Event{
		UserID: "u_1",
		Action: string(audit.EventCredentialIssued),
	}

	err := pub.Emit(context.Background(), event)
	require.NoError(t, err)

	// Wait for async processing
	time.Sleep(100 * time.Millisecond)

	events, err := pub.List(context.Background(), "u_1")
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, string(audit.EventCredentialIssued), events[0].Action)
}

func TestPublisher_AsyncDrainsOnClose(t *testing.T) {
	store := memory.NewInMemoryStore()
	pub := NewPublisher(store, WithAsyncBuffer(100))

	for range 10 {
		err := pub.Emit(context.Background(), audit.Event{
			UserID: "u_1",
			Action: string(audit.EventUserCreated),
		})
		require.NoError(t, err)
	}

	// Close should drain all events
	pub.Close()

	events, err := store.ListByUser(context.Background(), "u_1")
	require.NoError(t, err)
	assert.Len(t, events, 10, "all events should be drained on close")
}

func TestPublisher_BufferFull_DropsEvent(t *testing.T) {
	store := memory.NewInMemoryStore()
	pub := NewPublisher(store, WithAsyncBuffer(1))
	defer pub.Close()

	// Fill the buffer with concurrent writes; some emits may drop.
	var wg sync.WaitGroup
	for range 10 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = pub.Emit(context.Background(), audit.Event{
				UserID: "u_1",
				Action: string(audit.EventUserCreated),
			})
		}()
	}
	wg.Wait()
	// Just verify no panic and publisher still works.
}

func TestPublisher_SetsTimestamp(t *testing.T) {
	store := memory.NewInMemoryStore()
	pub := NewPublisher(store)
	defer pub.Close()

	before := time.Now()
	err := pub.Emit(context.Background(), audit.Event{
		UserID: "u_1",
		Action: string(audit.EventUserCreated),
	})
	require.NoError(t, err)
	after := time.Now()

	events, err := pub.List(context.Background(), "u_1")
	require.NoError(t, err)
	require.Len(t, events, 1)

	assert.True(t, !events[0].Timestamp.Before(before), "timestamp should be >= before")
	assert.True(t, !events[0].Timestamp.After(after), "timestamp should be <= after")
}

func TestPublisher_PreservesExistingTimestamp(t *testing.T) {
	store := memory.NewInMemoryStore()
	pub := NewPublisher(store)
	defer pub.Close()

	customTime := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	err := pub.Emit(context.Background(), audit.Event{
		UserID:    "u_1",
		Action:    string(audit.EventUserCreated),
		Timestamp: customTime,
	})
	require.NoError(t, err)

	events, err := pub.List(context.Background(), "u_1")
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, customTime, events[0].Timestamp)
}

type recordingSink struct {
	mu     sync.Mutex
	events []audit.Event
}

func (s *recordingSink) Append(_ context.Context, event audit.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, event)
	return nil
}

func TestPublisher_FansOutToSinks(t *testing.T) {
	store := memory.NewInMemoryStore()
	sink := &recordingSink{}
	pub := NewPublisher(store, WithSink(sink))
	defer pub.Close()

	err := pub.Emit(context.Background(), audit.Event{
		UserID: "u_1",
		Action: string(audit.EventProfileVerified),
	})
	require.NoError(t, err)

	sink.mu.Lock()
	defer sink.mu.Unlock()
	require.Len(t, sink.events, 1)
	assert.Equal(t, string(audit.EventProfileVerified), sink.events[0].Action)
}
