package bridge

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/CodingButter/pump-fun-chat-mcp/chat"
)

type fakeClient struct {
	events    chan chat.Event
	closeOnce sync.Once

	mu      sync.Mutex
	sent    []string
	sendErr error
}

func newFakeClient() *fakeClient {
	return &fakeClient{events: make(chan chat.Event, 16)}
}

func (f *fakeClient) Connect(context.Context) error { return nil }

func (f *fakeClient) Disconnect() {
	f.closeOnce.Do(func() { close(f.events) })
}

func (f *fakeClient) Send(text string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, text)
	return f.sendErr
}

func (f *fakeClient) Events() <-chan chat.Event { return f.events }

func (f *fakeClient) sentMessages() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.sent...)
}

func newTestSupervisor(t *testing.T, room string) (*Supervisor, *fakeClient) {
	fake := newFakeClient()
	supervisor, err := NewSupervisor(room, WithClient(fake))
	require.NoError(t, err)
	return supervisor, fake
}

func TestNewSupervisorBuildsFallbackClient(t *testing.T) {
	supervisor, err := NewSupervisor("room-1")
	require.NoError(t, err)
	_, ok := supervisor.client.(*chat.Client)
	assert.True(t, ok)

	// Room validation from the chat package propagates.
	_, err = NewSupervisor("")
	assert.Error(t, err)
}

func TestSupervisorSnapshotBeforeConnected(t *testing.T) {
	supervisor, _ := newTestSupervisor(t, "R")
	assert.False(t, supervisor.IsConnected())
	assert.Equal(t, Snapshot{Room: "R", Connected: false, Buffered: 0}, supervisor.Snapshot())
}

func TestSupervisorConnectionLifecycle(t *testing.T) {
	supervisor, _ := newTestSupervisor(t, "R")

	supervisor.handle(chat.Event{Type: chat.EventConnected})
	assert.True(t, supervisor.IsConnected())

	supervisor.handle(chat.Event{Type: chat.EventMessage, Message: ptr(newMessage(1))})
	supervisor.handle(chat.Event{Type: chat.EventMessage, Message: ptr(newMessage(2))})
	assert.Equal(t, 2, supervisor.Snapshot().Buffered)

	supervisor.handle(chat.Event{Type: chat.EventDisconnected})
	assert.False(t, supervisor.IsConnected())
	assert.Equal(t, 2, supervisor.Snapshot().Buffered, "buffer survives disconnects")
}

func TestSupervisorHistoryIngestion(t *testing.T) {
	supervisor, _ := newTestSupervisor(t, "R")
	supervisor.handle(chat.Event{Type: chat.EventConnected})
	supervisor.handle(chat.Event{
		Type:    chat.EventMessageHistory,
		History: []chat.Message{newMessage(1), newMessage(2)},
	})
	supervisor.handle(chat.Event{Type: chat.EventMessage, Message: ptr(newMessage(3))})

	all := supervisor.All()
	assert.Equal(t, []chat.Message{newMessage(1), newMessage(2), newMessage(3)}, all)

	latest, ok := supervisor.Latest()
	assert.True(t, ok)
	assert.Equal(t, newMessage(3), latest)
}

func TestSupervisorErrorsAreAbsorbed(t *testing.T) {
	supervisor, _ := newTestSupervisor(t, "R")
	supervisor.handle(chat.Event{Type: chat.EventConnected})

	supervisor.handle(chat.Event{Type: chat.EventError, Err: errors.New("read: boom")})
	supervisor.handle(chat.Event{Type: chat.EventServerError, ServerError: &chat.ServerError{Error: "Authentication required"}})

	assert.True(t, supervisor.IsConnected(), "errors never change connection state")
}

func TestSupervisorSendAbsorbsClientError(t *testing.T) {
	supervisor, fake := newTestSupervisor(t, "R")
	fake.sendErr = errors.New("not connected")

	supervisor.Send("hello")
	assert.Equal(t, []string{"hello"}, fake.sentMessages())
}

func TestSupervisorStartConsumesEventStream(t *testing.T) {
	supervisor, fake := newTestSupervisor(t, "R")
	require.NoError(t, supervisor.Start(context.Background()))

	fake.events <- chat.Event{Type: chat.EventConnected}
	fake.events <- chat.Event{Type: chat.EventMessage, Message: ptr(newMessage(1))}

	assert.Eventually(t, func() bool {
		snapshot := supervisor.Snapshot()
		return snapshot.Connected && snapshot.Buffered == 1
	}, time.Second, 10*time.Millisecond)

	supervisor.Stop()
}

func ptr(m chat.Message) *chat.Message { return &m }
