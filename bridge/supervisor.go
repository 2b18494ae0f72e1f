package bridge

import (
	"context"
	"log"
	"sync"

	"github.com/google/uuid"

	"github.com/CodingButter/pump-fun-chat-mcp/chat"
)

// ChatClient is the slice of the chat client the supervisor consumes. The
// concrete implementation lives in the chat package; tests substitute fakes.
type ChatClient interface {
	Connect(ctx context.Context) error
	Disconnect()
	Send(text string) error
	Events() <-chan chat.Event
}

// Snapshot is the supervisor state as observed at one instant.
type Snapshot struct {
	Room      string
	Connected bool
	Buffered  int
}

// Supervisor owns the chat client for the process lifetime, folds its event
// stream into the message buffer and a coarse connected flag, and exposes
// read access to both. It never reacts to upstream failures beyond logging;
// reconnection is the client's own business.
type Supervisor struct {
	room   string
	client ChatClient

	mu        sync.RWMutex
	connected bool
	buffer    *Buffer

	done chan struct{}
}

// SupervisorOption customizes supervisor construction.
type SupervisorOption func(s *Supervisor)

// WithClient substitutes the chat client, primarily for tests.
func WithClient(client ChatClient) SupervisorOption {
	return func(s *Supervisor) {
		s.client = client
	}
}

// NewSupervisor creates a supervisor for the given room. Unless overridden,
// it constructs a chat client with a conventional bot identity and a default
// history hint.
func NewSupervisor(room string, options ...SupervisorOption) (*Supervisor, error) {
	s := &Supervisor{
		room:   room,
		buffer: NewBuffer(BufferCapacity),
		done:   make(chan struct{}),
	}
	for _, option := range options {
		option(s)
	}
	if s.client == nil {
		client, err := chat.New(chat.Options{
			RoomID:              room,
			Username:            "mcp-bridge-" + uuid.NewString()[:8],
			MessageHistoryLimit: chat.DefaultMessageHistoryLimit,
		})
		if err != nil {
			return nil, err
		}
		s.client = client
	}
	return s, nil
}

// Start connects the chat client and begins consuming its events. The event
// subscription lasts for the process lifetime.
func (s *Supervisor) Start(ctx context.Context) error {
	if err := s.client.Connect(ctx); err != nil {
		return err
	}
	go s.consume()
	return nil
}

// Stop disconnects the chat client and waits for the event loop to finish.
func (s *Supervisor) Stop() {
	s.client.Disconnect()
	<-s.done
}

func (s *Supervisor) consume() {
	defer close(s.done)
	for ev := range s.client.Events() {
		s.handle(ev)
	}
}

func (s *Supervisor) handle(ev chat.Event) {
	switch ev.Type {
	case chat.EventConnected:
		s.mu.Lock()
		s.connected = true
		s.mu.Unlock()
		log.Printf("bridge: connected to room %s", s.room)
	case chat.EventMessage:
		s.mu.Lock()
		s.buffer.Append(*ev.Message)
		s.mu.Unlock()
	case chat.EventMessageHistory:
		s.mu.Lock()
		for _, m := range ev.History {
			s.buffer.Append(m)
		}
		s.mu.Unlock()
		log.Printf("bridge: ingested %d history messages for room %s", len(ev.History), s.room)
	case chat.EventError:
		log.Printf("bridge: chat error (non-fatal): %v", ev.Err)
	case chat.EventServerError:
		if ev.ServerError.IsAuthError() {
			log.Printf("bridge: server reports %q: sending requires authentication, reads are unaffected", ev.ServerError.Error)
		} else {
			log.Printf("bridge: server error (non-fatal): %s", ev.ServerError.Error)
		}
	case chat.EventDisconnected:
		s.mu.Lock()
		s.connected = false
		s.mu.Unlock()
		log.Printf("bridge: disconnected from room %s", s.room)
	case chat.EventMaxReconnectAttemptsReached:
		log.Printf("bridge: chat client gave up reconnecting to room %s", s.room)
	}
}

// IsConnected reports the coarse connection state.
func (s *Supervisor) IsConnected() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.connected
}

// Send forwards text to the chat client. Delivery is fire-and-forget: write
// failures are absorbed and logged, matching the upstream contract that
// confirmation is never observed.
func (s *Supervisor) Send(text string) {
	if err := s.client.Send(text); err != nil {
		log.Printf("bridge: send failed (non-fatal): %v", err)
	}
}

// Latest returns the most recent buffered message.
func (s *Supervisor) Latest() (chat.Message, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.buffer.Latest()
}

// Recent returns the limit most recent buffered messages, oldest first.
func (s *Supervisor) Recent(limit int) []chat.Message {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.buffer.Recent(limit)
}

// All returns every buffered message, oldest first.
func (s *Supervisor) All() []chat.Message {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.buffer.All()
}

// Snapshot returns the room identity, connection state and buffered count.
func (s *Supervisor) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Snapshot{Room: s.room, Connected: s.connected, Buffered: s.buffer.Len()}
}
