// Package chat implements a socket.io client for pump.fun livechat rooms.
//
// The client owns the realtime connection end to end: websocket dial,
// engine.io handshake, ping/pong keep-alive, acknowledgment-id correlation
// and reconnection with exponential backoff. Consumers observe it purely
// through the Event stream returned by Events.
package chat

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"github.com/CodingButter/pump-fun-chat-mcp/internal/collection"
)

// DefaultMessageHistoryLimit is the retention applied when Options leaves
// MessageHistoryLimit unset; it also bounds the history requested on join.
const DefaultMessageHistoryLimit = 100

const (
	defaultServerURL            = "wss://livechat.pump.fun"
	defaultMaxReconnectAttempts = 10
	defaultReconnectDelay       = time.Second
	defaultMaxReconnectDelay    = 30 * time.Second

	writeTimeout    = 10 * time.Second
	eventBufferSize = 256
)

// Options configure a Client. RoomID is required; everything else has a
// working default.
type Options struct {
	RoomID               string
	Username             string
	MessageHistoryLimit  int
	ServerURL            string
	MaxReconnectAttempts int
	ReconnectDelay       time.Duration
	MaxReconnectDelay    time.Duration
}

type ackFunc func(args []json.RawMessage)

// Client maintains one long-lived connection to a single chat room.
type Client struct {
	opts    Options
	events  chan Event
	pending *collection.SyncMap[int64, ackFunc]
	ackSeq  atomic.Int64
	done    chan struct{}

	mu       sync.Mutex
	conn     *websocket.Conn
	cancel   context.CancelFunc
	started  bool
	messages []Message

	writeMu sync.Mutex
}

// New creates a client bound to the given room. The connection is not
// established until Connect is called.
func New(opts Options) (*Client, error) {
	if opts.RoomID == "" {
		return nil, fmt.Errorf("room id is required")
	}
	if opts.Username == "" {
		opts.Username = "anonymous"
	}
	if opts.MessageHistoryLimit <= 0 {
		opts.MessageHistoryLimit = DefaultMessageHistoryLimit
	}
	if opts.ServerURL == "" {
		opts.ServerURL = defaultServerURL
	}
	if opts.MaxReconnectAttempts <= 0 {
		opts.MaxReconnectAttempts = defaultMaxReconnectAttempts
	}
	if opts.ReconnectDelay <= 0 {
		opts.ReconnectDelay = defaultReconnectDelay
	}
	if opts.MaxReconnectDelay <= 0 {
		opts.MaxReconnectDelay = defaultMaxReconnectDelay
	}
	return &Client{
		opts:    opts,
		events:  make(chan Event, eventBufferSize),
		pending: collection.NewSyncMap[int64, ackFunc](),
		done:    make(chan struct{}),
	}, nil
}

// Events returns the client event stream. The channel is closed once the
// client gives up reconnecting or is disconnected.
func (c *Client) Events() <-chan Event {
	return c.events
}

// Connect starts the connection loop. It returns immediately; connection
// progress and failures are reported on the event stream.
func (c *Client) Connect(ctx context.Context) error {
	c.mu.Lock()
	if c.started {
		c.mu.Unlock()
		return fmt.Errorf("chat client already started")
	}
	c.started = true
	ctx, c.cancel = context.WithCancel(ctx)
	c.mu.Unlock()
	go c.run(ctx)
	return nil
}

// Disconnect stops the connection loop and waits for it to unwind. Safe to
// call regardless of connection state.
func (c *Client) Disconnect() {
	c.mu.Lock()
	cancel := c.cancel
	conn := c.conn
	started := c.started
	c.mu.Unlock()
	if !started {
		return
	}
	if cancel != nil {
		cancel()
	}
	if conn != nil {
		_ = conn.Close()
	}
	<-c.done
}

// Send emits a sendMessage event for the bound room. Delivery confirmation is
// not awaited; the server silently drops unauthenticated sends.
func (c *Client) Send(text string) error {
	return c.emitEvent("sendMessage", map[string]any{
		"roomId":  c.opts.RoomID,
		"message": text,
	}, nil)
}

// GetMessages returns up to limit most recent retained messages in
// chronological order; limit <= 0 returns everything retained.
func (c *Client) GetMessages(limit int) []Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	if limit <= 0 || limit > len(c.messages) {
		limit = len(c.messages)
	}
	out := make([]Message, limit)
	copy(out, c.messages[len(c.messages)-limit:])
	return out
}

// GetLatestMessage returns the most recent retained message, if any.
func (c *Client) GetLatestMessage() (Message, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.messages) == 0 {
		return Message{}, false
	}
	return c.messages[len(c.messages)-1], true
}

func (c *Client) run(ctx context.Context) {
	defer close(c.events)
	defer close(c.done)
	attempt := 0
	for {
		established, err := c.session(ctx)
		if established {
			attempt = 0
			c.emit(Event{Type: EventDisconnected})
		}
		if ctx.Err() != nil {
			return
		}
		if err != nil {
			c.emit(Event{Type: EventError, Err: err})
		}
		attempt++
		if attempt > c.opts.MaxReconnectAttempts {
			c.emit(Event{Type: EventMaxReconnectAttemptsReached})
			return
		}
		select {
		case <-ctx.Done():
			return
		case <-time.After(c.backoff(attempt)):
		}
	}
}

func (c *Client) backoff(attempt int) time.Duration {
	delay := c.opts.ReconnectDelay
	for i := 1; i < attempt && delay < c.opts.MaxReconnectDelay; i++ {
		delay *= 2
	}
	if delay > c.opts.MaxReconnectDelay {
		delay = c.opts.MaxReconnectDelay
	}
	return delay
}

// session runs one websocket connection until it fails or the context is
// cancelled. It reports whether the socket.io namespace was established.
func (c *Client) session(ctx context.Context) (bool, error) {
	endpoint := c.opts.ServerURL + "/socket.io/?EIO=4&transport=websocket"
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, endpoint, nil)
	if err != nil {
		return false, fmt.Errorf("dial %s: %w", endpoint, err)
	}
	c.setConn(conn)
	stop := make(chan struct{})
	defer func() {
		close(stop)
		c.setConn(nil)
		_ = conn.Close()
	}()
	go func() {
		select {
		case <-ctx.Done():
			_ = conn.Close()
		case <-stop:
		}
	}()

	established := false
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return established, fmt.Errorf("read: %w", err)
		}
		p, err := parsePacket(data)
		if err != nil {
			c.emit(Event{Type: EventError, Err: err})
			continue
		}
		switch p.engineType {
		case enginePacketOpen:
			// engine.io session is up; request the default namespace
			if err := c.write([]byte{enginePacketMessage, socketPacketConnect}); err != nil {
				return established, err
			}
		case enginePacketPing:
			if err := c.write([]byte{enginePacketPong}); err != nil {
				return established, err
			}
		case enginePacketClose:
			return established, nil
		case enginePacketMessage:
			switch p.socketType {
			case socketPacketConnect:
				established = true
				c.emit(Event{Type: EventConnected})
				if err := c.joinRoom(); err != nil {
					return established, err
				}
			case socketPacketConnectError:
				return established, fmt.Errorf("namespace refused: %s", p.payload)
			case socketPacketEvent:
				c.handleEvent(p)
			case socketPacketAck:
				c.resolveAck(p)
			}
		}
	}
}

func (c *Client) joinRoom() error {
	if err := c.emitEvent("joinRoom", map[string]any{
		"roomId":   c.opts.RoomID,
		"username": c.opts.Username,
	}, nil); err != nil {
		return err
	}
	// The server pushes history after joinRoom on most deployments; the
	// explicit request covers the ones that only reply to the ack.
	return c.emitEvent("getMessageHistory", map[string]any{
		"roomId": c.opts.RoomID,
		"limit":  c.opts.MessageHistoryLimit,
	}, c.ingestHistory)
}

func (c *Client) ingestHistory(args []json.RawMessage) {
	if len(args) == 0 {
		return
	}
	var history []Message
	if err := json.Unmarshal(args[0], &history); err != nil {
		c.emit(Event{Type: EventError, Err: fmt.Errorf("decode history: %w", err)})
		return
	}
	if len(history) == 0 {
		return
	}
	for _, m := range history {
		c.record(m)
	}
	c.emit(Event{Type: EventMessageHistory, History: history})
}

func (c *Client) handleEvent(p packet) {
	name, args, err := decodeEventArgs(p.payload)
	if err != nil {
		c.emit(Event{Type: EventError, Err: err})
		return
	}
	if p.ackID >= 0 {
		if reply, err := encodeAck(p.ackID); err == nil {
			_ = c.write(reply)
		}
	}
	var first json.RawMessage
	if len(args) > 0 {
		first = args[0]
	}
	switch name {
	case "newMessage":
		var m Message
		if err := json.Unmarshal(first, &m); err != nil {
			c.emit(Event{Type: EventError, Err: fmt.Errorf("decode message: %w", err)})
			return
		}
		c.record(m)
		c.emit(Event{Type: EventMessage, Message: &m})
	case "messageHistory":
		c.ingestHistory(args)
	case "serverError":
		var se ServerError
		if err := json.Unmarshal(first, &se); err != nil {
			c.emit(Event{Type: EventError, Err: fmt.Errorf("decode server error: %w", err)})
			return
		}
		c.emit(Event{Type: EventServerError, ServerError: &se})
	}
}

func (c *Client) resolveAck(p packet) {
	if p.ackID < 0 {
		return
	}
	fn, ok := c.pending.Take(p.ackID)
	if !ok {
		return
	}
	var args []json.RawMessage
	if err := json.Unmarshal(p.payload, &args); err != nil {
		c.emit(Event{Type: EventError, Err: fmt.Errorf("decode ack %d: %w", p.ackID, err)})
		return
	}
	fn(args)
}

func (c *Client) emitEvent(name string, arg any, ack ackFunc) error {
	id := int64(-1)
	if ack != nil {
		id = c.ackSeq.Add(1)
		c.pending.Put(id, ack)
	}
	data, err := encodeEvent(id, name, arg)
	if err != nil {
		return err
	}
	if err := c.write(data); err != nil {
		if id >= 0 {
			c.pending.Take(id)
		}
		return err
	}
	return nil
}

func (c *Client) record(m Message) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.messages = append(c.messages, m)
	if limit := c.opts.MessageHistoryLimit; len(c.messages) > limit {
		c.messages = append(c.messages[:0:0], c.messages[len(c.messages)-limit:]...)
	}
}

func (c *Client) setConn(conn *websocket.Conn) {
	c.mu.Lock()
	c.conn = conn
	c.mu.Unlock()
}

func (c *Client) write(data []byte) error {
	c.mu.Lock()
	conn := c.conn
	c.mu.Unlock()
	if conn == nil {
		return fmt.Errorf("not connected")
	}
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	_ = conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	return conn.WriteMessage(websocket.TextMessage, data)
}

// emit delivers an event without ever blocking the read loop; a stalled
// consumer loses events rather than stalling the connection.
func (c *Client) emit(ev Event) {
	select {
	case c.events <- ev:
	default:
		log.Printf("chat: dropping %s event, consumer not keeping up", ev.Type)
	}
}
