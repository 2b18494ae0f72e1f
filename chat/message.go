package chat

import "strings"

// Message is a single chat message as delivered by the livechat server.
// The timestamp is kept in its serialized wire form.
type Message struct {
	Username  string `json:"username"`
	Message   string `json:"message"`
	Timestamp string `json:"timestamp"`
}

// ServerError is the payload of a server-side error event.
type ServerError struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// IsAuthError reports whether the error indicates missing or rejected
// authentication. Such errors are informational: the room can still be read,
// only sending is affected.
func (e *ServerError) IsAuthError() bool {
	text := strings.ToLower(e.Error + " " + e.Message)
	for _, marker := range []string{"auth", "unauthorized", "token", "cookie"} {
		if strings.Contains(text, marker) {
			return true
		}
	}
	return false
}

// EventType identifies a client lifecycle or data event.
type EventType string

const (
	EventConnected                   EventType = "connected"
	EventMessage                     EventType = "message"
	EventMessageHistory              EventType = "messageHistory"
	EventError                       EventType = "error"
	EventServerError                 EventType = "serverError"
	EventDisconnected                EventType = "disconnected"
	EventMaxReconnectAttemptsReached EventType = "maxReconnectAttemptsReached"
)

// Event is one item on the client's event stream. Exactly one payload field
// is set, matching Type; lifecycle events carry none.
type Event struct {
	Type        EventType
	Message     *Message
	History     []Message
	Err         error
	ServerError *ServerError
}
