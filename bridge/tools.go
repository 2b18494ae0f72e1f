package bridge

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/viant/jsonrpc"
	"github.com/viant/mcp-protocol/schema"
	protoserver "github.com/viant/mcp-protocol/server"

	"github.com/CodingButter/pump-fun-chat-mcp/chat"
)

const (
	notConnectedText = "Not connected to pump.fun chat. The connection is established asynchronously; try again shortly."
	cannotSendText   = "Cannot send message: not connected to pump.fun chat."
	noMessagesText   = "No messages received yet."
)

type readMessagesInput struct {
	Limit *int `json:"limit,omitempty" description:"Maximum number of messages to return; all buffered messages when omitted"`
}

type latestMessageInput struct{}

type sendMessageInput struct {
	Message string `json:"message" description:"Text to send to the chat room"`
}

type statusInput struct{}

// textOutput declares the output shape shared by the whole catalog: every
// tool returns a single text block.
type textOutput struct {
	Text string `json:"text"`
}

// toolHandlers binds the tool catalog to supervisor state. The handlers hold
// no state of their own: every call reads the supervisor synchronously, or
// forwards a send.
type toolHandlers struct {
	supervisor *Supervisor
}

func (t *toolHandlers) readMessages(_ context.Context, input *readMessagesInput) (*schema.CallToolResult, *jsonrpc.Error) {
	if input.Limit != nil && *input.Limit < 0 {
		return nil, jsonrpc.NewInvalidParamsError("limit must be non-negative", nil)
	}
	if !t.supervisor.IsConnected() {
		return textResult(notConnectedText), nil
	}
	var messages []chat.Message
	if input.Limit == nil {
		messages = t.supervisor.All()
	} else {
		messages = t.supervisor.Recent(*input.Limit)
	}
	if len(messages) == 0 {
		return textResult(noMessagesText), nil
	}
	lines := make([]string, 0, len(messages))
	for _, m := range messages {
		lines = append(lines, formatMessage(m))
	}
	return textResult(strings.Join(lines, "\n")), nil
}

func (t *toolHandlers) latestMessage(context.Context, *latestMessageInput) (*schema.CallToolResult, *jsonrpc.Error) {
	if !t.supervisor.IsConnected() {
		return textResult(notConnectedText), nil
	}
	latest, ok := t.supervisor.Latest()
	if !ok {
		return textResult(noMessagesText), nil
	}
	return textResult(formatMessage(latest)), nil
}

func (t *toolHandlers) sendMessage(_ context.Context, input *sendMessageInput) (*schema.CallToolResult, *jsonrpc.Error) {
	if strings.TrimSpace(input.Message) == "" {
		return nil, jsonrpc.NewInvalidParamsError("message must be a non-empty string", nil)
	}
	if !t.supervisor.IsConnected() {
		return textResult(cannotSendText), nil
	}
	t.supervisor.Send(input.Message)
	snapshot := t.supervisor.Snapshot()
	return textResult(fmt.Sprintf(
		"Message sent to room %s. Delivery depends on upstream authentication; unauthenticated sends may be dropped by the server.",
		snapshot.Room)), nil
}

func (t *toolHandlers) status(context.Context, *statusInput) (*schema.CallToolResult, *jsonrpc.Error) {
	snapshot := t.supervisor.Snapshot()
	state := "disconnected"
	if snapshot.Connected {
		state = "connected"
	}
	return textResult(fmt.Sprintf("Room: %s\nConnection: %s\nBuffered messages: %d",
		snapshot.Room, state, snapshot.Buffered)), nil
}

// registerTools declares the tool catalog on the handler registry. Unknown
// tool names never reach a handler: the registry rejects them with a JSON-RPC
// error.
func registerTools(handler *protoserver.DefaultHandler, supervisor *Supervisor) error {
	handlers := &toolHandlers{supervisor: supervisor}
	if err := protoserver.RegisterTool[*readMessagesInput, *textOutput](handler.Registry, "read_messages",
		"Read recent messages from the pump.fun chat room, oldest first", handlers.readMessages); err != nil {
		return err
	}
	if err := protoserver.RegisterTool[*latestMessageInput, *textOutput](handler.Registry, "get_latest_message",
		"Get the most recent message from the pump.fun chat room", handlers.latestMessage); err != nil {
		return err
	}
	if err := protoserver.RegisterTool[*sendMessageInput, *textOutput](handler.Registry, "send_message",
		"Send a message to the pump.fun chat room", handlers.sendMessage); err != nil {
		return err
	}
	if err := protoserver.RegisterTool[*statusInput, *textOutput](handler.Registry, "get_status",
		"Report room identity, connection state and buffered message count", handlers.status); err != nil {
		return err
	}
	return nil
}

func textResult(text string) *schema.CallToolResult {
	return &schema.CallToolResult{
		Content: []schema.CallToolResultContentElem{{Type: "text", Text: text}},
	}
}

// formatMessage renders one line per message. Timestamps arrive serialized;
// the wall-clock portion is enough for a chat transcript, so anything that
// parses as RFC 3339 is condensed.
func formatMessage(m chat.Message) string {
	ts := m.Timestamp
	if parsed, err := time.Parse(time.RFC3339, ts); err == nil {
		ts = parsed.Format("15:04:05")
	}
	return fmt.Sprintf("[%s] %s: %s", ts, m.Username, m.Message)
}
