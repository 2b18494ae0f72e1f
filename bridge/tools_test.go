package bridge

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viant/mcp-protocol/schema"

	"github.com/CodingButter/pump-fun-chat-mcp/chat"
)

func resultText(t *testing.T, result *schema.CallToolResult) string {
	t.Helper()
	require.NotNil(t, result)
	require.Len(t, result.Content, 1)
	return result.Content[0].Text
}

func TestReadMessagesNotConnected(t *testing.T) {
	supervisor, _ := newTestSupervisor(t, "R")
	handlers := &toolHandlers{supervisor: supervisor}

	result, jerr := handlers.readMessages(context.Background(), &readMessagesInput{})
	assert.Nil(t, jerr, "not-connected is informational, never an RPC error")
	assert.Equal(t, notConnectedText, resultText(t, result))
}

func TestReadMessagesEmptyBuffer(t *testing.T) {
	supervisor, _ := newTestSupervisor(t, "R")
	supervisor.handle(chat.Event{Type: chat.EventConnected})
	handlers := &toolHandlers{supervisor: supervisor}

	result, jerr := handlers.readMessages(context.Background(), &readMessagesInput{})
	assert.Nil(t, jerr)
	assert.Equal(t, noMessagesText, resultText(t, result))
}

func TestReadMessagesFormatting(t *testing.T) {
	supervisor, _ := newTestSupervisor(t, "R")
	supervisor.handle(chat.Event{Type: chat.EventConnected})
	supervisor.handle(chat.Event{Type: chat.EventMessage, Message: &chat.Message{
		Username: "alice", Message: "hello", Timestamp: "2026-08-29T10:00:01Z",
	}})
	supervisor.handle(chat.Event{Type: chat.EventMessage, Message: &chat.Message{
		Username: "bob", Message: "hi", Timestamp: "2026-08-29T10:00:02Z",
	}})
	handlers := &toolHandlers{supervisor: supervisor}

	result, jerr := handlers.readMessages(context.Background(), &readMessagesInput{})
	assert.Nil(t, jerr)
	lines := strings.Split(resultText(t, result), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "[10:00:01] alice: hello", lines[0])
	assert.Equal(t, "[10:00:02] bob: hi", lines[1])

	limit := 1
	result, jerr = handlers.readMessages(context.Background(), &readMessagesInput{Limit: &limit})
	assert.Nil(t, jerr)
	assert.Equal(t, "[10:00:02] bob: hi", resultText(t, result))

	zero := 0
	result, jerr = handlers.readMessages(context.Background(), &readMessagesInput{Limit: &zero})
	assert.Nil(t, jerr)
	assert.Equal(t, noMessagesText, resultText(t, result), "limit 0 selects an empty window")
}

func TestReadMessagesNegativeLimit(t *testing.T) {
	supervisor, _ := newTestSupervisor(t, "R")
	supervisor.handle(chat.Event{Type: chat.EventConnected})
	handlers := &toolHandlers{supervisor: supervisor}

	negative := -1
	result, jerr := handlers.readMessages(context.Background(), &readMessagesInput{Limit: &negative})
	assert.Nil(t, result)
	require.NotNil(t, jerr, "malformed arguments are RPC-level errors")
}

func TestLatestMessage(t *testing.T) {
	supervisor, _ := newTestSupervisor(t, "R")
	handlers := &toolHandlers{supervisor: supervisor}

	result, jerr := handlers.latestMessage(context.Background(), &latestMessageInput{})
	assert.Nil(t, jerr)
	assert.Equal(t, notConnectedText, resultText(t, result))

	supervisor.handle(chat.Event{Type: chat.EventConnected})
	result, jerr = handlers.latestMessage(context.Background(), &latestMessageInput{})
	assert.Nil(t, jerr)
	assert.Equal(t, noMessagesText, resultText(t, result))

	supervisor.handle(chat.Event{Type: chat.EventMessage, Message: &chat.Message{
		Username: "alice", Message: "latest", Timestamp: "2026-08-29T10:00:01Z",
	}})
	result, jerr = handlers.latestMessage(context.Background(), &latestMessageInput{})
	assert.Nil(t, jerr)
	assert.Equal(t, "[10:00:01] alice: latest", resultText(t, result))
}

func TestSendMessage(t *testing.T) {
	supervisor, fake := newTestSupervisor(t, "R")
	handlers := &toolHandlers{supervisor: supervisor}

	result, jerr := handlers.sendMessage(context.Background(), &sendMessageInput{Message: "   "})
	assert.Nil(t, result)
	require.NotNil(t, jerr, "empty message is an RPC-level error")

	result, jerr = handlers.sendMessage(context.Background(), &sendMessageInput{Message: "hello"})
	assert.Nil(t, jerr)
	assert.Equal(t, cannotSendText, resultText(t, result))
	assert.Empty(t, fake.sentMessages(), "disconnected sends never reach the client")

	supervisor.handle(chat.Event{Type: chat.EventConnected})
	result, jerr = handlers.sendMessage(context.Background(), &sendMessageInput{Message: "hello"})
	assert.Nil(t, jerr)
	assert.Contains(t, resultText(t, result), "room R")
	assert.Contains(t, resultText(t, result), "authentication")
	assert.Equal(t, []string{"hello"}, fake.sentMessages())
}

func TestStatusAlwaysSucceeds(t *testing.T) {
	supervisor, _ := newTestSupervisor(t, "R")
	handlers := &toolHandlers{supervisor: supervisor}

	result, jerr := handlers.status(context.Background(), &statusInput{})
	assert.Nil(t, jerr)
	text := resultText(t, result)
	assert.Contains(t, text, "Room: R")
	assert.Contains(t, text, "Connection: disconnected")
	assert.Contains(t, text, "Buffered messages: 0")

	supervisor.handle(chat.Event{Type: chat.EventConnected})
	supervisor.handle(chat.Event{Type: chat.EventMessage, Message: ptr(newMessage(1))})
	result, jerr = handlers.status(context.Background(), &statusInput{})
	assert.Nil(t, jerr)
	text = resultText(t, result)
	assert.Contains(t, text, "Connection: connected")
	assert.Contains(t, text, "Buffered messages: 1")
}
