package bridge

import (
	"context"
	"net/http"

	"github.com/google/uuid"
	stdiosrv "github.com/viant/jsonrpc/transport/server/stdio"
	"github.com/viant/mcp-protocol/schema"
	protoserver "github.com/viant/mcp-protocol/server"
	mcpserver "github.com/viant/mcp/server"

	"github.com/CodingButter/pump-fun-chat-mcp/chat"
)

// Service wires one supervisor to an MCP server exposing the tool catalog.
type Service struct {
	options    *Options
	supervisor *Supervisor
}

// New constructs the chat client and supervisor for the configured room and
// starts the connection. The supervisor lives until process exit.
func New(ctx context.Context, options *Options) (*Service, error) {
	username := options.Username
	if username == "" {
		username = "mcp-bridge-" + uuid.NewString()[:8]
	}
	client, err := chat.New(chat.Options{
		RoomID:              options.Room,
		Username:            username,
		MessageHistoryLimit: options.HistoryLimit,
		ServerURL:           options.ServerURL,
	})
	if err != nil {
		return nil, err
	}
	supervisor, err := NewSupervisor(options.Room, WithClient(client))
	if err != nil {
		return nil, err
	}
	if err := supervisor.Start(ctx); err != nil {
		return nil, err
	}
	return &Service{options: options, supervisor: supervisor}, nil
}

// Supervisor exposes the running supervisor, primarily for embedding.
func (s *Service) Supervisor() *Supervisor {
	return s.supervisor
}

func (s *Service) server(ctx context.Context) (*mcpserver.Server, error) {
	newHandler := protoserver.WithDefaultHandler(ctx, func(handler *protoserver.DefaultHandler) error {
		handler.ServerCapabilities = &schema.ServerCapabilities{Tools: &schema.ServerCapabilitiesTools{}}
		return registerTools(handler, s.supervisor)
	})
	return mcpserver.New(
		mcpserver.WithNewHandler(newHandler),
		mcpserver.WithImplementation(schema.Implementation{Name: "pump-fun-chat", Version: "1.0.0"}),
	)
}

// Stdio returns a JSON-RPC server over standard input/output.
func (s *Service) Stdio(ctx context.Context) (*stdiosrv.Server, error) {
	srv, err := s.server(ctx)
	if err != nil {
		return nil, err
	}
	return stdiosrv.New(ctx, srv.NewHandler), nil
}

// HTTP returns an HTTP/SSE server on the given address.
func (s *Service) HTTP(ctx context.Context, addr string) (*http.Server, error) {
	srv, err := s.server(ctx)
	if err != nil {
		return nil, err
	}
	return srv.HTTP(ctx, addr), nil
}
