package mcp

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/EdibleTuber/void-mcp-server/internal/crashlog"
	"github.com/EdibleTuber/void-mcp-server/internal/fsops"
	"github.com/EdibleTuber/void-mcp-server/internal/logging"
)

// ServerName identifies this server to MCP clients.
const ServerName = "void-sandboxed-filesystem"

// Version is reported to clients and by the health endpoint.
var Version = "0.1.0"

const instructions = `Filesystem access confined to a single root directory.
Relative paths resolve against that root. Version control metadata, environment
files and key material are never accessible. Read a file before editing it, and
give edit_file enough surrounding text to make old_string unique.`

// Option configures the MCP server
type Option func(*Server)

// WithLogger sets the logger used for tool diagnostics.
func WithLogger(l *slog.Logger) Option {
	return func(s *Server) {
		s.logger = l
	}
}

// Server exposes a file operation engine over MCP.
type Server struct {
	engine *fsops.Engine
	server *mcp.Server
	logger *slog.Logger
}

// NewServer creates an MCP server with every file tool and resource registered.
func NewServer(engine *fsops.Engine, opts ...Option) *Server {
	s := &Server{engine: engine}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = logging.With("mcp")
	}

	s.server = mcp.NewServer(&mcp.Implementation{
		Name:    ServerName,
		Version: Version,
	}, &mcp.ServerOptions{
		Instructions: instructions,
	})

	s.registerTools()
	s.registerResources()
	return s
}

// MCPServer returns the underlying SDK server.
func (s *Server) MCPServer() *mcp.Server {
	return s.server
}

// RunStdio serves a single client over stdin/stdout until ctx is done or
// the client disconnects.
func (s *Server) RunStdio(ctx context.Context) error {
	s.logger.Info("serving over stdio", "root", s.engine.Policy().Root())
	if err := s.server.Run(ctx, &mcp.StdioTransport{}); err != nil && ctx.Err() == nil {
		return fmt.Errorf("stdio transport: %w", err)
	}
	return nil
}

// textHandler adapts a text-producing operation to a typed MCP tool handler.
// Errors become IsError results carrying the error text, and panics are
// recovered so a misbehaving call cannot tear down the session.
func textHandler[In any](s *Server, name string, fn func(context.Context, In) (string, error)) mcp.ToolHandlerFor[In, any] {
	return func(ctx context.Context, req *mcp.CallToolRequest, in In) (result *mcp.CallToolResult, out any, retErr error) {
		defer func() {
			if r := recover(); r != nil {
				crashlog.LogPanic(name, r, "")
				result = errorResult(fmt.Sprintf("tool panicked: %v", r))
				out, retErr = nil, nil
			}
		}()

		text, err := fn(ctx, in)
		if err != nil {
			s.logger.Debug("tool call failed", "tool", name, "error", err)
			return errorResult(err.Error()), nil, nil
		}
		return &mcp.CallToolResult{
			Content: []mcp.Content{&mcp.TextContent{Text: text}},
		}, nil, nil
	}
}

func errorResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: text}},
		IsError: true,
	}
}
