package mcpadapter

import (
	"context"
	"fmt"
	"os"

	"github.com/mark3labs/mcp-go/server"

	"github.com/hydroflow/hydroflow/internal/core/ports"
)

const version = "0.1.0"

// Server exposes the knowledge base and quotation services as MCP tools
// so agent hosts can call them over stdio.
type Server struct {
	queries    ports.KnowledgeQueryService
	quotations ports.QuotationService
	server     *server.MCPServer
}

func NewServer(queries ports.KnowledgeQueryService, quotations ports.QuotationService) (*Server, error) {
	if queries == nil {
		return nil, fmt.Errorf("mcp server: knowledge query service is nil")
	}
	if quotations == nil {
		return nil, fmt.Errorf("mcp server: quotation service is nil")
	}

	s := &Server{
		queries:    queries,
		quotations: quotations,
		server: server.NewMCPServer("hydroflow", version,
			server.WithToolCapabilities(false),
			server.WithRecovery(),
		),
	}
	s.registerTools()
	return s, nil
}

// Run serves MCP over stdio until the context is cancelled.
func (s *Server) Run(ctx context.Context) error {
	stdio := server.NewStdioServer(s.server)
	return stdio.Listen(ctx, os.Stdin, os.Stdout)
}
