package server

import (
	"context"
	"io"
	"os"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"brainlift-mcp/pkg/logging"
)

const subsystem = "Server"

// BrainliftAPI is the read surface the tool handlers call. It is satisfied
// by *brainlift.Client.
type BrainliftAPI interface {
	ListBrainlifts(ctx context.Context) ([]map[string]interface{}, error)
	GetBrainlift(ctx context.Context, id string) (map[string]interface{}, error)
	GetNodes(ctx context.Context, id string) ([]map[string]interface{}, error)
}

// Server exposes the BrainLift API as MCP tools over stdio.
type Server struct {
	api       BrainliftAPI
	mcpServer *server.MCPServer
}

// New creates the MCP server and registers the tool surface.
func New(api BrainliftAPI, version string) *Server {
	mcpServer := server.NewMCPServer(
		"brainlift-mcp",
		version,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
		server.WithPromptCapabilities(false),
	)

	s := &Server{
		api:       api,
		mcpServer: mcpServer,
	}
	s.registerTools()

	return s
}

// Start serves MCP over stdio until the transport closes or the context is
// cancelled. Stdout carries the protocol stream; all logging goes to stderr.
func (s *Server) Start(ctx context.Context) error {
	logging.Info(subsystem, "Starting BrainLift MCP server in stdio mode")
	return s.serve(ctx, os.Stdin, os.Stdout)
}

func (s *Server) serve(ctx context.Context, in io.Reader, out io.Writer) error {
	return server.NewStdioServer(s.mcpServer).Listen(ctx, in, out)
}

// registerTools declares the three read-only tools.
func (s *Server) registerTools() {
	listTool := mcp.NewTool("get_brainlifts",
		mcp.WithDescription("Get an overview of the user's BrainLifts: id, title, and quality score for each. Useful for finding lower quality BrainLifts to improve."),
	)
	s.mcpServer.AddTool(listTool, s.handleGetBrainlifts)

	infoTool := mcp.NewTool("get_brainlift_info",
		mcp.WithDescription("Get the content of one BrainLift together with its statistics (quality score, quality dimensions, visibility, timestamps)."),
		mcp.WithString("brainlift_id",
			mcp.Required(),
			mcp.Description("The ID of the BrainLift to get info for"),
		),
	)
	s.mcpServer.AddTool(infoTool, s.handleGetBrainliftInfo)

	doksTool := mcp.NewTool("get_brainlift_doks",
		mcp.WithDescription("Get the nodes of a BrainLift filtered by DOK level (1-4), grouped per level. Useful for checking whether similar information is already present."),
		mcp.WithString("brainlift_id",
			mcp.Required(),
			mcp.Description("The ID of the BrainLift to get DOK nodes for"),
		),
		mcp.WithArray("dok_levels",
			mcp.Required(),
			mcp.Description("DOK levels to retrieve, each 1-4 (e.g. [1, 2, 3, 4])"),
			mcp.Items(map[string]interface{}{"type": "number"}),
		),
	)
	s.mcpServer.AddTool(doksTool, s.handleGetBrainliftDoks)
}
