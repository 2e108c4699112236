package mcp

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/sirupsen/logrus"

	"doc-splitter/pkg/config"
)

const (
	serverName    = "doc-splitter"
	serverVersion = "1.0.0"
)

// ServerConfig holds configuration for the MCP server
type ServerConfig struct {
	AppConfig  *config.AppConfig
	ConfigPath string
	Transport  string // "stdio" or "sse"
	Port       int
	Logger     *logrus.Logger
}

// Server wraps the MCP server with doc-splitter specific functionality
type Server struct {
	mcpServer  *server.MCPServer
	cfg        *ServerConfig
	log        *logrus.Entry
	jobManager *JobManager
}

// NewServer creates a new MCP server instance
func NewServer(cfg *ServerConfig) (*Server, error) {
	if cfg.AppConfig == nil {
		return nil, fmt.Errorf("AppConfig is required")
	}
	if cfg.Logger == nil {
		cfg.Logger = logrus.New()
	}

	mcpServer := server.NewMCPServer(
		serverName,
		serverVersion,
		server.WithLogging(),
	)

	s := &Server{
		mcpServer:  mcpServer,
		cfg:        cfg,
		log:        cfg.Logger.WithField("component", "mcp"),
		jobManager: NewJobManager(),
	}

	s.registerTools()

	return s, nil
}

// registerTools registers all available MCP tools
func (s *Server) registerTools() {
	// split_markdown - Split inline markdown into a section tree
	splitTool := mcp.NewTool("split_markdown",
		mcp.WithDescription("Split a markdown document into a nested section tree by heading"),
		mcp.WithString("markdown",
			mcp.Required(),
			mcp.Description("The markdown document to split"),
		),
		mcp.WithNumber("max_split_level",
			mcp.Description("Only split at headings up to this level (1-6); deeper headings stay in body text"),
		),
	)
	s.mcpServer.AddTool(splitTool, s.handleSplitMarkdown)

	// get_toc - Heading outline for inline markdown
	tocTool := mcp.NewTool("get_toc",
		mcp.WithDescription("Return the table of contents (heading paths) of a markdown document"),
		mcp.WithString("markdown",
			mcp.Required(),
			mcp.Description("The markdown document to outline"),
		),
		mcp.WithString("separator",
			mcp.Description("Path separator between nested headings (default ' > ')"),
		),
	)
	s.mcpServer.AddTool(tocTool, s.handleGetTOC)

	// chunk_markdown - Token-bounded chunks with heading context
	chunkTool := mcp.NewTool("chunk_markdown",
		mcp.WithDescription("Split a markdown document into token-bounded chunks with heading context for RAG"),
		mcp.WithString("markdown",
			mcp.Required(),
			mcp.Description("The markdown document to chunk"),
		),
		mcp.WithNumber("max_tokens",
			mcp.Description("Maximum tokens per chunk (default from config)"),
		),
		mcp.WithNumber("overlap",
			mcp.Description("Token overlap for oversized-section fallback splitting"),
		),
	)
	s.mcpServer.AddTool(chunkTool, s.handleChunkMarkdown)

	// list_sources - List configured documentation sources
	listSourcesTool := mcp.NewTool("list_sources",
		mcp.WithDescription("List all configured documentation sources available for indexing"),
	)
	s.mcpServer.AddTool(listSourcesTool, s.handleListSources)

	// index_source - Start a background index run
	indexTool := mcp.NewTool("index_source",
		mcp.WithDescription("Start a background index run for a configured source. Returns immediately with a job ID."),
		mcp.WithString("source_key",
			mcp.Required(),
			mcp.Description("Source key from config file (e.g., 'api_docs')"),
		),
		mcp.WithBoolean("wipe",
			mcp.Description("Rebuild the section DB from scratch instead of skipping unchanged documents"),
		),
	)
	s.mcpServer.AddTool(indexTool, s.handleIndexSource)

	// get_job_status - Check status of an index job
	jobStatusTool := mcp.NewTool("get_job_status",
		mcp.WithDescription("Get the status of an indexing job"),
		mcp.WithString("job_id",
			mcp.Required(),
			mcp.Description("The job ID returned by index_source"),
		),
	)
	s.mcpServer.AddTool(jobStatusTool, s.handleGetJobStatus)

	// search_sections - Search indexed sections
	searchTool := mcp.NewTool("search_sections",
		mcp.WithDescription("Search previously indexed sections using text matching"),
		mcp.WithString("query",
			mcp.Required(),
			mcp.Description("Search query (case-insensitive substring match)"),
		),
		mcp.WithString("source_key",
			mcp.Required(),
			mcp.Description("Source key whose section DB to search"),
		),
		mcp.WithNumber("max_results",
			mcp.Description("Maximum number of results to return (default: 10, max: 100)"),
		),
	)
	s.mcpServer.AddTool(searchTool, s.handleSearchSections)

	s.log.Infof("Registered %d MCP tools", 7)
}

// Run starts the MCP server with the configured transport
func (s *Server) Run() error {
	switch s.cfg.Transport {
	case "stdio":
		s.log.Info("Starting MCP server with stdio transport")
		return server.ServeStdio(s.mcpServer)
	case "sse":
		addr := fmt.Sprintf(":%d", s.cfg.Port)
		s.log.Infof("Starting MCP server with SSE transport on %s", addr)
		sseServer := server.NewSSEServer(s.mcpServer)
		return sseServer.Start(addr)
	default:
		return fmt.Errorf("unknown transport: %s (supported: stdio, sse)", s.cfg.Transport)
	}
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	s.log.Info("Shutting down MCP server...")
	s.jobManager.CancelAll()
	return nil
}
