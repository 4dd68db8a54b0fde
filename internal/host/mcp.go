package host

import (
	"context"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"pipewatch/internal/limits"
	"pipewatch/internal/monitor"
)

// MCPServer mirrors the JSON message router (start_processing,
// stop_processing, add_base_hub_file, set_reference_directory,
// set_persistent_directory) plus a read-only tracked-information query,
// as MCP tools — grounded on chainwatch's mcp.Server/registerTools
// pattern (github.com/modelcontextprotocol/go-sdk/mcp).
type MCPServer struct {
	mon       *monitor.Monitor
	mcpServer *mcpsdk.Server
}

// NewMCPServer builds the tool surface over mon.
func NewMCPServer(mon *monitor.Monitor, version string) *MCPServer {
	s := &MCPServer{mon: mon}
	s.mcpServer = mcpsdk.NewServer(&mcpsdk.Implementation{
		Name:    "pipewatch",
		Version: version,
	}, nil)
	s.registerTools()
	return s
}

// Run serves the MCP server over stdio until ctx is cancelled.
func (s *MCPServer) Run(ctx context.Context) error {
	return s.mcpServer.Run(ctx, &mcpsdk.StdioTransport{})
}

type emptyInput struct{}

type pathInput struct {
	Path string `json:"path" jsonschema:"relative or absolute path"`
}

type okOutput struct {
	OK    bool   `json:"ok"`
	Error string `json:"error,omitempty"`
}

type trackedOutput struct {
	Paths     []string `json:"paths"`
	Hubs      []string `json:"hubs"`
	Wildcards []string `json:"wildcards"`
	Tools     []string `json:"tools"`
	Dirty     int      `json:"dirty"`
	Outbox    int      `json:"outbox"`
	Pending   int      `json:"pending"`
	Truncated bool     `json:"truncated,omitempty"`
}

func (s *MCPServer) registerTools() {
	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "start_processing",
		Description: "Start the change monitor's coordinator loop.",
	}, s.handleStart)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "stop_processing",
		Description: "Stop the coordinator loop and join the worker pool.",
	}, s.handleStop)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "add_base_hub_file",
		Description: "Register a root hub manifest, canonicalized relative to the reference directory.",
	}, s.handleAddBaseHubFile)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "set_reference_directory",
		Description: "Override the reference directory. The coordinator must be stopped.",
	}, s.handleSetReferenceDirectory)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "set_persistent_directory",
		Description: "Override the persistence directory. The coordinator must be stopped.",
	}, s.handleSetPersistentDirectory)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "get_tracked_information",
		Description: "Return a snapshot of every tracked tool, hub, path, and wildcard.",
	}, s.handleGetTrackedInformation)
}

func (s *MCPServer) handleStart(ctx context.Context, req *mcpsdk.CallToolRequest, in emptyInput) (*mcpsdk.CallToolResult, okOutput, error) {
	if err := s.mon.Begin(); err != nil {
		return &mcpsdk.CallToolResult{IsError: true}, okOutput{OK: false, Error: err.Error()}, nil
	}
	return nil, okOutput{OK: true}, nil
}

func (s *MCPServer) handleStop(ctx context.Context, req *mcpsdk.CallToolRequest, in emptyInput) (*mcpsdk.CallToolResult, okOutput, error) {
	s.mon.EndAndWait()
	return nil, okOutput{OK: true}, nil
}

func (s *MCPServer) handleAddBaseHubFile(ctx context.Context, req *mcpsdk.CallToolRequest, in pathInput) (*mcpsdk.CallToolResult, okOutput, error) {
	if err := s.mon.AddBaseHubFile(in.Path); err != nil {
		return &mcpsdk.CallToolResult{IsError: true}, okOutput{OK: false, Error: err.Error()}, nil
	}
	return nil, okOutput{OK: true}, nil
}

func (s *MCPServer) handleSetReferenceDirectory(ctx context.Context, req *mcpsdk.CallToolRequest, in pathInput) (*mcpsdk.CallToolResult, okOutput, error) {
	if err := s.mon.SetReferenceDirectory(in.Path); err != nil {
		return &mcpsdk.CallToolResult{IsError: true}, okOutput{OK: false, Error: err.Error()}, nil
	}
	return nil, okOutput{OK: true}, nil
}

func (s *MCPServer) handleSetPersistentDirectory(ctx context.Context, req *mcpsdk.CallToolRequest, in pathInput) (*mcpsdk.CallToolResult, okOutput, error) {
	if err := s.mon.SetPersistentDirectory(in.Path); err != nil {
		return &mcpsdk.CallToolResult{IsError: true}, okOutput{OK: false, Error: err.Error()}, nil
	}
	return nil, okOutput{OK: true}, nil
}

// handleGetTrackedInformation caps each of the path/hub/wildcard lists
// to its own share of limits.MaxMCPResponseBytes — a large graph (many
// thousands of monitored paths) would otherwise produce a tool response
// far past what a calling agent's context can reasonably hold.
func (s *MCPServer) handleGetTrackedInformation(ctx context.Context, req *mcpsdk.CallToolRequest, in emptyInput) (*mcpsdk.CallToolResult, trackedOutput, error) {
	info := s.mon.Snapshot()
	perListBudget := limits.MaxMCPResponseBytes / 3

	paths, pathsCut := limits.TruncateStringSlice(info.Paths, perListBudget)
	hubs, hubsCut := limits.TruncateStringSlice(info.Hubs, perListBudget)
	wildcards, wildcardsCut := limits.TruncateStringSlice(info.Wildcards, perListBudget)

	return nil, trackedOutput{
		Paths:     paths,
		Hubs:      hubs,
		Wildcards: wildcards,
		Tools:     info.Tools,
		Dirty:     info.Dirty,
		Outbox:    info.Outbox,
		Pending:   info.Pending,
		Truncated: pathsCut || hubsCut || wildcardsCut,
	}, nil
}
