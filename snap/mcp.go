package snap

import (
	"context"
	"encoding/json"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/hazyhaar/tabsnap/kit"
)

// RegisterMCP registers the tabsnap tools on an MCP server.
func (s *Service) RegisterMCP(srv *mcp.Server) {
	s.registerCaptureTool(srv)
	s.registerExportTool(srv)
	s.registerHistoryTool(srv)
	s.registerDeleteTool(srv)
}

func inputSchema(properties map[string]any, required []string) map[string]any {
	schema := map[string]any{
		"type":       "object",
		"properties": properties,
	}
	if len(required) > 0 {
		schema["required"] = required
	}
	return schema
}

// --- capture ---

func (s *Service) registerCaptureTool(srv *mcp.Server) {
	tool := &mcp.Tool{
		Name:        "tabsnap_capture",
		Description: "Read the currently open browser tabs after blocklist filtering, without writing any export file.",
		InputSchema: inputSchema(map[string]any{}, nil),
	}

	endpoint := func(ctx context.Context, _ any) (any, error) {
		return s.Capture(ctx)
	}

	decode := func(_ *mcp.CallToolRequest) (*kit.MCPDecodeResult, error) {
		return &kit.MCPDecodeResult{Request: nil}, nil
	}

	kit.RegisterMCPTool(srv, tool, endpoint, decode)
}

// --- export ---

func (s *Service) registerExportTool(srv *mcp.Server) {
	tool := &mcp.Tool{
		Name:        "tabsnap_export",
		Description: "Capture the open browser tabs and export them as html, md, csv or json. Set includeHistory to export every saved session.",
		InputSchema: inputSchema(map[string]any{
			"format":         map[string]any{"type": "string", "description": "Export format: html, md, csv, json. Defaults to the configured format."},
			"includeHistory": map[string]any{"type": "boolean", "description": "Export all saved sessions, not just the current capture."},
		}, nil),
	}

	endpoint := func(ctx context.Context, req any) (any, error) {
		r := req.(*ExportRequest)
		return s.Export(ctx, *r)
	}

	decode := func(req *mcp.CallToolRequest) (*kit.MCPDecodeResult, error) {
		var r ExportRequest
		if len(req.Params.Arguments) > 0 {
			if err := json.Unmarshal(req.Params.Arguments, &r); err != nil {
				return nil, err
			}
		}
		return &kit.MCPDecodeResult{Request: &r}, nil
	}

	kit.RegisterMCPTool(srv, tool, endpoint, decode)
}

// --- history ---

func (s *Service) registerHistoryTool(srv *mcp.Server) {
	tool := &mcp.Tool{
		Name:        "tabsnap_history",
		Description: "List all saved tab sessions, oldest first.",
		InputSchema: inputSchema(map[string]any{}, nil),
	}

	endpoint := func(ctx context.Context, _ any) (any, error) {
		sessions, err := s.History(ctx)
		if err != nil {
			return nil, err
		}
		return map[string]any{"sessions": sessions}, nil
	}

	decode := func(_ *mcp.CallToolRequest) (*kit.MCPDecodeResult, error) {
		return &kit.MCPDecodeResult{Request: nil}, nil
	}

	kit.RegisterMCPTool(srv, tool, endpoint, decode)
}

// --- delete ---

type deleteReq struct {
	Timestamp string `json:"timestamp"`
}

func (s *Service) registerDeleteTool(srv *mcp.Server) {
	tool := &mcp.Tool{
		Name:        "tabsnap_delete_session",
		Description: "Delete the saved session(s) with the given display timestamp.",
		InputSchema: inputSchema(map[string]any{
			"timestamp": map[string]any{"type": "string", "description": "Display timestamp of the session to delete."},
		}, []string{"timestamp"}),
	}

	endpoint := func(ctx context.Context, req any) (any, error) {
		r := req.(*deleteReq)
		if err := s.DeleteSession(ctx, r.Timestamp); err != nil {
			return nil, err
		}
		return map[string]any{"deleted": r.Timestamp}, nil
	}

	decode := func(req *mcp.CallToolRequest) (*kit.MCPDecodeResult, error) {
		var r deleteReq
		if err := json.Unmarshal(req.Params.Arguments, &r); err != nil {
			return nil, err
		}
		return &kit.MCPDecodeResult{Request: &r}, nil
	}

	kit.RegisterMCPTool(srv, tool, endpoint, decode)
}
