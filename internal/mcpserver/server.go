// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes the diary to LLM clients via stdio transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/starford/grimoire/internal/apperr"
	"github.com/starford/grimoire/internal/diary"
	"github.com/starford/grimoire/internal/session"
)

const formatURI = "grimoire://entry-format"

// Server wraps the MCP server with diary tools.
type Server struct {
	mcp *server.MCPServer
	svc *diary.Service
}

// New creates a new MCP server with all diary tools registered.
func New(svc *diary.Service, version string) *Server {
	s := &Server{svc: svc}

	s.mcp = server.NewMCPServer(
		"Grimoire",
		version,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("session_state",
		mcp.WithDescription("Report whether the diary is locked and whether a password exists."),
	), s.sessionState)

	s.mcp.AddTool(mcp.NewTool("unlock",
		mcp.WithDescription("Unlock the diary. On a fresh diary this sets the password; "+
			"otherwise the password is checked against the stored one."),
		mcp.WithString("password", mcp.Required(), mcp.Description("Diary password")),
	), s.unlock)

	s.mcp.AddTool(mcp.NewTool("append_entry",
		mcp.WithDescription("Write a new diary entry stamped with the current day and time. "+
			"Read the entry format via get_entry_format or the "+formatURI+" resource."),
		mcp.WithString("content", mcp.Required(), mcp.Description("Entry text")),
	), s.appendEntry)

	s.mcp.AddTool(mcp.NewTool("list_entries",
		mcp.WithDescription("List every entry in the order it was written."),
	), s.listEntries)

	s.mcp.AddTool(mcp.NewTool("search_entries",
		mcp.WithDescription("Full-text search through entry text and tags."),
		mcp.WithString("query", mcp.Required(), mcp.Description("Search query string")),
		mcp.WithNumber("limit", mcp.Description("Maximum number of results (default 20)")),
	), s.searchEntries)

	s.mcp.AddTool(mcp.NewTool("get_entry_format",
		mcp.WithDescription("Returns the diary entry format and tool rules."),
	), s.getEntryFormat)

	s.mcp.AddResource(
		mcp.NewResource(formatURI, "Entry Format",
			mcp.WithResourceDescription("How diary entries are stored and labelled."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readEntryFormatResource,
	)

	return s
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

// MCPServer returns the underlying server for testing.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

// toolError turns a diary error into a tool result the client can show.
func toolError(err error) *mcp.CallToolResult {
	return mcp.NewToolResultError(fmt.Sprintf("%s (%v)", apperr.Notice(err), err))
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, err
	}
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) sessionState(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	resp := map[string]any{"state": s.svc.State()}
	if at, ok := s.svc.UnlockedAt(); ok {
		resp["unlocked_at"] = at
	}
	return jsonResult(resp)
}

func (s *Server) unlock(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	password, err := req.RequireString("password")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var st session.State
	switch s.svc.State() {
	case session.AwaitingEnrollment:
		st, err = s.svc.Enroll(ctx, password)
	case session.AwaitingVerification:
		st, err = s.svc.Verify(ctx, password)
	default:
		return mcp.NewToolResultText("already unlocked"), nil
	}
	if err != nil {
		return toolError(err), nil
	}
	return mcp.NewToolResultText("unlocked: " + st.String()), nil
}

func (s *Server) appendEntry(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	content, err := req.RequireString("content")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	rec, err := s.svc.Append(ctx, content)
	if err != nil {
		return toolError(err), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("saved: %s (%s %s)", rec.Label, rec.Entry.Day, rec.Entry.Time)), nil
}

func (s *Server) listEntries(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	recs, err := s.svc.ListAll(ctx)
	if err != nil {
		return toolError(err), nil
	}
	if len(recs) == 0 {
		return mcp.NewToolResultText(apperr.NoEntries), nil
	}

	var b strings.Builder
	for i, r := range recs {
		if i > 0 {
			b.WriteString("\n\n")
		}
		fmt.Fprintf(&b, "%s | %s %s\n%s", r.Label, r.Entry.Day, r.Entry.Time, r.Entry.Entry)
	}
	return mcp.NewToolResultText(b.String()), nil
}

func (s *Server) searchEntries(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := req.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	results, err := s.svc.Search(ctx, query, req.GetInt("limit", 20))
	if err != nil {
		return toolError(err), nil
	}
	return jsonResult(results)
}

func (s *Server) getEntryFormat(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(EntryFormat), nil
}

func (s *Server) readEntryFormatResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      formatURI,
			MIMEType: "text/markdown",
			Text:     EntryFormat,
		},
	}, nil
}
