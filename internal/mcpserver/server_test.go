package mcpserver

import (
	"context"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/starford/grimoire/internal/diary"
	"github.com/starford/grimoire/internal/testutil"
)

func testServer(t *testing.T, password string) (*Server, *diary.Service) {
	t.Helper()
	svc, _ := testutil.TestDiary(t, password, diary.WithIndex(testutil.TestDB(t)))
	return New(svc, "test"), svc
}

func callTool(t *testing.T, srv *Server, name string, args map[string]interface{}) *mcp.CallToolResult {
	t.Helper()
	ctx := context.Background()
	req := mcp.CallToolRequest{}
	req.Method = "tools/call"
	req.Params.Name = name
	req.Params.Arguments = args

	// mcp-go has no direct "call tool" helper, so dispatch to the handlers.
	var result *mcp.CallToolResult
	var err error

	switch name {
	case "session_state":
		result, err = srv.sessionState(ctx, req)
	case "unlock":
		result, err = srv.unlock(ctx, req)
	case "append_entry":
		result, err = srv.appendEntry(ctx, req)
	case "list_entries":
		result, err = srv.listEntries(ctx, req)
	case "search_entries":
		result, err = srv.searchEntries(ctx, req)
	case "get_entry_format":
		result, err = srv.getEntryFormat(ctx, req)
	default:
		t.Fatalf("unknown tool: %s", name)
	}

	if err != nil {
		t.Fatalf("tool %s error: %v", name, err)
	}
	return result
}

func resultText(r *mcp.CallToolResult) string {
	if len(r.Content) > 0 {
		if tc, ok := r.Content[0].(mcp.TextContent); ok {
			return tc.Text
		}
	}
	return ""
}

func TestUnlockEnrollsFreshDiary(t *testing.T) {
	srv, _ := testServer(t, "")

	r := callTool(t, srv, "session_state", nil)
	if !strings.Contains(resultText(r), "awaiting_enrollment") {
		t.Errorf("state = %q", resultText(r))
	}

	r = callTool(t, srv, "unlock", map[string]interface{}{"password": "pw"})
	if r.IsError || resultText(r) != "unlocked: authenticated" {
		t.Fatalf("unlock = %q", resultText(r))
	}

	r = callTool(t, srv, "unlock", map[string]interface{}{"password": "pw"})
	if resultText(r) != "already unlocked" {
		t.Errorf("second unlock = %q", resultText(r))
	}
}

func TestUnlockWrongPassword(t *testing.T) {
	_, fs := testutil.TestDataDir(t)
	if _, err := testutil.Boot(t, fs).Enroll(t.Context(), "right"); err != nil {
		t.Fatal(err)
	}
	srv := New(testutil.Boot(t, fs), "test")

	r := callTool(t, srv, "unlock", map[string]interface{}{"password": "wrong"})
	if !r.IsError {
		t.Fatal("expected error for wrong password")
	}
	if !strings.Contains(resultText(r), "The entered password is incorrect!") {
		t.Errorf("error = %q", resultText(r))
	}
}

func TestEntryToolsLocked(t *testing.T) {
	srv, _ := testServer(t, "")

	for _, name := range []string{"append_entry", "list_entries", "search_entries"} {
		r := callTool(t, srv, name, map[string]interface{}{"content": "x", "query": "x"})
		if !r.IsError {
			t.Errorf("%s: expected locked error", name)
		}
	}
}

func TestAppendAndListEntries(t *testing.T) {
	srv, _ := testServer(t, "pw")

	r := callTool(t, srv, "list_entries", nil)
	if resultText(r) != "You have no previous entries saved." {
		t.Errorf("empty list = %q", resultText(r))
	}

	r = callTool(t, srv, "append_entry", map[string]interface{}{"content": "hello\nworld"})
	if r.IsError || !strings.HasPrefix(resultText(r), "saved: Entry 1 (") {
		t.Fatalf("append = %q", resultText(r))
	}

	r = callTool(t, srv, "list_entries", nil)
	want := "Entry 1 | " + testutil.Stamp.Day + " " + testutil.Stamp.Time + "\nhello\nworld"
	if resultText(r) != want {
		t.Errorf("list = %q, want %q", resultText(r), want)
	}
}

func TestAppendEmptyContent(t *testing.T) {
	srv, _ := testServer(t, "pw")

	r := callTool(t, srv, "append_entry", map[string]interface{}{"content": "  "})
	if !r.IsError {
		t.Error("expected error for blank content")
	}
}

func TestSearchEntries(t *testing.T) {
	srv, svc := testServer(t, "pw")
	if _, err := svc.Append(t.Context(), "met #alice for coffee"); err != nil {
		t.Fatal(err)
	}

	r := callTool(t, srv, "search_entries", map[string]interface{}{"query": "coffee", "limit": 5})
	if r.IsError || !strings.Contains(resultText(r), `"Entry 1"`) {
		t.Errorf("search = %q", resultText(r))
	}
}

func TestGetEntryFormat(t *testing.T) {
	srv, _ := testServer(t, "")

	r := callTool(t, srv, "get_entry_format", nil)
	if resultText(r) != EntryFormat {
		t.Error("format text mismatch")
	}
}
