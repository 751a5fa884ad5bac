package mcp

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	gomcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/jfschaefer/GLIFcore/internal/dispatch"
	"github.com/jfschaefer/GLIFcore/internal/items"
)

type fakeExecutor struct {
	lines []string
	cells []string
}

func (f *fakeExecutor) Execute(_ context.Context, line string) dispatch.Result {
	f.lines = append(f.lines, line)
	switch {
	case line == "help":
		return dispatch.Result{OK: true, Items: items.FromValues(items.ReprDefault, []string{"Currently available commands:"})}
	case strings.HasPrefix(line, "help nosuch"):
		return dispatch.Result{OK: true, Items: items.Empty(`Unknown command "nosuch"`)}
	case strings.HasPrefix(line, "help "):
		return dispatch.Result{OK: true, Items: items.FromValues(items.ReprDefault, []string{"about " + strings.TrimPrefix(line, "help ")})}
	case strings.HasPrefix(line, "parse"):
		it := items.New(0).WithRepr(items.ReprAST, "(barks dog)")
		return dispatch.Result{OK: true, Items: items.NewItems(it)}
	}
	return dispatch.Result{Log: "unknown command"}
}

func (f *fakeExecutor) ExecuteCell(ctx context.Context, text string) []dispatch.Result {
	f.cells = append(f.cells, text)
	var out []dispatch.Result
	for _, line := range dispatch.SplitCell(text) {
		out = append(out, f.Execute(ctx, line))
	}
	return out
}

func connect(t *testing.T, srv *Server) *gomcp.ClientSession {
	t.Helper()
	ctx := context.Background()
	client := gomcp.NewClient(&gomcp.Implementation{Name: "test-client", Version: "v0.0.1"}, nil)
	t1, t2 := gomcp.NewInMemoryTransports()

	go func() {
		_ = srv.MCPServer().Run(ctx, t1)
	}()

	session, err := client.Connect(ctx, t2, nil)
	if err != nil {
		t.Fatalf("client connect: %v", err)
	}
	t.Cleanup(func() { session.Close() })
	return session
}

func callTool(t *testing.T, srv *Server, name string, args map[string]any) *gomcp.CallToolResult {
	t.Helper()
	result, err := connect(t, srv).CallTool(context.Background(), &gomcp.CallToolParams{Name: name, Arguments: args})
	if err != nil {
		t.Fatalf("call tool %s: %v", name, err)
	}
	return result
}

func extractText(result *gomcp.CallToolResult) string {
	for _, c := range result.Content {
		if tc, ok := c.(*gomcp.TextContent); ok {
			return tc.Text
		}
	}
	return ""
}

func decode(t *testing.T, result *gomcp.CallToolResult, out any) {
	t.Helper()
	data, err := json.Marshal(result.StructuredContent)
	if err != nil {
		t.Fatal(err)
	}
	if err := json.Unmarshal(data, out); err != nil {
		t.Fatalf("decode structured content: %v (%s)", err, data)
	}
}

func TestExecute(t *testing.T) {
	ex := &fakeExecutor{}
	srv := NewServer(ex, "test")

	result := callTool(t, srv, "glif_execute", map[string]any{"command": `parse "dog barks"`})
	if result.IsError {
		t.Fatalf("expected success, got error: %s", extractText(result))
	}
	var out executeOutput
	decode(t, result, &out)
	if len(out.Results) != 1 || !out.Results[0].OK {
		t.Fatalf("results = %+v", out.Results)
	}
	got := out.Results[0].Output.Items[0].Reprs["ast"]
	if got != "(barks dog)" {
		t.Fatalf("ast = %q", got)
	}
	if len(ex.lines) != 1 || ex.lines[0] != `parse "dog barks"` {
		t.Fatalf("executed %v", ex.lines)
	}
}

func TestExecuteCell(t *testing.T) {
	ex := &fakeExecutor{}
	srv := NewServer(ex, "test")

	result := callTool(t, srv, "glif_execute", map[string]any{"command": "help\n-- comment\nbogus", "cell": true})
	if result.IsError {
		t.Fatalf("a cell with one failing line is not an error: %s", extractText(result))
	}
	var out executeOutput
	decode(t, result, &out)
	if len(out.Results) != 2 || !out.Results[0].OK || out.Results[1].OK {
		t.Fatalf("results = %+v", out.Results)
	}
	if len(ex.cells) != 1 {
		t.Fatalf("cells = %v", ex.cells)
	}
}

func TestExecuteErrors(t *testing.T) {
	srv := NewServer(&fakeExecutor{}, "test")

	result := callTool(t, srv, "glif_execute", map[string]any{"command": "bogus"})
	if !result.IsError || extractText(result) != "unknown command" {
		t.Fatalf("expected error result, got %+v", result)
	}

	result = callTool(t, srv, "glif_execute", map[string]any{"command": "  "})
	if !result.IsError || !strings.Contains(extractText(result), "required") {
		t.Fatalf("expected error for empty command, got %+v", result)
	}
}

func TestHelp(t *testing.T) {
	ex := &fakeExecutor{}
	srv := NewServer(ex, "test")

	result := callTool(t, srv, "glif_help", map[string]any{})
	var out helpOutput
	decode(t, result, &out)
	if !strings.HasPrefix(out.Text, "Currently available commands") {
		t.Fatalf("help = %q", out.Text)
	}

	result = callTool(t, srv, "glif_help", map[string]any{"command": "construct"})
	decode(t, result, &out)
	if out.Text != "about construct" {
		t.Fatalf("help construct = %q", out.Text)
	}

	result = callTool(t, srv, "glif_help", map[string]any{"command": "nosuch"})
	if !result.IsError {
		t.Fatal("expected error for unknown command")
	}
}

func TestGuideResource(t *testing.T) {
	session := connect(t, NewServer(&fakeExecutor{}, "test"))
	res, err := session.ReadResource(context.Background(), &gomcp.ReadResourceParams{URI: guideURI})
	if err != nil {
		t.Fatalf("ReadResource: %v", err)
	}
	if len(res.Contents) != 1 || !strings.Contains(res.Contents[0].Text, "glif_execute") {
		t.Fatalf("guide = %+v", res.Contents)
	}
}
