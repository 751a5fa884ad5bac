// Package mcp exposes a GLIF session as MCP (Model Context Protocol) tools,
// so that LLM agents can run grammar and semantics pipelines.
package mcp

import (
	"context"
	"strings"
	"sync"

	gomcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/jfschaefer/GLIFcore/internal/cmdline"
	"github.com/jfschaefer/GLIFcore/internal/dispatch"
)

// Executor runs command lines. *session.Session implements it.
type Executor interface {
	Execute(ctx context.Context, line string) dispatch.Result
	ExecuteCell(ctx context.Context, text string) []dispatch.Result
}

// Server wraps a session and exposes it as MCP tools.
type Server struct {
	server *gomcp.Server
	exec   Executor
	// Tool calls may arrive concurrently; engines serve one pipeline at a time.
	mu sync.Mutex
}

// NewServer creates an MCP server over exec.
func NewServer(exec Executor, version string) *Server {
	if version == "" {
		version = "dev"
	}
	s := &Server{exec: exec}
	s.server = gomcp.NewServer(&gomcp.Implementation{Name: "glif", Version: version}, nil)
	s.registerTools()
	s.registerResources()
	return s
}

// Run serves on stdin/stdout until the client disconnects or ctx is cancelled.
func (s *Server) Run(ctx context.Context) error {
	return s.server.Run(ctx, &gomcp.StdioTransport{})
}

// MCPServer returns the underlying mcp.Server for testing purposes.
func (s *Server) MCPServer() *gomcp.Server {
	return s.server
}

type executeInput struct {
	Command string `json:"command" jsonschema:"a GLIF command line such as 'parse \"every dog barks\" | construct', or a whole cell"`
	Cell    bool   `json:"cell,omitempty" jsonschema:"treat command as a multi-line cell: several command lines, or a theory/view/concrete/elpi source file to write and import"`
}

type executeOutput struct {
	Results []dispatch.ExportedResult `json:"results"`
}

type helpInput struct {
	Command string `json:"command,omitempty" jsonschema:"a command name; omit to list all commands"`
}

type helpOutput struct {
	Text string `json:"text"`
}

func (s *Server) registerTools() {
	gomcp.AddTool(s.server, &gomcp.Tool{
		Name: "glif_execute",
		Description: "Run a GLIF command line or cell. Commands can be piped with |. " +
			"Each result lists the output items with all their representations (sentence, ast, logic-standard, logic-elpi, ...) and any errors.",
	}, s.handleExecute)

	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "glif_help",
		Description: "Describe the available GLIF commands, or one command with its arguments and examples.",
	}, s.handleHelp)
}

func (s *Server) handleExecute(ctx context.Context, _ *gomcp.CallToolRequest, input executeInput) (*gomcp.CallToolResult, executeOutput, error) {
	if strings.TrimSpace(input.Command) == "" {
		return errorResult("command is required"), executeOutput{}, nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	var results []dispatch.Result
	if input.Cell {
		results = s.exec.ExecuteCell(ctx, input.Command)
	} else {
		results = []dispatch.Result{s.exec.Execute(ctx, input.Command)}
	}
	out := executeOutput{Results: make([]dispatch.ExportedResult, 0, len(results))}
	failed := false
	for _, r := range results {
		out.Results = append(out.Results, r.Export())
		failed = failed || !r.OK
	}
	if failed && len(results) == 1 {
		return errorResult(results[0].Log), out, nil
	}
	return nil, out, nil
}

func (s *Server) handleHelp(ctx context.Context, _ *gomcp.CallToolRequest, input helpInput) (*gomcp.CallToolResult, helpOutput, error) {
	line := "help"
	if name := strings.TrimSpace(input.Command); name != "" {
		line += " " + cmdline.FormatArgValue(name)
	}
	s.mu.Lock()
	res := s.exec.Execute(ctx, line)
	s.mu.Unlock()

	if !res.OK {
		return errorResult(res.Log), helpOutput{}, nil
	}
	if errs := res.Items.AllErrors(); len(errs) > 0 {
		return errorResult(strings.Join(errs, "\n")), helpOutput{}, nil
	}
	return nil, helpOutput{Text: strings.Join(res.Items.Values(), "\n\n")}, nil
}

func errorResult(msg string) *gomcp.CallToolResult {
	return &gomcp.CallToolResult{
		Content: []gomcp.Content{&gomcp.TextContent{Text: msg}},
		IsError: true,
	}
}
