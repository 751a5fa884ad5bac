package mcp

import (
	"context"

	gomcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/jfschaefer/GLIFcore/docs"
)

const guideURI = "glif://guide"

func (s *Server) registerResources() {
	s.server.AddResource(&gomcp.Resource{
		URI:         guideURI,
		Name:        "guide",
		Description: "How to drive GLIF: engines, pipelines, cells and a typical workflow.",
		MIMEType:    "text/markdown",
	}, func(_ context.Context, _ *gomcp.ReadResourceRequest) (*gomcp.ReadResourceResult, error) {
		return &gomcp.ReadResourceResult{
			Contents: []*gomcp.ResourceContents{{URI: guideURI, MIMEType: "text/markdown", Text: docs.Guide}},
		}, nil
	})
}
