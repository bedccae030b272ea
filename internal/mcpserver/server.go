// Package mcpserver provides an MCP (Model Context Protocol) server that
// exposes doclint integrity checks for LLM integration via stdio transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/starford/doclint/internal/check"
	"github.com/starford/doclint/internal/engine"
)

// Server wraps the MCP server with doclint tools.
type Server struct {
	mcp    *server.MCPServer
	engine *engine.Engine
}

// New creates a new MCP server with all doclint tools registered.
func New(eng *engine.Engine) *Server {
	s := &Server{engine: eng}

	s.mcp = server.NewMCPServer(
		"doclint",
		"1.0.0",
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("check_corpus",
		mcp.WithDescription("Run the full documentation integrity check and return the JSON report "+
			"(frontmatter errors, dangling/ambiguous references, orphans, taxonomy violations, stale documents)."),
	), s.checkCorpus)

	s.mcp.AddTool(mcp.NewTool("document_issues",
		mcp.WithDescription("Return every integrity issue involving a single document, "+
			"as a source of problems or as a reference target."),
		mcp.WithString("path", mcp.Required(), mcp.Description("Corpus-relative path of the document (e.g. seo/ref-technical-seo.md)")),
	), s.documentIssues)

	s.mcp.AddTool(mcp.NewTool("list_orphans",
		mcp.WithDescription("List documents with no inbound cross-references, excluding configured entry points."),
	), s.listOrphans)

	// Resource: frontmatter contract.
	s.mcp.AddResource(
		mcp.NewResource("doclint://frontmatter-contract", "Frontmatter Contract",
			mcp.WithResourceDescription("Canonical frontmatter format that all corpus documents must follow."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readContractResource,
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

func (s *Server) run(ctx context.Context) (*check.Report, error) {
	return s.engine.Run(ctx, time.Now().UTC())
}

func (s *Server) checkCorpus(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	rep, err := s.run(ctx)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	out, _ := json.MarshalIndent(rep, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) documentIssues(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := req.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	rep, err := s.run(ctx)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	issues := collectIssues(rep, path)
	if len(issues) == 0 {
		return mcp.NewToolResultText("no issues found for " + path), nil
	}
	out, _ := json.MarshalIndent(issues, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) listOrphans(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	rep, err := s.run(ctx)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if len(rep.OrphanDocuments) == 0 {
		return mcp.NewToolResultText("no orphan documents"), nil
	}
	return mcp.NewToolResultText(strings.Join(rep.OrphanDocuments, "\n")), nil
}

func (s *Server) readContractResource(_ context.Context, _ mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      "doclint://frontmatter-contract",
			MIMEType: "text/markdown",
			Text:     FrontmatterContract,
		},
	}, nil
}

// issue is a flattened per-document finding returned by document_issues.
type issue struct {
	Kind   string `json:"kind"`
	Detail string `json:"detail"`
}

func collectIssues(rep *check.Report, path string) []issue {
	var out []issue
	for _, le := range rep.LoadErrors {
		if le.Path == path {
			out = append(out, issue{Kind: "load_error", Detail: le.Reason})
		}
	}
	for _, fe := range rep.FrontmatterErrors[path] {
		out = append(out, issue{Kind: "frontmatter_" + string(fe.Severity), Detail: fe.Field + ": " + fe.Reason})
	}
	for _, d := range rep.DanglingReferences {
		if d.SourcePath == path {
			out = append(out, issue{Kind: "dangling_reference", Detail: d.RawTarget})
		}
	}
	for _, a := range rep.AmbiguousReferences {
		if a.SourcePath == path {
			out = append(out, issue{Kind: "ambiguous_reference", Detail: a.RawTarget + " -> " + strings.Join(a.Candidates, ", ")})
		}
	}
	for _, p := range rep.OrphanDocuments {
		if p == path {
			out = append(out, issue{Kind: "orphan", Detail: "no inbound references"})
		}
	}
	for _, v := range rep.TaxonomyViolations {
		if v.Path == path {
			out = append(out, issue{Kind: "taxonomy_violation", Detail: v.Field + ": " + v.Value})
		}
	}
	for _, st := range rep.StaleDocuments {
		if st.Path == path {
			out = append(out, issue{Kind: "stale", Detail: "updated " + st.Updated})
		}
	}
	return out
}
