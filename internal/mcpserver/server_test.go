package mcpserver

import (
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/starford/doclint/internal/check"
	"github.com/starford/doclint/internal/engine"
	"github.com/starford/doclint/internal/schema"
	"github.com/starford/doclint/internal/testutil"
)

func testServer(t *testing.T) (*Server, string) {
	t.Helper()

	root, store := testutil.TestCorpus(t)
	eng := engine.New(engine.Params{
		Store: store,
		Schema: &schema.Schema{
			RequiredFields: []string{"title", "category", "type", "updated"},
			CategoryEnum:   []string{"security", "seo", "tools"},
			TypeEnum:       []string{"howto", "reference"},
			StatusEnum:     []string{"stable", "draft", "deprecated"},
		},
		EntryPoints:          []string{"index.md"},
		StalenessDays:        map[string]int{"reference": 365},
		DefaultStalenessDays: 540,
		Logger:               slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError})),
	})
	return New(eng), root
}

func callTool(t *testing.T, srv *Server, name string, args map[string]interface{}) *mcp.CallToolResult {
	t.Helper()
	ctx := context.Background()
	req := mcp.CallToolRequest{}
	req.Method = "tools/call"
	req.Params.Name = name
	req.Params.Arguments = args

	// mcp-go has no direct "call tool" test helper; call the handler
	// functions directly.
	var result *mcp.CallToolResult
	var err error

	switch name {
	case "check_corpus":
		result, err = srv.checkCorpus(ctx, req)
	case "document_issues":
		result, err = srv.documentIssues(ctx, req)
	case "list_orphans":
		result, err = srv.listOrphans(ctx, req)
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

func TestCheckCorpus(t *testing.T) {
	srv, root := testServer(t)
	testutil.WriteDoc(t, root, "index.md",
		"---\ntitle: Index\ncategory: tools\ntype: reference\nupdated: 2026-01-01\n---\n[a](a.md)\n[gone](missing.md)\n")
	testutil.WriteDoc(t, root, "a.md",
		"---\ntitle: A\ncategory: seo\ntype: howto\nupdated: 2026-01-01\n---\nbody\n")

	r := callTool(t, srv, "check_corpus", map[string]interface{}{})
	if r.IsError {
		t.Fatalf("unexpected error: %s", resultText(r))
	}

	var rep check.Report
	if err := json.Unmarshal([]byte(resultText(r)), &rep); err != nil {
		t.Fatalf("report not valid JSON: %v", err)
	}
	if rep.Summary.Documents != 2 {
		t.Errorf("documents = %d, want 2", rep.Summary.Documents)
	}
	if len(rep.DanglingReferences) != 1 || rep.DanglingReferences[0].RawTarget != "missing.md" {
		t.Errorf("dangling = %+v", rep.DanglingReferences)
	}
}

func TestDocumentIssues(t *testing.T) {
	srv, root := testServer(t)
	testutil.WriteDoc(t, root, "index.md",
		"---\ntitle: Index\ncategory: tools\ntype: reference\nupdated: 2026-01-01\n---\n[b](broken.md)\n")
	testutil.WriteDoc(t, root, "broken.md",
		"---\ntitle: Broken\ncategory: blogging\ntype: howto\nupdated: 2026-01-01\n---\n[gone](missing.md)\n")

	r := callTool(t, srv, "document_issues", map[string]interface{}{"path": "broken.md"})
	if r.IsError {
		t.Fatalf("unexpected error: %s", resultText(r))
	}

	var issues []issue
	if err := json.Unmarshal([]byte(resultText(r)), &issues); err != nil {
		t.Fatalf("issues not valid JSON: %v\n%s", err, resultText(r))
	}
	kinds := make(map[string]bool)
	for _, is := range issues {
		kinds[is.Kind] = true
	}
	if !kinds["dangling_reference"] || !kinds["taxonomy_violation"] {
		t.Errorf("issue kinds = %v, want dangling_reference and taxonomy_violation", kinds)
	}
}

func TestDocumentIssues_Clean(t *testing.T) {
	srv, root := testServer(t)
	testutil.WriteDoc(t, root, "index.md",
		"---\ntitle: Index\ncategory: tools\ntype: reference\nupdated: 2026-01-01\n---\n[a](a.md)\n")
	testutil.WriteDoc(t, root, "a.md",
		"---\ntitle: A\ncategory: seo\ntype: howto\nupdated: 2026-01-01\n---\nbody\n")

	r := callTool(t, srv, "document_issues", map[string]interface{}{"path": "a.md"})
	if got := resultText(r); got != "no issues found for a.md" {
		t.Errorf("result = %q", got)
	}
}

func TestDocumentIssues_MissingArg(t *testing.T) {
	srv, _ := testServer(t)
	r := callTool(t, srv, "document_issues", map[string]interface{}{})
	if !r.IsError {
		t.Error("expected error for missing path argument")
	}
}

func TestListOrphans(t *testing.T) {
	srv, root := testServer(t)
	testutil.WriteDoc(t, root, "index.md",
		"---\ntitle: Index\ncategory: tools\ntype: reference\nupdated: 2026-01-01\n---\n[a](a.md)\n")
	testutil.WriteDoc(t, root, "a.md",
		"---\ntitle: A\ncategory: seo\ntype: howto\nupdated: 2026-01-01\n---\nbody\n")
	testutil.WriteDoc(t, root, "lonely.md",
		"---\ntitle: Lonely\ncategory: seo\ntype: howto\nupdated: 2026-01-01\n---\nbody\n")

	r := callTool(t, srv, "list_orphans", map[string]interface{}{})
	text := resultText(r)
	if !strings.Contains(text, "lonely.md") {
		t.Errorf("orphans = %q, want lonely.md", text)
	}
	if strings.Contains(text, "index.md") {
		t.Errorf("entry point listed as orphan: %q", text)
	}
}

func TestListOrphans_None(t *testing.T) {
	srv, root := testServer(t)
	testutil.WriteDoc(t, root, "index.md",
		"---\ntitle: Index\ncategory: tools\ntype: reference\nupdated: 2026-01-01\n---\nbody\n")

	r := callTool(t, srv, "list_orphans", map[string]interface{}{})
	if got := resultText(r); got != "no orphan documents" {
		t.Errorf("result = %q", got)
	}
}

func TestFrontmatterContractResource(t *testing.T) {
	srv, _ := testServer(t)

	contents, err := srv.readContractResource(context.Background(), mcp.ReadResourceRequest{})
	if err != nil {
		t.Fatal(err)
	}
	if len(contents) != 1 {
		t.Fatalf("contents = %d, want 1", len(contents))
	}
	tc, ok := contents[0].(mcp.TextResourceContents)
	if !ok {
		t.Fatalf("unexpected content type %T", contents[0])
	}
	if !strings.Contains(tc.Text, "Related Documents") {
		t.Error("contract missing Related Documents convention")
	}
}
