package mcpserver

import (
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/starford/namefile/internal/catalog"
	"github.com/starford/namefile/internal/index"
	"github.com/starford/namefile/internal/testutil"
	"github.com/starford/namefile/pkg/namefile"
)

func testServer(t *testing.T, files ...string) *Server {
	t.Helper()

	root, store := testutil.TestRoot(t)
	testutil.WriteFiles(t, root, files...)
	db := testutil.TestDB(t)
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
	if err := index.Sync(db, store, logger); err != nil {
		t.Fatal(err)
	}

	return New(catalog.NewService(store, db), "test")
}

func callTool(t *testing.T, srv *Server, name string, args map[string]interface{}) *mcp.CallToolResult {
	t.Helper()
	ctx := context.Background()
	req := mcp.CallToolRequest{}
	req.Method = "tools/call"
	req.Params.Name = name
	req.Params.Arguments = args

	// mcp-go has no in-process call helper, so dispatch to the handlers directly.
	var result *mcp.CallToolResult
	var err error

	switch name {
	case "encode_name":
		result, err = srv.encodeName(ctx, req)
	case "decode_name":
		result, err = srv.decodeName(ctx, req)
	case "search_files":
		result, err = srv.searchFiles(ctx, req)
	case "list_files":
		result, err = srv.listFiles(ctx, req)
	case "latest_file":
		result, err = srv.latestFile(ctx, req)
	case "list_unmanaged":
		result, err = srv.listUnmanaged(ctx, req)
	case "refresh_file":
		result, err = srv.refreshFile(ctx, req)
	case "get_naming_contract":
		result, err = srv.getNamingContract(ctx, req)
	default:
		t.Fatalf("unknown tool: %s", name)
	}
	if err != nil {
		t.Fatalf("tool %s error: %v", name, err)
	}
	return result
}

func resultText(r *mcp.CallToolResult) string {
	if len(r.Content) == 0 {
		return ""
	}
	if tc, ok := r.Content[0].(mcp.TextContent); ok {
		return tc.Text
	}
	return ""
}

func TestEncodeName(t *testing.T) {
	srv := testServer(t)
	r := callTool(t, srv, "encode_name", map[string]interface{}{
		"stem":    "foo",
		"suffix":  "txt",
		"tags":    []interface{}{"baz", "bar"},
		"date":    "2020-01-01",
		"version": "1.0.0",
	})
	if r.IsError {
		t.Fatalf("unexpected error: %s", resultText(r))
	}

	var res catalog.EncodeResult
	if err := json.Unmarshal([]byte(resultText(r)), &res); err != nil {
		t.Fatal(err)
	}
	if res.Name != "foo-bar-baz.20200101.1.0.0.txt" {
		t.Errorf("name = %q", res.Name)
	}
}

func TestEncodeName_Invalid(t *testing.T) {
	srv := testServer(t)

	r := callTool(t, srv, "encode_name", map[string]interface{}{})
	if !r.IsError {
		t.Error("expected error for missing stem")
	}

	r = callTool(t, srv, "encode_name", map[string]interface{}{"stem": "foo", "version": "x1"})
	if !r.IsError {
		t.Fatal("expected error for bad version")
	}
	if !strings.HasPrefix(resultText(r), namefile.KindInvalidVersion) {
		t.Errorf("error = %q, want %s prefix", resultText(r), namefile.KindInvalidVersion)
	}
}

func TestDecodeName(t *testing.T) {
	srv := testServer(t)
	r := callTool(t, srv, "decode_name", map[string]interface{}{"name": "backup-db.20230506.tar.gz"})
	if r.IsError {
		t.Fatalf("unexpected error: %s", resultText(r))
	}

	var f namefile.Fields
	if err := json.Unmarshal([]byte(resultText(r)), &f); err != nil {
		t.Fatal(err)
	}
	if f.Stem != "backup" || f.Suffix != "tar.gz" || f.Date != "2023-05-06" {
		t.Errorf("fields = %+v", f)
	}
	if len(f.Tags) != 1 || f.Tags[0] != "db" {
		t.Errorf("tags = %v", f.Tags)
	}
}

func TestDecodeName_Errors(t *testing.T) {
	srv := testServer(t)
	tests := map[string]string{
		"foo.20201301.txt": namefile.KindInvalidDate,
		"foo.bar.baz.txt":  namefile.KindUnparseableName,
	}
	for name, kind := range tests {
		r := callTool(t, srv, "decode_name", map[string]interface{}{"name": name})
		if !r.IsError {
			t.Errorf("%s: expected error", name)
			continue
		}
		if !strings.HasPrefix(resultText(r), kind+":") {
			t.Errorf("%s: error = %q, want kind %s", name, resultText(r), kind)
		}
	}
}

func TestListFiles(t *testing.T) {
	srv := testServer(t, "report-q1.20240101.pdf", "report-q2.20240401.pdf", "notes.txt")

	r := callTool(t, srv, "list_files", map[string]interface{}{"stem": "report"})
	if r.IsError {
		t.Fatalf("unexpected error: %s", resultText(r))
	}
	var out struct {
		Files []struct {
			Path string `json:"path"`
		} `json:"files"`
		Total int `json:"total"`
	}
	if err := json.Unmarshal([]byte(resultText(r)), &out); err != nil {
		t.Fatal(err)
	}
	if out.Total != 2 || len(out.Files) != 2 {
		t.Errorf("total = %d, files = %d, want 2", out.Total, len(out.Files))
	}

	r = callTool(t, srv, "list_files", map[string]interface{}{"tags": []interface{}{"q2"}})
	if err := json.Unmarshal([]byte(resultText(r)), &out); err != nil {
		t.Fatal(err)
	}
	if out.Total != 1 || out.Files[0].Path != "report-q2.20240401.pdf" {
		t.Errorf("tag filter = %+v", out)
	}
}

func TestSearchFiles(t *testing.T) {
	srv := testServer(t, "report-q1.20240101.pdf", "notes.txt")

	r := callTool(t, srv, "search_files", map[string]interface{}{"query": "report"})
	if r.IsError {
		t.Fatalf("unexpected error: %s", resultText(r))
	}
	if !strings.Contains(resultText(r), "report-q1.20240101.pdf") {
		t.Errorf("search result missing file: %s", resultText(r))
	}

	r = callTool(t, srv, "search_files", map[string]interface{}{"query": "absent"})
	if resultText(r) != "no files found" {
		t.Errorf("empty search = %q", resultText(r))
	}
}

func TestLatestFile(t *testing.T) {
	srv := testServer(t, "app.1.0.tar.gz", "app.1.2.tar.gz", "app.1.10rc1.tar.gz")

	r := callTool(t, srv, "latest_file", map[string]interface{}{"stem": "app"})
	if r.IsError {
		t.Fatalf("unexpected error: %s", resultText(r))
	}
	if !strings.Contains(resultText(r), "app.1.10rc1.tar.gz") {
		t.Errorf("latest = %s", resultText(r))
	}

	r = callTool(t, srv, "latest_file", map[string]interface{}{"stem": "missing"})
	if !r.IsError {
		t.Error("expected error for unknown stem")
	}
}

func TestListUnmanaged(t *testing.T) {
	srv := testServer(t, "foo.bar.baz.txt", "ok.txt")

	r := callTool(t, srv, "list_unmanaged", map[string]interface{}{})
	if r.IsError {
		t.Fatalf("unexpected error: %s", resultText(r))
	}
	text := resultText(r)
	if !strings.Contains(text, "foo.bar.baz.txt") || strings.Contains(text, "ok.txt") {
		t.Errorf("unmanaged = %s", text)
	}
}

func TestRefreshFile(t *testing.T) {
	srv := testServer(t, "late.1.txt")

	r := callTool(t, srv, "refresh_file", map[string]interface{}{"path": "late.1.txt"})
	if r.IsError {
		t.Fatalf("unexpected error: %s", resultText(r))
	}
	var res catalog.RefreshResult
	if err := json.Unmarshal([]byte(resultText(r)), &res); err != nil {
		t.Fatal(err)
	}
	if res.Status != catalog.RefreshManaged {
		t.Errorf("status = %q", res.Status)
	}

	r = callTool(t, srv, "refresh_file", map[string]interface{}{"path": "../outside.txt"})
	if !r.IsError {
		t.Error("expected error for path outside the root")
	}
}

func TestGetNamingContract(t *testing.T) {
	srv := testServer(t)
	r := callTool(t, srv, "get_naming_contract", nil)
	if !strings.Contains(resultText(r), "STEM[-TAG1-...-TAGn]") {
		t.Error("contract missing grammar")
	}
}

func TestNamingContractResource(t *testing.T) {
	srv := testServer(t)
	contents, err := srv.readNamingContractResource(context.Background(), mcp.ReadResourceRequest{})
	if err != nil {
		t.Fatal(err)
	}
	tc, ok := contents[0].(mcp.TextResourceContents)
	if !ok || tc.MIMEType != "text/markdown" || tc.URI != contractURI {
		t.Errorf("resource = %+v", contents[0])
	}
}
