// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes the naming codec and the catalog for LLM integration via
// stdio transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cast"

	"github.com/starford/namefile/internal/apperr"
	"github.com/starford/namefile/internal/catalog"
	"github.com/starford/namefile/internal/index"
	"github.com/starford/namefile/pkg/namefile"
)

const (
	contractURI = "namefile://naming-contract"
	maxPage     = 500
)

// Server wraps the MCP server with catalog tools.
type Server struct {
	mcp *server.MCPServer
	svc *catalog.Service
}

// New creates a new MCP server with all tools registered.
func New(svc *catalog.Service, version string) *Server {
	s := &Server{svc: svc}

	s.mcp = server.NewMCPServer(
		"namefile",
		version,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("encode_name",
		mcp.WithDescription("Build the canonical file name for a record. "+
			"Read the naming contract first via get_naming_contract or the "+contractURI+" resource."),
		mcp.WithString("stem", mcp.Required(), mcp.Description("Base name")),
		mcp.WithString("suffix", mcp.Description("Extension without the leading dot, e.g. txt or tar.gz")),
		mcp.WithArray("tags", mcp.Description("Tags"), mcp.WithStringItems()),
		mcp.WithString("date", mcp.Description("Date as YYYY-MM-DD")),
		mcp.WithBoolean("today", mcp.Description("Stamp today's date instead of date")),
		mcp.WithString("version", mcp.Description("Version such as 1.2.0, 1.0rc1 or 1.2.0.post1")),
	), s.encodeName)

	s.mcp.AddTool(mcp.NewTool("decode_name",
		mcp.WithDescription("Decode a file name into stem, tags, date, version and suffix."),
		mcp.WithString("name", mcp.Required(), mcp.Description("File name without directory")),
	), s.decodeName)

	s.mcp.AddTool(mcp.NewTool("search_files",
		mcp.WithDescription("Search catalogued file names by stem, tag or suffix."),
		mcp.WithString("query", mcp.Required(), mcp.Description("Search query string")),
		mcp.WithNumber("limit", mcp.Description("Maximum number of results (default 20)")),
	), s.searchFiles)

	s.mcp.AddTool(mcp.NewTool("list_files",
		mcp.WithDescription("List catalogued files, optionally filtered by stem, suffix and tags."),
		mcp.WithString("stem", mcp.Description("Only files with this stem")),
		mcp.WithString("suffix", mcp.Description("Only files with this suffix")),
		mcp.WithArray("tags", mcp.Description("Only files carrying all of these tags"), mcp.WithStringItems()),
		mcp.WithNumber("limit", mcp.Description("Page size (default 50)")),
		mcp.WithNumber("offset", mcp.Description("Page offset")),
	), s.listFiles)

	s.mcp.AddTool(mcp.NewTool("latest_file",
		mcp.WithDescription("Find the newest version of a stem."),
		mcp.WithString("stem", mcp.Required(), mcp.Description("Stem to look up")),
		mcp.WithString("suffix", mcp.Description("Restrict to one suffix")),
	), s.latestFile)

	s.mcp.AddTool(mcp.NewTool("list_unmanaged",
		mcp.WithDescription("List files whose names do not follow the naming contract, with the reason."),
		mcp.WithNumber("limit", mcp.Description("Page size (default 50)")),
		mcp.WithNumber("offset", mcp.Description("Page offset")),
	), s.listUnmanaged)

	s.mcp.AddTool(mcp.NewTool("refresh_file",
		mcp.WithDescription("Re-read one file from disk and update its catalog entry. "+
			"Use after renaming a file when the watcher is disabled."),
		mcp.WithString("path", mcp.Required(), mcp.Description("Path relative to the catalog root")),
	), s.refreshFile)

	s.mcp.AddTool(mcp.NewTool("get_naming_contract",
		mcp.WithDescription("Returns the file naming contract. "+
			"Call this before proposing file names to ensure correct structure."),
	), s.getNamingContract)

	// Resource: naming contract.
	s.mcp.AddResource(
		mcp.NewResource(contractURI, "File Naming Contract",
			mcp.WithResourceDescription("Grammar and rules of the file naming convention."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readNamingContractResource,
	)

	return s
}

// ServeStdio serves MCP on stdin/stdout until ctx is cancelled or stdin
// is closed.
func (s *Server) ServeStdio(ctx context.Context) error {
	err := server.NewStdioServer(s.mcp).Listen(ctx, os.Stdin, os.Stdout)
	if errors.Is(err, context.Canceled) || errors.Is(err, io.EOF) {
		return nil
	}
	return err
}

// MCPServer returns the underlying server for testing.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

func jsonResult(v any) *mcp.CallToolResult {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(err.Error())
	}
	return mcp.NewToolResultText(string(out))
}

func codecErrorResult(err error) *mcp.CallToolResult {
	if kind := namefile.ErrorKind(err); kind != "" {
		return mcp.NewToolResultError(fmt.Sprintf("%s: %s", kind, index.Reason(err)))
	}
	return mcp.NewToolResultError(index.Reason(err))
}

func page(args map[string]any) (int, int) {
	limit := cast.ToInt(args["limit"])
	if limit <= 0 {
		limit = 50
	}
	return min(limit, maxPage), max(cast.ToInt(args["offset"]), 0)
}

func (s *Server) encodeName(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	stem, err := req.RequireString("stem")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	args := req.GetArguments()
	res, err := s.svc.Encode(ctx, catalog.EncodeRequest{
		Stem:    stem,
		Suffix:  req.GetString("suffix", ""),
		Tags:    cast.ToStringSlice(args["tags"]),
		Date:    req.GetString("date", ""),
		Today:   cast.ToBool(args["today"]),
		Version: req.GetString("version", ""),
	})
	if err != nil {
		return codecErrorResult(err), nil
	}
	return jsonResult(res), nil
}

func (s *Server) decodeName(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, err := req.RequireString("name")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	fields, err := s.svc.Decode(ctx, name)
	if err != nil {
		return codecErrorResult(err), nil
	}
	return jsonResult(fields), nil
}

func (s *Server) searchFiles(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := req.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	limit := min(max(cast.ToInt(req.GetArguments()["limit"]), 0), maxPage)
	results, err := s.svc.Search(ctx, query, limit)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if len(results) == 0 {
		return mcp.NewToolResultText("no files found"), nil
	}
	return jsonResult(results), nil
}

func (s *Server) listFiles(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	limit, offset := page(args)
	items, total, err := s.svc.ListEntries(ctx, index.Filter{
		Stem:   req.GetString("stem", ""),
		Suffix: req.GetString("suffix", ""),
		Tags:   cast.ToStringSlice(args["tags"]),
		Limit:  limit,
		Offset: offset,
	})
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(map[string]any{"files": items, "total": total}), nil
}

func (s *Server) latestFile(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	stem, err := req.RequireString("stem")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	entry, err := s.svc.Latest(ctx, stem, req.GetString("suffix", ""))
	switch {
	case errors.Is(err, apperr.ErrNotFound):
		return mcp.NewToolResultError(fmt.Sprintf("no files with stem %q", stem)), nil
	case err != nil:
		return codecErrorResult(err), nil
	}
	return jsonResult(entry), nil
}

func (s *Server) listUnmanaged(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	limit, offset := page(req.GetArguments())
	items, total, err := s.svc.ListUnmanaged(ctx, limit, offset)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(map[string]any{"files": items, "total": total}), nil
}

func (s *Server) refreshFile(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := req.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	res, err := s.svc.Refresh(ctx, path)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(res), nil
}

func (s *Server) getNamingContract(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(NamingContract), nil
}

func (s *Server) readNamingContractResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      contractURI,
			MIMEType: "text/markdown",
			Text:     NamingContract,
		},
	}, nil
}
