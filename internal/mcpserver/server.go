// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes the blog's posts to LLM clients via stdio transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/mcpar-land/quill/internal/apperr"
	"github.com/mcpar-land/quill/internal/post"
	"github.com/mcpar-land/quill/internal/postservice"
	"github.com/mcpar-land/quill/internal/storage"
)

const contractURI = "quill://frontmatter-format"

// Deps are the collaborators of the MCP server.
type Deps struct {
	Service *postservice.Service
	// Posts is the posts directory; create_post writes here.
	Posts storage.Provider
	// Static is the static assets directory; add_static_asset writes here.
	Static storage.Provider
	// Reindex reloads posts into the index after a write. Optional.
	Reindex func(ctx context.Context) error
}

// Server wraps the MCP server with the post tools.
type Server struct {
	mcp  *server.MCPServer
	deps Deps
}

// New creates a new MCP server with all tools registered.
func New(deps Deps) *Server {
	s := &Server{deps: deps}

	s.mcp = server.NewMCPServer(
		"Quill",
		"1.0.0",
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("list_posts",
		mcp.WithDescription("List posts newest first, optionally only those with a tag."),
		mcp.WithString("tag", mcp.Description("Optional tag filter")),
		mcp.WithNumber("limit", mcp.Description("Maximum number of posts (default 50)")),
	), s.listPosts)

	s.mcp.AddTool(mcp.NewTool("read_post",
		mcp.WithDescription("Read a post: metadata, Markdown source and rendered HTML."),
		mcp.WithString("name", mcp.Required(), mcp.Description("Post file name without .md (e.g. 2024-03-09_parsers)")),
	), s.readPost)

	s.mcp.AddTool(mcp.NewTool("search_posts",
		mcp.WithDescription("Full-text search through post titles, descriptions, tags and bodies."),
		mcp.WithString("query", mcp.Required(), mcp.Description("Search query string")),
	), s.searchPosts)

	s.mcp.AddTool(mcp.NewTool("posts_by_tag",
		mcp.WithDescription("List the names of every post carrying a tag."),
		mcp.WithString("tag", mcp.Required(), mcp.Description("Tag to look up")),
	), s.postsByTag)

	s.mcp.AddTool(mcp.NewTool("get_frontmatter_contract",
		mcp.WithDescription("Returns the post file format. "+
			"Call this before drafting a post to ensure correct structure."),
	), s.getContract)

	s.mcp.AddTool(mcp.NewTool("validate_post",
		mcp.WithDescription("Check a file name and content against the post format without saving it."),
		mcp.WithString("filename", mcp.Required(), mcp.Description("File name, e.g. 2024-03-09_parsers.md")),
		mcp.WithString("content", mcp.Required(), mcp.Description("Full file content including frontmatter")),
	), s.validatePost)

	s.mcp.AddTool(mcp.NewTool("create_post",
		mcp.WithDescription("Create a new post file. Content MUST follow the post format; "+
			"read it first via get_frontmatter_contract or the "+contractURI+" resource."),
		mcp.WithString("filename", mcp.Required(), mcp.Description("File name, e.g. 2024-03-09_parsers.md")),
		mcp.WithString("content", mcp.Required(), mcp.Description("Full file content including frontmatter")),
	), s.createPost)

	s.mcp.AddTool(mcp.NewTool("add_static_asset",
		mcp.WithDescription("Store an image from a base64 data URI under /static/img and return "+
			"Markdown that embeds it."),
		mcp.WithString("data_uri", mcp.Required(), mcp.Description("data:<mime>;base64,<payload>")),
		mcp.WithString("filename", mcp.Description("Optional file name; generated when empty")),
	), s.addStaticAsset)

	s.mcp.AddResource(
		mcp.NewResource(contractURI, "Post Format",
			mcp.WithResourceDescription("File naming and frontmatter rules every post must follow."),
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

func jsonResult(v any) (*mcp.CallToolResult, error) {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) listPosts(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	tag := req.GetString("tag", "")
	limit := req.GetInt("limit", 50)
	items, total, err := s.deps.Service.ListPosts(ctx, limit, 0, tag)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(map[string]any{"posts": items, "total": total})
}

func (s *Server) readPost(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, err := req.RequireString("name")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	p, err := s.deps.Service.GetPost(ctx, strings.TrimSuffix(name, ".md"))
	if errors.Is(err, apperr.ErrNotFound) {
		return mcp.NewToolResultError(fmt.Sprintf("not found: %s", name)), nil
	}
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(p)
}

func (s *Server) searchPosts(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := req.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	results, err := s.deps.Service.Search(ctx, query, 20)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(results)
}

func (s *Server) postsByTag(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	tag, err := req.RequireString("tag")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	names, err := s.deps.Service.PostsByTag(ctx, tag)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if len(names) == 0 {
		return mcp.NewToolResultText("no posts found"), nil
	}
	return mcp.NewToolResultText(strings.Join(names, "\n")), nil
}

func (s *Server) getContract(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(FrontmatterContract), nil
}

func (s *Server) readContractResource(_ context.Context, _ mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      contractURI,
			MIMEType: "text/markdown",
			Text:     FrontmatterContract,
		},
	}, nil
}

// checkDraft validates a post file name and content, returning the parsed post.
func checkDraft(req mcp.CallToolRequest) (*post.Post, string, error) {
	filename, err := req.RequireString("filename")
	if err != nil {
		return nil, "", err
	}
	content, err := req.RequireString("content")
	if err != nil {
		return nil, "", err
	}
	if filename != path.Base(filename) || strings.HasPrefix(filename, ".") {
		return nil, "", fmt.Errorf("filename must be a plain file name: %s", filename)
	}
	p, err := post.Parse(filename, []byte(content))
	if err != nil {
		return nil, "", err
	}
	return p, content, nil
}

func (s *Server) validatePost(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	p, _, err := checkDraft(req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("valid: %q dated %s, tags %v", p.Title, p.Date.Pretty(), p.Tags)), nil
}

func (s *Server) createPost(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	p, content, err := checkDraft(req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	filename := p.Filename + ".md"

	if _, readErr := s.deps.Posts.Read(filename); readErr == nil {
		return mcp.NewToolResultError(fmt.Sprintf("post already exists: %s", filename)), nil
	}
	if err := s.deps.Posts.Write(filename, []byte(content)); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if s.deps.Reindex != nil {
		if err := s.deps.Reindex(ctx); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("created %s but reindex failed: %v", filename, err)), nil
		}
	}
	return mcp.NewToolResultText(fmt.Sprintf("created: %s (%s)", filename, p.Href)), nil
}
