// Package mcpserver exposes handbook search over the Model Context Protocol.
package mcpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/mcd-community/handbook/internal/handbook"
	"github.com/mcd-community/handbook/internal/models"
	"github.com/mcd-community/handbook/internal/render"
)

// Searcher runs handbook searches.
type Searcher interface {
	Search(ctx context.Context, query *models.SearchQuery) (*models.SearchResponse, error)
}

// SectionGetter looks up sections by id.
type SectionGetter interface {
	Section(id string) (models.Section, error)
}

// SearchRequest is the search_handbook tool input.
type SearchRequest struct {
	Query string `json:"query"`
	Mode  string `json:"mode"`
	Limit int    `json:"limit"`
}

// GetSectionRequest is the get_section tool input.
type GetSectionRequest struct {
	ID        string `json:"id"`
	Highlight string `json:"highlight"`
}

// GetSectionResponse is the get_section tool output.
type GetSectionResponse struct {
	Section  models.Section `json:"section"`
	Markdown string         `json:"markdown"`
}

// NewServer creates an MCP server with the search_handbook and get_section tools.
func NewServer(version string, searcher Searcher, sections SectionGetter) *server.MCPServer {
	s := server.NewMCPServer(
		"MC&D Handbook",
		version,
		server.WithToolCapabilities(false),
	)

	searchTool := mcp.NewTool("search_handbook",
		mcp.WithDescription("Search the MC&D onboarding handbook. Returns matching content items with surrounding context."),
		mcp.WithString("query",
			mcp.Required(),
			mcp.Description("Text to look for, matched case-insensitively"),
		),
		mcp.WithString("mode",
			mcp.Description("substring (default) or ranked"),
		),
		mcp.WithNumber("limit",
			mcp.Description("Maximum number of results"),
		),
	)
	s.AddTool(searchTool, mcp.NewTypedToolHandler(searchHandler(searcher)))

	sectionTool := mcp.NewTool("get_section",
		mcp.WithDescription("Get one handbook section by id, as structured content and markdown"),
		mcp.WithString("id",
			mcp.Required(),
			mcp.Description("Section id, e.g. verification"),
		),
		mcp.WithString("highlight",
			mcp.Description("Optional term to emphasize in the markdown"),
		),
	)
	s.AddTool(sectionTool, mcp.NewTypedToolHandler(getSectionHandler(sections)))

	return s
}

func searchHandler(searcher Searcher) func(ctx context.Context, request mcp.CallToolRequest, args SearchRequest) (*mcp.CallToolResult, error) {
	return func(ctx context.Context, request mcp.CallToolRequest, args SearchRequest) (*mcp.CallToolResult, error) {
		if args.Query == "" {
			return mcp.NewToolResultError("query is required"), nil
		}
		resp, err := searcher.Search(ctx, &models.SearchQuery{
			Query: args.Query,
			Mode:  models.SearchMode(args.Mode),
			Limit: args.Limit,
		})
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("search failed: %v", err)), nil
		}
		return jsonResult(resp)
	}
}

func getSectionHandler(sections SectionGetter) func(ctx context.Context, request mcp.CallToolRequest, args GetSectionRequest) (*mcp.CallToolResult, error) {
	return func(ctx context.Context, request mcp.CallToolRequest, args GetSectionRequest) (*mcp.CallToolResult, error) {
		if args.ID == "" {
			return mcp.NewToolResultError("id is required"), nil
		}
		section, err := sections.Section(args.ID)
		if errors.Is(err, handbook.ErrSectionNotFound) {
			return mcp.NewToolResultError(fmt.Sprintf("no section with id %q", args.ID)), nil
		}
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return jsonResult(GetSectionResponse{
			Section:  section,
			Markdown: render.SectionMarkdown(section, args.Highlight),
		})
	}
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to marshal response: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}

// ServeStdio serves s over standard input and output until the client disconnects.
func ServeStdio(s *server.MCPServer) error {
	return server.ServeStdio(s)
}
