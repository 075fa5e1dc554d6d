// Package mcptools exposes the dashboard data facade as read-only MCP tools.
package mcptools

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"crdashboard/internal/dashboard"
	"crdashboard/internal/dataset"
	"crdashboard/internal/remote"
)

const serverName = "crdashboard"

// Tools holds the facade the tool handlers read from.
type Tools struct {
	Dashboard *dashboard.Service
	Logger    *log.Logger
}

// --- Input types ---

type TrendsInput struct {
	Limit int `json:"limit,omitempty" jsonschema:"Maximum number of trends to return, highest affiliate score first. 0 returns all"`
}

type ArticlesInput struct {
	Limit int `json:"limit,omitempty" jsonschema:"Maximum number of articles to return, newest first. 0 returns all"`
}

// --- Output shapes ---

type categoryCountsOutput struct {
	Total      int                     `json:"total"`
	Categories []dataset.CategoryCount `json:"categories"`
	Demo       bool                    `json:"demo"`
}

type connectionOutput struct {
	Status remote.ConnectionStatus `json:"status"`
}

// NewServer builds an MCP server with every dashboard tool registered.
func NewServer(dash *dashboard.Service, version string, logger *log.Logger) *mcp.Server {
	t := &Tools{Dashboard: dash, Logger: logger}

	srv := mcp.NewServer(&mcp.Implementation{
		Name:    serverName,
		Version: version,
	}, nil)

	mcp.AddTool(srv, &mcp.Tool{
		Name:        "get_summary",
		Description: "Get the latest daily summary snapshot (falls back to demo data when the repository is unavailable)",
	}, t.GetSummary)

	mcp.AddTool(srv, &mcp.Tool{
		Name:        "get_trends",
		Description: "Get the latest affiliate trend rows ordered by affiliate score",
	}, t.GetTrends)

	mcp.AddTool(srv, &mcp.Tool{
		Name:        "get_articles",
		Description: "Get the generated article log, newest first",
	}, t.GetArticles)

	mcp.AddTool(srv, &mcp.Tool{
		Name:        "get_category_counts",
		Description: "Get point-of-interest counts per category from the latest OSM snapshot",
	}, t.GetCategoryCounts)

	mcp.AddTool(srv, &mcp.Tool{
		Name:        "check_connection",
		Description: "Check whether the configured data repository is reachable",
	}, t.CheckConnection)

	return srv
}

// Handler serves srv over streamable HTTP.
func Handler(srv *mcp.Server) http.Handler {
	return mcp.NewStreamableHTTPHandler(func(*http.Request) *mcp.Server {
		return srv
	}, nil)
}

// --- Handlers ---

func (t *Tools) GetSummary(ctx context.Context, _ *mcp.CallToolRequest, _ struct{}) (*mcp.CallToolResult, any, error) {
	return t.toolJSON(t.Dashboard.GetSummary(ctx))
}

func (t *Tools) GetTrends(ctx context.Context, _ *mcp.CallToolRequest, input TrendsInput) (*mcp.CallToolResult, any, error) {
	if input.Limit < 0 {
		return toolError("limit must not be negative"), nil, nil
	}
	res := t.Dashboard.GetTrends(ctx)
	res.Data = dataset.SortByScore(res.Data)
	if input.Limit > 0 && input.Limit < len(res.Data) {
		res.Data = res.Data[:input.Limit]
	}
	return t.toolJSON(res)
}

func (t *Tools) GetArticles(ctx context.Context, _ *mcp.CallToolRequest, input ArticlesInput) (*mcp.CallToolResult, any, error) {
	if input.Limit < 0 {
		return toolError("limit must not be negative"), nil, nil
	}
	res := t.Dashboard.GetArticles(ctx)
	res.Data = dataset.Newest(res.Data, input.Limit)
	return t.toolJSON(res)
}

func (t *Tools) GetCategoryCounts(ctx context.Context, _ *mcp.CallToolRequest, _ struct{}) (*mcp.CallToolResult, any, error) {
	res := t.Dashboard.GetCategoryCounts(ctx)
	return t.toolJSON(categoryCountsOutput{
		Total:      res.Data.Total(),
		Categories: res.Data.Sorted(),
		Demo:       res.Demo,
	})
}

func (t *Tools) CheckConnection(ctx context.Context, _ *mcp.CallToolRequest, _ struct{}) (*mcp.CallToolResult, any, error) {
	return t.toolJSON(connectionOutput{Status: t.Dashboard.CheckConnection(ctx)})
}

// --- Helpers ---

func toolError(format string, args ...any) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: fmt.Sprintf(format, args...)}},
		IsError: true,
	}
}

func (t *Tools) toolJSON(v any) (*mcp.CallToolResult, any, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		t.Logger.Printf("Error marshalling tool result: %v", err)
		return toolError("Failed to marshal result: %v", err), nil, nil
	}
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: string(data)}},
	}, nil, nil
}
