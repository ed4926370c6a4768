package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/kalambet/callhighlights/internal/calls"
	"github.com/kalambet/callhighlights/internal/insights"
	"github.com/kalambet/callhighlights/internal/render"
)

// MCPDeps holds dependencies for the MCP server.
type MCPDeps struct {
	Calls CallStore
}

// NewMCPServer creates an MCP server exposing the call collection as tools and resources.
func NewMCPServer(deps MCPDeps) *server.MCPServer {
	s := server.NewMCPServer(
		"callhighlights",
		"1.0.0",
		server.WithToolCapabilities(true),
		server.WithResourceCapabilities(false, true),
		server.WithInstructions("callhighlights: saved call transcripts tagged by date and company, with word-count insights."),
		server.WithRecovery(),
	)

	// Tools
	s.AddTool(
		mcp.NewTool("add_call",
			mcp.WithDescription("Save a call transcript."),
			mcp.WithString("transcript", mcp.Description("Full transcript text"), mcp.Required()),
			mcp.WithString("company", mcp.Description("Company the call was with (default Unknown)")),
			mcp.WithString("date", mcp.Description("Call date as YYYY-MM-DD (default today)")),
		),
		mcpAddCall(deps),
	)

	s.AddTool(
		mcp.NewTool("list_calls",
			mcp.WithDescription("List saved calls newest first, optionally filtered to one company."),
			mcp.WithString("company", mcp.Description("Only return calls for this company")),
			mcp.WithNumber("limit", mcp.Description("Maximum number of calls (default 20)")),
		),
		mcpListCalls(deps),
	)

	s.AddTool(
		mcp.NewTool("delete_call",
			mcp.WithDescription("Delete a saved call by id."),
			mcp.WithNumber("id", mcp.Description("Call id"), mcp.Required()),
		),
		mcpDeleteCall(deps),
	)

	s.AddTool(
		mcp.NewTool("call_insights",
			mcp.WithDescription("Total calls, total and average words, and the most active weekday."),
		),
		mcpInsights(deps),
	)

	// Resources
	s.AddResource(
		mcp.NewResource(
			"calls://insights",
			"Call Insights",
			mcp.WithResourceDescription("Aggregate statistics over all saved calls"),
			mcp.WithMIMEType("application/json"),
		),
		mcpResourceInsights(deps),
	)

	s.AddResource(
		mcp.NewResource(
			"calls://companies",
			"Calls by Company",
			mcp.WithResourceDescription("Per-company call counts and word totals with call previews"),
			mcp.WithMIMEType("application/json"),
		),
		mcpResourceCompanies(deps),
	)

	return s
}

func mcpAddCall(deps MCPDeps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		transcript, err := req.RequireString("transcript")
		if err != nil {
			return mcpError("transcript is required"), nil
		}

		rec, err := deps.Calls.Create(req.GetString("date", ""), req.GetString("company", ""), transcript)
		if errors.Is(err, calls.ErrEmptyTranscript) {
			return mcpError("transcript is required"), nil
		}
		if err != nil {
			return mcpError(fmt.Sprintf("failed to save: %v", err)), nil
		}

		return mcpText(fmt.Sprintf("Saved call %d (%s, %s)", rec.ID, rec.Company, rec.Date)), nil
	}
}

func mcpListCalls(deps MCPDeps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		company := req.GetString("company", "")
		limit := req.GetInt("limit", 20)
		if limit <= 0 {
			limit = 20
		}
		if limit > 200 {
			limit = 200
		}

		type callResult struct {
			ID        int64  `json:"id"`
			Date      string `json:"date"`
			Company   string `json:"company"`
			Preview   string `json:"preview"`
			WordCount int    `json:"word_count"`
		}

		results := []callResult{}
		for _, r := range deps.Calls.ListAll() {
			if company != "" && r.Company != company {
				continue
			}
			preview, _ := render.Preview(r.Transcript)
			results = append(results, callResult{
				ID:        r.ID,
				Date:      r.Date,
				Company:   r.Company,
				Preview:   preview,
				WordCount: insights.WordCount(r.Transcript),
			})
			if len(results) == limit {
				break
			}
		}

		b, err := json.Marshal(results)
		if err != nil {
			return mcpError(fmt.Sprintf("failed to marshal calls: %v", err)), nil
		}
		return mcpText(string(b)), nil
	}
}

func mcpDeleteCall(deps MCPDeps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		id, err := req.RequireFloat("id")
		if err != nil {
			return mcpError("id is required"), nil
		}

		if err := deps.Calls.DeleteByID(int64(id)); err != nil {
			return mcpError(fmt.Sprintf("failed to delete: %v", err)), nil
		}
		return mcpText(fmt.Sprintf("Deleted call %d", int64(id))), nil
	}
}

func mcpInsights(deps MCPDeps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		b, err := json.Marshal(insights.Summarize(deps.Calls.ListAll()))
		if err != nil {
			return mcpError(fmt.Sprintf("failed to marshal insights: %v", err)), nil
		}
		return mcpText(string(b)), nil
	}
}

func mcpResourceInsights(deps MCPDeps) server.ResourceHandlerFunc {
	return func(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		b, err := json.Marshal(insights.Summarize(deps.Calls.ListAll()))
		if err != nil {
			return nil, fmt.Errorf("failed to marshal insights: %w", err)
		}
		return jsonResource(req.Params.URI, b), nil
	}
}

func mcpResourceCompanies(deps MCPDeps) server.ResourceHandlerFunc {
	return func(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		type companySummary struct {
			Company string `json:"company"`
			insights.CompanyStats
			Previews []string `json:"previews"`
		}

		g := insights.GroupByCompany(deps.Calls.ListAll())
		summaries := make([]companySummary, 0, len(g.Companies))
		for _, c := range g.Companies {
			s := companySummary{Company: c, CompanyStats: g.Stats(c)}
			for _, r := range g.Buckets[c] {
				preview, _ := render.Preview(r.Transcript)
				s.Previews = append(s.Previews, preview)
			}
			summaries = append(summaries, s)
		}

		b, err := json.Marshal(summaries)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal companies: %w", err)
		}
		return jsonResource(req.Params.URI, b), nil
	}
}

func jsonResource(uri string, b []byte) []mcp.ResourceContents {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(b),
		},
	}
}

func mcpText(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.TextContent{Type: "text", Text: text},
		},
	}
}

func mcpError(msg string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.TextContent{Type: "text", Text: msg},
		},
		IsError: true,
	}
}
