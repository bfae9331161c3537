// ABOUTME: MCP tool definitions and registration for the lifeline server
// ABOUTME: Declares JSON schemas for the similarity, cross-reference, pattern, and tag tools
package mcp

import (
	"github.com/harper/lifeline/internal/core"
	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"
)

// Default limits for tools that accept them
const (
	DefaultSimilarLimit   = 10
	DefaultMaxSuggestions = 5
)

// RegisterTools registers all MCP tools with the server
func RegisterTools(server *mcpserver.MCPServer, engine *core.Engine) *Handlers {
	handlers := NewHandlers(engine)

	eventID := map[string]interface{}{
		"type":        "string",
		"description": "Event ID",
	}
	threshold := map[string]interface{}{
		"type":        "number",
		"description": "Minimum cosine similarity between 0 and 1 (default: configured similarity threshold)",
		"minimum":     0,
		"maximum":     1,
	}

	// 1. find_similar - nearest events by embedding similarity
	server.AddTool(mcp.Tool{
		Name:        "find_similar",
		Description: "Find events semantically similar to an event, most similar first.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"event_id":  eventID,
				"threshold": threshold,
				"limit": map[string]interface{}{
					"type":        "number",
					"description": "Maximum number of results (default: 10)",
					"default":     DefaultSimilarLimit,
				},
			},
			Required: []string{"event_id"},
		},
	}, handlers.FindSimilar)

	// 2. get_cross_references - stored relationships for an event
	server.AddTool(mcp.Tool{
		Name:        "get_cross_references",
		Description: "List stored relationships touching an event, highest confidence first.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"event_id": eventID,
			},
			Required: []string{"event_id"},
		},
	}, handlers.GetCrossReferences)

	// 3. analyze_event - classify and store relationships for one event
	server.AddTool(mcp.Tool{
		Name:        "analyze_event",
		Description: "Detect relationships between an event and its semantic and temporal neighbors, storing confident ones.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"event_id":  eventID,
				"threshold": threshold,
			},
			Required: []string{"event_id"},
		},
	}, handlers.AnalyzeEvent)

	// 4. analyze_timeline - full-timeline batch analysis
	server.AddTool(mcp.Tool{
		Name:        "analyze_timeline",
		Description: "Analyze every event in timeline order. Failures are reported per event and never stop the run.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"threshold": threshold,
				"resume_after": map[string]interface{}{
					"type":        "string",
					"description": "Skip events up to and including this event ID",
				},
			},
		},
	}, handlers.AnalyzeTimeline)

	// 5. detect_patterns - recurring categories, clusters, era transitions
	server.AddTool(mcp.Tool{
		Name:        "detect_patterns",
		Description: "Detect recurring categories, dense temporal clusters, and category shifts at era boundaries.",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, handlers.DetectPatterns)

	// 6. suggest_tags - tags from similar events
	server.AddTool(mcp.Tool{
		Name:        "suggest_tags",
		Description: "Suggest tags for an event from the tags of similar events. Never suggests a tag the event already has.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"event_id": eventID,
				"max_suggestions": map[string]interface{}{
					"type":        "number",
					"description": "Maximum number of tags (default: 5)",
					"default":     DefaultMaxSuggestions,
				},
			},
			Required: []string{"event_id"},
		},
	}, handlers.SuggestTags)

	// 7. suggest_tags_for_text - tags for a draft before the event exists
	server.AddTool(mcp.Tool{
		Name:        "suggest_tags_for_text",
		Description: "Suggest tags for draft text using the tags of similar stored events.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"text": map[string]interface{}{
					"type":        "string",
					"description": "Draft event text",
				},
				"max_suggestions": map[string]interface{}{
					"type":        "number",
					"description": "Maximum number of tags (default: 5)",
					"default":     DefaultMaxSuggestions,
				},
			},
			Required: []string{"text"},
		},
	}, handlers.SuggestTagsForText)

	return handlers
}
