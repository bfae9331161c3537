// ABOUTME: MCP tool handler implementations for the lifeline server
// ABOUTME: Each handler validates arguments, calls the engine, and returns JSON text
package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/harper/lifeline/internal/core"
	"github.com/mark3labs/mcp-go/mcp"
)

// Handlers contains the handler functions for all MCP tools
type Handlers struct {
	engine *core.Engine
}

// NewHandlers creates handlers backed by engine
func NewHandlers(engine *core.Engine) *Handlers {
	return &Handlers{engine: engine}
}

// FindSimilar handles the find_similar tool
func (h *Handlers) FindSimilar(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	eventID, err := request.RequireString("event_id")
	if err != nil {
		return mcp.NewToolResultError("event_id argument is required and must be a string"), nil
	}
	threshold := request.GetFloat("threshold", h.engine.Options().SimilarityThreshold)
	limit := request.GetInt("limit", DefaultSimilarLimit)

	results, err := h.engine.FindSimilar(ctx, eventID, threshold, limit)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("find similar failed: %v", err)), nil
	}

	return jsonResult(map[string]interface{}{
		"event_id": eventID,
		"similar":  results,
	})
}

// GetCrossReferences handles the get_cross_references tool
func (h *Handlers) GetCrossReferences(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	eventID, err := request.RequireString("event_id")
	if err != nil {
		return mcp.NewToolResultError("event_id argument is required and must be a string"), nil
	}

	refs, err := h.engine.GetCrossReferences(ctx, eventID)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to get cross references: %v", err)), nil
	}

	return jsonResult(map[string]interface{}{
		"event_id":         eventID,
		"cross_references": refs,
	})
}

// AnalyzeEvent handles the analyze_event tool
func (h *Handlers) AnalyzeEvent(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	eventID, err := request.RequireString("event_id")
	if err != nil {
		return mcp.NewToolResultError("event_id argument is required and must be a string"), nil
	}
	threshold := request.GetFloat("threshold", h.engine.Options().SimilarityThreshold)

	result, err := h.engine.AnalyzeEvent(ctx, eventID, threshold)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("analysis failed: %v", err)), nil
	}

	return jsonResult(result)
}

// AnalyzeTimeline handles the analyze_timeline tool
func (h *Handlers) AnalyzeTimeline(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	threshold := request.GetFloat("threshold", h.engine.Options().SimilarityThreshold)
	resumeAfter := request.GetString("resume_after", "")

	report, err := h.engine.AnalyzeFullTimeline(ctx, threshold, core.TimelineOptions{ResumeAfter: resumeAfter})
	if err != nil && report == nil {
		return mcp.NewToolResultError(fmt.Sprintf("timeline analysis failed: %v", err)), nil
	}
	if err != nil {
		log.Printf("[MCP] timeline analysis interrupted: %v", err)
	}

	return jsonResult(map[string]interface{}{
		"total_events":     report.TotalEvents,
		"processed":        report.Processed,
		"total_references": report.TotalReferences,
		"errors":           report.Errors,
		"resume_after":     report.ResumeAfter,
		"incomplete":       report.Incomplete,
		"duration":         report.Duration.Round(time.Millisecond).String(),
	})
}

// DetectPatterns handles the detect_patterns tool
func (h *Handlers) DetectPatterns(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	report, err := h.engine.DetectPatterns(ctx)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("pattern detection failed: %v", err)), nil
	}
	return jsonResult(report)
}

// SuggestTags handles the suggest_tags tool
func (h *Handlers) SuggestTags(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	eventID, err := request.RequireString("event_id")
	if err != nil {
		return mcp.NewToolResultError("event_id argument is required and must be a string"), nil
	}
	maxSuggestions := request.GetInt("max_suggestions", DefaultMaxSuggestions)

	suggestions, err := h.engine.SuggestTags(ctx, eventID, maxSuggestions)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("tag suggestion failed: %v", err)), nil
	}

	return jsonResult(map[string]interface{}{
		"event_id":    eventID,
		"suggestions": suggestions,
	})
}

// SuggestTagsForText handles the suggest_tags_for_text tool
func (h *Handlers) SuggestTagsForText(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	text, err := request.RequireString("text")
	if err != nil {
		return mcp.NewToolResultError("text argument is required and must be a string"), nil
	}
	maxSuggestions := request.GetInt("max_suggestions", DefaultMaxSuggestions)

	suggestions, err := h.engine.SuggestTagsForText(ctx, text, maxSuggestions)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("tag suggestion failed: %v", err)), nil
	}

	return jsonResult(map[string]interface{}{
		"suggestions": suggestions,
	})
}

func jsonResult(v interface{}) (*mcp.CallToolResult, error) {
	responseJSON, err := json.Marshal(v)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to marshal response: %v", err)), nil
	}
	return mcp.NewToolResultText(string(responseJSON)), nil
}
