package server

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
)

// handleGetBrainlifts handles the get_brainlifts tool.
func (s *Server) handleGetBrainlifts(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	brainlifts, err := s.api.ListBrainlifts(ctx)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to get BrainLifts: %v", err)), nil
	}

	return toolResultJSON(brainlifts)
}

// handleGetBrainliftInfo handles the get_brainlift_info tool.
func (s *Server) handleGetBrainliftInfo(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	id, ok := args["brainlift_id"].(string)
	if !ok || id == "" {
		return mcp.NewToolResultError("brainlift_id parameter is required"), nil
	}

	data, err := s.api.GetBrainlift(ctx, id)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to get BrainLift info: %v", err)), nil
	}

	nodes, err := s.api.GetNodes(ctx, id)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to get BrainLift info: %v", err)), nil
	}

	return toolResultJSON(formatBrainliftInfo(data, nodes))
}

// handleGetBrainliftDoks handles the get_brainlift_doks tool.
func (s *Server) handleGetBrainliftDoks(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	id, ok := args["brainlift_id"].(string)
	if !ok || id == "" {
		return mcp.NewToolResultError("brainlift_id parameter is required"), nil
	}

	levels, err := parseDokLevels(args["dok_levels"])
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	data, err := s.api.GetBrainlift(ctx, id)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to get BrainLift DOK nodes: %v", err)), nil
	}

	nodes, err := s.api.GetNodes(ctx, id)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to get BrainLift DOK nodes: %v", err)), nil
	}

	return toolResultJSON(formatBrainliftDoks(data, nodes, levels))
}

// formatBrainliftInfo shapes one BrainLift record plus its nodes into the
// info payload: title, stats, and the node contents joined into a single
// leveled dump.
func formatBrainliftInfo(data map[string]interface{}, nodes []map[string]interface{}) map[string]interface{} {
	lines := make([]string, 0, len(nodes))
	for _, node := range nodes {
		level := "Not Found"
		if l, ok := nodeDokLevel(node); ok {
			level = fmt.Sprintf("%d", l)
		}
		content, _ := node["content"].(string)
		lines = append(lines, fmt.Sprintf("DoK Level %s: %s", level, content))
	}

	return map[string]interface{}{
		"brainlift_title": stringField(data, "title"),
		"stats": map[string]interface{}{
			"created_at":         stringField(data, "created_at"),
			"updated_at":         stringField(data, "updated_at"),
			"quality_score":      data["quality_score"],
			"quality_dimensions": mapField(data, "quality_dimensions"),
			"visibility":         stringField(data, "visibility"),
		},
		"brainlift_contents": strings.Join(lines, "\n"),
	}
}

// formatBrainliftDoks groups node contents by requested DOK level.
func formatBrainliftDoks(data map[string]interface{}, nodes []map[string]interface{}, levels []int) map[string]interface{} {
	result := map[string]interface{}{
		"brainlift_title": stringField(data, "title"),
	}

	for _, level := range levels {
		contents := []string{}
		for _, node := range nodes {
			if l, ok := nodeDokLevel(node); ok && l == level {
				content, _ := node["content"].(string)
				contents = append(contents, content)
			}
		}
		result[fmt.Sprintf("dok%d", level)] = contents
	}

	return result
}

// parseDokLevels validates the dok_levels argument: a non-empty array of
// numbers, each 1-4.
func parseDokLevels(raw interface{}) ([]int, error) {
	items, ok := raw.([]interface{})
	if !ok || len(items) == 0 {
		return nil, fmt.Errorf("dok_levels parameter is required")
	}

	levels := make([]int, 0, len(items))
	var invalid []interface{}
	for _, item := range items {
		number, ok := item.(float64)
		if !ok || number < 1 || number > 4 || number != float64(int(number)) {
			invalid = append(invalid, item)
			continue
		}
		levels = append(levels, int(number))
	}

	if len(invalid) > 0 {
		return nil, fmt.Errorf("Invalid DOK levels: %v. Must be 1, 2, 3, or 4", invalid)
	}

	return levels, nil
}

// nodeDokLevel extracts a node's DOK level, tolerating the numeric types
// JSON decoding can produce.
func nodeDokLevel(node map[string]interface{}) (int, bool) {
	switch v := node["dok_level"].(type) {
	case float64:
		return int(v), true
	case int:
		return v, true
	case json.Number:
		if f, err := v.Float64(); err == nil {
			return int(f), true
		}
	}
	return 0, false
}

func stringField(data map[string]interface{}, key string) string {
	s, _ := data[key].(string)
	return s
}

func mapField(data map[string]interface{}, key string) map[string]interface{} {
	if m, ok := data[key].(map[string]interface{}); ok {
		return m
	}
	return map[string]interface{}{}
}

// toolResultJSON renders a payload as an indented JSON tool result.
func toolResultJSON(payload interface{}) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to format response: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}
