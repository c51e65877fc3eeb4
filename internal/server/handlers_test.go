package server

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeAPI is a scriptable BrainliftAPI.
type fakeAPI struct {
	brainlifts []map[string]interface{}
	record     map[string]interface{}
	nodes      []map[string]interface{}

	listErr   error
	recordErr error
	nodesErr  error

	lastID string
}

func (f *fakeAPI) ListBrainlifts(ctx context.Context) ([]map[string]interface{}, error) {
	return f.brainlifts, f.listErr
}

func (f *fakeAPI) GetBrainlift(ctx context.Context, id string) (map[string]interface{}, error) {
	f.lastID = id
	return f.record, f.recordErr
}

func (f *fakeAPI) GetNodes(ctx context.Context, id string) ([]map[string]interface{}, error) {
	return f.nodes, f.nodesErr
}

func toolRequest(args map[string]interface{}) mcp.CallToolRequest {
	req := mcp.CallToolRequest{}
	req.Params.Arguments = args
	return req
}

// resultText extracts the text payload of a tool result.
func resultText(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	require.NotNil(t, result)
	require.NotEmpty(t, result.Content)
	text, ok := mcp.AsTextContent(result.Content[0])
	require.True(t, ok, "Expected text content")
	return text.Text
}

func resultJSON(t *testing.T, result *mcp.CallToolResult) map[string]interface{} {
	t.Helper()
	var payload map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(resultText(t, result)), &payload))
	return payload
}

func sampleRecord() map[string]interface{} {
	return map[string]interface{}{
		"id":            "b1",
		"title":         "Distributed Consensus",
		"quality_score": float64(72),
		"created_at":    "2025-01-10T09:15:00Z",
		"updated_at":    "2025-03-02T18:40:00Z",
		"visibility":    "private",
		"quality_dimensions": map[string]interface{}{
			"gaps":      float64(3),
			"spiky_pov": float64(4),
		},
	}
}

func sampleNodes() []map[string]interface{} {
	return []map[string]interface{}{
		{"id": "n1", "dok_level": float64(1), "content": "A fact."},
		{"id": "n2", "dok_level": float64(2), "content": "A connection."},
		{"id": "n3", "dok_level": float64(4), "content": "An opinion."},
		{"id": "n4", "content": "A node without a level."},
	}
}

func TestHandleGetBrainlifts(t *testing.T) {
	api := &fakeAPI{
		brainlifts: []map[string]interface{}{
			{"id": "b1", "title": "First", "quality_score": float64(72)},
			{"id": "b2", "title": "Second", "quality_score": float64(41)},
		},
	}
	s := New(api, "test")

	result, err := s.handleGetBrainlifts(context.Background(), toolRequest(nil))
	require.NoError(t, err)
	assert.False(t, result.IsError)

	var payload []map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(resultText(t, result)), &payload))
	require.Len(t, payload, 2)
	assert.Equal(t, "First", payload[0]["title"])
}

func TestHandleGetBrainlifts_Error(t *testing.T) {
	api := &fakeAPI{listErr: errors.New("connection refused")}
	s := New(api, "test")

	result, err := s.handleGetBrainlifts(context.Background(), toolRequest(nil))
	require.NoError(t, err)
	assert.True(t, result.IsError)
	assert.Contains(t, resultText(t, result), "Failed to get BrainLifts: connection refused")
}

func TestHandleGetBrainliftInfo(t *testing.T) {
	api := &fakeAPI{record: sampleRecord(), nodes: sampleNodes()}
	s := New(api, "test")

	result, err := s.handleGetBrainliftInfo(context.Background(), toolRequest(map[string]interface{}{
		"brainlift_id": "b1",
	}))
	require.NoError(t, err)
	assert.False(t, result.IsError)
	assert.Equal(t, "b1", api.lastID)

	payload := resultJSON(t, result)
	assert.Equal(t, "Distributed Consensus", payload["brainlift_title"])

	stats, ok := payload["stats"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "2025-01-10T09:15:00Z", stats["created_at"])
	assert.Equal(t, float64(72), stats["quality_score"])
	assert.Equal(t, "private", stats["visibility"])

	dimensions, ok := stats["quality_dimensions"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, float64(3), dimensions["gaps"])

	contents, ok := payload["brainlift_contents"].(string)
	require.True(t, ok)
	assert.Contains(t, contents, "DoK Level 1: A fact.")
	assert.Contains(t, contents, "DoK Level 2: A connection.")
	assert.Contains(t, contents, "DoK Level 4: An opinion.")
	assert.Contains(t, contents, "DoK Level Not Found: A node without a level.")
}

func TestHandleGetBrainliftInfo_MissingID(t *testing.T) {
	s := New(&fakeAPI{}, "test")

	result, err := s.handleGetBrainliftInfo(context.Background(), toolRequest(map[string]interface{}{}))
	require.NoError(t, err)
	assert.True(t, result.IsError)
	assert.Contains(t, resultText(t, result), "brainlift_id parameter is required")
}

func TestHandleGetBrainliftInfo_Error(t *testing.T) {
	api := &fakeAPI{recordErr: errors.New("not found")}
	s := New(api, "test")

	result, err := s.handleGetBrainliftInfo(context.Background(), toolRequest(map[string]interface{}{
		"brainlift_id": "missing",
	}))
	require.NoError(t, err)
	assert.True(t, result.IsError)
	assert.Contains(t, resultText(t, result), "Failed to get BrainLift info: not found")
}

func TestHandleGetBrainliftDoks(t *testing.T) {
	api := &fakeAPI{record: sampleRecord(), nodes: sampleNodes()}
	s := New(api, "test")

	result, err := s.handleGetBrainliftDoks(context.Background(), toolRequest(map[string]interface{}{
		"brainlift_id": "b1",
		"dok_levels":   []interface{}{float64(1), float64(2)},
	}))
	require.NoError(t, err)
	assert.False(t, result.IsError)

	payload := resultJSON(t, result)
	assert.Equal(t, "Distributed Consensus", payload["brainlift_title"])

	dok1, ok := payload["dok1"].([]interface{})
	require.True(t, ok)
	require.Len(t, dok1, 1)
	assert.Equal(t, "A fact.", dok1[0])

	dok2, ok := payload["dok2"].([]interface{})
	require.True(t, ok)
	require.Len(t, dok2, 1)
	assert.Equal(t, "A connection.", dok2[0])

	// Only the requested levels appear.
	assert.NotContains(t, payload, "dok4")
}

func TestHandleGetBrainliftDoks_EmptyLevel(t *testing.T) {
	api := &fakeAPI{record: sampleRecord(), nodes: sampleNodes()}
	s := New(api, "test")

	result, err := s.handleGetBrainliftDoks(context.Background(), toolRequest(map[string]interface{}{
		"brainlift_id": "b1",
		"dok_levels":   []interface{}{float64(3)},
	}))
	require.NoError(t, err)

	payload := resultJSON(t, result)
	dok3, ok := payload["dok3"].([]interface{})
	require.True(t, ok)
	assert.Empty(t, dok3)
}

func TestHandleGetBrainliftDoks_InvalidLevels(t *testing.T) {
	tests := []struct {
		name string
		args map[string]interface{}
		want string
	}{
		{
			name: "missing levels",
			args: map[string]interface{}{"brainlift_id": "b1"},
			want: "dok_levels parameter is required",
		},
		{
			name: "empty levels",
			args: map[string]interface{}{"brainlift_id": "b1", "dok_levels": []interface{}{}},
			want: "dok_levels parameter is required",
		},
		{
			name: "out of range",
			args: map[string]interface{}{"brainlift_id": "b1", "dok_levels": []interface{}{float64(5)}},
			want: "Invalid DOK levels: [5]. Must be 1, 2, 3, or 4",
		},
		{
			name: "not a number",
			args: map[string]interface{}{"brainlift_id": "b1", "dok_levels": []interface{}{"two"}},
			want: "Invalid DOK levels: [two]. Must be 1, 2, 3, or 4",
		},
		{
			name: "fractional",
			args: map[string]interface{}{"brainlift_id": "b1", "dok_levels": []interface{}{float64(2.5)}},
			want: "Invalid DOK levels: [2.5]. Must be 1, 2, 3, or 4",
		},
	}

	s := New(&fakeAPI{record: sampleRecord(), nodes: sampleNodes()}, "test")

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := s.handleGetBrainliftDoks(context.Background(), toolRequest(tt.args))
			require.NoError(t, err)
			assert.True(t, result.IsError)
			assert.Contains(t, resultText(t, result), tt.want)
		})
	}
}

func TestHandleGetBrainliftDoks_Error(t *testing.T) {
	api := &fakeAPI{record: sampleRecord(), nodesErr: errors.New("timed out")}
	s := New(api, "test")

	result, err := s.handleGetBrainliftDoks(context.Background(), toolRequest(map[string]interface{}{
		"brainlift_id": "b1",
		"dok_levels":   []interface{}{float64(1)},
	}))
	require.NoError(t, err)
	assert.True(t, result.IsError)
	assert.Contains(t, resultText(t, result), "Failed to get BrainLift DOK nodes: timed out")
}
