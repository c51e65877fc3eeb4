package brainlift

// Canned payloads served in demo/offline mode. They mirror the field shapes
// of the live API so the tool façade can format them identically.

func demoBrainlifts() []map[string]interface{} {
	return []map[string]interface{}{
		{
			"id":            "demo-1",
			"title":         "Distributed Consensus",
			"quality_score": 72,
			"created_at":    "2025-01-10T09:15:00Z",
			"updated_at":    "2025-03-02T18:40:00Z",
		},
		{
			"id":            "demo-2",
			"title":         "Pricing Psychology",
			"quality_score": 41,
			"created_at":    "2025-02-21T11:05:00Z",
			"updated_at":    "2025-02-25T08:12:00Z",
		},
	}
}

func demoBrainlift(id string) map[string]interface{} {
	return map[string]interface{}{
		"id":            id,
		"title":         "Distributed Consensus",
		"quality_score": 72,
		"created_at":    "2025-01-10T09:15:00Z",
		"updated_at":    "2025-03-02T18:40:00Z",
		"visibility":    "private",
		"quality_dimensions": map[string]interface{}{
			"gaps":            3,
			"spiky_pov":       4,
			"consistent":      4,
			"topic_focus":     5,
			"dok_coverage":    3,
			"digest_quality":  4,
			"link_discipline": 2,
		},
	}
}

func demoNodes() []map[string]interface{} {
	return []map[string]interface{}{
		{
			"id":          "node-1",
			"parent_id":   nil,
			"position":    0,
			"dok_level":   1,
			"content":     "Raft elects a single leader per term.",
			"status":      "active",
			"row_version": 3,
		},
		{
			"id":          "node-2",
			"parent_id":   "node-1",
			"position":    1,
			"dok_level":   2,
			"content":     "Leader leases trade availability for read latency.",
			"status":      "active",
			"row_version": 1,
		},
		{
			"id":          "node-3",
			"parent_id":   "node-1",
			"position":    2,
			"dok_level":   4,
			"content":     "Most teams should not run their own consensus layer.",
			"status":      "active",
			"row_version": 2,
		},
	}
}
