package server

// Tool represents an MCP tool definition
type Tool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
}

// GetToolDefinitions returns all available tools
func GetToolDefinitions() []Tool {
	return []Tool{
		// Analysis
		{
			Name:        "science_analyze",
			Description: "Run the full science pipeline on one image: every enabled analyzer plus the composite indices. Returns the attribute map, per-key annotations, and any per-analyzer failure flags. Results are persisted.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": map[string]interface{}{
						"type":        "string",
						"description": "Absolute path to the image file",
					},
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "science_analyze_batch",
			Description: "Launch a background batch job over every image file directly inside a directory. Returns the job id immediately; poll science_job_status for progress.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"dir": map[string]interface{}{
						"type":        "string",
						"description": "Absolute path to a directory of images",
					},
				},
				"required": []string{"dir"},
			},
		},
		{
			Name:        "science_job_status",
			Description: "Get a batch job's status, progress counters, and per-item errors.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"job_id": map[string]interface{}{
						"type":        "integer",
						"description": "Job id returned by science_analyze_batch",
					},
				},
				"required": []string{"job_id"},
			},
		},

		// Introspection
		{
			Name:        "science_health",
			Description: "List every registered analyzer's contract (tier, requires, provides, enabled) plus engine and depth-estimator availability.",
			InputSchema: map[string]interface{}{
				"type":       "object",
				"properties": map[string]interface{}{},
			},
		},
		{
			Name:        "science_index_catalog",
			Description: "Return the composite index catalog: labels, component attribute keys, bin fields and vocabulary, and the candidate model-input keys.",
			InputSchema: map[string]interface{}{
				"type":       "object",
				"properties": map[string]interface{}{},
			},
		},
		{
			Name:        "science_features",
			Description: "List the canonical feature registry, optionally filtered by tier, category, or status.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"tier": map[string]interface{}{
						"type":        "string",
						"description": "Filter by tier (L0, L1, L2)",
					},
					"category": map[string]interface{}{
						"type":        "string",
						"description": "Filter by category (color, texture, style, ...)",
					},
					"status": map[string]interface{}{
						"type":        "string",
						"description": "Filter by status (active, deprecated)",
					},
				},
			},
		},

		// Storage
		{
			Name:        "science_budget",
			Description: "Total estimated spend on external engine calls, with the most recent ledger entries.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"recent": map[string]interface{}{
						"type":        "integer",
						"description": "Number of recent entries to include (default 10)",
						"default":     10,
					},
				},
			},
		},
		{
			Name:        "science_attributes",
			Description: "Stored attribute rows for a previously analyzed image, including provenance and confidence.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"image_id": map[string]interface{}{
						"type":        "string",
						"description": "Image identifier (the path it was analyzed under)",
					},
				},
				"required": []string{"image_id"},
			},
		},
	}
}

// handleToolsList returns the list of available tools
func (s *Server) handleToolsList(req *MCPRequest) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"tools": GetToolDefinitions(),
		},
	}
}
