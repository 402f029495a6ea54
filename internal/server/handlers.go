package server

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/ironsheep/image-science/internal/catalog"
	"github.com/ironsheep/image-science/internal/science"
)

// ToolCallParams represents the parameters for a tools/call MCP request.
type ToolCallParams struct {
	// Name is the tool to invoke (e.g., "science_analyze").
	Name string `json:"name"`

	// Arguments contains the tool-specific parameters as JSON.
	Arguments json.RawMessage `json:"arguments"`
}

// handleToolsCall processes a tools/call request and executes the specified tool.
//
// The response wraps the tool result in MCP's content format:
//
//	{
//	  "content": [{"type": "text", "text": "<JSON result>"}]
//	}
//
// Tool execution errors return a JSON-RPC error response with code -32000.
func (s *Server) handleToolsCall(ctx context.Context, req *MCPRequest) *MCPResponse {
	var params ToolCallParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return s.errorResponse(req.ID, -32602, "Invalid params", err.Error())
	}

	result, err := s.executeTool(ctx, params.Name, params.Arguments)
	if err != nil {
		return s.errorResponse(req.ID, -32000, "Tool execution failed", err.Error())
	}

	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"content": []map[string]interface{}{
				{
					"type": "text",
					"text": mustMarshalJSON(result),
				},
			},
		},
	}
}

// executeTool dispatches tool execution to the appropriate handler function.
func (s *Server) executeTool(ctx context.Context, name string, args json.RawMessage) (interface{}, error) {
	switch name {
	// Analysis
	case "science_analyze":
		return s.handleAnalyze(ctx, args)
	case "science_analyze_batch":
		return s.handleAnalyzeBatch(ctx, args)
	case "science_job_status":
		return s.handleJobStatus(ctx, args)

	// Introspection
	case "science_health":
		return s.handleHealth()
	case "science_index_catalog":
		return s.handleIndexCatalog()
	case "science_features":
		return s.handleFeatures(args)

	// Storage
	case "science_budget":
		return s.handleBudget(ctx, args)
	case "science_attributes":
		return s.handleAttributes(ctx, args)

	default:
		return nil, fmt.Errorf("unknown tool: %s", name)
	}
}

// errorResponse creates a JSON-RPC error response with the given details.
func (s *Server) errorResponse(id interface{}, code int, message, data string) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      id,
		Error: &MCPError{
			Code:    code,
			Message: message,
			Data:    data,
		},
	}
}

// mustMarshalJSON converts a value to pretty-printed JSON string.
// Panics are suppressed; on marshal failure, returns an empty string.
func mustMarshalJSON(v interface{}) string {
	b, _ := json.MarshalIndent(v, "", "  ")
	return string(b)
}

// === Analysis Handlers ===

type analyzeArgs struct {
	Path string `json:"path"`
}

func (s *Server) handleAnalyze(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a analyzeArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if a.Path == "" {
		return nil, fmt.Errorf("path is required")
	}

	// A long-lived server must not accumulate decoded pixel buffers.
	defer s.pipeline.Release(a.Path)

	f, err := s.pipeline.Process(ctx, a.Path)
	if err != nil {
		return nil, err
	}

	return map[string]interface{}{
		"image_id":    f.ID(),
		"width":       f.Width(),
		"height":      f.Height(),
		"attributes":  f.Attributes(),
		"annotations": f.Annotations(),
	}, nil
}

type analyzeBatchArgs struct {
	Dir string `json:"dir"`
}

func (s *Server) handleAnalyzeBatch(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a analyzeBatchArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if s.batch == nil {
		return nil, fmt.Errorf("batch runner not configured")
	}

	paths, err := science.CollectImages(a.Dir)
	if err != nil {
		return nil, err
	}

	jobID, err := s.batch.Start(ctx, paths)
	if err != nil {
		return nil, err
	}
	return map[string]interface{}{
		"job_id":      jobID,
		"total_items": len(paths),
	}, nil
}

type jobStatusArgs struct {
	JobID int64 `json:"job_id"`
}

func (s *Server) handleJobStatus(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a jobStatusArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	return s.store.Job(ctx, a.JobID)
}

// === Introspection Handlers ===

func (s *Server) handleHealth() (interface{}, error) {
	return map[string]interface{}{
		"analyzers":       s.pipeline.Contracts(),
		"engine":          s.engine,
		"depth_available": s.depth,
	}, nil
}

func (s *Server) handleIndexCatalog() (interface{}, error) {
	return map[string]interface{}{
		"indices":              catalog.Indices,
		"candidate_model_keys": catalog.CandidateModelKeys(),
	}, nil
}

type featuresArgs struct {
	Tier     string `json:"tier"`
	Category string `json:"category"`
	Status   string `json:"status"`
}

func (s *Server) handleFeatures(args json.RawMessage) (interface{}, error) {
	var a featuresArgs
	if len(args) > 0 {
		if err := json.Unmarshal(args, &a); err != nil {
			return nil, err
		}
	}

	features, err := catalog.ListFeatures(catalog.Filter{
		Tier:     a.Tier,
		Category: a.Category,
		Status:   a.Status,
	})
	if err != nil {
		return nil, err
	}
	return map[string]interface{}{
		"features": features,
		"count":    len(features),
	}, nil
}

// === Storage Handlers ===

type budgetArgs struct {
	Recent int `json:"recent"`
}

func (s *Server) handleBudget(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a budgetArgs
	if len(args) > 0 {
		if err := json.Unmarshal(args, &a); err != nil {
			return nil, err
		}
	}
	if a.Recent == 0 {
		a.Recent = 10
	}

	total, err := s.store.TotalSpent(ctx)
	if err != nil {
		return nil, err
	}
	entries, err := s.store.ListUsage(ctx, a.Recent)
	if err != nil {
		return nil, err
	}
	return map[string]interface{}{
		"total_spent_usd": total,
		"recent":          entries,
	}, nil
}

type attributesArgs struct {
	ImageID string `json:"image_id"`
}

func (s *Server) handleAttributes(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a attributesArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}

	rows, err := s.store.ListAttributes(ctx, a.ImageID)
	if err != nil {
		return nil, err
	}
	return map[string]interface{}{
		"image_id":   a.ImageID,
		"attributes": rows,
	}, nil
}
