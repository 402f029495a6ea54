package server

import (
	"context"
	"encoding/json"
	"image"
	"testing"

	"github.com/ironsheep/image-science/internal/frame"
	"github.com/ironsheep/image-science/internal/science"
	"github.com/ironsheep/image-science/internal/store"
)

// testAnalyzer writes one fixed attribute so analyze results and composite
// rollups are predictable.
type testAnalyzer struct{}

func (testAnalyzer) Name() string       { return "test-metric" }
func (testAnalyzer) Tier() science.Tier { return science.TierPerceptual }
func (testAnalyzer) Requires() []string { return []string{"pixels"} }
func (testAnalyzer) Provides() []string { return []string{"fractal.D"} }
func (testAnalyzer) Analyze(ctx context.Context, f *frame.Frame) error {
	f.AddAttribute("fractal.D", 0.5, 1.0)
	return nil
}

// testSource serves in-memory buffers by id and records releases.
type testSource struct {
	images  map[string]*image.NRGBA
	evicted []string
}

func (s *testSource) Resolve(id string) (*image.NRGBA, error) {
	img, ok := s.images[id]
	if !ok {
		return nil, &imageNotFoundError{id}
	}
	return img, nil
}

func (s *testSource) Evict(id string) {
	s.evicted = append(s.evicted, id)
}

type imageNotFoundError struct{ id string }

func (e *imageNotFoundError) Error() string { return "no such image: " + e.id }

// newTestServer builds a server over an in-memory store and the given
// image ids.
func newTestServer(t *testing.T, imageIDs ...string) (*Server, *store.Store) {
	t.Helper()

	st := store.OpenMemory(t)

	src := &testSource{images: make(map[string]*image.NRGBA)}
	for _, id := range imageIDs {
		src.images[id] = image.NewNRGBA(image.Rect(0, 0, 8, 8))
	}

	registry := science.NewRegistry()
	if err := registry.Register(testAnalyzer{}); err != nil {
		t.Fatalf("register: %v", err)
	}

	pipeline, err := science.NewPipeline(science.PipelineConfig{
		Registry:  registry,
		Source:    src,
		Persister: st,
	})
	if err != nil {
		t.Fatalf("NewPipeline: %v", err)
	}

	srv, err := New(Config{
		Pipeline: pipeline,
		Batch:    science.NewBatch(pipeline, st, 1, nil),
		Store:    st,
		Engine:   EngineInfo{Name: "stub", Stub: true},
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return srv, st
}

func TestNewRequiresPipelineAndStore(t *testing.T) {
	if _, err := New(Config{}); err == nil {
		t.Error("server without pipeline accepted")
	}
}

func TestHandleInitialize(t *testing.T) {
	srv, _ := newTestServer(t)
	resp := srv.handleRequest(context.Background(), &MCPRequest{
		JSONRPC: "2.0", ID: 1, Method: "initialize",
	})

	if resp.Error != nil {
		t.Fatalf("initialize errored: %+v", resp.Error)
	}
	result, ok := resp.Result.(map[string]interface{})
	if !ok {
		t.Fatalf("result type %T", resp.Result)
	}
	info, ok := result["serverInfo"].(map[string]interface{})
	if !ok {
		t.Fatal("serverInfo missing")
	}
	if info["name"] != "image-science" {
		t.Errorf("server name = %v", info["name"])
	}
}

func TestHandlePing(t *testing.T) {
	srv, _ := newTestServer(t)
	resp := srv.handleRequest(context.Background(), &MCPRequest{
		JSONRPC: "2.0", ID: 2, Method: "ping",
	})
	if resp.Error != nil {
		t.Fatalf("ping errored: %+v", resp.Error)
	}
}

func TestHandleUnknownMethod(t *testing.T) {
	srv, _ := newTestServer(t)
	resp := srv.handleRequest(context.Background(), &MCPRequest{
		JSONRPC: "2.0", ID: 3, Method: "resources/list",
	})
	if resp.Error == nil {
		t.Fatal("unknown method accepted")
	}
	if resp.Error.Code != -32601 {
		t.Errorf("code = %d, want -32601", resp.Error.Code)
	}
}

func TestHandleNotificationInitialized(t *testing.T) {
	srv, _ := newTestServer(t)
	resp := srv.handleRequest(context.Background(), &MCPRequest{
		JSONRPC: "2.0", Method: "notifications/initialized",
	})
	if resp != nil {
		t.Error("notification produced a response")
	}
}

func TestMCPRequestUnmarshal(t *testing.T) {
	tests := []struct {
		name       string
		json       string
		wantID     interface{}
		wantMethod string
	}{
		{
			"string id",
			`{"jsonrpc":"2.0","id":"test-1","method":"tools/list"}`,
			"test-1",
			"tools/list",
		},
		{
			"number id",
			`{"jsonrpc":"2.0","id":42,"method":"ping"}`,
			float64(42), // JSON numbers decode as float64
			"ping",
		},
		{
			"null id",
			`{"jsonrpc":"2.0","id":null,"method":"initialize"}`,
			nil,
			"initialize",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var req MCPRequest
			if err := json.Unmarshal([]byte(tt.json), &req); err != nil {
				t.Fatalf("Failed to unmarshal: %v", err)
			}

			if req.ID != tt.wantID {
				t.Errorf("ID: got %v (%T), want %v (%T)", req.ID, req.ID, tt.wantID, tt.wantID)
			}
			if req.Method != tt.wantMethod {
				t.Errorf("Method: got %s, want %s", req.Method, tt.wantMethod)
			}
		})
	}
}
