package store

import (
	"context"
	"errors"
	"testing"

	"github.com/ironsheep/image-science/internal/frame"
)

func TestSaveAndListAttributes(t *testing.T) {
	s := OpenMemory(t)
	ctx := context.Background()

	attrs := map[string]float64{
		"color.warmth_ratio":         0.7,
		"complexity.shannon_entropy": 0.42,
		"cognitive.coherence":        0.9,
	}
	anns := map[string]frame.Annotation{
		"color.warmth_ratio":         {Confidence: 1.0},
		"complexity.shannon_entropy": {Confidence: 1.0},
		"cognitive.coherence":        {Confidence: 0.9, Source: "ollama"},
		"science_error.fractal":      {Note: "empty edge map"},
	}

	if err := s.SaveAttributes(ctx, "img-1", attrs, anns); err != nil {
		t.Fatalf("SaveAttributes: %v", err)
	}

	rows, err := s.ListAttributes(ctx, "img-1")
	if err != nil {
		t.Fatalf("ListAttributes: %v", err)
	}
	if len(rows) != 4 {
		t.Fatalf("got %d rows, want 4", len(rows))
	}

	byKey := make(map[string]AttributeRow, len(rows))
	for _, r := range rows {
		byKey[r.Key] = r
	}

	warm := byKey["color.warmth_ratio"]
	if !warm.HasValue || warm.Value != 0.7 {
		t.Errorf("warmth row = %+v, want value 0.7", warm)
	}
	if warm.Source != "image-science/v1" {
		t.Errorf("deterministic source = %q, want %q", warm.Source, "image-science/v1")
	}

	cog := byKey["cognitive.coherence"]
	if cog.Source != "image-science/v1:live" {
		t.Errorf("engine source = %q, want %q", cog.Source, "image-science/v1:live")
	}
	if cog.Confidence != 0.9 {
		t.Errorf("engine confidence = %v, want 0.9", cog.Confidence)
	}

	flag := byKey["science_error.fractal"]
	if flag.HasValue {
		t.Error("failure flag stored with a value")
	}
	if flag.Note != "empty edge map" {
		t.Errorf("failure note = %q", flag.Note)
	}
}

func TestSaveAttributesReplacesPreviousRun(t *testing.T) {
	s := OpenMemory(t)
	ctx := context.Background()

	first := map[string]float64{"a.one": 0.1, "a.two": 0.2}
	firstAnns := map[string]frame.Annotation{
		"a.one": {Confidence: 1.0},
		"a.two": {Confidence: 1.0},
	}
	if err := s.SaveAttributes(ctx, "img-1", first, firstAnns); err != nil {
		t.Fatalf("first save: %v", err)
	}

	second := map[string]float64{"a.one": 0.9}
	secondAnns := map[string]frame.Annotation{"a.one": {Confidence: 1.0}}
	if err := s.SaveAttributes(ctx, "img-1", second, secondAnns); err != nil {
		t.Fatalf("second save: %v", err)
	}

	rows, err := s.ListAttributes(ctx, "img-1")
	if err != nil {
		t.Fatalf("ListAttributes: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("got %d rows after re-analysis, want 1", len(rows))
	}
	if rows[0].Key != "a.one" || rows[0].Value != 0.9 {
		t.Errorf("surviving row = %+v", rows[0])
	}
}

func TestListAttributesUnknownImage(t *testing.T) {
	s := OpenMemory(t)

	_, err := s.ListAttributes(context.Background(), "nope")
	if !errors.Is(err, ErrUnknownImage) {
		t.Fatalf("err = %v, want ErrUnknownImage", err)
	}
}

func TestLedger(t *testing.T) {
	s := OpenMemory(t)
	ctx := context.Background()

	total, err := s.TotalSpent(ctx)
	if err != nil {
		t.Fatalf("TotalSpent on empty ledger: %v", err)
	}
	if total != 0 {
		t.Errorf("empty ledger total = %v, want 0", total)
	}

	if err := s.LogUsage(ctx, "vlm_analyze_image", "ollama", "llava:13b", 0.002,
		map[string]any{"image_id": "img-1"}); err != nil {
		t.Fatalf("LogUsage: %v", err)
	}
	if err := s.LogUsage(ctx, "vlm_analyze_image", "ollama", "llava:13b", 0.003, nil); err != nil {
		t.Fatalf("LogUsage: %v", err)
	}

	total, err = s.TotalSpent(ctx)
	if err != nil {
		t.Fatalf("TotalSpent: %v", err)
	}
	if total < 0.0049 || total > 0.0051 {
		t.Errorf("total = %v, want 0.005", total)
	}

	entries, err := s.ListUsage(ctx, 10)
	if err != nil {
		t.Fatalf("ListUsage: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("got %d entries, want 2", len(entries))
	}
	// Newest first.
	if entries[0].CostUSD != 0.003 {
		t.Errorf("first entry cost = %v, want 0.003", entries[0].CostUSD)
	}
	if entries[1].Meta["image_id"] != "img-1" {
		t.Errorf("metadata not round-tripped: %+v", entries[1].Meta)
	}
}

func TestListUsageCorruptMetadata(t *testing.T) {
	s := OpenMemory(t)
	ctx := context.Background()

	_, err := s.DB.ExecContext(ctx, `
		INSERT INTO tool_usage (tool_name, provider, model_name, cost_usd, meta, created_at)
		VALUES ('vlm_analyze_image', 'ollama', 'llava:13b', 0.001, '{broken', 0)`)
	if err != nil {
		t.Fatalf("insert: %v", err)
	}

	if _, err := s.ListUsage(ctx, 10); err == nil {
		t.Fatal("corrupt metadata row listed without error")
	}
}

func TestJobLifecycle(t *testing.T) {
	s := OpenMemory(t)
	ctx := context.Background()

	jobID, err := s.CreateJob(ctx, []string{"a.jpg", "b.jpg", "c.jpg"})
	if err != nil {
		t.Fatalf("CreateJob: %v", err)
	}

	job, err := s.Job(ctx, jobID)
	if err != nil {
		t.Fatalf("Job: %v", err)
	}
	if job.Status != JobPending || job.TotalItems != 3 {
		t.Fatalf("fresh job = %+v", job)
	}
	if len(job.Items) != 3 {
		t.Fatalf("got %d items, want 3", len(job.Items))
	}

	if err := s.SetJobStatus(ctx, jobID, JobRunning); err != nil {
		t.Fatalf("SetJobStatus: %v", err)
	}

	// Two complete, one fails.
	for i, item := range job.Items {
		if err := s.StartItem(ctx, item.ID); err != nil {
			t.Fatalf("StartItem: %v", err)
		}
		if i == 1 {
			if err := s.FailItem(ctx, item.ID, "decode failed"); err != nil {
				t.Fatalf("FailItem: %v", err)
			}
			continue
		}
		if err := s.CompleteItem(ctx, item.ID, item.ImagePath); err != nil {
			t.Fatalf("CompleteItem: %v", err)
		}
	}
	if err := s.FinishJob(ctx, jobID); err != nil {
		t.Fatalf("FinishJob: %v", err)
	}

	job, err = s.Job(ctx, jobID)
	if err != nil {
		t.Fatalf("Job after finish: %v", err)
	}
	if job.Status != JobCompleted {
		t.Errorf("status = %s, want completed", job.Status)
	}
	if job.CompletedItems != 2 || job.FailedItems != 1 {
		t.Errorf("counters = %d/%d, want 2/1", job.CompletedItems, job.FailedItems)
	}
	if job.ErrorSummary == "" {
		t.Error("error summary empty with a failed item")
	}

	var failed *JobItem
	for i := range job.Items {
		if job.Items[i].Status == JobFailed {
			failed = &job.Items[i]
		}
	}
	if failed == nil {
		t.Fatal("no failed item recorded")
	}
	if failed.ErrorMessage != "decode failed" {
		t.Errorf("failed item message = %q", failed.ErrorMessage)
	}
}

func TestJobAllItemsFailed(t *testing.T) {
	s := OpenMemory(t)
	ctx := context.Background()

	jobID, err := s.CreateJob(ctx, []string{"a.jpg"})
	if err != nil {
		t.Fatalf("CreateJob: %v", err)
	}
	job, _ := s.Job(ctx, jobID)
	if err := s.FailItem(ctx, job.Items[0].ID, "boom"); err != nil {
		t.Fatalf("FailItem: %v", err)
	}
	if err := s.FinishJob(ctx, jobID); err != nil {
		t.Fatalf("FinishJob: %v", err)
	}

	job, _ = s.Job(ctx, jobID)
	if job.Status != JobFailed {
		t.Errorf("status = %s, want failed", job.Status)
	}
}

func TestUnknownJob(t *testing.T) {
	s := OpenMemory(t)

	if _, err := s.Job(context.Background(), 999); !errors.Is(err, ErrUnknownJob) {
		t.Errorf("Job err = %v, want ErrUnknownJob", err)
	}
	if err := s.SetJobStatus(context.Background(), 999, JobRunning); !errors.Is(err, ErrUnknownJob) {
		t.Errorf("SetJobStatus err = %v, want ErrUnknownJob", err)
	}
}
