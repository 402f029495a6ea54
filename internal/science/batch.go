package science

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/ironsheep/image-science/internal/store"
)

// DefaultBatchWorkers bounds batch concurrency when no worker count is
// configured.
const DefaultBatchWorkers = 4

// Batch runs the pipeline over many images with a bounded worker pool,
// recording progress in the job store. Frames are independent, so workers
// never share mutable state beyond the store and the pipeline itself.
type Batch struct {
	pipeline *Pipeline
	store    *store.Store
	workers  int
	logger   *slog.Logger
}

// NewBatch wires a batch runner. workers <= 0 selects the default.
func NewBatch(pipeline *Pipeline, st *store.Store, workers int, logger *slog.Logger) *Batch {
	if workers <= 0 {
		workers = DefaultBatchWorkers
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Batch{
		pipeline: pipeline,
		store:    st,
		workers:  workers,
		logger:   logger,
	}
}

// Run processes every path synchronously and returns the finished job id.
func (b *Batch) Run(ctx context.Context, paths []string) (int64, error) {
	jobID, err := b.store.CreateJob(ctx, paths)
	if err != nil {
		return 0, fmt.Errorf("failed to create job: %w", err)
	}
	return jobID, b.runJob(ctx, jobID)
}

// Start creates the job, kicks processing off in the background, and
// returns the job id immediately. Progress is visible through the job
// store while the run proceeds.
func (b *Batch) Start(ctx context.Context, paths []string) (int64, error) {
	jobID, err := b.store.CreateJob(ctx, paths)
	if err != nil {
		return 0, fmt.Errorf("failed to create job: %w", err)
	}
	go func() {
		if err := b.runJob(ctx, jobID); err != nil {
			b.logger.Error("batch job aborted", "job", jobID, "error", err)
		}
	}()
	return jobID, nil
}

func (b *Batch) runJob(ctx context.Context, jobID int64) error {
	if err := b.store.SetJobStatus(ctx, jobID, store.JobRunning); err != nil {
		return err
	}

	job, err := b.store.Job(ctx, jobID)
	if err != nil {
		return err
	}

	items := make(chan store.JobItem)
	var wg sync.WaitGroup
	for i := 0; i < b.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for item := range items {
				b.processItem(ctx, item)
			}
		}()
	}

	for _, item := range job.Items {
		items <- item
	}
	close(items)
	wg.Wait()

	if err := b.store.FinishJob(ctx, jobID); err != nil {
		return err
	}
	b.logger.Info("batch job finished", "job", jobID, "items", job.TotalItems)
	return nil
}

// processItem runs one image and records the outcome. Errors stop at the
// item boundary: a failed sibling never aborts the rest of the job.
func (b *Batch) processItem(ctx context.Context, item store.JobItem) {
	defer b.pipeline.Release(item.ImagePath)

	if err := b.store.StartItem(ctx, item.ID); err != nil {
		b.logger.Error("failed to start job item", "item", item.ID, "error", err)
	}

	if err := ctx.Err(); err != nil {
		b.failItem(ctx, item, err)
		return
	}

	if _, err := b.pipeline.Process(ctx, item.ImagePath); err != nil {
		b.failItem(ctx, item, err)
		return
	}

	if err := b.store.CompleteItem(ctx, item.ID, item.ImagePath); err != nil {
		b.logger.Error("failed to complete job item", "item", item.ID, "error", err)
	}
}

func (b *Batch) failItem(ctx context.Context, item store.JobItem, cause error) {
	b.logger.Warn("batch item failed", "item", item.ID, "path", item.ImagePath, "error", cause)
	if err := b.store.FailItem(ctx, item.ID, cause.Error()); err != nil {
		b.logger.Error("failed to record item failure", "item", item.ID, "error", err)
	}
}

// imageExtensions lists the decodable formats for directory scans.
var imageExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
}

// CollectImages lists the image files directly inside dir, sorted by name.
// Subdirectories are not descended into.
func CollectImages(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory: %w", err)
	}

	var paths []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if imageExtensions[strings.ToLower(filepath.Ext(entry.Name()))] {
			paths = append(paths, filepath.Join(dir, entry.Name()))
		}
	}
	sort.Strings(paths)

	if len(paths) == 0 {
		return nil, fmt.Errorf("no image files in %s", dir)
	}
	return paths, nil
}
