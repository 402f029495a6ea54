package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
)

// Job status vocabulary, shared by jobs and their items.
const (
	JobPending   = "pending"
	JobRunning   = "running"
	JobCompleted = "completed"
	JobFailed    = "failed"
)

// ErrUnknownJob is returned when a job identifier does not exist.
var ErrUnknownJob = errors.New("unknown job")

// Job is one batch analysis run: aggregate counters plus a short error
// summary. Per-image detail lives in Items.
type Job struct {
	ID             int64     `json:"id"`
	Status         string    `json:"status"`
	TotalItems     int       `json:"total_items"`
	CompletedItems int       `json:"completed_items"`
	FailedItems    int       `json:"failed_items"`
	ErrorSummary   string    `json:"error_summary,omitempty"`
	CreatedAt      int64     `json:"created_at"`
	UpdatedAt      int64     `json:"updated_at"`
	Items          []JobItem `json:"items,omitempty"`
}

// JobItem tracks one image within a batch job.
type JobItem struct {
	ID           int64  `json:"id"`
	JobID        int64  `json:"job_id"`
	ImagePath    string `json:"image_path"`
	ImageID      string `json:"image_id,omitempty"`
	Status       string `json:"status"`
	ErrorMessage string `json:"error_message,omitempty"`
}

// CreateJob inserts a pending job with one pending item per image path and
// returns the job id.
func (s *Store) CreateJob(ctx context.Context, paths []string) (int64, error) {
	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	now := time.Now().UnixMilli()
	res, err := tx.ExecContext(ctx, `
		INSERT INTO batch_jobs (status, total_items, created_at, updated_at)
		VALUES (?,?,?,?)`,
		JobPending, len(paths), now, now,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to insert job: %w", err)
	}
	jobID, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to read job id: %w", err)
	}

	for _, path := range paths {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO batch_job_items (job_id, image_path, status, created_at, updated_at)
			VALUES (?,?,?,?,?)`,
			jobID, path, JobPending, now, now,
		); err != nil {
			return 0, fmt.Errorf("failed to insert job item: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit: %w", err)
	}
	return jobID, nil
}

// SetJobStatus moves a job to the given status.
func (s *Store) SetJobStatus(ctx context.Context, jobID int64, status string) error {
	res, err := s.DB.ExecContext(ctx, `
		UPDATE batch_jobs SET status = ?, updated_at = ? WHERE id = ?`,
		status, time.Now().UnixMilli(), jobID,
	)
	if err != nil {
		return fmt.Errorf("failed to update job status: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: %d", ErrUnknownJob, jobID)
	}
	return nil
}

// StartItem moves an item to running.
func (s *Store) StartItem(ctx context.Context, itemID int64) error {
	_, err := s.DB.ExecContext(ctx, `
		UPDATE batch_job_items SET status = ?, updated_at = ? WHERE id = ?`,
		JobRunning, time.Now().UnixMilli(), itemID,
	)
	if err != nil {
		return fmt.Errorf("failed to start item: %w", err)
	}
	return nil
}

// CompleteItem marks an item completed, records the analyzed image id, and
// bumps the job's completed counter.
func (s *Store) CompleteItem(ctx context.Context, itemID int64, imageID string) error {
	return s.finishItem(ctx, itemID, JobCompleted, imageID, "")
}

// FailItem marks an item failed with its error text and bumps the job's
// failed counter. Sibling items are untouched.
func (s *Store) FailItem(ctx context.Context, itemID int64, errMsg string) error {
	return s.finishItem(ctx, itemID, JobFailed, "", errMsg)
}

func (s *Store) finishItem(ctx context.Context, itemID int64, status, imageID, errMsg string) error {
	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	now := time.Now().UnixMilli()
	var jobID int64
	err = tx.QueryRowContext(ctx,
		`SELECT job_id FROM batch_job_items WHERE id = ?`, itemID).Scan(&jobID)
	if err != nil {
		return fmt.Errorf("failed to resolve item %d: %w", itemID, err)
	}

	if _, err := tx.ExecContext(ctx, `
		UPDATE batch_job_items
		SET status = ?, image_id = ?, error_message = ?, updated_at = ?
		WHERE id = ?`,
		status, imageID, errMsg, now, itemID,
	); err != nil {
		return fmt.Errorf("failed to update item: %w", err)
	}

	counter := "completed_items"
	if status == JobFailed {
		counter = "failed_items"
	}
	if _, err := tx.ExecContext(ctx, fmt.Sprintf(`
		UPDATE batch_jobs SET %s = %s + 1, updated_at = ? WHERE id = ?`, counter, counter),
		now, jobID,
	); err != nil {
		return fmt.Errorf("failed to update job counter: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit: %w", err)
	}
	return nil
}

// FinishJob moves a job to its terminal status once every item has
// finished: failed when nothing completed, completed otherwise. The error
// summary collects the first few item errors.
func (s *Store) FinishJob(ctx context.Context, jobID int64) error {
	job, err := s.Job(ctx, jobID)
	if err != nil {
		return err
	}

	status := JobCompleted
	if job.TotalItems > 0 && job.CompletedItems == 0 {
		status = JobFailed
	}

	var errs []string
	for _, item := range job.Items {
		if item.ErrorMessage == "" {
			continue
		}
		errs = append(errs, fmt.Sprintf("%s: %s", item.ImagePath, item.ErrorMessage))
		if len(errs) == 5 {
			errs = append(errs, "...")
			break
		}
	}

	_, err = s.DB.ExecContext(ctx, `
		UPDATE batch_jobs SET status = ?, error_summary = ?, updated_at = ? WHERE id = ?`,
		status, strings.Join(errs, "; "), time.Now().UnixMilli(), jobID,
	)
	if err != nil {
		return fmt.Errorf("failed to finish job: %w", err)
	}
	return nil
}

// Job returns a job with its items. Unknown ids yield ErrUnknownJob.
func (s *Store) Job(ctx context.Context, jobID int64) (*Job, error) {
	j := &Job{}
	err := s.DB.QueryRowContext(ctx, `
		SELECT id, status, total_items, completed_items, failed_items, error_summary, created_at, updated_at
		FROM batch_jobs WHERE id = ?`, jobID).Scan(
		&j.ID, &j.Status, &j.TotalItems, &j.CompletedItems, &j.FailedItems,
		&j.ErrorSummary, &j.CreatedAt, &j.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %d", ErrUnknownJob, jobID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query job: %w", err)
	}

	rows, err := s.DB.QueryContext(ctx, `
		SELECT id, job_id, image_path, image_id, status, error_message
		FROM batch_job_items WHERE job_id = ? ORDER BY id`, jobID)
	if err != nil {
		return nil, fmt.Errorf("failed to query job items: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var item JobItem
		if err := rows.Scan(&item.ID, &item.JobID, &item.ImagePath, &item.ImageID,
			&item.Status, &item.ErrorMessage); err != nil {
			return nil, fmt.Errorf("failed to scan job item: %w", err)
		}
		j.Items = append(j.Items, item)
	}
	return j, rows.Err()
}
