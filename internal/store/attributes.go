package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/ironsheep/image-science/internal/frame"
)

// ErrUnknownImage is returned when an image identifier has no stored rows.
var ErrUnknownImage = errors.New("image has no stored attributes")

// SourceTag is the provenance label attached to every persisted row. Rows
// written from an engine-derived attribute get a ":live" (or ":stub")
// suffix so exports can separate measured values from model judgments.
const SourceTag = "image-science/v1"

// AttributeRow is one persisted (image, key) record. HasValue is false for
// metadata-only rows: failure flags and status notes that carry no scalar.
type AttributeRow struct {
	ImageID    string  `json:"image_id"`
	Key        string  `json:"key"`
	Value      float64 `json:"value"`
	HasValue   bool    `json:"has_value"`
	Confidence float64 `json:"confidence"`
	Source     string  `json:"source"`
	Note       string  `json:"note,omitempty"`
	CreatedAt  int64   `json:"created_at"`
}

// composeSource maps an annotation's provenance onto the persisted source
// label. Deterministic analyzers leave Annotation.Source empty; engine
// analyzers record the engine name, with "stub" reserved for the stub.
func composeSource(annSource string) string {
	switch annSource {
	case "":
		return SourceTag
	case "stub":
		return SourceTag + ":stub"
	default:
		return SourceTag + ":live"
	}
}

// SaveAttributes replaces the stored rows for one image in a single
// transaction: every attribute value plus every metadata-only annotation
// (failure flags, engine status notes). A failed analysis never leaves a
// half-written image behind.
func (s *Store) SaveAttributes(ctx context.Context, imageID string, attrs map[string]float64, anns map[string]frame.Annotation) error {
	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM image_attributes WHERE image_id = ?`, imageID); err != nil {
		return fmt.Errorf("failed to clear previous rows: %w", err)
	}

	now := time.Now().UnixMilli()
	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO image_attributes
			(image_id, key, value, confidence, source, note, created_at)
		VALUES (?,?,?,?,?,?,?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	// Union of value keys and annotation-only keys, in stable order.
	keys := make([]string, 0, len(anns))
	for key := range anns {
		keys = append(keys, key)
	}
	for key := range attrs {
		if _, ok := anns[key]; !ok {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)

	for _, key := range keys {
		ann := anns[key]
		var value sql.NullFloat64
		if v, ok := attrs[key]; ok {
			value = sql.NullFloat64{Float64: v, Valid: true}
		}
		if _, err := stmt.ExecContext(ctx,
			imageID, key, value, ann.Confidence, composeSource(ann.Source), ann.Note, now,
		); err != nil {
			return fmt.Errorf("failed to insert %s: %w", key, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit: %w", err)
	}
	return nil
}

// ListAttributes returns every stored row for an image, ordered by key.
// An identifier with no rows yields ErrUnknownImage.
func (s *Store) ListAttributes(ctx context.Context, imageID string) ([]AttributeRow, error) {
	rows, err := s.DB.QueryContext(ctx, `
		SELECT image_id, key, value, confidence, source, note, created_at
		FROM image_attributes WHERE image_id = ? ORDER BY key`, imageID)
	if err != nil {
		return nil, fmt.Errorf("failed to query attributes: %w", err)
	}
	defer rows.Close()

	var out []AttributeRow
	for rows.Next() {
		var r AttributeRow
		var value sql.NullFloat64
		if err := rows.Scan(&r.ImageID, &r.Key, &value, &r.Confidence, &r.Source, &r.Note, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan attribute row: %w", err)
		}
		r.Value = value.Float64
		r.HasValue = value.Valid
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrUnknownImage, imageID)
	}
	return out, nil
}
