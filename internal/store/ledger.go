package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

// UsageEntry is one row of the external-tool cost ledger.
type UsageEntry struct {
	ID        int64          `json:"id"`
	ToolName  string         `json:"tool_name"`
	Provider  string         `json:"provider"`
	ModelName string         `json:"model_name"`
	CostUSD   float64        `json:"cost_usd"`
	Meta      map[string]any `json:"meta,omitempty"`
	CreatedAt int64          `json:"created_at"`
}

// LogUsage appends one ledger row. It satisfies the cost-ledger
// collaborator the cognition analyzers log through.
func (s *Store) LogUsage(ctx context.Context, tool, provider, model string, costUSD float64, meta map[string]any) error {
	metaJSON := []byte("{}")
	if len(meta) > 0 {
		var err error
		metaJSON, err = json.Marshal(meta)
		if err != nil {
			return fmt.Errorf("failed to encode usage metadata: %w", err)
		}
	}

	_, err := s.DB.ExecContext(ctx, `
		INSERT INTO tool_usage (tool_name, provider, model_name, cost_usd, meta, created_at)
		VALUES (?,?,?,?,?,?)`,
		tool, provider, model, costUSD, string(metaJSON), time.Now().UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert usage row: %w", err)
	}
	return nil
}

// TotalSpent returns the summed estimated cost across the whole ledger,
// in USD. An empty ledger totals zero.
func (s *Store) TotalSpent(ctx context.Context) (float64, error) {
	var total float64
	err := s.DB.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(cost_usd), 0) FROM tool_usage`).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("failed to total ledger: %w", err)
	}
	return total, nil
}

// ListUsage returns the most recent ledger rows, newest first.
func (s *Store) ListUsage(ctx context.Context, limit int) ([]UsageEntry, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.DB.QueryContext(ctx, `
		SELECT id, tool_name, provider, model_name, cost_usd, meta, created_at
		FROM tool_usage ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query ledger: %w", err)
	}
	defer rows.Close()

	var out []UsageEntry
	for rows.Next() {
		var e UsageEntry
		var metaJSON string
		if err := rows.Scan(&e.ID, &e.ToolName, &e.Provider, &e.ModelName, &e.CostUSD, &metaJSON, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan usage row: %w", err)
		}
		if err := json.Unmarshal([]byte(metaJSON), &e.Meta); err != nil {
			return nil, fmt.Errorf("failed to decode usage metadata: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
