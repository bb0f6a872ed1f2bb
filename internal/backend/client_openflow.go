package backend

import (
	"context"
	"net/url"

	"uhe-console/internal/domain"
)

func snapshotPath(db, schema, table string) string {
	return "/openflow/snapshot-state/" + url.PathEscape(db) + "/" + url.PathEscape(schema) + "/" + url.PathEscape(table)
}

// ListSnapshotStates lists all Openflow snapshot configurations.
func (c *Client) ListSnapshotStates(ctx context.Context) ([]domain.SnapshotState, error) {
	var out struct {
		Message        string                 `json:"message"`
		SnapshotStates []domain.SnapshotState `json:"snapshot_states"`
	}
	if err := c.get(ctx, "/openflow/snapshot-state", nil, &out); err != nil {
		return nil, err
	}
	return out.SnapshotStates, nil
}

// GetSnapshotState fetches one snapshot configuration.
func (c *Client) GetSnapshotState(ctx context.Context, db, schema, table string) (*domain.SnapshotState, error) {
	var out domain.SnapshotState
	if err := c.get(ctx, snapshotPath(db, schema, table), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CreateSnapshotState creates a snapshot configuration.
func (c *Client) CreateSnapshotState(ctx context.Context, state domain.SnapshotState) error {
	return c.post(ctx, "/openflow/snapshot-state", state, nil)
}

// UpdateSnapshotState applies a partial update to one snapshot configuration.
func (c *Client) UpdateSnapshotState(ctx context.Context, db, schema, table string, req domain.UpdateSnapshotStateRequest) error {
	return c.put(ctx, snapshotPath(db, schema, table), req, nil)
}

// DeleteSnapshotState removes one snapshot configuration.
func (c *Client) DeleteSnapshotState(ctx context.Context, db, schema, table string) error {
	return c.delete(ctx, snapshotPath(db, schema, table), nil)
}
