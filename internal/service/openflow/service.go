// Package openflow manages per-table snapshot state for the Openflow CDC
// pipeline via the engine backend.
package openflow

import (
	"context"
	"log/slog"
	"strings"

	"uhe-console/internal/domain"
)

type backendClient interface {
	ListSnapshotStates(ctx context.Context) ([]domain.SnapshotState, error)
	GetSnapshotState(ctx context.Context, db, schema, table string) (*domain.SnapshotState, error)
	CreateSnapshotState(ctx context.Context, state domain.SnapshotState) error
	UpdateSnapshotState(ctx context.Context, db, schema, table string, req domain.UpdateSnapshotStateRequest) error
	DeleteSnapshotState(ctx context.Context, db, schema, table string) error
}

// Service manages Openflow snapshot state rows.
type Service struct {
	client backendClient
	logger *slog.Logger
}

// NewService creates the openflow service.
func NewService(client backendClient, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{client: client, logger: logger.With("component", "openflow")}
}

// List returns every snapshot state row.
func (s *Service) List(ctx context.Context) ([]domain.SnapshotState, error) {
	return s.client.ListSnapshotStates(ctx)
}

// Get returns the snapshot state for one table.
func (s *Service) Get(ctx context.Context, db, schema, table string) (*domain.SnapshotState, error) {
	if err := validateKey(db, schema, table); err != nil {
		return nil, err
	}
	return s.client.GetSnapshotState(ctx, db, schema, table)
}

// Create registers snapshot state for a table not yet tracked.
func (s *Service) Create(ctx context.Context, state domain.SnapshotState) error {
	if err := validateKey(state.DatabaseName, state.SchemaName, state.TableName); err != nil {
		return err
	}
	if err := s.client.CreateSnapshotState(ctx, state); err != nil {
		return err
	}
	s.logger.Info("snapshot state created",
		"database", state.DatabaseName, "schema", state.SchemaName, "table", state.TableName)
	return nil
}

// Update applies a partial update to one table's snapshot state.
func (s *Service) Update(ctx context.Context, db, schema, table string, req domain.UpdateSnapshotStateRequest) error {
	if err := validateKey(db, schema, table); err != nil {
		return err
	}
	return s.client.UpdateSnapshotState(ctx, db, schema, table, req)
}

// RequestSnapshot flags one table for a fresh snapshot on the next pipeline
// pass.
func (s *Service) RequestSnapshot(ctx context.Context, db, schema, table string) error {
	want := true
	return s.Update(ctx, db, schema, table, domain.UpdateSnapshotStateRequest{SnapshotRequest: &want})
}

// Delete removes a table's snapshot state.
func (s *Service) Delete(ctx context.Context, db, schema, table string) error {
	if err := validateKey(db, schema, table); err != nil {
		return err
	}
	return s.client.DeleteSnapshotState(ctx, db, schema, table)
}

func validateKey(db, schema, table string) error {
	if strings.TrimSpace(db) == "" || strings.TrimSpace(schema) == "" || strings.TrimSpace(table) == "" {
		return domain.ErrValidation("database, schema and table are all required")
	}
	return nil
}
