package openflow

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"uhe-console/internal/domain"
)

type mockClient struct {
	list   func(ctx context.Context) ([]domain.SnapshotState, error)
	get    func(ctx context.Context, db, schema, table string) (*domain.SnapshotState, error)
	create func(ctx context.Context, state domain.SnapshotState) error
	update func(ctx context.Context, db, schema, table string, req domain.UpdateSnapshotStateRequest) error
	del    func(ctx context.Context, db, schema, table string) error
}

func (m *mockClient) ListSnapshotStates(ctx context.Context) ([]domain.SnapshotState, error) {
	return m.list(ctx)
}

func (m *mockClient) GetSnapshotState(ctx context.Context, db, schema, table string) (*domain.SnapshotState, error) {
	return m.get(ctx, db, schema, table)
}

func (m *mockClient) CreateSnapshotState(ctx context.Context, state domain.SnapshotState) error {
	return m.create(ctx, state)
}

func (m *mockClient) UpdateSnapshotState(ctx context.Context, db, schema, table string, req domain.UpdateSnapshotStateRequest) error {
	return m.update(ctx, db, schema, table, req)
}

func (m *mockClient) DeleteSnapshotState(ctx context.Context, db, schema, table string) error {
	return m.del(ctx, db, schema, table)
}

func TestGet_RequiresFullKey(t *testing.T) {
	svc := NewService(&mockClient{}, nil)

	var verr *domain.ValidationError
	_, err := svc.Get(context.Background(), "RAW", "", "KNA1")
	require.ErrorAs(t, err, &verr)

	_, err = svc.Get(context.Background(), "  ", "SAP", "KNA1")
	require.ErrorAs(t, err, &verr)
}

func TestCreate_ValidatesStateKey(t *testing.T) {
	svc := NewService(&mockClient{}, nil)

	err := svc.Create(context.Background(), domain.SnapshotState{DatabaseName: "RAW"})
	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
}

func TestRequestSnapshot_SetsOnlySnapshotFlag(t *testing.T) {
	var captured domain.UpdateSnapshotStateRequest
	m := &mockClient{
		update: func(_ context.Context, db, schema, table string, req domain.UpdateSnapshotStateRequest) error {
			assert.Equal(t, "RAW", db)
			assert.Equal(t, "SAP", schema)
			assert.Equal(t, "KNA1", table)
			captured = req
			return nil
		},
	}
	svc := NewService(m, nil)

	require.NoError(t, svc.RequestSnapshot(context.Background(), "RAW", "SAP", "KNA1"))
	require.NotNil(t, captured.SnapshotRequest)
	assert.True(t, *captured.SnapshotRequest)
	assert.Nil(t, captured.Enabled, "enable flag must stay untouched")
}

func TestDelete_PassesKey(t *testing.T) {
	called := false
	m := &mockClient{
		del: func(_ context.Context, db, schema, table string) error {
			called = true
			assert.Equal(t, "KNA1", table)
			return nil
		},
	}
	svc := NewService(m, nil)

	require.NoError(t, svc.Delete(context.Background(), "RAW", "SAP", "KNA1"))
	assert.True(t, called)
}
