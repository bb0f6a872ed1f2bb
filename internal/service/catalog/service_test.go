package catalog

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"uhe-console/internal/domain"
)

type mockClient struct {
	listDimensions func(ctx context.Context) ([]domain.CatalogModel, error)
	listFacts      func(ctx context.Context) ([]domain.CatalogModel, error)
	listBlueprints func(ctx context.Context, source, idLike string) ([]domain.BlueprintDetail, error)
	metrics        func(ctx context.Context) (*domain.ModellingMetrics, error)
	validate       func(ctx context.Context) (*domain.DatabaseValidation, error)
	accountURL     func(ctx context.Context) (string, error)
}

func (m *mockClient) ListDimensions(ctx context.Context) ([]domain.CatalogModel, error) {
	return m.listDimensions(ctx)
}

func (m *mockClient) ListFacts(ctx context.Context) ([]domain.CatalogModel, error) {
	return m.listFacts(ctx)
}

func (m *mockClient) ListBlueprintDetails(ctx context.Context, source, idLike string) ([]domain.BlueprintDetail, error) {
	return m.listBlueprints(ctx, source, idLike)
}

func (m *mockClient) ModellingMetrics(ctx context.Context) (*domain.ModellingMetrics, error) {
	return m.metrics(ctx)
}

func (m *mockClient) ValidateDatabase(ctx context.Context) (*domain.DatabaseValidation, error) {
	return m.validate(ctx)
}

func (m *mockClient) AccountURL(ctx context.Context) (string, error) {
	return m.accountURL(ctx)
}

func catalogMock() *mockClient {
	return &mockClient{
		listDimensions: func(context.Context) ([]domain.CatalogModel, error) {
			return []domain.CatalogModel{
				{ID: "dim_product", Name: "Product", Type: "dimension"},
				{ID: "dim_customer", Name: "Customer", Type: "dimension"},
			}, nil
		},
		listFacts: func(context.Context) ([]domain.CatalogModel, error) {
			return []domain.CatalogModel{
				{ID: "fct_orders", Name: "Orders", Type: "fact"},
			}, nil
		},
	}
}

func TestListModels_DimensionsFirstSortedByID(t *testing.T) {
	svc := NewService(catalogMock(), nil)

	models, err := svc.ListModels(context.Background())
	require.NoError(t, err)
	require.Len(t, models, 3)
	assert.Equal(t, "dim_customer", models[0].ID)
	assert.Equal(t, "dim_product", models[1].ID)
	assert.Equal(t, "fct_orders", models[2].ID)
}

func TestListModels_PropagatesBackendFailure(t *testing.T) {
	m := catalogMock()
	m.listFacts = func(context.Context) ([]domain.CatalogModel, error) {
		return nil, errors.New("engine unavailable")
	}
	svc := NewService(m, nil)

	_, err := svc.ListModels(context.Background())
	require.ErrorContains(t, err, "list facts")
}

func TestListModels_AppliesDeployedOverlay(t *testing.T) {
	m := catalogMock()
	m.listDimensions = func(context.Context) ([]domain.CatalogModel, error) {
		return []domain.CatalogModel{
			{ID: "dim_customer", Type: "dimension", DeploymentError: "stale failure"},
		}, nil
	}
	m.listFacts = func(context.Context) ([]domain.CatalogModel, error) { return nil, nil }
	svc := NewService(m, nil)

	svc.MarkDeployed([]domain.DeployOutcome{{Type: "dimension", ID: "dim_customer"}})

	models, err := svc.ListModels(context.Background())
	require.NoError(t, err)
	require.Len(t, models, 1)
	assert.True(t, models[0].Deployed)
	assert.Empty(t, models[0].DeploymentError, "overlay clears the previous failure")
}

func TestGetModels_ResolvesInRequestOrder(t *testing.T) {
	svc := NewService(catalogMock(), nil)

	models, err := svc.GetModels(context.Background(), []string{"fct_orders", "dim_customer"})
	require.NoError(t, err)
	require.Len(t, models, 2)
	assert.Equal(t, "fct_orders", models[0].ID)
	assert.Equal(t, "dim_customer", models[1].ID)
}

func TestGetModels_EmptyIDs(t *testing.T) {
	svc := NewService(catalogMock(), nil)

	_, err := svc.GetModels(context.Background(), nil)
	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
}

func TestGetModels_UnknownID(t *testing.T) {
	svc := NewService(catalogMock(), nil)

	_, err := svc.GetModels(context.Background(), []string{"dim_ghost"})
	var nf *domain.NotFoundError
	require.ErrorAs(t, err, &nf)
}

func TestListBlueprints_PassesFilters(t *testing.T) {
	m := catalogMock()
	m.listBlueprints = func(_ context.Context, source, idLike string) ([]domain.BlueprintDetail, error) {
		assert.Equal(t, "sap", source)
		assert.Equal(t, "cust", idLike)
		return []domain.BlueprintDetail{{ID: "customer", Source: "sap"}}, nil
	}
	svc := NewService(m, nil)

	bps, err := svc.ListBlueprints(context.Background(), "sap", "cust")
	require.NoError(t, err)
	require.Len(t, bps, 1)
}
