// Package catalog implements the catalog reads backing the console's list
// pages. All data comes from the engine backend; the only local state is the
// optimistic "deployed" overlay applied after a successful deployment.
package catalog

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"golang.org/x/sync/errgroup"

	"uhe-console/internal/domain"
)

type backendClient interface {
	ListDimensions(ctx context.Context) ([]domain.CatalogModel, error)
	ListFacts(ctx context.Context) ([]domain.CatalogModel, error)
	ListBlueprintDetails(ctx context.Context, source, idLike string) ([]domain.BlueprintDetail, error)
	ModellingMetrics(ctx context.Context) (*domain.ModellingMetrics, error)
	ValidateDatabase(ctx context.Context) (*domain.DatabaseValidation, error)
	AccountURL(ctx context.Context) (string, error)
}

// Service serves the model and blueprint catalogs.
type Service struct {
	client backendClient
	logger *slog.Logger

	mu sync.Mutex
	// deployedOverlay marks models optimistically deployed this session,
	// keyed by model id. The backend's own flag wins once it refreshes.
	deployedOverlay map[string]bool
}

// NewService creates the catalog service.
func NewService(client backendClient, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		client:          client,
		logger:          logger.With("component", "catalog"),
		deployedOverlay: make(map[string]bool),
	}
}

// ListModels returns all dimensional models, dimensions first, each list
// sorted by id, with the optimistic deployed overlay applied.
func (s *Service) ListModels(ctx context.Context) ([]domain.CatalogModel, error) {
	var dims, facts []domain.CatalogModel
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		if dims, err = s.client.ListDimensions(gctx); err != nil {
			return fmt.Errorf("list dimensions: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		if facts, err = s.client.ListFacts(gctx); err != nil {
			return fmt.Errorf("list facts: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	sort.Slice(dims, func(i, j int) bool { return dims[i].ID < dims[j].ID })
	sort.Slice(facts, func(i, j int) bool { return facts[i].ID < facts[j].ID })
	models := append(dims, facts...)

	s.mu.Lock()
	for i := range models {
		if s.deployedOverlay[models[i].ID] {
			models[i].Deployed = true
			models[i].DeploymentError = ""
		}
	}
	s.mu.Unlock()
	return models, nil
}

// GetModels resolves a set of model ids against the catalog.
func (s *Service) GetModels(ctx context.Context, ids []string) ([]domain.CatalogModel, error) {
	if len(ids) == 0 {
		return nil, domain.ErrValidation("no model ids given")
	}
	all, err := s.ListModels(ctx)
	if err != nil {
		return nil, err
	}
	byID := make(map[string]domain.CatalogModel, len(all))
	for _, m := range all {
		byID[m.ID] = m
	}
	out := make([]domain.CatalogModel, 0, len(ids))
	for _, id := range ids {
		m, ok := byID[id]
		if !ok {
			return nil, domain.ErrNotFound("model %q not found", id)
		}
		out = append(out, m)
	}
	return out, nil
}

// MarkDeployed records an optimistic deployed transition for the models the
// terminal deploy summary listed as successful.
func (s *Service) MarkDeployed(outcomes []domain.DeployOutcome) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, o := range outcomes {
		s.deployedOverlay[o.ID] = true
	}
}

// ListBlueprints returns the blueprint catalog rows, optionally filtered.
func (s *Service) ListBlueprints(ctx context.Context, source, idLike string) ([]domain.BlueprintDetail, error) {
	return s.client.ListBlueprintDetails(ctx, source, idLike)
}

// Metrics returns the dashboard headline figures.
func (s *Service) Metrics(ctx context.Context) (*domain.ModellingMetrics, error) {
	return s.client.ModellingMetrics(ctx)
}

// ValidateDatabase checks the output database and its required schemas.
func (s *Service) ValidateDatabase(ctx context.Context) (*domain.DatabaseValidation, error) {
	return s.client.ValidateDatabase(ctx)
}

// AccountURL returns the Snowflake account URL for deep links.
func (s *Service) AccountURL(ctx context.Context) (string, error) {
	return s.client.AccountURL(ctx)
}
