// Package governance exposes contact stewardship over catalog objects and
// deployed models. It is a thin layer over the engine backend.
package governance

import (
	"context"
	"log/slog"
	"strings"

	"uhe-console/internal/domain"
)

type backendClient interface {
	ListContacts(ctx context.Context) ([]domain.Contact, error)
	CreateContact(ctx context.Context, req domain.CreateContactRequest) (*domain.Contact, error)
	ListComponentObjects(ctx context.Context) ([]domain.ComponentObject, error)
	AssignContacts(ctx context.Context, req domain.AssignContactsRequest) error
	ListModelGovernance(ctx context.Context) ([]domain.ModelGovernance, error)
	AssignModelContacts(ctx context.Context, req domain.AssignModelContactsRequest) error
}

// Service manages governance contacts and their assignments.
type Service struct {
	client backendClient
	logger *slog.Logger
}

// NewService creates the governance service.
func NewService(client backendClient, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{client: client, logger: logger.With("component", "governance")}
}

// ListContacts returns every governance contact.
func (s *Service) ListContacts(ctx context.Context) ([]domain.Contact, error) {
	return s.client.ListContacts(ctx)
}

// CreateContact registers a new contact after basic validation.
func (s *Service) CreateContact(ctx context.Context, req domain.CreateContactRequest) (*domain.Contact, error) {
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		return nil, domain.ErrValidation("contact name is required")
	}
	switch req.Method {
	case "URL", "EMAIL", "USERS":
	default:
		return nil, domain.ErrValidation("contact method %q is not one of URL, EMAIL, USERS", req.Method)
	}
	if req.Value == nil {
		return nil, domain.ErrValidation("contact value is required")
	}
	contact, err := s.client.CreateContact(ctx, req)
	if err != nil {
		return nil, err
	}
	s.logger.Info("contact created", "name", contact.Name)
	return contact, nil
}

// ListObjects returns the storage objects governance can steward.
func (s *Service) ListObjects(ctx context.Context) ([]domain.ComponentObject, error) {
	return s.client.ListComponentObjects(ctx)
}

// AssignContacts sets the steward/owner assignments on one storage object.
func (s *Service) AssignContacts(ctx context.Context, req domain.AssignContactsRequest) error {
	if strings.TrimSpace(req.ObjectName) == "" {
		return domain.ErrValidation("object name is required")
	}
	return s.client.AssignContacts(ctx, req)
}

// ListModels returns governance state for deployed models.
func (s *Service) ListModels(ctx context.Context) ([]domain.ModelGovernance, error) {
	return s.client.ListModelGovernance(ctx)
}

// AssignModelContacts sets the contact assignments on one deployed model.
func (s *Service) AssignModelContacts(ctx context.Context, req domain.AssignModelContactsRequest) error {
	if strings.TrimSpace(req.ModelID) == "" {
		return domain.ErrValidation("model id is required")
	}
	return s.client.AssignModelContacts(ctx, req)
}
