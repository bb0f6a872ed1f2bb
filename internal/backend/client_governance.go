package backend

import (
	"context"

	"uhe-console/internal/domain"
)

// ListContacts lists all governance contacts.
func (c *Client) ListContacts(ctx context.Context) ([]domain.Contact, error) {
	var out struct {
		Message  string           `json:"message"`
		Contacts []domain.Contact `json:"contacts"`
	}
	if err := c.get(ctx, "/governance/contacts", nil, &out); err != nil {
		return nil, err
	}
	return out.Contacts, nil
}

// CreateContact creates a new governance contact and returns the stored
// record.
func (c *Client) CreateContact(ctx context.Context, req domain.CreateContactRequest) (*domain.Contact, error) {
	var out struct {
		Message string         `json:"message"`
		Contact domain.Contact `json:"contact"`
	}
	if err := c.post(ctx, "/governance/contacts", req, &out); err != nil {
		return nil, err
	}
	return &out.Contact, nil
}

// ListComponentObjects lists the physical objects governance can steward.
func (c *Client) ListComponentObjects(ctx context.Context) ([]domain.ComponentObject, error) {
	var out struct {
		Message string                   `json:"message"`
		Objects []domain.ComponentObject `json:"objects"`
	}
	if err := c.get(ctx, "/governance/objects", nil, &out); err != nil {
		return nil, err
	}
	return out.Objects, nil
}

// AssignContacts assigns contacts to one governed object.
func (c *Client) AssignContacts(ctx context.Context, req domain.AssignContactsRequest) error {
	return c.post(ctx, "/governance/contacts/assign", req, nil)
}

// ListModelGovernance lists the governance view of every dimensional model.
func (c *Client) ListModelGovernance(ctx context.Context) ([]domain.ModelGovernance, error) {
	var out struct {
		Message string                   `json:"message"`
		Models  []domain.ModelGovernance `json:"models"`
		Total   int                      `json:"total"`
	}
	if err := c.get(ctx, "/governance/models", nil, &out); err != nil {
		return nil, err
	}
	return out.Models, nil
}

// AssignModelContacts assigns contacts across every component object of one
// model.
func (c *Client) AssignModelContacts(ctx context.Context, req domain.AssignModelContactsRequest) error {
	return c.post(ctx, "/governance/models/assign", req, nil)
}
