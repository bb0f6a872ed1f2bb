package governance

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"uhe-console/internal/domain"
)

type mockClient struct {
	listContacts        func(ctx context.Context) ([]domain.Contact, error)
	createContact       func(ctx context.Context, req domain.CreateContactRequest) (*domain.Contact, error)
	listObjects         func(ctx context.Context) ([]domain.ComponentObject, error)
	assignContacts      func(ctx context.Context, req domain.AssignContactsRequest) error
	listModels          func(ctx context.Context) ([]domain.ModelGovernance, error)
	assignModelContacts func(ctx context.Context, req domain.AssignModelContactsRequest) error
}

func (m *mockClient) ListContacts(ctx context.Context) ([]domain.Contact, error) {
	return m.listContacts(ctx)
}

func (m *mockClient) CreateContact(ctx context.Context, req domain.CreateContactRequest) (*domain.Contact, error) {
	return m.createContact(ctx, req)
}

func (m *mockClient) ListComponentObjects(ctx context.Context) ([]domain.ComponentObject, error) {
	return m.listObjects(ctx)
}

func (m *mockClient) AssignContacts(ctx context.Context, req domain.AssignContactsRequest) error {
	return m.assignContacts(ctx, req)
}

func (m *mockClient) ListModelGovernance(ctx context.Context) ([]domain.ModelGovernance, error) {
	return m.listModels(ctx)
}

func (m *mockClient) AssignModelContacts(ctx context.Context, req domain.AssignModelContactsRequest) error {
	return m.assignModelContacts(ctx, req)
}

func TestCreateContact_TrimsAndValidates(t *testing.T) {
	var captured domain.CreateContactRequest
	m := &mockClient{
		createContact: func(_ context.Context, req domain.CreateContactRequest) (*domain.Contact, error) {
			captured = req
			return &domain.Contact{Name: req.Name}, nil
		},
	}
	svc := NewService(m, nil)

	contact, err := svc.CreateContact(context.Background(), domain.CreateContactRequest{
		Name:   "  Data Team  ",
		Method: "EMAIL",
		Value:  "data@acme.example",
	})
	require.NoError(t, err)
	assert.Equal(t, "Data Team", contact.Name)
	assert.Equal(t, "Data Team", captured.Name)
}

func TestCreateContact_Rejections(t *testing.T) {
	svc := NewService(&mockClient{}, nil)
	var verr *domain.ValidationError

	_, err := svc.CreateContact(context.Background(), domain.CreateContactRequest{
		Name: "  ", Method: "EMAIL", Value: "x",
	})
	require.ErrorAs(t, err, &verr)

	_, err = svc.CreateContact(context.Background(), domain.CreateContactRequest{
		Name: "Team", Method: "CARRIER_PIGEON", Value: "x",
	})
	require.ErrorAs(t, err, &verr)

	_, err = svc.CreateContact(context.Background(), domain.CreateContactRequest{
		Name: "Team", Method: "USERS", Value: nil,
	})
	require.ErrorAs(t, err, &verr)
}

func TestAssignContacts_RequiresObjectName(t *testing.T) {
	svc := NewService(&mockClient{}, nil)

	err := svc.AssignContacts(context.Background(), domain.AssignContactsRequest{
		DatabaseName: "DWH",
		SchemaName:   "MODEL",
	})
	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
}

func TestAssignModelContacts_PassesThrough(t *testing.T) {
	var captured domain.AssignModelContactsRequest
	m := &mockClient{
		assignModelContacts: func(_ context.Context, req domain.AssignModelContactsRequest) error {
			captured = req
			return nil
		},
	}
	svc := NewService(m, nil)

	err := svc.AssignModelContacts(context.Background(), domain.AssignModelContactsRequest{
		ModelID:   "dim_customer",
		ModelType: "dimension",
		Assignments: []domain.ContactAssignment{
			{Purpose: "STEWARD", ContactName: "Data Team"},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "dim_customer", captured.ModelID)
	require.Len(t, captured.Assignments, 1)
}

func TestAssignModelContacts_RequiresModelID(t *testing.T) {
	svc := NewService(&mockClient{}, nil)

	err := svc.AssignModelContacts(context.Background(), domain.AssignModelContactsRequest{})
	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
}
