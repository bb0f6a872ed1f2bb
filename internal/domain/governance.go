package domain

// Contact is one governance contact record.
type Contact struct {
	Name               string `json:"name"`
	CommunicationType  string `json:"communication_type,omitempty"`
	CommunicationValue string `json:"communication_value,omitempty"`
	CreatedOn          string `json:"created_on,omitempty"`
	UpdatedOn          string `json:"updated_on,omitempty"`
}

// CreateContactRequest creates a new governance contact. Method is one of
// URL, EMAIL or USERS; Value is a string or a list of user names.
type CreateContactRequest struct {
	Name   string      `json:"name"`
	Method string      `json:"method"`
	Value  interface{} `json:"value"`
}

// ContactAssignment assigns (or clears, with empty ContactName) one contact
// purpose: STEWARD, SUPPORT or ACCESS_APPROVAL.
type ContactAssignment struct {
	Purpose     string `json:"purpose"`
	ContactName string `json:"contact_name,omitempty"`
}

// AssignContactsRequest assigns contacts to one governed object.
type AssignContactsRequest struct {
	DatabaseName string              `json:"database_name"`
	SchemaName   string              `json:"schema_name"`
	ObjectName   string              `json:"object_name"`
	ObjectType   string              `json:"object_type"`
	Assignments  []ContactAssignment `json:"assignments"`
}

// ComponentObject is one physical object backing a governed model.
type ComponentObject struct {
	DatabaseName    string `json:"database_name"`
	SchemaName      string `json:"schema_name"`
	ObjectName      string `json:"object_name"`
	ObjectType      string `json:"object_type"`
	StewardContact  string `json:"steward_contact,omitempty"`
	SupportContact  string `json:"support_contact,omitempty"`
	ApproverContact string `json:"approver_contact,omitempty"`
}

// ModelGovernance is the governance view of one dimensional model with the
// contacts rolled up across its component objects.
type ModelGovernance struct {
	ModelID          string            `json:"model_id"`
	ModelName        string            `json:"model_name"`
	ModelType        string            `json:"model_type"`
	Domain           string            `json:"domain"`
	Process          string            `json:"process,omitempty"`
	Deployed         bool              `json:"deployed"`
	ModelDatabase    string            `json:"model_database,omitempty"`
	ModelSchema      string            `json:"model_schema,omitempty"`
	ComponentObjects []ComponentObject `json:"component_objects"`
	StewardContact   string            `json:"steward_contact,omitempty"`
	SupportContact   string            `json:"support_contact,omitempty"`
	ApproverContact  string            `json:"approver_contact,omitempty"`
}

// AssignModelContactsRequest assigns contacts across every component object
// of one model.
type AssignModelContactsRequest struct {
	ModelID     string              `json:"model_id"`
	ModelType   string              `json:"model_type"`
	Assignments []ContactAssignment `json:"assignments"`
}
