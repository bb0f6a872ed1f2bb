package domain

// CatalogModel is one deployable dimensional model (dimension or fact) as
// listed by the catalog pages.
type CatalogModel struct {
	ID              string `json:"id"`
	Name            string `json:"name"`
	Type            string `json:"type"` // "dimension" or "fact"
	Description     string `json:"description,omitempty"`
	ViewName        string `json:"view_name,omitempty"`
	Deployed        bool   `json:"deployed"`
	DeploymentError string `json:"deployment_error,omitempty"`
	PII             bool   `json:"pii,omitempty"`
}

// ModalData is everything the wizard needs to open, fetched in one call:
// the database list, pre-loaded schemas for bound databases, the blueprint
// definitions grouped by source, and pre-fetched table/column metadata for
// tables that are already bound.
type ModalData struct {
	Message         string                    `json:"message"`
	Databases       []string                  `json:"databases"`
	DatabaseSchemas map[string][]string       `json:"databases_schemas_map"`
	Blueprints      map[string][]Blueprint    `json:"blueprints"`
	SchemaTables    map[string][]TableRef     `json:"schema_tables"`
	TableFields     map[string][]SourceColumn `json:"table_fields"`
}

// TableRef names one table within a schema.
type TableRef struct {
	Name string `json:"name"`
}

// DatabaseValidation reports whether the output database exists with all of
// its required schemas.
type DatabaseValidation struct {
	Valid           bool     `json:"valid"`
	DatabaseName    string   `json:"database_name"`
	DatabaseExists  bool     `json:"database_exists"`
	MissingSchemas  []string `json:"missing_schemas"`
	ExistingSchemas []string `json:"existing_schemas"`
}

// ModellingMetrics is the dashboard's headline figures as reported by the
// engine backend.
type ModellingMetrics struct {
	ConnectedSources int    `json:"connected_sources"`
	Database         string `json:"database"`
	StorageObjects   struct {
		Attributes int `json:"attributes"`
		Edges      int `json:"edges"`
		Nodes      int `json:"nodes"`
		Total      int `json:"total"`
	} `json:"storage_objects"`
	DeployedModels struct {
		Dimensions int `json:"dimensions"`
		Facts      int `json:"facts"`
		Total      int `json:"total"`
	} `json:"deployed_models"`
	Governance struct {
		ObjectsWithoutSteward     int     `json:"objects_without_steward"`
		TotalObjects              int     `json:"total_objects"`
		StewardCoveragePercentage float64 `json:"steward_coverage_percentage"`
	} `json:"governance"`
}
