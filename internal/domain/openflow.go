package domain

// SnapshotState is one Openflow snapshot configuration row, keyed by
// (database, schema, table).
type SnapshotState struct {
	DatabaseName           string `json:"database_name"`
	SchemaName             string `json:"schema_name"`
	TableName              string `json:"table_name"`
	Enabled                bool   `json:"enabled"`
	SnapshotRequest        bool   `json:"snapshot_request"`
	TableDDLInitialize     bool   `json:"table_ddl_initialize"`
	WatermarkColumnPattern string `json:"watermark_column_pattern,omitempty"`
	WatermarkColumn        string `json:"watermark_column,omitempty"`
	PrimaryKeyColumns      string `json:"primary_key_columns,omitempty"`
	ChunkingStrategy       string `json:"chunking_strategy,omitempty"`
	LastSnapshotWatermark  string `json:"last_snapshot_watermark,omitempty"`
	LastSnapshotTimestamp  string `json:"last_snapshot_timestamp,omitempty"`
	SnapshotStatus         string `json:"snapshot_status,omitempty"`
	CreatedAt              string `json:"created_at,omitempty"`
	UpdatedAt              string `json:"updated_at,omitempty"`
}

// UpdateSnapshotStateRequest is the partial update payload; nil fields are
// left unchanged by the backend.
type UpdateSnapshotStateRequest struct {
	Enabled                *bool   `json:"enabled,omitempty"`
	SnapshotRequest        *bool   `json:"snapshot_request,omitempty"`
	TableDDLInitialize     *bool   `json:"table_ddl_initialize,omitempty"`
	WatermarkColumnPattern *string `json:"watermark_column_pattern,omitempty"`
	WatermarkColumn        *string `json:"watermark_column,omitempty"`
	PrimaryKeyColumns      *string `json:"primary_key_columns,omitempty"`
	ChunkingStrategy       *string `json:"chunking_strategy,omitempty"`
}
