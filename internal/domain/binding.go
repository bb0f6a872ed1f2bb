package domain

import "strings"

// DatabaseBinding is the chosen physical source location for a blueprint.
type DatabaseBinding struct {
	DB     string `json:"db"`
	Schema string `json:"schema"`
	Table  string `json:"table"`
}

// IsEmpty reports whether no location has been chosen yet.
func (b DatabaseBinding) IsEmpty() bool {
	return b.DB == "" && b.Schema == "" && b.Table == ""
}

// IsComplete reports whether all three parts have been chosen.
func (b DatabaseBinding) IsComplete() bool {
	return b.DB != "" && b.Schema != "" && b.Table != ""
}

// FieldKey encodes a wizard field's category and identity. Keys follow the
// engine's naming: table_pk_<name>, primary_<name>, secondary_<node>_<name>,
// column_<name>, plus the singleton keys ingest_time, delete_condition and
// where_clause.
type FieldKey string

// Singleton field keys.
const (
	FieldKeyIngestTime      FieldKey = "ingest_time"
	FieldKeyDeleteCondition FieldKey = "delete_condition"
	FieldKeyWhereClause     FieldKey = "where_clause"
)

// TablePKFieldKey returns the key for a table primary-key part.
func TablePKFieldKey(name string) FieldKey { return FieldKey("table_pk_" + name) }

// PrimaryFieldKey returns the key for a primary key-node binding.
func PrimaryFieldKey(name string) FieldKey { return FieldKey("primary_" + name) }

// SecondaryFieldKey returns the key for a secondary key-node binding.
func SecondaryFieldKey(node, name string) FieldKey {
	return FieldKey("secondary_" + node + "_" + name)
}

// ColumnFieldKey returns the key for an attribute column binding.
func ColumnFieldKey(name string) FieldKey { return FieldKey("column_" + name) }

// IsKeyNode reports whether the field belongs to a primary or secondary key
// node. Key-node columns are subject to the column-exclusivity rule.
func (k FieldKey) IsKeyNode() bool {
	s := string(k)
	return strings.HasPrefix(s, "table_pk_") ||
		strings.HasPrefix(s, "primary_") ||
		strings.HasPrefix(s, "secondary_")
}

// IsColumn reports whether the field is an attribute column binding.
func (k FieldKey) IsColumn() bool {
	return strings.HasPrefix(string(k), "column_")
}

// NoneValue is the sentinel a selector writes when the user explicitly
// chooses no column. It resolves to pending, not bound.
const NoneValue = "NONE"

// CanonicalColumn canonicalizes a source column name or SQL fragment the way
// the wizard stores it: trimmed and upper-cased.
func CanonicalColumn(v string) string {
	return strings.ToUpper(strings.TrimSpace(v))
}

// FieldStatus is the derived binding status of one wizard field.
type FieldStatus string

const (
	FieldPending  FieldStatus = "pending"
	FieldBound    FieldStatus = "bound"
	FieldMismatch FieldStatus = "mismatch"
)

// BlueprintStatus is the aggregate per-blueprint indicator shown in the
// wizard sidebar.
type BlueprintStatus string

const (
	StatusGrey   BlueprintStatus = "grey"   // nothing bound
	StatusOrange BlueprintStatus = "orange" // partially bound
	StatusGreen  BlueprintStatus = "green"  // all non-heading fields bound
)

// SourceColumn is one column of a bound source table as described by the
// engine's metadata endpoints.
type SourceColumn struct {
	Name string `json:"name"`
	Type string `json:"type"`
}
