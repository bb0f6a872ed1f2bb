package wizard

import (
	"strings"

	"uhe-console/internal/domain"
)

// Field categories, in the order the wizard renders them.
const (
	CategoryTablePK    = "table_pk"
	CategoryPrimary    = "primary"
	CategorySecondary  = "secondary"
	CategoryColumn     = "column"
	CategoryIngestTime = "ingest_time"
)

// Mismatch reasons.
const (
	ReasonBindingRule    = "binding rule violation"
	ReasonTypeMismatch   = "type mismatch"
	ReasonColumnNotFound = "column not found"
)

// FieldRow is the derived state of one wizard field: its identity, resolved
// value and binding status.
type FieldRow struct {
	Key          domain.FieldKey
	Category     string
	Name         string
	Node         string // set for secondary key-node fields
	ExpectedType string // declared data type, attribute columns only
	Value        string
	Status       domain.FieldStatus
	Reason       string // set when Status is mismatch
}

// resolveValue prefers a live mapping entry and falls back to the value
// embedded in the blueprint definition, so already-mapped unmodified fields
// report bound without the map being pre-populated.
func resolveValue(mappings map[domain.FieldKey]string, key domain.FieldKey, fallback string) string {
	if v, ok := mappings[key]; ok {
		return domain.CanonicalColumn(v)
	}
	return domain.CanonicalColumn(fallback)
}

func isPendingValue(v string) bool {
	return v == "" || v == domain.NoneValue
}

// NormalizeType collapses a vendor type string into one of string, number,
// datetime or boolean. Precision suffixes like NUMBER(38,0) are ignored.
func NormalizeType(t string) string {
	t = strings.ToUpper(strings.TrimSpace(t))
	if i := strings.IndexByte(t, '('); i >= 0 {
		t = t[:i]
	}
	switch t {
	case "NUMBER", "DECIMAL", "NUMERIC", "INT", "INTEGER", "BIGINT", "SMALLINT",
		"TINYINT", "BYTEINT", "FLOAT", "FLOAT4", "FLOAT8", "DOUBLE", "REAL":
		return "number"
	case "DATE", "DATETIME", "TIME", "TIMESTAMP", "TIMESTAMP_LTZ", "TIMESTAMP_NTZ", "TIMESTAMP_TZ":
		return "datetime"
	case "BOOLEAN", "BOOL":
		return "boolean"
	default:
		// VARCHAR, CHAR, STRING, TEXT, VARIANT and anything unrecognised.
		return "string"
	}
}

// FieldRows derives the status of every declared field of a blueprint given
// the live mappings and the bound table's column list. The column-exclusivity
// rule overrides type checks: a column consumed by any key node may not also
// be used by an attribute column, and an attribute column's source column
// must be unique among attribute columns. The mismatch always lands on the
// attribute column's row.
func FieldRows(bp *domain.Blueprint, mappings map[domain.FieldKey]string, columns []domain.SourceColumn) []FieldRow {
	rows := enumerateFields(bp, mappings)

	// Columns already consumed by key-node fields.
	keyUsed := make(map[string]bool)
	for _, r := range rows {
		if r.Key.IsKeyNode() && !isPendingValue(r.Value) {
			keyUsed[r.Value] = true
		}
	}

	// Occurrence count per value among attribute columns.
	columnUses := make(map[string]int)
	for _, r := range rows {
		if r.Category == CategoryColumn && !isPendingValue(r.Value) {
			columnUses[r.Value]++
		}
	}

	colTypes := make(map[string]string, len(columns))
	for _, c := range columns {
		colTypes[domain.CanonicalColumn(c.Name)] = c.Type
	}

	for i := range rows {
		r := &rows[i]
		if isPendingValue(r.Value) {
			r.Status = domain.FieldPending
			continue
		}

		if r.Category == CategoryColumn {
			if keyUsed[r.Value] || columnUses[r.Value] > 1 {
				r.Status = domain.FieldMismatch
				r.Reason = ReasonBindingRule
				continue
			}
			if len(columns) > 0 {
				srcType, ok := colTypes[r.Value]
				if !ok {
					r.Status = domain.FieldMismatch
					r.Reason = ReasonColumnNotFound
					continue
				}
				if r.ExpectedType != "" && NormalizeType(r.ExpectedType) != NormalizeType(srcType) {
					r.Status = domain.FieldMismatch
					r.Reason = ReasonTypeMismatch
					continue
				}
			}
		}

		r.Status = domain.FieldBound
	}

	return rows
}

// enumerateFields lists every declared field with its resolved value.
// Heading columns are excluded; delete condition and where clause are
// expressions, not fields, and are resolved separately.
func enumerateFields(bp *domain.Blueprint, mappings map[domain.FieldKey]string) []FieldRow {
	var rows []FieldRow

	for _, pk := range bp.TablePK {
		key := domain.TablePKFieldKey(pk.Name)
		rows = append(rows, FieldRow{
			Key:      key,
			Category: CategoryTablePK,
			Name:     pk.Name,
			Value:    resolveValue(mappings, key, pk.Binding),
		})
	}

	if bp.PrimaryNode != nil {
		for _, b := range bp.PrimaryNode.Bindings {
			key := domain.PrimaryFieldKey(b.Name)
			rows = append(rows, FieldRow{
				Key:      key,
				Category: CategoryPrimary,
				Name:     b.Name,
				Node:     bp.PrimaryNode.Node,
				Value:    resolveValue(mappings, key, b.Binding),
			})
		}
	}

	for _, node := range bp.SecondaryNodes {
		for _, b := range node.Bindings {
			key := domain.SecondaryFieldKey(node.Node, b.Name)
			rows = append(rows, FieldRow{
				Key:      key,
				Category: CategorySecondary,
				Name:     b.Name,
				Node:     node.Node,
				Value:    resolveValue(mappings, key, b.Binding),
			})
		}
	}

	for _, col := range bp.Columns {
		if col.IsHeading() {
			continue
		}
		key := domain.ColumnFieldKey(col.Name)
		rows = append(rows, FieldRow{
			Key:          key,
			Category:     CategoryColumn,
			Name:         col.Name,
			ExpectedType: col.DataType,
			Value:        resolveValue(mappings, key, col.Binding),
		})
	}

	// The ingest-time field only exists when the blueprint declares it or
	// the user has mapped it.
	if _, mapped := mappings[domain.FieldKeyIngestTime]; mapped || bp.IngestTimeBinding != "" {
		rows = append(rows, FieldRow{
			Key:      domain.FieldKeyIngestTime,
			Category: CategoryIngestTime,
			Name:     "ingest_time",
			Value:    resolveValue(mappings, domain.FieldKeyIngestTime, bp.IngestTimeBinding),
		})
	}

	return rows
}

// AggregateStatus rolls field rows up into the sidebar indicator: grey when
// nothing is bound, orange when partially bound, green when every field is
// bound and a delete condition has been provided. The mismatch distinction
// is deliberately ignored here — only the field row shows the mismatch icon;
// deploy-readiness gates on the persisted mapping_complete flag, not this
// aggregate.
func AggregateStatus(rows []FieldRow, deleteCondition string) domain.BlueprintStatus {
	if len(rows) == 0 {
		return domain.StatusGrey
	}
	bound := 0
	for _, r := range rows {
		if r.Status != domain.FieldPending {
			bound++
		}
	}
	switch {
	case bound == 0:
		return domain.StatusGrey
	case bound == len(rows) && strings.TrimSpace(deleteCondition) != "":
		return domain.StatusGreen
	default:
		return domain.StatusOrange
	}
}

// ResolveExpression resolves one of the expression fields (delete condition,
// where clause) from the mappings with the blueprint value as fallback.
func ResolveExpression(bp *domain.Blueprint, mappings map[domain.FieldKey]string, key domain.FieldKey) string {
	var fallback string
	switch key {
	case domain.FieldKeyDeleteCondition:
		fallback = bp.DeleteCondition
	case domain.FieldKeyWhereClause:
		fallback = bp.WhereClause
	}
	if v, ok := mappings[key]; ok {
		return strings.TrimSpace(v)
	}
	return strings.TrimSpace(fallback)
}

// MappingComplete reports deploy eligibility: every non-heading field bound
// and a non-empty delete condition. Checked at save time, not continuously.
func MappingComplete(bp *domain.Blueprint, mappings map[domain.FieldKey]string, columns []domain.SourceColumn) bool {
	rows := FieldRows(bp, mappings, columns)
	for _, r := range rows {
		if r.Status == domain.FieldPending {
			return false
		}
	}
	return ResolveExpression(bp, mappings, domain.FieldKeyDeleteCondition) != ""
}
