package wizard

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"uhe-console/internal/domain"
)

// testBlueprint declares one pk part, one primary key node binding and two
// attribute columns, one of them typed as a number.
func testBlueprint() *domain.Blueprint {
	return &domain.Blueprint{
		ID:     "customer",
		Name:   "Customer",
		Source: "sap",
		TablePK: []domain.FieldBinding{
			{Name: "customer_id"},
		},
		PrimaryNode: &domain.KeyNode{
			Node:     "customer",
			Bindings: []domain.FieldBinding{{Name: "customer_key"}},
		},
		Columns: []domain.BlueprintColumn{
			{Name: "General", Type: "heading"},
			{Name: "name", DataType: "VARCHAR(255)", Type: "attribute"},
			{Name: "revenue", DataType: "NUMBER(38,2)", Type: "attribute"},
		},
	}
}

func testColumns() []domain.SourceColumn {
	return []domain.SourceColumn{
		{Name: "KUNNR", Type: "VARCHAR(10)"},
		{Name: "NAME1", Type: "VARCHAR(255)"},
		{Name: "UMSAT", Type: "NUMBER(38,2)"},
	}
}

func TestFieldRows_AllPendingWithoutMappings(t *testing.T) {
	rows := FieldRows(testBlueprint(), nil, testColumns())

	require.Len(t, rows, 4) // pk + primary + 2 attributes, heading excluded
	for _, r := range rows {
		assert.Equal(t, domain.FieldPending, r.Status, "field %s", r.Key)
	}
	assert.Equal(t, domain.StatusGrey, AggregateStatus(rows, ""))
}

func TestFieldRows_NoneSentinelStaysPending(t *testing.T) {
	mappings := map[domain.FieldKey]string{
		domain.ColumnFieldKey("name"): domain.NoneValue,
	}
	rows := FieldRows(testBlueprint(), mappings, testColumns())
	for _, r := range rows {
		if r.Key == domain.ColumnFieldKey("name") {
			assert.Equal(t, domain.FieldPending, r.Status)
		}
	}
}

func TestFieldRows_BoundAndPartialAggregate(t *testing.T) {
	mappings := map[domain.FieldKey]string{
		domain.TablePKFieldKey("customer_id"): "KUNNR",
		domain.ColumnFieldKey("name"):         "NAME1",
	}
	rows := FieldRows(testBlueprint(), mappings, testColumns())

	byKey := map[domain.FieldKey]FieldRow{}
	for _, r := range rows {
		byKey[r.Key] = r
	}
	assert.Equal(t, domain.FieldBound, byKey[domain.TablePKFieldKey("customer_id")].Status)
	assert.Equal(t, domain.FieldBound, byKey[domain.ColumnFieldKey("name")].Status)
	assert.Equal(t, domain.FieldPending, byKey[domain.ColumnFieldKey("revenue")].Status)

	assert.Equal(t, domain.StatusOrange, AggregateStatus(rows, "ACTIVE = 'N'"))
}

func TestFieldRows_FallbackToBlueprintDefinition(t *testing.T) {
	bp := testBlueprint()
	bp.TablePK[0].Binding = "kunnr" // persisted by a previous save

	rows := FieldRows(bp, nil, testColumns())
	for _, r := range rows {
		if r.Key == domain.TablePKFieldKey("customer_id") {
			assert.Equal(t, "KUNNR", r.Value)
			assert.Equal(t, domain.FieldBound, r.Status)
		}
	}
}

func TestFieldRows_KeyColumnExclusivity(t *testing.T) {
	mappings := map[domain.FieldKey]string{
		domain.TablePKFieldKey("customer_id"): "KUNNR",
		domain.ColumnFieldKey("name"):         "KUNNR", // consumed by the pk
	}
	rows := FieldRows(testBlueprint(), mappings, testColumns())

	for _, r := range rows {
		switch r.Key {
		case domain.TablePKFieldKey("customer_id"):
			// The mismatch lands on the attribute row, never the key row.
			assert.Equal(t, domain.FieldBound, r.Status)
		case domain.ColumnFieldKey("name"):
			assert.Equal(t, domain.FieldMismatch, r.Status)
			assert.Equal(t, ReasonBindingRule, r.Reason)
		}
	}
}

func TestFieldRows_DuplicateAttributeColumns(t *testing.T) {
	mappings := map[domain.FieldKey]string{
		domain.ColumnFieldKey("name"):    "NAME1",
		domain.ColumnFieldKey("revenue"): "NAME1",
	}
	rows := FieldRows(testBlueprint(), mappings, testColumns())

	mismatches := 0
	for _, r := range rows {
		if r.Status == domain.FieldMismatch {
			mismatches++
			assert.Equal(t, ReasonBindingRule, r.Reason)
		}
	}
	assert.Equal(t, 2, mismatches)
}

func TestFieldRows_TypeMismatchAndMissingColumn(t *testing.T) {
	mappings := map[domain.FieldKey]string{
		domain.ColumnFieldKey("revenue"): "NAME1", // string into number
		domain.ColumnFieldKey("name"):    "GONE",  // not in the table
	}
	rows := FieldRows(testBlueprint(), mappings, testColumns())

	for _, r := range rows {
		switch r.Key {
		case domain.ColumnFieldKey("revenue"):
			assert.Equal(t, domain.FieldMismatch, r.Status)
			assert.Equal(t, ReasonTypeMismatch, r.Reason)
		case domain.ColumnFieldKey("name"):
			assert.Equal(t, domain.FieldMismatch, r.Status)
			assert.Equal(t, ReasonColumnNotFound, r.Reason)
		}
	}
}

func TestFieldRows_NoColumnListSkipsTypeChecks(t *testing.T) {
	mappings := map[domain.FieldKey]string{
		domain.ColumnFieldKey("revenue"): "ANYTHING",
	}
	rows := FieldRows(testBlueprint(), mappings, nil)
	for _, r := range rows {
		if r.Key == domain.ColumnFieldKey("revenue") {
			assert.Equal(t, domain.FieldBound, r.Status)
		}
	}
}

func TestFieldRows_IngestTimeOnlyWhenDeclaredOrMapped(t *testing.T) {
	rows := FieldRows(testBlueprint(), nil, nil)
	for _, r := range rows {
		require.NotEqual(t, domain.FieldKeyIngestTime, r.Key)
	}

	mappings := map[domain.FieldKey]string{domain.FieldKeyIngestTime: "LOAD_TS"}
	rows = FieldRows(testBlueprint(), mappings, nil)
	found := false
	for _, r := range rows {
		if r.Key == domain.FieldKeyIngestTime {
			found = true
			assert.Equal(t, domain.FieldBound, r.Status)
		}
	}
	assert.True(t, found)
}

func TestAggregateStatus_GreenRequiresDeleteCondition(t *testing.T) {
	mappings := map[domain.FieldKey]string{
		domain.TablePKFieldKey("customer_id"):  "KUNNR",
		domain.PrimaryFieldKey("customer_key"): "KUNNR",
		domain.ColumnFieldKey("name"):          "NAME1",
		domain.ColumnFieldKey("revenue"):       "UMSAT",
	}
	rows := FieldRows(testBlueprint(), mappings, testColumns())

	assert.Equal(t, domain.StatusOrange, AggregateStatus(rows, ""))
	assert.Equal(t, domain.StatusOrange, AggregateStatus(rows, "   "))
	assert.Equal(t, domain.StatusGreen, AggregateStatus(rows, "LOEVM = 'X'"))
}

func TestAggregateStatus_MismatchStillCountsAsBound(t *testing.T) {
	mappings := map[domain.FieldKey]string{
		domain.TablePKFieldKey("customer_id"):  "KUNNR",
		domain.PrimaryFieldKey("customer_key"): "KUNNR",
		domain.ColumnFieldKey("name"):          "NAME1",
		domain.ColumnFieldKey("revenue"):       "NAME1", // type mismatch
	}
	rows := FieldRows(testBlueprint(), mappings, testColumns())

	// The sidebar aggregate ignores the mismatch distinction.
	assert.Equal(t, domain.StatusGreen, AggregateStatus(rows, "LOEVM = 'X'"))
}

func TestAggregateStatus_EmptyRowsAreGrey(t *testing.T) {
	assert.Equal(t, domain.StatusGrey, AggregateStatus(nil, "LOEVM = 'X'"))
}

func TestNormalizeType(t *testing.T) {
	cases := map[string]string{
		"NUMBER(38,0)":  "number",
		"decimal":       "number",
		"FLOAT8":        "number",
		"VARCHAR(255)":  "string",
		"TEXT":          "string",
		"VARIANT":       "string",
		"TIMESTAMP_NTZ": "datetime",
		"DATE":          "datetime",
		"BOOLEAN":       "boolean",
		" bool ":        "boolean",
	}
	for in, want := range cases {
		assert.Equal(t, want, NormalizeType(in), "input %q", in)
	}
}

func TestResolveExpression(t *testing.T) {
	bp := testBlueprint()
	bp.DeleteCondition = "  LOEVM = 'X' "

	assert.Equal(t, "LOEVM = 'X'", ResolveExpression(bp, nil, domain.FieldKeyDeleteCondition))

	mappings := map[domain.FieldKey]string{domain.FieldKeyDeleteCondition: " AEDAT IS NULL "}
	assert.Equal(t, "AEDAT IS NULL", ResolveExpression(bp, mappings, domain.FieldKeyDeleteCondition))

	// An explicit empty override clears the definition fallback.
	mappings[domain.FieldKeyDeleteCondition] = ""
	assert.Equal(t, "", ResolveExpression(bp, mappings, domain.FieldKeyDeleteCondition))
}

func TestMappingComplete(t *testing.T) {
	mappings := map[domain.FieldKey]string{
		domain.TablePKFieldKey("customer_id"):  "KUNNR",
		domain.PrimaryFieldKey("customer_key"): "KUNNR",
		domain.ColumnFieldKey("name"):          "NAME1",
		domain.ColumnFieldKey("revenue"):       "UMSAT",
	}
	assert.False(t, MappingComplete(testBlueprint(), mappings, testColumns()))

	mappings[domain.FieldKeyDeleteCondition] = "LOEVM = 'X'"
	assert.True(t, MappingComplete(testBlueprint(), mappings, testColumns()))

	delete(mappings, domain.ColumnFieldKey("revenue"))
	assert.False(t, MappingComplete(testBlueprint(), mappings, testColumns()))
}
