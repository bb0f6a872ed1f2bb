package domain

import "strings"

// BlueprintKey identifies one blueprint instance as "{source}.{name}".
// It is the key for every per-blueprint map in the wizard store.
type BlueprintKey string

// NewBlueprintKey builds the canonical key for a blueprint.
func NewBlueprintKey(source, name string) BlueprintKey {
	return BlueprintKey(source + "." + name)
}

// Source returns the source portion of the key (empty if malformed).
func (k BlueprintKey) Source() string {
	if i := strings.IndexByte(string(k), '.'); i >= 0 {
		return string(k[:i])
	}
	return ""
}

// Name returns the blueprint-name portion of the key.
func (k BlueprintKey) Name() string {
	if i := strings.IndexByte(string(k), '.'); i >= 0 {
		return string(k[i+1:])
	}
	return string(k)
}

// FieldBinding pairs a declared field name with its bound source column.
type FieldBinding struct {
	Name    string `json:"name"`
	Binding string `json:"binding"`
}

// KeyNode is a primary or secondary key node with its column bindings.
type KeyNode struct {
	Node     string         `json:"node"`
	Bindings []FieldBinding `json:"bindings"`
	Load     bool           `json:"load"`
}

// BlueprintColumn is a declared attribute/reference column of a blueprint.
type BlueprintColumn struct {
	Name        string `json:"name"`
	Binding     string `json:"binding"`
	Alias       string `json:"alias,omitempty"`
	DataType    string `json:"data_type"`
	Description string `json:"description,omitempty"`
	Type        string `json:"type"` // "attribute", "reference" or "heading"
}

// IsHeading reports whether the column is a section heading row, which is
// excluded from binding-completeness checks.
func (c BlueprintColumn) IsHeading() bool { return c.Type == "heading" }

// Blueprint is one blueprint definition as served by the engine backend.
// Binding* fields hold the physical source table the blueprint is bound to.
type Blueprint struct {
	ID                string            `json:"id"`
	Name              string            `json:"name"`
	Source            string            `json:"source"`
	Description       string            `json:"description,omitempty"`
	BindingDB         string            `json:"binding_db,omitempty"`
	BindingSchema     string            `json:"binding_schema,omitempty"`
	BindingObject     string            `json:"binding_object,omitempty"`
	TablePK           []FieldBinding    `json:"table_pk"`
	PrimaryNode       *KeyNode          `json:"primary_node,omitempty"`
	SecondaryNodes    []KeyNode         `json:"secondary_nodes"`
	Columns           []BlueprintColumn `json:"columns"`
	IngestTimeBinding string            `json:"ingest_time_binding,omitempty"`
	DeleteCondition   string            `json:"delete_condition,omitempty"`
	WhereClause       string            `json:"where_clause,omitempty"`
	MappingComplete   bool              `json:"mapping_complete,omitempty"`
	Deployed          bool              `json:"deployed,omitempty"`
}

// Key returns the blueprint's catalog key.
func (b *Blueprint) Key() BlueprintKey { return NewBlueprintKey(b.Source, b.ID) }

// Clone returns a deep copy of the blueprint. The wizard store hands out
// clones so readers never share slice memory with the stored definition.
func (b *Blueprint) Clone() *Blueprint {
	if b == nil {
		return nil
	}
	out := *b
	out.TablePK = append([]FieldBinding(nil), b.TablePK...)
	if b.PrimaryNode != nil {
		node := *b.PrimaryNode
		node.Bindings = append([]FieldBinding(nil), b.PrimaryNode.Bindings...)
		out.PrimaryNode = &node
	}
	if b.SecondaryNodes != nil {
		out.SecondaryNodes = make([]KeyNode, len(b.SecondaryNodes))
		for i, n := range b.SecondaryNodes {
			n.Bindings = append([]FieldBinding(nil), n.Bindings...)
			out.SecondaryNodes[i] = n
		}
	}
	out.Columns = append([]BlueprintColumn(nil), b.Columns...)
	return &out
}

// BlueprintDetail is the flattened catalog row used by the blueprint list page.
type BlueprintDetail struct {
	ID              string `json:"id"`
	Name            string `json:"name"`
	Source          string `json:"source"`
	BindingDB       string `json:"binding_db,omitempty"`
	BindingSchema   string `json:"binding_schema,omitempty"`
	BindingTable    string `json:"binding_table,omitempty"`
	ColumnCount     int    `json:"column_count"`
	MappingComplete bool   `json:"mapping_complete"`
	Deployed        bool   `json:"deployed"`
}

// BindingsUpdate is the partial payload for PUT /blueprint/bindings. Only
// changed top-level fields need to be present.
type BindingsUpdate map[string]interface{}
