package wizard

import (
	"strings"

	"uhe-console/internal/domain"
)

// splitSchemaKey splits a "DB.SCHEMA" cache key.
func splitSchemaKey(key string) (db, schema string, ok bool) {
	parts := strings.SplitN(key, ".", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", false
	}
	return parts[0], parts[1], true
}

// splitTableKey splits a "DB.SCHEMA.TABLE" cache key.
func splitTableKey(key string) (db, schema, table string, ok bool) {
	parts := strings.SplitN(key, ".", 3)
	if len(parts) != 3 || parts[0] == "" || parts[1] == "" || parts[2] == "" {
		return "", "", "", false
	}
	return parts[0], parts[1], parts[2], true
}

// buildBindingsUpdate assembles the partial PUT payload: the physical
// binding when it changed, and each structural section that has at least one
// live mapping override.
func buildBindingsUpdate(bp *domain.Blueprint, binding domain.DatabaseBinding, mappings map[domain.FieldKey]string) domain.BindingsUpdate {
	update := domain.BindingsUpdate{}

	if binding.DB != bp.BindingDB {
		update["binding_db"] = binding.DB
	}
	if binding.Schema != bp.BindingSchema {
		update["binding_schema"] = binding.Schema
	}
	if binding.Table != bp.BindingObject {
		update["binding_object"] = binding.Table
	}

	if sectionTouched(mappings, "table_pk_") {
		pk := make([]domain.FieldBinding, len(bp.TablePK))
		for i, f := range bp.TablePK {
			pk[i] = domain.FieldBinding{
				Name:    f.Name,
				Binding: resolveValue(mappings, domain.TablePKFieldKey(f.Name), f.Binding),
			}
		}
		update["table_pk"] = pk
	}

	if bp.PrimaryNode != nil && sectionTouched(mappings, "primary_") {
		node := domain.KeyNode{Node: bp.PrimaryNode.Node, Load: bp.PrimaryNode.Load}
		for _, b := range bp.PrimaryNode.Bindings {
			node.Bindings = append(node.Bindings, domain.FieldBinding{
				Name:    b.Name,
				Binding: resolveValue(mappings, domain.PrimaryFieldKey(b.Name), b.Binding),
			})
		}
		update["primary_node"] = node
	}

	if sectionTouched(mappings, "secondary_") {
		nodes := make([]domain.KeyNode, 0, len(bp.SecondaryNodes))
		for _, n := range bp.SecondaryNodes {
			node := domain.KeyNode{Node: n.Node, Load: n.Load}
			for _, b := range n.Bindings {
				node.Bindings = append(node.Bindings, domain.FieldBinding{
					Name:    b.Name,
					Binding: resolveValue(mappings, domain.SecondaryFieldKey(n.Node, b.Name), b.Binding),
				})
			}
			nodes = append(nodes, node)
		}
		update["secondary_nodes"] = nodes
	}

	if sectionTouched(mappings, "column_") {
		cols := make([]domain.BlueprintColumn, len(bp.Columns))
		copy(cols, bp.Columns)
		for i := range cols {
			if cols[i].IsHeading() {
				continue
			}
			cols[i].Binding = resolveValue(mappings, domain.ColumnFieldKey(cols[i].Name), cols[i].Binding)
		}
		update["columns"] = cols
	}

	if v, ok := mappings[domain.FieldKeyIngestTime]; ok {
		update["ingest_time_binding"] = domain.CanonicalColumn(v)
	}
	if v, ok := mappings[domain.FieldKeyDeleteCondition]; ok {
		update["delete_condition"] = strings.TrimSpace(v)
	}
	if v, ok := mappings[domain.FieldKeyWhereClause]; ok {
		update["where_clause"] = strings.TrimSpace(v)
	}

	return update
}

func sectionTouched(mappings map[domain.FieldKey]string, prefix string) bool {
	for k := range mappings {
		if strings.HasPrefix(string(k), prefix) {
			return true
		}
	}
	return false
}

// applyMappingsToBlueprint folds the saved values back into the stored
// definition so the definition fallback stays consistent after a save.
func applyMappingsToBlueprint(bp *domain.Blueprint, binding domain.DatabaseBinding, mappings map[domain.FieldKey]string) {
	bp.BindingDB = binding.DB
	bp.BindingSchema = binding.Schema
	bp.BindingObject = binding.Table

	for i, f := range bp.TablePK {
		bp.TablePK[i].Binding = resolveValue(mappings, domain.TablePKFieldKey(f.Name), f.Binding)
	}
	if bp.PrimaryNode != nil {
		for i, b := range bp.PrimaryNode.Bindings {
			bp.PrimaryNode.Bindings[i].Binding = resolveValue(mappings, domain.PrimaryFieldKey(b.Name), b.Binding)
		}
	}
	for ni := range bp.SecondaryNodes {
		n := &bp.SecondaryNodes[ni]
		for i, b := range n.Bindings {
			n.Bindings[i].Binding = resolveValue(mappings, domain.SecondaryFieldKey(n.Node, b.Name), b.Binding)
		}
	}
	for i := range bp.Columns {
		if bp.Columns[i].IsHeading() {
			continue
		}
		bp.Columns[i].Binding = resolveValue(mappings, domain.ColumnFieldKey(bp.Columns[i].Name), bp.Columns[i].Binding)
	}
	if v, ok := mappings[domain.FieldKeyIngestTime]; ok {
		bp.IngestTimeBinding = domain.CanonicalColumn(v)
	}
	if v, ok := mappings[domain.FieldKeyDeleteCondition]; ok {
		bp.DeleteCondition = strings.TrimSpace(v)
	}
	if v, ok := mappings[domain.FieldKeyWhereClause]; ok {
		bp.WhereClause = strings.TrimSpace(v)
	}
}
