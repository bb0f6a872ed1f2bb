// Package wizard implements the model-catalog wizard's state: the session
// store, field binding reconciliation and deployment progress reconciliation.
// The store is the single source of truth for one wizard session; every
// mutation is a synchronous, total function over plain values, and the
// consuming handlers orchestrate all network I/O.
package wizard

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"uhe-console/internal/domain"
)

// Store holds all state for one wizard session. It is created per session
// and torn down by Reset. A single mutex guards every field: the store is
// shared between page handlers and the deploy stream relay goroutine.
type Store struct {
	mu sync.Mutex

	id  string
	now func() time.Time

	open      bool
	minimized bool
	step      string
	deploying bool

	// initialLoadSettled gates dirty tracking: programmatic population
	// during wizard open must not raise "unsaved changes" warnings.
	initialLoadSettled bool

	selectedModels    []domain.CatalogModel
	selectedBlueprint domain.BlueprintKey

	blueprints map[domain.BlueprintKey]*domain.Blueprint
	dbBindings map[domain.BlueprintKey]domain.DatabaseBinding
	mappings   map[domain.BlueprintKey]map[domain.FieldKey]string
	dirty      map[domain.BlueprintKey]bool
	statuses   map[domain.BlueprintKey]domain.BlueprintStatus

	// Cached metadata lookups, keyed the way the engine keys them:
	// db, "DB.SCHEMA" and "DB.SCHEMA.TABLE", all upper-cased.
	databases []string
	schemas   map[string][]string
	tables    map[string][]string
	columns   map[string][]domain.SourceColumn

	logs     []domain.LogEntry
	progress float64

	cancelRequested bool
}

// NewStore creates an empty wizard session store.
func NewStore() *Store {
	s := &Store{
		id:  uuid.NewString(),
		now: time.Now,
	}
	s.resetLocked()
	return s
}

// ID returns the session's identifier.
func (s *Store) ID() string { return s.id }

func (s *Store) resetLocked() {
	s.open = false
	s.minimized = false
	s.step = ""
	s.deploying = false
	s.initialLoadSettled = false
	s.selectedModels = nil
	s.selectedBlueprint = ""
	s.blueprints = make(map[domain.BlueprintKey]*domain.Blueprint)
	s.dbBindings = make(map[domain.BlueprintKey]domain.DatabaseBinding)
	s.mappings = make(map[domain.BlueprintKey]map[domain.FieldKey]string)
	s.dirty = make(map[domain.BlueprintKey]bool)
	s.statuses = make(map[domain.BlueprintKey]domain.BlueprintStatus)
	s.databases = nil
	s.schemas = make(map[string][]string)
	s.tables = make(map[string][]string)
	s.columns = make(map[string][]domain.SourceColumn)
	s.logs = nil
	s.progress = 0
	s.cancelRequested = false
}

// Reset clears every field of the session.
func (s *Store) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.resetLocked()
}

// Open starts (or re-opens) the wizard at the given step with the selected
// models. Re-opening while minimized just restores the window.
func (s *Store) Open(step string, models []domain.CatalogModel) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.open = true
	s.minimized = false
	s.step = step
	if len(models) > 0 {
		s.selectedModels = models
	}
}

// Close closes the wizard. While a deployment is in progress it degrades to
// minimize so background progress is not lost from the user's view.
func (s *Store) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.deploying {
		s.minimized = true
		return
	}
	s.open = false
	s.minimized = false
}

// Minimize hides the wizard window without ending the session.
func (s *Store) Minimize() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.minimized = true
}

// IsOpen reports whether the wizard window is open (and not minimized).
func (s *Store) IsOpen() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.open && !s.minimized
}

// Step returns the wizard's current step.
func (s *Store) Step() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.step
}

// SetStep moves the wizard to another step.
func (s *Store) SetStep(step string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.step = step
}

// SelectedModels returns the models chosen on the catalog page.
func (s *Store) SelectedModels() []domain.CatalogModel {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.CatalogModel, len(s.selectedModels))
	copy(out, s.selectedModels)
	return out
}

// SettleInitialLoad marks programmatic population as finished; binding
// writes after this point raise dirty flags.
func (s *Store) SettleInitialLoad() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.initialLoadSettled = true
}

// SetDeploying flags a deployment run as started or finished.
func (s *Store) SetDeploying(v bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deploying = v
}

// IsDeploying reports whether a deployment run is in progress.
func (s *Store) IsDeploying() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.deploying
}

// RequestCancel flips the local cancel flag. The backend job is not
// aborted; the flag only drives a user-facing notice.
func (s *Store) RequestCancel() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cancelRequested = true
}

// CancelRequested reports whether the user asked to cancel the deployment.
func (s *Store) CancelRequested() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cancelRequested
}

// --- blueprints and selection ---

// PutBlueprint stores a blueprint definition under its catalog key. The
// store keeps its own copy; the caller's value stays detached.
func (s *Store) PutBlueprint(bp *domain.Blueprint) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.blueprints[bp.Key()] = bp.Clone()
}

// Blueprint returns a detached copy of the stored definition for a key, or
// nil. Copies keep readers off the shared memory; writes go through
// UpdateBlueprint.
func (s *Store) Blueprint(key domain.BlueprintKey) *domain.Blueprint {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.blueprints[key].Clone()
}

// UpdateBlueprint applies fn to the stored definition under the store lock.
// It reports whether the key was present.
func (s *Store) UpdateBlueprint(key domain.BlueprintKey, fn func(*domain.Blueprint)) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	bp, ok := s.blueprints[key]
	if !ok {
		return false
	}
	fn(bp)
	return true
}

// BlueprintKeys returns every stored blueprint key.
func (s *Store) BlueprintKeys() []domain.BlueprintKey {
	s.mu.Lock()
	defer s.mu.Unlock()
	keys := make([]domain.BlueprintKey, 0, len(s.blueprints))
	for k := range s.blueprints {
		keys = append(keys, k)
	}
	return keys
}

// SelectBlueprint makes key the currently selected blueprint.
func (s *Store) SelectBlueprint(key domain.BlueprintKey) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.selectedBlueprint = key
}

// SelectedBlueprint returns the currently selected blueprint key.
func (s *Store) SelectedBlueprint() domain.BlueprintKey {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.selectedBlueprint
}

// --- database bindings ---

// SetDatabaseBinding overwrites the physical binding for a blueprint. The
// dirty flag is raised only when the tuple actually changed; unconditional
// dirtying would make "Unsaved changes" warnings fire on read-only renders.
func (s *Store) SetDatabaseBinding(key domain.BlueprintKey, db, schema, table string, markDirty bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	next := domain.DatabaseBinding{DB: db, Schema: schema, Table: table}
	prev := s.dbBindings[key]
	s.dbBindings[key] = next
	if markDirty && next != prev && s.initialLoadSettled {
		s.dirty[key] = true
	}
}

// DatabaseBinding returns the binding for a key (zero value if unset).
func (s *Store) DatabaseBinding(key domain.BlueprintKey) domain.DatabaseBinding {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dbBindings[key]
}

// ClearFieldMappings drops every field mapping for a blueprint. Used when
// the user switches the bound table, which invalidates column choices.
func (s *Store) ClearFieldMappings(key domain.BlueprintKey) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.mappings, key)
}

// --- field mappings ---

// SetBindingMappings applies a functional update to the currently selected
// blueprint's field map. Values are canonicalized on write. The dirty flag
// lands on the currently selected blueprint.
func (s *Store) SetBindingMappings(update func(map[domain.FieldKey]string), markDirty bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := s.selectedBlueprint
	if key == "" {
		return
	}
	m := s.mappings[key]
	if m == nil {
		m = make(map[domain.FieldKey]string)
		s.mappings[key] = m
	}
	update(m)
	for fk, v := range m {
		m[fk] = domain.CanonicalColumn(v)
	}
	if markDirty && s.initialLoadSettled {
		s.dirty[key] = true
	}
}

// SetFieldMapping writes one field value for the selected blueprint.
func (s *Store) SetFieldMapping(fk domain.FieldKey, value string, markDirty bool) {
	s.SetBindingMappings(func(m map[domain.FieldKey]string) {
		m[fk] = value
	}, markDirty)
}

// FieldMappings returns a copy of one blueprint's field map.
func (s *Store) FieldMappings(key domain.BlueprintKey) map[domain.FieldKey]string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[domain.FieldKey]string, len(s.mappings[key]))
	for k, v := range s.mappings[key] {
		out[k] = v
	}
	return out
}

// --- dirty and status ---

// SetDirtyState sets a blueprint's dirty flag directly (used after save).
func (s *Store) SetDirtyState(key domain.BlueprintKey, dirty bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if dirty {
		s.dirty[key] = true
	} else {
		delete(s.dirty, key)
	}
}

// GetDirtyState reports a blueprint's dirty flag; unknown keys are clean.
func (s *Store) GetDirtyState(key domain.BlueprintKey) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dirty[key]
}

// SetBlueprintStatus stores the aggregate sidebar status for a blueprint.
func (s *Store) SetBlueprintStatus(key domain.BlueprintKey, status domain.BlueprintStatus) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.statuses[key] = status
}

// BlueprintStatus returns the aggregate status, defaulting to grey.
func (s *Store) BlueprintStatus(key domain.BlueprintKey) domain.BlueprintStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	if st, ok := s.statuses[key]; ok {
		return st
	}
	return domain.StatusGrey
}

// --- cached metadata lookups ---

// SetDatabases caches the database list.
func (s *Store) SetDatabases(dbs []string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.databases = dbs
}

// Databases returns the cached database list.
func (s *Store) Databases() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.databases
}

// SetSchemas caches the schema list for one database.
func (s *Store) SetSchemas(db string, schemas []string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.schemas[domain.CanonicalColumn(db)] = schemas
}

// Schemas returns the cached schemas for a database (nil if not loaded).
func (s *Store) Schemas(db string) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.schemas[domain.CanonicalColumn(db)]
}

// SetTables caches the table list for one schema.
func (s *Store) SetTables(db, schema string, tables []string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tables[domain.CanonicalColumn(db+"."+schema)] = tables
}

// Tables returns the cached tables for a schema (nil if not loaded).
func (s *Store) Tables(db, schema string) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tables[domain.CanonicalColumn(db+"."+schema)]
}

// SetColumns caches the column list for one table.
func (s *Store) SetColumns(db, schema, table string, cols []domain.SourceColumn) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.columns[domain.CanonicalColumn(db+"."+schema+"."+table)] = cols
}

// Columns returns the cached columns for a table (nil if not loaded).
func (s *Store) Columns(db, schema, table string) []domain.SourceColumn {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.columns[domain.CanonicalColumn(db+"."+schema+"."+table)]
}

// --- deployment log and progress ---

// AppendLog appends one entry to the deployment log. A zero timestamp
// defaults to the current time.
func (s *Store) AppendLog(message, level, step, objectName string, ts time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if ts.IsZero() {
		ts = s.now()
	}
	s.logs = append(s.logs, domain.LogEntry{
		Message:    message,
		Level:      level,
		Step:       step,
		ObjectName: objectName,
		Timestamp:  ts,
	})
}

// ClearLogs drops the log at the start of a new run.
func (s *Store) ClearLogs() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.logs = nil
}

// Logs returns a copy of the deployment log.
func (s *Store) Logs() []domain.LogEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.LogEntry, len(s.logs))
	copy(out, s.logs)
	return out
}

// SetDeploymentProgress stores the 0-100 progress scalar. Last write wins;
// callers recompute and push explicitly.
func (s *Store) SetDeploymentProgress(v float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if v < 0 {
		v = 0
	}
	if v > 100 {
		v = 100
	}
	s.progress = v
}

// DeploymentProgress returns the progress scalar. It is readable whether or
// not the deploy view is open, so a floating indicator can track background
// runs.
func (s *Store) DeploymentProgress() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.progress
}
