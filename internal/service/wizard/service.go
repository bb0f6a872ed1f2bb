package wizard

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"uhe-console/internal/backend"
	"uhe-console/internal/domain"
)

// backendClient is the slice of the engine backend API the wizard needs.
type backendClient interface {
	LoadModalData(ctx context.Context, modelIDs []string) (*domain.ModalData, error)
	GetBlueprintBindings(ctx context.Context, blueprintID string) (*domain.Blueprint, error)
	UpdateBlueprintBindings(ctx context.Context, blueprintID string, bindings domain.BindingsUpdate) error
	ListSchemas(ctx context.Context, db string) ([]string, error)
	ListTables(ctx context.Context, db, schema string) ([]string, error)
	ListColumns(ctx context.Context, db, schema, table string) ([]domain.SourceColumn, error)
	DeploymentSummary(ctx context.Context, modelIDs []string) (*domain.DeploymentSummary, error)
	DeployStaged(ctx context.Context, req domain.DeployRequest) (*backend.Stream, error)
}

// session couples one store with its restorer, the live deploy reconciler
// and the relay subscribers.
type session struct {
	store    *Store
	restorer *Restorer

	mu         sync.Mutex
	reconciler *Reconciler
	outcome    *domain.CompleteEvent
	subs       map[chan backend.Event]struct{}
}

// Service manages wizard sessions and orchestrates all wizard-related
// backend calls. The store itself performs no I/O.
type Service struct {
	client backendClient
	logger *slog.Logger

	// onComplete, when set, is invoked with the terminal summary of every
	// finished deployment run.
	onComplete func(*domain.CompleteEvent)

	mu       sync.Mutex
	sessions map[string]*session
}

// NewService creates the wizard service.
func NewService(client backendClient, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		client:   client,
		logger:   logger.With("component", "wizard"),
		sessions: make(map[string]*session),
	}
}

// OnComplete registers a hook receiving the terminal summary of each run.
// It must be set before the first Deploy call.
func (s *Service) OnComplete(fn func(*domain.CompleteEvent)) {
	s.onComplete = fn
}

func (s *Service) session(id string) (*session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[id]
	if !ok {
		return nil, domain.ErrNotFound("wizard session %q not found", id)
	}
	return sess, nil
}

// Store returns the session store for direct reads by handlers.
func (s *Service) Store(sessionID string) (*Store, error) {
	sess, err := s.session(sessionID)
	if err != nil {
		return nil, err
	}
	return sess.store, nil
}

// OpenSession creates a wizard session for the selected models, loads the
// modal data in one backend call, populates the store and restores persisted
// bindings. Dirty tracking starts only after population settles.
func (s *Service) OpenSession(ctx context.Context, models []domain.CatalogModel) (*Store, error) {
	if len(models) == 0 {
		return nil, domain.ErrValidation("at least one model must be selected")
	}
	ids := make([]string, 0, len(models))
	for _, m := range models {
		ids = append(ids, m.ID)
	}

	modal, err := s.client.LoadModalData(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("load modal data: %w", err)
	}

	sess := &session{
		store:    NewStore(),
		restorer: NewRestorer(),
		subs:     make(map[chan backend.Event]struct{}),
	}
	store := sess.store
	store.Open("mapping", models)

	store.SetDatabases(modal.Databases)
	for db, schemas := range modal.DatabaseSchemas {
		store.SetSchemas(db, schemas)
	}
	for key, tables := range modal.SchemaTables {
		names := make([]string, 0, len(tables))
		for _, t := range tables {
			names = append(names, t.Name)
		}
		db, schema, ok := splitSchemaKey(key)
		if ok {
			store.SetTables(db, schema, names)
		}
	}
	for key, cols := range modal.TableFields {
		db, schema, table, ok := splitTableKey(key)
		if ok {
			store.SetColumns(db, schema, table, cols)
		}
	}

	var firstKey domain.BlueprintKey
	for _, bps := range modal.Blueprints {
		for i := range bps {
			bp := bps[i]
			store.PutBlueprint(&bp)
			sess.restorer.Restore(store, &bp)
			if firstKey == "" {
				firstKey = bp.Key()
			}
		}
	}
	if firstKey != "" {
		store.SelectBlueprint(firstKey)
	}

	// Compute initial sidebar statuses from the restored state.
	for _, key := range store.BlueprintKeys() {
		s.recomputeStatus(store, key)
	}

	store.SettleInitialLoad()

	s.mu.Lock()
	s.sessions[store.ID()] = sess
	s.mu.Unlock()

	s.logger.Info("wizard session opened", "session_id", store.ID(), "models", len(models), "blueprints", len(store.BlueprintKeys()))
	return store, nil
}

// CloseSession closes the wizard window; while deploying this minimizes
// instead, and the session (and its stream) keeps running.
func (s *Service) CloseSession(sessionID string) error {
	sess, err := s.session(sessionID)
	if err != nil {
		return err
	}
	sess.store.Close()
	return nil
}

// DestroySession resets the store and removes the session.
func (s *Service) DestroySession(sessionID string) error {
	sess, err := s.session(sessionID)
	if err != nil {
		return err
	}
	sess.store.Reset()
	s.mu.Lock()
	delete(s.sessions, sessionID)
	s.mu.Unlock()
	return nil
}

// SelectBlueprint switches the wizard's selected blueprint.
func (s *Service) SelectBlueprint(sessionID string, key domain.BlueprintKey) error {
	sess, err := s.session(sessionID)
	if err != nil {
		return err
	}
	if sess.store.Blueprint(key) == nil {
		return domain.ErrNotFound("blueprint %q not in session", key)
	}
	sess.store.SelectBlueprint(key)
	return nil
}

// SetTableBinding records the user's database/schema/table choice for a
// blueprint, clears field mappings when the table actually changed, and
// fills the metadata caches on demand.
func (s *Service) SetTableBinding(ctx context.Context, sessionID string, key domain.BlueprintKey, db, schema, table string) error {
	sess, err := s.session(sessionID)
	if err != nil {
		return err
	}
	store := sess.store

	prev := store.DatabaseBinding(key)
	store.SetDatabaseBinding(key, db, schema, table, true)

	// Column choices made against the old table are meaningless now.
	if prev.Table != "" && prev.Table != table {
		store.ClearFieldMappings(key)
		sess.restorer.Forget(key)
	}

	if db != "" && store.Schemas(db) == nil {
		schemas, err := s.client.ListSchemas(ctx, db)
		if err != nil {
			return err
		}
		store.SetSchemas(db, schemas)
	}
	if db != "" && schema != "" && store.Tables(db, schema) == nil {
		tables, err := s.client.ListTables(ctx, db, schema)
		if err != nil {
			return err
		}
		store.SetTables(db, schema, tables)
	}
	if db != "" && schema != "" && table != "" && store.Columns(db, schema, table) == nil {
		cols, err := s.client.ListColumns(ctx, db, schema, table)
		if err != nil {
			return err
		}
		store.SetColumns(db, schema, table, cols)
	}

	s.recomputeStatus(store, key)
	return nil
}

// SetFieldMapping writes one field value for the selected blueprint and
// recomputes its status.
func (s *Service) SetFieldMapping(sessionID string, fk domain.FieldKey, value string) error {
	sess, err := s.session(sessionID)
	if err != nil {
		return err
	}
	store := sess.store
	store.SetFieldMapping(fk, value, true)
	s.recomputeStatus(store, store.SelectedBlueprint())
	return nil
}

// FieldStatus computes the field rows and aggregate status for a blueprint.
func (s *Service) FieldStatus(sessionID string, key domain.BlueprintKey) ([]FieldRow, domain.BlueprintStatus, error) {
	sess, err := s.session(sessionID)
	if err != nil {
		return nil, "", err
	}
	store := sess.store
	bp := store.Blueprint(key)
	if bp == nil {
		return nil, "", domain.ErrNotFound("blueprint %q not in session", key)
	}
	rows, status := s.computeStatus(store, key, bp)
	return rows, status, nil
}

func (s *Service) computeStatus(store *Store, key domain.BlueprintKey, bp *domain.Blueprint) ([]FieldRow, domain.BlueprintStatus) {
	mappings := store.FieldMappings(key)
	binding := store.DatabaseBinding(key)
	var cols []domain.SourceColumn
	if binding.IsComplete() {
		cols = store.Columns(binding.DB, binding.Schema, binding.Table)
	}
	rows := FieldRows(bp, mappings, cols)
	status := AggregateStatus(rows, ResolveExpression(bp, mappings, domain.FieldKeyDeleteCondition))
	store.SetBlueprintStatus(key, status)
	return rows, status
}

func (s *Service) recomputeStatus(store *Store, key domain.BlueprintKey) {
	if bp := store.Blueprint(key); bp != nil {
		s.computeStatus(store, key, bp)
	}
}

// SaveBindings persists a blueprint's bindings to the backend. Only changed
// top-level sections are sent. The mapping_complete flag is evaluated here,
// at save time.
func (s *Service) SaveBindings(ctx context.Context, sessionID string, key domain.BlueprintKey) error {
	sess, err := s.session(sessionID)
	if err != nil {
		return err
	}
	store := sess.store
	bp := store.Blueprint(key)
	if bp == nil {
		return domain.ErrNotFound("blueprint %q not in session", key)
	}
	binding := store.DatabaseBinding(key)
	if !binding.IsComplete() {
		return domain.ErrValidation("select a database, schema and table before saving")
	}

	mappings := store.FieldMappings(key)
	var cols []domain.SourceColumn
	if binding.IsComplete() {
		cols = store.Columns(binding.DB, binding.Schema, binding.Table)
	}

	update := buildBindingsUpdate(bp, binding, mappings)
	update["mapping_complete"] = MappingComplete(bp, mappings, cols)

	if err := s.client.UpdateBlueprintBindings(ctx, bp.ID, update); err != nil {
		return err
	}

	store.UpdateBlueprint(key, func(live *domain.Blueprint) {
		applyMappingsToBlueprint(live, binding, mappings)
	})
	store.SetDirtyState(key, false)
	s.recomputeStatus(store, key)
	s.logger.Info("blueprint bindings saved", "session_id", sessionID, "blueprint", key)
	return nil
}
