package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"

	"uhe-console/internal/domain"
	"uhe-console/internal/service/wizard"
)

// decodeBody decodes a JSON request body into v. An empty body leaves v at
// its zero value.
func decodeBody(r *http.Request, v interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil && !errors.Is(err, io.EOF) {
		return domain.ErrValidation("invalid request body: %v", err)
	}
	return nil
}

// urlParam returns the unescaped chi route parameter. Blueprint keys contain
// dots and occasionally characters that arrive percent-encoded.
func urlParam(r *http.Request, name string) string {
	raw := chi.URLParam(r, name)
	if dec, err := url.PathUnescape(raw); err == nil {
		return dec
	}
	return raw
}

type blueprintView struct {
	Key     string                 `json:"key"`
	Source  string                 `json:"source"`
	Name    string                 `json:"name"`
	Status  domain.BlueprintStatus `json:"status"`
	Dirty   bool                   `json:"dirty"`
	Binding domain.DatabaseBinding `json:"binding"`
}

type sessionView struct {
	ID                string                `json:"id"`
	Open              bool                  `json:"open"`
	Step              string                `json:"step"`
	Deploying         bool                  `json:"deploying"`
	SelectedModels    []domain.CatalogModel `json:"selected_models"`
	SelectedBlueprint string                `json:"selected_blueprint"`
	Blueprints        []blueprintView       `json:"blueprints"`
}

func sessionViewOf(store *wizard.Store) sessionView {
	view := sessionView{
		ID:                store.ID(),
		Open:              store.IsOpen(),
		Step:              store.Step(),
		Deploying:         store.IsDeploying(),
		SelectedModels:    store.SelectedModels(),
		SelectedBlueprint: string(store.SelectedBlueprint()),
	}
	for _, key := range store.BlueprintKeys() {
		view.Blueprints = append(view.Blueprints, blueprintView{
			Key:     string(key),
			Source:  key.Source(),
			Name:    key.Name(),
			Status:  store.BlueprintStatus(key),
			Dirty:   store.GetDirtyState(key),
			Binding: store.DatabaseBinding(key),
		})
	}
	return view
}

func (h *Handler) openSession(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ModelIDs []string `json:"model_ids"`
	}
	if err := decodeBody(r, &req); err != nil {
		writeError(w, h.logger, err)
		return
	}
	models, err := h.catalog.GetModels(r.Context(), req.ModelIDs)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	store, err := h.wizard.OpenSession(r.Context(), models)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, sessionViewOf(store))
}

func (h *Handler) getSession(w http.ResponseWriter, r *http.Request) {
	store, err := h.wizard.Store(chi.URLParam(r, "sessionID"))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, sessionViewOf(store))
}

func (h *Handler) destroySession(w http.ResponseWriter, r *http.Request) {
	if err := h.wizard.DestroySession(chi.URLParam(r, "sessionID")); err != nil {
		writeError(w, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) closeSession(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")
	if err := h.wizard.CloseSession(sessionID); err != nil {
		writeError(w, h.logger, err)
		return
	}
	store, err := h.wizard.Store(sessionID)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, sessionViewOf(store))
}

// sessionMetadata serves the cached source metadata lists for the binding
// dropdowns: databases, then schemas/tables/columns as db/schema/table query
// parameters narrow the scope.
func (h *Handler) sessionMetadata(w http.ResponseWriter, r *http.Request) {
	store, err := h.wizard.Store(chi.URLParam(r, "sessionID"))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	q := r.URL.Query()
	db, schema, table := q.Get("db"), q.Get("schema"), q.Get("table")

	out := map[string]interface{}{"databases": store.Databases()}
	if db != "" {
		out["schemas"] = store.Schemas(db)
	}
	if db != "" && schema != "" {
		out["tables"] = store.Tables(db, schema)
	}
	if db != "" && schema != "" && table != "" {
		out["columns"] = store.Columns(db, schema, table)
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handler) selectBlueprint(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")
	key := domain.BlueprintKey(urlParam(r, "blueprintKey"))
	if err := h.wizard.SelectBlueprint(sessionID, key); err != nil {
		writeError(w, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) setTableBinding(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")
	key := domain.BlueprintKey(urlParam(r, "blueprintKey"))
	var req struct {
		DB     string `json:"db"`
		Schema string `json:"schema"`
		Table  string `json:"table"`
	}
	if err := decodeBody(r, &req); err != nil {
		writeError(w, h.logger, err)
		return
	}
	if err := h.wizard.SetTableBinding(r.Context(), sessionID, key, req.DB, req.Schema, req.Table); err != nil {
		writeError(w, h.logger, err)
		return
	}
	h.writeFieldStatus(w, sessionID, key)
}

func (h *Handler) setFieldMapping(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")
	fk := domain.FieldKey(urlParam(r, "fieldKey"))
	var req struct {
		Value string `json:"value"`
	}
	if err := decodeBody(r, &req); err != nil {
		writeError(w, h.logger, err)
		return
	}
	if err := h.wizard.SetFieldMapping(sessionID, fk, req.Value); err != nil {
		writeError(w, h.logger, err)
		return
	}
	store, err := h.wizard.Store(sessionID)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	h.writeFieldStatus(w, sessionID, store.SelectedBlueprint())
}

type fieldRowView struct {
	Key          string             `json:"key"`
	Category     string             `json:"category"`
	Name         string             `json:"name"`
	Node         string             `json:"node,omitempty"`
	ExpectedType string             `json:"expected_type,omitempty"`
	Value        string             `json:"value"`
	Status       domain.FieldStatus `json:"status"`
	Reason       string             `json:"reason,omitempty"`
}

func (h *Handler) fieldStatus(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")
	key := domain.BlueprintKey(urlParam(r, "blueprintKey"))
	h.writeFieldStatus(w, sessionID, key)
}

func (h *Handler) writeFieldStatus(w http.ResponseWriter, sessionID string, key domain.BlueprintKey) {
	rows, status, err := h.wizard.FieldStatus(sessionID, key)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	views := make([]fieldRowView, len(rows))
	for i, row := range rows {
		views[i] = fieldRowView{
			Key:          string(row.Key),
			Category:     row.Category,
			Name:         row.Name,
			Node:         row.Node,
			ExpectedType: row.ExpectedType,
			Value:        row.Value,
			Status:       row.Status,
			Reason:       row.Reason,
		}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"blueprint": string(key),
		"status":    status,
		"fields":    views,
	})
}

func (h *Handler) saveBindings(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")
	key := domain.BlueprintKey(urlParam(r, "blueprintKey"))
	if err := h.wizard.SaveBindings(r.Context(), sessionID, key); err != nil {
		writeError(w, h.logger, err)
		return
	}
	h.writeFieldStatus(w, sessionID, key)
}

func (h *Handler) startDeploy(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")
	var req struct {
		ReplaceObjects bool `json:"replace_objects"`
		RunFullRefresh bool `json:"run_full_refresh"`
	}
	if err := decodeBody(r, &req); err != nil {
		writeError(w, h.logger, err)
		return
	}
	if err := h.wizard.Deploy(r.Context(), sessionID, req.ReplaceObjects, req.RunFullRefresh); err != nil {
		writeError(w, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusAccepted)
}

func (h *Handler) deployProgress(w http.ResponseWriter, r *http.Request) {
	view, err := h.wizard.Progress(chi.URLParam(r, "sessionID"))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (h *Handler) cancelDeploy(w http.ResponseWriter, r *http.Request) {
	if err := h.wizard.RequestCancel(chi.URLParam(r, "sessionID")); err != nil {
		writeError(w, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusAccepted)
}
