package ui

import (
	"errors"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-chi/chi/v5"

	"uhe-console/internal/domain"
	"uhe-console/internal/service/wizard"
)

const fieldFormPrefix = "field_"

func (h *Handler) OpenWizardSubmit(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.renderServiceError(w, r, domain.ErrValidation("invalid form submission"))
		return
	}
	ids := r.Form["model_id"]
	models, err := h.Catalog.GetModels(r.Context(), ids)
	if err != nil {
		h.renderServiceError(w, r, err)
		return
	}
	store, err := h.Wizard.OpenSession(r.Context(), models)
	if err != nil {
		h.renderServiceError(w, r, err)
		return
	}
	http.Redirect(w, r, "/ui/wizard/"+store.ID(), http.StatusSeeOther)
}

func (h *Handler) WizardMapping(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")
	store, err := h.Wizard.Store(sessionID)
	if err != nil {
		h.renderServiceError(w, r, err)
		return
	}

	// A deploying session lands on the progress page, not the mapping step.
	if store.IsDeploying() {
		http.Redirect(w, r, "/ui/wizard/"+sessionID+"/deploy", http.StatusSeeOther)
		return
	}

	if raw := r.URL.Query().Get("blueprint"); raw != "" {
		if err := h.Wizard.SelectBlueprint(sessionID, domain.BlueprintKey(raw)); err != nil {
			h.renderServiceError(w, r, err)
			return
		}
	}

	d := wizardMappingData{
		SessionID: sessionID,
		Models:    store.SelectedModels(),
	}

	selectedKey := store.SelectedBlueprint()
	for _, key := range store.BlueprintKeys() {
		d.Sidebar = append(d.Sidebar, wizardSidebarItem{
			Key:    string(key),
			Name:   key.Name(),
			Source: key.Source(),
			Status: store.BlueprintStatus(key),
			Dirty:  store.GetDirtyState(key),
			Active: key == selectedKey,
		})
	}

	if bp := store.Blueprint(selectedKey); bp != nil {
		rows, status, err := h.Wizard.FieldStatus(sessionID, selectedKey)
		if err != nil {
			h.renderServiceError(w, r, err)
			return
		}
		binding := store.DatabaseBinding(selectedKey)
		mappings := store.FieldMappings(selectedKey)
		sel := wizardSelectedData{
			Key:             string(selectedKey),
			Name:            selectedKey.Name(),
			Source:          selectedKey.Source(),
			Status:          status,
			Binding:         binding,
			Databases:       store.Databases(),
			Rows:            rows,
			DeleteCondition: wizard.ResolveExpression(bp, mappings, domain.FieldKeyDeleteCondition),
			WhereClause:     wizard.ResolveExpression(bp, mappings, domain.FieldKeyWhereClause),
			Dirty:           store.GetDirtyState(selectedKey),
		}
		if binding.DB != "" {
			sel.Schemas = store.Schemas(binding.DB)
		}
		if binding.DB != "" && binding.Schema != "" {
			sel.Tables = store.Tables(binding.DB, binding.Schema)
		}
		if binding.IsComplete() {
			sel.Columns = store.Columns(binding.DB, binding.Schema, binding.Table)
		}
		d.Selected = &sel
	}

	renderHTML(w, http.StatusOK, wizardMappingPage(r, d))
}

func wizardBlueprintParam(r *http.Request) domain.BlueprintKey {
	return domain.BlueprintKey(r.URL.Query().Get("blueprint"))
}

func wizardMappingURL(sessionID string, key domain.BlueprintKey) string {
	return "/ui/wizard/" + sessionID + "?blueprint=" + url.QueryEscape(string(key))
}

func (h *Handler) WizardTableSubmit(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")
	key := wizardBlueprintParam(r)
	if err := r.ParseForm(); err != nil {
		h.renderServiceError(w, r, domain.ErrValidation("invalid form submission"))
		return
	}
	err := h.Wizard.SetTableBinding(r.Context(), sessionID, key,
		formString(r.Form, "db"), formString(r.Form, "schema"), formString(r.Form, "table"))
	if err != nil {
		h.renderServiceError(w, r, err)
		return
	}
	http.Redirect(w, r, wizardMappingURL(sessionID, key), http.StatusSeeOther)
}

func (h *Handler) WizardMappingsSubmit(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")
	key := wizardBlueprintParam(r)
	if err := r.ParseForm(); err != nil {
		h.renderServiceError(w, r, domain.ErrValidation("invalid form submission"))
		return
	}
	if err := h.Wizard.SelectBlueprint(sessionID, key); err != nil {
		h.renderServiceError(w, r, err)
		return
	}

	store, err := h.Wizard.Store(sessionID)
	if err != nil {
		h.renderServiceError(w, r, err)
		return
	}
	current := store.FieldMappings(key)

	// Only actual edits are written; re-submitting an unchanged form must
	// not mark the blueprint dirty.
	for name := range r.Form {
		if !strings.HasPrefix(name, fieldFormPrefix) {
			continue
		}
		fk := domain.FieldKey(strings.TrimPrefix(name, fieldFormPrefix))
		value := domain.CanonicalColumn(formString(r.Form, name))
		if current[fk] == value {
			continue
		}
		if err := h.Wizard.SetFieldMapping(sessionID, fk, value); err != nil {
			h.renderServiceError(w, r, err)
			return
		}
	}
	http.Redirect(w, r, wizardMappingURL(sessionID, key), http.StatusSeeOther)
}

func (h *Handler) WizardSaveSubmit(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")
	key := wizardBlueprintParam(r)
	if err := h.Wizard.SaveBindings(r.Context(), sessionID, key); err != nil {
		h.renderServiceError(w, r, err)
		return
	}
	http.Redirect(w, r, wizardMappingURL(sessionID, key), http.StatusSeeOther)
}

func (h *Handler) WizardDeployStart(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")
	if err := r.ParseForm(); err != nil {
		h.renderServiceError(w, r, domain.ErrValidation("invalid form submission"))
		return
	}
	err := h.Wizard.Deploy(r.Context(), sessionID,
		formBool(r.Form, "replace_objects"), formBool(r.Form, "run_full_refresh"))
	var conflict *domain.ConflictError
	if err != nil && !errors.As(err, &conflict) {
		h.renderServiceError(w, r, err)
		return
	}
	// An already-running deployment just lands back on its progress page.
	http.Redirect(w, r, "/ui/wizard/"+sessionID+"/deploy", http.StatusSeeOther)
}

func (h *Handler) WizardDeploy(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")
	view, err := h.Wizard.Progress(sessionID)
	if err != nil {
		h.renderServiceError(w, r, err)
		return
	}
	renderHTML(w, http.StatusOK, wizardDeployPage(r, wizardDeployData{SessionID: sessionID, View: view}))
}

func (h *Handler) WizardDeployCancel(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")
	if err := h.Wizard.RequestCancel(sessionID); err != nil {
		h.renderServiceError(w, r, err)
		return
	}
	http.Redirect(w, r, "/ui/wizard/"+sessionID+"/deploy", http.StatusSeeOther)
}

func (h *Handler) WizardClose(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")
	if err := h.Wizard.CloseSession(sessionID); err != nil {
		h.renderServiceError(w, r, err)
		return
	}
	http.Redirect(w, r, "/ui/models", http.StatusSeeOther)
}
