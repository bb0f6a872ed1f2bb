package ui

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"uhe-console/internal/domain"
)

func (h *Handler) OpenflowList(w http.ResponseWriter, r *http.Request) {
	states, err := h.Openflow.List(r.Context())
	if err != nil {
		h.renderServiceError(w, r, err)
		return
	}
	renderHTML(w, http.StatusOK, openflowPage(r, states))
}

func openflowURLKey(r *http.Request) (db, schema, table string) {
	return chi.URLParam(r, "db"), chi.URLParam(r, "schema"), chi.URLParam(r, "table")
}

func (h *Handler) OpenflowRequestSnapshot(w http.ResponseWriter, r *http.Request) {
	db, schema, table := openflowURLKey(r)
	if err := h.Openflow.RequestSnapshot(r.Context(), db, schema, table); err != nil {
		h.renderServiceError(w, r, err)
		return
	}
	http.Redirect(w, r, "/ui/openflow", http.StatusSeeOther)
}

func (h *Handler) OpenflowToggle(w http.ResponseWriter, r *http.Request) {
	db, schema, table := openflowURLKey(r)
	state, err := h.Openflow.Get(r.Context(), db, schema, table)
	if err != nil {
		h.renderServiceError(w, r, err)
		return
	}
	enabled := !state.Enabled
	err = h.Openflow.Update(r.Context(), db, schema, table, domain.UpdateSnapshotStateRequest{Enabled: &enabled})
	if err != nil {
		h.renderServiceError(w, r, err)
		return
	}
	http.Redirect(w, r, "/ui/openflow", http.StatusSeeOther)
}

func (h *Handler) OpenflowDelete(w http.ResponseWriter, r *http.Request) {
	db, schema, table := openflowURLKey(r)
	if err := h.Openflow.Delete(r.Context(), db, schema, table); err != nil {
		h.renderServiceError(w, r, err)
		return
	}
	http.Redirect(w, r, "/ui/openflow", http.StatusSeeOther)
}
