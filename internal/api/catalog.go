package api

import "net/http"

func (h *Handler) listModels(w http.ResponseWriter, r *http.Request) {
	models, err := h.catalog.ListModels(r.Context())
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"models": models})
}

func (h *Handler) listBlueprints(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	blueprints, err := h.catalog.ListBlueprints(r.Context(), q.Get("source"), q.Get("id_like"))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"blueprints": blueprints})
}

func (h *Handler) dashboardMetrics(w http.ResponseWriter, r *http.Request) {
	metrics, err := h.catalog.Metrics(r.Context())
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, metrics)
}

func (h *Handler) validateDatabase(w http.ResponseWriter, r *http.Request) {
	result, err := h.catalog.ValidateDatabase(r.Context())
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *Handler) accountURL(w http.ResponseWriter, r *http.Request) {
	u, err := h.catalog.AccountURL(r.Context())
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"account_url": u})
}
