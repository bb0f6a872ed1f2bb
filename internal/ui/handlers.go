package ui

import (
	"net/http"
	"sort"
)

func (h *Handler) Home(w http.ResponseWriter, r *http.Request) {
	// The dashboard stays useful even when individual backend calls fail;
	// each card degrades independently.
	d := overviewPageData{}
	if metrics, err := h.Catalog.Metrics(r.Context()); err == nil {
		d.Metrics = metrics
	}
	if validation, err := h.Catalog.ValidateDatabase(r.Context()); err == nil {
		d.Validation = validation
	}
	if accountURL, err := h.Catalog.AccountURL(r.Context()); err == nil {
		d.AccountURL = accountURL
	}
	renderHTML(w, http.StatusOK, overviewPage(d))
}

func (h *Handler) ModelsList(w http.ResponseWriter, r *http.Request) {
	models, err := h.Catalog.ListModels(r.Context())
	if err != nil {
		h.renderServiceError(w, r, err)
		return
	}
	rows := make([]modelRowData, 0, len(models))
	for i := range models {
		m := models[i]
		rows = append(rows, modelRowData{
			Filter:      m.Name + " " + m.Type,
			ID:          m.ID,
			Name:        m.Name,
			Type:        m.Type,
			Description: m.Description,
			Deployed:    m.Deployed,
			DeployError: m.DeploymentError,
		})
	}
	renderHTML(w, http.StatusOK, modelsListPage(r, rows))
}

func (h *Handler) BlueprintsList(w http.ResponseWriter, r *http.Request) {
	activeSource := r.URL.Query().Get("source")
	details, err := h.Catalog.ListBlueprints(r.Context(), activeSource, r.URL.Query().Get("id_like"))
	if err != nil {
		h.renderServiceError(w, r, err)
		return
	}

	// The source filter chips always cover the full catalog, not just the
	// currently filtered slice.
	sourceSet := map[string]struct{}{}
	if activeSource == "" {
		for i := range details {
			sourceSet[details[i].Source] = struct{}{}
		}
	} else {
		all, err := h.Catalog.ListBlueprints(r.Context(), "", "")
		if err == nil {
			for i := range all {
				sourceSet[all[i].Source] = struct{}{}
			}
		}
		sourceSet[activeSource] = struct{}{}
	}
	sources := make([]string, 0, len(sourceSet))
	for s := range sourceSet {
		sources = append(sources, s)
	}
	sort.Strings(sources)

	renderHTML(w, http.StatusOK, blueprintsListPage(details, sources, activeSource))
}
