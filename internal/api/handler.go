// Package api implements the /v1 JSON surface of the console: wizard session
// lifecycle, catalog and governance reads, openflow snapshot configuration,
// and the deploy event relay. Everything here proxies to the engine backend
// through the service layer; no handler talks to Snowflake directly.
package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"uhe-console/internal/service/catalog"
	"uhe-console/internal/service/governance"
	"uhe-console/internal/service/openflow"
	"uhe-console/internal/service/wizard"
)

// Handler carries the service dependencies of the /v1 routes.
type Handler struct {
	wizard     *wizard.Service
	catalog    *catalog.Service
	governance *governance.Service
	openflow   *openflow.Service
	logger     *slog.Logger
}

// NewHandler creates the /v1 handler.
func NewHandler(
	wiz *wizard.Service,
	cat *catalog.Service,
	gov *governance.Service,
	flow *openflow.Service,
	logger *slog.Logger,
) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		wizard:     wiz,
		catalog:    cat,
		governance: gov,
		openflow:   flow,
		logger:     logger.With("component", "api"),
	}
}

// Routes mounts every /v1 route on a fresh router.
func (h *Handler) Routes() http.Handler {
	r := chi.NewRouter()

	r.Get("/models", h.listModels)
	r.Get("/blueprints", h.listBlueprints)
	r.Get("/dashboard/metrics", h.dashboardMetrics)
	r.Post("/database/validate", h.validateDatabase)
	r.Get("/snowflake/account-url", h.accountURL)

	r.Route("/wizard/sessions", func(r chi.Router) {
		r.Post("/", h.openSession)
		r.Route("/{sessionID}", func(r chi.Router) {
			r.Get("/", h.getSession)
			r.Delete("/", h.destroySession)
			r.Post("/close", h.closeSession)
			r.Get("/metadata", h.sessionMetadata)
			r.Route("/blueprints/{blueprintKey}", func(r chi.Router) {
				r.Post("/select", h.selectBlueprint)
				r.Put("/table", h.setTableBinding)
				r.Get("/fields", h.fieldStatus)
				r.Post("/save", h.saveBindings)
			})
			r.Put("/fields/{fieldKey}", h.setFieldMapping)
			r.Route("/deploy", func(r chi.Router) {
				r.Post("/", h.startDeploy)
				r.Get("/progress", h.deployProgress)
				r.Get("/stream", h.deployStream)
				r.Post("/cancel", h.cancelDeploy)
			})
		})
	})

	r.Route("/governance", func(r chi.Router) {
		r.Get("/contacts", h.listContacts)
		r.Post("/contacts", h.createContact)
		r.Get("/objects", h.listGovernedObjects)
		r.Post("/objects/assign", h.assignContacts)
		r.Get("/models", h.listGovernedModels)
		r.Post("/models/assign", h.assignModelContacts)
	})

	r.Route("/openflow/snapshot-states", func(r chi.Router) {
		r.Get("/", h.listSnapshotStates)
		r.Post("/", h.createSnapshotState)
		r.Route("/{db}/{schema}/{table}", func(r chi.Router) {
			r.Get("/", h.getSnapshotState)
			r.Put("/", h.updateSnapshotState)
			r.Delete("/", h.deleteSnapshotState)
			r.Post("/request-snapshot", h.requestSnapshot)
		})
	})

	return r
}
