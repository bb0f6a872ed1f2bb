package ui

import (
	"io/fs"
	"net/http"

	"github.com/go-chi/chi/v5"

	"uhe-console/internal/ui/assets"
)

func MountRoutes(r chi.Router, h *Handler) {
	staticFS, err := fs.Sub(assets.StaticFS(), "static")
	if err == nil {
		r.Handle("/static/*", http.StripPrefix("/ui/static/", http.FileServer(http.FS(staticFS))))
	}

	r.Group(func(r chi.Router) {
		r.Use(h.EnsureCSRFToken)
		r.Use(h.RequireCSRF)

		r.Get("/", h.Home)
		r.Get("/models", h.ModelsList)
		r.Get("/blueprints", h.BlueprintsList)

		r.Get("/governance", h.GovernancePage)
		r.Post("/governance/contacts", h.CreateContactSubmit)
		r.Post("/governance/models/assign", h.AssignModelContactsSubmit)

		r.Get("/openflow", h.OpenflowList)
		r.Post("/openflow/{db}/{schema}/{table}/request-snapshot", h.OpenflowRequestSnapshot)
		r.Post("/openflow/{db}/{schema}/{table}/toggle", h.OpenflowToggle)
		r.Post("/openflow/{db}/{schema}/{table}/delete", h.OpenflowDelete)

		r.Post("/wizard/open", h.OpenWizardSubmit)
		r.Route("/wizard/{sessionID}", func(r chi.Router) {
			r.Get("/", h.WizardMapping)
			r.Post("/table", h.WizardTableSubmit)
			r.Post("/mappings", h.WizardMappingsSubmit)
			r.Post("/save", h.WizardSaveSubmit)
			r.Post("/close", h.WizardClose)
			r.Post("/deploy/start", h.WizardDeployStart)
			r.Get("/deploy", h.WizardDeploy)
			r.Post("/deploy/cancel", h.WizardDeployCancel)
		})
	})
}
