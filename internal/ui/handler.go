// Package ui renders the console pages with gomponents. Pages read through
// the service layer only; live deployment progress arrives over the /v1 SSE
// relay.
package ui

import (
	"errors"
	"net/http"

	gomponents "maragu.dev/gomponents"

	"uhe-console/internal/domain"
	"uhe-console/internal/service/catalog"
	"uhe-console/internal/service/governance"
	"uhe-console/internal/service/openflow"
	"uhe-console/internal/service/wizard"
)

type Handler struct {
	Wizard     *wizard.Service
	Catalog    *catalog.Service
	Governance *governance.Service
	Openflow   *openflow.Service
	Production bool
}

func NewHandler(
	wizardSvc *wizard.Service,
	catalogSvc *catalog.Service,
	governanceSvc *governance.Service,
	openflowSvc *openflow.Service,
	production bool,
) *Handler {
	return &Handler{
		Wizard:     wizardSvc,
		Catalog:    catalogSvc,
		Governance: governanceSvc,
		Openflow:   openflowSvc,
		Production: production,
	}
}

func renderHTML(w http.ResponseWriter, status int, node gomponents.Node) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_ = node.Render(w)
}

func (h *Handler) renderServiceError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	title := "Unexpected Error"
	message := "An unexpected error occurred while loading this page."

	var notFound *domain.NotFoundError
	var validation *domain.ValidationError
	var conflict *domain.ConflictError
	var upstream *domain.UpstreamError
	if errors.As(err, &notFound) {
		status = http.StatusNotFound
		title = "Not Found"
		message = notFound.Error()
	} else if errors.As(err, &validation) {
		status = http.StatusBadRequest
		title = "Invalid Request"
		message = validation.Error()
	} else if errors.As(err, &conflict) {
		status = http.StatusConflict
		title = "Conflict"
		message = conflict.Error()
	} else if errors.As(err, &upstream) {
		status = http.StatusBadGateway
		title = "Engine Backend Error"
		message = upstream.Error()
	}

	_ = r
	renderHTML(w, status, errorPage(title, message))
}
