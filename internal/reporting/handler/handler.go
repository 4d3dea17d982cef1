// Package handler exposes activity reports over HTTP. The report is always
// scoped to the authenticated caller; nobody can read another party's numbers.
package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	jwttoken "custodia/internal/jwt_token"
	"custodia/internal/reporting"
	"custodia/pkg/domain"
	dErrors "custodia/pkg/domain-errors"
	"custodia/pkg/platform/httputil"
	"custodia/pkg/requestcontext"
)

//go:generate mockgen -source=handler.go -destination=mocks/reporting-mocks.go -package=mocks Service

// Service defines the interface for activity reporting.
type Service interface {
	EntityReport(ctx context.Context, entityID domain.EntityID) (reporting.Report, error)
	PersonReport(ctx context.Context, personID domain.PersonID) (reporting.Report, error)
}

// Handler wires the reporting endpoint to the reporting service.
type Handler struct {
	service Service
	logger  *slog.Logger
}

// New constructs a reporting handler with its dependencies.
func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts reporting endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Get("/reports/activity", h.HandleActivity)
}

// HandleActivity handles GET /reports/activity. Entities get a summary of the
// requests they opened; owners get a summary of the requests about them.
func (h *Handler) HandleActivity(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var (
		report reporting.Report
		err    error
	)
	switch requestcontext.ActorKind(ctx) {
	case string(jwttoken.SubjectEntity):
		var entityID domain.EntityID
		if entityID, err = domain.ParseEntityID(requestcontext.ActorID(ctx)); err == nil {
			report, err = h.service.EntityReport(ctx, entityID)
		}
	case string(jwttoken.SubjectPerson):
		var personID domain.PersonID
		if personID, err = domain.ParsePersonID(requestcontext.ActorID(ctx)); err == nil {
			report, err = h.service.PersonReport(ctx, personID)
		}
	default:
		err = dErrors.New(dErrors.CodeUnauthorized, "authentication required")
	}
	if err != nil {
		h.logger.WarnContext(ctx, "activity report failed",
			"request_id", requestcontext.RequestID(ctx),
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, FromReport(report))
}
