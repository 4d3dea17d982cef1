package handler

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"custodia/internal/access"
	jwttoken "custodia/internal/jwt_token"
	"custodia/pkg/domain"
	dErrors "custodia/pkg/domain-errors"
	"custodia/pkg/platform/httputil"
	"custodia/pkg/requestcontext"
)

// Service defines the interface for access-request operations.
type Service interface {
	Create(ctx context.Context, in access.CreateInput) (access.Request, error)
	GetByID(ctx context.Context, id domain.RequestID) (access.Request, error)
	ListByPerson(ctx context.Context, personID domain.PersonID) ([]access.Request, error)
	ListByEntity(ctx context.Context, entityID domain.EntityID) ([]access.Request, error)
	Decide(ctx context.Context, in access.DecideInput) (access.Request, error)
	LoadApprovedResource(ctx context.Context, in access.ResourceInput) (*access.Resource, error)
}

// Handler wires the disclosure endpoints to the access service.
type Handler struct {
	service Service
	logger  *slog.Logger
}

// New constructs an access handler with its dependencies.
func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts access endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Post("/access-requests", h.HandleCreate)
	r.Get("/access-requests", h.HandleList)
	r.Get("/access-requests/{requestID}", h.HandleGet)
	r.Post("/access-requests/{requestID}/decision", h.HandleDecide)
	r.Get("/access-requests/{requestID}/documents/{documentID}/content", h.HandleContent)
}

// entityCaller resolves the authenticated requesting organization.
func entityCaller(ctx context.Context) (domain.EntityID, error) {
	if requestcontext.ActorKind(ctx) != string(jwttoken.SubjectEntity) {
		return domain.EntityID{}, dErrors.New(dErrors.CodeForbidden, "caller must be a requesting entity")
	}
	return domain.ParseEntityID(requestcontext.ActorID(ctx))
}

// personCaller resolves the authenticated document owner.
func personCaller(ctx context.Context) (domain.PersonID, error) {
	if requestcontext.ActorKind(ctx) != string(jwttoken.SubjectPerson) {
		return domain.PersonID{}, dErrors.New(dErrors.CodeForbidden, "caller must be a document owner")
	}
	return domain.ParsePersonID(requestcontext.ActorID(ctx))
}

// HandleCreate handles POST /access-requests.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	entityID, err := entityCaller(ctx)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	req, ok := httputil.DecodeAndPrepare[CreateRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	request, err := h.service.Create(ctx, access.CreateInput{
		EntityID:    entityID,
		PersonID:    req.ParsedPersonID(),
		Purpose:     req.Purpose,
		DocumentIDs: req.ParsedDocumentIDs(),
	})
	if err != nil {
		h.logger.WarnContext(ctx, "access request rejected",
			"request_id", requestID,
			"entity_id", entityID.String(),
			"error", err.Error(),
		)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, FromRequest(request))
}

// HandleList handles GET /access-requests. Entities see the requests they
// opened; owners see the requests about them.
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var (
		requests []access.Request
		err      error
	)
	switch requestcontext.ActorKind(ctx) {
	case string(jwttoken.SubjectEntity):
		var entityID domain.EntityID
		if entityID, err = domain.ParseEntityID(requestcontext.ActorID(ctx)); err == nil {
			requests, err = h.service.ListByEntity(ctx, entityID)
		}
	case string(jwttoken.SubjectPerson):
		var personID domain.PersonID
		if personID, err = domain.ParsePersonID(requestcontext.ActorID(ctx)); err == nil {
			requests, err = h.service.ListByPerson(ctx, personID)
		}
	default:
		err = dErrors.New(dErrors.CodeUnauthorized, "authentication required")
	}
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, map[string]any{"requests": FromRequests(requests)})
}

// HandleGet handles GET /access-requests/{requestID}.
func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := domain.ParseRequestID(chi.URLParam(r, "requestID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	request, err := h.service.GetByID(ctx, id)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, FromRequest(request))
}

// HandleDecide handles POST /access-requests/{requestID}/decision.
func (h *Handler) HandleDecide(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	start := time.Now()

	deciderID, err := personCaller(ctx)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	id, err := domain.ParseRequestID(chi.URLParam(r, "requestID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	req, ok := httputil.DecodeAndPrepare[DecisionRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	request, err := h.service.Decide(ctx, access.DecideInput{
		RequestID: id,
		DeciderID: deciderID,
		Approve:   req.Approve,
		Note:      req.Note,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "decision failed",
			"request_id", requestID,
			"access_request_id", id.String(),
			"approve", req.Approve,
			"error", err.Error(),
		)
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "decision committed",
		"request_id", requestID,
		"access_request_id", id.String(),
		"status", string(request.Status),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	httputil.WriteJSON(w, http.StatusOK, FromRequest(request))
}

// HandleContent handles GET
// /access-requests/{requestID}/documents/{documentID}/content. It streams the
// released file to the requesting entity.
func (h *Handler) HandleContent(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	entityID, err := entityCaller(ctx)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	id, err := domain.ParseRequestID(chi.URLParam(r, "requestID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	docID, err := domain.ParseDocumentID(chi.URLParam(r, "documentID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	resource, err := h.service.LoadApprovedResource(ctx, access.ResourceInput{
		RequestID:  id,
		EntityID:   entityID,
		DocumentID: docID,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "content release refused",
			"request_id", requestID,
			"access_request_id", id.String(),
			"document_id", docID.String(),
			"error", err.Error(),
		)
		httputil.WriteError(w, err)
		return
	}
	defer resource.Content.Close()

	w.Header().Set("Content-Type", "application/octet-stream")
	if resource.File.SizeBytes > 0 {
		w.Header().Set("Content-Length", strconv.FormatInt(resource.File.SizeBytes, 10))
	}
	w.WriteHeader(http.StatusOK)
	if _, err := io.Copy(w, resource.Content); err != nil {
		h.logger.ErrorContext(ctx, "content stream interrupted",
			"request_id", requestID,
			"access_request_id", id.String(),
			"error", err.Error(),
		)
	}
}
