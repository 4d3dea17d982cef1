package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"custodia/internal/auth"
	"custodia/pkg/domain"
	"custodia/pkg/platform/httputil"
	"custodia/pkg/requestcontext"
)

// Service defines the interface for token issuance.
type Service interface {
	IssueEntityToken(ctx context.Context, clientID, clientSecret string) (auth.TokenResult, error)
	IssuePersonToken(ctx context.Context, kind domain.IdentityKind, number, secret string) (auth.TokenResult, error)
}

// Handler wires the token endpoint to the auth service.
type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts auth endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Post("/auth/token", h.HandleToken)
}

// HandleToken handles POST /auth/token requests.
func (h *Handler) HandleToken(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[TokenRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	var (
		result auth.TokenResult
		err    error
	)
	switch req.GrantType {
	case GrantClientCredentials:
		result, err = h.service.IssueEntityToken(ctx, req.ClientID, req.ClientSecret)
	case GrantPersonCredentials:
		result, err = h.service.IssuePersonToken(ctx, req.ParsedIdentityKind(), req.IdentityNumber, req.Secret)
	}
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "access token issued",
		"request_id", requestID,
		"grant_type", req.GrantType,
	)
	httputil.WriteJSON(w, http.StatusOK, TokenResponse{
		AccessToken: result.AccessToken,
		TokenType:   result.TokenType,
		ExpiresIn:   result.ExpiresIn,
	})
}
