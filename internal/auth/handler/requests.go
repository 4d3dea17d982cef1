package handler

import (
	"strings"

	"custodia/pkg/domain"
	dErrors "custodia/pkg/domain-errors"
)

// Supported grant types.
const (
	GrantClientCredentials = "client_credentials"
	GrantPersonCredentials = "person_credentials"
)

// TokenRequest is the HTTP request body for POST /auth/token.
type TokenRequest struct {
	GrantType    string `json:"grant_type"`
	ClientID     string `json:"client_id"`
	ClientSecret string `json:"client_secret"`

	IdentityKind   string `json:"identity_kind"`
	IdentityNumber string `json:"identity_number"`
	Secret         string `json:"secret"`

	// Parsed values (populated by Validate)
	parsedKind domain.IdentityKind
}

// Validate validates and parses the request.
// Implements the Validatable interface for httputil.DecodeAndPrepare.
func (r *TokenRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}

	r.GrantType = strings.TrimSpace(r.GrantType)
	switch r.GrantType {
	case GrantClientCredentials:
		r.ClientID = strings.TrimSpace(r.ClientID)
		if r.ClientID == "" || r.ClientSecret == "" {
			return dErrors.New(dErrors.CodeBadRequest, "client_id and client_secret are required")
		}
	case GrantPersonCredentials:
		r.IdentityNumber = strings.TrimSpace(r.IdentityNumber)
		if r.IdentityNumber == "" || r.Secret == "" {
			return dErrors.New(dErrors.CodeBadRequest, "identity_number and secret are required")
		}
		kind, err := domain.ParseIdentityKind(r.IdentityKind)
		if err != nil {
			return err
		}
		r.parsedKind = kind
	default:
		return dErrors.New(dErrors.CodeBadRequest, "unsupported grant_type")
	}
	return nil
}

// ParsedIdentityKind returns the validated identity kind.
func (r *TokenRequest) ParsedIdentityKind() domain.IdentityKind {
	return r.parsedKind
}

// TokenResponse is the HTTP response body for a successful token request.
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int64  `json:"expires_in"`
}
