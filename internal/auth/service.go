// Package auth issues access tokens to the two kinds of API callers:
// requesting entities (by client id + secret) and document owners (by ledger
// identity + secret). Secrets are stored as bcrypt hashes in the directory.
package auth

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"golang.org/x/crypto/bcrypt"

	"custodia/internal/directory"
	jwttoken "custodia/internal/jwt_token"
	"custodia/pkg/domain"
	dErrors "custodia/pkg/domain-errors"
	"custodia/pkg/requestcontext"
)

// DefaultTokenTTL bounds how long an issued token stays valid.
const DefaultTokenTTL = time.Hour

// Tokens abstracts JWT creation so the service can be tested with a fake.
type Tokens interface {
	GenerateAccessToken(subjectID string, subjectType jwttoken.SubjectType, expiresIn time.Duration) (string, error)
}

// Directory is the slice of the directory store the token flow needs.
type Directory interface {
	FindEntityByClientID(ctx context.Context, clientID string) (directory.Entity, error)
	FindPersonByIdentity(ctx context.Context, kind domain.IdentityKind, number string) (directory.Person, error)
}

// TokenResult is the issued credential.
type TokenResult struct {
	AccessToken string
	TokenType   string
	ExpiresIn   int64
}

// Service verifies caller credentials and mints tokens.
type Service struct {
	directory Directory
	tokens    Tokens
	ttl       time.Duration
	logger    *slog.Logger
}

func NewService(dir Directory, tokens Tokens, ttl time.Duration, logger *slog.Logger) *Service {
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	return &Service{directory: dir, tokens: tokens, ttl: ttl, logger: logger}
}

// IssueEntityToken authenticates a requesting organization by client
// credentials. Unknown client and wrong secret are indistinguishable to the
// caller.
func (s *Service) IssueEntityToken(ctx context.Context, clientID, clientSecret string) (TokenResult, error) {
	if clientID == "" || clientSecret == "" {
		return TokenResult{}, dErrors.New(dErrors.CodeBadRequest, "client_id and client_secret are required")
	}

	entity, err := s.directory.FindEntityByClientID(ctx, clientID)
	if err != nil {
		if errors.Is(err, directory.ErrNotFound) {
			return TokenResult{}, s.denied(ctx, "unknown client")
		}
		return TokenResult{}, err
	}
	if bcrypt.CompareHashAndPassword([]byte(entity.SecretHash), []byte(clientSecret)) != nil {
		return TokenResult{}, s.denied(ctx, "secret mismatch")
	}

	return s.issue(entity.ID.String(), jwttoken.SubjectEntity)
}

// IssuePersonToken authenticates a document owner by ledger identity plus
// secret.
func (s *Service) IssuePersonToken(ctx context.Context, kind domain.IdentityKind, number, secret string) (TokenResult, error) {
	if !kind.IsValid() || number == "" || secret == "" {
		return TokenResult{}, dErrors.New(dErrors.CodeBadRequest, "identity_kind, identity_number and secret are required")
	}

	person, err := s.directory.FindPersonByIdentity(ctx, kind, number)
	if err != nil {
		if errors.Is(err, directory.ErrNotFound) {
			return TokenResult{}, s.denied(ctx, "unknown identity")
		}
		return TokenResult{}, err
	}
	if bcrypt.CompareHashAndPassword([]byte(person.SecretHash), []byte(secret)) != nil {
		return TokenResult{}, s.denied(ctx, "secret mismatch")
	}

	return s.issue(person.ID.String(), jwttoken.SubjectPerson)
}

func (s *Service) issue(subjectID string, subjectType jwttoken.SubjectType) (TokenResult, error) {
	token, err := s.tokens.GenerateAccessToken(subjectID, subjectType, s.ttl)
	if err != nil {
		return TokenResult{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to sign token")
	}
	return TokenResult{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresIn:   int64(s.ttl.Seconds()),
	}, nil
}

// denied logs the real reason and returns the deliberately vague error.
func (s *Service) denied(ctx context.Context, reason string) error {
	s.logger.WarnContext(ctx, "credential check failed",
		"request_id", requestcontext.RequestID(ctx),
		"reason", reason,
	)
	return dErrors.New(dErrors.CodeUnauthorized, "invalid credentials")
}

// HashSecret produces the bcrypt hash stored in the directory. Used by
// seeding and admin tooling.
func HashSecret(secret string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(secret), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}
