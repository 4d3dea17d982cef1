package auth

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"custodia/internal/directory"
	jwttoken "custodia/internal/jwt_token"
	"custodia/pkg/domain"
	dErrors "custodia/pkg/domain-errors"
)

func newTestService(t *testing.T) (*Service, *directory.InMemoryStore) {
	t.Helper()
	store := directory.NewInMemoryStore()
	tokens := jwttoken.NewJWTService("test-key", "custodia", "custodia-api")
	svc := NewService(store, tokens, time.Hour, slog.New(slog.DiscardHandler))
	return svc, store
}

func seedEntity(t *testing.T, store *directory.InMemoryStore, clientID, secret string) directory.Entity {
	t.Helper()
	hash, err := HashSecret(secret)
	require.NoError(t, err)
	entity := directory.Entity{
		ID:         domain.NewEntityID(),
		Name:       "Acme Bank",
		ClientID:   clientID,
		SecretHash: hash,
	}
	require.NoError(t, store.SaveEntity(context.Background(), entity))
	return entity
}

func seedPerson(t *testing.T, store *directory.InMemoryStore, number, secret string) directory.Person {
	t.Helper()
	hash, err := HashSecret(secret)
	require.NoError(t, err)
	person := directory.Person{
		ID:             domain.NewPersonID(),
		FullName:       "Juan Diaz",
		IdentityKind:   domain.IdentityKindNationalID,
		IdentityNumber: number,
		SecretHash:     hash,
	}
	require.NoError(t, store.SavePerson(context.Background(), person))
	return person
}

func TestIssueEntityToken(t *testing.T) {
	ctx := context.Background()

	t.Run("valid credentials yield a bearer token", func(t *testing.T) {
		svc, store := newTestService(t)
		seedEntity(t, store, "acme", "topsecret")

		result, err := svc.IssueEntityToken(ctx, "acme", "topsecret")
		require.NoError(t, err)
		assert.NotEmpty(t, result.AccessToken)
		assert.Equal(t, "Bearer", result.TokenType)
		assert.Equal(t, int64(3600), result.ExpiresIn)
	})

	t.Run("wrong secret and unknown client are indistinguishable", func(t *testing.T) {
		svc, store := newTestService(t)
		seedEntity(t, store, "acme", "topsecret")

		_, errWrong := svc.IssueEntityToken(ctx, "acme", "nope")
		_, errUnknown := svc.IssueEntityToken(ctx, "ghost", "nope")

		require.Error(t, errWrong)
		require.Error(t, errUnknown)
		assert.Equal(t, errWrong.Error(), errUnknown.Error())
		assert.True(t, dErrors.HasCode(errWrong, dErrors.CodeUnauthorized))
	})

	t.Run("missing fields", func(t *testing.T) {
		svc, _ := newTestService(t)
		_, err := svc.IssueEntityToken(ctx, "", "")
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeBadRequest))
	})
}

func TestIssuePersonToken(t *testing.T) {
	ctx := context.Background()

	t.Run("valid identity and secret", func(t *testing.T) {
		svc, store := newTestService(t)
		person := seedPerson(t, store, "1019455565", "ownersecret")

		result, err := svc.IssuePersonToken(ctx, domain.IdentityKindNationalID, "1019455565", "ownersecret")
		require.NoError(t, err)
		assert.NotEmpty(t, result.AccessToken)

		tokens := jwttoken.NewJWTService("test-key", "custodia", "custodia-api")
		claims, err := tokens.ValidateToken(result.AccessToken)
		require.NoError(t, err)
		assert.Equal(t, person.ID.String(), claims.SubjectID)
		assert.Equal(t, jwttoken.SubjectPerson, claims.SubjectType)
	})

	t.Run("wrong secret is unauthorized", func(t *testing.T) {
		svc, store := newTestService(t)
		seedPerson(t, store, "1019455565", "ownersecret")

		_, err := svc.IssuePersonToken(ctx, domain.IdentityKindNationalID, "1019455565", "wrong")
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
	})

	t.Run("invalid identity kind", func(t *testing.T) {
		svc, _ := newTestService(t)
		_, err := svc.IssuePersonToken(ctx, domain.IdentityKind("XX"), "1", "s")
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeBadRequest))
	})
}
