package directory

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"custodia/pkg/domain"
)

// PostgresStore persists the directory in PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) SavePerson(ctx context.Context, person Person) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO persons (id, full_name, identity_kind, identity_number, email, secret_hash)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO UPDATE SET
			full_name = EXCLUDED.full_name,
			identity_kind = EXCLUDED.identity_kind,
			identity_number = EXCLUDED.identity_number,
			email = EXCLUDED.email,
			secret_hash = EXCLUDED.secret_hash`,
		uuid.UUID(person.ID), person.FullName, person.IdentityKind.String(),
		person.IdentityNumber, person.Email, person.SecretHash)
	if err != nil {
		return fmt.Errorf("save person: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindPerson(ctx context.Context, id domain.PersonID) (Person, error) {
	return s.scanPerson(s.db.QueryRowContext(ctx, `
		SELECT id, full_name, identity_kind, identity_number, email, secret_hash
		FROM persons WHERE id = $1`, uuid.UUID(id)))
}

func (s *PostgresStore) FindPersonByIdentity(ctx context.Context, kind domain.IdentityKind, number string) (Person, error) {
	return s.scanPerson(s.db.QueryRowContext(ctx, `
		SELECT id, full_name, identity_kind, identity_number, email, secret_hash
		FROM persons WHERE identity_kind = $1 AND identity_number = $2`,
		kind.String(), number))
}

func (s *PostgresStore) scanPerson(row *sql.Row) (Person, error) {
	var person Person
	var rawID uuid.UUID
	var kind string
	err := row.Scan(&rawID, &person.FullName, &kind, &person.IdentityNumber,
		&person.Email, &person.SecretHash)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Person{}, ErrNotFound
		}
		return Person{}, fmt.Errorf("find person: %w", err)
	}
	person.ID = domain.PersonID(rawID)
	person.IdentityKind = domain.IdentityKind(kind)
	return person, nil
}

func (s *PostgresStore) SaveEntity(ctx context.Context, entity Entity) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO entities (id, name, client_id, secret_hash)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			client_id = EXCLUDED.client_id,
			secret_hash = EXCLUDED.secret_hash`,
		uuid.UUID(entity.ID), entity.Name, entity.ClientID, entity.SecretHash)
	if err != nil {
		return fmt.Errorf("save entity: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindEntity(ctx context.Context, id domain.EntityID) (Entity, error) {
	return s.scanEntity(s.db.QueryRowContext(ctx, `
		SELECT id, name, client_id, secret_hash
		FROM entities WHERE id = $1`, uuid.UUID(id)))
}

func (s *PostgresStore) FindEntityByClientID(ctx context.Context, clientID string) (Entity, error) {
	return s.scanEntity(s.db.QueryRowContext(ctx, `
		SELECT id, name, client_id, secret_hash
		FROM entities WHERE client_id = $1`, clientID))
}

func (s *PostgresStore) scanEntity(row *sql.Row) (Entity, error) {
	var entity Entity
	var rawID uuid.UUID
	err := row.Scan(&rawID, &entity.Name, &entity.ClientID, &entity.SecretHash)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Entity{}, ErrNotFound
		}
		return Entity{}, fmt.Errorf("find entity: %w", err)
	}
	entity.ID = domain.EntityID(rawID)
	return entity, nil
}
