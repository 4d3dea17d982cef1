package access

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"custodia/pkg/domain"
	dErrors "custodia/pkg/domain-errors"
	platformtx "custodia/pkg/platform/tx"
)

// PostgresStore persists access requests in PostgreSQL. The status
// compare-and-swap rides on a conditional UPDATE, so two concurrent
// decisions on one request cannot both commit.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// Create inserts the request and all items in one transaction; a partial
// item set is never visible. An ambient transaction in the context is joined
// instead of starting a new one.
func (s *PostgresStore) Create(ctx context.Context, request Request) error {
	if len(request.Items) == 0 {
		return dErrors.New(dErrors.CodeInvariantViolation, "request must carry at least one item")
	}

	tx, ambient := platformtx.From(ctx)
	if !ambient {
		var err error
		tx, err = s.db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("create request: begin: %w", err)
		}
		defer tx.Rollback()
	}

	_, err := tx.ExecContext(ctx, `
		INSERT INTO access_requests
			(id, entity_id, person_id, purpose, status, requested_at, decided_at, expires_at, note)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		uuid.UUID(request.ID), uuid.UUID(request.EntityID), uuid.UUID(request.PersonID),
		request.Purpose, string(request.Status), request.RequestedAt, request.DecidedAt,
		request.ExpiresAt, request.Note)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	for _, item := range request.Items {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO access_request_items (id, request_id, document_id)
			VALUES ($1, $2, $3)`,
			uuid.UUID(item.ID), uuid.UUID(request.ID), uuid.UUID(item.DocumentID))
		if err != nil {
			return fmt.Errorf("create request: item %s: %w", item.ID, err)
		}
	}

	if !ambient {
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("create request: commit: %w", err)
		}
	}
	return nil
}

func (s *PostgresStore) FindByID(ctx context.Context, id domain.RequestID) (Request, error) {
	request, err := s.scanRequest(s.db.QueryRowContext(ctx, `
		SELECT id, entity_id, person_id, purpose, status, requested_at, decided_at, expires_at, note
		FROM access_requests WHERE id = $1`, uuid.UUID(id)))
	if err != nil {
		return Request{}, err
	}
	request.Items, err = s.loadItems(ctx, request.ID)
	if err != nil {
		return Request{}, err
	}
	return request, nil
}

func (s *PostgresStore) ListByPerson(ctx context.Context, personID domain.PersonID) ([]Request, error) {
	return s.list(ctx, `
		SELECT id, entity_id, person_id, purpose, status, requested_at, decided_at, expires_at, note
		FROM access_requests WHERE person_id = $1 ORDER BY requested_at DESC`, uuid.UUID(personID))
}

func (s *PostgresStore) ListByEntity(ctx context.Context, entityID domain.EntityID) ([]Request, error) {
	return s.list(ctx, `
		SELECT id, entity_id, person_id, purpose, status, requested_at, decided_at, expires_at, note
		FROM access_requests WHERE entity_id = $1 ORDER BY requested_at DESC`, uuid.UUID(entityID))
}

// UpdateStatus commits a decision only when the stored status still equals
// `from`. Zero rows affected means another decision won the race (or the
// request does not exist); the two cases are distinguished with a follow-up
// read.
func (s *PostgresStore) UpdateStatus(ctx context.Context, id domain.RequestID, from, to Status, decidedAt time.Time, note string) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE access_requests
		SET status = $1, decided_at = $2, note = $3
		WHERE id = $4 AND status = $5`,
		string(to), decidedAt, note, uuid.UUID(id), string(from))
	if err != nil {
		return fmt.Errorf("update status: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update status: rows affected: %w", err)
	}
	if affected == 1 {
		return nil
	}

	var exists bool
	if err := s.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM access_requests WHERE id = $1)`, uuid.UUID(id)).
		Scan(&exists); err != nil {
		return fmt.Errorf("update status: existence check: %w", err)
	}
	if !exists {
		return ErrNotFound
	}
	return ErrStatusConflict
}

func (s *PostgresStore) list(ctx context.Context, query string, arg any) ([]Request, error) {
	rows, err := s.db.QueryContext(ctx, query, arg)
	if err != nil {
		return nil, fmt.Errorf("list requests: %w", err)
	}
	defer rows.Close()

	var requests []Request
	for rows.Next() {
		request, err := s.scanRequestRow(rows)
		if err != nil {
			return nil, err
		}
		requests = append(requests, request)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list requests: %w", err)
	}

	for i := range requests {
		requests[i].Items, err = s.loadItems(ctx, requests[i].ID)
		if err != nil {
			return nil, err
		}
	}
	return requests, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func (s *PostgresStore) scanRequest(row *sql.Row) (Request, error) {
	request, err := scanRequestFrom(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Request{}, ErrNotFound
		}
		return Request{}, fmt.Errorf("find request: %w", err)
	}
	return request, nil
}

func (s *PostgresStore) scanRequestRow(rows *sql.Rows) (Request, error) {
	request, err := scanRequestFrom(rows)
	if err != nil {
		return Request{}, fmt.Errorf("scan request: %w", err)
	}
	return request, nil
}

func scanRequestFrom(scanner rowScanner) (Request, error) {
	var request Request
	var rawID, rawEntityID, rawPersonID uuid.UUID
	var status string
	var decidedAt sql.NullTime
	err := scanner.Scan(&rawID, &rawEntityID, &rawPersonID, &request.Purpose, &status,
		&request.RequestedAt, &decidedAt, &request.ExpiresAt, &request.Note)
	if err != nil {
		return Request{}, err
	}
	request.ID = domain.RequestID(rawID)
	request.EntityID = domain.EntityID(rawEntityID)
	request.PersonID = domain.PersonID(rawPersonID)
	request.Status = Status(status)
	if decidedAt.Valid {
		request.DecidedAt = &decidedAt.Time
	}
	return request, nil
}

func (s *PostgresStore) loadItems(ctx context.Context, requestID domain.RequestID) ([]Item, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, request_id, document_id
		FROM access_request_items WHERE request_id = $1 ORDER BY id`, uuid.UUID(requestID))
	if err != nil {
		return nil, fmt.Errorf("load items: %w", err)
	}
	defer rows.Close()

	var items []Item
	for rows.Next() {
		var item Item
		var rawID, rawRequestID, rawDocumentID uuid.UUID
		if err := rows.Scan(&rawID, &rawRequestID, &rawDocumentID); err != nil {
			return nil, fmt.Errorf("load items: scan: %w", err)
		}
		item.ID = domain.ItemID(rawID)
		item.RequestID = domain.RequestID(rawRequestID)
		item.DocumentID = domain.DocumentID(rawDocumentID)
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("load items: %w", err)
	}
	return items, nil
}
