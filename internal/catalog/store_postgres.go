package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"custodia/pkg/domain"
)

// PostgresStore persists documents and their file versions in PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// Save upserts the document and replaces its file set in one transaction so
// a document is never visible with a partial file list.
func (s *PostgresStore) Save(ctx context.Context, doc Document) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("save document: begin: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO documents (id, person_id, title, issuing_entity, review_status)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO UPDATE SET
			title = EXCLUDED.title,
			issuing_entity = EXCLUDED.issuing_entity,
			review_status = EXCLUDED.review_status`,
		uuid.UUID(doc.ID), uuid.UUID(doc.PersonID), doc.Title, doc.IssuingEntity,
		string(doc.ReviewStatus))
	if err != nil {
		return fmt.Errorf("save document: %w", err)
	}

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM document_files WHERE document_id = $1`, uuid.UUID(doc.ID)); err != nil {
		return fmt.Errorf("save document: clear files: %w", err)
	}
	for _, file := range doc.Files {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO document_files (id, document_id, version, stored_path, size_bytes, checksum)
			VALUES ($1, $2, $3, $4, $5, $6)`,
			uuid.UUID(file.ID), uuid.UUID(doc.ID), file.Version, file.StoredPath,
			file.SizeBytes, file.Checksum)
		if err != nil {
			return fmt.Errorf("save document: file %s: %w", file.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("save document: commit: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindByID(ctx context.Context, id domain.DocumentID) (Document, error) {
	var doc Document
	var rawID, rawPersonID uuid.UUID
	var status string
	err := s.db.QueryRowContext(ctx, `
		SELECT id, person_id, title, issuing_entity, review_status
		FROM documents WHERE id = $1`, uuid.UUID(id)).
		Scan(&rawID, &rawPersonID, &doc.Title, &doc.IssuingEntity, &status)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Document{}, ErrNotFound
		}
		return Document{}, fmt.Errorf("find document: %w", err)
	}
	doc.ID = domain.DocumentID(rawID)
	doc.PersonID = domain.PersonID(rawPersonID)
	doc.ReviewStatus = ReviewStatus(status)

	doc.Files, err = s.loadFiles(ctx, doc.ID)
	if err != nil {
		return Document{}, err
	}
	return doc, nil
}

func (s *PostgresStore) ListByPerson(ctx context.Context, personID domain.PersonID) ([]Document, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, person_id, title, issuing_entity, review_status
		FROM documents WHERE person_id = $1 ORDER BY title`, uuid.UUID(personID))
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	defer rows.Close()

	var docs []Document
	for rows.Next() {
		var doc Document
		var rawID, rawPersonID uuid.UUID
		var status string
		if err := rows.Scan(&rawID, &rawPersonID, &doc.Title, &doc.IssuingEntity, &status); err != nil {
			return nil, fmt.Errorf("list documents: scan: %w", err)
		}
		doc.ID = domain.DocumentID(rawID)
		doc.PersonID = domain.PersonID(rawPersonID)
		doc.ReviewStatus = ReviewStatus(status)
		docs = append(docs, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}

	for i := range docs {
		docs[i].Files, err = s.loadFiles(ctx, docs[i].ID)
		if err != nil {
			return nil, err
		}
	}
	return docs, nil
}

// loadFiles returns the document's files in insertion order; the latest-file
// tie rule depends on the storage layer's natural order staying stable.
func (s *PostgresStore) loadFiles(ctx context.Context, docID domain.DocumentID) ([]File, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, document_id, version, stored_path, size_bytes, checksum
		FROM document_files WHERE document_id = $1 ORDER BY created_at, id`, uuid.UUID(docID))
	if err != nil {
		return nil, fmt.Errorf("load files: %w", err)
	}
	defer rows.Close()

	var files []File
	for rows.Next() {
		var file File
		var rawID, rawDocID uuid.UUID
		if err := rows.Scan(&rawID, &rawDocID, &file.Version, &file.StoredPath,
			&file.SizeBytes, &file.Checksum); err != nil {
			return nil, fmt.Errorf("load files: scan: %w", err)
		}
		file.ID = domain.FileID(rawID)
		file.DocumentID = domain.DocumentID(rawDocID)
		files = append(files, file)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("load files: %w", err)
	}
	return files, nil
}
