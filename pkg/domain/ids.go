// Package domain holds the typed identifiers shared across features.
//
// IDs are distinct types over uuid.UUID so the compiler rejects cross-type
// assignment (a PersonID can never be passed where an EntityID is expected).
// Construct from external input via the Parse functions, which enforce the
// trust-boundary invariant: valid, non-empty, non-nil UUIDs only.
package domain

import (
	"github.com/google/uuid"

	dErrors "custodia/pkg/domain-errors"
)

type (
	// PersonID identifies a document owner (a citizen).
	PersonID uuid.UUID
	// EntityID identifies an organization (issuer or requester).
	EntityID uuid.UUID
	// RequestID identifies an access request.
	RequestID uuid.UUID
	// ItemID identifies one requested document within an access request.
	ItemID uuid.UUID
	// DocumentID identifies a person's concrete uploaded document.
	DocumentID uuid.UUID
	// FileID identifies one stored version of a document.
	FileID uuid.UUID
)

func (id PersonID) String() string   { return uuid.UUID(id).String() }
func (id EntityID) String() string   { return uuid.UUID(id).String() }
func (id RequestID) String() string  { return uuid.UUID(id).String() }
func (id ItemID) String() string     { return uuid.UUID(id).String() }
func (id DocumentID) String() string { return uuid.UUID(id).String() }
func (id FileID) String() string     { return uuid.UUID(id).String() }

func (id PersonID) IsZero() bool   { return uuid.UUID(id) == uuid.Nil }
func (id EntityID) IsZero() bool   { return uuid.UUID(id) == uuid.Nil }
func (id RequestID) IsZero() bool  { return uuid.UUID(id) == uuid.Nil }
func (id DocumentID) IsZero() bool { return uuid.UUID(id) == uuid.Nil }

// NewPersonID generates a fresh random PersonID.
func NewPersonID() PersonID { return PersonID(uuid.New()) }

// NewEntityID generates a fresh random EntityID.
func NewEntityID() EntityID { return EntityID(uuid.New()) }

// NewRequestID generates a fresh random RequestID.
func NewRequestID() RequestID { return RequestID(uuid.New()) }

// NewItemID generates a fresh random ItemID.
func NewItemID() ItemID { return ItemID(uuid.New()) }

// NewDocumentID generates a fresh random DocumentID.
func NewDocumentID() DocumentID { return DocumentID(uuid.New()) }

// NewFileID generates a fresh random FileID.
func NewFileID() FileID { return FileID(uuid.New()) }

// parseUUID is the single validation path for every typed ID.
func parseUUID(s string) (uuid.UUID, error) {
	if s == "" {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, "id cannot be empty")
	}
	if len(s) > 64 {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, "id is too long")
	}
	parsed, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, "id is not a valid UUID")
	}
	if parsed == uuid.Nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, "id cannot be the nil UUID")
	}
	return parsed, nil
}

// ParsePersonID constructs a PersonID from external input.
func ParsePersonID(s string) (PersonID, error) {
	parsed, err := parseUUID(s)
	if err != nil {
		return PersonID{}, err
	}
	return PersonID(parsed), nil
}

// ParseEntityID constructs an EntityID from external input.
func ParseEntityID(s string) (EntityID, error) {
	parsed, err := parseUUID(s)
	if err != nil {
		return EntityID{}, err
	}
	return EntityID(parsed), nil
}

// ParseRequestID constructs a RequestID from external input.
func ParseRequestID(s string) (RequestID, error) {
	parsed, err := parseUUID(s)
	if err != nil {
		return RequestID{}, err
	}
	return RequestID(parsed), nil
}

// ParseItemID constructs an ItemID from external input.
func ParseItemID(s string) (ItemID, error) {
	parsed, err := parseUUID(s)
	if err != nil {
		return ItemID{}, err
	}
	return ItemID(parsed), nil
}

// ParseDocumentID constructs a DocumentID from external input.
func ParseDocumentID(s string) (DocumentID, error) {
	parsed, err := parseUUID(s)
	if err != nil {
		return DocumentID{}, err
	}
	return DocumentID(parsed), nil
}

// ParseFileID constructs a FileID from external input.
func ParseFileID(s string) (FileID, error) {
	parsed, err := parseUUID(s)
	if err != nil {
		return FileID{}, err
	}
	return FileID(parsed), nil
}
