package handler

import (
	"strings"

	"github.com/asaskevich/govalidator"

	"custodia/pkg/domain"
	dErrors "custodia/pkg/domain-errors"
)

// CreateRequest is the HTTP request body for POST /access-requests.
type CreateRequest struct {
	PersonID    string   `json:"person_id" valid:"required,uuid"`
	Purpose     string   `json:"purpose" valid:"required,stringlength(1|300)"`
	DocumentIDs []string `json:"document_ids" valid:"required"`

	// Parsed values (populated by Validate)
	parsedPersonID    domain.PersonID
	parsedDocumentIDs []domain.DocumentID
}

// Validate validates and parses the request.
// Implements the Validatable interface for httputil.DecodeAndPrepare.
func (r *CreateRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}

	r.Purpose = strings.TrimSpace(r.Purpose)
	if _, err := govalidator.ValidateStruct(r); err != nil {
		return dErrors.New(dErrors.CodeValidation, err.Error())
	}

	personID, err := domain.ParsePersonID(r.PersonID)
	if err != nil {
		return err
	}
	r.parsedPersonID = personID

	r.parsedDocumentIDs = make([]domain.DocumentID, 0, len(r.DocumentIDs))
	for _, raw := range r.DocumentIDs {
		docID, err := domain.ParseDocumentID(raw)
		if err != nil {
			return err
		}
		r.parsedDocumentIDs = append(r.parsedDocumentIDs, docID)
	}
	return nil
}

// ParsedPersonID returns the validated owner ID.
func (r *CreateRequest) ParsedPersonID() domain.PersonID {
	return r.parsedPersonID
}

// ParsedDocumentIDs returns the validated document IDs.
func (r *CreateRequest) ParsedDocumentIDs() []domain.DocumentID {
	return r.parsedDocumentIDs
}

// DecisionRequest is the HTTP request body for POST
// /access-requests/{requestID}/decision.
type DecisionRequest struct {
	Approve bool   `json:"approve"`
	Note    string `json:"note" valid:"stringlength(0|300)"`
}

// Validate validates the request.
// Implements the Validatable interface for httputil.DecodeAndPrepare.
func (r *DecisionRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	r.Note = strings.TrimSpace(r.Note)
	if _, err := govalidator.ValidateStruct(r); err != nil {
		return dErrors.New(dErrors.CodeValidation, err.Error())
	}
	return nil
}
