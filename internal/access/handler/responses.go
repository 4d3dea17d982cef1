package handler

import (
	"time"

	"custodia/internal/access"
)

// RequestResponse is the HTTP representation of an access request.
type RequestResponse struct {
	ID          string         `json:"id"`
	EntityID    string         `json:"entity_id"`
	PersonID    string         `json:"person_id"`
	Purpose     string         `json:"purpose"`
	Status      string         `json:"status"`
	RequestedAt time.Time      `json:"requested_at"`
	DecidedAt   *time.Time     `json:"decided_at,omitempty"`
	ExpiresAt   time.Time      `json:"expires_at"`
	Note        string         `json:"note,omitempty"`
	Items       []ItemResponse `json:"items"`
}

// ItemResponse is one requested document within a request.
type ItemResponse struct {
	ID         string `json:"id"`
	DocumentID string `json:"document_id"`
}

// FromRequest converts a domain request to its HTTP representation.
func FromRequest(request access.Request) RequestResponse {
	items := make([]ItemResponse, 0, len(request.Items))
	for _, item := range request.Items {
		items = append(items, ItemResponse{
			ID:         item.ID.String(),
			DocumentID: item.DocumentID.String(),
		})
	}
	return RequestResponse{
		ID:          request.ID.String(),
		EntityID:    request.EntityID.String(),
		PersonID:    request.PersonID.String(),
		Purpose:     request.Purpose,
		Status:      string(request.Status),
		RequestedAt: request.RequestedAt,
		DecidedAt:   request.DecidedAt,
		ExpiresAt:   request.ExpiresAt,
		Note:        request.Note,
		Items:       items,
	}
}

// FromRequests converts a list of domain requests.
func FromRequests(requests []access.Request) []RequestResponse {
	out := make([]RequestResponse, 0, len(requests))
	for _, request := range requests {
		out = append(out, FromRequest(request))
	}
	return out
}
