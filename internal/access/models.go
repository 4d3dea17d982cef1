// Package access implements the consent-gated disclosure workflow: an
// organization requests specific documents of one person, the person decides,
// and an approval is only committed once the ledger provably carries every
// requested document.
package access

import (
	"time"

	"custodia/pkg/domain"
)

// Status is the lifecycle state of an access request. Transitions are
// monotonic: pending may move to any terminal state, terminal states never
// move again.
type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
	StatusExpired  Status = "expired"
)

// Terminal reports whether the status accepts no further transitions.
func (s Status) Terminal() bool {
	return s == StatusApproved || s == StatusRejected || s == StatusExpired
}

// Policy constants. The grace window is policy, not user input.
const (
	PurposeMaxLen = 300
	NoteMaxLen    = 300
	GracePeriod   = 15 * 24 * time.Hour
)

// Request is one disclosure negotiation between a requesting entity and a
// document owner. RequestedAt is assigned by the workflow, not the storage
// layer, so the database clock can never skew expiry math.
type Request struct {
	ID          domain.RequestID
	EntityID    domain.EntityID
	PersonID    domain.PersonID
	Purpose     string
	Status      Status
	RequestedAt time.Time
	DecidedAt   *time.Time
	ExpiresAt   time.Time
	Note        string
	Items       []Item
}

// Item is one requested document within a request. The referenced document
// must belong to the request's person and be approved for disclosure at
// creation time; the workflow enforces this, the model only carries it.
type Item struct {
	ID         domain.ItemID
	RequestID  domain.RequestID
	DocumentID domain.DocumentID
}

// ExpiredAt reports whether the request's grace window has passed at the
// given instant.
func (r Request) ExpiredAt(now time.Time) bool {
	return now.After(r.ExpiresAt)
}

// HasDocument reports whether the document is within the request's scope.
func (r Request) HasDocument(docID domain.DocumentID) bool {
	for _, item := range r.Items {
		if item.DocumentID == docID {
			return true
		}
	}
	return false
}
