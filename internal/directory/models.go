// Package directory holds the people and organizations known to the system.
// The access workflow consumes it as a lookup collaborator; it owns no
// disclosure logic of its own.
package directory

import (
	"custodia/pkg/domain"
)

// Person is a document owner: the citizen whose documents can be requested.
// IdentityKind and IdentityNumber together address the person on the ledger.
// SecretHash is the bcrypt hash of the person's API credential.
type Person struct {
	ID             domain.PersonID
	FullName       string
	IdentityKind   domain.IdentityKind
	IdentityNumber string
	Email          string
	SecretHash     string
}

// Entity is an organization: an issuer of documents and/or a requester of
// disclosures. SecretHash is the bcrypt hash of its API client secret.
type Entity struct {
	ID         domain.EntityID
	Name       string
	ClientID   string
	SecretHash string
}
