package domain

import dErrors "custodia/pkg/domain-errors"

// IdentityKind is the class of identity document used to address a person on
// the ledger (the ledger tools take it as their first argument).
// Invariant: the value must be one of the supported kinds.
//
// Usage: construct via ParseIdentityKind at trust boundaries to enforce the
// allowlist; direct casting bypasses validation.
type IdentityKind string

// Supported identity document kinds.
const (
	IdentityKindNationalID   IdentityKind = "CC"
	IdentityKindForeignerID  IdentityKind = "CE"
	IdentityKindMinorID      IdentityKind = "TI"
	IdentityKindPassport     IdentityKind = "PA"
	IdentityKindOrganization IdentityKind = "NIT"
)

// validIdentityKinds is the single source of truth for supported kinds.
var validIdentityKinds = map[IdentityKind]bool{
	IdentityKindNationalID:   true,
	IdentityKindForeignerID:  true,
	IdentityKindMinorID:      true,
	IdentityKindPassport:     true,
	IdentityKindOrganization: true,
}

// ParseIdentityKind constructs an IdentityKind from external input.
//
// Errors: returns CodeInvalidInput when the value is empty or unsupported.
func ParseIdentityKind(s string) (IdentityKind, error) {
	if s == "" {
		return "", dErrors.New(dErrors.CodeInvalidInput, "identity kind cannot be empty")
	}
	k := IdentityKind(s)
	if !k.IsValid() {
		return "", dErrors.New(dErrors.CodeInvalidInput, "unsupported identity kind")
	}
	return k, nil
}

// IsValid checks if the kind is one of the supported enum values.
func (k IdentityKind) IsValid() bool {
	return validIdentityKinds[k]
}

// String returns the string representation of the kind.
func (k IdentityKind) String() string {
	return string(k)
}
