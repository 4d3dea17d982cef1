// Package catalog holds a person's uploaded documents and their stored file
// versions. The access workflow consumes it read-mostly: it needs ownership,
// review state, and the "latest file" selection rule.
package catalog

import (
	"custodia/pkg/domain"
	dErrors "custodia/pkg/domain-errors"
)

// ReviewStatus is the document-level administrative state, distinct from any
// access-request state. Only approved documents may be requested for
// disclosure.
type ReviewStatus string

const (
	ReviewPending  ReviewStatus = "pending_review"
	ReviewApproved ReviewStatus = "approved"
	ReviewRejected ReviewStatus = "rejected"
)

// ParseReviewStatus constructs a ReviewStatus from external input.
func ParseReviewStatus(s string) (ReviewStatus, error) {
	switch ReviewStatus(s) {
	case ReviewPending, ReviewApproved, ReviewRejected:
		return ReviewStatus(s), nil
	}
	return "", dErrors.New(dErrors.CodeInvalidInput, "unsupported review status")
}

// Document is one concrete document instance belonging to a person, carrying
// zero or more stored file versions.
type Document struct {
	ID            domain.DocumentID
	PersonID      domain.PersonID
	Title         string
	IssuingEntity string
	ReviewStatus  ReviewStatus
	Files         []File
}

// File is one stored version of a document.
type File struct {
	ID         domain.FileID
	DocumentID domain.DocumentID
	Version    int
	StoredPath string
	SizeBytes  int64
	Checksum   string
}

// Disclosable reports whether the document may appear in an access request.
func (d Document) Disclosable() bool {
	return d.ReviewStatus == ReviewApproved
}

// LatestFile selects the file with the numerically highest version; a missing
// version counts as 0 and ties keep the earlier file in storage order.
func (d Document) LatestFile() (File, bool) {
	if len(d.Files) == 0 {
		return File{}, false
	}
	latest := d.Files[0]
	for _, f := range d.Files[1:] {
		if f.Version > latest.Version {
			latest = f
		}
	}
	return latest, true
}
