// Package reporting aggregates disclosure activity for operators. It is a
// read-only consumer of the access store and never mutates requests.
package reporting

import (
	"context"
	"log/slog"
	"time"

	"custodia/internal/access"
	"custodia/pkg/domain"
)

// Lister is the slice of the access store the aggregator reads.
type Lister interface {
	ListByEntity(ctx context.Context, entityID domain.EntityID) ([]access.Request, error)
	ListByPerson(ctx context.Context, personID domain.PersonID) ([]access.Request, error)
}

// Report summarizes one party's disclosure activity.
type Report struct {
	Total    int
	ByStatus map[access.Status]int
	// ExpiryRate is the share of decided-or-lapsed requests that expired
	// without a decision. Pending requests are excluded from the denominator.
	ExpiryRate float64
	// AvgApprovalLatency is the mean time from creation to an approving
	// decision. Zero when nothing was approved.
	AvgApprovalLatency time.Duration
}

// Service computes activity reports.
type Service struct {
	store  Lister
	logger *slog.Logger
}

// NewService creates the reporting service.
func NewService(store Lister, logger *slog.Logger) *Service {
	return &Service{store: store, logger: logger}
}

// EntityReport summarizes the requests an organization has opened.
func (s *Service) EntityReport(ctx context.Context, entityID domain.EntityID) (Report, error) {
	requests, err := s.store.ListByEntity(ctx, entityID)
	if err != nil {
		return Report{}, err
	}
	report := summarize(requests)
	s.logger.InfoContext(ctx, "entity report computed",
		"entity_id", entityID.String(),
		"total", report.Total,
	)
	return report, nil
}

// PersonReport summarizes the requests opened about one person.
func (s *Service) PersonReport(ctx context.Context, personID domain.PersonID) (Report, error) {
	requests, err := s.store.ListByPerson(ctx, personID)
	if err != nil {
		return Report{}, err
	}
	report := summarize(requests)
	s.logger.InfoContext(ctx, "person report computed",
		"person_id", personID.String(),
		"total", report.Total,
	)
	return report, nil
}

func summarize(requests []access.Request) Report {
	report := Report{
		Total:    len(requests),
		ByStatus: make(map[access.Status]int),
	}

	var (
		settled        int
		approvalTotal  time.Duration
		approvalsTimed int
	)
	for _, r := range requests {
		report.ByStatus[r.Status]++
		if r.Status.Terminal() {
			settled++
		}
		if r.Status == access.StatusApproved && r.DecidedAt != nil {
			approvalTotal += r.DecidedAt.Sub(r.RequestedAt)
			approvalsTimed++
		}
	}

	if settled > 0 {
		report.ExpiryRate = float64(report.ByStatus[access.StatusExpired]) / float64(settled)
	}
	if approvalsTimed > 0 {
		report.AvgApprovalLatency = approvalTotal / time.Duration(approvalsTimed)
	}
	return report
}
