package handler

import (
	"custodia/internal/access"
	"custodia/internal/reporting"
)

// ReportResponse is the HTTP representation of an activity report.
type ReportResponse struct {
	Total              int            `json:"total"`
	ByStatus           map[string]int `json:"by_status"`
	ExpiryRate         float64        `json:"expiry_rate"`
	AvgApprovalSeconds float64        `json:"avg_approval_latency_seconds"`
}

// FromReport converts a domain report to its HTTP representation.
func FromReport(report reporting.Report) ReportResponse {
	byStatus := make(map[string]int, len(report.ByStatus))
	for status, count := range report.ByStatus {
		byStatus[string(status)] = count
	}
	// Every known status appears so consumers never branch on missing keys.
	for _, status := range []access.Status{
		access.StatusPending, access.StatusApproved, access.StatusRejected, access.StatusExpired,
	} {
		if _, ok := byStatus[string(status)]; !ok {
			byStatus[string(status)] = 0
		}
	}
	return ReportResponse{
		Total:              report.Total,
		ByStatus:           byStatus,
		ExpiryRate:         report.ExpiryRate,
		AvgApprovalSeconds: report.AvgApprovalLatency.Seconds(),
	}
}
