// Package audit captures security-relevant events from the disclosure
// workflow. Events are append-only and transport-agnostic so stores and
// sinks can fan out.
package audit

import "time"

// Kind classifies an audit event.
type Kind string

const (
	KindRequestCreated   Kind = "request_created"
	KindRequestDecided   Kind = "request_decided"
	KindDecisionDenied   Kind = "decision_denied"
	KindLedgerGateFailed Kind = "ledger_gate_failed"
	KindResourceReleased Kind = "resource_released"
	KindResourceDenied   Kind = "resource_denied"
)

// Event is emitted from domain logic to capture key actions.
type Event struct {
	Timestamp time.Time `json:"timestamp"`
	Kind      Kind      `json:"kind"`
	ActorID   string    `json:"actor_id"`
	RequestID string    `json:"request_id,omitempty"`
	Detail    string    `json:"detail,omitempty"`
	ClientIP  string    `json:"client_ip,omitempty"`
	UserAgent string    `json:"user_agent,omitempty"`
	Device    string    `json:"device,omitempty"`
}
