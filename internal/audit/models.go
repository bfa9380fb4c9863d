// Package audit captures who did what to which profile. Events are recorded by
// explicit calls from the service and GDPR layers, buffered in-process, and
// persisted append-only by a worker.
package audit

import "time"

// Action names an auditable operation.
type Action string

const (
	ActionCreated   Action = "profile.created"
	ActionViewed    Action = "profile.viewed"
	ActionUpdated   Action = "profile.updated"
	ActionRenewed   Action = "profile.renewed"
	ActionApproved  Action = "profile.approved"
	ActionCancelled Action = "profile.cancelled"
	ActionExported  Action = "profile.exported"
	ActionDeleted   Action = "profile.deleted"
)

// Event is a single audit record. ActorID is empty for anonymous actions such
// as token-based approval.
type Event struct {
	Timestamp time.Time
	ActorID   string
	ProfileID string
	Action    Action
	RequestID string
}
