// Package queue defines message payloads exchanged over the message broker.
package queue

// Event types published to the account.events queue.
const (
	EventUserRegistered = "user.registered"
	EventRoleChanged    = "user.role_changed"
	EventActiveChanged  = "user.active_changed"
)

// AccountEvent is published when an account is created or an admin changes
// its role or active flag. It carries enough information for downstream
// consumers to build an audit trail without querying the primary database.
type AccountEvent struct {
	Type       string `json:"type"`
	UserID     uint64 `json:"user_id"`
	Email      string `json:"email"`
	ActorID    uint64 `json:"actor_id,omitempty"` // admin who performed the action; zero for self-service
	Role       string `json:"role,omitempty"`
	IsActive   *bool  `json:"is_active,omitempty"`
	OccurredAt string `json:"occurred_at"`
}
