// Package queue defines message payloads exchanged over the message broker.
package queue

// SecurityQueueName is the durable queue carrying security audit events.
const SecurityQueueName = "audit.security"

// Audit actions published by the service. The host-scoped mutation actions
// are published only when the mutation happens under an impersonated
// session; a host acting on its own produces no event.
const (
	ActionImpersonate = "impersonate"
	ActionHostDeleted = "host_deleted"
	ActionLoginFailed = "login_failed"

	ActionItemCreated        = "item_created"
	ActionItemUpdated        = "item_updated"
	ActionItemDeleted        = "item_deleted"
	ActionGuestCreated       = "guest_created"
	ActionReservationCreated = "reservation_created"
	ActionReservationDeleted = "reservation_deleted"
	ActionPINRegenerated     = "pin_regenerated"
)

// SecurityEvent is published whenever a privileged or suspicious action
// happens: an impersonation grant, a host deletion, a failed login.  It
// carries enough for downstream consumers to build an audit trail without
// querying the primary database.  ImpersonatedBy is set when the action was
// taken under an impersonated session; for the impersonation grant itself,
// ActorID is the super-admin and TargetID the host being impersonated.
type SecurityEvent struct {
	Action         string `json:"action"`
	ActorID        uint64 `json:"actor_id,omitempty"`
	TargetID       uint64 `json:"target_id,omitempty"`
	ImpersonatedBy uint64 `json:"impersonated_by,omitempty"`
	Email          string `json:"email,omitempty"`
	RemoteIP       string `json:"remote_ip,omitempty"`
	At             string `json:"at"`
}
