package model

import (
	"encoding/json"
	"time"
)

// Audit actions. The audit log is append-only; entries are written in
// the same transaction as the state change they record.
const (
	AuditVersionSubmitted = "VERSION_SUBMITTED"
	AuditVersionApproved  = "VERSION_APPROVED"
	AuditVersionRejected  = "VERSION_REJECTED"
	AuditPricingRequested = "PRICING_REQUESTED"
	AuditPricingApproved  = "PRICING_APPROVED"
	AuditPricingRejected  = "PRICING_REJECTED"
	AuditTicketCreated    = "TICKET_CREATED"
	AuditTicketEscalated  = "TICKET_ESCALATED"
	AuditTicketClosed     = "TICKET_CLOSED"
	AuditAgentAssigned    = "AGENT_ASSIGNED"
	AuditAgentReplied     = "AGENT_REPLIED"
)

// Audit entity types.
const (
	EntityMapVersion     = "MAP_VERSION"
	EntityPricingRequest = "PRICING_REQUEST"
	EntitySupportTicket  = "SUPPORT_TICKET"
)

type AuditEntry struct {
	ID         int64           `db:"id" json:"id"`
	Action     string          `db:"action" json:"action"`
	ActorID    int64           `db:"actor_id" json:"actorId"`
	EntityType string          `db:"entity_type" json:"entityType"`
	EntityID   int64           `db:"entity_id" json:"entityId"`
	Details    json.RawMessage `db:"details_json" json:"details,omitempty"`
	CreatedAt  time.Time       `db:"created_at" json:"createdAt"`
}
