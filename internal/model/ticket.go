package model

import "time"

type SupportTicket struct {
	ID              int64        `db:"id" json:"id"`
	UserID          int64        `db:"user_id" json:"userId"`
	Username        string       `db:"username" json:"username"`
	Subject         string       `db:"subject" json:"subject"`
	Status          TicketStatus `db:"status" json:"status"`
	AssignedAgentID *int64       `db:"assigned_agent_id" json:"assignedAgentId,omitempty"`
	AgentName       *string      `db:"agent_name" json:"agentName,omitempty"`
	CreatedAt       time.Time    `db:"created_at" json:"createdAt"`
	ClosedAt        *time.Time   `db:"closed_at" json:"closedAt,omitempty"`
}

type TicketMessage struct {
	ID         int64      `db:"id" json:"id"`
	TicketID   int64      `db:"ticket_id" json:"ticketId"`
	SenderType SenderType `db:"sender_type" json:"senderType"`
	SenderID   *int64     `db:"sender_id" json:"senderId,omitempty"`
	Message    string     `db:"message" json:"message"`
	CreatedAt  time.Time  `db:"created_at" json:"createdAt"`
}

type FaqEntry struct {
	ID         int64  `db:"id" json:"id"`
	Category   string `db:"category" json:"category"`
	Question   string `db:"question" json:"question"`
	Answer     string `db:"answer" json:"answer"`
	Keywords   string `db:"keywords" json:"keywords"`
	UsageCount int    `db:"usage_count" json:"usageCount"`
}
