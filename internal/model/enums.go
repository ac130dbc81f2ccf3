package model

// Role is a user's capability level.
type Role string

const (
	RoleCustomer       Role = "CUSTOMER"
	RoleContentEditor  Role = "CONTENT_EDITOR"
	RoleContentManager Role = "CONTENT_MANAGER"
	RoleCompanyManager Role = "COMPANY_MANAGER"
	RoleAgent          Role = "AGENT"
)

var roleRanks = map[Role]int{
	RoleCustomer:       0,
	RoleAgent:          0,
	RoleContentEditor:  1,
	RoleContentManager: 2,
	RoleCompanyManager: 3,
}

// AtLeast reports whether r sits at or above the given editorial rank.
// RoleAgent ranks as a customer here; agent-only operations check the
// role directly rather than the rank ladder.
func (r Role) AtLeast(min Role) bool {
	return roleRanks[r] >= roleRanks[min]
}

// ApprovalStatus is the lifecycle state of an approvable entity.
// PENDING is the only non-terminal state.
type ApprovalStatus string

const (
	StatusPending  ApprovalStatus = "PENDING"
	StatusApproved ApprovalStatus = "APPROVED"
	StatusRejected ApprovalStatus = "REJECTED"
)

func (s ApprovalStatus) Terminal() bool {
	return s == StatusApproved || s == StatusRejected
}

// PurchaseType distinguishes one-time purchases from subscriptions.
type PurchaseType string

const (
	PurchaseOneTime      PurchaseType = "ONE_TIME"
	PurchaseSubscription PurchaseType = "SUBSCRIPTION"
)

// TicketStatus is the support ticket lifecycle state.
type TicketStatus string

const (
	TicketOpen       TicketStatus = "OPEN"
	TicketBotReplied TicketStatus = "BOT_REPLIED"
	TicketEscalated  TicketStatus = "ESCALATED"
	TicketClosed     TicketStatus = "CLOSED"
)

// SenderType identifies who wrote a ticket message.
type SenderType string

const (
	SenderCustomer SenderType = "CUSTOMER"
	SenderBot      SenderType = "BOT"
	SenderAgent    SenderType = "AGENT"
)

// ReminderType buckets an expiry reminder by days remaining.
type ReminderType string

const (
	Reminder1Day    ReminderType = "1_DAY"
	Reminder3Days   ReminderType = "3_DAYS"
	ReminderGeneral ReminderType = "GENERAL"
)

// ReminderTypeForDays maps days-until-expiry to a reminder bucket.
func ReminderTypeForDays(days int) ReminderType {
	switch {
	case days <= 1:
		return Reminder1Day
	case days <= 3:
		return Reminder3Days
	default:
		return ReminderGeneral
	}
}
