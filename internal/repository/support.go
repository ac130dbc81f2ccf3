package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"github.com/gcmaps/gcm-server-go/internal/database"
	"github.com/gcmaps/gcm-server-go/internal/model"
)

type SupportRepository interface {
	CreateTicket(ctx context.Context, userID int64, subject string) (*model.SupportTicket, error)
	FindTicket(ctx context.Context, id int64) (*model.SupportTicket, error)
	ListTicketsByUser(ctx context.Context, userID int64) ([]model.SupportTicket, error)
	ListOpenTickets(ctx context.Context) ([]model.SupportTicket, error)
	// ListUnclaimedEscalated is the agent queue: escalated tickets with
	// no agent yet.
	ListUnclaimedEscalated(ctx context.Context) ([]model.SupportTicket, error)
	ListByAgent(ctx context.Context, agentID int64) ([]model.SupportTicket, error)
	SetTicketStatus(ctx context.Context, id int64, status model.TicketStatus) error
	AssignAgent(ctx context.Context, ticketID, agentID int64) error
	CloseTicket(ctx context.Context, id int64) error

	AddMessage(ctx context.Context, ticketID int64, sender model.SenderType, senderID *int64, message string) (*model.TicketMessage, error)
	ListMessages(ctx context.Context, ticketID int64) ([]model.TicketMessage, error)

	ListFaq(ctx context.Context) ([]model.FaqEntry, error)
	BumpFaqUsage(ctx context.Context, faqID int64) error

	WithTx(tx *sqlx.Tx) SupportRepository
}

type supportRepo struct {
	db database.DBTX
}

func NewSupportRepository(db *sqlx.DB) SupportRepository {
	return &supportRepo{db: db}
}

func (r *supportRepo) WithTx(tx *sqlx.Tx) SupportRepository {
	return &supportRepo{db: tx}
}

const ticketColumns = `
	SELECT t.*, u.username, a.username AS agent_name
	FROM support_tickets t
	JOIN users u ON u.id = t.user_id
	LEFT JOIN users a ON a.id = t.assigned_agent_id
`

func (r *supportRepo) CreateTicket(ctx context.Context, userID int64, subject string) (*model.SupportTicket, error) {
	var id int64
	err := r.db.GetContext(ctx, &id, `
		INSERT INTO support_tickets (user_id, subject, status)
		VALUES ($1, $2, 'OPEN')
		RETURNING id
	`, userID, subject)
	if err != nil {
		return nil, err
	}
	return r.FindTicket(ctx, id)
}

func (r *supportRepo) FindTicket(ctx context.Context, id int64) (*model.SupportTicket, error) {
	var ticket model.SupportTicket
	err := r.db.GetContext(ctx, &ticket, ticketColumns+`
		WHERE t.id = $1
	`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &ticket, nil
}

func (r *supportRepo) ListTicketsByUser(ctx context.Context, userID int64) ([]model.SupportTicket, error) {
	tickets := []model.SupportTicket{}
	err := r.db.SelectContext(ctx, &tickets, ticketColumns+`
		WHERE t.user_id = $1
		ORDER BY t.created_at DESC
	`, userID)
	if err != nil {
		return nil, err
	}
	return tickets, nil
}

func (r *supportRepo) ListOpenTickets(ctx context.Context) ([]model.SupportTicket, error) {
	tickets := []model.SupportTicket{}
	err := r.db.SelectContext(ctx, &tickets, ticketColumns+`
		WHERE t.status IN ('OPEN', 'BOT_REPLIED', 'ESCALATED')
		ORDER BY t.created_at
	`)
	if err != nil {
		return nil, err
	}
	return tickets, nil
}

func (r *supportRepo) ListUnclaimedEscalated(ctx context.Context) ([]model.SupportTicket, error) {
	tickets := []model.SupportTicket{}
	err := r.db.SelectContext(ctx, &tickets, ticketColumns+`
		WHERE t.status = 'ESCALATED' AND t.assigned_agent_id IS NULL
		ORDER BY t.created_at
	`)
	if err != nil {
		return nil, err
	}
	return tickets, nil
}

func (r *supportRepo) ListByAgent(ctx context.Context, agentID int64) ([]model.SupportTicket, error) {
	tickets := []model.SupportTicket{}
	err := r.db.SelectContext(ctx, &tickets, ticketColumns+`
		WHERE t.assigned_agent_id = $1 AND t.status <> 'CLOSED'
		ORDER BY t.created_at
	`, agentID)
	if err != nil {
		return nil, err
	}
	return tickets, nil
}

func (r *supportRepo) SetTicketStatus(ctx context.Context, id int64, status model.TicketStatus) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE support_tickets SET status = $2 WHERE id = $1
	`, id, status)
	return err
}

func (r *supportRepo) AssignAgent(ctx context.Context, ticketID, agentID int64) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE support_tickets SET assigned_agent_id = $2, status = 'ESCALATED' WHERE id = $1
	`, ticketID, agentID)
	return err
}

func (r *supportRepo) CloseTicket(ctx context.Context, id int64) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE support_tickets SET status = 'CLOSED', closed_at = NOW() WHERE id = $1
	`, id)
	return err
}

func (r *supportRepo) AddMessage(ctx context.Context, ticketID int64, sender model.SenderType, senderID *int64, message string) (*model.TicketMessage, error) {
	var msg model.TicketMessage
	err := r.db.GetContext(ctx, &msg, `
		INSERT INTO ticket_messages (ticket_id, sender_type, sender_id, message)
		VALUES ($1, $2, $3, $4)
		RETURNING *
	`, ticketID, sender, senderID, message)
	if err != nil {
		return nil, err
	}
	return &msg, nil
}

func (r *supportRepo) ListMessages(ctx context.Context, ticketID int64) ([]model.TicketMessage, error) {
	messages := []model.TicketMessage{}
	err := r.db.SelectContext(ctx, &messages, `
		SELECT * FROM ticket_messages WHERE ticket_id = $1 ORDER BY created_at
	`, ticketID)
	if err != nil {
		return nil, err
	}
	return messages, nil
}

func (r *supportRepo) ListFaq(ctx context.Context) ([]model.FaqEntry, error) {
	entries := []model.FaqEntry{}
	err := r.db.SelectContext(ctx, &entries, `
		SELECT * FROM faq_entries ORDER BY category, id
	`)
	if err != nil {
		return nil, err
	}
	return entries, nil
}

func (r *supportRepo) BumpFaqUsage(ctx context.Context, faqID int64) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE faq_entries SET usage_count = usage_count + 1 WHERE id = $1
	`, faqID)
	return err
}
