package service

import (
	"context"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog/log"

	"github.com/gcmaps/gcm-server-go/internal/apperr"
	"github.com/gcmaps/gcm-server-go/internal/database"
	"github.com/gcmaps/gcm-server-go/internal/model"
	"github.com/gcmaps/gcm-server-go/internal/repository"
	"github.com/gcmaps/gcm-server-go/internal/util"
)

const botEscalationNote = "I could not answer this confidently; the ticket has been passed to our support team."

// TicketView is a ticket with its conversation.
type TicketView struct {
	Ticket   *model.SupportTicket  `json:"ticket"`
	Messages []model.TicketMessage `json:"messages"`
}

// SupportService owns the ticket lifecycle. New tickets get a
// first-line FAQ bot answer; unanswerable or billing questions land in
// the agent queue.
type SupportService struct {
	support repository.SupportRepository
	audits  repository.AuditRepository
	tx      database.TxRunner
}

func NewSupportService(support repository.SupportRepository, audits repository.AuditRepository, tx database.TxRunner) *SupportService {
	return &SupportService{support: support, audits: audits, tx: tx}
}

// CreateTicket opens a ticket, stores the customer's message, and runs
// the FAQ bot over it, all in one transaction.
func (s *SupportService) CreateTicket(ctx context.Context, userID int64, subject, message string) (*TicketView, error) {
	if util.Blank(subject) || util.Blank(message) {
		return nil, apperr.Validation("subject and message are required")
	}

	existing, err := s.support.ListTicketsByUser(ctx, userID)
	if err != nil {
		return nil, apperr.Database(err)
	}
	for _, t := range existing {
		if t.Status != model.TicketClosed && strings.EqualFold(t.Subject, subject) {
			return nil, apperr.Validation("you already have an open ticket with this subject")
		}
	}

	faq, err := s.support.ListFaq(ctx)
	if err != nil {
		return nil, apperr.Database(err)
	}
	reply := matchFaq(message, faq)

	var ticket *model.SupportTicket
	err = s.tx.WithTx(ctx, func(tx *sqlx.Tx) error {
		support := s.support.WithTx(tx)

		t, err := support.CreateTicket(ctx, userID, subject)
		if err != nil {
			return err
		}
		if _, err := support.AddMessage(ctx, t.ID, model.SenderCustomer, &userID, message); err != nil {
			return err
		}
		if err := s.audits.WithTx(tx).Insert(ctx, model.AuditTicketCreated, userID, model.EntitySupportTicket, t.ID, nil); err != nil {
			return err
		}

		if reply.Answer != "" {
			botText := reply.Answer
			if reply.SuggestEscalation {
				botText += "\n\nIf this does not answer your question you can escalate the ticket to an agent."
			}
			if _, err := support.AddMessage(ctx, t.ID, model.SenderBot, nil, botText); err != nil {
				return err
			}
			if err := support.BumpFaqUsage(ctx, reply.FaqID); err != nil {
				return err
			}
			if err := support.SetTicketStatus(ctx, t.ID, model.TicketBotReplied); err != nil {
				return err
			}
		}

		if reply.AutoEscalate {
			if reply.Answer == "" {
				if _, err := support.AddMessage(ctx, t.ID, model.SenderBot, nil, botEscalationNote); err != nil {
					return err
				}
			}
			if err := support.SetTicketStatus(ctx, t.ID, model.TicketEscalated); err != nil {
				return err
			}
			if err := s.audits.WithTx(tx).Insert(ctx, model.AuditTicketEscalated, userID, model.EntitySupportTicket, t.ID, map[string]any{"by": "bot"}); err != nil {
				return err
			}
		}

		ticket = t
		return nil
	})
	if err != nil {
		return nil, apperr.Database(err)
	}

	log.Info().
		Int64("ticketId", ticket.ID).
		Int64("userId", userID).
		Bool("autoEscalated", reply.AutoEscalate).
		Msg("support ticket created")

	return s.GetTicket(ctx, ticket.ID, userID, false)
}

func (s *SupportService) ListMine(ctx context.Context, userID int64) ([]model.SupportTicket, error) {
	tickets, err := s.support.ListTicketsByUser(ctx, userID)
	if err != nil {
		return nil, apperr.Database(err)
	}
	return tickets, nil
}

// GetTicket loads a ticket and its conversation. Customers see only
// their own tickets; agents see any.
func (s *SupportService) GetTicket(ctx context.Context, ticketID, userID int64, isAgent bool) (*TicketView, error) {
	ticket, err := s.requireTicket(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if !isAgent && ticket.UserID != userID {
		return nil, apperr.NotFound("ticket")
	}
	messages, err := s.support.ListMessages(ctx, ticketID)
	if err != nil {
		return nil, apperr.Database(err)
	}
	return &TicketView{Ticket: ticket, Messages: messages}, nil
}

// Escalate moves the customer's own ticket to the agent queue.
func (s *SupportService) Escalate(ctx context.Context, ticketID, userID int64) error {
	ticket, err := s.requireTicket(ctx, ticketID)
	if err != nil {
		return err
	}
	if ticket.UserID != userID {
		return apperr.NotFound("ticket")
	}
	if ticket.Status == model.TicketClosed {
		return apperr.Validation("ticket is closed")
	}
	if ticket.Status == model.TicketEscalated {
		return apperr.Validation("ticket is already escalated")
	}

	err = s.tx.WithTx(ctx, func(tx *sqlx.Tx) error {
		if err := s.support.WithTx(tx).SetTicketStatus(ctx, ticketID, model.TicketEscalated); err != nil {
			return err
		}
		return s.audits.WithTx(tx).Insert(ctx, model.AuditTicketEscalated, userID, model.EntitySupportTicket, ticketID, nil)
	})
	if err != nil {
		return apperr.Database(err)
	}
	return nil
}

// Close closes the customer's own ticket.
func (s *SupportService) Close(ctx context.Context, ticketID, userID int64) error {
	ticket, err := s.requireTicket(ctx, ticketID)
	if err != nil {
		return err
	}
	if ticket.UserID != userID {
		return apperr.NotFound("ticket")
	}
	return s.closeTicket(ctx, ticketID, userID, ticket.Status)
}

func (s *SupportService) AgentListPending(ctx context.Context) ([]model.SupportTicket, error) {
	tickets, err := s.support.ListUnclaimedEscalated(ctx)
	if err != nil {
		return nil, apperr.Database(err)
	}
	return tickets, nil
}

func (s *SupportService) AgentListAssigned(ctx context.Context, agentID int64) ([]model.SupportTicket, error) {
	tickets, err := s.support.ListByAgent(ctx, agentID)
	if err != nil {
		return nil, apperr.Database(err)
	}
	return tickets, nil
}

// AgentClaim assigns an escalated ticket to the agent.
func (s *SupportService) AgentClaim(ctx context.Context, ticketID, agentID int64) error {
	ticket, err := s.requireTicket(ctx, ticketID)
	if err != nil {
		return err
	}
	if ticket.Status != model.TicketEscalated {
		return apperr.Validation("only escalated tickets can be claimed")
	}
	if ticket.AssignedAgentID != nil {
		return apperr.Validation("ticket is already claimed")
	}

	err = s.tx.WithTx(ctx, func(tx *sqlx.Tx) error {
		if err := s.support.WithTx(tx).AssignAgent(ctx, ticketID, agentID); err != nil {
			return err
		}
		return s.audits.WithTx(tx).Insert(ctx, model.AuditAgentAssigned, agentID, model.EntitySupportTicket, ticketID, nil)
	})
	if err != nil {
		return apperr.Database(err)
	}
	return nil
}

// AgentReply appends an agent message to a ticket the agent owns.
func (s *SupportService) AgentReply(ctx context.Context, ticketID, agentID int64, message string) (*model.TicketMessage, error) {
	if util.Blank(message) {
		return nil, apperr.Validation("message is required")
	}
	ticket, err := s.requireTicket(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if ticket.AssignedAgentID == nil || *ticket.AssignedAgentID != agentID {
		return nil, apperr.Forbidden("ticket is assigned to another agent")
	}
	if ticket.Status == model.TicketClosed {
		return nil, apperr.Validation("ticket is closed")
	}

	var msg *model.TicketMessage
	err = s.tx.WithTx(ctx, func(tx *sqlx.Tx) error {
		m, err := s.support.WithTx(tx).AddMessage(ctx, ticketID, model.SenderAgent, &agentID, message)
		if err != nil {
			return err
		}
		if err := s.audits.WithTx(tx).Insert(ctx, model.AuditAgentReplied, agentID, model.EntitySupportTicket, ticketID, nil); err != nil {
			return err
		}
		msg = m
		return nil
	})
	if err != nil {
		return nil, apperr.Database(err)
	}
	return msg, nil
}

// AgentClose closes a ticket the agent owns.
func (s *SupportService) AgentClose(ctx context.Context, ticketID, agentID int64) error {
	ticket, err := s.requireTicket(ctx, ticketID)
	if err != nil {
		return err
	}
	if ticket.AssignedAgentID == nil || *ticket.AssignedAgentID != agentID {
		return apperr.Forbidden("ticket is assigned to another agent")
	}
	return s.closeTicket(ctx, ticketID, agentID, ticket.Status)
}

func (s *SupportService) closeTicket(ctx context.Context, ticketID, actorID int64, current model.TicketStatus) error {
	if current == model.TicketClosed {
		return apperr.Validation("ticket is already closed")
	}
	err := s.tx.WithTx(ctx, func(tx *sqlx.Tx) error {
		if err := s.support.WithTx(tx).CloseTicket(ctx, ticketID); err != nil {
			return err
		}
		return s.audits.WithTx(tx).Insert(ctx, model.AuditTicketClosed, actorID, model.EntitySupportTicket, ticketID, nil)
	})
	if err != nil {
		return apperr.Database(err)
	}
	return nil
}

func (s *SupportService) requireTicket(ctx context.Context, ticketID int64) (*model.SupportTicket, error) {
	ticket, err := s.support.FindTicket(ctx, ticketID)
	if err != nil {
		return nil, apperr.Database(err)
	}
	if ticket == nil {
		return nil, apperr.NotFound("ticket")
	}
	return ticket, nil
}
