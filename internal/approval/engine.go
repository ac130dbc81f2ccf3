package approval

import (
	"context"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog/log"

	"github.com/gcmaps/gcm-server-go/internal/apperr"
	"github.com/gcmaps/gcm-server-go/internal/database"
	"github.com/gcmaps/gcm-server-go/internal/model"
	"github.com/gcmaps/gcm-server-go/internal/repository"
)

// Publisher delivers post-commit events to users. Satisfied by
// *push.Broker.
type Publisher interface {
	Publish(ctx context.Context, userID int64, eventType string, data any) error
}

// Notice is one recipient's share of a decision: a persisted
// notification row plus a push event after commit.
type Notice struct {
	UserID    int64
	Title     string
	Body      string
	EventType string
	EventData any
}

// Outcome is what a kind reports back from a decision, already applied
// inside the transaction.
type Outcome struct {
	EntityType   string
	EntityID     int64
	Status       model.ApprovalStatus
	AuditAction  string
	AuditDetails any
	Notices      []Notice
	// Entity is the decided entity, returned to the caller.
	Entity any
}

// Kind adapts one approvable entity family to the engine. Decide runs
// inside the engine's transaction and must use the given tx for every
// statement.
type Kind interface {
	Name() string
	Decide(ctx context.Context, tx *sqlx.Tx, entityID int64, status model.ApprovalStatus, deciderID int64, reason string) (*Outcome, error)
}

// Engine drives the two-state approval workflow shared by map versions
// and pricing requests. A decision is one transaction: conditional
// status flip, kind side effect, audit row, notification rows. Push
// events go out only after the transaction commits.
type Engine struct {
	tx            database.TxRunner
	notifications repository.NotificationRepository
	audits        repository.AuditRepository
	broker        Publisher
	kinds         map[string]Kind
}

func NewEngine(tx database.TxRunner, notifications repository.NotificationRepository, audits repository.AuditRepository, broker Publisher, kinds ...Kind) (*Engine, error) {
	e := &Engine{
		tx:            tx,
		notifications: notifications,
		audits:        audits,
		broker:        broker,
		kinds:         make(map[string]Kind, len(kinds)),
	}
	for _, k := range kinds {
		if _, dup := e.kinds[k.Name()]; dup {
			return nil, apperr.Internal("duplicate approval kind: " + k.Name())
		}
		e.kinds[k.Name()] = k
	}
	return e, nil
}

// Decide resolves one pending entity. status must be APPROVED or
// REJECTED; a rejection needs a reason before any state is touched.
// The PENDING guard lives inside the transaction, so of two concurrent
// decisions exactly one wins and the loser sees VALIDATION_ERROR.
func (e *Engine) Decide(ctx context.Context, kindName string, entityID int64, status model.ApprovalStatus, deciderID int64, reason string) (*Outcome, error) {
	kind, ok := e.kinds[kindName]
	if !ok {
		return nil, apperr.Internal("unknown approval kind: " + kindName)
	}
	if !status.Terminal() {
		return nil, apperr.Validation("decision must be APPROVED or REJECTED")
	}
	if status == model.StatusRejected && strings.TrimSpace(reason) == "" {
		return nil, apperr.Validation("rejection reason is required")
	}

	var outcome *Outcome
	err := e.tx.WithTx(ctx, func(tx *sqlx.Tx) error {
		o, err := kind.Decide(ctx, tx, entityID, status, deciderID, reason)
		if err != nil {
			return err
		}

		if err := e.audits.WithTx(tx).Insert(ctx, o.AuditAction, deciderID, o.EntityType, o.EntityID, o.AuditDetails); err != nil {
			return err
		}

		notifRepo := e.notifications.WithTx(tx)
		for _, n := range o.Notices {
			if _, err := notifRepo.Create(ctx, n.UserID, n.Title, n.Body); err != nil {
				return err
			}
		}

		outcome = o
		return nil
	})
	if err != nil {
		if _, ok := apperr.As(err); ok {
			return nil, err
		}
		return nil, apperr.Database(err)
	}

	e.publish(ctx, outcome.Notices)

	log.Info().
		Str("kind", kindName).
		Int64("entityId", entityID).
		Str("status", string(status)).
		Int64("deciderId", deciderID).
		Int("recipients", len(outcome.Notices)).
		Msg("approval decision recorded")

	return outcome, nil
}

func (e *Engine) publish(ctx context.Context, notices []Notice) {
	if e.broker == nil {
		return
	}
	for _, n := range notices {
		if err := e.broker.Publish(ctx, n.UserID, n.EventType, n.EventData); err != nil {
			log.Warn().
				Err(err).
				Int64("userId", n.UserID).
				Str("eventType", n.EventType).
				Msg("push publish failed after commit")
		}
	}
}
