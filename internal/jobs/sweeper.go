package jobs

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/gcmaps/gcm-server-go/internal/config"
	"github.com/gcmaps/gcm-server-go/internal/model"
	"github.com/gcmaps/gcm-server-go/internal/repository"
)

// Publisher delivers reminder events to connected users. Satisfied by
// *push.Broker.
type Publisher interface {
	Publish(ctx context.Context, userID int64, eventType string, data any) error
}

// ExpirySweeper periodically finds subscriptions near expiry and sends
// each at most one reminder per urgency bucket. Runs never overlap: a
// tick that fires while the previous run is still working is skipped.
type ExpirySweeper struct {
	purchases     repository.PurchaseRepository
	notifications repository.NotificationRepository
	broker        Publisher
	interval      time.Duration
	warningDays   int
	running       atomic.Bool
	done          chan struct{}
}

func NewExpirySweeper(
	purchases repository.PurchaseRepository,
	notifications repository.NotificationRepository,
	broker Publisher,
	interval time.Duration,
	warningDays int,
) *ExpirySweeper {
	return &ExpirySweeper{
		purchases:     purchases,
		notifications: notifications,
		broker:        broker,
		interval:      interval,
		warningDays:   warningDays,
		done:          make(chan struct{}),
	}
}

func (s *ExpirySweeper) Start() {
	go s.run()
	log.Info().Dur("interval", s.interval).Int("warningDays", s.warningDays).Msg("expiry sweeper started")
}

func (s *ExpirySweeper) Stop() {
	close(s.done)
	log.Info().Msg("expiry sweeper stopped")
}

func (s *ExpirySweeper) run() {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.Sweep()

	for {
		select {
		case <-s.done:
			return
		case <-ticker.C:
			s.Sweep()
		}
	}
}

// Sweep executes one pass. It returns the number of reminders sent;
// callers other than the ticker loop exist only in tests.
func (s *ExpirySweeper) Sweep() int {
	if !s.running.CompareAndSwap(false, true) {
		log.Warn().Msg("sweep still in progress, skipping tick")
		return 0
	}
	defer s.running.Store(false)

	ctx, cancel := context.WithTimeout(context.Background(), config.SweepRunTimeout)
	defer cancel()

	subs, err := s.purchases.ExpiringWithin(ctx, s.warningDays)
	if err != nil {
		log.Error().Err(err).Msg("expiry lookahead query failed")
		return 0
	}

	sent := 0
	now := time.Now()
	for _, sub := range subs {
		if s.remind(ctx, sub, now) {
			sent++
		}
	}

	if sent > 0 {
		log.Info().Int("sent", sent).Int("candidates", len(subs)).Msg("expiry reminders sent")
	}
	return sent
}

// remind handles one subscription. A failure here is logged and skipped
// so one bad row cannot starve the rest of the run.
func (s *ExpirySweeper) remind(ctx context.Context, sub model.ExpiringSubscription, now time.Time) bool {
	days := sub.DaysUntilExpiry(now)
	reminderType := model.ReminderTypeForDays(days)

	already, err := s.purchases.HasReminder(ctx, sub.SubscriptionID, reminderType)
	if err != nil {
		log.Error().Err(err).Int64("subscriptionId", sub.SubscriptionID).Msg("reminder dedup check failed")
		return false
	}
	if already {
		return false
	}

	title := "Subscription expiring soon"
	body := fmt.Sprintf("Your subscription for %s expires in %d day(s), on %s.",
		sub.CityName, days, sub.ExpiresAt.Format("2006-01-02"))

	if _, err := s.notifications.Create(ctx, sub.UserID, title, body); err != nil {
		log.Error().Err(err).Int64("subscriptionId", sub.SubscriptionID).Msg("reminder notification failed")
		return false
	}

	// Outbound channels are simulated; real delivery is a different
	// service's problem.
	log.Info().
		Str("channel", "email").
		Str("to", sub.Email).
		Int64("subscriptionId", sub.SubscriptionID).
		Str("reminderType", string(reminderType)).
		Msg("expiry reminder email simulated")
	log.Info().
		Str("channel", "sms").
		Str("to", sub.Username).
		Int64("subscriptionId", sub.SubscriptionID).
		Msg("expiry reminder sms simulated")

	if err := s.purchases.RecordReminder(ctx, sub.SubscriptionID, reminderType); err != nil {
		log.Error().Err(err).Int64("subscriptionId", sub.SubscriptionID).Msg("reminder dedup record failed")
		return false
	}

	if s.broker != nil {
		if err := s.broker.Publish(ctx, sub.UserID, "SUBSCRIPTION_EXPIRING", map[string]any{
			"subscriptionId": sub.SubscriptionID,
			"cityId":         sub.CityID,
			"cityName":       sub.CityName,
			"expiresAt":      sub.ExpiresAt,
			"daysLeft":       days,
		}); err != nil {
			log.Warn().Err(err).Int64("userId", sub.UserID).Msg("reminder push failed")
		}
	}
	return true
}
