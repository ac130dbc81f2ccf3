package push

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/gcmaps/gcm-server-go/internal/protocol"
	redisclient "github.com/gcmaps/gcm-server-go/internal/redis"
)

// Sender is the delivery end of a subscription. Satisfied by
// *transport.Conn.
type Sender interface {
	ID() uint64
	Send(v any) error
}

// Broker fans server-side events out to connected clients through redis
// pubsub, so decisions made on one server instance reach clients
// attached to another.
type Broker struct {
	redis   *redisclient.Client
	conns   map[int64]map[Sender]bool // userID -> set of connections
	mu      sync.RWMutex
	ctx     context.Context
	cancel  context.CancelFunc
}

func NewBroker(redisClient *redisclient.Client) *Broker {
	ctx, cancel := context.WithCancel(context.Background())
	return &Broker{
		redis:  redisClient,
		conns:  make(map[int64]map[Sender]bool),
		ctx:    ctx,
		cancel: cancel,
	}
}

// Subscribe attaches a connection to a user's event stream. The first
// subscriber for a user opens the redis subscription.
func (b *Broker) Subscribe(userID int64, conn Sender) {
	b.mu.Lock()
	if b.conns[userID] == nil {
		b.conns[userID] = make(map[Sender]bool)
		go b.subscribeToRedis(userID)
	}
	b.conns[userID][conn] = true
	connCount := len(b.conns[userID])
	b.mu.Unlock()

	log.Info().
		Int64("userId", userID).
		Uint64("connId", conn.ID()).
		Int("connCount", connCount).
		Msg("push subscriber attached")
}

func (b *Broker) Unsubscribe(userID int64, conn Sender) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if conns, ok := b.conns[userID]; ok {
		delete(conns, conn)
		if len(conns) == 0 {
			delete(b.conns, userID)
		}

		log.Info().
			Int64("userId", userID).
			Uint64("connId", conn.ID()).
			Int("connCount", len(conns)).
			Msg("push subscriber detached")
	}
}

// Publish sends an event to every connection of the user, on any
// server instance. Delivery is best effort.
func (b *Broker) Publish(ctx context.Context, userID int64, eventType string, data any) error {
	raw, err := json.Marshal(data)
	if err != nil {
		return err
	}
	payload, err := json.Marshal(protocol.Event{Type: eventType, Data: raw})
	if err != nil {
		return err
	}

	channel := redisclient.UserChannel(userID)
	return b.redis.Publish(ctx, channel, payload).Err()
}

func (b *Broker) subscribeToRedis(userID int64) {
	channel := redisclient.UserChannel(userID)
	pubsub := b.redis.Subscribe(b.ctx, channel)
	defer pubsub.Close()

	log.Debug().
		Int64("userId", userID).
		Str("channel", channel).
		Msg("redis pubsub subscribed")

	ch := pubsub.Channel()

	for {
		select {
		case <-b.ctx.Done():
			return

		case msg, ok := <-ch:
			if !ok {
				return
			}

			var event protocol.Event
			if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
				log.Error().Err(err).Msg("failed to unmarshal push event")
				continue
			}

			b.deliver(userID, event)
		}
	}
}

func (b *Broker) deliver(userID int64, event protocol.Event) {
	b.mu.RLock()
	conns := make([]Sender, 0, len(b.conns[userID]))
	for conn := range b.conns[userID] {
		conns = append(conns, conn)
	}
	b.mu.RUnlock()

	for _, conn := range conns {
		if err := conn.Send(event); err != nil {
			log.Warn().
				Err(err).
				Int64("userId", userID).
				Uint64("connId", conn.ID()).
				Msg("push delivery failed")
		}
	}
}

func (b *Broker) Close() {
	b.cancel()

	b.mu.Lock()
	defer b.mu.Unlock()
	b.conns = make(map[int64]map[Sender]bool)
}

func (b *Broker) SubscriberCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()

	total := 0
	for _, conns := range b.conns {
		total += len(conns)
	}
	return total
}
