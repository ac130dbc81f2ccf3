package audit

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

type EventType string

const (
	EventLoginSuccess   EventType = "login_success"
	EventLoginFailure   EventType = "login_failure"
	EventLoginConflict  EventType = "login_conflict"
	EventLogout         EventType = "logout"
	EventRegister       EventType = "register"
	EventSessionExpired EventType = "session_expired"
	EventAuthFailure    EventType = "auth_failure"
	EventRoleDenied     EventType = "role_denied"
)

type Event struct {
	Type     EventType
	UserID   int64
	Username string
	ConnID   uint64
	Remote   string
	Details  map[string]interface{}
}

// Log writes a structured security event to the application log. This
// is separate from the database audit trail, which records domain
// decisions inside their transactions.
func Log(ctx context.Context, event Event) {
	logger := log.With().
		Str("audit", "security").
		Str("event_type", string(event.Type)).
		Time("timestamp", time.Now()).
		Logger()

	if event.UserID != 0 {
		logger = logger.With().Int64("user_id", event.UserID).Logger()
	}
	if event.Username != "" {
		logger = logger.With().Str("username", event.Username).Logger()
	}
	if event.ConnID != 0 {
		logger = logger.With().Uint64("conn_id", event.ConnID).Logger()
	}
	if event.Remote != "" {
		logger = logger.With().Str("remote", event.Remote).Logger()
	}

	logEvent := logger.Info()
	for k, v := range event.Details {
		logEvent = addField(logEvent, k, v)
	}
	logEvent.Msg("security audit event")
}

func addField(e *zerolog.Event, key string, value interface{}) *zerolog.Event {
	switch v := value.(type) {
	case string:
		return e.Str(key, v)
	case int:
		return e.Int(key, v)
	case int64:
		return e.Int64(key, v)
	case bool:
		return e.Bool(key, v)
	default:
		return e.Interface(key, v)
	}
}
