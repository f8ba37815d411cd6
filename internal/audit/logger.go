// Package audit writes security-relevant admin actions as structured log
// lines tagged audit=security.
package audit

import (
	"context"
	"net/http"

	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/contactdesk/admin-server/internal/httputil"
)

type EventType string

const (
	EventLoginSuccess    EventType = "login_success"
	EventLoginFailure    EventType = "login_failure"
	EventLogout          EventType = "logout"
	EventAuthFailure     EventType = "auth_failure"
	EventCSRFFailure     EventType = "csrf_failure"
	EventRateLimitExceed EventType = "rate_limit_exceeded"
	EventMessageArchive  EventType = "message_archive"
	EventMessageRestore  EventType = "message_restore"
	EventArchiveDelete   EventType = "archive_delete"
	EventContentChange   EventType = "content_change"
)

// Rejections are logged at warn, everything else at info.
var rejected = map[EventType]bool{
	EventLoginFailure:    true,
	EventAuthFailure:     true,
	EventCSRFFailure:     true,
	EventRateLimitExceed: true,
}

type Event struct {
	Type      EventType
	MessageID int64
	IP        string
	UserAgent string
	Details   map[string]interface{}
}

func (e Event) level() zerolog.Level {
	if rejected[e.Type] {
		return zerolog.WarnLevel
	}
	return zerolog.InfoLevel
}

// Log writes a security event to the global logger. The chi request id is
// attached when ctx carries one.
func Log(ctx context.Context, event Event) {
	entry := log.WithLevel(event.level()).
		Str("audit", "security").
		Str("event_type", string(event.Type))

	if reqID := chimiddleware.GetReqID(ctx); reqID != "" {
		entry = entry.Str("request_id", reqID)
	}
	if event.MessageID != 0 {
		entry = entry.Int64("message_id", event.MessageID)
	}
	if event.IP != "" {
		entry = entry.Str("ip", event.IP)
	}
	if event.UserAgent != "" {
		entry = entry.Str("user_agent", event.UserAgent)
	}
	if len(event.Details) > 0 {
		entry = entry.Fields(event.Details)
	}

	entry.Msg("security audit event")
}

func LogFromRequest(r *http.Request, event Event) {
	if ip, ok := httputil.ClientIP(r); ok {
		event.IP = ip
	}
	event.UserAgent = r.UserAgent()
	Log(r.Context(), event)
}
