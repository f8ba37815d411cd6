package middleware

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/contactdesk/admin-server/internal/audit"
	apperrors "github.com/contactdesk/admin-server/internal/errors"
	"github.com/contactdesk/admin-server/internal/httputil"
	"github.com/contactdesk/admin-server/internal/service"
)

// IPRateLimitMiddleware limits requests per client address. Each instance
// uses its own key prefix so login and contact budgets are separate.
type IPRateLimitMiddleware struct {
	limiter service.Limiter
	limit   int
	window  time.Duration
	prefix  string
	message string
}

func NewIPRateLimitMiddleware(limiter service.Limiter, limit int, window time.Duration, prefix string) *IPRateLimitMiddleware {
	return &IPRateLimitMiddleware{
		limiter: limiter,
		limit:   limit,
		window:  window,
		prefix:  prefix,
		message: "Too many requests. Please try again later.",
	}
}

func (m *IPRateLimitMiddleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip, ok := httputil.ClientIP(r)
		if !ok {
			ip = "unknown"
		}

		key := fmt.Sprintf("ip:%s:%s", m.prefix, ip)
		allowed, resetAt := m.limiter.CheckLimit(r.Context(), key, m.limit, m.window)

		if !allowed {
			secondsLeft := int(time.Until(resetAt).Seconds()) + 1
			if secondsLeft < 1 {
				secondsLeft = 1
			}
			w.Header().Set("Retry-After", strconv.Itoa(secondsLeft))
			audit.LogFromRequest(r, audit.Event{
				Type:    audit.EventRateLimitExceed,
				Details: map[string]interface{}{"scope": m.prefix},
			})
			err := apperrors.RateLimitExceeded()
			err.Message = m.message
			httputil.WriteError(w, r, err)
			return
		}

		next.ServeHTTP(w, r)
	})
}
