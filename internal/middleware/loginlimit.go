package middleware

import (
	"github.com/contactdesk/admin-server/internal/config"
	"github.com/contactdesk/admin-server/internal/service"
)

// NewLoginRateLimit limits POST /admin/login attempts per client address.
func NewLoginRateLimit(limiter service.Limiter, perMinute int) *IPRateLimitMiddleware {
	m := NewIPRateLimitMiddleware(limiter, perMinute, config.RateLimitWindow, "login")
	m.message = "Too many login attempts. Please try again later."
	return m
}

// NewContactRateLimit limits public contact form posts per client address.
func NewContactRateLimit(limiter service.Limiter, perMinute int) *IPRateLimitMiddleware {
	return NewIPRateLimitMiddleware(limiter, perMinute, config.RateLimitWindow, "contact")
}
