package middleware

import (
	"context"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/contactdesk/admin-server/internal/audit"
	"github.com/contactdesk/admin-server/internal/config"
	apperrors "github.com/contactdesk/admin-server/internal/errors"
	"github.com/contactdesk/admin-server/internal/httputil"
	"github.com/contactdesk/admin-server/internal/model"
	"github.com/contactdesk/admin-server/internal/service"
)

type contextKey string

const AdminSessionContextKey contextKey = "adminSession"

func GetAdminSession(ctx context.Context) *model.AdminSession {
	if session, ok := ctx.Value(AdminSessionContextKey).(*model.AdminSession); ok {
		return session
	}
	return nil
}

// AdminSessionMiddleware rejects requests without a valid admin_auth cookie.
type AdminSessionMiddleware struct {
	sessions      *service.SessionStore
	secureCookies bool
}

func NewAdminSessionMiddleware(sessions *service.SessionStore, secureCookies bool) *AdminSessionMiddleware {
	return &AdminSessionMiddleware{
		sessions:      sessions,
		secureCookies: secureCookies,
	}
}

func (m *AdminSessionMiddleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := SessionToken(r)
		if token == "" {
			httputil.WriteError(w, r, apperrors.Unauthorized("Unauthorized"))
			return
		}

		session, err := m.sessions.Authenticate(r.Context(), token, httputil.ClientIPPtr(r))
		if err != nil {
			log.Error().Err(err).Msg("admin session middleware: database error")
			httputil.WriteError(w, r, err)
			return
		}

		if session == nil {
			ClearSessionCookie(w, m.secureCookies)
			audit.LogFromRequest(r, audit.Event{Type: audit.EventAuthFailure})
			httputil.WriteError(w, r, apperrors.Unauthorized("Unauthorized"))
			return
		}

		ctx := context.WithValue(r.Context(), AdminSessionContextKey, session)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// SessionToken returns the admin_auth cookie value, or "".
func SessionToken(r *http.Request) string {
	cookie, err := r.Cookie(config.AdminSessionCookie)
	if err != nil {
		return ""
	}
	return cookie.Value
}

func SetSessionCookie(w http.ResponseWriter, token string, secure bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     config.AdminSessionCookie,
		Value:    token,
		Path:     "/",
		MaxAge:   int(config.AdminSessionTTL.Seconds()),
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	})
}

func ClearSessionCookie(w http.ResponseWriter, secure bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     config.AdminSessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	})
}
