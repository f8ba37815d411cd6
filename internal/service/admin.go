package service

import (
	"context"

	"github.com/rs/zerolog/log"

	apperrors "github.com/contactdesk/admin-server/internal/errors"
	"github.com/contactdesk/admin-server/internal/metrics"
	"github.com/contactdesk/admin-server/internal/util"
)

// AdminService checks the admin password and manages the resulting session.
type AdminService struct {
	sessions     *SessionStore
	passwordHash string
}

func NewAdminService(sessions *SessionStore, passwordHash string) *AdminService {
	return &AdminService{
		sessions:     sessions,
		passwordHash: passwordHash,
	}
}

// Login verifies password against the configured bcrypt hash and opens a
// session bound to remoteAddr.
func (s *AdminService) Login(ctx context.Context, password string, remoteAddr *string) (string, error) {
	if s.passwordHash == "" {
		log.Error().Msg("admin login attempted but ADMIN_PASSWORD_HASH is not configured")
		metrics.AdminLogins.WithLabelValues("rejected").Inc()
		return "", apperrors.Unauthorized("Invalid password")
	}

	if !util.CheckPasswordHash(password, s.passwordHash) {
		metrics.AdminLogins.WithLabelValues("rejected").Inc()
		return "", apperrors.Unauthorized("Invalid password")
	}

	token, err := s.sessions.Create(ctx, remoteAddr)
	if err != nil {
		metrics.AdminLogins.WithLabelValues("error").Inc()
		return "", err
	}

	metrics.AdminLogins.WithLabelValues("ok").Inc()
	return token, nil
}

func (s *AdminService) Logout(ctx context.Context, token string) error {
	return s.sessions.Invalidate(ctx, token)
}

func (s *AdminService) IsAuthenticated(ctx context.Context, token string, remoteAddr *string) (bool, error) {
	return s.sessions.Validate(ctx, token, remoteAddr)
}
