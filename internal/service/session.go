package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/contactdesk/admin-server/internal/config"
	apperrors "github.com/contactdesk/admin-server/internal/errors"
	"github.com/contactdesk/admin-server/internal/model"
	"github.com/contactdesk/admin-server/internal/repository"
	"github.com/contactdesk/admin-server/internal/util"
)

// SessionStore issues and checks admin session tokens. Only the SHA-256 of a
// token is persisted; the plain token lives in the caller's cookie.
type SessionStore struct {
	repo     repository.AdminSessionRepository
	ttl      time.Duration
	now      func() time.Time
	newToken func() string
}

func NewSessionStore(repo repository.AdminSessionRepository) *SessionStore {
	return &SessionStore{
		repo:     repo,
		ttl:      config.AdminSessionTTL,
		now:      time.Now,
		newToken: uuid.NewString,
	}
}

// Create persists a new session bound to remoteAddr when it is known.
func (s *SessionStore) Create(ctx context.Context, remoteAddr *string) (string, error) {
	token := s.newToken()
	now := s.now().UTC()
	expiresAt := now.Add(s.ttl)

	err := s.repo.Create(ctx, model.CreateAdminSessionParams{
		TokenHash: util.HashToken(token),
		CreatedAt: now,
		ExpiresAt: &expiresAt,
		IPAddress: remoteAddr,
	})
	if err != nil {
		return "", apperrors.Database(err)
	}

	return token, nil
}

// Authenticate returns the session for token, or nil when the token is
// unknown, expired, or bound to a different address.
func (s *SessionStore) Authenticate(ctx context.Context, token string, remoteAddr *string) (*model.AdminSession, error) {
	if token == "" {
		return nil, nil
	}

	session, err := s.repo.FindByTokenHash(ctx, util.HashToken(token))
	if err != nil {
		return nil, apperrors.Database(err)
	}
	if session == nil {
		return nil, nil
	}

	if session.ExpiresAt != nil && s.now().After(*session.ExpiresAt) {
		return nil, nil
	}

	if session.IPAddress != nil {
		if remoteAddr == nil || *remoteAddr != *session.IPAddress {
			log.Debug().
				Str("sessionIp", *session.IPAddress).
				Msg("admin session presented from a different address")
			return nil, nil
		}
	}

	return session, nil
}

func (s *SessionStore) Validate(ctx context.Context, token string, remoteAddr *string) (bool, error) {
	session, err := s.Authenticate(ctx, token, remoteAddr)
	if err != nil {
		return false, err
	}
	return session != nil, nil
}

// Invalidate removes the session if it exists.
func (s *SessionStore) Invalidate(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	if err := s.repo.DeleteByTokenHash(ctx, util.HashToken(token)); err != nil {
		return apperrors.Database(err)
	}
	return nil
}

// PurgeExpired deletes every session whose expiry has passed.
func (s *SessionStore) PurgeExpired(ctx context.Context) (int64, error) {
	n, err := s.repo.DeleteExpired(ctx, s.now().UTC())
	if err != nil {
		return 0, apperrors.Database(err)
	}
	return n, nil
}
