package repository

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/contactdesk/admin-server/internal/database"
	"github.com/contactdesk/admin-server/internal/model"
)

type AdminSessionRepository interface {
	FindByTokenHash(ctx context.Context, tokenHash string) (*model.AdminSession, error)
	Create(ctx context.Context, params model.CreateAdminSessionParams) error
	DeleteByTokenHash(ctx context.Context, tokenHash string) error
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

type adminSessionRepo struct {
	db database.DBTX
}

func NewAdminSessionRepository(db *sqlx.DB) AdminSessionRepository {
	return &adminSessionRepo{db: db}
}

// FindByTokenHash returns the stored row regardless of expiry; the caller
// decides validity.
func (r *adminSessionRepo) FindByTokenHash(ctx context.Context, tokenHash string) (*model.AdminSession, error) {
	var session model.AdminSession
	err := r.db.GetContext(ctx, &session, r.db.Rebind(`
		SELECT token_hash, created_at, expires_at, ip_address
		FROM admin_sessions
		WHERE token_hash = ?
	`), tokenHash)
	return HandleNotFound(&session, err)
}

func (r *adminSessionRepo) Create(ctx context.Context, params model.CreateAdminSessionParams) error {
	_, err := r.db.ExecContext(ctx, r.db.Rebind(`
		INSERT INTO admin_sessions (token_hash, created_at, expires_at, ip_address)
		VALUES (?, ?, ?, ?)
	`), params.TokenHash, params.CreatedAt, params.ExpiresAt, params.IPAddress)
	return err
}

func (r *adminSessionRepo) DeleteByTokenHash(ctx context.Context, tokenHash string) error {
	_, err := r.db.ExecContext(ctx, r.db.Rebind(`DELETE FROM admin_sessions WHERE token_hash = ?`), tokenHash)
	return err
}

func (r *adminSessionRepo) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	return rowsAffected(r.db.ExecContext(ctx, r.db.Rebind(`
		DELETE FROM admin_sessions
		WHERE expires_at IS NOT NULL AND expires_at < ?
	`), now))
}
