package repository

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/contactdesk/admin-server/internal/database"
	"github.com/contactdesk/admin-server/internal/model"
)

const archiveColumns = `id, original_id, name, email, phone, subject, message, created_at, archived_at`

// ArchiveRepository reads and writes the messages_archive table.
type ArchiveRepository interface {
	FindByID(ctx context.Context, archiveID int64) (*model.ArchivedMessage, error)
	// FindLatestByOriginalID returns the most recently archived row for a
	// message id, or nil.
	FindLatestByOriginalID(ctx context.Context, originalID int64) (*model.ArchivedMessage, error)
	List(ctx context.Context, limit, offset int) ([]model.ArchivedMessage, error)
	Count(ctx context.Context) (int, error)
	Create(ctx context.Context, params model.ArchiveMessageParams) (*model.ArchivedMessage, error)
	Delete(ctx context.Context, archiveID int64) (int64, error)
	WithTx(tx *sqlx.Tx) ArchiveRepository
}

type archiveRepo struct {
	db database.DBTX
}

func NewArchiveRepository(db *sqlx.DB) ArchiveRepository {
	return &archiveRepo{db: db}
}

func (r *archiveRepo) WithTx(tx *sqlx.Tx) ArchiveRepository {
	return &archiveRepo{db: tx}
}

func (r *archiveRepo) FindByID(ctx context.Context, archiveID int64) (*model.ArchivedMessage, error) {
	var msg model.ArchivedMessage
	err := r.db.GetContext(ctx, &msg, r.db.Rebind(`
		SELECT `+archiveColumns+` FROM messages_archive WHERE id = ?
	`), archiveID)
	return HandleNotFound(&msg, err)
}

func (r *archiveRepo) FindLatestByOriginalID(ctx context.Context, originalID int64) (*model.ArchivedMessage, error) {
	var msg model.ArchivedMessage
	err := r.db.GetContext(ctx, &msg, r.db.Rebind(`
		SELECT `+archiveColumns+` FROM messages_archive
		WHERE original_id = ?
		ORDER BY archived_at DESC, id DESC
		LIMIT 1
	`), originalID)
	return HandleNotFound(&msg, err)
}

func (r *archiveRepo) List(ctx context.Context, limit, offset int) ([]model.ArchivedMessage, error) {
	messages := []model.ArchivedMessage{}
	err := r.db.SelectContext(ctx, &messages, r.db.Rebind(`
		SELECT `+archiveColumns+` FROM messages_archive
		ORDER BY archived_at DESC, id DESC
		LIMIT ? OFFSET ?
	`), limit, offset)
	if err != nil {
		return nil, err
	}
	return messages, nil
}

func (r *archiveRepo) Count(ctx context.Context) (int, error) {
	var count int
	err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM messages_archive`)
	return count, err
}

func (r *archiveRepo) Create(ctx context.Context, params model.ArchiveMessageParams) (*model.ArchivedMessage, error) {
	m := params.Message
	var id int64
	err := r.db.GetContext(ctx, &id, r.db.Rebind(`
		INSERT INTO messages_archive (original_id, name, email, phone, subject, message, created_at, archived_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		RETURNING id
	`), m.ID, m.Name, m.Email, m.Phone, m.Subject, m.Body, m.CreatedAt, params.ArchivedAt)
	if err != nil {
		return nil, err
	}
	return r.FindByID(ctx, id)
}

func (r *archiveRepo) Delete(ctx context.Context, archiveID int64) (int64, error) {
	return rowsAffected(r.db.ExecContext(ctx, r.db.Rebind(`DELETE FROM messages_archive WHERE id = ?`), archiveID))
}
