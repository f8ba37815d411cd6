package repository

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/contactdesk/admin-server/internal/database"
	"github.com/contactdesk/admin-server/internal/model"
)

const messageColumns = `id, name, email, phone, subject, message, created_at`

// MessageRepository reads and writes the active messages table.
type MessageRepository interface {
	FindByID(ctx context.Context, id int64) (*model.Message, error)
	List(ctx context.Context, limit, offset int) ([]model.Message, error)
	Count(ctx context.Context) (int, error)
	Create(ctx context.Context, params model.CreateMessageParams) (*model.Message, error)
	// Insert writes a row with a caller-chosen id. Used when restoring.
	Insert(ctx context.Context, msg model.Message) error
	Delete(ctx context.Context, id int64) (int64, error)
	// WithTx returns a new repository that uses the given transaction
	WithTx(tx *sqlx.Tx) MessageRepository
}

type messageRepo struct {
	db database.DBTX
}

func NewMessageRepository(db *sqlx.DB) MessageRepository {
	return &messageRepo{db: db}
}

func (r *messageRepo) WithTx(tx *sqlx.Tx) MessageRepository {
	return &messageRepo{db: tx}
}

func (r *messageRepo) FindByID(ctx context.Context, id int64) (*model.Message, error) {
	var msg model.Message
	err := r.db.GetContext(ctx, &msg, r.db.Rebind(`
		SELECT `+messageColumns+` FROM messages WHERE id = ?
	`), id)
	return HandleNotFound(&msg, err)
}

func (r *messageRepo) List(ctx context.Context, limit, offset int) ([]model.Message, error) {
	messages := []model.Message{}
	err := r.db.SelectContext(ctx, &messages, r.db.Rebind(`
		SELECT `+messageColumns+` FROM messages
		ORDER BY created_at DESC, id DESC
		LIMIT ? OFFSET ?
	`), limit, offset)
	if err != nil {
		return nil, err
	}
	return messages, nil
}

func (r *messageRepo) Count(ctx context.Context) (int, error) {
	var count int
	err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM messages`)
	return count, err
}

func (r *messageRepo) Create(ctx context.Context, params model.CreateMessageParams) (*model.Message, error) {
	var id int64
	err := r.db.GetContext(ctx, &id, r.db.Rebind(`
		INSERT INTO messages (name, email, phone, subject, message, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
		RETURNING id
	`), params.Name, params.Email, params.Phone, params.Subject, params.Body, params.CreatedAt)
	if err != nil {
		return nil, err
	}
	return r.FindByID(ctx, id)
}

func (r *messageRepo) Insert(ctx context.Context, msg model.Message) error {
	_, err := r.db.ExecContext(ctx, r.db.Rebind(`
		INSERT INTO messages (id, name, email, phone, subject, message, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`), msg.ID, msg.Name, msg.Email, msg.Phone, msg.Subject, msg.Body, msg.CreatedAt)
	return err
}

func (r *messageRepo) Delete(ctx context.Context, id int64) (int64, error) {
	return rowsAffected(r.db.ExecContext(ctx, r.db.Rebind(`DELETE FROM messages WHERE id = ?`), id))
}
