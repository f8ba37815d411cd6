package service

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog/log"

	"github.com/contactdesk/admin-server/internal/database"
	apperrors "github.com/contactdesk/admin-server/internal/errors"
	"github.com/contactdesk/admin-server/internal/metrics"
	"github.com/contactdesk/admin-server/internal/model"
	"github.com/contactdesk/admin-server/internal/repository"
)

// MessageArchiver moves messages between the active and archive tables. Each
// move is a single transaction, so a message is never in both or neither.
type MessageArchiver struct {
	db       *database.DB
	messages repository.MessageRepository
	archive  repository.ArchiveRepository
	now      func() time.Time
}

func NewMessageArchiver(
	db *database.DB,
	messages repository.MessageRepository,
	archive repository.ArchiveRepository,
) *MessageArchiver {
	return &MessageArchiver{
		db:       db,
		messages: messages,
		archive:  archive,
		now:      time.Now,
	}
}

func (a *MessageArchiver) ListActive(ctx context.Context, page, limit int) (*model.Page[model.Message], error) {
	offset := (page - 1) * limit

	messages, err := a.messages.List(ctx, limit, offset)
	if err != nil {
		return nil, apperrors.Database(err)
	}
	total, err := a.messages.Count(ctx)
	if err != nil {
		return nil, apperrors.Database(err)
	}

	return &model.Page[model.Message]{Data: messages, Total: total, Page: page, Limit: limit}, nil
}

func (a *MessageArchiver) ListArchived(ctx context.Context, page, limit int) (*model.Page[model.ArchivedMessage], error) {
	offset := (page - 1) * limit

	messages, err := a.archive.List(ctx, limit, offset)
	if err != nil {
		return nil, apperrors.Database(err)
	}
	total, err := a.archive.Count(ctx)
	if err != nil {
		return nil, apperrors.Database(err)
	}

	return &model.Page[model.ArchivedMessage]{Data: messages, Total: total, Page: page, Limit: limit}, nil
}

// Archive copies message id into the archive and removes it from the active
// table.
func (a *MessageArchiver) Archive(ctx context.Context, id int64) (*model.ArchivedMessage, error) {
	var archived *model.ArchivedMessage

	err := a.db.WithTx(ctx, func(tx *sqlx.Tx) error {
		messages := a.messages.WithTx(tx)
		archive := a.archive.WithTx(tx)

		msg, err := messages.FindByID(ctx, id)
		if err != nil {
			return err
		}
		if msg == nil {
			return apperrors.NotFound("Message")
		}

		archived, err = archive.Create(ctx, model.ArchiveMessageParams{
			Message:    *msg,
			ArchivedAt: a.now().UTC(),
		})
		if err != nil {
			return err
		}

		deleted, err := messages.Delete(ctx, id)
		if err != nil {
			return err
		}
		if deleted == 0 {
			return apperrors.NotFound("Message")
		}
		return nil
	})

	metrics.ArchiveOperations.WithLabelValues(string(model.ArchiveActionArchive), metrics.Outcome(apperrors.FromStorage(err))).Inc()
	if err != nil {
		return nil, apperrors.FromStorage(err)
	}

	log.Info().
		Int64("messageId", id).
		Int64("archiveId", archived.ArchiveID).
		Msg("message archived")

	return archived, nil
}

// Restore moves the most recent archived copy of message id back into the
// active table under its original id and creation time.
func (a *MessageArchiver) Restore(ctx context.Context, id int64) (*model.Message, error) {
	var restored model.Message

	err := a.db.WithTx(ctx, func(tx *sqlx.Tx) error {
		messages := a.messages.WithTx(tx)
		archive := a.archive.WithTx(tx)

		archived, err := archive.FindLatestByOriginalID(ctx, id)
		if err != nil {
			return err
		}
		if archived == nil {
			return apperrors.NotFound("Archived message")
		}

		restored = archived.Restored()
		if err := messages.Insert(ctx, restored); err != nil {
			if database.IsUniqueViolation(err) {
				return apperrors.Conflict("An active message with this id already exists").WithCause(err)
			}
			return err
		}

		deleted, err := archive.Delete(ctx, archived.ArchiveID)
		if err != nil {
			return err
		}
		if deleted == 0 {
			return apperrors.NotFound("Archived message")
		}
		return nil
	})

	metrics.ArchiveOperations.WithLabelValues(string(model.ArchiveActionRestore), metrics.Outcome(apperrors.FromStorage(err))).Inc()
	if err != nil {
		return nil, apperrors.FromStorage(err)
	}

	log.Info().Int64("messageId", id).Msg("message restored")

	return &restored, nil
}

// Apply dispatches an archive action received from the admin console.
func (a *MessageArchiver) Apply(ctx context.Context, id int64, action model.ArchiveAction) error {
	switch action {
	case model.ArchiveActionArchive:
		_, err := a.Archive(ctx, id)
		return err
	case model.ArchiveActionRestore:
		_, err := a.Restore(ctx, id)
		return err
	default:
		return apperrors.New(apperrors.ErrCodeInvalidInput, "Invalid archive action")
	}
}

// DeleteArchived permanently removes one archive row. Deleting a missing row
// is not an error.
func (a *MessageArchiver) DeleteArchived(ctx context.Context, archiveID int64) error {
	deleted, err := a.archive.Delete(ctx, archiveID)
	metrics.ArchiveOperations.WithLabelValues("delete", metrics.Outcome(apperrors.FromStorage(err))).Inc()
	if err != nil {
		return apperrors.Database(err)
	}

	log.Info().
		Int64("archiveId", archiveID).
		Int64("deleted", deleted).
		Msg("archived message deleted")

	return nil
}
