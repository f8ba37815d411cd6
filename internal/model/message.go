package model

import (
	"time"
)

type Message struct {
	ID        int64     `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	Email     string    `db:"email" json:"email"`
	Phone     *string   `db:"phone" json:"phone"`
	Subject   *string   `db:"subject" json:"subject"`
	Body      string    `db:"message" json:"message"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}

type ArchivedMessage struct {
	ArchiveID  int64     `db:"id" json:"archiveId"`
	OriginalID int64     `db:"original_id" json:"originalId"`
	Name       string    `db:"name" json:"name"`
	Email      string    `db:"email" json:"email"`
	Phone      *string   `db:"phone" json:"phone"`
	Subject    *string   `db:"subject" json:"subject"`
	Body       string    `db:"message" json:"message"`
	CreatedAt  time.Time `db:"created_at" json:"createdAt"`
	ArchivedAt time.Time `db:"archived_at" json:"archivedAt"`
}

// Restored returns the active form of an archived row, keeping the identity
// and creation time it had before archival.
func (a *ArchivedMessage) Restored() Message {
	return Message{
		ID:        a.OriginalID,
		Name:      a.Name,
		Email:     a.Email,
		Phone:     a.Phone,
		Subject:   a.Subject,
		Body:      a.Body,
		CreatedAt: a.CreatedAt,
	}
}

type CreateMessageParams struct {
	Name      string
	Email     string
	Phone     *string
	Subject   *string
	Body      string
	CreatedAt time.Time
}

type ArchiveMessageParams struct {
	Message    Message
	ArchivedAt time.Time
}

type ArchiveAction string

const (
	ArchiveActionArchive ArchiveAction = "archive"
	ArchiveActionRestore ArchiveAction = "restore"
)

func (a ArchiveAction) IsValid() bool {
	return a == ArchiveActionArchive || a == ArchiveActionRestore
}

// Page is one slice of an ordered listing.
type Page[T any] struct {
	Data  []T `json:"data"`
	Total int `json:"total"`
	Page  int `json:"page"`
	Limit int `json:"limit"`
}
