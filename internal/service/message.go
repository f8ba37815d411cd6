package service

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	apperrors "github.com/contactdesk/admin-server/internal/errors"
	"github.com/contactdesk/admin-server/internal/metrics"
	"github.com/contactdesk/admin-server/internal/model"
	"github.com/contactdesk/admin-server/internal/repository"
	"github.com/contactdesk/admin-server/internal/util"
)

// ContactSubmission is a public contact form post. Company is a honeypot
// field that stays hidden from real visitors.
type ContactSubmission struct {
	Company string `json:"company"`
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Subject string `json:"subject"`
	Message string `json:"message"`
}

// Validate checks the submission and reports the first problem found.
func (c *ContactSubmission) Validate() error {
	if strings.TrimSpace(c.Company) != "" {
		return apperrors.ValidationError("Submission rejected")
	}
	if util.IsBlank(c.Name) {
		return apperrors.MissingRequired("name")
	}
	if util.IsBlank(c.Message) {
		return apperrors.MissingRequired("message")
	}
	if !util.IsValidEmail(c.Email) {
		return apperrors.InvalidInput("email", "must be a valid email address")
	}
	return nil
}

// MessageService stores messages sent through the public contact form.
type MessageService struct {
	messages repository.MessageRepository
	now      func() time.Time
}

func NewMessageService(messages repository.MessageRepository) *MessageService {
	return &MessageService{
		messages: messages,
		now:      time.Now,
	}
}

func (s *MessageService) Submit(ctx context.Context, sub ContactSubmission) (*model.Message, error) {
	if err := sub.Validate(); err != nil {
		metrics.ContactSubmissions.WithLabelValues(metrics.Outcome(err)).Inc()
		return nil, err
	}

	msg, err := s.messages.Create(ctx, model.CreateMessageParams{
		Name:      strings.TrimSpace(sub.Name),
		Email:     strings.TrimSpace(sub.Email),
		Phone:     util.OptionalString(sub.Phone),
		Subject:   util.OptionalString(sub.Subject),
		Body:      strings.TrimSpace(sub.Message),
		CreatedAt: s.now().UTC(),
	})
	if err != nil {
		metrics.ContactSubmissions.WithLabelValues("database_error").Inc()
		return nil, apperrors.Database(err)
	}

	metrics.ContactSubmissions.WithLabelValues("ok").Inc()
	log.Info().Int64("messageId", msg.ID).Msg("contact message received")

	return msg, nil
}
