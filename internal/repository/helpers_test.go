package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/contactdesk/admin-server/internal/config"
	"github.com/contactdesk/admin-server/internal/database"
	"github.com/contactdesk/admin-server/internal/model"
)

func setupTestDB(t *testing.T) *database.DB {
	t.Helper()

	db, err := database.Connect(config.DriverSQLite, ":memory:")
	require.NoError(t, err)
	require.NoError(t, db.Migrate(context.Background()))

	return db
}

func strPtr(s string) *string { return &s }

// baseTime is truncated so values survive the text round trip unchanged.
var baseTime = time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC)

func createMessage(t *testing.T, repo MessageRepository, name string, at time.Time) *model.Message {
	t.Helper()
	msg, err := repo.Create(context.Background(), model.CreateMessageParams{
		Name:      name,
		Email:     name + "@example.com",
		Phone:     strPtr("+48 600 100 200"),
		Subject:   nil,
		Body:      "Hello from " + name,
		CreatedAt: at,
	})
	require.NoError(t, err)
	return msg
}
