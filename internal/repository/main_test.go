package repository

import (
	"context"
	"testing"
	"time"

	"warbler/internal/models"
	"warbler/internal/testutil"

	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	return NewStore(testutil.NewTestDB(t))
}

func createUser(t *testing.T, s *Store, username string) *models.User {
	t.Helper()
	u := &models.User{
		Username: username,
		Email:    username + "@example.com",
		Password: "hashed",
	}
	require.NoError(t, s.Users.Create(context.Background(), u))
	return u
}

func createMessage(t *testing.T, s *Store, userID uint, text string, at time.Time) *models.Message {
	t.Helper()
	m := &models.Message{UserID: userID, Text: text, CreatedAt: at}
	require.NoError(t, s.Messages.Create(context.Background(), m))
	return m
}
