package service

import (
	"context"
	"testing"

	"warbler/internal/credentials"
	"warbler/internal/models"
	"warbler/internal/repository"
	"warbler/internal/testutil"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type fixture struct {
	store    *repository.Store
	users    *UserService
	messages *MessageService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := repository.NewStore(testutil.NewTestDB(t))
	return &fixture{
		store:    store,
		users:    NewUserService(store, credentials.NewHasher(bcrypt.MinCost)),
		messages: NewMessageService(store),
	}
}

func (f *fixture) signup(t *testing.T, username string) *models.User {
	t.Helper()
	u, err := f.users.Signup(context.Background(), SignupInput{
		Username: username,
		Email:    username + "@test.com",
		Password: "password",
	})
	require.NoError(t, err)
	return u
}

func assertCode(t *testing.T, err error, code string) {
	t.Helper()
	require.Error(t, err)
	require.Truef(t, models.HasCode(err, code), "expected %s, got %v", code, err)
}

func strPtr(s string) *string { return &s }
