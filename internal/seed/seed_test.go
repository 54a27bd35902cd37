package seed

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"unicode/utf8"

	"warbler/internal/credentials"
	"warbler/internal/models"
	"warbler/internal/repository"
	"warbler/internal/service"
	"warbler/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func newSeeder(t *testing.T) (*Seeder, *repository.Store, *service.UserService, *service.MessageService) {
	t.Helper()
	store := repository.NewStore(testutil.NewTestDB(t))
	users := service.NewUserService(store, credentials.NewHasher(bcrypt.MinCost))
	messages := service.NewMessageService(store)
	return NewSeeder(store, users, messages), store, users, messages
}

const samplePreset = `
name: demo
users:
  - username: alice
    password: wonderland
    bio: Down the rabbit hole
    messages:
      - hello warbler
      - second post
    follows: [bob]
  - username: bob
    email: bob@example.com
    messages:
      - hi alice
random:
  users: 0
`

func TestParsePreset(t *testing.T) {
	p, err := ParsePreset([]byte(samplePreset))
	require.NoError(t, err)
	assert.Equal(t, "demo", p.Name)
	require.Len(t, p.Users, 2)
	assert.Equal(t, []string{"bob"}, p.Users[0].Follows)
	assert.Equal(t, "bob@example.com", p.Users[1].Email)
}

func TestParsePresetRejectsBadInput(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"unknown follow", "users:\n  - username: a\n    follows: [ghost]\n"},
		{"duplicate username", "users:\n  - username: a\n  - username: a\n"},
		{"missing username", "users:\n  - email: a@b.com\n"},
		{"negative counts", "random:\n  users: -1\n"},
		{"not yaml", "users: [:"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParsePreset([]byte(tt.raw))
			assert.Error(t, err)
		})
	}
}

func TestLoadPreset(t *testing.T) {
	path := filepath.Join(t.TempDir(), "preset.yaml")
	require.NoError(t, os.WriteFile(path, []byte(samplePreset), 0o600))

	p, err := LoadPreset(path)
	require.NoError(t, err)
	assert.Len(t, p.Users, 2)

	_, err = LoadPreset(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestApplyFixedUsers(t *testing.T) {
	ctx := context.Background()
	seeder, store, users, _ := newSeeder(t)

	p, err := ParsePreset([]byte(samplePreset))
	require.NoError(t, err)

	res, err := seeder.Apply(ctx, p)
	require.NoError(t, err)
	assert.Equal(t, &Result{Users: 2, Messages: 3, Follows: 1}, res)

	alice, err := users.Authenticate(ctx, "alice", "wonderland")
	require.NoError(t, err)
	require.NotNil(t, alice)
	assert.Equal(t, "alice@warbler.test", alice.Email)
	assert.Equal(t, "Down the rabbit hole", alice.Bio)

	bob, err := users.Authenticate(ctx, "bob", DefaultPassword)
	require.NoError(t, err)
	require.NotNil(t, bob)

	following, err := store.Follows.Exists(ctx, alice.ID, bob.ID)
	require.NoError(t, err)
	assert.True(t, following)

	n, err := store.Messages.CountByUser(ctx, alice.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)
}

func TestApplyRandom(t *testing.T) {
	ctx := context.Background()
	seeder, store, _, _ := newSeeder(t)

	res, err := seeder.Apply(ctx, &Preset{
		Name: "random",
		Random: RandomSettings{
			Users:           5,
			MessagesPerUser: 2,
			FollowsPerUser:  2,
			LikesPerUser:    3,
			Seed:            42,
		},
	})
	require.NoError(t, err)
	assert.Equal(t, 5, res.Users)
	assert.Equal(t, 10, res.Messages)
	assert.Equal(t, 10, res.Follows)
	assert.LessOrEqual(t, res.Likes, 15)

	var likes int64
	require.NoError(t, store.DB().Model(&models.Like{}).Count(&likes).Error)
	assert.EqualValues(t, res.Likes, likes)

	var follows int64
	require.NoError(t, store.DB().Model(&models.Follow{}).Where("follower_id = followed_id").Count(&follows).Error)
	assert.Zero(t, follows, "random graph never has self follows")
}

func TestClearAll(t *testing.T) {
	ctx := context.Background()
	seeder, store, _, _ := newSeeder(t)

	p, err := ParsePreset([]byte(samplePreset))
	require.NoError(t, err)
	_, err = seeder.Apply(ctx, p)
	require.NoError(t, err)

	require.NoError(t, seeder.ClearAll(ctx))

	for _, model := range []interface{}{&models.User{}, &models.Message{}, &models.Follow{}, &models.Like{}} {
		var n int64
		require.NoError(t, store.DB().Model(model).Count(&n).Error)
		assert.Zerof(t, n, "%T rows left", model)
	}
}

func TestFactoryTextFitsLimit(t *testing.T) {
	_, _, users, messages := newSeeder(t)
	f := NewFactory(users, messages, 7)
	for i := 0; i < 50; i++ {
		text := f.BuildText()
		assert.NotEmpty(t, text)
		assert.LessOrEqual(t, utf8.RuneCountInString(text), models.MaxMessageLength)
	}
}

func TestFactoryCreateUserOverrides(t *testing.T) {
	ctx := context.Background()
	_, _, users, messages := newSeeder(t)
	f := NewFactory(users, messages, 1)

	u, err := f.CreateUser(ctx, func(in *service.SignupInput) {
		in.Username = "fixed"
		in.Email = "fixed@example.com"
	})
	require.NoError(t, err)
	assert.Equal(t, "fixed", u.Username)

	msg, err := f.CreateMessage(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, u.ID, msg.UserID)
}

func TestTruncateRunes(t *testing.T) {
	assert.Equal(t, "héll", truncateRunes("héllo", 4))
	assert.Equal(t, "abc", truncateRunes("abc", 10))
}

func TestShippedDemoPresetIsValid(t *testing.T) {
	p, err := LoadPreset(filepath.Join("..", "..", "seeds", "demo.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "demo", p.Name)
	assert.NotEmpty(t, p.Users)
}
