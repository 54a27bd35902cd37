package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	"warbler/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func setupMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	gormDB, err := gorm.Open(postgres.New(postgres.Config{
		Conn: db,
	}), &gorm.Config{})
	require.NoError(t, err)

	return gormDB, mock
}

func TestUserRepository_GetByID_Mock(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	tests := []struct {
		name         string
		userID       uint
		mockBehavior func()
		wantCode     string
	}{
		{
			name:   "Success",
			userID: 1,
			mockBehavior: func() {
				rows := sqlmock.NewRows([]string{"id", "username", "email"}).
					AddRow(1, "testuser", "test@test.com")
				mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "users" WHERE "users"."id" = $1`)).
					WillReturnRows(rows)
			},
		},
		{
			name:   "Not Found",
			userID: 99,
			mockBehavior: func() {
				mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "users" WHERE "users"."id" = $1`)).
					WillReturnError(gorm.ErrRecordNotFound)
			},
			wantCode: models.CodeNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.mockBehavior()
			user, err := repo.GetByID(ctx, tt.userID)

			if tt.wantCode != "" {
				assert.True(t, models.HasCode(err, tt.wantCode))
				assert.Nil(t, user)
			} else if assert.NoError(t, err) {
				assert.Equal(t, "testuser", user.Username)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestUserRepository_Create_Mock(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		db, mock := setupMockDB(t)
		repo := NewUserRepository(db)

		mock.ExpectBegin()
		mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO "users"`)).
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))
		mock.ExpectCommit()

		user := &models.User{Username: "testuser", Email: "test@test.com", Password: "hashed"}
		require.NoError(t, repo.Create(context.Background(), user))
		assert.Equal(t, uint(1), user.ID)
		assert.Equal(t, models.DefaultImageURL, user.ImageURL)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Unique violation becomes conflict", func(t *testing.T) {
		db, mock := setupMockDB(t)
		repo := NewUserRepository(db)

		mock.ExpectBegin()
		mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO "users"`)).
			WillReturnError(&pgconn.PgError{Code: "23505", Message: "duplicate key value violates unique constraint"})
		mock.ExpectRollback()

		err := repo.Create(context.Background(), &models.User{Username: "testuser", Email: "test@test.com", Password: "x"})
		assert.True(t, models.HasCode(err, models.CodeConflict))
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestUserRepository_UniqueUsernameAndEmail(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	createUser(t, s, "testuser")

	err := s.Users.Create(ctx, &models.User{Username: "testuser", Email: "other@example.com", Password: "x"})
	assert.True(t, models.HasCode(err, models.CodeConflict), "duplicate username: %v", err)

	err = s.Users.Create(ctx, &models.User{Username: "other", Email: "testuser@example.com", Password: "x"})
	assert.True(t, models.HasCode(err, models.CodeConflict), "duplicate email: %v", err)
}

func TestUserRepository_Lookups(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	u := createUser(t, s, "alice")

	got, err := s.Users.GetByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)

	got, err = s.Users.GetByEmail(ctx, "alice@example.com")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)

	got, err = s.Users.GetByUsername(ctx, "nobody")
	assert.NoError(t, err)
	assert.Nil(t, got)

	_, err = s.Users.GetByID(ctx, 9999)
	assert.True(t, models.HasCode(err, models.CodeNotFound))
}

func TestUserRepository_List(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	createUser(t, s, "alice")
	createUser(t, s, "bob")
	createUser(t, s, "alicia")

	all, err := s.Users.List(ctx, "", 0)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	matched, err := s.Users.List(ctx, "ALI", 0)
	require.NoError(t, err)
	require.Len(t, matched, 2)
	assert.Equal(t, "alice", matched[0].Username)
	assert.Equal(t, "alicia", matched[1].Username)
}

func TestUserRepository_Update(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	u := createUser(t, s, "alice")

	u.Bio = "hello"
	u.ImageURL = ""
	require.NoError(t, s.Users.Update(ctx, u))

	got, err := s.Users.GetByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "hello", got.Bio)
	assert.Equal(t, models.DefaultImageURL, got.ImageURL)
}

func TestUserRepository_DeleteCascades(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	now := time.Now().UTC()

	u1 := createUser(t, s, "u1")
	u2 := createUser(t, s, "u2")
	m1 := createMessage(t, s, u1.ID, "mine", now)
	m2 := createMessage(t, s, u2.ID, "theirs", now)

	require.NoError(t, s.Follows.Create(ctx, u1.ID, u2.ID))
	require.NoError(t, s.Follows.Create(ctx, u2.ID, u1.ID))
	require.NoError(t, s.Messages.Like(ctx, u1.ID, m2.ID))
	require.NoError(t, s.Messages.Like(ctx, u2.ID, m1.ID))

	require.NoError(t, s.Users.Delete(ctx, u1.ID))

	var count int64
	s.DB().Model(&models.Message{}).Where("user_id = ?", u1.ID).Count(&count)
	assert.Zero(t, count)
	s.DB().Model(&models.Follow{}).Where("follower_id = ? OR followed_id = ?", u1.ID, u1.ID).Count(&count)
	assert.Zero(t, count)
	s.DB().Model(&models.Like{}).Count(&count)
	assert.Zero(t, count)

	// the other user's data survives
	_, err := s.Messages.GetByID(ctx, m2.ID)
	assert.NoError(t, err)
	_, err = s.Users.GetByID(ctx, u2.ID)
	assert.NoError(t, err)

	assert.True(t, models.HasCode(s.Users.Delete(ctx, u1.ID), models.CodeNotFound))
}
