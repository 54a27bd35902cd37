// Package service holds the Warbler business operations on top of the repositories.
package service

import (
	"context"
	"log/slog"
	"strings"

	"warbler/internal/credentials"
	"warbler/internal/middleware"
	"warbler/internal/models"
	"warbler/internal/observability"
	"warbler/internal/repository"
	"warbler/internal/validation"

	"go.opentelemetry.io/otel/attribute"
)

// UserService covers accounts, authentication and the follow graph.
type UserService struct {
	store  *repository.Store
	hasher *credentials.Hasher
}

// SignupInput carries the fields of a new account.
type SignupInput struct {
	Username string `json:"username" validate:"required,max=30"`
	Email    string `json:"email" validate:"required,email,max=254"`
	Password string `json:"password" validate:"required,min=6,bcryptlen"`
	ImageURL string `json:"image_url" validate:"omitempty,max=2048"`
}

// UpdateProfileInput carries a profile edit. Empty identity and image fields
// are left unchanged. Bio and Location are nil when untouched, and an empty
// string clears them. Password is the user's current password and must match.
type UpdateProfileInput struct {
	UserID         uint    `json:"-"`
	Username       string  `json:"username" validate:"omitempty,max=30"`
	Email          string  `json:"email" validate:"omitempty,email,max=254"`
	ImageURL       string  `json:"image_url" validate:"omitempty,max=2048"`
	HeaderImageURL string  `json:"header_image_url" validate:"omitempty,max=2048"`
	Bio            *string `json:"bio" validate:"omitempty,max=500"`
	Location       *string `json:"location" validate:"omitempty,max=100"`
	Password       string  `json:"password" validate:"required"`
}

// Profile is a user together with their messages and graph counts.
type Profile struct {
	User           *models.User     `json:"user"`
	Messages       []models.Message `json:"messages"`
	MessageCount   int64            `json:"message_count"`
	FollowerCount  int64            `json:"follower_count"`
	FollowingCount int64            `json:"following_count"`
}

// NewUserService wires the service over store, hashing with hasher.
func NewUserService(store *repository.Store, hasher *credentials.Hasher) *UserService {
	return &UserService{store: store, hasher: hasher}
}

// Signup hashes the password and persists a new user. A taken username or
// email comes back as a CONFLICT error.
func (s *UserService) Signup(ctx context.Context, in SignupInput) (user *models.User, err error) {
	ctx, span := observability.StartSpan(ctx, "UserService.Signup")
	defer func() { observability.EndSpan(span, err) }()

	in.Username = validation.Normalize(in.Username)
	in.Email = validation.NormalizeEmail(in.Email)
	in.ImageURL = validation.Normalize(in.ImageURL)
	if err := validation.Struct(in); err != nil {
		observability.SignupsTotal.WithLabelValues("invalid").Inc()
		return nil, err
	}

	hashed, err := s.hasher.Hash(in.Password)
	if err != nil {
		observability.SignupsTotal.WithLabelValues("error").Inc()
		return nil, models.NewInternalError(err)
	}

	user = &models.User{
		Username: in.Username,
		Email:    in.Email,
		Password: hashed,
		ImageURL: in.ImageURL,
	}
	if err := s.store.Users.Create(ctx, user); err != nil {
		if models.HasCode(err, models.CodeConflict) {
			observability.SignupsTotal.WithLabelValues("conflict").Inc()
		} else {
			observability.SignupsTotal.WithLabelValues("error").Inc()
		}
		return nil, err
	}

	observability.SignupsTotal.WithLabelValues("success").Inc()
	middleware.Logger.InfoContext(ctx, "user signed up",
		slog.Uint64("user_id", uint64(user.ID)),
		slog.String("username", user.Username),
	)
	return user, nil
}

// Authenticate returns the user when username and password match, and
// (nil, nil) otherwise. Unknown usernames and wrong passwords are not
// distinguished.
func (s *UserService) Authenticate(ctx context.Context, username, password string) (user *models.User, err error) {
	ctx, span := observability.StartSpan(ctx, "UserService.Authenticate")
	defer func() { observability.EndSpan(span, err) }()

	found, err := s.store.Users.GetByUsername(ctx, validation.Normalize(username))
	if err != nil {
		observability.AuthenticationsTotal.WithLabelValues("error").Inc()
		return nil, err
	}
	if found == nil || !s.hasher.Verify(password, found.Password) {
		observability.AuthenticationsTotal.WithLabelValues("failure").Inc()
		return nil, nil
	}

	observability.AuthenticationsTotal.WithLabelValues("success").Inc()
	return found, nil
}

// IsFollowing reports whether user follows other.
func (s *UserService) IsFollowing(ctx context.Context, userID, otherID uint) (bool, error) {
	return s.store.Follows.Exists(ctx, userID, otherID)
}

// IsFollowedBy reports whether other follows user.
func (s *UserService) IsFollowedBy(ctx context.Context, userID, otherID uint) (bool, error) {
	return s.store.Follows.Exists(ctx, otherID, userID)
}

func (s *UserService) GetUser(ctx context.Context, id uint) (*models.User, error) {
	return s.store.Users.GetByID(ctx, id)
}

// ListUsers returns all users, or those whose username contains search.
func (s *UserService) ListUsers(ctx context.Context, search string) ([]models.User, error) {
	return s.store.Users.List(ctx, search, 0)
}

// GetProfile loads a user with their latest messages and follow counts.
func (s *UserService) GetProfile(ctx context.Context, id uint) (*Profile, error) {
	user, err := s.store.Users.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	msgs, err := s.store.Messages.ListByUser(ctx, id, 0)
	if err != nil {
		return nil, err
	}
	msgCount, err := s.store.Messages.CountByUser(ctx, id)
	if err != nil {
		return nil, err
	}
	followers, err := s.store.Follows.CountFollowers(ctx, id)
	if err != nil {
		return nil, err
	}
	following, err := s.store.Follows.CountFollowing(ctx, id)
	if err != nil {
		return nil, err
	}

	return &Profile{
		User:           user,
		Messages:       msgs,
		MessageCount:   msgCount,
		FollowerCount:  followers,
		FollowingCount: following,
	}, nil
}

// Follow makes followerID follow followedID. Following twice is a no-op.
func (s *UserService) Follow(ctx context.Context, followerID, followedID uint) (err error) {
	ctx, span := observability.StartSpan(ctx, "UserService.Follow",
		attribute.Int64("follower_id", int64(followerID)),
		attribute.Int64("followed_id", int64(followedID)),
	)
	defer func() { observability.EndSpan(span, err) }()

	if _, err := s.store.Users.GetByID(ctx, followedID); err != nil {
		return err
	}
	return s.store.Follows.Create(ctx, followerID, followedID)
}

// StopFollowing removes the edge followerID -> followedID if present.
func (s *UserService) StopFollowing(ctx context.Context, followerID, followedID uint) error {
	if _, err := s.store.Users.GetByID(ctx, followedID); err != nil {
		return err
	}
	return s.store.Follows.Delete(ctx, followerID, followedID)
}

// Followers lists the users following userID.
func (s *UserService) Followers(ctx context.Context, userID uint) ([]models.User, error) {
	if _, err := s.store.Users.GetByID(ctx, userID); err != nil {
		return nil, err
	}
	return s.store.Follows.Followers(ctx, userID)
}

// Following lists the users userID follows.
func (s *UserService) Following(ctx context.Context, userID uint) ([]models.User, error) {
	if _, err := s.store.Users.GetByID(ctx, userID); err != nil {
		return nil, err
	}
	return s.store.Follows.Following(ctx, userID)
}

// UpdateProfile applies the non-empty fields of in after checking the
// current password.
func (s *UserService) UpdateProfile(ctx context.Context, in UpdateProfileInput) (user *models.User, err error) {
	ctx, span := observability.StartSpan(ctx, "UserService.UpdateProfile")
	defer func() { observability.EndSpan(span, err) }()

	in.Username = validation.Normalize(in.Username)
	in.Email = validation.NormalizeEmail(in.Email)
	if err := validation.Struct(in); err != nil {
		return nil, err
	}

	user, err = s.store.Users.GetByID(ctx, in.UserID)
	if err != nil {
		return nil, err
	}
	if !s.hasher.Verify(in.Password, user.Password) {
		return nil, models.NewUnauthorizedError("Wrong password, please try again.")
	}

	if in.Username != "" {
		user.Username = in.Username
	}
	if in.Email != "" {
		user.Email = in.Email
	}
	if in.ImageURL != "" {
		user.ImageURL = strings.TrimSpace(in.ImageURL)
	}
	if in.HeaderImageURL != "" {
		user.HeaderImageURL = strings.TrimSpace(in.HeaderImageURL)
	}
	if in.Bio != nil {
		user.Bio = strings.TrimSpace(*in.Bio)
	}
	if in.Location != nil {
		user.Location = strings.TrimSpace(*in.Location)
	}

	if err := s.store.Users.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// DeleteUser removes the account along with its messages, likes and follows.
func (s *UserService) DeleteUser(ctx context.Context, id uint) (err error) {
	ctx, span := observability.StartSpan(ctx, "UserService.DeleteUser", attribute.Int64("user_id", int64(id)))
	defer func() { observability.EndSpan(span, err) }()

	if err := s.store.Users.Delete(ctx, id); err != nil {
		return err
	}
	middleware.Logger.InfoContext(ctx, "user deleted", slog.Uint64("user_id", uint64(id)))
	return nil
}
