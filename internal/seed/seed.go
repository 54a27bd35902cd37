package seed

import (
	"context"
	"fmt"
	"log/slog"

	"warbler/internal/middleware"
	"warbler/internal/models"
	"warbler/internal/repository"
	"warbler/internal/service"

	"gorm.io/gorm"
)

// Result counts what a seed run created.
type Result struct {
	Users    int
	Messages int
	Follows  int
	Likes    int
}

// Seeder applies presets.
type Seeder struct {
	store    *repository.Store
	users    *service.UserService
	messages *service.MessageService
}

// NewSeeder wires a Seeder over the given store and services.
func NewSeeder(store *repository.Store, users *service.UserService, messages *service.MessageService) *Seeder {
	return &Seeder{store: store, users: users, messages: messages}
}

// ClearAll removes every row from the Warbler tables.
func (s *Seeder) ClearAll(ctx context.Context) error {
	return s.store.DB().WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, model := range []interface{}{&models.Like{}, &models.Follow{}, &models.Message{}, &models.User{}} {
			if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(model).Error; err != nil {
				return fmt.Errorf("clear %T: %w", model, err)
			}
		}
		return nil
	})
}

// Apply creates the preset's fixed accounts, then the random batch.
func (s *Seeder) Apply(ctx context.Context, p *Preset) (*Result, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}

	res := &Result{}
	byName := make(map[string]*models.User, len(p.Users))

	for _, pu := range p.Users {
		in := service.SignupInput{
			Username: pu.Username,
			Email:    pu.Email,
			Password: pu.Password,
			ImageURL: pu.ImageURL,
		}
		if in.Email == "" {
			in.Email = pu.Username + "@warbler.test"
		}
		if in.Password == "" {
			in.Password = DefaultPassword
		}

		user, err := s.users.Signup(ctx, in)
		if err != nil {
			return res, fmt.Errorf("seed user %s: %w", pu.Username, err)
		}
		if pu.Bio != "" || pu.Location != "" {
			user.Bio = pu.Bio
			user.Location = pu.Location
			if err := s.store.Users.Update(ctx, user); err != nil {
				return res, fmt.Errorf("seed profile %s: %w", pu.Username, err)
			}
		}
		byName[pu.Username] = user
		res.Users++

		for _, text := range pu.Messages {
			if _, err := s.messages.Create(ctx, user.ID, text); err != nil {
				return res, fmt.Errorf("seed message for %s: %w", pu.Username, err)
			}
			res.Messages++
		}
	}

	for _, pu := range p.Users {
		for _, target := range pu.Follows {
			if err := s.users.Follow(ctx, byName[pu.Username].ID, byName[target].ID); err != nil {
				return res, fmt.Errorf("seed follow %s -> %s: %w", pu.Username, target, err)
			}
			res.Follows++
		}
	}

	if err := s.applyRandom(ctx, p.Random, res); err != nil {
		return res, err
	}

	middleware.Logger.InfoContext(ctx, "seed applied",
		slog.String("preset", p.Name),
		slog.Int("users", res.Users),
		slog.Int("messages", res.Messages),
		slog.Int("follows", res.Follows),
		slog.Int("likes", res.Likes),
	)
	return res, nil
}

func (s *Seeder) applyRandom(ctx context.Context, r RandomSettings, res *Result) error {
	if r.Users == 0 {
		return nil
	}
	f := NewFactory(s.users, s.messages, r.Seed)

	users := make([]*models.User, 0, r.Users)
	for i := 0; i < r.Users; i++ {
		u, err := f.CreateUser(ctx)
		if err != nil {
			if models.HasCode(err, models.CodeConflict) {
				continue
			}
			return fmt.Errorf("seed random user: %w", err)
		}
		users = append(users, u)
		res.Users++
	}

	var msgs []*models.Message
	for _, u := range users {
		for i := 0; i < r.MessagesPerUser; i++ {
			m, err := f.CreateMessage(ctx, u.ID)
			if err != nil {
				return fmt.Errorf("seed random message: %w", err)
			}
			msgs = append(msgs, m)
			res.Messages++
		}
	}

	for _, u := range users {
		for _, target := range pickDistinct(f, users, r.FollowsPerUser, u.ID) {
			if err := s.users.Follow(ctx, u.ID, target.ID); err != nil {
				return fmt.Errorf("seed random follow: %w", err)
			}
			res.Follows++
		}

		for i := 0; i < r.LikesPerUser && len(msgs) > 0; i++ {
			m := msgs[f.Intn(len(msgs))]
			if m.UserID == u.ID {
				continue
			}
			liked, err := s.store.Messages.IsLiked(ctx, u.ID, m.ID)
			if err != nil {
				return err
			}
			if liked {
				continue
			}
			if err := s.messages.Like(ctx, u.ID, m.ID); err != nil {
				return fmt.Errorf("seed random like: %w", err)
			}
			res.Likes++
		}
	}
	return nil
}

// pickDistinct returns up to n users other than skipID, without repeats.
func pickDistinct(f *Factory, users []*models.User, n int, skipID uint) []*models.User {
	candidates := make([]*models.User, 0, len(users))
	for _, u := range users {
		if u.ID != skipID {
			candidates = append(candidates, u)
		}
	}
	for i := len(candidates) - 1; i > 0; i-- {
		j := f.Intn(i + 1)
		candidates[i], candidates[j] = candidates[j], candidates[i]
	}
	if n < len(candidates) {
		candidates = candidates[:n]
	}
	return candidates
}
