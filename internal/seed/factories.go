// Package seed fills the database with demo accounts, messages and graph
// edges. It is meant for development and tests only.
package seed

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"warbler/internal/models"
	"warbler/internal/service"

	"github.com/brianvoe/gofakeit/v6"
)

// DefaultPassword is the password every generated account gets.
const DefaultPassword = "password123"

// Factory builds random users and messages and persists them through the
// services, so seeded data passes the same validation as real input.
type Factory struct {
	users    *service.UserService
	messages *service.MessageService
	faker    *gofakeit.Faker
}

// NewFactory returns a Factory. A zero seed picks a random one.
func NewFactory(users *service.UserService, messages *service.MessageService, seed int64) *Factory {
	return &Factory{
		users:    users,
		messages: messages,
		faker:    gofakeit.New(seed),
	}
}

// BuildSignup returns signup input for a random, probably unique account.
func (f *Factory) BuildSignup() service.SignupInput {
	username := fmt.Sprintf("%s%d", strings.ToLower(f.faker.Username()), f.faker.Number(1000, 999999))
	if len(username) > 30 {
		username = username[:30]
	}
	return service.SignupInput{
		Username: username,
		Email:    fmt.Sprintf("%s@%s", username, f.faker.DomainName()),
		Password: DefaultPassword,
		ImageURL: fmt.Sprintf("https://i.pravatar.cc/150?u=%s", f.faker.UUID()),
	}
}

// BuildText returns a random message body that fits the length limit.
func (f *Factory) BuildText() string {
	return truncateRunes(f.faker.Sentence(f.faker.Number(4, 18)), models.MaxMessageLength)
}

// CreateUser signs up a random user. Overrides run before the signup.
func (f *Factory) CreateUser(ctx context.Context, overrides ...func(*service.SignupInput)) (*models.User, error) {
	in := f.BuildSignup()
	for _, override := range overrides {
		override(&in)
	}
	return f.users.Signup(ctx, in)
}

// CreateMessage posts a random message as userID.
func (f *Factory) CreateMessage(ctx context.Context, userID uint) (*models.Message, error) {
	return f.messages.Create(ctx, userID, f.BuildText())
}

// Intn returns a pseudo-random int in [0, n).
func (f *Factory) Intn(n int) int {
	if n <= 0 {
		return 0
	}
	return f.faker.IntRange(0, n-1)
}

func truncateRunes(s string, max int) string {
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	return string([]rune(s)[:max])
}
