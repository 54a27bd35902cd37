package service

import (
	"context"
	"log/slog"
	"strings"

	"warbler/internal/access"
	"warbler/internal/middleware"
	"warbler/internal/models"
	"warbler/internal/observability"
	"warbler/internal/repository"
	"warbler/internal/validation"

	"go.opentelemetry.io/otel/attribute"
)

// AccessUnauthorized is the message shown when a requester may not act on a resource.
const AccessUnauthorized = "Access unauthorized."

// MessageService covers messages, likes and the home timeline.
type MessageService struct {
	store *repository.Store
}

type createMessageInput struct {
	Text string `validate:"required,max=140"`
}

// NewMessageService wires the service over store.
func NewMessageService(store *repository.Store) *MessageService {
	return &MessageService{store: store}
}

// Create posts a message as userID.
func (s *MessageService) Create(ctx context.Context, userID uint, text string) (msg *models.Message, err error) {
	ctx, span := observability.StartSpan(ctx, "MessageService.Create", attribute.Int64("user_id", int64(userID)))
	defer func() { observability.EndSpan(span, err) }()

	in := createMessageInput{Text: strings.TrimSpace(text)}
	if err := validation.Struct(in); err != nil {
		return nil, err
	}
	if _, err := s.store.Users.GetByID(ctx, userID); err != nil {
		return nil, err
	}

	msg = &models.Message{UserID: userID, Text: in.Text}
	if err := s.store.Messages.Create(ctx, msg); err != nil {
		return nil, err
	}
	return msg, nil
}

func (s *MessageService) Get(ctx context.Context, id uint) (*models.Message, error) {
	return s.store.Messages.GetByID(ctx, id)
}

// ListByUser returns the user's messages, newest first.
func (s *MessageService) ListByUser(ctx context.Context, userID uint) ([]models.Message, error) {
	if _, err := s.store.Users.GetByID(ctx, userID); err != nil {
		return nil, err
	}
	return s.store.Messages.ListByUser(ctx, userID, 0)
}

// Like records that userID likes messageID. Liking twice keeps a single edge.
func (s *MessageService) Like(ctx context.Context, userID, messageID uint) (err error) {
	ctx, span := observability.StartSpan(ctx, "MessageService.Like",
		attribute.Int64("user_id", int64(userID)),
		attribute.Int64("message_id", int64(messageID)),
	)
	defer func() { observability.EndSpan(span, err) }()

	if _, err := s.store.Messages.GetByID(ctx, messageID); err != nil {
		return err
	}
	if err := s.store.Messages.Like(ctx, userID, messageID); err != nil {
		return err
	}
	observability.LikeEventsTotal.WithLabelValues("like").Inc()
	return nil
}

// Unlike removes the like if there is one.
func (s *MessageService) Unlike(ctx context.Context, userID, messageID uint) (err error) {
	ctx, span := observability.StartSpan(ctx, "MessageService.Unlike",
		attribute.Int64("user_id", int64(userID)),
		attribute.Int64("message_id", int64(messageID)),
	)
	defer func() { observability.EndSpan(span, err) }()

	if err := s.store.Messages.Unlike(ctx, userID, messageID); err != nil {
		return err
	}
	observability.LikeEventsTotal.WithLabelValues("unlike").Inc()
	return nil
}

// IsLikedBy reports whether userID likes msg.
func (s *MessageService) IsLikedBy(ctx context.Context, msg *models.Message, userID uint) (bool, error) {
	if msg == nil {
		return false, nil
	}
	return s.store.Messages.IsLiked(ctx, userID, msg.ID)
}

// ToggleLike flips the like state and returns the new one.
func (s *MessageService) ToggleLike(ctx context.Context, userID, messageID uint) (liked bool, err error) {
	err = s.store.Transaction(ctx, func(tx *repository.Store) error {
		if _, err := tx.Messages.GetByID(ctx, messageID); err != nil {
			return err
		}
		already, err := tx.Messages.IsLiked(ctx, userID, messageID)
		if err != nil {
			return err
		}
		if already {
			liked = false
			return tx.Messages.Unlike(ctx, userID, messageID)
		}
		liked = true
		return tx.Messages.Like(ctx, userID, messageID)
	})
	if err != nil {
		return false, err
	}

	action := "unlike"
	if liked {
		action = "like"
	}
	observability.LikeEventsTotal.WithLabelValues(action).Inc()
	return liked, nil
}

// LikedBy lists the messages userID has liked.
func (s *MessageService) LikedBy(ctx context.Context, userID uint) ([]models.Message, error) {
	if _, err := s.store.Users.GetByID(ctx, userID); err != nil {
		return nil, err
	}
	return s.store.Messages.LikedByUser(ctx, userID)
}

// Timeline returns the newest messages by userID and everyone they follow.
func (s *MessageService) Timeline(ctx context.Context, userID uint) (msgs []models.Message, err error) {
	ctx, span := observability.StartSpan(ctx, "MessageService.Timeline", attribute.Int64("user_id", int64(userID)))
	defer func() { observability.EndSpan(span, err) }()

	ids, err := s.store.Follows.FollowingIDs(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.store.Messages.Timeline(ctx, append(ids, userID), repository.TimelineLimit)
}

// Delete removes the message when requesterID owns it. Anyone else, including
// an anonymous requester, gets UNAUTHORIZED and the message is left alone.
func (s *MessageService) Delete(ctx context.Context, requesterID *uint, messageID uint) (err error) {
	ctx, span := observability.StartSpan(ctx, "MessageService.Delete", attribute.Int64("message_id", int64(messageID)))
	defer func() { observability.EndSpan(span, err) }()

	msg, err := s.store.Messages.GetByID(ctx, messageID)
	if err != nil {
		observability.MessageDeletesTotal.WithLabelValues("not_found").Inc()
		return err
	}

	if !access.CanDeleteMessage(requesterID, msg) {
		observability.MessageDeletesTotal.WithLabelValues("forbidden").Inc()
		attrs := []any{slog.Uint64("message_id", uint64(messageID))}
		if requesterID != nil {
			attrs = append(attrs, slog.Uint64("requester_id", uint64(*requesterID)))
		}
		middleware.Logger.WarnContext(ctx, "message delete rejected", attrs...)
		return models.NewUnauthorizedError(AccessUnauthorized)
	}

	if err := s.store.Messages.Delete(ctx, messageID); err != nil {
		observability.MessageDeletesTotal.WithLabelValues("error").Inc()
		return err
	}
	observability.MessageDeletesTotal.WithLabelValues("deleted").Inc()
	return nil
}
