package repository

import (
	"context"
	"errors"

	"warbler/internal/models"
	"warbler/internal/observability"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// TimelineLimit caps how many messages a timeline returns.
const TimelineLimit = 100

// MessageRepository defines persistence operations for messages and likes.
type MessageRepository interface {
	Create(ctx context.Context, msg *models.Message) error
	GetByID(ctx context.Context, id uint) (*models.Message, error)
	ListByUser(ctx context.Context, userID uint, limit int) ([]models.Message, error)
	Delete(ctx context.Context, id uint) error
	Timeline(ctx context.Context, authorIDs []uint, limit int) ([]models.Message, error)
	CountByUser(ctx context.Context, userID uint) (int64, error)

	Like(ctx context.Context, userID, messageID uint) error
	Unlike(ctx context.Context, userID, messageID uint) error
	IsLiked(ctx context.Context, userID, messageID uint) (bool, error)
	LikedByUser(ctx context.Context, userID uint) ([]models.Message, error)
	CountLikes(ctx context.Context, messageID uint) (int64, error)
}

type messageRepository struct {
	db *gorm.DB
}

// NewMessageRepository returns a new MessageRepository implementation.
func NewMessageRepository(db *gorm.DB) MessageRepository {
	return &messageRepository{db: db}
}

func (r *messageRepository) Create(ctx context.Context, msg *models.Message) error {
	defer observability.TrackQuery("insert", "messages")()

	if err := r.db.WithContext(ctx).Omit(clause.Associations).Create(msg).Error; err != nil {
		if isForeignKeyError(err) {
			return models.NewNotFoundError("User", msg.UserID)
		}
		return models.NewInternalError(err)
	}
	return nil
}

func (r *messageRepository) GetByID(ctx context.Context, id uint) (*models.Message, error) {
	defer observability.TrackQuery("select", "messages")()

	var msg models.Message
	if err := r.db.WithContext(ctx).Preload("User").First(&msg, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Message", id)
		}
		return nil, models.NewInternalError(err)
	}
	return &msg, nil
}

func (r *messageRepository) ListByUser(ctx context.Context, userID uint, limit int) ([]models.Message, error) {
	defer observability.TrackQuery("select", "messages")()

	if limit <= 0 || limit > TimelineLimit {
		limit = TimelineLimit
	}

	var msgs []models.Message
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Find(&msgs).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return msgs, nil
}

func (r *messageRepository) CountByUser(ctx context.Context, userID uint) (int64, error) {
	defer observability.TrackQuery("count", "messages")()

	var n int64
	if err := r.db.WithContext(ctx).Model(&models.Message{}).Where("user_id = ?", userID).Count(&n).Error; err != nil {
		return 0, models.NewInternalError(err)
	}
	return n, nil
}

// Delete removes the message and the likes pointing at it.
func (r *messageRepository) Delete(ctx context.Context, id uint) error {
	defer observability.TrackQuery("delete", "messages")()

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("message_id = ?", id).Delete(&models.Like{}).Error; err != nil {
			return models.NewInternalError(err)
		}
		result := tx.Delete(&models.Message{}, id)
		if result.Error != nil {
			return models.NewInternalError(result.Error)
		}
		if result.RowsAffected == 0 {
			return models.NewNotFoundError("Message", id)
		}
		return nil
	})
}

// Timeline returns messages written by any of authorIDs, newest first.
func (r *messageRepository) Timeline(ctx context.Context, authorIDs []uint, limit int) ([]models.Message, error) {
	defer observability.TrackQuery("select", "messages")()

	if len(authorIDs) == 0 {
		return []models.Message{}, nil
	}
	if limit <= 0 || limit > TimelineLimit {
		limit = TimelineLimit
	}

	var msgs []models.Message
	if err := r.db.WithContext(ctx).
		Preload("User").
		Where("user_id IN ?", authorIDs).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Find(&msgs).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return msgs, nil
}

// Like records the edge; an existing edge is left as is.
func (r *messageRepository) Like(ctx context.Context, userID, messageID uint) error {
	defer observability.TrackQuery("insert", "likes")()

	like := models.Like{UserID: userID, MessageID: messageID}
	if err := r.db.WithContext(ctx).
		Omit(clause.Associations).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&like).Error; err != nil {
		if isForeignKeyError(err) {
			return models.NewNotFoundError("Message", messageID)
		}
		return models.NewInternalError(err)
	}
	return nil
}

// Unlike removes the edge; a missing edge is not an error.
func (r *messageRepository) Unlike(ctx context.Context, userID, messageID uint) error {
	defer observability.TrackQuery("delete", "likes")()

	if err := r.db.WithContext(ctx).
		Where("user_id = ? AND message_id = ?", userID, messageID).
		Delete(&models.Like{}).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *messageRepository) IsLiked(ctx context.Context, userID, messageID uint) (bool, error) {
	defer observability.TrackQuery("select", "likes")()

	var n int64
	if err := r.db.WithContext(ctx).Model(&models.Like{}).
		Where("user_id = ? AND message_id = ?", userID, messageID).
		Count(&n).Error; err != nil {
		return false, models.NewInternalError(err)
	}
	return n > 0, nil
}

// LikedByUser lists the messages the user has liked, most recent like first.
func (r *messageRepository) LikedByUser(ctx context.Context, userID uint) ([]models.Message, error) {
	defer observability.TrackQuery("select", "likes")()

	var msgs []models.Message
	if err := r.db.WithContext(ctx).
		Preload("User").
		Joins("JOIN likes ON likes.message_id = messages.id").
		Where("likes.user_id = ?", userID).
		Order("likes.created_at DESC, messages.id DESC").
		Find(&msgs).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return msgs, nil
}

func (r *messageRepository) CountLikes(ctx context.Context, messageID uint) (int64, error) {
	defer observability.TrackQuery("count", "likes")()

	var n int64
	if err := r.db.WithContext(ctx).Model(&models.Like{}).Where("message_id = ?", messageID).Count(&n).Error; err != nil {
		return 0, models.NewInternalError(err)
	}
	return n, nil
}
