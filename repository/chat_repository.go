package repository

import (
	"context"
	"fmt"
	"time"

	"WaveFM/model"

	"gorm.io/gorm"
)

// ChatRepository defines the interface for chat data operations.
type ChatRepository interface {
	CreateMessage(ctx context.Context, msg *model.ChatMessage) error
	// GetRecentMessages returns up to limit of the newest messages, in
	// chronological order. A non-nil since restricts to created_at > since.
	GetRecentMessages(ctx context.Context, limit int, since *time.Time) ([]*model.ChatMessage, error)
	// PruneMessages deletes everything older than the keep-th newest message
	// and reports how many rows went away.
	PruneMessages(ctx context.Context, keep int) (int64, error)
	CountMessages(ctx context.Context) (int64, error)
}

// gormChatRepository implements ChatRepository on GORM.
type gormChatRepository struct {
	db *gorm.DB
}

// NewGormChatRepository creates a GORM chat repository.
func NewGormChatRepository(db *gorm.DB) ChatRepository {
	return &gormChatRepository{db: db}
}

// CreateMessage appends one message. The timestamp is set here, not by the
// store, so it is also usable as the retention cutoff key.
func (r *gormChatRepository) CreateMessage(ctx context.Context, msg *model.ChatMessage) error {
	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = time.Now().UTC()
	}
	return r.db.WithContext(ctx).Create(msg).Error
}

// GetRecentMessages fetches the newest rows and reverses them so the caller
// gets conversation order. id breaks ties among equal timestamps.
func (r *gormChatRepository) GetRecentMessages(ctx context.Context, limit int, since *time.Time) ([]*model.ChatMessage, error) {
	q := r.db.WithContext(ctx).
		Order("created_at DESC").
		Order("id DESC").
		Limit(limit)
	if since != nil {
		q = q.Where("created_at > ?", *since)
	}

	var messages []*model.ChatMessage
	if err := q.Find(&messages).Error; err != nil {
		return nil, err
	}

	// Reverse to chronological order.
	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}
	return messages, nil
}

// PruneMessages keeps only the newest keep rows. One bounded query finds the
// keep-th newest timestamp; everything strictly older is deleted. Rows tied
// with the cutoff survive, so a timestamp collision can transiently retain a
// few extra rows until the next post.
func (r *gormChatRepository) PruneMessages(ctx context.Context, keep int) (int64, error) {
	if keep < 1 {
		return 0, fmt.Errorf("invalid retention limit %d", keep)
	}

	var cutoffs []time.Time
	err := r.db.WithContext(ctx).
		Model(&model.ChatMessage{}).
		Order("created_at DESC").
		Offset(keep-1).
		Limit(1).
		Pluck("created_at", &cutoffs).Error
	if err != nil {
		return 0, err
	}
	if len(cutoffs) == 0 {
		return 0, nil // fewer than keep rows exist
	}

	res := r.db.WithContext(ctx).
		Where("created_at < ?", cutoffs[0]).
		Delete(&model.ChatMessage{})
	if res.Error != nil {
		return 0, res.Error
	}
	return res.RowsAffected, nil
}

// CountMessages reports the current table size.
func (r *gormChatRepository) CountMessages(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.ChatMessage{}).Count(&count).Error
	return count, err
}
