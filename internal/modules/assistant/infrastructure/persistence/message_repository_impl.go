package persistence

import (
	"context"

	"StoreLink/internal/modules/assistant/domain/entity"
	"StoreLink/internal/modules/assistant/domain/repository"

	"gorm.io/gorm"
)

type messageRepositoryImpl struct {
	db *gorm.DB
}

func NewMessageRepository(db *gorm.DB) repository.MessageRepository {
	return &messageRepositoryImpl{db: db}
}

func (r *messageRepositoryImpl) Create(ctx context.Context, message *entity.Message) error {
	return r.db.WithContext(ctx).Create(message).Error
}

func (r *messageRepositoryImpl) CreateBatch(ctx context.Context, messages []*entity.Message) error {
	if len(messages) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(messages).Error
}

// ListRecentByThread 取最近 N 条消息，新在前
func (r *messageRepositoryImpl) ListRecentByThread(ctx context.Context, threadRef string, limit int) ([]entity.Message, error) {
	if limit <= 0 {
		limit = 10
	}
	var messages []entity.Message
	err := r.db.WithContext(ctx).
		Where("thread_ref = ?", threadRef).
		Order("id DESC").
		Limit(limit).
		Find(&messages).Error
	if err != nil {
		return nil, err
	}
	return messages, nil
}

// ListByThread 按时间正序翻页
func (r *messageRepositoryImpl) ListByThread(ctx context.Context, threadRef string, limit, offset int) ([]entity.Message, error) {
	if limit <= 0 {
		limit = 50
	}
	var messages []entity.Message
	err := r.db.WithContext(ctx).
		Where("thread_ref = ?", threadRef).
		Order("id ASC").
		Limit(limit).
		Offset(offset).
		Find(&messages).Error
	if err != nil {
		return nil, err
	}
	return messages, nil
}
