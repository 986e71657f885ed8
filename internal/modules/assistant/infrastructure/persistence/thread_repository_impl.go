package persistence

import (
	"context"
	"time"

	"StoreLink/internal/modules/assistant/domain/entity"
	"StoreLink/internal/modules/assistant/domain/repository"

	"gorm.io/gorm"
)

type threadRepositoryImpl struct {
	db *gorm.DB
}

func NewThreadRepository(db *gorm.DB) repository.ThreadRepository {
	return &threadRepositoryImpl{db: db}
}

func (r *threadRepositoryImpl) GetByRef(ctx context.Context, threadRef string) (*entity.Thread, error) {
	var thread entity.Thread
	err := r.db.WithContext(ctx).Where("thread_ref = ?", threadRef).First(&thread).Error
	if err != nil {
		return nil, err
	}
	return &thread, nil
}

func (r *threadRepositoryImpl) Create(ctx context.Context, thread *entity.Thread) error {
	return r.db.WithContext(ctx).Create(thread).Error
}

func (r *threadRepositoryImpl) TouchLastActive(ctx context.Context, threadRef string) error {
	return r.db.WithContext(ctx).Model(&entity.Thread{}).
		Where("thread_ref = ?", threadRef).
		UpdateColumn("last_active_at", time.Now()).Error
}
