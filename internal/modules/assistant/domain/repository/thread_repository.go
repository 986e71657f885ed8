package repository

import (
	"context"

	"StoreLink/internal/modules/assistant/domain/entity"
)

// ThreadRepository 对话线程仓储
type ThreadRepository interface {
	GetByRef(ctx context.Context, threadRef string) (*entity.Thread, error)
	Create(ctx context.Context, thread *entity.Thread) error
	TouchLastActive(ctx context.Context, threadRef string) error
}
