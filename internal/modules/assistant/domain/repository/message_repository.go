package repository

import (
	"context"

	"StoreLink/internal/modules/assistant/domain/entity"
)

// MessageRepository 消息仓储（仅追加）
type MessageRepository interface {
	Create(ctx context.Context, message *entity.Message) error
	CreateBatch(ctx context.Context, messages []*entity.Message) error
	ListByThread(ctx context.Context, threadRef string, limit, offset int) ([]entity.Message, error)
	// ListRecentByThread 取最近 N 条消息，新在前（轮次状态恢复用）
	ListRecentByThread(ctx context.Context, threadRef string, limit int) ([]entity.Message, error)
}
