package repository

import (
	"context"

	"StoreLink/internal/modules/assistant/domain/entity"
)

// TenantRepository 租户仓储
type TenantRepository interface {
	GetByRef(ctx context.Context, tenantRef string) (*entity.Tenant, error)
	GetByAPIKey(ctx context.Context, tenantRef, apiKey string) (*entity.Tenant, error)
	// IncrementQueriesUsed 原子自增用量计数（SQL 侧自增，避免并发读改写丢计数）
	IncrementQueriesUsed(ctx context.Context, tenantRef string) error
	// UpdateSettings 管理端更新能力开关与自定义指令
	UpdateSettings(ctx context.Context, tenant *entity.Tenant) error
}
