package persistence

import (
	"context"

	"StoreLink/internal/modules/assistant/domain/entity"
	"StoreLink/internal/modules/assistant/domain/repository"

	"gorm.io/gorm"
)

type tenantRepositoryImpl struct {
	db *gorm.DB
}

func NewTenantRepository(db *gorm.DB) repository.TenantRepository {
	return &tenantRepositoryImpl{db: db}
}

func (r *tenantRepositoryImpl) GetByRef(ctx context.Context, tenantRef string) (*entity.Tenant, error) {
	var tenant entity.Tenant
	// First 查不到会返回 ErrRecordNotFound
	err := r.db.WithContext(ctx).Where("tenant_ref = ?", tenantRef).First(&tenant).Error
	if err != nil {
		return nil, err
	}
	return &tenant, nil
}

func (r *tenantRepositoryImpl) GetByAPIKey(ctx context.Context, tenantRef, apiKey string) (*entity.Tenant, error) {
	var tenant entity.Tenant
	err := r.db.WithContext(ctx).
		Where("tenant_ref = ? AND api_key = ?", tenantRef, apiKey).
		First(&tenant).Error
	if err != nil {
		return nil, err
	}
	return &tenant, nil
}

// IncrementQueriesUsed SQL 侧原子自增，并发下不丢计数
func (r *tenantRepositoryImpl) IncrementQueriesUsed(ctx context.Context, tenantRef string) error {
	return r.db.WithContext(ctx).Model(&entity.Tenant{}).
		Where("tenant_ref = ?", tenantRef).
		UpdateColumn("queries_used", gorm.Expr("queries_used + 1")).Error
}

// UpdateSettings 只更新管理端可改字段，用量计数等字段不受影响
func (r *tenantRepositoryImpl) UpdateSettings(ctx context.Context, tenant *entity.Tenant) error {
	return r.db.WithContext(ctx).Model(&entity.Tenant{}).
		Where("tenant_ref = ?", tenant.TenantRef).
		Select(
			"store_name", "base_url", "custom_instructions",
			"allow_auto_click", "allow_auto_scroll", "allow_auto_redirect",
			"allow_auto_highlight", "allow_auto_fill_form", "allow_auto_generate_image",
			"allow_auto_login", "allow_auto_logout",
			"allow_auto_track_order", "allow_auto_get_orders", "allow_auto_update_user_info",
			"updated_at",
		).
		Updates(tenant).Error
}
