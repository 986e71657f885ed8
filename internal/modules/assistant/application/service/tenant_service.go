package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"StoreLink/internal/modules/assistant/application/dto/request"
	"StoreLink/internal/modules/assistant/application/dto/respond"
	"StoreLink/internal/modules/assistant/domain/entity"
	"StoreLink/internal/modules/assistant/domain/repository"
	"StoreLink/pkg/util/myjwt"
	"StoreLink/pkg/xerr"

	"gorm.io/gorm"
)

// TenantService 管理端店铺服务接口
type TenantService interface {
	// Login 用 tenantRef + apiKey 换发管理端 JWT
	Login(ctx context.Context, req request.TenantLoginRequest) (*respond.TenantLoginRespond, error)
	// GetSettings 读取店铺设置与用量
	GetSettings(ctx context.Context, tenantRef string) (*respond.TenantSettingsRespond, error)
	// UpdateSettings 增量更新能力开关与自定义指令
	UpdateSettings(ctx context.Context, tenantRef string, req request.UpdateTenantSettingsRequest) (*respond.TenantSettingsRespond, error)
}

type tenantServiceImpl struct {
	tenantRepo repository.TenantRepository
}

func NewTenantService(tenantRepo repository.TenantRepository) (TenantService, error) {
	if tenantRepo == nil {
		return nil, fmt.Errorf("tenant repository is nil")
	}
	return &tenantServiceImpl{tenantRepo: tenantRepo}, nil
}

func (s *tenantServiceImpl) Login(ctx context.Context, req request.TenantLoginRequest) (*respond.TenantLoginRespond, error) {
	tenant, err := s.tenantRepo.GetByAPIKey(ctx, strings.TrimSpace(req.TenantRef), strings.TrimSpace(req.APIKey))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, xerr.ErrTenantInvalid
		}
		return nil, err
	}
	if tenant.Status != 1 {
		return nil, xerr.ErrTenantInvalid
	}

	token, err := myjwt.GenerateToken(tenant.TenantRef, tenant.StoreName)
	if err != nil {
		return nil, err
	}
	return &respond.TenantLoginRespond{
		Token:     token,
		TenantRef: tenant.TenantRef,
		StoreName: tenant.StoreName,
	}, nil
}

func (s *tenantServiceImpl) GetSettings(ctx context.Context, tenantRef string) (*respond.TenantSettingsRespond, error) {
	tenant, err := s.tenantRepo.GetByRef(ctx, tenantRef)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, xerr.ErrTenantInvalid
		}
		return nil, err
	}
	return settingsView(tenant), nil
}

func (s *tenantServiceImpl) UpdateSettings(ctx context.Context, tenantRef string, req request.UpdateTenantSettingsRequest) (*respond.TenantSettingsRespond, error) {
	tenant, err := s.tenantRepo.GetByRef(ctx, tenantRef)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, xerr.ErrTenantInvalid
		}
		return nil, err
	}

	applySettings(tenant, &req)
	tenant.UpdatedAt = time.Now()
	if err := s.tenantRepo.UpdateSettings(ctx, tenant); err != nil {
		return nil, err
	}
	return settingsView(tenant), nil
}

// applySettings 只覆盖请求里显式提交的字段
func applySettings(tenant *entity.Tenant, req *request.UpdateTenantSettingsRequest) {
	if req.StoreName != nil {
		tenant.StoreName = strings.TrimSpace(*req.StoreName)
	}
	if req.BaseURL != nil {
		tenant.BaseURL = strings.TrimSpace(*req.BaseURL)
	}
	if req.CustomInstructions != nil {
		tenant.CustomInstructions = *req.CustomInstructions
	}

	setBool := func(dst *bool, src *bool) {
		if src != nil {
			*dst = *src
		}
	}
	setBool(&tenant.AllowAutoClick, req.AllowAutoClick)
	setBool(&tenant.AllowAutoScroll, req.AllowAutoScroll)
	setBool(&tenant.AllowAutoRedirect, req.AllowAutoRedirect)
	setBool(&tenant.AllowAutoHighlight, req.AllowAutoHighlight)
	setBool(&tenant.AllowAutoFillForm, req.AllowAutoFillForm)
	setBool(&tenant.AllowAutoGenerateImage, req.AllowAutoGenerateImage)
	setBool(&tenant.AllowAutoLogin, req.AllowAutoLogin)
	setBool(&tenant.AllowAutoLogout, req.AllowAutoLogout)
	setBool(&tenant.AllowAutoTrackOrder, req.AllowAutoTrackOrder)
	setBool(&tenant.AllowAutoGetOrders, req.AllowAutoGetOrders)
	setBool(&tenant.AllowAutoUpdateUserInfo, req.AllowAutoUpdateUserInfo)
}

func settingsView(tenant *entity.Tenant) *respond.TenantSettingsRespond {
	return &respond.TenantSettingsRespond{
		TenantRef:               tenant.TenantRef,
		StoreName:               tenant.StoreName,
		BaseURL:                 tenant.BaseURL,
		CustomInstructions:      tenant.CustomInstructions,
		AllowAutoClick:          tenant.AllowAutoClick,
		AllowAutoScroll:         tenant.AllowAutoScroll,
		AllowAutoRedirect:       tenant.AllowAutoRedirect,
		AllowAutoHighlight:      tenant.AllowAutoHighlight,
		AllowAutoFillForm:       tenant.AllowAutoFillForm,
		AllowAutoGenerateImage:  tenant.AllowAutoGenerateImage,
		AllowAutoLogin:          tenant.AllowAutoLogin,
		AllowAutoLogout:         tenant.AllowAutoLogout,
		AllowAutoTrackOrder:     tenant.AllowAutoTrackOrder,
		AllowAutoGetOrders:      tenant.AllowAutoGetOrders,
		AllowAutoUpdateUserInfo: tenant.AllowAutoUpdateUserInfo,
		QueriesUsed:             tenant.QueriesUsed,
		QueriesLimit:            tenant.QueriesLimit,
	}
}
