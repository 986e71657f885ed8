package handler

import (
	"StoreLink/internal/modules/assistant/application/dto/request"
	"StoreLink/internal/modules/assistant/application/service"
	"StoreLink/pkg/back"
	"StoreLink/pkg/xerr"
	"StoreLink/pkg/zlog"

	"github.com/gin-gonic/gin"
)

// AdminHandler 店铺管理端接口（JWT 鉴权，见 middleware/jwt）
type AdminHandler struct {
	svc service.TenantService
}

func NewAdminHandler(svc service.TenantService) *AdminHandler {
	return &AdminHandler{svc: svc}
}

func (h *AdminHandler) Login(c *gin.Context) {
	var req request.TenantLoginRequest
	if err := c.BindJSON(&req); err != nil {
		zlog.Error(err.Error())
		back.Error(c, xerr.BadRequest, xerr.ErrParam.Message)
		return
	}
	data, err := h.svc.Login(c.Request.Context(), req)
	back.Result(c, data, err)
}

func (h *AdminHandler) GetSettings(c *gin.Context) {
	data, err := h.svc.GetSettings(c.Request.Context(), c.GetString("tenantRef"))
	back.Result(c, data, err)
}

func (h *AdminHandler) UpdateSettings(c *gin.Context) {
	var req request.UpdateTenantSettingsRequest
	if err := c.BindJSON(&req); err != nil {
		zlog.Error(err.Error())
		back.Error(c, xerr.BadRequest, xerr.ErrParam.Message)
		return
	}
	data, err := h.svc.UpdateSettings(c.Request.Context(), c.GetString("tenantRef"), req)
	back.Result(c, data, err)
}
