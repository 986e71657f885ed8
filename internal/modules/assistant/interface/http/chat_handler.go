package handler

import (
	"StoreLink/internal/modules/assistant/application/dto/request"
	"StoreLink/internal/modules/assistant/application/service"
	"StoreLink/pkg/back"
	"StoreLink/pkg/xerr"
	"StoreLink/pkg/zlog"

	"github.com/gin-gonic/gin"
)

// ChatHandler 小组件侧接口。
// 租户凭证走请求头：X-Tenant-Ref + X-Api-Key（访客侧没有 JWT）。
type ChatHandler struct {
	svc service.ChatService
}

func NewChatHandler(svc service.ChatService) *ChatHandler {
	return &ChatHandler{svc: svc}
}

func (h *ChatHandler) Chat(c *gin.Context) {
	var req request.ChatRequest
	if err := c.BindJSON(&req); err != nil {
		zlog.Error(err.Error())
		back.Error(c, xerr.BadRequest, xerr.ErrParam.Message)
		return
	}

	tenantRef := c.GetHeader("X-Tenant-Ref")
	apiKey := c.GetHeader("X-Api-Key")

	data, err := h.svc.Chat(c.Request.Context(), tenantRef, apiKey, req)
	if err != nil && data != nil {
		// 引擎失败但有兜底回答：错误码与兜底数据一起返回
		back.ResultWithData(c, data, err)
		return
	}
	back.Result(c, data, err)
}

func (h *ChatHandler) ThreadMessages(c *gin.Context) {
	var req request.ThreadMessagesRequest
	if err := c.BindQuery(&req); err != nil {
		zlog.Error(err.Error())
		back.Error(c, xerr.BadRequest, xerr.ErrParam.Message)
		return
	}

	tenantRef := c.GetHeader("X-Tenant-Ref")
	data, err := h.svc.ThreadMessages(c.Request.Context(), tenantRef, req)
	back.Result(c, data, err)
}
