package request

import "StoreLink/internal/modules/assistant/domain/chat"

// ChatRequest 小组件发起的一轮会话请求。
// 租户凭证走请求头（X-Tenant-Ref / X-Api-Key），不进请求体。
type ChatRequest struct {
	ThreadRef string `json:"threadRef"`                  // 为空表示新线程（懒创建）
	Message   string `json:"message" binding:"required"` // 访客消息（必填）
	Modality  string `json:"modality"`                   // text | voice（默认 text）
	PageURL   string `json:"pageUrl"`                    // 访客当前页面地址

	History  []chat.TurnSummary `json:"history,omitempty"`  // 客户端回传的历史摘要
	Snapshot *chat.PageSnapshot `json:"snapshot,omitempty"` // 当前页面快照
}

// ThreadMessagesRequest 线程历史分页查询
type ThreadMessagesRequest struct {
	ThreadRef string `form:"threadRef" binding:"required"`
	Limit     int    `form:"limit"`
	Offset    int    `form:"offset"`
}
