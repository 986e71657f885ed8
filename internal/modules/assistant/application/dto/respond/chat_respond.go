package respond

// ChatRespond 一轮会话的响应。
// 即使引擎内部失败，也返回本结构（action=none + 兜底回答），形状永远稳定。
type ChatRespond struct {
	QueryID   string `json:"queryId"`
	ThreadRef string `json:"threadRef"`

	Answer        string            `json:"answer"`
	Action        string            `json:"action"`
	URL           string            `json:"url,omitempty"`
	ActionContext map[string]string `json:"action_context"`
	PageID        string            `json:"pageId,omitempty"`

	Type        string `json:"type,omitempty"`
	Category    string `json:"category,omitempty"`
	Subcategory string `json:"subcategory,omitempty"`

	DurationMs int64 `json:"durationMs"`
}

// ThreadMessageItem 线程历史一条消息
type ThreadMessageItem struct {
	Role      string `json:"role"`
	Content   string `json:"content"`
	Modality  string `json:"modality"`
	PageURL   string `json:"pageUrl,omitempty"`
	CreatedAt string `json:"createdAt"`
}

// ThreadMessagesRespond 线程历史分页响应
type ThreadMessagesRespond struct {
	ThreadRef string              `json:"threadRef"`
	Messages  []ThreadMessageItem `json:"messages"`
}
