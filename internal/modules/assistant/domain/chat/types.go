package chat

// Classification 单条消息的意图分类结果。
// 不单独落库，随消息内容嵌入保存；检索、重排、Prompt 组装、连续性判断共同消费。
type Classification struct {
	Type              string            `json:"type"`
	Category          string            `json:"category"`
	Subcategory       string            `json:"subcategory"`
	ActionIntent      string            `json:"action_intent"`
	ContentTargets    map[string]string `json:"content_targets"`
	Language          string            `json:"language"`
	ContextDependency string            `json:"context_dependency"` // low | high
}

// NeutralClassification 分类失败时的兜底标签集。
// 检索必须携带分类标签，即使分类失败也不能用空标签查库。
func NeutralClassification() *Classification {
	return &Classification{
		Type:              TypePage,
		Category:          CategoryGeneral,
		Subcategory:       SubcategoryGeneral,
		ActionIntent:      ActionNone,
		ContentTargets:    map[string]string{},
		Language:          "en",
		ContextDependency: "low",
	}
}

// ActionResponse 引擎最终输出：一个动作 + 自然语言回答
type ActionResponse struct {
	Action        string            `json:"action"`
	Answer        string            `json:"answer"`
	URL           string            `json:"url"`
	ActionContext map[string]string `json:"action_context"`
	PageID        string            `json:"pageId,omitempty"`
	Type          string            `json:"type,omitempty"`
	Category      string            `json:"category,omitempty"`
	Subcategory   string            `json:"subcategory,omitempty"`
}

// TurnState 上一轮对话的显式状态（代替反复解析序列化 JSON）
type TurnState struct {
	PreviousAction   string
	PreviousQuestion string
	PreviousAnswer   string
	CapturedFields   map[string]string // order_id / order_email / return_reason 等
}

// TurnSummary 客户端回传的历史消息摘要
type TurnSummary struct {
	Question  string `json:"question,omitempty"`
	Answer    string `json:"answer,omitempty"`
	Role      string `json:"role,omitempty"`
	PageURL   string `json:"pageUrl,omitempty"`
	CreatedAt string `json:"createdAt,omitempty"`
}

// PageSnapshot 访客当前页面快照
type PageSnapshot struct {
	URL      string   `json:"url"`
	FullText string   `json:"fullText"`
	Buttons  []string `json:"buttons"`
	Forms    []string `json:"forms"`
	Sections []string `json:"sections"`
	Images   []string `json:"images"`
}

// SparseVector 词法稀疏向量（index → weight）
type SparseVector struct {
	Indices []uint32  `json:"indices"`
	Values  []float32 `json:"values"`
}

// IsEmpty 稀疏向量是否为空
func (s SparseVector) IsEmpty() bool {
	return len(s.Indices) == 0 || len(s.Values) == 0
}
