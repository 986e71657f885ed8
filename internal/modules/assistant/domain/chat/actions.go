package chat

// 动作意图枚举（分类器输出、策略网关输入输出共用）
const (
	ActionRedirect          = "redirect"
	ActionClick             = "click"
	ActionScroll            = "scroll"
	ActionFillForm          = "fill_form"
	ActionHighlightText     = "highlight_text"
	ActionGenerateImage     = "generate_image"
	ActionContact           = "contact"
	ActionNone              = "none"
	ActionAccountManagement = "account_management"
	ActionLogin             = "login"
	ActionLogout            = "logout"
	ActionGetOrders         = "get_orders"
	ActionTrackOrder        = "track_order"
	ActionCancelOrder       = "cancel_order"
	ActionReturnOrder       = "return_order"
	ActionExchangeOrder     = "exchange_order"
)

// 内容类型（闭集）
const (
	TypeProduct    = "product"
	TypeCollection = "collection" // 目录分组类型，泛相似检索下容易被淹没
	TypePage       = "page"
	TypeBlog       = "blog"
	TypePolicy     = "policy"
	TypeFAQ        = "faq"
)

// 分类类目
const (
	CategoryDiscovery = "discovery"
	CategoryOnPage    = "on-page"
	CategorySupport   = "support"
	CategoryOrder     = "order"
	CategoryAccount   = "account"
	CategoryGeneral   = "general"

	SubcategoryGeneral = "general"
)

// ValidActions 所有合法动作意图
var ValidActions = map[string]bool{
	ActionRedirect:          true,
	ActionClick:             true,
	ActionScroll:            true,
	ActionFillForm:          true,
	ActionHighlightText:     true,
	ActionGenerateImage:     true,
	ActionContact:           true,
	ActionNone:              true,
	ActionAccountManagement: true,
	ActionLogin:             true,
	ActionLogout:            true,
	ActionGetOrders:         true,
	ActionTrackOrder:        true,
	ActionCancelOrder:       true,
	ActionReturnOrder:       true,
	ActionExchangeOrder:     true,
}

// OrderFlowActions 多轮订单流动作（连续性状态机只对这些动作续接）
var OrderFlowActions = map[string]bool{
	ActionCancelOrder:   true,
	ActionReturnOrder:   true,
	ActionExchangeOrder: true,
	ActionGetOrders:     true,
	ActionTrackOrder:    true,
}

// IsOrderFlowAction 是否属于多轮订单流动作
func IsOrderFlowAction(action string) bool {
	return OrderFlowActions[action]
}

// AllowedForCategory 类目与动作的硬约束校验。
// discovery 只允许 redirect/none；on-page 不允许 redirect。
func AllowedForCategory(category, action string) bool {
	switch category {
	case CategoryDiscovery:
		return action == ActionRedirect || action == ActionNone
	case CategoryOnPage:
		return action != ActionRedirect
	default:
		return true
	}
}
