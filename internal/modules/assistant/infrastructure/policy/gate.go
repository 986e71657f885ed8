package policy

import (
	"strings"

	"StoreLink/internal/modules/assistant/domain/chat"
	"StoreLink/internal/modules/assistant/domain/entity"
	"StoreLink/pkg/zlog"

	"go.uber.org/zap"
)

// Input 策略网关所需的全部轮次上下文
type Input struct {
	Tenant         *entity.Tenant
	Classification *chat.Classification
	Message        string
	Prev           *chat.TurnState
	Snapshot       *chat.PageSnapshot
	ContextURLs    []string // 检索上下文 + 当前页面里出现过的地址
	PolicyPageURL  string   // 检索上下文里发现的退换货政策页（可为空）
	UserPhrase     string   // 用户逐字指定的高亮短语（可为空）
}

// capabilityDeniedAnswer 能力被租户关闭时的降级回答
const capabilityDeniedAnswer = "That isn't available on this store yet. Is there anything else I can help you with?"

// Gate 策略网关与连续性状态机。
// 对模型提出的动作做：规则覆盖 → 多轮续接 → 渠道改写 → 租户开关校验 → 载荷规整。
type Gate struct {
	highlightMaxWords int
	orderInfoDetector OrderInfoDetector
}

func NewGate(highlightMaxWords int, detector OrderInfoDetector) *Gate {
	if highlightMaxWords <= 0 {
		highlightMaxWords = 15
	}
	return &Gate{highlightMaxWords: highlightMaxWords, orderInfoDetector: detector}
}

// Apply 校验并改写模型提出的动作。永远返回结构化响应，不产生错误。
func (g *Gate) Apply(resp *chat.ActionResponse, in *Input) *chat.ActionResponse {
	if resp == nil {
		resp = &chat.ActionResponse{Action: chat.ActionNone}
	}
	if resp.ActionContext == nil {
		resp.ActionContext = map[string]string{}
	}
	if in == nil {
		return resp
	}

	// 1. 规则引擎覆盖：账号字段修改是安全关键路径，redirect 会丢失修改请求
	if ov := DetectAccountOverride(in.Message); ov != nil {
		if resp.Action != ov.Action {
			zlog.Info("account override applied",
				zap.String("proposed", resp.Action), zap.String("forced", ov.Action))
		}
		resp.Action = ov.Action
		for k, v := range ov.Fields {
			resp.ActionContext[k] = v
		}
		resp.URL = ""
	}

	// 2. 多轮动作续接
	resp = g.applyContinuity(resp, in)

	// 3. 退货/换货不直接下发：改写为政策页跳转或人工转接
	if resp.Action == chat.ActionReturnOrder || resp.Action == chat.ActionExchangeOrder {
		resp = g.rewriteReturnExchange(resp, in)
	}

	// 4. 租户能力开关校验
	if !actionAllowed(resp.Action, in.Tenant) {
		zlog.Info("action denied by tenant flags",
			zap.String("action", resp.Action))
		resp.Action = chat.ActionNone
		resp.Answer = capabilityDeniedAnswer
		resp.URL = ""
		return g.finish(resp, in)
	}

	// 5. 跳转地址规整：剥协议主机、保证前导斜杠；上下文里不存在的地址不放行
	if resp.Action == chat.ActionRedirect {
		normalized := normalizeRedirectURL(resp.URL)
		if normalized == "" || !urlInContext(normalized, in.ContextURLs) {
			zlog.Info("redirect url not in context, downgrade to none",
				zap.String("url", resp.URL))
			resp.Action = chat.ActionNone
			resp.URL = ""
		} else {
			resp.URL = normalized
		}
	}

	// 6. 高亮/滚动短语规整
	if resp.Action == chat.ActionHighlightText || resp.Action == chat.ActionScroll {
		fromUser := in.UserPhrase != ""
		text := resp.ActionContext["text"]
		if fromUser {
			text = in.UserPhrase
		}
		resp.ActionContext["text"] = normalizeHighlightText(text, fromUser, g.highlightMaxWords)
	}

	return g.finish(resp, in)
}

// rewriteReturnExchange 退换货渠道规则
func (g *Gate) rewriteReturnExchange(resp *chat.ActionResponse, in *Input) *chat.ActionResponse {
	orderBits := make([]string, 0, 2)
	if id := resp.ActionContext["order_id"]; id != "" {
		orderBits = append(orderBits, "order_id="+id)
	}
	if email := resp.ActionContext["order_email"]; email != "" {
		orderBits = append(orderBits, "order_email="+email)
	}

	if in.PolicyPageURL != "" {
		resp.Action = chat.ActionRedirect
		resp.URL = in.PolicyPageURL
		return resp
	}

	resp.Action = chat.ActionContact
	resp.URL = ""
	msg := "return/exchange request"
	if len(orderBits) > 0 {
		msg += " (" + strings.Join(orderBits, ", ") + ")"
	}
	resp.ActionContext["message"] = msg
	return resp
}

// finish 补齐记账字段
func (g *Gate) finish(resp *chat.ActionResponse, in *Input) *chat.ActionResponse {
	if in.Classification != nil {
		resp.Type = in.Classification.Type
		resp.Category = in.Classification.Category
		resp.Subcategory = in.Classification.Subcategory
	}
	return resp
}

// actionAllowed 动作对应的租户开关。contact/none 与订单取消始终放行。
func actionAllowed(action string, tenant *entity.Tenant) bool {
	if tenant == nil {
		return action == chat.ActionNone || action == chat.ActionContact
	}
	switch action {
	case chat.ActionScroll:
		return tenant.AllowAutoScroll
	case chat.ActionHighlightText:
		return tenant.AllowAutoHighlight
	case chat.ActionRedirect:
		return tenant.AllowAutoRedirect
	case chat.ActionClick:
		return tenant.AllowAutoClick
	case chat.ActionFillForm:
		return tenant.AllowAutoFillForm
	case chat.ActionGenerateImage:
		return tenant.AllowAutoGenerateImage
	case chat.ActionLogin:
		return tenant.AllowAutoLogin
	case chat.ActionLogout:
		return tenant.AllowAutoLogout
	case chat.ActionTrackOrder:
		return tenant.AllowAutoTrackOrder
	case chat.ActionGetOrders:
		return tenant.AllowAutoGetOrders
	case chat.ActionAccountManagement:
		return tenant.AllowAutoUpdateUserInfo
	default:
		return true
	}
}
