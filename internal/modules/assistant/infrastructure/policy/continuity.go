package policy

import (
	"regexp"
	"strings"

	"StoreLink/internal/modules/assistant/domain/chat"
)

// OrderInfoDetector 判断页面快照里是否已经可见订单信息。
// 这是可替换的启发式策略：默认实现用一组字面短语模式，准确率有限。
type OrderInfoDetector func(snapshot *chat.PageSnapshot) (phrase string, found bool)

var orderInfoPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)found\s+\d+\s+orders?`),
	regexp.MustCompile(`(?i)tracking\s+number[:\s]*\S*`),
	regexp.MustCompile(`(?i)order\s+#\s*\d+`),
	regexp.MustCompile(`(?i)your\s+orders`),
	regexp.MustCompile(`(?i)order\s+status[:\s]*\w*`),
}

// DefaultOrderInfoDetector 字面短语匹配版订单信息检测
func DefaultOrderInfoDetector(snapshot *chat.PageSnapshot) (string, bool) {
	if snapshot == nil || strings.TrimSpace(snapshot.FullText) == "" {
		return "", false
	}
	for _, p := range orderInfoPatterns {
		if m := p.FindString(snapshot.FullText); m != "" {
			return strings.TrimSpace(m), true
		}
	}
	return "", false
}

// applyContinuity 订单流连续性状态机。
// 上一轮是订单流动作、本轮是确认/纯订单号/纯邮箱，且页面上看不到订单信息时，
// 把本轮动作拉回上一轮动作，并沿用上一轮捕获的字段；本轮新给出的订单号/邮箱覆盖旧值。
// 页面已可见订单信息时改为高亮命中的短语。
func (g *Gate) applyContinuity(resp *chat.ActionResponse, in *Input) *chat.ActionResponse {
	if in.Prev == nil || in.Prev.PreviousAction == "" {
		return resp
	}

	// fill_form 之后的确认轮：点击表单提交控件
	if in.Prev.PreviousAction == chat.ActionFillForm && confirmPattern.MatchString(in.Message) {
		resp.Action = chat.ActionClick
		if resp.ActionContext == nil {
			resp.ActionContext = map[string]string{}
		}
		if resp.ActionContext["selector"] == "" {
			resp.ActionContext["selector"] = "submit"
		}
		return resp
	}

	if !chat.IsOrderFlowAction(in.Prev.PreviousAction) {
		return resp
	}
	if !isConfirmatory(in.Message) {
		return resp
	}

	// 页面已展示订单信息：不再续接订单动作，高亮已匹配到的短语
	if phrase, found := g.orderInfo(in.Snapshot); found {
		resp.Action = chat.ActionHighlightText
		if resp.ActionContext == nil {
			resp.ActionContext = map[string]string{}
		}
		resp.ActionContext["text"] = phrase
		return resp
	}

	resp.Action = in.Prev.PreviousAction
	if resp.ActionContext == nil {
		resp.ActionContext = map[string]string{}
	}

	// 先沿用上一轮捕获的字段
	for _, key := range []string{"order_id", "order_email", "return_reason"} {
		if v := in.Prev.CapturedFields[key]; v != "" && resp.ActionContext[key] == "" {
			resp.ActionContext[key] = v
		}
	}
	// 本轮消息里新给出的值覆盖沿用值
	if id := extractOrderID(in.Message); id != "" {
		resp.ActionContext["order_id"] = id
	}
	if email := extractEmail(in.Message); email != "" {
		resp.ActionContext["order_email"] = email
	}

	return resp
}

func (g *Gate) orderInfo(snapshot *chat.PageSnapshot) (string, bool) {
	detector := g.orderInfoDetector
	if detector == nil {
		detector = DefaultOrderInfoDetector
	}
	return detector(snapshot)
}
