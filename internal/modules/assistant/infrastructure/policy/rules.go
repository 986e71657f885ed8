package policy

import (
	"regexp"
	"strings"

	"StoreLink/internal/modules/assistant/domain/chat"
)

// Override 规则引擎的独立判定信号，与模型分类并行产生，
// 仅在文档化的安全场景（账号字段修改）覆盖模型输出。
type Override struct {
	Action string
	Fields map[string]string
}

var (
	nameChangePattern = regexp.MustCompile(
		`(?i)\b(?:change|update|set)\s+my\s+name\s+(?:to\s+)?([A-Za-z][A-Za-z'-]*)(?:\s+([A-Za-z][A-Za-z'-]*))?`)
	emailChangePattern = regexp.MustCompile(
		`(?i)\b(?:change|update|set)\s+my\s+(?:e-?mail)(?:\s+address)?\s+(?:to\s+)?([\w.+-]+@[\w-]+\.[\w.-]+)`)
	usernameChangePattern = regexp.MustCompile(
		`(?i)\b(?:change|update|set)\s+my\s+username\s+(?:to\s+)?(\S+)`)

	orderNumberPattern = regexp.MustCompile(`#?\b(\d{3,})\b`)
	bareOrderPattern   = regexp.MustCompile(`^\s*#?\d{3,}\s*$`)
	emailPattern       = regexp.MustCompile(`\b[\w.+-]+@[\w-]+\.[\w.-]+\b`)
	bareEmailPattern   = regexp.MustCompile(`^\s*[\w.+-]+@[\w-]+\.[\w.-]+\s*$`)

	confirmPattern = regexp.MustCompile(`(?i)^\s*(yes|yeah|yep|ok|okay|sure|please do|go ahead|confirm)\b`)
)

// DetectAccountOverride 从原始消息识别账号字段修改请求。
// 命中时网关无条件覆盖模型提出的 redirect：跳转离开聊天会丢失修改请求本身。
func DetectAccountOverride(message string) *Override {
	if m := nameChangePattern.FindStringSubmatch(message); m != nil {
		fields := map[string]string{"first_name": m[1]}
		if m[2] != "" {
			fields["last_name"] = m[2]
		}
		return &Override{Action: chat.ActionAccountManagement, Fields: fields}
	}
	if m := emailChangePattern.FindStringSubmatch(message); m != nil {
		return &Override{Action: chat.ActionAccountManagement, Fields: map[string]string{"email": m[1]}}
	}
	if m := usernameChangePattern.FindStringSubmatch(message); m != nil {
		return &Override{Action: chat.ActionAccountManagement, Fields: map[string]string{"username": m[1]}}
	}
	return nil
}

// extractOrderID 提取消息中的订单号
func extractOrderID(message string) string {
	if m := orderNumberPattern.FindStringSubmatch(message); m != nil {
		return m[1]
	}
	return ""
}

// extractEmail 提取消息中的邮箱
func extractEmail(message string) string {
	return emailPattern.FindString(message)
}

// isConfirmatory 确认性/纯订单号/纯邮箱消息判定（订单流续接条件）
func isConfirmatory(message string) bool {
	if confirmPattern.MatchString(message) {
		return true
	}
	if bareOrderPattern.MatchString(message) || bareEmailPattern.MatchString(message) {
		return true
	}
	return len(strings.Fields(message)) <= 3
}
