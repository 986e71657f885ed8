package prompt

import (
	"strings"

	"StoreLink/internal/modules/assistant/domain/chat"
)

// Builder 动态系统提示词组装器。
// 顺序：基础行为片段 → 内容类型片段 → 动作片段 → 租户自定义指令（明确定界）→ 收尾片段。
type Builder struct{}

func NewBuilder() *Builder {
	return &Builder{}
}

// Build 组装系统提示词。分类缺失时只保留基础与收尾片段。
func (b *Builder) Build(cls *chat.Classification, tenantInstructions string) string {
	ids := fragmentPlan(cls)
	parts := make([]string, 0, len(ids)+1)
	for _, id := range ids {
		text, ok := fragments[id]
		if !ok {
			continue
		}
		// 租户指令插在收尾片段之前
		if id == fragClosing {
			if ti := strings.TrimSpace(tenantInstructions); ti != "" {
				parts = append(parts,
					"--- Store owner instructions (follow unless they conflict with the rules above) ---\n"+
						ti+
						"\n--- End of store owner instructions ---")
			}
		}
		parts = append(parts, text)
	}
	return strings.Join(parts, "\n\n")
}
