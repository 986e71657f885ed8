package rerank

import (
	"fmt"
	"regexp"
	"strings"

	"StoreLink/internal/config"
	"StoreLink/internal/modules/assistant/domain/chat"
)

// Weights 重排乘数。数值是经验校准起点，不是契约，允许按店铺调参。
type Weights struct {
	TypeMatchBoost          float64
	GroupTypeBoost          float64
	ExactTitleBoost         float64
	ContainsTitleBoost      float64
	ContinuityBoost         float64
	PurchaseContinuityBoost float64
	QAScoreCap              float64
	TopContent              int
	TopQA                   int
}

// WeightsFromConfig 从引擎配置取重排参数
func WeightsFromConfig(ec *config.EngineConfig) Weights {
	return Weights{
		TypeMatchBoost:          ec.TypeMatchBoost,
		GroupTypeBoost:          ec.GroupTypeBoost,
		ExactTitleBoost:         ec.ExactTitleBoost,
		ContainsTitleBoost:      ec.ContainsTitleBoost,
		ContinuityBoost:         ec.ContinuityBoost,
		PurchaseContinuityBoost: ec.PurchaseContinuityBoost,
		QAScoreCap:              ec.QAScoreCap,
		TopContent:              ec.TopContent,
		TopQA:                   ec.TopQA,
	}
}

// classificationMatch 统计 type/category/subcategory 三个维度的匹配数。
// subcategory 的 general 占位值视为匹配。
func classificationMatch(hitType, hitCategory, hitSubcategory string, cls *chat.Classification) int {
	match := 0
	if hitType == cls.Type {
		match++
	}
	if hitCategory == cls.Category {
		match++
	}
	if hitSubcategory == cls.Subcategory || hitSubcategory == chat.SubcategoryGeneral {
		match++
	}
	return match
}

func matchLabel(match int) string {
	return fmt.Sprintf("%d/3", match)
}

// typeBoost 类型命中乘数：精确命中 ×TypeMatchBoost；
// 分类与候选同为分组类型时 ×GroupTypeBoost（分组文档在泛检索里容易被淹没）。
func (w Weights) typeBoost(hitType string, cls *chat.Classification) float64 {
	if hitType != cls.Type {
		return 1
	}
	if cls.Type == chat.TypeCollection {
		return w.GroupTypeBoost
	}
	return w.TypeMatchBoost
}

var stopWords = map[string]bool{
	"a": true, "an": true, "the": true, "is": true, "are": true, "was": true,
	"do": true, "does": true, "did": true, "can": true, "could": true,
	"i": true, "you": true, "my": true, "your": true, "me": true, "we": true,
	"to": true, "of": true, "in": true, "on": true, "for": true, "with": true,
	"what": true, "where": true, "when": true, "how": true, "who": true, "which": true,
	"and": true, "or": true, "it": true, "this": true, "that": true, "have": true,
	"be": true, "at": true, "by": true, "from": true, "about": true, "please": true,
}

// tokenize 小写分词并去停用词
func tokenize(text string) []string {
	fields := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !('a' <= r && r <= 'z' || '0' <= r && r <= '9')
	})
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		if stopWords[f] || len(f) < 2 {
			continue
		}
		out = append(out, f)
	}
	return out
}

// overlapRatio 查询词与目标文本的重叠比例
func overlapRatio(queryTokens []string, text string) float64 {
	if len(queryTokens) == 0 {
		return 0
	}
	target := make(map[string]bool)
	for _, t := range tokenize(text) {
		target[t] = true
	}
	hit := 0
	for _, t := range queryTokens {
		if target[t] {
			hit++
		}
	}
	return float64(hit) / float64(len(queryTokens))
}

var purchasePattern = regexp.MustCompile(`(?i)\b(buy|purchase|checkout|check\s*out|order\s+now|add\s+to\s+cart|get\s+it|pay)\b`)

// isPurchaseIntent 购买/承诺型意图判定（查询措辞 + 分类信号）
func isPurchaseIntent(query string, cls *chat.Classification) bool {
	if purchasePattern.MatchString(query) {
		return true
	}
	if cls == nil {
		return false
	}
	return cls.Subcategory == "availability" || cls.Subcategory == "price"
}

// 大写开头的多词连续片段视为命名实体（启发式）
var entityPattern = regexp.MustCompile(`\b([A-Z][a-zA-Z0-9']+(?:\s+[A-Z][a-zA-Z0-9']+)+)\b`)

// extractEntities 从上一轮回答里抽取命名实体，用于连续性加权
func extractEntities(previousAnswer string) []string {
	if previousAnswer == "" {
		return nil
	}
	matches := entityPattern.FindAllStringSubmatch(previousAnswer, -1)
	out := make([]string, 0, len(matches))
	seen := make(map[string]bool)
	for _, m := range matches {
		e := strings.TrimSpace(m[1])
		key := strings.ToLower(e)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, e)
	}
	return out
}

// entityMatches 候选标题是否命中任一实体
func entityMatches(title string, entities []string) bool {
	lowTitle := strings.ToLower(title)
	for _, e := range entities {
		le := strings.ToLower(e)
		if lowTitle == le || strings.Contains(lowTitle, le) || strings.Contains(le, lowTitle) {
			return true
		}
	}
	return false
}
