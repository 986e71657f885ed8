package rerank

import (
	"sort"
	"strings"

	"StoreLink/internal/modules/assistant/domain/chat"
	"StoreLink/internal/modules/assistant/domain/repository"
)

// ContentReranker 内容库重排器
type ContentReranker struct {
	w Weights
}

func NewContentReranker(w Weights) *ContentReranker {
	return &ContentReranker{w: w}
}

// Rerank 对内容候选重排，返回截断后的 Top-N。
// 信号：分类匹配度、类型命中乘数、标题与查询的精确/包含命中、上一轮实体连续性。
func (r *ContentReranker) Rerank(candidates []repository.KnowledgeHit, cls *chat.Classification, query string, prev *chat.TurnState) []repository.KnowledgeHit {
	if cls == nil {
		cls = chat.NeutralClassification()
	}

	// 按目录自然键去重（保留先出现者，即原始排名更高者）
	deduped := dedupByKey(candidates, func(h repository.KnowledgeHit) string {
		if h.Handle != "" {
			return h.Handle
		}
		return h.ID
	})

	var entities []string
	if prev != nil {
		entities = extractEntities(prev.PreviousAnswer)
	}
	purchase := isPurchaseIntent(query, cls)
	lowQuery := strings.ToLower(strings.TrimSpace(query))

	for i := range deduped {
		h := &deduped[i]
		score := h.Score

		score *= r.w.typeBoost(h.Type, cls)

		match := classificationMatch(h.Type, h.Category, h.Subcategory, cls)
		score *= 1 + (float64(match)/3)*2
		h.ClassificationMatch = matchLabel(match)

		// 标题命中
		lowTitle := strings.ToLower(strings.TrimSpace(h.Title))
		if lowTitle != "" {
			if lowTitle == lowQuery {
				score *= r.w.ExactTitleBoost
			} else if strings.Contains(lowQuery, lowTitle) || strings.Contains(lowTitle, lowQuery) {
				score *= r.w.ContainsTitleBoost
			}
		}

		// 上一轮提到的实体连续性加权
		if len(entities) > 0 && entityMatches(h.Title, entities) {
			if purchase {
				score *= r.w.PurchaseContinuityBoost
			} else {
				score *= r.w.ContinuityBoost
			}
		}

		h.RerankScore = score
	}

	// 稳定排序：同分保持原始顺序
	sort.SliceStable(deduped, func(i, j int) bool {
		return deduped[i].RerankScore > deduped[j].RerankScore
	})

	if len(deduped) > r.w.TopContent {
		deduped = deduped[:r.w.TopContent]
	}
	return deduped
}

// dedupByKey 按自然键去重，保留首个出现的候选
func dedupByKey(candidates []repository.KnowledgeHit, keyFn func(repository.KnowledgeHit) string) []repository.KnowledgeHit {
	seen := make(map[string]bool, len(candidates))
	out := make([]repository.KnowledgeHit, 0, len(candidates))
	for _, h := range candidates {
		key := strings.ToLower(strings.TrimSpace(keyFn(h)))
		if key != "" && seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, h)
	}
	return out
}
