package rerank

import (
	"sort"
	"strings"

	"StoreLink/internal/modules/assistant/domain/chat"
	"StoreLink/internal/modules/assistant/domain/repository"
)

// 问答库专属乘数（小信号，不进配置）
const (
	qaOverlapWeight  = 2.0 // score ×= 1 + overlap*qaOverlapWeight
	qaPurchaseBoost  = 5.0 // 购买型查询命中购买措辞或可跳转 URL 的问答
)

// QAReranker 问答库重排器，与内容重排共享打分骨架但信号权重不同
type QAReranker struct {
	w Weights
}

func NewQAReranker(w Weights) *QAReranker {
	return &QAReranker{w: w}
}

// Rerank 对问答候选重排，返回截断后的 Top-N。最终得分封顶，抑制长尾乘数放大。
func (r *QAReranker) Rerank(candidates []repository.KnowledgeHit, cls *chat.Classification, query string, prev *chat.TurnState) []repository.KnowledgeHit {
	if cls == nil {
		cls = chat.NeutralClassification()
	}

	// 按问题文本去重
	deduped := dedupByKey(candidates, func(h repository.KnowledgeHit) string {
		if h.Question != "" {
			return h.Question
		}
		return h.ID
	})

	queryTokens := tokenize(query)
	purchase := isPurchaseIntent(query, cls)
	var entities []string
	if prev != nil {
		entities = extractEntities(prev.PreviousAnswer)
	}

	for i := range deduped {
		h := &deduped[i]
		score := h.Score

		score *= r.w.typeBoost(h.Type, cls)

		match := classificationMatch(h.Type, h.Category, h.Subcategory, cls)
		score *= 1 + (float64(match)/3)*2
		h.ClassificationMatch = matchLabel(match)

		// 查询词与问答文本的重叠度
		qaText := h.Question + " " + h.Answer
		score *= 1 + overlapRatio(queryTokens, qaText)*qaOverlapWeight

		// 购买型查询额外加权：问答自身含购买措辞，或携带可跳转 URL
		if purchase && (purchasePattern.MatchString(qaText) || strings.TrimSpace(h.URL) != "") {
			score *= qaPurchaseBoost
		}

		// 上一轮实体连续性
		if len(entities) > 0 && (entityMatches(h.Question, entities) || entityMatches(h.Title, entities)) {
			if purchase {
				score *= r.w.PurchaseContinuityBoost
			} else {
				score *= r.w.ContinuityBoost
			}
		}

		if score > r.w.QAScoreCap {
			score = r.w.QAScoreCap
		}
		h.RerankScore = score
	}

	sort.SliceStable(deduped, func(i, j int) bool {
		return deduped[i].RerankScore > deduped[j].RerankScore
	})

	if len(deduped) > r.w.TopQA {
		deduped = deduped[:r.w.TopQA]
	}
	return deduped
}
