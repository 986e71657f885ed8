package rerank

import (
	"testing"

	"StoreLink/internal/modules/assistant/domain/chat"
	"StoreLink/internal/modules/assistant/domain/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQADedupByQuestion(t *testing.T) {
	r := NewQAReranker(testWeights())
	hits := []repository.KnowledgeHit{
		{ID: "a", Question: "Do you ship internationally?", Answer: "Yes, worldwide.", Score: 0.9},
		{ID: "b", Question: "do you ship internationally?", Answer: "Yes.", Score: 0.8},
		{ID: "c", Question: "How long does shipping take?", Answer: "3-5 days.", Score: 0.7},
	}
	out := r.Rerank(hits, nil, "shipping", nil)

	require.Len(t, out, 2)
	for _, h := range out {
		assert.NotEqual(t, "b", h.ID)
	}
}

func TestQAOverlapBoost(t *testing.T) {
	r := NewQAReranker(testWeights())
	hits := []repository.KnowledgeHit{
		{ID: "off", Question: "Do you sell gift cards?", Answer: "Yes we do.", Score: 0.5},
		{ID: "on", Question: "What is your refund policy?", Answer: "Full refund within 30 days.", Score: 0.5},
	}
	out := r.Rerank(hits, nil, "refund policy details", nil)

	require.Len(t, out, 2)
	assert.Equal(t, "on", out[0].ID)
	assert.Greater(t, out[0].RerankScore, out[1].RerankScore)
}

func TestQAPurchaseBoostNeedsPurchaseSignal(t *testing.T) {
	r := NewQAReranker(testWeights())
	hits := []repository.KnowledgeHit{
		{ID: "plain", Question: "What sizes are available?", Answer: "S to XL.", Score: 0.5},
		{ID: "linked", Question: "Where can I get the starter kit?", Answer: "Right here.", URL: "/products/starter-kit", Score: 0.5},
	}

	// 非购买查询不触发
	out := r.Rerank(hits, nil, "tell me about sizing", nil)
	require.Len(t, out, 2)
	assert.Equal(t, "plain", out[0].ID)

	// 购买查询时带可跳转 URL 的问答被拉升
	out = r.Rerank(hits, nil, "I want to buy the starter kit", nil)
	require.Len(t, out, 2)
	assert.Equal(t, "linked", out[0].ID)
}

func TestQAScoreCapped(t *testing.T) {
	w := testWeights()
	r := NewQAReranker(w)
	cls := &chat.Classification{
		Type:        chat.TypeFAQ,
		Category:    chat.CategorySupport,
		Subcategory: chat.SubcategoryGeneral,
	}
	hits := []repository.KnowledgeHit{{
		ID:          "hot",
		Question:    "Can I buy the Aurora Lamp at checkout?",
		Answer:      "Yes, add to cart and pay.",
		URL:         "/products/aurora-lamp",
		Type:        chat.TypeFAQ,
		Category:    chat.CategorySupport,
		Subcategory: chat.SubcategoryGeneral,
		Score:       900,
	}}
	prev := &chat.TurnState{PreviousAnswer: "The Aurora Lamp is on sale."}

	out := r.Rerank(hits, cls, "buy the aurora lamp", prev)
	require.Len(t, out, 1)
	// 乘数叠出天文数字也被封顶，避免问答压制所有内容命中
	assert.Equal(t, w.QAScoreCap, out[0].RerankScore)
}

func TestQATruncatesToTopN(t *testing.T) {
	r := NewQAReranker(testWeights())
	hits := []repository.KnowledgeHit{
		{ID: "a", Question: "q1", Score: 0.9},
		{ID: "b", Question: "q2", Score: 0.8},
		{ID: "c", Question: "q3", Score: 0.7},
		{ID: "d", Question: "q4", Score: 0.6},
	}
	out := r.Rerank(hits, nil, "anything", nil)
	assert.Len(t, out, 3)
}
