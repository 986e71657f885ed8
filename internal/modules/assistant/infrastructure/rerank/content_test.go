package rerank

import (
	"testing"

	"StoreLink/internal/modules/assistant/domain/chat"
	"StoreLink/internal/modules/assistant/domain/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testWeights() Weights {
	return Weights{
		TypeMatchBoost:          3,
		GroupTypeBoost:          30,
		ExactTitleBoost:         100,
		ContainsTitleBoost:      10,
		ContinuityBoost:         10,
		PurchaseContinuityBoost: 50,
		QAScoreCap:              1000,
		TopContent:              2,
		TopQA:                   3,
	}
}

func productCls() *chat.Classification {
	return &chat.Classification{
		Type:        chat.TypeProduct,
		Category:    chat.CategoryDiscovery,
		Subcategory: "search",
	}
}

func TestContentDedupByHandle(t *testing.T) {
	r := NewContentReranker(testWeights())
	hits := []repository.KnowledgeHit{
		{ID: "a", Handle: "red-mug", Title: "Red Mug", Score: 0.9},
		{ID: "b", Handle: "Red-Mug", Title: "Red Mug (dup)", Score: 0.8},
		{ID: "c", Handle: "blue-mug", Title: "Blue Mug", Score: 0.7},
	}
	out := r.Rerank(hits, productCls(), "mugs", nil)

	require.Len(t, out, 2)
	ids := []string{out[0].ID, out[1].ID}
	assert.Contains(t, ids, "a")
	assert.Contains(t, ids, "c")
	assert.NotContains(t, ids, "b")
}

func TestContentExactTitleWins(t *testing.T) {
	r := NewContentReranker(testWeights())
	hits := []repository.KnowledgeHit{
		{ID: "partial", Handle: "h1", Title: "Red Mug Deluxe", Score: 0.9},
		{ID: "exact", Handle: "h2", Title: "Red Mug", Score: 0.5},
	}
	out := r.Rerank(hits, productCls(), "red mug", nil)

	require.NotEmpty(t, out)
	// 精确标题命中 ×100 压过原始分更高的包含命中 ×10
	assert.Equal(t, "exact", out[0].ID)
	assert.Greater(t, out[0].RerankScore, out[1].RerankScore)
}

func TestContentTypeBoost(t *testing.T) {
	r := NewContentReranker(testWeights())
	hits := []repository.KnowledgeHit{
		{ID: "page", Handle: "h1", Title: "Care guide", Type: chat.TypePage, Score: 0.6},
		{ID: "prod", Handle: "h2", Title: "Ceramic teapot", Type: chat.TypeProduct, Score: 0.5},
	}
	out := r.Rerank(hits, productCls(), "teapots for sale", nil)

	require.Len(t, out, 2)
	assert.Equal(t, "prod", out[0].ID)
}

func TestContentGroupTypeBoost(t *testing.T) {
	cls := &chat.Classification{
		Type:        chat.TypeCollection,
		Category:    chat.CategoryDiscovery,
		Subcategory: "browse",
	}
	r := NewContentReranker(testWeights())
	hits := []repository.KnowledgeHit{
		{ID: "prod", Handle: "h1", Title: "Winter scarf", Type: chat.TypeProduct, Score: 0.9},
		{ID: "coll", Handle: "h2", Title: "Winter accessories", Type: chat.TypeCollection, Score: 0.2},
	}
	out := r.Rerank(hits, cls, "show winter stuff", nil)

	require.Len(t, out, 2)
	// 分组类型命中 ×30 补偿其在泛相似检索里的弱势
	assert.Equal(t, "coll", out[0].ID)
}

func TestContentContinuityBoost(t *testing.T) {
	r := NewContentReranker(testWeights())
	prev := &chat.TurnState{PreviousAnswer: "You might like the Aurora Lamp from our lighting range."}
	hits := []repository.KnowledgeHit{
		{ID: "other", Handle: "h1", Title: "Desk organizer", Type: chat.TypeProduct, Score: 0.8},
		{ID: "lamp", Handle: "h2", Title: "Aurora Lamp", Type: chat.TypeProduct, Score: 0.3},
	}

	out := r.Rerank(hits, productCls(), "how much does that cost", prev)
	require.Len(t, out, 2)
	assert.Equal(t, "lamp", out[0].ID)

	// 购买措辞触发更强的续接乘数
	outBuy := r.Rerank(hits, productCls(), "I want to buy that now", prev)
	require.Len(t, outBuy, 2)
	assert.Equal(t, "lamp", outBuy[0].ID)
	assert.Greater(t, outBuy[0].RerankScore, out[0].RerankScore)
}

func TestContentTruncatesToTopN(t *testing.T) {
	r := NewContentReranker(testWeights())
	hits := []repository.KnowledgeHit{
		{ID: "a", Handle: "h1", Title: "A", Score: 0.9},
		{ID: "b", Handle: "h2", Title: "B", Score: 0.8},
		{ID: "c", Handle: "h3", Title: "C", Score: 0.7},
		{ID: "d", Handle: "h4", Title: "D", Score: 0.6},
	}
	out := r.Rerank(hits, productCls(), "anything", nil)
	assert.Len(t, out, 2)
}

func TestContentNilClassificationUsesNeutral(t *testing.T) {
	r := NewContentReranker(testWeights())
	hits := []repository.KnowledgeHit{{ID: "a", Handle: "h1", Title: "A", Score: 0.5}}
	out := r.Rerank(hits, nil, "hello", nil)

	require.Len(t, out, 1)
	assert.NotEmpty(t, out[0].ClassificationMatch)
}
