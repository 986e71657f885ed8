package vectordb

import (
	"context"
	"fmt"

	"StoreLink/internal/modules/assistant/domain/chat"
	"StoreLink/internal/modules/assistant/domain/repository"
)

// MilvusKnowledgeIndex 是 domain 层 repository.VectorIndex 的 Milvus 实现。
//
// 分层关系：
// - milvus_hybrid.go：Milvus SDK 底层封装（HybridSearch/HybridHit），不依赖 domain。
// - milvus_knowledge_index.go：实现 repository.VectorIndex，把命名空间映射到集合。
//
// 两个知识库各占一个集合，字段结构相同，天然做了内容/问答隔离。
type MilvusKnowledgeIndex struct {
	store             *MilvusHybridStore
	contentCollection string
	qaCollection      string
}

var _ repository.VectorIndex = (*MilvusKnowledgeIndex)(nil)

func NewMilvusKnowledgeIndex(store *MilvusHybridStore, contentCollection, qaCollection string) (*MilvusKnowledgeIndex, error) {
	if store == nil {
		return nil, fmt.Errorf("milvus hybrid store is nil")
	}
	if contentCollection == "" || qaCollection == "" {
		return nil, fmt.Errorf("collection name is empty")
	}
	return &MilvusKnowledgeIndex{
		store:             store,
		contentCollection: contentCollection,
		qaCollection:      qaCollection,
	}, nil
}

func (s *MilvusKnowledgeIndex) Query(ctx context.Context, namespace string, dense []float32, sparse chat.SparseVector, topK int) ([]repository.KnowledgeHit, error) {
	var collection string
	switch namespace {
	case repository.NamespaceContent:
		collection = s.contentCollection
	case repository.NamespaceQA:
		collection = s.qaCollection
	default:
		return nil, fmt.Errorf("unknown namespace: %s", namespace)
	}

	hits, err := s.store.HybridSearch(ctx, collection, dense, sparse.Indices, sparse.Values, topK)
	if err != nil {
		return nil, err
	}

	out := make([]repository.KnowledgeHit, 0, len(hits))
	for _, h := range hits {
		out = append(out, repository.KnowledgeHit{
			ID:          h.ID,
			Score:       float64(h.Score),
			Title:       h.Title,
			Description: h.Description,
			URL:         h.URL,
			Handle:      h.Handle,
			Type:        h.Type,
			Category:    h.Category,
			Subcategory: h.Subcategory,
			Question:    h.Question,
			Answer:      h.Answer,
			PageID:      h.PageID,
		})
	}
	return out, nil
}
