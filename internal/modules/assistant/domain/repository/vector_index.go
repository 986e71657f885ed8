package repository

import (
	"context"

	"StoreLink/internal/modules/assistant/domain/chat"
)

// 知识库命名空间
const (
	NamespaceContent = "content"
	NamespaceQA      = "qa"
)

// KnowledgeHit 向量库一条命中记录（两个知识库共用，问答库额外带 Question/Answer）
type KnowledgeHit struct {
	ID          string
	Score       float64
	Title       string
	Description string
	URL         string
	Handle      string // 目录条目自然键（内容库去重用）
	Type        string
	Category    string
	Subcategory string
	Question    string
	Answer      string
	PageID      string

	// RerankScore 重排后的最终得分（重排阶段填充）
	RerankScore float64
	// ClassificationMatch 调试用匹配度标记，如 "2/3"
	ClassificationMatch string
}

// VectorIndex 是 domain 层定义的向量库能力抽象。
//
// 设计约束：
// 1) application / domain 只依赖本接口，不直接依赖 Milvus SDK。
// 2) infrastructure 通过适配器实现本接口，从而做到可替换。
type VectorIndex interface {
	// Query 稠密+稀疏混合检索。namespace 取 NamespaceContent / NamespaceQA。
	Query(ctx context.Context, namespace string, dense []float32, sparse chat.SparseVector, topK int) ([]KnowledgeHit, error)
}
