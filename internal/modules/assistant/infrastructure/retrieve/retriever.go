package retrieve

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"StoreLink/internal/modules/assistant/domain/chat"
	"StoreLink/internal/modules/assistant/domain/repository"
	"StoreLink/internal/modules/assistant/infrastructure/sparse"
	"StoreLink/pkg/zlog"

	"github.com/cloudwego/eino/components/embedding"
	"go.uber.org/zap"
)

// Result 两个知识库的召回结果
type Result struct {
	Content []repository.KnowledgeHit
	QA      []repository.KnowledgeHit
}

// Retriever 混合召回器：内容库与问答库各发一次稠密+稀疏混合查询，并发执行。
type Retriever struct {
	vi        repository.VectorIndex
	embedder  embedding.Embedder
	sparseGen *sparse.Generator
	topK      int
}

func NewRetriever(vi repository.VectorIndex, embedder embedding.Embedder, sparseGen *sparse.Generator, topK int) (*Retriever, error) {
	if vi == nil {
		return nil, fmt.Errorf("vector index is nil")
	}
	if embedder == nil {
		return nil, fmt.Errorf("embedder is nil")
	}
	if sparseGen == nil {
		return nil, fmt.Errorf("sparse generator is nil")
	}
	if topK <= 0 {
		topK = 20
	}
	return &Retriever{vi: vi, embedder: embedder, sparseGen: sparseGen, topK: topK}, nil
}

// Retrieve 并发查询内容库与问答库。
// 原始消息与补写消息两路稠密向量并发生成，强上下文依赖的轮次用补写文本召回，
// 裸确认词或订单号不直接进检索。
// 分类为目录分组类型时，内容库追加一次偏向分组关键词的补充查询，按 ID 合并去重。
// 问答库命中的分类元数据强制覆盖为当前分类（问答语料按分类预分区，过期元数据不可信）。
func (r *Retriever) Retrieve(ctx context.Context, query, enhanced string, cls *chat.Classification) (*Result, error) {
	if cls == nil {
		cls = chat.NeutralClassification()
	}

	plainDense, enhancedDense, err := r.embedVariants(ctx, query, enhanced)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	retrievalQuery := query
	dense := plainDense
	if cls.ContextDependency == "high" && enhancedDense != nil {
		retrievalQuery = enhanced
		dense = enhancedDense
	}

	// 两路稀疏向量生成相互独立，并发执行
	var (
		contentSparse chat.SparseVector
		qaSparse      chat.SparseVector
		sparseWG      sync.WaitGroup
	)
	sparseWG.Add(2)
	go func() {
		defer sparseWG.Done()
		contentSparse = r.sparseGen.GenerateSparse(ctx, retrievalQuery, cls.Type, cls.Category, cls.Subcategory)
	}()
	go func() {
		defer sparseWG.Done()
		qaSparse = r.sparseGen.GenerateSparse(ctx, retrievalQuery, cls.Type, cls.Category, cls.Subcategory)
	}()
	sparseWG.Wait()

	var (
		wg          sync.WaitGroup
		contentHits []repository.KnowledgeHit
		qaHits      []repository.KnowledgeHit
		contentErr  error
		qaErr       error
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		contentHits, contentErr = r.retrieveContent(ctx, retrievalQuery, dense, contentSparse, cls)
	}()
	go func() {
		defer wg.Done()
		qaHits, qaErr = r.vi.Query(ctx, repository.NamespaceQA, dense, qaSparse, r.topK)
	}()
	wg.Wait()

	if contentErr != nil {
		return nil, fmt.Errorf("content retrieval: %w", contentErr)
	}
	if qaErr != nil {
		return nil, fmt.Errorf("qa retrieval: %w", qaErr)
	}

	// 问答库分类元数据以当前分类为准
	for i := range qaHits {
		qaHits[i].Type = cls.Type
		qaHits[i].Category = cls.Category
		qaHits[i].Subcategory = cls.Subcategory
	}

	zlog.Info("hybrid retrieve done",
		zap.Int("content_hits", len(contentHits)),
		zap.Int("qa_hits", len(qaHits)))

	return &Result{Content: contentHits, QA: qaHits}, nil
}

func (r *Retriever) retrieveContent(ctx context.Context, query string, dense []float32, sv chat.SparseVector, cls *chat.Classification) ([]repository.KnowledgeHit, error) {
	hits, err := r.vi.Query(ctx, repository.NamespaceContent, dense, sv, r.topK)
	if err != nil {
		return nil, err
	}

	// 分组类型文档在泛相似检索中代表性不足，追加一次分组偏向查询补偿
	if cls.Type != chat.TypeCollection {
		return hits, nil
	}

	groupQuery := buildGroupQuery(query, cls)
	groupDense, err := r.embedQuery(ctx, groupQuery)
	if err != nil {
		zlog.Warn("group query embed failed, skip supplement", zap.Error(err))
		return hits, nil
	}
	groupSparse := r.sparseGen.GenerateSparse(ctx, groupQuery, cls.Type, cls.Category, cls.Subcategory)
	groupHits, err := r.vi.Query(ctx, repository.NamespaceContent, groupDense, groupSparse, r.topK)
	if err != nil {
		zlog.Warn("group query failed, skip supplement", zap.Error(err))
		return hits, nil
	}

	return mergeByID(hits, groupHits), nil
}

// buildGroupQuery 把查询文本向分组关键词加权
func buildGroupQuery(query string, cls *chat.Classification) string {
	keyword := chat.TypeCollection
	if name := strings.TrimSpace(cls.ContentTargets["collection_name"]); name != "" {
		keyword = name
	}
	return fmt.Sprintf("%s %s %s", keyword, query, keyword)
}

// mergeByID 按 ID 合并两个结果集，跳过重复项
func mergeByID(base, extra []repository.KnowledgeHit) []repository.KnowledgeHit {
	seen := make(map[string]bool, len(base))
	for _, h := range base {
		seen[h.ID] = true
	}
	merged := base
	for _, h := range extra {
		if seen[h.ID] {
			continue
		}
		seen[h.ID] = true
		merged = append(merged, h)
	}
	return merged
}

// embedVariants 并发向量化原始消息与补写消息。
// 补写消息为空或与原始消息相同只发一路；补写向量失败降级回原始向量，不中断召回。
func (r *Retriever) embedVariants(ctx context.Context, query, enhanced string) ([]float32, []float32, error) {
	if enhanced == "" || enhanced == query {
		plain, err := r.embedQuery(ctx, query)
		return plain, nil, err
	}

	var (
		wg               sync.WaitGroup
		plain, enh       []float32
		plainErr, enhErr error
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		plain, plainErr = r.embedQuery(ctx, query)
	}()
	go func() {
		defer wg.Done()
		enh, enhErr = r.embedQuery(ctx, enhanced)
	}()
	wg.Wait()

	if plainErr != nil {
		return nil, nil, plainErr
	}
	if enhErr != nil {
		zlog.Warn("enhanced query embed failed, fall back to plain", zap.Error(enhErr))
		return plain, nil, nil
	}
	return plain, enh, nil
}

func (r *Retriever) embedQuery(ctx context.Context, query string) ([]float32, error) {
	vecs, err := r.embedder.EmbedStrings(ctx, []string{query})
	if err != nil {
		return nil, err
	}
	if len(vecs) == 0 || len(vecs[0]) == 0 {
		return nil, fmt.Errorf("empty embedding result")
	}
	dense := make([]float32, len(vecs[0]))
	for i, v := range vecs[0] {
		dense[i] = float32(v)
	}
	return dense, nil
}
