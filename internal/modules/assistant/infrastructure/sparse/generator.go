package sparse

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"StoreLink/internal/modules/assistant/domain/chat"
	"StoreLink/internal/modules/assistant/domain/repository"
	"StoreLink/pkg/util"
	"StoreLink/pkg/zlog"

	"go.uber.org/zap"
)

// BM25 参数（与临时索引的相似度配置保持一致）
const (
	bm25K1 = 1.2
	bm25B  = 0.75
)

// Options 稀疏向量生成参数
type Options struct {
	MaxTerms      int // 保留得分最高的词项数上限
	FallbackTerms int // 无有效得分时回退取的原始词数
	CreateRetries int // 临时索引创建重试次数
}

// Generator 基于临时全文索引的 BM25 稀疏向量生成器。
// 每次调用创建一个唯一命名的索引，单文档入库后取词项统计打分，结束后保证删除。
type Generator struct {
	idx  repository.LexicalIndex
	opts Options
}

func NewGenerator(idx repository.LexicalIndex, opts Options) *Generator {
	if opts.MaxTerms <= 0 {
		opts.MaxTerms = 32000
	}
	if opts.FallbackTerms <= 0 {
		opts.FallbackTerms = 10
	}
	if opts.CreateRetries <= 0 {
		opts.CreateRetries = 3
	}
	return &Generator{idx: idx, opts: opts}
}

// GenerateSparse 生成稀疏向量。
// 任何基础设施错误都在内部消化，降级为单词项向量（indices=[0], values=[1]），
// 保证下游混合检索永远不会收到空向量。
func (g *Generator) GenerateSparse(ctx context.Context, text, typ, category, subcategory string) chat.SparseVector {
	vec, err := g.generate(ctx, text, typ, category, subcategory)
	if err != nil {
		zlog.Warn("sparse vector degraded", zap.Error(err))
		return chat.SparseVector{Indices: []uint32{0}, Values: []float32{1}}
	}
	return vec
}

func (g *Generator) generate(ctx context.Context, text, typ, category, subcategory string) (chat.SparseVector, error) {
	if g.idx == nil {
		return chat.SparseVector{}, fmt.Errorf("lexical index unavailable")
	}

	// 分类标签重复三次拼接，做词法权重提升
	doc := buildDocument(text, typ, category, subcategory)

	indexName := "sparse_" + strings.ToLower(util.GenerateShortUUID())
	if err := g.createWithRetry(ctx, indexName); err != nil {
		return chat.SparseVector{}, err
	}
	// 临时索引必须在所有退出路径上删除
	defer func() {
		dctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := g.idx.DeleteIndex(dctx, indexName); err != nil {
			zlog.Warn("ephemeral index delete failed",
				zap.String("index", indexName), zap.Error(err))
		}
	}()

	const docID = "1"
	if err := g.idx.IndexDocument(ctx, indexName, docID, doc); err != nil {
		return chat.SparseVector{}, fmt.Errorf("index document: %w", err)
	}

	stats, err := g.idx.TermVectors(ctx, indexName, docID)
	if err != nil {
		return chat.SparseVector{}, fmt.Errorf("term vectors: %w", err)
	}
	if stats == nil || len(stats.Terms) == 0 {
		return g.fallbackVector(text), nil
	}

	scored := scoreTerms(stats)
	if len(scored) == 0 {
		return g.fallbackVector(text), nil
	}

	// 按得分降序，同分按词面字典序，保证同输入输出稳定
	sort.Slice(scored, func(i, j int) bool {
		if scored[i].score != scored[j].score {
			return scored[i].score > scored[j].score
		}
		return scored[i].term < scored[j].term
	})
	if len(scored) > g.opts.MaxTerms {
		scored = scored[:g.opts.MaxTerms]
	}

	return normalize(scored), nil
}

func (g *Generator) createWithRetry(ctx context.Context, name string) error {
	var lastErr error
	for attempt := 0; attempt < g.opts.CreateRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(time.Duration(attempt) * 200 * time.Millisecond):
			}
		}
		if err := g.idx.CreateIndex(ctx, name); err != nil {
			lastErr = err
			continue
		}
		return nil
	}
	return fmt.Errorf("create ephemeral index: %w", lastErr)
}

// fallbackVector 无有效词项得分时，取原始文本前 N 个词均匀赋权 1.0
func (g *Generator) fallbackVector(text string) chat.SparseVector {
	words := strings.Fields(text)
	n := g.opts.FallbackTerms
	if len(words) < n {
		n = len(words)
	}
	if n == 0 {
		return chat.SparseVector{Indices: []uint32{0}, Values: []float32{1}}
	}
	indices := make([]uint32, n)
	values := make([]float32, n)
	for i := 0; i < n; i++ {
		indices[i] = uint32(i)
		values[i] = 1.0
	}
	return chat.SparseVector{Indices: indices, Values: values}
}

type scoredTerm struct {
	term  string
	score float64
}

// scoreTerms 按 BM25 公式对词项打分（单文档语境，N=1）
func scoreTerms(stats *repository.TermStats) []scoredTerm {
	n := float64(stats.DocCount)
	if n <= 0 {
		n = 1
	}

	var docLen float64
	for _, ts := range stats.Terms {
		docLen += float64(ts.TermFreq)
	}
	avgDocLen := docLen
	if stats.DocCount > 0 && stats.SumTotalTermFreq > 0 {
		avgDocLen = float64(stats.SumTotalTermFreq) / float64(stats.DocCount)
	}
	if avgDocLen <= 0 {
		avgDocLen = 1
	}

	scored := make([]scoredTerm, 0, len(stats.Terms))
	for term, ts := range stats.Terms {
		df := float64(ts.DocFreq)
		tf := float64(ts.TermFreq)
		idf := math.Log(1 + (n-df+0.5)/(df+0.5))
		score := idf * (tf * (bm25K1 + 1)) / (tf + bm25K1*(1-bm25B+bm25B*(docLen/avgDocLen)))
		if score > 0 {
			scored = append(scored, scoredTerm{term: term, score: score})
		}
	}
	return scored
}

// normalize 按得分顺序分配连续下标，并将得分 min-max 归一化到 [0,1]
func normalize(scored []scoredTerm) chat.SparseVector {
	minScore := scored[len(scored)-1].score
	maxScore := scored[0].score
	span := maxScore - minScore

	indices := make([]uint32, len(scored))
	values := make([]float32, len(scored))
	for i, st := range scored {
		indices[i] = uint32(i)
		if span > 0 {
			values[i] = float32((st.score - minScore) / span)
		} else {
			values[i] = 1.0
		}
	}
	return chat.SparseVector{Indices: indices, Values: values}
}

func buildDocument(text, typ, category, subcategory string) string {
	var b strings.Builder
	b.WriteString(text)
	for _, tag := range []string{typ, category, subcategory} {
		tag = strings.TrimSpace(tag)
		if tag == "" {
			continue
		}
		for i := 0; i < 3; i++ {
			b.WriteString(" ")
			b.WriteString(tag)
		}
	}
	return b.String()
}
