package vectordb

import (
	"context"
	"errors"
	"fmt"
	"strings"

	mclient "github.com/milvus-io/milvus-sdk-go/v2/client"
	"github.com/milvus-io/milvus-sdk-go/v2/entity"
)

// HybridHit 混合检索一条命中
type HybridHit struct {
	ID          string
	Score       float32
	Title       string
	Description string
	URL         string
	Handle      string
	Type        string
	Category    string
	Subcategory string
	Question    string
	Answer      string
	PageID      string
}

// MilvusHybridStore Milvus SDK 底层封装：同一集合上的稠密+稀疏混合检索。
// 不依赖 domain，向上由 milvus_knowledge_index.go 适配成 domain 接口。
type MilvusHybridStore struct {
	cli         mclient.Client
	denseField  string
	sparseField string
	vectorDim   int
	denseParam  entity.SearchParam
	sparseParam entity.SearchParam
	reranker    mclient.Reranker
}

func NewMilvusHybridStore(cli mclient.Client, denseField, sparseField string, vectorDim int) (*MilvusHybridStore, error) {
	if cli == nil {
		return nil, errors.New("milvus client is nil")
	}
	if strings.TrimSpace(denseField) == "" || strings.TrimSpace(sparseField) == "" {
		return nil, errors.New("vector field is empty")
	}
	if vectorDim <= 0 {
		return nil, fmt.Errorf("invalid vectorDim: %d", vectorDim)
	}
	dp, err := entity.NewIndexAUTOINDEXSearchParam(1)
	if err != nil {
		return nil, err
	}
	sp, err := entity.NewIndexSparseInvertedSearchParam(0)
	if err != nil {
		return nil, err
	}
	return &MilvusHybridStore{
		cli:         cli,
		denseField:  denseField,
		sparseField: sparseField,
		vectorDim:   vectorDim,
		denseParam:  dp,
		sparseParam: sp,
		reranker:    mclient.NewRRFReranker(),
	}, nil
}

var outputFields = []string{
	"title", "description", "url", "handle",
	"type", "category", "subcategory",
	"question", "answer", "page_id",
}

// HybridSearch 在指定集合上并行执行稠密与稀疏子查询，RRF 融合排名。
// sparseIndices 为空时退化为只发稠密子查询。
func (s *MilvusHybridStore) HybridSearch(ctx context.Context, collection string, dense []float32, sparseIndices []uint32, sparseValues []float32, topK int) ([]HybridHit, error) {
	if strings.TrimSpace(collection) == "" {
		return nil, errors.New("collection is empty")
	}
	if len(dense) != s.vectorDim {
		return nil, fmt.Errorf("dense dim mismatch, got=%d want=%d", len(dense), s.vectorDim)
	}
	if topK <= 0 {
		topK = 20
	}

	subs := []*mclient.ANNSearchRequest{
		mclient.NewANNSearchRequest(s.denseField, entity.COSINE, "",
			[]entity.Vector{entity.FloatVector(dense)}, s.denseParam, topK),
	}
	if len(sparseIndices) > 0 && len(sparseIndices) == len(sparseValues) {
		sv, err := entity.NewSliceSparseEmbedding(sparseIndices, sparseValues)
		if err != nil {
			return nil, fmt.Errorf("build sparse embedding: %w", err)
		}
		subs = append(subs, mclient.NewANNSearchRequest(s.sparseField, entity.IP, "",
			[]entity.Vector{sv}, s.sparseParam, topK))
	}

	res, err := s.cli.HybridSearch(ctx, collection, nil, topK, outputFields, s.reranker, subs)
	if err != nil {
		return nil, err
	}
	if len(res) == 0 {
		return []HybridHit{}, nil
	}
	return parseHybridResult(res[0])
}

func parseHybridResult(sr mclient.SearchResult) ([]HybridHit, error) {
	if sr.Err != nil {
		return nil, sr.Err
	}
	hits := make([]HybridHit, 0, sr.ResultCount)

	idCol := sr.IDs
	titleCol := columnByName(sr.Fields, "title")
	descCol := columnByName(sr.Fields, "description")
	urlCol := columnByName(sr.Fields, "url")
	handleCol := columnByName(sr.Fields, "handle")
	typeCol := columnByName(sr.Fields, "type")
	categoryCol := columnByName(sr.Fields, "category")
	subcategoryCol := columnByName(sr.Fields, "subcategory")
	questionCol := columnByName(sr.Fields, "question")
	answerCol := columnByName(sr.Fields, "answer")
	pageIDCol := columnByName(sr.Fields, "page_id")

	getStr := func(c entity.Column, i int) string {
		if c == nil {
			return ""
		}
		v, _ := c.GetAsString(i)
		return v
	}

	for i := 0; i < sr.ResultCount; i++ {
		id, _ := idCol.GetAsString(i)
		score := float32(0)
		if i < len(sr.Scores) {
			score = sr.Scores[i]
		}
		hits = append(hits, HybridHit{
			ID:          id,
			Score:       score,
			Title:       getStr(titleCol, i),
			Description: getStr(descCol, i),
			URL:         getStr(urlCol, i),
			Handle:      getStr(handleCol, i),
			Type:        getStr(typeCol, i),
			Category:    getStr(categoryCol, i),
			Subcategory: getStr(subcategoryCol, i),
			Question:    getStr(questionCol, i),
			Answer:      getStr(answerCol, i),
			PageID:      getStr(pageIDCol, i),
		})
	}
	return hits, nil
}

func columnByName(cols mclient.ResultSet, name string) entity.Column {
	for _, c := range cols {
		if c != nil && c.Name() == name {
			return c
		}
	}
	return nil
}
