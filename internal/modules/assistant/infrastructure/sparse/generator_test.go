package sparse

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"StoreLink/internal/modules/assistant/domain/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeLexicalIndex 可编程的全文索引桩
type fakeLexicalIndex struct {
	stats *repository.TermStats

	createErr   error
	createFails int // 前 N 次 CreateIndex 失败
	indexErr    error
	termsErr    error

	createCalls int
	deleted     []string
}

func (f *fakeLexicalIndex) CreateIndex(_ context.Context, name string) error {
	f.createCalls++
	if f.createErr != nil {
		return f.createErr
	}
	if f.createCalls <= f.createFails {
		return fmt.Errorf("create attempt %d failed", f.createCalls)
	}
	_ = name
	return nil
}

func (f *fakeLexicalIndex) IndexDocument(_ context.Context, _, _, _ string) error {
	return f.indexErr
}

func (f *fakeLexicalIndex) TermVectors(_ context.Context, _, _ string) (*repository.TermStats, error) {
	if f.termsErr != nil {
		return nil, f.termsErr
	}
	return f.stats, nil
}

func (f *fakeLexicalIndex) DeleteIndex(_ context.Context, name string) error {
	f.deleted = append(f.deleted, name)
	return nil
}

func statsFor(freqs map[string]int64) *repository.TermStats {
	terms := make(map[string]repository.TermStat, len(freqs))
	var total int64
	for term, tf := range freqs {
		terms[term] = repository.TermStat{TermFreq: tf, DocFreq: 1}
		total += tf
	}
	return &repository.TermStats{DocCount: 1, SumTotalTermFreq: total, Terms: terms}
}

func TestGenerateSparseNormalized(t *testing.T) {
	idx := &fakeLexicalIndex{stats: statsFor(map[string]int64{
		"mug": 5, "ceramic": 2, "red": 1,
	})}
	g := NewGenerator(idx, Options{})

	vec := g.GenerateSparse(context.Background(), "red ceramic mug", "product", "discovery", "search")

	require.Len(t, vec.Indices, 3)
	require.Len(t, vec.Values, 3)
	// 下标按得分降序连续编号
	assert.Equal(t, []uint32{0, 1, 2}, vec.Indices)
	// min-max 归一化：最高 1.0，最低 0.0
	assert.InDelta(t, 1.0, float64(vec.Values[0]), 1e-6)
	assert.InDelta(t, 0.0, float64(vec.Values[2]), 1e-6)
	assert.GreaterOrEqual(t, vec.Values[0], vec.Values[1])
	assert.GreaterOrEqual(t, vec.Values[1], vec.Values[2])

	// 临时索引用完即删
	require.Len(t, idx.deleted, 1)
	assert.True(t, strings.HasPrefix(idx.deleted[0], "sparse_"))
}

func TestGenerateSparseMaxTermsTruncation(t *testing.T) {
	idx := &fakeLexicalIndex{stats: statsFor(map[string]int64{
		"a1": 9, "a2": 7, "a3": 5, "a4": 3, "a5": 1,
	})}
	g := NewGenerator(idx, Options{MaxTerms: 2})

	vec := g.GenerateSparse(context.Background(), "some text", "", "", "")
	assert.Len(t, vec.Indices, 2)
}

func TestGenerateSparseEmptyStatsFallsBack(t *testing.T) {
	idx := &fakeLexicalIndex{stats: &repository.TermStats{DocCount: 1, Terms: map[string]repository.TermStat{}}}
	g := NewGenerator(idx, Options{FallbackTerms: 4})

	vec := g.GenerateSparse(context.Background(), "one two three four five six", "", "", "")

	// 回退取前 N 个原始词，均匀赋权
	require.Len(t, vec.Indices, 4)
	for _, v := range vec.Values {
		assert.Equal(t, float32(1.0), v)
	}
	assert.Len(t, idx.deleted, 1)
}

func TestGenerateSparseCreateRetries(t *testing.T) {
	idx := &fakeLexicalIndex{createFails: 2, stats: statsFor(map[string]int64{"mug": 3, "red": 1})}
	g := NewGenerator(idx, Options{CreateRetries: 3})

	vec := g.GenerateSparse(context.Background(), "red mug", "", "", "")

	assert.Equal(t, 3, idx.createCalls)
	assert.Len(t, vec.Indices, 2)
}

func TestGenerateSparseCreateExhaustedDegrades(t *testing.T) {
	idx := &fakeLexicalIndex{createErr: fmt.Errorf("cluster red")}
	g := NewGenerator(idx, Options{CreateRetries: 2})

	vec := g.GenerateSparse(context.Background(), "red mug", "", "", "")

	assert.Equal(t, 2, idx.createCalls)
	// 降级为单词项向量，混合检索侧永远拿到非空稀疏向量
	assert.Equal(t, []uint32{0}, vec.Indices)
	assert.Equal(t, []float32{1}, vec.Values)
	// 创建失败没有索引可删
	assert.Empty(t, idx.deleted)
}

func TestGenerateSparseDeletesIndexOnFailure(t *testing.T) {
	idx := &fakeLexicalIndex{indexErr: fmt.Errorf("disk full")}
	g := NewGenerator(idx, Options{})

	vec := g.GenerateSparse(context.Background(), "red mug", "", "", "")

	assert.Equal(t, []uint32{0}, vec.Indices)
	// 入库失败路径同样删除临时索引
	assert.Len(t, idx.deleted, 1)
}

func TestGenerateSparseNilIndexDegrades(t *testing.T) {
	g := NewGenerator(nil, Options{})
	vec := g.GenerateSparse(context.Background(), "red mug", "", "", "")

	assert.Equal(t, []uint32{0}, vec.Indices)
	assert.Equal(t, []float32{1}, vec.Values)
}

func TestBuildDocumentRepeatsTags(t *testing.T) {
	doc := buildDocument("red mug", "product", "discovery", "")

	assert.True(t, strings.HasPrefix(doc, "red mug"))
	assert.Equal(t, 3, strings.Count(doc, "product"))
	assert.Equal(t, 3, strings.Count(doc, "discovery"))
}
