package repository

import "context"

// TermStat 单个词项的统计信息
type TermStat struct {
	TermFreq int64 // 该词在文档内出现次数
	DocFreq  int64 // 含该词的文档数
}

// TermStats 一次 term vectors 请求的完整统计
type TermStats struct {
	DocCount         int64 // 索引内文档总数
	SumTotalTermFreq int64 // 全索引词项总频次（用于平均文档长度）
	Terms            map[string]TermStat
}

// LexicalIndex 临时全文索引能力抽象。
// 稀疏向量生成器每次调用创建一个唯一命名的索引，用完必须删除（含失败路径）。
type LexicalIndex interface {
	CreateIndex(ctx context.Context, name string) error
	IndexDocument(ctx context.Context, index, docID, text string) error
	TermVectors(ctx context.Context, index, docID string) (*TermStats, error)
	DeleteIndex(ctx context.Context, name string) error
}
