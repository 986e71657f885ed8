package lexical

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"StoreLink/internal/modules/assistant/domain/repository"

	elasticsearch "github.com/elastic/go-elasticsearch/v8"
)

// contentField 临时索引里承载文本的唯一字段
const contentField = "content"

// createIndexBody 索引配置：单分片无副本（索引生命周期只有几百毫秒），
// BM25 相似度参数与打分公式保持一致。
// 分析链：小写 + 停用词剔除 + 英文词干 + n-gram，词项统计与线上知识库分词对齐。
const createIndexBody = `{
  "settings": {
    "number_of_shards": 1,
    "number_of_replicas": 0,
    "index": {
      "similarity": {
        "default": {"type": "BM25", "k1": 1.2, "b": 0.75}
      }
    },
    "analysis": {
      "filter": {
        "term_stop": {"type": "stop", "stopwords": "_english_"},
        "term_stemmer": {"type": "stemmer", "language": "english"},
        "term_ngram": {"type": "ngram", "min_gram": 3, "max_gram": 4, "preserve_original": true}
      },
      "analyzer": {
        "sparse_terms": {
          "type": "custom",
          "tokenizer": "standard",
          "filter": ["lowercase", "term_stop", "term_stemmer", "term_ngram"]
        }
      }
    }
  },
  "mappings": {
    "properties": {
      "content": {"type": "text", "analyzer": "sparse_terms"}
    }
  }
}`

// ElasticIndex 是 domain 层 repository.LexicalIndex 的 Elasticsearch 实现
type ElasticIndex struct {
	es *elasticsearch.Client
}

var _ repository.LexicalIndex = (*ElasticIndex)(nil)

func NewElasticIndex(es *elasticsearch.Client) (*ElasticIndex, error) {
	if es == nil {
		return nil, fmt.Errorf("elasticsearch client is nil")
	}
	return &ElasticIndex{es: es}, nil
}

func (e *ElasticIndex) CreateIndex(ctx context.Context, name string) error {
	res, err := e.es.Indices.Create(
		name,
		e.es.Indices.Create.WithBody(strings.NewReader(createIndexBody)),
		e.es.Indices.Create.WithContext(ctx),
	)
	if err != nil {
		return fmt.Errorf("create index %s: %w", name, err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return fmt.Errorf("create index %s: %s", name, readError(res.Body))
	}
	return nil
}

func (e *ElasticIndex) IndexDocument(ctx context.Context, index, docID, text string) error {
	body, err := json.Marshal(map[string]string{contentField: text})
	if err != nil {
		return err
	}
	// refresh=true：文档必须立即可见，紧接着就要取词项统计
	res, err := e.es.Index(
		index,
		strings.NewReader(string(body)),
		e.es.Index.WithDocumentID(docID),
		e.es.Index.WithRefresh("true"),
		e.es.Index.WithContext(ctx),
	)
	if err != nil {
		return fmt.Errorf("index document: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return fmt.Errorf("index document: %s", readError(res.Body))
	}
	return nil
}

func (e *ElasticIndex) TermVectors(ctx context.Context, index, docID string) (*repository.TermStats, error) {
	res, err := e.es.Termvectors(
		index,
		e.es.Termvectors.WithDocumentID(docID),
		e.es.Termvectors.WithFields(contentField),
		e.es.Termvectors.WithTermStatistics(true),
		e.es.Termvectors.WithFieldStatistics(true),
		e.es.Termvectors.WithContext(ctx),
	)
	if err != nil {
		return nil, fmt.Errorf("term vectors: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return nil, fmt.Errorf("term vectors: %s", readError(res.Body))
	}

	var payload struct {
		TermVectors map[string]struct {
			FieldStatistics struct {
				DocCount int64 `json:"doc_count"`
				SumTTF   int64 `json:"sum_ttf"`
			} `json:"field_statistics"`
			Terms map[string]struct {
				DocFreq  int64 `json:"doc_freq"`
				TermFreq int64 `json:"term_freq"`
			} `json:"terms"`
		} `json:"term_vectors"`
	}
	if err := json.NewDecoder(res.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode term vectors: %w", err)
	}

	fieldVectors, ok := payload.TermVectors[contentField]
	if !ok {
		return &repository.TermStats{Terms: map[string]repository.TermStat{}}, nil
	}

	stats := &repository.TermStats{
		DocCount:         fieldVectors.FieldStatistics.DocCount,
		SumTotalTermFreq: fieldVectors.FieldStatistics.SumTTF,
		Terms:            make(map[string]repository.TermStat, len(fieldVectors.Terms)),
	}
	for term, t := range fieldVectors.Terms {
		stats.Terms[term] = repository.TermStat{
			TermFreq: t.TermFreq,
			DocFreq:  t.DocFreq,
		}
	}
	return stats, nil
}

func (e *ElasticIndex) DeleteIndex(ctx context.Context, name string) error {
	res, err := e.es.Indices.Delete(
		[]string{name},
		e.es.Indices.Delete.WithContext(ctx),
		e.es.Indices.Delete.WithIgnoreUnavailable(true),
	)
	if err != nil {
		return fmt.Errorf("delete index %s: %w", name, err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return fmt.Errorf("delete index %s: %s", name, readError(res.Body))
	}
	return nil
}

// readError 提取响应体里的错误描述（长度封顶，避免日志爆炸）
func readError(body io.Reader) string {
	raw, err := io.ReadAll(io.LimitReader(body, 2048))
	if err != nil || len(raw) == 0 {
		return "unknown error"
	}
	return string(raw)
}
