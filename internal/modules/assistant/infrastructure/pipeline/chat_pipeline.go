package pipeline

import (
	"context"
	"fmt"

	"StoreLink/internal/modules/assistant/domain/chat"
	"StoreLink/internal/modules/assistant/domain/entity"
	"StoreLink/internal/modules/assistant/infrastructure/classify"
	"StoreLink/internal/modules/assistant/infrastructure/generate"
	"StoreLink/internal/modules/assistant/infrastructure/policy"
	"StoreLink/internal/modules/assistant/infrastructure/prompt"
	"StoreLink/internal/modules/assistant/infrastructure/rerank"
	"StoreLink/internal/modules/assistant/infrastructure/retrieve"

	"github.com/cloudwego/eino/compose"
)

// ChatRequest 会话引擎 Pipeline 的输入请求
type ChatRequest struct {
	Tenant   *entity.Tenant     // 租户（必填，调用方已鉴权加载）
	Message  string             // 访客消息（必填）
	History  []chat.TurnSummary // 客户端回传的历史摘要
	Prev     *chat.TurnState    // 上一轮状态（可为空）
	PageURL  string             // 访客当前页面地址
	Snapshot *chat.PageSnapshot // 访客当前页面快照（可为空）
}

// ChatResult 会话引擎 Pipeline 的输出结果
type ChatResult struct {
	QueryID        string               // 本次查询唯一 ID（便于追踪回放）
	Response       *chat.ActionResponse // 最终动作/回答
	Classification *chat.Classification // 本轮分类（调用方据此更新轮次状态）
	ContentCount   int                  // 进入生成上下文的内容条数
	QACount        int                  // 进入生成上下文的问答条数
	DurationMs     int64                // 总耗时（毫秒）
	ClassifyMs     int64                // 分类耗时
	RetrieveMs     int64                // 混合召回耗时
	RerankMs       int64                // 重排耗时
	GenerateMs     int64                // 生成耗时
}

// ChatPipeline 会话引擎主 Pipeline（基于 Eino compose.Graph）。
//
// 节点顺序：Classify → Retrieve → Rerank → BuildPrompt → Generate → Gate → BuildResult。
// 分类失败不中断整轮（退中性标签继续），召回/生成失败向上抛，由应用层兜底回答。
type ChatPipeline struct {
	classifier    *classify.Classifier
	retriever     *retrieve.Retriever
	contentRerank *rerank.ContentReranker
	qaRerank      *rerank.QAReranker
	promptBuilder *prompt.Builder
	generator     *generate.Generator
	gate          *policy.Gate
	historyWindow int
	r             compose.Runnable[*ChatRequest, *ChatResult]
}

// NewChatPipeline 创建会话引擎 Pipeline
func NewChatPipeline(
	classifier *classify.Classifier,
	retriever *retrieve.Retriever,
	contentRerank *rerank.ContentReranker,
	qaRerank *rerank.QAReranker,
	promptBuilder *prompt.Builder,
	generator *generate.Generator,
	gate *policy.Gate,
	historyWindow int,
) (*ChatPipeline, error) {
	if classifier == nil {
		return nil, fmt.Errorf("classifier is nil")
	}
	if retriever == nil {
		return nil, fmt.Errorf("retriever is nil")
	}
	if contentRerank == nil || qaRerank == nil {
		return nil, fmt.Errorf("reranker is nil")
	}
	if promptBuilder == nil {
		return nil, fmt.Errorf("prompt builder is nil")
	}
	if generator == nil {
		return nil, fmt.Errorf("generator is nil")
	}
	if gate == nil {
		return nil, fmt.Errorf("policy gate is nil")
	}
	if historyWindow <= 0 {
		historyWindow = 4
	}
	p := &ChatPipeline{
		classifier:    classifier,
		retriever:     retriever,
		contentRerank: contentRerank,
		qaRerank:      qaRerank,
		promptBuilder: promptBuilder,
		generator:     generator,
		gate:          gate,
		historyWindow: historyWindow,
	}
	r, err := p.buildGraph(context.Background())
	if err != nil {
		return nil, err
	}
	p.r = r
	return p, nil
}

// Chat 执行一轮会话（封装 Eino Runnable.Invoke）
func (p *ChatPipeline) Chat(ctx context.Context, req *ChatRequest) (*ChatResult, error) {
	if req == nil {
		return nil, fmt.Errorf("chat request is nil")
	}
	if p.r == nil {
		return nil, fmt.Errorf("pipeline runnable is nil")
	}
	return p.r.Invoke(ctx, req)
}
