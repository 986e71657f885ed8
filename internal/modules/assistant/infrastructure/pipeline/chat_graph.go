package pipeline

import (
	"context"
	"fmt"
	"strings"
	"time"

	"StoreLink/internal/modules/assistant/domain/chat"
	"StoreLink/internal/modules/assistant/domain/repository"
	"StoreLink/internal/modules/assistant/infrastructure/classify"
	"StoreLink/internal/modules/assistant/infrastructure/generate"
	"StoreLink/internal/modules/assistant/infrastructure/policy"
	"StoreLink/internal/modules/assistant/infrastructure/retrieve"
	"StoreLink/pkg/util"
	"StoreLink/pkg/zlog"

	"github.com/cloudwego/eino/compose"
	"go.uber.org/zap"
)

// chatState 会话 Pipeline 的中间状态（在节点间传递）
type chatState struct {
	Req           *ChatRequest               // 原始请求
	Cls           *classify.Result           // 分类结果（失败时为中性兜底）
	Retrieved     *retrieve.Result           // 两库召回结果
	ContentTop    []repository.KnowledgeHit  // 重排后内容 Top-N
	QATop         []repository.KnowledgeHit  // 重排后问答 Top-N
	SystemPrompt  string                     // 组装好的系统提示词
	Raw           *chat.ActionResponse       // 模型原始动作响应
	Final         *chat.ActionResponse       // 策略网关改写后的最终响应
	ContextURLs   []string                   // 上下文里出现过的地址（redirect 白名单）
	PolicyPageURL string                     // 上下文里的退换货政策页（可为空）
	Start         time.Time                  // 开始时间
	ClassifyMs    int64                      // 分类耗时
	RetrieveMs    int64                      // 召回耗时
	RerankMs      int64                      // 重排耗时
	GenerateMs    int64                      // 生成耗时
	Err           error                      // 错误（如果有）
}

// buildGraph 构建会话引擎的 Eino Graph
//
// 节点顺序：Classify → Retrieve → Rerank → BuildPrompt → Generate → Gate → BuildResult
func (p *ChatPipeline) buildGraph(ctx context.Context) (compose.Runnable[*ChatRequest, *ChatResult], error) {
	const (
		Classify    = "Classify"
		Retrieve    = "Retrieve"
		Rerank      = "Rerank"
		BuildPrompt = "BuildPrompt"
		Generate    = "Generate"
		Gate        = "Gate"
		BuildResult = "BuildResult"
	)
	g := compose.NewGraph[*ChatRequest, *ChatResult]()
	// 添加节点
	_ = g.AddLambdaNode(Classify, compose.InvokableLambdaWithOption(p.classifyNode), compose.WithNodeName(Classify))
	_ = g.AddLambdaNode(Retrieve, compose.InvokableLambdaWithOption(p.retrieveNode), compose.WithNodeName(Retrieve))
	_ = g.AddLambdaNode(Rerank, compose.InvokableLambdaWithOption(p.rerankNode), compose.WithNodeName(Rerank))
	_ = g.AddLambdaNode(BuildPrompt, compose.InvokableLambdaWithOption(p.buildPromptNode), compose.WithNodeName(BuildPrompt))
	_ = g.AddLambdaNode(Generate, compose.InvokableLambdaWithOption(p.generateNode), compose.WithNodeName(Generate))
	_ = g.AddLambdaNode(Gate, compose.InvokableLambdaWithOption(p.gateNode), compose.WithNodeName(Gate))
	_ = g.AddLambdaNode(BuildResult, compose.InvokableLambdaWithOption(p.buildResultNode), compose.WithNodeName(BuildResult))
	// 添加边（定义节点顺序）
	_ = g.AddEdge(compose.START, Classify)
	_ = g.AddEdge(Classify, Retrieve)
	_ = g.AddEdge(Retrieve, Rerank)
	_ = g.AddEdge(Rerank, BuildPrompt)
	_ = g.AddEdge(BuildPrompt, Generate)
	_ = g.AddEdge(Generate, Gate)
	_ = g.AddEdge(Gate, BuildResult)
	_ = g.AddEdge(BuildResult, compose.END)
	// 编译为 Runnable
	return g.Compile(ctx, compose.WithGraphName("StorefrontChatPipeline"), compose.WithNodeTriggerMode(compose.AllPredecessor))
}

// classifyNode 节点 1：意图分类。
// 分类失败不中断整轮，退中性标签继续召回。
func (p *ChatPipeline) classifyNode(ctx context.Context, req *ChatRequest, _ ...any) (*chatState, error) {
	st := &chatState{
		Req:   req,
		Start: time.Now(),
	}
	if req == nil {
		st.Err = fmt.Errorf("chat request is nil")
		return st, nil
	}
	if strings.TrimSpace(req.Message) == "" {
		st.Err = fmt.Errorf("missing message")
		return st, nil
	}

	clsStart := time.Now()
	res, err := p.classifier.Classify(ctx, req.Message, req.Prev, req.Snapshot)
	if err != nil {
		zlog.Warn("classification failed, fall back to neutral labels", zap.Error(err))
		res = &classify.Result{Classification: chat.NeutralClassification()}
	}
	st.Cls = res
	st.ClassifyMs = time.Since(clsStart).Milliseconds()
	return st, nil
}

// retrieveNode 节点 2：双库混合召回
func (p *ChatPipeline) retrieveNode(ctx context.Context, st *chatState, _ ...any) (*chatState, error) {
	if st == nil {
		return &chatState{Err: fmt.Errorf("nil state"), Start: time.Now()}, nil
	}
	if st.Err != nil {
		return st, nil
	}

	retStart := time.Now()
	res, err := p.retriever.Retrieve(ctx, st.Req.Message, st.Cls.Enhanced, st.Cls.Classification)
	if err != nil {
		st.Err = err
		return st, nil
	}
	st.Retrieved = res
	st.RetrieveMs = time.Since(retStart).Milliseconds()
	return st, nil
}

// rerankNode 节点 3：两库分别重排并截断
func (p *ChatPipeline) rerankNode(ctx context.Context, st *chatState, _ ...any) (*chatState, error) {
	_ = ctx
	if st == nil {
		return &chatState{Err: fmt.Errorf("nil state"), Start: time.Now()}, nil
	}
	if st.Err != nil {
		return st, nil
	}

	rrStart := time.Now()
	cls := st.Cls.Classification
	st.ContentTop = p.contentRerank.Rerank(st.Retrieved.Content, cls, st.Req.Message, st.Req.Prev)
	st.QATop = p.qaRerank.Rerank(st.Retrieved.QA, cls, st.Req.Message, st.Req.Prev)
	st.ContextURLs = collectContextURLs(st)
	st.PolicyPageURL = findPolicyPageURL(st.ContentTop, st.QATop)
	st.RerankMs = time.Since(rrStart).Milliseconds()
	return st, nil
}

// buildPromptNode 节点 4：按分类组装系统提示词
func (p *ChatPipeline) buildPromptNode(ctx context.Context, st *chatState, _ ...any) (*chatState, error) {
	_ = ctx
	if st == nil {
		return &chatState{Err: fmt.Errorf("nil state"), Start: time.Now()}, nil
	}
	if st.Err != nil {
		return st, nil
	}

	instructions := ""
	if st.Req.Tenant != nil {
		instructions = st.Req.Tenant.CustomInstructions
	}
	st.SystemPrompt = p.promptBuilder.Build(st.Cls.Classification, instructions)
	return st, nil
}

// generateNode 节点 5：调用生成模型产出动作/回答
func (p *ChatPipeline) generateNode(ctx context.Context, st *chatState, _ ...any) (*chatState, error) {
	if st == nil {
		return &chatState{Err: fmt.Errorf("nil state"), Start: time.Now()}, nil
	}
	if st.Err != nil {
		return st, nil
	}

	genStart := time.Now()
	resp, err := p.generator.Generate(ctx, &generate.Input{
		SystemPrompt:   st.SystemPrompt,
		ContentHits:    st.ContentTop,
		QAHits:         st.QATop,
		History:        st.Req.History,
		HistoryWindow:  p.historyWindow,
		CurrentMessage: st.Req.Message,
		CurrentPageURL: st.Req.PageURL,
		Snapshot:       st.Req.Snapshot,
	})
	if err != nil {
		st.Err = err
		return st, nil
	}
	st.Raw = resp
	st.GenerateMs = time.Since(genStart).Milliseconds()
	return st, nil
}

// gateNode 节点 6：策略网关改写动作
func (p *ChatPipeline) gateNode(ctx context.Context, st *chatState, _ ...any) (*chatState, error) {
	_ = ctx
	if st == nil {
		return &chatState{Err: fmt.Errorf("nil state"), Start: time.Now()}, nil
	}
	if st.Err != nil {
		return st, nil
	}

	st.Final = p.gate.Apply(st.Raw, &policy.Input{
		Tenant:         st.Req.Tenant,
		Classification: st.Cls.Classification,
		Message:        st.Req.Message,
		Prev:           st.Req.Prev,
		Snapshot:       st.Req.Snapshot,
		ContextURLs:    st.ContextURLs,
		PolicyPageURL:  st.PolicyPageURL,
		UserPhrase:     st.Cls.UserPhrase,
	})
	return st, nil
}

// buildResultNode 节点 7：组装最终响应结构
func (p *ChatPipeline) buildResultNode(ctx context.Context, st *chatState, _ ...any) (*ChatResult, error) {
	_ = ctx
	if st == nil {
		return nil, fmt.Errorf("nil state")
	}
	if st.Err != nil {
		return nil, st.Err
	}

	res := &ChatResult{
		QueryID:        util.GenerateID("chat"),
		Response:       st.Final,
		Classification: st.Cls.Classification,
		ContentCount:   len(st.ContentTop),
		QACount:        len(st.QATop),
		DurationMs:     time.Since(st.Start).Milliseconds(),
		ClassifyMs:     st.ClassifyMs,
		RetrieveMs:     st.RetrieveMs,
		RerankMs:       st.RerankMs,
		GenerateMs:     st.GenerateMs,
	}

	tenantRef := ""
	if st.Req.Tenant != nil {
		tenantRef = st.Req.Tenant.TenantRef
	}
	zlog.Info(
		"chat turn done",
		zap.String("query_id", res.QueryID),
		zap.String("tenant_ref", tenantRef),
		zap.String("type", res.Classification.Type),
		zap.String("category", res.Classification.Category),
		zap.String("subcategory", res.Classification.Subcategory),
		zap.String("action", res.Response.Action),
		zap.Int("content_count", res.ContentCount),
		zap.Int("qa_count", res.QACount),
		zap.Int64("classify_ms", res.ClassifyMs),
		zap.Int64("retrieve_ms", res.RetrieveMs),
		zap.Int64("rerank_ms", res.RerankMs),
		zap.Int64("generate_ms", res.GenerateMs),
		zap.Int64("duration_ms", res.DurationMs),
	)
	return res, nil
}

// collectContextURLs 汇集本轮上下文里出现过的全部地址（redirect 只许指向其中之一）
func collectContextURLs(st *chatState) []string {
	urls := make([]string, 0, len(st.ContentTop)+len(st.QATop)+2)
	for _, h := range st.ContentTop {
		if h.URL != "" {
			urls = append(urls, h.URL)
		}
	}
	for _, h := range st.QATop {
		if h.URL != "" {
			urls = append(urls, h.URL)
		}
	}
	if st.Req.PageURL != "" {
		urls = append(urls, st.Req.PageURL)
	}
	if st.Req.Snapshot != nil && st.Req.Snapshot.URL != "" {
		urls = append(urls, st.Req.Snapshot.URL)
	}
	return urls
}

// findPolicyPageURL 在重排结果里找退换货政策页地址
func findPolicyPageURL(contentTop, qaTop []repository.KnowledgeHit) string {
	isPolicyLike := func(h repository.KnowledgeHit) bool {
		if h.URL == "" {
			return false
		}
		if h.Type == chat.TypePolicy {
			return true
		}
		text := strings.ToLower(h.Title + " " + h.URL)
		return strings.Contains(text, "refund") || strings.Contains(text, "return")
	}
	for _, h := range contentTop {
		if isPolicyLike(h) {
			return h.URL
		}
	}
	for _, h := range qaTop {
		if isPolicyLike(h) {
			return h.URL
		}
	}
	return ""
}
