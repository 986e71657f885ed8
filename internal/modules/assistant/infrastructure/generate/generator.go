package generate

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"StoreLink/internal/modules/assistant/domain/chat"
	"StoreLink/internal/modules/assistant/domain/repository"
	"StoreLink/pkg/zlog"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"go.uber.org/zap"
)

// Input 一次回答生成的全部输入
type Input struct {
	SystemPrompt   string
	ContentHits    []repository.KnowledgeHit
	QAHits         []repository.KnowledgeHit
	History        []chat.TurnSummary
	HistoryWindow  int
	CurrentMessage string
	CurrentPageURL string
	Snapshot       *chat.PageSnapshot
}

// Generator 回答生成器：组织上下文调用生成模型，解析结构化动作载荷。
// 解析失败降级为纯文本 none 动作，宁可给出尽力而为的回答也不报错。
type Generator struct {
	cm model.BaseChatModel
}

func NewGenerator(cm model.BaseChatModel) (*Generator, error) {
	if cm == nil {
		return nil, fmt.Errorf("chat model is nil")
	}
	return &Generator{cm: cm}, nil
}

// Generate 生成最终动作/回答
func (g *Generator) Generate(ctx context.Context, in *Input) (*chat.ActionResponse, error) {
	msgs := g.buildMessages(in)

	resp, err := g.cm.Generate(ctx, msgs)
	if err != nil {
		return nil, fmt.Errorf("generation model: %w", err)
	}

	return ParseActionResponse(resp.Content), nil
}

func (g *Generator) buildMessages(in *Input) []*schema.Message {
	msgs := make([]*schema.Message, 0, 2+len(in.History)+1)
	msgs = append(msgs, &schema.Message{Role: schema.System, Content: in.SystemPrompt})

	// 历史消息（最近 N 轮）
	window := in.HistoryWindow
	if window <= 0 {
		window = 4
	}
	history := in.History
	if len(history) > window {
		history = history[len(history)-window:]
	}
	for _, turn := range history {
		if turn.Question != "" {
			msgs = append(msgs, &schema.Message{Role: schema.User, Content: turn.Question})
		}
		if turn.Answer != "" {
			msgs = append(msgs, &schema.Message{Role: schema.Assistant, Content: turn.Answer})
		}
	}

	msgs = append(msgs, &schema.Message{Role: schema.User, Content: g.buildUserTurn(in)})
	return msgs
}

// buildUserTurn 当前轮用户消息：页面地址、页面快照、检索上下文、原始问题
func (g *Generator) buildUserTurn(in *Input) string {
	var b strings.Builder

	if in.CurrentPageURL != "" {
		b.WriteString("[current page: ")
		b.WriteString(in.CurrentPageURL)
		b.WriteString("]\n")
	}
	if in.Snapshot != nil && strings.TrimSpace(in.Snapshot.FullText) != "" {
		snapJSON, _ := json.Marshal(in.Snapshot)
		b.WriteString("[page snapshot]\n")
		b.Write(snapJSON)
		b.WriteString("\n")
	}

	if len(in.ContentHits) > 0 {
		b.WriteString("\n[store content context]\n")
		for i, h := range in.ContentHits {
			b.WriteString(fmt.Sprintf("%d. %s (relevance %.2f)\n", i+1, h.Title, h.RerankScore))
			if h.Description != "" {
				b.WriteString(h.Description)
				b.WriteString("\n")
			}
			if h.URL != "" {
				b.WriteString("url: " + h.URL + "\n")
			}
		}
	}
	if len(in.QAHits) > 0 {
		b.WriteString("\n[store Q&A context]\n")
		for i, h := range in.QAHits {
			b.WriteString(fmt.Sprintf("%d. Q: %s (relevance %.2f)\nA: %s\n", i+1, h.Question, h.RerankScore, h.Answer))
			if h.URL != "" {
				b.WriteString("url: " + h.URL + "\n")
			}
		}
	}

	b.WriteString("\n[question]\n")
	b.WriteString(in.CurrentMessage)
	return b.String()
}

// ParseActionResponse 解析模型输出。JSON 解析失败时合成 none 动作的兜底响应。
func ParseActionResponse(raw string) *chat.ActionResponse {
	cleaned := stripCodeFence(raw)

	var payload struct {
		Answer        string          `json:"answer"`
		Action        string          `json:"action"`
		URL           string          `json:"url"`
		ActionContext json.RawMessage `json:"action_context"`
	}
	if err := json.Unmarshal([]byte(cleaned), &payload); err != nil || strings.TrimSpace(payload.Answer) == "" && strings.TrimSpace(payload.Action) == "" {
		zlog.Warn("action payload unparsable, degrade to plain answer", zap.Int("raw_len", len(raw)))
		return &chat.ActionResponse{
			Action:        chat.ActionNone,
			Answer:        strings.TrimSpace(raw),
			URL:           "",
			ActionContext: map[string]string{},
		}
	}

	actionCtx := map[string]string{}
	if len(payload.ActionContext) > 0 {
		// 非对象或值非字符串时丢弃，保持形状稳定
		var m map[string]interface{}
		if err := json.Unmarshal(payload.ActionContext, &m); err == nil {
			for k, v := range m {
				switch vv := v.(type) {
				case string:
					actionCtx[k] = vv
				case float64:
					actionCtx[k] = strings.TrimSuffix(fmt.Sprintf("%v", vv), ".0")
				case bool:
					actionCtx[k] = fmt.Sprintf("%v", vv)
				}
			}
		}
	}

	action := strings.TrimSpace(payload.Action)
	if action == "" || !chat.ValidActions[action] {
		action = chat.ActionNone
	}

	return &chat.ActionResponse{
		Action:        action,
		Answer:        strings.TrimSpace(payload.Answer),
		URL:           strings.TrimSpace(payload.URL),
		ActionContext: actionCtx,
	}
}

func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```json")
		s = strings.TrimPrefix(s, "```")
		s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	}
	return strings.TrimSpace(s)
}
