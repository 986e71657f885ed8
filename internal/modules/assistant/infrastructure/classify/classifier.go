package classify

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"StoreLink/internal/modules/assistant/domain/chat"
	"StoreLink/pkg/zlog"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"go.uber.org/zap"
)

// Result 分类结果。UserPhrase 是用户在消息里逐字指定的高亮/滚动目标短语，
// 优先级高于模型自己改写的短语，策略网关据此跳过截断。
// Enhanced 是补写过上一轮上下文的消息文本（未补写时等于原始消息），
// 强上下文依赖的轮次召回用它向量化，裸 "yes"/"#1234" 不直接进检索。
type Result struct {
	Classification *chat.Classification
	UserPhrase     string
	Enhanced       string
	Ambiguous      bool
}

// Classifier 意图分类器：固定 taxonomy 提示词 + JSON-only 输出
type Classifier struct {
	cm model.BaseChatModel
}

func NewClassifier(cm model.BaseChatModel) *Classifier {
	return &Classifier{cm: cm}
}

var (
	pronounPattern      = regexp.MustCompile(`(?i)\b(it|this|that|these|those|them)\b`)
	confirmationPattern = regexp.MustCompile(`(?i)^\s*(yes|yeah|yep|ok|okay|sure|no|nope|please do|go ahead)\b`)
	// “highlight/scroll to X” 显式指令，短语逐字捕获
	highlightInstrPattern = regexp.MustCompile(`(?i)(?:highlight|scroll\s+to|show\s+me\s+where)\s+(?:the\s+)?["']?([^"']{2,120}?)["']?\s*$`)
)

// detectAmbiguous 识别指代性/确认性/过短消息
func detectAmbiguous(message string) bool {
	if len(strings.Fields(message)) <= 5 {
		return true
	}
	if pronounPattern.MatchString(message) {
		return true
	}
	return confirmationPattern.MatchString(message)
}

// Classify 对访客消息做意图分类。
// 分类失败返回 error，调用方必须用 NeutralClassification 继续检索，而不是中断整轮。
func (c *Classifier) Classify(ctx context.Context, message string, prev *chat.TurnState, snapshot *chat.PageSnapshot) (*Result, error) {
	if c.cm == nil {
		return nil, fmt.Errorf("chat model is nil")
	}

	ambiguous := detectAmbiguous(message)
	userPhrase := ""
	if m := highlightInstrPattern.FindStringSubmatch(message); len(m) == 2 {
		userPhrase = strings.TrimSpace(m[1])
	}

	// 指代性消息在有上一轮时，把上一轮问题和动作意图补进送模型的文本
	enhanced := message
	forcedHighDep := false
	if ambiguous && prev != nil && (prev.PreviousQuestion != "" || prev.PreviousAction != "") {
		enhanced = fmt.Sprintf("%s\n[previous question: %s]\n[previous action: %s]",
			message, prev.PreviousQuestion, prev.PreviousAction)
		forcedHighDep = true
	}

	msgs := []*schema.Message{
		{Role: schema.System, Content: buildTaxonomyPrompt()},
	}
	if snapshot != nil && strings.TrimSpace(snapshot.FullText) != "" {
		snapJSON, _ := json.Marshal(snapshot)
		msgs = append(msgs, &schema.Message{
			Role:    schema.System,
			Content: "Current page snapshot (JSON):\n" + string(snapJSON),
		})
	}
	msgs = append(msgs, &schema.Message{Role: schema.User, Content: enhanced})

	resp, err := c.cm.Generate(ctx, msgs)
	if err != nil {
		return nil, fmt.Errorf("classification model: %w", err)
	}

	cls, err := parseClassification(resp.Content)
	if err != nil {
		zlog.Warn("classification unparsable", zap.Error(err), zap.String("raw", truncate(resp.Content, 200)))
		return nil, err
	}

	// 后处理兜底
	if cls.ContextDependency == "" {
		if forcedHighDep || ambiguous {
			cls.ContextDependency = "high"
		} else {
			cls.ContextDependency = "low"
		}
	}
	if forcedHighDep {
		cls.ContextDependency = "high"
	}
	if cls.ActionIntent == "" || !chat.ValidActions[cls.ActionIntent] {
		cls.ActionIntent = chat.ActionNone
	}
	if cls.ContentTargets == nil {
		cls.ContentTargets = map[string]string{}
	}
	if !validTriple(cls.Type, cls.Category, cls.Subcategory) {
		neutral := chat.NeutralClassification()
		cls.Type, cls.Category, cls.Subcategory = neutral.Type, neutral.Category, neutral.Subcategory
	}
	// 类目/动作硬约束复核
	if !chat.AllowedForCategory(cls.Category, cls.ActionIntent) {
		switch cls.Category {
		case chat.CategoryDiscovery:
			cls.ActionIntent = chat.ActionNone
		case chat.CategoryOnPage:
			cls.ActionIntent = chat.ActionHighlightText
		}
	}
	// 用户逐字短语覆盖模型改写
	if userPhrase != "" &&
		(cls.ActionIntent == chat.ActionHighlightText || cls.ActionIntent == chat.ActionScroll) {
		cls.ContentTargets["exact_phrase"] = userPhrase
	}

	return &Result{Classification: cls, UserPhrase: userPhrase, Enhanced: enhanced, Ambiguous: ambiguous}, nil
}

// parseClassification 解析模型 JSON 输出（容忍 code fence 包裹）
func parseClassification(raw string) (*chat.Classification, error) {
	cleaned := stripCodeFence(raw)
	var cls chat.Classification
	if err := json.Unmarshal([]byte(cleaned), &cls); err != nil {
		return nil, fmt.Errorf("parse classification json: %w", err)
	}
	if cls.Type == "" && cls.Category == "" {
		return nil, fmt.Errorf("classification missing type/category")
	}
	return &cls, nil
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

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
