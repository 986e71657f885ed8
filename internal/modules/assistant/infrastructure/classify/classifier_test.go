package classify

import (
	"context"
	"fmt"
	"testing"

	"StoreLink/internal/modules/assistant/domain/chat"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeChatModel struct {
	reply string
	err   error
	seen  []*schema.Message
}

func (f *fakeChatModel) Generate(_ context.Context, input []*schema.Message, _ ...model.Option) (*schema.Message, error) {
	f.seen = input
	if f.err != nil {
		return nil, f.err
	}
	return &schema.Message{Role: schema.Assistant, Content: f.reply}, nil
}

func (f *fakeChatModel) Stream(context.Context, []*schema.Message, ...model.Option) (*schema.StreamReader[*schema.Message], error) {
	return nil, fmt.Errorf("stream not supported")
}

func TestClassifyParsesModelJSON(t *testing.T) {
	cm := &fakeChatModel{reply: `{"type":"product","category":"discovery","subcategory":"search","action_intent":"redirect","content_targets":{"product_name":"red mug"},"language":"en","context_dependency":"low"}`}
	c := NewClassifier(cm)

	res, err := c.Classify(context.Background(), "do you have anything like a red ceramic mug", nil, nil)
	require.NoError(t, err)
	assert.Equal(t, chat.TypeProduct, res.Classification.Type)
	assert.Equal(t, chat.CategoryDiscovery, res.Classification.Category)
	assert.Equal(t, "search", res.Classification.Subcategory)
	assert.Equal(t, chat.ActionRedirect, res.Classification.ActionIntent)
	assert.Equal(t, "red mug", res.Classification.ContentTargets["product_name"])
	assert.False(t, res.Ambiguous)
	// 未补写时 Enhanced 就是原始消息
	assert.Equal(t, "do you have anything like a red ceramic mug", res.Enhanced)
}

func TestClassifyToleratesCodeFence(t *testing.T) {
	cm := &fakeChatModel{reply: "```json\n{\"type\":\"faq\",\"category\":\"support\",\"subcategory\":\"general\",\"action_intent\":\"none\",\"language\":\"en\",\"context_dependency\":\"low\"}\n```"}
	c := NewClassifier(cm)

	res, err := c.Classify(context.Background(), "what payment methods do you accept here", nil, nil)
	require.NoError(t, err)
	assert.Equal(t, chat.TypeFAQ, res.Classification.Type)
}

func TestClassifyAmbiguousEnhancesWithPreviousTurn(t *testing.T) {
	cm := &fakeChatModel{reply: `{"type":"product","category":"on-page","subcategory":"price","action_intent":"highlight_text","language":"en","context_dependency":"low"}`}
	c := NewClassifier(cm)

	prev := &chat.TurnState{
		PreviousQuestion: "show me the aurora lamp",
		PreviousAction:   chat.ActionRedirect,
	}
	res, err := c.Classify(context.Background(), "how much is it", prev, nil)
	require.NoError(t, err)
	assert.True(t, res.Ambiguous)
	// 指代性消息有上一轮时强制高依赖，覆盖模型给的 low
	assert.Equal(t, "high", res.Classification.ContextDependency)

	// 上一轮问题补进送模型的文本
	require.NotEmpty(t, cm.seen)
	last := cm.seen[len(cm.seen)-1]
	assert.Contains(t, last.Content, "previous question: show me the aurora lamp")

	// 补写文本随结果带出，供召回侧向量化
	assert.Contains(t, res.Enhanced, "how much is it")
	assert.Contains(t, res.Enhanced, "previous question: show me the aurora lamp")
}

func TestClassifyInvalidActionCoerced(t *testing.T) {
	cm := &fakeChatModel{reply: `{"type":"page","category":"general","subcategory":"general","action_intent":"teleport","language":"en","context_dependency":"low"}`}
	c := NewClassifier(cm)

	res, err := c.Classify(context.Background(), "tell me something about this store please", nil, nil)
	require.NoError(t, err)
	assert.Equal(t, chat.ActionNone, res.Classification.ActionIntent)
}

func TestClassifyCategoryActionConstraints(t *testing.T) {
	// discovery 不允许 click，改为 none
	cm := &fakeChatModel{reply: `{"type":"product","category":"discovery","subcategory":"search","action_intent":"click","language":"en","context_dependency":"low"}`}
	c := NewClassifier(cm)
	res, err := c.Classify(context.Background(), "find me a warm scarf for the winter", nil, nil)
	require.NoError(t, err)
	assert.Equal(t, chat.ActionNone, res.Classification.ActionIntent)

	// on-page 不允许 redirect，改为 highlight_text
	cm = &fakeChatModel{reply: `{"type":"page","category":"on-page","subcategory":"content","action_intent":"redirect","language":"en","context_dependency":"low"}`}
	c = NewClassifier(cm)
	res, err = c.Classify(context.Background(), "where does it mention the warranty on this page", nil, nil)
	require.NoError(t, err)
	assert.Equal(t, chat.ActionHighlightText, res.Classification.ActionIntent)
}

func TestClassifyInvalidTripleFallsBackToNeutral(t *testing.T) {
	cm := &fakeChatModel{reply: `{"type":"product","category":"support","subcategory":"weird","action_intent":"none","language":"en","context_dependency":"low"}`}
	c := NewClassifier(cm)

	res, err := c.Classify(context.Background(), "please tell me about your support hours today", nil, nil)
	require.NoError(t, err)
	neutral := chat.NeutralClassification()
	assert.Equal(t, neutral.Type, res.Classification.Type)
	assert.Equal(t, neutral.Category, res.Classification.Category)
	assert.Equal(t, neutral.Subcategory, res.Classification.Subcategory)
}

func TestClassifyCapturesUserPhrase(t *testing.T) {
	cm := &fakeChatModel{reply: `{"type":"page","category":"on-page","subcategory":"content","action_intent":"highlight_text","language":"en","context_dependency":"low"}`}
	c := NewClassifier(cm)

	res, err := c.Classify(context.Background(), "please highlight the money back guarantee", nil, nil)
	require.NoError(t, err)
	assert.Equal(t, "money back guarantee", res.UserPhrase)
	assert.Equal(t, "money back guarantee", res.Classification.ContentTargets["exact_phrase"])
}

func TestClassifyModelErrorPropagates(t *testing.T) {
	cm := &fakeChatModel{err: fmt.Errorf("rate limited")}
	c := NewClassifier(cm)

	_, err := c.Classify(context.Background(), "hello there how are you doing today", nil, nil)
	assert.Error(t, err)
}

func TestClassifyUnparsableOutput(t *testing.T) {
	cm := &fakeChatModel{reply: "I think this is a product question."}
	c := NewClassifier(cm)

	_, err := c.Classify(context.Background(), "do you have anything like a red ceramic mug", nil, nil)
	assert.Error(t, err)
}

func TestDetectAmbiguous(t *testing.T) {
	assert.True(t, detectAmbiguous("yes"))
	assert.True(t, detectAmbiguous("how much is it"))
	assert.True(t, detectAmbiguous("ok go ahead"))
	assert.False(t, detectAmbiguous("what is your return policy for items bought on sale"))
}

func TestValidTriple(t *testing.T) {
	assert.True(t, validTriple(chat.TypeProduct, chat.CategoryDiscovery, "search"))
	assert.True(t, validTriple(chat.TypePolicy, chat.CategorySupport, chat.SubcategoryGeneral))
	assert.False(t, validTriple(chat.TypeProduct, chat.CategorySupport, "search"))
	assert.False(t, validTriple("gadget", chat.CategoryDiscovery, "search"))
}
