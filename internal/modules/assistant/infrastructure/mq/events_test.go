package mq

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type capturingPublisher struct {
	published []Message
	err       error
}

func (c *capturingPublisher) Publish(_ context.Context, msg Message) (PublishResult, error) {
	if c.err != nil {
		return PublishResult{}, c.err
	}
	c.published = append(c.published, msg)
	return PublishResult{}, nil
}

func (c *capturingPublisher) Close() error { return nil }

func TestPublishTurnEvent(t *testing.T) {
	pub := &capturingPublisher{}
	ep := NewEventPublisher(pub, "assistant.turn.events", "assistant.contact.handoff")

	ep.PublishTurnEvent(context.Background(), TurnEvent{
		QueryID:   "chat_abc",
		TenantRef: "t1",
		ThreadRef: "th1",
		Type:      "product",
		Action:    "redirect",
	})

	require.Len(t, pub.published, 1)
	msg := pub.published[0]
	assert.Equal(t, "assistant.turn.events", msg.Topic)
	// 同租户事件落同一分区
	assert.Equal(t, []byte("t1"), msg.Key)

	var ev TurnEvent
	require.NoError(t, json.Unmarshal(msg.Value, &ev))
	assert.Equal(t, "chat_abc", ev.QueryID)
	assert.NotEmpty(t, ev.OccurredAt)
}

func TestPublishContactHandoff(t *testing.T) {
	pub := &capturingPublisher{}
	ep := NewEventPublisher(pub, "assistant.turn.events", "assistant.contact.handoff")

	ep.PublishContactHandoff(context.Background(), ContactHandoff{
		QueryID:   "chat_abc",
		TenantRef: "t1",
		Message:   "I want to return my order",
		Detail:    "return/exchange request (order_id=1234)",
	})

	require.Len(t, pub.published, 1)
	assert.Equal(t, "assistant.contact.handoff", pub.published[0].Topic)
}

func TestPublishNilPublisherSilent(t *testing.T) {
	ep := NewEventPublisher(nil, "assistant.turn.events", "assistant.contact.handoff")
	// 不 panic，事件静默丢弃
	ep.PublishTurnEvent(context.Background(), TurnEvent{TenantRef: "t1"})
	ep.PublishContactHandoff(context.Background(), ContactHandoff{TenantRef: "t1"})
}

func TestPublishErrorSwallowed(t *testing.T) {
	pub := &capturingPublisher{err: fmt.Errorf("broker down")}
	ep := NewEventPublisher(pub, "assistant.turn.events", "")

	// 发布失败只记日志，不向上抛
	ep.PublishTurnEvent(context.Background(), TurnEvent{TenantRef: "t1"})
	assert.Empty(t, pub.published)
}

func TestPublishEmptyTopicSkipped(t *testing.T) {
	pub := &capturingPublisher{}
	ep := NewEventPublisher(pub, "", "")
	ep.PublishTurnEvent(context.Background(), TurnEvent{TenantRef: "t1"})
	assert.Empty(t, pub.published)
}
