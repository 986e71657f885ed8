package mq

import (
	"context"
	"encoding/json"
	"time"

	"StoreLink/pkg/zlog"

	"go.uber.org/zap"
)

// TurnEvent 一轮会话完成后的用量事件（下游做账单与分析）
type TurnEvent struct {
	QueryID     string `json:"query_id"`
	TenantRef   string `json:"tenant_ref"`
	ThreadRef   string `json:"thread_ref"`
	Type        string `json:"type"`
	Category    string `json:"category"`
	Subcategory string `json:"subcategory"`
	Action      string `json:"action"`
	DurationMs  int64  `json:"duration_ms"`
	OccurredAt  string `json:"occurred_at"`
}

// ContactHandoff 访客被转接人工时的工单事件
type ContactHandoff struct {
	QueryID    string `json:"query_id"`
	TenantRef  string `json:"tenant_ref"`
	ThreadRef  string `json:"thread_ref"`
	Message    string `json:"message"`
	Detail     string `json:"detail"` // action_context.message，可能带订单号/邮箱
	OccurredAt string `json:"occurred_at"`
}

// EventPublisher 业务事件出口。publisher 为 nil 时事件静默丢弃（本地联调场景）。
// 发布失败只记日志，永远不影响会话主流程。
type EventPublisher struct {
	publisher    Publisher
	eventTopic   string
	contactTopic string
}

func NewEventPublisher(publisher Publisher, eventTopic, contactTopic string) *EventPublisher {
	return &EventPublisher{
		publisher:    publisher,
		eventTopic:   eventTopic,
		contactTopic: contactTopic,
	}
}

func (e *EventPublisher) PublishTurnEvent(ctx context.Context, ev TurnEvent) {
	if ev.OccurredAt == "" {
		ev.OccurredAt = time.Now().Format(time.RFC3339)
	}
	e.publish(ctx, e.eventTopic, ev.TenantRef, ev)
}

func (e *EventPublisher) PublishContactHandoff(ctx context.Context, ev ContactHandoff) {
	if ev.OccurredAt == "" {
		ev.OccurredAt = time.Now().Format(time.RFC3339)
	}
	e.publish(ctx, e.contactTopic, ev.TenantRef, ev)
}

func (e *EventPublisher) publish(ctx context.Context, topic, key string, payload any) {
	if e == nil || e.publisher == nil || topic == "" {
		return
	}
	value, err := json.Marshal(payload)
	if err != nil {
		zlog.Warn("event marshal failed", zap.String("topic", topic), zap.Error(err))
		return
	}
	if _, err := e.publisher.Publish(ctx, Message{
		Topic: topic,
		Key:   []byte(key),
		Value: value,
	}); err != nil {
		zlog.Warn("event publish failed", zap.String("topic", topic), zap.Error(err))
	}
}
