package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"StoreLink/internal/modules/assistant/application/dto/request"
	"StoreLink/internal/modules/assistant/application/dto/respond"
	"StoreLink/internal/modules/assistant/domain/chat"
	"StoreLink/internal/modules/assistant/domain/entity"
	"StoreLink/internal/modules/assistant/domain/repository"
	"StoreLink/internal/modules/assistant/infrastructure/mq"
	"StoreLink/internal/modules/assistant/infrastructure/pipeline"
	"StoreLink/pkg/redis"
	"StoreLink/pkg/util"
	"StoreLink/pkg/xerr"
	"StoreLink/pkg/zlog"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// fallbackAnswer 引擎内部失败时的兜底回答，形状与正常响应一致
const fallbackAnswer = "I ran into a problem answering that. Please try again in a moment."

// 轮次状态恢复时回看的最近消息条数
const turnStateLookback = 10

// ChatService 会话服务接口
type ChatService interface {
	// Chat 处理小组件发来的一轮会话。
	// 引擎失败时仍返回兜底 ChatRespond，err 标记失败类别供 HTTP 层定码。
	Chat(ctx context.Context, tenantRef, apiKey string, req request.ChatRequest) (*respond.ChatRespond, error)
	// ThreadMessages 线程历史分页查询（归属校验内建）
	ThreadMessages(ctx context.Context, tenantRef string, req request.ThreadMessagesRequest) (*respond.ThreadMessagesRespond, error)
}

type chatServiceImpl struct {
	tenantRepo  repository.TenantRepository
	threadRepo  repository.ThreadRepository
	messageRepo repository.MessageRepository
	pipeline    *pipeline.ChatPipeline
	events      *mq.EventPublisher
	dailyQuota  int64
}

func NewChatService(
	tenantRepo repository.TenantRepository,
	threadRepo repository.ThreadRepository,
	messageRepo repository.MessageRepository,
	chatPipeline *pipeline.ChatPipeline,
	events *mq.EventPublisher,
	dailyQuota int64,
) (ChatService, error) {
	if tenantRepo == nil || threadRepo == nil || messageRepo == nil {
		return nil, fmt.Errorf("repository is nil")
	}
	if chatPipeline == nil {
		return nil, fmt.Errorf("chat pipeline is nil")
	}
	return &chatServiceImpl{
		tenantRepo:  tenantRepo,
		threadRepo:  threadRepo,
		messageRepo: messageRepo,
		pipeline:    chatPipeline,
		events:      events,
		dailyQuota:  dailyQuota,
	}, nil
}

func (s *chatServiceImpl) Chat(ctx context.Context, tenantRef, apiKey string, req request.ChatRequest) (resp *respond.ChatRespond, err error) {
	// 引擎 panic 也不能让访客拿到 500 空响应
	defer func() {
		if r := recover(); r != nil {
			zlog.Error("chat service panic", zap.Any("panic", r), zap.String("tenant_ref", tenantRef))
			resp = fallbackRespond(req.ThreadRef)
			err = xerr.ErrServerError
		}
	}()

	// 1. 租户鉴权
	tenant, err := s.authTenant(ctx, tenantRef, apiKey)
	if err != nil {
		return nil, err
	}

	// 2. 额度校验（套餐额度 + 每日限流）
	if err := s.checkQuota(ctx, tenant); err != nil {
		return nil, err
	}

	// 3. 线程懒创建/续用
	thread := s.resolveThread(ctx, tenant.TenantRef, req.ThreadRef)

	// 4. 恢复上一轮状态
	prev := s.loadTurnState(ctx, thread.ThreadRef, req.History)

	// 5. 执行引擎
	result, pipeErr := s.pipeline.Chat(ctx, &pipeline.ChatRequest{
		Tenant:   tenant,
		Message:  strings.TrimSpace(req.Message),
		History:  req.History,
		Prev:     prev,
		PageURL:  req.PageURL,
		Snapshot: req.Snapshot,
	})
	if pipeErr != nil {
		zlog.Error("chat pipeline failed",
			zap.String("tenant_ref", tenant.TenantRef),
			zap.String("thread_ref", thread.ThreadRef),
			zap.Error(pipeErr))
		return fallbackRespond(thread.ThreadRef), xerr.ErrServerError
	}

	// 6. 落库与记账（失败只记日志，不影响本轮响应）
	s.persistTurn(ctx, tenant, thread, &req, result)
	if err := s.tenantRepo.IncrementQueriesUsed(ctx, tenant.TenantRef); err != nil {
		zlog.Warn("increment queries_used failed", zap.String("tenant_ref", tenant.TenantRef), zap.Error(err))
	}
	s.publishEvents(ctx, tenant.TenantRef, thread.ThreadRef, req.Message, result)

	return &respond.ChatRespond{
		QueryID:       result.QueryID,
		ThreadRef:     thread.ThreadRef,
		Answer:        result.Response.Answer,
		Action:        result.Response.Action,
		URL:           result.Response.URL,
		ActionContext: result.Response.ActionContext,
		PageID:        result.Response.PageID,
		Type:          result.Response.Type,
		Category:      result.Response.Category,
		Subcategory:   result.Response.Subcategory,
		DurationMs:    result.DurationMs,
	}, nil
}

func (s *chatServiceImpl) ThreadMessages(ctx context.Context, tenantRef string, req request.ThreadMessagesRequest) (*respond.ThreadMessagesRespond, error) {
	thread, err := s.threadRepo.GetByRef(ctx, req.ThreadRef)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, xerr.New(xerr.NotFound, "线程不存在")
		}
		return nil, err
	}
	if thread.TenantRef != tenantRef {
		return nil, xerr.ErrTenantInvalid
	}

	messages, err := s.messageRepo.ListByThread(ctx, req.ThreadRef, req.Limit, req.Offset)
	if err != nil {
		return nil, err
	}

	items := make([]respond.ThreadMessageItem, 0, len(messages))
	for _, m := range messages {
		items = append(items, respond.ThreadMessageItem{
			Role:      m.Role,
			Content:   m.Content,
			Modality:  m.Modality,
			PageURL:   m.PageURL,
			CreatedAt: m.CreatedAt.Format(time.RFC3339),
		})
	}
	return &respond.ThreadMessagesRespond{ThreadRef: req.ThreadRef, Messages: items}, nil
}

func (s *chatServiceImpl) authTenant(ctx context.Context, tenantRef, apiKey string) (*entity.Tenant, error) {
	tenantRef = strings.TrimSpace(tenantRef)
	apiKey = strings.TrimSpace(apiKey)
	if tenantRef == "" || apiKey == "" {
		return nil, xerr.ErrTenantInvalid
	}
	tenant, err := s.tenantRepo.GetByAPIKey(ctx, tenantRef, apiKey)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, xerr.ErrTenantInvalid
		}
		return nil, err
	}
	if tenant.Status != 1 {
		return nil, xerr.ErrTenantInvalid
	}
	return tenant, nil
}

// checkQuota 套餐额度查 MySQL 计数，每日限流走 Redis INCR。
// Redis 不可用时放行并记日志：可用性优先于限流精度。
func (s *chatServiceImpl) checkQuota(ctx context.Context, tenant *entity.Tenant) error {
	if tenant.QueriesLimit > 0 && tenant.QueriesUsed >= tenant.QueriesLimit {
		return xerr.ErrQuotaExceeded
	}
	if s.dailyQuota <= 0 {
		return nil
	}

	key := fmt.Sprintf("assistant:quota:%s:%s", tenant.TenantRef, time.Now().Format("20060102"))
	count, err := redis.Incr(ctx, key)
	if err != nil {
		zlog.Warn("daily quota check skipped", zap.String("tenant_ref", tenant.TenantRef), zap.Error(err))
		return nil
	}
	if count == 1 {
		if _, err := redis.Expire(ctx, key, 24*time.Hour); err != nil {
			zlog.Warn("daily quota expire failed", zap.String("key", key), zap.Error(err))
		}
	}
	if count > s.dailyQuota {
		return xerr.ErrQuotaExceeded
	}
	return nil
}

// resolveThread 线程懒创建。客户端给的 threadRef 查不到或跨租户时都新建，
// 跨租户引用按新线程处理而不是报错，避免探测他人线程。
func (s *chatServiceImpl) resolveThread(ctx context.Context, tenantRef, threadRef string) *entity.Thread {
	threadRef = strings.TrimSpace(threadRef)
	if threadRef != "" {
		thread, err := s.threadRepo.GetByRef(ctx, threadRef)
		if err == nil && thread.TenantRef == tenantRef {
			if err := s.threadRepo.TouchLastActive(ctx, threadRef); err != nil {
				zlog.Warn("touch thread failed", zap.String("thread_ref", threadRef), zap.Error(err))
			}
			return thread
		}
		if err == nil && thread.TenantRef != tenantRef {
			zlog.Warn("thread tenant mismatch, allocate new thread",
				zap.String("thread_ref", threadRef), zap.String("tenant_ref", tenantRef))
		}
	}

	now := time.Now()
	thread := &entity.Thread{
		ThreadRef:    util.GenerateShortUUID(),
		TenantRef:    tenantRef,
		LastActiveAt: now,
		CreatedAt:    now,
	}
	if err := s.threadRepo.Create(ctx, thread); err != nil {
		// 创建失败本轮仍可服务，只是历史不落库
		zlog.Warn("thread create failed", zap.String("tenant_ref", tenantRef), zap.Error(err))
	}
	return thread
}

// loadTurnState 从库里最近的消息恢复上一轮状态；库里没有时退客户端回传的摘要。
// 助手消息存的是结构化 JSON，解析失败按纯文本回答处理。
func (s *chatServiceImpl) loadTurnState(ctx context.Context, threadRef string, history []chat.TurnSummary) *chat.TurnState {
	recent, err := s.messageRepo.ListRecentByThread(ctx, threadRef, turnStateLookback)
	if err != nil {
		zlog.Warn("load recent messages failed", zap.String("thread_ref", threadRef), zap.Error(err))
		recent = nil
	}

	if len(recent) > 0 {
		state := &chat.TurnState{CapturedFields: map[string]string{}}
		for i, m := range recent {
			if m.Role != "assistant" {
				continue
			}
			var ar chat.ActionResponse
			if jsonErr := json.Unmarshal([]byte(m.Content), &ar); jsonErr == nil && ar.Answer != "" {
				state.PreviousAction = ar.Action
				state.PreviousAnswer = ar.Answer
				for _, key := range []string{"order_id", "order_email", "return_reason"} {
					if v := ar.ActionContext[key]; v != "" {
						state.CapturedFields[key] = v
					}
				}
			} else {
				state.PreviousAnswer = m.Content
			}
			// 紧邻这条助手消息之前的用户消息就是上一轮问题
			for _, um := range recent[i+1:] {
				if um.Role == "user" {
					state.PreviousQuestion = um.Content
					break
				}
			}
			return state
		}
	}

	// 新线程但客户端带了历史（如刷新后续聊）
	for i := len(history) - 1; i >= 0; i-- {
		if history[i].Answer != "" || history[i].Question != "" {
			return &chat.TurnState{
				PreviousQuestion: history[i].Question,
				PreviousAnswer:   history[i].Answer,
				CapturedFields:   map[string]string{},
			}
		}
	}
	return nil
}

// persistTurn 本轮两条消息一次落库，失败吞掉
func (s *chatServiceImpl) persistTurn(ctx context.Context, tenant *entity.Tenant, thread *entity.Thread, req *request.ChatRequest, result *pipeline.ChatResult) {
	now := time.Now()
	modality := strings.TrimSpace(req.Modality)
	if modality == "" {
		modality = "text"
	}

	assistantContent, err := json.Marshal(result.Response)
	if err != nil {
		assistantContent = []byte(result.Response.Answer)
	}
	highlightOn := ""
	if result.Response.Action == chat.ActionHighlightText {
		highlightOn = result.Response.ActionContext["text"]
	}

	msgs := []*entity.Message{
		{
			ThreadRef: thread.ThreadRef,
			Role:      "user",
			Content:   req.Message,
			Modality:  modality,
			PageURL:   req.PageURL,
			CreatedAt: now,
		},
		{
			ThreadRef:   thread.ThreadRef,
			Role:        "assistant",
			Content:     string(assistantContent),
			Modality:    "text",
			PageURL:     req.PageURL,
			HighlightOn: highlightOn,
			CreatedAt:   now,
		},
	}
	if err := s.messageRepo.CreateBatch(ctx, msgs); err != nil {
		zlog.Warn("persist turn failed",
			zap.String("tenant_ref", tenant.TenantRef),
			zap.String("thread_ref", thread.ThreadRef),
			zap.Error(err))
	}
}

func (s *chatServiceImpl) publishEvents(ctx context.Context, tenantRef, threadRef, message string, result *pipeline.ChatResult) {
	if s.events == nil {
		return
	}
	s.events.PublishTurnEvent(ctx, mq.TurnEvent{
		QueryID:     result.QueryID,
		TenantRef:   tenantRef,
		ThreadRef:   threadRef,
		Type:        result.Classification.Type,
		Category:    result.Classification.Category,
		Subcategory: result.Classification.Subcategory,
		Action:      result.Response.Action,
		DurationMs:  result.DurationMs,
	})
	if result.Response.Action == chat.ActionContact {
		s.events.PublishContactHandoff(ctx, mq.ContactHandoff{
			QueryID:   result.QueryID,
			TenantRef: tenantRef,
			ThreadRef: threadRef,
			Message:   message,
			Detail:    result.Response.ActionContext["message"],
		})
	}
}

func fallbackRespond(threadRef string) *respond.ChatRespond {
	return &respond.ChatRespond{
		QueryID:       util.GenerateID("chat"),
		ThreadRef:     threadRef,
		Answer:        fallbackAnswer,
		Action:        chat.ActionNone,
		ActionContext: map[string]string{},
	}
}
