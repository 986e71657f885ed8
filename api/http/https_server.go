package http

import (
	"context"

	"StoreLink/internal/config"
	"StoreLink/internal/initial"
	jwtMiddleware "StoreLink/internal/middleware/jwt"
	"StoreLink/internal/modules/assistant/application/service"
	"StoreLink/internal/modules/assistant/domain/repository"
	"StoreLink/internal/modules/assistant/infrastructure/classify"
	"StoreLink/internal/modules/assistant/infrastructure/embedding"
	"StoreLink/internal/modules/assistant/infrastructure/generate"
	"StoreLink/internal/modules/assistant/infrastructure/lexical"
	"StoreLink/internal/modules/assistant/infrastructure/llm"
	"StoreLink/internal/modules/assistant/infrastructure/mq"
	"StoreLink/internal/modules/assistant/infrastructure/persistence"
	"StoreLink/internal/modules/assistant/infrastructure/pipeline"
	"StoreLink/internal/modules/assistant/infrastructure/policy"
	"StoreLink/internal/modules/assistant/infrastructure/prompt"
	"StoreLink/internal/modules/assistant/infrastructure/rerank"
	"StoreLink/internal/modules/assistant/infrastructure/retrieve"
	"StoreLink/internal/modules/assistant/infrastructure/sparse"
	"StoreLink/internal/modules/assistant/infrastructure/vectordb"
	assistantHandler "StoreLink/internal/modules/assistant/interface/http"
	"StoreLink/pkg/ssl"
	"StoreLink/pkg/zlog"

	cors "github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

var GE *gin.Engine

func must(err error) {
	if err != nil {
		zlog.Fatal(err.Error())
	}
}

func init() {
	GE = gin.Default()
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = []string{"*"}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization", "X-Tenant-Ref", "X-Api-Key"}
	GE.Use(cors.New(corsConfig))
	GE.Use(ssl.TlsHandler(config.GetConfig().MainConfig.Host, config.GetConfig().MainConfig.Port))

	conf := config.GetConfig()
	ctx := context.Background()

	// 模型与向量化器
	chatModel, _, err := llm.NewChatModelFromConfig(ctx, conf)
	must(err)
	embedder, _, err := embedding.NewEmbedderFromConfig(ctx, conf)
	must(err)

	// 稀疏向量生成（ES 未配置时生成器逐次降级为单词项向量）
	var lexIdx repository.LexicalIndex
	if initial.ESClient != nil {
		lexIdx, err = lexical.NewElasticIndex(initial.ESClient)
		must(err)
	}
	sparseGen := sparse.NewGenerator(lexIdx, sparse.Options{
		MaxTerms:      conf.EngineConfig.SparseMaxTerms,
		FallbackTerms: conf.EngineConfig.SparseFallbackTerms,
		CreateRetries: conf.EngineConfig.SparseCreateRetries,
	})

	// 混合检索
	hybridStore, err := vectordb.NewMilvusHybridStore(initial.MilvusClient, "dense_vector", "sparse_vector", conf.MilvusConfig.VectorDim)
	must(err)
	knowledgeIndex, err := vectordb.NewMilvusKnowledgeIndex(hybridStore, conf.MilvusConfig.ContentCollection, conf.MilvusConfig.QACollection)
	must(err)
	retriever, err := retrieve.NewRetriever(knowledgeIndex, embedder, sparseGen, conf.EngineConfig.TopKRetrieve)
	must(err)

	// 会话引擎 Pipeline
	weights := rerank.WeightsFromConfig(&conf.EngineConfig)
	generator, err := generate.NewGenerator(chatModel)
	must(err)
	chatPipeline, err := pipeline.NewChatPipeline(
		classify.NewClassifier(chatModel),
		retriever,
		rerank.NewContentReranker(weights),
		rerank.NewQAReranker(weights),
		prompt.NewBuilder(),
		generator,
		policy.NewGate(conf.EngineConfig.HighlightMaxWords, policy.DefaultOrderInfoDetector),
		conf.EngineConfig.HistoryWindow,
	)
	must(err)

	// 仓储与应用服务
	tenantRepo := persistence.NewTenantRepository(initial.GormDB)
	threadRepo := persistence.NewThreadRepository(initial.GormDB)
	messageRepo := persistence.NewMessageRepository(initial.GormDB)
	events := mq.NewEventPublisher(initial.KafkaPublisher, conf.KafkaConfig.EventTopic, conf.KafkaConfig.ContactTopic)

	chatSvc, err := service.NewChatService(tenantRepo, threadRepo, messageRepo, chatPipeline, events, conf.EngineConfig.DailyQueryQuota)
	must(err)
	tenantSvc, err := service.NewTenantService(tenantRepo)
	must(err)

	chatH := assistantHandler.NewChatHandler(chatSvc)
	adminH := assistantHandler.NewAdminHandler(tenantSvc)

	// 小组件侧（请求头带店铺凭证）
	GE.POST("/assistant/chat", chatH.Chat)
	GE.GET("/assistant/messages", chatH.ThreadMessages)

	// 管理端
	GE.POST("/admin/login", adminH.Login)
	authed := GE.Group("/admin")
	authed.Use(jwtMiddleware.Auth())
	authed.GET("/settings", adminH.GetSettings)
	authed.POST("/settings", adminH.UpdateSettings)
}
