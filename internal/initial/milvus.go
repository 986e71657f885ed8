package initial

import (
	"context"
	"fmt"
	"strings"

	"StoreLink/internal/config"
	"StoreLink/pkg/zlog"

	mclient "github.com/milvus-io/milvus-sdk-go/v2/client"
	"github.com/milvus-io/milvus-sdk-go/v2/entity"
)

var MilvusClient mclient.Client

func init() {
	conf := config.GetConfig()
	addr := strings.TrimSpace(conf.MilvusConfig.Address)
	if addr == "" {
		return
	}

	ctx := context.Background()
	cli, err := newMilvusClientAndEnsureSchema(ctx, conf)
	if err != nil {
		zlog.Fatal(fmt.Sprintf("milvus init failed: %v", err))
		return
	}
	MilvusClient = cli
}

func newMilvusClientAndEnsureSchema(ctx context.Context, conf *config.Config) (mclient.Client, error) {
	addr := strings.TrimSpace(conf.MilvusConfig.Address)
	dbName := strings.TrimSpace(conf.MilvusConfig.DBName)
	contentCollection := strings.TrimSpace(conf.MilvusConfig.ContentCollection)
	qaCollection := strings.TrimSpace(conf.MilvusConfig.QACollection)

	if dbName == "" {
		dbName = "storelink"
	}
	if contentCollection == "" {
		contentCollection = "kb_content"
	}
	if qaCollection == "" {
		qaCollection = "kb_qa"
	}

	dim := conf.MilvusConfig.VectorDim
	if dim <= 0 {
		dim = 768
	}

	defaultCli, err := mclient.NewClient(ctx, mclient.Config{
		Address:  addr,
		Username: strings.TrimSpace(conf.MilvusConfig.Username),
		Password: strings.TrimSpace(conf.MilvusConfig.Password),
		DBName:   "default",
	})
	if err != nil {
		return nil, err
	}

	dbs, err := defaultCli.ListDatabases(ctx)
	if err != nil {
		_ = defaultCli.Close()
		return nil, err
	}
	exists := false
	for _, db := range dbs {
		if db.Name == dbName {
			exists = true
			break
		}
	}
	if !exists {
		if err := defaultCli.CreateDatabase(ctx, dbName); err != nil {
			_ = defaultCli.Close()
			return nil, err
		}
	}
	_ = defaultCli.Close()

	cli, err := mclient.NewClient(ctx, mclient.Config{
		Address:  addr,
		Username: strings.TrimSpace(conf.MilvusConfig.Username),
		Password: strings.TrimSpace(conf.MilvusConfig.Password),
		DBName:   dbName,
	})
	if err != nil {
		return nil, err
	}

	for _, collection := range []string{contentCollection, qaCollection} {
		if err := ensureKnowledgeCollection(ctx, cli, collection, dim); err != nil {
			_ = cli.Close()
			return nil, err
		}
		_ = cli.LoadCollection(ctx, collection, false)
	}

	return cli, nil
}

// ensureKnowledgeCollection 内容库与问答库字段结构相同：
// 稠密向量走 COSINE，稀疏向量走 IP（倒排索引），其余是检索回传的元数据。
func ensureKnowledgeCollection(ctx context.Context, cli mclient.Client, collection string, dim int) error {
	cols, err := cli.ListCollections(ctx)
	if err != nil {
		return err
	}
	for _, c := range cols {
		if c.Name == collection {
			return nil
		}
	}

	varchar := func(name string, maxLen int) *entity.Field {
		return &entity.Field{
			Name:       name,
			DataType:   entity.FieldTypeVarChar,
			TypeParams: map[string]string{"max_length": fmt.Sprintf("%d", maxLen)},
		}
	}

	schema := &entity.Schema{
		CollectionName: collection,
		Description:    "StoreLink storefront knowledge base",
		Fields: []*entity.Field{
			{
				Name:       "id",
				DataType:   entity.FieldTypeVarChar,
				PrimaryKey: true,
				TypeParams: map[string]string{"max_length": "128"},
			},
			{
				Name:       "dense_vector",
				DataType:   entity.FieldTypeFloatVector,
				TypeParams: map[string]string{entity.TypeParamDim: fmt.Sprintf("%d", dim)},
			},
			{
				Name:     "sparse_vector",
				DataType: entity.FieldTypeSparseVector,
			},
			varchar("title", 512),
			varchar("description", 4096),
			varchar("url", 512),
			varchar("handle", 256),
			varchar("type", 30),
			varchar("category", 30),
			varchar("subcategory", 50),
			varchar("question", 1024),
			varchar("answer", 4096),
			varchar("page_id", 128),
		},
	}

	if err := cli.CreateCollection(ctx, schema, entity.DefaultShardNumber); err != nil {
		return err
	}

	denseIdx, err := entity.NewIndexAUTOINDEX(entity.COSINE)
	if err != nil {
		return err
	}
	if err := cli.CreateIndex(ctx, collection, "dense_vector", denseIdx, false); err != nil {
		return err
	}

	sparseIdx, err := entity.NewIndexSparseInverted(entity.IP, 0)
	if err != nil {
		return err
	}
	return cli.CreateIndex(ctx, collection, "sparse_vector", sparseIdx, false)
}
