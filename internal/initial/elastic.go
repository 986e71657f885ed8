package initial

import (
	"fmt"

	"StoreLink/internal/config"
	"StoreLink/pkg/zlog"

	elasticsearch "github.com/elastic/go-elasticsearch/v8"
)

var ESClient *elasticsearch.Client

func init() {
	conf := config.GetConfig()
	if len(conf.ElasticConfig.Addresses) == 0 {
		// 稀疏向量生成会逐次降级为单词项向量，混合检索退化为稠密检索
		zlog.Info("Elasticsearch 未配置，跳过初始化")
		return
	}

	cli, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses: conf.ElasticConfig.Addresses,
		Username:  conf.ElasticConfig.Username,
		Password:  conf.ElasticConfig.Password,
	})
	if err != nil {
		zlog.Fatal(fmt.Sprintf("elasticsearch init failed: %v", err))
		return
	}
	ESClient = cli
}
