package initial

import (
	"fmt"

	"StoreLink/internal/config"
	"StoreLink/internal/modules/assistant/infrastructure/mq"
	"StoreLink/internal/modules/assistant/infrastructure/mq/kafka"
	"StoreLink/pkg/zlog"
)

var KafkaPublisher mq.Publisher

func init() {
	conf := config.GetConfig()
	if len(conf.KafkaConfig.Brokers) == 0 {
		// 事件发布静默关闭，会话主流程不受影响
		zlog.Info("Kafka 未配置，跳过初始化")
		return
	}

	p, err := kafka.NewPublisher(conf.KafkaConfig.Brokers, conf.KafkaConfig.ClientID)
	if err != nil {
		zlog.Error(fmt.Sprintf("kafka init failed: %v", err))
		return
	}
	KafkaPublisher = p
}
