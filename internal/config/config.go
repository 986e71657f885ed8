package config

import (
	"log"

	"github.com/BurntSushi/toml"
)

type MainConfig struct {
	AppName string `toml:"appName"`
	Host    string `toml:"host"`
	Port    int    `toml:"port"`
}

type MysqlConfig struct {
	Host         string `toml:"host"`
	Port         int    `toml:"port"`
	User         string `toml:"user"`
	Password     string `toml:"password"`
	DatabaseName string `toml:"databaseName"`
}

type LogConfig struct {
	LogPath string `toml:"logPath"`
}

type JwtConfig struct {
	Key         string `toml:"key"`
	ExpireHours int    `toml:"expireHours"`
	Issuer      string `toml:"issuer"`
}

type MilvusConfig struct {
	Address           string `toml:"address"`
	Username          string `toml:"username"`
	Password          string `toml:"password"`
	DBName            string `toml:"dbName"`
	ContentCollection string `toml:"contentCollection"`
	QACollection      string `toml:"qaCollection"`
	VectorDim         int    `toml:"vectorDim"`
	MetricType        string `toml:"metricType"`
}

// ElasticConfig 临时全文索引（稀疏向量打分用）
type ElasticConfig struct {
	Addresses []string `toml:"addresses"`
	Username  string   `toml:"username"`
	Password  string   `toml:"password"`
}

type KafkaConfig struct {
	Brokers      []string `toml:"brokers"`
	ClientID     string   `toml:"clientID"`
	EventTopic   string   `toml:"eventTopic"`
	ContactTopic string   `toml:"contactTopic"`
}

type AIEmbeddingConfig struct {
	Provider        string `toml:"provider"`
	APIKey          string `toml:"apiKey"`
	AccessKey       string `toml:"accessKey"`
	SecretKey       string `toml:"secretKey"`
	BaseURL         string `toml:"baseURL"`
	Region          string `toml:"region"`
	Model           string `toml:"model"`
	Dimensions      int    `toml:"dimensions"`
	TimeoutSeconds  int    `toml:"timeoutSeconds"`
	RetryTimes      int    `toml:"retryTimes"`
	ByAzure         bool   `toml:"byAzure"`
	AzureAPIVersion string `toml:"azureApiVersion"`
}

type AIChatModelConfig struct {
	Provider        string `toml:"provider"`
	APIKey          string `toml:"apiKey"`
	AccessKey       string `toml:"accessKey"`
	SecretKey       string `toml:"secretKey"`
	BaseURL         string `toml:"baseURL"`
	Region          string `toml:"region"`
	Model           string `toml:"model"`
	TimeoutSeconds  int    `toml:"timeoutSeconds"`
	RetryTimes      int    `toml:"retryTimes"`
	ByAzure         bool   `toml:"byAzure"`
	AzureAPIVersion string `toml:"azureApiVersion"`
}

type AIConfig struct {
	Embedding AIEmbeddingConfig `toml:"embedding"`
	ChatModel AIChatModelConfig `toml:"chatModel"`
}

// EngineConfig 检索/重排/策略引擎参数。
// 乘数是经验校准值，不是契约；允许按店铺数据分布调参。
type EngineConfig struct {
	TopKRetrieve            int     `toml:"topKRetrieve"`
	TopContent              int     `toml:"topContent"`
	TopQA                   int     `toml:"topQA"`
	HistoryWindow           int     `toml:"historyWindow"`
	TypeMatchBoost          float64 `toml:"typeMatchBoost"`
	GroupTypeBoost          float64 `toml:"groupTypeBoost"`
	ExactTitleBoost         float64 `toml:"exactTitleBoost"`
	ContainsTitleBoost      float64 `toml:"containsTitleBoost"`
	ContinuityBoost         float64 `toml:"continuityBoost"`
	PurchaseContinuityBoost float64 `toml:"purchaseContinuityBoost"`
	QAScoreCap              float64 `toml:"qaScoreCap"`
	SparseMaxTerms          int     `toml:"sparseMaxTerms"`
	SparseFallbackTerms     int     `toml:"sparseFallbackTerms"`
	SparseCreateRetries     int     `toml:"sparseCreateRetries"`
	HighlightMaxWords       int     `toml:"highlightMaxWords"`
	DailyQueryQuota         int64   `toml:"dailyQueryQuota"`
}

type Config struct {
	MainConfig    `toml:"mainConfig"`
	MysqlConfig   `toml:"mysqlConfig"`
	JwtConfig     `toml:"jwtConfig"`
	MilvusConfig  `toml:"milvusConfig"`
	ElasticConfig `toml:"elasticConfig"`
	KafkaConfig   `toml:"kafkaConfig"`
	AIConfig      `toml:"aiConfig"`
	LogConfig     `toml:"logConfig"`
	RedisConfig   `toml:"redisConfig"`
	EngineConfig  `toml:"engineConfig"`
}

type RedisConfig struct {
	Host         string `toml:"host"`
	Port         int    `toml:"port"`
	Password     string `toml:"password"`
	DB           int    `toml:"db"`
	PoolSize     int    `toml:"poolSize"`
	MinIdleConns int    `toml:"minIdleConns"`
}

var config *Config

func LoadConfig() error {
	if config == nil {
		config = new(Config)
	}
	configPath := "configs/config_local.toml"
	_, err := toml.DecodeFile(configPath, config)
	if err != nil {
		log.Printf("加载配置文件失败: %v, 尝试使用默认设置", err)
	}
	applyEngineDefaults(&config.EngineConfig)
	return err
}

// applyEngineDefaults 填充引擎默认参数（零值视为未配置）
func applyEngineDefaults(ec *EngineConfig) {
	if ec.TopKRetrieve <= 0 {
		ec.TopKRetrieve = 20
	}
	if ec.TopContent <= 0 {
		ec.TopContent = 2
	}
	if ec.TopQA <= 0 {
		ec.TopQA = 3
	}
	if ec.HistoryWindow <= 0 {
		ec.HistoryWindow = 4
	}
	if ec.TypeMatchBoost <= 0 {
		ec.TypeMatchBoost = 3
	}
	if ec.GroupTypeBoost <= 0 {
		ec.GroupTypeBoost = 30
	}
	if ec.ExactTitleBoost <= 0 {
		ec.ExactTitleBoost = 100
	}
	if ec.ContainsTitleBoost <= 0 {
		ec.ContainsTitleBoost = 10
	}
	if ec.ContinuityBoost <= 0 {
		ec.ContinuityBoost = 10
	}
	if ec.PurchaseContinuityBoost <= 0 {
		ec.PurchaseContinuityBoost = 50
	}
	if ec.QAScoreCap <= 0 {
		ec.QAScoreCap = 1000
	}
	if ec.SparseMaxTerms <= 0 {
		ec.SparseMaxTerms = 32000
	}
	if ec.SparseFallbackTerms <= 0 {
		ec.SparseFallbackTerms = 10
	}
	if ec.SparseCreateRetries <= 0 {
		ec.SparseCreateRetries = 3
	}
	if ec.HighlightMaxWords <= 0 {
		ec.HighlightMaxWords = 15
	}
	if ec.DailyQueryQuota <= 0 {
		ec.DailyQueryQuota = 5000
	}
}

func GetConfig() *Config {
	if config == nil {
		config = new(Config)
		_ = LoadConfig()
	}
	return config
}
