package entity

import (
	"time"
)

// Tenant 店铺租户账号。
// 各 AllowAuto* 开关控制助手可以替访客自动执行哪些动作，由策略网关消费。
type Tenant struct {
	Id                      int64     `gorm:"column:id;primaryKey;autoIncrement"`
	TenantRef               string    `gorm:"column:tenant_ref;type:char(32);not null;uniqueIndex:uniq_tenant_ref"`
	APIKey                  string    `gorm:"column:api_key;type:varchar(64);not null;index:idx_tenant_api_key"`
	StoreName               string    `gorm:"column:store_name;type:varchar(64);not null"`
	BaseURL                 string    `gorm:"column:base_url;type:varchar(255);not null"`
	CustomInstructions      string    `gorm:"column:custom_instructions;type:text"`
	AllowAutoClick          bool      `gorm:"column:allow_auto_click;not null;default:1"`
	AllowAutoScroll         bool      `gorm:"column:allow_auto_scroll;not null;default:1"`
	AllowAutoRedirect       bool      `gorm:"column:allow_auto_redirect;not null;default:1"`
	AllowAutoHighlight      bool      `gorm:"column:allow_auto_highlight;not null;default:1"`
	AllowAutoFillForm       bool      `gorm:"column:allow_auto_fill_form;not null;default:1"`
	AllowAutoGenerateImage  bool      `gorm:"column:allow_auto_generate_image;not null;default:0"`
	AllowAutoLogin          bool      `gorm:"column:allow_auto_login;not null;default:0"`
	AllowAutoLogout         bool      `gorm:"column:allow_auto_logout;not null;default:0"`
	AllowAutoTrackOrder     bool      `gorm:"column:allow_auto_track_order;not null;default:1"`
	AllowAutoGetOrders      bool      `gorm:"column:allow_auto_get_orders;not null;default:1"`
	AllowAutoUpdateUserInfo bool      `gorm:"column:allow_auto_update_user_info;not null;default:0"`
	QueriesUsed             int64     `gorm:"column:queries_used;not null;default:0"`
	QueriesLimit            int64     `gorm:"column:queries_limit;not null;default:0"`
	Status                  int8      `gorm:"column:status;type:tinyint;not null;default:1"`
	CreatedAt               time.Time `gorm:"column:created_at;type:datetime;not null"`
	UpdatedAt               time.Time `gorm:"column:updated_at;type:datetime;not null"`
}

func (Tenant) TableName() string { return "tenant" }

// Thread 一次对话线程（懒创建，归属单个租户）
type Thread struct {
	Id           int64     `gorm:"column:id;primaryKey;autoIncrement"`
	ThreadRef    string    `gorm:"column:thread_ref;type:char(32);not null;uniqueIndex:uniq_thread_ref"`
	TenantRef    string    `gorm:"column:tenant_ref;type:char(32);not null;index:idx_thread_tenant"`
	LastActiveAt time.Time `gorm:"column:last_active_at;type:datetime;not null"`
	CreatedAt    time.Time `gorm:"column:created_at;type:datetime;not null"`
}

func (Thread) TableName() string { return "assistant_thread" }

// Message 线程内一条消息，创建后不可变（仅追加）
type Message struct {
	Id          int64     `gorm:"column:id;primaryKey;autoIncrement"`
	ThreadRef   string    `gorm:"column:thread_ref;type:char(32);not null;index:idx_message_thread"`
	Role        string    `gorm:"column:role;type:varchar(10);not null"` // user | assistant
	Content     string    `gorm:"column:content;type:mediumtext"`       // 文本或 JSON 结构化内容
	Modality    string    `gorm:"column:modality;type:varchar(10);not null;default:'text'"` // text | voice
	PageURL     string    `gorm:"column:page_url;type:varchar(512)"`
	HighlightOn string    `gorm:"column:highlight_on;type:varchar(255)"`
	CreatedAt   time.Time `gorm:"column:created_at;type:datetime;not null"`
}

func (Message) TableName() string { return "assistant_message" }
