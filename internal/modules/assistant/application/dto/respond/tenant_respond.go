package respond

// TenantLoginRespond 管理端登录响应
type TenantLoginRespond struct {
	Token     string `json:"token"`
	TenantRef string `json:"tenantRef"`
	StoreName string `json:"storeName"`
}

// TenantSettingsRespond 店铺设置视图
type TenantSettingsRespond struct {
	TenantRef          string `json:"tenantRef"`
	StoreName          string `json:"storeName"`
	BaseURL            string `json:"baseUrl"`
	CustomInstructions string `json:"customInstructions"`

	AllowAutoClick          bool `json:"allowAutoClick"`
	AllowAutoScroll         bool `json:"allowAutoScroll"`
	AllowAutoRedirect       bool `json:"allowAutoRedirect"`
	AllowAutoHighlight      bool `json:"allowAutoHighlight"`
	AllowAutoFillForm       bool `json:"allowAutoFillForm"`
	AllowAutoGenerateImage  bool `json:"allowAutoGenerateImage"`
	AllowAutoLogin          bool `json:"allowAutoLogin"`
	AllowAutoLogout         bool `json:"allowAutoLogout"`
	AllowAutoTrackOrder     bool `json:"allowAutoTrackOrder"`
	AllowAutoGetOrders      bool `json:"allowAutoGetOrders"`
	AllowAutoUpdateUserInfo bool `json:"allowAutoUpdateUserInfo"`

	QueriesUsed  int64 `json:"queriesUsed"`
	QueriesLimit int64 `json:"queriesLimit"`
}
