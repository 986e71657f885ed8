package request

// TenantLoginRequest 管理端登录（换发 JWT）
type TenantLoginRequest struct {
	TenantRef string `json:"tenantRef" binding:"required"`
	APIKey    string `json:"apiKey" binding:"required"`
}

// UpdateTenantSettingsRequest 管理端更新店铺设置。
// 开关用指针区分"未提交"与"显式关闭"。
type UpdateTenantSettingsRequest struct {
	StoreName          *string `json:"storeName"`
	BaseURL            *string `json:"baseUrl"`
	CustomInstructions *string `json:"customInstructions"`

	AllowAutoClick          *bool `json:"allowAutoClick"`
	AllowAutoScroll         *bool `json:"allowAutoScroll"`
	AllowAutoRedirect       *bool `json:"allowAutoRedirect"`
	AllowAutoHighlight      *bool `json:"allowAutoHighlight"`
	AllowAutoFillForm       *bool `json:"allowAutoFillForm"`
	AllowAutoGenerateImage  *bool `json:"allowAutoGenerateImage"`
	AllowAutoLogin          *bool `json:"allowAutoLogin"`
	AllowAutoLogout         *bool `json:"allowAutoLogout"`
	AllowAutoTrackOrder     *bool `json:"allowAutoTrackOrder"`
	AllowAutoGetOrders      *bool `json:"allowAutoGetOrders"`
	AllowAutoUpdateUserInfo *bool `json:"allowAutoUpdateUserInfo"`
}
