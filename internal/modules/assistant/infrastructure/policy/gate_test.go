package policy

import (
	"testing"

	"StoreLink/internal/modules/assistant/domain/chat"
	"StoreLink/internal/modules/assistant/domain/entity"

	"github.com/stretchr/testify/assert"
)

// permissiveTenant 全开关租户
func permissiveTenant() *entity.Tenant {
	return &entity.Tenant{
		TenantRef:               "t1",
		AllowAutoClick:          true,
		AllowAutoScroll:         true,
		AllowAutoRedirect:       true,
		AllowAutoHighlight:      true,
		AllowAutoFillForm:       true,
		AllowAutoGenerateImage:  true,
		AllowAutoLogin:          true,
		AllowAutoLogout:         true,
		AllowAutoTrackOrder:     true,
		AllowAutoGetOrders:      true,
		AllowAutoUpdateUserInfo: true,
	}
}

func TestApplyNilResponse(t *testing.T) {
	g := NewGate(15, nil)
	resp := g.Apply(nil, &Input{Tenant: permissiveTenant(), Message: "hello"})

	assert.NotNil(t, resp)
	assert.Equal(t, chat.ActionNone, resp.Action)
	assert.NotNil(t, resp.ActionContext)
}

func TestAccountOverrideBeatsRedirect(t *testing.T) {
	g := NewGate(15, nil)
	resp := &chat.ActionResponse{
		Action: chat.ActionRedirect,
		URL:    "/account",
		Answer: "Taking you to your account page.",
	}
	out := g.Apply(resp, &Input{
		Tenant:  permissiveTenant(),
		Message: "change my name to John Smith",
	})

	assert.Equal(t, chat.ActionAccountManagement, out.Action)
	assert.Equal(t, "John", out.ActionContext["first_name"])
	assert.Equal(t, "Smith", out.ActionContext["last_name"])
	assert.Empty(t, out.URL)
}

func TestOrderFlowContinuityCarriesAndOverwrites(t *testing.T) {
	g := NewGate(15, nil)

	// 上一轮取消订单，本轮纯确认，沿用已捕获订单号
	out := g.Apply(&chat.ActionResponse{Action: chat.ActionNone}, &Input{
		Tenant:  permissiveTenant(),
		Message: "yes",
		Prev: &chat.TurnState{
			PreviousAction: chat.ActionCancelOrder,
			CapturedFields: map[string]string{"order_id": "1234"},
		},
	})
	assert.Equal(t, chat.ActionCancelOrder, out.Action)
	assert.Equal(t, "1234", out.ActionContext["order_id"])

	// 本轮补充新订单号时覆盖旧值
	out = g.Apply(&chat.ActionResponse{Action: chat.ActionNone}, &Input{
		Tenant:  permissiveTenant(),
		Message: "#5678",
		Prev: &chat.TurnState{
			PreviousAction: chat.ActionCancelOrder,
			CapturedFields: map[string]string{"order_id": "1234"},
		},
	})
	assert.Equal(t, chat.ActionCancelOrder, out.Action)
	assert.Equal(t, "5678", out.ActionContext["order_id"])

	// 纯邮箱消息同样续接
	out = g.Apply(&chat.ActionResponse{Action: chat.ActionNone}, &Input{
		Tenant:  permissiveTenant(),
		Message: "buyer@example.com",
		Prev:    &chat.TurnState{PreviousAction: chat.ActionTrackOrder},
	})
	assert.Equal(t, chat.ActionTrackOrder, out.Action)
	assert.Equal(t, "buyer@example.com", out.ActionContext["order_email"])
}

func TestContinuitySkippedForFreshQuestion(t *testing.T) {
	g := NewGate(15, nil)
	out := g.Apply(&chat.ActionResponse{Action: chat.ActionNone}, &Input{
		Tenant:  permissiveTenant(),
		Message: "what is your shipping policy for international orders",
		Prev:    &chat.TurnState{PreviousAction: chat.ActionCancelOrder},
	})
	assert.Equal(t, chat.ActionNone, out.Action)
}

func TestFillFormConfirmClicksSubmit(t *testing.T) {
	g := NewGate(15, nil)
	out := g.Apply(&chat.ActionResponse{Action: chat.ActionNone}, &Input{
		Tenant:  permissiveTenant(),
		Message: "yes please",
		Prev:    &chat.TurnState{PreviousAction: chat.ActionFillForm},
	})
	assert.Equal(t, chat.ActionClick, out.Action)
	assert.Equal(t, "submit", out.ActionContext["selector"])
}

func TestOrderInfoOnPageSwitchesToHighlight(t *testing.T) {
	g := NewGate(15, DefaultOrderInfoDetector)
	out := g.Apply(&chat.ActionResponse{Action: chat.ActionNone}, &Input{
		Tenant:  permissiveTenant(),
		Message: "yes",
		Prev:    &chat.TurnState{PreviousAction: chat.ActionGetOrders},
		Snapshot: &chat.PageSnapshot{
			URL:      "/account/orders",
			FullText: "Welcome back. Found 3 orders for this account.",
		},
	})
	assert.Equal(t, chat.ActionHighlightText, out.Action)
	assert.Equal(t, "Found 3 orders", out.ActionContext["text"])
}

func TestReturnRewritesToPolicyPage(t *testing.T) {
	g := NewGate(15, nil)
	out := g.Apply(&chat.ActionResponse{Action: chat.ActionReturnOrder}, &Input{
		Tenant:        permissiveTenant(),
		Message:       "I want to return my order",
		PolicyPageURL: "/policies/refund-policy",
		ContextURLs:   []string{"/policies/refund-policy"},
	})
	assert.Equal(t, chat.ActionRedirect, out.Action)
	assert.Equal(t, "/policies/refund-policy", out.URL)
}

func TestExchangeWithoutPolicyPageGoesToContact(t *testing.T) {
	g := NewGate(15, nil)
	out := g.Apply(&chat.ActionResponse{
		Action: chat.ActionExchangeOrder,
		ActionContext: map[string]string{
			"order_id":    "1234",
			"order_email": "buyer@example.com",
		},
	}, &Input{
		Tenant:  permissiveTenant(),
		Message: "exchange it for a larger size",
	})
	assert.Equal(t, chat.ActionContact, out.Action)
	assert.Empty(t, out.URL)
	assert.Equal(t, "return/exchange request (order_id=1234, order_email=buyer@example.com)", out.ActionContext["message"])
}

func TestDeniedActionDowngradesToNone(t *testing.T) {
	tenant := permissiveTenant()
	tenant.AllowAutoRedirect = false

	g := NewGate(15, nil)
	out := g.Apply(&chat.ActionResponse{
		Action: chat.ActionRedirect,
		URL:    "/products/red-mug",
		Answer: "Here you go.",
	}, &Input{
		Tenant:      tenant,
		Message:     "take me to the red mug",
		ContextURLs: []string{"/products/red-mug"},
	})
	assert.Equal(t, chat.ActionNone, out.Action)
	assert.Equal(t, capabilityDeniedAnswer, out.Answer)
	assert.Empty(t, out.URL)
}

func TestNilTenantAllowsOnlySafeActions(t *testing.T) {
	assert.True(t, actionAllowed(chat.ActionNone, nil))
	assert.True(t, actionAllowed(chat.ActionContact, nil))
	assert.False(t, actionAllowed(chat.ActionRedirect, nil))
	assert.False(t, actionAllowed(chat.ActionClick, nil))
}

func TestRedirectMustComeFromContext(t *testing.T) {
	g := NewGate(15, nil)

	// 上下文里存在的地址放行并规整
	out := g.Apply(&chat.ActionResponse{
		Action: chat.ActionRedirect,
		URL:    "https://shop.example.com/products/red-mug?variant=2",
	}, &Input{
		Tenant:      permissiveTenant(),
		Message:     "show me the red mug",
		ContextURLs: []string{"/products/red-mug?variant=2"},
	})
	assert.Equal(t, chat.ActionRedirect, out.Action)
	assert.Equal(t, "/products/red-mug?variant=2", out.URL)

	// 模型发明的地址不放行
	out = g.Apply(&chat.ActionResponse{
		Action: chat.ActionRedirect,
		URL:    "/products/invented",
	}, &Input{
		Tenant:      permissiveTenant(),
		Message:     "show me something",
		ContextURLs: []string{"/products/red-mug"},
	})
	assert.Equal(t, chat.ActionNone, out.Action)
	assert.Empty(t, out.URL)
}

func TestHighlightPhraseNormalization(t *testing.T) {
	g := NewGate(5, nil)

	// 模型短语超长时截断
	out := g.Apply(&chat.ActionResponse{
		Action:        chat.ActionHighlightText,
		ActionContext: map[string]string{"text": "one two three four five six seven eight"},
	}, &Input{Tenant: permissiveTenant(), Message: "highlight it for me please"})
	assert.Equal(t, "one two three four five", out.ActionContext["text"])

	// 用户逐字短语不截断
	out = g.Apply(&chat.ActionResponse{
		Action:        chat.ActionHighlightText,
		ActionContext: map[string]string{"text": "rewritten by model"},
	}, &Input{
		Tenant:     permissiveTenant(),
		Message:    "highlight the full money back guarantee terms and conditions",
		UserPhrase: "full money back guarantee terms and conditions",
	})
	assert.Equal(t, "full money back guarantee terms and conditions", out.ActionContext["text"])
}

func TestClassificationBookkeeping(t *testing.T) {
	g := NewGate(15, nil)
	out := g.Apply(&chat.ActionResponse{Action: chat.ActionNone}, &Input{
		Tenant:  permissiveTenant(),
		Message: "hello",
		Classification: &chat.Classification{
			Type:        chat.TypeProduct,
			Category:    chat.CategoryDiscovery,
			Subcategory: "search",
		},
	})
	assert.Equal(t, chat.TypeProduct, out.Type)
	assert.Equal(t, chat.CategoryDiscovery, out.Category)
	assert.Equal(t, "search", out.Subcategory)
}
