package policy

import (
	"testing"

	"StoreLink/internal/modules/assistant/domain/chat"

	"github.com/stretchr/testify/assert"
)

func TestDetectAccountOverride(t *testing.T) {
	ov := DetectAccountOverride("please change my name to Ada Lovelace")
	assert.NotNil(t, ov)
	assert.Equal(t, chat.ActionAccountManagement, ov.Action)
	assert.Equal(t, "Ada", ov.Fields["first_name"])
	assert.Equal(t, "Lovelace", ov.Fields["last_name"])

	ov = DetectAccountOverride("update my name to Cher")
	assert.NotNil(t, ov)
	assert.Equal(t, "Cher", ov.Fields["first_name"])
	assert.Empty(t, ov.Fields["last_name"])

	ov = DetectAccountOverride("set my email to new@example.com")
	assert.NotNil(t, ov)
	assert.Equal(t, "new@example.com", ov.Fields["email"])

	ov = DetectAccountOverride("change my username to shopper42")
	assert.NotNil(t, ov)
	assert.Equal(t, "shopper42", ov.Fields["username"])

	assert.Nil(t, DetectAccountOverride("what is my name on the order"))
	assert.Nil(t, DetectAccountOverride("where is my package"))
}

func TestExtractOrderID(t *testing.T) {
	assert.Equal(t, "1234", extractOrderID("cancel order #1234 please"))
	assert.Equal(t, "98765", extractOrderID("98765"))
	assert.Empty(t, extractOrderID("cancel my order"))
	// 两位数不算订单号
	assert.Empty(t, extractOrderID("I ordered 12 mugs"))
}

func TestExtractEmail(t *testing.T) {
	assert.Equal(t, "a.b+c@example.co.uk", extractEmail("it was placed with a.b+c@example.co.uk"))
	assert.Empty(t, extractEmail("no address here"))
}

func TestIsConfirmatory(t *testing.T) {
	assert.True(t, isConfirmatory("yes"))
	assert.True(t, isConfirmatory("  OK go ahead"))
	assert.True(t, isConfirmatory("#1234"))
	assert.True(t, isConfirmatory("buyer@example.com"))
	// 三词以内的简短回复也视为续接
	assert.True(t, isConfirmatory("the blue one"))
	assert.False(t, isConfirmatory("actually I want to ask about something else"))
}

func TestNormalizeRedirectURL(t *testing.T) {
	assert.Equal(t, "/products/red-mug", normalizeRedirectURL("https://shop.example.com/products/red-mug"))
	assert.Equal(t, "/products/red-mug?variant=2", normalizeRedirectURL("/products/red-mug?variant=2"))
	assert.Equal(t, "/collections/sale", normalizeRedirectURL("collections/sale"))
	assert.Empty(t, normalizeRedirectURL("   "))
}

func TestUrlInContext(t *testing.T) {
	ctx := []string{"https://shop.example.com/products/red-mug", "/pages/about"}
	assert.True(t, urlInContext("/products/red-mug", ctx))
	assert.True(t, urlInContext("/pages/about", ctx))
	assert.False(t, urlInContext("/products/other", ctx))
	assert.False(t, urlInContext("", ctx))
}

func TestNormalizeHighlightText(t *testing.T) {
	// 空白折叠
	assert.Equal(t, "free shipping on all orders",
		normalizeHighlightText("free   shipping\n on all\torders", false, 15))

	// 截断窗口内优先停在句读处
	assert.Equal(t, "Returns accepted within 30 days.",
		normalizeHighlightText("Returns accepted within 30 days. Contact support for a prepaid label today", false, 10))

	// 用户逐字短语只折叠空白，不截断
	long := "one two three four five six seven eight nine ten eleven twelve"
	assert.Equal(t, long, normalizeHighlightText(long, true, 5))
}
