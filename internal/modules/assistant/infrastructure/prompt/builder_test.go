package prompt

import (
	"strings"
	"testing"

	"StoreLink/internal/modules/assistant/domain/chat"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildOrdersFragments(t *testing.T) {
	b := NewBuilder()
	cls := &chat.Classification{
		Type:         chat.TypeProduct,
		Category:     chat.CategoryOnPage,
		Subcategory:  "details",
		ActionIntent: chat.ActionFillForm,
	}
	out := b.Build(cls, "")

	base := strings.Index(out, fragments[fragBase])
	typ := strings.Index(out, fragments[fragTypeProduct])
	action := strings.Index(out, fragments[fragActionFillForm])
	closing := strings.Index(out, fragments[fragClosing])

	require.GreaterOrEqual(t, base, 0)
	require.Greater(t, typ, base)
	require.Greater(t, action, typ)
	require.Greater(t, closing, action)
}

func TestBuildTenantInstructionsDelimited(t *testing.T) {
	b := NewBuilder()
	cls := &chat.Classification{Type: chat.TypePage, Category: chat.CategoryGeneral, Subcategory: chat.SubcategoryGeneral}
	out := b.Build(cls, "Always mention our free shipping threshold.")

	start := strings.Index(out, "--- Store owner instructions")
	end := strings.Index(out, "--- End of store owner instructions ---")
	closing := strings.Index(out, fragments[fragClosing])

	require.GreaterOrEqual(t, start, 0)
	require.Greater(t, end, start)
	assert.Contains(t, out, "Always mention our free shipping threshold.")
	// 租户指令紧贴收尾片段之前
	assert.Greater(t, closing, end)
}

func TestBuildBlankInstructionsSkipped(t *testing.T) {
	b := NewBuilder()
	out := b.Build(nil, "   \n  ")
	assert.NotContains(t, out, "Store owner instructions")
}

func TestBuildNilClassification(t *testing.T) {
	b := NewBuilder()
	out := b.Build(nil, "")

	assert.Contains(t, out, fragments[fragBase])
	assert.Contains(t, out, fragments[fragClosing])
	assert.NotContains(t, out, fragments[fragTypeProduct])
	assert.NotContains(t, out, fragments[fragActionOrder])
}

func TestOrderActionsShareFragment(t *testing.T) {
	b := NewBuilder()
	for _, action := range []string{chat.ActionCancelOrder, chat.ActionTrackOrder, chat.ActionGetOrders} {
		cls := &chat.Classification{
			Type:         chat.TypePage,
			Category:     chat.CategoryOrder,
			Subcategory:  chat.SubcategoryGeneral,
			ActionIntent: action,
		}
		assert.Contains(t, b.Build(cls, ""), fragments[fragActionOrder], action)
	}
}
