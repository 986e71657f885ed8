package classify

import (
	"fmt"
	"strings"

	"StoreLink/internal/modules/assistant/domain/chat"
)

// TaxonomyEntry 一条合法的 (type, category, subcategory) 组合
type TaxonomyEntry struct {
	Type        string
	Category    string
	Subcategory string
}

// taxonomy 分类器允许输出的全部组合。
// subcategory 的 general 是占位值，任何类目下都可用。
var taxonomy = []TaxonomyEntry{
	{chat.TypeProduct, chat.CategoryDiscovery, "search"},
	{chat.TypeProduct, chat.CategoryDiscovery, "recommendation"},
	{chat.TypeProduct, chat.CategoryDiscovery, "availability"},
	{chat.TypeProduct, chat.CategoryDiscovery, chat.SubcategoryGeneral},
	{chat.TypeProduct, chat.CategoryOnPage, "details"},
	{chat.TypeProduct, chat.CategoryOnPage, "variants"},
	{chat.TypeProduct, chat.CategoryOnPage, "price"},
	{chat.TypeProduct, chat.CategoryOnPage, chat.SubcategoryGeneral},
	{chat.TypeCollection, chat.CategoryDiscovery, "browse"},
	{chat.TypeCollection, chat.CategoryDiscovery, chat.SubcategoryGeneral},
	{chat.TypePage, chat.CategoryDiscovery, "navigation"},
	{chat.TypePage, chat.CategoryDiscovery, chat.SubcategoryGeneral},
	{chat.TypePage, chat.CategoryOnPage, "content"},
	{chat.TypePage, chat.CategoryOnPage, "form"},
	{chat.TypePage, chat.CategoryOnPage, chat.SubcategoryGeneral},
	{chat.TypePage, chat.CategoryAccount, "profile"},
	{chat.TypePage, chat.CategoryAccount, "credentials"},
	{chat.TypePage, chat.CategoryAccount, chat.SubcategoryGeneral},
	{chat.TypePage, chat.CategoryOrder, "status"},
	{chat.TypePage, chat.CategoryOrder, "cancel"},
	{chat.TypePage, chat.CategoryOrder, "return"},
	{chat.TypePage, chat.CategoryOrder, "exchange"},
	{chat.TypePage, chat.CategoryOrder, "tracking"},
	{chat.TypePage, chat.CategoryOrder, chat.SubcategoryGeneral},
	{chat.TypeBlog, chat.CategoryDiscovery, "article"},
	{chat.TypeBlog, chat.CategoryDiscovery, chat.SubcategoryGeneral},
	{chat.TypePolicy, chat.CategorySupport, "shipping"},
	{chat.TypePolicy, chat.CategorySupport, "returns"},
	{chat.TypePolicy, chat.CategorySupport, "refund"},
	{chat.TypePolicy, chat.CategorySupport, "privacy"},
	{chat.TypePolicy, chat.CategorySupport, chat.SubcategoryGeneral},
	{chat.TypeFAQ, chat.CategorySupport, chat.SubcategoryGeneral},
	{chat.TypeFAQ, chat.CategoryOrder, chat.SubcategoryGeneral},
	{chat.TypePage, chat.CategoryGeneral, chat.SubcategoryGeneral},
}

// validTriple 校验 (type, category, subcategory)，subcategory 容忍 general
func validTriple(typ, category, subcategory string) bool {
	for _, e := range taxonomy {
		if e.Type == typ && e.Category == category &&
			(e.Subcategory == subcategory || subcategory == chat.SubcategoryGeneral) {
			return true
		}
	}
	return false
}

var actionList = []string{
	chat.ActionRedirect, chat.ActionClick, chat.ActionScroll, chat.ActionFillForm,
	chat.ActionHighlightText, chat.ActionGenerateImage, chat.ActionContact, chat.ActionNone,
	chat.ActionAccountManagement, chat.ActionLogin, chat.ActionLogout,
	chat.ActionGetOrders, chat.ActionTrackOrder, chat.ActionCancelOrder,
	chat.ActionReturnOrder, chat.ActionExchangeOrder,
}

// buildTaxonomyPrompt 生成分类器的固定系统提示词
func buildTaxonomyPrompt() string {
	var b strings.Builder
	b.WriteString("You are an intent classifier for a storefront shopping assistant. ")
	b.WriteString("Classify the visitor message into exactly one of the following (type, category, subcategory) combinations:\n")
	for _, e := range taxonomy {
		b.WriteString(fmt.Sprintf("- (%s, %s, %s)\n", e.Type, e.Category, e.Subcategory))
	}
	b.WriteString("\nValid action_intent values: ")
	b.WriteString(strings.Join(actionList, "|"))
	b.WriteString("\n\nHard rules:\n")
	b.WriteString("- category \"discovery\" permits only action_intent \"redirect\" or \"none\".\n")
	b.WriteString("- category \"on-page\" permits only \"scroll\" or \"highlight_text\", never \"redirect\".\n")
	b.WriteString("- content_targets is a flat string map of entities the user referenced (product name, collection name, field values, exact phrases).\n")
	b.WriteString("- language is the ISO-639-1 code of the message.\n")
	b.WriteString("- context_dependency is \"high\" when the message cannot be understood without the previous turn, otherwise \"low\".\n")
	b.WriteString("\nRespond with ONLY a raw JSON object, no code fences, with keys: ")
	b.WriteString(`type, category, subcategory, action_intent, content_targets, language, context_dependency.`)
	return b.String()
}
