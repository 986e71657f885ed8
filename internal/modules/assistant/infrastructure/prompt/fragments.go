package prompt

import "StoreLink/internal/modules/assistant/domain/chat"

// 片段标识。系统提示词由有序片段拼装而成，避免裸字符串拼接散落各处。
const (
	fragBase    = "base"
	fragClosing = "closing"

	fragTypeProduct    = "type_product"
	fragTypeCollection = "type_collection"
	fragTypePage       = "type_page"
	fragTypeBlog       = "type_blog"
	fragTypePolicy     = "type_policy"
	fragTypeFAQ        = "type_faq"

	fragActionFillForm = "action_fill_form"
	fragActionClick    = "action_click"
	fragActionOnPage   = "action_on_page"
	fragActionImage    = "action_image"
	fragActionAccount  = "action_account"
	fragActionOrder    = "action_order"
)

// fragments 片段正文注册表
var fragments = map[string]string{
	fragBase: `You are a helpful shopping assistant embedded in an online storefront. ` +
		`You answer visitor questions using ONLY the store knowledge provided in the context. ` +
		`Never invent products, prices, URLs or policies that are not present in the context. ` +
		`Keep answers short, friendly and in the visitor's language.`,

	fragClosing: `Respond with ONLY a raw JSON object (no code fences, no extra text) with exactly these keys: ` +
		`"answer" (string), "action" (string), "url" (string, may be empty), "action_context" (object of string values). ` +
		`If no automatic action is appropriate, use action "none" with an empty url.`,

	fragTypeProduct: `The visitor is asking about a specific product. Prefer the product entry in the context; ` +
		`mention price and availability only when the context states them.`,
	fragTypeCollection: `The visitor is browsing a product group. Recommend the matching collection from the context ` +
		`and offer to take them there.`,
	fragTypePage: `The visitor is asking about a store page. Use the page content from the context to answer.`,
	fragTypeBlog: `The visitor is asking about an article. Summarize from the article content in the context.`,
	fragTypePolicy: `The visitor is asking about a store policy (shipping, returns, refunds, privacy). ` +
		`Quote the relevant policy text from the context; do not improvise policy terms.`,
	fragTypeFAQ: `The visitor's question matches the store FAQ. Answer from the matched Q&A entries.`,

	fragActionFillForm: `If the context shows a form on the current page that satisfies the request, ` +
		`use action "fill_form" and put each field name and value into action_context.`,
	fragActionClick: `If a button visible on the current page completes the request, ` +
		`use action "click" with action_context {"selector": "<button text>"}.`,
	fragActionOnPage: `The answer is on the page the visitor is viewing. Use action "scroll" or "highlight_text" ` +
		`with action_context {"text": "<exact phrase from the page>"}. Never use "redirect" here.`,
	fragActionImage: `The visitor asked for a generated image. Use action "generate_image" ` +
		`with action_context {"prompt": "<image description>"}.`,
	fragActionAccount: `The visitor wants to manage their account (profile fields, login, logout). ` +
		`Use the matching account action and put the field names and new values into action_context.`,
	fragActionOrder: `The visitor is dealing with an order (status, tracking, cancel, return, exchange). ` +
		`Use the matching order action; carry any order number or email into action_context ` +
		`("order_id", "order_email"). Ask for the order number if it is missing.`,
}

// typeFragments 按分类内容类型选择的片段序列
var typeFragments = map[string][]string{
	chat.TypeProduct:    {fragTypeProduct},
	chat.TypeCollection: {fragTypeCollection},
	chat.TypePage:       {fragTypePage},
	chat.TypeBlog:       {fragTypeBlog},
	chat.TypePolicy:     {fragTypePolicy},
	chat.TypeFAQ:        {fragTypeFAQ},
}

// actionFragments 按动作意图选择的片段序列（互斥追加）
var actionFragments = map[string][]string{
	chat.ActionFillForm:          {fragActionFillForm},
	chat.ActionClick:             {fragActionClick},
	chat.ActionScroll:            {fragActionOnPage},
	chat.ActionHighlightText:     {fragActionOnPage},
	chat.ActionGenerateImage:     {fragActionImage},
	chat.ActionAccountManagement: {fragActionAccount},
	chat.ActionLogin:             {fragActionAccount},
	chat.ActionLogout:            {fragActionAccount},
	chat.ActionGetOrders:         {fragActionOrder},
	chat.ActionTrackOrder:        {fragActionOrder},
	chat.ActionCancelOrder:       {fragActionOrder},
	chat.ActionReturnOrder:       {fragActionOrder},
	chat.ActionExchangeOrder:     {fragActionOrder},
}

// fragmentPlan 返回完整的有序片段标识（不含租户自定义指令）
func fragmentPlan(cls *chat.Classification) []string {
	ids := []string{fragBase}
	if cls != nil {
		ids = append(ids, typeFragments[cls.Type]...)
		ids = append(ids, actionFragments[cls.ActionIntent]...)
	}
	ids = append(ids, fragClosing)
	return ids
}
