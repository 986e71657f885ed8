package policy

import (
	"strings"
)

var sentenceEnders = map[byte]bool{'.': true, '!': true, '?': true}

// normalizeHighlightText 高亮/滚动短语清洗：去换行、折叠空白。
// 用户逐字指定的短语保持原样；模型生成的短语截断到 maxWords 词，优先停在句读处。
func normalizeHighlightText(text string, fromUser bool, maxWords int) string {
	text = strings.Join(strings.Fields(text), " ")
	if fromUser || text == "" {
		return text
	}
	if maxWords <= 0 {
		maxWords = 15
	}

	words := strings.Fields(text)
	if len(words) <= maxWords {
		return text
	}

	// 截断窗口内若有句读，停在句读处
	cut := maxWords
	for i := 0; i < maxWords; i++ {
		w := words[i]
		if len(w) > 0 && sentenceEnders[w[len(w)-1]] {
			cut = i + 1
			break
		}
	}
	return strings.Join(words[:cut], " ")
}
