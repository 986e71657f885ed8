package policy

import (
	"net/url"
	"strings"
)

// normalizeRedirectURL 接受模型给出的绝对或相对地址，剥掉协议与主机，保证以 / 开头。
// 空结果表示地址不可用。
func normalizeRedirectURL(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	if u, err := url.Parse(raw); err == nil && u.Path != "" {
		path := u.Path
		if !strings.HasPrefix(path, "/") {
			path = "/" + path
		}
		if u.RawQuery != "" {
			path += "?" + u.RawQuery
		}
		return path
	}
	if !strings.HasPrefix(raw, "/") {
		return "/" + raw
	}
	return raw
}

// urlInContext 校验地址确实出现在检索上下文里（不允许模型发明 URL）
func urlInContext(normalized string, contextURLs []string) bool {
	if normalized == "" {
		return false
	}
	for _, cu := range contextURLs {
		if cu == "" {
			continue
		}
		if normalizeRedirectURL(cu) == normalized {
			return true
		}
	}
	return false
}
