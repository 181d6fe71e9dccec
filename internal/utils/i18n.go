package utils

import "sort"

// Server-side strings for health output and API error messages.
// Service validation messages stay in English.

var translations = map[string]map[string]string{
	"en": {
		"health.ok":             "ok",
		"error.invalid_body":    "Invalid request body",
		"error.invalid_user_id": "Invalid userId",
		"error.invalid_id":      "Invalid id",
		"error.invalid_limit":   "limit must be a positive integer",
		"error.cancelled":       "Request cancelled",
		"error.internal":        "Internal server error",
	},
	"zh": {
		"health.ok":             "好的",
		"error.invalid_body":    "请求体无效",
		"error.invalid_user_id": "用户 ID 无效",
		"error.invalid_id":      "ID 无效",
		"error.invalid_limit":   "limit 必须是正整数",
		"error.cancelled":       "请求已取消",
		"error.internal":        "服务器内部错误",
	},
}

// T returns the translated string for key in locale; falls back to English,
// then to the key itself.
func T(locale, key string) string {
	if v, ok := translations[locale][key]; ok {
		return v
	}
	if v, ok := translations["en"][key]; ok {
		return v
	}
	return key
}

// Locales lists the locales with translations, sorted.
func Locales() []string {
	out := make([]string, 0, len(translations))
	for l := range translations {
		out = append(out, l)
	}
	sort.Strings(out)
	return out
}
