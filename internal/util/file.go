package util

import (
	"mime"
	"strings"
)

// NormalizeMimeType 去掉参数并转小写，如 "Text/Plain; charset=utf-8" -> "text/plain"
func NormalizeMimeType(t string) string {
	t = strings.TrimSpace(t)
	if mt, _, err := mime.ParseMediaType(t); err == nil {
		return mt
	}
	return strings.ToLower(t)
}
