package util

import (
	"strconv"
)

// MustParseInt 解析失败时返回默认值
func MustParseInt(s string, def int) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return n
}

// FormatSize 整 MB 显示为 MB，否则显示字节数
func FormatSize(n int64) string {
	if n > 0 && n%MB == 0 {
		return strconv.FormatInt(n/MB, 10) + "MB"
	}
	return strconv.FormatInt(n, 10) + "B"
}
