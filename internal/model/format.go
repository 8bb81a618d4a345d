package model

import (
	"fmt"
	"strconv"
)

// formatAny 把载荷中的任意值格式化为文本（float 不带多余的 0）
func formatAny(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(x), 'f', -1, 32)
	case bool:
		return strconv.FormatBool(x)
	default:
		return fmt.Sprint(x)
	}
}

// Text 对外暴露的文本化工具，比较字符串口径时使用
func Text(v any) string {
	return formatAny(v)
}
