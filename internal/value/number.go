// Package value 把异构单元格文本解析为可选数值，并按字段口径做容差比较。
package value

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"golang.org/x/text/width"
)

// Placeholder 明细表里“无值”的展示占位符
const Placeholder = "-"

// ParseNumber 把任意单元格值解析为数值
// bool 不视为 0/1；nil、空串、"-" 与非有限值均视为缺失；任何输入都不会 panic
func ParseNumber(v any) (float64, bool) {
	switch x := v.(type) {
	case nil, bool:
		return 0, false
	case float64:
		return finite(x)
	case float32:
		return finite(float64(x))
	case int:
		return float64(x), true
	case int8:
		return float64(x), true
	case int16:
		return float64(x), true
	case int32:
		return float64(x), true
	case int64:
		return float64(x), true
	case uint:
		return float64(x), true
	case uint8:
		return float64(x), true
	case uint16:
		return float64(x), true
	case uint32:
		return float64(x), true
	case uint64:
		return float64(x), true
	case json.Number:
		return parseText(string(x))
	case string:
		return parseText(x)
	case *float64:
		if x == nil {
			return 0, false
		}
		return finite(*x)
	default:
		return 0, false
	}
}

func parseText(s string) (float64, bool) {
	// 全角数字/符号（１，０００、５４％）先折叠为半角
	s = strings.TrimSpace(width.Fold.String(s))
	if s == "" || s == Placeholder {
		return 0, false
	}
	s = strings.ReplaceAll(s, ",", "")
	s = strings.TrimSuffix(s, "%")
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, false
	}
	return finite(f)
}

func finite(f float64) (float64, bool) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// Optional ParseNumber 的指针形式：缺失返回 nil
func Optional(v any) *float64 {
	f, ok := ParseNumber(v)
	if !ok {
		return nil
	}
	return &f
}

// IsBlank nil 或仅含空白的字符串
func IsBlank(v any) bool {
	switch x := v.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(x) == ""
	}
	return false
}

// IsPlaceholder 空值或 "-" 占位
func IsPlaceholder(v any) bool {
	if IsBlank(v) {
		return true
	}
	s, ok := v.(string)
	return ok && strings.TrimSpace(s) == Placeholder
}
