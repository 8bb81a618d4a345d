package value

import (
	"math"
	"strings"

	"github.com/HelloAnner/northstar-verify/internal/model"
)

const (
	// DefaultRateEpsilon 增速/比例类字段容差（上游增速计算的舍入噪声）
	DefaultRateEpsilon = 0.02
	// DefaultEpsilon 其他数值字段容差（界面两位小数展示的舍入）
	DefaultEpsilon = 0.005
)

// Tolerance 按字段口径选择容差
type Tolerance struct {
	Rate    float64 `toml:"rate"`
	Default float64 `toml:"default"`
}

// DefaultTolerance 默认容差
func DefaultTolerance() Tolerance {
	return Tolerance{Rate: DefaultRateEpsilon, Default: DefaultEpsilon}
}

// Epsilon 字段容差
func (t Tolerance) Epsilon(field string) float64 {
	if IsRateField(field) {
		return t.Rate
	}
	return t.Default
}

// Close 两侧均缺失视为相等；仅一侧缺失不相等；否则 |a-b| <= eps
func Close(a, b *float64, eps float64) bool {
	if a == nil && b == nil {
		return true
	}
	if a == nil || b == nil {
		return false
	}
	return math.Abs(*a-*b) <= eps
}

// Outcome 一次字段比较的结果
type Outcome struct {
	Equal bool
	// Numeric 至少一侧可解析为数值，按数值口径比较
	Numeric bool
	// Ambiguous 增速换算落在阈值模糊区
	Ambiguous bool
}

// Compare 比较期望值与实际值
// 任一侧可解析为数值时做增速换算 + 容差比较，否则比较去空格后的文本
func (t Tolerance) Compare(field string, expected, actual any) Outcome {
	e, a := Optional(expected), Optional(actual)
	if e == nil && a == nil {
		// 两侧都是空/占位符时视为同为缺失
		if IsPlaceholder(expected) && IsPlaceholder(actual) {
			return Outcome{Equal: true}
		}
		return Outcome{Equal: textEqual(expected, actual)}
	}
	ambiguous := RescaleAmbiguous(field, e, a)
	e, a = NormalizeRatePair(field, e, a)
	return Outcome{
		Equal:     Close(e, a, t.Epsilon(field)),
		Numeric:   true,
		Ambiguous: ambiguous,
	}
}

func textEqual(a, b any) bool {
	return strings.TrimSpace(text(a)) == strings.TrimSpace(text(b))
}

func text(v any) string {
	if v == nil {
		return ""
	}
	return model.Text(v)
}
