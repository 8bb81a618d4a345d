package value

import (
	"math"
	"strings"
)

// RateScaleThreshold 小数口径（0.54）与百分比口径（54）的分界
// 没有单位声明作依据，阈值附近的值可能误判，见 RescaleAmbiguous
const RateScaleThreshold = 2.0

var rateTokens = []string{"增速", "零销比", "%"}

// IsRateField 字段名是否属于增速/比例类
func IsRateField(field string) bool {
	for _, tok := range rateTokens {
		if strings.Contains(field, tok) {
			return true
		}
	}
	return strings.Contains(strings.ToLower(field), "rate")
}

// NormalizeRatePair 增速类字段：一侧 |x|<=2 而另一侧 |x|>2 时，把小的一侧乘以 100
// 乘以 100 后仍不超过阈值的（|x|<=0.02）不换算，保证对自身输出再次应用结果不变
// 非增速字段或任一侧缺失时原样返回
func NormalizeRatePair(field string, a, b *float64) (*float64, *float64) {
	if a == nil || b == nil || !IsRateField(field) {
		return a, b
	}
	aa, bb := math.Abs(*a), math.Abs(*b)
	switch {
	case needsRescale(aa, bb):
		x := *a * 100
		return &x, b
	case needsRescale(bb, aa):
		x := *b * 100
		return a, &x
	}
	return a, b
}

func needsRescale(small, large float64) bool {
	return small <= RateScaleThreshold && large > RateScaleThreshold && small*100 > RateScaleThreshold
}

// RescaleAmbiguous 换算会发生，且小的一侧本身超过 1（即按小数口径解释为 >100% 的增速）
// 这类值既可能是小数口径，也可能是接近阈值的百分比真实值，只标记不改判
func RescaleAmbiguous(field string, a, b *float64) bool {
	if a == nil || b == nil || !IsRateField(field) {
		return false
	}
	aa, bb := math.Abs(*a), math.Abs(*b)
	small, large := aa, bb
	if small > large {
		small, large = large, small
	}
	return needsRescale(small, large) && small > 1
}
