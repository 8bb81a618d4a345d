// Package consistency 校验明细表中的计算字段是否与同一行的基础字段自洽。
package consistency

import (
	"fmt"
	"math"

	"github.com/HelloAnner/northstar-verify/internal/model"
	"github.com/HelloAnner/northstar-verify/internal/table"
	"github.com/HelloAnner/northstar-verify/internal/value"
)

// DefaultLimit 最多检查的记录数
const DefaultLimit = 2000

const (
	amountEps = 1.0
	rateEps   = 0.2
)

// block 一组基础字段及其计算字段；prefix 为空表示主指标，"零售额;" 表示零售额分块
type block struct {
	prefix string
}

var blocks = []block{{prefix: ""}, {prefix: "零售额;"}}

// RatePercent 环比增速（百分数）；基数为 0 时约定为 -100
func RatePercent(cur, base float64) float64 {
	if base == 0 {
		return -100
	}
	return (cur/base - 1) * 100
}

// Check 对前 limit 条有效记录执行派生字段检查，只返回不通过的项
// 任一参与字段无法解析为数值时跳过该检查
func Check(rows []model.EntityRecord, limit int) []model.ConsistencyCheck {
	if limit <= 0 {
		limit = DefaultLimit
	}
	if len(rows) > limit {
		rows = rows[:limit]
	}
	out := []model.ConsistencyCheck{}
	for _, r := range rows {
		if !table.IsEntityKey(r.Key) {
			continue
		}
		for _, b := range blocks {
			out = append(out, checkBlock(r, b)...)
		}
	}
	return out
}

func checkBlock(r model.EntityRecord, b block) []model.ConsistencyCheck {
	num := func(field string) (float64, bool) {
		return value.ParseNumber(r.Fields[b.prefix+field])
	}
	cur, okCur := num("本年-本月")
	last, okLast := num("上年-本月")
	prev, okPrev := num("本年-上月")

	var out []model.ConsistencyCheck
	fail := func(field string, expected, actual float64, reason, reproduce string) {
		out = append(out, model.ConsistencyCheck{
			Key:       r.Key,
			Name:      r.Name,
			Industry:  r.Industry,
			Field:     b.prefix + field,
			Expected:  expected,
			Actual:    actual,
			Reason:    reason,
			Reproduce: reproduce,
		})
	}

	if got, ok := num("同比增量(当月)"); ok && okCur && okLast {
		if exp := cur - last; math.Abs(exp-got) > amountEps {
			fail("同比增量(当月)", exp, got,
				reasonFor(b, "UI 计算字段与基础字段不一致（可能为后端未重算/前端展示未刷新/舍入规则不一致）"),
				reproduceFor(r.Key, b, "上年-本月", "同比增量(当月)", "同比增量=本年-本月-上年-本月"))
		}
	}
	if got, ok := num("环比增量(当月)"); ok && okCur && okPrev {
		if exp := cur - prev; math.Abs(exp-got) > amountEps {
			fail("环比增量(当月)", exp, got,
				"UI 计算字段与基础字段不一致",
				reproduceFor(r.Key, b, "本年-上月", "环比增量(当月)", "环比增量=本年-本月-本年-上月"))
		}
	}
	if got, ok := num("环比增速(当月)"); ok && okCur && okPrev {
		if exp := RatePercent(cur, prev); math.Abs(exp-got) > rateEps {
			fail("环比增速(当月)", exp, got,
				reasonFor(b, "UI 计算字段与基础字段不一致（可能是百分比/小数口径或舍入差异）"),
				reproduceFor(r.Key, b, "本年-上月", "环比增速(当月)", "环比增速=(本年-本月/本年-上月-1)*100"))
		}
	}
	return out
}

// reasonFor 零售额分块只给出通用原因
func reasonFor(b block, detail string) string {
	if b.prefix != "" {
		return "UI 计算字段与基础字段不一致"
	}
	return detail
}

func reproduceFor(key string, b block, base, derived, rule string) string {
	if b.prefix != "" {
		return fmt.Sprintf("首页搜索 %s → 查看 %s本年-本月/%s%s/%s%s 是否一致", key, b.prefix, b.prefix, base, b.prefix, derived)
	}
	return fmt.Sprintf("首页搜索 %s → 查看 本年-本月/%s/%s 三列是否满足：%s", key, base, derived, rule)
}
