package completeness

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/HelloAnner/northstar-verify/internal/model"
	"github.com/HelloAnner/northstar-verify/internal/schema"
	"github.com/HelloAnner/northstar-verify/internal/value"
	"github.com/HelloAnner/northstar-verify/internal/workbook"
)

const (
	keyA = "914401007RDD76M0RF"
	keyB = "92440101MA5CXXXX1Q"
	keyH = "91110000MA01HOTEL1"
)

func newBuilder() *Builder {
	return New(schema.Default(), value.DefaultTolerance(), nil)
}

func derivedWorkbook() *workbook.Workbook {
	return workbook.FromRows([]string{"零售", "住宿", "汇总表（定）"}, map[string][][]string{
		"零售": {
			{"序号", "统一社会信用代码", "单位详细名称", "[201-1] 行业代码", "2025年12月销售额", "1-12月增速", "2025年12月零售额", "1-12月增速", "粮油食品类"},
			{"1", keyA, "甲", "5212", "1000", "12.5", "800", "0.54", ""},
			{"2", keyB, "乙", "5212", "2000", "", "1500", "", "30"},
			{"", "合计", "", "", "3000", "", "", "", ""},
		},
		"住宿": {
			{"统一社会信用代码", "单位详细名称", "2025年12月营业额"},
			{keyH, "丁", "500"},
		},
		"汇总表（定）": {{"指标", "本月"}},
	})
}

func record(key, sheet string, fields map[string]any) model.EntityRecord {
	payload := map[string]any{
		model.AttrCreditCode:   key,
		model.FieldSourceSheet: sheet,
	}
	for k, v := range fields {
		payload[k] = v
	}
	return model.NewEntityRecord(payload)
}

func TestExpected_ReadsTriplesByOrdinal(t *testing.T) {
	t.Parallel()

	exps := newBuilder().Expected(derivedWorkbook(), "零售")
	require.Len(t, exps, 2)

	a := exps[0]
	assert.Equal(t, keyA, a.Key)
	assert.Equal(t, "甲", a.Name)
	assert.Equal(t, []FieldValue{
		{Field: "本年-本月", Value: "1000"},
		{Field: "累计同比增速", Value: "12.5"},
		{Field: "零售额;本年-本月", Value: "800"},
		{Field: "零售额;累计同比增速", Value: "0.54"},
	}, a.Fields)

	// 空单元格不产生期望
	assert.Len(t, exps[1].Fields, 2)

	assert.Nil(t, newBuilder().Expected(derivedWorkbook(), "批发"), "missing sheet")
	assert.Nil(t, newBuilder().Expected(derivedWorkbook(), "汇总表（定）"), "no triples")
}

func TestBuild_GradesEveryExpectedField(t *testing.T) {
	t.Parallel()

	observed := []model.EntityRecord{
		record(keyA, "零售", map[string]any{
			"本年-本月":      "1,000.00",
			"累计同比增速":     12.51,
			"零售额;本年-本月":  "-",
			"零售额;累计同比增速": 54,
		}),
		// 乙 被展示在了错误的来源表下
		record(keyB, "批发", map[string]any{"本年-本月": 2000, "零售额;本年-本月": 1500}),
		record(keyH, "住宿", map[string]any{"本年-本月": 480}),
	}

	cases, summary := newBuilder().Build(derivedWorkbook(), observed)
	require.Len(t, cases, 7)

	byField := func(key, field string) model.CompletenessCase {
		for _, c := range cases {
			if c.Key == key && c.Field == field {
				return c
			}
		}
		t.Fatalf("case %s/%s not found", key, field)
		return model.CompletenessCase{}
	}

	assert.True(t, byField(keyA, "本年-本月").OK)
	assert.True(t, byField(keyA, "累计同比增速").OK)
	assert.True(t, byField(keyA, "零售额;累计同比增速").OK, "fraction vs percent")

	absent := byField(keyA, "零售额;本年-本月")
	assert.False(t, absent.OK)
	assert.Equal(t, model.ReasonFieldAbsent, absent.ReasonCode)
	assert.Contains(t, absent.Reproduce, keyA)

	prov := byField(keyB, "本年-本月")
	assert.False(t, prov.OK)
	assert.Equal(t, model.ReasonProvenanceMismatch, prov.ReasonCode)

	hotel := byField(keyH, "本年-本月")
	assert.False(t, hotel.OK)
	assert.Equal(t, model.ReasonNumericMismatch, hotel.ReasonCode)
	assert.Equal(t, "住宿", hotel.Sheet)

	assert.Equal(t, 7, summary.TotalChecks)
	assert.Equal(t, 4, summary.FailedChecks)
	assert.Equal(t, 3, summary.TotalCompanies)
	assert.Equal(t, []string{keyB}, summary.MissingCodesBySheet["零售"])
	assert.Empty(t, summary.MissingCodesBySheet["住宿"])
	assert.Empty(t, summary.MissingCodesBySheet["批发"])
	assert.Equal(t, model.SheetCompleteness{Companies: 2, MissingCompanies: 1, Checks: 6, Fails: 3}, summary.Sheets["零售"])
}

func TestBuild_MissingFieldIsAbsent(t *testing.T) {
	t.Parallel()

	cases, _ := newBuilder().Build(derivedWorkbook(), []model.EntityRecord{record(keyH, "住宿", nil)})
	require.Len(t, cases, 1)
	assert.Equal(t, value.Placeholder, cases[0].Actual)
	assert.Equal(t, model.ReasonFieldAbsent, cases[0].ReasonCode)
}

func TestBuild_TextComparison(t *testing.T) {
	t.Parallel()

	tables := schema.Default()
	tables.Categories = []string{"住宿"}
	tables.Derived = map[string][]schema.Triple{"住宿": {{Field: "单位名称", Header: "单位详细名称", Nth: 1}}}
	b := New(tables, value.DefaultTolerance(), nil)

	cases, _ := b.Build(derivedWorkbook(), []model.EntityRecord{record(keyH, "住宿", map[string]any{"单位名称": "戊"})})
	require.Len(t, cases, 1)
	assert.Equal(t, model.ReasonTextMismatch, cases[0].ReasonCode)

	cases, _ = b.Build(derivedWorkbook(), []model.EntityRecord{record(keyH, "住宿", map[string]any{"单位名称": " 丁 "})})
	require.Len(t, cases, 1)
	assert.True(t, cases[0].OK)
}

func TestCoverage_MappedAndUnmappedColumns(t *testing.T) {
	t.Parallel()

	cov := newBuilder().Coverage(derivedWorkbook(), []string{"本年-本月", "累计同比增速", "零售额;本年-本月"})
	retail, ok := cov["零售"]
	require.True(t, ok)

	// 有值列：销售额、增速#1、零售额、增速#2、粮油食品类（序号/代码/名称/[201-1] 跳过）
	assert.Equal(t, 5, retail.ColumnsWithValues)
	assert.Equal(t, 1, retail.UnmappedColumnsWithValues)
	assert.Equal(t, 1, retail.MissingUIColumns)

	var second model.ColumnCoverageItem
	for _, it := range retail.Items {
		if it.Header == "1-12月增速" && it.Nth == 2 {
			second = it
		}
	}
	assert.Equal(t, "零售额;累计同比增速", second.Field)
	assert.False(t, second.FieldPresent)
	assert.Equal(t, []any{"0.54"}, second.Examples)

	sales := retail.Items[0]
	assert.Equal(t, "2025年12月销售额", sales.Header)
	assert.Equal(t, 3, sales.NonEmpty)
	assert.Equal(t, []any{"1000", "2000", "3000"}, sales.Examples)

	_, ok = cov["批发"]
	assert.False(t, ok)
}

func TestTabCounts(t *testing.T) {
	t.Parallel()

	observed := []model.EntityRecord{
		record(keyA, "零售", nil),
		record(keyB, "零售", nil),
		record(keyH, "住宿", nil),
		record("bad", "住宿", nil),
	}
	tabs := []model.TabObservation{
		{Tab: "零售", Rows: 2, TotalText: "共 2 条"},
		{Tab: "住宿", Rows: 3},
	}
	items := newBuilder().TabCounts(derivedWorkbook(), observed, tabs)
	require.Len(t, items, 4)

	got := map[string]model.TabCount{}
	for _, it := range items {
		got[it.Sheet] = it
	}
	assert.True(t, got["零售"].OK)
	assert.Equal(t, "共 2 条", got["零售"].UITabTotalText)
	assert.False(t, got["住宿"].OK, "tab shows 3 rows but only 1 company observed")
	assert.NotEmpty(t, got["住宿"].Reason)
	assert.True(t, got["批发"].OK, "absent on both sides")
	assert.Equal(t, 0, got["餐饮"].ExcelCompanies)
}
