// Package completeness 以输入工作簿中的衍生 sheet 为独立期望来源，
// 为每个 (企业, 期望字段) 生成一条断言并判定明细表是否完整展示。
package completeness

import (
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/HelloAnner/northstar-verify/internal/model"
	"github.com/HelloAnner/northstar-verify/internal/schema"
	"github.com/HelloAnner/northstar-verify/internal/table"
	"github.com/HelloAnner/northstar-verify/internal/value"
	"github.com/HelloAnner/northstar-verify/internal/workbook"
)

// FieldValue 期望字段及其在衍生 sheet 中的原始值
type FieldValue struct {
	Field string
	Value string
}

// Expectation 单个企业在某个衍生 sheet 中的期望值（按三元组顺序）
type Expectation struct {
	Key    string
	Name   string
	Sheet  string
	Fields []FieldValue
}

// Builder 完整性断言构建器
type Builder struct {
	tables *schema.Tables
	tol    value.Tolerance
	log    *zap.Logger
}

// New 创建构建器
func New(tables *schema.Tables, tol value.Tolerance, log *zap.Logger) *Builder {
	if log == nil {
		log = zap.NewNop()
	}
	return &Builder{tables: tables, tol: tol, log: log.Named("completeness")}
}

// derivedTable 衍生 sheet 约定表头在第 1 行
func (b *Builder) derivedTable(wb *workbook.Workbook, sheet string) (*table.Table, bool) {
	s, ok := wb.Sheet(sheet)
	if !ok {
		return nil, false
	}
	return table.Extract(s, table.Options{KeyHeader: b.tables.KeyHeader, FixedHeaderRow: 1})
}

// Expected 读取衍生 sheet 的期望值；sheet 缺失、缺主键列或名称列、没有三元组时返回 nil
// 源单元格为空的字段不产生期望
func (b *Builder) Expected(wb *workbook.Workbook, sheet string) []Expectation {
	triples := b.tables.Derived[sheet]
	if len(triples) == 0 {
		return nil
	}
	tbl, ok := b.derivedTable(wb, sheet)
	if !ok {
		return nil
	}
	nameCol, ok := tbl.Index.First(b.tables.NameHeader)
	if !ok {
		return nil
	}

	out := make([]Expectation, 0, tbl.Len())
	for _, key := range tbl.Keys() {
		name, _ := tbl.ValueAt(key, nameCol)
		exp := Expectation{Key: key, Name: strings.TrimSpace(name), Sheet: sheet}
		for _, tr := range triples {
			v, ok := tbl.Value(key, tr.Header, tr.Nth)
			if !ok || value.IsBlank(v) {
				continue
			}
			exp.Fields = append(exp.Fields, FieldValue{Field: tr.Field, Value: v})
		}
		out = append(out, exp)
	}
	return out
}

// Build 为每个跟踪行业生成完整性断言
// Summary.MissingCodesBySheet 记录衍生 sheet 有、但明细表没有以该来源表展示的企业，
// 这是企业级覆盖信号，与字段级断言失败分开统计
func (b *Builder) Build(wb *workbook.Workbook, observed []model.EntityRecord) ([]model.CompletenessCase, model.CompletenessSummary) {
	summary := model.CompletenessSummary{
		Sheets:              make(map[string]model.SheetCompleteness),
		MissingCodesBySheet: make(map[string][]string),
	}
	cases := []model.CompletenessCase{}
	if wb == nil {
		return cases, summary
	}

	byKey := make(map[string]model.EntityRecord, len(observed))
	for _, rec := range observed {
		if table.IsEntityKey(rec.Key) {
			byKey[table.NormalizeKey(rec.Key)] = rec
		}
	}

	for _, sheet := range b.tables.Categories {
		expected := b.Expected(wb, sheet)
		stats := model.SheetCompleteness{Companies: len(expected)}

		shown := make(map[string]bool)
		for _, rec := range observed {
			if strings.TrimSpace(rec.Sheet) == sheet && table.IsEntityKey(rec.Key) {
				shown[table.NormalizeKey(rec.Key)] = true
			}
		}
		missing := []string{}
		for _, exp := range expected {
			if !shown[exp.Key] {
				missing = append(missing, exp.Key)
			}
		}
		sort.Strings(missing)
		summary.MissingCodesBySheet[sheet] = missing
		stats.MissingCompanies = len(missing)

		for _, exp := range expected {
			rec, ok := byKey[exp.Key]
			if !ok {
				continue
			}
			for _, fv := range exp.Fields {
				c := b.grade(sheet, exp, rec, fv)
				stats.Checks++
				if !c.OK {
					stats.Fails++
				}
				cases = append(cases, c)
			}
		}

		summary.Sheets[sheet] = stats
		summary.TotalCompanies += stats.Companies
		summary.MissingCompanies += stats.MissingCompanies
		summary.TotalChecks += stats.Checks
		summary.FailedChecks += stats.Fails
	}

	b.log.Info("completeness cases built",
		zap.Int("cases", summary.TotalChecks),
		zap.Int("failed", summary.FailedChecks),
		zap.Int("missingCompanies", summary.MissingCompanies))
	return cases, summary
}

func (b *Builder) grade(sheet string, exp Expectation, rec model.EntityRecord, fv FieldValue) model.CompletenessCase {
	actual, ok := rec.Fields[fv.Field]
	if !ok {
		actual = value.Placeholder
	}
	name := rec.Name
	if name == "" {
		name = exp.Name
	}
	c := model.CompletenessCase{
		Sheet:     sheet,
		Key:       exp.Key,
		Name:      name,
		Field:     fv.Field,
		Expected:  fv.Value,
		Actual:    actual,
		Reproduce: fmt.Sprintf("首页明细表搜索 %s → 展示列 %s → 对照输入 Excel Sheet「%s」的对应列", exp.Key, fv.Field, sheet),
	}

	recSheet := strings.TrimSpace(rec.Sheet)
	switch {
	case recSheet != "" && recSheet != sheet:
		c.ReasonCode = model.ReasonProvenanceMismatch
		c.Reason = fmt.Sprintf("来源表不一致：UI=%s，Excel=%s", recSheet, sheet)
	case value.IsPlaceholder(actual):
		c.ReasonCode = model.ReasonFieldAbsent
		c.Reason = "Excel 有值，但明细表该字段为空/未展示"
	default:
		out := b.tol.Compare(fv.Field, fv.Value, actual)
		c.OK = out.Equal
		if !c.OK {
			if out.Numeric {
				c.ReasonCode = model.ReasonNumericMismatch
				c.Reason = "数值不一致（允许少量格式化/四舍五入容差）"
			} else {
				c.ReasonCode = model.ReasonTextMismatch
				c.Reason = "文本不一致"
			}
		}
	}
	return c
}
