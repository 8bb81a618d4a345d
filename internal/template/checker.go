// Package template 对标定稿模板检查导出工作簿的结构：sheet 集合、表头签名与关键公式单元格。
package template

import (
	"fmt"
	"strings"

	"github.com/HelloAnner/northstar-verify/internal/model"
	"github.com/HelloAnner/northstar-verify/internal/schema"
	"github.com/HelloAnner/northstar-verify/internal/table"
	"github.com/HelloAnner/northstar-verify/internal/workbook"
)

// Checker 模板结构检查器
type Checker struct {
	tables *schema.Tables
}

// New 创建检查器
func New(tables *schema.Tables) *Checker {
	return &Checker{tables: tables}
}

// Check 导出工作簿对标定稿模板；任一侧为 nil 时返回 nil
// sheet 集合以模板工作簿自身的 sheet 为准
func (c *Checker) Check(tpl, actual *workbook.Workbook) *model.TemplateReport {
	if tpl == nil || actual == nil {
		return nil
	}
	return &model.TemplateReport{
		Sheets:   SheetSet(tpl.SheetNames(), actual.SheetNames(), true),
		Headers:  c.Headers(tpl, actual),
		Formulas: c.Formulas(tpl, actual),
	}
}

// InputStructure 输入工作簿的 sheet 集合对标约定清单；无法打开的工作簿记为不通过
func (c *Checker) InputStructure(wb *workbook.Workbook) model.SheetSetCheck {
	return SheetSet(c.tables.InputSheets, wb.SheetNames(), wb != nil)
}

// SheetSet 对比期望与实际 sheet 名集合
func SheetSet(expected, actual []string, usable bool) model.SheetSetCheck {
	has := func(list []string, s string) bool {
		for _, v := range list {
			if v == s {
				return true
			}
		}
		return false
	}
	out := model.SheetSetCheck{
		ExpectedSheets: append([]string{}, expected...),
		ActualSheets:   append([]string{}, actual...),
		MissingSheets:  []string{},
		ExtraSheets:    []string{},
	}
	for _, s := range expected {
		if !has(actual, s) {
			out.MissingSheets = append(out.MissingSheets, s)
		}
	}
	for _, s := range actual {
		if !has(expected, s) {
			out.ExtraSheets = append(out.ExtraSheets, s)
		}
	}
	out.OK = usable && len(out.MissingSheets) == 0
	return out
}

// Headers 两侧都存在的 sheet 逐列对比表头签名（含空白列），按模板 sheet 顺序
// 任一侧找不到表头行的 sheet 不做对比
func (c *Checker) Headers(tpl, actual *workbook.Workbook) []model.HeaderCheck {
	out := []model.HeaderCheck{}
	for _, name := range tpl.SheetNames() {
		ts, ok1 := tpl.Sheet(name)
		as, ok2 := actual.Sheet(name)
		if !ok1 || !ok2 {
			continue
		}
		thr := table.FindHeaderRow(ts, c.tables.KeyHeader, c.tables.ScanRows)
		ahr := table.FindHeaderRow(as, c.tables.KeyHeader, c.tables.ScanRows)
		if thr == 0 || ahr == 0 {
			continue
		}

		maxCols := max(ts.MaxCol(), as.MaxCol(), 1)
		tsig := Signature(ts, thr, maxCols)
		asig := Signature(as, ahr, maxCols)
		diff := firstDiff(tsig, asig)

		hc := model.HeaderCheck{
			Sheet:              name,
			OK:                 diff == 0,
			TemplateHeaderCols: len(tsig),
			ExportHeaderCols:   len(asig),
			FirstDiffCol:       diff,
			TemplateSignature:  tsig,
			ExportSignature:    asig,
			Reproduce:          fmt.Sprintf("打开定稿模板与导出 Excel 的 Sheet「%s」，对比表头（含空白列）是否逐列一致", name),
		}
		if !hc.OK {
			hc.Reason = "导出表头结构与定稿模板不一致（可能导致模板公式引用错位或字段缺失）"
		}
		out = append(out, hc)
	}
	return out
}

// Signature 表头行签名：每格去首尾空白、内部连续空白折叠为一个空格，去掉末尾空列
func Signature(s *workbook.Sheet, row, maxCols int) []string {
	sig := make([]string, 0, maxCols)
	for c := 1; c <= maxCols; c++ {
		sig = append(sig, strings.Join(strings.Fields(s.Cell(row, c)), " "))
	}
	for len(sig) > 0 && sig[len(sig)-1] == "" {
		sig = sig[:len(sig)-1]
	}
	return sig
}

// firstDiff 第一个不一致的列号（1 开始）；完全一致返回 0
func firstDiff(a, b []string) int {
	n := min(len(a), len(b))
	for i := 0; i < n; i++ {
		if a[i] != b[i] {
			return i + 1
		}
	}
	if len(a) != len(b) {
		return n + 1
	}
	return 0
}

// Formulas 关键单元格在导出中必须仍是公式，且与模板公式文本一致
func (c *Checker) Formulas(tpl, actual *workbook.Workbook) []model.FormulaCheck {
	out := []model.FormulaCheck{}
	for _, ref := range c.tables.FormulaCells {
		ts, ok1 := tpl.Sheet(ref.Sheet)
		as, ok2 := actual.Sheet(ref.Sheet)
		if !ok1 || !ok2 {
			continue
		}
		tf, tok := ts.Formula(ref.Cell)
		af, aok := as.Formula(ref.Cell)
		fc := model.FormulaCheck{
			Sheet:     ref.Sheet,
			Cell:      ref.Cell,
			OK:        tok && aok && strings.TrimSpace(tf) == strings.TrimSpace(af),
			Template:  cellText(ts, ref.Cell, tf, tok),
			Export:    cellText(as, ref.Cell, af, aok),
			Reproduce: fmt.Sprintf("打开导出 Excel → Sheet「%s」→ 单元格 %s，检查是否为公式且与定稿模板一致", ref.Sheet, ref.Cell),
		}
		switch {
		case fc.OK:
		case tok && !aok:
			fc.Reason = "导出单元格已被写成固定值，定稿模板公式未保留"
		default:
			fc.Reason = "导出模板公式未按定稿模板保留（可能导致定稿表计算错误）"
		}
		out = append(out, fc)
	}
	return out
}

func cellText(s *workbook.Sheet, axis, formula string, isFormula bool) string {
	if isFormula {
		return "=" + formula
	}
	return s.CellAt(axis)
}
