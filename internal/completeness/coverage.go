package completeness

import (
	"fmt"
	"strings"

	"github.com/HelloAnner/northstar-verify/internal/model"
	"github.com/HelloAnner/northstar-verify/internal/table"
	"github.com/HelloAnner/northstar-verify/internal/value"
	"github.com/HelloAnner/northstar-verify/internal/workbook"
)

const maxExamples = 3

// Coverage 统计衍生 sheet 中每个有值列是否被三元组映射、映射字段是否在明细表展示
// observedHeaders 为明细表表头
func (b *Builder) Coverage(wb *workbook.Workbook, observedHeaders []string) map[string]model.SheetColumnCoverage {
	out := make(map[string]model.SheetColumnCoverage)
	if wb == nil {
		return out
	}
	shown := make(map[string]bool, len(observedHeaders))
	for _, h := range observedHeaders {
		shown[strings.TrimSpace(h)] = true
	}

	for _, sheet := range b.tables.Categories {
		s, ok := wb.Sheet(sheet)
		if !ok {
			continue
		}
		mapped := make(map[table.Column]string)
		for _, tr := range b.tables.Derived[sheet] {
			mapped[table.Column{Header: tr.Header, Nth: tr.Nth}] = tr.Field
		}

		cov := model.SheetColumnCoverage{Items: []model.ColumnCoverageItem{}}
		for _, col := range table.BuildIndex(s.Row(1)).Columns() {
			if b.skipColumn(col.Header) {
				continue
			}
			nonEmpty, examples := columnStats(s, col.Col)
			if nonEmpty == 0 {
				continue
			}

			field := mapped[table.Column{Header: col.Header, Nth: col.Nth}]
			present := field != "" && shown[field]
			if field == "" {
				// 未映射列：表头本身出现在明细表中也算展示
				present = shown[col.Header]
				cov.UnmappedColumnsWithValues++
			} else if !present {
				cov.MissingUIColumns++
			}

			cov.Items = append(cov.Items, model.ColumnCoverageItem{
				Header:           col.Header,
				Nth:              col.Nth,
				NonEmpty:         nonEmpty,
				Examples:         examples,
				Field:            field,
				FieldPresent:     present,
				SuggestedUIField: col.Header,
			})
		}
		cov.ColumnsWithValues = len(cov.Items)
		out[sheet] = cov
	}
	return out
}

func (b *Builder) skipColumn(header string) bool {
	for _, h := range b.tables.CoverageSkip {
		if header == h {
			return true
		}
	}
	for _, p := range b.tables.CoverageSkipPrefix {
		if strings.HasPrefix(header, p) {
			return true
		}
	}
	return false
}

func columnStats(s *workbook.Sheet, col int) (int, []any) {
	count := 0
	examples := []any{}
	seen := make(map[string]bool)
	for r := 2; r <= s.MaxRow(); r++ {
		v := s.Cell(r, col)
		if value.IsBlank(v) {
			continue
		}
		count++
		if len(examples) < maxExamples && !seen[v] {
			seen[v] = true
			examples = append(examples, v)
		}
	}
	return count, examples
}

// TabCounts 每个行业：衍生 sheet 企业数 vs 明细表该来源表记录数 vs 页面 Tab 行数
// Tab 行数为 0 表示未采集，不参与判定
func (b *Builder) TabCounts(wb *workbook.Workbook, observed []model.EntityRecord, tabs []model.TabObservation) []model.TabCount {
	byTab := make(map[string]model.TabObservation, len(tabs))
	for _, t := range tabs {
		byTab[strings.TrimSpace(t.Tab)] = t
	}
	uiCounts := make(map[string]int)
	for _, rec := range observed {
		if table.IsEntityKey(rec.Key) {
			uiCounts[strings.TrimSpace(rec.Sheet)]++
		}
	}

	out := make([]model.TabCount, 0, len(b.tables.Categories))
	for _, sheet := range b.tables.Categories {
		excel := 0
		if wb != nil {
			if tbl, ok := b.derivedTable(wb, sheet); ok {
				excel = tbl.Len()
			}
		}
		tab := byTab[sheet]
		ui := uiCounts[sheet]
		ok := ui == excel && (tab.Rows == ui || tab.Rows == 0)

		item := model.TabCount{
			Sheet:          sheet,
			ExcelCompanies: excel,
			UICompanies:    ui,
			UITabRows:      tab.Rows,
			UITabTotalText: strings.TrimSpace(tab.TotalText),
			OK:             ok,
			Reproduce:      fmt.Sprintf("导入后切换到「%s」Tab，对比：UI 企业数 vs 输入 Excel「%s」Sheet 的企业行数", sheet, sheet),
		}
		if !ok {
			item.Reason = "UI 企业覆盖/计数与输入 Excel 不一致（可能为解析遗漏、筛选口径差异或展示不完整）"
		}
		out = append(out, item)
	}
	return out
}
