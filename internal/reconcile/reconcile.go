// Package reconcile 对照两份以统一社会信用代码为键的记录集合，产出覆盖缺口与字段差异。
//
// 数据问题（缺 sheet、缺表头、缺字段）一律表示为缺口或静默跳过，不返回错误；
// 只有调用参数本身无效时才返回 ErrNilWorkbook。
package reconcile

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/HelloAnner/northstar-verify/internal/fieldmap"
	"github.com/HelloAnner/northstar-verify/internal/model"
	"github.com/HelloAnner/northstar-verify/internal/schema"
	"github.com/HelloAnner/northstar-verify/internal/table"
	"github.com/HelloAnner/northstar-verify/internal/value"
	"github.com/HelloAnner/northstar-verify/internal/workbook"
)

// ErrNilWorkbook 比对需要的工作簿句柄为空
var ErrNilWorkbook = errors.New("reconcile: workbook is nil")

// Reconciler 记录集合对照器
type Reconciler struct {
	tables *schema.Tables
	mapper *fieldmap.Mapper
	tol    value.Tolerance
	log    *zap.Logger
}

// New 创建对照器；log 为 nil 时不输出日志
func New(tables *schema.Tables, tol value.Tolerance, log *zap.Logger) *Reconciler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Reconciler{
		tables: tables,
		mapper: fieldmap.New(tables),
		tol:    tol,
		log:    log.Named("reconcile"),
	}
}

func (r *Reconciler) tableOptions() table.Options {
	return table.Options{KeyHeader: r.tables.KeyHeader, ScanRows: r.tables.ScanRows}
}

// Import 明细表（导入后）对照输入 Excel
// 按来源表分组；Excel 有而明细表无、明细表有而 Excel 无的企业都记为缺口；
// 两侧都有的企业逐字段比较
func (r *Reconciler) Import(observed []model.EntityRecord, wb *workbook.Workbook, ignored []string) (model.AxisResult, error) {
	if wb == nil {
		return model.AxisResult{}, ErrNilWorkbook
	}
	res := newResult()
	skip := toSet(ignored)

	groups, order := groupBySheet(observed)
	for _, sheetName := range order {
		rows := groups[sheetName]
		if sheetName == "" {
			for _, rec := range rows {
				res.Gaps = append(res.Gaps, model.CoverageGap{Key: table.NormalizeKey(rec.Key), Direction: model.GapMissingProvenance})
			}
			continue
		}

		s, ok := wb.Sheet(sheetName)
		if !ok {
			r.log.Debug("provenance sheet missing", zap.String("sheet", sheetName), zap.Int("records", len(rows)))
			res.Gaps = append(res.Gaps, unusable(rows, sheetName, "来源表 not found in excel")...)
			continue
		}
		tbl, ok := table.Extract(s, r.tableOptions())
		if !ok {
			r.log.Debug("sheet has no header table", zap.String("sheet", sheetName))
			res.Gaps = append(res.Gaps, unusable(rows, sheetName, "sheet has no recognizable header table")...)
			continue
		}

		seen := make(map[string]bool, len(rows))
		for _, rec := range rows {
			if table.IsEntityKey(rec.Key) {
				seen[table.NormalizeKey(rec.Key)] = true
			}
		}
		for _, key := range tbl.Keys() {
			if !seen[key] {
				res.Gaps = append(res.Gaps, model.CoverageGap{Key: key, Sheet: sheetName, Direction: model.GapInSourceNotObserved})
			}
		}

		for _, rec := range rows {
			if !table.IsEntityKey(rec.Key) {
				continue
			}
			key := table.NormalizeKey(rec.Key)
			if !tbl.Has(key) {
				res.Gaps = append(res.Gaps, model.CoverageGap{Key: key, Sheet: sheetName, Direction: model.GapInObservedNotSource})
				continue
			}
			for _, field := range sortedFields(rec) {
				if model.IsInternalField(field) || skip[field] || field == model.FieldSourceSheet {
					continue
				}
				target, ok := r.mapper.Resolve(field, sheetName, tbl.Index)
				if !ok {
					res.Unverified[field]++
					continue
				}
				expected, _ := tbl.Value(key, target.Header, target.Nth)
				if value.IsBlank(expected) {
					continue
				}
				actual := rec.Fields[field]
				if m, bad := r.compare(rec, sheetName, field, target, "excel", expected, actual); bad {
					res.Mismatches = append(res.Mismatches, m)
				}
			}
		}
	}

	// 没有任何观测记录声明为来源表的行业 sheet，其中每个企业都是缺口
	for _, sheetName := range r.tables.Categories {
		if _, observedSheet := groups[sheetName]; observedSheet {
			continue
		}
		s, ok := wb.Sheet(sheetName)
		if !ok {
			continue
		}
		tbl, ok := table.Extract(s, r.tableOptions())
		if !ok {
			continue
		}
		for _, key := range tbl.Keys() {
			res.Gaps = append(res.Gaps, model.CoverageGap{Key: key, Sheet: sheetName, Direction: model.GapInSourceNotObserved})
		}
	}

	r.log.Info("import axis reconciled",
		zap.Int("records", len(observed)),
		zap.Int("gaps", len(res.Gaps)),
		zap.Int("mismatches", len(res.Mismatches)),
		zap.Int("unverifiedFields", len(res.Unverified)))
	return res, nil
}

// Export 明细表（修改后）对照导出 Excel
// 企业可能被合并进“总表”，按行业候选 sheet 顺序查找，取第一个包含该企业的 sheet
func (r *Reconciler) Export(observed []model.EntityRecord, wb *workbook.Workbook) (model.AxisResult, error) {
	if wb == nil {
		return model.AxisResult{}, ErrNilWorkbook
	}
	res := newResult()
	skip := toSet(r.tables.ExportIgnored)
	idx := table.IndexWorkbook(wb, r.tableOptions())

	for _, rec := range observed {
		if !table.IsEntityKey(rec.Key) {
			continue
		}
		key := table.NormalizeKey(rec.Key)
		sheetName, tbl := r.locate(idx, key, r.tables.Candidates(rec.Industry))
		if tbl == nil {
			res.Gaps = append(res.Gaps, model.CoverageGap{
				Key:       key,
				Direction: model.GapNotInExport,
				Detail:    "industry=" + rec.Industry,
			})
			continue
		}
		for _, field := range sortedFields(rec) {
			if model.IsInternalField(field) || skip[field] {
				continue
			}
			target, ok := r.mapper.Resolve(field, sheetName, tbl.Index)
			if !ok {
				res.Unverified[field]++
				continue
			}
			// 导出侧空单元格同样参与比较：明细表有值而导出为空即为差异
			expected, _ := tbl.Value(key, target.Header, target.Nth)
			if m, bad := r.compare(rec, sheetName, field, target, "export", expected, rec.Fields[field]); bad {
				res.Mismatches = append(res.Mismatches, m)
			}
		}
	}

	r.log.Info("export axis reconciled",
		zap.Int("records", len(observed)),
		zap.Int("exportSheets", len(idx)),
		zap.Int("gaps", len(res.Gaps)),
		zap.Int("mismatches", len(res.Mismatches)))
	return res, nil
}

func (r *Reconciler) locate(idx map[string]*table.Table, key string, candidates []string) (string, *table.Table) {
	for _, name := range candidates {
		if t, ok := idx[name]; ok && t.Has(key) {
			return name, t
		}
	}
	return "", nil
}

func (r *Reconciler) compare(rec model.EntityRecord, sheet, field string, target fieldmap.Target, side string, expected, actual any) (model.Mismatch, bool) {
	out := r.tol.Compare(field, expected, actual)
	if out.Equal {
		return model.Mismatch{}, false
	}
	m := model.Mismatch{
		Key:       table.NormalizeKey(rec.Key),
		Name:      rec.Name,
		Sheet:     sheet,
		Field:     field,
		Expected:  expected,
		Actual:    actual,
		Ambiguous: out.Ambiguous,
	}
	if target.Header != field || target.Nth > 1 {
		m.SourceField = headerLabel(target)
		m.Field = fmt.Sprintf("%s (%s:%s)", field, side, m.SourceField)
	}
	return m, true
}

func headerLabel(t fieldmap.Target) string {
	if t.Nth > 1 {
		return fmt.Sprintf("%s#%d", t.Header, t.Nth)
	}
	return t.Header
}

func newResult() model.AxisResult {
	return model.AxisResult{
		Usable:     true,
		Gaps:       []model.CoverageGap{},
		Mismatches: []model.Mismatch{},
		Unverified: map[string]int{},
	}
}

func unusable(rows []model.EntityRecord, sheet, detail string) []model.CoverageGap {
	out := make([]model.CoverageGap, 0, len(rows))
	for _, rec := range rows {
		out = append(out, model.CoverageGap{Key: table.NormalizeKey(rec.Key), Sheet: sheet, Direction: model.GapSheetUnusable, Detail: detail})
	}
	return out
}

// groupBySheet 按来源表分组，分组名排序保证输出稳定
func groupBySheet(records []model.EntityRecord) (map[string][]model.EntityRecord, []string) {
	groups := make(map[string][]model.EntityRecord)
	for _, rec := range records {
		name := strings.TrimSpace(rec.Sheet)
		groups[name] = append(groups[name], rec)
	}
	order := make([]string, 0, len(groups))
	for name := range groups {
		order = append(order, name)
	}
	sort.Strings(order)
	return groups, order
}

func sortedFields(rec model.EntityRecord) []string {
	out := make([]string, 0, len(rec.Fields))
	for k := range rec.Fields {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func toSet(list []string) map[string]bool {
	out := make(map[string]bool, len(list))
	for _, v := range list {
		out[v] = true
	}
	return out
}
