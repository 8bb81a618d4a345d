package reconcile

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/HelloAnner/northstar-verify/internal/model"
	"github.com/HelloAnner/northstar-verify/internal/table"
	"github.com/HelloAnner/northstar-verify/internal/value"
	"github.com/HelloAnner/northstar-verify/internal/workbook"
)

// Actions 校验每个修改动作最终落到导出 Excel 中
// 刷新后读回的值优先作为期望值；读回值与期望修改不一致时归为持久化问题
// lookup 为修改前后两次抽取的明细表记录，后出现的记录覆盖先出现的
func (r *Reconciler) Actions(actions model.Actions, lookup []model.EntityRecord, wb *workbook.Workbook) []model.ActionCheck {
	if wb == nil {
		return nil
	}
	persisted := make(map[string]model.ActionPersist, len(actions.Persist))
	for _, p := range actions.Persist {
		persisted[p.Key()] = p
	}
	byKey := make(map[string]model.EntityRecord, len(lookup))
	for _, rec := range lookup {
		if table.IsEntityKey(rec.Key) {
			byKey[table.NormalizeKey(rec.Key)] = rec
		}
	}
	idx := table.IndexWorkbook(wb, r.tableOptions())

	out := make([]model.ActionCheck, 0, len(actions.Results))
	for _, a := range actions.Results {
		out = append(out, r.checkAction(a, persisted[a.Key()], byKey, idx))
	}

	failed := 0
	for _, c := range out {
		if !c.OK {
			failed++
		}
	}
	r.log.Info("action export checks", zap.Int("actions", len(out)), zap.Int("failed", failed))
	return out
}

func (r *Reconciler) checkAction(a model.ActionResult, p model.ActionPersist, byKey map[string]model.EntityRecord, idx map[string]*table.Table) model.ActionCheck {
	key := table.NormalizeKey(a.CreditCode)
	field := a.Field
	persistOK := !p.Failed()

	expected := a.Value
	if !value.IsPlaceholder(p.UIValue) {
		if f, ok := value.ParseNumber(p.UIValue); ok {
			expected = f
		} else {
			expected = model.Text(p.UIValue)
		}
	}

	rec, ok := byKey[key]
	if !ok {
		return model.ActionCheck{Key: key, Field: field, Expected: expected, Reason: "修改后 UI 未找到该企业，无法校验导出"}
	}

	industry := rec.Industry
	if industry == "" {
		industry = rec.Sheet
	}
	candidates := append(append([]string{}, r.tables.ExportCandidates[industry]...), industry)
	sheetName, tbl := r.locate(idx, key, candidates)
	if tbl == nil {
		return model.ActionCheck{
			Key:      key,
			Field:    field,
			Expected: expected,
			Reason:   fmt.Sprintf("导出 Excel 未找到该企业行（industry=%s）", industry),
		}
	}

	target, ok := r.mapper.Resolve(field, sheetName, tbl.Index)
	if !ok {
		return model.ActionCheck{
			Key:      key,
			Field:    field,
			Sheet:    sheetName,
			Expected: expected,
			Reason:   fmt.Sprintf("导出 Excel 缺少对应列（field=%s）", field),
		}
	}

	actual, _ := tbl.Value(key, target.Header, target.Nth)
	check := model.ActionCheck{
		Key:          key,
		Field:        field,
		Sheet:        sheetName,
		ExcelField:   headerLabel(target),
		Expected:     expected,
		Actual:       actual,
		OK:           r.tol.Compare(field, expected, actual).Equal,
		Desired:      a.Value,
		PersistOK:    persistOK,
		PersistValue: p.UIValue,
	}
	if !check.OK {
		check.Reason = "导出值与期望不一致"
	}

	switch {
	case !persistOK:
		check.Reason = "修改未通过持久化校验（UI 刷新后异常），本项导出对照仅供参考"
	case !value.IsPlaceholder(p.UIValue) && !r.tol.Compare(field, a.Value, p.UIValue).Equal:
		check.Reason = "UI 刷新后值与期望修改不一致（可能未保存），导出按刷新后值校验"
	}
	return check
}
