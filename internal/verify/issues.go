package verify

import (
	"fmt"

	"github.com/HelloAnner/northstar-verify/internal/model"
)

// Issues 每个不符合预期的检查区域一行
func Issues(rep *model.Report, acts model.Actions) []string {
	issues := []string{}
	add := func(format string, args ...any) {
		issues = append(issues, fmt.Sprintf(format, args...))
	}

	actionFail, persistFail := actionFailures(acts)
	if n := len(rep.Import.Gaps); n > 0 {
		add("导入覆盖缺失：%d", n)
	}
	if n := len(rep.Import.Mismatches); n > 0 {
		add("导入字段不一致：%d", n)
	}
	if actionFail > 0 {
		add("修改动作失败：%d", actionFail)
	}
	if persistFail > 0 {
		add("修改持久化失败：%d", persistFail)
	}
	if n := len(rep.Export.Gaps); n > 0 {
		add("导出覆盖缺失：%d", n)
	}
	if n := len(rep.Export.Mismatches); n > 0 {
		add("导出字段不一致：%d", n)
	}
	if failed := rep.CompletenessFailures(); failed > 0 {
		add("明细表完整性断言失败：%d/%d", failed, len(rep.Completeness))
	}
	unmapped, missingUI := coverageFailures(rep)
	if unmapped > 0 {
		add("衍生 Sheet 有值列未映射：%d", unmapped)
	}
	if missingUI > 0 {
		add("衍生 Sheet 映射列在 UI 缺失：%d", missingUI)
	}
	if n := tabFailures(rep); n > 0 {
		add("Tab 覆盖/计数不一致：%d", n)
	}
	if n := len(rep.Consistency); n > 0 {
		add("UI 派生字段自洽性失败：%d", n)
	}
	if n := actionCheckFailures(rep); n > 0 {
		add("修改未落到导出文件：%d", n)
	}
	if rep.TemplateError != "" {
		add("导出模板无法校验：%s", rep.TemplateError)
	}
	if rep.Template != nil {
		if n := rep.Template.Failures(); n > 0 {
			add("导出模板结构不一致：%d", n)
		}
		if n := rep.Template.FormulaFailures(); n > 0 {
			add("导出模板公式不一致：%d", n)
		}
	}
	return issues
}

// passed 两条轴可执行且干净，其余检查全部通过
// 修改动作的导出落地检查只作提示，不参与结论
func passed(rep *model.Report, acts model.Actions) bool {
	actionFail, persistFail := actionFailures(acts)
	unmapped, missingUI := coverageFailures(rep)
	ok := rep.Import.Clean() &&
		rep.Export.Clean() &&
		rep.CompletenessFailures() == 0 &&
		tabFailures(rep) == 0 &&
		len(rep.Consistency) == 0 &&
		unmapped == 0 && missingUI == 0 &&
		actionFail == 0 && persistFail == 0 &&
		rep.TemplateError == ""
	if rep.Template != nil {
		ok = ok && rep.Template.Failures() == 0 && rep.Template.FormulaFailures() == 0
	}
	return ok
}

func actionFailures(acts model.Actions) (int, int) {
	actionFail, persistFail := 0, 0
	for _, a := range acts.Results {
		if a.Failed() {
			actionFail++
		}
	}
	for _, p := range acts.Persist {
		if p.Failed() {
			persistFail++
		}
	}
	return actionFail, persistFail
}

func coverageFailures(rep *model.Report) (int, int) {
	unmapped, missingUI := 0, 0
	for _, c := range rep.ColumnCoverage {
		unmapped += c.UnmappedColumnsWithValues
		missingUI += c.MissingUIColumns
	}
	return unmapped, missingUI
}

func tabFailures(rep *model.Report) int {
	n := 0
	for _, t := range rep.TabCounts {
		if !t.OK {
			n++
		}
	}
	return n
}

func actionCheckFailures(rep *model.Report) int {
	n := 0
	for _, c := range rep.Actions {
		if !c.OK {
			n++
		}
	}
	return n
}
