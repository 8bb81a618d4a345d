// Package verify 把各组件串成一次完整校验：导入轴、导出轴、完整性、模板与动作检查，
// 汇总出问题清单与 PASS/FAIL 结论。Run 只读内存输入，不做任何 I/O。
package verify

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/HelloAnner/northstar-verify/internal/completeness"
	"github.com/HelloAnner/northstar-verify/internal/consistency"
	"github.com/HelloAnner/northstar-verify/internal/model"
	"github.com/HelloAnner/northstar-verify/internal/reconcile"
	"github.com/HelloAnner/northstar-verify/internal/schema"
	"github.com/HelloAnner/northstar-verify/internal/template"
	"github.com/HelloAnner/northstar-verify/internal/value"
)

// Engine 校验引擎
type Engine struct {
	tables     *schema.Tables
	reconciler *reconcile.Reconciler
	builder    *completeness.Builder
	checker    *template.Checker
	log        *zap.Logger

	// ConsistencyLimit 派生字段自洽检查的记录上限
	ConsistencyLimit int
	now              func() time.Time
}

// NewEngine 创建引擎
func NewEngine(tables *schema.Tables, tol value.Tolerance, log *zap.Logger) *Engine {
	if log == nil {
		log = zap.NewNop()
	}
	return &Engine{
		tables:           tables,
		reconciler:       reconcile.New(tables, tol, log),
		builder:          completeness.New(tables, tol, log),
		checker:          template.New(tables),
		log:              log.Named("verify"),
		ConsistencyLimit: consistency.DefaultLimit,
		now:              time.Now,
	}
}

// Run 执行一次完整校验
func (e *Engine) Run(in *Inputs) *model.Report {
	rep := &model.Report{
		ID:             uuid.NewString(),
		GeneratedAt:    e.now(),
		Issues:         []string{},
		Completeness:   []model.CompletenessCase{},
		ColumnCoverage: map[string]model.SheetColumnCoverage{},
		TabCounts:      []model.TabCount{},
		Consistency:    []model.ConsistencyCheck{},
		Actions:        []model.ActionCheck{},
	}

	beforeOK := in.Before.Usable()
	afterOK := in.After.Usable()

	rep.Import = e.importAxis(in, beforeOK)
	rep.Export = e.exportAxis(in, afterOK)
	rep.InputStructure = e.checker.InputStructure(in.Input)

	if in.Input != nil && beforeOK {
		rep.Completeness, rep.Summary = e.builder.Build(in.Input, in.Before.Rows)
		rep.ColumnCoverage = e.builder.Coverage(in.Input, in.Before.Headers)
		rep.TabCounts = e.builder.TabCounts(in.Input, in.Before.Rows, in.TabCounts)
	}

	switch {
	case afterOK:
		rep.Consistency = consistency.Check(in.After.Rows, e.ConsistencyLimit)
	case beforeOK:
		rep.Consistency = consistency.Check(in.Before.Rows, e.ConsistencyLimit)
	}

	lookup := make([]model.EntityRecord, 0, len(in.Before.Rows)+len(in.After.Rows))
	lookup = append(lookup, in.Before.Rows...)
	lookup = append(lookup, in.After.Rows...)
	if checks := e.reconciler.Actions(in.Actions, lookup, in.Export); checks != nil {
		rep.Actions = checks
	}

	rep.Template = e.checker.Check(in.Template, in.Export)
	if in.Template == nil && in.TemplateErr != nil {
		rep.TemplateError = fmt.Sprintf("定稿模板打开失败：%v", in.TemplateErr)
		e.log.Warn("template workbook unavailable", zap.Error(in.TemplateErr))
	}

	rep.Issues = Issues(rep, in.Actions)
	rep.Status = model.StatusFail
	if passed(rep, in.Actions) {
		rep.Status = model.StatusPass
	}
	e.log.Info("verification finished",
		zap.String("id", rep.ID),
		zap.String("status", string(rep.Status)),
		zap.Int("issues", len(rep.Issues)))
	return rep
}

func (e *Engine) importAxis(in *Inputs, usable bool) model.AxisResult {
	switch {
	case !usable:
		return axisUnusable(withReason("UI 抽取失败：无法进行导入一致性校验", in.Before.Error))
	case in.Input == nil:
		return axisUnusable(fmt.Sprintf("输入 Excel 打开失败：%v", in.InputErr))
	}
	res, err := e.reconciler.Import(in.Before.Rows, in.Input, e.tables.ImportIgnored)
	if err != nil {
		return axisUnusable(err.Error())
	}
	return res
}

func (e *Engine) exportAxis(in *Inputs, usable bool) model.AxisResult {
	switch {
	case !usable:
		return axisUnusable(withReason("UI 抽取失败：无法进行导出一致性校验", in.After.Error))
	case in.Export == nil:
		return axisUnusable(fmt.Sprintf("导出 Excel 打开失败：%v", in.ExportErr))
	}
	res, err := e.reconciler.Export(in.After.Rows, in.Export)
	if err != nil {
		return axisUnusable(err.Error())
	}
	return res
}

// axisUnusable 输入不可用时整条轴只记一个缺口
func axisUnusable(detail string) model.AxisResult {
	return model.AxisResult{
		Gaps:       []model.CoverageGap{{Direction: model.GapAxisUnusable, Detail: detail}},
		Mismatches: []model.Mismatch{},
	}
}

func withReason(detail, reason string) string {
	if reason == "" {
		return detail
	}
	return detail + "（" + reason + "）"
}
