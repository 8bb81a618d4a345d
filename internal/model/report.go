package model

import "time"

// RunStatus 一次校验运行的结论
type RunStatus string

const (
	StatusPass RunStatus = "PASS"
	StatusFail RunStatus = "FAIL"
)

// AxisResult 单条对照轴（导入一致性 / 导出一致性）的结果
type AxisResult struct {
	Usable     bool           `json:"usable"`
	Gaps       []CoverageGap  `json:"gaps"`
	Mismatches []Mismatch     `json:"mismatches"`
	Unverified map[string]int `json:"unverified,omitempty"`
}

// Clean 可执行且无缺口、无差异
func (a AxisResult) Clean() bool {
	return a.Usable && len(a.Gaps) == 0 && len(a.Mismatches) == 0
}

// Report 一次完整校验的结果，交给外部报告层渲染
type Report struct {
	ID          string    `json:"id"`
	GeneratedAt time.Time `json:"generatedAt"`
	Status      RunStatus `json:"status"`
	Issues      []string  `json:"issues"`

	Import AxisResult `json:"import"`
	Export AxisResult `json:"export"`

	InputStructure SheetSetCheck                  `json:"inputStructure"`
	Completeness   []CompletenessCase             `json:"completenessCases"`
	Summary        CompletenessSummary            `json:"completenessSummary"`
	ColumnCoverage map[string]SheetColumnCoverage `json:"derivedColumnCoverage"`
	TabCounts      []TabCount                     `json:"tabConsistency"`
	Consistency    []ConsistencyCheck             `json:"uiDerivedChecks"`
	Actions        []ActionCheck                  `json:"actionExportChecks"`
	Template       *TemplateReport                `json:"exportTemplate,omitempty"`
	// TemplateError 给出了定稿模板但无法打开，模板检查无法执行
	TemplateError string `json:"exportTemplateError,omitempty"`
}

// CompletenessFailures 完整性失败断言数量
func (r *Report) CompletenessFailures() int {
	n := 0
	for _, c := range r.Completeness {
		if !c.OK {
			n++
		}
	}
	return n
}
