package model

import "fmt"

// GapDirection 覆盖缺口的方向
type GapDirection string

const (
	GapSheetUnusable       GapDirection = "sheet_unusable"         // 来源表缺失或无可识别表头
	GapInSourceNotObserved GapDirection = "in_source_not_observed" // Excel 有、明细表无
	GapInObservedNotSource GapDirection = "in_observed_not_source" // 明细表有、Excel 无
	GapMissingProvenance   GapDirection = "missing_provenance"     // 记录未声明来源表
	GapNotInExport         GapDirection = "not_in_export"          // 导出 Excel 候选 sheet 均无该企业
	GapAxisUnusable        GapDirection = "axis_unusable"          // 输入不可用，整条校验轴无法执行
)

// CoverageGap 覆盖缺口
type CoverageGap struct {
	Key       string       `json:"creditCode,omitempty"`
	Sheet     string       `json:"sheet,omitempty"`
	Direction GapDirection `json:"direction"`
	Detail    string       `json:"detail,omitempty"`
}

func (g CoverageGap) String() string {
	switch g.Direction {
	case GapSheetUnusable:
		return fmt.Sprintf("%s: sheet unusable: %s (%s)", g.Key, g.Sheet, g.Detail)
	case GapInSourceNotObserved:
		return fmt.Sprintf("%s: exists in excel sheet %s but missing in 明细表", g.Key, g.Sheet)
	case GapInObservedNotSource:
		return fmt.Sprintf("%s: not found in excel sheet %s", g.Key, g.Sheet)
	case GapMissingProvenance:
		return fmt.Sprintf("%s: missing 来源表", g.Key)
	case GapNotInExport:
		return fmt.Sprintf("%s: not found in exported excel (%s)", g.Key, g.Detail)
	case GapAxisUnusable:
		return "cannot verify: " + g.Detail
	}
	return fmt.Sprintf("%s: %s %s", g.Key, g.Direction, g.Detail)
}

// Mismatch 归一化后超出容差的字段差异
type Mismatch struct {
	Key         string `json:"creditCode"`
	Name        string `json:"name"`
	Sheet       string `json:"sheet"`
	Field       string `json:"field"`
	SourceField string `json:"sourceField,omitempty"`
	Expected    any    `json:"expected"`
	Actual      any    `json:"actual"`
	// Ambiguous 增速口径换算落在阈值附近，结论需要人工确认
	Ambiguous bool `json:"ambiguous,omitempty"`
}

// CaseReason 完整性断言失败原因码
type CaseReason string

const (
	ReasonNone               CaseReason = ""
	ReasonProvenanceMismatch CaseReason = "provenance_mismatch"
	ReasonFieldAbsent        CaseReason = "field_absent"
	ReasonNumericMismatch    CaseReason = "numeric_mismatch"
	ReasonTextMismatch       CaseReason = "text_mismatch"
)

// CompletenessCase 单个期望值断言（来自衍生 sheet）
type CompletenessCase struct {
	Sheet      string     `json:"sheet"`
	Key        string     `json:"creditCode"`
	Name       string     `json:"name"`
	Field      string     `json:"field"`
	Expected   any        `json:"expected"`
	Actual     any        `json:"actual"`
	OK         bool       `json:"ok"`
	ReasonCode CaseReason `json:"reasonCode,omitempty"`
	Reason     string     `json:"reason,omitempty"`
	Reproduce  string     `json:"reproduce"`
}

// SheetCompleteness 单个 sheet 的完整性统计
type SheetCompleteness struct {
	Companies        int `json:"companies"`
	MissingCompanies int `json:"missingCompanies"`
	Checks           int `json:"checks"`
	Fails            int `json:"fails"`
}

// CompletenessSummary 完整性统计汇总
type CompletenessSummary struct {
	Sheets              map[string]SheetCompleteness `json:"sheets"`
	TotalCompanies      int                          `json:"totalCompanies"`
	MissingCompanies    int                          `json:"missingCompanies"`
	TotalChecks         int                          `json:"totalChecks"`
	FailedChecks        int                          `json:"failedChecks"`
	MissingCodesBySheet map[string][]string          `json:"missingCodesBySheet"`
}

// ColumnCoverageItem 衍生 sheet 中一个有值列的映射情况
type ColumnCoverageItem struct {
	Header           string `json:"excelHeader"`
	Nth              int    `json:"nth"`
	NonEmpty         int    `json:"nonEmpty"`
	Examples         []any  `json:"examples"`
	Field            string `json:"uiField"`
	FieldPresent     bool   `json:"uiPresent"`
	SuggestedUIField string `json:"suggestedUiField"`
}

// SheetColumnCoverage 单个衍生 sheet 的列覆盖
type SheetColumnCoverage struct {
	ColumnsWithValues         int                  `json:"columnsWithValues"`
	MissingUIColumns          int                  `json:"missingUiColumns"`
	UnmappedColumnsWithValues int                  `json:"unmappedColumnsWithValues"`
	Items                     []ColumnCoverageItem `json:"items"`
}

// TabCount Tab 计数一致性（Excel vs UI）
type TabCount struct {
	Sheet          string `json:"sheet"`
	ExcelCompanies int    `json:"excelCompanies"`
	UICompanies    int    `json:"uiCompanies"`
	UITabRows      int    `json:"uiTabRows"`
	UITabTotalText string `json:"uiTabTotalText"`
	OK             bool   `json:"ok"`
	Reason         string `json:"reason,omitempty"`
	Reproduce      string `json:"reproduce"`
}

// ConsistencyCheck 明细表派生字段自洽性失败项
type ConsistencyCheck struct {
	Key       string  `json:"creditCode"`
	Name      string  `json:"name"`
	Industry  string  `json:"industry"`
	Field     string  `json:"field"`
	Expected  float64 `json:"expected"`
	Actual    float64 `json:"actual"`
	OK        bool    `json:"ok"`
	Reason    string  `json:"reason"`
	Reproduce string  `json:"reproduce"`
}

// ActionCheck 修改动作在导出文件中的落地校验
type ActionCheck struct {
	Key          string `json:"creditCode"`
	Field        string `json:"field"`
	Sheet        string `json:"sheet,omitempty"`
	ExcelField   string `json:"excelField,omitempty"`
	Expected     any    `json:"expected"`
	Actual       any    `json:"actual,omitempty"`
	OK           bool   `json:"ok"`
	Reason       string `json:"reason,omitempty"`
	Desired      any    `json:"desired,omitempty"`
	PersistOK    bool   `json:"persistOk"`
	PersistValue any    `json:"persistValue,omitempty"`
}

// SheetSetCheck sheet 集合对比
type SheetSetCheck struct {
	ExpectedSheets []string `json:"expectedSheets"`
	ActualSheets   []string `json:"actualSheets"`
	MissingSheets  []string `json:"missingSheets"`
	ExtraSheets    []string `json:"extraSheets"`
	OK             bool     `json:"ok"`
}

// HeaderCheck 表头签名对比
type HeaderCheck struct {
	Sheet              string   `json:"sheet"`
	OK                 bool     `json:"ok"`
	TemplateHeaderCols int      `json:"templateHeaderCols"`
	ExportHeaderCols   int      `json:"exportHeaderCols"`
	FirstDiffCol       int      `json:"firstDiffCol,omitempty"`
	TemplateSignature  []string `json:"-"`
	ExportSignature    []string `json:"-"`
	Reason             string   `json:"reason,omitempty"`
	Reproduce          string   `json:"reproduce"`
}

// FormulaCheck 关键单元格公式保留校验
type FormulaCheck struct {
	Sheet     string `json:"sheet"`
	Cell      string `json:"cell"`
	OK        bool   `json:"ok"`
	Template  string `json:"template"`
	Export    string `json:"export"`
	Reason    string `json:"reason,omitempty"`
	Reproduce string `json:"reproduce"`
}

// TemplateReport 导出模板结构对标结果
type TemplateReport struct {
	Sheets   SheetSetCheck  `json:"sheets"`
	Headers  []HeaderCheck  `json:"headerChecks"`
	Formulas []FormulaCheck `json:"formulaChecks"`
}

// Failures 模板结构失败项数量（缺失 sheet + 表头不一致）
func (r TemplateReport) Failures() int {
	n := len(r.Sheets.MissingSheets)
	for _, h := range r.Headers {
		if !h.OK {
			n++
		}
	}
	return n
}

// FormulaFailures 公式失败项数量
func (r TemplateReport) FormulaFailures() int {
	n := 0
	for _, f := range r.Formulas {
		if !f.OK {
			n++
		}
	}
	return n
}
