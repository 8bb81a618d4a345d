// Package schema 持有随模板一起维护的静态对照表：字段别名、衍生 sheet 期望三元组、
// 导出候选 sheet、模板 sheet 清单与关键公式单元格。
//
// 表格通过 Default()/Load() 以值的形式交给各组件，组件内部不持有全局状态。
package schema

import (
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"

	"github.com/HelloAnner/northstar-verify/internal/workbook"
)

// 行业分组
const (
	GroupGoods   = "goods"   // 批零：商品销售额口径
	GroupService = "service" // 住餐：营业额口径
)

// Override 明细表字段名 -> 数据源表头
// Header 为不分口径的默认表头；ByGroup 按行业分组覆盖默认表头
type Override struct {
	Field   string            `toml:"field"`
	Header  string            `toml:"header"`
	Nth     int               `toml:"nth,omitempty"`
	ByGroup map[string]string `toml:"by_group,omitempty"`
}

// Triple 衍生 sheet 的期望取值：明细表字段 <- (表头文本, 第 n 次出现)
// 衍生 sheet 在不同指标块中复用同一表头文本，必须带上出现序号才能定位
type Triple struct {
	Field  string `toml:"field"`
	Header string `toml:"header"`
	Nth    int    `toml:"nth"`
}

// Tables 全部静态对照表
type Tables struct {
	KeyHeader  string `toml:"key_header"`
	NameHeader string `toml:"name_header"`
	ScanRows   int    `toml:"scan_rows"`

	// Groups 分组 -> 属于该分组的 sheet/行业名
	Groups map[string][]string `toml:"groups"`
	// PrincipalMetric 分组 -> 主指标前缀（商品销售额 / 营业额）
	PrincipalMetric map[string]string `toml:"principal_metric"`
	// GenericMetric 明细表中不区分口径的主指标前缀
	GenericMetric string `toml:"generic_metric"`
	// TemporalSlices 不带指标前缀的时间切片列名
	TemporalSlices []string `toml:"temporal_slices"`

	Overrides []Override          `toml:"overrides"`
	Derived   map[string][]Triple `toml:"derived"`

	// Categories 完整性与 Tab 计数跟踪的行业 sheet
	Categories []string `toml:"categories"`
	// ExportCandidates 行业 -> 导出文件中按顺序尝试的 sheet
	ExportCandidates map[string][]string `toml:"export_candidates"`
	// FallbackCandidates 行业未知时尝试的 sheet
	FallbackCandidates []string `toml:"fallback_candidates"`

	ImportIgnored []string `toml:"import_ignored"`
	ExportIgnored []string `toml:"export_ignored"`

	InputSheets    []string           `toml:"input_sheets"`
	TemplateSheets []string           `toml:"template_sheets"`
	FormulaCells   []workbook.CellRef `toml:"formula_cells"`

	// CoverageSkip 衍生列覆盖统计跳过的列
	CoverageSkip       []string `toml:"coverage_skip"`
	CoverageSkipPrefix []string `toml:"coverage_skip_prefix"`
}

// GroupOf sheet/行业名所属分组；未知返回空串
func (t *Tables) GroupOf(category string) string {
	for g, members := range t.Groups {
		for _, m := range members {
			if m == category {
				return g
			}
		}
	}
	return ""
}

// Principal 行业的主指标前缀
func (t *Tables) Principal(category string) string {
	return t.PrincipalMetric[t.GroupOf(category)]
}

// IsTemporalSlice 是否为不带前缀的时间切片列名
func (t *Tables) IsTemporalSlice(field string) bool {
	return contains(t.TemporalSlices, field)
}

// Candidates 行业对应的导出候选 sheet
func (t *Tables) Candidates(industry string) []string {
	if c, ok := t.ExportCandidates[industry]; ok && len(c) > 0 {
		return c
	}
	return t.FallbackCandidates
}

// Validate 检查表格自身的一致性
func (t *Tables) Validate() error {
	if t.KeyHeader == "" {
		return fmt.Errorf("schema: key_header is empty")
	}
	for _, o := range t.Overrides {
		if o.Field == "" || (o.Header == "" && len(o.ByGroup) == 0) {
			return fmt.Errorf("schema: override %q has no target header", o.Field)
		}
		for g := range o.ByGroup {
			if _, ok := t.Groups[g]; !ok {
				return fmt.Errorf("schema: override %q references unknown group %q", o.Field, g)
			}
		}
	}
	for sheet, triples := range t.Derived {
		seen := make(map[string]bool, len(triples))
		for _, tr := range triples {
			if tr.Field == "" || tr.Header == "" || tr.Nth < 1 {
				return fmt.Errorf("schema: derived %s has invalid triple %+v", sheet, tr)
			}
			if seen[tr.Field] {
				return fmt.Errorf("schema: derived %s maps field %q twice", sheet, tr.Field)
			}
			seen[tr.Field] = true
		}
	}
	return nil
}

// Load 读取 TOML 文件覆盖默认表；文件中出现的键整体替换默认值（derived / export_candidates 按 sheet 替换）
func Load(path string) (*Tables, error) {
	t := Default()
	if path == "" {
		return t, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read tables %s: %w", path, err)
	}
	var file Tables
	if err := toml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse tables %s: %w", path, err)
	}
	t.overlay(&file)
	if err := t.Validate(); err != nil {
		return nil, err
	}
	return t, nil
}

func (t *Tables) overlay(f *Tables) {
	if f.KeyHeader != "" {
		t.KeyHeader = f.KeyHeader
	}
	if f.NameHeader != "" {
		t.NameHeader = f.NameHeader
	}
	if f.ScanRows > 0 {
		t.ScanRows = f.ScanRows
	}
	if f.GenericMetric != "" {
		t.GenericMetric = f.GenericMetric
	}
	if f.Groups != nil {
		t.Groups = f.Groups
	}
	if f.PrincipalMetric != nil {
		t.PrincipalMetric = f.PrincipalMetric
	}
	if f.TemporalSlices != nil {
		t.TemporalSlices = f.TemporalSlices
	}
	if f.Overrides != nil {
		t.Overrides = f.Overrides
	}
	for sheet, triples := range f.Derived {
		t.Derived[sheet] = triples
	}
	if f.Categories != nil {
		t.Categories = f.Categories
	}
	for industry, c := range f.ExportCandidates {
		t.ExportCandidates[industry] = c
	}
	if f.FallbackCandidates != nil {
		t.FallbackCandidates = f.FallbackCandidates
	}
	if f.ImportIgnored != nil {
		t.ImportIgnored = f.ImportIgnored
	}
	if f.ExportIgnored != nil {
		t.ExportIgnored = f.ExportIgnored
	}
	if f.InputSheets != nil {
		t.InputSheets = f.InputSheets
	}
	if f.TemplateSheets != nil {
		t.TemplateSheets = f.TemplateSheets
	}
	if f.FormulaCells != nil {
		t.FormulaCells = f.FormulaCells
	}
	if f.CoverageSkip != nil {
		t.CoverageSkip = f.CoverageSkip
	}
	if f.CoverageSkipPrefix != nil {
		t.CoverageSkipPrefix = f.CoverageSkipPrefix
	}
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
