// Package fieldmap 把明细表字段名翻译为数据源 sheet 的表头词汇。
//
// 解析顺序：
//  1. 表头中存在同名列，直接使用；
//  2. 静态别名表（部分别名按行业分组选择表头），以及该行业衍生 sheet 的期望三元组；
//  3. 结构兜底：时间切片列名补上行业主指标前缀，通用“销售额;”前缀替换为行业主指标或去掉后重试；
//  4. 无法解析。无法解析的字段不参与比对，也不算差异。
package fieldmap

import (
	"strings"

	"github.com/HelloAnner/northstar-verify/internal/schema"
	"github.com/HelloAnner/northstar-verify/internal/table"
)

// Step 字段由哪一步解析成功
type Step int

const (
	StepUnresolved Step = iota
	StepExact
	StepOverride
	StepStructural
)

func (s Step) String() string {
	switch s {
	case StepExact:
		return "exact"
	case StepOverride:
		return "override"
	case StepStructural:
		return "structural"
	}
	return "unresolved"
}

// Target 解析结果：数据源表头 (文本, 第 n 次出现)
type Target struct {
	Header string
	Nth    int
	Step   Step
}

// Mapper 字段名解析器；只读，可在多个比对中复用
type Mapper struct {
	tables    *schema.Tables
	overrides map[string]schema.Override
	triples   map[string]map[string]schema.Triple
}

// New 以静态对照表构建解析器
func New(tables *schema.Tables) *Mapper {
	m := &Mapper{
		tables:    tables,
		overrides: make(map[string]schema.Override, len(tables.Overrides)),
		triples:   make(map[string]map[string]schema.Triple, len(tables.Derived)),
	}
	for _, o := range tables.Overrides {
		m.overrides[o.Field] = o
	}
	for sheet, list := range tables.Derived {
		byField := make(map[string]schema.Triple, len(list))
		for _, tr := range list {
			byField[tr.Field] = tr
		}
		m.triples[sheet] = byField
	}
	return m
}

// Resolve 把字段名解析为 idx 中存在的表头；category 为记录的来源表或导出 sheet 名
func (m *Mapper) Resolve(field, category string, idx table.Index) (Target, bool) {
	if t, ok := m.direct(field, category, idx); ok {
		return t, true
	}
	for _, alt := range m.structural(field, category) {
		if t, ok := m.direct(alt, category, idx); ok {
			t.Step = StepStructural
			return t, true
		}
	}
	return Target{}, false
}

// direct 第 1、2 步
func (m *Mapper) direct(field, category string, idx table.Index) (Target, bool) {
	if idx.Has(field) {
		return Target{Header: field, Nth: 1, Step: StepExact}, true
	}
	for _, t := range m.aliases(field, category) {
		if _, ok := idx.Col(t.Header, t.Nth); ok {
			return t, true
		}
	}
	return Target{}, false
}

// aliases 按优先级列出别名候选：静态别名优先，其次衍生 sheet 三元组
func (m *Mapper) aliases(field, category string) []Target {
	var out []Target
	if o, ok := m.overrides[field]; ok {
		header := o.Header
		if h, ok := o.ByGroup[m.tables.GroupOf(category)]; ok && h != "" {
			header = h
		}
		if header != "" {
			out = append(out, Target{Header: header, Nth: nthOrFirst(o.Nth), Step: StepOverride})
		}
	}
	if tr, ok := m.triples[category][field]; ok {
		out = append(out, Target{Header: tr.Header, Nth: nthOrFirst(tr.Nth), Step: StepOverride})
	}
	return out
}

// structural 第 3 步的候选改写
func (m *Mapper) structural(field, category string) []string {
	principal := m.tables.Principal(category)
	var out []string
	if m.tables.IsTemporalSlice(field) && principal != "" {
		out = append(out, principal+";"+field)
	}
	generic := m.tables.GenericMetric + ";"
	if m.tables.GenericMetric != "" && strings.HasPrefix(field, generic) {
		rest := strings.TrimPrefix(field, generic)
		if principal != "" && principal != m.tables.GenericMetric {
			out = append(out, principal+";"+rest)
		}
		// “销售额;本年-本月” 在分行业 sheet 里就是不带前缀的主指标列
		if rest != "" {
			out = append(out, rest)
		}
	}
	return out
}

func nthOrFirst(n int) int {
	if n < 1 {
		return 1
	}
	return n
}
