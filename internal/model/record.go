package model

import "strings"

// 观测记录里的内部属性名（UI 抽取脚本约定）
const (
	AttrCreditCode = "__creditCode"
	AttrName       = "__name"
	AttrIndustry   = "__industry"

	// FieldSourceSheet 记录声明的来源表
	FieldSourceSheet = "来源表"
)

// EntityRecord 单个企业在某一数据源中的一条记录
type EntityRecord struct {
	Key      string         `json:"creditCode"`
	Name     string         `json:"name"`
	Industry string         `json:"industry"`
	Sheet    string         `json:"sheet"`
	Fields   map[string]any `json:"fields"`
}

// NewEntityRecord 从扁平的 field -> value 载荷构建记录
// 内部属性（__creditCode/__name/__industry）与“来源表”会同时提升为结构体字段
func NewEntityRecord(fields map[string]any) EntityRecord {
	r := EntityRecord{Fields: make(map[string]any, len(fields))}
	for k, v := range fields {
		r.Fields[k] = v
	}
	r.Key = textOf(fields[AttrCreditCode])
	r.Name = textOf(fields[AttrName])
	r.Industry = textOf(fields[AttrIndustry])
	r.Sheet = textOf(fields[FieldSourceSheet])
	return r
}

// Get 读取字段原始值
func (r EntityRecord) Get(field string) (any, bool) {
	v, ok := r.Fields[field]
	return v, ok
}

// IsInternalField 以 "__" 开头的字段只用于定位，不参与比对
func IsInternalField(field string) bool {
	return strings.HasPrefix(field, "__")
}

func textOf(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(x)
	default:
		return strings.TrimSpace(formatAny(x))
	}
}

// TabObservation 明细表某个行业 Tab 的展示计数
type TabObservation struct {
	Tab       string `json:"tab"`
	Rows      int    `json:"rows"`
	TotalText string `json:"totalText"`
}
