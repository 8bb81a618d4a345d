package table

import (
	"sort"
	"strings"
)

// Index 表头索引：(表头文本, 第 n 次出现) -> 列号（1 开始）
// 同一文本的列号按出现顺序严格递增
type Index struct {
	cols  map[string][]int
	order []string
}

// BuildIndex 从左到右扫描表头行，空白表头跳过，文本去首尾空格
func BuildIndex(headers []string) Index {
	idx := Index{cols: make(map[string][]int)}
	for i, h := range headers {
		h = strings.TrimSpace(h)
		if h == "" {
			continue
		}
		if _, ok := idx.cols[h]; !ok {
			idx.order = append(idx.order, h)
		}
		idx.cols[h] = append(idx.cols[h], i+1)
	}
	return idx
}

// Col 第 nth 次出现（1 开始）的列号
func (idx Index) Col(name string, nth int) (int, bool) {
	cols := idx.cols[name]
	if nth < 1 || nth > len(cols) {
		return 0, false
	}
	return cols[nth-1], true
}

// First 第一次出现的列号
func (idx Index) First(name string) (int, bool) {
	return idx.Col(name, 1)
}

// Has 表头文本是否存在
func (idx Index) Has(name string) bool {
	return len(idx.cols[name]) > 0
}

// Count 表头文本出现次数
func (idx Index) Count(name string) int {
	return len(idx.cols[name])
}

// Empty 索引为空（表头未识别）
func (idx Index) Empty() bool {
	return len(idx.cols) == 0
}

// Headers 去重后的表头文本，按首次出现顺序
func (idx Index) Headers() []string {
	out := make([]string, len(idx.order))
	copy(out, idx.order)
	return out
}

// Column 表头索引中的一列
type Column struct {
	Header string
	Nth    int
	Col    int
}

// Columns 按列顺序展开 (表头, 第 n 次, 列号)
func (idx Index) Columns() []Column {
	out := make([]Column, 0, len(idx.cols))
	for _, h := range idx.order {
		for i, c := range idx.cols[h] {
			out = append(out, Column{Header: h, Nth: i + 1, Col: c})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Col < out[j].Col })
	return out
}
