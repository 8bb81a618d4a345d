// Package table 定位 sheet 表头行、建立表头索引，并按统一社会信用代码抽取数据行。
package table

import (
	"regexp"
	"strings"

	"github.com/HelloAnner/northstar-verify/internal/workbook"
)

const (
	// DefaultKeyHeader 主键列表头
	DefaultKeyHeader = "统一社会信用代码"
	// DefaultNameHeader 企业名称列表头
	DefaultNameHeader = "单位详细名称"
	// DefaultScanRows 表头行最多在前 N 行中查找
	DefaultScanRows = 10

	// 表头行识别时每行最多拼接的列数
	headerScanCols = 80
)

var entityKeyRe = regexp.MustCompile(`^[0-9A-Z]{18}$`)

// IsEntityKey 是否为合法的统一社会信用代码（18 位，数字 + 大写字母）
func IsEntityKey(v string) bool {
	return entityKeyRe.MatchString(NormalizeKey(v))
}

// NormalizeKey 去空格并转大写
func NormalizeKey(v string) string {
	return strings.ToUpper(strings.TrimSpace(v))
}

// Options 表头识别选项
type Options struct {
	KeyHeader string
	ScanRows  int
	// FixedHeaderRow > 0 时不做识别，直接使用该行作为表头（衍生 sheet 约定表头在第 1 行）
	FixedHeaderRow int
}

func (o Options) withDefaults() Options {
	if o.KeyHeader == "" {
		o.KeyHeader = DefaultKeyHeader
	}
	if o.ScanRows <= 0 {
		o.ScanRows = DefaultScanRows
	}
	return o
}

// FindHeaderRow 在前 scanRows 行中查找包含主键表头文本的行；未找到返回 0
func FindHeaderRow(s *workbook.Sheet, keyHeader string, scanRows int) int {
	if s == nil {
		return 0
	}
	if keyHeader == "" {
		keyHeader = DefaultKeyHeader
	}
	if scanRows <= 0 {
		scanRows = DefaultScanRows
	}
	maxCol := s.MaxCol()
	if maxCol > headerScanCols {
		maxCol = headerScanCols
	}
	for r := 1; r <= scanRows && r <= s.MaxRow(); r++ {
		parts := make([]string, 0, maxCol)
		for c := 1; c <= maxCol; c++ {
			if v := s.Cell(r, c); v != "" {
				parts = append(parts, v)
			}
		}
		if strings.Contains(strings.Join(parts, " "), keyHeader) {
			return r
		}
	}
	return 0
}

// Table 以主键定位数据行的 sheet 视图
type Table struct {
	Sheet     *workbook.Sheet
	HeaderRow int
	Index     Index
	KeyCol    int

	rows  map[string]int
	order []string
}

// Extract 识别表头并抽取合法主键行
// ok=false 表示 sheet 不可用（无表头行或无主键列），调用方应把相关记录全部记为覆盖缺口
func Extract(s *workbook.Sheet, opts Options) (*Table, bool) {
	if s == nil {
		return nil, false
	}
	opts = opts.withDefaults()

	headerRow := opts.FixedHeaderRow
	if headerRow <= 0 {
		headerRow = FindHeaderRow(s, opts.KeyHeader, opts.ScanRows)
	}
	if headerRow <= 0 || headerRow > s.MaxRow() {
		return nil, false
	}

	idx := BuildIndex(s.Row(headerRow))
	if idx.Empty() {
		return nil, false
	}
	keyCol, ok := idx.First(opts.KeyHeader)
	if !ok {
		return nil, false
	}

	t := &Table{
		Sheet:     s,
		HeaderRow: headerRow,
		Index:     idx,
		KeyCol:    keyCol,
		rows:      make(map[string]int),
	}
	for r := headerRow + 1; r <= s.MaxRow(); r++ {
		raw := s.Cell(r, keyCol)
		if !IsEntityKey(raw) {
			continue
		}
		key := NormalizeKey(raw)
		if _, seen := t.rows[key]; !seen {
			t.order = append(t.order, key)
		}
		// 重复主键：后出现的行覆盖先出现的行
		t.rows[key] = r
	}
	return t, true
}

// Keys 主键列表（首次出现顺序）
func (t *Table) Keys() []string {
	out := make([]string, len(t.order))
	copy(out, t.order)
	return out
}

// Len 合法主键行数
func (t *Table) Len() int {
	return len(t.order)
}

// Row 主键所在行号
func (t *Table) Row(key string) (int, bool) {
	r, ok := t.rows[NormalizeKey(key)]
	return r, ok
}

// Has 主键是否存在
func (t *Table) Has(key string) bool {
	_, ok := t.Row(key)
	return ok
}

// ValueAt 主键行的第 col 列
func (t *Table) ValueAt(key string, col int) (string, bool) {
	r, ok := t.Row(key)
	if !ok || col <= 0 {
		return "", false
	}
	return t.Sheet.Cell(r, col), true
}

// Value 主键行的 (表头, 第 nth 次出现) 单元格
func (t *Table) Value(key, header string, nth int) (string, bool) {
	col, ok := t.Index.Col(header, nth)
	if !ok {
		return "", false
	}
	return t.ValueAt(key, col)
}

// IndexWorkbook 对工作簿中每个可识别的 sheet 建立 Table
func IndexWorkbook(wb *workbook.Workbook, opts Options) map[string]*Table {
	out := make(map[string]*Table)
	for _, name := range wb.SheetNames() {
		s, _ := wb.Sheet(name)
		if t, ok := Extract(s, opts); ok {
			out[name] = t
		}
	}
	return out
}
