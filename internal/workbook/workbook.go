// Package workbook 把 xlsx 文件一次性读入内存快照，比对代码只读快照，不再触碰文件。
package workbook

import (
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"
)

// CellRef sheet 内的单元格地址（A1 形式）
type CellRef struct {
	Sheet string `toml:"sheet" json:"sheet"`
	Cell  string `toml:"cell" json:"cell"`
}

// Options 加载选项
type Options struct {
	// Formulas 为 true 时额外读取有值单元格的公式文本
	Formulas bool
	// FormulaCells 无论缓存值是否为空都要读取公式的单元格
	FormulaCells []CellRef
}

// Workbook 内存中的工作簿快照
type Workbook struct {
	names  []string
	sheets map[string]*Sheet
}

// New 创建空工作簿（测试与合成数据使用）
func New() *Workbook {
	return &Workbook{sheets: make(map[string]*Sheet)}
}

// FromRows 以 sheet 顺序 + 行数据构建工作簿
func FromRows(order []string, rows map[string][][]string) *Workbook {
	wb := New()
	for _, name := range order {
		wb.AddSheet(name, rows[name])
	}
	return wb
}

// AddSheet 追加 sheet；同名 sheet 会被替换但保留原顺序
func (wb *Workbook) AddSheet(name string, rows [][]string) *Sheet {
	s := &Sheet{Name: name, rows: rows, formulas: make(map[string]string)}
	if _, ok := wb.sheets[name]; !ok {
		wb.names = append(wb.names, name)
	}
	wb.sheets[name] = s
	return s
}

// SheetNames 按工作簿顺序返回 sheet 名
func (wb *Workbook) SheetNames() []string {
	if wb == nil {
		return nil
	}
	out := make([]string, len(wb.names))
	copy(out, wb.names)
	return out
}

// Sheet 获取 sheet
func (wb *Workbook) Sheet(name string) (*Sheet, bool) {
	if wb == nil {
		return nil, false
	}
	s, ok := wb.sheets[name]
	return s, ok
}

// HasSheet sheet 是否存在
func (wb *Workbook) HasSheet(name string) bool {
	_, ok := wb.Sheet(name)
	return ok
}

// Open 从文件加载
func Open(path string, opts Options) (*Workbook, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open excel %s: %w", path, err)
	}
	defer f.Close()
	return FromExcelize(f, opts)
}

// OpenReader 从 reader 加载（HTTP 上传）
func OpenReader(r io.Reader, opts Options) (*Workbook, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open excel: %w", err)
	}
	defer f.Close()
	return FromExcelize(f, opts)
}

// FromExcelize 把已打开的 excelize 文件物化为快照，调用方负责关闭 f
func FromExcelize(f *excelize.File, opts Options) (*Workbook, error) {
	if f == nil {
		return nil, fmt.Errorf("workbook is nil")
	}
	wb := New()
	for _, name := range f.GetSheetList() {
		rows, err := f.GetRows(name, excelize.Options{RawCellValue: true})
		if err != nil {
			return nil, fmt.Errorf("failed to read sheet %s: %w", name, err)
		}
		s := wb.AddSheet(name, rows)
		if opts.Formulas {
			if err := s.loadFormulas(f); err != nil {
				return nil, err
			}
		}
	}
	for _, ref := range opts.FormulaCells {
		s, ok := wb.Sheet(ref.Sheet)
		if !ok {
			continue
		}
		formula, err := f.GetCellFormula(ref.Sheet, ref.Cell)
		if err != nil {
			return nil, fmt.Errorf("failed to read formula %s!%s: %w", ref.Sheet, ref.Cell, err)
		}
		if formula != "" {
			s.formulas[strings.ToUpper(ref.Cell)] = formula
		}
	}
	return wb, nil
}
