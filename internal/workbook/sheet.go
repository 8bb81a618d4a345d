package workbook

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"
)

// Sheet 行优先的单元格文本网格；行列均从 1 开始
type Sheet struct {
	Name     string
	rows     [][]string
	formulas map[string]string
}

// MaxRow 最后一行的行号
func (s *Sheet) MaxRow() int {
	return len(s.rows)
}

// MaxCol 所有行中最宽的列数
func (s *Sheet) MaxCol() int {
	n := 0
	for _, r := range s.rows {
		if len(r) > n {
			n = len(r)
		}
	}
	return n
}

// Cell 读取单元格文本；越界返回空串
func (s *Sheet) Cell(row, col int) string {
	if row < 1 || row > len(s.rows) {
		return ""
	}
	r := s.rows[row-1]
	if col < 1 || col > len(r) {
		return ""
	}
	return r[col-1]
}

// Row 读取整行（1 开始），返回副本
func (s *Sheet) Row(row int) []string {
	if row < 1 || row > len(s.rows) {
		return nil
	}
	out := make([]string, len(s.rows[row-1]))
	copy(out, s.rows[row-1])
	return out
}

// CellAt 以 A1 地址读取单元格文本
func (s *Sheet) CellAt(axis string) string {
	col, row, err := excelize.CellNameToCoordinates(axis)
	if err != nil {
		return ""
	}
	return s.Cell(row, col)
}

// Formula 读取单元格公式（不含前导 "="）；ok=false 表示该单元格不是公式
func (s *Sheet) Formula(axis string) (string, bool) {
	f, ok := s.formulas[strings.ToUpper(axis)]
	return f, ok && f != ""
}

// SetFormula 写入公式（测试与合成数据使用）
func (s *Sheet) SetFormula(axis, formula string) {
	formula = strings.TrimPrefix(strings.TrimSpace(formula), "=")
	if formula == "" {
		delete(s.formulas, strings.ToUpper(axis))
		return
	}
	s.formulas[strings.ToUpper(axis)] = formula
}

func (s *Sheet) loadFormulas(f *excelize.File) error {
	for ri, r := range s.rows {
		for ci, v := range r {
			if v == "" {
				continue
			}
			axis, err := excelize.CoordinatesToCellName(ci+1, ri+1)
			if err != nil {
				return err
			}
			formula, err := f.GetCellFormula(s.Name, axis)
			if err != nil {
				return fmt.Errorf("failed to read formula %s!%s: %w", s.Name, axis, err)
			}
			if formula != "" {
				s.formulas[axis] = formula
			}
		}
	}
	return nil
}
