package workbook_test

import (
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/HelloAnner/northstar-verify/internal/workbook"
)

func TestFromExcelize_MaterializesRowsAndFormulas(t *testing.T) {
	f := excelize.NewFile()
	t.Cleanup(func() { _ = f.Close() })

	if _, err := f.NewSheet("批发"); err != nil {
		t.Fatalf("new sheet: %v", err)
	}
	_ = f.DeleteSheet("Sheet1")

	header := []interface{}{"统一社会信用代码", "单位详细名称", "2025年12月销售额"}
	row := []interface{}{"914401007RDD76M0RF", "测试商贸", 1000}
	if err := f.SetSheetRow("批发", "A1", &header); err != nil {
		t.Fatalf("SetSheetRow: %v", err)
	}
	if err := f.SetSheetRow("批发", "A2", &row); err != nil {
		t.Fatalf("SetSheetRow: %v", err)
	}
	if err := f.SetCellFormula("批发", "D2", "C2*2"); err != nil {
		t.Fatalf("SetCellFormula: %v", err)
	}

	wb, err := workbook.FromExcelize(f, workbook.Options{
		Formulas:     true,
		FormulaCells: []workbook.CellRef{{Sheet: "批发", Cell: "D2"}, {Sheet: "不存在", Cell: "A1"}},
	})
	if err != nil {
		t.Fatalf("FromExcelize: %v", err)
	}

	if got := wb.SheetNames(); len(got) != 1 || got[0] != "批发" {
		t.Fatalf("sheet names=%v", got)
	}
	s, ok := wb.Sheet("批发")
	if !ok {
		t.Fatalf("sheet 批发 missing")
	}
	if got := s.Cell(2, 1); got != "914401007RDD76M0RF" {
		t.Fatalf("A2=%q", got)
	}
	if got := s.Cell(2, 3); got != "1000" {
		t.Fatalf("C2=%q, want raw 1000", got)
	}
	if got := s.CellAt("B2"); got != "测试商贸" {
		t.Fatalf("B2=%q", got)
	}
	if formula, ok := s.Formula("d2"); !ok || formula != "C2*2" {
		t.Fatalf("D2 formula=%q ok=%v", formula, ok)
	}
	if _, ok := s.Formula("C2"); ok {
		t.Fatalf("C2 should not be a formula")
	}
}

func TestSheet_OutOfRangeIsBlank(t *testing.T) {
	t.Parallel()

	wb := workbook.FromRows([]string{"零售"}, map[string][][]string{
		"零售": {{"a", "b"}, {"c"}},
	})
	s, _ := wb.Sheet("零售")

	if s.MaxRow() != 2 || s.MaxCol() != 2 {
		t.Fatalf("dims=%dx%d", s.MaxRow(), s.MaxCol())
	}
	for _, rc := range [][2]int{{0, 1}, {3, 1}, {2, 2}, {1, 0}} {
		if got := s.Cell(rc[0], rc[1]); got != "" {
			t.Fatalf("Cell(%d,%d)=%q, want blank", rc[0], rc[1], got)
		}
	}
	if wb.HasSheet("批发") {
		t.Fatalf("unexpected sheet")
	}

	var nilWB *workbook.Workbook
	if nilWB.HasSheet("零售") || len(nilWB.SheetNames()) != 0 {
		t.Fatalf("nil workbook should be empty")
	}
}

func TestSheet_SetFormulaStripsEquals(t *testing.T) {
	t.Parallel()

	wb := workbook.New()
	s := wb.AddSheet("汇总表（定）", nil)
	s.SetFormula("D4", "=SUM(D5:D9)")

	if f, ok := s.Formula("D4"); !ok || f != "SUM(D5:D9)" {
		t.Fatalf("formula=%q ok=%v", f, ok)
	}
	s.SetFormula("D4", "")
	if _, ok := s.Formula("D4"); ok {
		t.Fatalf("formula should be cleared")
	}
}
