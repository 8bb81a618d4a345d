package main

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/HelloAnner/northstar-verify/internal/template"
	"github.com/HelloAnner/northstar-verify/internal/workbook"
)

var (
	tplPath    string
	tplExport  string
	tplOutPath string
)

var templateCmd = &cobra.Command{
	Use:   "template",
	Short: "只检查导出月报对标定稿模板的结构与关键公式",
	RunE:  runTemplate,
}

func init() {
	f := templateCmd.Flags()
	f.StringVar(&tplPath, "template", "", "定稿模板 Excel（默认取配置 paths.template_path）")
	f.StringVar(&tplExport, "export", "", "导出月报 Excel")
	f.StringVar(&tplOutPath, "out", "", "检查结果输出路径（默认打印到标准输出）")
	_ = templateCmd.MarkFlagRequired("export")
}

func runTemplate(cmd *cobra.Command, args []string) error {
	tables, err := loadTables()
	if err != nil {
		return err
	}
	path := tplPath
	if path == "" {
		path = cfg.Paths.TemplatePath
	}
	if path == "" {
		return errors.New("未指定定稿模板：使用 --template 或配置 paths.template_path / NS_MONTH_REPORT_TEMPLATE_XLSX")
	}

	opts := workbook.Options{Formulas: true, FormulaCells: tables.FormulaCells}
	tpl, err := workbook.Open(path, opts)
	if err != nil {
		return err
	}
	exp, err := workbook.Open(tplExport, opts)
	if err != nil {
		return err
	}

	rep := template.New(tables).Check(tpl, exp)
	if tplOutPath != "" {
		if err := writeReport(tplOutPath, rep); err != nil {
			return err
		}
	} else {
		data, err := json.MarshalIndent(rep, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(data))
	}

	if rep.Failures() > 0 || rep.FormulaFailures() > 0 {
		fmt.Printf("模板结构不一致 %d 项，公式不一致 %d 项\n", rep.Failures(), rep.FormulaFailures())
		return errVerificationFailed
	}
	return nil
}
