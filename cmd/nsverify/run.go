package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/HelloAnner/northstar-verify/internal/model"
	"github.com/HelloAnner/northstar-verify/internal/store"
	"github.com/HelloAnner/northstar-verify/internal/util"
	"github.com/HelloAnner/northstar-verify/internal/verify"
)

var (
	runPaths  verify.Paths
	runOut    string
	runDB     string
	runRecord bool
	runOpen   bool
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "执行一次完整校验并写出 report.json",
	Long: `读取输入月报、导出月报与两次明细表抽取结果，执行导入一致性、导出一致性、
明细表完整性、派生字段自洽、模板结构与公式、修改动作落地等检查。

结论为 FAIL 时退出码为 1。

Example:
  nsverify run --input 12月月报（预估）.xlsx --export export.xlsx \
    --before ui_before.json --after ui_after.json --actions actions.json`,
	RunE: runVerify,
}

func init() {
	f := runCmd.Flags()
	f.StringVar(&runPaths.Input, "input", "", "输入月报 Excel（权威数据源）")
	f.StringVar(&runPaths.Export, "export", "", "导出月报 Excel")
	f.StringVar(&runPaths.Before, "before", "", "导入后的明细表抽取（.json / .html）")
	f.StringVar(&runPaths.After, "after", "", "修改后的明细表抽取（.json / .html）")
	f.StringVar(&runPaths.Template, "template", "", "定稿模板 Excel（默认取配置 paths.template_path）")
	f.StringVar(&runPaths.Actions, "actions", "", "修改动作执行结果 JSON")
	f.StringVar(&runPaths.TabCounts, "tab-counts", "", "Tab 计数 JSON")
	f.StringVar(&runOut, "out", "report.json", "报告输出路径")
	f.StringVar(&runDB, "db", "", "运行历史数据库路径")
	f.BoolVar(&runRecord, "record", false, "记录到配置中的运行历史数据库")
	f.BoolVar(&runOpen, "open", false, "完成后在浏览器中打开报告")
	for _, name := range []string{"input", "export", "before", "after"} {
		_ = runCmd.MarkFlagRequired(name)
	}
}

func runVerify(cmd *cobra.Command, args []string) error {
	tables, err := loadTables()
	if err != nil {
		return err
	}
	paths := runPaths
	if paths.Template == "" {
		paths.Template = cfg.Paths.TemplatePath
	}

	in, err := verify.Load(cmd.Context(), paths, tables.FormulaCells)
	if err != nil {
		return err
	}
	for name, e := range map[string]error{"input": in.InputErr, "export": in.ExportErr, "template": in.TemplateErr} {
		if e != nil {
			logger.Warn("workbook unavailable", zap.String("file", name), zap.Error(e))
		}
	}

	engine := verify.NewEngine(tables, cfg.ToleranceOf(), logger)
	if cfg.Tolerance.ConsistencyLimit > 0 {
		engine.ConsistencyLimit = cfg.Tolerance.ConsistencyLimit
	}
	rep := engine.Run(in)

	if err := writeReport(runOut, rep); err != nil {
		return err
	}
	if err := recordRun(cmd, rep, paths); err != nil {
		return err
	}

	printSummary(rep, runOut)
	if runOpen {
		if err := util.OpenBrowserWithFallback(util.FileURL(runOut)); err != nil {
			fmt.Printf("无法自动打开浏览器，请手动查看: %s\n", runOut)
		}
	}
	if rep.Status != model.StatusPass {
		return errVerificationFailed
	}
	return nil
}

func writeReport(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode report: %w", err)
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create report directory: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	return nil
}

func recordRun(cmd *cobra.Command, rep *model.Report, paths verify.Paths) error {
	dbPath := runDB
	if dbPath == "" && runRecord {
		if _, err := ensureDataDir(); err != nil {
			return err
		}
		dbPath = configDBPath()
	}
	if dbPath == "" {
		return nil
	}
	st, err := store.New(dbPath)
	if err != nil {
		return err
	}
	defer st.Close()
	if err := st.SaveRun(cmd.Context(), rep, filepath.Base(paths.Input), filepath.Base(paths.Export)); err != nil {
		return err
	}
	logger.Info("run recorded", zap.String("id", rep.ID), zap.String("db", dbPath))
	return nil
}

func printSummary(rep *model.Report, out string) {
	fmt.Println("==========================================")
	fmt.Printf("  校验结论: %s\n", rep.Status)
	fmt.Println("==========================================")
	fmt.Printf("运行 ID: %s\n", rep.ID)
	fmt.Printf("导入一致性: 缺口 %d，字段差异 %d\n", len(rep.Import.Gaps), len(rep.Import.Mismatches))
	fmt.Printf("导出一致性: 缺口 %d，字段差异 %d\n", len(rep.Export.Gaps), len(rep.Export.Mismatches))
	fmt.Printf("完整性断言: %d/%d 失败\n", rep.CompletenessFailures(), len(rep.Completeness))
	if len(rep.Issues) == 0 {
		fmt.Println("未发现不符合预期项")
	} else {
		fmt.Println("不符合预期项:")
		for _, is := range rep.Issues {
			fmt.Printf("  - %s\n", is)
		}
	}
	fmt.Printf("报告: %s\n", out)
}
