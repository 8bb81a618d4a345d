package main

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/HelloAnner/northstar-verify/internal/store"
)

var (
	runsDB    string
	runsLimit int
)

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "列出已记录的校验运行",
	RunE:  listRuns,
}

var runsShowCmd = &cobra.Command{
	Use:   "show [id]",
	Short: "打印某次运行的完整报告",
	Args:  cobra.ExactArgs(1),
	RunE:  showRun,
}

func init() {
	runsCmd.PersistentFlags().StringVar(&runsDB, "db", "", "运行历史数据库路径（默认取配置数据目录）")
	runsCmd.Flags().IntVar(&runsLimit, "limit", 20, "最多列出的条数")
	runsCmd.AddCommand(runsShowCmd)
}

func openRunStore() (*store.Store, error) {
	path := runsDB
	if path == "" {
		path = configDBPath()
	}
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("运行历史数据库不存在: %s", path)
	}
	return store.New(path)
}

func listRuns(cmd *cobra.Command, args []string) error {
	st, err := openRunStore()
	if err != nil {
		return err
	}
	defer st.Close()

	runs, err := st.ListRuns(cmd.Context(), runsLimit)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Println("暂无运行记录")
		return nil
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 2, 2, ' ', 0)
	fmt.Fprintln(w, "ID\t时间\t结论\t问题\t导入缺口/差异\t导出缺口/差异\t完整性失败\t输入文件")
	for _, r := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%d/%d\t%d/%d\t%d/%d\t%s\n",
			r.ID, r.CreatedAt.Local().Format("2006-01-02 15:04:05"), r.Status, r.Issues,
			r.ImportGaps, r.ImportDiffs, r.ExportGaps, r.ExportDiffs,
			r.CaseFailed, r.CaseTotal, r.InputFile)
	}
	return w.Flush()
}

func showRun(cmd *cobra.Command, args []string) error {
	st, err := openRunStore()
	if err != nil {
		return err
	}
	defer st.Close()

	rep, err := st.GetRun(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	data, err := json.MarshalIndent(rep, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(data))
	return nil
}
