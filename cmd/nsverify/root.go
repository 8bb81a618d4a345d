package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/HelloAnner/northstar-verify/internal/config"
	"github.com/HelloAnner/northstar-verify/internal/schema"
)

// errVerificationFailed 校验结论为 FAIL；进程以退出码 1 结束，不再额外打印
var errVerificationFailed = errors.New("verification failed")

var (
	// Global flags
	verbose    bool
	configPath string
	tablesPath string
	envFiles   []string

	cfg    *config.AppConfig
	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "nsverify",
	Short: "Northstar 月报导入/导出数据一致性校验",
	Long: `nsverify 以输入月报 Excel 为权威数据源，校验明细表（导入后/修改后）与导出月报
在企业覆盖与字段取值上是否一致，并对照定稿模板检查导出结构与关键公式。`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := config.LoadDotEnv(envFiles...); err != nil {
			return err
		}

		zc := zap.NewProductionConfig()
		if verbose {
			zc.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		var err error
		logger, err = zc.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}

		cfg, err = config.LoadConfig(configPath)
		if err != nil {
			logger.Warn("加载配置失败，使用默认配置", zap.Error(err))
			cfg = config.DefaultConfig()
		}
		if tablesPath != "" {
			cfg.Paths.TablesPath = tablesPath
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "输出调试日志")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "配置文件路径（默认为可执行文件同目录下的 config.toml）")
	rootCmd.PersistentFlags().StringVar(&tablesPath, "tables", "", "覆盖内置对照表的 TOML 文件")
	rootCmd.PersistentFlags().StringSliceVar(&envFiles, "env-file", []string{".env"}, "启动时加载的 .env 文件")

	rootCmd.AddCommand(runCmd, templateCmd, serveCmd, runsCmd)
}

// loadTables 按配置加载对照表
func loadTables() (*schema.Tables, error) {
	tables, err := cfg.Tables()
	if err != nil {
		return nil, fmt.Errorf("failed to load tables: %w", err)
	}
	return tables, nil
}
