package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/HelloAnner/northstar-verify/internal/config"
	"github.com/HelloAnner/northstar-verify/internal/server"
	"github.com/HelloAnner/northstar-verify/internal/store"
	"github.com/HelloAnner/northstar-verify/internal/util"
)

var (
	servePort    int
	serveDev     bool
	serveDataDir string
	serveOpen    bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "启动 HTTP 校验服务",
	RunE:  runServe,
}

func init() {
	f := serveCmd.Flags()
	f.IntVar(&servePort, "port", 0, "服务端口 (config.toml 优先；仅当未显式配置 port 时生效)")
	f.BoolVar(&serveDev, "dev", false, "开发模式")
	f.StringVar(&serveDataDir, "data-dir", "", "数据目录 (覆盖配置文件)")
	f.BoolVar(&serveOpen, "open", false, "启动后在浏览器中打开状态页")
}

func runServe(cmd *cobra.Command, args []string) error {
	fmt.Println("==========================================")
	fmt.Println("  Northstar Verify - 月报数据一致性校验服务")
	fmt.Println("==========================================")

	_, info, err := config.LoadConfigWithInfo(configPath)
	if err != nil {
		info = config.LoadConfigInfo{}
	}
	// 命令行参数覆盖配置
	if servePort > 0 && !info.PortSpecified {
		cfg.Server.Port = servePort
	}
	if serveDev {
		cfg.Server.DevMode = true
	}
	if serveDataDir != "" {
		cfg.Data.DataDir = serveDataDir
	}

	dataDir, err := ensureDataDir()
	if err != nil {
		return err
	}
	fmt.Printf("数据目录: %s\n", dataDir)

	tables, err := loadTables()
	if err != nil {
		return err
	}
	st, err := store.New(configDBPath())
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer st.Close()

	srv := server.NewServer(cfg, st, tables, logger)
	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	url := fmt.Sprintf("http://localhost:%d/api/status", cfg.Server.Port)

	errCh := make(chan error, 1)
	go func() {
		fmt.Printf("服务启动中，监听端口 %d ...\n", cfg.Server.Port)
		errCh <- srv.Run(addr)
	}()

	if serveOpen {
		if err := util.OpenBrowserWithFallback(url); err != nil {
			fmt.Printf("无法自动打开浏览器，请手动访问: %s\n", url)
		}
	}
	fmt.Println("\n按 Ctrl+C 停止服务...")

	// 等待信号
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-errCh:
		return fmt.Errorf("服务启动失败: %w", err)
	case sig := <-quit:
		logger.Info("shutting down", zap.String("signal", sig.String()))
	}
	fmt.Println("\n正在关闭服务...")
	return nil
}

func ensureDataDir() (string, error) {
	dir, err := config.EnsureDataDir(cfg)
	if err != nil {
		return "", fmt.Errorf("创建数据目录失败: %w", err)
	}
	return dir, nil
}

func configDBPath() string {
	return config.DBPath(cfg)
}
