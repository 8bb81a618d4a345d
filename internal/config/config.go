package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"

	"github.com/HelloAnner/northstar-verify/internal/schema"
	"github.com/HelloAnner/northstar-verify/internal/value"
)

// AppConfig 应用配置
type AppConfig struct {
	Server    ServerConfig    `toml:"server"`
	Data      DataConfig      `toml:"data"`
	Tolerance ToleranceConfig `toml:"tolerance"`
	Sheet     SheetConfig     `toml:"sheet"`
	Paths     PathsConfig     `toml:"paths"`
}

// ServerConfig 服务器配置
type ServerConfig struct {
	Port        int   `toml:"port"`
	DevMode     bool  `toml:"dev_mode"`
	MaxUploadMB int64 `toml:"max_upload_mb"`
}

// DataConfig 数据配置
type DataConfig struct {
	DataDir string `toml:"data_dir"`
	DBFile  string `toml:"db_file"`
}

// ToleranceConfig 比较容差
type ToleranceConfig struct {
	Rate    float64 `toml:"rate"`
	Default float64 `toml:"default"`
	// ConsistencyLimit 派生字段自洽检查的记录上限
	ConsistencyLimit int `toml:"consistency_limit"`
}

// SheetConfig 表头约定
type SheetConfig struct {
	KeyHeader  string `toml:"key_header"`
	NameHeader string `toml:"name_header"`
	ScanRows   int    `toml:"scan_rows"`
}

// PathsConfig 外部文件
type PathsConfig struct {
	// TemplatePath 定稿模板 xlsx
	TemplatePath string `toml:"template_path"`
	// TablesPath 覆盖内置对照表的 TOML
	TablesPath string `toml:"tables_path"`
}

// LoadConfigInfo 配置加载元信息
type LoadConfigInfo struct {
	Path          string
	FileFound     bool
	PortSpecified bool
}

// DefaultConfig 默认配置
func DefaultConfig() *AppConfig {
	tol := value.DefaultTolerance()
	return &AppConfig{
		Server: ServerConfig{
			Port:        20262,
			DevMode:     false,
			MaxUploadMB: 64,
		},
		Data: DataConfig{
			DataDir: "data",
			DBFile:  "verify.db",
		},
		Tolerance: ToleranceConfig{
			Rate:             tol.Rate,
			Default:          tol.Default,
			ConsistencyLimit: 2000,
		},
		Sheet: SheetConfig{
			KeyHeader:  "统一社会信用代码",
			NameHeader: "单位详细名称",
			ScanRows:   10,
		},
	}
}

func isPortSpecifiedInToml(data []byte) bool {
	var raw map[string]any
	if err := toml.Unmarshal(data, &raw); err != nil {
		return false
	}
	server, ok := raw["server"].(map[string]any)
	if !ok {
		return false
	}
	_, ok = server["port"]
	return ok
}

// GetExeDir 获取可执行文件所在目录
func GetExeDir() (string, error) {
	exe, err := os.Executable()
	if err != nil {
		return "", err
	}
	return filepath.Dir(exe), nil
}

func exeDir() string {
	dir, err := GetExeDir()
	if err != nil || dir == "" {
		// 无法获取可执行文件目录，使用当前目录
		return "."
	}
	return dir
}

// DefaultPath 可执行文件同目录下的 config.toml
func DefaultPath() string {
	return filepath.Join(exeDir(), "config.toml")
}

// LoadDotEnv 加载 .env 文件到环境变量；文件不存在时忽略，已有的环境变量不会被覆盖
func LoadDotEnv(paths ...string) error {
	for _, p := range paths {
		if _, err := os.Stat(p); err != nil {
			continue
		}
		if err := godotenv.Load(p); err != nil {
			return fmt.Errorf("failed to load %s: %w", p, err)
		}
	}
	return nil
}

// LoadConfigWithInfo 从 path 加载配置并返回元信息；path 为空时使用 DefaultPath
// 文件不存在时使用默认配置；两种情况都会应用环境变量覆盖
func LoadConfigWithInfo(path string) (*AppConfig, LoadConfigInfo, error) {
	if path == "" {
		path = DefaultPath()
	}
	info := LoadConfigInfo{Path: path}
	config := DefaultConfig()

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return nil, info, err
	default:
		info.FileFound = true
		info.PortSpecified = isPortSpecifiedInToml(data)
		if err := toml.Unmarshal(data, config); err != nil {
			return nil, info, fmt.Errorf("failed to parse %s: %w", path, err)
		}
	}

	if err := applyEnv(config); err != nil {
		return nil, info, err
	}
	return config, info, nil
}

// LoadConfig 加载配置
func LoadConfig(path string) (*AppConfig, error) {
	config, _, err := LoadConfigWithInfo(path)
	return config, err
}

// applyEnv 环境变量覆盖（用于 E2E / 本地运行）
func applyEnv(config *AppConfig) error {
	if v := os.Getenv("NSVERIFY_PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid NSVERIFY_PORT %q: %w", v, err)
		}
		config.Server.Port = port
	}
	if v := os.Getenv("NSVERIFY_DATA_DIR"); v != "" {
		config.Data.DataDir = v
	}
	if v := os.Getenv("NSVERIFY_TABLES"); v != "" {
		config.Paths.TablesPath = v
	}
	if v := os.Getenv("NSVERIFY_TEMPLATE_XLSX"); v != "" {
		config.Paths.TemplatePath = v
	}
	if config.Paths.TemplatePath == "" {
		if v := os.Getenv("NS_MONTH_REPORT_TEMPLATE_XLSX"); v != "" {
			config.Paths.TemplatePath = v
		}
	}
	for name, dst := range map[string]*float64{
		"NSVERIFY_RATE_TOLERANCE":    &config.Tolerance.Rate,
		"NSVERIFY_DEFAULT_TOLERANCE": &config.Tolerance.Default,
	} {
		v := os.Getenv(name)
		if v == "" {
			continue
		}
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("invalid %s %q: %w", name, v, err)
		}
		*dst = f
	}
	return nil
}

// SaveConfig 保存配置到 path
func SaveConfig(config *AppConfig, path string) error {
	if path == "" {
		path = DefaultPath()
	}
	data, err := toml.Marshal(config)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// ToleranceOf 比较容差
func (c *AppConfig) ToleranceOf() value.Tolerance {
	return value.Tolerance{Rate: c.Tolerance.Rate, Default: c.Tolerance.Default}
}

// Tables 内置对照表，按配置叠加外部 TOML 与表头约定
func (c *AppConfig) Tables() (*schema.Tables, error) {
	tables, err := schema.Load(c.Paths.TablesPath)
	if err != nil {
		return nil, err
	}
	if c.Sheet.KeyHeader != "" {
		tables.KeyHeader = c.Sheet.KeyHeader
	}
	if c.Sheet.NameHeader != "" {
		tables.NameHeader = c.Sheet.NameHeader
	}
	if c.Sheet.ScanRows > 0 {
		tables.ScanRows = c.Sheet.ScanRows
	}
	if err := tables.Validate(); err != nil {
		return nil, err
	}
	return tables, nil
}

// EnsureDataDir 确保数据目录存在；相对路径以可执行文件目录为基准
func EnsureDataDir(config *AppConfig) (string, error) {
	dataDir := config.Data.DataDir
	if !filepath.IsAbs(dataDir) {
		dataDir = filepath.Join(exeDir(), dataDir)
	}
	for _, dir := range []string{dataDir, filepath.Join(dataDir, "uploads"), filepath.Join(dataDir, "reports")} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return "", err
		}
	}
	return dataDir, nil
}

// GetDataPath 获取数据文件路径
func GetDataPath(config *AppConfig, subdir, filename string) string {
	dataDir := config.Data.DataDir
	if !filepath.IsAbs(dataDir) {
		dataDir = filepath.Join(exeDir(), dataDir)
	}
	return filepath.Join(dataDir, subdir, filename)
}

// DBPath 运行历史数据库路径
func DBPath(config *AppConfig) string {
	return GetDataPath(config, "", config.Data.DBFile)
}
