// Package server 提供校验服务的 HTTP 接口：上传输入文件执行一次校验，并查询运行历史。
package server

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/HelloAnner/northstar-verify/internal/config"
	"github.com/HelloAnner/northstar-verify/internal/schema"
	"github.com/HelloAnner/northstar-verify/internal/store"
	"github.com/HelloAnner/northstar-verify/internal/verify"
)

// Server HTTP服务器
type Server struct {
	router  *gin.Engine
	handler *Handler
}

// NewServer 创建服务器；st 为 nil 时不记录运行历史
func NewServer(cfg *config.AppConfig, st *store.Store, tables *schema.Tables, log *zap.Logger) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	if !cfg.Server.DevMode {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := verify.NewEngine(tables, cfg.ToleranceOf(), log)
	if cfg.Tolerance.ConsistencyLimit > 0 {
		engine.ConsistencyLimit = cfg.Tolerance.ConsistencyLimit
	}

	s := &Server{
		router: gin.New(),
		handler: NewHandler(st, engine, tables, Options{
			TemplatePath:   cfg.Paths.TemplatePath,
			UploadDir:      config.GetDataPath(cfg, "uploads", ""),
			MaxUploadBytes: cfg.Server.MaxUploadMB << 20,
		}, log),
	}
	s.setupRoutes(log)
	return s
}

// setupRoutes 设置路由
func (s *Server) setupRoutes(log *zap.Logger) {
	s.router.Use(gin.Recovery(), requestLogger(log.Named("http")))

	// CORS
	s.router.Use(func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	})

	api := s.router.Group("/api")
	s.handler.RegisterRoutes(api)
}

func requestLogger(log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.Debug("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)))
	}
}

// Run 启动服务器
func (s *Server) Run(addr string) error {
	return s.router.Run(addr)
}

// Handler 底层 http.Handler（用于测试）
func (s *Server) Handler() http.Handler {
	return s.router
}
