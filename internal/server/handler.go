package server

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/HelloAnner/northstar-verify/internal/schema"
	"github.com/HelloAnner/northstar-verify/internal/store"
	"github.com/HelloAnner/northstar-verify/internal/verify"
)

// 业务错误码
const (
	codeBadRequest   = 1001
	codeNotFound     = 4004
	codeNoStore      = 5001
	codeInternal     = 5002
	defaultRunsLimit = 50
)

// Options 处理器选项
type Options struct {
	// TemplatePath 未上传模板时使用的定稿模板
	TemplatePath string
	// UploadDir 上传文件的临时目录；为空时使用系统临时目录
	UploadDir      string
	MaxUploadBytes int64
}

// Handler API 处理器
type Handler struct {
	store   *store.Store
	engine  *verify.Engine
	tables  *schema.Tables
	opts    Options
	log     *zap.Logger
	started time.Time
}

// NewHandler 创建 API 处理器
func NewHandler(st *store.Store, engine *verify.Engine, tables *schema.Tables, opts Options, log *zap.Logger) *Handler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Handler{
		store:   st,
		engine:  engine,
		tables:  tables,
		opts:    opts,
		log:     log.Named("api"),
		started: time.Now(),
	}
}

// RegisterRoutes 注册路由
func (h *Handler) RegisterRoutes(router *gin.RouterGroup) {
	// 服务状态
	router.GET("/status", h.GetStatus)
	// 执行校验
	router.POST("/verify", h.Verify)
	// 运行历史
	router.GET("/runs", h.ListRuns)
	router.GET("/runs/:id", h.GetRun)
}

// Response 通用响应
type Response struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

func success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{
		Code:    0,
		Message: "success",
		Data:    data,
	})
}

func errorResponse(c *gin.Context, code int, message string) {
	c.JSON(http.StatusOK, Response{
		Code:    code,
		Message: message,
	})
}

// StatusResponse 服务状态
type StatusResponse struct {
	StartedAt      time.Time `json:"startedAt"`
	HistoryEnabled bool      `json:"historyEnabled"`
	TemplatePath   string    `json:"templatePath"`
	LastRunID      string    `json:"lastRunId"`
	InputSheets    int       `json:"inputSheets"`
	TemplateSheets int       `json:"templateSheets"`
}

// GetStatus 获取服务状态
// GET /api/status
func (h *Handler) GetStatus(c *gin.Context) {
	resp := StatusResponse{
		StartedAt:      h.started,
		HistoryEnabled: h.store != nil,
		TemplatePath:   h.opts.TemplatePath,
		InputSheets:    len(h.tables.InputSheets),
		TemplateSheets: len(h.tables.TemplateSheets),
	}
	if h.store != nil {
		id, err := h.store.LastRunID(c.Request.Context())
		if err != nil {
			h.log.Warn("failed to read last run id", zap.Error(err))
		}
		resp.LastRunID = id
	}
	success(c, resp)
}

// ListRuns 运行历史
// GET /api/runs?limit=50
func (h *Handler) ListRuns(c *gin.Context) {
	if h.store == nil {
		errorResponse(c, codeNoStore, "运行历史不可用")
		return
	}
	limit, err := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(defaultRunsLimit)))
	if err != nil || limit < 0 {
		errorResponse(c, codeBadRequest, "参数错误")
		return
	}
	runs, err := h.store.ListRuns(c.Request.Context(), limit)
	if err != nil {
		errorResponse(c, codeInternal, err.Error())
		return
	}
	success(c, runs)
}

// GetRun 单次运行的完整报告
// GET /api/runs/:id
func (h *Handler) GetRun(c *gin.Context) {
	if h.store == nil {
		errorResponse(c, codeNoStore, "运行历史不可用")
		return
	}
	rep, err := h.store.GetRun(c.Request.Context(), c.Param("id"))
	if errors.Is(err, store.ErrRunNotFound) {
		errorResponse(c, codeNotFound, "运行记录不存在")
		return
	}
	if err != nil {
		errorResponse(c, codeInternal, err.Error())
		return
	}
	success(c, rep)
}
