package server

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/HelloAnner/northstar-verify/internal/verify"
)

// 上传表单字段 -> 是否必填
var uploadFields = []struct {
	name     string
	required bool
}{
	{"input", true},
	{"export", true},
	{"before", true},
	{"after", true},
	{"template", false},
	{"actions", false},
	{"tabCounts", false},
}

// Verify 上传输入文件并执行一次校验
// POST /api/verify (multipart: input, export, before, after, template?, actions?, tabCounts?)
func (h *Handler) Verify(c *gin.Context) {
	if h.opts.MaxUploadBytes > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.opts.MaxUploadBytes)
	}
	form, err := c.MultipartForm()
	if err != nil {
		errorResponse(c, codeBadRequest, "无效的表单数据")
		return
	}

	if h.opts.UploadDir != "" {
		if err := os.MkdirAll(h.opts.UploadDir, 0755); err != nil {
			errorResponse(c, codeInternal, "创建上传目录失败")
			return
		}
	}
	tempDir, err := os.MkdirTemp(h.opts.UploadDir, "nsverify_*")
	if err != nil {
		errorResponse(c, codeInternal, "创建临时目录失败")
		return
	}
	// 清理临时文件
	defer os.RemoveAll(tempDir)

	saved := make(map[string]string, len(uploadFields))
	names := make(map[string]string, len(uploadFields))
	for _, f := range uploadFields {
		files := form.File[f.name]
		if len(files) == 0 {
			if f.required {
				errorResponse(c, codeBadRequest, fmt.Sprintf("未找到上传文件：%s", f.name))
				return
			}
			continue
		}
		fh := files[0]
		// 保留扩展名，快照按 .json / .html 选择解析方式
		dst := filepath.Join(tempDir, f.name+filepath.Ext(fh.Filename))
		if err := c.SaveUploadedFile(fh, dst); err != nil {
			errorResponse(c, codeInternal, "保存文件失败")
			return
		}
		saved[f.name] = dst
		names[f.name] = fh.Filename
	}

	paths := verify.Paths{
		Input:     saved["input"],
		Export:    saved["export"],
		Template:  saved["template"],
		Before:    saved["before"],
		After:     saved["after"],
		Actions:   saved["actions"],
		TabCounts: saved["tabCounts"],
	}
	if paths.Template == "" {
		paths.Template = h.opts.TemplatePath
	}

	in, err := verify.Load(c.Request.Context(), paths, h.tables.FormulaCells)
	if err != nil {
		errorResponse(c, codeInternal, err.Error())
		return
	}
	rep := h.engine.Run(in)

	if h.store != nil {
		if err := h.store.SaveRun(c.Request.Context(), rep, names["input"], names["export"]); err != nil {
			h.log.Error("failed to record run", zap.String("id", rep.ID), zap.Error(err))
		}
	}
	success(c, rep)
}
