// Package observed 解析明细表观测快照：浏览器代理输出的 JSON 信封、页面 HTML 表格，
// 以及修改动作与 Tab 计数载荷。
package observed

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/HelloAnner/northstar-verify/internal/model"
)

// ErrInvalidJSON 载荷不是合法 JSON
var ErrInvalidJSON = errors.New("invalid json")

// Snapshot 一次明细表抽取结果
type Snapshot struct {
	Rows        []model.EntityRecord `json:"rows"`
	Headers     []string             `json:"headers"`
	Error       string               `json:"error,omitempty"`
	ExtractedAt string               `json:"extractedAt,omitempty"`
}

// Usable 有数据且抽取未报错；否则对应的对照轴无法执行
func (s Snapshot) Usable() bool {
	return len(s.Rows) > 0 && s.Error == ""
}

// Failed 构造一个不可用的快照，用于文件缺失或解析失败
func Failed(reason string) Snapshot {
	return Snapshot{Error: reason}
}

// unwrap 剥掉 agent-browser --json 的 {success, data:{result}} 外层
// success=false 时返回 error 文本
func unwrap(root gjson.Result) (gjson.Result, string) {
	if s := root.Get("success"); s.Exists() && s.Type == gjson.False {
		msg := strings.TrimSpace(root.Get("error").String())
		if msg == "" {
			msg = "agent-browser error"
		}
		return gjson.Result{}, msg
	}
	if res := root.Get("data.result"); res.IsObject() {
		return res, ""
	}
	return root, ""
}

func parseRoot(data []byte) (gjson.Result, error) {
	if !gjson.ValidBytes(data) {
		return gjson.Result{}, ErrInvalidJSON
	}
	root := gjson.ParseBytes(data)
	if !root.IsObject() {
		return gjson.Result{}, ErrInvalidJSON
	}
	return root, nil
}

// ParseSnapshot 解析明细表抽取 JSON（带或不带 agent-browser 外层）
func ParseSnapshot(data []byte) (Snapshot, error) {
	root, err := parseRoot(data)
	if err != nil {
		return Failed(err.Error()), err
	}
	res, msg := unwrap(root)
	if msg != "" {
		return Failed(msg), nil
	}

	snap := Snapshot{
		Rows:        []model.EntityRecord{},
		Headers:     []string{},
		Error:       strings.TrimSpace(res.Get("error").String()),
		ExtractedAt: res.Get("extractedAt").String(),
	}
	res.Get("headers").ForEach(func(_, h gjson.Result) bool {
		snap.Headers = append(snap.Headers, strings.TrimSpace(h.String()))
		return true
	})
	res.Get("rows").ForEach(func(_, row gjson.Result) bool {
		fields, ok := row.Value().(map[string]any)
		if ok {
			snap.Rows = append(snap.Rows, model.NewEntityRecord(fields))
		}
		return true
	})
	return snap, nil
}

// ReadSnapshot 从文件读取快照，.html/.htm 走 HTML 解析
// 文件缺失或无法解析时返回不可用快照与错误
func ReadSnapshot(path string) (Snapshot, error) {
	f, err := os.Open(path)
	if err != nil {
		return Failed(err.Error()), fmt.Errorf("open snapshot: %w", err)
	}
	defer f.Close()
	return DecodeSnapshot(f, path)
}

// DecodeSnapshot 按文件名后缀选择解析方式
func DecodeSnapshot(r io.Reader, name string) (Snapshot, error) {
	lower := strings.ToLower(name)
	if strings.HasSuffix(lower, ".html") || strings.HasSuffix(lower, ".htm") {
		snap, err := ParseHTML(r)
		if err != nil {
			return Failed(err.Error()), err
		}
		return snap, nil
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return Failed(err.Error()), fmt.Errorf("read snapshot: %w", err)
	}
	return ParseSnapshot(data)
}
