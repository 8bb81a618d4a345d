package verify

import (
	"context"
	"errors"
	"os"

	"golang.org/x/sync/errgroup"

	"github.com/HelloAnner/northstar-verify/internal/model"
	"github.com/HelloAnner/northstar-verify/internal/observed"
	"github.com/HelloAnner/northstar-verify/internal/workbook"
)

// errNotProvided 明细表快照路径未给出
var errNotProvided = errors.New("snapshot not provided")

// Paths 一次校验用到的文件
// Input/Export/Before/After 必填；其余可为空
type Paths struct {
	Input     string `json:"input"`
	Export    string `json:"export"`
	Template  string `json:"template,omitempty"`
	Before    string `json:"before"`
	After     string `json:"after"`
	Actions   string `json:"actions,omitempty"`
	TabCounts string `json:"tabCounts,omitempty"`
}

// Inputs 校验的全部内存输入；加载失败记录在对应的 *Err 字段中
type Inputs struct {
	Input    *workbook.Workbook
	Export   *workbook.Workbook
	Template *workbook.Workbook

	InputErr    error
	ExportErr   error
	TemplateErr error

	Before    observed.Snapshot
	After     observed.Snapshot
	Actions   model.Actions
	TabCounts []model.TabObservation
}

// Load 并发读取全部输入文件
// 单个文件读失败不返回错误，只在 Inputs 上留下记录；仅 ctx 取消时返回错误
// 导出与模板工作簿额外读取公式，formulaCells 为必须读取公式的关键单元格
func Load(ctx context.Context, p Paths, formulaCells []workbook.CellRef) (*Inputs, error) {
	in := &Inputs{
		Before:    observed.Failed(errNotProvided.Error()),
		After:     observed.Failed(errNotProvided.Error()),
		Actions:   model.Actions{Results: []model.ActionResult{}, Persist: []model.ActionPersist{}},
		TabCounts: []model.TabObservation{},
	}
	withFormulas := workbook.Options{Formulas: true, FormulaCells: formulaCells}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		in.Input, in.InputErr = openWorkbook(ctx, p.Input, workbook.Options{})
		return ctx.Err()
	})
	g.Go(func() error {
		in.Export, in.ExportErr = openWorkbook(ctx, p.Export, withFormulas)
		return ctx.Err()
	})
	if p.Template != "" {
		g.Go(func() error {
			in.Template, in.TemplateErr = openWorkbook(ctx, p.Template, withFormulas)
			return ctx.Err()
		})
	}
	if p.Before != "" {
		g.Go(func() error {
			in.Before, _ = observed.ReadSnapshot(p.Before)
			return ctx.Err()
		})
	}
	if p.After != "" {
		g.Go(func() error {
			in.After, _ = observed.ReadSnapshot(p.After)
			return ctx.Err()
		})
	}
	if p.Actions != "" {
		g.Go(func() error {
			data, err := readOptional(p.Actions)
			if err != nil || data == nil {
				return ctx.Err()
			}
			if acts, err := observed.ParseActions(data); err == nil {
				in.Actions = acts
			}
			return ctx.Err()
		})
	}
	if p.TabCounts != "" {
		g.Go(func() error {
			data, err := readOptional(p.TabCounts)
			if err != nil || data == nil {
				return ctx.Err()
			}
			if tabs, err := observed.ParseTabCounts(data); err == nil {
				in.TabCounts = tabs
			}
			return ctx.Err()
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return in, nil
}

func openWorkbook(ctx context.Context, path string, opts workbook.Options) (*workbook.Workbook, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if path == "" {
		return nil, errors.New("path is empty")
	}
	return workbook.Open(path, opts)
}

// readOptional 可选文件不存在时返回 nil, nil
func readOptional(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	return data, err
}
