package observed

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/HelloAnner/northstar-verify/internal/model"
)

// ErrNoTable 页面中没有明细表
var ErrNoTable = errors.New("table not found")

// 明细表 HTML 约定的列名
const (
	htmlIndustryHeader = "行业"
	htmlNameHeader     = "企业名称"
)

// ParseHTML 从页面 HTML 中抽取明细表
// 表头取第一个 table 的 thead th；信用代码取首列的 .font-mono；
// 单元格优先取 input 的值，没有 input 时取文本
func ParseHTML(r io.Reader) (Snapshot, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return Snapshot{}, fmt.Errorf("parse html: %w", err)
	}
	tbl := doc.Find("table").First()
	if tbl.Length() == 0 {
		return Failed(ErrNoTable.Error()), nil
	}

	snap := Snapshot{Rows: []model.EntityRecord{}, Headers: []string{}}
	tbl.Find("thead th").Each(func(_ int, th *goquery.Selection) {
		snap.Headers = append(snap.Headers, strings.TrimSpace(th.Text()))
	})

	tbl.Find("tbody tr").Each(func(_ int, tr *goquery.Selection) {
		first := tr.Find("td").First()
		code := strings.TrimSpace(first.Find(".font-mono").First().Text())
		if code == "" {
			return
		}
		fields := map[string]any{model.AttrCreditCode: code}

		tr.Find("td").Each(func(i int, td *goquery.Selection) {
			if i >= len(snap.Headers) {
				return
			}
			h := snap.Headers[i]
			if h == "" {
				return
			}
			v := cellValue(td)
			if i == 0 {
				// 首列是“名称 + 信用代码”的复合单元格
				v = strings.TrimSpace(strings.Replace(strings.TrimSpace(td.Text()), code, "", 1))
			}
			switch h {
			case htmlIndustryHeader:
				fields[model.AttrIndustry] = v
			case htmlNameHeader:
				fields[model.AttrName] = v
			}
			fields[h] = v
		})
		if _, ok := fields[model.AttrName]; !ok {
			fields[model.AttrName] = strings.TrimSpace(strings.Replace(strings.TrimSpace(first.Text()), code, "", 1))
		}
		snap.Rows = append(snap.Rows, model.NewEntityRecord(fields))
	})
	return snap, nil
}

func cellValue(td *goquery.Selection) string {
	if in := td.Find("input").First(); in.Length() > 0 {
		v, _ := in.Attr("value")
		return strings.TrimSpace(v)
	}
	return strings.TrimSpace(td.Text())
}
