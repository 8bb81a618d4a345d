package observed

import (
	"strings"

	"github.com/tidwall/gjson"

	"github.com/HelloAnner/northstar-verify/internal/model"
)

// ParseActions 解析修改动作载荷 {results:[...], persist:[...]}
func ParseActions(data []byte) (model.Actions, error) {
	out := model.Actions{Results: []model.ActionResult{}, Persist: []model.ActionPersist{}}
	root, err := parseRoot(data)
	if err != nil {
		return out, err
	}
	res, _ := unwrap(root)
	res.Get("results").ForEach(func(_, r gjson.Result) bool {
		out.Results = append(out.Results, model.ActionResult{
			CreditCode: strings.TrimSpace(r.Get("creditCode").String()),
			Field:      strings.TrimSpace(r.Get("field").String()),
			Value:      r.Get("value").Value(),
			I:          int(r.Get("i").Int()),
			OK:         optionalBool(r.Get("ok")),
		})
		return true
	})
	res.Get("persist").ForEach(func(_, r gjson.Result) bool {
		out.Persist = append(out.Persist, model.ActionPersist{
			CreditCode: strings.TrimSpace(r.Get("creditCode").String()),
			Field:      strings.TrimSpace(r.Get("field").String()),
			I:          int(r.Get("i").Int()),
			OK:         optionalBool(r.Get("ok")),
			UIValue:    r.Get("uiValue").Value(),
		})
		return true
	})
	return out, nil
}

// ParseTabCounts 解析 Tab 计数 {items:[{tab, rows, totalText}]}，允许带 agent-browser 外层
func ParseTabCounts(data []byte) ([]model.TabObservation, error) {
	out := []model.TabObservation{}
	root, err := parseRoot(data)
	if err != nil {
		return out, err
	}
	res, msg := unwrap(root)
	if msg != "" {
		return out, nil
	}
	res.Get("items").ForEach(func(_, it gjson.Result) bool {
		if !it.IsObject() {
			return true
		}
		out = append(out, model.TabObservation{
			Tab:       strings.TrimSpace(it.Get("tab").String()),
			Rows:      int(it.Get("rows").Int()),
			TotalText: strings.TrimSpace(it.Get("totalText").String()),
		})
		return true
	})
	return out, nil
}

// optionalBool 只有显式的 true/false 才有值
func optionalBool(r gjson.Result) *bool {
	switch r.Type {
	case gjson.True:
		v := true
		return &v
	case gjson.False:
		v := false
		return &v
	default:
		return nil
	}
}
