package model

import "fmt"

// ActionResult 一次明细表修改动作的执行结果（由浏览器脚本产出）
type ActionResult struct {
	CreditCode string `json:"creditCode"`
	Field      string `json:"field"`
	Value      any    `json:"value"`
	I          int    `json:"i"`
	OK         *bool  `json:"ok,omitempty"`
}

// ActionPersist 刷新页面后读回的修改值
type ActionPersist struct {
	CreditCode string `json:"creditCode"`
	Field      string `json:"field"`
	I          int    `json:"i"`
	OK         *bool  `json:"ok,omitempty"`
	UIValue    any    `json:"uiValue"`
}

// Failed 明确标记为失败（未上报 ok 的视为未失败）
func (a ActionResult) Failed() bool { return a.OK != nil && !*a.OK }

// Failed 明确标记为失败
func (p ActionPersist) Failed() bool { return p.OK != nil && !*p.OK }

// ActionKey 动作与持久化结果的关联键
func ActionKey(creditCode, field string, i int) string {
	return fmt.Sprintf("%s|%s|%d", creditCode, field, i)
}

// Key 关联键
func (a ActionResult) Key() string { return ActionKey(a.CreditCode, a.Field, a.I) }

// Key 关联键
func (p ActionPersist) Key() string { return ActionKey(p.CreditCode, p.Field, p.I) }

// Actions 修改动作载荷
type Actions struct {
	Results []ActionResult  `json:"results"`
	Persist []ActionPersist `json:"persist"`
}
