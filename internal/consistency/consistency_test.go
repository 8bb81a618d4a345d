package consistency

import (
	"testing"

	"github.com/HelloAnner/northstar-verify/internal/model"
)

const keyA = "914401007RDD76M0RF"

func row(fields map[string]any) model.EntityRecord {
	payload := map[string]any{model.AttrCreditCode: keyA, model.AttrName: "甲", model.AttrIndustry: "零售"}
	for k, v := range fields {
		payload[k] = v
	}
	return model.NewEntityRecord(payload)
}

func TestRatePercent(t *testing.T) {
	t.Parallel()

	if got := RatePercent(110, 100); got < 9.999 || got > 10.001 {
		t.Fatalf("RatePercent(110,100)=%v", got)
	}
	if got := RatePercent(5, 0); got != -100 {
		t.Fatalf("zero base=%v, want -100", got)
	}
}

func TestCheck_ConsistentRowPasses(t *testing.T) {
	t.Parallel()

	r := row(map[string]any{
		"本年-本月":      "1,100",
		"上年-本月":      1000,
		"本年-上月":      "1000",
		"同比增量(当月)":   "100.4",
		"环比增量(当月)":   100,
		"环比增速(当月)":   "10.1",
		"零售额;本年-本月":  50,
		"零售额;本年-上月":  0,
		"零售额;环比增速(当月)": -100,
	})
	if got := Check([]model.EntityRecord{r}, 0); len(got) != 0 {
		t.Fatalf("unexpected failures: %+v", got)
	}
}

func TestCheck_ReportsDrift(t *testing.T) {
	t.Parallel()

	r := row(map[string]any{
		"本年-本月":      1100,
		"上年-本月":      1000,
		"本年-上月":      1000,
		"同比增量(当月)":   98,
		"环比增速(当月)":   "10.5",
		"零售额;本年-本月":  80,
		"零售额;上年-本月":  50,
		"零售额;同比增量(当月)": 20,
	})
	got := Check([]model.EntityRecord{r}, 0)
	if len(got) != 3 {
		t.Fatalf("failures=%d, want 3: %+v", len(got), got)
	}
	if got[0].Field != "同比增量(当月)" || got[0].Expected != 100 || got[0].Actual != 98 {
		t.Fatalf("yoy=%+v", got[0])
	}
	if got[1].Field != "环比增速(当月)" {
		t.Fatalf("mom rate=%+v", got[1])
	}
	if got[2].Field != "零售额;同比增量(当月)" || got[2].Reason != "UI 计算字段与基础字段不一致" {
		t.Fatalf("retail=%+v", got[2])
	}
	if got[0].Key != keyA || got[0].Industry != "零售" || got[0].Reproduce == "" {
		t.Fatalf("locator=%+v", got[0])
	}
}

func TestCheck_SkipsInvalidKeysAndHonorsLimit(t *testing.T) {
	t.Parallel()

	bad := model.NewEntityRecord(map[string]any{
		model.AttrCreditCode: "合计",
		"本年-本月":            10,
		"上年-本月":            1,
		"同比增量(当月)":         0,
	})
	drift := row(map[string]any{"本年-本月": 10, "上年-本月": 1, "同比增量(当月)": 0})

	if got := Check([]model.EntityRecord{bad}, 0); len(got) != 0 {
		t.Fatalf("invalid key should be skipped: %+v", got)
	}
	if got := Check([]model.EntityRecord{drift, drift}, 1); len(got) != 1 {
		t.Fatalf("limit not honored: %d", len(got))
	}
}
