package fieldmap

import (
	"testing"

	"github.com/HelloAnner/northstar-verify/internal/schema"
	"github.com/HelloAnner/northstar-verify/internal/table"
)

func newMapper() *Mapper {
	return New(schema.Default())
}

func TestResolve_ExactHeaderWins(t *testing.T) {
	t.Parallel()

	idx := table.BuildIndex([]string{"统一社会信用代码", "同比增速(当月)", "(衍生指标)销售额当月增速"})
	got, ok := newMapper().Resolve("同比增速(当月)", "批发", idx)
	if !ok || got.Header != "同比增速(当月)" || got.Step != StepExact {
		t.Fatalf("got %+v ok=%v", got, ok)
	}
}

func TestResolve_OverrideByGroup(t *testing.T) {
	t.Parallel()

	m := newMapper()
	goods := table.BuildIndex([]string{"统一社会信用代码", "(衍生指标)销售额当月增速"})
	service := table.BuildIndex([]string{"统一社会信用代码", "(衍生指标)营业额当月增速"})

	if got, ok := m.Resolve("同比增速(当月)", "批零总表", goods); !ok || got.Header != "(衍生指标)销售额当月增速" {
		t.Fatalf("goods: %+v ok=%v", got, ok)
	}
	if got, ok := m.Resolve("同比增速(当月)", "住餐总表", service); !ok || got.Header != "(衍生指标)营业额当月增速" || got.Step != StepOverride {
		t.Fatalf("service: %+v ok=%v", got, ok)
	}
	// 行业未知时使用默认表头
	if got, ok := m.Resolve("同比增速(当月)", "", goods); !ok || got.Header != "(衍生指标)销售额当月增速" {
		t.Fatalf("unknown category: %+v ok=%v", got, ok)
	}
	if _, ok := m.Resolve("同比增速(当月)", "住餐总表", goods); ok {
		t.Fatalf("service variant should not resolve against goods headers")
	}
}

func TestResolve_DerivedTripleCarriesOrdinal(t *testing.T) {
	t.Parallel()

	idx := table.BuildIndex([]string{"统一社会信用代码", "1-12月增速", "2025年12月零售额", "1-12月增速"})
	m := newMapper()

	got, ok := m.Resolve("零售额;累计同比增速", "零售", idx)
	if !ok || got.Header != "1-12月增速" || got.Nth != 2 {
		t.Fatalf("got %+v ok=%v", got, ok)
	}
	if col, _ := idx.Col(got.Header, got.Nth); col != 4 {
		t.Fatalf("col=%d, want 4", col)
	}
	got, ok = m.Resolve("累计同比增速", "零售", idx)
	if !ok || got.Nth != 1 {
		t.Fatalf("got %+v ok=%v", got, ok)
	}
}

func TestResolve_TemporalSliceGetsPrincipalPrefix(t *testing.T) {
	t.Parallel()

	m := newMapper()
	goods := table.BuildIndex([]string{"统一社会信用代码", "商品销售额;本年-本月"})
	service := table.BuildIndex([]string{"统一社会信用代码", "营业额;本年-本月"})

	if got, ok := m.Resolve("本年-本月", "批零总表", goods); !ok || got.Header != "商品销售额;本年-本月" || got.Step != StepStructural {
		t.Fatalf("goods: %+v ok=%v", got, ok)
	}
	if got, ok := m.Resolve("本年-本月", "餐饮", service); !ok || got.Header != "营业额;本年-本月" {
		t.Fatalf("service: %+v ok=%v", got, ok)
	}
}

func TestResolve_GenericPrefixRelabelled(t *testing.T) {
	t.Parallel()

	m := newMapper()
	service := table.BuildIndex([]string{"统一社会信用代码", "营业额;上年-1—本月"})
	if got, ok := m.Resolve("销售额;上年-1—本月", "住宿", service); !ok || got.Header != "营业额;上年-1—本月" {
		t.Fatalf("got %+v ok=%v", got, ok)
	}

	// 分行业输入 sheet：销售额;本年-本月 -> 本年-本月 -> 2025年12月销售额
	input := table.BuildIndex([]string{"统一社会信用代码", "单位详细名称", "2025年12月销售额"})
	if got, ok := m.Resolve("销售额;本年-本月", "批发", input); !ok || got.Header != "2025年12月销售额" {
		t.Fatalf("got %+v ok=%v", got, ok)
	}
}

func TestResolve_Unresolved(t *testing.T) {
	t.Parallel()

	idx := table.BuildIndex([]string{"统一社会信用代码", "单位详细名称"})
	m := newMapper()
	for _, f := range []string{"规模", "本年-本月", "销售额;本年-本月", "完全未知"} {
		if got, ok := m.Resolve(f, "批发", idx); ok {
			t.Fatalf("%s resolved unexpectedly: %+v", f, got)
		}
	}
	if _, ok := m.Resolve("本年-本月", "批发", table.Index{}); ok {
		t.Fatalf("empty index should never resolve")
	}
}

func TestResolve_SubstitutedTables(t *testing.T) {
	t.Parallel()

	tables := schema.Default()
	tables.Overrides = []schema.Override{{Field: "本月营业额", Header: "营业额;本年-本月"}}
	m := New(tables)

	idx := table.BuildIndex([]string{"营业额;本年-本月"})
	if got, ok := m.Resolve("本月营业额", "住宿", idx); !ok || got.Step != StepOverride {
		t.Fatalf("got %+v ok=%v", got, ok)
	}
	if _, ok := m.Resolve("本月客房收入", "住宿", table.BuildIndex([]string{"客房收入;本年-本月"})); ok {
		t.Fatalf("default override should be gone")
	}
}
