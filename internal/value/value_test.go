package value

import (
	"encoding/json"
	"math"
	"testing"
)

func ptr(f float64) *float64 { return &f }

func near(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

func TestParseNumber_Total(t *testing.T) {
	t.Parallel()

	inputs := []any{
		nil, true, false, 0, 1, int64(-3), uint8(7), 1.5, float32(2.5),
		math.NaN(), math.Inf(1), math.Inf(-1), "", "  ", "-", "abc", "NaN", "Inf", "-infinity",
		"1,234.5", "54%", "１，０００", "５４％", json.Number("12"), json.Number("x"),
		[]any{1}, map[string]any{"a": 1}, struct{}{}, (*float64)(nil), ptr(math.NaN()),
	}
	for _, in := range inputs {
		f, ok := ParseNumber(in)
		if ok && (math.IsNaN(f) || math.IsInf(f, 0)) {
			t.Fatalf("ParseNumber(%#v) returned non-finite %v", in, f)
		}
	}
}

func TestParseNumber_Cases(t *testing.T) {
	t.Parallel()

	for _, tc := range []struct {
		in   any
		want float64
		ok   bool
	}{
		{in: true, ok: false},
		{in: false, ok: false},
		{in: nil, ok: false},
		{in: "-", ok: false},
		{in: " - ", ok: false},
		{in: "", ok: false},
		{in: "NaN", ok: false},
		{in: 1000, want: 1000, ok: true},
		{in: 1000.0, want: 1000, ok: true},
		{in: " 1,234.50 ", want: 1234.5, ok: true},
		{in: "54%", want: 54, ok: true},
		{in: "-12.3%", want: -12.3, ok: true},
		{in: "１，０００", want: 1000, ok: true},
		{in: "5４％", want: 54, ok: true},
		{in: json.Number("0.54"), want: 0.54, ok: true},
	} {
		got, ok := ParseNumber(tc.in)
		if ok != tc.ok || (ok && got != tc.want) {
			t.Fatalf("ParseNumber(%#v)=(%v,%v), want (%v,%v)", tc.in, got, ok, tc.want, tc.ok)
		}
	}
}

func TestIsPlaceholder(t *testing.T) {
	t.Parallel()

	for _, v := range []any{nil, "", "  ", "-", " - "} {
		if !IsPlaceholder(v) {
			t.Fatalf("IsPlaceholder(%#v) = false", v)
		}
	}
	for _, v := range []any{0, "0", "--", false} {
		if IsPlaceholder(v) {
			t.Fatalf("IsPlaceholder(%#v) = true", v)
		}
	}
}

func TestIsRateField(t *testing.T) {
	t.Parallel()

	for _, f := range []string{"同比增速(当月)", "零销比(%)", "sales_month_rate", "Rate", "零售额;累计增速"} {
		if !IsRateField(f) {
			t.Fatalf("%s should be rate", f)
		}
	}
	for _, f := range []string{"本年-本月", "2025年12月销售额", "单位规模"} {
		if IsRateField(f) {
			t.Fatalf("%s should not be rate", f)
		}
	}
}

func TestNormalizeRatePair_RescalesFractionSide(t *testing.T) {
	t.Parallel()

	a, b := NormalizeRatePair("同比增速(当月)", ptr(0.54), ptr(54))
	if !near(*a, 54) || *b != 54 {
		t.Fatalf("got (%v,%v), want (54,54)", *a, *b)
	}
	a, b = NormalizeRatePair("同比增速(当月)", ptr(54), ptr(-0.54))
	if *a != 54 || !near(*b, -54) {
		t.Fatalf("got (%v,%v), want (54,-54)", *a, *b)
	}
	// 非增速字段不换算
	a, b = NormalizeRatePair("本年-本月", ptr(0.54), ptr(54))
	if *a != 0.54 || *b != 54 {
		t.Fatalf("non-rate field changed: (%v,%v)", *a, *b)
	}
	// 缺失一侧原样返回
	a, b = NormalizeRatePair("同比增速(当月)", nil, ptr(54))
	if a != nil || *b != 54 {
		t.Fatalf("nil side changed")
	}
	// 同侧口径不换算
	a, b = NormalizeRatePair("同比增速(当月)", ptr(1.5), ptr(1.5))
	if *a != 1.5 || *b != 1.5 {
		t.Fatalf("same-scale pair changed: (%v,%v)", *a, *b)
	}
}

func TestNormalizeRatePair_Idempotent(t *testing.T) {
	t.Parallel()

	samples := []float64{0, 0.001, 0.01, 0.02, 0.021, 0.5, 1, 1.99, 2, 2.0001, 5, 54, 150, -0.3, -3, -250}
	for _, x := range samples {
		for _, y := range samples {
			a1, b1 := NormalizeRatePair("累计同比增速", ptr(x), ptr(y))
			a2, b2 := NormalizeRatePair("累计同比增速", a1, b1)
			if *a1 != *a2 || *b1 != *b2 {
				t.Fatalf("not idempotent for (%v,%v): once=(%v,%v) twice=(%v,%v)", x, y, *a1, *b1, *a2, *b2)
			}
		}
	}
}

func TestRescaleAmbiguous(t *testing.T) {
	t.Parallel()

	if !RescaleAmbiguous("增速", ptr(1.5), ptr(2.5)) {
		t.Fatalf("1.5 vs 2.5 should be ambiguous")
	}
	if RescaleAmbiguous("增速", ptr(0.54), ptr(54)) {
		t.Fatalf("0.54 vs 54 should not be ambiguous")
	}
	if RescaleAmbiguous("增速", ptr(1.5), ptr(1.5)) {
		t.Fatalf("no rescale, not ambiguous")
	}
}

func TestClose(t *testing.T) {
	t.Parallel()

	if !Close(nil, nil, 0) {
		t.Fatalf("both absent should be equal")
	}
	if Close(nil, ptr(0), 1) || Close(ptr(0), nil, 1) {
		t.Fatalf("one absent should not be equal")
	}
	if !Close(ptr(1), ptr(1.005), 0.005) {
		t.Fatalf("within eps should be equal")
	}
	if Close(ptr(1), ptr(1.0051), 0.005) {
		t.Fatalf("beyond eps should not be equal")
	}
}

func TestTolerance_CompareSymmetric(t *testing.T) {
	t.Parallel()

	tol := DefaultTolerance()
	pairs := [][2]any{
		{1000, "1000.0"},
		{"1,000", 1000.004},
		{0.54, "54"},
		{0.54, "54.03"},
		{"12.3%", 12.31},
		{nil, "5"},
		{"-", ""},
		{"测试商贸", " 测试商贸 "},
		{"甲", "乙"},
	}
	for _, field := range []string{"本年-本月", "零售额;累计同比增速"} {
		for _, p := range pairs {
			ab := tol.Compare(field, p[0], p[1])
			ba := tol.Compare(field, p[1], p[0])
			if ab.Equal != ba.Equal {
				t.Fatalf("%s: Compare not symmetric for %#v", field, p)
			}
		}
	}
}

func TestTolerance_CompareExamples(t *testing.T) {
	t.Parallel()

	tol := DefaultTolerance()
	if got := tol.Compare("销售额;本年-本月", 1000, 1000.0); !got.Equal || !got.Numeric {
		t.Fatalf("1000 vs 1000.0: %+v", got)
	}
	if got := tol.Compare("同比增速(当月)", 0.54, 54); !got.Equal {
		t.Fatalf("0.54 vs 54 should be equal after rescale: %+v", got)
	}
	if got := tol.Compare("本年-本月", 100, 100.01); got.Equal {
		t.Fatalf("100 vs 100.01 should differ with tight eps")
	}
	if got := tol.Compare("同比增速(当月)", 10, 10.015); !got.Equal {
		t.Fatalf("rate eps should accept 0.015")
	}
	if got := tol.Compare("单位详细名称", "甲", "乙"); got.Equal || got.Numeric {
		t.Fatalf("text compare: %+v", got)
	}
	if got := tol.Compare("本年-本月", "5", nil); got.Equal {
		t.Fatalf("one absent should not be equal")
	}
	if got := tol.Compare("本年-本月", "-", nil); !got.Equal {
		t.Fatalf("placeholder vs nil should be equal")
	}
	if eps := tol.Epsilon("零销比(%)"); eps != DefaultRateEpsilon {
		t.Fatalf("eps=%v", eps)
	}
}
