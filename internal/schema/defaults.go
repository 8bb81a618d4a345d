package schema

import "github.com/HelloAnner/northstar-verify/internal/workbook"

// Default 2025 年 12 月月报的对照表；每次调用返回新值
func Default() *Tables {
	return &Tables{
		KeyHeader:  "统一社会信用代码",
		NameHeader: "单位详细名称",
		ScanRows:   10,

		Groups: map[string][]string{
			GroupGoods:   {"批发", "零售", "批零总表"},
			GroupService: {"住宿", "餐饮", "住餐总表"},
		},
		PrincipalMetric: map[string]string{
			GroupGoods:   "商品销售额",
			GroupService: "营业额",
		},
		GenericMetric:  "销售额",
		TemporalSlices: []string{"本年-本月", "上年-本月", "本年-上月", "本年-1—本月", "上年-1—本月", "本年-1—上月", "上年-1—上月"},

		Overrides: defaultOverrides(),
		Derived: map[string][]Triple{
			"批发": wholesaleRetailTriples(),
			"零售": wholesaleRetailTriples(),
			"住宿": accommodationCateringTriples(),
			"餐饮": accommodationCateringTriples(),
		},

		Categories: []string{"批发", "零售", "住宿", "餐饮"},
		ExportCandidates: map[string][]string{
			"批发": {"批发", "批零总表"},
			"零售": {"零售", "批零总表"},
			"住宿": {"住宿", "住餐总表"},
			"餐饮": {"餐饮", "住餐总表"},
		},
		FallbackCandidates: []string{"批零总表", "住餐总表", "批发", "零售", "住宿", "餐饮"},

		ImportIgnored: []string{"规模", "标记"},
		ExportIgnored: []string{"规模", "标记", "来源表"},

		InputSheets: []string{
			"2024年12月批零", "2025年11月批零", "2024年3月", "2025年2月", "批发", "零售",
			"2024年12月住餐", "2025年11月住餐", "2024年3月住", "2025年2月住", "餐饮", "住宿",
			"限上零售额", "小微", "吃穿用",
		},
		TemplateSheets: []string{
			"批零总表", "住餐总表", "批发", "零售", "住宿", "餐饮",
			"吃穿用", "小微", "吃穿用（剔除）", "社零额（定）", "汇总表（定）",
		},
		FormulaCells: []workbook.CellRef{
			{Sheet: "社零额（定）", Cell: "K3"},
			{Sheet: "社零额（定）", Cell: "K7"},
			{Sheet: "社零额（定）", Cell: "K9"},
			{Sheet: "社零额（定）", Cell: "K15"},
			{Sheet: "社零额（定）", Cell: "K17"},
			{Sheet: "社零额（定）", Cell: "K19"},
			{Sheet: "社零额（定）", Cell: "K23"},
			{Sheet: "汇总表（定）", Cell: "D4"},
			{Sheet: "汇总表（定）", Cell: "F4"},
			{Sheet: "汇总表（定）", Cell: "D10"},
			{Sheet: "汇总表（定）", Cell: "A11"},
		},

		CoverageSkip:       []string{"序号", "统一社会信用代码", "单位详细名称"},
		CoverageSkipPrefix: []string{"[201-1]"},
	}
}

func defaultOverrides() []Override {
	byGroup := func(field, goods, service string) Override {
		return Override{
			Field:   field,
			Header:  goods,
			ByGroup: map[string]string{GroupGoods: goods, GroupService: service},
		}
	}
	return []Override{
		// 住餐明细表使用口语化列名
		{Field: "本月客房收入", Header: "客房收入;本年-本月"},
		{Field: "本月餐费收入", Header: "餐费收入;本年-本月"},
		{Field: "本月商品销售额", Header: "商品销售额;本年-本月"},

		// 主指标增速：批零取销售额，住餐取营业额
		byGroup("同比增速(当月)", "(衍生指标)销售额当月增速", "(衍生指标)营业额当月增速"),
		byGroup("累计同比增速", "(衍生指标)销售额累计增速", "(衍生指标)营业额累计增速"),
		byGroup("销售额;增速(当月)", "(衍生指标)销售额当月增速", "(衍生指标)营业额当月增速"),
		byGroup("销售额;累计增速", "(衍生指标)销售额累计增速", "(衍生指标)营业额累计增速"),

		{Field: "商品销售额;增速(当月)", Header: "(衍生指标)销售额当月增速"},
		{Field: "商品销售额;累计增速", Header: "(衍生指标)销售额累计增速"},
		{Field: "零售额;同比增速(当月)", Header: "(衍生指标)零售额当月增速"},
		{Field: "零售额;累计同比增速", Header: "(衍生指标)零售额累计增速"},
		{Field: "零售额;增速(当月)", Header: "(衍生指标)零售额当月增速"},
		{Field: "零售额;累计增速", Header: "(衍生指标)零售额累计增速"},
		{Field: "营业额;增速(当月)", Header: "(衍生指标)营业额当月增速"},
		{Field: "营业额;累计增速", Header: "(衍生指标)营业额累计增速"},
	}
}

func wholesaleRetailTriples() []Triple {
	return []Triple{
		{"本年-上月", "2025年11月销售额", 1},
		{"本年-本月", "2025年12月销售额", 1},
		{"上年-本月", "2024年;12月;商品销售额;千元", 1},
		{"本年-1—上月", "2025年1-11月销售额", 1},
		{"上年-1—上月", "2024年1-11月销售额", 1},
		{"本年-1—本月", "2025年1-12月销售额", 1},
		{"上年-1—本月", "2024年;1-12月;商品销售额;千元", 1},
		{"同比增速(当月)", "12月销售额增速", 1},
		{"累计同比增速", "1-12月增速", 1},
		{"零售额;本年-上月", "2025年11月零售额", 1},
		{"零售额;本年-本月", "2025年12月零售额", 1},
		{"零售额;上年-本月", "2024年;12月;商品零售额;千元", 1},
		{"零售额;本年-1—上月", "2025年1-11月零售额", 1},
		{"零售额;上年-1—上月", "2024年1-11月零售额", 1},
		{"零售额;本年-1—本月", "2025年1-12月零售额", 1},
		{"零售额;上年-1—本月", "2024年;1-12月;商品零售额;千元", 1},
		{"零售额;同比增速(当月)", "12月零售额增速", 1},
		{"零售额;累计同比增速", "1-12月增速", 2},
		{"零销比(%)", "零售额占比", 1},
	}
}

func accommodationCateringTriples() []Triple {
	return []Triple{
		{"本年-上月", "2025年11月营业额", 1},
		{"本年-本月", "2025年12月营业额", 1},
		{"上年-本月", "2024年12月;营业额总计;千元", 1},
		{"本年-1—上月", "2025年1-11月营业额", 1},
		{"本年-1—本月", "2025年1-12月营业额", 1},
		{"上年-1—本月", "2024年1-12月;营业额总计;千元", 1},
		{"同比增速(当月)", "12月增速", 1},
		{"累计同比增速", "1-12月增速", 1},
		{"客房收入;本年-上月", "11月客房收入", 1},
		{"客房收入;本年-本月", "2025年12月客房收入", 1},
		{"客房收入;上年-本月", "2024年12月;营业额总计;客房收入;千元", 1},
		{"客房收入;本年-1—上月", "2025年1-11月客房收入", 1},
		{"客房收入;本年-1—本月", "2025年1-12月客房收入", 1},
		{"客房收入;上年-1—本月", "2024年1-12月;营业额总计;客房收入;千元", 1},
		{"餐费收入;本年-上月", "11月餐费收入", 1},
		{"餐费收入;本年-本月", "2025年12月餐费收入", 1},
		{"餐费收入;上年-本月", "2024年12月;营业额总计;餐费收入;千元", 1},
		{"餐费收入;本年-1—上月", "2025年1-11月餐费收入", 1},
		{"餐费收入;本年-1—本月", "1-12月餐费收入", 1},
		{"餐费收入;上年-1—本月", "2024年1-12月;营业额总计;餐费收入;千元", 1},
		{"商品销售额;本年-上月", "11月销售额", 1},
		{"商品销售额;本年-本月", "2025年12月销售额", 1},
		{"商品销售额;上年-本月", "2024年12月;营业额总计;商品销售额;千元", 1},
		{"商品销售额;本年-1—上月", "2025年1-11月销售额", 1},
		{"商品销售额;本年-1—本月", "1-12月销售额", 1},
		{"商品销售额;上年-1—本月", "2024年1-12月;营业额总计;商品销售额;千元", 1},
		{"零售额;本年-本月", "2025年12月零售额", 1},
		{"零售额;上年-本月", "2024年12月零售额", 1},
	}
}
