// Copyright LD Anonymization Tool Authors. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package catalog

// Builtin pattern IDs, usable with ParseChecks and the -checks flag.
const (
	PatternPhone      = "PHONE"
	PatternNationalID = "NATIONAL_ID"
	PatternEmail      = "EMAIL"
	PatternBankCard   = "BANK_CARD"
	PatternIPAddress  = "IP_ADDRESS"
	PatternCreditCode = "CREDIT_CODE"
	PatternCompany    = "COMPANY"
	PatternAddress    = "ADDRESS"
	PatternPlate      = "LICENSE_PLATE"
	PatternAmount     = "AMOUNT"
)

// companySuffixes are the entity-type suffixes kept visible when masking
// company names, longest first so the most specific form wins.
var companySuffixes = []string{
	"股份有限公司",
	"有限责任公司",
	"集团有限公司",
	"有限公司",
	"合伙企业",
	"工作室",
	"集团",
	"公司",
	"企业",
	"中心",
}

// addressSuffixes are the trailing locality markers kept visible when
// masking addresses.
var addressSuffixes = []string{
	"街道", "单元",
	"省", "市", "区", "县", "镇", "乡",
	"路", "巷", "号", "栋", "楼", "层", "室", "户",
}

// builtin is the process-wide pattern catalog, initialized once and never
// mutated. Declaration order doubles as the priority tie-break for
// overlapping matches.
var builtin = New([]*Pattern{
	{
		ID:          PatternPhone,
		Name:        "手机号",
		Expr:        `1[3-9]\d{9}`,
		Policy:      RevealPrefix,
		PrefixLen:   3,
		Description: "中国大陆手机号，保留前3位",
	},
	{
		ID:          PatternNationalID,
		Name:        "身份证号",
		Expr:        `[1-9]\d{5}(18|19|20)\d{2}(0[1-9]|1[0-2])(0[1-9]|[12]\d|3[01])\d{3}[\dXx]`,
		Policy:      RevealPrefix,
		PrefixLen:   6,
		Check:       validNationalID,
		Description: "18位身份证号（校验位验证），保留前6位",
	},
	{
		ID:          PatternEmail,
		Name:        "邮箱",
		Expr:        `\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}\b`,
		Policy:      RevealPrefix,
		PrefixLen:   2,
		Description: "电子邮箱地址，保留前2位",
	},
	{
		ID:          PatternBankCard,
		Name:        "银行卡号",
		Expr:        `\b\d{16,19}\b`,
		Policy:      RevealPrefix,
		PrefixLen:   4,
		Check:       validLuhn,
		Description: "银行卡号（Luhn 校验），保留前4位",
	},
	{
		ID:          PatternIPAddress,
		Name:        "IP地址",
		Expr:        `\b\d{1,3}\.\d{1,3}\.\d{1,3}\.\d{1,3}\b`,
		Policy:      RevealPrefix,
		PrefixLen:   4,
		Check:       validIPv4,
		Description: "IPv4地址，保留前4位",
	},
	{
		ID:          PatternCreditCode,
		Name:        "统一社会信用代码",
		Expr:        `[0-9A-HJ-NPQRTUW-Y]{2}\d{6}[0-9A-HJ-NPQRTUW-Y]{10}`,
		Policy:      RevealPrefix,
		PrefixLen:   4,
		Check:       validCreditCode,
		Description: "18位统一社会信用代码（校验位验证），保留前4位",
	},
	{
		ID:     PatternCompany,
		Name:   "企业名称",
		Expr:   `[\x{4e00}-\x{9fa5}]{2,10}(?:股份有限公司|有限责任公司|集团有限公司|有限公司|合伙企业|工作室|集团|公司|企业|厂|店|行|中心|控股|科技|网络|信息|技术|贸易|商贸|实业|发展|建设|投资|管理|咨询|服务|教育|文化|传媒|电子|汽车|房地产|能源|化工|制造|物流|运输|建筑|装饰|设计|广告|餐饮|酒店|医院|学校|银行|保险|证券|基金)`,
		Policy: RevealSuffix,
		Suffixes: companySuffixes,
		Description: "企业名称，脱敏名称部分，保留企业类型后缀",
	},
	{
		ID:       PatternAddress,
		Name:     "详细地址",
		Expr:     `[\x{4e00}-\x{9fa5}]{2,6}(?:省|市|区|县|镇|乡|街道|路|巷|号|栋|单元|楼|层|室|户)[\x{4e00}-\x{9fa5}\d\w\-#号]*`,
		Policy:   RevealSuffix,
		Suffixes: addressSuffixes,
		Description: "详细地址，脱敏地名部分，保留末尾地址单位",
	},
	{
		ID:          PatternPlate,
		Name:        "车牌号",
		Expr:        `[京津沪渝冀豫云辽黑湘皖鲁新苏浙赣鄂桂甘晋蒙陕吉闽贵粤青藏川宁琼使领][A-Z][A-Z0-9]{5,6}`,
		Policy:      RevealPrefix,
		PrefixLen:   2,
		Description: "中国车牌号，保留前2位",
	},
	{
		ID:          PatternAmount,
		Name:        "金额",
		Expr:        `(?:¥|￥|USD?|\$)\s*(?:\d{1,3}(?:,\d{3})+(?:\.\d{1,2})?|\d+(?:\.\d{1,2})?)\s*(?:万元?|元)?|(?:\d{1,3}(?:,\d{3})+|\d+)(?:\.\d{1,2})?\s*(?:万元?|元)`,
		Policy:      RevealPrefix,
		PrefixLen:   0, // amounts always fully mask; a partial reveal leaks magnitude
		Description: "金额数字，支持¥/$/USD等货币符号和千分位格式，完全脱敏",
	},
})

// Builtin returns the process-wide pattern catalog.
func Builtin() *Catalog {
	return builtin
}
