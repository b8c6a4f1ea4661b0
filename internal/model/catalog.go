package model

import (
	"sort"
	"strconv"
)

// Question is one fixed research question from the question catalog.
type Question struct {
	ID     string `json:"id"`
	Title  string `json:"title"`
	Prompt string `json:"prompt"`
}

// Catalog holds the immutable jurisdiction and question sets. It is built
// once at startup and shared read-only across requests.
type Catalog struct {
	jurisdictions []string
	euMembers     map[string]bool
	questions     map[string]Question
}

// DefaultCatalog returns the built-in jurisdiction and question catalog.
func DefaultCatalog() *Catalog {
	return &Catalog{
		jurisdictions: defaultJurisdictions,
		euMembers:     defaultEUMembers,
		questions:     defaultQuestions,
	}
}

// Jurisdictions returns the supported jurisdictions in catalog order.
func (c *Catalog) Jurisdictions() []string {
	out := make([]string, len(c.jurisdictions))
	copy(out, c.jurisdictions)
	return out
}

// ValidJurisdiction reports whether j is in the supported set.
func (c *Catalog) ValidJurisdiction(j string) bool {
	for _, known := range c.jurisdictions {
		if known == j {
			return true
		}
	}
	return false
}

// IsEUMember reports whether j is an EU member state, in which case the
// shared GDPR document is always loaded alongside its own documents.
func (c *Catalog) IsEUMember(j string) bool {
	return c.euMembers[j]
}

// Question returns the question with the given id.
func (c *Catalog) Question(id string) (Question, bool) {
	q, ok := c.questions[id]
	return q, ok
}

// Questions returns all questions in ascending numeric id order.
func (c *Catalog) Questions() []Question {
	out := make([]Question, 0, len(c.questions))
	for _, q := range c.questions {
		out = append(out, q)
	}
	sortByNumericID(out)
	return out
}

// SelectQuestions filters ids down to known questions and returns them in
// ascending numeric id order, regardless of the order supplied. Unknown ids
// are dropped silently so partial catalogs never fail a whole report.
func (c *Catalog) SelectQuestions(ids []string) []Question {
	seen := make(map[string]bool, len(ids))
	var selected []Question
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true
		if q, ok := c.questions[id]; ok {
			selected = append(selected, q)
		}
	}
	sortByNumericID(selected)
	return selected
}

func sortByNumericID(qs []Question) {
	sort.Slice(qs, func(i, j int) bool {
		a, aerr := strconv.Atoi(qs[i].ID)
		b, berr := strconv.Atoi(qs[j].ID)
		if aerr != nil || berr != nil {
			return qs[i].ID < qs[j].ID
		}
		return a < b
	})
}

var defaultJurisdictions = []string{
	"英国",
	"加拿大",
	"法国",
	"德国",
	"西班牙",
	"爱尔兰",
	"荷兰",
	"阿根廷",
	"阿塞拜疆",
	"土耳其",
}

var defaultEUMembers = map[string]bool{
	"法国":  true,
	"德国":  true,
	"西班牙": true,
	"爱尔兰": true,
	"荷兰":  true,
}

var defaultQuestions = map[string]Question{
	"1": {
		ID:     "1",
		Title:  "是否有准入要求？",
		Prompt: "根据用户选择的司法辖区，检索对应辖区的法律法规，回答是否存在准入要求。若有相关规定，请回答'有'，并给出法律依据。若没有相关规定，请回答'无'。常见的准入要求包括：1）向司法辖区数据保护机构注册登记；或2）向司法辖区数据保护机构事前通知、备案；或3）取得司法辖区数据保护机构的授权或许可；或4）向司法辖区数据保护机构缴纳费用。",
	},
	"2": {
		ID:     "2",
		Title:  "适用于哪些主体？",
		Prompt: "根据对应辖区的法律法规，回答哪些主体适用准入要求，并给出相应的法律依据。若有相关规定，请进一步检索规定适用于所有行业的数据控制者或数据处理者，还是特定行业的数据控制者或数据处理者。若明确规定适用于特定行业的数据控制者或数据处理者，请说明是哪些特定行业；若没有规定适用于哪些特定行业或没有明确规定，请说明适用于所有行业。",
	},
	"3": {
		ID:     "3",
		Title:  "是否有豁免情形？",
		Prompt: "根据对应辖区的法律法规，回答相关准入要求是否有豁免的情形。若检索到相关规定，请说明哪些情形依法被豁免，并给出法律依据。若未检索到相关规定，请说明'暂不存在豁免情形'。",
	},
	"4": {
		ID:     "4",
		Title:  "在哪注册登记/备案/许可/缴费申请？",
		Prompt: "根据检索的司法辖区法律法规，请回答数据控制者或数据处理者办理注册登记/备案/许可/缴费申请的地点或平台。若检索到相关规定，请优先给出申请的官方机构、官方网站、线上系统或线下窗口名称；并提供官方参考链接或联系方式，并给出相应的法律依据。若未检索到相关规定，请说明'暂无相关规定'。",
	},
	"5": {
		ID:     "5",
		Title:  "是否需要缴费？",
		Prompt: "根据检索的司法辖区法律法规，判断在该司法辖区内数据控制者或数据处理者是否需要向监管机构或其他机构缴纳费用（如注册费、许可费、年费等）。若有相关规定，请说明缴费的条件、金额范围、缴费周期等具体规定，并给出相应的法律依据。若无相关规定，请直接回答'暂无相关规定'。",
	},
	"6": {
		ID:     "6",
		Title:  "是否规定了注册登记/备案/许可/缴费证书的有效期及续展？",
		Prompt: "根据检索的司法辖区法律法规，判断并回答该司法辖区是否规定了数据控制者/数据处理者注册登记/备案/许可/缴费证书的有效期及续展。如果检索到相关规定，请概述规定的内容（包括有效期时长、续展条件、申请程序等），并给出对应条文原文或核心摘录。如果没有规定，请说明'暂无相关规定'。",
	},
	"7": {
		ID:     "7",
		Title:  "没有履行相应数据处理准入的法律义务，会面临什么责任？",
		Prompt: "根据检索的相关国家法律法规，判断该司法辖区法律法规中是否有规定没有履行相应数据处理准入的法律义务所面临的法律责任。如检索到相关规定，请分别说明面临的法律责任类型（包括行政处罚、刑事责任、民事责任）、行政处罚类型（包括但不限于警告、罚款、采取纠正措施、暂停/限制数据处理活动等）、刑事责任类型（包括但不限于单处或并处罚金、监禁等）、民事赔偿（包括但不限于向个人信息主体支付赔偿金等），并列明相关法律依据。如未检索到相关规定，请说明'暂无相关规定'。",
	},
}
