package relevance

import (
	"os"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

// Category maps one semantic aspect of market-access law to the literal
// phrases that signal it. A category is selected for a question when any of
// its keywords appears in the question prompt; the union of selected
// keywords then drives corpus scoring.
type Category struct {
	Name     string   `yaml:"name"`
	Keywords []string `yaml:"keywords"`
}

// Table is the full category keyword table plus the generic fallback set
// used when no category matches a prompt.
type Table struct {
	Categories []Category `yaml:"categories"`
	Fallback   []string   `yaml:"fallback"`
}

// DefaultTable returns the built-in keyword table. Keywords are literal
// domain-language phrases; matching is substring-based, not tokenized.
func DefaultTable() Table {
	return Table{
		Categories: []Category{
			{Name: "admission", Keywords: []string{"准入", "注册", "登记", "备案", "许可", "授权", "批准", "通知"}},
			{Name: "subjects", Keywords: []string{"数据控制者", "数据处理者", "适用", "主体", "行业"}},
			{Name: "exemptions", Keywords: []string{"豁免", "例外", "免除", "不适用"}},
			{Name: "venue", Keywords: []string{"地点", "平台", "机构", "网站", "窗口", "联系方式"}},
			{Name: "fees", Keywords: []string{"费用", "缴费", "缴纳", "收费", "注册费", "许可费", "年费"}},
			{Name: "validity", Keywords: []string{"有效期", "续展", "期限", "届满", "更新"}},
			{Name: "liability", Keywords: []string{"责任", "处罚", "罚款", "罚金", "刑事", "民事", "行政", "赔偿", "监禁"}},
		},
		Fallback: []string{"数据", "个人信息", "保护", "处理"},
	}
}

// LoadTable reads a keyword table from a YAML file.
func LoadTable(path string) (Table, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Table{}, eris.Wrap(err, "relevance: read keywords file")
	}
	var t Table
	if err := yaml.Unmarshal(raw, &t); err != nil {
		return Table{}, eris.Wrap(err, "relevance: parse keywords file")
	}
	if len(t.Categories) == 0 {
		return Table{}, eris.New("relevance: keywords file has no categories")
	}
	if len(t.Fallback) == 0 {
		t.Fallback = DefaultTable().Fallback
	}
	return t, nil
}
