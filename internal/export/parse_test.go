package export

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/lex-research/internal/model"
	"github.com/sells-group/lex-research/internal/report"
)

func TestParseReportEmpty(t *testing.T) {
	_, err := ParseReport("")
	assert.Error(t, err)

	_, err = ParseReport("   \n\n  ")
	assert.Error(t, err)
}

func TestParseReportRoundTrip(t *testing.T) {
	answers := []model.AnswerResult{
		{
			QuestionID:    "1",
			QuestionTitle: "准入制度",
			Answer:        "需要事先备案。" + model.LegalBasisMarker + "《数据保护法》第12条。",
		},
		{
			QuestionID:    "2",
			QuestionTitle: "责任主体",
			Answer:        "数据控制者承担主要责任。",
		},
	}

	text := report.Render("德国", "德国实行严格的数据准入制度。", true, answers)
	want := report.Blocks("德国", "德国实行严格的数据准入制度。", true, answers)

	got, err := ParseReport(text)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestParseReportLegalBasisExactText(t *testing.T) {
	legal := "《个人数据保护法》第5条、第7条。"
	text := report.Render("法国", "简介。", false, []model.AnswerResult{
		{QuestionID: "3", QuestionTitle: "豁免情形", Answer: "存在有限豁免。" + model.LegalBasisMarker + legal},
	})

	blocks, err := ParseReport(text)
	require.NoError(t, err)

	var legalBlocks []report.Block
	for _, b := range blocks {
		if b.Kind == report.BlockLegalBasis {
			legalBlocks = append(legalBlocks, b)
		}
	}
	require.Len(t, legalBlocks, 1)
	assert.Equal(t, legal, legalBlocks[0].Text)
}

func TestParseReportAnswerWithoutMarker(t *testing.T) {
	text := report.Render("英国", "简介。", false, []model.AnswerResult{
		{QuestionID: "4", QuestionTitle: "管辖机构", Answer: "由ICO负责监管。"},
	})

	blocks, err := ParseReport(text)
	require.NoError(t, err)

	// Heading1, intro paragraph, Heading2, then exactly one body paragraph.
	require.Len(t, blocks, 4)
	assert.Equal(t, report.BlockParagraph, blocks[3].Kind)
	assert.Equal(t, "由ICO负责监管。", blocks[3].Text)
	for _, b := range blocks {
		assert.NotEqual(t, report.BlockLegalBasis, b.Kind)
	}
}

func TestParseReportMultilineAnswer(t *testing.T) {
	answer := "第一行结论。\n第二行补充。\n" + model.LegalBasisMarker + "《条例》第3条。"
	text := report.Render("荷兰", "简介。", false, []model.AnswerResult{
		{QuestionID: "5", QuestionTitle: "费用情况", Answer: answer},
	})

	blocks, err := ParseReport(text)
	require.NoError(t, err)

	want := report.SplitAnswer(answer)
	// The last blocks are the answer body.
	require.GreaterOrEqual(t, len(blocks), len(want))
	assert.Equal(t, want, blocks[len(blocks)-len(want):])
}

func TestParseReportSkipsPreamble(t *testing.T) {
	text := report.Render("土耳其", "简介。", false, []model.AnswerResult{
		{QuestionID: "1", QuestionTitle: "准入制度", Answer: "无需许可。"},
	})

	blocks, err := ParseReport(text)
	require.NoError(t, err)
	for _, b := range blocks {
		assert.NotEqual(t, report.Title, b.Text)
		assert.NotEqual(t, report.Subtitle, b.Text)
	}
	require.NotEmpty(t, blocks)
	assert.Equal(t, report.BlockHeading1, blocks[0].Kind)
	assert.Equal(t, report.SectionPrefix+"土耳其", blocks[0].Text)
}

func TestParseReportTruncationNoticeKept(t *testing.T) {
	text := report.Render("西班牙", "简介。", true, nil)

	blocks, err := ParseReport(text)
	require.NoError(t, err)

	var found bool
	for _, b := range blocks {
		if b.Kind == report.BlockParagraph && b.Text == report.TruncationNotice {
			found = true
		}
	}
	assert.True(t, found)
}
