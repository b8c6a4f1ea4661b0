package report

import (
	"fmt"
	"strings"

	"github.com/sells-group/lex-research/internal/model"
)

// Report grammar. The rendered text is the transmitted artifact, so these
// literals are a wire format: the exporter parses them back.
const (
	Title    = "出海目标国数据隐私准入法律检索报告"
	Subtitle = "具体要求请见下文"

	// SectionPrefix starts the jurisdiction heading line.
	SectionPrefix = "(一) "

	// QuestionPrefix and AnswerPrefix start each Q/A pair.
	QuestionPrefix = "Q"
	AnswerPrefix   = "A: "

	// TruncationNotice is appended when the corpus exceeded the grounding
	// budget and answers may be incomplete.
	TruncationNotice = "⚠️ 注意：由于知识库内容过长，部分信息已被截断以适应模型上下文限制，可能影响回答的完整性。"
)

// BlockKind classifies a report block.
type BlockKind int

const (
	// BlockHeading1 is the jurisdiction section heading.
	BlockHeading1 BlockKind = iota + 1
	// BlockHeading2 is a question heading.
	BlockHeading2
	// BlockParagraph is body prose.
	BlockParagraph
	// BlockLegalBasis is quoted legal text, rendered visually distinct.
	BlockLegalBasis
)

// Block is one typed element of a structured report. The assembler emits
// blocks directly so the exporter does not have to re-parse the rendered
// text when both live in the same process.
type Block struct {
	Kind BlockKind
	Text string
}

// Render produces the canonical report text from the assembled parts.
func Render(jurisdiction, introduction string, truncated bool, answers []model.AnswerResult) string {
	var b strings.Builder
	b.WriteString(Title)
	b.WriteString("\n\n")
	b.WriteString(Subtitle)
	b.WriteString("\n\n")
	b.WriteString(SectionPrefix)
	b.WriteString(jurisdiction)
	b.WriteString("\n\n")
	b.WriteString(introduction)

	if truncated {
		b.WriteString("\n\n")
		b.WriteString(TruncationNotice)
	}

	for _, a := range answers {
		fmt.Fprintf(&b, "\n\n%s%s: %s\n%s%s", QuestionPrefix, a.QuestionID, a.QuestionTitle, AnswerPrefix, a.Answer)
	}

	return b.String()
}

// Blocks produces the structured form of the same report: jurisdiction
// heading, introduction, optional truncation notice, then one question
// heading per answer followed by its conclusion paragraph and, when the
// answer carries the legal-basis marker, a distinguished quote block.
func Blocks(jurisdiction, introduction string, truncated bool, answers []model.AnswerResult) []Block {
	var blocks []Block
	blocks = append(blocks, Block{Kind: BlockHeading1, Text: SectionPrefix + jurisdiction})
	if introduction != "" {
		blocks = append(blocks, Block{Kind: BlockParagraph, Text: introduction})
	}
	if truncated {
		blocks = append(blocks, Block{Kind: BlockParagraph, Text: TruncationNotice})
	}

	for _, a := range answers {
		blocks = append(blocks, Block{
			Kind: BlockHeading2,
			Text: fmt.Sprintf("%s%s: %s", QuestionPrefix, a.QuestionID, a.QuestionTitle),
		})
		blocks = append(blocks, SplitAnswer(a.Answer)...)
	}

	return blocks
}

// SplitAnswer turns one answer text into its block form: the conclusion
// prose as a paragraph and, when the legal-basis marker is present, the
// quoted legal text after it as a legal-basis block. An answer without the
// marker yields exactly one paragraph.
func SplitAnswer(answer string) []Block {
	conclusion, legal, found := strings.Cut(answer, model.LegalBasisMarker)
	conclusion = strings.TrimSpace(conclusion)
	var blocks []Block
	if conclusion != "" {
		blocks = append(blocks, Block{Kind: BlockParagraph, Text: conclusion})
	}
	if found {
		if legal = strings.TrimSpace(legal); legal != "" {
			blocks = append(blocks, Block{Kind: BlockLegalBasis, Text: legal})
		}
	}
	return blocks
}
