package export

import (
	"regexp"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/sells-group/lex-research/internal/report"
)

var questionLine = regexp.MustCompile(`^Q\d+:`)

// ParseReport parses rendered report text back into typed blocks. It is
// the export-boundary counterpart of the assembler's block output: the
// /export endpoint only receives the report string, so the structure has
// to be recovered from the line grammar. Unrecognized lines become plain
// paragraphs so future grammar additions degrade gracefully.
func ParseReport(text string) ([]report.Block, error) {
	if strings.TrimSpace(text) == "" {
		return nil, eris.New("export: empty report text")
	}

	var (
		blocks   []report.Block
		answer   []string
		inAnswer bool
	)

	flushAnswer := func() {
		if !inAnswer {
			return
		}
		inAnswer = false
		joined := strings.TrimSpace(strings.Join(answer, "\n"))
		answer = nil
		blocks = append(blocks, report.SplitAnswer(joined)...)
	}

	for _, line := range strings.Split(text, "\n") {
		trimmed := strings.TrimSpace(line)

		switch {
		case questionLine.MatchString(trimmed):
			flushAnswer()
			blocks = append(blocks, report.Block{Kind: report.BlockHeading2, Text: trimmed})
		case strings.HasPrefix(trimmed, report.SectionPrefix):
			flushAnswer()
			blocks = append(blocks, report.Block{Kind: report.BlockHeading1, Text: trimmed})
		case strings.HasPrefix(trimmed, report.AnswerPrefix):
			flushAnswer()
			inAnswer = true
			answer = append(answer, strings.TrimPrefix(trimmed, report.AnswerPrefix))
		case inAnswer:
			// Model answers may span lines; keep collecting until the next
			// question or section heading.
			answer = append(answer, line)
		case trimmed == "" || trimmed == report.Title || trimmed == report.Subtitle:
			// Blank lines and the fixed preamble are layout, not content.
		default:
			blocks = append(blocks, report.Block{Kind: report.BlockParagraph, Text: trimmed})
		}
	}
	flushAnswer()

	return blocks, nil
}
