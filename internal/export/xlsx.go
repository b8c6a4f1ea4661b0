package export

import (
	"bytes"
	"fmt"
	"time"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"

	"github.com/sells-group/lex-research/internal/report"
)

// WriteXlsx renders the per-question answers of a report as a spreadsheet:
// one row per question with the conclusion and legal-basis text in
// separate columns. Heading and introduction blocks before the first
// question are ignored.
func WriteXlsx(blocks []report.Block) ([]byte, error) {
	if len(blocks) == 0 {
		return nil, eris.New("export: no blocks to write")
	}

	file := xlsx.NewFile()
	sheet, err := file.AddSheet("检索结果")
	if err != nil {
		return nil, eris.Wrap(err, "export: add sheet")
	}

	header := sheet.AddRow()
	for _, h := range []string{"问题", "结论", "法律依据"} {
		header.AddCell().Value = h
	}

	var row *xlsx.Row
	for _, blk := range blocks {
		switch blk.Kind {
		case report.BlockHeading2:
			row = sheet.AddRow()
			row.AddCell().Value = blk.Text
			row.AddCell()
			row.AddCell()
		case report.BlockParagraph:
			if row != nil {
				appendCell(row, 1, blk.Text)
			}
		case report.BlockLegalBasis:
			if row != nil {
				appendCell(row, 2, blk.Text)
			}
		}
	}

	var buf bytes.Buffer
	if err := file.Write(&buf); err != nil {
		return nil, eris.Wrap(err, "export: write xlsx")
	}
	return buf.Bytes(), nil
}

// appendCell joins repeated content into the same column so multi-block
// answers stay on one row.
func appendCell(row *xlsx.Row, col int, text string) {
	cell := row.Cells[col]
	if cell.Value == "" {
		cell.Value = text
		return
	}
	cell.Value += "\n" + text
}

// XlsxFilename returns the deterministic attachment name for a
// spreadsheet export.
func XlsxFilename(jurisdiction string, now time.Time) string {
	return fmt.Sprintf("数据隐私准入法律检索报告_%s_%s.xlsx", jurisdiction, now.Format("20060102150405"))
}
