package main

import (
	"os"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/lex-research/internal/export"
	"github.com/sells-group/lex-research/internal/report"
)

var (
	exportIn   string
	exportOut  string
	exportXlsx bool
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Convert a generated report text file into a document",
	RunE: func(cmd *cobra.Command, args []string) error {
		raw, err := os.ReadFile(exportIn)
		if err != nil {
			return eris.Wrapf(err, "read report %s", exportIn)
		}

		blocks, err := export.ParseReport(string(raw))
		if err != nil {
			return eris.Wrap(err, "parse report")
		}

		write := export.WriteDocx
		if exportXlsx {
			write = export.WriteXlsx
		}
		return writeDocument(blocks, exportOut, write)
	},
}

func init() {
	exportCmd.Flags().StringVar(&exportIn, "in", "", "report text file to convert (required)")
	exportCmd.Flags().StringVar(&exportOut, "out", "", "output document path (required)")
	exportCmd.Flags().BoolVar(&exportXlsx, "xlsx", false, "produce a spreadsheet instead of a .docx")
	exportCmd.MarkFlagRequired("in")  //nolint:errcheck
	exportCmd.MarkFlagRequired("out") //nolint:errcheck
	rootCmd.AddCommand(exportCmd)
}

// blockSummary is used by tests to sanity-check parsed structure.
func blockSummary(blocks []report.Block) string {
	var b strings.Builder
	for i, blk := range blocks {
		if i > 0 {
			b.WriteByte(' ')
		}
		switch blk.Kind {
		case report.BlockHeading1:
			b.WriteString("h1")
		case report.BlockHeading2:
			b.WriteString("h2")
		case report.BlockLegalBasis:
			b.WriteString("legal")
		default:
			b.WriteString("p")
		}
	}
	return b.String()
}
