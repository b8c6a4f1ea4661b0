package main

import (
	"fmt"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/lex-research/internal/store"
)

var (
	auditLimit        int
	auditJurisdiction string
	auditStatus       string
)

var auditCmd = &cobra.Command{
	Use:   "audit",
	Short: "List recent research runs from the audit log",
	RunE: func(cmd *cobra.Command, args []string) error {
		if cfg.Audit.Path == "" {
			return eris.New("audit log not configured: set audit.path")
		}

		st, err := store.NewSQLite(cfg.Audit.Path)
		if err != nil {
			return eris.Wrap(err, "open audit store")
		}
		defer st.Close()

		if err := st.Migrate(cmd.Context()); err != nil {
			return eris.Wrap(err, "migrate audit store")
		}

		runs, err := st.ListRuns(cmd.Context(), store.RunFilter{
			Jurisdiction: auditJurisdiction,
			Status:       store.RunStatus(auditStatus),
			Limit:        auditLimit,
		})
		if err != nil {
			return err
		}

		if len(runs) == 0 {
			cmd.Println("no runs recorded")
			return nil
		}

		for _, r := range runs {
			cmd.Println(formatRun(r))
		}
		return nil
	},
}

func init() {
	auditCmd.Flags().IntVar(&auditLimit, "limit", 20, "max runs to list")
	auditCmd.Flags().StringVar(&auditJurisdiction, "jurisdiction", "", "filter by jurisdiction")
	auditCmd.Flags().StringVar(&auditStatus, "status", "", "filter by status (running|complete|failed)")
	rootCmd.AddCommand(auditCmd)
}

func formatRun(r store.Run) string {
	line := fmt.Sprintf("%s  %-8s  %s  questions=%s  chars=%d",
		r.CreatedAt.Format("2006-01-02 15:04:05"),
		r.Status,
		r.Jurisdiction,
		strings.Join(r.QuestionIDs, ","),
		r.ReportChars,
	)
	if r.Error != "" {
		line += "  error=" + r.Error
	}
	return line
}
