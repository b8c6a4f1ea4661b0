package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/lex-research/internal/export"
	"github.com/sells-group/lex-research/internal/report"
	"github.com/sells-group/lex-research/internal/store"
)

var (
	researchJurisdiction string
	researchQuestions    []string
	researchOut          string
	researchDocx         string
	researchXlsx         string
)

var researchCmd = &cobra.Command{
	Use:   "research",
	Short: "Generate the research report for one jurisdiction",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		e, err := initEnv(ctx)
		if err != nil {
			return err
		}
		defer e.Close()

		ids := researchQuestions
		if len(ids) == 0 {
			for _, q := range e.Catalog.Questions() {
				ids = append(ids, q.ID)
			}
		}

		result, err := runAudited(ctx, e, researchJurisdiction, ids)
		if err != nil {
			return err
		}

		if researchOut != "" {
			if err := os.WriteFile(researchOut, []byte(result.Text), 0o644); err != nil {
				return eris.Wrapf(err, "write report %s", researchOut)
			}
			zap.L().Info("report written", zap.String("path", researchOut))
		} else {
			cmd.Println(result.Text)
		}

		if researchDocx != "" {
			if err := writeDocument(result.Blocks, researchDocx, export.WriteDocx); err != nil {
				return err
			}
		}
		if researchXlsx != "" {
			if err := writeDocument(result.Blocks, researchXlsx, export.WriteXlsx); err != nil {
				return err
			}
		}

		return nil
	},
}

func init() {
	researchCmd.Flags().StringVar(&researchJurisdiction, "jurisdiction", "", "target jurisdiction (required)")
	researchCmd.Flags().StringSliceVar(&researchQuestions, "questions", nil, "question ids to answer (default: all)")
	researchCmd.Flags().StringVar(&researchOut, "out", "", "write the report text to a file instead of stdout")
	researchCmd.Flags().StringVar(&researchDocx, "docx", "", "also export the report as a .docx to this path")
	researchCmd.Flags().StringVar(&researchXlsx, "xlsx", "", "also export the report as a .xlsx to this path")
	researchCmd.MarkFlagRequired("jurisdiction") //nolint:errcheck
	rootCmd.AddCommand(researchCmd)
}

// runAudited builds one report and records the run in the audit log when
// one is configured.
func runAudited(ctx context.Context, e *env, jurisdiction string, ids []string) (*report.Result, error) {
	var run *store.Run
	if e.Audit != nil {
		created, err := e.Audit.CreateRun(ctx, jurisdiction, ids)
		if err != nil {
			zap.L().Warn("audit create failed", zap.Error(err))
		} else {
			run = created
		}
	}

	start := time.Now()
	result, err := e.Assembler.Build(ctx, jurisdiction, ids)
	if err != nil {
		if run != nil {
			if aerr := e.Audit.CompleteRun(ctx, run.ID, store.RunStatusFailed, 0, err.Error()); aerr != nil {
				zap.L().Warn("audit complete failed", zap.Error(aerr))
			}
		}
		return nil, eris.Wrapf(err, "build report for %s", jurisdiction)
	}

	zap.L().Info("report built",
		zap.String("jurisdiction", jurisdiction),
		zap.Int("questions", len(result.Answers)),
		zap.Duration("elapsed", time.Since(start)),
	)

	if run != nil {
		if aerr := e.Audit.CompleteRun(ctx, run.ID, store.RunStatusComplete, len([]rune(result.Text)), ""); aerr != nil {
			zap.L().Warn("audit complete failed", zap.Error(aerr))
		}
	}
	return result, nil
}

func writeDocument(blocks []report.Block, path string, write func([]report.Block) ([]byte, error)) error {
	data, err := write(blocks)
	if err != nil {
		return eris.Wrapf(err, "export %s", path)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return eris.Wrapf(err, "write %s", path)
	}
	zap.L().Info("document written", zap.String("path", path))
	return nil
}
