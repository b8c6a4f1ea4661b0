package main

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

var (
	batchJurisdictions []string
	batchDir           string
)

var batchCmd = &cobra.Command{
	Use:   "batch",
	Short: "Generate reports for several jurisdictions concurrently",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		e, err := initEnv(ctx)
		if err != nil {
			return err
		}
		defer e.Close()

		jurisdictions := batchJurisdictions
		if len(jurisdictions) == 0 {
			jurisdictions = e.Catalog.Jurisdictions()
		}
		for _, j := range jurisdictions {
			if !e.Catalog.ValidJurisdiction(j) {
				return eris.Errorf("unsupported jurisdiction: %s", j)
			}
		}

		var ids []string
		for _, q := range e.Catalog.Questions() {
			ids = append(ids, q.ID)
		}

		if err := os.MkdirAll(batchDir, 0o755); err != nil {
			return eris.Wrapf(err, "create output dir %s", batchDir)
		}

		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(cfg.Batch.MaxConcurrentJurisdictions)

		for _, jurisdiction := range jurisdictions {
			g.Go(func() error {
				result, err := runAudited(gctx, e, jurisdiction, ids)
				if err != nil {
					// One failed jurisdiction should not abort the rest.
					zap.L().Error("batch jurisdiction failed",
						zap.String("jurisdiction", jurisdiction),
						zap.Error(err),
					)
					return nil
				}

				path := filepath.Join(batchDir, fmt.Sprintf("%s.txt", jurisdiction))
				if err := os.WriteFile(path, []byte(result.Text), 0o644); err != nil {
					return eris.Wrapf(err, "write report %s", path)
				}
				zap.L().Info("batch report written", zap.String("path", path))
				return nil
			})
		}

		return g.Wait()
	},
}

func init() {
	batchCmd.Flags().StringSliceVar(&batchJurisdictions, "jurisdictions", nil, "jurisdictions to research (default: all)")
	batchCmd.Flags().StringVar(&batchDir, "dir", "reports", "output directory for report files")
	rootCmd.AddCommand(batchCmd)
}
