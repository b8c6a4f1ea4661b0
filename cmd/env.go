package main

import (
	"context"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/lex-research/internal/answer"
	"github.com/sells-group/lex-research/internal/knowledge"
	"github.com/sells-group/lex-research/internal/model"
	"github.com/sells-group/lex-research/internal/relevance"
	"github.com/sells-group/lex-research/internal/report"
	"github.com/sells-group/lex-research/internal/store"
	"github.com/sells-group/lex-research/pkg/deepseek"
)

// env bundles the wired pipeline shared by the commands.
type env struct {
	Catalog   *model.Catalog
	Assembler *report.Assembler
	Answerer  *answer.Service
	Audit     store.Store
}

func (e *env) Close() {
	if e.Audit != nil {
		if err := e.Audit.Close(); err != nil {
			zap.L().Warn("close audit store", zap.Error(err))
		}
	}
}

// initEnv wires the catalog, knowledge loader, relevance extractor,
// model client and report assembler from config.
func initEnv(ctx context.Context) (*env, error) {
	catalog := model.DefaultCatalog()
	loader := knowledge.NewLoader(cfg.Knowledge.Dir, catalog)

	table := relevance.DefaultTable()
	if cfg.Extract.KeywordsFile != "" {
		t, err := relevance.LoadTable(cfg.Extract.KeywordsFile)
		if err != nil {
			return nil, eris.Wrap(err, "load keyword table")
		}
		table = t
	}
	extractor := relevance.NewExtractor(table)

	client := deepseek.NewClient(cfg.DeepSeek.Key,
		deepseek.WithBaseURL(cfg.DeepSeek.BaseURL),
		deepseek.WithModel(cfg.DeepSeek.Model),
		deepseek.WithTimeouts(cfg.DeepSeek.ConnectTimeout(), cfg.DeepSeek.ReadTimeout()),
		deepseek.WithRateLimit(cfg.DeepSeek.RequestsPerSecond),
		deepseek.WithMaxResponseBytes(cfg.DeepSeek.MaxResponseBytes),
	)

	answerer := answer.NewService(answer.Config{
		APIKey:         cfg.DeepSeek.Key,
		Client:         client,
		Extractor:      extractor,
		GroundingChars: cfg.Extract.GroundingChars,
		Temperature:    cfg.DeepSeek.Temperature,
		MaxTokens:      cfg.DeepSeek.MaxTokens,
		MaxRetries:     cfg.DeepSeek.MaxRetries,
	})

	e := &env{
		Catalog:   catalog,
		Assembler: report.NewAssembler(catalog, loader, answerer, cfg.Extract.IntroChars),
		Answerer:  answerer,
	}

	if cfg.Audit.Path != "" {
		st, err := store.NewSQLite(cfg.Audit.Path)
		if err != nil {
			return nil, eris.Wrap(err, "open audit store")
		}
		if err := st.Migrate(ctx); err != nil {
			st.Close()
			return nil, eris.Wrap(err, "migrate audit store")
		}
		e.Audit = st
	}

	return e, nil
}
