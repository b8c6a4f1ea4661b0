package report

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/sells-group/lex-research/internal/model"
)

// Validation and availability errors. They halt a build before any model
// call is made; everything past that point degrades per-answer instead.
var (
	ErrJurisdictionRequired = errors.New("report: jurisdiction required")
	ErrUnknownJurisdiction  = errors.New("report: unsupported jurisdiction")
	ErrNoQuestions          = errors.New("report: no questions selected")
	ErrNoDocuments          = errors.New("report: no documents for jurisdiction")
)

// CorpusLoader loads the full document corpus of a jurisdiction. An empty
// string means no documents exist.
type CorpusLoader interface {
	LoadCorpus(jurisdiction string) string
}

// Answerer produces one grounded answer per question. Failures come back
// as answer text, never as errors.
type Answerer interface {
	Ask(ctx context.Context, prompt, corpus, jurisdiction string) string
}

// Result is one assembled report in both rendered and structured form.
type Result struct {
	Jurisdiction string
	Introduction string
	Truncated    bool
	Answers      []model.AnswerResult
	Blocks       []Block
	Text         string
}

// Assembler drives the answer service once per requested question and
// assembles the results into one report.
type Assembler struct {
	catalog  *model.Catalog
	loader   CorpusLoader
	answerer Answerer

	// introChars bounds the corpus prefix quoted inside the introduction
	// prompt; it doubles as the truncation-warning threshold.
	introChars int
}

// NewAssembler creates a report Assembler.
func NewAssembler(catalog *model.Catalog, loader CorpusLoader, answerer Answerer, introChars int) *Assembler {
	if introChars <= 0 {
		introChars = 5000
	}
	return &Assembler{catalog: catalog, loader: loader, answerer: answerer, introChars: introChars}
}

// Build produces the report for one jurisdiction. Requested question ids
// are answered in ascending numeric order regardless of input order;
// unknown ids are dropped silently. A per-question failure is embedded in
// that answer and the remaining questions still run.
func (a *Assembler) Build(ctx context.Context, jurisdiction string, questionIDs []string) (*Result, error) {
	if jurisdiction == "" {
		return nil, ErrJurisdictionRequired
	}
	if !a.catalog.ValidJurisdiction(jurisdiction) {
		return nil, fmt.Errorf("%w: %s", ErrUnknownJurisdiction, jurisdiction)
	}
	if len(questionIDs) == 0 {
		return nil, ErrNoQuestions
	}

	questions := a.catalog.SelectQuestions(questionIDs)
	if len(questions) == 0 {
		return nil, ErrNoQuestions
	}

	corpus := a.loader.LoadCorpus(jurisdiction)
	if corpus == "" {
		return nil, fmt.Errorf("%w: %s", ErrNoDocuments, jurisdiction)
	}

	prefix := corpusPrefix(corpus, a.introChars)
	introPrompt := fmt.Sprintf(
		"请根据以下%s的法律法规内容，撰写一段关于数据隐私准入制度的简介（不超过200字，仅概述核心内容，不要包含法律依据）：%s",
		jurisdiction, prefix,
	)
	introduction := a.answerer.Ask(ctx, introPrompt, corpus, jurisdiction)

	answers := make([]model.AnswerResult, 0, len(questions))
	for _, q := range questions {
		prompt := fmt.Sprintf("针对%s，%s。请仅回答此问题，不要涉及其他任何问题的内容。", jurisdiction, q.Prompt)
		text := a.answerer.Ask(ctx, prompt, corpus, jurisdiction)
		answers = append(answers, model.AnswerResult{
			QuestionID:    q.ID,
			QuestionTitle: q.Title,
			Answer:        text,
		})
		zap.L().Debug("question answered",
			zap.String("jurisdiction", jurisdiction),
			zap.String("question_id", q.ID),
		)
	}

	truncated := len([]rune(corpus)) > a.introChars

	return &Result{
		Jurisdiction: jurisdiction,
		Introduction: introduction,
		Truncated:    truncated,
		Answers:      answers,
		Blocks:       Blocks(jurisdiction, introduction, truncated, answers),
		Text:         Render(jurisdiction, introduction, truncated, answers),
	}, nil
}

func corpusPrefix(corpus string, max int) string {
	r := []rune(corpus)
	if len(r) <= max {
		return corpus
	}
	return string(r[:max])
}
