// Package pipeline runs one analysis session: refresh the exchange rate, obtain and
// recover the model's answer, mine the statement heuristically, bring both lists to
// the local currency and merge them.
package pipeline

import (
	"context"
	"fmt"
	"strings"

	"fedelife/expense-extractor/internal/exchange"
	"fedelife/expense-extractor/internal/jsonrecovery"
	"fedelife/expense-extractor/internal/llm"
	"fedelife/expense-extractor/internal/logging"
	"fedelife/expense-extractor/internal/merger"
	"fedelife/expense-extractor/internal/models"
	"fedelife/expense-extractor/internal/statementparser"
)

// Analysis is the outcome of one session.
type Analysis struct {
	Success        bool                      `json:"success"`
	Confidence     models.Confidence         `json:"confidence"`
	Summary        string                    `json:"summary"`
	Error          string                    `json:"error,omitempty"`
	Expenses       []models.ExtractedExpense `json:"expenses"`
	ModelCount     int                       `json:"model_count"`
	HeuristicCount int                       `json:"heuristic_count"`
	Rate           models.ExchangeRate       `json:"rate"`
}

// Options gathers the tuning of every stage.
type Options struct {
	Parser   statementparser.Options
	Recovery jsonrecovery.Options
	Merge    merger.Options
}

// Analyzer owns the components of a single session. It is not safe for concurrent
// use; create one per request.
type Analyzer struct {
	session    *exchange.Session
	normalizer *exchange.Normalizer
	heuristic  *statementparser.Parser
	recovery   *jsonrecovery.Parser
	merger     *merger.Merger
	model      llm.Client
	logger     logging.Logger
}

// NewAnalyzer wires a session. model may be nil when no language model is available.
func NewAnalyzer(tables models.KeywordTables, session *exchange.Session, model llm.Client, opts Options, logger logging.Logger) *Analyzer {
	logger = logging.OrDefault(logger)
	normalizer := exchange.NewNormalizer(session, logger)
	return &Analyzer{
		session:    session,
		normalizer: normalizer,
		heuristic:  statementparser.NewParser(tables, normalizer, opts.Parser, logger),
		recovery:   jsonrecovery.NewParser(opts.Recovery, logger),
		merger:     merger.NewMerger(opts.Merge, logger),
		model:      model,
		logger:     logger,
	}
}

// AnalyzeWithModel asks the model client for a response and then runs Analyze. A
// failed model call is logged and the session continues heuristic-only.
func (a *Analyzer) AnalyzeWithModel(ctx context.Context, text string) Analysis {
	a.refreshRate(ctx)

	response := ""
	if a.model != nil && strings.TrimSpace(text) != "" {
		var err error
		response, err = a.model.ExtractExpenses(ctx, text)
		if err != nil {
			a.logger.WithError(err).Warn("Model call failed, continuing with heuristic extraction",
				logging.F(logging.FieldModel, a.model.Name()))
			response = ""
		}
	}
	return a.run(ctx, text, response)
}

// Analyze combines statement text with an already obtained model response, which
// may be empty. It never fails: problems surface as Success=false with a diagnostic.
func (a *Analyzer) Analyze(ctx context.Context, text, modelResponse string) Analysis {
	a.refreshRate(ctx)
	return a.run(ctx, text, modelResponse)
}

func (a *Analyzer) refreshRate(ctx context.Context) {
	if _, err := a.session.Refresh(ctx); err != nil {
		a.logger.Debug("Using cached exchange rate",
			logging.F(logging.FieldRate, a.session.Rate().Rate.String()))
	}
}

func (a *Analyzer) run(ctx context.Context, text, modelResponse string) Analysis {
	if err := ctx.Err(); err != nil {
		return Analysis{
			Confidence: models.ConfidenceLow,
			Error:      err.Error(),
			Expenses:   []models.ExtractedExpense{},
			Rate:       a.session.Rate(),
		}
	}

	var recovered jsonrecovery.ParseResult
	if strings.TrimSpace(modelResponse) != "" {
		recovered = a.recovery.Parse(modelResponse)
	} else {
		recovered = jsonrecovery.ParseResult{Expenses: []models.ExtractedExpense{}, Error: "no model response"}
	}

	heuristic := a.heuristic.Parse(text)

	modelList := a.normalizer.NormalizeAll(recovered.Expenses)
	heuristicList := a.normalizer.NormalizeAll(heuristic)
	merged := positive(a.merger.Merge(modelList, heuristicList))

	analysis := Analysis{
		Expenses:       merged,
		ModelCount:     len(modelList),
		HeuristicCount: len(heuristicList),
		Rate:           a.session.Rate(),
	}

	switch {
	case recovered.Success:
		analysis.Success = true
		analysis.Confidence = models.ConfidenceFromScore(recovered.Confidence)
		analysis.Summary = recovered.Summary
	case len(heuristicList) > 0:
		analysis.Success = true
		analysis.Confidence = models.ConfidenceMedium
		analysis.Summary = fmt.Sprintf("heuristic extraction only (%s)", recovered.Error)
	default:
		analysis.Confidence = models.ConfidenceLow
		analysis.Error = "no expenses found"
		if recovered.Error != "" {
			analysis.Error += ": " + recovered.Error
		}
	}

	a.logger.Info("Analysis finished",
		logging.F(logging.FieldStatus, analysis.Success),
		logging.F(logging.FieldCount, len(merged)),
		logging.F(logging.FieldConfidence, string(analysis.Confidence)),
		logging.F(logging.FieldRate, analysis.Rate.Rate.String()))
	return analysis
}

// positive drops anything that rounding left at zero.
func positive(expenses []models.ExtractedExpense) []models.ExtractedExpense {
	out := expenses[:0]
	for _, e := range expenses {
		if e.Amount.IsPositive() {
			out = append(out, e)
		}
	}
	return out
}
