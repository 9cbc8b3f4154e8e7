package jsonrecovery

import (
	"errors"
	"fmt"
	"strings"

	"fedelife/expense-extractor/internal/logging"
	"fedelife/expense-extractor/internal/models"
	"fedelife/expense-extractor/internal/parsererror"

	"github.com/google/uuid"
)

// Stage names, in cascade order.
const (
	StageExtraction  = "extraction"
	StageDirect      = "direct"
	StageBasicRepair = "basic-repair"
	StageSection     = "section"
	StageRegex       = "regex"
)

// Stage is one step of the cascade. Run must be pure: same input, same document.
type Stage struct {
	Name string

	// Ceiling caps the confidence of a result produced by this stage.
	Ceiling float64

	// RequireDate makes a date mandatory for an element to be kept.
	RequireDate bool

	Run func(raw string) (*Document, error)
}

// Options tunes the parser. Zero values use the package defaults.
type Options struct {
	MaxFallbackElements  int
	DescriptionMaxLength int
}

// Parser runs the recovery cascade.
type Parser struct {
	stages  []Stage
	descMax int
	logger  logging.Logger
	newID   func() string
}

// NewParser builds the default cascade: direct parse, basic repair, section-based
// repair and the regex fallback.
func NewParser(opts Options, logger logging.Logger) *Parser {
	logger = logging.OrDefault(logger)
	if opts.DescriptionMaxLength <= 0 {
		opts.DescriptionMaxLength = models.DescriptionMaxLength
	}
	maxFallback := opts.MaxFallbackElements

	return &Parser{
		stages: []Stage{
			{Name: StageDirect, Ceiling: 1.0, Run: ParseDirect},
			{Name: StageBasicRepair, Ceiling: 0.8, Run: ParseRepaired},
			{Name: StageSection, Ceiling: 0.6, RequireDate: true, Run: func(raw string) (*Document, error) {
				return parseSections(raw, logger)
			}},
			{Name: StageRegex, Ceiling: 0.3, Run: func(raw string) (*Document, error) {
				return parseRegexFallback(raw, maxFallback)
			}},
		},
		descMax: opts.DescriptionMaxLength,
		logger:  logger,
		newID:   uuid.NewString,
	}
}

// ParseDirect extracts the JSON object and decodes it as is.
func ParseDirect(raw string) (*Document, error) {
	text, err := Extract(raw)
	if err != nil {
		return nil, err
	}
	return decodeDocument(text)
}

// ParseRepaired extracts the JSON object, applies RepairBasic and decodes it.
func ParseRepaired(raw string) (*Document, error) {
	text, err := Extract(raw)
	if err != nil {
		return nil, err
	}
	return decodeDocument(RepairBasic(text))
}

// Parse runs the stages in order and returns the first result that keeps at least
// one expense, or a document that legitimately lists none. When nothing works the
// result has Success false and Error set; it never panics and never returns nil
// Expenses.
func (p *Parser) Parse(raw string) ParseResult {
	if strings.TrimSpace(raw) == "" {
		return failure(&parsererror.RecoveryError{Stage: StageExtraction, Err: errors.New("empty response")})
	}

	var errs []error
	for _, stage := range p.stages {
		doc, err := stage.Run(raw)
		if err != nil {
			errs = append(errs, &parsererror.RecoveryError{Stage: stage.Name, Err: err})
			p.logger.Debug("Recovery stage failed",
				logging.F(logging.FieldStage, stage.Name),
				logging.F(logging.FieldError, err.Error()))
			continue
		}

		if len(doc.Elements) == 0 && doc.Dropped == 0 {
			return p.result(stage, doc, []models.ExtractedExpense{}, 0)
		}

		confidence := stageConfidence(stage, doc)
		expenses, dropped := p.convert(stage, doc, models.ConfidenceFromScore(confidence))
		if len(expenses) == 0 {
			err := fmt.Errorf("%w: none of %d element(s) passed validation", ErrNothingSalvaged, dropped)
			errs = append(errs, &parsererror.RecoveryError{Stage: stage.Name, Err: err})
			p.logger.Debug("Recovery stage kept nothing",
				logging.F(logging.FieldStage, stage.Name),
				logging.F(logging.FieldDropped, dropped))
			continue
		}
		return p.result(stage, doc, expenses, dropped)
	}

	err := errors.Join(errs...)
	p.logger.Warn("Model response could not be recovered",
		logging.F(logging.FieldError, err.Error()))
	return failure(err)
}

func (p *Parser) convert(stage Stage, doc *Document, defaultConfidence models.Confidence) ([]models.ExtractedExpense, int) {
	expenses := make([]models.ExtractedExpense, 0, len(doc.Elements))
	dropped := doc.Dropped
	for i, el := range doc.Elements {
		err := el.check(stage.RequireDate)
		var expense models.ExtractedExpense
		if err == nil {
			expense, err = el.toExpense(p.newID(), p.descMax, defaultConfidence)
		}
		if err != nil {
			dropped++
			p.logger.Debug("Dropping expense element",
				logging.F(logging.FieldStage, stage.Name),
				logging.F(logging.FieldLineNumber, i),
				logging.F(logging.FieldReason, err.Error()))
			continue
		}
		expenses = append(expenses, expense)
	}
	return expenses, dropped
}

func (p *Parser) result(stage Stage, doc *Document, expenses []models.ExtractedExpense, dropped int) ParseResult {
	summary := doc.Summary
	if dropped > 0 {
		note := fmt.Sprintf("recovered %d of %d expenses", len(expenses), len(expenses)+dropped)
		if summary == "" {
			summary = note
		} else {
			summary = summary + " (" + note + ")"
		}
	}
	if summary == "" && len(expenses) == 0 {
		summary = "no expenses reported"
	}

	p.logger.Info("Model response recovered",
		logging.F(logging.FieldStage, stage.Name),
		logging.F(logging.FieldCount, len(expenses)),
		logging.F(logging.FieldDropped, dropped))

	return ParseResult{
		Success:    true,
		Confidence: stageConfidence(stage, doc),
		Summary:    summary,
		Expenses:   expenses,
		Stage:      stage.Name,
		Dropped:    dropped,
	}
}

func stageConfidence(stage Stage, doc *Document) float64 {
	if doc.HasConfidence && doc.Confidence < stage.Ceiling {
		return doc.Confidence
	}
	return stage.Ceiling
}
