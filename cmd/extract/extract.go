// Package extract implements the extract command: statement text plus an optional
// saved model response, merged into one expense list.
package extract

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"fedelife/expense-extractor/cmd/root"
	"fedelife/expense-extractor/internal/common"
	"fedelife/expense-extractor/internal/container"
	"fedelife/expense-extractor/internal/logging"
	"fedelife/expense-extractor/internal/pdftext"
	"fedelife/expense-extractor/internal/pipeline"
	"fedelife/expense-extractor/internal/validation"

	"github.com/spf13/cobra"
)

// ModelResponseFile is the --model-response flag.
var ModelResponseFile string

// Cmd represents the extract command
var Cmd = &cobra.Command{
	Use:   "extract",
	Short: "Extract expenses from a statement",
	Long: `Extract expenses from a PDF or text statement using the keyword and pattern
engine. When --model-response points to a saved language-model answer, that answer
is recovered and merged with the heuristic results.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		c := root.GetContainer()
		if c == nil {
			return fmt.Errorf("container not initialized")
		}
		return Run(cmd.Context(), c, Options{
			Input:         root.SharedFlags.Input,
			Output:        root.SharedFlags.Output,
			Format:        root.SharedFlags.Format,
			ModelResponse: ModelResponseFile,
			Delimiter:     root.Delimiter(),
		})
	},
}

func init() {
	Cmd.Flags().StringVarP(&ModelResponseFile, "model-response", "m", "", "File holding a raw language-model response to merge")
}

// Options configures one extract run.
type Options struct {
	Input         string
	Output        string
	Format        string
	ModelResponse string
	Delimiter     rune
	// UseModel calls the container's model client instead of reading ModelResponse.
	UseModel bool
}

// ErrNoExpenses is returned after writing when the analysis found nothing.
var ErrNoExpenses = errors.New("no expenses found")

// Run reads the statement, analyzes it and writes the expenses.
func Run(ctx context.Context, c *container.Container, opts Options) error {
	if ctx == nil {
		ctx = context.Background()
	}
	logger := c.GetLogger()
	if err := validation.InputFile(opts.Input); err != nil {
		return err
	}
	if err := validation.OutputPath(opts.Output); err != nil {
		return err
	}
	if opts.Format == "" {
		opts.Format = common.FormatCSV
	}
	if err := validation.OutputFormat(opts.Format); err != nil {
		return err
	}

	text, err := pdftext.ReadStatement(opts.Input, c.GetExtractor())
	if err != nil {
		return fmt.Errorf("error reading statement: %w", err)
	}
	logger.Info("Statement loaded",
		logging.F(logging.FieldInputFile, opts.Input),
		logging.F(logging.FieldCount, len(text)))

	analyzer := c.NewAnalyzer()
	var analysis pipeline.Analysis
	if opts.UseModel {
		analysis = analyzer.AnalyzeWithModel(ctx, text)
	} else {
		response := ""
		if opts.ModelResponse != "" {
			data, err := os.ReadFile(opts.ModelResponse) // #nosec G304 -- CLI tool requires user-provided file paths
			if err != nil {
				return fmt.Errorf("error reading model response: %w", err)
			}
			response = string(data)
		}
		analysis = analyzer.Analyze(ctx, text, response)
	}

	if err := common.WriteOutput(opts.Output, opts.Format, opts.Delimiter, analysis.Expenses, analysis, logger); err != nil {
		return err
	}
	if !analysis.Success {
		return fmt.Errorf("%w: %s", ErrNoExpenses, strings.TrimPrefix(analysis.Error, ErrNoExpenses.Error()+": "))
	}
	return nil
}
