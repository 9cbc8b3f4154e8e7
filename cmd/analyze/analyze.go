// Package analyze implements the analyze command: the statement is sent to the
// language model and its answer merged with the heuristic extraction.
package analyze

import (
	"fmt"

	"fedelife/expense-extractor/cmd/extract"
	"fedelife/expense-extractor/cmd/root"
	"fedelife/expense-extractor/internal/container"

	"github.com/spf13/cobra"
)

// Cmd represents the analyze command
var Cmd = &cobra.Command{
	Use:   "analyze",
	Short: "Extract expenses with the language model and merge with heuristics",
	Long: `Read a PDF or text statement, ask the configured Gemini model for its expenses,
recover the answer even when it is malformed and merge it with the keyword and
pattern engine. Requires ai.enabled and GEMINI_API_KEY.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		c := root.GetContainer()
		if c == nil {
			return fmt.Errorf("container not initialized")
		}
		return Run(cmd, c)
	},
}

// Run checks that a model client is configured and delegates to the extract flow.
func Run(cmd *cobra.Command, c *container.Container) error {
	if c.GetModelClient() == nil {
		return fmt.Errorf("model extraction is disabled: set ai.enabled=true and GEMINI_API_KEY")
	}
	return extract.Run(cmd.Context(), c, extract.Options{
		Input:     root.SharedFlags.Input,
		Output:    root.SharedFlags.Output,
		Format:    root.SharedFlags.Format,
		Delimiter: root.Delimiter(),
		UseModel:  true,
	})
}
