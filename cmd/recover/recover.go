// Package recovercmd implements the recover command, which runs the model-response
// recovery cascade over a saved response and prints the result as JSON.
package recovercmd

import (
	"fmt"
	"io"
	"os"

	"fedelife/expense-extractor/cmd/root"
	"fedelife/expense-extractor/internal/common"
	"fedelife/expense-extractor/internal/container"
	"fedelife/expense-extractor/internal/jsonrecovery"

	"github.com/spf13/cobra"
)

// Cmd represents the recover command
var Cmd = &cobra.Command{
	Use:   "recover",
	Short: "Recover expenses from a malformed model response",
	Long: `Read a raw language-model response (from --input, or stdin when omitted) and
run it through the recovery cascade: direct parse, basic repair, section salvage
and regex fallback. The ParseResult is printed as JSON.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		c := root.GetContainer()
		if c == nil {
			return fmt.Errorf("container not initialized")
		}
		result, err := Run(c, root.SharedFlags.Input, cmd.InOrStdin())
		if err != nil {
			return err
		}
		if err := common.WriteOutput(root.SharedFlags.Output, common.FormatJSON, root.Delimiter(), result.Expenses, result, c.GetLogger()); err != nil {
			return err
		}
		if !result.Success {
			return fmt.Errorf("model response could not be recovered: %s", result.Error)
		}
		return nil
	},
}

// Run reads the response from path, or from stdin when path is empty or "-".
func Run(c *container.Container, path string, stdin io.Reader) (jsonrecovery.ParseResult, error) {
	var (
		data []byte
		err  error
	)
	if path == "" || path == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(path) // #nosec G304 -- CLI tool requires user-provided file paths
	}
	if err != nil {
		return jsonrecovery.ParseResult{}, fmt.Errorf("error reading model response: %w", err)
	}
	return c.NewRecoveryParser().Parse(string(data)), nil
}
