// Package keywords implements the keywords command for inspecting and seeding the
// keyword tables that drive expense detection and categorization.
package keywords

import (
	"fmt"
	"io"
	"os"

	"fedelife/expense-extractor/cmd/root"
	"fedelife/expense-extractor/internal/categorizer"
	"fedelife/expense-extractor/internal/container"
	"fedelife/expense-extractor/internal/currencyutils"
	"fedelife/expense-extractor/internal/store"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// Force allows init to overwrite an existing file.
var Force bool

// Cmd represents the keywords command
var Cmd = &cobra.Command{
	Use:   "keywords",
	Short: "Inspect and manage keyword tables",
}

var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the keyword tables in use as YAML",
	RunE: func(cmd *cobra.Command, args []string) error {
		c := root.GetContainer()
		if c == nil {
			return fmt.Errorf("container not initialized")
		}
		return Show(c, cmd.OutOrStdout())
	},
}

var initCmd = &cobra.Command{
	Use:   "init [file]",
	Short: "Write the built-in keyword tables to a file",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c := root.GetContainer()
		if c == nil {
			return fmt.Errorf("container not initialized")
		}
		path := c.GetConfig().Extraction.KeywordsFile
		if len(args) == 1 {
			path = args[0]
		}
		if err := Init(path, Force); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Wrote keyword tables to %s\n", path)
		return nil
	},
}

var checkCmd = &cobra.Command{
	Use:   "check <line> [amount]",
	Short: "Show how a statement line would be classified",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		c := root.GetContainer()
		if c == nil {
			return fmt.Errorf("container not initialized")
		}
		amount := "1"
		if len(args) == 2 {
			amount = args[1]
		}
		return Check(c, args[0], amount, cmd.OutOrStdout())
	},
}

func init() {
	initCmd.Flags().BoolVar(&Force, "force", false, "Overwrite an existing file")
	Cmd.AddCommand(showCmd, initCmd, checkCmd)
}

// Show writes the loaded tables as YAML.
func Show(c *container.Container, w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(c.GetKeywords()); err != nil {
		return fmt.Errorf("error encoding keyword tables: %w", err)
	}
	return enc.Close()
}

// Init writes the built-in tables to path.
func Init(path string, force bool) error {
	if path == "" {
		return fmt.Errorf("no keywords file given")
	}
	if _, err := os.Stat(path); err == nil && !force {
		return fmt.Errorf("%s already exists (use --force to overwrite)", path)
	}
	return store.NewKeywordStore(path, nil).SaveKeywordTables(store.DefaultKeywordTables())
}

// Check prints the validator's decision for line, read against the keywords file
// as it is on disk now.
func Check(c *container.Container, line, amount string, w io.Writer) error {
	value, err := currencyutils.ParseAmount(amount)
	if err != nil {
		return fmt.Errorf("invalid amount %q: %w", amount, err)
	}
	validator, err := categorizer.NewExpenseValidatorFromSource(c.GetStore(), c.GetLogger())
	if err != nil {
		return err
	}

	decision := validator.Validate(line, value)
	category, matched := validator.Categorize(line)
	fmt.Fprintf(w, "amount: %s\naccepted: %t\nreason: %s\ncategory: %s\ncategory matched: %t\nincome: %t\nconfidence: %s\nkeyword: %s\n",
		currencyutils.FormatAmount(currencyutils.Round2(value.Abs()), c.GetConfig().Currency.Local),
		decision.Accepted, decision.Reason, category, matched, validator.IsIncome(line),
		decision.Confidence, decision.Keyword)
	return nil
}
