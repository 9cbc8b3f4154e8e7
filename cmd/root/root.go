// Package root contains the root command for the application
package root

import (
	"fmt"

	"fedelife/expense-extractor/internal/common"
	"fedelife/expense-extractor/internal/config"
	"fedelife/expense-extractor/internal/container"
	"fedelife/expense-extractor/internal/logging"

	"github.com/spf13/cobra"
)

// CommonFlags represents the flags that are common to multiple commands
type CommonFlags struct {
	Input  string
	Output string
	Format string
}

var (
	// Log is the shared logger instance for commands
	Log = logging.NewLogrusAdapter("info", "text")

	// Cmd is the root command
	Cmd = &cobra.Command{
		Use:   "expense-extractor",
		Short: "Extract expenses from bank statements.",
		Long: `expense-extractor mines bank-statement text for expense transactions.
It combines a keyword and pattern engine with the structured answer of a language
model, repairs malformed model output, converts dollar amounts to the local currency
and merges both result sets without duplicates.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
		PersistentPreRunE: initialize,
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if appContainer != nil {
				if err := appContainer.Close(); err != nil {
					Log.WithError(err).Warn("Failed to close container")
				}
			}
		},
	}

	// SharedFlags holds the persistent flags
	SharedFlags = CommonFlags{}

	appConfig    *config.Config
	appContainer *container.Container
)

// Init initializes the root command and all flags
func Init() {
	Cmd.PersistentFlags().StringVarP(&SharedFlags.Input, "input", "i", "", "Input statement (PDF or text)")
	Cmd.PersistentFlags().StringVarP(&SharedFlags.Output, "output", "o", "", "Output file (default stdout)")
	Cmd.PersistentFlags().StringVarP(&SharedFlags.Format, "format", "f", common.FormatCSV, "Output format: csv or json")
}

func initialize(cmd *cobra.Command, args []string) error {
	config.LoadEnv()

	cfg, err := config.InitializeConfig()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	logger := logging.NewLogrusAdapterFromLogger(config.ConfigureLoggingFromConfig(cfg))

	c, err := container.NewContainer(cfg, container.WithLogger(logger))
	if err != nil {
		return fmt.Errorf("failed to initialize application: %w", err)
	}

	SetContainer(c)
	return nil
}

// SetContainer installs a prebuilt container, bypassing configuration loading.
// Commands resolve their dependencies through GetContainer.
// A nil container resets the command state.
func SetContainer(c *container.Container) {
	appContainer = c
	if c == nil {
		appConfig = nil
		return
	}
	appConfig = c.GetConfig()
	Log = c.GetLogger()
}

// GetContainer returns the application container built by the root command.
func GetContainer() *container.Container {
	return appContainer
}

// GetConfig returns the loaded configuration, or the built-in defaults before
// the root command has run.
func GetConfig() *config.Config {
	if appConfig == nil {
		return config.Default()
	}
	return appConfig
}

// Delimiter returns the configured CSV delimiter.
func Delimiter() rune {
	return common.ParseDelimiter(GetConfig().CSV.Delimiter)
}
