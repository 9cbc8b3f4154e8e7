// Package main provides the entry point for the expense-extractor CLI.
package main

import (
	"os"

	"fedelife/expense-extractor/cmd/analyze"
	"fedelife/expense-extractor/cmd/extract"
	"fedelife/expense-extractor/cmd/keywords"
	recovercmd "fedelife/expense-extractor/cmd/recover"
	"fedelife/expense-extractor/cmd/root"
	"fedelife/expense-extractor/cmd/serve"
)

func init() {
	root.Init()

	root.Cmd.AddCommand(extract.Cmd)
	root.Cmd.AddCommand(analyze.Cmd)
	root.Cmd.AddCommand(recovercmd.Cmd)
	root.Cmd.AddCommand(serve.Cmd)
	root.Cmd.AddCommand(keywords.Cmd)
}

func main() {
	if err := root.Cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
