// Package main provides the diagnostic CLI: answer a questionnaire in the
// terminal and send the lead to a mail relay.
package main

import (
	"fmt"
	"os"

	"github.com/grupoquokka/diagnostico/internal/quiz"
	"github.com/spf13/cobra"
)

var version = "dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var catalogPath string

	rootCmd := &cobra.Command{
		Use:           "diagnostic",
		Short:         "Answer a service diagnostic from the terminal",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVar(&catalogPath, "catalog", "", "YAML file with extra or overriding diagnostics")

	loadCatalog := func() (*quiz.Catalog, error) {
		if catalogPath == "" {
			return quiz.DefaultCatalog(), nil
		}
		return quiz.LoadFile(catalogPath, quiz.DefaultCatalog())
	}

	rootCmd.AddCommand(
		newListCmd(loadCatalog),
		newRunCmd(loadCatalog),
	)
	return rootCmd
}

func newListCmd(loadCatalog func() (*quiz.Catalog, error)) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the available diagnostics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			catalog, err := loadCatalog()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, d := range catalog.List() {
				fmt.Fprintf(out, "%-12s %s (%d preguntas)\n", d.Slug, d.ServiceLabel, len(d.Questions))
			}
			return nil
		},
	}
}
