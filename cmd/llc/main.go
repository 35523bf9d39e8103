package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	root := &cobra.Command{
		Use:           "llc",
		Short:         "llc is an embeddable C-like scripting language",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	var configPath string
	runCmd := &cobra.Command{
		Use:   "run [files...]",
		Short: "Compile and run scripts",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScripts(configPath, args)
		},
	}
	runCmd.Flags().StringVarP(&configPath, "config", "c", "", "YAML manifest naming scripts and seeded values")

	replCmd := &cobra.Command{
		Use:   "repl",
		Short: "Start an interactive session",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runREPL()
		},
	}

	root.AddCommand(runCmd, replCmd)
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
