package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	physicsPath  string
	outputFormat string
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "poolsim",
		Short:         "headless 8-ball pool simulator",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if outputFormat != "text" && outputFormat != "json" {
				return fmt.Errorf("invalid format %q: must be text or json", outputFormat)
			}
			return nil
		},
	}

	cmd.PersistentFlags().StringVar(&physicsPath, "physics", "", "physics config file (yaml)")
	cmd.PersistentFlags().StringVar(&outputFormat, "format", "text", "output format (text|json)")

	cmd.AddCommand(newSimulateCommand())
	cmd.AddCommand(newConfigCommand())
	cmd.AddCommand(newHashKeyCommand())
	return cmd
}
