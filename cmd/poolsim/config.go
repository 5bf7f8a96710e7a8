package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/playmatatu/poolsim/internal/config"
)

func newConfigCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "inspect physics configuration",
	}

	var out string
	dump := &cobra.Command{
		Use:   "dump",
		Short: "print the effective physics config as yaml",
		RunE: func(cmd *cobra.Command, args []string) error {
			physics, err := config.LoadPhysics(physicsPath)
			if err != nil {
				return err
			}
			if out != "" {
				return config.SavePhysics(out, physics)
			}
			data, err := yaml.Marshal(physics)
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		},
	}
	dump.Flags().StringVarP(&out, "out", "o", "", "write to file instead of stdout")

	validate := &cobra.Command{
		Use:   "validate [file]",
		Short: "check a physics config file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := config.LoadPhysics(args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: ok\n", args[0])
			return nil
		},
	}

	cmd.AddCommand(dump, validate)
	return cmd
}
