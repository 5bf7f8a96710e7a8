package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/playmatatu/poolsim/internal/auth"
)

func newHashKeyCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "hash-key [control-key]",
		Short: "print the bcrypt hash to use as CONTROL_KEY_HASH",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			hash, err := auth.HashControlKey(args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), hash)
			return nil
		},
	}
}
