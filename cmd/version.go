package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func versionCmd() *cobra.Command {
	var short bool

	command := cobra.Command{
		Use:   "version",
		Short: "Print version/build info",
		RunE: func(cmd *cobra.Command, _ []string) error {
			out := cmd.OutOrStdout()
			if short {
				_, err := fmt.Fprintln(out, version)
				return err
			}
			_, err := fmt.Fprintf(out, "%s %s (commit %s, built %s)\n", appName, version, commit, date)
			return err
		},
	}
	command.Flags().BoolVarP(&short, "short", "s", false, "Prints the version only")

	return &command
}
