package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/couchcryptid/fars-data/internal/domain"
)

func newLoadCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "load YEAR",
		Short: "Load one year and print a preview of its records",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			year, err := domain.ParseYear(args[0])
			if err != nil {
				return err
			}
			a, err := newApp(cmd)
			if err != nil {
				return err
			}

			df, err := a.pipeline.LoadYear(year)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%d: %d rows x %d columns\n\n", year, df.Nrow(), df.Ncol())
			fmt.Fprintln(out, df.String())
			return nil
		},
	}
}
