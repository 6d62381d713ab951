package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cwbudde/algo-doa/doa"
)

func newAlgorithmsCmd(*app) *cobra.Command {
	return &cobra.Command{
		Use:   "algorithms",
		Short: "List the available estimators",
		Run: func(cmd *cobra.Command, _ []string) {
			for _, n := range doa.Names() {
				fmt.Fprintln(cmd.OutOrStdout(), n)
			}
		},
	}
}
