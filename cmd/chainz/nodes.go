package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newNodesCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "nodes",
		Short: "List the node references available to definitions",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintln(cmd.OutOrStdout(), "Available nodes:")
			fmt.Fprintln(cmd.OutOrStdout())
			for _, e := range a.registry.Entries() {
				fmt.Fprintf(cmd.OutOrStdout(), "  %-12s %s\n", e.Ref, e.Doc.Func)
			}
		},
	}
}
