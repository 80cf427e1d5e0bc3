package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func newCheckCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check",
		Short: "Validate a pipeline definition without processing records",
		RunE: func(cmd *cobra.Command, _ []string) error {
			p, err := a.pipeline(a.settings.GetString("pipeline"))
			if err != nil {
				return err
			}
			defer p.Close()

			if err := p.Check(); err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "STAGE\tNODE\tINPUT\tOUTPUT")
			for _, info := range p.Schema() {
				fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", info.Index+1, info.ID, info.Input, info.Output)
			}
			if err := w.Flush(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: ok\n", p.Name())
			return nil
		},
	}
	cmd.Flags().StringP("pipeline", "p", "", "pipeline definition (YAML)")
	return cmd
}
