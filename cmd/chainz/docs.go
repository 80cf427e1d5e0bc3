package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newDocCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "doc",
		Short: "Generate Markdown documentation for a pipeline",
		RunE: func(cmd *cobra.Command, _ []string) error {
			p, err := a.pipeline(a.settings.GetString("pipeline"))
			if err != nil {
				return err
			}
			defer p.Close()

			out := a.settings.GetString("output")
			if out == "" {
				fmt.Fprintln(cmd.OutOrStdout(), p.Document(nil))
				return nil
			}
			if err := p.Doc(out, nil); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", out)
			return nil
		},
	}
	cmd.Flags().StringP("pipeline", "p", "", "pipeline definition (YAML)")
	cmd.Flags().StringP("output", "o", "", "write the document to this file")
	return cmd
}
