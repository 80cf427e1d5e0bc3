package main

import (
	"fmt"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"
	"github.com/zoobzio/chainz"
)

func newTestCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "test",
		Short: "Trace a single record through the pipeline",
		Long: `Run one record through the pipeline with tracing and print the result,
including a snapshot of the record after every node.

Example:
  chainz test --pipeline pipeline.yaml --record '{"id": 1, "count": "3"}' --export trace.json`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			raw := a.settings.GetString("record")
			if raw == "" {
				return fmt.Errorf("--record is required")
			}
			var record chainz.Record
			if err := json.Unmarshal([]byte(raw), &record); err != nil {
				return fmt.Errorf("failed to decode record: %w", err)
			}

			p, err := a.pipeline(a.settings.GetString("pipeline"))
			if err != nil {
				return err
			}
			defer p.Close()

			var result chainz.Result
			err = chainz.Run(cmd.Context(), p, func(p *chainz.Pipeline) error {
				result, err = p.Test(cmd.Context(), record, a.settings.GetString("export"))
				return err
			})
			if err != nil {
				return err
			}

			data, err := json.MarshalIndent(result, "", "  ")
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(data))
			return nil
		},
	}
	cmd.Flags().StringP("pipeline", "p", "", "pipeline definition (YAML)")
	cmd.Flags().StringP("record", "r", "", "record as JSON")
	cmd.Flags().StringP("export", "e", "", "also write the trace to this file")
	return cmd
}
