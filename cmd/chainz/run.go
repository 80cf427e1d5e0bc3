package main

import (
	"fmt"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"
	"github.com/zoobzio/chainz"
	"go.uber.org/zap"
)

func newRunCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Process a batch of records",
		Long: `Process every record of the input through the pipeline and write the
results grouped by outcome.

Input is a JSON array or JSON Lines; "-" reads standard input. The output
format follows the file extension (.json, .yaml, .msgpack); without
--output the results are printed as JSON.

Example:
  chainz run --pipeline pipeline.yaml --input records.json --output results.json`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			p, err := a.pipeline(a.settings.GetString("pipeline"))
			if err != nil {
				return err
			}
			defer p.Close()

			records, err := readRecords(a.settings.GetString("input"), cmd.InOrStdin())
			if err != nil {
				return err
			}

			var batch chainz.BatchResult
			err = chainz.Run(cmd.Context(), p, func(p *chainz.Pipeline) error {
				batch, err = p.Process(cmd.Context(), records)
				return err
			})
			if err != nil {
				return err
			}

			counts := batch.Counts()
			a.logger.Info("batch complete",
				zap.Int("success", counts[chainz.Success]),
				zap.Int("filtered", counts[chainz.Filtered]),
				zap.Int("error", counts[chainz.Failed]),
			)

			if out := a.settings.GetString("output"); out != "" {
				if err := chainz.Export(out, batch); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "success=%d filtered=%d error=%d -> %s\n",
					counts[chainz.Success], counts[chainz.Filtered], counts[chainz.Failed], out)
				return nil
			}
			data, err := json.MarshalIndent(batch, "", "  ")
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(data))
			return nil
		},
	}
	cmd.Flags().StringP("pipeline", "p", "", "pipeline definition (YAML)")
	cmd.Flags().StringP("input", "i", "-", "input records (JSON array or JSON Lines)")
	cmd.Flags().StringP("output", "o", "", "write results to this file")
	return cmd
}
