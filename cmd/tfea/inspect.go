package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"tfea/adapters/excel"
	"tfea/domain/enrichment"
)

func newInspectCmd() *cobra.Command {
	var significantOnly bool

	cmd := &cobra.Command{
		Use:   "inspect [results.xlsx]",
		Short: "Print the results of a previously written workbook",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			results, err := excel.ReadResults(args[0])
			if err != nil {
				return err
			}
			if significantOnly {
				var kept []enrichment.Result
				for _, r := range results {
					if r.Significant {
						kept = append(kept, r)
					}
				}
				results = kept
			}
			fmt.Printf("%d motifs\n\n", len(results))
			printResults(os.Stdout, results)
			return nil
		},
	}

	cmd.Flags().BoolVar(&significantOnly, "significant", false, "Only show motifs passing the FDR cutoff")
	return cmd
}
