package main

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func newSearchCmd(a *app) *cobra.Command {
	var (
		asJSON   bool
		limit    int
		minScore float64
	)
	cmd := &cobra.Command{
		Use:   "search [term...]",
		Short: "Search posts and print the ranked results",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := commandContext(cmd)
			st, release, err := a.openStore(ctx)
			if err != nil {
				return err
			}
			defer release()

			svc, err := a.newService(st, nil)
			if err != nil {
				return err
			}
			resp, err := svc.Run(ctx, strings.Join(args, " "))
			if err != nil {
				return err
			}
			results := resp.Results
			if minScore > 0 {
				results = results.FilterByMinScore(minScore)
			}
			if limit > 0 && len(results) > limit {
				results = results[:limit]
			}

			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				resp.Results = results
				return enc.Encode(resp)
			}

			printf(cmd, "path: %s, %d results\n", resp.Path, len(results))
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			_, _ = fmt.Fprintln(tw, "SCORE\tPUBLISHED\tSLUG\tTITLE")
			for _, r := range results {
				_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n",
					strconv.FormatFloat(r.RelevanceScore, 'f', -1, 64), r.PublishedAt, r.Slug, r.Title)
			}
			return tw.Flush()
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the response as JSON")
	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "Print at most n results")
	cmd.Flags().Float64Var(&minScore, "min-score", 0, "Drop results scoring below this")
	return cmd
}
