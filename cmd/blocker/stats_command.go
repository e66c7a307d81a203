package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"entityblock/blocking"
	"entityblock/importer"
)

func newStatsCommand(ctx *commandContext) *cobra.Command {
	var (
		sf      settingsFlags
		rf      readerFlags
		lengths []int
	)

	cmd := &cobra.Command{
		Use:   "stats FILE...",
		Short: "Show block size statistics for one or more shingle lengths",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			settings, err := sf.settings(cmd, ctx.cfg)
			if err != nil {
				return err
			}
			readerConfig, err := rf.config(cmd, ctx)
			if err != nil {
				return err
			}
			records, err := importer.ReadFiles(args, readerConfig)
			if err != nil {
				return err
			}

			if len(lengths) == 0 {
				lengths = []int{settings.ShingleLength}
			}

			opts := blocking.IndexOptions{Tokenizer: settings.Tokenizer, Workers: settings.Workers}
			rows := make([][]string, 0, len(lengths))
			var last blocking.Stats
			for _, n := range lengths {
				if err := cmd.Context().Err(); err != nil {
					return err
				}
				idx, err := blocking.BuildIndexFromSet(records, settings.BlockField, n, opts)
				if err != nil {
					return err
				}
				stats := blocking.ComputeStats(idx)
				ctx.logger.Debug("Index statistics computed", "n", n, "distinct_shingles", stats.DistinctShingles)
				rows = append(rows, []string{
					strconv.Itoa(n),
					strconv.Itoa(stats.DistinctShingles),
					strconv.Itoa(stats.ScoredBlocks),
					strconv.Itoa(stats.LargestBlock),
					strconv.FormatInt(stats.CandidatePairs, 10),
					fmt.Sprintf("%.2f%%", stats.Reduction*100),
				})
				last = stats
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%d records, block field %s\n", len(records), settings.BlockField)
			fmt.Fprintln(out, renderTable(
				[]string{"N", "Shingles", "Scored blocks", "Largest", "Pairs", "Reduction"},
				rows,
				[]columnAlignment{alignRight, alignRight, alignRight, alignRight, alignRight, alignRight},
			))
			if len(lengths) == 1 {
				fmt.Fprintln(out, renderBlockSizes(last.BlockSizes))
			}
			return nil
		},
	}

	sf.register(cmd)
	rf.register(cmd)
	cmd.Flags().IntSliceVar(&lengths, "lengths", nil, "Compare several shingle lengths, e.g. 5,10,15")
	return cmd
}

func renderBlockSizes(buckets []blocking.SizeBucket) string {
	rows := make([][]string, 0, len(buckets))
	for _, b := range buckets {
		if b.Blocks == 0 {
			continue
		}
		size := strconv.Itoa(b.Min)
		if b.Max != b.Min {
			size = fmt.Sprintf("%d-%d", b.Min, b.Max)
		}
		rows = append(rows, []string{size, strconv.Itoa(b.Blocks)})
	}
	return renderTable([]string{"Block size", "Blocks"}, rows, []columnAlignment{alignLeft, alignRight})
}
