package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"entityblock/blocking"
	"entityblock/normalization"
)

func newTokenizeCommand(ctx *commandContext) *cobra.Command {
	var n int

	cmd := &cobra.Command{
		Use:   "tokenize TEXT",
		Short: "Print the shingle signature of a string",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			settings := ctx.cfg.Settings()
			if !cmd.Flags().Changed("shingle-length") {
				n = settings.ShingleLength
			}
			tokenizer, err := normalization.NewTokenizer(n, settings.Tokenizer)
			if err != nil {
				return blocking.NewConfigurationError("invalid shingle length", err)
			}
			for _, shingle := range tokenizer.Tokenize(args[0]).Sorted() {
				fmt.Fprintln(cmd.OutOrStdout(), strconv.Quote(shingle))
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&n, "shingle-length", "n", blocking.DefaultShingleLength, "Shingle length")
	return cmd
}

func newSimilarityCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "similarity A B",
		Short: "Normalized Levenshtein similarity of two strings",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			sim := blocking.Levenshtein{}
			rows := [][]string{
				{"Algorithm", sim.Name()},
				{"Distance", strconv.Itoa(blocking.EditDistance(args[0], args[1]))},
				{"Similarity", strconv.FormatFloat(sim.Score(args[0], args[1]), 'f', 4, 64)},
			}
			ctx.logger.Debug("Strings compared", "a", args[0], "b", args[1])
			fmt.Fprintln(cmd.OutOrStdout(), renderTable([]string{"Metric", "Value"}, rows,
				[]columnAlignment{alignLeft, alignRight}))
			return nil
		},
	}
}
