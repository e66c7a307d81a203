package main

import (
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"entityblock/blocking"
	"entityblock/database"
	"entityblock/exporter"
	"entityblock/importer"
)

func newScoreCommand(ctx *commandContext) *cobra.Command {
	var (
		sf      settingsFlags
		rf      readerFlags
		dbPath  string
		outPath string
		top     int
	)

	cmd := &cobra.Command{
		Use:   "score FILE...",
		Short: "Build the blocking index and score candidate pairs",
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
			if outPath != "" {
				if _, err := exporter.FormatFromFilename(outPath); err != nil {
					return err
				}
			}

			records, err := importer.ReadFiles(args, readerConfig)
			if err != nil {
				return err
			}

			settings.Observer = blocking.NewSlogObserver(ctx.logger)
			pipeline, err := blocking.NewPipeline(settings)
			if err != nil {
				return err
			}
			result, err := pipeline.Run(cmd.Context(), records)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, renderStats(settings, result.Stats))
			if top > 0 && len(result.Scores) > 0 {
				fmt.Fprintln(out, renderTopPairs(result.Scores, top))
			}
			fmt.Fprintf(out, "Scored %d candidate pairs in %s\n", len(result.Scores), result.Duration.Round(time.Millisecond))

			if outPath != "" {
				if err := exporter.ExportFile(outPath, result.Scores); err != nil {
					return err
				}
				ctx.logger.Info("Scores exported", "path", outPath, "count", len(result.Scores))
				fmt.Fprintf(out, "Scores written to %s\n", outPath)
			}

			if dbPath != "" {
				runID, err := persistRun(dbPath, settings, result, args)
				if err != nil {
					return err
				}
				ctx.logger.Info("Run saved", "run_id", runID, "db", dbPath)
				fmt.Fprintf(out, "Run %s saved to %s\n", runID, dbPath)
			}
			return nil
		},
	}

	sf.register(cmd)
	rf.register(cmd)
	cmd.Flags().StringVar(&dbPath, "db", "", "Save the run to a results database")
	cmd.Flags().StringVarP(&outPath, "out", "o", "", "Export scores to a file (.csv, .json, .xlsx)")
	cmd.Flags().IntVar(&top, "top", 10, "Show the N most similar pairs (0 = none)")
	return cmd
}

func persistRun(path string, settings blocking.Settings, result *blocking.Result, sources []string) (string, error) {
	db, err := database.NewResultsDB(path)
	if err != nil {
		return "", err
	}
	defer db.Close()

	run := database.NewRun(settings, result, sources)
	if err := db.SaveRun(run, result.Scores); err != nil {
		return "", err
	}
	return run.ID, nil
}

func renderStats(settings blocking.Settings, stats blocking.Stats) string {
	rows := [][]string{
		{"Shingle length", strconv.Itoa(settings.ShingleLength)},
		{"Block field", settings.BlockField.String()},
		{"Score field", settings.ScoreField.String()},
		{"Records", strconv.Itoa(stats.Records)},
		{"Distinct shingles", strconv.Itoa(stats.DistinctShingles)},
		{"Scored blocks", strconv.Itoa(stats.ScoredBlocks)},
		{"Singleton blocks", strconv.Itoa(stats.SingletonBlocks)},
		{"Largest block", fmt.Sprintf("%d (%s)", stats.LargestBlock, stats.LargestBlockKey)},
		{"Candidate pairs", strconv.FormatInt(stats.CandidatePairs, 10)},
		{"Naive pairs", strconv.FormatInt(stats.NaivePairs, 10)},
		{"Reduction", fmt.Sprintf("%.2f%%", stats.Reduction*100)},
	}
	return renderTable([]string{"Metric", "Value"}, rows, []columnAlignment{alignLeft, alignRight})
}

// renderTopPairs выводит лучшие пары; повторы одной пары по разным ключам схлопываются
func renderTopPairs(scores []blocking.CandidateScore, limit int) string {
	type pair struct{ id1, id2 string }
	best := make(map[pair]blocking.CandidateScore, len(scores))
	for _, s := range scores {
		p := pair{s.ID1, s.ID2}
		if cur, ok := best[p]; !ok || s.Key < cur.Key {
			best[p] = s
		}
	}

	unique := make([]blocking.CandidateScore, 0, len(best))
	for _, s := range best {
		unique = append(unique, s)
	}
	sort.Slice(unique, func(i, j int) bool {
		if unique[i].Score != unique[j].Score {
			return unique[i].Score > unique[j].Score
		}
		if unique[i].ID1 != unique[j].ID1 {
			return unique[i].ID1 < unique[j].ID1
		}
		return unique[i].ID2 < unique[j].ID2
	})
	if len(unique) > limit {
		unique = unique[:limit]
	}

	rows := make([][]string, 0, len(unique))
	for _, s := range unique {
		rows = append(rows, []string{s.ID1, s.ID2, strconv.FormatFloat(s.Score, 'f', 4, 64), s.Key})
	}
	return renderTable([]string{"ID1", "ID2", "Score", "Key"}, rows,
		[]columnAlignment{alignLeft, alignLeft, alignRight, alignLeft})
}
