package main

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/spf13/cobra"

	"entityblock/blocking"
	"entityblock/importer"
)

var venues = []string{"VLDB", "SIGMOD", "ICDE", "KDD", "WWW", "CIKM", "EDBT"}

func newGenDataCommand(ctx *commandContext) *cobra.Command {
	var (
		count   int
		dupRate float64
		seed    int64
		outPath string
	)

	cmd := &cobra.Command{
		Use:   "gendata",
		Short: "Generate a synthetic bibliographic CSV with near-duplicate records",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if count <= 0 {
				return blocking.NewConfigurationError("count must be positive", nil)
			}
			if dupRate < 0 || dupRate > 1 {
				return blocking.NewConfigurationError("dup-rate must be within [0, 1]", nil)
			}

			records := generateRecords(gofakeit.New(seed), count, dupRate)

			var err error
			if outPath != "" {
				err = writeRecordsFile(outPath, records)
			} else {
				err = writeRecordsCSV(cmd.OutOrStdout(), records)
			}
			if err != nil {
				return err
			}
			ctx.logger.Info("Test data generated", "records", len(records), "seed", seed, "out", outPath)
			return nil
		},
	}

	cmd.Flags().IntVar(&count, "count", 1000, "Number of records")
	cmd.Flags().Float64Var(&dupRate, "dup-rate", 0.2, "Share of records that are noisy copies of earlier ones")
	cmd.Flags().Int64Var(&seed, "seed", 0, "Random seed (0 = random)")
	cmd.Flags().StringVarP(&outPath, "out", "o", "", "Output file (default stdout)")
	return cmd
}

// generateRecords создает записи; часть из них искаженные копии предыдущих
func generateRecords(f *gofakeit.Faker, count int, dupRate float64) []blocking.Record {
	records := make([]blocking.Record, 0, count)
	for i := 0; i < count; i++ {
		id := fmt.Sprintf("r%06d", i+1)
		if i > 0 && f.Float64Range(0, 1) < dupRate {
			src := records[f.Number(0, len(records)-1)]
			records = append(records, blocking.Record{
				ID:      id,
				Title:   perturb(f, src.Title),
				Authors: shuffleAuthors(f, src.Authors),
				Venue:   src.Venue,
			})
			continue
		}
		records = append(records, blocking.Record{
			ID:      id,
			Title:   strings.TrimSuffix(f.Sentence(f.Number(4, 9)), "."),
			Authors: fakeAuthors(f),
			Venue:   f.RandomString(venues),
		})
	}
	return records
}

func fakeAuthors(f *gofakeit.Faker) string {
	n := f.Number(1, 4)
	names := make([]string, n)
	for i := range names {
		names[i] = f.FirstName() + " " + f.LastName()
	}
	return strings.Join(names, ", ")
}

// perturb вносит одну опечатку: удаление, замену или перестановку символов
func perturb(f *gofakeit.Faker, s string) string {
	r := []rune(s)
	if len(r) < 2 {
		return s + f.Letter()
	}
	i := f.Number(0, len(r)-2)
	switch f.Number(0, 2) {
	case 0:
		r = append(r[:i], r[i+1:]...)
	case 1:
		r[i] = []rune(f.Letter())[0]
	default:
		r[i], r[i+1] = r[i+1], r[i]
	}
	return string(r)
}

func shuffleAuthors(f *gofakeit.Faker, authors string) string {
	parts := strings.Split(authors, ", ")
	if len(parts) < 2 || f.Bool() {
		return authors
	}
	f.ShuffleAnySlice(parts)
	return strings.Join(parts, ", ")
}

// writeRecordsFile пишет CSV в файл; ошибка закрытия файла тоже возвращается
func writeRecordsFile(path string, records []blocking.Record) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := writeRecordsCSV(file, records); err != nil {
		file.Close()
		return err
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("close %s: %w", path, err)
	}
	return nil
}

func writeRecordsCSV(w io.Writer, records []blocking.Record) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(importer.RequiredColumns); err != nil {
		return err
	}
	for _, r := range records {
		if err := cw.Write([]string{r.ID, r.Title, r.Authors, r.Venue}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
