package main

import (
	"github.com/spf13/cobra"

	"entityblock/blocking"
	"entityblock/importer"
	"entityblock/internal/config"
)

// settingsFlags флаги, переопределяющие параметры конвейера из конфигурации
type settingsFlags struct {
	shingleLength int
	blockField    string
	scoreField    string
	workers       int
	precision     int
	stemLanguage  string
}

func (f *settingsFlags) register(cmd *cobra.Command) {
	cmd.Flags().IntVarP(&f.shingleLength, "shingle-length", "n", blocking.DefaultShingleLength, "Shingle length")
	cmd.Flags().StringVar(&f.blockField, "block-field", string(blocking.DefaultBlockField), "Field used to build blocks")
	cmd.Flags().StringVar(&f.scoreField, "score-field", string(blocking.DefaultScoreField), "Field compared inside blocks")
	cmd.Flags().IntVar(&f.workers, "workers", 0, "Scoring workers (0 = number of CPUs)")
	cmd.Flags().IntVar(&f.precision, "precision", 0, "Round scores to N decimal places (0 = no rounding)")
	cmd.Flags().StringVar(&f.stemLanguage, "stem", "", "Stem the score field with a Snowball language")
}

// settings собирает параметры: конфигурация, затем явно заданные флаги
func (f *settingsFlags) settings(cmd *cobra.Command, cfg *config.Config) (blocking.Settings, error) {
	settings := cfg.Settings()
	flags := cmd.Flags()

	if flags.Changed("shingle-length") {
		settings.ShingleLength = f.shingleLength
	}
	if flags.Changed("block-field") {
		field, err := blocking.ParseField(f.blockField)
		if err != nil {
			return settings, err
		}
		settings.BlockField = field
	}
	if flags.Changed("score-field") {
		field, err := blocking.ParseField(f.scoreField)
		if err != nil {
			return settings, err
		}
		settings.ScoreField = field
	}
	if flags.Changed("workers") {
		settings.Workers = f.workers
	}
	if flags.Changed("precision") {
		settings.Precision = f.precision
	}
	if flags.Changed("stem") {
		settings.StemLanguage = f.stemLanguage
	}
	return settings, settings.Validate()
}

// readerFlags флаги чтения входных файлов
type readerFlags struct {
	encoding  string
	delimiter string
	stripHTML bool
}

func (f *readerFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.encoding, "encoding", "", "Input encoding (default from config)")
	cmd.Flags().StringVar(&f.delimiter, "delimiter", "", "CSV delimiter (default ',' or tab for .tsv)")
	cmd.Flags().BoolVar(&f.stripHTML, "strip-html", false, "Strip HTML markup from field values")
}

func (f *readerFlags) config(cmd *cobra.Command, cc *commandContext) (importer.ReaderConfig, error) {
	rc := importer.ReaderConfig{
		Encoding:  cc.cfg.InputEncoding,
		StripHTML: cc.cfg.StripHTML,
		Logger:    cc.logger,
	}
	if f.encoding != "" {
		rc.Encoding = f.encoding
	}
	if cmd.Flags().Changed("strip-html") {
		rc.StripHTML = f.stripHTML
	}
	if f.delimiter != "" {
		runes := []rune(f.delimiter)
		if f.delimiter == `\t` {
			runes = []rune{'\t'}
		}
		if len(runes) != 1 {
			return rc, blocking.NewConfigurationError("delimiter must be a single character", nil)
		}
		rc.Delimiter = runes[0]
	}
	return rc, nil
}
