package blocking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"entityblock/normalization"
)

// Settings параметры конвейера блокинга
type Settings struct {
	ShingleLength int
	BlockField    Field
	ScoreField    Field
	Tokenizer     normalization.Options
	Workers       int
	Precision     int
	// StemLanguage включает стемминг поля сравнения (язык Snowball)
	StemLanguage string
	Similarity   Similarity
	Observer     Observer
}

// DefaultShingleLength длина шингла для боевых наборов данных
const DefaultShingleLength = 10

// DefaultSettings настройки по умолчанию: authors -> title, n = 10
func DefaultSettings() Settings {
	return Settings{
		ShingleLength: DefaultShingleLength,
		BlockField:    DefaultBlockField,
		ScoreField:    DefaultScoreField,
	}
}

// Validate проверяет параметры до начала обработки
func (s Settings) Validate() error {
	var errs []error
	if s.ShingleLength <= 0 {
		errs = append(errs, fmt.Errorf("%w: got %d", normalization.ErrInvalidShingleLength, s.ShingleLength))
	}
	if !s.BlockField.Valid() {
		errs = append(errs, fmt.Errorf("unknown block field %q", s.BlockField))
	}
	if !s.ScoreField.Valid() {
		errs = append(errs, fmt.Errorf("unknown score field %q", s.ScoreField))
	}
	if s.Workers < 0 {
		errs = append(errs, fmt.Errorf("workers must be >= 0, got %d", s.Workers))
	}
	if s.Precision < 0 {
		errs = append(errs, fmt.Errorf("precision must be >= 0, got %d", s.Precision))
	}
	if len(errs) > 0 {
		return NewConfigurationError("invalid blocking settings", errors.Join(errs...))
	}
	return nil
}

// Result результат запуска конвейера
type Result struct {
	Index    *Index
	Stats    Stats
	Scores   []CandidateScore
	Duration time.Duration
}

// Pipeline конвейер: сигнатуры -> индекс -> оценка пар внутри блоков
type Pipeline struct {
	settings  Settings
	transform func(string) string
}

// NewPipeline проверяет настройки и создает конвейер
func NewPipeline(settings Settings) (*Pipeline, error) {
	if err := settings.Validate(); err != nil {
		return nil, err
	}
	if settings.Observer == nil {
		settings.Observer = NopObserver{}
	}

	p := &Pipeline{settings: settings}
	if settings.StemLanguage != "" {
		stemmer, err := normalization.NewStemmer(settings.StemLanguage)
		if err != nil {
			return nil, NewConfigurationError("invalid stem language", err)
		}
		p.transform = stemmer.StemText
	}
	return p, nil
}

// Settings возвращает настройки конвейера
func (p *Pipeline) Settings() Settings {
	return p.settings
}

// Run строит индекс по набору записей (в порядке ID) и оценивает пары
func (p *Pipeline) Run(ctx context.Context, records RecordSet) (*Result, error) {
	start := time.Now()

	idx, err := BuildIndexFromSet(records, p.settings.BlockField, p.settings.ShingleLength, IndexOptions{
		Tokenizer: p.settings.Tokenizer,
		Workers:   p.settings.Workers,
		Observer:  p.settings.Observer,
	})
	if err != nil {
		return nil, fmt.Errorf("build index: %w", err)
	}

	scores, err := ScoreBlocksContext(ctx, idx, records, ScoreOptions{
		Field:      p.settings.ScoreField,
		Similarity: p.settings.Similarity,
		Workers:    p.settings.Workers,
		Precision:  p.settings.Precision,
		Transform:  p.transform,
		Observer:   p.settings.Observer,
	})
	if err != nil {
		return nil, fmt.Errorf("score blocks: %w", err)
	}

	return &Result{
		Index:    idx,
		Stats:    ComputeStats(idx),
		Scores:   scores,
		Duration: time.Since(start),
	}, nil
}
