package blocking

import (
	"log/slog"
	"time"
)

// ScoreSummary итог подсчета схожести
type ScoreSummary struct {
	Blocks     int
	Pairs      int
	Workers    int
	Similarity string
	Duration   time.Duration
}

// Observer получает события построения индекса и подсчета пар.
// Методы могут вызываться из нескольких горутин.
type Observer interface {
	IndexBuilt(stats Stats)
	BlockScored(key string, size int)
	Scored(summary ScoreSummary)
}

// NopObserver игнорирует все события
type NopObserver struct{}

func (NopObserver) IndexBuilt(Stats)        {}
func (NopObserver) BlockScored(string, int) {}
func (NopObserver) Scored(ScoreSummary)     {}

// SlogObserver пишет события в переданный логгер
type SlogObserver struct {
	Logger *slog.Logger
}

// NewSlogObserver создает наблюдателя; nil логгер заменяется slog.Default()
func NewSlogObserver(logger *slog.Logger) *SlogObserver {
	if logger == nil {
		logger = slog.Default()
	}
	return &SlogObserver{Logger: logger}
}

// IndexBuilt реализует Observer
func (o *SlogObserver) IndexBuilt(stats Stats) {
	o.Logger.Info("Blocking index built",
		"records", stats.Records,
		"distinct_shingles", stats.DistinctShingles,
		"scored_blocks", stats.ScoredBlocks,
		"singleton_blocks", stats.SingletonBlocks,
		"largest_block", stats.LargestBlock,
		"largest_block_key", stats.LargestBlockKey,
		"candidate_pairs", stats.CandidatePairs,
		"naive_pairs", stats.NaivePairs,
		"reduction", stats.Reduction,
	)
}

// BlockScored реализует Observer
func (o *SlogObserver) BlockScored(key string, size int) {
	o.Logger.Debug("Processing block", "key", key, "size", size)
}

// Scored реализует Observer
func (o *SlogObserver) Scored(summary ScoreSummary) {
	o.Logger.Info("Blocks scored",
		"blocks", summary.Blocks,
		"pairs", summary.Pairs,
		"workers", summary.Workers,
		"similarity", summary.Similarity,
		"duration_ms", summary.Duration.Milliseconds(),
	)
}
