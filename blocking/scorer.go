package blocking

import (
	"context"
	"fmt"
	"math"
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"
)

// ScoreOptions настройки подсчета схожести внутри блоков
type ScoreOptions struct {
	// Field поле для сравнения (по умолчанию title)
	Field Field
	// Similarity функция схожести (по умолчанию Levenshtein)
	Similarity Similarity
	// Workers число горутин (0 = GOMAXPROCS)
	Workers int
	// Precision округление оценки до N знаков; <= 0 отключает округление
	Precision int
	// Transform необязательное преобразование значения поля перед сравнением
	Transform func(string) string
	// Observer получает события по блокам
	Observer Observer
}

func (o ScoreOptions) withDefaults() ScoreOptions {
	if o.Field == "" {
		o.Field = DefaultScoreField
	}
	if o.Similarity == nil {
		o.Similarity = Levenshtein{}
	}
	if o.Workers == 0 {
		o.Workers = runtime.GOMAXPROCS(0)
	}
	if o.Observer == nil {
		o.Observer = NopObserver{}
	}
	return o
}

func (o ScoreOptions) validate() error {
	if !o.Field.Valid() {
		return NewConfigurationError(fmt.Sprintf("unknown score field %q", o.Field), nil)
	}
	if o.Workers < 0 {
		return NewConfigurationError(fmt.Sprintf("workers must be >= 0, got %d", o.Workers), nil)
	}
	return nil
}

// ScoreBlocks оценивает все пары внутри каждого блока индекса.
// Для блока размера k выдается ровно C(k,2) пар (i < j по позиции в списке);
// блоки размера 0 и 1 пропускаются. ID, отсутствующий в records, дает ConsistencyError.
func ScoreBlocks(idx *Index, records RecordSet, opts ScoreOptions) ([]CandidateScore, error) {
	return ScoreBlocksContext(context.Background(), idx, records, opts)
}

// ScoreBlocksContext то же, что ScoreBlocks, с возможностью отмены.
// Блоки делятся на непересекающиеся диапазоны между воркерами.
func ScoreBlocksContext(ctx context.Context, idx *Index, records RecordSet, opts ScoreOptions) ([]CandidateScore, error) {
	if idx == nil {
		return nil, NewConfigurationError("index is nil", nil)
	}
	opts = opts.withDefaults()
	if err := opts.validate(); err != nil {
		return nil, err
	}

	start := time.Now()
	blocks, costs := scorableBlocks(idx)
	parts := partition(costs, opts.Workers)

	results := make([][]CandidateScore, len(parts))
	g, gctx := errgroup.WithContext(ctx)
	for w, part := range parts {
		g.Go(func() error {
			out, err := scoreRange(gctx, idx, records, blocks[part.from:part.to], part.pairs, opts)
			if err != nil {
				return err
			}
			results[w] = out
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var total int64
	for _, c := range costs {
		total += c
	}
	scores := make([]CandidateScore, 0, total)
	for _, r := range results {
		scores = append(scores, r...)
	}

	opts.Observer.Scored(ScoreSummary{
		Blocks:     len(blocks),
		Pairs:      len(scores),
		Workers:    len(parts),
		Similarity: opts.Similarity.Name(),
		Duration:   time.Since(start),
	})
	return scores, nil
}

// scorableBlocks номера блоков размера >= 2 и число пар в каждом
func scorableBlocks(idx *Index) ([]int, []int64) {
	var blocks []int
	var costs []int64
	for ord := range idx.postings {
		k := len(idx.postings[ord])
		if k < 2 {
			continue
		}
		blocks = append(blocks, ord)
		costs = append(costs, pairCount(k))
	}
	return blocks, costs
}

type blockRange struct {
	from, to int
	pairs    int64
}

// partition делит блоки на не более чем workers смежных диапазонов
// примерно равной стоимости (сумма пар)
func partition(costs []int64, workers int) []blockRange {
	if len(costs) == 0 {
		return nil
	}
	workers = min(workers, len(costs))

	var total int64
	for _, c := range costs {
		total += c
	}
	target := total / int64(workers)
	if target == 0 {
		target = 1
	}

	var parts []blockRange
	cur := blockRange{}
	for i, c := range costs {
		cur.pairs += c
		cur.to = i + 1
		if cur.pairs >= target && len(parts) < workers-1 {
			parts = append(parts, cur)
			cur = blockRange{from: i + 1, to: i + 1}
		}
	}
	if cur.to > cur.from {
		parts = append(parts, cur)
	}
	return parts
}

func scoreRange(ctx context.Context, idx *Index, records RecordSet, blocks []int, pairs int64, opts ScoreOptions) ([]CandidateScore, error) {
	out := make([]CandidateScore, 0, pairs)
	for _, ord := range blocks {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		key := idx.shingles[ord]
		ids := idx.resolve(idx.postings[ord])
		opts.Observer.BlockScored(key, len(ids))

		values := make([]string, len(ids))
		for i, id := range ids {
			r, ok := records[id]
			if !ok {
				return nil, NewConsistencyError(
					fmt.Sprintf("record %q from block %q is missing in record set", id, key), nil).
					WithDetail("id", id).
					WithDetail("key", key)
			}
			v := opts.Field.Value(r)
			if opts.Transform != nil {
				v = opts.Transform(v)
			}
			values[i] = v
		}

		for i := 0; i < len(ids); i++ {
			for j := i + 1; j < len(ids); j++ {
				out = append(out, CandidateScore{
					Key:   key,
					ID1:   ids[i],
					ID2:   ids[j],
					Score: round(opts.Similarity.Score(values[i], values[j]), opts.Precision),
				})
			}
		}
	}
	return out, nil
}

func round(score float64, precision int) float64 {
	if precision <= 0 {
		return score
	}
	p := math.Pow(10, float64(precision))
	return math.Round(score*p) / p
}
