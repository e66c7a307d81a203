package blocking

// SizeBucket число блоков с размером в диапазоне [Min, Max]
type SizeBucket struct {
	Min    int `json:"min"`
	Max    int `json:"max"`
	Blocks int `json:"blocks"`
}

// Stats статистика индекса для подбора длины шингла
type Stats struct {
	Records          int          `json:"records"`
	DistinctShingles int          `json:"distinct_shingles"`
	SingletonBlocks  int          `json:"singleton_blocks"`
	ScoredBlocks     int          `json:"scored_blocks"`
	LargestBlock     int          `json:"largest_block"`
	LargestBlockKey  string       `json:"largest_block_key"`
	CandidatePairs   int64        `json:"candidate_pairs"`
	NaivePairs       int64        `json:"naive_pairs"`
	Reduction        float64      `json:"reduction"`
	BlockSizes       []SizeBucket `json:"block_sizes"`
}

// ComputeStats считает распределение размеров блоков и число пар.
// Корзины размеров: 1, 2-3, 4-7, 8-15, ...
func ComputeStats(idx *Index) Stats {
	stats := Stats{
		Records:          idx.RecordCount(),
		DistinctShingles: idx.Len(),
		NaivePairs:       pairCount(idx.RecordCount()),
	}

	var buckets []SizeBucket
	for ord := range idx.shingles {
		k := idx.BlockSize(ord)
		if k > stats.LargestBlock || (k == stats.LargestBlock && idx.shingles[ord] < stats.LargestBlockKey) {
			stats.LargestBlock = k
			stats.LargestBlockKey = idx.shingles[ord]
		}
		if k < 2 {
			stats.SingletonBlocks++
		} else {
			stats.ScoredBlocks++
			stats.CandidatePairs += pairCount(k)
		}

		b := bucketOf(k)
		for len(buckets) <= b {
			lo := 1 << len(buckets)
			buckets = append(buckets, SizeBucket{Min: lo, Max: lo*2 - 1})
		}
		buckets[b].Blocks++
	}
	stats.BlockSizes = buckets

	if stats.NaivePairs > 0 {
		stats.Reduction = 1 - float64(stats.CandidatePairs)/float64(stats.NaivePairs)
	}
	return stats
}

// pairCount C(k, 2)
func pairCount(k int) int64 {
	if k < 2 {
		return 0
	}
	return int64(k) * int64(k-1) / 2
}

// bucketOf номер корзины: floor(log2(k))
func bucketOf(k int) int {
	b := 0
	for k > 1 {
		k >>= 1
		b++
	}
	return b
}
