package blocking

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingObserver struct {
	mu      sync.Mutex
	stats   []Stats
	blocks  map[string]int
	summary []ScoreSummary
}

func (o *recordingObserver) IndexBuilt(s Stats) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.stats = append(o.stats, s)
}

func (o *recordingObserver) BlockScored(key string, size int) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.blocks == nil {
		o.blocks = make(map[string]int)
	}
	o.blocks[key] = size
}

func (o *recordingObserver) Scored(s ScoreSummary) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.summary = append(o.summary, s)
}

// lengthSimilarity сравнивает только длины строк
type lengthSimilarity struct{}

func (lengthSimilarity) Score(a, b string) float64 {
	if len(a) == len(b) {
		return 1
	}
	return 0
}

func (lengthSimilarity) Name() string { return "length" }

func pairKey(s CandidateScore) string {
	return fmt.Sprintf("%s|%s|%s|%.6f", s.Key, s.ID1, s.ID2, s.Score)
}

func sortedKeys(scores []CandidateScore) []string {
	keys := make([]string, len(scores))
	for i, s := range scores {
		keys[i] = pairKey(s)
	}
	sort.Strings(keys)
	return keys
}

func TestScoreBlocks_Basic(t *testing.T) {
	records := []Record{
		{ID: "1", Title: "pedram navid", Authors: "john, doe"},
		{ID: "2", Title: "pedram novar", Authors: "doe"},
	}
	set := NewRecordSet(records...)

	idx, err := BuildIndex(records, FieldAuthors, 3, IndexOptions{})
	require.NoError(t, err)

	scores, err := ScoreBlocks(idx, set, ScoreOptions{})
	require.NoError(t, err)
	require.Len(t, scores, 1)
	assert.Equal(t, CandidateScore{Key: "doe", ID1: "1", ID2: "2", Score: 0.75}, scores[0])
}

func TestScoreBlocks_Combinatorics(t *testing.T) {
	for k := 0; k <= 7; k++ {
		t.Run(fmt.Sprintf("k=%d", k), func(t *testing.T) {
			var records []Record
			for i := 0; i < k; i++ {
				records = append(records, Record{ID: fmt.Sprintf("r%d", i), Title: strings.Repeat("x", i+1), Authors: "smith"})
			}
			idx, err := BuildIndex(records, FieldAuthors, 10, IndexOptions{})
			require.NoError(t, err)

			scores, err := ScoreBlocks(idx, NewRecordSet(records...), ScoreOptions{Workers: 3})
			require.NoError(t, err)
			assert.Len(t, scores, k*(k-1)/2)
		})
	}
}

func TestScoreBlocks_PositionBasedPairs(t *testing.T) {
	// порядок пар определяется позицией в списке, а не сравнением ID
	records := []Record{
		{ID: "c", Title: "t1", Authors: "doe"},
		{ID: "a", Title: "t2", Authors: "doe"},
		{ID: "b", Title: "t3", Authors: "doe"},
	}
	idx, err := BuildIndex(records, FieldAuthors, 3, IndexOptions{})
	require.NoError(t, err)

	scores, err := ScoreBlocks(idx, NewRecordSet(records...), ScoreOptions{Workers: 1})
	require.NoError(t, err)

	var pairs []string
	for _, s := range scores {
		pairs = append(pairs, s.ID1+s.ID2)
	}
	assert.Equal(t, []string{"ca", "cb", "ab"}, pairs)
}

func TestScoreBlocks_DuplicatePairsAcrossBlocks(t *testing.T) {
	records := []Record{
		{ID: "1", Title: "a", Authors: "john, doe"},
		{ID: "2", Title: "a", Authors: "john, doe"},
	}
	idx, err := BuildIndex(records, FieldAuthors, 3, IndexOptions{})
	require.NoError(t, err)

	scores, err := ScoreBlocks(idx, NewRecordSet(records...), ScoreOptions{})
	require.NoError(t, err)

	// joh, ohn, doe: одна и та же пара в каждом общем блоке
	assert.Len(t, scores, 3)
	for _, s := range scores {
		assert.Equal(t, "1", s.ID1)
		assert.Equal(t, "2", s.ID2)
		assert.Equal(t, 1.0, s.Score)
	}
}

func TestScoreBlocks_MissingRecordIsConsistencyError(t *testing.T) {
	records := []Record{
		{ID: "1", Title: "a", Authors: "doe"},
		{ID: "2", Title: "b", Authors: "doe"},
	}
	idx, err := BuildIndex(records, FieldAuthors, 3, IndexOptions{})
	require.NoError(t, err)

	stale := NewRecordSet(records[0])
	_, err = ScoreBlocks(idx, stale, ScoreOptions{})
	require.Error(t, err)
	assert.True(t, IsConsistency(err))
	assert.Contains(t, err.Error(), `"2"`)

	var be *Error
	require.ErrorAs(t, err, &be)
	assert.Equal(t, "2", be.Details["id"])
	assert.Equal(t, "doe", be.Details["key"])
}

func TestScoreBlocks_SingletonBlockWithUnknownIDIsIgnored(t *testing.T) {
	// блоки размера 1 не оцениваются, поэтому записи не запрашиваются
	idx, err := BuildIndex([]Record{{ID: "ghost", Authors: "doe"}}, FieldAuthors, 3, IndexOptions{})
	require.NoError(t, err)

	scores, err := ScoreBlocks(idx, RecordSet{}, ScoreOptions{})
	require.NoError(t, err)
	assert.Empty(t, scores)
}

func TestScoreBlocks_ConsistencyLawOnGeneratedData(t *testing.T) {
	records := fakeRecords(99, 250)
	set := NewRecordSet(records...)

	idx, err := BuildIndexFromSet(set, FieldAuthors, 3, IndexOptions{})
	require.NoError(t, err)

	scores, err := ScoreBlocks(idx, set, ScoreOptions{Workers: 4})
	require.NoError(t, err)

	stats := ComputeStats(idx)
	assert.Equal(t, stats.CandidatePairs, int64(len(scores)))
	for _, s := range scores {
		assert.GreaterOrEqual(t, s.Score, 0.0)
		assert.LessOrEqual(t, s.Score, 1.0)
	}
}

func TestScoreBlocks_WorkersDoNotChangeOutput(t *testing.T) {
	records := fakeRecords(5, 200)
	set := NewRecordSet(records...)
	idx, err := BuildIndexFromSet(set, FieldAuthors, 3, IndexOptions{})
	require.NoError(t, err)

	one, err := ScoreBlocks(idx, set, ScoreOptions{Workers: 1})
	require.NoError(t, err)
	many, err := ScoreBlocks(idx, set, ScoreOptions{Workers: 16})
	require.NoError(t, err)

	assert.Equal(t, sortedKeys(one), sortedKeys(many))
}

func TestScoreBlocks_Options(t *testing.T) {
	records := []Record{
		{ID: "1", Title: "abc", Venue: "VLDB", Authors: "doe"},
		{ID: "2", Title: "abd", Venue: "VLDB Journal", Authors: "doe"},
	}
	set := NewRecordSet(records...)
	idx, err := BuildIndex(records, FieldAuthors, 3, IndexOptions{})
	require.NoError(t, err)

	t.Run("precision", func(t *testing.T) {
		scores, err := ScoreBlocks(idx, set, ScoreOptions{Precision: 2})
		require.NoError(t, err)
		assert.Equal(t, 0.67, scores[0].Score)
	})

	t.Run("score field", func(t *testing.T) {
		scores, err := ScoreBlocks(idx, set, ScoreOptions{Field: FieldVenue})
		require.NoError(t, err)
		assert.InDelta(t, 4.0/12.0, scores[0].Score, 1e-9)
	})

	t.Run("transform", func(t *testing.T) {
		scores, err := ScoreBlocks(idx, set, ScoreOptions{Transform: func(s string) string { return s[:2] }})
		require.NoError(t, err)
		assert.Equal(t, 1.0, scores[0].Score)
	})

	t.Run("pluggable similarity", func(t *testing.T) {
		obs := &recordingObserver{}
		scores, err := ScoreBlocks(idx, set, ScoreOptions{Similarity: lengthSimilarity{}, Observer: obs})
		require.NoError(t, err)
		assert.Equal(t, 1.0, scores[0].Score)
		require.Len(t, obs.summary, 1)
		assert.Equal(t, "length", obs.summary[0].Similarity)
		assert.Equal(t, 1, obs.summary[0].Pairs)
		assert.Equal(t, 2, obs.blocks["doe"])
	})

	t.Run("unknown field", func(t *testing.T) {
		_, err := ScoreBlocks(idx, set, ScoreOptions{Field: "isbn"})
		assert.True(t, IsConfiguration(err))
	})

	t.Run("negative workers", func(t *testing.T) {
		_, err := ScoreBlocks(idx, set, ScoreOptions{Workers: -2})
		assert.True(t, IsConfiguration(err))
	})
}

func TestScoreBlocks_NilIndex(t *testing.T) {
	_, err := ScoreBlocks(nil, RecordSet{}, ScoreOptions{})
	assert.True(t, IsConfiguration(err))
}

func TestScoreBlocksContext_Canceled(t *testing.T) {
	records := fakeRecords(3, 50)
	set := NewRecordSet(records...)
	idx, err := BuildIndexFromSet(set, FieldAuthors, 3, IndexOptions{})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = ScoreBlocksContext(ctx, idx, set, ScoreOptions{})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestPartition(t *testing.T) {
	parts := partition([]int64{10, 1, 1, 1, 10, 1}, 3)
	require.NotEmpty(t, parts)
	assert.LessOrEqual(t, len(parts), 3)

	// диапазоны смежные и покрывают все блоки
	assert.Equal(t, 0, parts[0].from)
	for i := 1; i < len(parts); i++ {
		assert.Equal(t, parts[i-1].to, parts[i].from)
	}
	assert.Equal(t, 6, parts[len(parts)-1].to)

	var total int64
	for _, p := range parts {
		total += p.pairs
	}
	assert.Equal(t, int64(24), total)

	assert.Nil(t, partition(nil, 4))
	assert.Len(t, partition([]int64{1, 1}, 8), 2)
}
