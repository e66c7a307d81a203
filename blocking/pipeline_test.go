package blocking

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"entityblock/normalization"
)

func TestComputeStats(t *testing.T) {
	records := []Record{
		{ID: "1", Authors: "john, doe"},
		{ID: "2", Authors: "doe"},
		{ID: "3", Authors: "doe, ann"},
		{ID: "4", Authors: "ann"},
	}
	idx, err := BuildIndex(records, FieldAuthors, 3, IndexOptions{})
	require.NoError(t, err)

	stats := ComputeStats(idx)
	assert.Equal(t, 4, stats.Records)
	assert.Equal(t, 4, stats.DistinctShingles) // joh, ohn, doe, ann
	assert.Equal(t, 2, stats.ScoredBlocks)
	assert.Equal(t, 2, stats.SingletonBlocks)
	assert.Equal(t, 3, stats.LargestBlock)
	assert.Equal(t, "doe", stats.LargestBlockKey)
	assert.Equal(t, int64(3+1), stats.CandidatePairs)
	assert.Equal(t, int64(6), stats.NaivePairs)
	assert.InDelta(t, 1-4.0/6.0, stats.Reduction, 1e-9)
	assert.Equal(t, []SizeBucket{
		{Min: 1, Max: 1, Blocks: 2},
		{Min: 2, Max: 3, Blocks: 2},
	}, stats.BlockSizes)
}

func TestComputeStats_Empty(t *testing.T) {
	idx, err := BuildIndex(nil, FieldAuthors, 3, IndexOptions{})
	require.NoError(t, err)

	stats := ComputeStats(idx)
	assert.Zero(t, stats.CandidatePairs)
	assert.Zero(t, stats.Reduction)
	assert.Empty(t, stats.BlockSizes)
}

func TestBucketOf(t *testing.T) {
	assert.Equal(t, 0, bucketOf(1))
	assert.Equal(t, 1, bucketOf(2))
	assert.Equal(t, 1, bucketOf(3))
	assert.Equal(t, 2, bucketOf(4))
	assert.Equal(t, 3, bucketOf(15))
	assert.Equal(t, 4, bucketOf(16))
}

func TestSettingsValidate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*Settings)
		wantErr bool
	}{
		{"defaults", func(*Settings) {}, false},
		{"zero shingle length", func(s *Settings) { s.ShingleLength = 0 }, true},
		{"negative shingle length", func(s *Settings) { s.ShingleLength = -3 }, true},
		{"unknown block field", func(s *Settings) { s.BlockField = "isbn" }, true},
		{"unknown score field", func(s *Settings) { s.ScoreField = "" }, true},
		{"negative workers", func(s *Settings) { s.Workers = -1 }, true},
		{"negative precision", func(s *Settings) { s.Precision = -1 }, true},
		{"venue blocking", func(s *Settings) { s.BlockField = FieldVenue }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := DefaultSettings()
			tt.modify(&s)
			err := s.Validate()
			if tt.wantErr {
				assert.True(t, IsConfiguration(err), "err = %v", err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestSettingsValidate_CollectsAllProblems(t *testing.T) {
	s := Settings{ShingleLength: 0, BlockField: "x", ScoreField: "y"}
	err := s.Validate()
	require.Error(t, err)
	assert.ErrorIs(t, err, normalization.ErrInvalidShingleLength)
	assert.Contains(t, err.Error(), `"x"`)
	assert.Contains(t, err.Error(), `"y"`)
}

func TestNewPipeline_InvalidStemLanguage(t *testing.T) {
	s := DefaultSettings()
	s.StemLanguage = "klingon"
	_, err := NewPipeline(s)
	assert.True(t, IsConfiguration(err))
}

func TestPipeline_Run(t *testing.T) {
	set := NewRecordSet(
		Record{ID: "2", Title: "pedram novar", Authors: "doe"},
		Record{ID: "1", Title: "pedram navid", Authors: "john, doe"},
		Record{ID: "3", Title: "something else", Authors: "smith"},
	)

	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	s := DefaultSettings()
	s.ShingleLength = 3
	s.Observer = NewSlogObserver(logger)

	p, err := NewPipeline(s)
	require.NoError(t, err)
	assert.Equal(t, 3, p.Settings().ShingleLength)

	res, err := p.Run(context.Background(), set)
	require.NoError(t, err)

	require.Len(t, res.Scores, 1)
	assert.Equal(t, CandidateScore{Key: "doe", ID1: "1", ID2: "2", Score: 0.75}, res.Scores[0])
	assert.Equal(t, 3, res.Stats.Records)
	assert.Equal(t, int64(1), res.Stats.CandidatePairs)
	assert.Equal(t, []string{"1", "2"}, res.Index.Postings("doe"))

	logs := buf.String()
	assert.Contains(t, logs, "Blocking index built")
	assert.Contains(t, logs, "Processing block")
	assert.Contains(t, logs, "Blocks scored")
}

func TestPipeline_RunWithStemming(t *testing.T) {
	set := NewRecordSet(
		Record{ID: "1", Title: "Querying Databases", Authors: "doe"},
		Record{ID: "2", Title: "querying database", Authors: "doe"},
	)
	s := DefaultSettings()
	s.ShingleLength = 3
	s.StemLanguage = "english"

	p, err := NewPipeline(s)
	require.NoError(t, err)
	res, err := p.Run(context.Background(), set)
	require.NoError(t, err)
	require.Len(t, res.Scores, 1)
	assert.Equal(t, 1.0, res.Scores[0].Score)
}

func TestPipeline_RunReproducible(t *testing.T) {
	set := NewRecordSet(fakeRecords(17, 150)...)
	s := DefaultSettings()
	s.ShingleLength = 3
	s.Workers = 1

	p, err := NewPipeline(s)
	require.NoError(t, err)

	first, err := p.Run(context.Background(), set)
	require.NoError(t, err)
	second, err := p.Run(context.Background(), set)
	require.NoError(t, err)

	assert.Equal(t, first.Scores, second.Scores)
}

func TestErrors(t *testing.T) {
	inner := errors.New("boom")
	err := NewIngestionError("read records.csv", inner).WithDetail("line", 4)

	assert.True(t, IsIngestion(err))
	assert.False(t, IsConsistency(err))
	assert.ErrorIs(t, err, inner)
	assert.Equal(t, "[INGESTION] read records.csv: boom", err.Error())
	assert.Equal(t, 4, err.Details["line"])

	wrapped := errors.Join(errors.New("outer"), NewConsistencyError("stale index", nil))
	assert.True(t, IsConsistency(wrapped))
	assert.Equal(t, "[CONSISTENCY] stale index", NewConsistencyError("stale index", nil).Error())
}

func TestParseField(t *testing.T) {
	f, err := ParseField(" Authors ")
	require.NoError(t, err)
	assert.Equal(t, FieldAuthors, f)

	_, err = ParseField("isbn")
	assert.True(t, IsConfiguration(err))

	r := Record{ID: "1", Title: "t", Authors: "a", Venue: "v"}
	for _, f := range Fields {
		assert.NotEmpty(t, f.Value(r))
	}
}

func TestRecordSet(t *testing.T) {
	set := NewRecordSet(Record{ID: "b", Title: "old"}, Record{ID: "a"}, Record{ID: "b", Title: "new"})
	assert.Len(t, set, 2)
	assert.Equal(t, "new", set["b"].Title)
	assert.Equal(t, []string{"a", "b"}, set.SortedIDs())

	other := NewRecordSet(Record{ID: "b", Title: "acm"}, Record{ID: "c"})
	set.Merge(other)
	assert.Len(t, set, 3)
	r, ok := set.Get("b")
	assert.True(t, ok)
	assert.Equal(t, "acm", r.Title)
	assert.Equal(t, "c", set.Sorted()[2].ID)
}
