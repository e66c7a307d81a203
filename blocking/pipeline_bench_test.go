package blocking

import (
	"context"
	"fmt"
	"runtime"
	"testing"
)

// BenchmarkBuildIndex бенчмарк построения индекса по авторам для 5K записей
func BenchmarkBuildIndex(b *testing.B) {
	records := fakeRecords(1, 5000)
	for _, n := range []int{3, 10} {
		b.Run(fmt.Sprintf("n=%d", n), func(b *testing.B) {
			b.ReportAllocs()
			for i := 0; i < b.N; i++ {
				if _, err := BuildIndex(records, FieldAuthors, n, IndexOptions{}); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}

// BenchmarkScoreBlocks сравнивает оценку пар одним воркером и GOMAXPROCS воркерами
func BenchmarkScoreBlocks(b *testing.B) {
	records := fakeRecords(2, 1000)
	idx, err := BuildIndex(records, FieldAuthors, 3, IndexOptions{})
	if err != nil {
		b.Fatal(err)
	}
	set := NewRecordSet(records...)

	for _, workers := range []int{1, runtime.GOMAXPROCS(0)} {
		b.Run(fmt.Sprintf("workers=%d", workers), func(b *testing.B) {
			b.ReportAllocs()
			var pairs int
			for i := 0; i < b.N; i++ {
				scores, err := ScoreBlocks(idx, set, ScoreOptions{Workers: workers})
				if err != nil {
					b.Fatal(err)
				}
				pairs = len(scores)
			}
			b.ReportMetric(float64(pairs), "pairs/op")
		})
	}
}

// BenchmarkPipelineRun полный прогон конвейера; pairs/op показывает число кандидатов
func BenchmarkPipelineRun(b *testing.B) {
	set := NewRecordSet(fakeRecords(3, 1000)...)
	for _, n := range []int{3, 10} {
		b.Run(fmt.Sprintf("n=%d", n), func(b *testing.B) {
			s := DefaultSettings()
			s.ShingleLength = n
			p, err := NewPipeline(s)
			if err != nil {
				b.Fatal(err)
			}

			b.ReportAllocs()
			b.ResetTimer()
			var pairs int
			for i := 0; i < b.N; i++ {
				res, err := p.Run(context.Background(), set)
				if err != nil {
					b.Fatal(err)
				}
				pairs = len(res.Scores)
			}
			b.ReportMetric(float64(pairs), "pairs/op")
		})
	}
}
