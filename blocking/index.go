package blocking

import (
	"fmt"
	"runtime"
	"sort"

	"golang.org/x/sync/errgroup"

	"entityblock/normalization"
)

// IndexOptions дополнительные настройки построения индекса
type IndexOptions struct {
	// Tokenizer настройки очистки поля блокинга
	Tokenizer normalization.Options
	// Workers число горутин для расчета сигнатур (0 = GOMAXPROCS)
	Workers int
	// Observer получает статистику построенного индекса
	Observer Observer
}

// Index обратный индекс "шингл -> список ID записей".
// Записи и шинглы хранятся в арене и адресуются целыми номерами.
type Index struct {
	n     int
	field Field

	ids      []string         // номер записи -> ID
	shingles []string         // номер шингла -> шингл
	lookup   map[string]int32 // шингл -> номер
	postings [][]int32        // номер шингла -> номера записей в порядке подачи
}

// BuildIndex строит индекс по выбранному полю.
// Порядок списков совпадает с порядком записей на входе.
func BuildIndex(records []Record, field Field, n int, opts IndexOptions) (*Index, error) {
	if !field.Valid() {
		return nil, NewConfigurationError(fmt.Sprintf("unknown block field %q", field), nil)
	}
	tokenizer, err := normalization.NewTokenizer(n, opts.Tokenizer)
	if err != nil {
		return nil, NewConfigurationError("invalid shingle length", err).WithDetail("n", n)
	}
	if opts.Workers < 0 {
		return nil, NewConfigurationError(fmt.Sprintf("workers must be >= 0, got %d", opts.Workers), nil)
	}

	signatures := computeSignatures(records, field, tokenizer, opts.Workers)

	idx := &Index{
		n:      n,
		field:  field,
		ids:    make([]string, len(records)),
		lookup: make(map[string]int32),
	}
	for i, r := range records {
		idx.ids[i] = r.ID
		for _, shingle := range signatures[i] {
			ord, ok := idx.lookup[shingle]
			if !ok {
				ord = int32(len(idx.shingles))
				idx.lookup[shingle] = ord
				idx.shingles = append(idx.shingles, shingle)
				idx.postings = append(idx.postings, nil)
			}
			idx.postings[ord] = append(idx.postings[ord], int32(i))
		}
	}

	if opts.Observer != nil {
		opts.Observer.IndexBuilt(ComputeStats(idx))
	}
	return idx, nil
}

// BuildIndexFromSet строит индекс по набору записей, упорядоченному по ID,
// чтобы результат был воспроизводим между запусками
func BuildIndexFromSet(set RecordSet, field Field, n int, opts IndexOptions) (*Index, error) {
	return BuildIndex(set.Sorted(), field, n, opts)
}

// computeSignatures считает сигнатуры записей параллельно.
// Шинглы каждой записи отсортированы, поэтому нумерация арены детерминирована.
func computeSignatures(records []Record, field Field, tokenizer *normalization.Tokenizer, workers int) [][]string {
	signatures := make([][]string, len(records))
	if len(records) == 0 {
		return signatures
	}
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	if workers > len(records) {
		workers = len(records)
	}

	chunk := (len(records) + workers - 1) / workers
	var g errgroup.Group
	for start := 0; start < len(records); start += chunk {
		end := min(start+chunk, len(records))
		g.Go(func() error {
			for i := start; i < end; i++ {
				signatures[i] = tokenizer.Tokenize(field.Value(records[i])).Sorted()
			}
			return nil
		})
	}
	_ = g.Wait()
	return signatures
}

// N длина шингла
func (idx *Index) N() int {
	return idx.n
}

// Field поле, по которому построен индекс
func (idx *Index) Field() Field {
	return idx.field
}

// Len число различных шинглов (блоков)
func (idx *Index) Len() int {
	return len(idx.shingles)
}

// RecordCount число проиндексированных записей
func (idx *Index) RecordCount() int {
	return len(idx.ids)
}

// Postings возвращает список ID для шингла
func (idx *Index) Postings(shingle string) []string {
	ord, ok := idx.lookup[shingle]
	if !ok {
		return nil
	}
	return idx.resolve(idx.postings[ord])
}

// BlockSize размер блока по номеру
func (idx *Index) BlockSize(ord int) int {
	return len(idx.postings[ord])
}

// Keys возвращает шинглы в лексикографическом порядке
func (idx *Index) Keys() []string {
	keys := make([]string, len(idx.shingles))
	copy(keys, idx.shingles)
	sort.Strings(keys)
	return keys
}

// Map возвращает индекс в виде "шингл -> список ID"
func (idx *Index) Map() map[string][]string {
	out := make(map[string][]string, len(idx.shingles))
	for ord, shingle := range idx.shingles {
		out[shingle] = idx.resolve(idx.postings[ord])
	}
	return out
}

func (idx *Index) resolve(ords []int32) []string {
	out := make([]string, len(ords))
	for i, o := range ords {
		out[i] = idx.ids[o]
	}
	return out
}
