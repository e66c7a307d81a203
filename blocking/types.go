package blocking

import "sort"

// Record библиографическая запись. Создается один раз при загрузке и не изменяется.
type Record struct {
	ID      string `json:"id"`
	Title   string `json:"title"`
	Authors string `json:"authors"`
	Venue   string `json:"venue"`
}

// RecordSet набор записей по ID. Повторный ID перезаписывает прежнее значение.
type RecordSet map[string]Record

// NewRecordSet создает набор из списка записей (last-write-wins)
func NewRecordSet(records ...Record) RecordSet {
	set := make(RecordSet, len(records))
	for _, r := range records {
		set.Add(r)
	}
	return set
}

// Add добавляет или заменяет запись
func (s RecordSet) Add(r Record) {
	s[r.ID] = r
}

// Get возвращает запись по ID
func (s RecordSet) Get(id string) (Record, bool) {
	r, ok := s[id]
	return r, ok
}

// Merge переносит записи другого набора; совпадающие ID перезаписываются
func (s RecordSet) Merge(other RecordSet) {
	for id, r := range other {
		s[id] = r
	}
}

// SortedIDs возвращает ID в лексикографическом порядке
func (s RecordSet) SortedIDs() []string {
	ids := make([]string, 0, len(s))
	for id := range s {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Sorted возвращает записи, упорядоченные по ID
func (s RecordSet) Sorted() []Record {
	ids := s.SortedIDs()
	out := make([]Record, len(ids))
	for i, id := range ids {
		out[i] = s[id]
	}
	return out
}

// CandidateScore оцененная пара кандидатов.
// Одна и та же пара повторяется для каждого общего шингла.
type CandidateScore struct {
	Key   string  `json:"key"`
	ID1   string  `json:"id1"`
	ID2   string  `json:"id2"`
	Score float64 `json:"score"`
}
