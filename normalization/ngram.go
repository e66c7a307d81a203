package normalization

import (
	"errors"
	"fmt"
	"sort"
)

// ErrInvalidShingleLength длина шингла должна быть положительной
var ErrInvalidShingleLength = errors.New("shingle length must be positive")

// ShingleSet множество шинглов одной записи (сигнатура)
type ShingleSet map[string]struct{}

// Add добавляет шингл; повторы схлопываются
func (s ShingleSet) Add(shingle string) {
	s[shingle] = struct{}{}
}

// Has проверяет наличие шингла
func (s ShingleSet) Has(shingle string) bool {
	_, ok := s[shingle]
	return ok
}

// Len возвращает количество уникальных шинглов
func (s ShingleSet) Len() int {
	return len(s)
}

// Sorted возвращает шинглы в лексикографическом порядке
func (s ShingleSet) Sorted() []string {
	out := make([]string, 0, len(s))
	for shingle := range s {
		out = append(out, shingle)
	}
	sort.Strings(out)
	return out
}

// Equal сравнивает два множества
func (s ShingleSet) Equal(other ShingleSet) bool {
	if len(s) != len(other) {
		return false
	}
	for shingle := range s {
		if !other.Has(shingle) {
			return false
		}
	}
	return true
}

// Tokenizer строит символьные шинглы фиксированной длины
type Tokenizer struct {
	n    int
	opts Options
}

// NewTokenizer создает токенизатор с длиной шингла n
func NewTokenizer(n int, opts Options) (*Tokenizer, error) {
	if n <= 0 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidShingleLength, n)
	}
	return &Tokenizer{n: n, opts: opts}, nil
}

// N возвращает длину шингла
func (t *Tokenizer) N() int {
	return t.n
}

// Tokenize строит сигнатуру текста.
// Окно шириной n сдвигается по каждому токену на один символ;
// токен короче n дает ровно один шингл, равный самому токену.
func (t *Tokenizer) Tokenize(text string) ShingleSet {
	shingles := make(ShingleSet)
	for _, token := range t.opts.CleanSplit(text) {
		addShingles(shingles, token, t.n)
	}
	return shingles
}

// Tokenize строит сигнатуру текста с настройками по умолчанию
func Tokenize(text string, n int) (ShingleSet, error) {
	t, err := NewTokenizer(n, Options{})
	if err != nil {
		return nil, err
	}
	return t.Tokenize(text), nil
}

func addShingles(dst ShingleSet, token string, n int) {
	runes := []rune(token)
	if len(runes) < n {
		// короткие токены (инициалы) должны оставаться индексируемыми
		dst.Add(token)
		return
	}
	for i := 0; i+n <= len(runes); i++ {
		dst.Add(string(runes[i : i+n]))
	}
}
