package normalization

import (
	"fmt"
	"strings"
	"sync"

	"github.com/kljensen/snowball"
)

// Stemmer приводит слова поля сравнения к основе (Snowball).
// Используется как необязательное преобразование заголовка перед подсчетом схожести.
type Stemmer struct {
	language string
	cache    map[string]string
	mu       sync.RWMutex
}

// NewStemmer создает стеммер для языка Snowball ("english", "russian", "french", ...)
func NewStemmer(language string) (*Stemmer, error) {
	language = strings.ToLower(strings.TrimSpace(language))
	if language == "" {
		return nil, fmt.Errorf("stemmer language is required")
	}
	if _, err := snowball.Stem("test", language, true); err != nil {
		return nil, fmt.Errorf("unsupported stemmer language %q: %w", language, err)
	}
	return &Stemmer{
		language: language,
		cache:    make(map[string]string),
	}, nil
}

// Language возвращает язык стеммера
func (s *Stemmer) Language() string {
	return s.language
}

// Stem возвращает основу слова в нижнем регистре
func (s *Stemmer) Stem(word string) string {
	normalized := strings.ToLower(strings.TrimSpace(word))
	if normalized == "" {
		return ""
	}

	s.mu.RLock()
	cached, ok := s.cache[normalized]
	s.mu.RUnlock()
	if ok {
		return cached
	}

	stemmed, err := snowball.Stem(normalized, s.language, true)
	if err != nil {
		stemmed = normalized
	}

	s.mu.Lock()
	s.cache[normalized] = stemmed
	s.mu.Unlock()

	return stemmed
}

// StemText стеммит каждое слово текста и склеивает результат через пробел
func (s *Stemmer) StemText(text string) string {
	words := strings.Fields(text)
	for i, w := range words {
		words[i] = s.Stem(w)
	}
	return strings.Join(words, " ")
}
