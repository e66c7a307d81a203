package normalization

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// Options настройки очистки и токенизации текстовых полей
type Options struct {
	// ComposeUnicode приводит текст к форме NFC до очистки,
	// чтобы "e" + комбинирующий акцент и "é" давали одинаковые шинглы
	ComposeUnicode bool

	// DropEmptyTokens отбрасывает пустые токены (",," или пустое поле).
	// По умолчанию пустой токен дает пустой шингл
	DropEmptyTokens bool
}

// TokenDelimiter разделитель имен авторов в сыром поле
const TokenDelimiter = ','

// CleanSplit очищает сырое поле и разбивает его на нормализованные токены.
// Удаляются все символы, кроме букв, цифр, подчеркивания и запятой;
// результат приводится к нижнему регистру и режется по запятым.
// Пустые токены сохраняются как "".
func CleanSplit(text string) []string {
	return Options{}.CleanSplit(text)
}

// CleanSplit выполняет очистку с учетом настроек
func (o Options) CleanSplit(text string) []string {
	if o.ComposeUnicode {
		text = norm.NFC.String(text)
	}

	cleaned := strings.ToLower(stripNonWord(text))
	parts := strings.Split(cleaned, string(TokenDelimiter))

	tokens := make([]string, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" && o.DropEmptyTokens {
			continue
		}
		tokens = append(tokens, part)
	}
	return tokens
}

// stripNonWord удаляет все, что не является "словесным" символом или запятой
func stripNonWord(text string) string {
	var builder strings.Builder
	builder.Grow(len(text))
	for _, r := range text {
		if r == TokenDelimiter || isWordRune(r) {
			builder.WriteRune(r)
		}
	}
	return builder.String()
}

// isWordRune соответствует классу \w в Unicode-режиме регулярных выражений
func isWordRune(r rune) bool {
	switch {
	case r == '_':
		return true
	case unicode.IsLetter(r), unicode.IsDigit(r), unicode.IsMark(r):
		return true
	case unicode.Is(unicode.Nl, r), unicode.Is(unicode.Pc, r):
		return true
	}
	return false
}
