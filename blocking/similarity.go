package blocking

// Similarity функция схожести двух значений поля, результат в [0, 1]
type Similarity interface {
	Score(a, b string) float64
	Name() string
}

// Levenshtein нормализованное расстояние редактирования:
// 1 - lev(a, b) / max(len(a), len(b)), длины считаются в рунах.
// Две пустые строки считаются идентичными (1.0).
type Levenshtein struct{}

// Score реализует Similarity
func (Levenshtein) Score(a, b string) float64 {
	return LevenshteinSimilarity(a, b)
}

// Name реализует Similarity
func (Levenshtein) Name() string {
	return "levenshtein"
}

// LevenshteinSimilarity вычисляет нормализованную схожесть двух строк
func LevenshteinSimilarity(a, b string) float64 {
	r1 := []rune(a)
	r2 := []rune(b)
	maxLen := max(len(r1), len(r2))
	if maxLen == 0 {
		return 1.0
	}
	return 1.0 - float64(editDistance(r1, r2))/float64(maxLen)
}

// EditDistance расстояние Левенштейна (вставка, удаление, замена) в рунах
func EditDistance(a, b string) int {
	return editDistance([]rune(a), []rune(b))
}

// editDistance использует одну строку матрицы
func editDistance(r1, r2 []rune) int {
	len1, len2 := len(r1), len(r2)
	if len1 == 0 {
		return len2
	}
	if len2 == 0 {
		return len1
	}

	column := make([]int, len1+1)
	for i := 1; i <= len1; i++ {
		column[i] = i
	}

	for x := 1; x <= len2; x++ {
		column[0] = x
		lastDiag := x - 1
		for y := 1; y <= len1; y++ {
			oldDiag := column[y]
			cost := 0
			if r1[y-1] != r2[x-1] {
				cost = 1
			}
			column[y] = min(column[y]+1, column[y-1]+1, lastDiag+cost)
			lastDiag = oldDiag
		}
	}

	return column[len1]
}
