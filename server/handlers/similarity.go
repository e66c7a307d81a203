package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"entityblock/blocking"
	"entityblock/normalization"
	apperrors "entityblock/server/errors"
)

// SimilarityHandler обработчик токенизации и сравнения строк
type SimilarityHandler struct {
	similarity blocking.Similarity
	tokenizer  normalization.Options
	defaultN   int
	logger     *slog.Logger
}

// NewSimilarityHandler создает обработчик; n по умолчанию берется из настроек сервера
func NewSimilarityHandler(settings blocking.Settings, logger *slog.Logger) *SimilarityHandler {
	if logger == nil {
		logger = slog.Default()
	}
	sim := settings.Similarity
	if sim == nil {
		sim = blocking.Levenshtein{}
	}
	return &SimilarityHandler{
		similarity: sim,
		tokenizer:  settings.Tokenizer,
		defaultN:   settings.ShingleLength,
		logger:     logger,
	}
}

// TokenizeRequest запрос токенизации
type TokenizeRequest struct {
	Text string `json:"text"`
	N    int    `json:"n,omitempty"`
}

// TokenizeResponse множество шинглов в лексикографическом порядке
type TokenizeResponse struct {
	N        int      `json:"n"`
	Tokens   []string `json:"tokens"`
	Shingles []string `json:"shingles"`
	Count    int      `json:"count"`
}

// CompareRequest запрос сравнения двух строк
type CompareRequest struct {
	String1 string `json:"string1"`
	String2 string `json:"string2"`
}

// CompareResponse результат сравнения
type CompareResponse struct {
	Similarity float64 `json:"similarity"`
	Distance   int     `json:"distance"`
	Algorithm  string  `json:"algorithm"`
}

// HandleTokenize возвращает шинглы строки
// @Summary Разбить строку на шинглы
// @Description Очистка, разбиение по запятым и символьные n-граммы каждого токена
// @Tags blocking
// @Accept json
// @Produce json
// @Param request body TokenizeRequest true "Текст и длина шингла"
// @Success 200 {object} TokenizeResponse
// @Failure 400 {object} ErrorResponse "Некорректная длина шингла"
// @Router /api/blocking/tokenize [post]
func (h *SimilarityHandler) HandleTokenize(c *gin.Context) {
	var req TokenizeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		HandleError(c, h.logger, apperrors.NewValidationError("invalid request body", err))
		return
	}
	n := req.N
	if n == 0 {
		n = h.defaultN
	}

	tokenizer, err := normalization.NewTokenizer(n, h.tokenizer)
	if err != nil {
		HandleError(c, h.logger, blocking.NewConfigurationError("invalid shingle length", err))
		return
	}

	shingles := tokenizer.Tokenize(req.Text).Sorted()
	tokens := h.tokenizer.CleanSplit(req.Text)
	SendJSONResponse(c, http.StatusOK, TokenizeResponse{
		N:        n,
		Tokens:   tokens,
		Shingles: shingles,
		Count:    len(shingles),
	})
}

// HandleSimilarityCompare обрабатывает запрос сравнения двух строк
// @Summary Сравнить две строки
// @Description Нормализованная схожесть Левенштейна: 1 - dist / max(len)
// @Tags similarity
// @Accept json
// @Produce json
// @Param request body CompareRequest true "Строки для сравнения"
// @Success 200 {object} CompareResponse
// @Failure 400 {object} ErrorResponse "Некорректное тело запроса"
// @Router /api/similarity/compare [post]
func (h *SimilarityHandler) HandleSimilarityCompare(c *gin.Context) {
	var req CompareRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		HandleError(c, h.logger, apperrors.NewValidationError("invalid request body", err))
		return
	}

	SendJSONResponse(c, http.StatusOK, CompareResponse{
		Similarity: h.similarity.Score(req.String1, req.String2),
		Distance:   blocking.EditDistance(req.String1, req.String2),
		Algorithm:  h.similarity.Name(),
	})
}
