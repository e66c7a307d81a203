package handlers

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"entityblock/blocking"
	"entityblock/database"
	"entityblock/exporter"
	apperrors "entityblock/server/errors"
	"entityblock/server/middleware"
)

// RunStore хранилище прогонов блокинга
type RunStore interface {
	SaveRun(run *database.Run, scores []blocking.CandidateScore) error
	GetRun(id string) (*database.Run, error)
	ListRuns(limit, offset int) ([]*database.Run, error)
	ListScores(runID string, limit, offset int) ([]blocking.CandidateScore, int, error)
	ForEachScore(runID string, fn func(blocking.CandidateScore) error) error
	DeleteRun(id string) error
}

// BlockingHandler обработчик прогонов блокинга
type BlockingHandler struct {
	store      RunStore
	settings   blocking.Settings
	maxRecords int
	logger     *slog.Logger
}

// NewBlockingHandler создает обработчик; store может быть nil, тогда прогоны не сохраняются
func NewBlockingHandler(store RunStore, settings blocking.Settings, maxRecords int, logger *slog.Logger) *BlockingHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &BlockingHandler{
		store:      store,
		settings:   settings,
		maxRecords: maxRecords,
		logger:     logger,
	}
}

// CreateRunRequest запрос на прогон блокинга
type CreateRunRequest struct {
	Records       []blocking.Record `json:"records" binding:"required"`
	ShingleLength int               `json:"shingle_length,omitempty"`
	BlockField    string            `json:"block_field,omitempty"`
	ScoreField    string            `json:"score_field,omitempty"`
	Precision     *int              `json:"precision,omitempty"`
	StemLanguage  *string           `json:"stem_language,omitempty"`
	Persist       bool              `json:"persist,omitempty"`
}

// CreateRunResponse результат прогона
type CreateRunResponse struct {
	RunID      string                    `json:"run_id,omitempty"`
	Stats      blocking.Stats            `json:"stats"`
	Scores     []blocking.CandidateScore `json:"scores"`
	Total      int                       `json:"total"`
	DurationMS int64                     `json:"duration_ms"`
}

// RunListResponse список прогонов
type RunListResponse struct {
	Runs   []*database.Run `json:"runs"`
	Limit  int             `json:"limit"`
	Offset int             `json:"offset"`
}

// ScoreListResponse страница пар прогона
type ScoreListResponse struct {
	RunID  string                    `json:"run_id"`
	Scores []blocking.CandidateScore `json:"scores"`
	Total  int                       `json:"total"`
	Limit  int                       `json:"limit"`
	Offset int                       `json:"offset"`
}

// settingsFor накладывает параметры запроса на настройки сервера
func (h *BlockingHandler) settingsFor(req *CreateRunRequest) blocking.Settings {
	s := h.settings
	if req.ShingleLength != 0 {
		s.ShingleLength = req.ShingleLength
	}
	if req.BlockField != "" {
		s.BlockField = blocking.Field(strings.ToLower(req.BlockField))
	}
	if req.ScoreField != "" {
		s.ScoreField = blocking.Field(strings.ToLower(req.ScoreField))
	}
	if req.Precision != nil {
		s.Precision = *req.Precision
	}
	if req.StemLanguage != nil {
		s.StemLanguage = *req.StemLanguage
	}
	return s
}

// HandleCreateRun запускает блокинг и подсчет схожести для переданных записей
// @Summary Запустить блокинг
// @Description Строит индекс по шинглам поля блокинга и оценивает пары внутри блоков
// @Tags blocking
// @Accept json
// @Produce json
// @Param request body CreateRunRequest true "Записи и параметры"
// @Success 200 {object} CreateRunResponse "Результат прогона"
// @Failure 400 {object} ErrorResponse "Некорректные записи или параметры"
// @Failure 413 {object} ErrorResponse "Слишком много записей"
// @Failure 429 {object} ErrorResponse "Превышен лимит запросов"
// @Failure 500 {object} ErrorResponse "Внутренняя ошибка сервера"
// @Router /api/blocking/runs [post]
func (h *BlockingHandler) HandleCreateRun(c *gin.Context) {
	var req CreateRunRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		HandleError(c, h.logger, apperrors.NewValidationError("invalid request body", err))
		return
	}
	if h.maxRecords > 0 && len(req.Records) > h.maxRecords {
		HandleError(c, h.logger, apperrors.NewPayloadTooLargeError(
			fmt.Sprintf("too many records: %d, limit is %d", len(req.Records), h.maxRecords)))
		return
	}
	if req.Persist && h.store == nil {
		HandleError(c, h.logger, apperrors.NewServiceUnavailableError("results database is not configured", nil))
		return
	}

	for i, rec := range req.Records {
		if strings.TrimSpace(rec.ID) == "" {
			HandleError(c, h.logger, blocking.NewIngestionError(fmt.Sprintf("record %d has empty id", i), nil).
				WithDetail("index", i))
			return
		}
	}

	logger := h.logger.With("request_id", middleware.GetRequestIDFromGin(c))
	settings := h.settingsFor(&req)
	settings.Observer = blocking.NewSlogObserver(logger)

	pipeline, err := blocking.NewPipeline(settings)
	if err != nil {
		HandleError(c, h.logger, err)
		return
	}

	result, err := pipeline.Run(c.Request.Context(), blocking.NewRecordSet(req.Records...))
	if err != nil {
		HandleError(c, h.logger, err)
		return
	}

	resp := CreateRunResponse{
		Stats:      result.Stats,
		Scores:     result.Scores,
		Total:      len(result.Scores),
		DurationMS: result.Duration.Milliseconds(),
	}
	if resp.Scores == nil {
		resp.Scores = []blocking.CandidateScore{}
	}

	if req.Persist {
		run := database.NewRun(settings, result, []string{"api"})
		if err := h.store.SaveRun(run, result.Scores); err != nil {
			HandleError(c, h.logger, err)
			return
		}
		resp.RunID = run.ID
		logger.Info("Blocking run persisted", "run_id", run.ID, "scores", len(result.Scores))
	}

	SendJSONResponse(c, http.StatusOK, resp)
}

// HandleListRuns возвращает сохраненные прогоны
// @Summary Список прогонов
// @Tags blocking
// @Produce json
// @Param limit query int false "Размер страницы" default(100)
// @Param offset query int false "Смещение" default(0)
// @Success 200 {object} RunListResponse
// @Failure 400 {object} ErrorResponse
// @Router /api/blocking/runs [get]
func (h *BlockingHandler) HandleListRuns(c *gin.Context) {
	if !h.requireStore(c) {
		return
	}
	limit, offset, ok := h.pagination(c, 100)
	if !ok {
		return
	}

	runs, err := h.store.ListRuns(limit, offset)
	if err != nil {
		HandleError(c, h.logger, err)
		return
	}
	if runs == nil {
		runs = []*database.Run{}
	}
	SendJSONResponse(c, http.StatusOK, RunListResponse{Runs: runs, Limit: limit, Offset: offset})
}

// HandleGetRun возвращает прогон по ID
// @Summary Получить прогон
// @Tags blocking
// @Produce json
// @Param id path string true "ID прогона"
// @Success 200 {object} database.Run
// @Failure 404 {object} ErrorResponse "Прогон не найден"
// @Router /api/blocking/runs/{id} [get]
func (h *BlockingHandler) HandleGetRun(c *gin.Context) {
	if !h.requireStore(c) {
		return
	}
	run, err := h.store.GetRun(c.Param("id"))
	if err != nil {
		HandleError(c, h.logger, err)
		return
	}
	SendJSONResponse(c, http.StatusOK, run)
}

// HandleListScores возвращает пары прогона постранично или файлом.
// Файл без limit содержит все пары прогона; с limit/offset только запрошенную страницу.
// @Summary Пары прогона
// @Tags blocking
// @Produce json
// @Produce text/csv
// @Param id path string true "ID прогона"
// @Param limit query int false "Размер страницы" default(1000)
// @Param offset query int false "Смещение" default(0)
// @Param format query string false "json, csv или xlsx" default(json)
// @Success 200 {object} ScoreListResponse
// @Failure 404 {object} ErrorResponse "Прогон не найден"
// @Router /api/blocking/runs/{id}/scores [get]
func (h *BlockingHandler) HandleListScores(c *gin.Context) {
	if !h.requireStore(c) {
		return
	}
	runID := c.Param("id")
	limit, offset, ok := h.pagination(c, 1000)
	if !ok {
		return
	}

	var format exporter.Format
	if raw := c.Query("format"); raw != "" && raw != string(exporter.FormatJSON) {
		f, err := exporter.ParseFormat(raw)
		if err != nil {
			HandleError(c, h.logger, err)
			return
		}
		format = f
	}

	if _, err := h.store.GetRun(runID); err != nil {
		HandleError(c, h.logger, err)
		return
	}

	if format != "" {
		h.exportScores(c, runID, format, limit, offset)
		return
	}

	scores, total, err := h.store.ListScores(runID, limit, offset)
	if err != nil {
		HandleError(c, h.logger, err)
		return
	}
	SendJSONResponse(c, http.StatusOK, ScoreListResponse{
		RunID:  runID,
		Scores: scores,
		Total:  total,
		Limit:  limit,
		Offset: offset,
	})
}

// exportScores отдает пары файлом; без limit и offset выгружается весь прогон через курсор
func (h *BlockingHandler) exportScores(c *gin.Context, runID string, format exporter.Format, limit, offset int) {
	src := exporter.Source(func(emit func(blocking.CandidateScore) error) error {
		return h.store.ForEachScore(runID, emit)
	})
	if c.Query("limit") != "" || c.Query("offset") != "" {
		scores, total, err := h.store.ListScores(runID, limit, offset)
		if err != nil {
			HandleError(c, h.logger, err)
			return
		}
		c.Header("X-Total-Count", strconv.Itoa(total))
		src = exporter.SliceSource(scores)
	}

	c.Header("Content-Type", format.ContentType())
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s.%s"`, runID, format))
	c.Status(http.StatusOK)
	if err := exporter.ExportSource(c.Writer, src, format); err != nil {
		// заголовки уже отправлены, остается только записать ошибку в лог
		h.logger.Error("Failed to export scores", "run_id", runID, "format", string(format), "error", err)
	}
}

// HandleDeleteRun удаляет прогон вместе с парами
// @Summary Удалить прогон
// @Tags blocking
// @Produce json
// @Param id path string true "ID прогона"
// @Success 200 {object} map[string]string
// @Failure 404 {object} ErrorResponse "Прогон не найден"
// @Router /api/blocking/runs/{id} [delete]
func (h *BlockingHandler) HandleDeleteRun(c *gin.Context) {
	if !h.requireStore(c) {
		return
	}
	id := c.Param("id")
	if err := h.store.DeleteRun(id); err != nil {
		HandleError(c, h.logger, err)
		return
	}
	SendJSONResponse(c, http.StatusOK, gin.H{"deleted": id})
}

func (h *BlockingHandler) requireStore(c *gin.Context) bool {
	if h.store == nil {
		HandleError(c, h.logger, apperrors.NewServiceUnavailableError("results database is not configured", nil))
		return false
	}
	return true
}

// pagination читает limit/offset из query; отрицательные значения отклоняются
func (h *BlockingHandler) pagination(c *gin.Context, defaultLimit int) (int, int, bool) {
	limit, offset := defaultLimit, 0
	params := []struct {
		name string
		dst  *int
	}{{"limit", &limit}, {"offset", &offset}}
	for _, p := range params {
		name, dst := p.name, p.dst
		raw := c.Query(name)
		if raw == "" {
			continue
		}
		v, err := strconv.Atoi(raw)
		if err != nil || v < 0 {
			appErr := apperrors.NewValidationError(fmt.Sprintf("invalid %s: %q", name, raw), err).WithContext("pagination")
			HandleError(c, h.logger, appErr)
			return 0, 0, false
		}
		*dst = v
	}
	if limit == 0 {
		limit = defaultLimit
	}
	return limit, offset, true
}
