package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "entityblock/server/errors"
	"entityblock/server/middleware"
)

// ErrorResponse структура ошибки
type ErrorResponse struct {
	Error     bool   `json:"error"`
	Message   string `json:"message"`
	RequestID string `json:"request_id,omitempty"`
}

// SendJSONResponse отправляет JSON ответ через Gin context
func SendJSONResponse(c *gin.Context, statusCode int, data interface{}) {
	c.JSON(statusCode, data)
}

// SendJSONError отправляет JSON ошибку через Gin context
func SendJSONError(c *gin.Context, statusCode int, message string) {
	c.AbortWithStatusJSON(statusCode, ErrorResponse{
		Error:     true,
		Message:   message,
		RequestID: middleware.GetRequestIDFromGin(c),
	})
}

// HandleError переводит ошибку в AppError, логирует и отправляет ответ
func HandleError(c *gin.Context, logger *slog.Logger, err error) {
	appErr := apperrors.FromDomain(err)
	_ = c.Error(err)

	level := slog.LevelWarn
	if appErr.StatusCode() >= http.StatusInternalServerError {
		level = slog.LevelError
	}
	logger.Log(c.Request.Context(), level, "Gin HTTP error",
		"error", appErr.Err,
		"user_message", appErr.Message,
		"context", appErr.Context,
		"status_code", appErr.StatusCode(),
		"request_id", middleware.GetRequestIDFromGin(c),
		"method", c.Request.Method,
		"path", c.Request.URL.Path,
	)

	SendJSONError(c, appErr.StatusCode(), appErr.Message)
}
