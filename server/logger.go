package server

import (
	"io"
	"log/slog"
	"os"
)

// NewLogger создает структурированный JSON логгер с информацией об источнике
func NewLogger(w io.Writer, level slog.Level) *slog.Logger {
	if w == nil {
		w = os.Stdout
	}
	opts := &slog.HandlerOptions{
		Level:     level,
		AddSource: true, // Добавляем информацию об источнике (файл, строка)
	}
	return slog.New(slog.NewJSONHandler(w, opts))
}
