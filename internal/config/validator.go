package config

import (
	"fmt"
	"log/slog"
	"slices"
	"strconv"
	"strings"
	"time"

	"golang.org/x/net/html/charset"

	"entityblock/blocking"
	"entityblock/normalization"
)

var validLogLevels = []string{"DEBUG", "INFO", "WARN", "ERROR"}

// Validate проверяет корректность конфигурации
func (c *Config) Validate() error {
	var errors []string

	// Валидация порта
	if c.Port == "" {
		errors = append(errors, "port is required")
	} else {
		port, err := strconv.Atoi(c.Port)
		if err != nil {
			errors = append(errors, fmt.Sprintf("invalid port: %s", c.Port))
		} else if port < 1 || port > 65535 {
			errors = append(errors, fmt.Sprintf("port must be between 1 and 65535, got %d", port))
		}
	}

	if c.ResultsDatabasePath == "" {
		errors = append(errors, "results database path is required")
	}

	// Параметры блокинга проверяет сам конвейер
	if err := c.Settings().Validate(); err != nil {
		errors = append(errors, err.Error())
	}
	if c.StemLanguage != "" {
		if _, err := normalization.NewStemmer(c.StemLanguage); err != nil {
			errors = append(errors, fmt.Sprintf("invalid stem language: %v", err))
		}
	}

	if c.InputEncoding != "" {
		if enc, _ := charset.Lookup(c.InputEncoding); enc == nil {
			errors = append(errors, fmt.Sprintf("unknown input encoding: %s", c.InputEncoding))
		}
	}

	// Валидация уровня логирования
	if c.LogLevel != "" && !slices.Contains(validLogLevels, strings.ToUpper(c.LogLevel)) {
		errors = append(errors, fmt.Sprintf("invalid log level: %s (valid: %s)",
			c.LogLevel, strings.Join(validLogLevels, ", ")))
	}

	if c.RateLimitPerSecond < 0 {
		errors = append(errors, "rate limit per second must be >= 0")
	}
	if c.RateLimitPerSecond > 0 && c.RateLimitBurst < 1 {
		errors = append(errors, "rate limit burst must be at least 1")
	}
	if c.MaxRequestRecords < 1 {
		errors = append(errors, "max request records must be at least 1")
	}
	if c.ShutdownTimeout < time.Second {
		errors = append(errors, "shutdown timeout must be at least 1 second")
	}

	if len(errors) > 0 {
		return blocking.NewConfigurationError(
			fmt.Sprintf("validation errors: %s", strings.Join(errors, "; ")), nil)
	}

	return nil
}

// SlogLevel уровень логирования для slog; пустое значение означает INFO
func (c *Config) SlogLevel() slog.Level {
	switch strings.ToUpper(c.LogLevel) {
	case "DEBUG":
		return slog.LevelDebug
	case "WARN":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// GetDefaults возвращает конфигурацию по умолчанию
func GetDefaults() *Config {
	return &Config{
		Port:                "9999",
		ResultsDatabasePath: "data/results.db",
		ShingleLength:       blocking.DefaultShingleLength,
		BlockField:          string(blocking.DefaultBlockField),
		ScoreField:          string(blocking.DefaultScoreField),
		InputEncoding:       "utf-8",
		LogLevel:            "INFO",
		RateLimitPerSecond:  5,
		RateLimitBurst:      10,
		MaxRequestRecords:   50000,
		ShutdownTimeout:     10 * time.Second,
	}
}
