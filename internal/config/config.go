package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"

	"entityblock/blocking"
	"entityblock/normalization"
)

// Config конфигурация сервера и CLI
type Config struct {
	// Сервер
	Port string `toml:"port" json:"port"`

	// База результатов
	ResultsDatabasePath string `toml:"results_database_path" json:"results_database_path"`

	// Блокинг
	ShingleLength   int    `toml:"shingle_length" json:"shingle_length"`
	BlockField      string `toml:"block_field" json:"block_field"`
	ScoreField      string `toml:"score_field" json:"score_field"`
	ScoreWorkers    int    `toml:"score_workers" json:"score_workers"`
	ScorePrecision  int    `toml:"score_precision" json:"score_precision"`
	StemLanguage    string `toml:"stem_language" json:"stem_language"`
	DropEmptyTokens bool   `toml:"drop_empty_tokens" json:"drop_empty_tokens"`
	ComposeUnicode  bool   `toml:"compose_unicode" json:"compose_unicode"`

	// Импорт
	InputEncoding string `toml:"input_encoding" json:"input_encoding"`
	StripHTML     bool   `toml:"strip_html" json:"strip_html"`

	// Логирование
	LogLevel string `toml:"log_level" json:"log_level"`

	// Ограничения API
	RateLimitPerSecond float64       `toml:"rate_limit_per_second" json:"rate_limit_per_second"`
	RateLimitBurst     int           `toml:"rate_limit_burst" json:"rate_limit_burst"`
	MaxRequestRecords  int           `toml:"max_request_records" json:"max_request_records"`
	ShutdownTimeout    time.Duration `toml:"-" json:"shutdown_timeout"`
}

// LoadConfig загружает конфигурацию: значения по умолчанию, затем TOML файл
// (если путь задан аргументом или CONFIG_FILE), затем переменные окружения.
// Файл .env в текущем каталоге подхватывается, если он есть.
func LoadConfig(path ...string) (*Config, error) {
	_ = godotenv.Load()

	config := GetDefaults()

	file := os.Getenv("CONFIG_FILE")
	if len(path) > 0 && path[0] != "" {
		file = path[0]
	}
	if file != "" {
		if err := config.loadFile(file); err != nil {
			return nil, err
		}
	}

	config.applyEnv()

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return config, nil
}

func (c *Config) loadFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open config: %w", err)
	}
	defer f.Close()

	decoder := toml.NewDecoder(f)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(c); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}

// applyEnv переопределяет значения переменными окружения
func (c *Config) applyEnv() {
	c.Port = getEnv("SERVER_PORT", c.Port)
	c.ResultsDatabasePath = getEnv("RESULTS_DATABASE_PATH", c.ResultsDatabasePath)

	c.ShingleLength = getEnvInt("SHINGLE_LENGTH", c.ShingleLength)
	c.BlockField = getEnv("BLOCK_FIELD", c.BlockField)
	c.ScoreField = getEnv("SCORE_FIELD", c.ScoreField)
	c.ScoreWorkers = getEnvInt("SCORE_WORKERS", c.ScoreWorkers)
	c.ScorePrecision = getEnvInt("SCORE_PRECISION", c.ScorePrecision)
	c.StemLanguage = getEnv("STEM_LANGUAGE", c.StemLanguage)
	c.DropEmptyTokens = getEnvBool("DROP_EMPTY_TOKENS", c.DropEmptyTokens)
	c.ComposeUnicode = getEnvBool("COMPOSE_UNICODE", c.ComposeUnicode)

	c.InputEncoding = getEnv("INPUT_ENCODING", c.InputEncoding)
	c.StripHTML = getEnvBool("STRIP_HTML", c.StripHTML)

	c.LogLevel = getEnv("LOG_LEVEL", c.LogLevel)

	c.RateLimitPerSecond = getEnvFloat("RATE_LIMIT_PER_SECOND", c.RateLimitPerSecond)
	c.RateLimitBurst = getEnvInt("RATE_LIMIT_BURST", c.RateLimitBurst)
	c.MaxRequestRecords = getEnvInt("MAX_REQUEST_RECORDS", c.MaxRequestRecords)
	c.ShutdownTimeout = getEnvDuration("SHUTDOWN_TIMEOUT", c.ShutdownTimeout)
}

// Settings переводит конфигурацию в параметры конвейера блокинга
func (c *Config) Settings() blocking.Settings {
	return blocking.Settings{
		ShingleLength: c.ShingleLength,
		BlockField:    blocking.Field(strings.ToLower(strings.TrimSpace(c.BlockField))),
		ScoreField:    blocking.Field(strings.ToLower(strings.TrimSpace(c.ScoreField))),
		Tokenizer: normalization.Options{
			ComposeUnicode:  c.ComposeUnicode,
			DropEmptyTokens: c.DropEmptyTokens,
		},
		Workers:      c.ScoreWorkers,
		Precision:    c.ScorePrecision,
		StemLanguage: c.StemLanguage,
	}
}

// getEnv получает переменную окружения или возвращает значение по умолчанию
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt получает переменную окружения как int или возвращает значение по умолчанию
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

// getEnvDuration получает переменную окружения как Duration или возвращает значение по умолчанию
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
