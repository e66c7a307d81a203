package blocking

import (
	"errors"
	"fmt"
)

// Коды ошибок
const (
	ErrCodeIngestion     = "INGESTION"
	ErrCodeConsistency   = "CONSISTENCY"
	ErrCodeConfiguration = "CONFIGURATION"
)

// Error ошибка блокинга с кодом категории
type Error struct {
	Code    string
	Message string
	Details map[string]interface{}
	Err     error
}

// Сентинелы для errors.Is
var (
	ErrIngestion     = &Error{Code: ErrCodeIngestion, Message: "ingestion failed"}
	ErrConsistency   = &Error{Code: ErrCodeConsistency, Message: "index does not match record set"}
	ErrConfiguration = &Error{Code: ErrCodeConfiguration, Message: "invalid configuration"}
)

// Error реализует интерфейс error
func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap возвращает вложенную ошибку
func (e *Error) Unwrap() error {
	return e.Err
}

// Is сравнивает ошибки по коду
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// WithDetail добавляет детали к ошибке
func (e *Error) WithDetail(key string, value interface{}) *Error {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

func newError(code, message string, err error) *Error {
	return &Error{
		Code:    code,
		Message: message,
		Err:     err,
		Details: make(map[string]interface{}),
	}
}

// NewIngestionError источник записей не читается или поврежден
func NewIngestionError(message string, err error) *Error {
	return newError(ErrCodeIngestion, message, err)
}

// NewConsistencyError ID из индекса отсутствует в наборе записей
func NewConsistencyError(message string, err error) *Error {
	return newError(ErrCodeConsistency, message, err)
}

// NewConfigurationError недопустимые параметры до начала обработки
func NewConfigurationError(message string, err error) *Error {
	return newError(ErrCodeConfiguration, message, err)
}

// IsConsistency проверяет, является ли ошибка ошибкой согласованности
func IsConsistency(err error) bool {
	return errors.Is(err, ErrConsistency)
}

// IsConfiguration проверяет, является ли ошибка ошибкой конфигурации
func IsConfiguration(err error) bool {
	return errors.Is(err, ErrConfiguration)
}

// IsIngestion проверяет, является ли ошибка ошибкой загрузки
func IsIngestion(err error) bool {
	return errors.Is(err, ErrIngestion)
}
