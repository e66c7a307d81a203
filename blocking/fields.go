package blocking

import (
	"fmt"
	"strings"
)

// Field поле записи, подаваемое в токенизатор или в функцию схожести
type Field string

const (
	FieldID      Field = "id"
	FieldTitle   Field = "title"
	FieldAuthors Field = "authors"
	FieldVenue   Field = "venue"
)

// Поля по умолчанию: блокинг по авторам, сравнение по заголовку
const (
	DefaultBlockField = FieldAuthors
	DefaultScoreField = FieldTitle
)

// Fields все поддерживаемые поля
var Fields = []Field{FieldID, FieldTitle, FieldAuthors, FieldVenue}

// ParseField разбирает имя поля без учета регистра
func ParseField(name string) (Field, error) {
	f := Field(strings.ToLower(strings.TrimSpace(name)))
	if !f.Valid() {
		return "", NewConfigurationError(fmt.Sprintf("unknown field selector %q", name), nil).
			WithDetail("field", name)
	}
	return f, nil
}

// Valid проверяет, что поле известно
func (f Field) Valid() bool {
	switch f {
	case FieldID, FieldTitle, FieldAuthors, FieldVenue:
		return true
	}
	return false
}

// Value извлекает значение поля из записи
func (f Field) Value(r Record) string {
	switch f {
	case FieldID:
		return r.ID
	case FieldTitle:
		return r.Title
	case FieldAuthors:
		return r.Authors
	case FieldVenue:
		return r.Venue
	}
	return ""
}

func (f Field) String() string {
	return string(f)
}
