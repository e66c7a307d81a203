package importer

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/net/html/charset"

	"entityblock/blocking"
)

// RequiredColumns колонки, без которых файл не принимается
var RequiredColumns = []string{"id", "title", "authors", "venue"}

// ReaderConfig настройки чтения исходных файлов
type ReaderConfig struct {
	Delimiter rune   // разделитель CSV (по умолчанию запятая)
	Encoding  string // метка кодировки: "utf-8", "windows-1251", "latin1" ...
	StripHTML bool   // удалять HTML-разметку из текстовых полей
	Logger    *slog.Logger
}

// DefaultReaderConfig возвращает настройки по умолчанию
func DefaultReaderConfig() ReaderConfig {
	return ReaderConfig{
		Delimiter: ',',
		Encoding:  "utf-8",
	}
}

// CSVReader читает записи из CSV с заголовком id,title,authors,venue
type CSVReader struct {
	config ReaderConfig
}

// NewCSVReader создает читатель CSV
func NewCSVReader(config ReaderConfig) *CSVReader {
	if config.Delimiter == 0 {
		config.Delimiter = ','
	}
	if config.Encoding == "" {
		config.Encoding = "utf-8"
	}
	return &CSVReader{config: config}
}

// ReadFile читает CSV файл в набор записей
func (r *CSVReader) ReadFile(path string) (blocking.RecordSet, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, blocking.NewIngestionError(fmt.Sprintf("failed to open %s", path), err)
	}
	defer file.Close()

	set, err := r.Read(file)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	r.logger().Info("Records loaded", "path", path, "records", len(set))
	return set, nil
}

// Read читает CSV из потока; повторные ID перезаписываются (last-write-wins)
func (r *CSVReader) Read(src io.Reader) (blocking.RecordSet, error) {
	decoded, err := charset.NewReaderLabel(r.config.Encoding, src)
	if err != nil {
		return nil, blocking.NewIngestionError(fmt.Sprintf("unsupported encoding %q", r.config.Encoding), err)
	}

	reader := csv.NewReader(decoded)
	reader.Comma = r.config.Delimiter
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, blocking.NewIngestionError("empty input, header row is missing", nil)
		}
		return nil, blocking.NewIngestionError("failed to read header", err)
	}

	columns, err := mapColumns(header)
	if err != nil {
		return nil, err
	}

	set := make(blocking.RecordSet)
	line := 1
	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			return nil, blocking.NewIngestionError(fmt.Sprintf("malformed row at line %d", line), err).
				WithDetail("line", line)
		}

		rec, err := r.toRecord(row, columns, line)
		if err != nil {
			return nil, err
		}
		set.Add(rec)
	}
	return set, nil
}

func (r *CSVReader) toRecord(row []string, columns columnIndices, line int) (blocking.Record, error) {
	if len(row) <= columns.last() {
		return blocking.Record{}, blocking.NewIngestionError(
			fmt.Sprintf("row at line %d has %d columns, expected at least %d", line, len(row), columns.last()+1), nil).
			WithDetail("line", line)
	}
	rec := blocking.Record{
		ID:      strings.TrimSpace(row[columns.id]),
		Title:   row[columns.title],
		Authors: row[columns.authors],
		Venue:   row[columns.venue],
	}
	if rec.ID == "" {
		return blocking.Record{}, blocking.NewIngestionError(fmt.Sprintf("empty id at line %d", line), nil).
			WithDetail("line", line)
	}
	if r.config.StripHTML {
		rec.Title = StripHTML(rec.Title)
		rec.Authors = StripHTML(rec.Authors)
		rec.Venue = StripHTML(rec.Venue)
	}
	return rec, nil
}

func (r *CSVReader) logger() *slog.Logger {
	if r.config.Logger != nil {
		return r.config.Logger
	}
	return slog.Default()
}

// columnIndices позиции обязательных колонок
type columnIndices struct {
	id, title, authors, venue int
}

func (c columnIndices) last() int {
	return max(c.id, c.title, c.authors, c.venue)
}

// mapColumns находит обязательные колонки в заголовке без учета регистра
func mapColumns(header []string) (columnIndices, error) {
	positions := make(map[string]int, len(header))
	for i, name := range header {
		name = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(name, "\ufeff")))
		if _, seen := positions[name]; !seen {
			positions[name] = i
		}
	}

	var missing []string
	for _, col := range RequiredColumns {
		if _, ok := positions[col]; !ok {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return columnIndices{}, blocking.NewIngestionError(
			fmt.Sprintf("missing required columns: %s", strings.Join(missing, ", ")), nil).
			WithDetail("header", header)
	}

	return columnIndices{
		id:      positions["id"],
		title:   positions["title"],
		authors: positions["authors"],
		venue:   positions["venue"],
	}, nil
}
