package importer

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"entityblock/blocking"
)

// XLSXReader читает записи с первого листа книги Excel
type XLSXReader struct {
	config ReaderConfig
}

// NewXLSXReader создает читатель Excel
func NewXLSXReader(config ReaderConfig) *XLSXReader {
	return &XLSXReader{config: config}
}

// ReadFile читает файл .xlsx; первая строка листа является заголовком
func (r *XLSXReader) ReadFile(path string) (blocking.RecordSet, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, blocking.NewIngestionError(fmt.Sprintf("failed to open %s", path), err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, blocking.NewIngestionError(fmt.Sprintf("%s has no sheets", path), nil)
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, blocking.NewIngestionError(fmt.Sprintf("failed to read sheet %q", sheets[0]), err)
	}
	if len(rows) == 0 {
		return nil, blocking.NewIngestionError("empty sheet, header row is missing", nil)
	}

	columns, err := mapColumns(rows[0])
	if err != nil {
		return nil, err
	}

	csvLike := &CSVReader{config: r.config}
	set := make(blocking.RecordSet, len(rows)-1)
	for i, row := range rows[1:] {
		if isBlankRow(row) {
			continue
		}
		// excelize обрезает пустые хвостовые ячейки
		for len(row) <= columns.last() {
			row = append(row, "")
		}
		rec, err := csvLike.toRecord(row, columns, i+2)
		if err != nil {
			return nil, err
		}
		set.Add(rec)
	}

	csvLike.logger().Info("Records loaded", "path", path, "sheet", sheets[0], "records", len(set))
	return set, nil
}

func isBlankRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
