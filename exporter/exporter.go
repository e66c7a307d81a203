package exporter

import (
	"bufio"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"entityblock/blocking"
)

// Format формат экспорта
type Format string

const (
	FormatJSON  Format = "json"
	FormatCSV   Format = "csv"
	FormatExcel Format = "xlsx"
)

// SheetName имя листа с парами в книге Excel
const SheetName = "Candidate Pairs"

var headers = []string{"Key", "ID1", "ID2", "Score"}

// ParseFormat определяет формат по имени ("csv", "json", "xlsx"/"excel")
func ParseFormat(name string) (Format, error) {
	switch strings.ToLower(strings.TrimPrefix(name, ".")) {
	case "csv":
		return FormatCSV, nil
	case "json":
		return FormatJSON, nil
	case "xlsx", "excel":
		return FormatExcel, nil
	default:
		return "", blocking.NewConfigurationError(fmt.Sprintf("unsupported export format %q", name), nil)
	}
}

// FormatFromFilename определяет формат по расширению файла
func FormatFromFilename(filename string) (Format, error) {
	return ParseFormat(filepath.Ext(filename))
}

// ContentType MIME-тип для HTTP-ответа
func (f Format) ContentType() string {
	switch f {
	case FormatCSV:
		return "text/csv; charset=utf-8"
	case FormatExcel:
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	default:
		return "application/json; charset=utf-8"
	}
}

// Source перебирает пары и передает каждую в emit; ошибка emit прерывает перебор
type Source func(emit func(blocking.CandidateScore) error) error

// SliceSource источник пар из среза в памяти
func SliceSource(scores []blocking.CandidateScore) Source {
	return func(emit func(blocking.CandidateScore) error) error {
		for _, s := range scores {
			if err := emit(s); err != nil {
				return err
			}
		}
		return nil
	}
}

// Export пишет пары в w в указанном формате
func Export(w io.Writer, scores []blocking.CandidateScore, format Format) error {
	return ExportSource(w, SliceSource(scores), format)
}

// ExportSource пишет пары из источника потоком, не собирая их в память
func ExportSource(w io.Writer, src Source, format Format) error {
	switch format {
	case FormatCSV:
		return exportCSV(w, src)
	case FormatJSON:
		return exportJSON(w, src)
	case FormatExcel:
		return exportExcel(w, src)
	default:
		return blocking.NewConfigurationError(fmt.Sprintf("unsupported export format %q", format), nil)
	}
}

// ExportFile создает файл и пишет в него пары; формат берется из расширения
func ExportFile(filename string, scores []blocking.CandidateScore) error {
	format, err := FormatFromFilename(filename)
	if err != nil {
		return err
	}

	file, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}

	if err := Export(file, scores, format); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}

// exportJSON пишет {"exported_at", "items", "total"}; total известен только после items
func exportJSON(w io.Writer, src Source) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "{\n  \"exported_at\": %q,\n  \"items\": [", time.Now().Format(time.RFC3339))

	total := 0
	err := src(func(s blocking.CandidateScore) error {
		item, err := json.Marshal(s)
		if err != nil {
			return fmt.Errorf("failed to encode JSON: %w", err)
		}
		if total > 0 {
			bw.WriteByte(',')
		}
		bw.WriteString("\n    ")
		bw.Write(item)
		total++
		return nil
	})
	if err != nil {
		return err
	}
	if total > 0 {
		bw.WriteString("\n  ")
	}
	fmt.Fprintf(bw, "],\n  \"total\": %d\n}\n", total)
	return bw.Flush()
}

func exportCSV(w io.Writer, src Source) error {
	writer := csv.NewWriter(w)

	if err := writer.Write(headers); err != nil {
		return fmt.Errorf("failed to write headers: %w", err)
	}
	err := src(func(s blocking.CandidateScore) error {
		record := []string{s.Key, s.ID1, s.ID2, strconv.FormatFloat(s.Score, 'f', -1, 64)}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("failed to write record: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	writer.Flush()
	return writer.Error()
}

func exportExcel(w io.Writer, src Source) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), SheetName); err != nil {
		return fmt.Errorf("failed to rename sheet: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}

	// Потоковая запись: число пар может измеряться миллионами
	sw, err := f.NewStreamWriter(SheetName)
	if err != nil {
		return fmt.Errorf("failed to create stream writer: %w", err)
	}
	if err := sw.SetColWidth(1, len(headers), 18); err != nil {
		return fmt.Errorf("failed to set column width: %w", err)
	}

	header := make([]interface{}, len(headers))
	for i, h := range headers {
		header[i] = excelize.Cell{StyleID: headerStyle, Value: h}
	}
	if err := sw.SetRow("A1", header); err != nil {
		return fmt.Errorf("failed to write headers: %w", err)
	}

	row := 2
	err = src(func(s blocking.CandidateScore) error {
		cell, _ := excelize.CoordinatesToCellName(1, row)
		if err := sw.SetRow(cell, []interface{}{s.Key, s.ID1, s.ID2, s.Score}); err != nil {
			return fmt.Errorf("failed to write row %d: %w", row, err)
		}
		row++
		return nil
	})
	if err != nil {
		return err
	}
	if err := sw.Flush(); err != nil {
		return fmt.Errorf("failed to flush sheet: %w", err)
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write Excel file: %w", err)
	}
	return nil
}
