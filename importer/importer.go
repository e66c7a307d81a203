package importer

import (
	"fmt"
	"path/filepath"
	"strings"

	"entityblock/blocking"
)

// ReadFile читает один файл, выбирая формат по расширению (.csv, .tsv, .xlsx)
func ReadFile(path string, config ReaderConfig) (blocking.RecordSet, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm":
		return NewXLSXReader(config).ReadFile(path)
	case ".tsv":
		if config.Delimiter == 0 {
			config.Delimiter = '\t'
		}
		return NewCSVReader(config).ReadFile(path)
	case ".csv", ".txt", "":
		return NewCSVReader(config).ReadFile(path)
	default:
		return nil, blocking.NewIngestionError(fmt.Sprintf("unsupported file type %q", filepath.Ext(path)), nil).
			WithDetail("path", path)
	}
}

// ReadFiles читает несколько источников и объединяет их.
// При совпадении ID побеждает запись из более позднего файла.
func ReadFiles(paths []string, config ReaderConfig) (blocking.RecordSet, error) {
	if len(paths) == 0 {
		return nil, blocking.NewIngestionError("no input files", nil)
	}
	merged := make(blocking.RecordSet)
	for _, path := range paths {
		set, err := ReadFile(path, config)
		if err != nil {
			return nil, err
		}
		merged.Merge(set)
	}
	return merged, nil
}
