package storage

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"

	"airbnb-report/models"
	"airbnb-report/utils"
)

const utf8BOM = "\ufeff"

// CSVReader loads a header-first CSV table into raw records keyed by column name
type CSVReader struct {
	logger *utils.Logger
}

// NewCSVReader creates a new CSVReader
func NewCSVReader(logger *utils.Logger) *CSVReader {
	return &CSVReader{logger: logger}
}

// ReadFile reads the table at path. A missing file is not an error: it yields no records.
func (r *CSVReader) ReadFile(path string) ([]models.RawRecord, error) {
	file, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		r.logger.Warn("CSV not found, treating as empty: %s", path)
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open CSV %s: %w", path, err)
	}
	defer file.Close()

	records, err := r.Read(file)
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV %s: %w", path, err)
	}
	r.logger.Info("Read %d rows from %s", len(records), path)
	return records, nil
}

// Read parses a table from an arbitrary reader. Rows the CSV parser rejects are skipped;
// short rows leave their missing columns empty and extra cells are ignored.
func (r *CSVReader) Read(in io.Reader) ([]models.RawRecord, error) {
	reader := csv.NewReader(in)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	header, err := reader.Read()
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV header: %w", err)
	}
	for i, name := range header {
		if i == 0 {
			name = strings.TrimPrefix(name, utf8BOM)
		}
		header[i] = strings.TrimSpace(name)
	}

	var records []models.RawRecord
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		var parseErr *csv.ParseError
		if errors.As(err, &parseErr) {
			r.logger.Debug("Skipping malformed CSV row at line %d: %v", parseErr.Line, parseErr.Err)
			continue
		}
		if err != nil {
			return nil, err
		}

		rec := make(models.RawRecord, len(header))
		for i, name := range header {
			if name == "" {
				continue
			}
			if i < len(row) {
				rec[name] = row[i]
			} else {
				rec[name] = ""
			}
		}
		records = append(records, rec)
	}
	return records, nil
}
