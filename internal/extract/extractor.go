// Package extract reads the published classification table (CSV or XLSX) into rows.
package extract

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/canoeh/nocs/internal/models"
)

// Column headers of the published NOC 2021 classification structure.
const (
	ColumnLevel      = "Level"
	ColumnCode       = "Code - NOC 2021 V1.0"
	ColumnTitle      = "Class title"
	ColumnDefinition = "Class definition"
)

// Extractor reads classification rows from table files.
type Extractor struct{}

// NewExtractor returns a new Extractor.
func NewExtractor() *Extractor {
	return &Extractor{}
}

// Extract reads the file at path and returns its classification rows in source order.
// The format is chosen from the file extension: .csv (default) or .xlsx.
func (e *Extractor) Extract(path string) ([]models.ClassificationRow, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}
	ext := strings.ToLower(filepath.Ext(path))
	return e.ExtractBytes(content, ext)
}

// ExtractBytes parses content based on the given extension (with leading dot).
// A table that cannot be parsed or lacks a required column is an error; a row whose level
// cannot be parsed is returned with Level set to models.InvalidLevel.
func (e *Extractor) ExtractBytes(content []byte, ext string) ([]models.ClassificationRow, error) {
	var (
		table [][]string
		err   error
	)
	switch ext {
	case ".xlsx":
		table, err = readExcelTable(content)
	case ".csv", ".txt", "":
		table, err = readCSVTable(content)
	default:
		return nil, fmt.Errorf("unsupported classification format %q (supported: .csv, .xlsx)", ext)
	}
	if err != nil {
		return nil, err
	}
	return rowsFromTable(table)
}

// rowsFromTable maps a header row plus data rows onto ClassificationRow values.
func rowsFromTable(table [][]string) ([]models.ClassificationRow, error) {
	if len(table) == 0 {
		return nil, fmt.Errorf("classification table is empty")
	}
	cols, err := headerIndex(table[0])
	if err != nil {
		return nil, err
	}

	rows := make([]models.ClassificationRow, 0, len(table)-1)
	for i, record := range table[1:] {
		if blankRecord(record) {
			continue
		}
		rows = append(rows, models.ClassificationRow{
			Level:      parseLevel(cell(record, cols.level)),
			Code:       cell(record, cols.code),
			Title:      cell(record, cols.title),
			Definition: cell(record, cols.definition),
			Line:       i + 2,
		})
	}
	return rows, nil
}

type columns struct {
	level, code, title, definition int
}

// headerIndex locates the required columns. Headers are trimmed and compared
// case-insensitively; the code column may carry any classification version suffix.
func headerIndex(header []string) (columns, error) {
	cols := columns{level: -1, code: -1, title: -1, definition: -1}
	for i, h := range header {
		name := strings.ToLower(normalizeHeader(h))
		switch {
		case name == strings.ToLower(ColumnLevel):
			cols.level = i
		case name == strings.ToLower(ColumnCode), strings.HasPrefix(name, "code - noc"), name == "code":
			if cols.code < 0 {
				cols.code = i
			}
		case name == strings.ToLower(ColumnTitle):
			cols.title = i
		case name == strings.ToLower(ColumnDefinition):
			cols.definition = i
		}
	}
	var missing []string
	if cols.level < 0 {
		missing = append(missing, ColumnLevel)
	}
	if cols.code < 0 {
		missing = append(missing, ColumnCode)
	}
	if cols.title < 0 {
		missing = append(missing, ColumnTitle)
	}
	if len(missing) > 0 {
		return cols, fmt.Errorf("classification table is missing columns: %s", strings.Join(missing, ", "))
	}
	return cols, nil
}

func normalizeHeader(h string) string {
	return strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
}

func cell(record []string, i int) string {
	if i < 0 || i >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[i])
}

func blankRecord(record []string) bool {
	for _, v := range record {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

func parseLevel(s string) int {
	level, err := strconv.Atoi(s)
	if err != nil || level < 0 {
		return models.InvalidLevel
	}
	return level
}
