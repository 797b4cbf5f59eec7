package extract

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strings"
	"unicode/utf8"
)

// readCSVTable parses CSV content. Invalid UTF-8 sequences are replaced with the
// replacement character and a leading byte order mark is dropped.
func readCSVTable(content []byte) ([][]string, error) {
	if !utf8.Valid(content) {
		content = []byte(strings.ToValidUTF8(string(content), "\ufffd"))
	}
	content = bytes.TrimPrefix(content, []byte("\ufeff"))

	r := csv.NewReader(bytes.NewReader(content))
	r.FieldsPerRecord = -1
	r.LazyQuotes = true
	table, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse CSV: %w", err)
	}
	return table, nil
}
