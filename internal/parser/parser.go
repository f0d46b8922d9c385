package parser

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

// FieldCount is the number of columns in a vocabulary row:
// german word, english word, german sentence, english sentence.
const FieldCount = 4

// MaxFileSize is the maximum allowed vocabulary file size (10MB)
const MaxFileSize = 10 * 1024 * 1024

// MissingValue is the marker the spreadsheet export leaves in empty cells.
const MissingValue = "nan"

// ErrEmptyFile is returned when the input holds no records at all.
var ErrEmptyFile = errors.New("vocabulary file has no rows")

// Row is one parsed record with every field trimmed.
type Row [FieldCount]string

// ValidateFileSize checks if a file is within the size limit
func ValidateFileSize(filePath string) error {
	info, err := os.Stat(filePath)
	if err != nil {
		return fmt.Errorf("failed to stat file: %w", err)
	}

	if info.Size() > MaxFileSize {
		return fmt.Errorf("file too large: %d bytes (max: %d bytes)", info.Size(), MaxFileSize)
	}

	return nil
}

// IsMissing reports whether a trimmed field carries no value.
func IsMissing(field string) bool {
	return field == "" || strings.EqualFold(field, MissingValue)
}

// ParseFile reads every row of a headerless four-column CSV file.
func ParseFile(filePath string) ([]Row, error) {
	if err := ValidateFileSize(filePath); err != nil {
		return nil, err
	}

	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open vocabulary file: %w", err)
	}
	defer file.Close()

	return ParseRows(file)
}

// ParseRows reads CSV records from r. Blank lines are skipped and do not
// count as rows. Short records are padded with empty fields; records with
// more than FieldCount fields are rejected. Input without any record
// yields ErrEmptyFile.
func ParseRows(r io.Reader) ([]Row, error) {
	reader := csv.NewReader(io.LimitReader(r, MaxFileSize+1))
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	var rows []Row
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to parse vocabulary file: %w", err)
		}

		if len(record) > FieldCount {
			line, _ := reader.FieldPos(0)
			return nil, fmt.Errorf("line %d: expected %d fields, got %d", line, FieldCount, len(record))
		}

		var row Row
		for i, field := range record {
			row[i] = strings.TrimSpace(field)
		}
		rows = append(rows, row)
	}

	if len(rows) == 0 {
		return nil, ErrEmptyFile
	}

	return rows, nil
}
