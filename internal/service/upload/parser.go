// Package upload imports cards into a subject from CSV files.
package upload

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/flashdeck/flashcards-api/internal/domain"
)

// Recognised header columns. Matching is case-insensitive and ignores
// surrounding whitespace; other columns are ignored.
const (
	ColumnFront     = "front"
	ColumnBack      = "back"
	ColumnHintFront = "hint_front"
	ColumnHintBack  = "hint_back"
	ColumnDecks     = "decks"
)

var (
	// ErrEmptyFile indicates the upload contained no header row.
	ErrEmptyFile = domain.NewValidationError("file", "is empty", domain.ErrEmptyContent)

	// ErrMissingColumn indicates the header lacks the front or back column.
	ErrMissingColumn = domain.NewValidationError("header", "must contain front and back columns", domain.ErrInvalidFormat)

	// ErrMalformedCSV indicates the file is not valid CSV.
	ErrMalformedCSV = domain.NewValidationError("file", "is not valid CSV", domain.ErrInvalidFormat)
)

// Row is one data row of an upload. Line is the 1-based line in the file.
type Row struct {
	Line      int      `json:"line"`
	Front     string   `json:"front"`
	Back      string   `json:"back"`
	HintFront *string  `json:"hintFront,omitempty"`
	HintBack  *string  `json:"hintBack,omitempty"`
	Decks     []string `json:"decks,omitempty"`
}

// Content returns the card content described by the row.
func (r Row) Content() domain.CardContent {
	return domain.CardContent{
		Front:     r.Front,
		Back:      r.Back,
		HintFront: r.HintFront,
		HintBack:  r.HintBack,
	}
}

type columns struct {
	front, back, hintFront, hintBack, decks int
}

func parseHeader(header []string) (columns, error) {
	cols := columns{front: -1, back: -1, hintFront: -1, hintBack: -1, decks: -1}
	for i, name := range header {
		if i == 0 {
			name = strings.TrimPrefix(name, "\ufeff")
		}
		var slot *int
		switch strings.ToLower(strings.TrimSpace(name)) {
		case ColumnFront:
			slot = &cols.front
		case ColumnBack:
			slot = &cols.back
		case ColumnHintFront:
			slot = &cols.hintFront
		case ColumnHintBack:
			slot = &cols.hintBack
		case ColumnDecks:
			slot = &cols.decks
		default:
			continue
		}
		// First occurrence wins.
		if *slot < 0 {
			*slot = i
		}
	}
	if cols.front < 0 || cols.back < 0 {
		return cols, ErrMissingColumn
	}
	return cols, nil
}

func field(record []string, i int) string {
	if i < 0 || i >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[i])
}

func optional(record []string, i int) *string {
	v := field(record, i)
	if v == "" {
		return nil
	}
	return &v
}

// Parse reads the whole stream before returning so a read failure never
// yields a partial result. Malformed CSV is reported as ErrMalformedCSV; any
// other read error is returned wrapped.
func Parse(r io.Reader) ([]Row, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true
	reader.ReuseRecord = false

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, ErrEmptyFile
	}
	if err != nil {
		return nil, readError(err)
	}
	cols, err := parseHeader(header)
	if err != nil {
		return nil, err
	}

	var rows []Row
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, readError(err)
		}
		line, _ := reader.FieldPos(0)
		rows = append(rows, Row{
			Line:      line,
			Front:     field(record, cols.front),
			Back:      field(record, cols.back),
			HintFront: optional(record, cols.hintFront),
			HintBack:  optional(record, cols.hintBack),
			Decks:     domain.ParseDeckNames(field(record, cols.decks)),
		})
	}
	return rows, nil
}

func readError(err error) error {
	var parseErr *csv.ParseError
	if errors.As(err, &parseErr) {
		return fmt.Errorf("%w: line %d: %v", ErrMalformedCSV, parseErr.Line, parseErr.Err)
	}
	return fmt.Errorf("failed to read upload: %w", err)
}
