// Package export renders a subject or a deck as a downloadable file with one
// record per card.
package export

import (
	"context"
	"strings"

	"github.com/flashdeck/flashcards-api/internal/domain"
	"github.com/flashdeck/flashcards-api/internal/service"
	"github.com/google/uuid"
)

// Header is the first row of every export.
var Header = []string{"front", "back", "hint_front", "hint_back", "decks"}

// DeckSeparator joins deck names inside the decks column.
const DeckSeparator = ";"

// Source selects what is exported.
type Source string

// Export sources.
const (
	SourceSubject Source = "subject"
	SourceDeck    Source = "deck"
)

// Format is the output file format.
type Format string

// Supported formats.
const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

// ParseFormat maps a query value to a Format. An empty value selects CSV.
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(s))) {
	case "", FormatCSV:
		return FormatCSV, nil
	case FormatXLSX:
		return FormatXLSX, nil
	default:
		return "", service.ErrUnsupportedFormat
	}
}

// ContentType returns the MIME type served for the format.
func (f Format) ContentType() string {
	if f == FormatXLSX {
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	}
	return "text/csv; charset=utf-8"
}

// Record is one exported card.
type Record struct {
	Front     string
	Back      string
	HintFront string
	HintBack  string
	Decks     []string
}

// Fields returns the record in Header order.
func (r Record) Fields() []string {
	return []string{r.Front, r.Back, r.HintFront, r.HintBack, strings.Join(r.Decks, DeckSeparator)}
}

// File is a rendered export.
type File struct {
	Name        string
	ContentType string
	Data        []byte
	Records     int
}

// ExportService renders a user's subjects and decks.
type ExportService interface {
	// ExportSubject renders every card of the subject. Returns
	// store.ErrSubjectNotFound if the subject is missing or owned by another user.
	ExportSubject(ctx context.Context, userID, subjectID uuid.UUID, format Format) (*File, error)

	// ExportDeck renders the deck's cards, listing only that deck in the decks
	// column. Returns store.ErrDeckNotFound if the deck is missing or owned by
	// another user.
	ExportDeck(ctx context.Context, userID, deckID uuid.UUID, format Format) (*File, error)
}

// GroupRows merges card/deck rows into one record per card. Records keep the
// order in which cards first appear and deck names are distinct in encounter
// order.
func GroupRows(rows []domain.CardDeckRow) []Record {
	index := make(map[uuid.UUID]int, len(rows))
	seen := make(map[uuid.UUID]map[string]struct{}, len(rows))
	records := make([]Record, 0, len(rows))

	for _, row := range rows {
		i, ok := index[row.CardID]
		if !ok {
			i = len(records)
			index[row.CardID] = i
			seen[row.CardID] = make(map[string]struct{})
			records = append(records, Record{
				Front:     row.Front,
				Back:      row.Back,
				HintFront: domain.StringValue(row.HintFront),
				HintBack:  domain.StringValue(row.HintBack),
				Decks:     []string{},
			})
		}
		if row.DeckName == nil {
			continue
		}
		if _, dup := seen[row.CardID][*row.DeckName]; dup {
			continue
		}
		seen[row.CardID][*row.DeckName] = struct{}{}
		records[i].Decks = append(records[i].Decks, *row.DeckName)
	}
	return records
}

// FileName builds "<source>_<name>.<format>" with the name reduced to
// characters safe in a Content-Disposition header.
func FileName(source Source, name string, format Format) string {
	var b strings.Builder
	for _, r := range strings.TrimSpace(name) {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.', r == '-', r == '_':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	safe := b.String()
	if strings.Trim(safe, "_.") == "" {
		safe = "export"
	}
	return string(source) + "_" + safe + "." + string(format)
}
