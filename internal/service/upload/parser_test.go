package upload

import (
	"errors"
	"io"
	"strings"
	"testing"
	"testing/iotest"

	"github.com/flashdeck/flashcards-api/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseHeader(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		header  []string
		want    columns
		wantErr error
	}{
		{
			name:   "front and back",
			header: []string{"front", "back"},
			want:   columns{front: 0, back: 1, hintFront: -1, hintBack: -1, decks: -1},
		},
		{
			name:   "case and whitespace are ignored",
			header: []string{" Decks", "BACK ", "notes", "Front", "hint_front", "Hint_Back"},
			want:   columns{front: 3, back: 1, hintFront: 4, hintBack: 5, decks: 0},
		},
		{
			name:   "byte order mark",
			header: []string{"\ufefffront", "back"},
			want:   columns{front: 0, back: 1, hintFront: -1, hintBack: -1, decks: -1},
		},
		{
			name:    "missing back",
			header:  []string{"front", "answer"},
			wantErr: ErrMissingColumn,
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got, err := parseHeader(tc.header)
			if tc.wantErr != nil {
				assert.ErrorIs(t, err, tc.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestParse(t *testing.T) {
	t.Parallel()

	in := "Back, FRONT ,decks,hint_front\n" +
		"uno, one ,Numbers; Basics;,\n" +
		"\n" +
		"\"dos, two\",two,,count\n" +
		",three\n" +
		"only back\n"

	rows, err := Parse(strings.NewReader(in))
	require.NoError(t, err)
	require.Len(t, rows, 4)

	assert.Equal(t, Row{Line: 2, Front: "one", Back: "uno", Decks: []string{"Numbers", "Basics"}}, rows[0])

	hint := "count"
	assert.Equal(t, Row{Line: 4, Front: "two", Back: "dos, two", HintFront: &hint}, rows[1])

	assert.Equal(t, "three", rows[2].Front)
	assert.Empty(t, rows[2].Back)
	assert.Equal(t, 6, rows[3].Line)
	assert.Empty(t, rows[3].Front, "short rows leave missing columns blank")
}

func TestParseErrors(t *testing.T) {
	t.Parallel()
	boom := errors.New("connection reset")

	tests := []struct {
		name       string
		in         io.Reader
		wantErr    error
		validation bool
	}{
		{"empty file", strings.NewReader(""), ErrEmptyFile, true},
		{"header without back", strings.NewReader("front\nx\n"), ErrMissingColumn, true},
		{"malformed quoting", strings.NewReader("front,back\n\"open,close\n"), ErrMalformedCSV, true},
		{"read failure after rows", io.MultiReader(strings.NewReader("front,back\na,b\n"), iotest.ErrReader(boom)), boom, false},
		{"read failure before header", iotest.ErrReader(boom), boom, false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			rows, err := Parse(tc.in)
			assert.Nil(t, rows)
			assert.ErrorIs(t, err, tc.wantErr)
			assert.Equal(t, tc.validation, errors.Is(err, domain.ErrValidation))
		})
	}
}
