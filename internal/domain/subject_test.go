package domain

import (
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSubjectDefaults(t *testing.T) {
	t.Parallel()

	s, err := NewSubject(uuid.New(), SubjectSettings{Name: " Spanish ", FrontLabel: strPtr(" ")})
	require.NoError(t, err)
	assert.Equal(t, "Spanish", s.Name)
	assert.Nil(t, s.FrontLabel)
	assert.Equal(t, SideFront, s.DefaultSide)
	assert.Equal(t, OrderNewest, s.CardOrder)
}

func TestSubjectValidation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		settings SubjectSettings
	}{
		{"blank name", SubjectSettings{Name: "  "}},
		{"long name", SubjectSettings{Name: strings.Repeat("n", 101)}},
		{"bad side", SubjectSettings{Name: "ok", DefaultSide: "SIDEWAYS"}},
		{"bad order", SubjectSettings{Name: "ok", CardOrder: "ALPHA"}},
		{"long label", SubjectSettings{Name: "ok", BackLabel: strPtr(strings.Repeat("l", 51))}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			_, err := NewSubject(uuid.New(), tc.settings)
			assert.ErrorIs(t, err, ErrValidation)
		})
	}

	_, err := NewSubject(uuid.Nil, SubjectSettings{Name: "ok"})
	assert.ErrorIs(t, err, ErrSubjectUserIDEmpty)
}

func TestSubjectUpdate(t *testing.T) {
	t.Parallel()

	s, err := NewSubject(uuid.New(), SubjectSettings{Name: "Math"})
	require.NoError(t, err)

	require.Error(t, s.Update(SubjectSettings{Name: "Math", CardOrder: "bogus"}))
	assert.Equal(t, OrderNewest, s.CardOrder)

	require.NoError(t, s.Update(SubjectSettings{Name: "Maths", DefaultSide: SideAny, CardOrder: OrderRandom, DisplayDeckNames: true}))
	assert.Equal(t, "Maths", s.Name)
	assert.Equal(t, SideAny, s.DefaultSide)
	assert.True(t, s.DisplayDeckNames)
}

func TestDeckNames(t *testing.T) {
	t.Parallel()

	assert.Nil(t, ParseDeckNames("  "))
	assert.Equal(t, []string{"Deck 1", "Deck 2"}, ParseDeckNames("Deck 1; Deck 2;;Deck 1 "))

	d, err := NewDeck(uuid.New(), uuid.New(), " Verbs ")
	require.NoError(t, err)
	assert.Equal(t, "Verbs", d.Name)

	assert.ErrorIs(t, d.Rename(strings.Repeat("d", 61)), ErrContentTooLong)
	assert.Equal(t, "Verbs", d.Name)

	_, err = NewDeck(uuid.New(), uuid.Nil, "x")
	assert.ErrorIs(t, err, ErrDeckSubjectIDEmpty)
}

func TestNewUser(t *testing.T) {
	t.Parallel()

	u, err := NewUser("auth0|abc", "alice")
	require.NoError(t, err)
	assert.True(t, u.IsActive)

	_, err = NewUser("", "alice")
	assert.ErrorIs(t, err, ErrEmptyAuthSubject)

	_, err = NewUser("auth0|abc", "al")
	assert.ErrorIs(t, err, ErrInvalidUsername)
}
