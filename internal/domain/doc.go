// Package domain holds the flashcard entities (users, subjects, decks, cards
// and rating history) and the validation rules they enforce on construction.
package domain
