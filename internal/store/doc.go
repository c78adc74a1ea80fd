// Package store defines the persistence interfaces for users, subjects,
// decks, cards and rating history, together with the sentinel errors and
// transaction helpers shared by every implementation.
package store
