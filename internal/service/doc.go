// Package service contains the application use cases: user resolution and
// registration, subjects, decks, cards, ratings and per-user statistics.
//
// Services coordinate the stores defined in internal/store and never depend
// on a concrete database. Operations that touch more than one row run inside
// a store.Transactor so they either persist completely or not at all.
//
// Every operation is scoped to the calling user. A subject, deck or card
// owned by someone else is reported as not found, so the API does not reveal
// whether another user's resource exists.
//
// Errors are wrapped in ServiceError, which keeps the operation name and the
// underlying cause for errors.Is checks at the HTTP edge.
//
// CSV/XLSX export and CSV upload live in the export and upload subpackages.
package service
