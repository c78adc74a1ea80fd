// Package testutils provides in-memory store implementations and log capture
// helpers for unit tests that should not depend on PostgreSQL.
//
// # In-memory stores
//
// MemDB holds all entities behind one mutex and hands out store views that
// satisfy the interfaces in internal/store:
//
//	db := testutils.NewMemDB()
//	svc, err := service.NewRatingService(db.Cards(), db.Histories(), logger)
//
// db.Transactor() runs transaction functions with a nil *sql.Tx and restores
// a snapshot of the data when the function fails, so tests can assert that a
// failed bulk operation persisted nothing.
//
// # Log capture
//
// TestSlogHandler records slog output so tests can assert on logged events.
package testutils
