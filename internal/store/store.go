// Package store persists trajectories, gate reports, and compiled plans to
// Postgres via pgx, wrapping a database connection for typed accessors.
// Queries are hand-written rather than generated.
package store

import (
	"errors"

	"basegraph.app/helixask/core/db"
)

// ErrNotFound is returned when a requested row does not exist.
var ErrNotFound = errors.New("not found")

// Store provides typed accessors over the trace/gate-report/plan tables.
type Store struct {
	db *db.DB
}

func New(database *db.DB) *Store {
	return &Store{db: database}
}
