package models

import "github.com/google/uuid"

// EnsureID fills an empty primary key. Keys are generated in Go so the
// same models migrate on both Postgres and SQLite.
func EnsureID(id *uuid.UUID) {
	if *id == uuid.Nil {
		*id = uuid.New()
	}
}
