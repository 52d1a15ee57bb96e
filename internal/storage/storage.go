// Package storage defines the Storage interface — the contract a backend
// must satisfy to mirror the people registry onto durable storage.
//
// WHY AN INTERFACE?
// ─────────────────
// The registry is the source of truth and lives in memory. A backend is
// optional: when one is configured the registry writes every change through
// to it and reloads from it at startup. By depending only on this interface
// the registry does not know (or care) whether the backend is SQLite or a
// fake used in tests.
//
// People have no primary key, so a row is identified by the person's value
// plus an occurrence number: occurrence 0 is the oldest row with that value,
// 1 the next one, and so on. The stored order mirrors the registry's order,
// so the registry can always name the exact row it changed.
package storage

import "github.com/aanand-mishra/people-registry/internal/types"

// Storage is the persistence contract.
type Storage interface {
	// CreatePerson appends a person to the end of the stored list.
	CreatePerson(person types.Person) error

	// GetPeople returns every stored person in insertion order.
	// Returns an empty slice (not nil) when nothing is stored.
	GetPeople() ([]types.Person, error)

	// UpdatePerson overwrites the occurrence-th row equal to target with
	// updated, keeping its position. Returns ErrNotFound if there is no
	// such row.
	UpdatePerson(target types.Person, occurrence int, updated types.Person) error

	// DeletePerson removes the occurrence-th row equal to person.
	// Returns ErrNotFound if there is no such row.
	DeletePerson(person types.Person, occurrence int) error

	// Close releases the backend's resources.
	Close() error
}
