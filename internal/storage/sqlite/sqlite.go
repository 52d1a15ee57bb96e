// Package sqlite provides a SQLite-backed implementation of the
// storage.Storage interface using Go's standard database/sql package.
//
// WHY SQLite?
// ───────────
// SQLite stores everything in a single file on disk. There is no network,
// no separate server process, and no installation beyond the driver. For a
// list of people that has to survive a restart that is all we need.
//
// The blank import below registers the sqlite3 driver with database/sql.
package sqlite

import (
	"database/sql"
	"fmt"

	"github.com/aanand-mishra/people-registry/internal/config"
	"github.com/aanand-mishra/people-registry/internal/storage"
	"github.com/aanand-mishra/people-registry/internal/types"

	// Blank import: side-effect only (registers the "sqlite3" driver).
	_ "github.com/mattn/go-sqlite3"
)

// SQLite is the concrete implementation of storage.Storage.
type SQLite struct {
	Db *sql.DB
}

// compile-time check that *SQLite satisfies the interface.
var _ storage.Storage = (*SQLite)(nil)

// New opens the SQLite database at cfg.StoragePath, creates the people
// table if it does not already exist, and returns a ready-to-use *SQLite.
func New(cfg *config.Config) (*SQLite, error) {
	db, err := sql.Open("sqlite3", cfg.StoragePath)
	if err != nil {
		return nil, fmt.Errorf("sqlite.New: open db: %w", err)
	}

	// Schema:
	//   id      — insertion order; rows are always listed by id so the
	//             stored order is the display order
	//   name    — first name(s)
	//   surname — surname(s)
	//   age     — age in years
	//
	// No UNIQUE(name, surname, age): the registry owns uniqueness, and a
	// non-strict update may leave two equal rows.
	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS people (
			id      INTEGER PRIMARY KEY AUTOINCREMENT,
			name    TEXT    NOT NULL,
			surname TEXT    NOT NULL,
			age     INTEGER NOT NULL
		)
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite.New: create table: %w", err)
	}

	return &SQLite{Db: db}, nil
}

// CreatePerson inserts a new row at the end of the list.
func (s *SQLite) CreatePerson(person types.Person) error {
	stmt, err := s.Db.Prepare(
		"INSERT INTO people (name, surname, age) VALUES (?, ?, ?)",
	)
	if err != nil {
		return fmt.Errorf("CreatePerson: prepare: %w", err)
	}
	defer stmt.Close()

	if _, err := stmt.Exec(person.Name, person.Surname, person.Age); err != nil {
		return fmt.Errorf("CreatePerson: exec: %w", err)
	}

	return nil
}

// GetPeople returns all rows ordered by insertion.
func (s *SQLite) GetPeople() ([]types.Person, error) {
	stmt, err := s.Db.Prepare(
		"SELECT name, surname, age FROM people ORDER BY id",
	)
	if err != nil {
		return nil, fmt.Errorf("GetPeople: prepare: %w", err)
	}
	defer stmt.Close()

	rows, err := stmt.Query()
	if err != nil {
		return nil, fmt.Errorf("GetPeople: query: %w", err)
	}
	defer rows.Close()

	people := make([]types.Person, 0)

	for rows.Next() {
		var person types.Person

		if err := rows.Scan(
			&person.Name,
			&person.Surname,
			&person.Age,
		); err != nil {
			return nil, fmt.Errorf("GetPeople: scan row: %w", err)
		}

		people = append(people, person)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("GetPeople: rows iteration: %w", err)
	}

	return people, nil
}

// ─────────────────────────────────────────────────────────────────────────────
// UpdatePerson overwrites the occurrence-th oldest row equal to target.
//
// The sub-select picks exactly one id, so even if the table holds several
// equal rows only the chosen one is touched and it keeps its position.
// ─────────────────────────────────────────────────────────────────────────────
func (s *SQLite) UpdatePerson(target types.Person, occurrence int, updated types.Person) error {
	stmt, err := s.Db.Prepare(`
		UPDATE people SET name = ?, surname = ?, age = ?
		WHERE id = (
			SELECT id FROM people
			WHERE name = ? AND surname = ? AND age = ?
			ORDER BY id LIMIT 1 OFFSET ?
		)
	`)
	if err != nil {
		return fmt.Errorf("UpdatePerson: prepare: %w", err)
	}
	defer stmt.Close()

	result, err := stmt.Exec(
		updated.Name, updated.Surname, updated.Age,
		target.Name, target.Surname, target.Age, occurrence,
	)
	if err != nil {
		return fmt.Errorf("UpdatePerson: exec: %w", err)
	}

	return requireOneRow(result, "UpdatePerson")
}

// DeletePerson removes the occurrence-th oldest row equal to person.
func (s *SQLite) DeletePerson(person types.Person, occurrence int) error {
	stmt, err := s.Db.Prepare(`
		DELETE FROM people
		WHERE id = (
			SELECT id FROM people
			WHERE name = ? AND surname = ? AND age = ?
			ORDER BY id LIMIT 1 OFFSET ?
		)
	`)
	if err != nil {
		return fmt.Errorf("DeletePerson: prepare: %w", err)
	}
	defer stmt.Close()

	result, err := stmt.Exec(person.Name, person.Surname, person.Age, occurrence)
	if err != nil {
		return fmt.Errorf("DeletePerson: exec: %w", err)
	}

	return requireOneRow(result, "DeletePerson")
}

// Close closes the underlying connection pool.
func (s *SQLite) Close() error {
	return s.Db.Close()
}

func requireOneRow(result sql.Result, op string) error {
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: rows affected: %w", op, err)
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", op, storage.ErrNotFound)
	}
	return nil
}
