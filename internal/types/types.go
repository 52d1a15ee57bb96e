// Package types holds the shared data structures (models) used across
// the application. Keeping them in one place prevents import cycles —
// the form, registry, storage, and handler packages can all import types
// without depending on each other.
package types

import "fmt"

// Person represents a single entry in the people registry.
//
// A Person has no ID. Two Person values with the same name, surname, and
// age are the same person as far as the registry is concerned (structural
// equality), so Person is a plain comparable value type.
//
// Person values are only built by the form package, which is where the
// name and age rules live.
type Person struct {
	Name    string `json:"name"`
	Surname string `json:"surname"`
	Age     int    `json:"age"`
}

// Equal reports whether p and other describe the same person.
func (p Person) Equal(other Person) bool {
	return p == other
}

// String renders the person the way the list view shows a row.
func (p Person) String() string {
	return fmt.Sprintf("%s %s %d", p.Name, p.Surname, p.Age)
}
