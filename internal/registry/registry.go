// Package registry holds the authoritative, ordered list of people.
//
// The registry is a single value created once in main and handed to
// whoever needs it (the HTTP handlers). Nothing else constructs or owns
// one. It enforces the collection rules:
//
//   - insertion order is display order;
//   - no two people are structurally equal after an Add;
//   - an Update overwrites a record in place and keeps its position.
//
// Observers (the list view) learn about changes through a Listener instead
// of polling.
package registry

import (
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/aanand-mishra/people-registry/internal/storage"
	"github.com/aanand-mishra/people-registry/internal/types"
)

var (
	// ErrDuplicate is returned when the person is already in the registry.
	ErrDuplicate = errors.New("person already exists")
	// ErrNotFound is returned when no structurally equal person exists,
	// or when a list position is out of range.
	ErrNotFound = errors.New("person not found")
)

// Op identifies the kind of change carried by an Event.
type Op string

const (
	OpAdded   Op = "added"
	OpUpdated Op = "updated"
	OpRemoved Op = "removed"
)

// Event describes a committed change. Previous is only set for OpUpdated.
type Event struct {
	Op       Op
	Person   types.Person
	Previous types.Person
	Len      int
}

// Listener is called after every successful mutation, with the registry
// lock released.
type Listener func(Event)

// Option configures a Registry.
type Option func(*Registry)

// WithStrictUpdate makes Update reject a change that would leave the
// record equal to another record in the registry. Off by default: a plain
// update never re-checks uniqueness.
func WithStrictUpdate(strict bool) Option {
	return func(r *Registry) {
		r.strictUpdate = strict
	}
}

// WithListener registers fn to be told about every committed change.
func WithListener(fn Listener) Option {
	return func(r *Registry) {
		if fn != nil {
			r.listeners = append(r.listeners, fn)
		}
	}
}

// Registry is safe for concurrent use.
type Registry struct {
	mu           sync.RWMutex
	people       []types.Person
	store        storage.Storage
	strictUpdate bool
	listeners    []Listener
}

// New returns an empty, memory-only registry.
func New(opts ...Option) *Registry {
	r := &Registry{people: make([]types.Person, 0)}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Open returns a registry backed by store. The current contents of the
// store become the initial list, and every later change is written to the
// store before it is committed in memory.
func Open(store storage.Storage, opts ...Option) (*Registry, error) {
	r := New(opts...)
	if store == nil {
		return r, nil
	}

	people, err := store.GetPeople()
	if err != nil {
		return nil, fmt.Errorf("registry.Open: load: %w", err)
	}

	r.people = append(r.people, people...)
	r.store = store
	return r, nil
}

// Add appends person to the end of the list. It fails with ErrDuplicate if
// a structurally equal person is already present.
func (r *Registry) Add(person types.Person) error {
	r.mu.Lock()

	if r.indexOf(person) >= 0 {
		r.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrDuplicate, person)
	}

	if r.store != nil {
		if err := r.store.CreatePerson(person); err != nil {
			r.mu.Unlock()
			return fmt.Errorf("registry.Add: %w", err)
		}
	}

	r.people = append(r.people, person)
	ev := Event{Op: OpAdded, Person: person, Len: len(r.people)}
	r.mu.Unlock()

	r.emit(ev)
	return nil
}

// Remove deletes the first person structurally equal to person. It fails
// with ErrNotFound if there is none.
func (r *Registry) Remove(person types.Person) error {
	r.mu.Lock()

	i := r.indexOf(person)
	if i < 0 {
		r.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrNotFound, person)
	}

	return r.removeLocked(i)
}

// RemoveAt deletes the record at position index. expected is the value the
// caller selected; if the record there no longer equals it the selection is
// stale and RemoveAt fails with ErrNotFound.
func (r *Registry) RemoveAt(index int, expected types.Person) error {
	r.mu.Lock()

	if err := r.checkSelectionLocked(index, expected); err != nil {
		r.mu.Unlock()
		return err
	}

	return r.removeLocked(index)
}

// Update overwrites, in place, the first record structurally equal to
// target with fields. The record keeps its position in the list.
//
// Unless the registry was built WithStrictUpdate(true), the result is not
// checked against the other records, so an update can leave two equal
// people in the registry.
func (r *Registry) Update(target, fields types.Person) error {
	r.mu.Lock()

	i := r.indexOf(target)
	if i < 0 {
		r.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrNotFound, target)
	}

	return r.updateLocked(i, fields)
}

// UpdateAt overwrites the record at position index with fields. Unlike
// Update it touches that exact slot even when an equal record sits earlier
// in the list. expected is the value the caller selected; if the record
// there no longer equals it UpdateAt fails with ErrNotFound.
func (r *Registry) UpdateAt(index int, expected, fields types.Person) error {
	r.mu.Lock()

	if err := r.checkSelectionLocked(index, expected); err != nil {
		r.mu.Unlock()
		return err
	}

	return r.updateLocked(index, fields)
}

// checkSelectionLocked must be called with r.mu held.
func (r *Registry) checkSelectionLocked(index int, expected types.Person) error {
	if index < 0 || index >= len(r.people) || !r.people[index].Equal(expected) {
		return fmt.Errorf("%w: %s is no longer at position %d", ErrNotFound, expected, index)
	}
	return nil
}

// removeLocked is entered with r.mu held and releases it.
func (r *Registry) removeLocked(i int) error {
	person := r.people[i]

	if r.store != nil {
		if err := r.store.DeletePerson(person, r.occurrenceLocked(i)); err != nil {
			r.mu.Unlock()
			return fmt.Errorf("registry.Remove: %w", err)
		}
	}

	r.people = slices.Delete(r.people, i, i+1)
	ev := Event{Op: OpRemoved, Person: person, Len: len(r.people)}
	r.mu.Unlock()

	r.emit(ev)
	return nil
}

// updateLocked is entered with r.mu held and releases it.
func (r *Registry) updateLocked(i int, fields types.Person) error {
	target := r.people[i]

	if r.strictUpdate {
		for j, p := range r.people {
			if j != i && p.Equal(fields) {
				r.mu.Unlock()
				return fmt.Errorf("%w: %s", ErrDuplicate, fields)
			}
		}
	}

	if r.store != nil {
		if err := r.store.UpdatePerson(target, r.occurrenceLocked(i), fields); err != nil {
			r.mu.Unlock()
			return fmt.Errorf("registry.Update: %w", err)
		}
	}

	r.people[i] = fields
	ev := Event{Op: OpUpdated, Person: fields, Previous: target, Len: len(r.people)}
	r.mu.Unlock()

	r.emit(ev)
	return nil
}

// occurrenceLocked counts the records before position i that equal the
// one at i. The store keeps the same order, so (value, occurrence) names
// the same row there.
func (r *Registry) occurrenceLocked(i int) int {
	n := 0
	for _, p := range r.people[:i] {
		if p.Equal(r.people[i]) {
			n++
		}
	}
	return n
}

// List returns a snapshot of the registry in insertion order. The caller
// may modify the returned slice freely.
func (r *Registry) List() []types.Person {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return slices.Clone(r.people)
}

// At returns the person at position index of the current list.
func (r *Registry) At(index int) (types.Person, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if index < 0 || index >= len(r.people) {
		return types.Person{}, fmt.Errorf("%w: no person at position %d", ErrNotFound, index)
	}
	return r.people[index], nil
}

// Contains reports whether a structurally equal person is present.
func (r *Registry) Contains(person types.Person) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.indexOf(person) >= 0
}

// Len returns the number of people in the registry.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.people)
}

// indexOf must be called with r.mu held.
func (r *Registry) indexOf(person types.Person) int {
	return slices.IndexFunc(r.people, person.Equal)
}

func (r *Registry) emit(ev Event) {
	for _, fn := range r.listeners {
		fn(ev)
	}
}
