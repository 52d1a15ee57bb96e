package registry_test

import (
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aanand-mishra/people-registry/internal/registry"
	"github.com/aanand-mishra/people-registry/internal/storage"
	"github.com/aanand-mishra/people-registry/internal/types"
)

var (
	ana  = types.Person{Name: "Ana", Surname: "Lopez", Age: 30}
	jose = types.Person{Name: "José María", Surname: "Ñúñez", Age: 34}
	luis = types.Person{Name: "Luis", Surname: "Martín", Age: 52}
)

func requireList(t *testing.T, r *registry.Registry, want ...types.Person) {
	t.Helper()
	if want == nil {
		want = []types.Person{}
	}
	if diff := cmp.Diff(want, r.List()); diff != "" {
		t.Fatalf("List() mismatch (-want +got):\n%s", diff)
	}
}

func TestRegistry_Add(t *testing.T) {
	t.Parallel()

	r := registry.New()
	requireList(t, r)

	require.NoError(t, r.Add(ana))
	require.NoError(t, r.Add(jose))
	require.NoError(t, r.Add(luis))

	// Insertion order is display order.
	requireList(t, r, ana, jose, luis)
	assert.Equal(t, 3, r.Len())
}

func TestRegistry_Add_Duplicate(t *testing.T) {
	t.Parallel()

	r := registry.New()
	require.NoError(t, r.Add(ana))

	err := r.Add(types.Person{Name: "Ana", Surname: "Lopez", Age: 30})
	require.ErrorIs(t, err, registry.ErrDuplicate)

	assert.Equal(t, 1, r.Len(), "size must not change on a rejected add")
	requireList(t, r, ana)
}

func TestRegistry_Add_SameNamesDifferentAge(t *testing.T) {
	t.Parallel()

	r := registry.New()
	require.NoError(t, r.Add(ana))

	older := ana
	older.Age = 31
	require.NoError(t, r.Add(older))
	requireList(t, r, ana, older)
}

func TestRegistry_Remove(t *testing.T) {
	t.Parallel()

	r := registry.New()
	require.NoError(t, r.Add(ana))
	require.NoError(t, r.Add(jose))
	require.NoError(t, r.Add(luis))

	require.NoError(t, r.Remove(jose))
	requireList(t, r, ana, luis)

	// A second removal of the same value fails.
	err := r.Remove(jose)
	require.ErrorIs(t, err, registry.ErrNotFound)
	assert.Equal(t, 2, r.Len())
}

func TestRegistry_Remove_Missing(t *testing.T) {
	t.Parallel()

	r := registry.New()
	require.ErrorIs(t, r.Remove(ana), registry.ErrNotFound)
}

func TestRegistry_Update_InPlace(t *testing.T) {
	t.Parallel()

	r := registry.New()
	require.NoError(t, r.Add(ana))
	require.NoError(t, r.Add(jose))

	renamed := types.Person{Name: "Ana Belén", Surname: "Lopez", Age: 30}
	require.NoError(t, r.Update(ana, renamed))

	// Position is kept.
	requireList(t, r, renamed, jose)
	assert.False(t, r.Contains(ana))
}

func TestRegistry_Update_Missing(t *testing.T) {
	t.Parallel()

	r := registry.New()
	require.NoError(t, r.Add(ana))

	err := r.Update(jose, luis)
	require.ErrorIs(t, err, registry.ErrNotFound)
	requireList(t, r, ana)
}

// By default an update is not re-checked for uniqueness, so it can leave two
// equal people in the registry. This pins that behaviour down.
func TestRegistry_Update_DefaultAllowsDuplicate(t *testing.T) {
	t.Parallel()

	r := registry.New()
	require.NoError(t, r.Add(ana))
	require.NoError(t, r.Add(jose))

	require.NoError(t, r.Update(jose, ana))
	requireList(t, r, ana, ana)

	// Removal takes the first match only.
	require.NoError(t, r.Remove(ana))
	requireList(t, r, ana)
}

func TestRegistry_Update_StrictRejectsDuplicate(t *testing.T) {
	t.Parallel()

	r := registry.New(registry.WithStrictUpdate(true))
	require.NoError(t, r.Add(ana))
	require.NoError(t, r.Add(jose))

	err := r.Update(jose, ana)
	require.ErrorIs(t, err, registry.ErrDuplicate)
	requireList(t, r, ana, jose)

	// Re-saving a record unchanged is not a collision with itself.
	require.NoError(t, r.Update(jose, jose))
	requireList(t, r, ana, jose)
}

func TestRegistry_At(t *testing.T) {
	t.Parallel()

	r := registry.New()
	require.NoError(t, r.Add(ana))
	require.NoError(t, r.Add(jose))

	got, err := r.At(1)
	require.NoError(t, err)
	assert.Equal(t, jose, got)

	for _, i := range []int{-1, 2, 100} {
		_, err := r.At(i)
		assert.ErrorIs(t, err, registry.ErrNotFound, "index %d", i)
	}
}

func TestRegistry_List_IsSnapshot(t *testing.T) {
	t.Parallel()

	r := registry.New()
	require.NoError(t, r.Add(ana))

	list := r.List()
	list[0].Age = 99

	requireList(t, r, ana)
}

func TestRegistry_Listener(t *testing.T) {
	t.Parallel()

	var events []registry.Event
	r := registry.New(registry.WithListener(func(ev registry.Event) {
		events = append(events, ev)
	}))

	require.NoError(t, r.Add(ana))
	require.ErrorIs(t, r.Add(ana), registry.ErrDuplicate)
	older := types.Person{Name: "Ana", Surname: "Lopez", Age: 31}
	require.NoError(t, r.Update(ana, older))
	require.NoError(t, r.Remove(older))

	want := []registry.Event{
		{Op: registry.OpAdded, Person: ana, Len: 1},
		{Op: registry.OpUpdated, Person: older, Previous: ana, Len: 1},
		{Op: registry.OpRemoved, Person: older, Len: 0},
	}
	if diff := cmp.Diff(want, events); diff != "" {
		t.Fatalf("events mismatch (-want +got):\n%s", diff)
	}
}

// Walks the full create → duplicate → edit → delete scenario.
func TestRegistry_Scenario(t *testing.T) {
	t.Parallel()

	r := registry.New()
	requireList(t, r)

	require.NoError(t, r.Add(types.Person{Name: "Ana", Surname: "Lopez", Age: 30}))
	requireList(t, r, types.Person{Name: "Ana", Surname: "Lopez", Age: 30})

	err := r.Add(types.Person{Name: "Ana", Surname: "Lopez", Age: 30})
	require.ErrorIs(t, err, registry.ErrDuplicate)
	requireList(t, r, types.Person{Name: "Ana", Surname: "Lopez", Age: 30})

	selected, err := r.At(0)
	require.NoError(t, err)
	edited := selected
	edited.Age = 31
	require.NoError(t, r.Update(selected, edited))
	requireList(t, r, types.Person{Name: "Ana", Surname: "Lopez", Age: 31})

	require.NoError(t, r.Remove(edited))
	requireList(t, r)
}

func TestRegistry_ConcurrentAdds(t *testing.T) {
	t.Parallel()

	r := registry.New()

	const workers = 8
	const perWorker = 50

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		w := w
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < perWorker; i++ {
				// Every worker tries the same shared person plus its own.
				_ = r.Add(types.Person{Name: "Shared", Surname: "Person", Age: i})
				_ = r.Add(types.Person{Name: fmt.Sprintf("W%c", 'a'+w), Surname: "Own", Age: i})
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, perWorker+workers*perWorker, r.Len())
}

func TestRegistry_UpdateAt_TouchesSelectedSlot(t *testing.T) {
	t.Parallel()

	r := registry.New()
	require.NoError(t, r.Add(ana))
	require.NoError(t, r.Add(jose))
	require.NoError(t, r.Update(jose, ana))
	requireList(t, r, ana, ana)

	// Position 1 is edited even though position 0 holds an equal value.
	require.NoError(t, r.UpdateAt(1, ana, luis))
	requireList(t, r, ana, luis)
}

func TestRegistry_UpdateAt_StaleSelection(t *testing.T) {
	t.Parallel()

	r := registry.New()
	require.NoError(t, r.Add(ana))
	require.NoError(t, r.Add(jose))

	for _, tt := range []struct {
		name     string
		index    int
		expected types.Person
	}{
		{"value moved", 0, jose},
		{"out of range", 2, ana},
		{"negative", -1, ana},
	} {
		err := r.UpdateAt(tt.index, tt.expected, luis)
		assert.ErrorIs(t, err, registry.ErrNotFound, tt.name)
	}
	requireList(t, r, ana, jose)
}

func TestRegistry_UpdateAt_Strict(t *testing.T) {
	t.Parallel()

	r := registry.New(registry.WithStrictUpdate(true))
	require.NoError(t, r.Add(ana))
	require.NoError(t, r.Add(jose))

	require.ErrorIs(t, r.UpdateAt(1, jose, ana), registry.ErrDuplicate)
	requireList(t, r, ana, jose)
}

func TestRegistry_RemoveAt(t *testing.T) {
	t.Parallel()

	r := registry.New()
	require.NoError(t, r.Add(ana))
	require.NoError(t, r.Add(jose))

	require.ErrorIs(t, r.RemoveAt(0, jose), registry.ErrNotFound)
	require.NoError(t, r.RemoveAt(1, jose))
	requireList(t, r, ana)
}

// --- write-through store ---

type fakeStore struct {
	people []types.Person
	fail   error
	closed bool
}

func (s *fakeStore) CreatePerson(p types.Person) error {
	if s.fail != nil {
		return s.fail
	}
	s.people = append(s.people, p)
	return nil
}

func (s *fakeStore) GetPeople() ([]types.Person, error) {
	if s.fail != nil {
		return nil, s.fail
	}
	return append([]types.Person{}, s.people...), nil
}

// nth returns the index of the occurrence-th row equal to person, or -1.
func (s *fakeStore) nth(person types.Person, occurrence int) int {
	for i, p := range s.people {
		if p == person {
			if occurrence == 0 {
				return i
			}
			occurrence--
		}
	}
	return -1
}

func (s *fakeStore) UpdatePerson(target types.Person, occurrence int, updated types.Person) error {
	if s.fail != nil {
		return s.fail
	}
	i := s.nth(target, occurrence)
	if i < 0 {
		return storage.ErrNotFound
	}
	s.people[i] = updated
	return nil
}

func (s *fakeStore) DeletePerson(person types.Person, occurrence int) error {
	if s.fail != nil {
		return s.fail
	}
	i := s.nth(person, occurrence)
	if i < 0 {
		return storage.ErrNotFound
	}
	s.people = append(s.people[:i], s.people[i+1:]...)
	return nil
}

func (s *fakeStore) Close() error {
	s.closed = true
	return nil
}

func TestOpen_LoadsAndMirrors(t *testing.T) {
	t.Parallel()

	store := &fakeStore{people: []types.Person{ana, jose}}

	r, err := registry.Open(store)
	require.NoError(t, err)
	requireList(t, r, ana, jose)

	require.NoError(t, r.Add(luis))
	older := types.Person{Name: "Ana", Surname: "Lopez", Age: 31}
	require.NoError(t, r.Update(ana, older))
	require.NoError(t, r.Remove(jose))

	want := []types.Person{older, luis}
	requireList(t, r, want...)
	assert.Equal(t, want, store.people)
}

func TestOpen_MirrorsSelectedDuplicate(t *testing.T) {
	t.Parallel()

	store := &fakeStore{people: []types.Person{ana, ana, jose}}

	r, err := registry.Open(store)
	require.NoError(t, err)

	require.NoError(t, r.UpdateAt(1, ana, luis))
	require.NoError(t, r.RemoveAt(2, jose))

	want := []types.Person{ana, luis}
	requireList(t, r, want...)
	assert.Equal(t, want, store.people)
}

func TestOpen_NilStore(t *testing.T) {
	t.Parallel()

	r, err := registry.Open(nil)
	require.NoError(t, err)
	require.NoError(t, r.Add(ana))
	requireList(t, r, ana)
}

func TestOpen_LoadFailure(t *testing.T) {
	t.Parallel()

	boom := errors.New("disk on fire")
	_, err := registry.Open(&fakeStore{fail: boom})
	require.ErrorIs(t, err, boom)
}

func TestRegistry_StoreFailureLeavesRegistryUnchanged(t *testing.T) {
	t.Parallel()

	store := &fakeStore{}
	var events int
	r, err := registry.Open(store, registry.WithListener(func(registry.Event) { events++ }))
	require.NoError(t, err)
	require.NoError(t, r.Add(ana))
	require.Equal(t, 1, events)

	boom := errors.New("disk on fire")
	store.fail = boom

	assert.ErrorIs(t, r.Add(jose), boom)
	assert.ErrorIs(t, r.Update(ana, jose), boom)
	assert.ErrorIs(t, r.Remove(ana), boom)

	requireList(t, r, ana)
	assert.Equal(t, 1, events, "failed mutations must not notify listeners")
}
