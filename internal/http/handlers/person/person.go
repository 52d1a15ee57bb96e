// Package person contains the HTTP handlers for the people list.
//
// The handlers play the two roles the registry talks to:
//
//   - the LIST VIEW — GetList renders the rows, GetByIndex exposes the
//     current selection (a row position);
//   - the FORMS — New and Update take the three raw form strings, run them
//     through the form.Validator and apply the result to the registry.
//
// HANDLER PATTERN — THE CLOSURE / FACTORY PATTERN:
// ─────────────────────────────────────────────────
// Each exported function receives its dependencies once, at route
// registration, and returns the http.HandlerFunc the router calls on every
// request:
//
//	r.Post("/api/people", person.New(reg, validator, sink))
package person

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/aanand-mishra/people-registry/internal/form"
	"github.com/aanand-mishra/people-registry/internal/notify"
	"github.com/aanand-mishra/people-registry/internal/types"
	"github.com/aanand-mishra/people-registry/internal/utils/response"
)

// Registry is the part of *registry.Registry the handlers use.
type Registry interface {
	Add(person types.Person) error
	UpdateAt(index int, expected, fields types.Person) error
	RemoveAt(index int, expected types.Person) error
	List() []types.Person
	At(index int) (types.Person, error)
}

// Validator turns raw form input into a Person.
type Validator interface {
	Person(in form.Input) (types.Person, error)
}

// Row is one line of the list view: the person plus its position, which is
// the handle clients use to select it.
type Row struct {
	Index int `json:"index"`
	types.Person
}

// ─────────────────────────────────────────────────────────────────────────────
// New handles POST /api/people — the "new person" form.
//
// Request body (JSON, all raw strings):
//
//	{ "name": "José María", "surname": "Ñúñez", "age": "34" }
//
// Responses:
//
//	201 Created   — person added
//	400           — empty body, malformed JSON, or failed validation
//	409 Conflict  — the person is already in the list
//	500           — storage failure
//
// ─────────────────────────────────────────────────────────────────────────────
func New(reg Registry, v Validator, sink notify.Sink) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		slog.Info("creating a person")

		in, ok := decodeInput(w, r)
		if !ok {
			return
		}

		p, err := v.Person(in)
		if err != nil {
			fail(w, r, sink, err, notify.LevelError)
			return
		}

		if err := reg.Add(p); err != nil {
			fail(w, r, sink, err, notify.LevelError)
			return
		}

		slog.Info("person created", slog.String("person", p.String()))

		n := notify.Success(titleSuccess, msgAdded)
		sink.Notify(r.Context(), n)
		response.WriteJSON(w, http.StatusCreated, response.Outcome(n, nil, p))
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// GetList handles GET /api/people
// Returns every person in display order. An empty list is [] (not null).
//
//	[ { "index": 0, "name": "Ana", "surname": "Lopez", "age": 30 } ]
//
// ─────────────────────────────────────────────────────────────────────────────
func GetList(reg Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		slog.Debug("listing people")

		people := reg.List()
		rows := make([]Row, 0, len(people))
		for i, p := range people {
			rows = append(rows, Row{Index: i, Person: p})
		}

		response.WriteJSON(w, http.StatusOK, rows)
	}
}

// GetByIndex handles GET /api/people/{index} and returns the selected row.
func GetByIndex(reg Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		index, p, ok := selected(w, r, reg, nil, msgSelectView)
		if !ok {
			return
		}

		response.WriteJSON(w, http.StatusOK, Row{Index: index, Person: p})
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// Update handles PUT /api/people/{index} — the "edit person" form.
//
// The selected record is overwritten in place and keeps its position.
// Same body and validation as New.
//
// Responses:
//
//	200 OK        — person updated
//	400           — bad body or failed validation
//	404           — nothing at that position
//	409 Conflict  — strict mode only: the edit would duplicate another person
//
// ─────────────────────────────────────────────────────────────────────────────
func Update(reg Registry, v Validator, sink notify.Sink) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		index, target, ok := selected(w, r, reg, sink, msgSelectEdit)
		if !ok {
			return
		}
		slog.Info("updating a person", slog.Int("index", index))

		in, ok := decodeInput(w, r)
		if !ok {
			return
		}

		// The form hands back a new value; applying it is our job.
		p, err := v.Person(in)
		if err != nil {
			fail(w, r, sink, err, notify.LevelWarning)
			return
		}

		if err := reg.UpdateAt(index, target, p); err != nil {
			fail(w, r, sink, err, notify.LevelWarning)
			return
		}

		slog.Info("person updated",
			slog.Int("index", index),
			slog.String("from", target.String()),
			slog.String("to", p.String()))

		n := notify.Success(titleSuccess, msgUpdated)
		sink.Notify(r.Context(), n)
		response.WriteJSON(w, http.StatusOK, response.Outcome(n, nil, Row{Index: index, Person: p}))
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// Delete handles DELETE /api/people/{index} and removes the selected row.
//
//	200 OK  — { "status": "ok", "notification": { ... } }
//	404     — nothing at that position
//
// ─────────────────────────────────────────────────────────────────────────────
func Delete(reg Registry, sink notify.Sink) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		index, p, ok := selected(w, r, reg, sink, msgSelectRemove)
		if !ok {
			return
		}
		slog.Info("deleting a person", slog.Int("index", index))

		if err := reg.RemoveAt(index, p); err != nil {
			fail(w, r, sink, err, notify.LevelError)
			return
		}

		slog.Info("person deleted", slog.String("person", p.String()))

		n := notify.Success(titleSuccess, msgRemoved)
		sink.Notify(r.Context(), n)
		response.WriteJSON(w, http.StatusOK, response.Outcome(n, nil, nil))
	}
}

// decodeInput reads the form body. On failure it has already written the
// 400 response and returns ok == false.
func decodeInput(w http.ResponseWriter, r *http.Request) (form.Input, bool) {
	var in form.Input

	err := json.NewDecoder(r.Body).Decode(&in)
	if errors.Is(err, io.EOF) {
		response.WriteJSON(w, http.StatusBadRequest,
			response.GeneralError(errors.New("request body is empty")))
		return in, false
	}
	if err != nil {
		response.WriteJSON(w, http.StatusBadRequest, response.GeneralError(err))
		return in, false
	}

	return in, true
}

// selected resolves the {index} URL parameter to the person at that
// position. A missing selection is reported to sink (when given) as a
// warning carrying msg.
func selected(w http.ResponseWriter, r *http.Request, reg Registry, sink notify.Sink, msg string) (int, types.Person, bool) {
	raw := chi.URLParam(r, "index")

	index, err := strconv.Atoi(raw)
	if err != nil {
		response.WriteJSON(w, http.StatusBadRequest,
			response.GeneralError(errors.New("invalid index: must be an integer")))
		return 0, types.Person{}, false
	}

	p, err := reg.At(index)
	if err != nil {
		n := notify.Warning(titleWarning, msg)
		if sink != nil {
			sink.Notify(r.Context(), n)
		}
		response.WriteJSON(w, http.StatusNotFound, response.Outcome(n, err, nil))
		return 0, types.Person{}, false
	}

	return index, p, true
}

// fail reports err to the user and writes the matching status code.
// level is used for validation failures; the edit form reports them as
// warnings, the create form as errors.
func fail(w http.ResponseWriter, r *http.Request, sink notify.Sink, err error, level notify.Level) {
	status, n := outcome(err, level)

	if status >= http.StatusInternalServerError {
		slog.Error("person request failed", slog.String("error", err.Error()))
	} else {
		slog.Info("person request rejected", slog.String("error", err.Error()))
	}

	sink.Notify(r.Context(), n)
	response.WriteJSON(w, status, response.Outcome(n, err, nil))
}
