// Package response provides helpers for writing consistent JSON HTTP responses.
//
// Every handler in this application sends JSON back to the client.
// Rather than repeating the same three lines (set header, set status,
// encode JSON) in every handler, we centralise them here.
package response

import (
	"encoding/json"
	"net/http"

	"github.com/aanand-mishra/people-registry/internal/notify"
)

// ─────────────────────────────────────────────────────────────────────────────
// Response is the envelope returned by every form action (create, edit,
// delete) and by every error.
//
//	{ "status": "ok",
//	  "notification": { "level": "success", "title": "Success",
//	                    "message": "Person added successfully." },
//	  "data": { "name": "Ana", "surname": "Lopez", "age": 30 } }
//
//	{ "status": "error", "error": "name: may only contain letters and spaces",
//	  "notification": { "level": "error", ... } }
//
// ─────────────────────────────────────────────────────────────────────────────
type Response struct {
	Status       string               `json:"status"`
	Error        string               `json:"error,omitempty"`
	Notification *notify.Notification `json:"notification,omitempty"`
	Data         any                  `json:"data,omitempty"`
}

// Status string constants.
const (
	StatusOK    = "ok"
	StatusError = "error"
)

// WriteJSON writes a JSON-encoded response with the given HTTP status code.
//
// IMPORTANT ORDER: Header() → WriteHeader() → body writes.
// Once WriteHeader is called (or the first Write), headers are locked.
func WriteJSON(w http.ResponseWriter, status int, data any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	return json.NewEncoder(w).Encode(data)
}

// GeneralError wraps any Go error into our standard Response shape.
// Use this for unexpected errors (decode errors, storage failures, …).
func GeneralError(err error) Response {
	return Response{
		Status: StatusError,
		Error:  err.Error(),
	}
}

// Outcome builds a Response around a user-facing notification. A success
// notification yields status "ok"; warnings and errors yield "error" with
// the cause in the error field.
func Outcome(n notify.Notification, cause error, data any) Response {
	resp := Response{
		Status:       StatusOK,
		Notification: &n,
		Data:         data,
	}

	if n.Level != notify.LevelSuccess {
		resp.Status = StatusError
		resp.Error = n.Message
		if cause != nil {
			resp.Error = cause.Error()
		}
	}

	return resp
}
