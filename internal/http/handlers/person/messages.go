package person

import (
	"errors"
	"net/http"

	"github.com/aanand-mishra/people-registry/internal/form"
	"github.com/aanand-mishra/people-registry/internal/notify"
	"github.com/aanand-mishra/people-registry/internal/registry"
)

const (
	titleSuccess = "Success"
	titleWarning = "Warning"
	titleError   = "Error"

	msgRequired     = "Please fill in all the fields."
	msgInvalidChars = "Name and surname may only contain letters and spaces."
	msgInvalidAge   = "Age must be a valid number."
	msgDuplicate    = "This person already exists in the list."
	msgAdded        = "Person added successfully."
	msgUpdated      = "Person updated successfully."
	msgRemoved      = "Person removed successfully."
	msgSelectView   = "Please select a person."
	msgSelectEdit   = "Please select a person to modify."
	msgSelectRemove = "Please select a person to remove."
	msgInternal     = "Something went wrong, please try again."
)

// outcome maps an error from the validator or the registry to an HTTP
// status and the notification shown to the user. level applies to the
// recoverable user errors; anything unrecognised is a 500 error.
func outcome(err error, level notify.Level) (int, notify.Notification) {
	title := titleError
	if level == notify.LevelWarning {
		title = titleWarning
	}
	user := func(msg string) notify.Notification {
		return notify.Notification{Level: level, Title: title, Message: msg}
	}

	switch {
	case errors.Is(err, form.ErrEmptyField):
		return http.StatusBadRequest, user(msgRequired)
	case errors.Is(err, form.ErrInvalidNameCharacters):
		return http.StatusBadRequest, user(msgInvalidChars)
	case errors.Is(err, form.ErrInvalidAge):
		return http.StatusBadRequest, user(msgInvalidAge)
	case errors.Is(err, registry.ErrDuplicate):
		return http.StatusConflict, user(msgDuplicate)
	case errors.Is(err, registry.ErrNotFound):
		return http.StatusNotFound, user(msgSelectView)
	default:
		return http.StatusInternalServerError, notify.Error(titleError, msgInternal)
	}
}
