package httpapi

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/leapstack-labs/leapquery/pkg/queryobject"
)

// ErrorResponse is the body of every error reply.
type ErrorResponse struct {
	Error ErrorObject `json:"error"`
}

// ErrorObject describes one application error.
// Names starting with E_ are client errors, F_ are server failures.
type ErrorObject struct {
	Name     string         `json:"name"`
	Title    string         `json:"title"`
	HTTPCode int            `json:"httpcode"`
	Error    string         `json:"error"`
	Fixit    string         `json:"fixit"`
	Info     map[string]any `json:"info"`
}

// Error names.
const (
	ErrNameArgument   = "E_API_ARGUMENT"
	ErrNameNotFound   = "E_NOT_FOUND"
	ErrNameUnexpected = "F_UNEXPECTED_ERROR"
)

// argumentError builds the error object for a rejected query argument.
func argumentError(err error) ErrorObject {
	name, _ := queryobject.ArgumentName(err)
	info := map[string]any{"name": name}

	var pe *queryobject.MalformedProjectionError
	if errors.As(err, &pe) {
		info["path"] = pe.PathString()
	}

	return ErrorObject{
		Name:     ErrNameArgument,
		Title:    "Invalid argument",
		HTTPCode: http.StatusBadRequest,
		Error:    err.Error(),
		Fixit:    "Please fix the " + name + " argument and try again",
		Info:     info,
	}
}

func unexpectedError() ErrorObject {
	return ErrorObject{
		Name:     ErrNameUnexpected,
		Title:    "Generic server error",
		HTTPCode: http.StatusInternalServerError,
		Error:    "Unexpected error",
		Fixit:    "Please try again in a couple of minutes",
		Info:     map[string]any{},
	}
}

func notFoundError(what, name string) ErrorObject {
	return ErrorObject{
		Name:     ErrNameNotFound,
		Title:    "Not found",
		HTTPCode: http.StatusNotFound,
		Error:    what + " " + name + " does not exist",
		Fixit:    "Please check the " + what + " name and try again",
		Info:     map[string]any{what: name},
	}
}

// writeError replies with an error object, tagged with the request id.
func writeError(w http.ResponseWriter, r *http.Request, logger *slog.Logger, obj ErrorObject) {
	if id := RequestIDFrom(r.Context()); id != "" {
		obj.Info["request_id"] = id
	}
	writeJSON(w, logger, obj.HTTPCode, ErrorResponse{Error: obj})
}
