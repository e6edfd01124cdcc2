// Package httpapi holds the HTTP encoding shared by every transport.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-kit/kit/endpoint"
	"github.com/go-kit/kit/transport"
	httptransport "github.com/go-kit/kit/transport/http"
	"github.com/gorilla/handlers"
	"github.com/ichigozero/todokit/authsvc"
	"github.com/ichigozero/todokit/tasksvc"
	"github.com/ichigozero/todokit/usersvc"
	"github.com/ichigozero/todokit/validator"
)

const internalMessage = "Internal Server Error"

// ErrBadRouting is returned when an expected path variable is missing.
// It always indicates programmer error.
var ErrBadRouting = errors.New("inconsistent mapping between route and handler (programmer error)")

type errorWrapper struct {
	Message string                 `json:"message"`
	Errors  []validator.FieldError `json:"errors,omitempty"`
}

// ErrorEncoder writes err as {"message": ...} with the status from Err2Code.
// Errors that map to 500 and are not domain sentinels never leak their text.
func ErrorEncoder(_ context.Context, err error, w http.ResponseWriter) {
	code := Err2Code(err)
	body := errorWrapper{Message: message(err, code)}

	var verrs validator.Errors
	if errors.As(err, &verrs) {
		body.Errors = verrs
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(body)
}

func Err2Code(err error) int {
	var verrs validator.Errors
	switch {
	case errors.As(err, &verrs):
		return http.StatusBadRequest
	case errors.Is(err, authsvc.ErrUnauthenticated), errors.Is(err, authsvc.ErrClaimsMissing):
		return http.StatusUnauthorized
	case errors.Is(err, tasksvc.ErrCreateNotAllowed),
		errors.Is(err, tasksvc.ErrUpdateNotAllowed),
		errors.Is(err, tasksvc.ErrDeleteNotAllowed):
		return http.StatusForbidden
	case errors.Is(err, tasksvc.ErrTaskNotFound):
		return http.StatusNotFound
	case errors.Is(err, tasksvc.ErrTaskUnavailable), errors.Is(err, usersvc.ErrInvalidCredentials):
		return http.StatusBadRequest
	case errors.Is(err, usersvc.ErrEmailTaken):
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}

func message(err error, code int) string {
	if code != http.StatusInternalServerError {
		if errors.Is(err, authsvc.ErrClaimsMissing) {
			return authsvc.ErrUnauthenticated.Error()
		}
		return err.Error()
	}

	switch {
	case errors.Is(err, tasksvc.ErrNoTasks):
		return tasksvc.ErrNoTasks.Error()
	case errors.Is(err, tasksvc.ErrCreateFailed):
		return tasksvc.ErrCreateFailed.Error()
	}
	return internalMessage
}

// EncodeResponse encodes successful responses as JSON, honouring
// StatusCode on the response, and routes failed ones to ErrorEncoder.
func EncodeResponse(ctx context.Context, w http.ResponseWriter, response interface{}) error {
	if f, ok := response.(endpoint.Failer); ok && f.Failed() != nil {
		ErrorEncoder(ctx, f.Failed(), w)
		return nil
	}
	return httptransport.EncodeJSONResponse(ctx, w, response)
}

// ServerOptions are shared by every go-kit server of the API.
func ServerOptions(errorHandler transport.ErrorHandler) []httptransport.ServerOption {
	return []httptransport.ServerOption{
		httptransport.ServerErrorEncoder(ErrorEncoder),
		httptransport.ServerErrorHandler(errorHandler),
	}
}

func NotFound() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeMessage(w, http.StatusNotFound, "Not Found")
	})
}

func MethodNotAllowed() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeMessage(w, http.StatusMethodNotAllowed, "Method Not Allowed")
	})
}

func Health() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
	})
}

// StripPrefix behaves like http.StripPrefix but serves the bare prefix as "/".
func StripPrefix(prefix string, h http.Handler) http.Handler {
	return http.StripPrefix(prefix, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "" {
			r.URL.Path = "/"
		}
		h.ServeHTTP(w, r)
	}))
}

// CORS allows any origin, as browsers talk to the API directly.
func CORS() func(http.Handler) http.Handler {
	return handlers.CORS(
		handlers.AllowedOrigins([]string{"*"}),
		handlers.AllowedMethods([]string{"GET", "HEAD", "POST", "PUT", "PATCH", "DELETE"}),
		handlers.AllowedHeaders([]string{"Authorization", "Content-Type"}),
		handlers.OptionStatusCode(http.StatusNoContent),
	)
}

func writeMessage(w http.ResponseWriter, code int, msg string) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(errorWrapper{Message: msg})
}
