package httpapi

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/ichigozero/todokit/validator"
)

// StatusError is an error response read back by an HTTP client.
type StatusError struct {
	Code    int
	Message string
	Errors  []validator.FieldError
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%d: %s", e.Code, e.Message)
}

func (e *StatusError) StatusCode() int { return e.Code }

// BaseURL parses instance as the root of a mounted API. A missing scheme
// defaults to http.
func BaseURL(instance string) (*url.URL, error) {
	if !strings.HasPrefix(instance, "http") {
		instance = "http://" + instance
	}
	u, err := url.Parse(instance)
	if err != nil {
		return nil, err
	}
	u.Path = strings.TrimSuffix(u.Path, "/")
	return u, nil
}

// DecodeResponse reads a JSON body into v. Responses with an error status
// are returned as a *StatusError in failed and leave v untouched.
func DecodeResponse(r *http.Response, v interface{}) (failed error, err error) {
	if r.StatusCode >= http.StatusBadRequest {
		var body errorWrapper
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Message == "" {
			body.Message = http.StatusText(r.StatusCode)
		}
		return &StatusError{Code: r.StatusCode, Message: body.Message, Errors: body.Errors}, nil
	}

	return nil, json.NewDecoder(r.Body).Decode(v)
}
