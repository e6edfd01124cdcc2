// Package validator runs ordered per-field rules over request input and
// aggregates the failures into a single error.
package validator

import (
	"context"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/asaskevich/govalidator"
	"github.com/go-kit/kit/endpoint"
)

const FailedMessage = "Validation failed"

type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Errors is returned when one or more fields fail. It holds at most one
// entry per field.
type Errors []FieldError

func (e Errors) Error() string {
	return FailedMessage
}

// Rule reports whether a value is acceptable and the message used when it
// is not.
type Rule struct {
	check   func(string) bool
	message string
}

func Required(message string) Rule {
	return Rule{func(v string) bool { return v != "" }, message}
}

func MinLength(n int, message string) Rule {
	return Rule{func(v string) bool { return utf8.RuneCountInString(v) >= n }, message}
}

func OneOf(values []string, message string) Rule {
	return Rule{func(v string) bool { return govalidator.IsIn(v, values...) }, message}
}

// IsDate accepts only real calendar dates written exactly as layout.
func IsDate(layout, message string) Rule {
	return Rule{func(v string) bool { return govalidator.IsTime(v, layout) }, message}
}

func IsEmail(message string) Rule {
	return Rule{govalidator.IsEmail, message}
}

func Matches(re *regexp.Regexp, message string) Rule {
	return Rule{re.MatchString, message}
}

// IsObjectID accepts 24 hexadecimal characters.
func IsObjectID(message string) Rule {
	return Rule{govalidator.IsMongoID, message}
}

var Digit = regexp.MustCompile(`\d`)

type field struct {
	name     string
	value    *string
	trim     bool
	optional bool
	rules    []Rule
}

// Field configures the rules of one input field.
type Field struct {
	f *field
}

func (f Field) Trim() Field {
	f.f.trim = true
	return f
}

// Optional skips the field entirely when its value is nil.
func (f Field) Optional() Field {
	f.f.optional = true
	return f
}

func (f Field) Rules(rules ...Rule) Field {
	f.f.rules = append(f.f.rules, rules...)
	return f
}

// Validation collects fields and evaluates them in declaration order.
type Validation struct {
	fields []*field
	errs   Errors
}

func New() *Validation {
	return &Validation{}
}

// Field registers value under name. A nil value is absent; trimming writes
// back through the pointer.
func (v *Validation) Field(name string, value *string) Field {
	f := &field{name: name, value: value}
	v.fields = append(v.fields, f)
	return Field{f}
}

// Fail records a failure that no rule can express, such as an undecodable
// body.
func (v *Validation) Fail(name, message string) {
	v.errs = append(v.errs, FieldError{Field: name, Message: message})
}

func (v *Validation) Validate() error {
	errs := append(Errors(nil), v.errs...)

	for _, f := range v.fields {
		if f.value == nil && f.optional {
			continue
		}

		var value string
		if f.value != nil {
			if f.trim {
				*f.value = strings.TrimSpace(*f.value)
			}
			value = *f.value
		}

		for _, r := range f.rules {
			if !r.check(value) {
				errs = append(errs, FieldError{Field: f.name, Message: r.message})
				break
			}
		}
	}

	if len(errs) == 0 {
		return nil
	}
	return errs
}

// DecodeError is embedded in requests whose body may fail to decode.
type DecodeError struct {
	Err error `json:"-"`
}

// Check reports a decode failure on the "body" field. It returns false when
// the remaining fields are not worth validating.
func (d DecodeError) Check(v *Validation) bool {
	if d.Err == nil {
		return true
	}
	v.Fail("body", "Invalid JSON body")
	return false
}

// Validator is implemented by requests that check their own input.
type Validator interface {
	Validate() error
}

// Middleware validates requests implementing Validator before next runs.
func Middleware() endpoint.Middleware {
	return func(next endpoint.Endpoint) endpoint.Endpoint {
		return func(ctx context.Context, request interface{}) (interface{}, error) {
			if v, ok := request.(Validator); ok {
				if err := v.Validate(); err != nil {
					return nil, err
				}
			}
			return next(ctx, request)
		}
	}
}
