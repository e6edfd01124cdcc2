package validator

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr(s string) *string { return &s }

func TestValidate_FirstFailingRulePerField(t *testing.T) {
	t.Parallel()

	name := "  ab  "
	v := New()
	v.Field("name", &name).Trim().Rules(Required("required"), MinLength(3, "too short"))
	v.Field("password", ptr("")).Rules(Required("password required"), MinLength(6, "short password"))

	err := v.Validate()
	require.Error(t, err)

	var errs Errors
	require.True(t, errors.As(err, &errs))
	assert.Equal(t, Errors{
		{Field: "name", Message: "too short"},
		{Field: "password", Message: "password required"},
	}, errs)
	assert.Equal(t, "ab", name)
	assert.Equal(t, FailedMessage, err.Error())
}

func TestValidate_OptionalAbsentIsSkipped(t *testing.T) {
	t.Parallel()

	v := New()
	v.Field("name", nil).Optional().Trim().Rules(Required("required"))
	assert.NoError(t, v.Validate())
}

func TestValidate_OptionalPresentUsesRules(t *testing.T) {
	t.Parallel()

	v := New()
	v.Field("name", ptr("   ")).Optional().Trim().Rules(Required("empty if provided"))

	err := v.Validate()
	assert.Equal(t, Errors{{Field: "name", Message: "empty if provided"}}, err)
}

func TestValidate_RequiredAbsentFails(t *testing.T) {
	t.Parallel()

	v := New()
	v.Field("date", nil).Rules(Required("Date should not be empty."))

	assert.Equal(t, Errors{{Field: "date", Message: "Date should not be empty."}}, v.Validate())
}

func TestValidate_FailIsReported(t *testing.T) {
	t.Parallel()

	v := New()
	v.Fail("body", "malformed")
	v.Field("name", ptr("okay")).Rules(Required("required"))

	assert.Equal(t, Errors{{Field: "body", Message: "malformed"}}, v.Validate())
}

func TestRules(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		rule  Rule
		value string
		ok    bool
	}{
		{"required ok", Required("m"), "x", true},
		{"required empty", Required("m"), "", false},
		{"min length runes", MinLength(3, "m"), "héé", true},
		{"min length short", MinLength(3, "m"), "ab", false},
		{"one of ok", OneOf([]string{"high", "low"}, "m"), "low", true},
		{"one of case", OneOf([]string{"high", "low"}, "m"), "High", false},
		{"date ok", IsDate("2006-01-02", "m"), "2024-02-29", true},
		{"date not leap", IsDate("2006-01-02", "m"), "2023-02-29", false},
		{"date wrong format", IsDate("2006-01-02", "m"), "02/10/2024", false},
		{"date no padding", IsDate("2006-01-02", "m"), "2024-2-1", false},
		{"email ok", IsEmail("m"), "jane@example.com", true},
		{"email no domain dot", IsEmail("m"), "jane@example", false},
		{"email display name", IsEmail("m"), "Jane <jane@example.com>", false},
		{"email garbage", IsEmail("m"), "not-an-email", false},
		{"email subdomain", IsEmail("m"), "jane.doe+tasks@mail.example.co.uk", true},
		{"email space", IsEmail("m"), "jane doe@example.com", false},
		{"email two ats", IsEmail("m"), "jane@doe@example.com", false},
		{"date month 13", IsDate("2006-01-02", "m"), "2024-13-01", false},
		{"digit ok", Matches(Digit, "m"), "abc123", true},
		{"digit missing", Matches(Digit, "m"), "abcdef", false},
		{"object id ok", IsObjectID("m"), "507f1f77bcf86cd799439011", true},
		{"object id short", IsObjectID("m"), "507f1f77", false},
		{"object id non hex", IsObjectID("m"), "zzzzzzzzzzzzzzzzzzzzzzzz", false},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.ok, tt.rule.check(tt.value))
		})
	}
}

type checked struct {
	err error
}

func (c checked) Validate() error { return c.err }

func TestMiddleware(t *testing.T) {
	t.Parallel()

	called := false
	next := func(context.Context, interface{}) (interface{}, error) {
		called = true
		return "ok", nil
	}

	bad := Errors{{Field: "name", Message: "m"}}
	_, err := Middleware()(next)(context.Background(), checked{err: bad})
	assert.Equal(t, bad, err)
	assert.False(t, called)

	resp, err := Middleware()(next)(context.Background(), checked{})
	require.NoError(t, err)
	assert.Equal(t, "ok", resp)

	resp, err = Middleware()(next)(context.Background(), struct{}{})
	require.NoError(t, err)
	assert.Equal(t, "ok", resp)
}
