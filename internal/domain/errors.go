package domain

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"go.uber.org/multierr"
)

var (
	// ErrPermission marks an operation the principal is authenticated for
	// but not authorized to perform. Resubmitting the same input cannot fix it.
	ErrPermission = errors.New("permission denied")

	// ErrNotFound marks a single-record lookup that matched nothing.
	ErrNotFound = errors.New("not found")
)

// FieldError reports one invalid or missing input field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e FieldError) Error() string {
	return e.Field + ": " + e.Message
}

// ValidationError aggregates the field errors of one failed validation pass.
// Callers can correct the named fields and resubmit.
type ValidationError struct {
	errs []error
}

func (e *ValidationError) Error() string {
	msgs := make([]string, 0, len(e.errs))
	for _, err := range e.errs {
		msgs = append(msgs, err.Error())
	}
	return "validation failed: " + strings.Join(msgs, "; ")
}

// Fields returns the individual field errors in the order they were recorded.
func (e *ValidationError) Fields() []FieldError {
	fields := make([]FieldError, 0, len(e.errs))
	for _, err := range e.errs {
		var fe FieldError
		if errors.As(err, &fe) {
			fields = append(fields, fe)
		} else {
			fields = append(fields, FieldError{Field: "", Message: err.Error()})
		}
	}
	return fields
}

// AsValidation unwraps err into a *ValidationError if it is one.
func AsValidation(err error) (*ValidationError, bool) {
	var ve *ValidationError
	ok := errors.As(err, &ve)
	return ve, ok
}

// Validation collects field errors across a validate-then-persist pass so a
// caller sees every problem at once instead of the first.
type Validation struct {
	err error
}

// Fail records a field error.
func (v *Validation) Fail(field, message string) {
	v.err = multierr.Append(v.err, FieldError{Field: field, Message: message})
}

// Failf records a formatted field error.
func (v *Validation) Failf(field, format string, args ...any) {
	v.Fail(field, fmt.Sprintf(format, args...))
}

// Require records an error when value is blank.
func (v *Validation) Require(field, value string) {
	if strings.TrimSpace(value) == "" {
		v.Fail(field, "required")
	}
}

// Merge folds another error into the collected set. ValidationErrors are
// flattened; nil is a no-op.
func (v *Validation) Merge(err error) {
	if err == nil {
		return
	}
	if ve, ok := AsValidation(err); ok {
		v.err = multierr.Append(v.err, multierr.Combine(ve.errs...))
		return
	}
	v.err = multierr.Append(v.err, err)
}

// Err returns nil when no field failed, otherwise a *ValidationError
// carrying every recorded failure.
func (v *Validation) Err() error {
	if v.err == nil {
		return nil
	}
	return &ValidationError{errs: multierr.Errors(v.err)}
}

var digitsRe = regexp.MustCompile(`\D`)

// Digits strips every non-digit character from s.
func Digits(s string) string {
	return digitsRe.ReplaceAllString(s, "")
}

// RequirePhone records an error unless value, stripped of separators, is
// 9-10 digits. Blank values pass; pair with Require for mandatory phones.
func (v *Validation) RequirePhone(field, value string) {
	if strings.TrimSpace(value) == "" {
		return
	}
	d := Digits(value)
	if len(d) < 9 || len(d) > 10 {
		v.Fail(field, "must be 9-10 digits")
	}
}

// RequireNationalID records an error unless value is exactly 9 digits.
// Blank values pass.
func (v *Validation) RequireNationalID(field, value string) {
	if strings.TrimSpace(value) == "" {
		return
	}
	if d := Digits(value); len(d) != 9 {
		v.Fail(field, "must be exactly 9 digits")
	}
}
