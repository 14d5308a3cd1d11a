package schema

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

// Error codes reported in FieldError.Code.
const (
	CodeRequired     = "required"
	CodeInvalidEmail = "invalid_email"
	CodeTooShort     = "too_small"
	CodeTooLong      = "too_big"
	CodeInvalidType  = "invalid_type"
	CodeInvalid      = "invalid"
)

// FieldError describes why a single field failed validation.
type FieldError struct {
	Field   string   `json:"field"`
	Code    string   `json:"code"`
	Message string   `json:"message"`
	Path    []string `json:"path"`
}

// ValidationError lists every field that failed validation.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.Field+": "+f.Message)
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Has reports whether field is among the failing fields.
func (e *ValidationError) Has(field string) bool {
	for _, f := range e.Fields {
		if f.Field == field {
			return true
		}
	}
	return false
}

// Merge appends the fields of other that are not already reported.
func (e *ValidationError) Merge(other *ValidationError) {
	if other == nil {
		return
	}
	for _, f := range other.Fields {
		if !e.Has(f.Field) {
			e.Fields = append(e.Fields, f)
		}
	}
}

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

func instance() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
			if name == "-" {
				return ""
			}
			return name
		})
	})
	return validate
}

// messages overrides the generic text for a field/tag pair so that server
// errors read the same as the site form.
var messages = map[string]string{
	"firstName.required": "First name is required",
	"lastName.required":  "Last name is required",
	"email.required":     "Invalid email address",
	"email.email":        "Invalid email address",
	"message.required":   "Message is required and must be at least 5 characters",
	"message.min":        "Message is required and must be at least 5 characters",
	"username.required":  "Username is required",
	"password.required":  "Password is required",
}

// Struct validates v and converts failures into a *ValidationError.
func Struct(v any) error {
	err := instance().Struct(v)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	out := &ValidationError{Fields: make([]FieldError, 0, len(verrs))}
	for _, fe := range verrs {
		out.Fields = append(out.Fields, FieldError{
			Field:   fe.Field(),
			Code:    code(fe.Tag()),
			Message: message(fe),
			Path:    []string{fe.Field()},
		})
	}
	return out
}

func code(tag string) string {
	switch tag {
	case "required":
		return CodeRequired
	case "email":
		return CodeInvalidEmail
	case "min":
		return CodeTooShort
	case "max":
		return CodeTooLong
	default:
		return CodeInvalid
	}
}

func message(fe validator.FieldError) string {
	if msg, ok := messages[fe.Field()+"."+fe.Tag()]; ok {
		return msg
	}
	switch fe.Tag() {
	case "required":
		return "Required"
	case "email":
		return "Invalid email address"
	case "min":
		return fmt.Sprintf("Must be at least %s characters", fe.Param())
	case "max":
		return fmt.Sprintf("Must be at most %s characters", fe.Param())
	default:
		return "Invalid value"
	}
}

// ParseInsertContactMessage normalises and validates a submitted message.
// Strings are trimmed and an empty service type becomes nil.
func ParseInsertContactMessage(in InsertContactMessage) (InsertContactMessage, error) {
	out := InsertContactMessage{
		FirstName: strings.TrimSpace(in.FirstName),
		LastName:  strings.TrimSpace(in.LastName),
		Email:     strings.TrimSpace(in.Email),
		Message:   strings.TrimSpace(in.Message),
	}
	if in.ServiceType != nil {
		if st := strings.TrimSpace(*in.ServiceType); st != "" {
			out.ServiceType = &st
		}
	}

	if err := Struct(out); err != nil {
		return InsertContactMessage{}, err
	}
	return out, nil
}

// ParseInsertUser normalises and validates a new user. The password is kept
// verbatim.
func ParseInsertUser(in InsertUser) (InsertUser, error) {
	out := InsertUser{
		Username: strings.TrimSpace(in.Username),
		Password: in.Password,
	}
	if err := Struct(out); err != nil {
		return InsertUser{}, err
	}
	return out, nil
}

// TypeMismatch converts a JSON decode error caused by a field of the wrong
// type into a validation error. Syntax errors are not converted.
func TypeMismatch(err error) (*ValidationError, bool) {
	var ute *json.UnmarshalTypeError
	if !errors.As(err, &ute) || ute.Field == "" {
		return nil, false
	}
	return &ValidationError{Fields: []FieldError{{
		Field:   ute.Field,
		Code:    CodeInvalidType,
		Message: fmt.Sprintf("Expected %s, received %s", ute.Type.Kind(), ute.Value),
		Path:    strings.Split(ute.Field, "."),
	}}}, true
}
