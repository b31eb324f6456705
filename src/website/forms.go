package website

import (
	"errors"
	"fmt"
	"net/url"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// Layouts of the date and datetime-local inputs on admin forms. Times are
// entered and shown in UTC.
const (
	formDateLayout     = "2006-01-02"
	formDateTimeLayout = "2006-01-02T15:04"
)

var formValidator = newFormValidator()

// Field errors are reported with the field's "label" tag, so messages read
// like the form the user is looking at.
func newFormValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		if label := field.Tag.Get("label"); label != "" {
			return label
		}
		return field.Name
	})
	return v
}

// Returns one message per failed field, or nil if the form is valid.
func validateForm(form any) []string {
	err := formValidator.Struct(form)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		panic(err)
	}

	msgs := make([]string, 0, len(fieldErrs))
	for _, fieldErr := range fieldErrs {
		msgs = append(msgs, describeFieldError(fieldErr))
	}
	return msgs
}

func describeFieldError(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required.", fe.Field())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters.", fe.Field(), fe.Param())
	case "url":
		return fmt.Sprintf("%s must be a full link, like https://example.com.", fe.Field())
	case "email":
		return fmt.Sprintf("%s must be an email address.", fe.Field())
	case "uuid":
		return fmt.Sprintf("%s does not refer to an uploaded file.", fe.Field())
	case "datetime":
		return fmt.Sprintf("%s must be a date in the format %s.", fe.Field(), fe.Param())
	case "number":
		return fmt.Sprintf("%s must be a whole number.", fe.Field())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s.", fe.Field(), strings.ReplaceAll(fe.Param(), " ", ", "))
	default:
		return fmt.Sprintf("%s is invalid.", fe.Field())
	}
}

func formString(form url.Values, name string) string {
	return strings.TrimSpace(form.Get(name))
}

// Checkboxes are only submitted when checked.
func formBool(form url.Values, name string) bool {
	v := form.Get(name)
	return v != "" && v != "false"
}

// The caller validates the string first; invalid or empty ids come back nil.
func parseOptionalUUID(s string) *uuid.UUID {
	if s == "" {
		return nil
	}
	id, err := uuid.Parse(s)
	if err != nil {
		return nil
	}
	return &id
}

func optionalUUIDString(id *uuid.UUID) string {
	if id == nil {
		return ""
	}
	return id.String()
}

func parseFormTime(layout, s string) (time.Time, error) {
	return time.ParseInLocation(layout, s, time.UTC)
}

func parseOptionalFormTime(layout, s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	t, err := parseFormTime(layout, s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func formatOptionalTime(layout string, t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.UTC().Format(layout)
}

// Empty strings parse as 0.
func parseFormInt(s string) (int, error) {
	if s == "" {
		return 0, nil
	}
	return strconv.Atoi(s)
}
