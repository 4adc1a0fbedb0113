// Package validation validates request DTOs once at ingress and reports field-level
// violations with human readable descriptions.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	entranslations "github.com/go-playground/validator/v10/translations/en"
)

var usernameRegex = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

var (
	defaultValidator = validator.New()
	defaultEn        = en.New()
	uni              = ut.New(defaultEn, defaultEn)
	trans, _         = uni.GetTranslator(defaultEn.Locale())
)

// Violation describes one failed rule on one field.
type Violation struct {
	Field       string `json:"field"`
	Tag         string `json:"rule"`
	Description string `json:"message"`
}

// Error returns the description.
func (v Violation) Error() string {
	return v.Description
}

// StructError is returned when a struct fails validation.
type StructError struct {
	Violations []Violation
}

// Error joins the violation descriptions.
func (s *StructError) Error() string {
	sb := strings.Builder{}
	for _, v := range s.Violations {
		sb.WriteString(v.Error())
		sb.WriteString("\n")
	}
	return strings.TrimSpace(sb.String())
}

// NewError builds a StructError for a single field, for checks that cannot be expressed
// as struct tags.
func NewError(field, tag, description string) *StructError {
	return &StructError{Violations: []Violation{{Field: field, Tag: tag, Description: description}}}
}

// AsStructError unwraps err into a StructError, if it is one.
func AsStructError(err error) (*StructError, bool) {
	var se *StructError
	if errors.As(err, &se) {
		return se, true
	}
	return nil, false
}

// Struct validates s using its `validate` tags. Field names are reported using the
// `json` (or `form`) tag so callers can map them back to their input.
func Struct(s any) error {
	err := defaultValidator.Struct(s)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("validate: %w", err)
	}

	structError := &StructError{}
	for _, e := range verrs {
		structError.Violations = append(structError.Violations, Violation{
			Field:       e.Field(),
			Tag:         e.Tag(),
			Description: e.Translate(trans),
		})
	}
	return structError
}

func fieldName(fld reflect.StructField) string {
	for _, key := range []string{"json", "form"} {
		name := strings.SplitN(fld.Tag.Get(key), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name != "" {
			return name
		}
	}
	return fld.Name
}

func registerTranslation(tag, msg string) error {
	return defaultValidator.RegisterTranslation(
		tag,
		trans,
		func(ut ut.Translator) error {
			return ut.Add(tag, msg, true)
		},
		func(ut ut.Translator, fe validator.FieldError) string {
			t, _ := ut.T(tag, fe.Field())
			return t
		},
	)
}

func init() {
	defaultValidator.RegisterTagNameFunc(fieldName)

	if err := entranslations.RegisterDefaultTranslations(defaultValidator, trans); err != nil {
		panic(fmt.Errorf("validation register default translations: %w", err))
	}

	if err := defaultValidator.RegisterValidation("username", func(level validator.FieldLevel) bool {
		return usernameRegex.MatchString(level.Field().String())
	}); err != nil {
		panic(fmt.Errorf("validation username: %w", err))
	}
	if err := registerTranslation(
		"username",
		"{0} can only contain alphanumeric characters, underscores, and hyphens",
	); err != nil {
		panic(fmt.Errorf("validation username: %w", err))
	}

	if err := defaultValidator.RegisterValidation("access_type", func(level validator.FieldLevel) bool {
		switch strings.ToLower(strings.TrimSpace(level.Field().String())) {
		case "none", "view", "edit":
			return true
		}
		return false
	}); err != nil {
		panic(fmt.Errorf("validation access_type: %w", err))
	}
	if err := registerTranslation("access_type", "{0} must be one of none, view or edit"); err != nil {
		panic(fmt.Errorf("validation access_type: %w", err))
	}
}
