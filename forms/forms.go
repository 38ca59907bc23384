// Package forms validates the registration, login and recipe-submission forms and
// reports failures as per-field messages.
package forms

import (
	"errors"
	"reflect"
	"slices"
	"strings"

	"github.com/go-playground/validator/v10"
)

// ErrInvalid is matched by every FieldErrors value.
var ErrInvalid = errors.New("invalid form")

// FieldErrors maps a form field (its JSON name) to the message shown next to it.
type FieldErrors map[string]string

func (e FieldErrors) Error() string {
	fields := make([]string, 0, len(e))
	for f := range e {
		fields = append(fields, f)
	}
	slices.Sort(fields)

	var b strings.Builder
	b.WriteString("invalid form: ")
	for i, f := range fields {
		if i > 0 {
			b.WriteString("; ")
		}
		b.WriteString(f + ": " + e[f])
	}
	return b.String()
}

func (e FieldErrors) Unwrap() error { return ErrInvalid }

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	// notblank: string with at least one non-space character.
	_ = v.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})
	// anynotblank: []string with at least one non-blank element.
	_ = v.RegisterValidation("anynotblank", func(fl validator.FieldLevel) bool {
		f := fl.Field()
		for i := 0; i < f.Len(); i++ {
			if strings.TrimSpace(f.Index(i).String()) != "" {
				return true
			}
		}
		return false
	})
	return v
}

// check validates form and translates failures through messages, one per field.
// Fields without a message fall back to the validator's own text.
func check(form any, messages map[string]string) error {
	err := validate.Struct(form)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	out := FieldErrors{}
	for _, fe := range verrs {
		field := fe.Field()
		if _, seen := out[field]; seen {
			continue
		}
		if msg, ok := messages[field]; ok {
			out[field] = msg
			continue
		}
		out[field] = fe.Error()
	}
	return out
}
