// Package validate validates structs by their "validate" tags and reports
// the failures in plain English.
package validate

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
)

var (
	v = validator.New(validator.WithRequiredStructEnabled())
	// ErrTranslations is the English translator for validation errors.
	ErrTranslations ut.Translator
)

func init() {
	enLocale := en.New()
	uni := ut.New(enLocale, enLocale)
	ErrTranslations, _ = uni.GetTranslator("en")
	if err := en_translations.RegisterDefaultTranslations(v, ErrTranslations); err != nil {
		panic(err)
	}
	v.RegisterTagNameFunc(fieldName)
}

// fieldName reports the field by its json or toml name, so that messages
// refer to the names the user typed.
func fieldName(fld reflect.StructField) string {
	for _, tag := range []string{"json", "toml"} {
		name, _, _ := strings.Cut(fld.Tag.Get(tag), ",")
		if name == "-" {
			return ""
		}
		if name != "" {
			return name
		}
	}
	return fld.Name
}

// Error is the validation failure.
type Error struct {
	Errs validator.ValidationErrors
}

func (e *Error) Error() string {
	return strings.Join(e.Messages(), "; ")
}

// Messages returns one translated message per failed field.
func (e *Error) Messages() []string {
	msgs := make([]string, 0, len(e.Errs))
	for _, fe := range e.Errs {
		msgs = append(msgs, fe.Translate(ErrTranslations))
	}
	return msgs
}

// Struct validates s.  Field failures are returned as *Error.
func Struct(s any) error {
	err := v.Struct(s)
	if err == nil {
		return nil
	}
	var vErr validator.ValidationErrors
	if errors.As(err, &vErr) {
		return &Error{Errs: vErr}
	}
	return err
}
