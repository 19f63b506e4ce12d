package config

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
)

var (
	validateOnce sync.Once
	validate     *validator.Validate
	translator   ut.Translator
	validateErr  error
)

func initValidator() {
	validate = validator.New(validator.WithRequiredStructEnabled())

	if err := validate.RegisterValidation("even", func(fl validator.FieldLevel) bool {
		return fl.Field().Int()%2 == 0
	}); err != nil {
		validateErr = err
		return
	}

	english := en.New()
	uni := ut.New(english, english)
	translator, _ = uni.GetTranslator("en")
	if err := en_translations.RegisterDefaultTranslations(validate, translator); err != nil {
		validateErr = err
		return
	}

	validateErr = validate.RegisterTranslation("even", translator,
		func(ut ut.Translator) error {
			return ut.Add("even", "{0} must be an even number", true)
		},
		func(ut ut.Translator, fe validator.FieldError) string {
			msg, _ := ut.T("even", fe.Field())
			return msg
		},
	)
}

// Validate checks every field constraint and reports all violations, sorted
func (c *Config) Validate() error {
	validateOnce.Do(initValidator)
	if validateErr != nil {
		return fmt.Errorf("validator setup: %w", validateErr)
	}

	err := validate.Struct(c)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}

	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fmt.Sprintf("%s: %s", fe.Namespace(), fe.Translate(translator)))
	}
	slices.Sort(msgs)
	return fmt.Errorf("%w: %s", ErrInvalid, strings.Join(msgs, "; "))
}
