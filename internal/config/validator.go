package config

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	enTranslations "github.com/go-playground/validator/v10/translations/en"
)

func newValidator() (*validator.Validate, ut.Translator, error) {
	validate := validator.New()

	enLocale := en.New()
	uni := ut.New(enLocale, enLocale)
	trans, _ := uni.GetTranslator("en")
	if err := enTranslations.RegisterDefaultTranslations(validate, trans); err != nil {
		return nil, nil, fmt.Errorf("failed to register default translations: %w", err)
	}

	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("mapstructure"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	if err := validate.RegisterValidation("ascending", isStrictlyAscending); err != nil {
		return nil, nil, fmt.Errorf("failed to register ascending validation: %w", err)
	}
	if err := validate.RegisterTranslation("ascending", trans, func(ut ut.Translator) error {
		return ut.Add("ascending", "{0} must be positive and strictly increasing", true)
	}, func(ut ut.Translator, fe validator.FieldError) string {
		t, _ := ut.T("ascending", strings.TrimPrefix(fe.Namespace(), "Config."))
		return t
	}); err != nil {
		return nil, nil, fmt.Errorf("failed to register ascending translation: %w", err)
	}

	return validate, trans, nil
}

// isStrictlyAscending accepts integer slices whose values are positive and strictly increasing.
func isStrictlyAscending(fl validator.FieldLevel) bool {
	field := fl.Field()
	if field.Kind() != reflect.Slice {
		return false
	}

	var previous int64
	for i := 0; i < field.Len(); i++ {
		elem := field.Index(i)
		switch elem.Kind() {
		case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		default:
			return false
		}
		value := elem.Int()
		if value <= previous {
			return false
		}
		previous = value
	}
	return true
}
