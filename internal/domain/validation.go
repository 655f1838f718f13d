package domain

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// Report wire names ("razao_social") instead of Go field names.
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return f.Name
		}
		return name
	})
	return v
}

// fieldMessages maps a failed tag to the message shown next to the field.
var fieldMessages = map[string]string{
	"required": "campo obrigatório",
	"email":    "e-mail inválido",
	"min":      "valor abaixo do mínimo",
	"gt":       "valor inválido",
	"max":      "valor acima do máximo",
}

// validateStruct runs the struct tags and converts the first failure to ErrValidation.
func validateStruct(s any) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return &ErrValidation{Field: "payload", Message: err.Error()}
	}
	fe := verrs[0]
	msg, ok := fieldMessages[fe.Tag()]
	if !ok {
		msg = "valor inválido"
	}
	return &ErrValidation{Field: fe.Field(), Message: msg}
}
