package orders

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Details is the shopper input of the details step.
type Details struct {
	Contact string `json:"contact" validate:"required"`
	ShippingAddress
}

type Payment struct {
	CardNumber string `json:"card_number" validate:"required"`
	HolderName string `json:"holder_name" validate:"required"`
	Expiration string `json:"expiration" validate:"required"`
	CVV        string `json:"cvv" validate:"required"`
}

// ValidationError names the required fields that were left empty.
type ValidationError struct {
	Message string   `json:"message"`
	Fields  []string `json:"fields"`
}

func (e *ValidationError) Error() string {
	return e.Message + ": " + strings.Join(e.Fields, ", ")
}

func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return f.Name
		}
		return name
	})
	return v
}

func check(msg string, v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return err
	}
	fields := make([]string, 0, len(ve))
	for _, fe := range ve {
		fields = append(fields, fe.Field())
	}
	return &ValidationError{Message: msg, Fields: fields}
}

func (d Details) Validate() error {
	return check("please fill in all required fields", d)
}

func (p Payment) Validate() error {
	return check("please fill in all payment fields", p)
}
