package accounts

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	passwordvalidator "github.com/wagslane/go-password-validator"
)

var walletCeiling = decimal.New(1, 10)

// maxPasswordBytes is the bcrypt input limit.
const maxPasswordBytes = 72

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// collect runs struct validation and folds failures into a ValidationError.
func collect(v *validator.Validate, payload any) *ValidationError {
	verr := &ValidationError{}
	err := v.Struct(payload)
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) {
		for _, fe := range fieldErrs {
			verr.add(fe.Field(), message(fe))
		}
	}
	return verr
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "This field is required."
	case "email":
		return "Enter a valid email address."
	case "max":
		return fmt.Sprintf("Ensure this field has no more than %s characters.", fe.Param())
	case "min":
		return "This field may not be blank."
	case "datetime":
		return "Date has wrong format. Use one of these formats instead: YYYY-MM-DD."
	default:
		return "Invalid value."
	}
}

func checkWallet(verr *ValidationError, w decimal.Decimal) {
	switch {
	case w.IsNegative():
		verr.add("wallet", "Ensure this value is greater than or equal to 0.")
	case !w.Equal(w.Truncate(2)):
		verr.add("wallet", "Ensure that there are no more than 2 decimal places.")
	case w.GreaterThanOrEqual(walletCeiling):
		verr.add("wallet", "Ensure that there are no more than 12 digits in total.")
	}
}

func checkPassword(verr *ValidationError, password string, minEntropy float64) {
	if len(password) > maxPasswordBytes {
		verr.add("password", fmt.Sprintf("Ensure this field has no more than %d bytes.", maxPasswordBytes))
		return
	}
	if minEntropy <= 0 || password == "" {
		return
	}
	if err := passwordvalidator.Validate(password, minEntropy); err != nil {
		verr.add("password", err.Error())
	}
}
