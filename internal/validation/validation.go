// Package validation holds the shared validator with the storefront's form rules.
package validation

import (
	"reflect"
	"regexp"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"
)

var (
	validate = newValidator()

	expiryPattern = regexp.MustCompile(`^(0[1-9]|1[0-2])/\d{2}$`)
)

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// errors name fields by their json keys
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return f.Name
		}
		return name
	})
	// notblank rejects whitespace-only strings that required lets through
	_ = v.RegisterValidation("notblank", validators.NotBlank)
	_ = v.RegisterValidation("phone", validatePhone)
	_ = v.RegisterValidation("cardnumber", validateCardNumber)
	_ = v.RegisterValidation("expiry", validateExpiry)
	_ = v.RegisterValidation("cvv", validateCVV)
	return v
}

// Struct validates v against its validate tags
func Struct(v interface{}) error {
	return validate.Struct(v)
}

// Var validates a single value against a tag list
func Var(field interface{}, tag string) error {
	return validate.Var(field, tag)
}

func digits(s string) string {
	var b strings.Builder
	for _, r := range s {
		if unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// phone: at least 10 digits, separators allowed
func validatePhone(fl validator.FieldLevel) bool {
	return len(digits(fl.Field().String())) >= 10
}

// The card rules accept an empty value; pair them with required_if.

// cardnumber: exactly 16 digits once spaces are removed
func validateCardNumber(fl validator.FieldLevel) bool {
	raw := strings.ReplaceAll(fl.Field().String(), " ", "")
	return raw == "" || (len(raw) == 16 && digits(raw) == raw)
}

// expiry: MM/YY
func validateExpiry(fl validator.FieldLevel) bool {
	s := fl.Field().String()
	return s == "" || expiryPattern.MatchString(s)
}

func validateCVV(fl validator.FieldLevel) bool {
	s := fl.Field().String()
	return s == "" || (len(s) == 3 && digits(s) == s)
}
