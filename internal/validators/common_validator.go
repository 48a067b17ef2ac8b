package validators

import (
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate *validator.Validate

func init() {
	validate = validator.New()

	validate.RegisterValidation("discount_code", validateDiscountCode)
	validate.RegisterValidation("license_plate", validateLicensePlate)
}

var (
	discountCodeRegex = regexp.MustCompile(`^[A-Z0-9_\-]{1,64}$`)
	licensePlateRegex = regexp.MustCompile(`^[A-Z0-9\-\s]{2,10}$`)
)

func validateDiscountCode(fl validator.FieldLevel) bool {
	code := fl.Field().String()
	if code == "" {
		return true // let required handle empty values
	}
	return discountCodeRegex.MatchString(code)
}

func validateLicensePlate(fl validator.FieldLevel) bool {
	plate := fl.Field().String()
	if plate == "" {
		return true
	}
	return licensePlateRegex.MatchString(strings.ToUpper(plate))
}

// checkVar runs a single value through the shared validator instance.
func checkVar(value interface{}, tag string) bool {
	return validate.Var(value, tag) == nil
}
