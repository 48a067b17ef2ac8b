package validators

import (
	"errors"
	"strings"
)

func ValidateLicensePlate(plate string) error {
	if strings.TrimSpace(plate) == "" {
		return errors.New("license_plate is required")
	}
	if !checkVar(plate, "license_plate") {
		return errors.New("license plate must be 2 to 10 letters, digits, dashes or spaces")
	}
	return nil
}
