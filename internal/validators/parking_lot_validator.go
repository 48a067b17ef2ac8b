package validators

import "errors"

// ValidateLotConfig checks the numeric fields of a parking lot. Nil fields
// are treated as not being set and skipped, so the same check serves both
// creation and partial updates.
func ValidateLotConfig(capacity *int, tariff, dayTariff *float64) error {
	if capacity != nil && *capacity <= 0 {
		return errors.New("capacity must be positive")
	}
	if tariff != nil && *tariff <= 0 {
		return errors.New("tariff must be positive")
	}
	if dayTariff != nil && *dayTariff <= 0 {
		return errors.New("day_tariff must be positive")
	}
	return nil
}
