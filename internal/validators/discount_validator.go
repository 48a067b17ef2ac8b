package validators

import (
	"errors"
	"time"

	"parkhub/internal/models"
)

// ValidateDiscountCode checks the shape of an already canonicalized code.
func ValidateDiscountCode(code string) error {
	if code == "" {
		return errors.New("discount code is required")
	}
	if !checkVar(code, "discount_code") {
		return errors.New("discount code may only contain letters, digits, underscores and dashes (max 64)")
	}
	return nil
}

func ValidateDiscountValue(t models.DiscountType, percentage, fixedAmount float64) error {
	switch t {
	case models.DiscountTypePercentage:
		if percentage <= 0 || percentage > 100 {
			return errors.New("percentage must be greater than 0 and at most 100")
		}
	case models.DiscountTypeFixedAmount:
		if fixedAmount <= 0 {
			return errors.New("fixed_amount must be greater than 0")
		}
	default:
		return errors.New("unknown discount type " + string(t))
	}
	return nil
}

func ValidateDiscountExpiry(validUntil time.Time) error {
	if !validUntil.After(time.Now()) {
		return errors.New("valid_until must be in the future")
	}
	return nil
}

func ValidateDurationBounds(min, max *time.Duration) error {
	if min != nil && *min < 0 {
		return errors.New("min_reservation_duration cannot be negative")
	}
	if max != nil && *max <= 0 {
		return errors.New("max_reservation_duration must be positive")
	}
	if min != nil && max != nil && *min > *max {
		return errors.New("min_reservation_duration cannot exceed max_reservation_duration")
	}
	return nil
}
