package validators

import (
	"errors"
	"time"
)

// ValidateWindow checks a half-open [start, end) booking window.
func ValidateWindow(start, end time.Time) error {
	if start.IsZero() || end.IsZero() {
		return errors.New("start_time and end_time are required")
	}
	if !end.After(start) {
		return errors.New("end_time must be after start_time")
	}
	return nil
}
