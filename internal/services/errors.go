package services

import "errors"

// Sentinel errors for failures that originate in the service layer.
// Repository sentinels (interfaces.ErrNotFound and friends) pass through
// untouched so handlers can match either layer with errors.Is.
var (
	ErrInvalidInput       = errors.New("invalid input")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrReservationClosed  = errors.New("reservation is not open")
	ErrBookingConflict    = errors.New("vehicle already booked for this window")
	ErrInvalidDiscount    = errors.New("discount code is not applicable")
	ErrVehicleOwnership   = errors.New("vehicle does not belong to user")
)
