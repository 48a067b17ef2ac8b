package utils

import "time"

// Application Constants
const (
	AppName    = "ParkHub"
	AppVersion = "1.0.0"

	// Default values
	DefaultCurrency = "USD"
	DefaultTimeZone = "UTC"

	// Pagination
	DefaultPageSize = 20
	MaxPageSize     = 100
	MinPageSize     = 1

	// Authentication
	JWTAccessTokenTTL  = 24 * time.Hour
	JWTRefreshTokenTTL = 7 * 24 * time.Hour
	PasswordMinLength  = 8
	PasswordMaxLength  = 128

	// Tariff Constants
	// Stays under ParkingGracePeriod are free of charge.
	ParkingGracePeriod = 180 * time.Second
	// Fallback daily cap when a lot has no day tariff configured.
	DefaultDayTariff = 999.0

	// Reservation Constants
	MaxReservationWindow = 31 * 24 * time.Hour

	// Response status
	StatusSuccess = "success"
	StatusError   = "error"
)

// API error codes (closed set; clients match on these, not on messages)
const (
	CodeValidationError = "VALIDATION_ERROR"
	CodeNotFound        = "NOT_FOUND"
	CodeConflict        = "CONFLICT"
	CodeUnauthorized    = "UNAUTHORIZED"
	CodeForbidden       = "FORBIDDEN"
	CodeBadRequest      = "BAD_REQUEST"
	CodeInternalError   = "INTERNAL_ERROR"
	CodeInvalidDiscount = "INVALID_DISCOUNT"
	CodeVehicleNotFound = "VEHICLE_NOT_FOUND"
)

// Common error messages
const (
	ErrValidationFailed = "Validation failed"
	ErrInternalServer   = "Internal server error"
	ErrUnauthorized     = "Unauthorized access"
	ErrForbidden        = "Access forbidden"
)
