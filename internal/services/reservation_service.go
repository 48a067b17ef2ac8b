package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"parkhub/internal/models"
	"parkhub/internal/repositories/interfaces"
	"parkhub/internal/utils"
	"parkhub/internal/validators"
	"parkhub/pkg/logger"
	"parkhub/pkg/sms"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type ReservationService interface {
	CreateReservation(ctx context.Context, userID primitive.ObjectID, req *CreateReservationRequest) (*models.Reservation, error)
	UpdateReservation(ctx context.Context, userID, id primitive.ObjectID, req *UpdateReservationRequest) (*models.Reservation, error)
	CancelReservation(ctx context.Context, userID, id primitive.ObjectID) (*models.Reservation, error)
	GetReservation(ctx context.Context, userID, id primitive.ObjectID, isAdmin bool) (*models.Reservation, error)
	ListUserReservations(ctx context.Context, userID primitive.ObjectID, params *utils.PaginationParams) ([]*models.Reservation, int64, error)
	ListLotReservations(ctx context.Context, lotID primitive.ObjectID, params *utils.PaginationParams) ([]*models.Reservation, int64, error)
}

type CreateReservationRequest struct {
	VehicleID    string    `json:"vehicle_id" binding:"required"`
	ParkingLotID string    `json:"parking_lot_id" binding:"required"`
	StartTime    time.Time `json:"start_time" binding:"required"`
	EndTime      time.Time `json:"end_time" binding:"required"`
	DiscountCode string    `json:"discount_code"`
}

type UpdateReservationRequest struct {
	StartTime *time.Time `json:"start_time"`
	EndTime   *time.Time `json:"end_time"`
}

type reservationService struct {
	reservationRepo interfaces.ReservationRepository
	vehicleRepo     interfaces.VehicleRepository
	lotRepo         interfaces.ParkingLotRepository
	userRepo        interfaces.UserRepository
	discounts       DiscountService
	pricing         PricingService
	smsProvider     sms.Provider
	logger          *logger.Logger
}

func NewReservationService(
	reservationRepo interfaces.ReservationRepository,
	vehicleRepo interfaces.VehicleRepository,
	lotRepo interfaces.ParkingLotRepository,
	userRepo interfaces.UserRepository,
	discounts DiscountService,
	pricing PricingService,
	smsProvider sms.Provider,
	logger *logger.Logger,
) ReservationService {
	return &reservationService{
		reservationRepo: reservationRepo,
		vehicleRepo:     vehicleRepo,
		lotRepo:         lotRepo,
		userRepo:        userRepo,
		discounts:       discounts,
		pricing:         pricing,
		smsProvider:     smsProvider,
		logger:          logger,
	}
}

// CreateReservation runs the booking pipeline: validate the window, check
// vehicle ownership and lot availability, reject overlapping bookings,
// evaluate the discount code, price the stay, persist and record discount
// usage. The SMS confirmation at the end is best effort.
func (s *reservationService) CreateReservation(ctx context.Context, userID primitive.ObjectID, req *CreateReservationRequest) (*models.Reservation, error) {
	if err := validators.ValidateWindow(req.StartTime, req.EndTime); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	vehicleID, err := primitive.ObjectIDFromHex(req.VehicleID)
	if err != nil {
		return nil, fmt.Errorf("%w: vehicle_id is not a valid id", ErrInvalidInput)
	}
	lotID, err := primitive.ObjectIDFromHex(req.ParkingLotID)
	if err != nil {
		return nil, fmt.Errorf("%w: parking_lot_id is not a valid id", ErrInvalidInput)
	}

	vehicle, err := s.vehicleRepo.GetByID(ctx, vehicleID)
	if err != nil {
		if errors.Is(err, interfaces.ErrNotFound) {
			return nil, fmt.Errorf("vehicle %s: %w", req.VehicleID, interfaces.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to load vehicle: %w", err)
	}
	if vehicle.UserID != userID {
		return nil, ErrVehicleOwnership
	}

	lot, err := s.lotRepo.GetByID(ctx, lotID)
	if err != nil {
		if errors.Is(err, interfaces.ErrNotFound) {
			return nil, fmt.Errorf("parking lot %s: %w", req.ParkingLotID, interfaces.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to load parking lot: %w", err)
	}
	if !lot.IsActive {
		return nil, fmt.Errorf("%w: parking lot is not active", ErrInvalidInput)
	}

	overlapping, err := s.reservationRepo.FindOverlapping(ctx, vehicleID, req.StartTime, req.EndTime)
	if err != nil {
		return nil, fmt.Errorf("failed to check for conflicting reservations: %w", err)
	}
	if len(overlapping) > 0 {
		return nil, ErrBookingConflict
	}

	var discount *models.Discount
	if req.DiscountCode != "" {
		validation, err := s.discounts.ValidateDiscountCode(ctx, req.DiscountCode, userID, lotID, req.StartTime, req.EndTime)
		if err != nil {
			return nil, err
		}
		if !validation.Valid {
			return nil, fmt.Errorf("%w: %s", ErrInvalidDiscount, validation.Reason)
		}
		discount = validation.Discount
	}

	breakdown := s.pricing.CalculatePriceWithDiscount(lot, req.StartTime, req.EndTime, discount)

	reservation := &models.Reservation{
		ReservationNumber: generateReservationNumber(),
		UserID:            userID,
		VehicleID:         vehicleID,
		ParkingLotID:      lotID,
		StartTime:         req.StartTime,
		EndTime:           req.EndTime,
		Status:            models.ReservationStatusConfirmed,
		OriginalCost:      breakdown.OriginalCost,
		DiscountAmount:    breakdown.DiscountAmount,
		Cost:              breakdown.Cost,
		BilledHours:       breakdown.BilledHours,
		BilledDays:        breakdown.BilledDays,
	}
	if discount != nil {
		reservation.DiscountCode = discount.Code
	}

	if err := s.reservationRepo.Create(ctx, reservation); err != nil {
		return nil, fmt.Errorf("failed to create reservation: %w", err)
	}

	if discount != nil {
		if err := s.discounts.RecordUsage(ctx, discount, reservation, breakdown); err != nil {
			// A concurrent redemption can take the last usage slot between
			// validation and recording. The reservation is rolled back so
			// the caller can retry without the code.
			if cancelErr := s.reservationRepo.UpdateStatus(ctx, reservation.ID, models.ReservationStatusCancelled); cancelErr != nil {
				s.logger.WithError(cancelErr).WithReservationID(reservation.ID).
					Error("failed to roll back reservation after usage recording failure")
			}
			if errors.Is(err, interfaces.ErrUsageLimitExceeded) {
				return nil, fmt.Errorf("%w: Discount code has reached maximum usage limit.", ErrInvalidDiscount)
			}
			return nil, fmt.Errorf("failed to record discount usage: %w", err)
		}
	}

	s.logger.LogReservationEvent(reservation.ID, "reservation_created", map[string]interface{}{
		"user_id":         userID.Hex(),
		"parking_lot_id":  lotID.Hex(),
		"cost":            reservation.Cost,
		"discount_code":   reservation.DiscountCode,
		"discount_amount": reservation.DiscountAmount,
	})

	s.sendConfirmationSMS(ctx, userID, reservation, lot)

	return reservation, nil
}

// UpdateReservation changes the window of a confirmed reservation and
// reprices it. An attached discount is re-validated against the new
// window; if it no longer qualifies the update is rejected rather than
// silently dropping the discount.
func (s *reservationService) UpdateReservation(ctx context.Context, userID, id primitive.ObjectID, req *UpdateReservationRequest) (*models.Reservation, error) {
	reservation, err := s.reservationRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if reservation.UserID != userID {
		return nil, interfaces.ErrNotFound
	}
	if reservation.Status != models.ReservationStatusConfirmed {
		return nil, ErrReservationClosed
	}

	start := reservation.StartTime
	end := reservation.EndTime
	if req.StartTime != nil {
		start = *req.StartTime
	}
	if req.EndTime != nil {
		end = *req.EndTime
	}
	if err := validators.ValidateWindow(start, end); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	overlapping, err := s.reservationRepo.FindOverlapping(ctx, reservation.VehicleID, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to check for conflicting reservations: %w", err)
	}
	for _, other := range overlapping {
		if other.ID != reservation.ID {
			return nil, ErrBookingConflict
		}
	}

	lot, err := s.lotRepo.GetByID(ctx, reservation.ParkingLotID)
	if err != nil {
		return nil, fmt.Errorf("failed to load parking lot: %w", err)
	}

	var discount *models.Discount
	if reservation.DiscountCode != "" {
		validation, err := s.discounts.ValidateDiscountCode(ctx, reservation.DiscountCode, userID, reservation.ParkingLotID, start, end)
		if err != nil {
			return nil, err
		}
		if !validation.Valid {
			return nil, fmt.Errorf("%w: %s", ErrInvalidDiscount, validation.Reason)
		}
		discount = validation.Discount
	}

	breakdown := s.pricing.CalculatePriceWithDiscount(lot, start, end, discount)

	updates := map[string]interface{}{
		"start_time":      start,
		"end_time":        end,
		"original_cost":   breakdown.OriginalCost,
		"discount_amount": breakdown.DiscountAmount,
		"cost":            breakdown.Cost,
		"billed_hours":    breakdown.BilledHours,
		"billed_days":     breakdown.BilledDays,
	}
	if err := s.reservationRepo.Update(ctx, id, updates); err != nil {
		return nil, fmt.Errorf("failed to update reservation: %w", err)
	}

	s.logger.LogReservationEvent(id, "reservation_updated", map[string]interface{}{
		"start_time": start,
		"end_time":   end,
		"cost":       breakdown.Cost,
	})

	return s.reservationRepo.GetByID(ctx, id)
}

// CancelReservation cancels a confirmed reservation. A reservation can be
// cancelled exactly once, and cancellation never refunds discount usage.
func (s *reservationService) CancelReservation(ctx context.Context, userID, id primitive.ObjectID) (*models.Reservation, error) {
	reservation, err := s.reservationRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if reservation.UserID != userID {
		return nil, interfaces.ErrNotFound
	}
	if reservation.Status == models.ReservationStatusCancelled {
		return nil, ErrReservationClosed
	}

	now := time.Now()
	updates := map[string]interface{}{
		"status":       models.ReservationStatusCancelled,
		"cancelled_at": now,
	}
	if err := s.reservationRepo.Update(ctx, id, updates); err != nil {
		return nil, fmt.Errorf("failed to cancel reservation: %w", err)
	}

	s.logger.LogReservationEvent(id, "reservation_cancelled", map[string]interface{}{
		"user_id": userID.Hex(),
	})

	reservation.Status = models.ReservationStatusCancelled
	reservation.CancelledAt = &now
	return reservation, nil
}

func (s *reservationService) GetReservation(ctx context.Context, userID, id primitive.ObjectID, isAdmin bool) (*models.Reservation, error) {
	reservation, err := s.reservationRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !isAdmin && reservation.UserID != userID {
		return nil, interfaces.ErrNotFound
	}
	return reservation, nil
}

func (s *reservationService) ListUserReservations(ctx context.Context, userID primitive.ObjectID, params *utils.PaginationParams) ([]*models.Reservation, int64, error) {
	return s.reservationRepo.ListByUser(ctx, userID, params)
}

func (s *reservationService) ListLotReservations(ctx context.Context, lotID primitive.ObjectID, params *utils.PaginationParams) ([]*models.Reservation, int64, error) {
	return s.reservationRepo.ListByParkingLot(ctx, lotID, params)
}

func (s *reservationService) sendConfirmationSMS(ctx context.Context, userID primitive.ObjectID, reservation *models.Reservation, lot *models.ParkingLot) {
	if s.smsProvider == nil {
		return
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil || user.Phone == "" {
		return
	}

	message := fmt.Sprintf("Your parking reservation %s at %s is confirmed for %s. Total: %s",
		reservation.ReservationNumber,
		lot.Name,
		reservation.StartTime.Format("Jan 2 15:04"),
		utils.FormatCurrency(reservation.Cost, "USD"))

	if _, err := s.smsProvider.SendSMS(ctx, &sms.Request{To: user.Phone, Message: message}); err != nil {
		s.logger.WithError(err).WithReservationID(reservation.ID).
			Warn("failed to send reservation confirmation SMS")
	}
}

func generateReservationNumber() string {
	return "RES-" + strings.ToUpper(strings.ReplaceAll(uuid.New().String(), "-", "")[:10])
}
