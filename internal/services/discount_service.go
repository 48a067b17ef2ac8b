package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"parkhub/internal/models"
	"parkhub/internal/repositories/interfaces"
	"parkhub/internal/repositories/mongodb"
	"parkhub/internal/utils"
	"parkhub/internal/validators"
	"parkhub/pkg/logger"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// DiscountService owns the discount code lifecycle: the admin CRUD
// surface, the eligibility evaluator and usage recording.
type DiscountService interface {
	CreateDiscount(ctx context.Context, req *CreateDiscountRequest, createdBy primitive.ObjectID) (*models.Discount, error)
	UpdateDiscount(ctx context.Context, id primitive.ObjectID, req *UpdateDiscountRequest) (*models.Discount, error)
	DeactivateDiscount(ctx context.Context, id primitive.ObjectID) error
	GetDiscount(ctx context.Context, id primitive.ObjectID) (*models.Discount, error)
	ListDiscounts(ctx context.Context, params *utils.PaginationParams, activeOnly bool) ([]*models.Discount, int64, error)
	ListUsages(ctx context.Context, discountID primitive.ObjectID, params *utils.PaginationParams) ([]*models.DiscountUsage, int64, error)
	GetUsageStats(ctx context.Context, discountID primitive.ObjectID) (map[string]interface{}, error)

	// ValidateDiscountCode runs the full eligibility evaluation for a
	// concrete reservation window. A failed check is not an error return:
	// the result carries Valid=false and a reason.
	ValidateDiscountCode(ctx context.Context, code string, userID primitive.ObjectID, parkingLotID primitive.ObjectID, start, end time.Time) (*DiscountValidation, error)

	// EstimateDiscount answers the user-facing "is this code any good"
	// question. No reservation window exists yet, so duration and parking
	// lot restrictions are skipped; the estimated amount is computed from
	// the caller-supplied amount and no usage is consumed.
	EstimateDiscount(ctx context.Context, code string, userID primitive.ObjectID, amount float64) (*DiscountEstimate, error)

	// RecordUsage appends a ledger row and increments the usage counter
	// atomically. Returns interfaces.ErrUsageLimitExceeded when a
	// concurrent redemption took the last slot.
	RecordUsage(ctx context.Context, discount *models.Discount, reservation *models.Reservation, breakdown *PriceBreakdown) error
}

type CreateDiscountRequest struct {
	Code                   string              `json:"code" binding:"required"`
	Description            string              `json:"description"`
	Type                   models.DiscountType `json:"type" binding:"required"`
	Percentage             float64             `json:"percentage"`
	FixedAmount            float64             `json:"fixed_amount"`
	ValidUntil             time.Time           `json:"valid_until" binding:"required"`
	MaxUsageCount          *int                `json:"max_usage_count"`
	UserID                 *string             `json:"user_id"`
	OrganizationID         *string             `json:"organization_id"`
	ParkingLotID           *string             `json:"parking_lot_id"`
	MinReservationDuration *time.Duration      `json:"min_reservation_duration"`
	MaxReservationDuration *time.Duration      `json:"max_reservation_duration"`
}

type UpdateDiscountRequest struct {
	Description            *string        `json:"description"`
	Percentage             *float64       `json:"percentage"`
	FixedAmount            *float64       `json:"fixed_amount"`
	ValidUntil             *time.Time     `json:"valid_until"`
	MaxUsageCount          *int           `json:"max_usage_count"`
	IsActive               *bool          `json:"is_active"`
	MinReservationDuration *time.Duration `json:"min_reservation_duration"`
	MaxReservationDuration *time.Duration `json:"max_reservation_duration"`
}

type DiscountValidation struct {
	Valid    bool             `json:"valid"`
	Reason   string           `json:"reason"`
	Discount *models.Discount `json:"discount,omitempty"`
}

type DiscountEstimate struct {
	Valid          bool             `json:"valid"`
	Reason         string           `json:"reason"`
	DiscountAmount float64          `json:"discount_amount"`
	Discount       *models.Discount `json:"discount,omitempty"`
}

type discountService struct {
	discountRepo interfaces.DiscountRepository
	userRepo     interfaces.UserRepository
	pricing      PricingService
	logger       *logger.Logger
}

func NewDiscountService(
	discountRepo interfaces.DiscountRepository,
	userRepo interfaces.UserRepository,
	pricing PricingService,
	logger *logger.Logger,
) DiscountService {
	return &discountService{
		discountRepo: discountRepo,
		userRepo:     userRepo,
		pricing:      pricing,
		logger:       logger,
	}
}

func (s *discountService) CreateDiscount(ctx context.Context, req *CreateDiscountRequest, createdBy primitive.ObjectID) (*models.Discount, error) {
	code := mongodb.CanonicalCode(req.Code)
	if err := validators.ValidateDiscountCode(code); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	if err := validators.ValidateDiscountValue(req.Type, req.Percentage, req.FixedAmount); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	if err := validators.ValidateDiscountExpiry(req.ValidUntil); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	if req.MaxUsageCount != nil && *req.MaxUsageCount <= 0 {
		return nil, fmt.Errorf("%w: max_usage_count must be positive", ErrInvalidInput)
	}
	if err := validators.ValidateDurationBounds(req.MinReservationDuration, req.MaxReservationDuration); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	discount := &models.Discount{
		Code:                   code,
		Description:            req.Description,
		Type:                   req.Type,
		Percentage:             req.Percentage,
		FixedAmount:            req.FixedAmount,
		ValidUntil:             req.ValidUntil,
		MaxUsageCount:          req.MaxUsageCount,
		CurrentUsageCount:      0,
		IsActive:               true,
		MinReservationDuration: req.MinReservationDuration,
		MaxReservationDuration: req.MaxReservationDuration,
		CreatedBy:              createdBy,
	}

	var err error
	if discount.UserID, err = parseOptionalObjectID(req.UserID, "user_id"); err != nil {
		return nil, err
	}
	if discount.OrganizationID, err = parseOptionalObjectID(req.OrganizationID, "organization_id"); err != nil {
		return nil, err
	}
	if discount.ParkingLotID, err = parseOptionalObjectID(req.ParkingLotID, "parking_lot_id"); err != nil {
		return nil, err
	}

	if err := s.discountRepo.Create(ctx, discount); err != nil {
		return nil, fmt.Errorf("failed to create discount: %w", err)
	}

	s.logger.LogDiscountEvent(discount.ID, discount.Code, "discount_created", map[string]interface{}{
		"type":       discount.Type,
		"created_by": createdBy.Hex(),
	})

	return discount, nil
}

func (s *discountService) UpdateDiscount(ctx context.Context, id primitive.ObjectID, req *UpdateDiscountRequest) (*models.Discount, error) {
	discount, err := s.discountRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	updates := make(map[string]interface{})
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if req.Percentage != nil {
		if discount.Type != models.DiscountTypePercentage {
			return nil, fmt.Errorf("%w: percentage only applies to percentage discounts", ErrInvalidInput)
		}
		if err := validators.ValidateDiscountValue(discount.Type, *req.Percentage, 0); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
		}
		updates["percentage"] = *req.Percentage
	}
	if req.FixedAmount != nil {
		if discount.Type != models.DiscountTypeFixedAmount {
			return nil, fmt.Errorf("%w: fixed_amount only applies to fixed amount discounts", ErrInvalidInput)
		}
		if err := validators.ValidateDiscountValue(discount.Type, 0, *req.FixedAmount); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
		}
		updates["fixed_amount"] = *req.FixedAmount
	}
	if req.ValidUntil != nil {
		if err := validators.ValidateDiscountExpiry(*req.ValidUntil); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
		}
		updates["valid_until"] = *req.ValidUntil
	}
	if req.MaxUsageCount != nil {
		if *req.MaxUsageCount <= 0 {
			return nil, fmt.Errorf("%w: max_usage_count must be positive", ErrInvalidInput)
		}
		updates["max_usage_count"] = *req.MaxUsageCount
	}
	if req.IsActive != nil {
		updates["is_active"] = *req.IsActive
	}
	if req.MinReservationDuration != nil || req.MaxReservationDuration != nil {
		min := discount.MinReservationDuration
		max := discount.MaxReservationDuration
		if req.MinReservationDuration != nil {
			min = req.MinReservationDuration
			updates["min_reservation_duration"] = *req.MinReservationDuration
		}
		if req.MaxReservationDuration != nil {
			max = req.MaxReservationDuration
			updates["max_reservation_duration"] = *req.MaxReservationDuration
		}
		if err := validators.ValidateDurationBounds(min, max); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
		}
	}

	if len(updates) == 0 {
		return discount, nil
	}

	if err := s.discountRepo.Update(ctx, id, updates); err != nil {
		return nil, fmt.Errorf("failed to update discount: %w", err)
	}

	return s.discountRepo.GetByID(ctx, id)
}

func (s *discountService) DeactivateDiscount(ctx context.Context, id primitive.ObjectID) error {
	if err := s.discountRepo.Deactivate(ctx, id); err != nil {
		return err
	}

	s.logger.LogDiscountEvent(id, "", "discount_deactivated", nil)

	return nil
}

func (s *discountService) GetDiscount(ctx context.Context, id primitive.ObjectID) (*models.Discount, error) {
	return s.discountRepo.GetByID(ctx, id)
}

func (s *discountService) ListDiscounts(ctx context.Context, params *utils.PaginationParams, activeOnly bool) ([]*models.Discount, int64, error) {
	if activeOnly {
		return s.discountRepo.ListActive(ctx, params)
	}
	return s.discountRepo.List(ctx, params)
}

func (s *discountService) ListUsages(ctx context.Context, discountID primitive.ObjectID, params *utils.PaginationParams) ([]*models.DiscountUsage, int64, error) {
	return s.discountRepo.ListUsages(ctx, discountID, params)
}

func (s *discountService) GetUsageStats(ctx context.Context, discountID primitive.ObjectID) (map[string]interface{}, error) {
	return s.discountRepo.GetUsageStats(ctx, discountID)
}

// redemption carries the context a restriction check may inspect. The
// parking lot and duration are optional: the estimate path has neither,
// and checks that need them are skipped.
type redemption struct {
	userID       primitive.ObjectID
	parkingLotID *primitive.ObjectID
	duration     *time.Duration
	now          time.Time
}

// restrictionCheck returns a human-readable reason when the discount is
// not redeemable, or "" when the check passes. Checks run in a fixed
// order and the first failure wins.
type restrictionCheck func(ctx context.Context, d *models.Discount, r *redemption) (string, error)

func (s *discountService) restrictionChecks() []restrictionCheck {
	return []restrictionCheck{
		s.checkExpiry,
		s.checkUsageLimit,
		s.checkUserScope,
		s.checkOrganizationScope,
		s.checkParkingLotScope,
		s.checkMinDuration,
		s.checkMaxDuration,
	}
}

func (s *discountService) checkExpiry(_ context.Context, d *models.Discount, r *redemption) (string, error) {
	if r.now.After(d.ValidUntil) {
		return "Discount code has expired.", nil
	}
	return "", nil
}

func (s *discountService) checkUsageLimit(_ context.Context, d *models.Discount, _ *redemption) (string, error) {
	if !d.HasUsageLeft() {
		return "Discount code has reached maximum usage limit.", nil
	}
	return "", nil
}

func (s *discountService) checkUserScope(_ context.Context, d *models.Discount, r *redemption) (string, error) {
	if d.UserID != nil && *d.UserID != r.userID {
		return "Discount code is not available for your account.", nil
	}
	return "", nil
}

func (s *discountService) checkOrganizationScope(ctx context.Context, d *models.Discount, r *redemption) (string, error) {
	if d.OrganizationID == nil {
		return "", nil
	}
	user, err := s.userRepo.GetByID(ctx, r.userID)
	if err != nil {
		if errors.Is(err, interfaces.ErrNotFound) {
			return "User not found.", nil
		}
		return "", fmt.Errorf("failed to load user for discount check: %w", err)
	}
	if user.OrganizationID == nil || *user.OrganizationID != *d.OrganizationID {
		return "Discount code is only available for specific organizations.", nil
	}
	return "", nil
}

func (s *discountService) checkParkingLotScope(_ context.Context, d *models.Discount, r *redemption) (string, error) {
	if d.ParkingLotID == nil || r.parkingLotID == nil {
		return "", nil
	}
	if *d.ParkingLotID != *r.parkingLotID {
		return "Discount code is not valid for this parking lot.", nil
	}
	return "", nil
}

func (s *discountService) checkMinDuration(_ context.Context, d *models.Discount, r *redemption) (string, error) {
	if d.MinReservationDuration == nil || r.duration == nil {
		return "", nil
	}
	if *r.duration < *d.MinReservationDuration {
		return fmt.Sprintf("Minimum reservation duration for this discount code is %g hours.", d.MinReservationDuration.Hours()), nil
	}
	return "", nil
}

func (s *discountService) checkMaxDuration(_ context.Context, d *models.Discount, r *redemption) (string, error) {
	if d.MaxReservationDuration == nil || r.duration == nil {
		return "", nil
	}
	if *r.duration > *d.MaxReservationDuration {
		return fmt.Sprintf("Maximum reservation duration for this discount code is %g hours.", d.MaxReservationDuration.Hours()), nil
	}
	return "", nil
}

func (s *discountService) evaluate(ctx context.Context, code string, r *redemption) (*DiscountValidation, error) {
	discount, err := s.discountRepo.GetActiveByCode(ctx, code)
	if err != nil {
		if errors.Is(err, interfaces.ErrNotFound) {
			return &DiscountValidation{Valid: false, Reason: "Discount code not found or inactive."}, nil
		}
		return nil, fmt.Errorf("failed to look up discount code: %w", err)
	}

	for _, check := range s.restrictionChecks() {
		reason, err := check(ctx, discount, r)
		if err != nil {
			return nil, err
		}
		if reason != "" {
			s.logger.LogDiscountEvent(discount.ID, discount.Code, "discount_rejected", map[string]interface{}{
				"user_id": r.userID.Hex(),
				"reason":  reason,
			})
			return &DiscountValidation{Valid: false, Reason: reason, Discount: discount}, nil
		}
	}

	return &DiscountValidation{Valid: true, Reason: "Discount code is valid.", Discount: discount}, nil
}

func (s *discountService) ValidateDiscountCode(ctx context.Context, code string, userID primitive.ObjectID, parkingLotID primitive.ObjectID, start, end time.Time) (*DiscountValidation, error) {
	duration := end.Sub(start)
	return s.evaluate(ctx, code, &redemption{
		userID:       userID,
		parkingLotID: &parkingLotID,
		duration:     &duration,
		now:          time.Now(),
	})
}

func (s *discountService) EstimateDiscount(ctx context.Context, code string, userID primitive.ObjectID, amount float64) (*DiscountEstimate, error) {
	validation, err := s.evaluate(ctx, code, &redemption{
		userID: userID,
		now:    time.Now(),
	})
	if err != nil {
		return nil, err
	}

	estimate := &DiscountEstimate{
		Valid:    validation.Valid,
		Reason:   validation.Reason,
		Discount: validation.Discount,
	}
	if validation.Valid && amount > 0 {
		estimate.DiscountAmount = s.pricing.CalculateDiscountAmount(validation.Discount, amount)
	}

	return estimate, nil
}

func (s *discountService) RecordUsage(ctx context.Context, discount *models.Discount, reservation *models.Reservation, breakdown *PriceBreakdown) error {
	usage := &models.DiscountUsage{
		DiscountID:     discount.ID,
		Code:           discount.Code,
		ReservationID:  reservation.ID,
		UserID:         reservation.UserID,
		OriginalAmount: breakdown.OriginalCost,
		DiscountAmount: breakdown.DiscountAmount,
		FinalAmount:    breakdown.Cost,
	}

	if err := s.discountRepo.RecordUsage(ctx, discount, usage); err != nil {
		return err
	}

	s.logger.LogDiscountEvent(discount.ID, discount.Code, "discount_redeemed", map[string]interface{}{
		"reservation_id":  reservation.ID.Hex(),
		"user_id":         reservation.UserID.Hex(),
		"discount_amount": breakdown.DiscountAmount,
	})

	return nil
}

func parseOptionalObjectID(s *string, field string) (*primitive.ObjectID, error) {
	if s == nil || *s == "" {
		return nil, nil
	}
	id, err := primitive.ObjectIDFromHex(*s)
	if err != nil {
		return nil, fmt.Errorf("%w: %s is not a valid id", ErrInvalidInput, field)
	}
	return &id, nil
}
