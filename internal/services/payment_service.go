package services

import (
	"context"
	"fmt"

	"parkhub/internal/models"
	"parkhub/internal/repositories/interfaces"
	"parkhub/internal/utils"
	"parkhub/pkg/logger"
	"parkhub/pkg/payment"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type PaymentService interface {
	ChargeReservation(ctx context.Context, userID primitive.ObjectID, req *ChargeReservationRequest) (*models.Payment, error)
	RefundPayment(ctx context.Context, id primitive.ObjectID, reason string) (*models.Payment, error)
	GetPayment(ctx context.Context, id primitive.ObjectID) (*models.Payment, error)
	ListUserPayments(ctx context.Context, userID primitive.ObjectID, params *utils.PaginationParams) ([]*models.Payment, int64, error)
	GetBillingSummary(ctx context.Context, userID primitive.ObjectID) (map[string]interface{}, error)
}

type ChargeReservationRequest struct {
	ReservationID   string `json:"reservation_id" binding:"required"`
	PaymentMethodID string `json:"payment_method_id" binding:"required"`
	Currency        string `json:"currency"`
	Provider        string `json:"provider"`
}

type paymentService struct {
	paymentRepo     interfaces.PaymentRepository
	reservationRepo interfaces.ReservationRepository
	providers       map[models.PaymentProvider]payment.Provider
	defaultProvider models.PaymentProvider
	logger          *logger.Logger
}

func NewPaymentService(
	paymentRepo interfaces.PaymentRepository,
	reservationRepo interfaces.ReservationRepository,
	providers map[models.PaymentProvider]payment.Provider,
	defaultProvider models.PaymentProvider,
	logger *logger.Logger,
) PaymentService {
	return &paymentService{
		paymentRepo:     paymentRepo,
		reservationRepo: reservationRepo,
		providers:       providers,
		defaultProvider: defaultProvider,
		logger:          logger,
	}
}

// ChargeReservation charges the reservation's final cost, which already
// has any discount applied. A zero-cost reservation (grace period, full
// discount) completes without touching the gateway.
func (s *paymentService) ChargeReservation(ctx context.Context, userID primitive.ObjectID, req *ChargeReservationRequest) (*models.Payment, error) {
	reservationID, err := primitive.ObjectIDFromHex(req.ReservationID)
	if err != nil {
		return nil, fmt.Errorf("%w: reservation_id is not a valid id", ErrInvalidInput)
	}

	reservation, err := s.reservationRepo.GetByID(ctx, reservationID)
	if err != nil {
		return nil, err
	}
	if reservation.UserID != userID {
		return nil, interfaces.ErrNotFound
	}
	if reservation.Status != models.ReservationStatusConfirmed {
		return nil, ErrReservationClosed
	}

	if existing, err := s.paymentRepo.GetByReservation(ctx, reservationID); err == nil &&
		existing.Status == models.PaymentStatusCompleted {
		return nil, fmt.Errorf("%w: reservation already paid", interfaces.ErrDuplicate)
	}

	currency := req.Currency
	if currency == "" {
		currency = "USD"
	}

	providerName := s.defaultProvider
	if req.Provider != "" {
		providerName = models.PaymentProvider(req.Provider)
	}
	provider, ok := s.providers[providerName]
	if !ok {
		return nil, fmt.Errorf("%w: unknown payment provider %q", ErrInvalidInput, providerName)
	}

	pmt := &models.Payment{
		UserID:        userID,
		ReservationID: reservationID,
		Amount:        reservation.Cost,
		Currency:      currency,
		Provider:      providerName,
		Status:        models.PaymentStatusPending,
	}
	if err := s.paymentRepo.Create(ctx, pmt); err != nil {
		return nil, fmt.Errorf("failed to create payment: %w", err)
	}

	if reservation.Cost == 0 {
		if err := s.paymentRepo.Update(ctx, pmt.ID, map[string]interface{}{
			"status": models.PaymentStatusCompleted,
		}); err != nil {
			return nil, fmt.Errorf("failed to complete payment: %w", err)
		}
		pmt.Status = models.PaymentStatusCompleted
		return pmt, nil
	}

	charge, err := provider.ProcessPayment(ctx, &payment.ChargeRequest{
		PaymentMethodID: req.PaymentMethodID,
		Amount:          reservation.Cost,
		Currency:        currency,
		Description:     fmt.Sprintf("Parking reservation %s", reservation.ReservationNumber),
		Metadata: map[string]interface{}{
			"reservation_id": reservationID.Hex(),
			"user_id":        userID.Hex(),
		},
	})
	if err != nil {
		if updateErr := s.paymentRepo.Update(ctx, pmt.ID, map[string]interface{}{
			"status":         models.PaymentStatusFailed,
			"failure_reason": err.Error(),
		}); updateErr != nil {
			s.logger.WithError(updateErr).Error("failed to mark payment as failed")
		}
		return nil, fmt.Errorf("payment failed: %w", err)
	}

	if err := s.paymentRepo.Update(ctx, pmt.ID, map[string]interface{}{
		"status":         models.PaymentStatusCompleted,
		"transaction_id": charge.TransactionID,
	}); err != nil {
		return nil, fmt.Errorf("failed to complete payment: %w", err)
	}

	pmt.Status = models.PaymentStatusCompleted
	pmt.TransactionID = charge.TransactionID

	s.logger.LogPaymentEvent(pmt.ID, "payment_completed", pmt.Amount, pmt.Currency)

	return pmt, nil
}

func (s *paymentService) RefundPayment(ctx context.Context, id primitive.ObjectID, reason string) (*models.Payment, error) {
	pmt, err := s.paymentRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if pmt.Status != models.PaymentStatusCompleted {
		return nil, fmt.Errorf("%w: only completed payments can be refunded", ErrInvalidInput)
	}

	if pmt.TransactionID != "" {
		provider, ok := s.providers[pmt.Provider]
		if !ok {
			return nil, fmt.Errorf("%w: unknown payment provider %q", ErrInvalidInput, pmt.Provider)
		}
		if _, err := provider.RefundPayment(ctx, &payment.RefundRequest{
			TransactionID: pmt.TransactionID,
			Amount:        pmt.Amount,
			Reason:        reason,
		}); err != nil {
			return nil, fmt.Errorf("refund failed: %w", err)
		}
	}

	if err := s.paymentRepo.Update(ctx, id, map[string]interface{}{
		"status": models.PaymentStatusRefunded,
	}); err != nil {
		return nil, fmt.Errorf("failed to mark payment refunded: %w", err)
	}

	pmt.Status = models.PaymentStatusRefunded

	s.logger.LogPaymentEvent(pmt.ID, "payment_refunded", pmt.Amount, pmt.Currency)

	return pmt, nil
}

func (s *paymentService) GetPayment(ctx context.Context, id primitive.ObjectID) (*models.Payment, error) {
	return s.paymentRepo.GetByID(ctx, id)
}

func (s *paymentService) ListUserPayments(ctx context.Context, userID primitive.ObjectID, params *utils.PaginationParams) ([]*models.Payment, int64, error) {
	return s.paymentRepo.ListByUser(ctx, userID, params)
}

func (s *paymentService) GetBillingSummary(ctx context.Context, userID primitive.ObjectID) (map[string]interface{}, error) {
	return s.reservationRepo.SumCostsByUser(ctx, userID)
}
