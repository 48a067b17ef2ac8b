package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"parkhub/internal/models"
	"parkhub/internal/repositories/interfaces"
	"parkhub/internal/utils"
	"parkhub/pkg/cache"
	"parkhub/pkg/logger"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// SessionService tracks vehicles physically inside a lot. Walk-ins are
// billed on exit with the same tariff model reservations use; a session
// opened against a reservation is already paid and exits free.
type SessionService interface {
	StartSession(ctx context.Context, req *StartSessionRequest) (*models.Session, error)
	EndSession(ctx context.Context, id primitive.ObjectID) (*models.Session, error)
	GetSession(ctx context.Context, id primitive.ObjectID) (*models.Session, error)
	ListLotSessions(ctx context.Context, lotID primitive.ObjectID, params *utils.PaginationParams) ([]*models.Session, int64, error)
	GetLotOccupancy(ctx context.Context, lotID primitive.ObjectID) (*OccupancyReport, error)
}

type StartSessionRequest struct {
	VehicleID     string  `json:"vehicle_id" binding:"required"`
	ParkingLotID  string  `json:"parking_lot_id" binding:"required"`
	ReservationID *string `json:"reservation_id"`
}

type OccupancyReport struct {
	ParkingLotID string `json:"parking_lot_id"`
	Capacity     int    `json:"capacity"`
	Occupied     int64  `json:"occupied"`
	Available    int64  `json:"available"`
}

type sessionService struct {
	sessionRepo     interfaces.SessionRepository
	reservationRepo interfaces.ReservationRepository
	lotRepo         interfaces.ParkingLotRepository
	pricing         PricingService
	cache           *cache.RedisCache
	logger          *logger.Logger
}

func NewSessionService(
	sessionRepo interfaces.SessionRepository,
	reservationRepo interfaces.ReservationRepository,
	lotRepo interfaces.ParkingLotRepository,
	pricing PricingService,
	cache *cache.RedisCache,
	logger *logger.Logger,
) SessionService {
	return &sessionService{
		sessionRepo:     sessionRepo,
		reservationRepo: reservationRepo,
		lotRepo:         lotRepo,
		pricing:         pricing,
		cache:           cache,
		logger:          logger,
	}
}

func occupancyKey(lotID primitive.ObjectID) string {
	return "occupancy:" + lotID.Hex()
}

func (s *sessionService) StartSession(ctx context.Context, req *StartSessionRequest) (*models.Session, error) {
	vehicleID, err := primitive.ObjectIDFromHex(req.VehicleID)
	if err != nil {
		return nil, fmt.Errorf("%w: vehicle_id is not a valid id", ErrInvalidInput)
	}
	lotID, err := primitive.ObjectIDFromHex(req.ParkingLotID)
	if err != nil {
		return nil, fmt.Errorf("%w: parking_lot_id is not a valid id", ErrInvalidInput)
	}

	lot, err := s.lotRepo.GetByID(ctx, lotID)
	if err != nil {
		return nil, err
	}
	if !lot.IsActive {
		return nil, fmt.Errorf("%w: parking lot is not active", ErrInvalidInput)
	}

	if _, err := s.sessionRepo.GetActiveByVehicle(ctx, vehicleID); err == nil {
		return nil, fmt.Errorf("%w: vehicle already has an active session", ErrInvalidInput)
	} else if !errors.Is(err, interfaces.ErrNotFound) {
		return nil, fmt.Errorf("failed to check active session: %w", err)
	}

	active, err := s.sessionRepo.CountActiveByParkingLot(ctx, lotID)
	if err != nil {
		return nil, fmt.Errorf("failed to count active sessions: %w", err)
	}
	if active >= int64(lot.Capacity) {
		return nil, fmt.Errorf("%w: parking lot is full", ErrInvalidInput)
	}

	session := &models.Session{
		VehicleID:    vehicleID,
		ParkingLotID: lotID,
		Status:       models.SessionStatusActive,
		EnteredAt:    time.Now(),
	}

	if req.ReservationID != nil && *req.ReservationID != "" {
		reservationID, err := primitive.ObjectIDFromHex(*req.ReservationID)
		if err != nil {
			return nil, fmt.Errorf("%w: reservation_id is not a valid id", ErrInvalidInput)
		}
		reservation, err := s.reservationRepo.GetByID(ctx, reservationID)
		if err != nil {
			return nil, err
		}
		if reservation.Status != models.ReservationStatusConfirmed {
			return nil, ErrReservationClosed
		}
		if reservation.VehicleID != vehicleID {
			return nil, fmt.Errorf("%w: reservation belongs to a different vehicle", ErrInvalidInput)
		}
		session.ReservationID = &reservationID
	}

	if err := s.sessionRepo.Create(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	// The Redis counter is advisory (dashboards, lot displays); Mongo is
	// the source of truth via CountActiveByParkingLot.
	if s.cache != nil {
		if _, err := s.cache.Increment(ctx, occupancyKey(lotID)); err != nil {
			s.logger.WithError(err).Warn("failed to increment occupancy counter")
		}
	}

	s.logger.WithFields(map[string]interface{}{
		"session_id":     session.ID.Hex(),
		"vehicle_id":     vehicleID.Hex(),
		"parking_lot_id": lotID.Hex(),
	}).Info("parking session started")

	return session, nil
}

func (s *sessionService) EndSession(ctx context.Context, id primitive.ObjectID) (*models.Session, error) {
	session, err := s.sessionRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if session.Status != models.SessionStatusActive {
		return nil, fmt.Errorf("%w: session already ended", ErrInvalidInput)
	}

	now := time.Now()
	var cost float64

	// Walk-ins pay the lot tariff for the actual stay. Sessions backed by
	// a reservation were priced at booking time.
	if session.ReservationID == nil {
		lot, err := s.lotRepo.GetByID(ctx, session.ParkingLotID)
		if err != nil {
			return nil, fmt.Errorf("failed to load parking lot: %w", err)
		}
		cost = s.pricing.CalculateTariff(lot, session.EnteredAt, now).Price
	}

	updates := map[string]interface{}{
		"status":    models.SessionStatusCompleted,
		"exited_at": now,
		"cost":      cost,
	}
	if err := s.sessionRepo.Update(ctx, id, updates); err != nil {
		return nil, fmt.Errorf("failed to end session: %w", err)
	}

	if s.cache != nil {
		if _, err := s.cache.Decrement(ctx, occupancyKey(session.ParkingLotID)); err != nil {
			s.logger.WithError(err).Warn("failed to decrement occupancy counter")
		}
	}

	s.logger.WithFields(map[string]interface{}{
		"session_id": id.Hex(),
		"cost":       cost,
	}).Info("parking session ended")

	session.Status = models.SessionStatusCompleted
	session.ExitedAt = &now
	session.Cost = cost
	return session, nil
}

func (s *sessionService) GetSession(ctx context.Context, id primitive.ObjectID) (*models.Session, error) {
	return s.sessionRepo.GetByID(ctx, id)
}

func (s *sessionService) ListLotSessions(ctx context.Context, lotID primitive.ObjectID, params *utils.PaginationParams) ([]*models.Session, int64, error) {
	return s.sessionRepo.ListByParkingLot(ctx, lotID, params)
}

func (s *sessionService) GetLotOccupancy(ctx context.Context, lotID primitive.ObjectID) (*OccupancyReport, error) {
	lot, err := s.lotRepo.GetByID(ctx, lotID)
	if err != nil {
		return nil, err
	}

	occupied, err := s.sessionRepo.CountActiveByParkingLot(ctx, lotID)
	if err != nil {
		return nil, fmt.Errorf("failed to count active sessions: %w", err)
	}

	available := int64(lot.Capacity) - occupied
	if available < 0 {
		available = 0
	}

	return &OccupancyReport{
		ParkingLotID: lotID.Hex(),
		Capacity:     lot.Capacity,
		Occupied:     occupied,
		Available:    available,
	}, nil
}
