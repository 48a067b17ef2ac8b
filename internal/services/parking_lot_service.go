package services

import (
	"context"
	"fmt"

	"parkhub/internal/models"
	"parkhub/internal/repositories/interfaces"
	"parkhub/internal/utils"
	"parkhub/internal/validators"
	"parkhub/pkg/logger"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type ParkingLotService interface {
	CreateParkingLot(ctx context.Context, req *CreateParkingLotRequest) (*models.ParkingLot, error)
	GetParkingLot(ctx context.Context, id primitive.ObjectID) (*models.ParkingLot, error)
	UpdateParkingLot(ctx context.Context, id primitive.ObjectID, req *UpdateParkingLotRequest) (*models.ParkingLot, error)
	DeactivateParkingLot(ctx context.Context, id primitive.ObjectID) error
	ListParkingLots(ctx context.Context, params *utils.PaginationParams) ([]*models.ParkingLot, int64, error)
}

type CreateParkingLotRequest struct {
	Name           string   `json:"name" binding:"required"`
	Address        string   `json:"address"`
	Capacity       int      `json:"capacity" binding:"required"`
	Tariff         float64  `json:"tariff" binding:"required"`
	DayTariff      *float64 `json:"day_tariff"`
	OrganizationID *string  `json:"organization_id"`
}

type UpdateParkingLotRequest struct {
	Name      *string  `json:"name"`
	Address   *string  `json:"address"`
	Capacity  *int     `json:"capacity"`
	Tariff    *float64 `json:"tariff"`
	DayTariff *float64 `json:"day_tariff"`
	IsActive  *bool    `json:"is_active"`
}

type parkingLotService struct {
	lotRepo interfaces.ParkingLotRepository
	logger  *logger.Logger
}

func NewParkingLotService(lotRepo interfaces.ParkingLotRepository, logger *logger.Logger) ParkingLotService {
	return &parkingLotService{lotRepo: lotRepo, logger: logger}
}

func (s *parkingLotService) CreateParkingLot(ctx context.Context, req *CreateParkingLotRequest) (*models.ParkingLot, error) {
	if err := validators.ValidateLotConfig(&req.Capacity, &req.Tariff, req.DayTariff); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	lot := &models.ParkingLot{
		Name:      req.Name,
		Address:   req.Address,
		Capacity:  req.Capacity,
		Tariff:    req.Tariff,
		DayTariff: req.DayTariff,
		IsActive:  true,
	}

	var err error
	if lot.OrganizationID, err = parseOptionalObjectID(req.OrganizationID, "organization_id"); err != nil {
		return nil, err
	}

	if err := s.lotRepo.Create(ctx, lot); err != nil {
		return nil, fmt.Errorf("failed to create parking lot: %w", err)
	}

	s.logger.WithField("parking_lot_id", lot.ID.Hex()).Info("parking lot created")

	return lot, nil
}

func (s *parkingLotService) GetParkingLot(ctx context.Context, id primitive.ObjectID) (*models.ParkingLot, error) {
	return s.lotRepo.GetByID(ctx, id)
}

func (s *parkingLotService) UpdateParkingLot(ctx context.Context, id primitive.ObjectID, req *UpdateParkingLotRequest) (*models.ParkingLot, error) {
	if err := validators.ValidateLotConfig(req.Capacity, req.Tariff, req.DayTariff); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	updates := make(map[string]interface{})
	if req.Name != nil {
		updates["name"] = *req.Name
	}
	if req.Address != nil {
		updates["address"] = *req.Address
	}
	if req.Capacity != nil {
		updates["capacity"] = *req.Capacity
	}
	if req.Tariff != nil {
		updates["tariff"] = *req.Tariff
	}
	if req.DayTariff != nil {
		updates["day_tariff"] = *req.DayTariff
	}
	if req.IsActive != nil {
		updates["is_active"] = *req.IsActive
	}

	if len(updates) > 0 {
		if err := s.lotRepo.Update(ctx, id, updates); err != nil {
			return nil, fmt.Errorf("failed to update parking lot: %w", err)
		}
	}

	return s.lotRepo.GetByID(ctx, id)
}

func (s *parkingLotService) DeactivateParkingLot(ctx context.Context, id primitive.ObjectID) error {
	return s.lotRepo.Deactivate(ctx, id)
}

func (s *parkingLotService) ListParkingLots(ctx context.Context, params *utils.PaginationParams) ([]*models.ParkingLot, int64, error) {
	return s.lotRepo.List(ctx, params)
}
