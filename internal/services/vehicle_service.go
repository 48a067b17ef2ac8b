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

type VehicleService interface {
	RegisterVehicle(ctx context.Context, userID primitive.ObjectID, req *RegisterVehicleRequest) (*models.Vehicle, error)
	GetVehicle(ctx context.Context, userID, id primitive.ObjectID) (*models.Vehicle, error)
	UpdateVehicle(ctx context.Context, userID, id primitive.ObjectID, req *UpdateVehicleRequest) (*models.Vehicle, error)
	DeleteVehicle(ctx context.Context, userID, id primitive.ObjectID) error
	ListUserVehicles(ctx context.Context, userID primitive.ObjectID, params *utils.PaginationParams) ([]*models.Vehicle, int64, error)
}

type RegisterVehicleRequest struct {
	LicensePlate string             `json:"license_plate" binding:"required"`
	Make         string             `json:"make"`
	Model        string             `json:"model"`
	Color        string             `json:"color"`
	Type         models.VehicleType `json:"type"`
}

type UpdateVehicleRequest struct {
	Make  *string `json:"make"`
	Model *string `json:"model"`
	Color *string `json:"color"`
}

type vehicleService struct {
	vehicleRepo interfaces.VehicleRepository
	logger      *logger.Logger
}

func NewVehicleService(vehicleRepo interfaces.VehicleRepository, logger *logger.Logger) VehicleService {
	return &vehicleService{vehicleRepo: vehicleRepo, logger: logger}
}

func (s *vehicleService) RegisterVehicle(ctx context.Context, userID primitive.ObjectID, req *RegisterVehicleRequest) (*models.Vehicle, error) {
	if err := validators.ValidateLicensePlate(req.LicensePlate); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	vehicleType := req.Type
	if vehicleType == "" {
		vehicleType = models.VehicleTypeCar
	}

	vehicle := &models.Vehicle{
		UserID:       userID,
		LicensePlate: req.LicensePlate,
		Make:         req.Make,
		Model:        req.Model,
		Color:        req.Color,
		Type:         vehicleType,
	}

	if err := s.vehicleRepo.Create(ctx, vehicle); err != nil {
		return nil, fmt.Errorf("failed to register vehicle: %w", err)
	}

	s.logger.WithFields(map[string]interface{}{
		"vehicle_id": vehicle.ID.Hex(),
		"user_id":    userID.Hex(),
	}).Info("vehicle registered")

	return vehicle, nil
}

func (s *vehicleService) GetVehicle(ctx context.Context, userID, id primitive.ObjectID) (*models.Vehicle, error) {
	vehicle, err := s.vehicleRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if vehicle.UserID != userID {
		return nil, interfaces.ErrNotFound
	}
	return vehicle, nil
}

func (s *vehicleService) UpdateVehicle(ctx context.Context, userID, id primitive.ObjectID, req *UpdateVehicleRequest) (*models.Vehicle, error) {
	if _, err := s.GetVehicle(ctx, userID, id); err != nil {
		return nil, err
	}

	updates := make(map[string]interface{})
	if req.Make != nil {
		updates["make"] = *req.Make
	}
	if req.Model != nil {
		updates["model"] = *req.Model
	}
	if req.Color != nil {
		updates["color"] = *req.Color
	}

	if len(updates) > 0 {
		if err := s.vehicleRepo.Update(ctx, id, updates); err != nil {
			return nil, fmt.Errorf("failed to update vehicle: %w", err)
		}
	}

	return s.vehicleRepo.GetByID(ctx, id)
}

func (s *vehicleService) DeleteVehicle(ctx context.Context, userID, id primitive.ObjectID) error {
	if _, err := s.GetVehicle(ctx, userID, id); err != nil {
		return err
	}
	return s.vehicleRepo.Delete(ctx, id)
}

func (s *vehicleService) ListUserVehicles(ctx context.Context, userID primitive.ObjectID, params *utils.PaginationParams) ([]*models.Vehicle, int64, error) {
	return s.vehicleRepo.ListByUser(ctx, userID, params)
}
