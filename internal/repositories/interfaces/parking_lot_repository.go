package interfaces

import (
	"context"

	"parkhub/internal/models"
	"parkhub/internal/utils"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type ParkingLotRepository interface {
	Create(ctx context.Context, lot *models.ParkingLot) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.ParkingLot, error)
	Update(ctx context.Context, id primitive.ObjectID, updates map[string]interface{}) error
	Deactivate(ctx context.Context, id primitive.ObjectID) error
	List(ctx context.Context, params *utils.PaginationParams) ([]*models.ParkingLot, int64, error)
}
